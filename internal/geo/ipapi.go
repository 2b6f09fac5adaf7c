// Package geo looks up the approximate location of a network address using
// the ip-api.com JSON endpoint.
package geo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"shortlinks/internal/models"

	"github.com/imroc/req/v3"
)

const fields = "status,message,country,regionName,city,lat,lon,isp"

var ErrLookupFailed = errors.New("geolocation lookup failed")

type ipAPIResponse struct {
	Status     string   `json:"status"`
	Message    string   `json:"message"`
	Country    string   `json:"country"`
	RegionName string   `json:"regionName"`
	City       string   `json:"city"`
	Lat        *float64 `json:"lat"`
	Lon        *float64 `json:"lon"`
	ISP        string   `json:"isp"`
}

type IPAPI struct {
	client  *req.Client
	baseURL string
}

// NewIPAPI builds a client for baseURL (e.g. http://ip-api.com/json). The
// timeout caps a single request; callers usually pass a shorter context.
func NewIPAPI(baseURL string, timeout time.Duration) *IPAPI {
	return &IPAPI{
		client: req.C().
			SetTimeout(timeout).
			SetUserAgent("shortlinks").
			SetCommonHeader("Accept", "application/json"),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (c *IPAPI) Locate(ctx context.Context, ip string) (*models.Location, error) {
	var out ipAPIResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("ip", ip).
		SetQueryParam("fields", fields).
		SetSuccessResult(&out).
		Get(c.baseURL + "/{ip}")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	if !resp.IsSuccessState() {
		return nil, fmt.Errorf("%w: status %d", ErrLookupFailed, resp.StatusCode)
	}
	if out.Status != "success" {
		return nil, fmt.Errorf("%w: %s", ErrLookupFailed, out.Message)
	}

	return &models.Location{
		Country:   orUnknown(out.Country),
		Region:    orUnknown(out.RegionName),
		City:      orUnknown(out.City),
		Latitude:  out.Lat,
		Longitude: out.Lon,
		ISP:       orUnknown(out.ISP),
	}, nil
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
