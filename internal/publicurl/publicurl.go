// Package publicurl works out the base URL that short links are built on.
package publicurl

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/imroc/req/v3"
	"github.com/rs/zerolog"
)

const (
	probeTimeout = 2 * time.Second
	loopbackIP   = "127.0.0.1"
)

type tunnelList struct {
	Tunnels []struct {
		Proto     string `json:"proto"`
		PublicURL string `json:"public_url"`
	} `json:"tunnels"`
}

type Resolver struct {
	configured string
	tunnelAPI  string
	port       string
	client     *req.Client
	log        zerolog.Logger

	// подменяется в тестах
	localIP func() string
}

// NewResolver: configured wins, then the tunnel API at tunnelAPI, then the
// LAN address with port.
func NewResolver(configured, tunnelAPI, port string, log zerolog.Logger) *Resolver {
	return &Resolver{
		configured: strings.TrimRight(configured, "/"),
		tunnelAPI:  tunnelAPI,
		port:       port,
		client:     req.C().SetTimeout(probeTimeout),
		log:        log.With().Str("component", "public_url").Logger(),
		localIP:    LocalIP,
	}
}

// Resolve always returns some URL; failures only move it down the list.
func (r *Resolver) Resolve(ctx context.Context) string {
	if r.configured != "" {
		r.log.Info().Str("url", r.configured).Msg("using configured public URL")
		return r.configured
	}

	if u := r.tunnelURL(ctx); u != "" {
		r.log.Info().Str("url", u).Msg("using tunnel public URL")
		return u
	}

	u := "http://" + net.JoinHostPort(r.localIP(), r.port)
	r.log.Info().Str("url", u).Msg("using local network URL")
	return u
}

func (r *Resolver) tunnelURL(ctx context.Context) string {
	if r.tunnelAPI == "" {
		return ""
	}

	var list tunnelList
	resp, err := r.client.R().
		SetContext(ctx).
		SetSuccessResult(&list).
		Get(r.tunnelAPI)
	if err != nil || !resp.IsSuccessState() {
		r.log.Debug().Err(err).Msg("tunnel API not reachable")
		return ""
	}

	var fallback string
	for _, t := range list.Tunnels {
		switch t.Proto {
		case "http":
			return strings.TrimRight(t.PublicURL, "/")
		case "https":
			if fallback == "" {
				fallback = strings.TrimRight(t.PublicURL, "/")
			}
		}
	}
	return fallback
}

// LocalIP returns the address of the interface used for outbound traffic.
// No packet is sent: a UDP "connect" only selects a route.
func LocalIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return loopbackIP
	}
	defer conn.Close()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok || addr.IP == nil {
		return loopbackIP
	}
	return addr.IP.String()
}
