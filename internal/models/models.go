package models

import "errors"

var (
	ErrInvalidData = errors.New("invalid input data")
	ErrNotFound    = errors.New("short code not found")
	ErrConflict    = errors.New("short code already exists")
)

// Форм-факторы устройства
const (
	FormFactorDesktop = "Desktop"
	FormFactorMobile  = "Mobile"
	FormFactorTablet  = "Tablet"
)

type (
	// LinkRecord - основная модель: короткий код и история переходов
	LinkRecord struct {
		Code        string       `json:"-"`
		OriginalURL string       `json:"original_url"`
		CreatedAt   Timestamp    `json:"created_at"`
		Clicks      []ClickEvent `json:"clicks"`
	}

	// ClickEvent - один зафиксированный переход по ссылке
	ClickEvent struct {
		Timestamp Timestamp     `json:"timestamp"`
		Device    DeviceProfile `json:"device"`
		IP        string        `json:"ip"`
		Location  *Location     `json:"location"`
	}

	DeviceProfile struct {
		OS      string `json:"os"`
		Browser string `json:"browser"`
		Type    string `json:"type"`
	}

	// Location заполняется только если геолокация ответила вовремя
	Location struct {
		Country   string   `json:"country"`
		Region    string   `json:"region"`
		City      string   `json:"city"`
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
		ISP       string   `json:"isp"`
	}
)

// Clone returns a deep copy so callers cannot mutate store-owned slices.
func (r LinkRecord) Clone() LinkRecord {
	out := r
	out.Clicks = make([]ClickEvent, len(r.Clicks))
	for i, c := range r.Clicks {
		out.Clicks[i] = c.Clone()
	}
	return out
}

func (c ClickEvent) Clone() ClickEvent {
	if c.Location != nil {
		loc := *c.Location
		if loc.Latitude != nil {
			lat := *loc.Latitude
			loc.Latitude = &lat
		}
		if loc.Longitude != nil {
			lon := *loc.Longitude
			loc.Longitude = &lon
		}
		c.Location = &loc
	}
	return c
}
