// Package analytics turns raw request data into click analytics. Every
// enrichment here is best effort and never fails the caller.
package analytics

import (
	"context"
	"net/netip"
	"time"

	"shortlinks/internal/metrics"
	"shortlinks/internal/models"

	"github.com/rs/zerolog"
)

const defaultLookupTimeout = 2 * time.Second

//go:generate mockgen -destination=../mocks/locator_mock.go -package=mocks shortlinks/internal/analytics Locator
type Locator interface {
	Locate(ctx context.Context, ip string) (*models.Location, error)
}

type Enricher struct {
	locator Locator
	timeout time.Duration
	log     zerolog.Logger
	metrics *metrics.Metrics
}

// NewEnricher wraps locator with a bounded timeout. A nil locator disables
// geolocation.
func NewEnricher(locator Locator, timeout time.Duration, log zerolog.Logger, m *metrics.Metrics) *Enricher {
	if timeout <= 0 {
		timeout = defaultLookupTimeout
	}
	return &Enricher{
		locator: locator,
		timeout: timeout,
		log:     log.With().Str("component", "enricher").Logger(),
		metrics: m,
	}
}

// Locate returns nil when the address is not public, the lookup fails or
// the timeout elapses.
func (e *Enricher) Locate(ctx context.Context, addr string) *models.Location {
	if e.locator == nil || !isPublic(addr) {
		e.metrics.GeoLookup(metrics.GeoSkipped, 0)
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	type result struct {
		loc *models.Location
		err error
	}
	done := make(chan result, 1)
	start := time.Now()

	// локатор может не уважать ctx, поэтому ждём не дольше таймаута
	go func() {
		loc, err := e.locator.Locate(ctx, addr)
		done <- result{loc, err}
	}()

	select {
	case r := <-done:
		elapsed := time.Since(start).Seconds()
		if r.err != nil || r.loc == nil {
			e.metrics.GeoLookup(metrics.GeoFailed, elapsed)
			e.log.Debug().Err(r.err).Str("ip", addr).Msg("geolocation unavailable")
			return nil
		}
		e.metrics.GeoLookup(metrics.GeoResolved, elapsed)
		return r.loc
	case <-ctx.Done():
		e.metrics.GeoLookup(metrics.GeoFailed, time.Since(start).Seconds())
		e.log.Debug().Str("ip", addr).Dur("timeout", e.timeout).Msg("geolocation timed out")
		return nil
	}
}

// NewClickEvent classifies the agent and locates the address.
func (e *Enricher) NewClickEvent(ctx context.Context, userAgent, addr string, at time.Time) models.ClickEvent {
	if userAgent == "" {
		userAgent = UnknownAgent
	}
	return models.ClickEvent{
		Timestamp: models.NewTimestamp(at.UTC()),
		Device:    ClassifyDevice(userAgent),
		IP:        addr,
		Location:  e.Locate(ctx, addr),
	}
}

func isPublic(addr string) bool {
	ip, err := netip.ParseAddr(addr)
	if err != nil {
		return false
	}
	ip = ip.Unmap()
	return ip.IsGlobalUnicast() && !ip.IsPrivate()
}
