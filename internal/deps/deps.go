// Package deps lists the application-wide contracts the HTTP server is built
// against. Each handler package narrows these to what it calls.
package deps

import (
	"context"
	"time"

	"shortlinks/internal/models"
)

//go:generate mockgen -destination=../mocks/link_service_mock.go -package=mocks shortlinks/internal/deps LinkService
type LinkService interface {
	Shorten(ctx context.Context, originalURL string) (string, error)
	Resolve(ctx context.Context, code string) (string, error)
	RecordClick(ctx context.Context, code string, ev models.ClickEvent) error
	GetStats(ctx context.Context, code string) (models.LinkRecord, error)
	ListAll(ctx context.Context) (models.LinkSet, error)
	Delete(ctx context.Context, code string) error
	Ping(ctx context.Context) error
}

type ClickEnricher interface {
	NewClickEvent(ctx context.Context, userAgent, addr string, at time.Time) models.ClickEvent
}
