package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"shortlinks/internal/metrics"
	"shortlinks/internal/models"

	"github.com/rs/zerolog"
)

//go:generate mockgen -destination=../mocks/storage_mock.go -package=mocks shortlinks/internal/service Storage
type Storage interface {
	Create(ctx context.Context, rec models.LinkRecord) error
	Get(ctx context.Context, code string) (models.LinkRecord, error)
	FindByOriginalURL(ctx context.Context, originalURL string) (models.LinkRecord, error)
	AppendClick(ctx context.Context, code string, ev models.ClickEvent) error
	Delete(ctx context.Context, code string) error
	List(ctx context.Context) (models.LinkSet, error)
	Codes(ctx context.Context) (map[string]struct{}, error)
	Ping(ctx context.Context) error
	Close() error
}

type CodeGenerator interface {
	Generate(existing map[string]struct{}) string
}

// LinkStore owns short-code allocation on top of a Storage backend.
type LinkStore struct {
	storage Storage
	codes   CodeGenerator
	log     zerolog.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	// shorten = поиск + генерация + вставка, должно быть атомарно
	allocMu sync.Mutex
}

type Option func(*LinkStore)

func WithClock(now func() time.Time) Option {
	return func(s *LinkStore) {
		s.now = now
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *LinkStore) {
		s.metrics = m
	}
}

func NewLinkStore(storage Storage, codes CodeGenerator, log zerolog.Logger, opts ...Option) *LinkStore {
	s := &LinkStore{
		storage: storage,
		codes:   codes,
		log:     log.With().Str("component", "link_store").Logger(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Shorten returns the code for originalURL, minting one if the URL is new.
func (s *LinkStore) Shorten(ctx context.Context, originalURL string) (string, error) {
	originalURL = strings.TrimSpace(originalURL)
	if originalURL == "" {
		return "", models.ErrInvalidData
	}

	s.allocMu.Lock()
	defer s.allocMu.Unlock()

	existing, err := s.storage.FindByOriginalURL(ctx, originalURL)
	if err == nil {
		return existing.Code, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return "", fmt.Errorf("lookup by url: %w", err)
	}

	taken, err := s.storage.Codes(ctx)
	if err != nil {
		return "", fmt.Errorf("list codes: %w", err)
	}

	rec := models.LinkRecord{
		Code:        s.codes.Generate(taken),
		OriginalURL: originalURL,
		CreatedAt:   models.NewTimestamp(s.now().UTC()),
		Clicks:      []models.ClickEvent{},
	}
	if err := s.storage.Create(ctx, rec); err != nil {
		return "", fmt.Errorf("create %s: %w", rec.Code, err)
	}

	s.metrics.LinkCreated()
	s.log.Info().
		Str("code", rec.Code).
		Str("url", rec.OriginalURL).
		Msg("link created")
	return rec.Code, nil
}

// Resolve looks the code up without recording anything.
func (s *LinkStore) Resolve(ctx context.Context, code string) (string, error) {
	rec, err := s.storage.Get(ctx, code)
	if err != nil {
		return "", err
	}
	return rec.OriginalURL, nil
}

func (s *LinkStore) RecordClick(ctx context.Context, code string, ev models.ClickEvent) error {
	if err := s.storage.AppendClick(ctx, code, ev); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return err
		}
		return fmt.Errorf("record click on %s: %w", code, err)
	}
	return nil
}

func (s *LinkStore) GetStats(ctx context.Context, code string) (models.LinkRecord, error) {
	return s.storage.Get(ctx, code)
}

func (s *LinkStore) ListAll(ctx context.Context) (models.LinkSet, error) {
	return s.storage.List(ctx)
}

func (s *LinkStore) Delete(ctx context.Context, code string) error {
	if code == "" {
		return models.ErrInvalidData
	}

	// удаление не должно вклиниться между поиском и вставкой в Shorten
	s.allocMu.Lock()
	defer s.allocMu.Unlock()

	if err := s.storage.Delete(ctx, code); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete %s: %w", code, err)
	}

	s.metrics.LinkDeleted()
	s.log.Info().Str("code", code).Msg("link deleted")
	return nil
}

func (s *LinkStore) Ping(ctx context.Context) error {
	return s.storage.Ping(ctx)
}
