// Package filestore keeps every link in memory and mirrors the whole set to
// a single JSON document after each mutation.
package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"shortlinks/internal/models"

	"github.com/tidwall/gjson"
)

var (
	ErrInvalidDir = errors.New("using bad path to the save data")
	ErrCorrupt    = errors.New("storage file is not a JSON object")
)

const indent = "  "

type Store struct {
	mu    sync.RWMutex
	path  string
	links map[string]*models.LinkRecord
	order []string // порядок вставки кодов
}

// New loads the document at path. A missing or empty file yields an empty
// store; the file is only created by the first mutation.
func New(path string) (*Store, error) {
	if path == "" {
		return nil, ErrInvalidDir
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDir, err)
	}

	dir := filepath.Dir(absPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	s := &Store{
		path:  absPath,
		links: make(map[string]*models.LinkRecord),
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", absPath, err)
	}

	set, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", absPath, err)
	}
	for i := range set {
		rec := set[i]
		s.links[rec.Code] = &rec
		s.order = append(s.order, rec.Code)
	}
	return s, nil
}

// Path returns the absolute location of the document.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) Create(_ context.Context, rec models.LinkRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.links[rec.Code]; exists {
		return models.ErrConflict
	}

	stored := rec.Clone()
	s.links[rec.Code] = &stored
	s.order = append(s.order, rec.Code)

	if err := s.flush(); err != nil {
		delete(s.links, rec.Code)
		s.order = s.order[:len(s.order)-1]
		return err
	}
	return nil
}

func (s *Store) Get(_ context.Context, code string) (models.LinkRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.links[code]
	if !ok {
		return models.LinkRecord{}, models.ErrNotFound
	}
	return rec.Clone(), nil
}

func (s *Store) FindByOriginalURL(_ context.Context, originalURL string) (models.LinkRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, code := range s.order {
		if rec := s.links[code]; rec.OriginalURL == originalURL {
			return rec.Clone(), nil
		}
	}
	return models.LinkRecord{}, models.ErrNotFound
}

func (s *Store) AppendClick(_ context.Context, code string, ev models.ClickEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.links[code]
	if !ok {
		return models.ErrNotFound
	}

	prev := len(rec.Clicks)
	rec.Clicks = append(rec.Clicks, ev.Clone())

	if err := s.flush(); err != nil {
		rec.Clicks = rec.Clicks[:prev]
		return err
	}
	return nil
}

func (s *Store) Delete(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.links[code]
	if !ok {
		return models.ErrNotFound
	}

	idx := indexOf(s.order, code)
	prevOrder := s.order
	s.order = make([]string, 0, len(prevOrder)-1)
	s.order = append(s.order, prevOrder[:idx]...)
	s.order = append(s.order, prevOrder[idx+1:]...)
	delete(s.links, code)

	if err := s.flush(); err != nil {
		s.links[code] = rec
		s.order = prevOrder
		return err
	}
	return nil
}

func (s *Store) List(_ context.Context) (models.LinkSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshot(), nil
}

func (s *Store) Codes(_ context.Context) (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	codes := make(map[string]struct{}, len(s.links))
	for code := range s.links {
		codes[code] = struct{}{}
	}
	return codes, nil
}

// Ping checks that the document directory is still reachable.
func (s *Store) Ping(_ context.Context) error {
	_, err := os.Stat(filepath.Dir(s.path))
	return err
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) snapshot() models.LinkSet {
	set := make(models.LinkSet, 0, len(s.order))
	for _, code := range s.order {
		set = append(set, s.links[code].Clone())
	}
	return set
}

// flush rewrites the whole document. Caller holds the write lock.
func (s *Store) flush() error {
	data, err := s.snapshot().MarshalIndent(indent)
	if err != nil {
		return fmt.Errorf("failed to encode links: %w", err)
	}
	if err := writeFileAtomic(s.path, data); err != nil {
		return fmt.Errorf("failed to save %s: %w", s.path, err)
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // после успешного rename ничего не удалит

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Decode parses a storage document, keeping key order. Records whose clicks
// field is a number or missing (older format) get an empty click list.
func Decode(data []byte) (models.LinkSet, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return models.LinkSet{}, nil
	}
	if !gjson.ValidBytes(data) {
		return nil, ErrCorrupt
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, ErrCorrupt
	}

	set := models.LinkSet{}
	seen := make(map[string]int)
	var decodeErr error

	root.ForEach(func(key, value gjson.Result) bool {
		rec, err := decodeRecord(key.String(), value)
		if err != nil {
			decodeErr = err
			return false
		}
		if i, dup := seen[rec.Code]; dup {
			set[i] = rec
			return true
		}
		seen[rec.Code] = len(set)
		set = append(set, rec)
		return true
	})
	if decodeErr != nil {
		return nil, decodeErr
	}
	return set, nil
}

func decodeRecord(code string, value gjson.Result) (models.LinkRecord, error) {
	if code == "" || !value.IsObject() {
		return models.LinkRecord{}, fmt.Errorf("%w: bad record %q", models.ErrInvalidData, code)
	}

	rec := models.LinkRecord{
		Code:        code,
		OriginalURL: value.Get("original_url").String(),
		Clicks:      []models.ClickEvent{},
	}
	if rec.OriginalURL == "" {
		return models.LinkRecord{}, fmt.Errorf("%w: record %q has no original_url", models.ErrInvalidData, code)
	}

	if created := value.Get("created_at"); created.Exists() {
		ts, err := models.ParseTimestamp(created.String())
		if err != nil {
			return models.LinkRecord{}, fmt.Errorf("record %q: %w", code, err)
		}
		rec.CreatedAt = ts
	}

	if clicks := value.Get("clicks"); clicks.IsArray() {
		if err := json.Unmarshal([]byte(clicks.Raw), &rec.Clicks); err != nil {
			return models.LinkRecord{}, fmt.Errorf("record %q clicks: %w", code, err)
		}
	}
	return rec, nil
}

func indexOf(list []string, v string) int {
	for i, item := range list {
		if item == v {
			return i
		}
	}
	return -1
}
