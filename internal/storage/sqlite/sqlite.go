// Package sqlite is an embedded-database backend for links, selectable with
// STORAGE_BACKEND=sqlite instead of the JSON document.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"shortlinks/internal/models"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS links (
	code         TEXT PRIMARY KEY,
	original_url TEXT NOT NULL UNIQUE,
	created_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS clicks (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	code        TEXT NOT NULL REFERENCES links(code),
	timestamp   TEXT NOT NULL,
	os          TEXT NOT NULL,
	browser     TEXT NOT NULL,
	device_type TEXT NOT NULL,
	ip          TEXT NOT NULL,
	location    TEXT
);
CREATE INDEX IF NOT EXISTS idx_clicks_code ON clicks(code);
`

type Store struct {
	db *sql.DB
}

func New(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// один писатель: sqlite всё равно сериализует запись
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Create(ctx context.Context, rec models.LinkRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO links (code, original_url, created_at) VALUES (?, ?, ?)`,
		rec.Code, rec.OriginalURL, rec.CreatedAt.String(),
	)
	if err != nil {
		if isConstraint(err) {
			return fmt.Errorf("%w: %v", models.ErrConflict, err)
		}
		return err
	}
	return nil
}

func (s *Store) Get(ctx context.Context, code string) (models.LinkRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT code, original_url, created_at FROM links WHERE code = ?`, code)
	rec, err := scanLink(row)
	if err != nil {
		return models.LinkRecord{}, err
	}
	rec.Clicks, err = s.clicks(ctx, code)
	if err != nil {
		return models.LinkRecord{}, err
	}
	return rec, nil
}

func (s *Store) FindByOriginalURL(ctx context.Context, originalURL string) (models.LinkRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT code, original_url, created_at FROM links WHERE original_url = ?`, originalURL)
	rec, err := scanLink(row)
	if err != nil {
		return models.LinkRecord{}, err
	}
	rec.Clicks, err = s.clicks(ctx, rec.Code)
	if err != nil {
		return models.LinkRecord{}, err
	}
	return rec, nil
}

func (s *Store) AppendClick(ctx context.Context, code string, ev models.ClickEvent) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM links WHERE code = ?`, code).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrNotFound
	}
	if err != nil {
		return err
	}

	var location sql.NullString
	if ev.Location != nil {
		raw, err := json.Marshal(ev.Location)
		if err != nil {
			return err
		}
		location = sql.NullString{String: string(raw), Valid: true}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO clicks (code, timestamp, os, browser, device_type, ip, location)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		code, ev.Timestamp.String(), ev.Device.OS, ev.Device.Browser, ev.Device.Type, ev.IP, location,
	)
	if err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) Delete(ctx context.Context, code string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM clicks WHERE code = ?`, code); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM links WHERE code = ?`, code)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return tx.Commit()
}

func (s *Store) List(ctx context.Context) (models.LinkSet, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT code, original_url, created_at FROM links ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := models.LinkSet{}
	index := make(map[string]int)
	for rows.Next() {
		rec, err := scanLink(rows)
		if err != nil {
			return nil, err
		}
		index[rec.Code] = len(set)
		set = append(set, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	clickRows, err := s.db.QueryContext(ctx,
		`SELECT code, timestamp, os, browser, device_type, ip, location FROM clicks ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer clickRows.Close()

	for clickRows.Next() {
		code, ev, err := scanClick(clickRows)
		if err != nil {
			return nil, err
		}
		if i, ok := index[code]; ok {
			set[i].Clicks = append(set[i].Clicks, ev)
		}
	}
	return set, clickRows.Err()
}

func (s *Store) Codes(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT code FROM links`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	codes := make(map[string]struct{})
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes[code] = struct{}{}
	}
	return codes, rows.Err()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) clicks(ctx context.Context, code string) ([]models.ClickEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT code, timestamp, os, browser, device_type, ip, location
		 FROM clicks WHERE code = ? ORDER BY id`, code)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clicks := []models.ClickEvent{}
	for rows.Next() {
		_, ev, err := scanClick(rows)
		if err != nil {
			return nil, err
		}
		clicks = append(clicks, ev)
	}
	return clicks, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLink(row scanner) (models.LinkRecord, error) {
	var (
		rec     models.LinkRecord
		created string
	)
	if err := row.Scan(&rec.Code, &rec.OriginalURL, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.LinkRecord{}, models.ErrNotFound
		}
		return models.LinkRecord{}, err
	}
	ts, err := models.ParseTimestamp(created)
	if err != nil {
		return models.LinkRecord{}, err
	}
	rec.CreatedAt = ts
	rec.Clicks = []models.ClickEvent{}
	return rec, nil
}

func scanClick(row scanner) (string, models.ClickEvent, error) {
	var (
		code     string
		ts       string
		ev       models.ClickEvent
		location sql.NullString
	)
	err := row.Scan(&code, &ts, &ev.Device.OS, &ev.Device.Browser, &ev.Device.Type, &ev.IP, &location)
	if err != nil {
		return "", models.ClickEvent{}, err
	}
	if ev.Timestamp, err = models.ParseTimestamp(ts); err != nil {
		return "", models.ClickEvent{}, err
	}
	if location.Valid {
		ev.Location = &models.Location{}
		if err := json.Unmarshal([]byte(location.String), ev.Location); err != nil {
			return "", models.ClickEvent{}, err
		}
	}
	return code, ev, nil
}

func isConstraint(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "constraint")
}
