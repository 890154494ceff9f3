// Package docstore persists records in Postgres, keyed by a content id so
// uploading the same export twice overwrites instead of duplicating.
package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/workforce/internal/domain/dedupe"
	"github.com/okian/workforce/internal/domain/model"
	"github.com/okian/workforce/pkg/metrics"
)

const (
	defaultBatchSize = 450
	maxDocIDLength   = 100
)

const schemaSQL = `
	CREATE TABLE IF NOT EXISTS work_logs (
		doc_id     TEXT PRIMARY KEY,
		record     JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`

const upsertSQL = `
	INSERT INTO work_logs (doc_id, record, updated_at)
	VALUES ($1, $2, $3)
	ON CONFLICT (doc_id)
	DO UPDATE SET
		record = EXCLUDED.record,
		updated_at = EXCLUDED.updated_at`

const selectSQL = `SELECT doc_id, record FROM work_logs ORDER BY doc_id`

var docIDUnsafe = regexp.MustCompile(`[^a-zA-Z0-9-]`)

// DB is the subset of *pgxpool.Pool the store uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Store writes and reads records.
type Store struct {
	db        DB
	batchSize int
	now       func() time.Time
	close     func()
}

// Option configures a Store.
type Option func(*Store)

// WithBatchSize caps the rows sent per round trip.
func WithBatchSize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithClock replaces time.Now for updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New wraps an existing connection.
func New(db DB, opts ...Option) *Store {
	s := &Store{db: db, batchSize: defaultBatchSize, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open connects to databaseURL and makes sure the table exists. An empty
// URL returns ErrNotConfigured.
func Open(ctx context.Context, databaseURL string, opts ...Option) (*Store, error) {
	if databaseURL == "" {
		return nil, ErrNotConfigured
	}
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	s := New(pool, opts...)
	s.close = pool.Close
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the connection pool opened by Open.
func (s *Store) Close() {
	if s != nil && s.close != nil {
		s.close()
	}
}

// EnsureSchema creates the work_logs table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if s == nil || s.db == nil {
		return ErrNotConfigured
	}
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("%w: create schema: %w", ErrWrite, err)
	}
	return nil
}

// DocID derives the document key from a record's content. Characters
// outside [a-zA-Z0-9-] are removed and the result is capped at 100.
func DocID(r model.Record) string {
	raw := fmt.Sprintf("%s-%s-%s-%s-%s-%s",
		r.Date, r.Consultant, r.Client, r.TicketID,
		strconv.FormatFloat(r.Hours, 'f', -1, 64), r.RecordType)
	id := docIDUnsafe.ReplaceAllString(raw, "")
	if len(id) > maxDocIDLength {
		id = id[:maxDocIDLength]
	}
	return id
}

// Upsert writes records in batches and returns how many rows were sent.
// Records sharing a document id are written once, first one wins.
func (s *Store) Upsert(ctx context.Context, records []model.Record) (int, error) {
	if s == nil || s.db == nil {
		return 0, ErrNotConfigured
	}

	seen := dedupe.NewInMemoryDeduper(len(records))
	written := 0
	batch := &pgx.Batch{}
	flush := func() error {
		if batch.Len() == 0 {
			return nil
		}
		n := batch.Len()
		br := s.db.SendBatch(ctx, batch)
		for i := 0; i < n; i++ {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return fmt.Errorf("%w: %w", ErrWrite, err)
			}
		}
		if err := br.Close(); err != nil {
			return fmt.Errorf("%w: %w", ErrWrite, err)
		}
		written += n
		batch = &pgx.Batch{}
		return nil
	}

	for _, r := range records {
		id := DocID(r)
		if seen.SeenAndRecord(ctx, id) {
			continue
		}
		r.ID = id
		body, err := json.Marshal(r)
		if err != nil {
			return written, fmt.Errorf("%w: encode %s: %w", ErrWrite, id, err)
		}
		batch.Queue(upsertSQL, id, body, s.now())
		if batch.Len() >= s.batchSize {
			if err := flush(); err != nil {
				return written, err
			}
		}
	}
	if err := flush(); err != nil {
		return written, err
	}
	metrics.RecordSyncCollapsed(len(records) - int(seen.Size()))
	return written, nil
}

// FetchAll reads every stored record. Record ids are the document ids.
func (s *Store) FetchAll(ctx context.Context) ([]model.Record, error) {
	if s == nil || s.db == nil {
		return nil, ErrNotConfigured
	}
	rows, err := s.db.Query(ctx, selectSQL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Record, error) {
		var (
			id   string
			body []byte
			rec  model.Record
		)
		if err := row.Scan(&id, &body); err != nil {
			return rec, err
		}
		if err := json.Unmarshal(body, &rec); err != nil {
			return rec, fmt.Errorf("decode %s: %w", id, err)
		}
		rec.ID = id
		return rec, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	return records, nil
}
