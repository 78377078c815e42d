// Copyright 2021 The reqflow Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package history records the outcome of requests made by the reqflow
// command in a SQLite database.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gogama/reqflow/cancel"
	"github.com/gogama/reqflow/request"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// timeFormat is fixed-width so that stored times sort lexically.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// An Entry is one recorded request outcome.
type Entry struct {
	ID        string
	Method    string
	URL       string
	Status    int
	Error     string
	CreatedAt time.Time
}

// Store is a SQLite-backed request history.
type Store struct {
	db *sql.DB
}

// Open opens the history database at path, creating it if necessary.
// Use ":memory:" for a throwaway store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open database: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: ping database: %w", err)
	}

	createTableSQL := `
		CREATE TABLE IF NOT EXISTS requests (
			id          TEXT PRIMARY KEY,
			method      TEXT NOT NULL,
			url         TEXT NOT NULL,
			status      INTEGER NOT NULL DEFAULT 0,
			error       TEXT NOT NULL DEFAULT '',
			created_at  TEXT NOT NULL
		);
	`
	if _, err = db.Exec(createTableSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: create table: %w", err)
	}

	createIndexSQL := `
		CREATE INDEX IF NOT EXISTS idx_requests_created_at ON requests(created_at);
	`
	if _, err = db.Exec(createIndexSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: create index: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record saves e. If e.ID is empty a new UUID is assigned, and if
// e.CreatedAt is zero it is set to the current time.
func (s *Store) Record(ctx context.Context, e *Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO requests (id, method, url, status, error, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Method, e.URL, e.Status, e.Error, e.CreatedAt.UTC().Format(timeFormat))
	if err != nil {
		return fmt.Errorf("history: record: %w", err)
	}
	return nil
}

// List returns up to limit entries, most recent first.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, method, url, status, error, created_at FROM requests ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("history: list: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var created string
		if err = rows.Scan(&e.ID, &e.Method, &e.URL, &e.Status, &e.Error, &created); err != nil {
			return nil, fmt.Errorf("history: scan row: %w", err)
		}
		if e.CreatedAt, err = time.Parse(timeFormat, created); err != nil {
			return nil, fmt.Errorf("history: parse time: %w", err)
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("history: list: %w", err)
	}
	return entries, nil
}

// Recorder returns a response interceptor pair which records every
// outcome in s and passes it on unchanged. A failure to record is
// reported to onErr, if non-nil, and does not affect the request.
//
// Recording ignores cancellation of the request context, which has
// usually ended by the time the response interceptors run.
func (s *Store) Recorder(onErr func(error)) (func(*request.Response) (*request.Response, error), func(error) (*request.Response, error)) {
	record := func(ctx context.Context, e *Entry) {
		if err := s.Record(ctx, e); err != nil && onErr != nil {
			onErr(err)
		}
	}
	fulfilled := func(r *request.Response) (*request.Response, error) {
		e := &Entry{Status: r.Status}
		ctx := context.Background()
		if r.Config != nil {
			e.Method = r.Config.Method.Wire()
			e.URL = r.Config.URL
			ctx = context.WithoutCancel(r.Config.Context())
		}
		record(ctx, e)
		return r, nil
	}
	rejected := func(err error) (*request.Response, error) {
		e := &Entry{Error: err.Error()}
		ctx := context.Background()
		var rerr *request.Error
		if errors.As(err, &rerr) && rerr.Config != nil {
			e.Method = rerr.Config.Method.Wire()
			e.URL = rerr.Config.URL
			if rerr.Response != nil {
				e.Status = rerr.Response.Status
			}
			ctx = context.WithoutCancel(rerr.Config.Context())
		}
		if cancel.IsCancel(err) {
			e.Error = "cancelled: " + e.Error
		}
		record(ctx, e)
		return nil, err
	}
	return fulfilled, rejected
}
