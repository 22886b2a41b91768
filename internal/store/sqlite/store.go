// Package sqlite implements store.Store on a single SQLite table holding one
// row per collection.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	applog "findash/internal/log"
	"findash/internal/store"
)

type Store struct {
	db      *sql.DB
	queries *Queries
	log     *applog.Logger
}

type Option func(*Store)

func WithLogger(logger *applog.Logger) Option {
	return func(s *Store) {
		s.log = logger.WithComponent(applog.ComponentBackend).With(applog.FieldBackend, "sqlite")
	}
}

func Open(dbPath string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer at a time; the ledger serializes writes anyway.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	s := &Store{db: db, queries: New(db), log: applog.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) (json.RawMessage, error) {
	row, err := s.queries.GetCollection(ctx, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get collection %s: %w", key, err)
	}
	return json.RawMessage(row.Value), nil
}

func (s *Store) Set(ctx context.Context, key string, value json.RawMessage) error {
	err := s.queries.UpsertCollection(ctx, UpsertCollectionParams{Key: key, Value: string(value)})
	if err != nil {
		return fmt.Errorf("upsert collection %s: %w", key, err)
	}
	s.log.DebugContext(ctx, "Collection saved",
		applog.FieldOperation, applog.OpPersist,
		applog.FieldKey, key,
		"bytes", len(value))
	return nil
}

// SetMany writes every document in one transaction.
func (s *Store) SetMany(ctx context.Context, docs []store.Doc) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	q := s.queries.WithTx(tx)
	for _, d := range docs {
		if err := q.UpsertCollection(ctx, UpsertCollectionParams{Key: d.Key, Value: string(d.Value)}); err != nil {
			return fmt.Errorf("upsert collection %s: %w", d.Key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	s.log.DebugContext(ctx, "Collections saved",
		applog.FieldOperation, applog.OpPersist,
		applog.FieldCount, len(docs))
	return nil
}

func (s *Store) Keys(ctx context.Context) ([]string, error) {
	keys, err := s.queries.ListCollectionKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list collection keys: %w", err)
	}
	return keys, nil
}

// Revision returns how many times key has been written, 0 if never.
func (s *Store) Revision(ctx context.Context, key string) (int64, error) {
	row, err := s.queries.GetCollection(ctx, key)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get collection %s: %w", key, err)
	}
	return row.Revision, nil
}
