// Package ledger keeps accounts, cards, debts and their payment records
// consistent with each other.
//
// Every exported mutation is one atomic step: it runs against a copy of the
// current collections, the changed collections are written to the store, and
// only then does the copy become the ledger's state. A rejected or failed
// step leaves both memory and (as far as the store allows) storage as they
// were.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"findash/internal/core"
	applog "findash/internal/log"
	"findash/internal/store"
)

// Ledger owns the in-memory collections of one user.
type Ledger struct {
	mu       sync.RWMutex
	store    store.Store
	state    *core.Collections
	revision uint64

	now   func() time.Time
	newID func() string
	log   *applog.Logger
}

type Option func(*Ledger)

// WithClock sets the source of "today".
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithIDGenerator sets how record IDs are generated.
func WithIDGenerator(newID func() string) Option {
	return func(l *Ledger) { l.newID = newID }
}

func WithLogger(logger *applog.Logger) Option {
	return func(l *Ledger) { l.log = logger.WithComponent(applog.ComponentLedger) }
}

// New returns an empty ledger backed by s. Call Load to hydrate it.
func New(s store.Store, opts ...Option) *Ledger {
	l := &Ledger{
		store: s,
		state: &core.Collections{},
		now:   time.Now,
		newID: uuid.NewString,
		log:   applog.Discard(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Open creates a ledger and loads every collection from s.
func Open(ctx context.Context, s store.Store, opts ...Option) (*Ledger, error) {
	l := New(s, opts...)
	if err := l.Load(ctx); err != nil {
		return nil, err
	}
	return l, nil
}

// Load replaces the in-memory state with the stored collections.
// Collections are fetched concurrently; any failure leaves the state untouched.
func (l *Ledger) Load(ctx context.Context) error {
	start := time.Now()
	next := &core.Collections{}
	g, gctx := errgroup.WithContext(ctx)
	for _, name := range core.AllCollections {
		g.Go(func() error {
			raw, err := l.store.Get(gctx, string(name))
			if err != nil {
				return fmt.Errorf("load %s: %w", name, err)
			}
			// Each goroutine decodes into a different field.
			if err := next.Decode(name, raw); err != nil {
				return &core.PersistenceError{Key: string(name), Code: core.CodeSchemaInvalid, Err: err}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		l.log.ErrorContext(ctx, "Failed to load ledger", applog.NewFields().WithOperation(applog.OpLoad).WithError(err).ToSlice()...)
		return err
	}

	l.mu.Lock()
	l.state = next
	l.revision++
	l.mu.Unlock()

	l.log.InfoContext(ctx, "Ledger loaded",
		applog.FieldOperation, applog.OpLoad,
		"accounts", len(next.Accounts),
		"transactions", len(next.Transactions),
		applog.FieldDuration, time.Since(start).Milliseconds())
	return nil
}

// Snapshot returns a copy of the committed collections and their revision.
func (l *Ledger) Snapshot() (*core.Collections, uint64) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.Clone(), l.revision
}

// Revision increases with every committed change.
func (l *Ledger) Revision() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.revision
}

// Today returns the current calendar day.
func (l *Ledger) Today() core.Date {
	return core.DateOf(l.now())
}

// mutate runs fn against a copy of the state and commits the result.
func (l *Ledger) mutate(ctx context.Context, op string, fn func(ch *change) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	ch := newChange(l.state.Clone(), l.newID, l.Today())
	if err := fn(ch); err != nil {
		l.log.WarnContext(ctx, "Ledger operation rejected",
			applog.NewFields().WithOperation(op).WithError(err).ToSlice()...)
		return err
	}
	if err := l.commit(ctx, ch); err != nil {
		l.log.ErrorContext(ctx, "Ledger operation not persisted",
			applog.NewFields().WithOperation(op).WithError(err).ToSlice()...)
		return err
	}
	l.log.InfoContext(ctx, "Ledger operation applied",
		applog.FieldOperation, op,
		applog.FieldCollections, ch.list(),
		applog.FieldRevision, l.revision)
	return nil
}

// commit writes every touched collection and swaps the state in. Stores
// that batch get all collections in one atomic write. Otherwise, when a
// write fails, collections already written in this step are restored from
// the previous state. Either way a failure keeps the in-memory state.
// Callers hold mu.
func (l *Ledger) commit(ctx context.Context, ch *change) error {
	names := ch.list()
	if b, ok := l.store.(store.Batcher); ok && len(names) > 1 {
		err := l.writeBatch(ctx, b, ch.c, names)
		if err == nil {
			l.state = ch.c
			l.revision++
			return nil
		}
		if !errors.Is(err, errors.ErrUnsupported) {
			return err
		}
	}
	written := make([]core.Collection, 0, len(names))
	for _, name := range names {
		if err := l.write(ctx, ch.c, name); err != nil {
			l.restore(ctx, written)
			return err
		}
		written = append(written, name)
	}
	l.state = ch.c
	l.revision++
	return nil
}

func (l *Ledger) write(ctx context.Context, c *core.Collections, name core.Collection) error {
	raw, err := c.Encode(name)
	if err != nil {
		return &core.PersistenceError{Key: string(name), Code: core.CodeValueNotSerialized, Err: err}
	}
	if err := l.store.Set(ctx, string(name), raw); err != nil {
		var pe *core.PersistenceError
		if errors.As(err, &pe) {
			return err
		}
		return &core.PersistenceError{Key: string(name), Code: core.CodeWriteFailed, Err: err}
	}
	return nil
}

func (l *Ledger) writeBatch(ctx context.Context, b store.Batcher, c *core.Collections, names []core.Collection) error {
	docs := make([]store.Doc, 0, len(names))
	keys := make([]string, 0, len(names))
	for _, name := range names {
		raw, err := c.Encode(name)
		if err != nil {
			return &core.PersistenceError{Key: string(name), Code: core.CodeValueNotSerialized, Err: err}
		}
		docs = append(docs, store.Doc{Key: string(name), Value: raw})
		keys = append(keys, string(name))
	}
	err := b.SetMany(ctx, docs)
	if err == nil || errors.Is(err, errors.ErrUnsupported) {
		return err
	}
	var pe *core.PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &core.PersistenceError{Key: strings.Join(keys, ","), Code: core.CodeWriteFailed, Err: err}
}

// restore rewrites collections from the committed state. Best effort: a
// failure here is logged, the original error is what the caller sees.
func (l *Ledger) restore(ctx context.Context, names []core.Collection) {
	for _, name := range names {
		if err := l.write(ctx, l.state, name); err != nil {
			l.log.ErrorContext(ctx, "Failed to restore collection after write failure",
				applog.FieldOperation, applog.OpRollback,
				applog.FieldCollection, name,
				applog.FieldError, err)
		}
	}
}
