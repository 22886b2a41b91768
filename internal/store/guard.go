package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"slices"
	"strings"

	"findash/internal/core"
)

// Limits bounds what a single Set may write.
type Limits struct {
	MaxKeyLength int
	MaxBytes     int
	MaxDepth     int
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{
		MaxKeyLength: 128,
		MaxBytes:     200 * 1024,
		MaxDepth:     8,
	}
}

var forbiddenKeys = []string{"__proto__", "prototype", "constructor"}

// allowedKeys are the documents a ledger database may contain. Some are kept
// for compatibility and never read by the engine.
var allowedKeys = map[string]struct{}{
	"appName":                 {},
	"password":                {},
	"accounts":                {},
	"stocks":                  {},
	"crypto":                  {},
	"retirementAccounts":      {},
	"retirementHoldings":      {},
	"retirementContributions": {},
	"creditCards":             {},
	"incomeSources":           {},
	"incomeRecords":           {},
	"formalDebts":             {},
	"commitments":             {},
	"receivables":             {},
	"paymentRecords":          {},
	"allocations":             {},
	"transactions":            {},
	"categories":              {},
	"otherAssets":             {},
	"goals":                   {},
	"recurringEvents":         {},
	"homes":                   {},
	"homeImprovements":        {},
}

type schemaFunc func(json.RawMessage) bool

var schemas = map[string]schemaFunc{
	"password":     stringOrNull,
	"accounts":     arrayOfObjects,
	"transactions": arrayOfObjects,
	"homes":        arrayOfObjects,
}

// Guard validates keys and documents before delegating to another Store.
type Guard struct {
	next   Store
	limits Limits
}

// NewGuard wraps next. Zero limit fields fall back to DefaultLimits.
func NewGuard(next Store, limits Limits) *Guard {
	def := DefaultLimits()
	if limits.MaxKeyLength <= 0 {
		limits.MaxKeyLength = def.MaxKeyLength
	}
	if limits.MaxBytes <= 0 {
		limits.MaxBytes = def.MaxBytes
	}
	if limits.MaxDepth <= 0 {
		limits.MaxDepth = def.MaxDepth
	}
	return &Guard{next: next, limits: limits}
}

func (g *Guard) Get(ctx context.Context, key string) (json.RawMessage, error) {
	if err := g.checkKey(key); err != nil {
		return nil, err
	}
	v, err := g.next.Get(ctx, key)
	if err != nil {
		return nil, wrap(key, core.CodeReadFailed, err)
	}
	return v, nil
}

func (g *Guard) Set(ctx context.Context, key string, value json.RawMessage) error {
	if err := g.Check(key, value); err != nil {
		return err
	}
	if err := g.next.Set(ctx, key, value); err != nil {
		return wrap(key, core.CodeWriteFailed, err)
	}
	return nil
}

// SetMany checks every document before any is written and delegates to the
// wrapped store's batch write. It returns errors.ErrUnsupported when the
// wrapped store cannot write atomically.
func (g *Guard) SetMany(ctx context.Context, docs []Doc) error {
	b, ok := g.next.(Batcher)
	if !ok {
		return errors.ErrUnsupported
	}
	for _, d := range docs {
		if err := g.Check(d.Key, d.Value); err != nil {
			return err
		}
	}
	if err := b.SetMany(ctx, docs); err != nil {
		if errors.Is(err, errors.ErrUnsupported) {
			return err
		}
		return wrap(batchKey(docs), core.CodeWriteFailed, err)
	}
	return nil
}

func batchKey(docs []Doc) string {
	keys := make([]string, len(docs))
	for i, d := range docs {
		keys[i] = d.Key
	}
	return strings.Join(keys, ",")
}

// Keys returns only allowed keys.
func (g *Guard) Keys(ctx context.Context) ([]string, error) {
	keys, err := g.next.Keys(ctx)
	if err != nil {
		return nil, wrap("*", core.CodeReadFailed, err)
	}
	return slices.DeleteFunc(keys, func(k string) bool {
		_, ok := allowedKeys[k]
		return !ok
	}), nil
}

func (g *Guard) Close() error { return g.next.Close() }

// Check reports why value may not be stored under key, or nil.
func (g *Guard) Check(key string, value json.RawMessage) error {
	if err := g.checkKey(key); err != nil {
		return err
	}
	if !json.Valid(value) {
		return reject(key, core.CodeValueNotSerialized)
	}
	if schema, ok := schemas[key]; ok && !schema(value) {
		return reject(key, core.CodeSchemaInvalid)
	}
	if len(value) > g.limits.MaxBytes {
		return reject(key, core.CodeValueTooLarge)
	}
	if depth(value, g.limits.MaxDepth) > g.limits.MaxDepth {
		return reject(key, core.CodeValueTooDeep)
	}
	return nil
}

func (g *Guard) checkKey(key string) error {
	if key == "" || len(key) > g.limits.MaxKeyLength || strings.ContainsRune(key, 0) || slices.Contains(forbiddenKeys, key) {
		return reject(key, core.CodeInvalidKey)
	}
	if _, ok := allowedKeys[key]; !ok {
		return reject(key, core.CodeNotAllowed)
	}
	return nil
}

// depth returns the deepest container nesting in data. A scalar at the top
// level has depth 0, the fields of a top-level object have depth 1. Scanning
// stops once limit is exceeded.
func depth(data json.RawMessage, limit int) int {
	dec := json.NewDecoder(bytes.NewReader(data))
	open, deepest := 0, 0
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return deepest
		}
		if err != nil {
			return deepest
		}
		deepest = max(deepest, open)
		if deepest > limit {
			return deepest
		}
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '{', '[':
				open++
			case '}', ']':
				open--
			}
		}
	}
}

func stringOrNull(v json.RawMessage) bool {
	v = bytes.TrimSpace(v)
	return bytes.Equal(v, []byte("null")) || (len(v) > 0 && v[0] == '"')
}

func arrayOfObjects(v json.RawMessage) bool {
	var items []json.RawMessage
	if err := json.Unmarshal(v, &items); err != nil || items == nil {
		return false
	}
	for _, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 || item[0] != '{' {
			return false
		}
	}
	return true
}

func reject(key string, code core.PersistenceCode) error {
	return &core.PersistenceError{Key: key, Code: code}
}

// wrap keeps an existing PersistenceError from a nested guard intact.
func wrap(key string, code core.PersistenceCode, err error) error {
	var pe *core.PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &core.PersistenceError{Key: key, Code: code, Err: err}
}
