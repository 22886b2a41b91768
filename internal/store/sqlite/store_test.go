package sqlite

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"findash/internal/store"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "findash.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t)

	v, err := s.Get(ctx, "accounts")
	if err != nil || v != nil {
		t.Fatalf("expected nil for missing key, got %s (err=%v)", v, err)
	}

	if err := s.Set(ctx, "accounts", json.RawMessage(`[{"id":"a","balance":10.5}]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set(ctx, "accounts", json.RawMessage(`[{"id":"a","balance":11}]`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	v, err = s.Get(ctx, "accounts")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(v) != `[{"id":"a","balance":11}]` {
		t.Fatalf("unexpected value %s", v)
	}

	rev, err := s.Revision(ctx, "accounts")
	if err != nil || rev != 2 {
		t.Fatalf("revision = %d (err=%v), want 2", rev, err)
	}
}

func TestStoreKeysAndReopen(t *testing.T) {
	ctx := context.Background()
	s, path := openTestStore(t)

	for _, k := range []string{"transactions", "accounts"} {
		if err := s.Set(ctx, k, json.RawMessage(`[]`)); err != nil {
			t.Fatalf("set %s: %v", k, err)
		}
	}
	s.Close()

	// Migrations must be a no-op on an already migrated database.
	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	keys, err := reopened.Keys(ctx)
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if len(keys) != 2 || keys[0] != "accounts" || keys[1] != "transactions" {
		t.Fatalf("unexpected keys %v", keys)
	}
}

func TestSetManyIsAtomic(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t)

	if err := s.SetMany(ctx, []store.Doc{
		{Key: "accounts", Value: json.RawMessage(`[{"id":"a"}]`)},
		{Key: "categories", Value: json.RawMessage(`[]`)},
	}); err != nil {
		t.Fatalf("SetMany: %v", err)
	}

	if _, err := s.db.ExecContext(ctx, `CREATE TRIGGER reject_transactions BEFORE INSERT ON collections
		WHEN NEW.key = 'transactions' BEGIN SELECT RAISE(ABORT, 'disk full'); END`); err != nil {
		t.Fatalf("create trigger: %v", err)
	}
	err := s.SetMany(ctx, []store.Doc{
		{Key: "accounts", Value: json.RawMessage(`[{"id":"b"}]`)},
		{Key: "transactions", Value: json.RawMessage(`[]`)},
	})
	if err == nil {
		t.Fatal("expected the batch to fail")
	}

	v, err := s.Get(ctx, "accounts")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(v) != `[{"id":"a"}]` {
		t.Errorf("accounts = %s, want the value from before the failed batch", v)
	}
	if v, _ := s.Get(ctx, "transactions"); v != nil {
		t.Errorf("transactions = %s, want nothing", v)
	}
}
