package backend

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"findash/internal/config"
	"findash/internal/core"
)

func TestFromAppConfig(t *testing.T) {
	tests := []struct {
		name    string
		app     *config.Config
		want    BackendType
		wantErr bool
	}{
		{"nil config", nil, "", true},
		{"unknown backend", &config.Config{DataBackend: "sheets"}, "", true},
		{"sqlite", &config.Config{DataBackend: "sqlite", SQLiteDBPath: "x.db", StoreMaxBytes: 4096, StoreMaxDepth: 4}, SQLiteBackend, false},
		{"memory", &config.Config{DataBackend: "memory", StoreMaxBytes: 4096, StoreMaxDepth: 4}, MemoryBackend, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromAppConfig(tt.app)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FromAppConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.Type != tt.want {
				t.Errorf("FromAppConfig() Type = %v, want %v", got.Type, tt.want)
			}
			if got.Limits.MaxBytes != 4096 || got.Limits.MaxDepth != 4 || got.Limits.MaxKeyLength != 128 {
				t.Errorf("FromAppConfig() Limits = %+v", got.Limits)
			}
		})
	}
}

func TestInvalidBackendListsChoices(t *testing.T) {
	_, err := FromAppConfig(&config.Config{DataBackend: "sheets"})
	if err == nil || !strings.Contains(err.Error(), "sqlite, memory") {
		t.Errorf("FromAppConfig() error = %v, want the valid backends listed", err)
	}
	if err := (Config{Type: "sheets"}).Validate(); err == nil || !strings.Contains(err.Error(), "sqlite, memory") {
		t.Errorf("Validate() error = %v, want the valid backends listed", err)
	}
}

func TestCreateBackendIsGuarded(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name string
		cfg  Config
	}{
		{"memory", Config{Type: MemoryBackend}},
		{"memory with file", Config{Type: MemoryBackend, DataFile: filepath.Join(dir, "ledger.json")}},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(dir, "ledger.db")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := NewFactory(nil).CreateBackend(ctx, tt.cfg)
			if err != nil {
				t.Fatalf("CreateBackend() error = %v", err)
			}
			defer res.Cleanup()

			if err := res.Store.Set(ctx, "accounts", json.RawMessage(`[]`)); err != nil {
				t.Fatalf("Set(accounts) error = %v", err)
			}
			err = res.Store.Set(ctx, "passwords", json.RawMessage(`"x"`))
			if code, _ := core.PersistenceCodeOf(err); code != core.CodeNotAllowed {
				t.Errorf("Set(passwords) code = %q, want %q", code, core.CodeNotAllowed)
			}
		})
	}
}

func TestCreateBackendRejectsMissingPath(t *testing.T) {
	_, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: SQLiteBackend})
	if err == nil {
		t.Error("expected error for sqlite backend without path")
	}
}
