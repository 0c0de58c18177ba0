package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"pennie/internal/config"
	"pennie/internal/kv"
)

func TestFromAppConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.Config
		want    BackendType
		wantErr bool
	}{
		{"nil config", nil, "", true},
		{"memory", &config.Config{DataBackend: "memory", DataDir: "seed"}, MemoryBackend, false},
		{"sqlite", &config.Config{DataBackend: "sqlite", SQLiteDBPath: "x.db"}, SQLiteBackend, false},
		{"sheets is no longer a backend", &config.Config{DataBackend: "sheets"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromAppConfig(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FromAppConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got.Type != tt.want {
				t.Errorf("Type = %q, want %q", got.Type, tt.want)
			}
		})
	}
}

func TestCreateMemoryBackendSeedsFromDirectory(t *testing.T) {
	dir := t.TempDir()
	body := `{"version":1,"items":[{"id":1,"name":"Checking","type":"checking","balance":"10"}]}`
	if err := os.WriteFile(filepath.Join(dir, kv.KeyAccounts+".json"), []byte(body), 0600); err != nil {
		t.Fatal(err)
	}

	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: MemoryBackend, DataDirectory: dir})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	defer res.Cleanup()

	if _, ok, err := res.Store.Get(context.Background(), kv.KeyAccounts); err != nil || !ok {
		t.Errorf("seeded accounts missing: ok=%v err=%v", ok, err)
	}
	if err := res.Ping(context.Background()); err != nil {
		t.Errorf("Ping on memory backend: %v", err)
	}
}

func TestCreateSQLiteBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pennie.db")
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: SQLiteBackend, SQLiteDBPath: path})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	if err := res.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
	if err := res.Store.Set(context.Background(), kv.KeyGoals, []byte(`{"version":1,"items":[]}`)); err != nil {
		t.Errorf("Set: %v", err)
	}
	if err := res.Cleanup(); err != nil {
		t.Errorf("Cleanup: %v", err)
	}
}

func TestCreateBackendInvalid(t *testing.T) {
	f := NewFactory(nil)
	if _, err := f.CreateBackend(context.Background(), Config{Type: "redis"}); err == nil {
		t.Error("CreateBackend accepted an unknown type")
	}
	if _, err := f.CreateBackend(context.Background(), Config{Type: SQLiteBackend}); err == nil {
		t.Error("CreateBackend accepted sqlite without a path")
	}
}
