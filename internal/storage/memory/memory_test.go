package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestMemoryStoreGetSet(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, ok, err := s.Get(ctx, "transactions"); ok || err != nil {
		t.Fatalf("expected missing key, ok=%v err=%v", ok, err)
	}

	value := []byte(`{"version":1,"items":[]}`)
	if err := s.Set(ctx, "transactions", value); err != nil {
		t.Fatalf("set: %v", err)
	}
	value[0] = 'X'

	got, ok, err := s.Get(ctx, "transactions")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if string(got) != `{"version":1,"items":[]}` {
		t.Fatalf("stored value aliased caller buffer: %s", got)
	}
	got[0] = 'Y'
	again, _, _ := s.Get(ctx, "transactions")
	if again[0] != '{' {
		t.Fatalf("returned value aliased store buffer")
	}
}

func TestNewFromFilesSeedsKnownKeys(t *testing.T) {
	dir := t.TempDir()
	mustWrite := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	mustWrite("accounts.json", `[{"id":1,"name":"Checking","type":"cash","balance":"100"}]`)
	mustWrite("goals.json", "")
	mustWrite("unrelated.json", `[]`)

	s := NewFromFiles(dir)
	if s.Len() != 1 {
		t.Fatalf("expected 1 seeded key, got %d", s.Len())
	}
	if _, ok, _ := s.Get(context.Background(), "accounts"); !ok {
		t.Fatal("accounts not seeded")
	}

	if NewFromFiles("").Len() != 0 {
		t.Fatal("empty dir should give empty store")
	}
}
