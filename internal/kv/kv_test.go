package kv

import (
	"context"
	"errors"
	"testing"
)

type mapStore map[string][]byte

func (m mapStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m[key]
	return v, ok, nil
}

func (m mapStore) Set(_ context.Context, key string, value []byte) error {
	m[key] = value
	return nil
}

type item struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := mapStore{}
	in := []item{{1, "a"}, {2, "b"}}
	if err := Save(ctx, s, KeyGoals, in); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got := string(s[KeyGoals]); got != `{"version":1,"items":[{"id":1,"name":"a"},{"id":2,"name":"b"}]}` {
		t.Fatalf("unexpected encoding %s", got)
	}
	out, err := Load[item](ctx, s, KeyGoals)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(out) != 2 || out[1].Name != "b" {
		t.Fatalf("got %+v", out)
	}
}

func TestLoadMissingKey(t *testing.T) {
	out, err := Load[item](context.Background(), mapStore{}, KeyAccounts)
	if err != nil || out != nil {
		t.Fatalf("got %v, %v", out, err)
	}
}

func TestDecode(t *testing.T) {
	cases := []struct {
		name    string
		data    string
		n       int
		wantErr error
		anyErr  bool
	}{
		{"legacy bare array", `[{"id":1}]`, 1, nil, false},
		{"envelope", `{"version":1,"items":[{"id":1},{"id":2}]}`, 2, nil, false},
		{"empty", "  ", 0, nil, false},
		{"null", "null", 0, nil, false},
		{"empty envelope", `{"version":1}`, 0, nil, false},
		{"future version", `{"version":2,"items":[]}`, 0, ErrSchemaVersion, true},
		{"garbage", `{"version":`, 0, nil, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Decode[item]([]byte(tc.data))
			if tc.anyErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != tc.n {
				t.Fatalf("expected %d items, got %d", tc.n, len(got))
			}
		})
	}
}

func TestEncodeNilWritesEmptyArray(t *testing.T) {
	b, err := Encode[item](nil)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"version":1,"items":[]}` {
		t.Fatalf("got %s", b)
	}
}
