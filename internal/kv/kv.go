// Package kv defines the key-value persistence boundary and the versioned
// JSON envelope collections are stored in.
package kv

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Collection keys.
const (
	KeyTransactions = "transactions"
	KeyAccounts     = "accounts"
	KeyGoals        = "goals"
	KeyBudgets      = "budget_categories"
	KeyInvestments  = "investments"
	KeyAlerts       = "alerts"
	KeyChatHistory  = "chat_history"
)

// Keys lists every collection key.
var Keys = []string{
	KeyTransactions,
	KeyAccounts,
	KeyGoals,
	KeyBudgets,
	KeyInvestments,
	KeyAlerts,
	KeyChatHistory,
}

// SchemaVersion is written into every envelope.
const SchemaVersion = 1

var ErrSchemaVersion = errors.New("unsupported schema version")

// Store persists opaque values by key. Get reports ok=false for a missing
// key.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
}

type envelope struct {
	Version int             `json:"version"`
	Items   json.RawMessage `json:"items"`
}

// Encode wraps items in a versioned envelope.
func Encode[T any](items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("marshal items: %w", err)
	}
	return json.Marshal(envelope{Version: SchemaVersion, Items: raw})
}

// Decode reads an envelope, or a bare JSON array written before envelopes
// existed.
func Decode[T any](data []byte) ([]T, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}

	var items []T
	if data[0] == '[' {
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("unmarshal legacy items: %w", err)
		}
		return items, nil
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Version > SchemaVersion {
		return nil, fmt.Errorf("%w: %d", ErrSchemaVersion, env.Version)
	}
	if len(env.Items) == 0 {
		return nil, nil
	}
	if err := json.Unmarshal(env.Items, &items); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}
	return items, nil
}

// Load reads and decodes the collection at key. A missing key yields an
// empty collection.
func Load[T any](ctx context.Context, s Store, key string) ([]T, error) {
	data, ok, err := s.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	if !ok {
		return nil, nil
	}
	items, err := Decode[T](data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return items, nil
}

// Save encodes items and writes them to key.
func Save[T any](ctx context.Context, s Store, key string, items []T) error {
	data, err := Encode(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.Set(ctx, key, data); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}
