// Package storage is the key-value persistence port behind sessions and
// projects.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Keys under which the analyzer keeps its state.
const (
	SessionKey  = "green-energy-analyzer-session"
	ProjectsKey = "green-energy-analyzer-projects"
)

// ErrNotFound is returned by Load when nothing is stored under a key.
var ErrNotFound = errors.New("storage: key not found")

// ErrDecode is returned by LoadJSON when the stored value cannot be decoded.
var ErrDecode = errors.New("storage: stored value is unreadable")

// Store is a whole-value key-value store.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// LoadJSON decodes the value under key into v.
func LoadJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := s.Load(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w: %w", key, ErrDecode, err)
	}
	return nil
}

// SaveJSON encodes v and stores it under key, replacing any previous value.
func SaveJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return s.Save(ctx, key, data)
}
