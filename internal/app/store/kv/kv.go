// internal/app/store/kv/kv.go

// Package kv defines the ordered key-value boundary the rest of the app is
// built on: get/put/delete plus an ordered prefix scan, nothing else.
//
// The contract is deliberately narrow. There are no multi-key transactions,
// no unique constraints, and no secondary indexes; every guarantee above a
// single key (capacity limits, duplicate-free rosters, the membership
// index) is built by the layers on top.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = errors.New("kv: key not found")

// Entry is one key/value pair produced by a Scan.
type Entry struct {
	Key   string
	Value []byte
}

// Store is an ordered key-value store.
//
// Put overwrites unconditionally. Delete of an absent key is a no-op.
// Scan returns all entries whose key starts with prefix, in ascending key
// order; an empty prefix scans everything.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Scan(ctx context.Context, prefix string) ([]Entry, error)
}
