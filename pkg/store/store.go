// Package store defines the shared reservation snapshot store. Every write
// replaces the whole snapshot; there are no partial-path operations.
package store

import (
	"context"
	"errors"

	"slotbook/pkg/model"
)

var (
	// ErrVersionMismatch is returned by ReplaceIfUnchanged when the stored
	// snapshot is no longer the one the caller read.
	ErrVersionMismatch = errors.New("snapshot changed since it was read")

	ErrClosed = errors.New("store is closed")
)

// Versioned is a snapshot together with the opaque version it was read at.
type Versioned struct {
	Snapshot model.Snapshot
	Version  string
}

// Subscription delivers the current snapshot immediately, then again after
// every change until Close. A slow reader only ever sees the newest value.
type Subscription interface {
	Updates() <-chan Versioned
	Close()
}

type Store interface {
	Load(ctx context.Context) (Versioned, error)
	// Replace overwrites the snapshot and returns the new version.
	Replace(ctx context.Context, snap model.Snapshot) (string, error)
	// ReplaceIfUnchanged overwrites the snapshot only while the stored version
	// still equals version.
	ReplaceIfUnchanged(ctx context.Context, version string, snap model.Snapshot) (string, error)
	Subscribe(ctx context.Context) (Subscription, error)
	Ping(ctx context.Context) error
	Close() error
}
