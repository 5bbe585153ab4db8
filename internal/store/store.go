// Package store defines the persistence contracts for finalized orders.
//
// A finalized order is written twice, in strict sequence: first to the
// durable document store (keyed upsert), then to a local snapshot file.
// The snapshot is only ever written after a successful durable write.
package store

import (
	"context"

	"github.com/mokabrew/baristad/internal/order"
)

// Store durably persists finalized orders by keyed insert-or-replace.
type Store interface {
	// Upsert persists the order. If the order has no ID, the store assigns
	// a globally unique one before writing; the ID is permanent for that
	// order. An existing record with the same ID is replaced wholesale.
	// Connectivity and write failures are returned to the caller.
	Upsert(ctx context.Context, o *order.FinalOrder) error
}

// Snapshotter writes the latest finalized order to a local file.
type Snapshotter interface {
	Write(o *order.FinalOrder) error
}
