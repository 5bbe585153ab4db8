package store

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mokabrew/baristad/internal/order"
)

// SnapshotWriter persists the most recent finalized order as a JSON file at
// a fixed, well-known path. Each successful finalization overwrites it.
type SnapshotWriter struct {
	path string
}

// NewSnapshotWriter creates a snapshot writer targeting the given path.
func NewSnapshotWriter(path string) *SnapshotWriter {
	return &SnapshotWriter{path: path}
}

// Path returns the snapshot file location.
func (w *SnapshotWriter) Path() string { return w.path }

// Write serializes the order and overwrites the snapshot file.
func (w *SnapshotWriter) Write(o *order.FinalOrder) error {
	data, err := json.MarshalIndent(o, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling snapshot: %w", err)
	}
	if err := os.WriteFile(w.path, data, 0o644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// Read loads the last written snapshot. Returns os.ErrNotExist (wrapped)
// when no order has been finalized yet.
func (w *SnapshotWriter) Read() (*order.FinalOrder, error) {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	var o order.FinalOrder
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}
	return &o, nil
}
