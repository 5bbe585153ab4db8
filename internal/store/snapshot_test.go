package store

import (
	"errors"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mokabrew/baristad/internal/order"
)

func TestSnapshotWriter_WriteAndRead(t *testing.T) {
	w := NewSnapshotWriter(filepath.Join(t.TempDir(), "final_order.json"))

	o := &order.FinalOrder{
		ID:       "abc123",
		Customer: "Justin",
		Number:   "010-1234-5678",
		Menu:     "Latte",
		Size:     "Grande",
		Extra:    "oat milk",
		Price:    5.25,
		ETA:      "14:20",
	}
	require.NoError(t, w.Write(o))

	got, err := w.Read()
	require.NoError(t, err)
	assert.Equal(t, o, got)
}

func TestSnapshotWriter_OverwritesPreviousOrder(t *testing.T) {
	w := NewSnapshotWriter(filepath.Join(t.TempDir(), "final_order.json"))

	require.NoError(t, w.Write(&order.FinalOrder{ID: "first", Menu: "Latte"}))
	require.NoError(t, w.Write(&order.FinalOrder{ID: "second", Menu: "Cold Brew"}))

	got, err := w.Read()
	require.NoError(t, err)
	assert.Equal(t, "second", got.ID)
	assert.Equal(t, "Cold Brew", got.Menu)
}

func TestSnapshotWriter_ReadBeforeAnyWrite(t *testing.T) {
	w := NewSnapshotWriter(filepath.Join(t.TempDir(), "final_order.json"))

	_, err := w.Read()
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}
