package mongo

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mokabrew/baristad/internal/order"
)

func TestEnsureID_AssignsDistinctIDs(t *testing.T) {
	// Two identical orders without IDs must get two distinct identifiers:
	// content never dedups records.
	a := &order.FinalOrder{Customer: "Justin", Menu: "Latte"}
	b := &order.FinalOrder{Customer: "Justin", Menu: "Latte"}

	ensureID(a)
	ensureID(b)

	assert.Len(t, a.ID, 32, "128-bit identifier rendered as hex")
	assert.Len(t, b.ID, 32)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestEnsureID_PreservesExistingID(t *testing.T) {
	o := &order.FinalOrder{ID: "abc123"}
	ensureID(o)
	assert.Equal(t, "abc123", o.ID)
}
