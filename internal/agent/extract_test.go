package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mokabrew/baristad/internal/order"
)

func TestRegexExtractor_Minutes(t *testing.T) {
	e := NewRegexExtractor(10)

	tests := []struct {
		reply string
		want  int
	}{
		{"about 7 minutes", 7},
		{"It should take 15 minutes", 15},
		{"7-10 minutes", 7}, // first digit run wins
		{"soon", 10},        // no digits -> default
		{"", 10},
		{"in twenty minutes", 10},
	}

	for _, tt := range tests {
		t.Run(tt.reply, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Minutes(tt.reply))
		})
	}
}

func TestRegexExtractor_MinutesCustomDefault(t *testing.T) {
	e := NewRegexExtractor(25)
	assert.Equal(t, 25, e.Minutes("soon"))
}

func TestRegexExtractor_Fields(t *testing.T) {
	e := NewRegexExtractor(10)

	fields, err := e.Fields(`Sure! {"menu":"Latte","size":"Grande","extra":"oat milk","price":5.25} Thanks.`)
	require.NoError(t, err)

	assert.Equal(t, order.ExtractedFields{
		Menu:  "Latte",
		Size:  "Grande",
		Extra: "oat milk",
		Price: 5.25,
	}, fields)
}

func TestRegexExtractor_FieldsNestedObject(t *testing.T) {
	e := NewRegexExtractor(10)

	// The span runs from the first "{" to the last "}", so a nested
	// object parses as the outermost one.
	fields, err := e.Fields(`{"menu":"Latte","details":{"origin":"Colombia"},"price":5}`)
	require.NoError(t, err)
	assert.Equal(t, "Latte", fields.Menu)
	assert.Equal(t, 5.0, fields.Price)
}

func TestRegexExtractor_FieldsMissingKeysDefault(t *testing.T) {
	e := NewRegexExtractor(10)

	fields, err := e.Fields(`{"menu":"Americano"}`)
	require.NoError(t, err)
	assert.Equal(t, order.ExtractedFields{Menu: "Americano"}, fields)
}

func TestRegexExtractor_FieldsParseFailures(t *testing.T) {
	e := NewRegexExtractor(10)

	tests := []struct {
		name  string
		reply string
	}{
		{"no braces", "I cannot extract the order"},
		{"unterminated object", `{"menu": "Latte"`},
		{"invalid json inside span", `{"menu": }`},
		// Two separate objects make the greedy span unparseable.
		{"two objects", `{"menu":"Latte"} and {"size":"Grande"}`},
		{"empty reply", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Fields(tt.reply)
			assert.ErrorIs(t, err, ErrParse)
		})
	}
}
