package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegexDetector(t *testing.T) {
	d := NewRegexDetector()

	tests := []struct {
		utterance string
		want      bool
	}{
		{"Yes, proceed to payment", true},
		{"proceed", true},
		{"PROCEED TO PAYMENT", true},
		{"okay", true},
		{"I confirm", true},
		{"go ahead", true},
		{"please place the order", true},
		{"I'll pay now", true},
		// A bare "yes" in an unrelated sentence still triggers. Shallow
		// matching is the contract here, not a bug.
		{"yes I do like the weather today", true},

		{"I'd like a latte", false},
		{"what sizes do you have", false},
		{"payment", false}, // "pay" requires a word boundary on both sides
		{"the keyester is broken", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			assert.Equal(t, tt.want, d.IsConfirmation(tt.utterance))
		})
	}
}
