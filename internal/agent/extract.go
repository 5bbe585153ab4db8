package agent

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/mokabrew/baristad/internal/order"
)

// ErrParse reports that the model's extraction reply carried no usable
// order JSON. Finalization aborts for the turn; the conversation keeps the
// failed attempt so a later confirmation can retry.
var ErrParse = errors.New("could not parse order details")

// Extractor pulls structured values out of free-form model replies.
type Extractor interface {
	// Minutes parses the arrival-time reply. It never fails: when no
	// digits are present it returns the configured default.
	Minutes(reply string) int

	// Fields parses the field-extraction reply into order fields.
	Fields(reply string) (order.ExtractedFields, error)
}

var (
	digitsRe = regexp.MustCompile(`\d+`)

	// objectRe spans from the first "{" to the last "}" (greedy, dot
	// matches newlines). Nested objects resolve to the outermost span;
	// two separate objects in one reply produce an unparseable span and
	// abort the turn.
	objectRe = regexp.MustCompile(`(?s)\{.*\}`)
)

// RegexExtractor is the default extractor.
type RegexExtractor struct {
	defaultMinutes int
}

// NewRegexExtractor creates an extractor that falls back to defaultMinutes
// when the arrival-time reply contains no digits.
func NewRegexExtractor(defaultMinutes int) *RegexExtractor {
	if defaultMinutes <= 0 {
		defaultMinutes = 10
	}
	return &RegexExtractor{defaultMinutes: defaultMinutes}
}

// Minutes returns the first decimal digit run found anywhere in the reply.
func (e *RegexExtractor) Minutes(reply string) int {
	m := digitsRe.FindString(reply)
	if m == "" {
		return e.defaultMinutes
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return e.defaultMinutes
	}
	return n
}

// Fields locates the JSON object span in the reply and parses it. Every
// key is independently defaulted: an empty object is a valid extraction.
func (e *RegexExtractor) Fields(reply string) (order.ExtractedFields, error) {
	span := objectRe.FindString(reply)
	if span == "" {
		return order.ExtractedFields{}, fmt.Errorf("%w: no JSON object in reply", ErrParse)
	}

	var m map[string]any
	if err := json.Unmarshal([]byte(span), &m); err != nil {
		return order.ExtractedFields{}, fmt.Errorf("%w: %v", ErrParse, err)
	}

	return order.FieldsFromMap(m), nil
}
