// Package order defines the canonical order record and builds it from the
// fields extracted out of the conversation.
package order

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/mokabrew/baristad/internal/profile"
)

// ExtractedFields holds the order details pulled from the model's
// extraction reply. Model output is untrusted text: every field is
// independently defaulted, and Price tolerates numbers arriving as strings.
type ExtractedFields struct {
	Menu        string
	Temperature string
	Size        string
	Extra       string
	Price       float64
}

// FieldsFromMap builds ExtractedFields from a parsed JSON object, defaulting
// each missing or mistyped key to the zero value.
func FieldsFromMap(m map[string]any) ExtractedFields {
	return ExtractedFields{
		Menu:        stringField(m, "menu"),
		Temperature: stringField(m, "temp"),
		Size:        stringField(m, "size"),
		Extra:       stringField(m, "extra"),
		Price:       numberField(m, "price"),
	}
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func numberField(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// FinalOrder is the canonical persisted record for one completed order.
// It is immutable after creation; the persistence layer replaces it
// wholesale on upsert, keyed by ID.
type FinalOrder struct {
	ID          string  `bson:"_id,omitempty" json:"id,omitempty"`
	Customer    string  `bson:"customer" json:"customer"`
	Number      string  `bson:"number" json:"number"`
	Menu        string  `bson:"menu" json:"menu"`
	Temperature string  `bson:"temperature,omitempty" json:"temperature,omitempty"`
	Size        string  `bson:"size" json:"size"`
	Extra       string  `bson:"extra" json:"extra"`
	Price       float64 `bson:"price" json:"price"`
	ETA         string  `bson:"ETA" json:"ETA"`
}

// Finalizer merges extracted fields with the customer profile and a
// computed arrival time into a FinalOrder.
type Finalizer struct {
	loc *time.Location
	now func() time.Time
}

// NewFinalizer creates a finalizer that computes arrival times in the given
// reference timezone.
func NewFinalizer(loc *time.Location) *Finalizer {
	return NewFinalizerWithClock(loc, time.Now)
}

// NewFinalizerWithClock creates a finalizer with an explicit clock. The
// wall-clock read is the only non-deterministic input to Finalize, so tests
// pin it here.
func NewFinalizerWithClock(loc *time.Location, now func() time.Time) *Finalizer {
	return &Finalizer{loc: loc, now: now}
}

// Finalize builds the canonical order record. The ETA is the current
// wall-clock time plus the given minutes, formatted as zero-padded 24-hour
// HH:MM with no date component, so it wraps silently at midnight.
func (f *Finalizer) Finalize(fields ExtractedFields, minutes int, p *profile.Profile) *FinalOrder {
	eta := f.now().In(f.loc).Add(time.Duration(minutes) * time.Minute)

	return &FinalOrder{
		Customer:    p.Name,
		Number:      p.PhoneNumber,
		Menu:        fields.Menu,
		Temperature: fields.Temperature,
		Size:        fields.Size,
		Extra:       fields.Extra,
		Price:       fields.Price,
		ETA:         eta.Format("15:04"),
	}
}
