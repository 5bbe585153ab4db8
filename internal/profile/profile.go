// Package profile loads the static customer profile used to seed the
// ordering conversation.
//
// The profile is read once at startup from a JSON file (user_info.json) and
// is read-only afterwards. It carries the customer's identity, their favorite
// drinks for the recommendation flow, and their saved nickname orders.
package profile

import (
	"encoding/json"
	"fmt"
	"os"
)

// SavedItem is one nickname-addressable order from the customer's history.
type SavedItem struct {
	Nickname string  `json:"nickname"`
	Menu     string  `json:"menu"`
	Size     string  `json:"size"`
	Extra    string  `json:"extra"`
	Price    float64 `json:"price"`
}

// Profile is the static customer record backing one agent session.
type Profile struct {
	Name           string      `json:"name"`
	PhoneNumber    string      `json:"phone_number"`
	Age            int         `json:"age,omitempty"`
	FavoriteDrinks []string    `json:"favorite_drinks"`
	SavedMenu      []SavedItem `json:"saved_menu"`
	TotalMenu      []string    `json:"total_menu"`
}

// Load reads and validates a customer profile from a JSON file.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile: %w", err)
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing profile: %w", err)
	}

	if p.Name == "" {
		return nil, fmt.Errorf("profile %s: missing required field %q", path, "name")
	}
	if p.PhoneNumber == "" {
		return nil, fmt.Errorf("profile %s: missing required field %q", path, "phone_number")
	}

	return &p, nil
}
