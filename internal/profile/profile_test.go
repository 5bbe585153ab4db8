package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "user_info.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeProfile(t, `{
		"name": "Justin",
		"phone_number": "010-1234-5678",
		"age": 27,
		"favorite_drinks": ["Caramel Macchiato", "Cold Brew"],
		"saved_menu": [
			{"nickname": "the usual", "menu": "Latte", "size": "Grande", "extra": "oat milk", "price": 5.25}
		],
		"total_menu": ["Latte", "Americano", "Cold Brew"]
	}`)

	p, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Justin", p.Name)
	assert.Equal(t, "010-1234-5678", p.PhoneNumber)
	assert.Equal(t, 27, p.Age)
	assert.Len(t, p.FavoriteDrinks, 2)
	require.Len(t, p.SavedMenu, 1)
	assert.Equal(t, "the usual", p.SavedMenu[0].Nickname)
	assert.Equal(t, 5.25, p.SavedMenu[0].Price)
	assert.Equal(t, []string{"Latte", "Americano", "Cold Brew"}, p.TotalMenu)
}

func TestLoad_MissingRequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no name", `{"phone_number": "010-1234-5678"}`},
		{"no phone", `{"name": "Justin"}`},
		{"invalid json", `{"name": `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeProfile(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
