package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mokabrew/baristad/internal/profile"
)

func TestNewSession_SeedsSystemPrompt(t *testing.T) {
	s := NewSession("you are a barista")

	msgs := s.Snapshot()
	require.Len(t, msgs, 1)
	assert.Equal(t, RoleSystem, msgs[0].Role)
	assert.Equal(t, "you are a barista", msgs[0].Content)
}

func TestSession_AppendPreservesOrder(t *testing.T) {
	s := NewSession("prompt")
	s.Append(RoleUser, "I'd like a latte")
	s.Append(RoleAssistant, "What size?")
	s.Append(RoleUser, "Grande")

	msgs := s.Snapshot()
	require.Len(t, msgs, 4)
	assert.Equal(t, RoleSystem, msgs[0].Role)
	assert.Equal(t, "I'd like a latte", msgs[1].Content)
	assert.Equal(t, "What size?", msgs[2].Content)
	assert.Equal(t, "Grande", msgs[3].Content)
	assert.Equal(t, 4, s.Len())
}

func TestSession_SnapshotIsACopy(t *testing.T) {
	s := NewSession("prompt")
	s.Append(RoleUser, "hello")

	snap := s.Snapshot()
	snap[0].Content = "mutated"

	assert.Equal(t, "prompt", s.Snapshot()[0].Content)
}

func TestBuildSystemPrompt(t *testing.T) {
	p := &profile.Profile{
		Name:           "Justin",
		PhoneNumber:    "010-1234-5678",
		FavoriteDrinks: []string{"Cold Brew"},
		SavedMenu: []profile.SavedItem{
			{Nickname: "the usual", Menu: "Latte", Size: "Grande", Extra: "oat milk", Price: 5.25},
		},
		TotalMenu: []string{"Latte", "Americano"},
	}

	prompt := BuildSystemPrompt(p)

	assert.Contains(t, prompt, `"Cold Brew"`)
	assert.Contains(t, prompt, `"the usual"`)
	assert.Contains(t, prompt, `"Americano"`)
	assert.Contains(t, prompt, "proceed to payment")
}
