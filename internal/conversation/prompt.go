package conversation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mokabrew/baristad/internal/profile"
)

// BuildSystemPrompt renders the ordering-flow system prompt for a customer.
// The prompt drives the scripted dialogue: recommendation, normal order, or
// saved-nickname order, always ending at the payment-confirmation question.
func BuildSystemPrompt(p *profile.Profile) string {
	favorites := jsonList(p.FavoriteDrinks)
	saved := jsonList(p.SavedMenu)
	total := jsonList(p.TotalMenu)

	var sb strings.Builder
	sb.WriteString("You are a coffee-shop voice-ordering agent. Follow this flow and respond only in English:\n\n")

	sb.WriteString("1) Ask if the customer wants:\n")
	sb.WriteString("   - a menu recommendation,\n")
	sb.WriteString("   - a normal menu order, or\n")
	sb.WriteString("   - to order from a saved nickname.\n\n")

	sb.WriteString("2) If recommendation:\n")
	fmt.Fprintf(&sb, "   - Recommend from favorite_drinks: %s\n", favorites)
	sb.WriteString("   - Ask \"Which of these would you like?\"\n\n")

	sb.WriteString("3) If saved nickname:\n")
	sb.WriteString("   - Ask \"Please tell me your nickname.\"\n")
	fmt.Fprintf(&sb, "   - Match against saved_menu on the \"nickname\" field: %s\n", saved)
	sb.WriteString("   - Ask \"Is this correct?\" to confirm menu, size, extra, price.\n\n")

	sb.WriteString("4) If normal order:\n")
	fmt.Fprintf(&sb, "   - Ask \"What menu item would you like?\" (from total_menu: %s)\n", total)
	sb.WriteString("   - Ask \"Any extras?\"\n")
	sb.WriteString("   - Ask \"What size?\"\n")
	sb.WriteString("   - Ask \"Anything else to add?\"\n")
	sb.WriteString("   - If \"no,\" go to payment.\n\n")

	sb.WriteString("5) At the end of ordering, always ask: \"Would you like to proceed to payment?\"\n\n")

	sb.WriteString("6) At payment confirmation (\"Yes, proceed to payment\" etc.),\n")
	sb.WriteString("   - Ask \"How many minutes until your order arrives?\"\n")
	sb.WriteString("   - The final order details (menu, size, extra, price) will be extracted from our conversation.\n")

	return sb.String()
}

// jsonList renders a slice as compact JSON for embedding in the prompt.
// Falls back to %v formatting on marshal failure so the prompt never breaks.
func jsonList(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
