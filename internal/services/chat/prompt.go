package chat

import (
	"fmt"
	"strings"

	"github.com/companionhq/companion/internal/domain"
)

// DefaultPersona is used when no personality profile matches the chat call.
const DefaultPersona = "You are a friendly, empathetic AI companion. Be supportive, caring, and engaging in conversation. Always respond in a warm and personal manner.\n\n"

const promptInstructions = "Instructions: Respond as a caring AI companion. Use the custom knowledge when relevant to provide helpful and accurate information. Keep responses conversational and engaging."

// BuildSystemPrompt concatenates the personality block, the user's knowledge
// base and the fixed instruction into a single system prompt. All knowledge
// text is included verbatim on every call; there is no truncation or ranking.
func BuildSystemPrompt(personality *domain.Personality, knowledgeTexts []string) string {
	var b strings.Builder

	if personality != nil {
		fmt.Fprintf(&b, "Personality: %s\nTraits: %s\n\n",
			personality.Description, strings.Join(personality.Traits, ", "))
	} else {
		b.WriteString(DefaultPersona)
	}

	if len(knowledgeTexts) > 0 {
		b.WriteString("Custom Knowledge:\n")
		b.WriteString(strings.Join(knowledgeTexts, "\n\n"))
		b.WriteString("\n\n")
	}

	b.WriteString(promptInstructions)
	return b.String()
}
