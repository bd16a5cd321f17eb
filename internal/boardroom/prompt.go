package boardroom

import (
	"strings"

	"github.com/Anirach/GenSPK-AI-Board/internal/prompts"
	"github.com/Anirach/GenSPK-AI-Board/internal/store"
)

// PersonaPrompt renders a persona's attributes into the system instruction
// that keeps the model in character. Pure function of persona state.
//
// Fallback chain: personality falls back to mindset, then to a generic
// default; the expertise line falls back to the persona's role.
func PersonaPrompt(p store.Persona) string {
	personality := p.Personality
	if personality == "" {
		personality = p.Mindset
	}
	if personality == "" {
		personality = "Professional and helpful"
	}

	expertise := strings.Join(p.Expertise, ", ")
	if expertise == "" {
		expertise = p.Role
	}

	return prompts.PersonaSystem(p.Name, p.Role, p.Description, personality, expertise)
}
