package prompts

import "fmt"

// personaTemplate renders the in-character system instruction for one
// persona. Format verbs: identity statement, personality, expertise.
// The closing directive is fixed: it is what keeps replies short, in
// character, and scoped to the persona's expertise.
const personaTemplate = `%s

Your personality: %s
Your expertise: %s

Respond as this persona would, staying in character. Keep responses concise (2-3 sentences) and actionable.
Focus on insights relevant to your expertise area.`

// PersonaSystem returns the system instruction for a persona. The caller
// resolves attribute fallbacks (personality vs mindset, expertise vs role)
// before interpolation; description may be empty.
func PersonaSystem(name, role, description, personality, expertise string) string {
	identity := fmt.Sprintf("You are %s, %s.", name, role)
	if description != "" {
		identity += " " + description
	}
	return fmt.Sprintf(personaTemplate, identity, personality, expertise)
}
