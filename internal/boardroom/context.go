package boardroom

import (
	"fmt"

	"github.com/Anirach/GenSPK-AI-Board/internal/llm"
	"github.com/Anirach/GenSPK-AI-Board/internal/store"
)

// contextWindow is the number of prior messages injected into each
// persona's completion call.
const contextWindow = 10

// contextAssembler loads a bounded slice of prior messages and normalizes
// them into role-tagged turns suitable for a completion request.
type contextAssembler struct {
	store *store.Store
}

// assemble returns the conversation's opening turns as completion messages.
// An empty conversation id yields no context.
//
// TODO: the window covers the FIRST contextWindow messages, not the most
// recent ones; long conversations drift to stale early turns. Switching to
// a tail window needs a descending fetch plus reverse, and a product
// decision on whether existing conversations should change behavior.
func (a *contextAssembler) assemble(conversationID string) ([]llm.Message, error) {
	if conversationID == "" {
		return nil, nil
	}

	messages, err := a.store.FirstMessages(conversationID, contextWindow)
	if err != nil {
		return nil, fmt.Errorf("load context: %w", err)
	}

	names := map[string]string{}
	turns := make([]llm.Message, 0, len(messages))
	for _, m := range messages {
		if m.Type == store.MessageUser {
			turns = append(turns, llm.Message{Role: llm.RoleUser, Content: m.Content})
			continue
		}

		// Non-user turns read as assistant output, prefixed with the
		// speaking persona's name so personas can tell each other apart.
		// If the persona is gone, fall back to the bare content.
		content := m.Content
		if m.PersonaID != "" {
			name, ok := names[m.PersonaID]
			if !ok {
				if p, err := a.store.GetPersona(m.PersonaID); err == nil && p != nil {
					name = p.Name
				}
				names[m.PersonaID] = name
			}
			if name != "" {
				content = name + ": " + m.Content
			}
		}
		turns = append(turns, llm.Message{Role: llm.RoleAssistant, Content: content})
	}

	return turns, nil
}
