// Package boardroom orchestrates persona responses and conversation
// summaries on top of the store and the completion service.
package boardroom

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Anirach/GenSPK-AI-Board/internal/llm"
	"github.com/Anirach/GenSPK-AI-Board/internal/store"
)

// Generation parameters for in-character chat replies. Warm temperature
// favors variety over determinism; the token budget keeps replies short.
const (
	chatMaxTokens   = 200
	chatTemperature = 0.7
)

// maxDefaultPersonas caps the responding set when the caller selects no
// personas. Bounds per-request latency and completion cost; deliberately
// not caller-configurable.
const maxDefaultPersonas = 3

// degradedTemplate is the canned reply substituted when one persona's
// completion call fails. The single format verb is the persona name.
const degradedTemplate = "As %s, I'd be happy to help with that. Could you provide more context about your specific situation?"

// thinkingFallback stands in for a successful call that produced no text.
const thinkingFallback = "I'm thinking about your question..."

// Config controls orchestrator behavior.
type Config struct {
	// CallTimeout bounds each persona's completion call. A timed-out
	// call degrades that persona's reply without affecting the others.
	// Default: 30 seconds.
	CallTimeout time.Duration
}

func (c *Config) applyDefaults() {
	if c.CallTimeout <= 0 {
		c.CallTimeout = 30 * time.Second
	}
}

// GenerateRequest carries the inputs for one response generation.
type GenerateRequest struct {
	// BoardID selects the advisory panel.
	BoardID string

	// CallerID identifies the requesting user for access checks.
	CallerID string

	// Message is the user's current message.
	Message string

	// ConversationID, when set, injects prior turns as context.
	ConversationID string

	// SelectedPersonaIDs restricts the responding set. Empty means the
	// first personas of the roster respond, capped at maxDefaultPersonas.
	SelectedPersonaIDs []string
}

// PersonaResponse is one persona's reply. Not persisted; returned to the
// caller only.
type PersonaResponse struct {
	PersonaID   string `json:"personaId"`
	PersonaName string `json:"personaName"`
	Response    string `json:"response"`

	// Degraded marks a templated fallback substituted for a failed
	// completion call. Internal bookkeeping; not part of the wire format.
	Degraded bool `json:"-"`
}

// Orchestrator selects responding personas, fans out one completion call
// per persona, isolates per-persona failures, and returns replies in
// roster order.
type Orchestrator struct {
	store     *store.Store
	client    llm.Client
	assembler *contextAssembler
	logger    *slog.Logger
	config    Config
}

// NewOrchestrator creates an orchestrator over the given store and
// completion client.
func NewOrchestrator(st *store.Store, client llm.Client, logger *slog.Logger, cfg Config) *Orchestrator {
	cfg.applyDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		store:     st,
		client:    client,
		assembler: &contextAssembler{store: st},
		logger:    logger.With("component", "orchestrator"),
		config:    cfg,
	}
}

// Generate produces one reply per responding persona, in roster order.
// Access and existence checks run before any completion call; after that
// point individual call failures degrade to a templated reply and never
// fail the request.
func (o *Orchestrator) Generate(ctx context.Context, req GenerateRequest) ([]PersonaResponse, error) {
	board, err := o.store.GetBoard(req.BoardID)
	if err != nil {
		return nil, fmt.Errorf("load board: %w", err)
	}
	if board == nil {
		return nil, fmt.Errorf("board %s: %w", req.BoardID, ErrNotFound)
	}
	if !board.IsPublic && board.UserID != req.CallerID {
		return nil, fmt.Errorf("board %s: %w", req.BoardID, ErrForbidden)
	}

	history, err := o.assembler.assemble(req.ConversationID)
	if err != nil {
		return nil, err
	}

	responding := selectResponding(board.Personas, req.SelectedPersonaIDs)

	// Fan out one completion call per persona, then join. Outcome slots
	// are pre-indexed by selection position so completion timing never
	// affects ordering. Goroutines report outcomes, never errors: a
	// failed call must not cancel its siblings.
	outcomes := make([]outcome, len(responding))
	var g errgroup.Group
	for i, persona := range responding {
		g.Go(func() error {
			outcomes[i] = o.generateOne(ctx, persona, history, req.Message)
			return nil
		})
	}
	_ = g.Wait()

	return assembleResponses(outcomes), nil
}

// generateOne runs a single persona's completion call under the per-call
// deadline and tags the result.
func (o *Orchestrator) generateOne(ctx context.Context, persona store.Persona, history []llm.Message, userMessage string) outcome {
	callCtx, cancel := context.WithTimeout(ctx, o.config.CallTimeout)
	defer cancel()

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: PersonaPrompt(persona)})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: userMessage})

	completion, err := o.client.Complete(callCtx, llm.Request{
		Messages:    messages,
		MaxTokens:   chatMaxTokens,
		Temperature: chatTemperature,
	})
	if err != nil {
		o.logger.Warn("persona completion failed, degrading",
			"persona", persona.Name,
			"error", err,
		)
		return outcome{persona: persona, kind: outcomeDegraded,
			text: fmt.Sprintf(degradedTemplate, persona.Name)}
	}

	text := completion.Content
	if text == "" {
		text = thinkingFallback
	}
	return outcome{persona: persona, kind: outcomeSuccess, text: text}
}

// selectResponding returns the responding set for a request. An explicit
// selection filters the roster, preserving the roster's own order (not the
// order the ids were supplied in). Without a selection, the first
// maxDefaultPersonas roster members respond.
func selectResponding(roster []store.Persona, selectedIDs []string) []store.Persona {
	if len(selectedIDs) == 0 {
		if len(roster) > maxDefaultPersonas {
			roster = roster[:maxDefaultPersonas]
		}
		return roster
	}

	selected := make(map[string]bool, len(selectedIDs))
	for _, id := range selectedIDs {
		selected[id] = true
	}

	var responding []store.Persona
	for _, p := range roster {
		if selected[p.ID] {
			responding = append(responding, p)
		}
	}
	return responding
}

// outcomeKind tags one persona call's result.
type outcomeKind int

const (
	outcomeSuccess outcomeKind = iota
	outcomeDegraded
)

// outcome pairs a persona with its tagged call result.
type outcome struct {
	persona store.Persona
	kind    outcomeKind
	text    string
}

// assembleResponses reduces ordered outcomes into the caller-visible
// response list. Pure function; order in equals order out.
func assembleResponses(outcomes []outcome) []PersonaResponse {
	responses := make([]PersonaResponse, len(outcomes))
	for i, out := range outcomes {
		responses[i] = PersonaResponse{
			PersonaID:   out.persona.ID,
			PersonaName: out.persona.Name,
			Response:    out.text,
			Degraded:    out.kind == outcomeDegraded,
		}
	}
	return responses
}
