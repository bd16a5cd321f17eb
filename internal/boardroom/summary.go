package boardroom

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Anirach/GenSPK-AI-Board/internal/llm"
	"github.com/Anirach/GenSPK-AI-Board/internal/prompts"
	"github.com/Anirach/GenSPK-AI-Board/internal/store"
)

// SummaryFormat selects the summary prompt and generation budget.
type SummaryFormat string

// Supported summary formats.
const (
	FormatDetailed  SummaryFormat = "detailed"
	FormatExecutive SummaryFormat = "executive"
)

// Generation budgets per format. Summaries run at a fixed low temperature:
// they favor faithfulness over creative variation, unlike chat replies.
const (
	summaryTemperature      = 0.3
	executiveSummaryTokens  = 400
	detailedSummaryTokens   = 800
	unknownPersonaName      = "Advisor"
	emptySummaryFallback    = "Unable to generate summary."
	summaryTranscriptJoiner = "\n\n"
)

// ParseSummaryFormat validates a requested format. Empty defaults to
// detailed.
func ParseSummaryFormat(s string) (SummaryFormat, error) {
	switch SummaryFormat(s) {
	case "":
		return FormatDetailed, nil
	case FormatDetailed, FormatExecutive:
		return SummaryFormat(s), nil
	default:
		return "", fmt.Errorf("unknown summary format %q: %w", s, ErrValidation)
	}
}

// Summary is the structured digest of one conversation. Not persisted.
type Summary struct {
	ConversationID    string        `json:"conversationId"`
	ConversationTitle string        `json:"conversationTitle"`
	BoardName         string        `json:"boardName"`
	Date              string        `json:"date"`
	Participants      []string      `json:"participants"`
	MessageCount      int           `json:"messageCount"`
	Summary           string        `json:"summary"`
	Format            SummaryFormat `json:"format"`
	GeneratedAt       time.Time     `json:"generatedAt"`
}

// Composer turns an entire conversation transcript into a single
// structured summary via one completion call.
type Composer struct {
	store  *store.Store
	client llm.Client
	logger *slog.Logger
}

// NewComposer creates a summary composer over the given store and
// completion client.
func NewComposer(st *store.Store, client llm.Client, logger *slog.Logger) *Composer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Composer{
		store:  st,
		client: client,
		logger: logger.With("component", "summary"),
	}
}

// Summarize builds a transcript of the whole conversation and asks the
// completion service for a digest in the requested format. The
// conversation must exist, belong to the caller, and contain at least one
// message; those checks run before any external call. Unlike persona
// chat, a failed completion call fails the whole request. A partial
// summary is not useful.
func (c *Composer) Summarize(ctx context.Context, conversationID, callerID string, format SummaryFormat) (*Summary, error) {
	conv, err := c.store.GetConversation(conversationID)
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	// An unowned conversation reads the same as a missing one: summaries
	// are owner-only, public boards notwithstanding.
	if conv == nil || conv.UserID != callerID {
		return nil, fmt.Errorf("conversation %s: %w", conversationID, ErrNotFound)
	}

	messages, err := c.store.AllMessages(conversationID)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}
	if len(messages) == 0 {
		return nil, fmt.Errorf("no messages found in conversation: %w", ErrValidation)
	}

	board, err := c.store.GetBoard(conv.BoardID)
	if err != nil {
		return nil, fmt.Errorf("load board: %w", err)
	}
	if board == nil {
		return nil, fmt.Errorf("board %s: %w", conv.BoardID, ErrNotFound)
	}

	transcript := buildTranscript(messages, board.Personas)

	var prompt string
	var maxTokens int
	switch format {
	case FormatExecutive:
		prompt = prompts.ExecutiveSummary(transcript)
		maxTokens = executiveSummaryTokens
	default:
		prompt = prompts.DetailedSummary(transcript)
		maxTokens = detailedSummaryTokens
	}

	completion, err := c.client.Complete(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: prompts.SummarySystem},
			{Role: llm.RoleUser, Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: summaryTemperature,
	})
	if err != nil {
		c.logger.Error("summary generation failed",
			"conversation", conversationID,
			"format", format,
			"error", err,
		)
		return nil, fmt.Errorf("%w: %v", ErrExternalService, err)
	}

	text := completion.Content
	if text == "" {
		text = emptySummaryFallback
	}

	participants := make([]string, len(board.Personas))
	for i, p := range board.Personas {
		participants[i] = p.Name
	}

	return &Summary{
		ConversationID:    conv.ID,
		ConversationTitle: conv.Title,
		BoardName:         board.Name,
		Date:              conv.CreatedAt.Format("2006-01-02"),
		Participants:      participants,
		MessageCount:      len(messages),
		Summary:           text,
		Format:            format,
		GeneratedAt:       time.Now().UTC(),
	}, nil
}

// buildTranscript renders messages as plain text, one speaker-labelled
// block per turn. Persona speakers are resolved from the board roster,
// with a generic label for personas no longer on it.
func buildTranscript(messages []store.Message, roster []store.Persona) string {
	names := make(map[string]string, len(roster))
	for _, p := range roster {
		names[p.ID] = p.Name
	}

	turns := make([]string, 0, len(messages))
	for _, m := range messages {
		switch m.Type {
		case store.MessageUser:
			turns = append(turns, "User: "+m.Content)
		case store.MessagePersona:
			name := names[m.PersonaID]
			if name == "" {
				name = unknownPersonaName
			}
			turns = append(turns, name+": "+m.Content)
		default:
			turns = append(turns, m.Content)
		}
	}
	return strings.Join(turns, summaryTranscriptJoiner)
}
