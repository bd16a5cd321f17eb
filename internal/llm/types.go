package llm

// Message roles understood by completion providers.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents one role-tagged chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request carries the inputs for one completion call.
type Request struct {
	// Messages is the full prompt: system instruction, prior context
	// turns, then the live user turn.
	Messages []Message

	// MaxTokens bounds generated output length.
	MaxTokens int

	// Temperature controls sampling variance. Chat replies run warm
	// (0.7), summaries run cool (0.3).
	Temperature float64
}

// Completion is the unified response from any provider.
// Wire format conversion happens at provider boundaries (openai.go).
type Completion struct {
	Content string
	Model   string

	// Token usage (provider-neutral)
	InputTokens  int
	OutputTokens int
}
