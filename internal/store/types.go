package store

import "time"

// Persona is a configured character a completion call is asked to role-play.
type Persona struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Role        string    `json:"role"`
	Description string    `json:"description,omitempty"`
	Personality string    `json:"personality,omitempty"`
	Mindset     string    `json:"mindset,omitempty"`
	Expertise   []string  `json:"expertise"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Board is a named collection of personas forming an advisory panel.
// Personas holds the roster in insertion order, which is significant:
// response ordering and the default responding set both derive from it.
type Board struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsPublic    bool      `json:"is_public"`
	Personas    []Persona `json:"personas,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Conversation is an ordered exchange between a user and a board.
type Conversation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	BoardID   string    `json:"board_id"`
	Title     string    `json:"title"`
	Context   string    `json:"context,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MessageType tags who produced a message.
type MessageType string

// Message types. USER messages carry a user reference and no persona
// reference; PERSONA messages the reverse; SYSTEM messages carry neither.
const (
	MessageUser    MessageType = "USER"
	MessagePersona MessageType = "PERSONA"
	MessageSystem  MessageType = "SYSTEM"
)

// Message is one turn in a conversation. The UserID/PersonaID fields are
// populated according to Type; use the NewUserMessage/NewPersonaMessage/
// NewSystemMessage constructors so the invariant holds by construction.
type Message struct {
	ID             string      `json:"id"`
	ConversationID string      `json:"conversation_id"`
	Type           MessageType `json:"type"`
	UserID         string      `json:"user_id,omitempty"`
	PersonaID      string      `json:"persona_id,omitempty"`
	Content        string      `json:"content"`
	CreatedAt      time.Time   `json:"created_at"`
}

// NewUserMessage builds a USER message carrying only a user reference.
func NewUserMessage(conversationID, userID, content string) Message {
	return Message{
		ConversationID: conversationID,
		Type:           MessageUser,
		UserID:         userID,
		Content:        content,
	}
}

// NewPersonaMessage builds a PERSONA message carrying only a persona reference.
func NewPersonaMessage(conversationID, personaID, content string) Message {
	return Message{
		ConversationID: conversationID,
		Type:           MessagePersona,
		PersonaID:      personaID,
		Content:        content,
	}
}

// NewSystemMessage builds a SYSTEM message with no actor reference.
func NewSystemMessage(conversationID, content string) Message {
	return Message{
		ConversationID: conversationID,
		Type:           MessageSystem,
		Content:        content,
	}
}
