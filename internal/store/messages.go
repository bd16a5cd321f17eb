package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AppendMessage inserts a message and bumps the conversation's updated_at.
// The message's actor references must be consistent with its type; use the
// NewUserMessage/NewPersonaMessage/NewSystemMessage constructors.
func (s *Store) AppendMessage(m *Message) error {
	if err := validateMessage(m); err != nil {
		return err
	}

	now := time.Now().UTC()
	id, _ := uuid.NewV7()
	m.ID = id.String()
	m.CreatedAt = now

	var userID, personaID any
	if m.UserID != "" {
		userID = m.UserID
	}
	if m.PersonaID != "" {
		personaID = m.PersonaID
	}

	_, err := s.db.Exec(`
		INSERT INTO messages (id, conversation_id, type, user_id, persona_id, content, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.ConversationID, string(m.Type), userID, personaID, m.Content, now)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	return s.touchConversation(m.ConversationID)
}

// validateMessage enforces the actor/type invariant: USER messages carry a
// user reference and no persona reference, PERSONA messages the reverse,
// SYSTEM messages neither.
func validateMessage(m *Message) error {
	switch m.Type {
	case MessageUser:
		if m.UserID == "" || m.PersonaID != "" {
			return fmt.Errorf("user message must reference a user and no persona")
		}
	case MessagePersona:
		if m.PersonaID == "" || m.UserID != "" {
			return fmt.Errorf("persona message must reference a persona and no user")
		}
	case MessageSystem:
		if m.UserID != "" || m.PersonaID != "" {
			return fmt.Errorf("system message must not reference a user or persona")
		}
	default:
		return fmt.Errorf("unknown message type %q", m.Type)
	}
	return nil
}

// FirstMessages returns up to limit messages in creation order, oldest
// first. Note this is the start of the conversation, not its tail; the
// context assembler depends on exactly this behavior.
func (s *Store) FirstMessages(conversationID string, limit int) ([]Message, error) {
	rows, err := s.db.Query(`
		SELECT id, conversation_id, type, user_id, persona_id, content, created_at
		FROM messages
		WHERE conversation_id = ?
		ORDER BY created_at ASC, id ASC
		LIMIT ?
	`, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	return collectMessages(rows)
}

// AllMessages returns every message of a conversation in creation order.
func (s *Store) AllMessages(conversationID string) ([]Message, error) {
	rows, err := s.db.Query(`
		SELECT id, conversation_id, type, user_id, persona_id, content, created_at
		FROM messages
		WHERE conversation_id = ?
		ORDER BY created_at ASC, id ASC
	`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	return collectMessages(rows)
}

// CountMessages returns the number of messages in a conversation.
func (s *Store) CountMessages(conversationID string) (int, error) {
	var n int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM messages WHERE conversation_id = ?
	`, conversationID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return n, nil
}

// GetMessage retrieves one message scoped to a conversation.
// Returns nil if not found.
func (s *Store) GetMessage(conversationID, messageID string) (*Message, error) {
	row := s.db.QueryRow(`
		SELECT id, conversation_id, type, user_id, persona_id, content, created_at
		FROM messages
		WHERE id = ? AND conversation_id = ?
	`, messageID, conversationID)

	m, err := scanMessage(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get message: %w", err)
	}
	return m, nil
}

// DeleteMessage removes one message scoped to a conversation.
func (s *Store) DeleteMessage(conversationID, messageID string) error {
	res, err := s.db.Exec(`
		DELETE FROM messages WHERE id = ? AND conversation_id = ?
	`, messageID, conversationID)
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return requireRow(res)
}

func collectMessages(rows *sql.Rows) ([]Message, error) {
	var messages []Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, *m)
	}
	return messages, rows.Err()
}

func scanMessage(sc scanner) (*Message, error) {
	var m Message
	var msgType string
	var userID, personaID sql.NullString
	if err := sc.Scan(&m.ID, &m.ConversationID, &msgType, &userID, &personaID,
		&m.Content, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.Type = MessageType(msgType)
	if userID.Valid {
		m.UserID = userID.String
	}
	if personaID.Valid {
		m.PersonaID = personaID.String
	}
	return &m, nil
}
