package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateConversation inserts a conversation, assigning its ID and timestamps.
func (s *Store) CreateConversation(c *Conversation) error {
	now := time.Now().UTC()
	id, _ := uuid.NewV7()
	c.ID = id.String()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := s.db.Exec(`
		INSERT INTO conversations (id, user_id, board_id, title, context, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.UserID, c.BoardID, c.Title, c.Context, now, now)
	if err != nil {
		return fmt.Errorf("insert conversation: %w", err)
	}
	return nil
}

// GetConversation retrieves a conversation by ID. Returns nil if not found.
func (s *Store) GetConversation(id string) (*Conversation, error) {
	row := s.db.QueryRow(`
		SELECT id, user_id, board_id, title, context, created_at, updated_at
		FROM conversations WHERE id = ?
	`, id)

	var c Conversation
	err := row.Scan(&c.ID, &c.UserID, &c.BoardID, &c.Title, &c.Context, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	return &c, nil
}

// ListConversations returns a user's conversations, most recently updated
// first. A non-empty boardID narrows the result to one board.
func (s *Store) ListConversations(userID, boardID string) ([]Conversation, error) {
	query := `
		SELECT id, user_id, board_id, title, context, created_at, updated_at
		FROM conversations WHERE user_id = ?`
	args := []any{userID}
	if boardID != "" {
		query += ` AND board_id = ?`
		args = append(args, boardID)
	}
	query += ` ORDER BY updated_at DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var convs []Conversation
	for rows.Next() {
		var c Conversation
		if err := rows.Scan(&c.ID, &c.UserID, &c.BoardID, &c.Title, &c.Context,
			&c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		convs = append(convs, c)
	}
	return convs, rows.Err()
}

// UpdateConversation updates a conversation's title and context.
func (s *Store) UpdateConversation(c *Conversation) error {
	c.UpdatedAt = time.Now().UTC()
	res, err := s.db.Exec(`
		UPDATE conversations SET title = ?, context = ?, updated_at = ?
		WHERE id = ?
	`, c.Title, c.Context, c.UpdatedAt, c.ID)
	if err != nil {
		return fmt.Errorf("update conversation: %w", err)
	}
	return requireRow(res)
}

// DeleteConversation removes a conversation and its messages.
func (s *Store) DeleteConversation(id string) error {
	res, err := s.db.Exec(`DELETE FROM conversations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	return requireRow(res)
}

// touchConversation bumps a conversation's updated_at after a message append.
func (s *Store) touchConversation(id string) error {
	_, err := s.db.Exec(`UPDATE conversations SET updated_at = ? WHERE id = ?`,
		time.Now().UTC(), id)
	return err
}
