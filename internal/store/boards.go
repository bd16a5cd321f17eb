package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateBoard inserts a board, assigning its ID and timestamps.
func (s *Store) CreateBoard(b *Board) error {
	now := time.Now().UTC()
	id, _ := uuid.NewV7()
	b.ID = id.String()
	b.CreatedAt = now
	b.UpdatedAt = now

	_, err := s.db.Exec(`
		INSERT INTO boards (id, user_id, name, description, is_public, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, b.ID, b.UserID, b.Name, b.Description, b.IsPublic, now, now)
	if err != nil {
		return fmt.Errorf("insert board: %w", err)
	}
	return nil
}

// GetBoard retrieves a board with its roster loaded in insertion order.
// Returns nil if not found.
func (s *Store) GetBoard(id string) (*Board, error) {
	row := s.db.QueryRow(`
		SELECT id, user_id, name, description, is_public, created_at, updated_at
		FROM boards WHERE id = ?
	`, id)

	var b Board
	err := row.Scan(&b.ID, &b.UserID, &b.Name, &b.Description, &b.IsPublic, &b.CreatedAt, &b.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get board: %w", err)
	}

	personas, err := s.boardRoster(id)
	if err != nil {
		return nil, err
	}
	b.Personas = personas
	return &b, nil
}

// boardRoster loads a board's personas ordered by roster position.
func (s *Store) boardRoster(boardID string) ([]Persona, error) {
	rows, err := s.db.Query(`
		SELECT p.id, p.name, p.role, p.description, p.personality, p.mindset, p.expertise, p.created_at, p.updated_at
		FROM board_personas bp
		JOIN personas p ON p.id = bp.persona_id
		WHERE bp.board_id = ?
		ORDER BY bp.position ASC
	`, boardID)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	defer rows.Close()

	var personas []Persona
	for rows.Next() {
		p, err := scanPersona(rows)
		if err != nil {
			return nil, fmt.Errorf("scan roster persona: %w", err)
		}
		personas = append(personas, *p)
	}
	return personas, rows.Err()
}

// ListBoards returns boards visible to userID: their own plus public ones,
// most recently updated first.
func (s *Store) ListBoards(userID string) ([]Board, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, name, description, is_public, created_at, updated_at
		FROM boards
		WHERE user_id = ? OR is_public = TRUE
		ORDER BY updated_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	defer rows.Close()

	var boards []Board
	for rows.Next() {
		var b Board
		if err := rows.Scan(&b.ID, &b.UserID, &b.Name, &b.Description, &b.IsPublic,
			&b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan board: %w", err)
		}
		boards = append(boards, b)
	}
	return boards, rows.Err()
}

// UpdateBoard updates a board's mutable fields.
func (s *Store) UpdateBoard(b *Board) error {
	b.UpdatedAt = time.Now().UTC()
	res, err := s.db.Exec(`
		UPDATE boards SET name = ?, description = ?, is_public = ?, updated_at = ?
		WHERE id = ?
	`, b.Name, b.Description, b.IsPublic, b.UpdatedAt, b.ID)
	if err != nil {
		return fmt.Errorf("update board: %w", err)
	}
	return requireRow(res)
}

// DeleteBoard removes a board, its roster rows, and its conversations.
func (s *Store) DeleteBoard(id string) error {
	res, err := s.db.Exec(`DELETE FROM boards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete board: %w", err)
	}
	return requireRow(res)
}

// AddBoardPersona appends a persona to the end of a board's roster.
// Adding an existing member is a no-op.
func (s *Store) AddBoardPersona(boardID, personaID string) error {
	_, err := s.db.Exec(`
		INSERT OR IGNORE INTO board_personas (board_id, persona_id, position)
		VALUES (?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM board_personas WHERE board_id = ?))
	`, boardID, personaID, boardID)
	if err != nil {
		return fmt.Errorf("add board persona: %w", err)
	}
	return nil
}

// RemoveBoardPersona removes a persona from a board's roster.
// Positions of remaining members are untouched; relative order is what matters.
func (s *Store) RemoveBoardPersona(boardID, personaID string) error {
	res, err := s.db.Exec(`
		DELETE FROM board_personas WHERE board_id = ? AND persona_id = ?
	`, boardID, personaID)
	if err != nil {
		return fmt.Errorf("remove board persona: %w", err)
	}
	return requireRow(res)
}
