package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreatePersona inserts a persona, assigning its ID and timestamps.
func (s *Store) CreatePersona(p *Persona) error {
	now := time.Now().UTC()
	id, _ := uuid.NewV7()
	p.ID = id.String()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := s.db.Exec(`
		INSERT INTO personas (id, name, role, description, personality, mindset, expertise, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Name, p.Role, p.Description, p.Personality, p.Mindset, encodeExpertise(p.Expertise), now, now)
	if err != nil {
		return fmt.Errorf("insert persona: %w", err)
	}
	return nil
}

// GetPersona retrieves a persona by ID. Returns nil if not found.
func (s *Store) GetPersona(id string) (*Persona, error) {
	row := s.db.QueryRow(`
		SELECT id, name, role, description, personality, mindset, expertise, created_at, updated_at
		FROM personas WHERE id = ?
	`, id)

	p, err := scanPersona(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get persona: %w", err)
	}
	return p, nil
}

// ListPersonas returns all personas, newest first.
func (s *Store) ListPersonas() ([]Persona, error) {
	rows, err := s.db.Query(`
		SELECT id, name, role, description, personality, mindset, expertise, created_at, updated_at
		FROM personas ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list personas: %w", err)
	}
	defer rows.Close()

	var personas []Persona
	for rows.Next() {
		p, err := scanPersona(rows)
		if err != nil {
			return nil, fmt.Errorf("scan persona: %w", err)
		}
		personas = append(personas, *p)
	}
	return personas, rows.Err()
}

// UpdatePersona updates a persona's mutable fields.
func (s *Store) UpdatePersona(p *Persona) error {
	p.UpdatedAt = time.Now().UTC()
	res, err := s.db.Exec(`
		UPDATE personas
		SET name = ?, role = ?, description = ?, personality = ?, mindset = ?, expertise = ?, updated_at = ?
		WHERE id = ?
	`, p.Name, p.Role, p.Description, p.Personality, p.Mindset, encodeExpertise(p.Expertise), p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("update persona: %w", err)
	}
	return requireRow(res)
}

// DeletePersona removes a persona and its roster memberships.
func (s *Store) DeletePersona(id string) error {
	res, err := s.db.Exec(`DELETE FROM personas WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete persona: %w", err)
	}
	return requireRow(res)
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanPersona(sc scanner) (*Persona, error) {
	var p Persona
	var expertise string
	if err := sc.Scan(&p.ID, &p.Name, &p.Role, &p.Description, &p.Personality,
		&p.Mindset, &expertise, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Expertise = decodeExpertise(expertise)
	return &p, nil
}

// encodeExpertise serializes the expertise list for storage.
func encodeExpertise(expertise []string) string {
	if len(expertise) == 0 {
		return "[]"
	}
	data, err := json.Marshal(expertise)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// decodeExpertise parses stored expertise text. Malformed or empty text
// decodes to nil rather than failing the whole row.
func decodeExpertise(text string) []string {
	if text == "" || text == "[]" {
		return nil
	}
	var expertise []string
	if err := json.Unmarshal([]byte(text), &expertise); err != nil {
		return nil
	}
	return expertise
}

// requireRow converts a zero-row update/delete into sql.ErrNoRows so
// callers can distinguish "not found" from success.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
