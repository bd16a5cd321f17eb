package api

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/Anirach/GenSPK-AI-Board/internal/store"
)

// personaBody is the request shape for persona create/update.
type personaBody struct {
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	Description string   `json:"description"`
	Personality string   `json:"personality"`
	Mindset     string   `json:"mindset"`
	Expertise   []string `json:"expertise"`
}

func (s *Server) handlePersonaCreate(w http.ResponseWriter, r *http.Request) {
	if s.requireCaller(w, r) == "" {
		return
	}

	var body personaBody
	if !s.decodeBody(w, r, &body) {
		return
	}
	if body.Name == "" || body.Role == "" {
		s.errorResponse(w, http.StatusBadRequest, "name and role are required")
		return
	}

	p := &store.Persona{
		Name:        body.Name,
		Role:        body.Role,
		Description: body.Description,
		Personality: body.Personality,
		Mindset:     body.Mindset,
		Expertise:   body.Expertise,
	}
	if err := s.store.CreatePersona(p); err != nil {
		s.coreError(w, err)
		return
	}

	s.respond(w, http.StatusCreated, map[string]any{"persona": p})
}

func (s *Server) handlePersonaList(w http.ResponseWriter, r *http.Request) {
	personas, err := s.store.ListPersonas()
	if err != nil {
		s.coreError(w, err)
		return
	}
	s.respond(w, http.StatusOK, map[string]any{"personas": personas})
}

func (s *Server) handlePersonaGet(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.GetPersona(r.PathValue("id"))
	if err != nil {
		s.coreError(w, err)
		return
	}
	if p == nil {
		s.errorResponse(w, http.StatusNotFound, "persona not found")
		return
	}
	s.respond(w, http.StatusOK, map[string]any{"persona": p})
}

func (s *Server) handlePersonaUpdate(w http.ResponseWriter, r *http.Request) {
	if s.requireCaller(w, r) == "" {
		return
	}

	p, err := s.store.GetPersona(r.PathValue("id"))
	if err != nil {
		s.coreError(w, err)
		return
	}
	if p == nil {
		s.errorResponse(w, http.StatusNotFound, "persona not found")
		return
	}

	var body personaBody
	if !s.decodeBody(w, r, &body) {
		return
	}
	if body.Name != "" {
		p.Name = body.Name
	}
	if body.Role != "" {
		p.Role = body.Role
	}
	p.Description = body.Description
	p.Personality = body.Personality
	p.Mindset = body.Mindset
	p.Expertise = body.Expertise

	if err := s.store.UpdatePersona(p); err != nil {
		s.coreError(w, err)
		return
	}
	s.respond(w, http.StatusOK, map[string]any{"persona": p})
}

func (s *Server) handlePersonaDelete(w http.ResponseWriter, r *http.Request) {
	if s.requireCaller(w, r) == "" {
		return
	}

	err := s.store.DeletePersona(r.PathValue("id"))
	if errors.Is(err, sql.ErrNoRows) {
		s.errorResponse(w, http.StatusNotFound, "persona not found")
		return
	}
	if err != nil {
		s.coreError(w, err)
		return
	}
	s.respond(w, http.StatusOK, nil)
}
