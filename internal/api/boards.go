package api

import (
	"net/http"

	"github.com/Anirach/GenSPK-AI-Board/internal/boardroom"
	"github.com/Anirach/GenSPK-AI-Board/internal/store"
)

// boardBody is the request shape for board create/update.
type boardBody struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPublic    bool   `json:"isPublic"`
}

func (s *Server) handleBoardCreate(w http.ResponseWriter, r *http.Request) {
	caller := s.requireCaller(w, r)
	if caller == "" {
		return
	}

	var body boardBody
	if !s.decodeBody(w, r, &body) {
		return
	}
	if body.Name == "" {
		s.errorResponse(w, http.StatusBadRequest, "name is required")
		return
	}

	b := &store.Board{
		UserID:      caller,
		Name:        body.Name,
		Description: body.Description,
		IsPublic:    body.IsPublic,
	}
	if err := s.store.CreateBoard(b); err != nil {
		s.coreError(w, err)
		return
	}
	s.respond(w, http.StatusCreated, map[string]any{"board": b})
}

func (s *Server) handleBoardList(w http.ResponseWriter, r *http.Request) {
	caller := s.requireCaller(w, r)
	if caller == "" {
		return
	}

	boards, err := s.store.ListBoards(caller)
	if err != nil {
		s.coreError(w, err)
		return
	}
	s.respond(w, http.StatusOK, map[string]any{"boards": boards})
}

// loadBoard fetches a board and applies the read access rule: the owner
// or anyone when public. Writes the error response and returns nil on any
// failure.
func (s *Server) loadBoard(w http.ResponseWriter, r *http.Request, caller string) *store.Board {
	b, err := s.store.GetBoard(r.PathValue("id"))
	if err != nil {
		s.coreError(w, err)
		return nil
	}
	if b == nil {
		s.errorResponse(w, http.StatusNotFound, "board not found")
		return nil
	}
	if !b.IsPublic && b.UserID != caller {
		s.errorResponse(w, http.StatusForbidden, "access denied to this board")
		return nil
	}
	return b
}

// loadOwnBoard is loadBoard with the mutate rule: owner only.
func (s *Server) loadOwnBoard(w http.ResponseWriter, r *http.Request, caller string) *store.Board {
	b, err := s.store.GetBoard(r.PathValue("id"))
	if err != nil {
		s.coreError(w, err)
		return nil
	}
	if b == nil {
		s.errorResponse(w, http.StatusNotFound, "board not found")
		return nil
	}
	if b.UserID != caller {
		s.errorResponse(w, http.StatusForbidden, "only the board owner can modify it")
		return nil
	}
	return b
}

func (s *Server) handleBoardGet(w http.ResponseWriter, r *http.Request) {
	caller := s.requireCaller(w, r)
	if caller == "" {
		return
	}
	b := s.loadBoard(w, r, caller)
	if b == nil {
		return
	}
	s.respond(w, http.StatusOK, map[string]any{"board": b})
}

func (s *Server) handleBoardUpdate(w http.ResponseWriter, r *http.Request) {
	caller := s.requireCaller(w, r)
	if caller == "" {
		return
	}
	b := s.loadOwnBoard(w, r, caller)
	if b == nil {
		return
	}

	var body boardBody
	if !s.decodeBody(w, r, &body) {
		return
	}
	if body.Name != "" {
		b.Name = body.Name
	}
	b.Description = body.Description
	b.IsPublic = body.IsPublic

	if err := s.store.UpdateBoard(b); err != nil {
		s.coreError(w, err)
		return
	}
	s.respond(w, http.StatusOK, map[string]any{"board": b})
}

func (s *Server) handleBoardDelete(w http.ResponseWriter, r *http.Request) {
	caller := s.requireCaller(w, r)
	if caller == "" {
		return
	}
	b := s.loadOwnBoard(w, r, caller)
	if b == nil {
		return
	}
	if err := s.store.DeleteBoard(b.ID); err != nil {
		s.coreError(w, err)
		return
	}
	s.respond(w, http.StatusOK, nil)
}

func (s *Server) handleBoardPersonaAdd(w http.ResponseWriter, r *http.Request) {
	caller := s.requireCaller(w, r)
	if caller == "" {
		return
	}
	b := s.loadOwnBoard(w, r, caller)
	if b == nil {
		return
	}

	personaID := r.PathValue("personaId")
	p, err := s.store.GetPersona(personaID)
	if err != nil {
		s.coreError(w, err)
		return
	}
	if p == nil {
		s.errorResponse(w, http.StatusNotFound, "persona not found")
		return
	}

	if err := s.store.AddBoardPersona(b.ID, personaID); err != nil {
		s.coreError(w, err)
		return
	}
	s.respond(w, http.StatusOK, nil)
}

func (s *Server) handleBoardPersonaRemove(w http.ResponseWriter, r *http.Request) {
	caller := s.requireCaller(w, r)
	if caller == "" {
		return
	}
	b := s.loadOwnBoard(w, r, caller)
	if b == nil {
		return
	}

	if err := s.store.RemoveBoardPersona(b.ID, r.PathValue("personaId")); err != nil {
		s.errorResponse(w, http.StatusNotFound, "persona is not on this board")
		return
	}
	s.respond(w, http.StatusOK, nil)
}

// generateBody is the request shape for persona response generation.
type generateBody struct {
	Message            string   `json:"message"`
	ConversationID     string   `json:"conversationId"`
	SelectedPersonaIDs []string `json:"selectedPersonaIds"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	caller := s.requireCaller(w, r)
	if caller == "" {
		return
	}

	var body generateBody
	if !s.decodeBody(w, r, &body) {
		return
	}
	if body.Message == "" {
		s.errorResponse(w, http.StatusBadRequest, "message is required")
		return
	}

	responses, err := s.orchestrator.Generate(r.Context(), boardroom.GenerateRequest{
		BoardID:            r.PathValue("id"),
		CallerID:           caller,
		Message:            body.Message,
		ConversationID:     body.ConversationID,
		SelectedPersonaIDs: body.SelectedPersonaIDs,
	})
	if err != nil {
		s.coreError(w, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]any{"responses": responses})
}
