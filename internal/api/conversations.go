package api

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/Anirach/GenSPK-AI-Board/internal/boardroom"
	"github.com/Anirach/GenSPK-AI-Board/internal/store"
)

// conversationBody is the request shape for conversation create/update.
type conversationBody struct {
	Title   string `json:"title"`
	Context string `json:"context"`
	BoardID string `json:"boardId"`
}

func (s *Server) handleConversationCreate(w http.ResponseWriter, r *http.Request) {
	caller := s.requireCaller(w, r)
	if caller == "" {
		return
	}

	var body conversationBody
	if !s.decodeBody(w, r, &body) {
		return
	}
	if body.BoardID == "" {
		s.errorResponse(w, http.StatusBadRequest, "boardId is required")
		return
	}

	// The board must exist and be visible to the caller.
	b, err := s.store.GetBoard(body.BoardID)
	if err != nil {
		s.coreError(w, err)
		return
	}
	if b == nil {
		s.errorResponse(w, http.StatusNotFound, "board not found")
		return
	}
	if !b.IsPublic && b.UserID != caller {
		s.errorResponse(w, http.StatusForbidden, "access denied to this board")
		return
	}

	c := &store.Conversation{
		UserID:  caller,
		BoardID: body.BoardID,
		Title:   body.Title,
		Context: body.Context,
	}
	if err := s.store.CreateConversation(c); err != nil {
		s.coreError(w, err)
		return
	}
	s.respond(w, http.StatusCreated, map[string]any{"conversation": c})
}

func (s *Server) handleConversationList(w http.ResponseWriter, r *http.Request) {
	caller := s.requireCaller(w, r)
	if caller == "" {
		return
	}

	convs, err := s.store.ListConversations(caller, r.URL.Query().Get("boardId"))
	if err != nil {
		s.coreError(w, err)
		return
	}
	s.respond(w, http.StatusOK, map[string]any{"conversations": convs})
}

// loadConversation fetches a conversation and applies the read access
// rule: the owner, or anyone when the backing board is public. Writes the
// error response and returns nil on any failure.
func (s *Server) loadConversation(w http.ResponseWriter, r *http.Request, caller string) *store.Conversation {
	c, err := s.store.GetConversation(r.PathValue("id"))
	if err != nil {
		s.coreError(w, err)
		return nil
	}
	if c == nil {
		s.errorResponse(w, http.StatusNotFound, "conversation not found")
		return nil
	}
	if c.UserID != caller {
		b, err := s.store.GetBoard(c.BoardID)
		if err != nil {
			s.coreError(w, err)
			return nil
		}
		if b == nil || !b.IsPublic {
			s.errorResponse(w, http.StatusForbidden, "access denied to this conversation")
			return nil
		}
	}
	return c
}

// loadOwnConversation is loadConversation with the mutate rule: owner only.
func (s *Server) loadOwnConversation(w http.ResponseWriter, r *http.Request, caller string) *store.Conversation {
	c, err := s.store.GetConversation(r.PathValue("id"))
	if err != nil {
		s.coreError(w, err)
		return nil
	}
	if c == nil {
		s.errorResponse(w, http.StatusNotFound, "conversation not found")
		return nil
	}
	if c.UserID != caller {
		s.errorResponse(w, http.StatusForbidden, "only the conversation owner can modify it")
		return nil
	}
	return c
}

func (s *Server) handleConversationGet(w http.ResponseWriter, r *http.Request) {
	caller := s.requireCaller(w, r)
	if caller == "" {
		return
	}
	c := s.loadConversation(w, r, caller)
	if c == nil {
		return
	}

	count, err := s.store.CountMessages(c.ID)
	if err != nil {
		s.coreError(w, err)
		return
	}
	s.respond(w, http.StatusOK, map[string]any{
		"conversation": c,
		"messageCount": count,
	})
}

func (s *Server) handleConversationUpdate(w http.ResponseWriter, r *http.Request) {
	caller := s.requireCaller(w, r)
	if caller == "" {
		return
	}
	c := s.loadOwnConversation(w, r, caller)
	if c == nil {
		return
	}

	var body conversationBody
	if !s.decodeBody(w, r, &body) {
		return
	}
	if body.Title != "" {
		c.Title = body.Title
	}
	c.Context = body.Context

	if err := s.store.UpdateConversation(c); err != nil {
		s.coreError(w, err)
		return
	}
	s.respond(w, http.StatusOK, map[string]any{"conversation": c})
}

func (s *Server) handleConversationDelete(w http.ResponseWriter, r *http.Request) {
	caller := s.requireCaller(w, r)
	if caller == "" {
		return
	}
	c := s.loadOwnConversation(w, r, caller)
	if c == nil {
		return
	}
	if err := s.store.DeleteConversation(c.ID); err != nil {
		s.coreError(w, err)
		return
	}
	s.respond(w, http.StatusOK, nil)
}

func (s *Server) handleMessageList(w http.ResponseWriter, r *http.Request) {
	caller := s.requireCaller(w, r)
	if caller == "" {
		return
	}
	c := s.loadConversation(w, r, caller)
	if c == nil {
		return
	}

	messages, err := s.store.AllMessages(c.ID)
	if err != nil {
		s.coreError(w, err)
		return
	}
	s.respond(w, http.StatusOK, map[string]any{"messages": messages})
}

// messageBody is the request shape for appending a message.
type messageBody struct {
	Content   string `json:"content"`
	Type      string `json:"type"`
	PersonaID string `json:"personaId"`
}

func (s *Server) handleMessageAdd(w http.ResponseWriter, r *http.Request) {
	caller := s.requireCaller(w, r)
	if caller == "" {
		return
	}
	c := s.loadConversation(w, r, caller)
	if c == nil {
		return
	}

	var body messageBody
	if !s.decodeBody(w, r, &body) {
		return
	}
	if body.Content == "" {
		s.errorResponse(w, http.StatusBadRequest, "content is required")
		return
	}

	var msg store.Message
	switch store.MessageType(body.Type) {
	case store.MessageUser, "":
		msg = store.NewUserMessage(c.ID, caller, body.Content)
	case store.MessagePersona:
		p, err := s.store.GetPersona(body.PersonaID)
		if err != nil {
			s.coreError(w, err)
			return
		}
		if p == nil {
			s.errorResponse(w, http.StatusNotFound, "persona not found")
			return
		}
		msg = store.NewPersonaMessage(c.ID, body.PersonaID, body.Content)
	case store.MessageSystem:
		msg = store.NewSystemMessage(c.ID, body.Content)
	default:
		s.errorResponse(w, http.StatusBadRequest, "unknown message type")
		return
	}

	if err := s.store.AppendMessage(&msg); err != nil {
		s.coreError(w, err)
		return
	}
	s.respond(w, http.StatusCreated, map[string]any{"message": msg})
}

func (s *Server) handleMessageDelete(w http.ResponseWriter, r *http.Request) {
	caller := s.requireCaller(w, r)
	if caller == "" {
		return
	}
	c := s.loadOwnConversation(w, r, caller)
	if c == nil {
		return
	}

	err := s.store.DeleteMessage(c.ID, r.PathValue("messageId"))
	if errors.Is(err, sql.ErrNoRows) {
		s.errorResponse(w, http.StatusNotFound, "message not found")
		return
	}
	if err != nil {
		s.coreError(w, err)
		return
	}
	s.respond(w, http.StatusOK, nil)
}

// summaryBody is the request shape for conversation summarization.
type summaryBody struct {
	Format string `json:"format"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	caller := s.requireCaller(w, r)
	if caller == "" {
		return
	}

	// An empty body means default format.
	var body summaryBody
	if r.ContentLength != 0 && !s.decodeBody(w, r, &body) {
		return
	}

	format, err := boardroom.ParseSummaryFormat(body.Format)
	if err != nil {
		s.coreError(w, err)
		return
	}

	summary, err := s.composer.Summarize(r.Context(), r.PathValue("id"), caller, format)
	if err != nil {
		s.coreError(w, err)
		return
	}
	s.respond(w, http.StatusOK, summary)
}
