package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/Anirach/GenSPK-AI-Board/internal/boardroom"
	"github.com/Anirach/GenSPK-AI-Board/internal/llm"
	"github.com/Anirach/GenSPK-AI-Board/internal/store"
)

// stubClient is a scriptable completion client for handler tests.
type stubClient struct {
	respond func(req llm.Request) (*llm.Completion, error)
}

func (c *stubClient) Complete(ctx context.Context, req llm.Request) (*llm.Completion, error) {
	if c.respond == nil {
		return &llm.Completion{Content: "stub reply"}, nil
	}
	return c.respond(req)
}

func (c *stubClient) Ping(ctx context.Context) error { return nil }

func newTestServer(t *testing.T, client llm.Client) *Server {
	t.Helper()

	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	orch := boardroom.NewOrchestrator(st, client, logger, boardroom.Config{})
	comp := boardroom.NewComposer(st, client, logger)
	return NewServer("", 0, st, orch, comp, logger)
}

// doJSON performs one request against the handler and decodes the
// response envelope. A nil body sends no payload; user sets X-User-ID.
func doJSON(t *testing.T, h http.Handler, method, path, user string, body any) (int, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope from %q: %v", rec.Body.String(), err)
	}
	return rec.Code, env
}

// dataField re-decodes one field of env.Data into out.
func dataField(t *testing.T, env envelope, field string, out any) {
	t.Helper()

	data, err := json.Marshal(env.Data)
	if err != nil {
		t.Fatalf("re-marshal data: %v", err)
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("decode data object: %v", err)
	}
	raw, ok := m[field]
	if !ok {
		t.Fatalf("data has no field %q: %s", field, data)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("decode field %q: %v", field, err)
	}
}

func createTestPersona(t *testing.T, h http.Handler, name string) store.Persona {
	t.Helper()
	status, env := doJSON(t, h, "POST", "/v1/personas", "alice", map[string]any{
		"name": name, "role": "advisor",
	})
	if status != http.StatusCreated {
		t.Fatalf("create persona: status %d, message %q", status, env.Message)
	}
	var p store.Persona
	dataField(t, env, "persona", &p)
	return p
}

func createTestBoard(t *testing.T, h http.Handler, user string, isPublic bool) store.Board {
	t.Helper()
	status, env := doJSON(t, h, "POST", "/v1/boards", user, map[string]any{
		"name": "Test Board", "isPublic": isPublic,
	})
	if status != http.StatusCreated {
		t.Fatalf("create board: status %d, message %q", status, env.Message)
	}
	var b store.Board
	dataField(t, env, "board", &b)
	return b
}

func createTestConversation(t *testing.T, h http.Handler, user, boardID string) store.Conversation {
	t.Helper()
	status, env := doJSON(t, h, "POST", "/v1/conversations", user, map[string]any{
		"title": "Chat", "boardId": boardID,
	})
	if status != http.StatusCreated {
		t.Fatalf("create conversation: status %d, message %q", status, env.Message)
	}
	var c store.Conversation
	dataField(t, env, "conversation", &c)
	return c
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t, &stubClient{})
	h := s.Handler()

	status, env := doJSON(t, h, "GET", "/health", "", nil)
	if status != http.StatusOK || !env.Success {
		t.Errorf("health: status %d, env %+v", status, env)
	}

	status, env = doJSON(t, h, "GET", "/", "", nil)
	if status != http.StatusOK || !env.Success {
		t.Errorf("root: status %d, env %+v", status, env)
	}
}

func TestRequireCaller(t *testing.T) {
	s := newTestServer(t, &stubClient{})
	h := s.Handler()

	status, env := doJSON(t, h, "POST", "/v1/boards", "", map[string]any{"name": "x"})
	if status != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", status)
	}
	if env.Success || env.Message != "missing X-User-ID header" {
		t.Errorf("envelope: %+v", env)
	}
}

func TestPersonaCRUD(t *testing.T) {
	s := newTestServer(t, &stubClient{})
	h := s.Handler()

	p := createTestPersona(t, h, "Ada")
	if p.ID == "" || p.Name != "Ada" {
		t.Fatalf("created persona: %+v", p)
	}

	// Missing required fields.
	status, _ := doJSON(t, h, "POST", "/v1/personas", "alice", map[string]any{"name": "NoRole"})
	if status != http.StatusBadRequest {
		t.Errorf("create without role: got %d, want 400", status)
	}

	status, env := doJSON(t, h, "GET", "/v1/personas/"+p.ID, "", nil)
	if status != http.StatusOK {
		t.Fatalf("get: status %d", status)
	}
	var got store.Persona
	dataField(t, env, "persona", &got)
	if got.ID != p.ID {
		t.Errorf("get returned %+v", got)
	}

	status, env = doJSON(t, h, "PUT", "/v1/personas/"+p.ID, "alice", map[string]any{
		"description": "Updated", "expertise": []string{"strategy"},
	})
	if status != http.StatusOK {
		t.Fatalf("update: status %d, message %q", status, env.Message)
	}
	dataField(t, env, "persona", &got)
	if got.Name != "Ada" || got.Description != "Updated" {
		t.Errorf("partial update: %+v", got)
	}

	status, _ = doJSON(t, h, "DELETE", "/v1/personas/"+p.ID, "alice", nil)
	if status != http.StatusOK {
		t.Errorf("delete: status %d", status)
	}
	status, _ = doJSON(t, h, "GET", "/v1/personas/"+p.ID, "", nil)
	if status != http.StatusNotFound {
		t.Errorf("get after delete: got %d, want 404", status)
	}
}

func TestBoardAccessRules(t *testing.T) {
	s := newTestServer(t, &stubClient{})
	h := s.Handler()

	private := createTestBoard(t, h, "alice", false)
	public := createTestBoard(t, h, "alice", true)

	// Reads: private is owner-only, public is open.
	if status, _ := doJSON(t, h, "GET", "/v1/boards/"+private.ID, "mallory", nil); status != http.StatusForbidden {
		t.Errorf("private read by stranger: got %d, want 403", status)
	}
	if status, _ := doJSON(t, h, "GET", "/v1/boards/"+public.ID, "mallory", nil); status != http.StatusOK {
		t.Errorf("public read by stranger: got %d, want 200", status)
	}

	// Mutations: owner only, even on public boards.
	status, _ := doJSON(t, h, "PUT", "/v1/boards/"+public.ID, "mallory", map[string]any{"name": "Hijacked"})
	if status != http.StatusForbidden {
		t.Errorf("public update by stranger: got %d, want 403", status)
	}

	if status, _ := doJSON(t, h, "GET", "/v1/boards/missing", "alice", nil); status != http.StatusNotFound {
		t.Errorf("missing board: got %d, want 404", status)
	}
}

func TestBoardRosterEndpoints(t *testing.T) {
	s := newTestServer(t, &stubClient{})
	h := s.Handler()

	b := createTestBoard(t, h, "alice", false)
	p := createTestPersona(t, h, "Ada")

	status, _ := doJSON(t, h, "POST", fmt.Sprintf("/v1/boards/%s/personas/%s", b.ID, p.ID), "alice", nil)
	if status != http.StatusOK {
		t.Fatalf("add to roster: status %d", status)
	}

	status, env := doJSON(t, h, "GET", "/v1/boards/"+b.ID, "alice", nil)
	if status != http.StatusOK {
		t.Fatalf("get board: status %d", status)
	}
	var got store.Board
	dataField(t, env, "board", &got)
	if len(got.Personas) != 1 || got.Personas[0].ID != p.ID {
		t.Errorf("roster: %+v", got.Personas)
	}

	// Unknown persona.
	status, _ = doJSON(t, h, "POST", fmt.Sprintf("/v1/boards/%s/personas/%s", b.ID, "missing"), "alice", nil)
	if status != http.StatusNotFound {
		t.Errorf("add unknown persona: got %d, want 404", status)
	}

	status, _ = doJSON(t, h, "DELETE", fmt.Sprintf("/v1/boards/%s/personas/%s", b.ID, p.ID), "alice", nil)
	if status != http.StatusOK {
		t.Errorf("remove from roster: status %d", status)
	}
	status, _ = doJSON(t, h, "DELETE", fmt.Sprintf("/v1/boards/%s/personas/%s", b.ID, p.ID), "alice", nil)
	if status != http.StatusNotFound {
		t.Errorf("remove non-member: got %d, want 404", status)
	}
}

func TestGenerateEndpoint(t *testing.T) {
	s := newTestServer(t, &stubClient{})
	h := s.Handler()

	b := createTestBoard(t, h, "alice", false)
	p := createTestPersona(t, h, "Ada")
	if status, _ := doJSON(t, h, "POST", fmt.Sprintf("/v1/boards/%s/personas/%s", b.ID, p.ID), "alice", nil); status != http.StatusOK {
		t.Fatal("roster setup failed")
	}

	status, env := doJSON(t, h, "POST", "/v1/boards/"+b.ID+"/generate", "alice", map[string]any{
		"message": "What should we do?",
	})
	if status != http.StatusOK {
		t.Fatalf("generate: status %d, message %q", status, env.Message)
	}

	var responses []boardroom.PersonaResponse
	dataField(t, env, "responses", &responses)
	if len(responses) != 1 {
		t.Fatalf("got %d responses, want 1", len(responses))
	}
	if responses[0].PersonaID != p.ID || responses[0].PersonaName != "Ada" {
		t.Errorf("response identity: %+v", responses[0])
	}
	if responses[0].Response != "stub reply" {
		t.Errorf("response text: %q", responses[0].Response)
	}

	// Empty message is rejected before any orchestration.
	status, _ = doJSON(t, h, "POST", "/v1/boards/"+b.ID+"/generate", "alice", map[string]any{})
	if status != http.StatusBadRequest {
		t.Errorf("empty message: got %d, want 400", status)
	}

	// Missing board maps through the error taxonomy.
	status, _ = doJSON(t, h, "POST", "/v1/boards/missing/generate", "alice", map[string]any{"message": "hi"})
	if status != http.StatusNotFound {
		t.Errorf("missing board: got %d, want 404", status)
	}

	// Private board, wrong caller.
	status, _ = doJSON(t, h, "POST", "/v1/boards/"+b.ID+"/generate", "mallory", map[string]any{"message": "hi"})
	if status != http.StatusForbidden {
		t.Errorf("stranger generate: got %d, want 403", status)
	}
}

func TestConversationLifecycle(t *testing.T) {
	s := newTestServer(t, &stubClient{})
	h := s.Handler()

	b := createTestBoard(t, h, "alice", false)
	c := createTestConversation(t, h, "alice", b.ID)

	// Create against a missing board.
	status, _ := doJSON(t, h, "POST", "/v1/conversations", "alice", map[string]any{"boardId": "missing"})
	if status != http.StatusNotFound {
		t.Errorf("missing board: got %d, want 404", status)
	}
	// Create against someone else's private board.
	status, _ = doJSON(t, h, "POST", "/v1/conversations", "mallory", map[string]any{"boardId": b.ID})
	if status != http.StatusForbidden {
		t.Errorf("stranger conversation: got %d, want 403", status)
	}

	status, env := doJSON(t, h, "GET", "/v1/conversations/"+c.ID, "alice", nil)
	if status != http.StatusOK {
		t.Fatalf("get: status %d", status)
	}
	var count int
	dataField(t, env, "messageCount", &count)
	if count != 0 {
		t.Errorf("message count: got %d, want 0", count)
	}

	// Private board conversation is invisible to strangers.
	status, _ = doJSON(t, h, "GET", "/v1/conversations/"+c.ID, "mallory", nil)
	if status != http.StatusForbidden {
		t.Errorf("stranger get: got %d, want 403", status)
	}

	status, env = doJSON(t, h, "PUT", "/v1/conversations/"+c.ID, "alice", map[string]any{"title": "Renamed"})
	if status != http.StatusOK {
		t.Fatalf("update: status %d, message %q", status, env.Message)
	}
	var updated store.Conversation
	dataField(t, env, "conversation", &updated)
	if updated.Title != "Renamed" {
		t.Errorf("title: %q", updated.Title)
	}

	status, _ = doJSON(t, h, "GET", "/v1/conversations?boardId="+b.ID, "alice", nil)
	if status != http.StatusOK {
		t.Errorf("list: status %d", status)
	}

	status, _ = doJSON(t, h, "DELETE", "/v1/conversations/"+c.ID, "alice", nil)
	if status != http.StatusOK {
		t.Errorf("delete: status %d", status)
	}
	status, _ = doJSON(t, h, "GET", "/v1/conversations/"+c.ID, "alice", nil)
	if status != http.StatusNotFound {
		t.Errorf("get after delete: got %d, want 404", status)
	}
}

func TestMessageEndpoints(t *testing.T) {
	s := newTestServer(t, &stubClient{})
	h := s.Handler()

	b := createTestBoard(t, h, "alice", false)
	c := createTestConversation(t, h, "alice", b.ID)
	p := createTestPersona(t, h, "Ada")

	// Default type is USER.
	status, env := doJSON(t, h, "POST", "/v1/conversations/"+c.ID+"/messages", "alice", map[string]any{
		"content": "hello board",
	})
	if status != http.StatusCreated {
		t.Fatalf("add user message: status %d, message %q", status, env.Message)
	}
	var m store.Message
	dataField(t, env, "message", &m)
	if m.Type != store.MessageUser || m.UserID != "alice" {
		t.Errorf("user message: %+v", m)
	}

	status, env = doJSON(t, h, "POST", "/v1/conversations/"+c.ID+"/messages", "alice", map[string]any{
		"content": "my advice", "type": "PERSONA", "personaId": p.ID,
	})
	if status != http.StatusCreated {
		t.Fatalf("add persona message: status %d, message %q", status, env.Message)
	}
	dataField(t, env, "message", &m)
	if m.Type != store.MessagePersona || m.PersonaID != p.ID {
		t.Errorf("persona message: %+v", m)
	}

	// Persona messages require an existing persona.
	status, _ = doJSON(t, h, "POST", "/v1/conversations/"+c.ID+"/messages", "alice", map[string]any{
		"content": "x", "type": "PERSONA", "personaId": "missing",
	})
	if status != http.StatusNotFound {
		t.Errorf("unknown persona: got %d, want 404", status)
	}

	status, _ = doJSON(t, h, "POST", "/v1/conversations/"+c.ID+"/messages", "alice", map[string]any{
		"content": "x", "type": "ROBOT",
	})
	if status != http.StatusBadRequest {
		t.Errorf("unknown type: got %d, want 400", status)
	}

	status, _ = doJSON(t, h, "POST", "/v1/conversations/"+c.ID+"/messages", "alice", map[string]any{"type": "USER"})
	if status != http.StatusBadRequest {
		t.Errorf("empty content: got %d, want 400", status)
	}

	status, env = doJSON(t, h, "GET", "/v1/conversations/"+c.ID+"/messages", "alice", nil)
	if status != http.StatusOK {
		t.Fatalf("list: status %d", status)
	}
	var messages []store.Message
	dataField(t, env, "messages", &messages)
	if len(messages) != 2 {
		t.Errorf("got %d messages, want 2", len(messages))
	}

	status, _ = doJSON(t, h, "DELETE", fmt.Sprintf("/v1/conversations/%s/messages/%s", c.ID, m.ID), "alice", nil)
	if status != http.StatusOK {
		t.Errorf("delete message: status %d", status)
	}
	status, _ = doJSON(t, h, "DELETE", fmt.Sprintf("/v1/conversations/%s/messages/%s", c.ID, m.ID), "alice", nil)
	if status != http.StatusNotFound {
		t.Errorf("delete missing message: got %d, want 404", status)
	}
}

func TestSummaryEndpoint(t *testing.T) {
	client := &stubClient{respond: func(req llm.Request) (*llm.Completion, error) {
		return &llm.Completion{Content: "A productive discussion."}, nil
	}}
	s := newTestServer(t, client)
	h := s.Handler()

	b := createTestBoard(t, h, "alice", false)
	c := createTestConversation(t, h, "alice", b.ID)

	// Empty conversation is a validation error.
	status, _ := doJSON(t, h, "POST", "/v1/conversations/"+c.ID+"/summary", "alice", map[string]any{})
	if status != http.StatusBadRequest {
		t.Errorf("empty conversation: got %d, want 400", status)
	}

	if st, _ := doJSON(t, h, "POST", "/v1/conversations/"+c.ID+"/messages", "alice", map[string]any{
		"content": "Should we expand?",
	}); st != http.StatusCreated {
		t.Fatal("message setup failed")
	}

	status, env := doJSON(t, h, "POST", "/v1/conversations/"+c.ID+"/summary", "alice", map[string]any{
		"format": "executive",
	})
	if status != http.StatusOK {
		t.Fatalf("summary: status %d, message %q", status, env.Message)
	}
	data, _ := json.Marshal(env.Data)
	var summary boardroom.Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.Summary != "A productive discussion." || summary.Format != boardroom.FormatExecutive {
		t.Errorf("summary: %+v", summary)
	}
	if summary.MessageCount != 1 {
		t.Errorf("message count: got %d, want 1", summary.MessageCount)
	}

	// No body defaults to detailed format.
	status, env = doJSON(t, h, "POST", "/v1/conversations/"+c.ID+"/summary", "alice", nil)
	if status != http.StatusOK {
		t.Fatalf("summary without body: status %d, message %q", status, env.Message)
	}

	status, _ = doJSON(t, h, "POST", "/v1/conversations/"+c.ID+"/summary", "alice", map[string]any{
		"format": "brief",
	})
	if status != http.StatusBadRequest {
		t.Errorf("unknown format: got %d, want 400", status)
	}

	// Summaries are owner-only.
	status, _ = doJSON(t, h, "POST", "/v1/conversations/"+c.ID+"/summary", "mallory", map[string]any{})
	if status != http.StatusNotFound {
		t.Errorf("stranger summary: got %d, want 404", status)
	}
}

func TestSummaryEndpointExternalFailure(t *testing.T) {
	client := &stubClient{respond: func(llm.Request) (*llm.Completion, error) {
		return nil, errors.New("upstream 500")
	}}
	s := newTestServer(t, client)
	h := s.Handler()

	b := createTestBoard(t, h, "alice", false)
	c := createTestConversation(t, h, "alice", b.ID)
	if st, _ := doJSON(t, h, "POST", "/v1/conversations/"+c.ID+"/messages", "alice", map[string]any{
		"content": "hi",
	}); st != http.StatusCreated {
		t.Fatal("message setup failed")
	}

	status, env := doJSON(t, h, "POST", "/v1/conversations/"+c.ID+"/summary", "alice", map[string]any{})
	if status != http.StatusInternalServerError {
		t.Errorf("got %d, want 500", status)
	}
	if env.Success {
		t.Error("failure envelope should not be marked successful")
	}
}
