// Package apitest provides an in-memory agentapi server for tests.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
)

// Server fakes the agentapi endpoints. Each posted user message flips the
// status to running for RunningPolls status reads, then appends Reply.
type Server struct {
	*httptest.Server

	// Reply builds the agent answer for a user message.
	Reply func(content string) string
	// RunningPolls is how many /status reads report "running" after a message.
	RunningPolls int

	mu       sync.Mutex
	messages []map[string]any
	running  int
	received []string
}

// NewServer starts a fake agentapi server that echoes messages back.
func NewServer() *Server {
	s := &Server{
		Reply:        func(c string) string { return "echo: " + c },
		RunningPolls: 2,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /status", s.status)
	mux.HandleFunc("POST /message", s.message)
	mux.HandleFunc("GET /messages", s.list)
	s.Server = httptest.NewServer(mux)
	return s
}

// Received returns the user messages posted so far.
func (s *Server) Received() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.received...)
}

func (s *Server) status(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	st := "stable"
	if s.running > 0 {
		st = "running"
		s.running--
	}
	s.mu.Unlock()
	writeJSON(w, map[string]string{"status": st})
}

func (s *Server) message(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Content string `json:"content"`
		Type    string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.received = append(s.received, body.Content)
	s.messages = append(s.messages,
		map[string]any{"id": len(s.messages), "role": "user", "content": body.Content},
		map[string]any{"id": len(s.messages) + 1, "role": "agent", "content": s.Reply(body.Content)},
	)
	s.running = s.RunningPolls
	s.mu.Unlock()
	writeJSON(w, map[string]bool{"ok": true})
}

func (s *Server) list(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	msgs := append([]map[string]any(nil), s.messages...)
	s.mu.Unlock()
	writeJSON(w, map[string]any{"messages": msgs})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
