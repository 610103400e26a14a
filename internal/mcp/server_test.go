package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func TestNewServerDefaults(t *testing.T) {
	s := NewServer(&ServerConfig{})
	if s.config.Name != ServerName || s.config.Version != ServerVersion {
		t.Errorf("name/version = %s/%s", s.config.Name, s.config.Version)
	}
	if s.config.Port != 8080 || s.config.Handlers == nil || s.config.Instructions == "" {
		t.Errorf("config = %+v", s.config)
	}
}

func TestHealthHandler(t *testing.T) {
	s := NewServer(&ServerConfig{Version: "1.2.3"})

	rec := httptest.NewRecorder()
	s.healthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" || body["version"] != "1.2.3" {
		t.Errorf("body = %v", body)
	}
}

func TestHandlerRoutes(t *testing.T) {
	srv := httptest.NewServer(NewServer(&ServerConfig{Version: "9.9.9"}).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "application/json" {
		t.Errorf("health: status %d, content type %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}

	missing, err := http.Get(srv.URL + "/nope")
	if err != nil {
		t.Fatal(err)
	}
	missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Errorf("unknown route status = %d", missing.StatusCode)
	}
}

func TestOAuthHandlerRequiresConfig(t *testing.T) {
	s := NewServer(nil)
	if _, err := s.OAuthHandler(); err == nil {
		t.Error("OAuthHandler() error = nil")
	}
	if err := s.ServeHTTPWithOAuth(context.Background()); err == nil {
		t.Error("ServeHTTPWithOAuth() error = nil")
	}
}

func TestToolsOverSession(t *testing.T) {
	ctx := context.Background()
	path := writeFile(t, t.TempDir(), "team.yaml", pipelineYAML)

	s := NewServer(&ServerConfig{Handlers: newTestHandlers()})
	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	ss, err := s.MCPServer().Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer ss.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "test", Version: "0"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer cs.Close()

	tools, err := cs.ListTools(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	want := []string{"list_agents", "plan_team", "run_team", "validate_team"}
	if len(names) != len(want) {
		t.Fatalf("tools = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("tools = %v, want %v", names, want)
		}
	}

	res, err := cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      "plan_team",
		Arguments: map[string]any{"path": path},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("plan_team returned a tool error: %+v", res.Content)
	}
	raw, err := json.Marshal(res.StructuredContent)
	if err != nil {
		t.Fatal(err)
	}
	var plan PlanTeamOutput
	if err := json.Unmarshal(raw, &plan); err != nil {
		t.Fatal(err)
	}
	if plan.Team != "Pipeline" || len(plan.Levels) != 3 {
		t.Errorf("plan = %+v", plan)
	}
}
