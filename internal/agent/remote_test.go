package agent

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tuannvm/dynoteam/internal/api/apitest"
)

func TestNewRemoteAgent(t *testing.T) {
	if _, err := NewRemoteAgent("", "r", "g", RemoteConfig{Command: "claude"}); !errors.Is(err, ErrEmptyName) {
		t.Errorf("empty name error = %v", err)
	}
	if _, err := NewRemoteAgent("R", "r", "g", RemoteConfig{}); !errors.Is(err, ErrNoCommand) {
		t.Errorf("missing command error = %v", err)
	}
	a, err := NewRemoteAgent("R", "r", "g", RemoteConfig{Command: "claude"})
	if err != nil {
		t.Fatal(err)
	}
	if a.Config().Port != defaultRemotePort {
		t.Errorf("Port = %d, want default %d", a.Config().Port, defaultRemotePort)
	}
}

func TestRemoteAgentPerform(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()
	srv.Reply = func(c string) string { return "done: " + strings.SplitN(c, "\n", 2)[0] }

	a, err := NewRemoteAgent("Writer", "Tech writer", "Write docs", RemoteConfig{
		BaseURL:      srv.URL,
		PollInterval: 5 * time.Millisecond,
		Timeout:      2 * time.Second,
	})
	if err != nil {
		t.Fatal(err)
	}

	out, err := a.Perform(context.Background(), "", map[string]any{"Analyzer": "42 rows"})
	if err != nil {
		t.Fatalf("Perform() error = %v", err)
	}
	if out != "done: Write docs" {
		t.Errorf("Perform() = %v", out)
	}

	got := srv.Received()
	if len(got) != 1 || !strings.Contains(got[0], `"Analyzer": "42 rows"`) {
		t.Errorf("message sent = %q, want context JSON", got)
	}
}

func TestBuildMessage(t *testing.T) {
	msg, err := BuildMessage("task", nil)
	if err != nil || msg != "task" {
		t.Errorf("BuildMessage(no context) = %q, %v", msg, err)
	}

	msg, err = BuildMessage("task", map[string]any{"b": 2, "a": 1})
	if err != nil {
		t.Fatal(err)
	}
	want := "task\n\nContext:\n{\n  \"a\": 1,\n  \"b\": 2\n}"
	if msg != want {
		t.Errorf("BuildMessage() = %q, want %q", msg, want)
	}

	if _, err := BuildMessage("task", map[string]any{"ch": make(chan int)}); err == nil {
		t.Error("BuildMessage() with unencodable context should fail")
	}
}
