package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tuannvm/dynoteam/internal/api/apitest"
)

func TestClientRoundTrip(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()

	c := NewClientURL(srv.URL).WithPollInterval(5 * time.Millisecond)
	ctx := context.Background()

	if err := c.WaitForHealthy(ctx, time.Second); err != nil {
		t.Fatalf("WaitForHealthy() error = %v", err)
	}
	if err := c.SendMessage(ctx, "hello", "user"); err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}

	running, err := c.IsRunning(ctx)
	if err != nil {
		t.Fatalf("IsRunning() error = %v", err)
	}
	if !running {
		t.Error("IsRunning() = false right after a message, want true")
	}

	if err := c.WaitForCompletion(ctx, time.Second); err != nil {
		t.Fatalf("WaitForCompletion() error = %v", err)
	}

	got, err := c.LastAgentMessage(ctx)
	if err != nil {
		t.Fatalf("LastAgentMessage() error = %v", err)
	}
	if got != "echo: hello" {
		t.Errorf("LastAgentMessage() = %q, want %q", got, "echo: hello")
	}

	msgs, err := c.GetMessages(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 || msgs[0].Role != "user" {
		t.Errorf("GetMessages() = %+v, want user message then agent reply", msgs)
	}
}

func TestWaitForStableTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"running"}`))
	}))
	defer srv.Close()

	c := NewClientURL(srv.URL).WithPollInterval(5 * time.Millisecond)
	err := c.WaitForStable(context.Background(), 30*time.Millisecond)
	if err == nil || !strings.Contains(err.Error(), "timeout waiting for stable state") {
		t.Errorf("WaitForStable() error = %v, want timeout", err)
	}
}

func TestWaitForCompletionCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"running"}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	c := NewClientURL(srv.URL).WithPollInterval(5 * time.Millisecond)
	if err := c.WaitForCompletion(ctx, 0); err != context.Canceled {
		t.Errorf("WaitForCompletion() error = %v, want context.Canceled", err)
	}
}

func TestGetStatusErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "broken", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClientURL(srv.URL).GetStatus(context.Background())
	if err == nil || !strings.Contains(err.Error(), "broken") {
		t.Errorf("GetStatus() error = %v, want body in error", err)
	}
}

func TestLastAgentMessageEmpty(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()

	if _, err := NewClientURL(srv.URL).LastAgentMessage(context.Background()); err == nil {
		t.Error("LastAgentMessage() on empty conversation should fail")
	}
}

func TestNewClientPort(t *testing.T) {
	if got := NewClient(3284).BaseURL(); got != "http://localhost:3284" {
		t.Errorf("NewClient(3284).BaseURL() = %q", got)
	}
}
