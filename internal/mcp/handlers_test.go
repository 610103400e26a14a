package mcp

import (
	"context"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tuannvm/dynoteam/internal/runner"
)

const pipelineYAML = `name: Pipeline
mode: parallel
context:
  dataset: churn.csv
agents:
  - name: Collect
    role: Collector
    goal: Collect data
  - name: Clean
    role: Cleaner
    goal: Clean data
    depends_on: [Collect]
  - name: Profile
    role: Profiler
    goal: Profile data
    depends_on: [Collect]
  - name: Report
    role: Writer
    goal: Write a short summary
    depends_on: [Clean, Profile]
`

const cycleYAML = `name: Loop
agents:
  - name: A
    role: r
    goal: g
    depends_on: [B]
  - name: B
    role: r
    goal: g
    depends_on: [A]
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestHandlers() *Handlers {
	return NewHandlers().WithLogOutput(io.Discard)
}

func TestPlanTeam(t *testing.T) {
	path := writeFile(t, t.TempDir(), "team.yaml", pipelineYAML)

	out, err := newTestHandlers().PlanTeam(context.Background(), PlanTeamInput{Path: path})
	if err != nil {
		t.Fatalf("PlanTeam() error = %v", err)
	}
	if out.Team != "Pipeline" {
		t.Errorf("Team = %q", out.Team)
	}
	want := [][]string{{"Collect"}, {"Clean", "Profile"}, {"Report"}}
	if len(out.Levels) != len(want) {
		t.Fatalf("Levels = %v, want %v", out.Levels, want)
	}
	for i := range want {
		if strings.Join(out.Levels[i], ",") != strings.Join(want[i], ",") {
			t.Errorf("level %d = %v, want %v", i, out.Levels[i], want[i])
		}
	}
	if !strings.Contains(out.DOT, `"Collect" -> "Clean"`) {
		t.Errorf("DOT missing edge:\n%s", out.DOT)
	}
}

func TestPlanTeamUsesDefaultPath(t *testing.T) {
	path := writeFile(t, t.TempDir(), "team.yaml", pipelineYAML)

	out, err := newTestHandlers().WithTeamPath(path).PlanTeam(context.Background(), PlanTeamInput{})
	if err != nil {
		t.Fatalf("PlanTeam() error = %v", err)
	}
	if out.Team != "Pipeline" {
		t.Errorf("Team = %q", out.Team)
	}
}

func TestPlanTeamCycle(t *testing.T) {
	path := writeFile(t, t.TempDir(), "team.yaml", cycleYAML)

	_, err := newTestHandlers().PlanTeam(context.Background(), PlanTeamInput{Path: path})
	if err == nil || !strings.Contains(err.Error(), "cycle") {
		t.Errorf("PlanTeam() error = %v, want cycle error", err)
	}
}

func TestListAgents(t *testing.T) {
	path := writeFile(t, t.TempDir(), "team.yaml", pipelineYAML)

	out, err := newTestHandlers().ListAgents(context.Background(), ListAgentsInput{Path: path})
	if err != nil {
		t.Fatalf("ListAgents() error = %v", err)
	}
	if len(out.Agents) != 4 {
		t.Fatalf("got %d agents, want 4", len(out.Agents))
	}
	levels := map[string]int{}
	for _, a := range out.Agents {
		levels[a.Name] = a.Level
		if a.Kind != "dyno" {
			t.Errorf("%s kind = %q, want dyno", a.Name, a.Kind)
		}
	}
	if levels["Collect"] != 0 || levels["Profile"] != 1 || levels["Report"] != 2 {
		t.Errorf("levels = %v", levels)
	}
	if out.Agents[3].Name != "Report" || len(out.Agents[3].DependsOn) != 2 {
		t.Errorf("Report = %+v", out.Agents[3])
	}
}

func TestValidateTeam(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "team.yaml", pipelineYAML)
	writeFile(t, dir, "broken/team.yaml", cycleYAML)

	out, err := newTestHandlers().ValidateTeam(context.Background(), ValidateTeamInput{Path: dir})
	if err != nil {
		t.Fatalf("ValidateTeam() error = %v", err)
	}
	if out.Valid {
		t.Error("Valid = true, want false")
	}
	if len(out.Files) != 2 {
		t.Fatalf("got %d files, want 2", len(out.Files))
	}
	for _, f := range out.Files {
		switch f.Team {
		case "Pipeline":
			if !f.Valid || f.Levels != 3 || f.Agents != 4 {
				t.Errorf("Pipeline = %+v", f)
			}
		case "Loop":
			if f.Valid || f.Error == "" {
				t.Errorf("Loop = %+v", f)
			}
		default:
			t.Errorf("unexpected file %+v", f)
		}
	}
}

func TestRunTeam(t *testing.T) {
	path := writeFile(t, t.TempDir(), "team.yaml", pipelineYAML)

	out, err := newTestHandlers().RunTeam(context.Background(), RunTeamInput{
		Path:    path,
		Mode:    "sequential",
		Context: map[string]string{"owner": "ops"},
		Tasks:   map[string]string{"Report": "List the findings"},
	})
	if err != nil {
		t.Fatalf("RunTeam() error = %v", err)
	}
	if out.Error != "" {
		t.Fatalf("run error = %s", out.Error)
	}
	if out.Mode != "sequential" || out.TotalAgents != 4 || out.Successful != 4 || out.Failed != 0 {
		t.Errorf("output = %+v", out)
	}
	if out.RunID == "" {
		t.Error("RunID is empty")
	}

	last := out.Results[len(out.Results)-1]
	res, ok := last.Result.(map[string]any)
	if !ok {
		t.Fatalf("Report result = %T", last.Result)
	}
	if res["task"] != "List the findings" {
		t.Errorf("task = %v", res["task"])
	}
	inputs, _ := res["inputs"].([]string)
	if !strings.Contains(strings.Join(inputs, ","), "Clean") || !strings.Contains(strings.Join(inputs, ","), "owner") {
		t.Errorf("inputs = %v", res["inputs"])
	}
}

func TestRunTeamRejectsBadInput(t *testing.T) {
	path := writeFile(t, t.TempDir(), "team.yaml", pipelineYAML)
	h := newTestHandlers()

	tests := []struct {
		name  string
		input RunTeamInput
	}{
		{"mode", RunTeamInput{Path: path, Mode: "eager"}},
		{"concurrency", RunTeamInput{Path: path, MaxConcurrency: -1}},
		{"timeout", RunTeamInput{Path: path, Timeout: -5}},
		{"missing file", RunTeamInput{Path: filepath.Join(t.TempDir(), "none.yaml")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := h.RunTeam(context.Background(), tt.input); err == nil {
				t.Error("RunTeam() error = nil")
			}
		})
	}
}

func TestRunTeamReportsStatuses(t *testing.T) {
	down := httptest.NewServer(nil)
	down.Close()

	// The remote agent cannot connect, so its dependent never runs.
	team := `name: Remote
timeout: 1
agents:
  - name: Remote
    kind: remote
    role: r
    goal: g
    url: ` + down.URL + `
  - name: After
    role: r
    goal: g
    depends_on: [Remote]
`
	path := writeFile(t, t.TempDir(), "team.yaml", team)

	out, err := newTestHandlers().RunTeam(context.Background(), RunTeamInput{Path: path})
	if err != nil {
		t.Fatalf("RunTeam() error = %v", err)
	}
	if out.Error == "" || out.Failed != 1 || out.Skipped != 1 {
		t.Errorf("output = %+v", out)
	}
	if out.Results[0].Status != runner.StatusFailed || out.Results[1].Status != runner.StatusSkipped {
		t.Errorf("statuses = %s, %s", out.Results[0].Status, out.Results[1].Status)
	}
}
