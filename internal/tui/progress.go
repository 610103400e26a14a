package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tuannvm/dynoteam/internal/team"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type agentState int

const (
	statePending agentState = iota
	stateRunning
	stateDone
	stateFailed
)

type agentProgress struct {
	state   agentState
	elapsed time.Duration
	err     error
}

type (
	levelStartedMsg struct {
		level  int
		agents []string
	}
	agentStartedMsg struct {
		level int
		agent string
	}
	agentFinishedMsg struct {
		level   int
		agent   string
		elapsed time.Duration
		err     error
	}
	levelFinishedMsg struct {
		level int
		err   error
	}
	runDoneMsg struct{ err error }
	frameMsg   struct{}
)

// ProgressObserver forwards team events to a bubbletea program.
type ProgressObserver struct {
	send func(tea.Msg)
}

// NewProgressObserver returns an observer delivering events through send,
// usually (*tea.Program).Send.
func NewProgressObserver(send func(tea.Msg)) *ProgressObserver {
	return &ProgressObserver{send: send}
}

func (o *ProgressObserver) LevelStarted(level int, agents []string) {
	o.send(levelStartedMsg{level: level, agents: append([]string(nil), agents...)})
}

func (o *ProgressObserver) AgentStarted(level int, agent string) {
	o.send(agentStartedMsg{level: level, agent: agent})
}

func (o *ProgressObserver) AgentFinished(level int, agent string, elapsed time.Duration, err error) {
	o.send(agentFinishedMsg{level: level, agent: agent, elapsed: elapsed, err: err})
}

func (o *ProgressObserver) LevelFinished(level int, err error) {
	o.send(levelFinishedMsg{level: level, err: err})
}

// ProgressModel shows each level of a running plan and the state of its agents.
type ProgressModel struct {
	title   string
	plan    [][]string
	agents  map[string]*agentProgress
	current int
	frame   int
	started time.Time

	cancel   context.CancelFunc
	stopping bool
	done     bool
	err      error
}

// NewProgressModel builds a model for plan. cancel is called when the user
// asks to stop.
func NewProgressModel(title string, plan [][]string, cancel context.CancelFunc) *ProgressModel {
	agents := make(map[string]*agentProgress)
	for _, level := range plan {
		for _, name := range level {
			agents[name] = &agentProgress{}
		}
	}
	return &ProgressModel{
		title:   title,
		plan:    plan,
		agents:  agents,
		current: -1,
		started: time.Now(),
		cancel:  cancel,
	}
}

// Err returns the run's error once it has finished.
func (m *ProgressModel) Err() error { return m.err }

func (m *ProgressModel) Init() tea.Cmd {
	return frameCmd()
}

func frameCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg { return frameMsg{} })
}

func (m *ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if !m.stopping && m.cancel != nil {
				m.stopping = true
				m.cancel()
			}
		}
	case frameMsg:
		if m.done {
			return m, nil
		}
		m.frame++
		return m, frameCmd()
	case levelStartedMsg:
		m.current = msg.level
	case agentStartedMsg:
		m.agent(msg.agent).state = stateRunning
	case agentFinishedMsg:
		a := m.agent(msg.agent)
		a.elapsed = msg.elapsed
		a.err = msg.err
		a.state = stateDone
		if msg.err != nil {
			a.state = stateFailed
		}
	case runDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m *ProgressModel) agent(name string) *agentProgress {
	a, ok := m.agents[name]
	if !ok {
		a = &agentProgress{}
		m.agents[name] = a
	}
	return a
}

func (m *ProgressModel) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(m.title))
	b.WriteString("\n")

	for i, level := range m.plan {
		label := fmt.Sprintf("Level %d", i+1)
		if i == m.current && !m.done {
			b.WriteString(levelStyle.Render("▸ " + label))
		} else {
			b.WriteString(dimStyle.Render("  " + label))
		}
		b.WriteString("\n")

		for _, name := range level {
			b.WriteString("    " + m.agentLine(name) + "\n")
		}
	}

	b.WriteString("\n")
	switch {
	case m.done && m.err != nil:
		b.WriteString(failStyle.Render("Stopped: " + m.err.Error()))
	case m.done:
		b.WriteString(okStyle.Render(fmt.Sprintf("Done in %s", time.Since(m.started).Round(time.Millisecond))))
	case m.stopping:
		b.WriteString(dimStyle.Render("Stopping after running agents finish..."))
	default:
		b.WriteString(dimStyle.Render("q to stop"))
	}
	b.WriteString("\n")
	return b.String()
}

func (m *ProgressModel) agentLine(name string) string {
	a := m.agent(name)
	mark := stateMarks[a.state]
	glyph := mark.glyph
	if a.state == stateRunning {
		glyph = spinnerFrames[m.frame%len(spinnerFrames)]
	}
	line := mark.style.Render(glyph + " " + name)

	switch {
	case a.state == stateDone:
		line += dimStyle.Render("  " + a.elapsed.Round(time.Millisecond).String())
	case a.state == stateFailed && a.err != nil:
		line += dimStyle.Render("  " + a.err.Error())
	}
	return line
}

// RunProgress shows a live progress view while run executes. run receives a
// context cancelled when the user quits and the observer to register on the
// team. The run's own error is returned.
func RunProgress(ctx context.Context, title string, plan [][]string, run func(context.Context, team.Observer) error, opts ...tea.ProgramOption) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := NewProgressModel(title, plan, cancel)
	program := tea.NewProgram(model, append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)...)

	done := make(chan error, 1)
	go func() {
		err := run(runCtx, NewProgressObserver(program.Send))
		program.Send(runDoneMsg{err: err})
		done <- err
	}()

	if _, err := program.Run(); err != nil {
		cancel()
		<-done
		return err
	}
	return <-done
}
