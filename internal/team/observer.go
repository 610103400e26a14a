package team

import "time"

// Observer receives execution events. AgentStarted and AgentFinished may be
// called from several goroutines at once during a parallel level. Every mode
// checks the context before starting a level: a level that was never started
// produces no events, and a started level always gets LevelFinished.
type Observer interface {
	LevelStarted(level int, agents []string)
	AgentStarted(level int, agent string)
	AgentFinished(level int, agent string, elapsed time.Duration, err error)
	LevelFinished(level int, err error)
}

// NopObserver implements Observer with no-ops. Embed it to override a subset.
type NopObserver struct{}

func (NopObserver) LevelStarted(int, []string)                      {}
func (NopObserver) AgentStarted(int, string)                        {}
func (NopObserver) AgentFinished(int, string, time.Duration, error) {}
func (NopObserver) LevelFinished(int, error)                        {}
