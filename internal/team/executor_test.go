package team

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type executeFunc func(*Team, context.Context, map[string]any, ...RunOption) (Results, error)

var executors = map[Mode]executeFunc{
	ModeSequential: (*Team).ExecuteSequential,
	ModeParallel:   (*Team).ExecuteParallel,
	ModeOptimal:    (*Team).ExecuteOptimal,
}

func TestExecuteEmptyTeam(t *testing.T) {
	tm, err := New("Empty", nil, nil)
	require.NoError(t, err)

	for mode, exec := range executors {
		t.Run(string(mode), func(t *testing.T) {
			res, err := exec(tm, context.Background(), nil)
			require.NoError(t, err)
			assert.NotNil(t, res)
			assert.Empty(t, res)
		})
	}
}

func TestExecuteSingleAgent(t *testing.T) {
	tm, err := New("Solo", agents("Only"), nil)
	require.NoError(t, err)

	for mode, exec := range executors {
		t.Run(string(mode), func(t *testing.T) {
			res, err := exec(tm, context.Background(), map[string]any{})
			require.NoError(t, err)
			assert.Equal(t, Results{"Only": "Only:goal of Only"}, res)
		})
	}
}

func TestExecuteThreadsPrerequisiteResults(t *testing.T) {
	for mode, exec := range executors {
		t.Run(string(mode), func(t *testing.T) {
			a, b, c, side := newFake("A"), newFake("B"), newFake("C"), newFake("Side")
			tm, err := New("Chain", []Agent{a, b, c, side}, map[string][]string{
				"B": {"A"},
				"C": {"B"},
			})
			require.NoError(t, err)

			res, err := exec(tm, context.Background(), map[string]any{"dataset": "sales.csv"})
			require.NoError(t, err)
			assert.Equal(t, []string{"A", "B", "C", "Side"}, sortedNames(res))

			aCalls := a.Calls()
			require.Len(t, aCalls, 1)
			assert.Equal(t, map[string]any{"dataset": "sales.csv"}, aCalls[0].input)
			assert.Equal(t, "goal of A", aCalls[0].task)

			cCalls := c.Calls()
			require.Len(t, cCalls, 1)
			assert.Equal(t, map[string]any{
				"dataset": "sales.csv",
				"A":       "A:goal of A",
				"B":       "B:goal of B",
			}, cCalls[0].input)

			sideCalls := side.Calls()
			require.Len(t, sideCalls, 1)
			assert.NotContains(t, sideCalls[0].input, "A", "unrelated agents do not see other results")
		})
	}
}

func TestExecuteDoesNotMutateCallerInput(t *testing.T) {
	tm, err := New("T", agents("A", "B"), map[string][]string{"B": {"A"}})
	require.NoError(t, err)

	input := map[string]any{"k": "v"}
	_, err = tm.ExecuteParallel(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"k": "v"}, input)
}

func TestExecuteTasks(t *testing.T) {
	a := newFake("A")
	tm, err := New("T", []Agent{a, plainAgent{name: "P"}}, nil)
	require.NoError(t, err)

	res, err := tm.ExecuteSequential(context.Background(), nil, WithTask("A", "summarize"))
	require.NoError(t, err)
	assert.Equal(t, "A:summarize", res["A"])
	assert.Equal(t, "task=", res["P"], "agents without a goal get an empty task")

	res, err = tm.ExecuteOptimal(context.Background(), nil, WithTasks(map[string]string{"P": "list"}))
	require.NoError(t, err)
	assert.Equal(t, "A:goal of A", res["A"])
	assert.Equal(t, "task=list", res["P"])
}

func TestExecuteSequentialFailFast(t *testing.T) {
	boom := errors.New("boom")
	a, b, c, d := newFake("A"), newFake("B"), newFake("C"), newFake("D")
	b.perform = func(context.Context, string, map[string]any) (any, error) { return nil, boom }

	tm, err := New("T", []Agent{a, b, c, d}, map[string][]string{"C": {"B"}})
	require.NoError(t, err)
	// plan: [A B D] [C]

	res, err := tm.ExecuteSequential(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var ee *ExecutionError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, "B", ee.Agent)
	assert.Equal(t, 0, ee.Level)

	assert.Equal(t, Results{"A": "A:goal of A"}, res, "results before the failure are kept")
	assert.Empty(t, d.Calls(), "sequential stops at the first failure")
	assert.Empty(t, c.Calls())
}

func TestExecuteParallelLevelSettlesBeforeFailing(t *testing.T) {
	for _, mode := range []Mode{ModeParallel, ModeOptimal} {
		t.Run(string(mode), func(t *testing.T) {
			boom := errors.New("boom")
			fast, slow, ok, next := newFake("Fast"), newFake("Slow"), newFake("Ok"), newFake("Next")
			fast.perform = func(context.Context, string, map[string]any) (any, error) { return nil, boom }

			var slowDone bool
			slow.perform = func(ctx context.Context, task string, _ map[string]any) (any, error) {
				time.Sleep(50 * time.Millisecond)
				slowDone = true
				return "slow result", nil
			}

			tm, err := New("T", []Agent{fast, slow, ok, next}, map[string][]string{
				"Next": {"Fast", "Slow", "Ok"},
			})
			require.NoError(t, err)

			res, err := tm.Execute(context.Background(), mode, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, boom)
			assert.True(t, slowDone, "failing level waits for every sibling")
			assert.Equal(t, "slow result", res["Slow"])
			assert.Contains(t, res, "Ok")
			assert.NotContains(t, res, "Fast")
			assert.Empty(t, next.Calls(), "no later level runs after a failure")
			assert.Equal(t, []string{"Fast"}, FailedAgents(err))

			var ee *ExecutionError
			require.True(t, errors.As(err, &ee))
			assert.Equal(t, 0, ee.Level)
		})
	}
}

func TestExecuteParallelReportsEveryFailure(t *testing.T) {
	a, b := newFake("A"), newFake("B")
	a.perform = func(context.Context, string, map[string]any) (any, error) { return nil, errors.New("a failed") }
	b.perform = func(context.Context, string, map[string]any) (any, error) { return nil, errors.New("b failed") }

	tm, err := New("T", []Agent{a, b}, nil)
	require.NoError(t, err)

	_, err = tm.ExecuteParallel(context.Background(), nil)
	require.Error(t, err)
	assert.ElementsMatch(t, []string{"A", "B"}, FailedAgents(err))
}

func TestExecuteParallelRunsLevelConcurrently(t *testing.T) {
	const n = 3
	var started sync.WaitGroup
	started.Add(n)
	release := make(chan struct{})
	go func() {
		started.Wait()
		close(release)
	}()

	var list []Agent
	for _, name := range []string{"A", "B", "C"} {
		f := newFake(name)
		f.perform = func(ctx context.Context, task string, _ map[string]any) (any, error) {
			started.Done()
			select {
			case <-release:
				return task, nil
			case <-time.After(2 * time.Second):
				return nil, errors.New("siblings never started: level is not concurrent")
			}
		}
		list = append(list, f)
	}

	tm, err := New("T", list, nil)
	require.NoError(t, err)
	res, err := tm.ExecuteParallel(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, res, n)
}

func TestExecuteLevelBarrier(t *testing.T) {
	var mu sync.Mutex
	finished := map[string]bool{}
	mark := func(name string, d time.Duration) func(context.Context, string, map[string]any) (any, error) {
		return func(context.Context, string, map[string]any) (any, error) {
			time.Sleep(d)
			mu.Lock()
			finished[name] = true
			mu.Unlock()
			return name, nil
		}
	}

	a, b, c := newFake("A"), newFake("B"), newFake("C")
	a.perform = mark("A", 40*time.Millisecond)
	b.perform = mark("B", 1*time.Millisecond)
	c.perform = func(context.Context, string, map[string]any) (any, error) {
		mu.Lock()
		defer mu.Unlock()
		if !finished["A"] || !finished["B"] {
			return nil, errors.New("started before previous level settled")
		}
		return "C", nil
	}

	tm, err := New("T", []Agent{a, b, c}, map[string][]string{"C": {"B"}})
	require.NoError(t, err)

	for _, mode := range []Mode{ModeParallel, ModeOptimal} {
		finished = map[string]bool{}
		_, err := tm.Execute(context.Background(), mode, nil)
		assert.NoError(t, err, "mode %s", mode)
	}
}

func TestExecuteMaxConcurrency(t *testing.T) {
	g := &gauge{}
	var list []Agent
	for _, name := range []string{"A", "B", "C", "D"} {
		f := newFake(name)
		f.perform = g.wrap(10 * time.Millisecond)
		list = append(list, f)
	}

	tm, err := New("T", list, nil, WithMaxConcurrency(1))
	require.NoError(t, err)
	res, err := tm.ExecuteParallel(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, res, 4)
	assert.Equal(t, int32(1), g.max.Load())
}

func TestExecuteRecoversPanics(t *testing.T) {
	a := newFake("A")
	a.perform = func(context.Context, string, map[string]any) (any, error) { panic("kaboom") }
	tm, err := New("T", []Agent{a, newFake("B")}, nil)
	require.NoError(t, err)

	for mode, exec := range executors {
		t.Run(string(mode), func(t *testing.T) {
			_, err := exec(tm, context.Background(), nil)
			var ee *ExecutionError
			require.True(t, errors.As(err, &ee))
			assert.Equal(t, "A", ee.Agent)
			assert.ErrorContains(t, err, "kaboom")
		})
	}
}

func TestExecuteCancelledContext(t *testing.T) {
	tm, err := New("T", agents("A", "B"), map[string][]string{"B": {"A"}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for mode, exec := range executors {
		t.Run(string(mode), func(t *testing.T) {
			res, err := exec(tm, ctx, nil)
			assert.ErrorIs(t, err, context.Canceled)
			assert.Empty(t, res)
		})
	}

	// No mode reports a level it never started.
	for mode, exec := range executors {
		t.Run(string(mode)+" observer", func(t *testing.T) {
			rec := &recorder{}
			observed, err := New("T", agents("A", "B"), map[string][]string{"B": {"A"}}, WithObserver(rec))
			require.NoError(t, err)

			_, err = exec(observed, ctx, nil)
			assert.ErrorIs(t, err, context.Canceled)
			assert.Empty(t, rec.Events())
		})
	}
}

func TestExecuteCancelledMidLevel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := &recorder{}
	first, second := newFake("A"), newFake("B")
	first.perform = func(context.Context, string, map[string]any) (any, error) {
		cancel()
		return "a", nil
	}
	tm, err := New("T", []Agent{first, second}, nil, WithObserver(rec))
	require.NoError(t, err)

	res, err := tm.ExecuteSequential(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, Results{"A": "a"}, res)
	assert.Equal(t, []string{
		"level 0 start [A B]",
		"agent A start",
		"agent A done ok=true",
		"level 0 done ok=false",
	}, rec.Events())
	assert.Empty(t, second.Calls())
}

func TestObserverEvents(t *testing.T) {
	rec := &recorder{}
	tm, err := New("T", agents("A", "B"), map[string][]string{"B": {"A"}}, WithObserver(rec))
	require.NoError(t, err)

	_, err = tm.ExecuteOptimal(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"level 0 start [A]",
		"agent A start",
		"agent A done ok=true",
		"level 0 done ok=true",
		"level 1 start [B]",
		"agent B start",
		"agent B done ok=true",
		"level 1 done ok=true",
	}, rec.Events())
}
