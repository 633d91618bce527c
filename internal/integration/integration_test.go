package integration

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlstage/sqlstage/internal/playback"
	"github.com/sqlstage/sqlstage/internal/scenario"
)

// TestEveryScenarioPlaysToCompletion runs the whole pipeline per catalog
// entry: build the walkthrough from its fixtures, hand the steps to a playback
// engine at millisecond pacing, and let the timer chain carry it to Complete.
func TestEveryScenarioPlaysToCompletion(t *testing.T) {
	for _, name := range scenario.Names() {
		t.Run(name, func(t *testing.T) {
			w, err := scenario.Build(name)
			require.NoError(t, err)
			require.NotEmpty(t, w.Steps)

			var mu sync.Mutex
			var seen []int
			eng, err := playback.NewEngine(w.Steps,
				playback.WithBaseInterval(2*time.Millisecond),
				playback.WithSpeed(playback.SpeedFast),
				playback.WithOnStep(func(st playback.State, _ playback.Step) {
					mu.Lock()
					seen = append(seen, st.StepIndex)
					mu.Unlock()
				}),
			)
			require.NoError(t, err)
			defer eng.Close()

			eng.Play()

			want := len(w.Steps) - 1
			require.Eventually(t, func() bool {
				mu.Lock()
				defer mu.Unlock()
				return len(seen) == want && eng.State().Phase == playback.Complete
			}, 5*time.Second, time.Millisecond)

			st := eng.State()
			assert.Equal(t, want, st.StepIndex)
			assert.False(t, st.Playing)

			mu.Lock()
			defer mu.Unlock()
			for i, idx := range seen {
				assert.Equal(t, i+1, idx, "step indexes must arrive in order, exactly once")
			}
		})
	}
}

// TestManualScrubbingThroughWalkthrough drives a scenario with GoToStep the
// way a host scrub bar would, without any timers involved.
func TestManualScrubbingThroughWalkthrough(t *testing.T) {
	w, err := scenario.Build("left-join")
	require.NoError(t, err)

	eng, err := playback.NewEngine(w.Steps)
	require.NoError(t, err)
	defer eng.Close()

	for i, step := range w.Steps {
		require.NoError(t, eng.GoToStep(i))
		assert.Equal(t, step, eng.CurrentStep())
		assert.False(t, eng.State().Playing)
	}
	assert.Equal(t, playback.Complete, eng.State().Phase)

	eng.Reset()
	assert.Equal(t, playback.Idle, eng.State().Phase)
	assert.Equal(t, w.Steps[0], eng.CurrentStep())
}

// TestPauseInterruptsScenarioRun starts a real-timer run, pauses it partway,
// and checks the engine holds position until resumed.
func TestPauseInterruptsScenarioRun(t *testing.T) {
	w, err := scenario.Build("row-number")
	require.NoError(t, err)

	eng, err := playback.NewEngine(w.Steps, playback.WithBaseInterval(5*time.Millisecond))
	require.NoError(t, err)
	defer eng.Close()

	eng.Play()
	require.Eventually(t, func() bool {
		return eng.State().StepIndex >= 1
	}, 5*time.Second, time.Millisecond)

	eng.Pause()
	held := eng.State()
	assert.False(t, held.Playing)

	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, held.StepIndex, eng.State().StepIndex)

	eng.Play()
	require.Eventually(t, func() bool {
		return eng.State().Phase == playback.Complete
	}, 5*time.Second, time.Millisecond)
	assert.Equal(t, len(w.Steps)-1, eng.State().StepIndex)
}

// TestScenarioBuildsAreDeterministic rebuilds walkthroughs and expects
// identical output: the evaluator is pure and the fixtures are embedded, so
// nothing may drift between runs.
func TestScenarioBuildsAreDeterministic(t *testing.T) {
	for _, name := range []string{"full-join", "rank", "correlated-subquery"} {
		a, err := scenario.Build(name)
		require.NoError(t, err)
		b, err := scenario.Build(name)
		require.NoError(t, err)

		assert.Equal(t, a.Columns, b.Columns, name)
		assert.Equal(t, a.Rows, b.Rows, name)
		assert.Equal(t, a.Steps, b.Steps, name)
	}
}

// TestStepIndexesMatchEnginePositions confirms the walkthrough numbers its
// steps the way the engine expects: Step.Index equals the slice position, so
// GoToStep(step.Index) always lands on that step.
func TestStepIndexesMatchEnginePositions(t *testing.T) {
	for _, name := range scenario.Names() {
		w, err := scenario.Build(name)
		require.NoError(t, err)

		eng, err := playback.NewEngine(w.Steps)
		require.NoError(t, err)

		for _, step := range w.Steps {
			require.NoError(t, eng.GoToStep(step.Index))
			assert.Equal(t, step.Title, eng.CurrentStep().Title)
		}
		eng.Close()
	}
}
