package main

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flexp/csvfile"
	"flexp/engine"
)

type stubWindow struct{ flips int }

func (w *stubWindow) Flip() error {
	w.flips++
	return nil
}

func (w *stubWindow) Close() error {
	return nil
}

type stubStim struct{ text string }

func (s *stubStim) Draw() error {
	return nil
}

func (s *stubStim) SetText(text string) {
	s.text = text
}

func (s *stubStim) Text() string {
	return s.text
}

type stubTone struct{ plays int }

func (t *stubTone) Play() error {
	t.plays++
	return nil
}

// stubBackend answers every key wait with respond(current text).
type stubBackend struct {
	win     stubWindow
	txt     stubStim
	tone    stubTone
	respond func(shown string) (string, error)
}

func (b *stubBackend) NewStandardWindow(string, ...engine.WindowOption) (engine.Window, error) {
	return &b.win, nil
}

func (b *stubBackend) NewHardwareWindow() (engine.Window, error) {
	return &b.win, nil
}

func (b *stubBackend) NewCircle(engine.Window, float32, engine.Units) (engine.Drawable, error) {
	return &stubStim{}, nil
}

func (b *stubBackend) NewText(engine.Window) (engine.TextStim, error) {
	return &b.txt, nil
}

func (b *stubBackend) NewTone(float64, float64) (engine.Tone, error) {
	return &b.tone, nil
}

func (b *stubBackend) WaitKeys() (string, error) {
	return b.respond(b.txt.text)
}

func newStubDetection(t *testing.T, respond func(string) (string, error)) (*detectionExperiment, *stubBackend, string) {
	t.Helper()
	backend := &stubBackend{respond: respond}
	base, err := engine.NewBaseExperiment(backend, true, "")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "results.csv")
	results, err := csvfile.New(path, demoColumns, false)
	require.NoError(t, err)

	exp := newDetectionExperiment(base, results)
	exp.fixation = 0
	exp.rng = rand.New(rand.NewPCG(1, 2))
	tick := time.Unix(0, 0)
	exp.now = func() time.Time {
		tick = tick.Add(250 * time.Millisecond)
		return tick
	}
	return exp, backend, path
}

func resultRows(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Equal(t, strings.Join(demoColumns, ","), lines[0])

	var rows [][]string
	for _, l := range lines[1:] {
		rows = append(rows, strings.Split(l, ","))
	}
	return rows
}

func TestDetectionRecordsCorrectTrials(t *testing.T) {
	exp, backend, path := newStubDetection(t, func(shown string) (string, error) {
		return strings.ToLower(shown), nil
	})

	require.NoError(t, runDetection(exp, 3))

	rows := resultRows(t, path)
	require.Len(t, rows, 3)
	for i, row := range rows {
		assert.Equal(t, exp.session, row[0])
		assert.Equal(t, []string{"1", "2", "3"}[i], row[1])
		assert.Contains(t, demoTargets, row[2])
		assert.Equal(t, strings.ToLower(row[2]), row[3])
		assert.Equal(t, "250.0", row[4])
		assert.Equal(t, "True", row[5])
	}
	assert.Zero(t, backend.tone.plays)
	// intro + 2 per trial + outro
	assert.Equal(t, 1+2*3+1, backend.win.flips)
	assert.Equal(t, "Done. Thank you!", backend.txt.text)
}

func TestDetectionBeepsOnErrors(t *testing.T) {
	exp, backend, path := newStubDetection(t, func(string) (string, error) {
		return "Space", nil
	})

	require.NoError(t, runDetection(exp, 2))

	rows := resultRows(t, path)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, "False", row[5])
	}
	// The intro and outro messages also wait for Space, but only trials
	// give feedback.
	assert.Equal(t, 2, backend.tone.plays)
}

func TestDetectionStopsOnAbort(t *testing.T) {
	waits := 0
	exp, _, path := newStubDetection(t, func(shown string) (string, error) {
		waits++
		if waits == 3 {
			return "", engine.ErrAborted
		}
		return shown, nil
	})

	err := runDetection(exp, 5)
	require.ErrorIs(t, err, engine.ErrAborted)
	assert.Len(t, resultRows(t, path), 1)
	assert.Equal(t, 1, exp.completed)
}

func TestDetectionCountsTrialsWhenOutroAborted(t *testing.T) {
	waits := 0
	exp, _, path := newStubDetection(t, func(shown string) (string, error) {
		waits++
		// intro, three trials, then the closing message
		if waits == 5 {
			return "", engine.ErrAborted
		}
		return shown, nil
	})

	err := runDetection(exp, 3)
	require.ErrorIs(t, err, engine.ErrAborted)
	assert.Len(t, resultRows(t, path), 3)
	assert.Equal(t, 3, exp.completed)
}
