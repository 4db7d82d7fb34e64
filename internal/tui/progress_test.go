package tui

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/csvingest/internal/logging"
	"github.com/vvka-141/csvingest/pkg/csvingest"
)

func update(t *testing.T, m ProgressModel, msg tea.Msg) (ProgressModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	pm, ok := next.(ProgressModel)
	require.True(t, ok, "Update returned %T", next)
	return pm, cmd
}

func TestProgressModel_Batches(t *testing.T) {
	m := NewProgressModel("yellow_taxi_data", csvingest.ModeAppend, nil)
	assert.Equal(t, -1.0, m.Percent())
	assert.NotNil(t, m.Init())

	m, cmd := update(t, m, batchMsg{Index: 1, Rows: 100000, TotalRows: 100000, BytesRead: 2_500_000, BytesTotal: 10_000_000})
	assert.Nil(t, cmd)
	assert.InDelta(t, 0.25, m.Percent(), 1e-9)

	view := m.View()
	assert.Contains(t, view, "Loading yellow_taxi_data")
	assert.Contains(t, view, "(append)")
	assert.Contains(t, view, "100,000 rows")
	assert.Contains(t, view, "1 batches")
	assert.Contains(t, view, "2.5 MB / 10 MB")
	assert.Contains(t, view, "ctrl+c cancel")
}

func TestProgressModel_UnknownSize(t *testing.T) {
	m := NewProgressModel("zones", csvingest.ModeAppend, nil)
	m, _ = update(t, m, batchMsg{Index: 2, TotalRows: 20, BytesRead: 4096, BytesTotal: -1})

	assert.Equal(t, -1.0, m.Percent())
	assert.Contains(t, m.View(), "4.1 kB read")
}

func TestProgressModel_PercentClamped(t *testing.T) {
	m := NewProgressModel("t", csvingest.ModeAppend, nil)
	m, _ = update(t, m, batchMsg{Index: 1, BytesRead: 20, BytesTotal: 10})
	assert.Equal(t, 1.0, m.Percent())
}

func TestProgressModel_Finish(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		m := NewProgressModel("zones", csvingest.ModeReplace, nil)
		m, cmd := update(t, m, finishMsg{total: 265})
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
		assert.Contains(t, m.View(), "Inserted 265 rows into zones")
	})

	t.Run("failure", func(t *testing.T) {
		m := NewProgressModel("zones", csvingest.ModeAppend, nil)
		m, _ = update(t, m, finishMsg{total: 10, err: errors.New("disk full")})
		view := m.View()
		assert.Contains(t, view, "Load into zones failed after 10 rows")
		assert.Contains(t, view, "disk full")
	})
}

func TestProgressModel_CancelKeyCallsOnce(t *testing.T) {
	calls := 0
	m := NewProgressModel("t", csvingest.ModeAppend, func() { calls++ })

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})

	assert.Equal(t, 1, calls)
	assert.Contains(t, m.View(), "Canceling after the current batch")
}

func TestProgressModel_WindowSize(t *testing.T) {
	m := NewProgressModel("t", csvingest.ModeAppend, nil)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 30})
	assert.Equal(t, 26, m.bar.Width)

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 200})
	assert.Equal(t, maxBarWidth, m.bar.Width)
}

func TestReporter_NonInteractiveLogs(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(logging.NewWriterLogger(&buf, true), false, nil)

	r.Start("yellow_taxi_data", csvingest.ModeAppend)
	r.BatchWritten(csvingest.BatchProgress{Index: 1, Rows: 10, TotalRows: 10, BytesRead: 1000, BytesTotal: 2000})
	r.BatchWritten(csvingest.BatchProgress{Index: 2, Rows: 5, TotalRows: 15, BytesTotal: -1})
	r.Finish(15, nil)

	assert.Equal(t, strings.Join([]string{
		"[VERBOSE] Loading yellow_taxi_data (append mode)",
		"[VERBOSE] Batch 1: 10 rows, 10 total, 1.0 kB of 2.0 kB read",
		"[VERBOSE] Batch 2: 5 rows, 15 total",
		"",
	}, "\n"), buf.String())

	assert.Same(t, r.logger, r.Logger())
}

func TestReporter_InteractiveRunsAndStops(t *testing.T) {
	var out, logs bytes.Buffer
	r := newReporter(logging.NewWriterLogger(&logs, false), true, nil,
		tea.WithInput(nil), tea.WithOutput(&out), tea.WithoutSignalHandler())

	r.Start("zones", csvingest.ModeReplace)
	r.BatchWritten(csvingest.BatchProgress{Index: 1, Rows: 3, TotalRows: 3, BytesTotal: -1})

	done := make(chan struct{})
	go func() {
		r.Finish(3, nil)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Finish did not return")
	}
	assert.Nil(t, r.running())

	// Once the display has stopped, log lines go straight to the logger.
	r.Logger().Info("Inserted %d rows into %s", 3, "zones")
	assert.Equal(t, "Inserted 3 rows into zones\n", logs.String())
}

func TestReporter_LogAfterDisplayQuit(t *testing.T) {
	var logs bytes.Buffer
	r := newReporter(logging.NewWriterLogger(&logs, false), true, nil,
		tea.WithInput(nil), tea.WithOutput(io.Discard), tea.WithoutSignalHandler())

	r.Start("yellow_taxi_data", csvingest.ModeAppend)
	r.mu.Lock()
	program := r.program
	r.mu.Unlock()
	require.NotNil(t, program)

	// The display quits on its own, as it does on SIGTERM.
	program.Send(tea.QuitMsg{})

	done := make(chan struct{})
	go func() {
		logger := r.Logger()
		for i := 1; i <= 20; i++ {
			logger.Info("Inserted chunk: %d", 100000)
			r.BatchWritten(csvingest.BatchProgress{Index: i, Rows: 100000, TotalRows: int64(i) * 100000, BytesTotal: -1})
		}
		r.Finish(2000000, nil)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("logging blocked after the display quit")
	}
	assert.Nil(t, r.running())
}

func TestReporter_FinishWithoutStart(t *testing.T) {
	r := newReporter(logging.NewNullLogger(), true, nil)
	r.Finish(0, nil)
	assert.Nil(t, r.running())
}
