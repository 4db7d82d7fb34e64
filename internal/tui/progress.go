package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/vvka-141/csvingest/pkg/csvingest"
)

const maxBarWidth = 60

// batchMsg reports one committed batch to the display.
type batchMsg csvingest.BatchProgress

// finishMsg ends the display.
type finishMsg struct {
	total int64
	err   error
}

// ProgressModel is the bubbletea model of a running load: a spinner, a
// progress bar driven by source bytes read, and running row counts.
type ProgressModel struct {
	table   string
	mode    csvingest.LoadMode
	keys    KeyMap
	spinner spinner.Model
	bar     progress.Model

	batches int
	rows    int64
	read    int64
	total   int64
	started time.Time

	canceling bool
	onCancel  func()

	finished bool
	err      error
}

// NewProgressModel creates the display for a load into table. onCancel, if
// not nil, is called once when the user presses the cancel key.
func NewProgressModel(table string, mode csvingest.LoadMode, onCancel func()) ProgressModel {
	return ProgressModel{
		table: table,
		mode:  mode,
		keys:  DefaultKeyMap(),
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(SpinnerStyle),
		),
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		total:    -1,
		started:  time.Now(),
		onCancel: onCancel,
	}
}

// Init implements tea.Model.
func (m ProgressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case batchMsg:
		m.batches = msg.Index
		m.rows = msg.TotalRows
		m.read = msg.BytesRead
		m.total = msg.BytesTotal
		return m, nil

	case finishMsg:
		m.finished = true
		m.rows = msg.total
		m.err = msg.err
		return m, tea.Quit

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Cancel) && !m.canceling {
			m.canceling = true
			if m.onCancel != nil {
				m.onCancel()
			}
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.bar.Width = min(msg.Width-4, maxBarWidth)
		return m, nil

	case spinner.TickMsg:
		if m.finished {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// Percent returns the fraction of the source consumed, or -1 when the
// source size is unknown.
func (m ProgressModel) Percent() float64 {
	if m.total <= 0 {
		return -1
	}
	p := float64(m.read) / float64(m.total)
	if p > 1 {
		p = 1
	}
	return p
}

// View implements tea.Model.
func (m ProgressModel) View() string {
	if m.finished {
		if m.err != nil {
			return ErrorStyle.Render(fmt.Sprintf("%s Load into %s failed after %s rows: %v",
				SymbolCross, m.table, humanize.Comma(m.rows), m.err)) + "\n"
		}
		return SuccessStyle.Render(fmt.Sprintf("%s Inserted %s rows into %s in %v",
			SymbolCheck, humanize.Comma(m.rows), m.table, time.Since(m.started).Round(time.Second))) + "\n"
	}

	var b strings.Builder
	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(TitleStyle.Render("Loading " + m.table))
	b.WriteString(StatsStyle.Render(" (" + m.mode.String() + ")"))
	b.WriteString("\n")

	if pct := m.Percent(); pct >= 0 {
		b.WriteString(m.bar.ViewAs(pct))
		b.WriteString("\n")
	}

	b.WriteString(StatsStyle.Render(m.stats()))
	b.WriteString("\n")

	if m.canceling {
		b.WriteString(WarningStyle.Render("Canceling after the current batch..."))
	} else {
		b.WriteString(HelpStyle.Render(m.keys.HelpText()))
	}
	b.WriteString("\n")
	return b.String()
}

func (m ProgressModel) stats() string {
	parts := []string{
		humanize.Comma(m.rows) + " rows",
		humanize.Comma(int64(m.batches)) + " batches",
	}
	if m.read > 0 {
		if m.total > 0 {
			parts = append(parts, humanize.Bytes(uint64(m.read))+" / "+humanize.Bytes(uint64(m.total)))
		} else {
			parts = append(parts, humanize.Bytes(uint64(m.read))+" read")
		}
	}
	return strings.Join(parts, " "+SymbolBullet+" ")
}
