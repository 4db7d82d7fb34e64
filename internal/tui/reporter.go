package tui

import (
	"fmt"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/vvka-141/csvingest/pkg/csvingest"
)

// Reporter renders load progress. Interactive reporters draw a live display
// on stderr; non-interactive reporters write verbose log lines.
type Reporter struct {
	logger   csvingest.Logger
	onCancel func()
	opts     []tea.ProgramOption

	interactive bool

	mu      sync.Mutex
	program *tea.Program
	done    chan struct{}
}

var _ csvingest.Progress = (*Reporter)(nil)

// NewReporter creates a progress reporter. onCancel is invoked when the
// user asks the interactive display to stop the load.
func NewReporter(logger csvingest.Logger, interactive bool, onCancel func()) *Reporter {
	return newReporter(logger, interactive, onCancel, tea.WithOutput(os.Stderr))
}

func newReporter(logger csvingest.Logger, interactive bool, onCancel func(), opts ...tea.ProgramOption) *Reporter {
	return &Reporter{
		logger:      logger,
		onCancel:    onCancel,
		opts:        opts,
		interactive: interactive,
	}
}

// Start begins rendering a load into table.
func (r *Reporter) Start(table string, mode csvingest.LoadMode) {
	if !r.interactive {
		r.logger.Verbose("Loading %s (%s mode)", table, mode)
		return
	}

	program := tea.NewProgram(NewProgressModel(table, mode, r.onCancel), r.opts...)
	done := make(chan struct{})

	r.mu.Lock()
	r.program = program
	r.done = done
	r.mu.Unlock()

	go func() {
		defer close(done)
		if _, err := program.Run(); err != nil {
			r.logger.Warn("Progress display stopped: %v", err)
		}
	}()
}

// BatchWritten updates the display with a committed batch.
func (r *Reporter) BatchWritten(p csvingest.BatchProgress) {
	if program := r.running(); program != nil {
		program.Send(batchMsg(p))
		return
	}

	if p.BytesTotal > 0 {
		r.logger.Verbose("Batch %d: %d rows, %d total, %s of %s read",
			p.Index, p.Rows, p.TotalRows, humanize.Bytes(uint64(p.BytesRead)), humanize.Bytes(uint64(p.BytesTotal)))
		return
	}
	r.logger.Verbose("Batch %d: %d rows, %d total", p.Index, p.Rows, p.TotalRows)
}

// Finish stops the display and waits for its final frame.
func (r *Reporter) Finish(total int64, err error) {
	r.mu.Lock()
	program, done := r.program, r.done
	r.program, r.done = nil, nil
	r.mu.Unlock()

	if program == nil {
		return
	}
	program.Send(finishMsg{total: total, err: err})
	<-done
}

// running returns the live program, or nil when none is drawing.
func (r *Reporter) running() *tea.Program {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.program == nil {
		return nil
	}
	select {
	case <-r.done:
		return nil
	default:
		return r.program
	}
}

// Logger returns a logger that prints above the live display while one is
// running and falls through to the underlying logger otherwise.
func (r *Reporter) Logger() csvingest.Logger {
	if !r.interactive {
		return r.logger
	}
	return &displayLogger{r: r}
}

type displayLogger struct {
	r *Reporter
}

func (l *displayLogger) Verbose(format string, args ...interface{}) {
	if v, ok := l.r.logger.(interface{ IsVerbose() bool }); ok && !v.IsVerbose() {
		return
	}
	l.print("[VERBOSE] ", format, args, l.r.logger.Verbose)
}

func (l *displayLogger) Info(format string, args ...interface{}) {
	l.print("", format, args, l.r.logger.Info)
}

func (l *displayLogger) Warn(format string, args ...interface{}) {
	l.print("[WARN] ", format, args, l.r.logger.Warn)
}

func (l *displayLogger) Error(format string, args ...interface{}) {
	l.print("[ERROR] ", format, args, l.r.logger.Error)
}

func (l *displayLogger) print(prefix, format string, args []interface{}, fallback func(string, ...interface{})) {
	program := l.r.running()
	if program == nil {
		fallback(format, args...)
		return
	}
	// Println blocks once the event loop has exited; Send gives up when the
	// program's context ends.
	program.Send(tea.Println(prefix + fmt.Sprintf(format, args...))())
}
