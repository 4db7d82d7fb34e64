package services

import (
	"context"
	"sync"

	"github.com/vvka-141/csvingest/pkg/csvingest"
)

type mockDestination struct {
	createErr error
	// appendErrAt fails the n-th append (1-based); 0 never fails.
	appendErrAt int
	appendErr   error
	onAppend    func(n int)

	created  [][]csvingest.Column
	kept     int
	appended []int
	rows     [][]any
	closed   bool
}

func (m *mockDestination) CreateOrReplaceTable(_ context.Context, _ string, columns []csvingest.Column) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, columns)
	m.rows = nil
	return nil
}

func (m *mockDestination) CreateTable(_ context.Context, _ string, columns []csvingest.Column) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.created == nil {
		m.created = append(m.created, columns)
	}
	m.kept++
	return nil
}

func (m *mockDestination) AppendRows(_ context.Context, _ string, batch *csvingest.Batch) (int64, error) {
	call := len(m.appended) + 1
	if m.appendErrAt == call {
		return 0, m.appendErr
	}
	m.appended = append(m.appended, batch.Len())
	m.rows = append(m.rows, batch.Rows...)
	if m.onAppend != nil {
		m.onAppend(call)
	}
	return int64(batch.Len()), nil
}

func (m *mockDestination) Close() error {
	m.closed = true
	return nil
}

type mockDecoder struct {
	probeErr   error
	readAllErr error
	openErr    error
}

func (m *mockDecoder) Probe(context.Context, string, csvingest.Schema) (*csvingest.Batch, error) {
	return &csvingest.Batch{}, m.probeErr
}

func (m *mockDecoder) Open(context.Context, string, csvingest.Schema, int) (csvingest.BatchStream, error) {
	return nil, m.openErr
}

func (m *mockDecoder) ReadAll(context.Context, string, csvingest.Schema) (*csvingest.Batch, error) {
	return nil, m.readAllErr
}

type recordingProgress struct {
	mu       sync.Mutex
	started  []string
	batches  []csvingest.BatchProgress
	finished bool
	total    int64
	err      error
}

func (r *recordingProgress) Start(table string, mode csvingest.LoadMode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, table+":"+mode.String())
}

func (r *recordingProgress) BatchWritten(p csvingest.BatchProgress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, p)
}

func (r *recordingProgress) Finish(total int64, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished = true
	r.total = total
	r.err = err
}
