package csvingest

// BatchProgress describes one successfully appended batch.
type BatchProgress struct {
	Table      string
	Index      int   // 1-based batch number
	Rows       int   // rows in this batch
	TotalRows  int64 // rows written so far, including this batch
	BytesRead  int64 // raw source bytes consumed so far
	BytesTotal int64 // raw source size, -1 when unknown
}

// Progress receives load progress. Implementations render it to a terminal
// or a log; they must not retain batches.
type Progress interface {
	// Start is called once before any data is transferred.
	Start(table string, mode LoadMode)

	// BatchWritten is called after each batch is committed.
	BatchWritten(p BatchProgress)

	// Finish is called once with the final row count and the load error, if any.
	Finish(total int64, err error)
}

// NopProgress discards all progress events.
type NopProgress struct{}

func (NopProgress) Start(string, LoadMode)    {}
func (NopProgress) BatchWritten(BatchProgress) {}
func (NopProgress) Finish(int64, error)       {}
