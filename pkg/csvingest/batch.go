package csvingest

// Batch is a bounded, in-memory slice of decoded rows. Every row has exactly
// len(Columns) cells, each nil, int64, float64, string or time.Time according
// to the column type.
type Batch struct {
	Columns []Column
	Rows    [][]any
}

// Len returns the number of rows in the batch.
func (b *Batch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Rows)
}

// ColumnNames returns the batch column names in order.
func (b *Batch) ColumnNames() []string {
	return Schema(b.Columns).Names()
}
