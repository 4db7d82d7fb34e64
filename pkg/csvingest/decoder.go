package csvingest

import "context"

// Decoder turns a delimited-text source into typed batches.
// A source is a local path, a file:// URL or an http(s) URL; gzip content
// is decompressed transparently.
type Decoder interface {
	// Probe resolves the source's column set (names, order and types) without
	// materializing any rows. The returned batch has zero rows.
	Probe(ctx context.Context, source string, schema Schema) (*Batch, error)

	// Open starts a lazy stream of batches of at most batchSize rows.
	// The caller must Close the stream.
	Open(ctx context.Context, source string, schema Schema, batchSize int) (BatchStream, error)

	// ReadAll decodes the entire source into a single batch.
	ReadAll(ctx context.Context, source string, schema Schema) (*Batch, error)
}

// BatchStream is a cursor over the batches of one source.
type BatchStream interface {
	// Columns returns the resolved column set, identical to Probe's.
	Columns() []Column

	// Next returns the next non-empty batch, or io.EOF once the source is
	// exhausted. A decode failure anywhere in the batch fails the whole batch.
	Next(ctx context.Context) (*Batch, error)

	// BytesRead returns the raw (possibly compressed) bytes consumed so far
	// and the total size, or -1 when the size is unknown.
	BytesRead() (read, total int64)

	// Close releases the underlying source.
	Close() error
}
