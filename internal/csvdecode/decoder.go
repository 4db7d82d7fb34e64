// Package csvdecode decodes comma-separated sources into typed batches.
//
// The first line is the header. Declared columns keep their declared type;
// every other header column is typed by inspecting a fixed sample of leading
// rows, so the resolved column set does not depend on the batch size a
// caller streams with.
package csvdecode

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/vvka-141/csvingest/internal/source"
	"github.com/vvka-141/csvingest/pkg/csvingest"
)

var errNoColumns = errors.New("no columns to parse from source")

// Decoder implements csvingest.Decoder for delimited text.
type Decoder struct {
	// Opener resolves locators; nil uses the default opener.
	Opener *source.Opener

	// Comma is the field delimiter; zero means ','.
	Comma rune

	// SampleRows is the number of data rows inspected for type inference;
	// zero means csvingest.InferenceSampleRows.
	SampleRows int
}

// New returns a Decoder with default settings.
func New() *Decoder {
	return &Decoder{}
}

var _ csvingest.Decoder = (*Decoder)(nil)

// Probe resolves the column set of src without materializing rows.
func (d *Decoder) Probe(ctx context.Context, src string, schema csvingest.Schema) (*csvingest.Batch, error) {
	s, err := d.open(ctx, src, schema, 0)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return &csvingest.Batch{Columns: s.Columns()}, nil
}

// Open starts a stream of batches of at most batchSize rows.
func (d *Decoder) Open(ctx context.Context, src string, schema csvingest.Schema, batchSize int) (csvingest.BatchStream, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d: %w", batchSize, csvingest.ErrInvalidConfig)
	}
	return d.open(ctx, src, schema, batchSize)
}

// ReadAll decodes all of src into one batch.
func (d *Decoder) ReadAll(ctx context.Context, src string, schema csvingest.Schema) (*csvingest.Batch, error) {
	s, err := d.open(ctx, src, schema, 0)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	b, err := s.Next(ctx)
	if errors.Is(err, io.EOF) {
		return &csvingest.Batch{Columns: s.Columns()}, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// open reads the header and the inference sample. A batchSize of zero
// means unbounded batches.
func (d *Decoder) open(ctx context.Context, src string, schema csvingest.Schema, batchSize int) (*Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rd *source.Reader
	var err error
	if d.Opener != nil {
		rd, err = d.Opener.Open(ctx, src)
	} else {
		rd, err = source.Open(ctx, src)
	}
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(rd)
	if d.Comma != 0 {
		cr.Comma = d.Comma
	}
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true
	cr.LazyQuotes = true

	s := &Stream{
		src:       src,
		rd:        rd,
		cr:        cr,
		batchSize: batchSize,
	}

	header, err := cr.Read()
	if err != nil {
		rd.Close()
		if errors.Is(err, io.EOF) {
			return nil, &csvingest.DecodeError{Source: src, Err: errNoColumns}
		}
		return nil, s.readError(err)
	}
	names := headerNames(header)

	sampleRows := d.SampleRows
	if sampleRows <= 0 {
		sampleRows = csvingest.InferenceSampleRows
	}
	if err := s.fillSample(sampleRows); err != nil {
		rd.Close()
		return nil, err
	}
	s.columns = resolveColumns(names, schema, s.pending)
	return s, nil
}

// headerNames names blank header cells "Unnamed: <i>" and suffixes repeated
// names with ".1", ".2", ...
func headerNames(header []string) []string {
	names := make([]string, len(header))
	used := make(map[string]bool, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		if strings.TrimSpace(h) == "" {
			h = "Unnamed: " + strconv.Itoa(i)
		}
		name := h
		for n := 1; used[name]; n++ {
			name = h + "." + strconv.Itoa(n)
		}
		used[name] = true
		names[i] = name
	}
	return names
}

func resolveColumns(names []string, schema csvingest.Schema, sample []record) []csvingest.Column {
	cols := make([]csvingest.Column, len(names))
	for i, name := range names {
		if c, ok := schema.Lookup(name); ok {
			cols[i] = c
			continue
		}
		var in inferer
		for _, rec := range sample {
			if i < len(rec.fields) {
				in.observe(rec.fields[i])
			}
		}
		cols[i] = csvingest.Column{Name: name, Type: in.result(len(sample))}
	}
	return cols
}

type record struct {
	line   int
	fields []string
}

// Stream is a csvingest.BatchStream over one opened source.
type Stream struct {
	src       string
	rd        *source.Reader
	cr        *csv.Reader
	columns   []csvingest.Column
	batchSize int

	pending []record
	eof     bool
	err     error
}

var _ csvingest.BatchStream = (*Stream)(nil)

// Columns returns the resolved columns.
func (s *Stream) Columns() []csvingest.Column {
	return slices.Clone(s.columns)
}

// BytesRead returns the raw bytes consumed and the source size.
func (s *Stream) BytesRead() (int64, int64) {
	return s.rd.BytesRead(), s.rd.Size()
}

// Close releases the source.
func (s *Stream) Close() error {
	return s.rd.Close()
}

// Next decodes the next batch. A failure is sticky: later calls return it
// again.
func (s *Stream) Next(ctx context.Context) (*csvingest.Batch, error) {
	if s.err != nil {
		return nil, s.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	capacity := s.batchSize
	if capacity <= 0 {
		capacity = len(s.pending)
	}
	b := &csvingest.Batch{
		Columns: s.Columns(),
		Rows:    make([][]any, 0, capacity),
	}

	for s.batchSize <= 0 || len(b.Rows) < s.batchSize {
		rec, ok, err := s.nextRecord()
		if err != nil {
			s.err = err
			return nil, err
		}
		if !ok {
			break
		}
		row, err := s.decodeRow(rec)
		if err != nil {
			s.err = err
			return nil, err
		}
		b.Rows = append(b.Rows, row)
	}

	if len(b.Rows) == 0 {
		return nil, io.EOF
	}
	return b, nil
}

func (s *Stream) fillSample(n int) error {
	for len(s.pending) < n {
		fields, line, err := s.read()
		if err != nil {
			return err
		}
		if fields == nil {
			return nil
		}
		s.pending = append(s.pending, record{line: line, fields: slices.Clone(fields)})
	}
	return nil
}

func (s *Stream) nextRecord() (record, bool, error) {
	if len(s.pending) > 0 {
		rec := s.pending[0]
		s.pending[0] = record{}
		s.pending = s.pending[1:]
		return rec, true, nil
	}
	fields, line, err := s.read()
	if err != nil || fields == nil {
		return record{}, false, err
	}
	return record{line: line, fields: fields}, true, nil
}

// read returns the next raw record, or nil fields at end of input.
func (s *Stream) read() ([]string, int, error) {
	if s.eof {
		return nil, 0, nil
	}
	fields, err := s.cr.Read()
	if errors.Is(err, io.EOF) {
		s.eof = true
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, s.readError(err)
	}
	line, _ := s.cr.FieldPos(0)
	return fields, line, nil
}

func (s *Stream) readError(err error) error {
	de := &csvingest.DecodeError{Source: s.src, Err: err}
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		de.Line = pe.Line
	}
	return de
}

func (s *Stream) decodeRow(rec record) ([]any, error) {
	if len(rec.fields) > len(s.columns) {
		return nil, &csvingest.DecodeError{
			Source: s.src,
			Line:   rec.line,
			Err:    fmt.Errorf("expected %d fields, saw %d", len(s.columns), len(rec.fields)),
		}
	}
	row := make([]any, len(s.columns))
	for i, raw := range rec.fields {
		v, err := Coerce(s.columns[i].Type, raw)
		if err != nil {
			return nil, &csvingest.DecodeError{
				Source: s.src,
				Line:   rec.line,
				Column: s.columns[i].Name,
				Value:  raw,
				Err:    fmt.Errorf("%w for %s column", err, s.columns[i].Type),
			}
		}
		row[i] = v
	}
	return row, nil
}
