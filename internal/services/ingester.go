// Package services composes a decoder and a destination into the two load modes.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/vvka-141/csvingest/pkg/csvingest"
)

// loadState tracks the chunked loader's progress through a load.
type loadState int

const (
	stateInit loadState = iota
	stateTableCreated
	stateStreaming
	stateAppending
	stateDone
)

func (s loadState) String() string {
	switch s {
	case stateInit:
		return "INIT"
	case stateTableCreated:
		return "TABLE_CREATED"
	case stateStreaming:
		return "STREAMING"
	case stateAppending:
		return "APPENDING"
	case stateDone:
		return "DONE"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// Ingester loads delimited-text sources into a destination table.
// Thread-Safety: NOT safe for concurrent loads on the same instance; the
// destination owns a single connection.
type Ingester struct {
	decoder  csvingest.Decoder
	dest     csvingest.Destination
	logger   csvingest.Logger
	progress csvingest.Progress
}

// NewIngester creates an Ingester with all dependencies injected.
// Panics on nil decoder, destination or logger. A nil progress discards events.
func NewIngester(
	decoder csvingest.Decoder,
	dest csvingest.Destination,
	logger csvingest.Logger,
	progress csvingest.Progress,
) *Ingester {
	if decoder == nil {
		panic("decoder cannot be nil")
	}
	if dest == nil {
		panic("destination cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	if progress == nil {
		progress = csvingest.NopProgress{}
	}

	return &Ingester{
		decoder:  decoder,
		dest:     dest,
		logger:   logger,
		progress: progress,
	}
}

// LoadReplace decodes the whole source into memory, then drops and recreates
// the table with the decoded columns and inserts every row.
func (i *Ingester) LoadReplace(ctx context.Context, req csvingest.LoadRequest) (_ *csvingest.LoadResult, err error) {
	if err := req.Validate(csvingest.ModeReplace); err != nil {
		return nil, err
	}

	result := i.newResult(req, csvingest.ModeReplace)
	started := time.Now()
	i.logger.Verbose("Load %s: replacing %s from %s", result.ID, req.Table, req.Source)

	i.progress.Start(req.Table, csvingest.ModeReplace)
	defer func() { i.progress.Finish(result.Rows, err) }()

	batch, err := i.decoder.ReadAll(ctx, req.Source, req.Schema)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", req.Source, err)
	}
	result.Columns = batch.Columns
	i.logger.Verbose("Decoded %d rows, %d columns in %v", batch.Len(), len(batch.Columns), time.Since(started).Round(time.Millisecond))

	if err := i.dest.CreateOrReplaceTable(ctx, req.Table, batch.Columns); err != nil {
		return nil, err
	}

	if batch.Len() > 0 {
		n, err := i.dest.AppendRows(ctx, req.Table, batch)
		if err != nil {
			return nil, err
		}
		result.Rows = n
		result.Batches = 1
		i.progress.BatchWritten(csvingest.BatchProgress{
			Table:      req.Table,
			Index:      1,
			Rows:       batch.Len(),
			TotalRows:  n,
			BytesTotal: -1,
		})
	}

	result.Duration = time.Since(started)
	i.logger.Info("Inserted %d rows into %s", result.Rows, req.Table)
	return result, nil
}

// LoadAppend establishes the table from a zero-row probe, then streams the
// source in batches of at most req.BatchSize rows and appends each in order.
// An existing table is appended to unless req.Recreate is set, so running
// the same load twice doubles the rows. An existing table keeps its own
// columns; when they do not match the source, the first append fails.
//
// A decode failure stops the load before the failing batch is written. A
// write failure leaves the earlier batches committed. Either way the error
// is returned and the partial result reports what was committed.
func (i *Ingester) LoadAppend(ctx context.Context, req csvingest.LoadRequest) (_ *csvingest.LoadResult, err error) {
	if err := req.Validate(csvingest.ModeAppend); err != nil {
		return nil, err
	}

	result := i.newResult(req, csvingest.ModeAppend)
	started := time.Now()
	state := stateInit
	transition := func(next loadState) {
		i.logger.Verbose("Load %s: %s -> %s", result.ID, state, next)
		state = next
	}

	i.progress.Start(req.Table, csvingest.ModeAppend)
	defer func() { i.progress.Finish(result.Rows, err) }()

	probe, err := i.decoder.Probe(ctx, req.Source, req.Schema)
	if err != nil {
		return nil, fmt.Errorf("failed to probe %s: %w", req.Source, err)
	}
	if req.Recreate {
		err = i.dest.CreateOrReplaceTable(ctx, req.Table, probe.Columns)
	} else {
		err = i.dest.CreateTable(ctx, req.Table, probe.Columns)
	}
	if err != nil {
		return nil, err
	}
	result.Columns = probe.Columns
	transition(stateTableCreated)

	stream, err := i.decoder.Open(ctx, req.Source, req.Schema, req.BatchSize)
	if err != nil {
		return result, fmt.Errorf("failed to open %s: %w", req.Source, err)
	}
	defer stream.Close()

	for state != stateDone {
		transition(stateStreaming)
		pulled := time.Now()
		batch, err := stream.Next(ctx)
		if errors.Is(err, io.EOF) {
			transition(stateDone)
			break
		}
		if err != nil {
			return result, fmt.Errorf("failed to read batch %d of %s: %w", result.Batches+1, req.Source, err)
		}

		transition(stateAppending)
		written := time.Now()
		n, err := i.dest.AppendRows(ctx, req.Table, batch)
		if err != nil {
			return result, fmt.Errorf("batch %d: %w", result.Batches+1, err)
		}
		result.Rows += n
		result.Batches++

		i.logger.Info("Inserted chunk: %d", n)
		i.logger.Verbose("Batch %d: decoded in %v, written in %v",
			result.Batches, written.Sub(pulled).Round(time.Millisecond), time.Since(written).Round(time.Millisecond))

		read, total := stream.BytesRead()
		i.progress.BatchWritten(csvingest.BatchProgress{
			Table:      req.Table,
			Index:      result.Batches,
			Rows:       batch.Len(),
			TotalRows:  result.Rows,
			BytesRead:  read,
			BytesTotal: total,
		})
	}

	result.Duration = time.Since(started)
	i.logger.Info("Inserted %d rows into %s", result.Rows, req.Table)
	return result, nil
}

func (i *Ingester) newResult(req csvingest.LoadRequest, mode csvingest.LoadMode) *csvingest.LoadResult {
	return &csvingest.LoadResult{
		ID:    uuid.New(),
		Table: req.Table,
		Mode:  mode,
	}
}
