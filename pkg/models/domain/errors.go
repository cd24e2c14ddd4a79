package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFileType is returned for upload extensions outside
	// csv/xlsx/xls/json.
	ErrUnsupportedFileType = errors.New("unsupported file type")
	// ErrUnsupportedKind is returned for chart kinds the renderer does not know.
	ErrUnsupportedKind = errors.New("unsupported chart kind")
	// ErrUnknownOperator is returned for aggregation operators outside
	// sum/mean/count/min/max.
	ErrUnknownOperator = errors.New("unknown aggregation operator")
	// ErrIndexOutOfRange is returned by positional record removal.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrBusy is returned when an action is triggered while another is
	// still running in the same session.
	ErrBusy = errors.New("another operation is in progress")
	// ErrNoDataset is returned when an action requires an uploaded dataset.
	ErrNoDataset = errors.New("no dataset loaded")
)

// InputError covers bad uploads: unknown file types, unparseable content,
// missing required columns. The triggering operation aborts with no state change.
type InputError struct {
	Op  string
	Err error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("input error in %s: %v", e.Op, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

// AggregationError covers invalid aggregation requests; the aggregation is
// reported and not added to any record.
type AggregationError struct {
	Column string
	Op     string
	Err    error
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("cannot aggregate %q with %s: %v", e.Column, e.Op, e.Err)
}

func (e *AggregationError) Unwrap() error { return e.Err }

// RenderError covers chart backend failures. Chart-dependent follow-on steps
// are skipped, never treated as fatal to the broader flow.
type RenderError struct {
	Kind string
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("cannot render %s chart: %v", e.Kind, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// AssemblyError covers structural export failures: the output directory or
// file cannot be created, or a write fails unrecoverably. Fatal to the export
// only; the in-memory record store stays usable for a retry.
type AssemblyError struct {
	Stage string
	Err   error
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("report assembly failed at %s: %v", e.Stage, e.Err)
}

func (e *AssemblyError) Unwrap() error { return e.Err }
