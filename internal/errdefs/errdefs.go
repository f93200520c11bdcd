// Package errdefs defines the error taxonomy shared by the analysis
// stages. Fatal conditions abort a stage with an enumerable error;
// recoverable conditions are logged as warnings by the stage that
// detects them and never interrupt the run.
package errdefs

import (
	"fmt"
	"strings"
)

// SchemaError reports required columns missing from a tabular input.
// It always lists every missing column, not just the first.
type SchemaError struct {
	Source  string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: missing required columns: %s", e.Source, strings.Join(e.Missing, ", "))
}

// EmptyIntersectionError reports two keyed inputs that share no identifiers.
type EmptyIntersectionError struct {
	Left  string
	Right string
}

func (e *EmptyIntersectionError) Error() string {
	return fmt.Sprintf("no shared identifiers between %s and %s", e.Left, e.Right)
}

// OrderMismatchError reports sample columns and sample-table rows that are
// a permutation of each other but not in the same order. The ordering is
// ambiguous, so it is never auto-corrected.
type OrderMismatchError struct {
	Expected []string
	Got      []string
}

func (e *OrderMismatchError) Error() string {
	return fmt.Sprintf("sample order mismatch: count matrix has [%s], sample table has [%s]; reorder one input explicitly",
		strings.Join(e.Expected, ", "), strings.Join(e.Got, ", "))
}

// ParameterError reports a caller-supplied parameter that violates a
// precondition of the stage it was passed to.
type ParameterError struct {
	Name   string
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Name, e.Reason)
}

// EmptyResultError reports a filtering stage that retained zero windows.
type EmptyResultError struct {
	Stage string
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("%s retained no windows", e.Stage)
}
