package table

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTable is matched by every InvalidTableError
	ErrInvalidTable = errors.New("invalid table")
	// ErrOrphanCell is matched by every OrphanCellError
	ErrOrphanCell = errors.New("orphan cell")
)

// InvalidTableError reports a structural precondition the section's shapes
// did not meet
type InvalidTableError struct {
	Reason string
	Index  int // offending shape in the section, -1 when the input ran out
}

func (e *InvalidTableError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("invalid table: %s", e.Reason)
	}
	return fmt.Sprintf("invalid table: %s (shape %d)", e.Reason, e.Index)
}

// Is lets errors.Is match ErrInvalidTable
func (e *InvalidTableError) Is(target error) bool {
	return target == ErrInvalidTable
}

// OrphanCellError reports a text outside every row and column band
type OrphanCellError struct {
	Text           string
	X0, Y0, X1, Y1 float64
}

func (e *OrphanCellError) Error() string {
	return fmt.Sprintf("orphan cell %q @(%.2f,%.2f)->(%.2f,%.2f)", e.Text, e.X0, e.Y0, e.X1, e.Y1)
}

// Is lets errors.Is match ErrOrphanCell
func (e *OrphanCellError) Is(target error) bool {
	return target == ErrOrphanCell
}

const (
	reasonHeaderRule    = "missing or malformed header rule"
	reasonHeaderText    = "missing header text"
	reasonHeaderOutside = "header cell outside header rule"
	reasonClosingRule   = "missing closing rule"
)

func invalid(reason string, index int) error {
	return &InvalidTableError{Reason: reason, Index: index}
}
