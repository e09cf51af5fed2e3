package ledger

import (
	"fmt"

	"github.com/k1nk/qtyaccounting/ast"
	"github.com/k1nk/qtyaccounting/journal"
)

// MissingValueError is returned when a leg does not carry enough values
// to derive its quantity and amount.
type MissingValueError struct {
	Key     journal.AccountKey
	Pos     ast.Position
	Message string
}

func (e *MissingValueError) Error() string {
	location := fmt.Sprintf("%s:%d", e.Pos.Filename, e.Pos.Line)
	if e.Pos.Filename == "" {
		location = e.Key.String()
	}
	return fmt.Sprintf("%s: %s", location, e.Message)
}

func (e *MissingValueError) GetPosition() ast.Position {
	return e.Pos
}

// OperatorConflictError is returned when deferred operators within an
// entry cannot be resolved, for example two difference operators on the
// same field or an equality operator with no mirrored leg.
type OperatorConflictError struct {
	EntryID int
	Key     journal.AccountKey
	Pos     ast.Position
	Message string
}

func (e *OperatorConflictError) Error() string {
	location := fmt.Sprintf("%s:%d", e.Pos.Filename, e.Pos.Line)
	if e.Pos.Filename == "" {
		location = fmt.Sprintf("entry %d", e.EntryID)
	}
	return fmt.Sprintf("%s: %s", location, e.Message)
}

func (e *OperatorConflictError) GetPosition() ast.Position {
	return e.Pos
}

// ValidationErrors wraps multiple registration errors.
type ValidationErrors struct {
	Errors []error
}

func (e *ValidationErrors) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d validation errors occurred", len(e.Errors))
}

// Unwrap returns the underlying errors for error unwrapping.
func (e *ValidationErrors) Unwrap() []error {
	return e.Errors
}
