package journal

import (
	"fmt"

	"github.com/k1nk/qtyaccounting/ast"
)

// TypeError reports a reference that resolved to a value of the wrong
// type, or a parameter outside its allowed domain.
type TypeError struct {
	Pos     ast.Position
	Key     string // the reference key, when applicable
	Message string
}

// Error implements the error interface.
func (e *TypeError) Error() string {
	if e.Pos.Line > 0 {
		return fmt.Sprintf("%s: %s", e.Pos, e.Message)
	}
	return e.Message
}

// GetPosition returns the position where the error occurred.
func (e *TypeError) GetPosition() ast.Position {
	return e.Pos
}

// MissingHeaderError reports an entry without a usable header datetime.
type MissingHeaderError struct {
	Pos ast.Position
}

// Error implements the error interface.
func (e *MissingHeaderError) Error() string {
	if e.Pos.Line > 0 {
		return fmt.Sprintf("%s: entry has no header datetime", e.Pos)
	}
	return "entry has no header datetime"
}

// GetPosition returns the position where the error occurred.
func (e *MissingHeaderError) GetPosition() ast.Position {
	return e.Pos
}
