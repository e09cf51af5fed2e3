package parser

import (
	"fmt"

	"github.com/k1nk/qtyaccounting/ast"
)

// ParseError describes a syntax error with its source position.
type ParseError struct {
	Pos     ast.Position
	Message string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Pos.Filename != "" {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename, e.Pos.Line, e.Pos.Column, e.Message)
	}
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// GetPosition returns the position where the error occurred.
func (e *ParseError) GetPosition() ast.Position {
	return e.Pos
}
