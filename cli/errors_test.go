package cli

import (
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/k1nk/qtyaccounting/ast"
	"github.com/k1nk/qtyaccounting/parser"
)

func TestErrorRenderer_RenderParseErrorWithSourceContext(t *testing.T) {
	sourceContent := `<<2022-05-14
 Dr 商品 *10個 6000円
 Cr
>>`

	parseErr := &parser.ParseError{
		Pos: ast.Position{
			Filename: "test.journal",
			Line:     3,
			Column:   4,
		},
		Message: "expected account after 'Cr'",
	}

	renderer := NewErrorRenderer([]byte(sourceContent))
	rendered := renderer.Render(parseErr)

	assert.Contains(t, rendered, "expected account after 'Cr'")
	assert.Contains(t, rendered, "test.journal:3:4")
	assert.Contains(t, rendered, "Dr 商品")
	assert.Contains(t, rendered, "^")

	// Source lines are indented with 3 spaces.
	foundIndentedLine := false
	for _, line := range strings.Split(rendered, "\n") {
		if strings.HasPrefix(line, "   ") && strings.Contains(line, "Dr 商品") {
			foundIndentedLine = true
			break
		}
	}
	assert.True(t, foundIndentedLine)
}

func TestErrorRenderer_RenderWithoutSource(t *testing.T) {
	parseErr := &parser.ParseError{
		Pos:     ast.Position{Filename: "test.journal", Line: 1, Column: 1},
		Message: "expected datetime after '<<'",
	}

	renderer := NewErrorRenderer(nil)
	rendered := renderer.Render(parseErr)

	// Without source there is no context block, just the message.
	assert.Equal(t, parseErr.Error(), rendered)
}

func TestErrorRenderer_RenderAll(t *testing.T) {
	errs := []error{
		&parser.ParseError{Pos: ast.Position{Line: 1, Column: 1}, Message: "first"},
		&parser.ParseError{Pos: ast.Position{Line: 2, Column: 1}, Message: "second"},
	}

	renderer := NewErrorRenderer(nil)
	rendered := renderer.RenderAll(errs)

	assert.Contains(t, rendered, "first")
	assert.Contains(t, rendered, "second")
	assert.Contains(t, rendered, "\n\n")

	assert.Equal(t, "", renderer.RenderAll(nil))
}
