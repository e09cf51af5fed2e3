package parser

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestLexerEntryTokens(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []TokenType
	}{
		{
			name:  "empty entry",
			input: "<< >>",
			want:  []TokenType{LENTRY, RENTRY, EOF},
		},
		{
			name:  "date header",
			input: "<<2022-05-14 >>",
			want:  []TokenType{LENTRY, DATETIME, RENTRY, EOF},
		},
		{
			name:  "datetime header",
			input: "<<2022-05-14T10:30:00 >>",
			want:  []TokenType{LENTRY, DATETIME, RENTRY, EOF},
		},
		{
			name:  "time only header",
			input: "<<T10:30:00 >>",
			want:  []TokenType{LENTRY, TIME, RENTRY, EOF},
		},
		{
			name:  "simple leg",
			input: "<<2022-05-14 Dr 現金 1000円 >>",
			want:  []TokenType{LENTRY, DATETIME, DR, IDENT, NUMBER, IDENT, RENTRY, EOF},
		},
		{
			name:  "japanese side keywords",
			input: "<< 借方 貸方 >>",
			want:  []TokenType{LENTRY, DR, CR, RENTRY, EOF},
		},
		{
			name:  "slash and hashes",
			input: "<< / ## # >>",
			want:  []TokenType{LENTRY, SLASH, DHASH, HASH, RENTRY, EOF},
		},
		{
			name:  "colons",
			input: "<< :: : >>",
			want:  []TokenType{LENTRY, DCOLON, COLON, RENTRY, EOF},
		},
		{
			name:  "single gt is person marker",
			input: "<< > >>",
			want:  []TokenType{LENTRY, GT, RENTRY, EOF},
		},
		{
			name:  "reference brackets",
			input: "<< [key] >>",
			want:  []TokenType{LENTRY, LBRACKET, IDENT, RBRACKET, RENTRY, EOF},
		},
		{
			name:  "partner and memo markers",
			input: "<< $ & >>",
			want:  []TokenType{LENTRY, DOLLAR, AMP, RENTRY, EOF},
		},
		{
			name:  "price marker",
			input: "<< @600 >>",
			want:  []TokenType{LENTRY, AT, NUMBER, RENTRY, EOF},
		},
		{
			name:  "lone angle bracket is illegal",
			input: "<< < >>",
			want:  []TokenType{LENTRY, ILLEGAL, RENTRY, EOF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lexer := NewLexer([]byte(tt.input), "test")
			tokens := lexer.ScanAll()

			assert.Equal(t, len(tt.want), len(tokens), "token count mismatch")

			for i, tok := range tokens {
				assert.Equal(t, tt.want[i], tok.Type, "token type mismatch at %d", i)
			}
		})
	}
}

func TestLexerOperatorBinding(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []TokenType
	}{
		{
			name:  "balance quantity",
			input: "<< *B >>",
			want:  []TokenType{LENTRY, STAR, OP, RENTRY, EOF},
		},
		{
			name:  "diff quantity with unit",
			input: "<< *D個 >>",
			want:  []TokenType{LENTRY, STAR, OP, IDENT, RENTRY, EOF},
		},
		{
			name:  "equal quantity",
			input: "<< *E >>",
			want:  []TokenType{LENTRY, STAR, OP, RENTRY, EOF},
		},
		{
			name:  "numeric quantity",
			input: "<< *10個 >>",
			want:  []TokenType{LENTRY, STAR, NUMBER, IDENT, RENTRY, EOF},
		},
		{
			name:  "bare auto amount",
			input: "<< ? >>",
			want:  []TokenType{LENTRY, QUESTION, RENTRY, EOF},
		},
		{
			name:  "explicit auto amount with unit",
			input: "<< ?A円 >>",
			want:  []TokenType{LENTRY, QUESTION, OP, IDENT, RENTRY, EOF},
		},
		{
			name:  "equal amount",
			input: "<< ?E >>",
			want:  []TokenType{LENTRY, QUESTION, OP, RENTRY, EOF},
		},
		{
			name:  "diff amount",
			input: "<< ?D >>",
			want:  []TokenType{LENTRY, QUESTION, OP, RENTRY, EOF},
		},
		{
			name:  "unknown letter after question is an ident",
			input: "<< ?C >>",
			want:  []TokenType{LENTRY, QUESTION, IDENT, RENTRY, EOF},
		},
		{
			name:  "operator letter without marker is an ident",
			input: "<< E >>",
			want:  []TokenType{LENTRY, IDENT, RENTRY, EOF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lexer := NewLexer([]byte(tt.input), "test")
			tokens := lexer.ScanAll()

			assert.Equal(t, len(tt.want), len(tokens), "token count mismatch")

			for i, tok := range tokens {
				assert.Equal(t, tt.want[i], tok.Type, "token type mismatch at %d", i)
			}
		})
	}
}

func TestLexerNumbers(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"<< 123 >>", "123"},
		{"<< 123.45 >>", "123.45"},
		{"<< -5 >>", "-5"},
		{"<< +7 >>", "+7"},
		{"<< 0.50 >>", "0.50"},
		{"<< 6,000 >>", "6,000"},
		{"<< 1_000 >>", "1_000"},
		{"<< 1,234,567.89 >>", "1,234,567.89"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			source := []byte(tt.input)
			lexer := NewLexer(source, "test")
			tokens := lexer.ScanAll()

			assert.Equal(t, 4, len(tokens))
			assert.Equal(t, NUMBER, tokens[1].Type)
			assert.Equal(t, tt.want, tokens[1].String(source))
		})
	}
}

func TestLexerGroupedNumberBeforeUnit(t *testing.T) {
	source := []byte("<< 6,000円 >>")
	tokens := NewLexer(source, "test").ScanAll()

	want := []TokenType{LENTRY, NUMBER, IDENT, RENTRY, EOF}
	assert.Equal(t, len(want), len(tokens))
	for i, tok := range tokens {
		assert.Equal(t, want[i], tok.Type, "token type mismatch at %d", i)
	}
	assert.Equal(t, "6,000", tokens[1].String(source))
	assert.Equal(t, "円", tokens[2].String(source))
}

func TestLexerFullWidthSpace(t *testing.T) {
	source := []byte("<<2022-05-14　Dr　現金　1000円 >>")
	tokens := NewLexer(source, "test").ScanAll()

	want := []TokenType{LENTRY, DATETIME, DR, IDENT, NUMBER, IDENT, RENTRY, EOF}
	assert.Equal(t, len(want), len(tokens))
	for i, tok := range tokens {
		assert.Equal(t, want[i], tok.Type, "token type mismatch at %d", i)
	}
	assert.Equal(t, "現金", tokens[3].String(source))
}

func TestLexerDatetimeValues(t *testing.T) {
	tests := []struct {
		name  string
		input string
		typ   TokenType
		want  string
	}{
		{
			name:  "date only",
			input: "<<2022-05-14 >>",
			typ:   DATETIME,
			want:  "2022-05-14",
		},
		{
			name:  "date with time",
			input: "<<2022-05-14T10:30:00 >>",
			typ:   DATETIME,
			want:  "2022-05-14T10:30:00",
		},
		{
			name:  "date with utc zone",
			input: "<<2022-05-14T10:30:00Z >>",
			typ:   DATETIME,
			want:  "2022-05-14T10:30:00Z",
		},
		{
			name:  "date with offset zone",
			input: "<<2022-05-14T10:30:00+09:00 >>",
			typ:   DATETIME,
			want:  "2022-05-14T10:30:00+09:00",
		},
		{
			name:  "time with offset zone",
			input: "<<T10:30:00+09:00 >>",
			typ:   TIME,
			want:  "T10:30:00+09:00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := []byte(tt.input)
			lexer := NewLexer(source, "test")
			tokens := lexer.ScanAll()

			assert.Equal(t, 4, len(tokens))
			assert.Equal(t, tt.typ, tokens[1].Type)
			assert.Equal(t, tt.want, tokens[1].String(source))
		})
	}
}

func TestLexerText(t *testing.T) {
	t.Run("plain text", func(t *testing.T) {
		source := []byte("令和4年度の仕訳")
		tokens := NewLexer(source, "test").ScanAll()

		assert.Equal(t, 2, len(tokens))
		assert.Equal(t, TEXT, tokens[0].Type)
		assert.Equal(t, "令和4年度の仕訳", tokens[0].String(source))
	})

	t.Run("surrounding whitespace trimmed", func(t *testing.T) {
		source := []byte("  hello world  \n")
		tokens := NewLexer(source, "test").ScanAll()

		assert.Equal(t, 2, len(tokens))
		assert.Equal(t, TEXT, tokens[0].Type)
		assert.Equal(t, "hello world", tokens[0].String(source))
	})

	t.Run("whitespace only produces no text", func(t *testing.T) {
		source := []byte(" \n\t \n")
		tokens := NewLexer(source, "test").ScanAll()

		assert.Equal(t, 1, len(tokens))
		assert.Equal(t, EOF, tokens[0].Type)
	})

	t.Run("text around an entry", func(t *testing.T) {
		source := []byte("before<<2022-05-14 >>after")
		tokens := NewLexer(source, "test").ScanAll()

		want := []TokenType{TEXT, LENTRY, DATETIME, RENTRY, TEXT, EOF}
		assert.Equal(t, len(want), len(tokens))
		for i, tok := range tokens {
			assert.Equal(t, want[i], tok.Type, "token type mismatch at %d", i)
		}
		assert.Equal(t, "before", tokens[0].String(source))
		assert.Equal(t, "after", tokens[4].String(source))
	})
}

func TestLexerPositions(t *testing.T) {
	source := []byte("<<2022-05-14\nDr cash >>")
	tokens := NewLexer(source, "test").ScanAll()

	assert.Equal(t, 6, len(tokens))

	dr := tokens[2]
	assert.Equal(t, DR, dr.Type)
	assert.Equal(t, 2, dr.Line)
	assert.Equal(t, 1, dr.Column)

	acc := tokens[3]
	assert.Equal(t, IDENT, acc.Type)
	assert.Equal(t, 2, acc.Line)
	assert.Equal(t, 4, acc.Column)
}

func TestInterner(t *testing.T) {
	in := NewInterner(4)

	a := in.Intern("現金")
	b := in.InternBytes([]byte("現金"))
	assert.Equal(t, a, b)
	assert.Equal(t, 1, in.Size())

	in.Intern("売上")
	assert.Equal(t, 2, in.Size())

	in.Reset()
	assert.Equal(t, 0, in.Size())
}
