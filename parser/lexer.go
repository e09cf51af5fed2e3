package parser

import "bytes"

// Lexer implements zero-copy tokenization of journal source.
//
// Tokens store byte offsets into the source buffer instead of materialized
// strings. The lexer operates in two modes: outside entries everything up to
// the next "<<" is a single TEXT token; inside entries the input is
// tokenized, with whitespace (including newlines) insignificant.
type Lexer struct {
	source   []byte
	filename string
	pos      int
	line     int
	column   int
	inEntry  bool
	prev     TokenType
	tokens   []Token
	interner *Interner
}

// NewLexer creates a lexer for the given source buffer.
func NewLexer(source []byte, filename string) *Lexer {
	return &Lexer{
		source:   source,
		filename: filename,
		pos:      0,
		line:     1,
		column:   1,
		tokens:   make([]Token, 0, len(source)/8),
		interner: NewInterner(256),
	}
}

// Interner returns the lexer's string interner so the parser can share it.
func (l *Lexer) Interner() *Interner {
	return l.interner
}

// ScanAll tokenizes the entire source in a single pass.
func (l *Lexer) ScanAll() []Token {
	for {
		tok := l.scanToken()
		l.tokens = append(l.tokens, tok)
		l.prev = tok.Type
		if tok.Type == EOF {
			break
		}
	}
	return l.tokens
}

func (l *Lexer) scanToken() Token {
	if !l.inEntry {
		return l.scanText()
	}

	l.skipWhitespace()

	start := l.pos
	line := l.line
	col := l.column

	if l.pos >= len(l.source) {
		return Token{Type: EOF, Start: start, End: start, Line: line, Column: col}
	}

	b := l.advance()

	switch b {
	case '<':
		if l.peek() == '<' {
			l.advance()
			return Token{Type: LENTRY, Start: start, End: l.pos, Line: line, Column: col}
		}
		return Token{Type: ILLEGAL, Start: start, End: l.pos, Line: line, Column: col}
	case '>':
		if l.peek() == '>' {
			l.advance()
			l.inEntry = false
			return Token{Type: RENTRY, Start: start, End: l.pos, Line: line, Column: col}
		}
		return Token{Type: GT, Start: start, End: l.pos, Line: line, Column: col}
	case '/':
		return Token{Type: SLASH, Start: start, End: l.pos, Line: line, Column: col}
	case '#':
		if l.peek() == '#' {
			l.advance()
			return Token{Type: DHASH, Start: start, End: l.pos, Line: line, Column: col}
		}
		return Token{Type: HASH, Start: start, End: l.pos, Line: line, Column: col}
	case '@':
		return Token{Type: AT, Start: start, End: l.pos, Line: line, Column: col}
	case '*':
		return Token{Type: STAR, Start: start, End: l.pos, Line: line, Column: col}
	case '?':
		return Token{Type: QUESTION, Start: start, End: l.pos, Line: line, Column: col}
	case '$':
		return Token{Type: DOLLAR, Start: start, End: l.pos, Line: line, Column: col}
	case '&':
		return Token{Type: AMP, Start: start, End: l.pos, Line: line, Column: col}
	case ':':
		if l.peek() == ':' {
			l.advance()
			return Token{Type: DCOLON, Start: start, End: l.pos, Line: line, Column: col}
		}
		return Token{Type: COLON, Start: start, End: l.pos, Line: line, Column: col}
	case '[':
		return Token{Type: LBRACKET, Start: start, End: l.pos, Line: line, Column: col}
	case ']':
		return Token{Type: RBRACKET, Start: start, End: l.pos, Line: line, Column: col}
	}

	// A single operator letter directly after * or ? binds as the deferred
	// operator, even when a unit follows without whitespace (*B個, ?A円).
	if l.prev == STAR && (b == 'B' || b == 'D' || b == 'E') {
		return Token{Type: OP, Start: start, End: l.pos, Line: line, Column: col}
	}
	if l.prev == QUESTION && (b == 'A' || b == 'B' || b == 'D' || b == 'E') {
		return Token{Type: OP, Start: start, End: l.pos, Line: line, Column: col}
	}

	if b >= '0' && b <= '9' {
		if l.isDatetimePattern(start) {
			return l.scanDatetime(start, line, col)
		}
		return l.scanNumber(start, line, col)
	}
	if (b == '-' || b == '+') && l.peekIsDigit() {
		return l.scanNumber(start, line, col)
	}
	if b == 'T' && l.isTimePattern(start) {
		return l.scanTime(start, line, col)
	}

	return l.scanIdent(start, line, col)
}

// scanText consumes everything up to the next "<<" or EOF. Whitespace-only
// stretches are skipped; anything else is emitted as a TEXT token.
func (l *Lexer) scanText() Token {
	start := l.pos
	line := l.line
	col := l.column
	body := false

	for l.pos < len(l.source) {
		if l.source[l.pos] == '<' && l.pos+1 < len(l.source) && l.source[l.pos+1] == '<' {
			break
		}
		if !isSpace(l.source[l.pos]) {
			if !body {
				start = l.pos
				line = l.line
				col = l.column
				body = true
			}
		}
		l.advance()
	}

	if body {
		// Trim trailing whitespace from the text span.
		end := l.pos
		for end > start && isSpace(l.source[end-1]) {
			end--
		}
		return Token{Type: TEXT, Start: start, End: end, Line: line, Column: col}
	}

	if l.pos >= len(l.source) {
		return Token{Type: EOF, Start: l.pos, End: l.pos, Line: l.line, Column: l.column}
	}

	// At "<<".
	start = l.pos
	line = l.line
	col = l.column
	l.advance()
	l.advance()
	l.inEntry = true
	return Token{Type: LENTRY, Start: start, End: l.pos, Line: line, Column: col}
}

// isDatetimePattern checks for YYYY-MM-DD at the given offset using
// lookahead without consuming input.
func (l *Lexer) isDatetimePattern(start int) bool {
	if start+10 > len(l.source) {
		return false
	}
	for i := 0; i < 4; i++ {
		if !isDigit(l.source[start+i]) {
			return false
		}
	}
	if l.source[start+4] != '-' {
		return false
	}
	if !isDigit(l.source[start+5]) || !isDigit(l.source[start+6]) {
		return false
	}
	if l.source[start+7] != '-' {
		return false
	}
	return isDigit(l.source[start+8]) && isDigit(l.source[start+9])
}

// isTimePattern checks for THH:MM:SS at the given offset.
func (l *Lexer) isTimePattern(start int) bool {
	if start+9 > len(l.source) {
		return false
	}
	if !isDigit(l.source[start+1]) || !isDigit(l.source[start+2]) {
		return false
	}
	if l.source[start+3] != ':' {
		return false
	}
	if !isDigit(l.source[start+4]) || !isDigit(l.source[start+5]) {
		return false
	}
	if l.source[start+6] != ':' {
		return false
	}
	return isDigit(l.source[start+7]) && isDigit(l.source[start+8])
}

func (l *Lexer) scanDatetime(start, line, col int) Token {
	// First digit already consumed; take the rest of the date.
	for l.pos < start+10 && l.pos < len(l.source) {
		l.advance()
	}
	// Optional time part.
	if l.peek() == 'T' && l.isTimePattern(l.pos) {
		l.advance()
		l.scanTimeBody()
	}
	return Token{Type: DATETIME, Start: start, End: l.pos, Line: line, Column: col}
}

func (l *Lexer) scanTime(start, line, col int) Token {
	l.scanTimeBody()
	return Token{Type: TIME, Start: start, End: l.pos, Line: line, Column: col}
}

// scanTimeBody consumes HH:MM:SS plus an optional zone offset. The leading
// 'T' has already been consumed.
func (l *Lexer) scanTimeBody() {
	for i := 0; i < 8 && l.pos < len(l.source); i++ {
		l.advance()
	}
	switch l.peek() {
	case 'Z':
		l.advance()
	case '+', '-':
		// +HH:MM
		if l.pos+5 < len(l.source) && isDigit(l.source[l.pos+1]) && isDigit(l.source[l.pos+2]) &&
			l.source[l.pos+3] == ':' && isDigit(l.source[l.pos+4]) && isDigit(l.source[l.pos+5]) {
			for i := 0; i < 6; i++ {
				l.advance()
			}
		}
	}
}

func (l *Lexer) scanNumber(start, line, col int) Token {
	for {
		for isDigit(l.peek()) {
			l.advance()
		}
		// Digit-group separators: 6,000 and 1_000 are single numbers.
		// A separator binds only when a digit follows.
		if (l.peek() == ',' || l.peek() == '_') && l.pos+1 < len(l.source) && isDigit(l.source[l.pos+1]) {
			l.advance()
			continue
		}
		break
	}
	if l.peek() == '.' && l.pos+1 < len(l.source) && isDigit(l.source[l.pos+1]) {
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
	}
	return Token{Type: NUMBER, Start: start, End: l.pos, Line: line, Column: col}
}

// scanIdent scans a run of name characters. Multi-byte UTF-8 sequences are
// accepted wholesale, which covers Japanese account and item names.
func (l *Lexer) scanIdent(start, line, col int) Token {
	for l.pos < len(l.source) && isNameChar(l.source[l.pos]) && !l.fullWidthSpaceAt(l.pos) {
		l.advance()
	}
	return Token{Type: l.keywordType(l.source[start:l.pos]), Start: start, End: l.pos, Line: line, Column: col}
}

var (
	kwDr   = []byte("Dr")
	kwCr   = []byte("Cr")
	kwDrJa = []byte("借方")
	kwCrJa = []byte("貸方")
)

func (l *Lexer) keywordType(word []byte) TokenType {
	switch {
	case bytes.Equal(word, kwDr), bytes.Equal(word, kwDrJa):
		return DR
	case bytes.Equal(word, kwCr), bytes.Equal(word, kwCrJa):
		return CR
	}
	return IDENT
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.source) {
		if isSpace(l.source[l.pos]) {
			l.advance()
			continue
		}
		if l.fullWidthSpaceAt(l.pos) {
			l.advance()
			l.advance()
			l.advance()
			continue
		}
		break
	}
}

// fullWidthSpaceAt reports whether the UTF-8 encoding of U+3000, the
// ideographic space emitted by Japanese IMEs, starts at pos. It separates
// tokens inside entries like ASCII whitespace.
func (l *Lexer) fullWidthSpaceAt(pos int) bool {
	return pos+2 < len(l.source) &&
		l.source[pos] == 0xe3 && l.source[pos+1] == 0x80 && l.source[pos+2] == 0x80
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.source) {
		return 0
	}
	return l.source[l.pos]
}

func (l *Lexer) peekIsDigit() bool {
	return isDigit(l.peek())
}

func (l *Lexer) advance() byte {
	b := l.source[l.pos]
	l.pos++
	if b == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return b
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

// isNameChar reports whether b can appear inside an unquoted name. The
// excluded bytes are the structural marks of the grammar; any multi-byte
// UTF-8 continuation (>= 0x80) is accepted.
func isNameChar(b byte) bool {
	if b >= 0x80 {
		return true
	}
	switch b {
	case ' ', '\t', '\r', '\n',
		'<', '>', '/', '#', '@', '*', '?', '$', '&', ':', '[', ']':
		return false
	}
	return true
}
