package parser

// TokenType represents the type of token scanned from the input.
type TokenType uint8

const (
	// Special tokens
	EOF TokenType = iota
	ILLEGAL

	// TEXT is free text between entries, preserved verbatim.
	TEXT

	// Entry delimiters
	LENTRY // <<
	RENTRY // >>

	// Side keywords
	DR // Dr, 借方
	CR // Cr, 貸方

	// Literals
	DATETIME // 2022-05-14 or 2022-05-14T10:00:00+09:00
	TIME     // T10:00:00 or T10:00:00+09:00 (embedded fragments)
	NUMBER   // 123.45 or -123.45
	IDENT    // account names, items, units, memo keys, free values

	// Operators
	OP // single operator letter after * or ?: A, B, D or E

	// Symbols
	SLASH    // / (sub-account)
	HASH     // # (item)
	DHASH    // ## (remarks)
	AT       // @ (unit price)
	STAR     // * (quantity)
	QUESTION // ? (deferred amount)
	DOLLAR   // $ (partner)
	GT       // > (person in charge)
	AMP      // & (memo)
	COLON    // : (number memo)
	DCOLON   // :: (string memo)
	LBRACKET // [ (reference)
	RBRACKET // ] (reference)
)

var tokenNames = map[TokenType]string{
	EOF:     "EOF",
	ILLEGAL: "ILLEGAL",

	TEXT: "TEXT",

	LENTRY: "<<",
	RENTRY: ">>",

	DR: "Dr",
	CR: "Cr",

	DATETIME: "DATETIME",
	TIME:     "TIME",
	NUMBER:   "NUMBER",
	IDENT:    "IDENT",

	OP: "OP",

	SLASH:    "/",
	HASH:     "#",
	DHASH:    "##",
	AT:       "@",
	STAR:     "*",
	QUESTION: "?",
	DOLLAR:   "$",
	GT:       ">",
	AMP:      "&",
	COLON:    ":",
	DCOLON:   "::",
	LBRACKET: "[",
	RBRACKET: "]",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// Token represents a lexical token with zero-copy semantics.
// Instead of storing the token text as a string (which would allocate),
// we store byte offsets into the original source buffer.
type Token struct {
	Type   TokenType
	Start  int // Byte offset into source buffer
	End    int // End offset (exclusive)
	Line   int // Line number (1-indexed)
	Column int // Column number (1-indexed)
}

// String materializes the token text from the source buffer. The
// allocation only happens when the token text is actually needed.
func (t Token) String(source []byte) string {
	if t.Start < 0 || t.End > len(source) || t.Start >= t.End {
		return ""
	}
	return string(source[t.Start:t.End])
}

// Bytes returns the raw token bytes from the source buffer without copying.
func (t Token) Bytes(source []byte) []byte {
	if t.Start < 0 || t.End > len(source) || t.Start >= t.End {
		return nil
	}
	return source[t.Start:t.End]
}
