// Package parser implements lexing and parsing of quantity journal files.
//
// The parser is a hand-written recursive descent parser over the token
// stream produced by Lexer. It builds the syntax tree defined in the ast
// package without resolving scoped references; that is the interpreter's
// job.
package parser

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/k1nk/qtyaccounting/ast"
)

// Parser consumes a token stream and produces a syntax tree.
type Parser struct {
	source   []byte
	filename string
	tokens   []Token
	pos      int
	interner *Interner
}

// Parse parses journal source with the given filename for error reporting.
func Parse(source []byte, filename string) (*ast.Journal, error) {
	lexer := NewLexer(source, filename)
	p := &Parser{
		source:   source,
		filename: filename,
		tokens:   lexer.ScanAll(),
		interner: lexer.Interner(),
	}
	return p.parseJournal()
}

// ParseBytes parses journal source without a filename.
func ParseBytes(source []byte) (*ast.Journal, error) {
	return Parse(source, "")
}

// ParseString parses journal source from a string.
func ParseString(source string) (*ast.Journal, error) {
	return Parse([]byte(source), "")
}

// ParseFragment parses an embedded entry fragment as produced by tabular
// journal exports. A fragment is an entry whose header carries no date
// (at most a time of day) and whose legs carry no account names. Text
// around the fragment is ignored.
func ParseFragment(source []byte) (*ast.Entry, error) {
	lexer := NewLexer(source, "")
	p := &Parser{
		source:   source,
		tokens:   lexer.ScanAll(),
		interner: lexer.Interner(),
	}
	for !p.check(EOF) {
		if p.check(LENTRY) {
			return p.parseEntry(true)
		}
		p.advance()
	}
	return nil, &ParseError{
		Pos:     ast.Position{Filename: p.filename},
		Message: "no entry found in fragment",
	}
}

func (p *Parser) parseJournal() (*ast.Journal, error) {
	journal := &ast.Journal{}

	for !p.check(EOF) {
		switch {
		case p.check(TEXT):
			tok := p.advance()
			journal.Items = append(journal.Items, &ast.Text{
				Position: p.position(tok),
				Body:     tok.String(p.source),
			})
		case p.check(LENTRY):
			entry, err := p.parseEntry(false)
			if err != nil {
				return nil, err
			}
			journal.Items = append(journal.Items, entry)
		default:
			tok := p.peek()
			return nil, p.errorAtToken(tok, "unexpected %s at top level", tok.Type)
		}
	}

	return journal, nil
}

// parseEntry parses "<<" header leg* ">>". In fragment mode the header has
// no datetime and legs have no account.
func (p *Parser) parseEntry(fragment bool) (*ast.Entry, error) {
	open, err := p.consume(LENTRY, "expected '<<'")
	if err != nil {
		return nil, err
	}

	entry := &ast.Entry{Position: p.position(open)}

	entry.Header, err = p.parseHeader(fragment)
	if err != nil {
		return nil, err
	}

	for p.check(DR) || p.check(CR) {
		leg, err := p.parseLeg(fragment)
		if err != nil {
			return nil, err
		}
		entry.Legs = append(entry.Legs, leg)
	}

	if _, err := p.consume(RENTRY, "expected '>>'"); err != nil {
		return nil, err
	}

	return entry, nil
}

func (p *Parser) parseHeader(fragment bool) (*ast.Header, error) {
	header := &ast.Header{Position: p.position(p.peek())}

	if fragment {
		if p.check(TIME) {
			tok := p.advance()
			raw := tok.String(p.source)
			// Split THH:MM:SS from the optional zone suffix.
			header.Time = raw[1:9]
			if len(raw) > 9 {
				header.TimeZone = raw[9:]
			}
		}
	} else {
		tok, err := p.consume(DATETIME, "expected datetime after '<<'")
		if err != nil {
			return nil, err
		}
		dt, err := p.parseDatetime(tok)
		if err != nil {
			return nil, err
		}
		header.Datetime = dt
	}

	if err := p.parseParams(&header.Partner, &header.PersonInCharge, &header.Memos, &header.Remarks); err != nil {
		return nil, err
	}

	return header, nil
}

func (p *Parser) parseDatetime(tok Token) (*ast.Datetime, error) {
	raw := tok.String(p.source)
	dt := &ast.Datetime{Position: p.position(tok), Raw: raw}

	if len(raw) == 10 {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, p.errorAtToken(tok, "invalid date %q", raw)
		}
		dt.Time = t
		return dt, nil
	}

	dt.HasTime = true
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		dt.Time = t
		return dt, nil
	}
	if t, err := time.Parse("2006-01-02T15:04:05", raw); err == nil {
		dt.Time = t
		return dt, nil
	}
	return nil, p.errorAtToken(tok, "invalid datetime %q", raw)
}

// parseParams parses a run of $partner, >person, &memo and ##remarks
// parameters into the given destinations.
func (p *Parser) parseParams(partner, person **ast.StringValue, memos *[]*ast.MemoDecl, remarks *[]string) error {
	for {
		switch {
		case p.check(DOLLAR):
			p.advance()
			v, err := p.parseStringValue("partner")
			if err != nil {
				return err
			}
			*partner = v
		case p.check(GT):
			p.advance()
			v, err := p.parseStringValue("person in charge")
			if err != nil {
				return err
			}
			*person = v
		case p.check(AMP):
			memo, err := p.parseMemo()
			if err != nil {
				return err
			}
			*memos = append(*memos, memo)
		case p.check(DHASH):
			p.advance()
			tok, err := p.consume(IDENT, "expected remarks after '##'")
			if err != nil {
				return err
			}
			*remarks = append(*remarks, p.interner.InternBytes(tok.Bytes(p.source)))
		default:
			return nil
		}
	}
}

// parseMemo parses "&" key ":" number [unit] or "&" key "::" string.
func (p *Parser) parseMemo() (*ast.MemoDecl, error) {
	amp := p.advance() // &
	key, err := p.consume(IDENT, "expected memo key after '&'")
	if err != nil {
		return nil, err
	}

	memo := &ast.MemoDecl{
		Position: p.position(amp),
		Key:      p.interner.InternBytes(key.Bytes(p.source)),
	}

	switch {
	case p.check(DCOLON):
		p.advance()
		val, err := p.consume(IDENT, "expected memo value after '::'")
		if err != nil {
			return nil, err
		}
		memo.Str = p.interner.InternBytes(val.Bytes(p.source))
	case p.check(COLON):
		p.advance()
		val, err := p.consume(NUMBER, "expected number after ':'")
		if err != nil {
			return nil, err
		}
		memo.IsNumber = true
		memo.Number, err = p.parseNumber(val)
		if err != nil {
			return nil, err
		}
		if p.check(IDENT) {
			unit := p.advance()
			memo.Unit = p.interner.InternBytes(unit.Bytes(p.source))
		}
	default:
		tok := p.peek()
		return nil, p.errorAtToken(tok, "expected ':' or '::' after memo key")
	}

	return memo, nil
}

// parseLeg parses a debit or credit line:
//
//	Dr account[/sub][#item][@price][*qty unit][amount unit] params
func (p *Parser) parseLeg(fragment bool) (*ast.Leg, error) {
	side := ast.Debit
	tok := p.advance() // DR or CR
	if tok.Type == CR {
		side = ast.Credit
	}

	leg := &ast.Leg{Position: p.position(tok), Side: side}

	if !fragment {
		acc, err := p.consume(IDENT, "expected account after '%s'", side)
		if err != nil {
			return nil, err
		}
		leg.Account = p.interner.InternBytes(acc.Bytes(p.source))
	}

	if p.match(SLASH) {
		v, err := p.parseStringValue("sub-account")
		if err != nil {
			return nil, err
		}
		leg.SubAccount = v
	}

	if p.match(HASH) {
		v, err := p.parseStringValue("item")
		if err != nil {
			return nil, err
		}
		leg.Item = v
	}

	if p.match(AT) {
		v, err := p.parsePrice()
		if err != nil {
			return nil, err
		}
		leg.Price = v
	}

	if p.match(STAR) {
		v, unit, err := p.parseQuantity()
		if err != nil {
			return nil, err
		}
		leg.Quantity = v
		leg.QuantityUnit = unit
	}

	if p.check(NUMBER) || p.check(QUESTION) || p.check(LBRACKET) {
		v, unit, err := p.parseAmount()
		if err != nil {
			return nil, err
		}
		leg.Amount = v
		leg.AmountUnit = unit
	}

	if err := p.parseParams(&leg.Partner, &leg.PersonInCharge, &leg.Memos, &leg.Remarks); err != nil {
		return nil, err
	}

	return leg, nil
}

// parsePrice parses the value after '@': a number or a reference.
func (p *Parser) parsePrice() (*ast.Value, error) {
	switch {
	case p.check(NUMBER):
		tok := p.advance()
		n, err := p.parseNumber(tok)
		if err != nil {
			return nil, err
		}
		return ast.NumberValue(p.position(tok), n), nil
	case p.check(LBRACKET):
		return p.parseRef()
	}
	tok := p.peek()
	return nil, p.errorAtToken(tok, "expected price after '@'")
}

// parseQuantity parses the value after '*': a number, an operator letter
// (B, D or E), or a reference, followed by an optional unit.
func (p *Parser) parseQuantity() (*ast.Value, string, error) {
	var value *ast.Value
	switch {
	case p.check(NUMBER):
		tok := p.advance()
		n, err := p.parseNumber(tok)
		if err != nil {
			return nil, "", err
		}
		value = ast.NumberValue(p.position(tok), n)
	case p.check(OP):
		tok := p.advance()
		op, err := p.quantityOp(tok)
		if err != nil {
			return nil, "", err
		}
		value = ast.OpValue(p.position(tok), op)
	case p.check(LBRACKET):
		ref, err := p.parseRef()
		if err != nil {
			return nil, "", err
		}
		value = ref
	default:
		tok := p.peek()
		return nil, "", p.errorAtToken(tok, "expected quantity after '*'")
	}

	var unit string
	if p.check(IDENT) {
		tok := p.advance()
		unit = p.interner.InternBytes(tok.Bytes(p.source))
	}
	return value, unit, nil
}

// parseAmount parses a number, '?' with an optional operator letter, or a
// reference, followed by an optional unit.
func (p *Parser) parseAmount() (*ast.Value, string, error) {
	var value *ast.Value
	switch {
	case p.check(NUMBER):
		tok := p.advance()
		n, err := p.parseNumber(tok)
		if err != nil {
			return nil, "", err
		}
		value = ast.NumberValue(p.position(tok), n)
	case p.check(QUESTION):
		tok := p.advance()
		op := ast.OpAuto
		if p.check(OP) {
			opTok := p.advance()
			var err error
			op, err = p.amountOp(opTok)
			if err != nil {
				return nil, "", err
			}
		}
		value = ast.OpValue(p.position(tok), op)
	case p.check(LBRACKET):
		ref, err := p.parseRef()
		if err != nil {
			return nil, "", err
		}
		value = ref
	default:
		tok := p.peek()
		return nil, "", p.errorAtToken(tok, "expected amount")
	}

	var unit string
	if p.check(IDENT) {
		tok := p.advance()
		unit = p.interner.InternBytes(tok.Bytes(p.source))
	}
	return value, unit, nil
}

// parseStringValue parses an unquoted name or a [key] reference.
func (p *Parser) parseStringValue(what string) (*ast.StringValue, error) {
	switch {
	case p.check(IDENT):
		tok := p.advance()
		return &ast.StringValue{
			Position: p.position(tok),
			Str:      p.interner.InternBytes(tok.Bytes(p.source)),
		}, nil
	case p.check(LBRACKET):
		open := p.advance()
		key, err := p.consume(IDENT, "expected reference key after '['")
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(RBRACKET, "expected ']'"); err != nil {
			return nil, err
		}
		return &ast.StringValue{
			Position: p.position(open),
			Ref:      p.interner.InternBytes(key.Bytes(p.source)),
		}, nil
	}
	tok := p.peek()
	return nil, p.errorAtToken(tok, "expected %s", what)
}

// parseRef parses a [key] reference as a Value.
func (p *Parser) parseRef() (*ast.Value, error) {
	open := p.advance() // [
	key, err := p.consume(IDENT, "expected reference key after '['")
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(RBRACKET, "expected ']'"); err != nil {
		return nil, err
	}
	return ast.RefValue(p.position(open), p.interner.InternBytes(key.Bytes(p.source))), nil
}

func (p *Parser) parseNumber(tok Token) (decimal.Decimal, error) {
	raw := tok.String(p.source)
	if strings.ContainsAny(raw, ",_") {
		// Digit-group separators accepted by the lexer.
		raw = strings.Map(func(r rune) rune {
			if r == ',' || r == '_' {
				return -1
			}
			return r
		}, raw)
	}
	n, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, p.errorAtToken(tok, "invalid number %q", tok.String(p.source))
	}
	return n, nil
}

func (p *Parser) quantityOp(tok Token) (ast.Op, error) {
	switch p.source[tok.Start] {
	case 'B':
		return ast.OpBalance, nil
	case 'D':
		return ast.OpDiff, nil
	case 'E':
		return ast.OpEqual, nil
	}
	return 0, p.errorAtToken(tok, "invalid quantity operator %q", tok.String(p.source))
}

func (p *Parser) amountOp(tok Token) (ast.Op, error) {
	switch p.source[tok.Start] {
	case 'A':
		return ast.OpAuto, nil
	case 'B':
		return ast.OpBalance, nil
	case 'D':
		return ast.OpDiff, nil
	case 'E':
		return ast.OpEqual, nil
	}
	return 0, p.errorAtToken(tok, "invalid amount operator %q", tok.String(p.source))
}

// --- token stream helpers ---

func (p *Parser) peek() Token {
	return p.tokens[p.pos]
}

func (p *Parser) advance() Token {
	tok := p.tokens[p.pos]
	if tok.Type != EOF {
		p.pos++
	}
	return tok
}

func (p *Parser) check(t TokenType) bool {
	return p.tokens[p.pos].Type == t
}

func (p *Parser) match(t TokenType) bool {
	if p.check(t) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) consume(t TokenType, format string, args ...any) (Token, error) {
	if p.check(t) {
		return p.advance(), nil
	}
	tok := p.peek()
	msg := fmt.Sprintf(format, args...)
	return Token{}, p.errorAtToken(tok, "%s, got %s", msg, tok.Type)
}

func (p *Parser) position(tok Token) ast.Position {
	return ast.Position{
		Filename: p.filename,
		Offset:   tok.Start,
		Line:     tok.Line,
		Column:   tok.Column,
	}
}

func (p *Parser) errorAtToken(tok Token, format string, args ...any) error {
	return &ParseError{
		Pos:     p.position(tok),
		Message: fmt.Sprintf(format, args...),
	}
}
