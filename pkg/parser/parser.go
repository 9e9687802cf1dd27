package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"astbridge/pkg/ast"
)

// Parser reads S-expressions into generic trees
type Parser struct {
	input string
	pos   int
}

// New creates a new parser for the given input
func New(input string) *Parser {
	return &Parser{input: input, pos: 0}
}

// NewAt creates a parser that starts reading at byte offset pos
func NewAt(input string, pos int) *Parser {
	if pos < 0 {
		pos = 0
	}
	if pos > len(input) {
		pos = len(input)
	}
	return &Parser{input: input, pos: pos}
}

// Pos returns the byte offset of the next unread character
func (p *Parser) Pos() int {
	return p.pos
}

// SkipSpace consumes whitespace and comments
func (p *Parser) SkipSpace() {
	p.skipWhitespace()
}

// Parse parses a single S-expression
func (p *Parser) Parse() (*ast.Value, error) {
	p.skipWhitespace()
	if p.pos >= len(p.input) {
		return nil, nil
	}
	return p.parseExpr()
}

// ParseAll parses all S-expressions in the input
func (p *Parser) ParseAll() ([]*ast.Value, error) {
	var results []*ast.Value
	for {
		p.skipWhitespace()
		if p.pos >= len(p.input) {
			break
		}
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if expr != nil {
			results = append(results, expr)
		}
	}
	return results, nil
}

func (p *Parser) skipWhitespace() {
	for p.pos < len(p.input) {
		ch := p.input[p.pos]
		if ch == ';' {
			// Skip comment to end of line
			for p.pos < len(p.input) && p.input[p.pos] != '\n' {
				p.pos++
			}
		} else if unicode.IsSpace(rune(ch)) {
			p.pos++
		} else {
			break
		}
	}
}

func (p *Parser) peek() byte {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *Parser) advance() byte {
	ch := p.peek()
	if ch != 0 {
		p.pos++
	}
	return ch
}

func (p *Parser) parseExpr() (*ast.Value, error) {
	p.skipWhitespace()
	if p.pos >= len(p.input) {
		return nil, nil
	}

	ch := p.peek()

	switch ch {
	case '(':
		return p.parseList()
	case '\'':
		return p.parseQuote()
	case '`':
		return p.parseQuasiquote()
	case ',':
		return p.parseUnquote()
	case ')':
		return nil, fmt.Errorf("unexpected ')'")
	case '"':
		return p.parseString()
	case '#':
		return p.parseHash()
	default:
		return p.parseAtom()
	}
}

func (p *Parser) parseList() (*ast.Value, error) {
	p.advance() // consume '('
	var items []*ast.Value

	for {
		p.skipWhitespace()
		if p.pos >= len(p.input) {
			return nil, fmt.Errorf("unclosed list")
		}
		if p.peek() == ')' {
			p.advance()
			break
		}
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		items = append(items, expr)
	}

	return ast.SliceToList(items), nil
}

func (p *Parser) parseQuote() (*ast.Value, error) {
	p.advance() // consume '\''
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if expr == nil {
		return nil, fmt.Errorf("expected expression after quote")
	}
	return ast.List2(ast.NewSym("quote"), expr), nil
}

func (p *Parser) parseQuasiquote() (*ast.Value, error) {
	p.advance() // consume '`'
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if expr == nil {
		return nil, fmt.Errorf("expected expression after quasiquote")
	}
	return ast.List2(ast.NewSym("quasiquote"), expr), nil
}

func (p *Parser) parseUnquote() (*ast.Value, error) {
	p.advance() // consume ','
	// Check for unquote-splicing ,@
	if p.peek() == '@' {
		p.advance() // consume '@'
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if expr == nil {
			return nil, fmt.Errorf("expected expression after unquote-splicing")
		}
		return ast.List2(ast.NewSym("unquote-splicing"), expr), nil
	}
	// Regular unquote
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if expr == nil {
		return nil, fmt.Errorf("expected expression after unquote")
	}
	return ast.List2(ast.NewSym("unquote"), expr), nil
}

func (p *Parser) parseHash() (*ast.Value, error) {
	p.advance() // consume '#'
	if p.pos >= len(p.input) {
		return nil, fmt.Errorf("unexpected end after '#'")
	}

	ch := p.peek()
	switch ch {
	case '\\':
		return p.parseChar()
	case ':':
		return p.parseGensym()
	case 't', 'f':
		word := p.readToken()
		switch word {
		case "t", "true":
			return ast.True, nil
		case "f", "false":
			return ast.False, nil
		}
		return nil, fmt.Errorf("unknown '#' syntax: #%s", word)
	case 'u':
		word := p.readToken()
		if word != "u64" {
			return nil, fmt.Errorf("unknown '#' syntax: #%s", word)
		}
		p.skipWhitespace()
		digits := p.readToken()
		u, err := strconv.ParseUint(digits, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid #u64 literal: %s", digits)
		}
		return ast.NewUint64(u), nil
	}

	return nil, fmt.Errorf("unexpected character after '#': %c", ch)
}

// parseGensym reads #:gN, a generated symbol with session id N
func (p *Parser) parseGensym() (*ast.Value, error) {
	p.advance() // consume ':'
	word := p.readToken()
	digits := strings.TrimPrefix(word, "g")
	id, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || id < 0 {
		return nil, fmt.Errorf("invalid gensym: #:%s", word)
	}
	return ast.NewGensym(id), nil
}

// readToken consumes characters up to the next delimiter
func (p *Parser) readToken() string {
	start := p.pos
	for p.pos < len(p.input) && !isDelimiter(p.input[p.pos]) {
		p.pos++
	}
	return p.input[start:p.pos]
}

func isDelimiter(ch byte) bool {
	return unicode.IsSpace(rune(ch)) || ch == '(' || ch == ')' || ch == '\'' || ch == '"' || ch == ';' || ch == '`' || ch == ','
}

func (p *Parser) parseChar() (*ast.Value, error) {
	p.advance() // consume '\\'
	if p.pos >= len(p.input) {
		return nil, fmt.Errorf("unexpected end in character literal")
	}

	// Check for named characters
	start := p.pos
	for p.pos < len(p.input) {
		ch := p.input[p.pos]
		if isDelimiter(ch) {
			break
		}
		p.pos++
	}

	name := p.input[start:p.pos]
	if len(name) == 0 {
		return nil, fmt.Errorf("empty character literal")
	}

	// Handle named characters
	switch strings.ToLower(name) {
	case "newline":
		return ast.NewChar('\n'), nil
	case "space":
		return ast.NewChar(' '), nil
	case "tab":
		return ast.NewChar('\t'), nil
	case "return":
		return ast.NewChar('\r'), nil
	case "backspace":
		return ast.NewChar('\b'), nil
	case "null", "nul":
		return ast.NewChar(0), nil
	}

	// Single character, possibly multi-byte
	if utf8.RuneCountInString(name) == 1 {
		r, _ := utf8.DecodeRuneInString(name)
		return ast.NewChar(r), nil
	}

	return nil, fmt.Errorf("unknown character name: %s", name)
}

func (p *Parser) parseString() (*ast.Value, error) {
	p.advance() // consume opening '"'
	var sb strings.Builder

	for p.pos < len(p.input) {
		ch := p.advance()
		if ch == '"' {
			return ast.NewStr(sb.String()), nil
		}
		if ch == 0 {
			// advance reports NUL as end of input; keep embedded zero bytes
			p.pos++
			sb.WriteByte(0)
			continue
		}
		if ch == '\\' && p.pos < len(p.input) {
			next := p.advance()
			switch next {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '0':
				sb.WriteByte(0)
			case '\\':
				sb.WriteByte('\\')
			case '"':
				sb.WriteByte('"')
			default:
				sb.WriteByte(next)
			}
		} else {
			sb.WriteByte(ch)
		}
	}
	return nil, fmt.Errorf("unclosed string")
}

func (p *Parser) parseAtom() (*ast.Value, error) {
	start := p.pos

	// Check for negative number
	if p.peek() == '-' && p.pos+1 < len(p.input) && (isDigit(p.input[p.pos+1]) || p.input[p.pos+1] == '.') {
		p.advance()
	}

	// Check if it's a number (integer or float)
	if isDigit(p.peek()) || (p.peek() == '.' && p.pos+1 < len(p.input) && isDigit(p.input[p.pos+1])) {
		isFloat := false

		// Parse integer part
		for p.pos < len(p.input) && isDigit(p.input[p.pos]) {
			p.pos++
		}

		// Check for decimal point
		if p.pos < len(p.input) && p.input[p.pos] == '.' {
			isFloat = true
			p.pos++
			// Parse fractional part
			for p.pos < len(p.input) && isDigit(p.input[p.pos]) {
				p.pos++
			}
		}

		// Check for exponent (scientific notation)
		if p.pos < len(p.input) && (p.input[p.pos] == 'e' || p.input[p.pos] == 'E') {
			isFloat = true
			p.pos++
			// Optional sign
			if p.pos < len(p.input) && (p.input[p.pos] == '+' || p.input[p.pos] == '-') {
				p.pos++
			}
			// Exponent digits
			for p.pos < len(p.input) && isDigit(p.input[p.pos]) {
				p.pos++
			}
		}

		numStr := p.input[start:p.pos]

		if isFloat {
			f, err := strconv.ParseFloat(numStr, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid float: %s", numStr)
			}
			return ast.NewFloat(f), nil
		}

		// Explicitly unsigned: 42u
		if p.pos < len(p.input) && p.input[p.pos] == 'u' {
			p.pos++
			u, err := strconv.ParseUint(numStr, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid unsigned integer: %s", numStr)
			}
			return ast.NewUint(u), nil
		}

		n, err := strconv.ParseInt(numStr, 10, 64)
		if err != nil {
			// Too wide for int64 but representable unsigned
			if u, uerr := strconv.ParseUint(numStr, 10, 64); uerr == nil {
				return ast.NewUint(u), nil
			}
			return nil, fmt.Errorf("invalid integer: %s", numStr)
		}
		return ast.NewInt(n), nil
	}

	// It's a symbol
	for p.pos < len(p.input) && !isDelimiter(p.input[p.pos]) {
		p.pos++
	}

	if p.pos == start {
		return nil, fmt.Errorf("unexpected character: %c", p.peek())
	}

	sym := p.input[start:p.pos]
	return ast.NewSym(sym), nil
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// ParseString is a convenience function to parse a string
func ParseString(input string) (*ast.Value, error) {
	p := New(input)
	return p.Parse()
}

// ParseAllString parses all expressions in a string
func ParseAllString(input string) ([]*ast.Value, error) {
	p := New(input)
	return p.ParseAll()
}
