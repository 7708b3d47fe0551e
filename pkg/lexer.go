package kaleido

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pkg/errors"
)

type TokenType uint64
type stateFunc func(l *Lexer) stateFunc

const EOF rune = -1

const (
	TokenEOF TokenType = iota
	TokenDef
	TokenExtern
	TokenIdentifier
	TokenNumber

	// TokenChar is any other single rune: parentheses, commas, semicolons and
	// operator characters.
	TokenChar
)

var tokenNames = map[TokenType]string{
	TokenEOF:        "EOF",
	TokenDef:        "Def",
	TokenExtern:     "Extern",
	TokenIdentifier: "Identifier",
	TokenNumber:     "Number",
	TokenChar:       "Char",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}

	return "TokenType(" + strconv.FormatUint(uint64(t), 10) + ")"
}

var keywordTable = map[string]TokenType{
	"def":    TokenDef,
	"extern": TokenExtern,
}

type Location struct {
	Line int
	Col  int
}

func (l *Location) String() string {
	if l == nil {
		return "?:?"
	}

	return fmt.Sprintf("%d:%d", l.Line, l.Col)
}

type Token struct {
	Typ   TokenType
	Value string
	Num   float64
	Loc   *Location
}

// Char returns the rune of a TokenChar token, or EOF for any other kind.
func (t Token) Char() rune {
	if t.Typ != TokenChar {
		return EOF
	}

	r, _ := utf8.DecodeRuneInString(t.Value)
	return r
}

func (t Token) Is(r rune) bool {
	return t.Typ == TokenChar && t.Char() == r
}

func (t Token) String() string {
	switch t.Typ {
	case TokenEOF:
		return "end of input"
	case TokenDef, TokenExtern:
		return "keyword '" + t.Value + "'"
	case TokenIdentifier:
		return "identifier '" + t.Value + "'"
	case TokenNumber:
		return "number " + t.Value
	default:
		return "'" + t.Value + "'"
	}
}

// Tokenizer is the token source consumed by the Parser.
type Tokenizer interface {
	Next() Token
}

type Lexer struct {
	reader *bufio.Reader
	state  stateFunc
	tok    *Token
	done   bool
	err    error

	line  int
	col   int
	start Location
}

func NewLexer(reader io.Reader) *Lexer {
	return &Lexer{
		reader: bufio.NewReader(reader),
		state:  defaultState,
		line:   1,
	}
}

// Next runs the state machine until it produces one token. Once the input is
// exhausted every call returns a TokenEOF.
func (l *Lexer) Next() Token {
	for l.tok == nil {
		l.state = l.state(l)
	}

	tok := *l.tok
	l.tok = nil

	return tok
}

// Err returns the first read error other than io.EOF. The lexer treats such an
// error as the end of its input.
func (l *Lexer) Err() error {
	return l.err
}

// Tokens drains reader and returns every token before the end of input.
func Tokens(reader io.Reader) ([]Token, error) {
	l := NewLexer(reader)

	var tokens []Token
	for t := l.Next(); t.Typ != TokenEOF; t = l.Next() {
		tokens = append(tokens, t)
	}

	return tokens, l.Err()
}

func defaultState(l *Lexer) stateFunc {
	for {
		switch r := l.peek(); {
		case r == EOF:
			return eofState
		case unicode.IsSpace(r):
			l.next()
			continue
		case unicode.IsLetter(r):
			return identifierState
		case isDigit(r) || r == '.':
			return numberState
		case r == '#':
			return lineCommentState
		default:
			return charState
		}
	}
}

func eofState(l *Lexer) stateFunc {
	l.mark()
	l.emitValue(TokenEOF, "")

	return eofState
}

func identifierState(l *Lexer) stateFunc {
	l.mark()

	var id strings.Builder
	for r := l.peek(); unicode.IsLetter(r) || unicode.IsDigit(r); r = l.peek() {
		id.WriteRune(l.next())
	}

	if t, ok := keywordTable[id.String()]; ok {
		return l.emitValue(t, id.String())
	}

	return l.emitValue(TokenIdentifier, id.String())
}

func numberState(l *Lexer) stateFunc {
	l.mark()

	var num strings.Builder
	for r := l.peek(); isDigit(r) || r == '.'; r = l.peek() {
		num.WriteRune(l.next())
	}

	next := l.emitValue(TokenNumber, num.String())
	l.tok.Num = parseNumeral(num.String())

	return next
}

func lineCommentState(l *Lexer) stateFunc {
	l.next() // Skip the '#'

	for r := l.peek(); r != '\n' && r != '\r' && r != EOF; r = l.peek() {
		l.next()
	}

	return defaultState
}

func charState(l *Lexer) stateFunc {
	l.mark()
	return l.emitValue(TokenChar, string(l.next()))
}

// parseNumeral converts the longest leading prefix of s that is a valid float.
// Digits and periods are accumulated without validation, so "1.2.3" yields 1.2
// and a lone "." yields 0.
func parseNumeral(s string) float64 {
	for end := len(s); end > 0; end-- {
		v, err := strconv.ParseFloat(s[:end], 64)
		if err == nil {
			return v
		}

		var numErr *strconv.NumError
		if errors.As(err, &numErr) && numErr.Err == strconv.ErrRange {
			return v
		}
	}

	return 0
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

func (l *Lexer) mark() {
	l.start = Location{Line: l.line, Col: l.col + 1}
}

func (l *Lexer) emitValue(t TokenType, val string) stateFunc {
	loc := l.start
	l.tok = &Token{
		Typ:   t,
		Value: val,
		Loc:   &loc,
	}

	return defaultState
}

func (l *Lexer) peek() rune {
	if l.done {
		return EOF
	}

	r, _, err := l.reader.ReadRune()
	if err != nil {
		l.stop(err)
		return EOF
	}

	_ = l.reader.UnreadRune()
	return r
}

func (l *Lexer) next() rune {
	if l.done {
		return EOF
	}

	r, _, err := l.reader.ReadRune()
	if err != nil {
		l.stop(err)
		return EOF
	}

	if r == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}

	return r
}

func (l *Lexer) stop(err error) {
	l.done = true
	if err != io.EOF && l.err == nil {
		l.err = errors.Wrap(err, "read input")
	}
}
