package asm

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	paracl "github.com/ajlekcahdp4/paracl-interpreter-sub000"
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

// Token types of the assembler language.
const (
	tokEOF paracl.TokType = iota
	tokNL
	tokDirective
	tokHex
	tokInt
	tokIdent
	tokColon
	tokEquals
)

var tokenNames = [...]string{"end of input", "end of line", "directive", "address",
	"integer", "identifier", "':'", "'='"}

func tokenName(typ paracl.TokType) string {
	if typ >= 0 && int(typ) < len(tokenNames) {
		return tokenNames[typ]
	}
	return fmt.Sprintf("token(%d)", typ)
}

var literals = map[string]paracl.TokType{
	":": tokColon,
	"=": tokEquals,
}

var asmLexer *lexmachine.Lexer
var asmLexerErr error
var asmLexerOnce sync.Once // monitors one-time compilation of the DFA

// lexer returns the lexer for assembler sources, compiling its DFA on first use.
func lexer() (*lexmachine.Lexer, error) {
	asmLexerOnce.Do(func() {
		lx := lexmachine.NewLexer()
		lx.Add([]byte(`;[^\n]*`), skip)
		lx.Add([]byte(`( |\t|\r)+`), skip)
		lx.Add([]byte(`\n`), makeToken(tokNL))
		lx.Add([]byte(`\.([a-z]|_)+`), makeToken(tokDirective))
		lx.Add([]byte(`0x([0-9]|[a-f]|[A-F])+`), makeToken(tokHex))
		lx.Add([]byte(`\-?[0-9]+`), makeToken(tokInt))
		lx.Add([]byte(`([a-z]|[A-Z]|_)([a-z]|[A-Z]|[0-9]|_)*`), makeToken(tokIdent))
		for lit, id := range literals {
			r := "\\" + strings.Join(strings.Split(lit, ""), "\\")
			lx.Add([]byte(r), makeToken(id))
		}
		if asmLexerErr = lx.Compile(); asmLexerErr != nil {
			tracer().Errorf("error compiling DFA: %v", asmLexerErr)
			return
		}
		asmLexer = lx
	})
	return asmLexer, asmLexerErr
}

// skip is an action which ignores the scanned match.
func skip(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
	return nil, nil
}

// makeToken is an action which wraps a scanned match into a token.
func makeToken(id paracl.TokType) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(int(id), string(m.Bytes), m), nil
	}
}

// scanner delivers the tokens of one assembler source.
type scanner struct {
	lms  *lexmachine.Scanner
	line int // line of the last token delivered
}

func newScanner(input []byte) (*scanner, error) {
	lx, err := lexer()
	if err != nil {
		return nil, err
	}
	s, err := lx.Scanner(input)
	if err != nil {
		return nil, err
	}
	return &scanner{lms: s, line: 1}, nil
}

// token is a token of the assembler language.
type token struct {
	typ    paracl.TokType
	lexeme string
	value  interface{} // int64 for numbers
	span   paracl.Span
	line   int
}

var _ paracl.Token = token{}

func (t token) TokType() paracl.TokType { return t.typ }
func (t token) Lexeme() string          { return t.lexeme }
func (t token) Value() interface{}      { return t.value }
func (t token) Span() paracl.Span       { return t.span }

// next returns the next token. At the end of input it returns a token of type
// tokEOF.
func (s *scanner) next() (token, error) {
	tok, err, eof := s.lms.Next()
	if err != nil {
		if ui, ok := err.(*machines.UnconsumedInput); ok {
			return token{}, &Error{Line: ui.StartLine, Msg: "unexpected character"}
		}
		return token{}, &Error{Line: s.line, Msg: err.Error()}
	}
	if eof {
		return token{typ: tokEOF, line: s.line}, nil
	}
	lt := tok.(*lexmachine.Token)
	s.line = lt.StartLine
	t := token{
		typ:    paracl.TokType(lt.Type),
		lexeme: string(lt.Lexeme),
		span:   paracl.Span{uint64(lt.TC), uint64(lt.TC + len(lt.Lexeme))},
		line:   lt.StartLine,
	}
	if t.typ == tokInt || t.typ == tokHex {
		if v, err := strconv.ParseInt(t.lexeme, 0, 64); err == nil {
			t.value = v
		}
	}
	tracer().Debugf("token %s %q at %v", tokenName(t.typ), t.lexeme, t.span)
	return t, nil
}
