package kaleido

import (
	"fmt"
	"io"
	"log"

	"github.com/pkg/errors"
)

const DefaultPrompt = "ready> "

// Compiler is the read-eval-print driver: it parses top-level units one at a
// time, lowers each into a shared LLVM module and reports what it did.
type Compiler struct {
	Prompt     string
	EmitIR     bool
	DumpAST    bool
	DumpModule bool
	Builtins   bool
	Precedence PrecedenceTable

	out io.Writer
	log *log.Logger
}

// NewCompiler writes prompts and status lines to out and diagnostics to diag.
func NewCompiler(out, diag io.Writer) *Compiler {
	return &Compiler{
		Prompt:     DefaultPrompt,
		Precedence: DefaultPrecedence(),
		out:        out,
		log:        log.New(diag, "", 0),
	}
}

// Run processes reader until its end. Failed units are reported and skipped;
// only errors reading the input are returned.
func (c *Compiler) Run(reader io.Reader) error {
	lexer := NewLexer(reader)
	s := &session{
		Compiler: c,
		parser:   NewParser(lexer, c.Precedence),
		builder:  NewLLVMIRBuilder(),
	}
	s.gen = NewGenerator(s.builder)

	if c.Builtins {
		if err := DefineBuiltins(s.gen); err != nil {
			return errors.Wrap(err, "define builtins")
		}
	}

	for {
		fmt.Fprint(c.out, c.Prompt)

		switch tok := s.parser.Current(); {
		case tok.Typ == TokenEOF:
			fmt.Fprintln(c.out)
			if c.DumpModule {
				fmt.Fprint(c.out, s.builder.String())
			}

			return lexer.Err()
		case tok.Is(';'):
			s.parser.Advance()
		case tok.Typ == TokenDef:
			s.handleDefinition()
		case tok.Typ == TokenExtern:
			s.handleExtern()
		default:
			s.handleTopLevelExpr()
		}
	}
}

// CompileFromReader runs reader through a fresh module and returns its IR.
// Unlike Run it stops at the first failed unit.
func CompileFromReader(reader io.Reader) (string, error) {
	lexer := NewLexer(reader)
	parser := NewParser(lexer, DefaultPrecedence())
	builder := NewLLVMIRBuilder()
	gen := NewGenerator(builder)

	for {
		var err error
		switch tok := parser.Current(); {
		case tok.Typ == TokenEOF:
			if err := lexer.Err(); err != nil {
				return "", err
			}

			return builder.String(), nil
		case tok.Is(';'):
			parser.Advance()
			continue
		case tok.Typ == TokenDef:
			var def *FuncDef
			if def, err = parser.ParseDefinition(); err == nil {
				_, err = gen.Definition(def)
			}
		case tok.Typ == TokenExtern:
			var proto *Prototype
			if proto, err = parser.ParseExtern(); err == nil {
				_, err = gen.Prototype(proto)
			}
		default:
			var def *FuncDef
			if def, err = parser.ParseTopLevelExpr(); err == nil {
				_, err = gen.Definition(def)
				gen.Remove(AnonymousFunc)
			}
		}

		if err != nil {
			return "", err
		}
	}
}

type session struct {
	*Compiler

	parser  *Parser
	builder *LLVMIRBuilder
	gen     *Generator
}

func (s *session) handleDefinition() {
	def, err := s.parser.ParseDefinition()
	if err != nil {
		s.skip(err)
		return
	}

	fmt.Fprintln(s.out, "Parsed a function definition.")
	s.dump(def)

	fn, err := s.gen.Definition(def)
	if err != nil {
		s.log.Println(err)
		return
	}

	s.emit(fn)
}

func (s *session) handleExtern() {
	proto, err := s.parser.ParseExtern()
	if err != nil {
		s.skip(err)
		return
	}

	fmt.Fprintln(s.out, "Parsed an extern.")
	s.dump(proto)

	fn, err := s.gen.Prototype(proto)
	if err != nil {
		s.log.Println(err)
		return
	}

	s.emit(fn)
}

func (s *session) handleTopLevelExpr() {
	def, err := s.parser.ParseTopLevelExpr()
	if err != nil {
		s.skip(err)
		return
	}

	fmt.Fprintln(s.out, "Parsed a top-level expression.")
	s.dump(def)

	fn, err := s.gen.Definition(def)
	if err != nil {
		s.log.Println(err)
		return
	}

	s.emit(fn)
	s.gen.Remove(AnonymousFunc)
}

// skip reports a parse failure and steps over one token so the loop cannot
// stall on it.
func (s *session) skip(err error) {
	s.log.Println(err)
	s.parser.Advance()
}

func (s *session) dump(unit fmt.Stringer) {
	if s.DumpAST {
		fmt.Fprintln(s.out, unit.String())
	}
}

func (s *session) emit(fn Function) {
	if s.EmitIR {
		fmt.Fprintln(s.out, s.builder.FuncIR(fn))
	}
}
