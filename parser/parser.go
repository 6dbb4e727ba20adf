// Package parser implements a recursive-descent, Pratt-style parser that
// turns a token.Kind stream (via lexer.Lexer) into the ast package's typed
// tree. Grounded on the teacher's parser.go/codegen.go switch-based style,
// generalized from Lotus's single-pass statement switch into the full
// expression-precedence ladder spec §4.2 calls for.
package parser

import (
	"fmt"

	"lotusjs/ast"
	"lotusjs/lexer"
	"lotusjs/token"
)

// SyntaxError mirrors lexer.SyntaxError so callers handle both uniformly;
// parse failures and lex failures are both byte-position-carrying errors
// raised from `compile`/`eval` (spec §4.2's contract, §7).
type SyntaxError struct {
	Message string
	Pos     int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("SyntaxError: %s (at byte %d)", e.Message, e.Pos)
}

// Parser holds parsing state: the lexer it pulls from, and the import
// bucket spec §4.2 calls for ("import declarations are bucketed into a
// dedicated list so the VM can resolve them before executing the module
// body").
type Parser struct {
	lx          *lexer.Lexer
	imports     []*ast.ImportDeclaration
	inGenerator []bool // stack: is the innermost enclosing function a generator?
	inAsync     []bool
	prevEnd     int // byte-end of the last token consumed by advance()
}

// New creates a Parser over src.
func New(src string) *Parser {
	return &Parser{lx: lexer.New(src)}
}

// Program is the top-level parse result: the module's statement list plus
// the bucketed import declarations (spec §4.2).
type Program struct {
	Body    []ast.Statement
	Imports []*ast.ImportDeclaration
}

// ParseProgram pulls statements until EOF (spec §4.2's ParseProgram).
func ParseProgram(src string) (*Program, error) {
	p := New(src)
	return p.parseProgram()
}

func (p *Parser) parseProgram() (prog *Program, err error) {
	defer func() {
		if r := recover(); r != nil {
			se, ok := r.(*SyntaxError)
			if !ok {
				panic(r)
			}
			err = se
		}
	}()
	if p.lx.Err() != nil {
		return nil, toSyntaxError(p.lx.Err())
	}
	var body []ast.Statement
	for p.cur().Kind != token.EOF {
		stmt := p.parseStatement()
		body = append(body, stmt)
	}
	return &Program{Body: body, Imports: p.imports}, nil
}

func toSyntaxError(err error) error {
	if se, ok := err.(*lexer.SyntaxError); ok {
		return &SyntaxError{Message: se.Message, Pos: se.Pos}
	}
	return err
}

// --- token-stream helpers ---

func (p *Parser) cur() token.Token { return p.lx.Peek() }

func (p *Parser) advance() token.Token {
	t := p.lx.Next()
	if p.lx.Err() != nil {
		panic(toSyntaxError(p.lx.Err()))
	}
	p.prevEnd = t.End
	return t
}

func (p *Parser) at(k token.Kind) bool { return p.cur().Kind == k }

func (p *Parser) fail(pos int, format string, args ...any) {
	panic(&SyntaxError{Message: fmt.Sprintf(format, args...), Pos: pos})
}

func (p *Parser) expect(k token.Kind) token.Token {
	if !p.at(k) {
		p.fail(p.cur().Pos, "expected %s, got %s", k, p.cur().Kind)
	}
	return p.advance()
}

// expectSemi implements loose automatic-semicolon-insertion: an explicit
// `;`, a `}` / EOF, or a newline before the current token all terminate a
// statement.
func (p *Parser) expectSemi() {
	if p.at(token.Semi) {
		p.advance()
		return
	}
	if p.at(token.RBrace) || p.at(token.EOF) || p.cur().NewlineBefore {
		return
	}
	p.fail(p.cur().Pos, "expected ';', got %s", p.cur().Kind)
}

func currentGenerator(p *Parser) bool {
	if len(p.inGenerator) == 0 {
		return false
	}
	return p.inGenerator[len(p.inGenerator)-1]
}

func currentAsync(p *Parser) bool {
	if len(p.inAsync) == 0 {
		return false
	}
	return p.inAsync[len(p.inAsync)-1]
}
