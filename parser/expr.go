package parser

import (
	"strconv"

	"lotusjs/ast"
	"lotusjs/token"
)

// parseExpression is the comma-operator entry point: the lowest rung of
// spec §4.2's precedence ladder.
func (p *Parser) parseExpression() ast.Expression {
	start := p.cur().Pos
	first := p.parseAssignment()
	if !p.at(token.Comma) {
		return first
	}
	exprs := []ast.Expression{first}
	for p.at(token.Comma) {
		p.advance()
		exprs = append(exprs, p.parseAssignment())
	}
	return &ast.SequenceExpression{baseExpr(p, start), exprs}
}

// span2 closes a span ending at the last consumed token.
func (p *Parser) span2(start int) ast.Span { return ast.Span{Start: start, End: p.prevEnd} }

// parseAssignment handles `yield`, then assignment (right-associative),
// per spec §4.2.
func (p *Parser) parseAssignment() ast.Expression {
	if p.at(token.KwYield) && currentGenerator(p) {
		return p.parseYield()
	}
	start := p.cur().Pos
	left := p.parseConditional()
	if isAssignOp(p.cur().Kind) {
		op := p.advance().Kind
		if left.Category() != ast.LValue {
			p.fail(start, "invalid assignment target")
		}
		value := p.parseAssignment()
		return &ast.AssignmentExpression{baseExpr(p, start), op, left, value}
	}
	return left
}

func baseExpr(p *Parser, start int) ast.BaseExpr {
	return ast.BaseExpr{Span: p.span2(start)}
}

func isAssignOp(k token.Kind) bool {
	switch k {
	case token.Assign, token.PlusAssign, token.MinusAssign, token.StarAssign, token.SlashAssign,
		token.PercentAssign, token.StarStarAssign, token.ShlAssign, token.ShrAssign, token.UShrAssign,
		token.AndAssign, token.OrAssign, token.XorAssign, token.AndAndAssign, token.OrOrAssign,
		token.QuestionQuestionAssign:
		return true
	}
	return false
}

func (p *Parser) parseYield() ast.Expression {
	start := p.advance().Pos // consume 'yield'
	delegate := false
	if p.at(token.Star) {
		p.advance()
		delegate = true
	}
	var arg ast.Expression
	if !p.cur().NewlineBefore && exprCanFollowYield(p.cur().Kind) {
		arg = p.parseAssignment()
	}
	return &ast.YieldExpression{baseExpr(p, start), arg, delegate}
}

func exprCanFollowYield(k token.Kind) bool {
	switch k {
	case token.Semi, token.RParen, token.RBrace, token.RBracket, token.Comma, token.Colon, token.EOF:
		return false
	}
	return true
}

func (p *Parser) parseConditional() ast.Expression {
	start := p.cur().Pos
	test := p.parseNullish()
	if !p.at(token.Question) {
		return test
	}
	p.advance()
	cons := p.parseAssignment()
	p.expect(token.Colon)
	alt := p.parseAssignment()
	return &ast.ConditionalExpression{baseExpr(p, start), test, cons, alt}
}

func (p *Parser) parseNullish() ast.Expression {
	start := p.cur().Pos
	left := p.parseLogicalOr()
	for p.at(token.QuestionQuestion) {
		p.advance()
		right := p.parseLogicalOr()
		left = &ast.LogicalExpression{baseExpr(p, start), token.QuestionQuestion, left, right}
	}
	return left
}

func (p *Parser) parseLogicalOr() ast.Expression {
	start := p.cur().Pos
	left := p.parseLogicalAnd()
	for p.at(token.OrOr) {
		p.advance()
		right := p.parseLogicalAnd()
		left = &ast.LogicalExpression{baseExpr(p, start), token.OrOr, left, right}
	}
	return left
}

func (p *Parser) parseLogicalAnd() ast.Expression {
	start := p.cur().Pos
	left := p.parseBitOr()
	for p.at(token.AndAnd) {
		p.advance()
		right := p.parseBitOr()
		left = &ast.LogicalExpression{baseExpr(p, start), token.AndAnd, left, right}
	}
	return left
}

func (p *Parser) parseBitOr() ast.Expression {
	start := p.cur().Pos
	left := p.parseBitXor()
	for p.at(token.Pipe) {
		p.advance()
		right := p.parseBitXor()
		left = &ast.BinaryExpression{baseExpr(p, start), token.Pipe, left, right}
	}
	return left
}

func (p *Parser) parseBitXor() ast.Expression {
	start := p.cur().Pos
	left := p.parseBitAnd()
	for p.at(token.Caret) {
		p.advance()
		right := p.parseBitAnd()
		left = &ast.BinaryExpression{baseExpr(p, start), token.Caret, left, right}
	}
	return left
}

func (p *Parser) parseBitAnd() ast.Expression {
	start := p.cur().Pos
	left := p.parseEquality()
	for p.at(token.Amp) {
		p.advance()
		right := p.parseEquality()
		left = &ast.BinaryExpression{baseExpr(p, start), token.Amp, left, right}
	}
	return left
}

func (p *Parser) parseEquality() ast.Expression {
	start := p.cur().Pos
	left := p.parseRelational()
	for isEqualityOp(p.cur().Kind) {
		op := p.advance().Kind
		right := p.parseRelational()
		left = &ast.BinaryExpression{baseExpr(p, start), op, left, right}
	}
	return left
}

func isEqualityOp(k token.Kind) bool {
	switch k {
	case token.Eq, token.NotEq, token.StrictEq, token.StrictNotEq:
		return true
	}
	return false
}

func (p *Parser) parseRelational() ast.Expression {
	start := p.cur().Pos
	left := p.parseShift()
	for isRelationalOp(p.cur().Kind) {
		op := p.advance().Kind
		right := p.parseShift()
		left = &ast.BinaryExpression{baseExpr(p, start), op, left, right}
	}
	return left
}

func isRelationalOp(k token.Kind) bool {
	switch k {
	case token.Lt, token.Le, token.Gt, token.Ge, token.KwIn, token.KwInstanceof:
		return true
	}
	return false
}

func (p *Parser) parseShift() ast.Expression {
	start := p.cur().Pos
	left := p.parseAdditive()
	for p.at(token.Shl) || p.at(token.Shr) || p.at(token.UShr) {
		op := p.advance().Kind
		right := p.parseAdditive()
		left = &ast.BinaryExpression{baseExpr(p, start), op, left, right}
	}
	return left
}

func (p *Parser) parseAdditive() ast.Expression {
	start := p.cur().Pos
	left := p.parseMultiplicative()
	for p.at(token.Plus) || p.at(token.Minus) {
		op := p.advance().Kind
		right := p.parseMultiplicative()
		left = &ast.BinaryExpression{baseExpr(p, start), op, left, right}
	}
	return left
}

func (p *Parser) parseMultiplicative() ast.Expression {
	start := p.cur().Pos
	left := p.parseExponent()
	for p.at(token.Star) || p.at(token.Slash) || p.at(token.Percent) {
		op := p.advance().Kind
		right := p.parseExponent()
		left = &ast.BinaryExpression{baseExpr(p, start), op, left, right}
	}
	return left
}

// parseExponent: `**` is right-associative, per spec §4.2.
func (p *Parser) parseExponent() ast.Expression {
	start := p.cur().Pos
	left := p.parseUnary()
	if p.at(token.StarStar) {
		p.advance()
		right := p.parseExponent()
		return &ast.BinaryExpression{baseExpr(p, start), token.StarStar, left, right}
	}
	return left
}

func (p *Parser) parseUnary() ast.Expression {
	start := p.cur().Pos
	switch p.cur().Kind {
	case token.Plus, token.Minus, token.Bang, token.Tilde, token.KwTypeof, token.KwVoid, token.KwDelete:
		op := p.advance().Kind
		arg := p.parseUnary()
		return &ast.UnaryExpression{baseExpr(p, start), op, arg}
	case token.KwAwait:
		if currentAsync(p) {
			p.advance()
			arg := p.parseUnary()
			return &ast.AwaitExpression{baseExpr(p, start), arg}
		}
	case token.PlusPlus, token.MinusMinus:
		op := p.advance().Kind
		arg := p.parseUnary()
		if arg.Category() != ast.LValue {
			p.fail(start, "invalid increment/decrement target")
		}
		return &ast.UpdateExpression{baseExpr(p, start), op, arg, true}
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() ast.Expression {
	start := p.cur().Pos
	expr := p.parseLeftHandSide()
	if !p.cur().NewlineBefore && (p.at(token.PlusPlus) || p.at(token.MinusMinus)) {
		if expr.Category() != ast.LValue {
			p.fail(start, "invalid increment/decrement target")
		}
		op := p.advance().Kind
		return &ast.UpdateExpression{baseExpr(p, start), op, expr, false}
	}
	return expr
}

// parseLeftHandSide handles member/call chains, `new`, and optional
// chaining (spec §4.2's "left-hand-side" rung).
func (p *Parser) parseLeftHandSide() ast.Expression {
	start := p.cur().Pos
	var expr ast.Expression
	if p.at(token.KwNew) {
		expr = p.parseNew()
	} else {
		expr = p.parsePrimary()
	}
	return p.parseCallTail(expr, start)
}

func (p *Parser) parseNew() ast.Expression {
	start := p.advance().Pos // consume 'new'
	if p.at(token.Dot) {
		// new.target — modeled as a bare identifier; VM resolves specially.
		p.advance()
		p.expect(token.Identifier)
		return &ast.Identifier{baseExpr(p, start), "new.target"}
	}
	var callee ast.Expression
	if p.at(token.KwNew) {
		callee = p.parseNew()
	} else {
		callee = p.parsePrimary()
	}
	callee = p.parseMemberTail(callee, start)
	var args []ast.Expression
	if p.at(token.LParen) {
		args = p.parseArguments()
	}
	return &ast.NewExpression{baseExpr(p, start), callee, args}
}

// parseMemberTail parses only member accesses (no calls); used while
// building a `new` callee, which binds tighter than a call's argument list.
func (p *Parser) parseMemberTail(expr ast.Expression, start int) ast.Expression {
	for {
		switch {
		case p.at(token.Dot):
			p.advance()
			name := p.expect(token.Identifier)
			expr = &ast.MemberExpression{baseExpr(p, start), expr, &ast.Identifier{baseExpr(p, name.Pos), name.Lexeme}, false, false}
		case p.at(token.LBracket):
			p.advance()
			idx := p.parseExpression()
			p.expect(token.RBracket)
			expr = &ast.MemberExpression{baseExpr(p, start), expr, idx, true, false}
		default:
			return expr
		}
	}
}

func (p *Parser) parseCallTail(expr ast.Expression, start int) ast.Expression {
	for {
		switch {
		case p.at(token.Dot):
			p.advance()
			name := p.expectPropertyName()
			expr = &ast.MemberExpression{baseExpr(p, start), expr, &ast.Identifier{baseExpr(p, name.Pos), name.Lexeme}, false, false}
		case p.at(token.QuestionDot):
			p.advance()
			if p.at(token.LParen) {
				args := p.parseArguments()
				expr = &ast.CallExpression{baseExpr(p, start), expr, args, true}
				continue
			}
			if p.at(token.LBracket) {
				p.advance()
				idx := p.parseExpression()
				p.expect(token.RBracket)
				expr = &ast.MemberExpression{baseExpr(p, start), expr, idx, true, true}
				continue
			}
			name := p.expectPropertyName()
			expr = &ast.MemberExpression{baseExpr(p, start), expr, &ast.Identifier{baseExpr(p, name.Pos), name.Lexeme}, false, true}
		case p.at(token.LBracket):
			p.advance()
			idx := p.parseExpression()
			p.expect(token.RBracket)
			expr = &ast.MemberExpression{baseExpr(p, start), expr, idx, true, false}
		case p.at(token.LParen):
			args := p.parseArguments()
			expr = &ast.CallExpression{baseExpr(p, start), expr, args, false}
		case p.at(token.Backtick):
			tmpl := p.parseTemplateLiteral()
			expr = &ast.TaggedTemplateExpression{baseExpr(p, start), expr, tmpl}
		default:
			return expr
		}
	}
}

func (p *Parser) expectPropertyName() token.Token {
	if p.at(token.Identifier) || isContextualKeyword(p.cur().Kind) {
		return p.advance()
	}
	p.fail(p.cur().Pos, "expected property name, got %s", p.cur().Kind)
	return token.Token{}
}

// isContextualKeyword allows keywords like `get`/`set`/`of`/`async` to be
// used as plain property names (`obj.get`, `obj.async`), matching real JS.
func isContextualKeyword(k token.Kind) bool {
	switch k {
	case token.KwGet, token.KwSet, token.KwOf, token.KwAsync, token.KwFrom, token.KwAs,
		token.KwStatic, token.KwYield, token.KwAwait:
		return true
	}
	return false
}

func (p *Parser) parseArguments() []ast.Expression {
	p.expect(token.LParen)
	var args []ast.Expression
	for !p.at(token.RParen) {
		if p.at(token.DotDotDot) {
			start := p.advance().Pos
			arg := p.parseAssignment()
			args = append(args, &ast.SpreadElement{baseExpr(p, start), arg})
		} else {
			args = append(args, p.parseAssignment())
		}
		if p.at(token.Comma) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.RParen)
	return args
}

// parsePrimary also implements the arrow-function disambiguation of spec
// §4.2: on `(` or a bare identifier, it speculatively checkpoints the
// lexer and tries an arrow parse, rewinding on failure.
func (p *Parser) parsePrimary() ast.Expression {
	start := p.cur().Pos
	switch p.cur().Kind {
	case token.Number:
		t := p.advance()
		if f, err := strconv.ParseFloat(t.Lexeme, 64); err == nil && hasFloatSyntax(t.Lexeme) {
			return &ast.FloatLiteral{baseExpr(p, start), f}
		}
		if n, err := strconv.ParseInt(t.Lexeme, 0, 64); err == nil {
			return &ast.IntLiteral{baseExpr(p, start), n}
		}
		f, _ := strconv.ParseFloat(t.Lexeme, 64)
		return &ast.FloatLiteral{baseExpr(p, start), f}
	case token.BigInt:
		t := p.advance()
		return &ast.BigIntLiteral{baseExpr(p, start), t.Lexeme}
	case token.String:
		t := p.advance()
		return &ast.StringLiteral{baseExpr(p, start), t.Lexeme}
	case token.Regex:
		t := p.advance()
		return &ast.RegexLiteral{baseExpr(p, start), t.Lexeme, t.Flags}
	case token.KwTrue:
		p.advance()
		return &ast.BoolLiteral{baseExpr(p, start), true}
	case token.KwFalse:
		p.advance()
		return &ast.BoolLiteral{baseExpr(p, start), false}
	case token.KwNull:
		p.advance()
		return &ast.NullLiteral{baseExpr(p, start)}
	case token.KwUndefined:
		p.advance()
		return &ast.UndefinedLiteral{baseExpr(p, start)}
	case token.KwThis:
		p.advance()
		return &ast.ThisExpression{baseExpr(p, start)}
	case token.KwSuper:
		p.advance()
		return &ast.SuperExpression{baseExpr(p, start)}
	case token.KwFunction:
		return p.parseFunctionExpression(start, false)
	case token.KwAsync:
		if p.lx.PeekN(1).Kind == token.KwFunction {
			p.advance()
			return p.parseFunctionExpression(start, true)
		}
		if arrow, ok := p.tryParseArrow(true); ok {
			return arrow
		}
	case token.KwClass:
		return p.parseClassExpression()
	case token.Identifier:
		if arrow, ok := p.tryParseArrow(false); ok {
			return arrow
		}
		t := p.advance()
		return &ast.Identifier{baseExpr(p, start), t.Lexeme}
	case token.LParen:
		if arrow, ok := p.tryParseArrow(false); ok {
			return arrow
		}
		p.advance()
		expr := p.parseExpression()
		p.expect(token.RParen)
		return expr
	case token.LBracket:
		return p.parseArrayLiteral()
	case token.LBrace:
		return p.parseObjectLiteral()
	case token.Backtick:
		return p.parseTemplateLiteral()
	case token.KwImport:
		p.advance()
		p.expect(token.LParen)
		src := p.parseAssignment()
		p.expect(token.RParen)
		return &ast.ImportExpression{baseExpr(p, start), src}
	}
	p.fail(start, "unexpected token in expression: %s", p.cur().Kind)
	return nil
}

func hasFloatSyntax(lexeme string) bool {
	for i := 0; i < len(lexeme); i++ {
		switch lexeme[i] {
		case '.', 'e', 'E':
			if i == 1 && (lexeme[0] == '0') && i+1 < len(lexeme) {
				switch lexeme[1] {
				case 'x', 'X', 'b', 'B', 'o', 'O':
					return false
				}
			}
			return true
		}
	}
	return false
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	start := p.advance().Pos // '['
	var elems []ast.Expression
	for !p.at(token.RBracket) {
		if p.at(token.Comma) {
			elems = append(elems, nil) // elision
			p.advance()
			continue
		}
		if p.at(token.DotDotDot) {
			sstart := p.advance().Pos
			arg := p.parseAssignment()
			elems = append(elems, &ast.SpreadElement{baseExpr(p, sstart), arg})
		} else {
			elems = append(elems, p.parseAssignment())
		}
		if p.at(token.Comma) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.RBracket)
	return &ast.ArrayExpression{baseExpr(p, start), elems}
}

func (p *Parser) parseObjectLiteral() ast.Expression {
	start := p.advance().Pos // '{'
	var props []ast.Property
	for !p.at(token.RBrace) {
		props = append(props, p.parseObjectProperty())
		if p.at(token.Comma) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.RBrace)
	return &ast.ObjectExpression{baseExpr(p, start), props}
}

func (p *Parser) parseObjectProperty() ast.Property {
	if p.at(token.DotDotDot) {
		start := p.advance().Pos
		arg := p.parseAssignment()
		return ast.Property{Value: &ast.SpreadElement{baseExpr(p, start), arg}, Kind: ast.PropSpread}
	}
	if (p.at(token.KwGet) || p.at(token.KwSet)) && !isPropertyTerminator(p.lx.PeekN(1).Kind) {
		kind := ast.PropGet
		if p.cur().Kind == token.KwSet {
			kind = ast.PropSet
		}
		p.advance()
		key, computed := p.parsePropertyKey()
		fn := p.parseFunctionTail(false, false)
		return ast.Property{Key: key, Value: fn, Kind: kind, Computed: computed}
	}
	async := false
	generator := false
	if p.at(token.KwAsync) && !isPropertyTerminator(p.lx.PeekN(1).Kind) {
		async = true
		p.advance()
	}
	if p.at(token.Star) {
		generator = true
		p.advance()
	}
	keyStart := p.cur().Pos
	key, computed := p.parsePropertyKey()
	if p.at(token.LParen) {
		fn := p.parseFunctionTail(generator, async)
		return ast.Property{Key: key, Value: fn, Kind: ast.PropMethod, Computed: computed}
	}
	if p.at(token.Colon) {
		p.advance()
		val := p.parseAssignment()
		return ast.Property{Key: key, Value: val, Kind: ast.PropInit, Computed: computed}
	}
	// shorthand { x } or { x = default } (default only meaningful in
	// destructuring contexts, which this engine does not implement; kept
	// as a plain shorthand reference otherwise).
	id, ok := key.(*ast.Identifier)
	if !ok {
		p.fail(keyStart, "invalid shorthand property")
	}
	return ast.Property{Key: key, Value: id, Kind: ast.PropInit, Shorthand: true}
}

func isPropertyTerminator(k token.Kind) bool {
	switch k {
	case token.Colon, token.Comma, token.RBrace, token.LParen:
		return true
	}
	return false
}

func (p *Parser) parsePropertyKey() (ast.Expression, bool) {
	start := p.cur().Pos
	if p.at(token.LBracket) {
		p.advance()
		expr := p.parseAssignment()
		p.expect(token.RBracket)
		return expr, true
	}
	if p.at(token.String) {
		t := p.advance()
		return &ast.StringLiteral{baseExpr(p, start), t.Lexeme}, false
	}
	if p.at(token.Number) {
		t := p.advance()
		return &ast.StringLiteral{baseExpr(p, start), t.Lexeme}, false
	}
	t := p.expectPropertyName()
	return &ast.Identifier{baseExpr(p, start), t.Lexeme}, false
}

// parseTemplateLiteral drives the lexer's template-text/interpolation
// state machine (spec §4.1's nested-template handling). The lexer tags each
// TemplateElement token's Flags "tail" (closing backtick, literal done) or
// "cont" (followed by `${`, an interpolation follows); consuming a "cont"
// element itself primes the lexer's next token in ordinary expression mode,
// and the recursive-descent expression parser naturally balances any
// nested `{`/`}` pairs (e.g. object literals) before returning, so the `}`
// remaining afterwards is always the one that closes the interpolation.
func (p *Parser) parseTemplateLiteral() *ast.TemplateLiteral {
	start := p.cur().Pos
	p.lx.EnterTemplate() // current token ('`') is known by inspection, discarded here
	var quasis []*ast.TemplateElement
	var exprs []ast.Expression
	for {
		elem := p.cur()
		if elem.Kind != token.TemplateElement {
			p.fail(elem.Pos, "expected template text, got %s", elem.Kind)
		}
		tail := elem.Flags == "tail"
		p.advance() // consume the element; for "cont" this also primes the interpolation's first token
		quasis = append(quasis, &ast.TemplateElement{baseExpr(p, elem.Pos), elem.Raw, elem.Raw, tail})
		if tail {
			break
		}
		exprs = append(exprs, p.parseExpression())
		p.closeTemplateInterpolation()
	}
	return &ast.TemplateLiteral{baseExpr(p, start), quasis, exprs}
}

// closeTemplateInterpolation consumes the `}` that ends a `${ }` span. It
// must not use the ordinary advance()/expect() path, which would scan
// whatever follows as an expression token: the lexer instead resumes raw
// template-text scanning from right after the brace.
func (p *Parser) closeTemplateInterpolation() {
	if !p.at(token.RBrace) {
		p.fail(p.cur().Pos, "expected '}' to close template interpolation, got %s", p.cur().Kind)
	}
	p.lx.ResumeTemplateText()
}

func (p *Parser) parseClassExpression() ast.Expression {
	start := p.advance().Pos // 'class'
	name := ""
	if p.at(token.Identifier) {
		name = p.advance().Lexeme
	}
	var super ast.Expression
	if p.at(token.KwExtends) {
		p.advance()
		super = p.parseLeftHandSide()
	}
	p.expect(token.LBrace)
	var members []ast.ClassMember
	for !p.at(token.RBrace) {
		if p.at(token.Semi) {
			p.advance()
			continue
		}
		members = append(members, p.parseClassMember())
	}
	p.expect(token.RBrace)
	return &ast.ClassExpression{baseExpr(p, start), name, super, members}
}

func (p *Parser) parseClassMember() ast.ClassMember {
	static := false
	if p.at(token.KwStatic) && !isPropertyTerminator(p.lx.PeekN(1).Kind) {
		static = true
		p.advance()
	}
	kind := ast.MethodNormal
	if (p.at(token.KwGet) || p.at(token.KwSet)) && !isPropertyTerminator(p.lx.PeekN(1).Kind) {
		if p.cur().Kind == token.KwGet {
			kind = ast.MethodGetter
		} else {
			kind = ast.MethodSetter
		}
		p.advance()
	}
	async := false
	generator := false
	if p.at(token.KwAsync) && !isPropertyTerminator(p.lx.PeekN(1).Kind) {
		async = true
		p.advance()
	}
	if p.at(token.Star) {
		generator = true
		p.advance()
	}
	key, computed := p.parsePropertyKey()
	if p.at(token.LParen) {
		fn := p.parseFunctionTail(generator, async)
		if id, ok := key.(*ast.Identifier); ok && id.Name == "constructor" && !static {
			kind = ast.MethodConstructor
		}
		return ast.ClassMember{Key: key, Computed: computed, Static: static, Kind: kind, Function: fn}
	}
	var fieldVal ast.Expression
	if p.at(token.Assign) {
		p.advance()
		fieldVal = p.parseAssignment()
	}
	p.expectSemi()
	return ast.ClassMember{Key: key, Computed: computed, Static: static, Kind: ast.FieldMember, FieldValue: fieldVal}
}

// parseFunctionExpression parses `function` [`*`] [name] (params) { body }.
// start is the span's opening position: the `function` keyword itself, or
// the preceding `async` keyword when this is an async function expression.
func (p *Parser) parseFunctionExpression(start int, async bool) ast.Expression {
	p.advance() // consume 'function'
	generator := false
	if p.at(token.Star) {
		generator = true
		p.advance()
	}
	name := ""
	if p.at(token.Identifier) {
		name = p.advance().Lexeme
	}
	fn := p.parseFunctionTail(generator, async)
	fn.Span = p.span2(start)
	fn.Name = name
	return fn
}

// parseFunctionTail parses `(params) { body }` shared by function
// expressions/declarations, methods, and getters/setters.
func (p *Parser) parseFunctionTail(generator, async bool) *ast.FunctionExpression {
	start := p.cur().Pos
	params := p.parseParams()
	p.inGenerator = append(p.inGenerator, generator)
	p.inAsync = append(p.inAsync, async)
	body := p.parseBlockBody()
	p.inGenerator = p.inGenerator[:len(p.inGenerator)-1]
	p.inAsync = p.inAsync[:len(p.inAsync)-1]
	return &ast.FunctionExpression{baseExpr(p, start), "", params, body, generator, async}
}

func (p *Parser) parseParams() []ast.Param {
	p.expect(token.LParen)
	var params []ast.Param
	for !p.at(token.RParen) {
		if p.at(token.DotDotDot) {
			p.advance()
			name := p.expect(token.Identifier).Lexeme
			params = append(params, ast.Param{Name: name, Rest: true})
			break
		}
		name := p.expect(token.Identifier).Lexeme
		var def ast.Expression
		if p.at(token.Assign) {
			p.advance()
			def = p.parseAssignment()
		}
		params = append(params, ast.Param{Name: name, Default: def})
		if p.at(token.Comma) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.RParen)
	return params
}

func (p *Parser) parseBlockBody() []ast.Statement {
	p.expect(token.LBrace)
	var body []ast.Statement
	for !p.at(token.RBrace) {
		body = append(body, p.parseStatement())
	}
	p.expect(token.RBrace)
	return body
}

// tryParseArrow implements spec §4.2's arrow-function disambiguation: a
// lexer checkpoint is taken, an arrow parse is attempted, and on failure
// the checkpoint is restored so the caller falls back to a parenthesised
// expression or bare identifier.
func (p *Parser) tryParseArrow(async bool) (ast.Expression, bool) {
	start := p.cur().Pos
	cp := p.lx.Checkpoint()
	savedImports := len(p.imports)

	ok, expr := func() (ok bool, expr ast.Expression) {
		defer func() {
			if r := recover(); r != nil {
				if _, isSyntax := r.(*SyntaxError); isSyntax {
					ok = false
					return
				}
				panic(r)
			}
		}()
		if async {
			p.advance() // consume 'async'
		}
		var params []ast.Param
		if p.at(token.Identifier) {
			name := p.advance().Lexeme
			params = []ast.Param{{Name: name}}
		} else if p.at(token.LParen) {
			params = p.parseParams()
		} else {
			return false, nil
		}
		if !p.at(token.Arrow) {
			return false, nil
		}
		p.advance() // '=>'
		p.inAsync = append(p.inAsync, async)
		p.inGenerator = append(p.inGenerator, false)
		defer func() {
			p.inAsync = p.inAsync[:len(p.inAsync)-1]
			p.inGenerator = p.inGenerator[:len(p.inGenerator)-1]
		}()
		if p.at(token.LBrace) {
			body := p.parseBlockBody()
			return true, &ast.ArrowFunctionExpression{baseExpr(p, start), params, body, nil, async}
		}
		exprBody := p.parseAssignment()
		return true, &ast.ArrowFunctionExpression{baseExpr(p, start), params, nil, exprBody, async}
	}()

	if !ok {
		p.lx.Rewind(cp)
		p.imports = p.imports[:savedImports]
		return nil, false
	}
	return expr, true
}
