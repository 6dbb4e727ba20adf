package parser

import (
	"lotusjs/ast"
	"lotusjs/token"
)

// parseStatement dispatches over every statement form spec §4.2 lists,
// mirroring the teacher's control_flow.go switch-over-statement-kind shape
// but building AST nodes instead of emitting x86 assembly directly.
func (p *Parser) parseStatement() ast.Statement {
	switch p.cur().Kind {
	case token.LBrace:
		return p.parseBlockStatement()
	case token.KwVar, token.KwLet, token.KwConst:
		return p.parseVariableDeclaration(false)
	case token.KwIf:
		return p.parseIfStatement()
	case token.KwFor:
		return p.parseForStatement()
	case token.KwWhile:
		return p.parseWhileStatement()
	case token.KwDo:
		return p.parseDoWhileStatement()
	case token.KwSwitch:
		return p.parseSwitchStatement()
	case token.KwContinue:
		return p.parseContinueStatement()
	case token.KwBreak:
		return p.parseBreakStatement()
	case token.KwReturn:
		return p.parseReturnStatement()
	case token.KwThrow:
		return p.parseThrowStatement()
	case token.KwTry:
		return p.parseTryStatement()
	case token.KwFunction:
		return p.parseFunctionDeclaration(false, false)
	case token.KwAsync:
		if p.lx.PeekN(1).Kind == token.KwFunction {
			return p.parseAsyncFunctionDeclaration(false, false)
		}
	case token.KwClass:
		return p.parseClassDeclaration(false, false)
	case token.KwImport:
		return p.parseImportDeclaration()
	case token.KwExport:
		return p.parseExportDeclaration()
	case token.Semi:
		start := p.advance().Pos
		return &ast.ExpressionStatement{baseStmt(p, start), nil}
	}
	if p.at(token.Identifier) && p.lx.PeekN(1).Kind == token.Colon {
		return p.parseLabeledStatement()
	}
	return p.parseExpressionStatement()
}

func baseStmt(p *Parser, start int) ast.BaseStmt {
	return ast.BaseStmt{Span: p.span2(start)}
}

func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	start := p.cur().Pos
	body := p.parseBlockBody()
	return &ast.BlockStatement{baseStmt(p, start), body}
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	start := p.cur().Pos
	expr := p.parseExpression()
	p.expectSemi()
	return &ast.ExpressionStatement{baseStmt(p, start), expr}
}

func (p *Parser) parseVariableDeclaration(noSemi bool) *ast.VariableDeclaration {
	start := p.cur().Pos
	kind := p.declKindFromToken(p.advance().Kind)
	var decls []ast.Declarator
	for {
		name := p.expect(token.Identifier).Lexeme
		var init ast.Expression
		if p.at(token.Assign) {
			p.advance()
			init = p.parseAssignment()
		} else if kind == ast.DeclConst {
			p.fail(p.cur().Pos, "missing initializer in const declaration")
		}
		decls = append(decls, ast.Declarator{Name: name, Init: init})
		if p.at(token.Comma) {
			p.advance()
			continue
		}
		break
	}
	if !noSemi {
		p.expectSemi()
	}
	return &ast.VariableDeclaration{baseStmt(p, start), kind, decls, false}
}

func (p *Parser) declKindFromToken(k token.Kind) ast.DeclKind {
	switch k {
	case token.KwVar:
		return ast.DeclVar
	case token.KwLet:
		return ast.DeclLet
	default:
		return ast.DeclConst
	}
}

func (p *Parser) parseIfStatement() ast.Statement {
	start := p.advance().Pos // 'if'
	p.expect(token.LParen)
	test := p.parseExpression()
	p.expect(token.RParen)
	cons := p.parseStatement()
	var alt ast.Statement
	if p.at(token.KwElse) {
		p.advance()
		alt = p.parseStatement()
	}
	return &ast.IfStatement{baseStmt(p, start), test, cons, alt}
}

// parseForStatement disambiguates plain C-style for from for-in/for-of
// after the init clause, per the ForInStatement grammar note in ast/stmt.go.
func (p *Parser) parseForStatement() ast.Statement {
	start := p.advance().Pos // 'for'
	p.expect(token.LParen)

	if p.at(token.KwVar) || p.at(token.KwLet) || p.at(token.KwConst) {
		declKind := p.declKindFromToken(p.cur().Kind)
		p.advance()
		name := p.expect(token.Identifier).Lexeme
		if p.at(token.KwIn) || p.at(token.KwOf) {
			forKind := ast.ForIn
			if p.cur().Kind == token.KwOf {
				forKind = ast.ForOf
			}
			p.advance()
			right := p.parseAssignment()
			p.expect(token.RParen)
			body := p.parseStatement()
			return &ast.ForInStatement{baseStmt(p, start), forKind, declKind, name, true, right, body}
		}
		// ordinary C-style for with a declaration init clause.
		var init ast.Expression
		if p.at(token.Assign) {
			p.advance()
			init = p.parseAssignment()
		} else if declKind == ast.DeclConst {
			p.fail(p.cur().Pos, "missing initializer in const declaration")
		}
		decls := []ast.Declarator{{Name: name, Init: init}}
		for p.at(token.Comma) {
			p.advance()
			n2 := p.expect(token.Identifier).Lexeme
			var i2 ast.Expression
			if p.at(token.Assign) {
				p.advance()
				i2 = p.parseAssignment()
			}
			decls = append(decls, ast.Declarator{Name: n2, Init: i2})
		}
		initDecl := &ast.VariableDeclaration{baseStmt(p, start), declKind, decls, false}
		p.expect(token.Semi)
		return p.finishCStyleFor(start, initDecl)
	}

	if p.at(token.Semi) {
		p.advance()
		return p.finishCStyleFor(start, nil)
	}

	// bare-expression init clause; could still be for-in/for-of over an
	// existing lvalue (`for (x in obj)`).
	exprStart := p.cur().Pos
	first := p.parseExpression()
	if p.at(token.KwIn) || p.at(token.KwOf) {
		id, ok := first.(*ast.Identifier)
		if !ok {
			p.fail(exprStart, "invalid left-hand side in for-in/for-of")
		}
		forKind := ast.ForIn
		if p.cur().Kind == token.KwOf {
			forKind = ast.ForOf
		}
		p.advance()
		right := p.parseAssignment()
		p.expect(token.RParen)
		body := p.parseStatement()
		return &ast.ForInStatement{baseStmt(p, start), forKind, ast.DeclVar, id.Name, false, right, body}
	}
	initStmt := &ast.ExpressionStatement{baseStmt(p, exprStart), first}
	p.expect(token.Semi)
	return p.finishCStyleFor(start, initStmt)
}

func (p *Parser) finishCStyleFor(start int, init ast.Statement) ast.Statement {
	var test ast.Expression
	if !p.at(token.Semi) {
		test = p.parseExpression()
	}
	p.expect(token.Semi)
	var update ast.Expression
	if !p.at(token.RParen) {
		update = p.parseExpression()
	}
	p.expect(token.RParen)
	body := p.parseStatement()
	return &ast.ForStatement{baseStmt(p, start), init, test, update, body}
}

func (p *Parser) parseWhileStatement() ast.Statement {
	start := p.advance().Pos // 'while'
	p.expect(token.LParen)
	test := p.parseExpression()
	p.expect(token.RParen)
	body := p.parseStatement()
	return &ast.WhileStatement{baseStmt(p, start), test, body}
}

func (p *Parser) parseDoWhileStatement() ast.Statement {
	start := p.advance().Pos // 'do'
	body := p.parseStatement()
	p.expect(token.KwWhile)
	p.expect(token.LParen)
	test := p.parseExpression()
	p.expect(token.RParen)
	p.expectSemi()
	return &ast.DoWhileStatement{baseStmt(p, start), body, test}
}

func (p *Parser) parseSwitchStatement() ast.Statement {
	start := p.advance().Pos // 'switch'
	p.expect(token.LParen)
	disc := p.parseExpression()
	p.expect(token.RParen)
	p.expect(token.LBrace)
	var cases []ast.SwitchCase
	for !p.at(token.RBrace) {
		var test ast.Expression
		if p.at(token.KwCase) {
			p.advance()
			test = p.parseExpression()
		} else {
			p.expect(token.KwDefault)
		}
		p.expect(token.Colon)
		var body []ast.Statement
		for !p.at(token.KwCase) && !p.at(token.KwDefault) && !p.at(token.RBrace) {
			body = append(body, p.parseStatement())
		}
		cases = append(cases, ast.SwitchCase{Test: test, Body: body})
	}
	p.expect(token.RBrace)
	return &ast.SwitchStatement{baseStmt(p, start), disc, cases}
}

func (p *Parser) parseContinueStatement() ast.Statement {
	start := p.advance().Pos // 'continue'
	label := ""
	if p.at(token.Identifier) && !p.cur().NewlineBefore {
		label = p.advance().Lexeme
	}
	p.expectSemi()
	return &ast.ContinueStatement{baseStmt(p, start), label}
}

func (p *Parser) parseBreakStatement() ast.Statement {
	start := p.advance().Pos // 'break'
	label := ""
	if p.at(token.Identifier) && !p.cur().NewlineBefore {
		label = p.advance().Lexeme
	}
	p.expectSemi()
	return &ast.BreakStatement{baseStmt(p, start), label}
}

func (p *Parser) parseReturnStatement() ast.Statement {
	start := p.advance().Pos // 'return'
	var arg ast.Expression
	if !p.cur().NewlineBefore && !p.at(token.Semi) && !p.at(token.RBrace) && !p.at(token.EOF) {
		arg = p.parseExpression()
	}
	p.expectSemi()
	return &ast.ReturnStatement{baseStmt(p, start), arg}
}

func (p *Parser) parseThrowStatement() ast.Statement {
	start := p.advance().Pos // 'throw'
	if p.cur().NewlineBefore {
		p.fail(p.cur().Pos, "illegal newline after throw")
	}
	arg := p.parseExpression()
	p.expectSemi()
	return &ast.ThrowStatement{baseStmt(p, start), arg}
}

func (p *Parser) parseTryStatement() ast.Statement {
	start := p.advance().Pos // 'try'
	block := p.parseBlockStatement()
	var catch *ast.CatchClause
	var finally *ast.BlockStatement
	if p.at(token.KwCatch) {
		p.advance()
		param := ""
		if p.at(token.LParen) {
			p.advance()
			param = p.expect(token.Identifier).Lexeme
			p.expect(token.RParen)
		}
		body := p.parseBlockStatement()
		catch = &ast.CatchClause{Param: param, Body: body}
	}
	if p.at(token.KwFinally) {
		p.advance()
		finally = p.parseBlockStatement()
	}
	if catch == nil && finally == nil {
		p.fail(p.cur().Pos, "missing catch or finally after try")
	}
	return &ast.TryStatement{baseStmt(p, start), block, catch, finally}
}

func (p *Parser) parseFunctionDeclaration(export, dflt bool) ast.Statement {
	start := p.cur().Pos
	fn := p.parseFunctionExpression(start, false).(*ast.FunctionExpression)
	return &ast.FunctionDeclaration{baseStmt(p, start), fn, export, dflt}
}

func (p *Parser) parseAsyncFunctionDeclaration(export bool, dflt bool) ast.Statement {
	start := p.cur().Pos
	p.advance() // 'async'
	fn := p.parseFunctionExpression(start, true).(*ast.FunctionExpression)
	return &ast.FunctionDeclaration{baseStmt(p, start), fn, export, dflt}
}

func (p *Parser) parseClassDeclaration(export, dflt bool) ast.Statement {
	start := p.cur().Pos
	cls := p.parseClassExpression().(*ast.ClassExpression)
	return &ast.ClassDeclaration{baseStmt(p, start), cls, export, dflt}
}

func (p *Parser) parseLabeledStatement() ast.Statement {
	start := p.cur().Pos
	label := p.advance().Lexeme
	p.advance() // ':'
	body := p.parseStatement()
	return &ast.LabeledStatement{baseStmt(p, start), label, body}
}

// ---- modules ----

func (p *Parser) parseImportDeclaration() ast.Statement {
	start := p.advance().Pos // 'import'
	var specs []ast.ImportSpecifier
	if p.at(token.String) {
		src := p.advance().Lexeme
		p.expectSemi()
		decl := &ast.ImportDeclaration{baseStmt(p, start), nil, src}
		p.imports = append(p.imports, decl)
		return decl
	}
	if p.at(token.Identifier) {
		local := p.advance().Lexeme
		specs = append(specs, ast.ImportSpecifier{Kind: ast.ImportDefault, Local: local, Remote: "default"})
		if p.at(token.Comma) {
			p.advance()
		}
	}
	if p.at(token.Star) {
		p.advance()
		p.expect(token.KwAs)
		local := p.expect(token.Identifier).Lexeme
		specs = append(specs, ast.ImportSpecifier{Kind: ast.ImportNamespace, Local: local})
	} else if p.at(token.LBrace) {
		p.advance()
		for !p.at(token.RBrace) {
			remote := p.expectPropertyName().Lexeme
			local := remote
			if p.at(token.KwAs) {
				p.advance()
				local = p.expect(token.Identifier).Lexeme
			}
			specs = append(specs, ast.ImportSpecifier{Kind: ast.ImportNamed, Local: local, Remote: remote})
			if p.at(token.Comma) {
				p.advance()
			} else {
				break
			}
		}
		p.expect(token.RBrace)
	}
	p.expect(token.KwFrom)
	src := p.expect(token.String).Lexeme
	p.expectSemi()
	decl := &ast.ImportDeclaration{baseStmt(p, start), specs, src}
	p.imports = append(p.imports, decl)
	return decl
}

func (p *Parser) parseExportDeclaration() ast.Statement {
	start := p.advance().Pos // 'export'
	if p.at(token.KwDefault) {
		p.advance()
		switch p.cur().Kind {
		case token.KwFunction:
			return p.parseFunctionDeclaration(true, true)
		case token.KwAsync:
			if p.lx.PeekN(1).Kind == token.KwFunction {
				return p.parseAsyncFunctionDeclaration(true, true)
			}
		case token.KwClass:
			return p.parseClassDeclaration(true, true)
		}
		expr := p.parseAssignment()
		p.expectSemi()
		return &ast.ExportDeclaration{baseStmt(p, start), nil, "", &ast.ExpressionStatement{baseStmt(p, start), expr}}
	}
	switch p.cur().Kind {
	case token.KwVar, token.KwLet, token.KwConst:
		decl := p.parseVariableDeclaration(false)
		decl.Export = true
		return &ast.ExportDeclaration{baseStmt(p, start), nil, "", decl}
	case token.KwFunction:
		return p.parseFunctionDeclaration(true, false)
	case token.KwAsync:
		if p.lx.PeekN(1).Kind == token.KwFunction {
			return p.parseAsyncFunctionDeclaration(true, false)
		}
	case token.KwClass:
		return p.parseClassDeclaration(true, false)
	}
	p.expect(token.LBrace)
	var specs []ast.ExportSpecifier
	for !p.at(token.RBrace) {
		local := p.expectPropertyName().Lexeme
		remote := local
		if p.at(token.KwAs) {
			p.advance()
			remote = p.expectPropertyName().Lexeme
		}
		specs = append(specs, ast.ExportSpecifier{Local: local, Remote: remote})
		if p.at(token.Comma) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.RBrace)
	src := ""
	if p.at(token.KwFrom) {
		p.advance()
		src = p.expect(token.String).Lexeme
	}
	p.expectSemi()
	return &ast.ExportDeclaration{baseStmt(p, start), specs, src, nil}
}
