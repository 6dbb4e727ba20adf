package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lotusjs/ast"
)

func TestOperatorPrecedence(t *testing.T) {
	prog, err := ParseProgram("1 + 2 * 3;")
	require.NoError(t, err)
	require.Len(t, prog.Body, 1)
	stmt := prog.Body[0].(*ast.ExpressionStatement)
	bin := stmt.Expr.(*ast.BinaryExpression)
	_, ok := bin.Left.(*ast.IntLiteral)
	assert.True(t, ok, "left side of the outer '+' should be the literal 1")
	rhs, ok := bin.Right.(*ast.BinaryExpression)
	require.True(t, ok, "right side should be the nested '*' expression")
	assert.Equal(t, 2, int(rhs.Left.(*ast.IntLiteral).Value))
}

func TestExponentRightAssociative(t *testing.T) {
	prog, err := ParseProgram("2 ** 3 ** 2;")
	require.NoError(t, err)
	stmt := prog.Body[0].(*ast.ExpressionStatement)
	bin := stmt.Expr.(*ast.BinaryExpression)
	_, leftIsLiteral := bin.Left.(*ast.IntLiteral)
	assert.True(t, leftIsLiteral)
	_, rightIsNested := bin.Right.(*ast.BinaryExpression)
	assert.True(t, rightIsNested, "2 ** 3 ** 2 must parse as 2 ** (3 ** 2)")
}

func TestArrowVsParenDisambiguation(t *testing.T) {
	prog, err := ParseProgram("const f = (x, y) => x + y;")
	require.NoError(t, err)
	decl := prog.Body[0].(*ast.VariableDeclaration)
	arrow, ok := decl.Declarations[0].Init.(*ast.ArrowFunctionExpression)
	require.True(t, ok, "(x, y) => ... must parse as an arrow function")
	assert.Len(t, arrow.Params, 2)
	assert.NotNil(t, arrow.ExprBody)
}

func TestParenthesizedExpressionNotArrow(t *testing.T) {
	prog, err := ParseProgram("const f = (x + 1);")
	require.NoError(t, err)
	decl := prog.Body[0].(*ast.VariableDeclaration)
	_, isArrow := decl.Declarations[0].Init.(*ast.ArrowFunctionExpression)
	assert.False(t, isArrow)
	_, isBinary := decl.Declarations[0].Init.(*ast.BinaryExpression)
	assert.True(t, isBinary)
}

func TestSingleIdentifierArrow(t *testing.T) {
	prog, err := ParseProgram("const id = x => x;")
	require.NoError(t, err)
	decl := prog.Body[0].(*ast.VariableDeclaration)
	arrow, ok := decl.Declarations[0].Init.(*ast.ArrowFunctionExpression)
	require.True(t, ok)
	assert.Equal(t, "x", arrow.Params[0].Name)
}

func TestOptionalChainingShortCircuit(t *testing.T) {
	prog, err := ParseProgram("a?.b.c;")
	require.NoError(t, err)
	stmt := prog.Body[0].(*ast.ExpressionStatement)
	outer := stmt.Expr.(*ast.MemberExpression)
	assert.False(t, outer.Optional, "the outer .c access is not itself marked optional")
	inner := outer.Object.(*ast.MemberExpression)
	assert.True(t, inner.Optional, "a?.b carries the '?.' flag on the first step")
}

func TestIfElseSpanCoversWholeStatement(t *testing.T) {
	src := "if (x) { y(); } else { z(); }"
	prog, err := ParseProgram(src)
	require.NoError(t, err)
	ifStmt := prog.Body[0].(*ast.IfStatement)
	assert.NotNil(t, ifStmt.Alternate)
	assert.Equal(t, 0, ifStmt.Span.Start)
	assert.Equal(t, len(src), ifStmt.Span.End)
}

func TestForInVsForOf(t *testing.T) {
	prog, err := ParseProgram("for (let k in obj) {}\nfor (let v of arr) {}")
	require.NoError(t, err)
	require.Len(t, prog.Body, 2)
	in := prog.Body[0].(*ast.ForInStatement)
	of := prog.Body[1].(*ast.ForInStatement)
	assert.Equal(t, ast.ForIn, in.Kind)
	assert.Equal(t, ast.ForOf, of.Kind)
}

func TestTemplateLiteralWithInterpolation(t *testing.T) {
	prog, err := ParseProgram("const s = `a${1 + 2}b${3}c`;")
	require.NoError(t, err)
	decl := prog.Body[0].(*ast.VariableDeclaration)
	tmpl, ok := decl.Declarations[0].Init.(*ast.TemplateLiteral)
	require.True(t, ok)
	require.Len(t, tmpl.Quasis, 3)
	require.Len(t, tmpl.Expressions, 2)
	assert.Equal(t, "a", tmpl.Quasis[0].Raw)
	assert.False(t, tmpl.Quasis[0].Tail)
	assert.Equal(t, "c", tmpl.Quasis[2].Raw)
	assert.True(t, tmpl.Quasis[2].Tail)
}

func TestTemplateLiteralWithObjectLiteralInterpolation(t *testing.T) {
	prog, err := ParseProgram("const s = `x${ {a: 1}.a }y`;")
	require.NoError(t, err)
	decl := prog.Body[0].(*ast.VariableDeclaration)
	tmpl, ok := decl.Declarations[0].Init.(*ast.TemplateLiteral)
	require.True(t, ok, "nested '{' in an interpolation must not be mistaken for the closing '}'")
	require.Len(t, tmpl.Expressions, 1)
	_, isMember := tmpl.Expressions[0].(*ast.MemberExpression)
	assert.True(t, isMember)
}

func TestClassWithConstructorAndMethod(t *testing.T) {
	src := `class Point {
		constructor(x, y) { this.x = x; this.y = y; }
		dist() { return this.x; }
		static origin() { return 0; }
	}`
	prog, err := ParseProgram(src)
	require.NoError(t, err)
	cls := prog.Body[0].(*ast.ClassDeclaration)
	require.Len(t, cls.Class.Members, 3)
	assert.Equal(t, ast.MethodConstructor, cls.Class.Members[0].Kind)
	assert.Equal(t, ast.MethodNormal, cls.Class.Members[1].Kind)
	assert.True(t, cls.Class.Members[2].Static)
}

func TestTryCatchFinally(t *testing.T) {
	src := "try { risky(); } catch (e) { handle(e); } finally { cleanup(); }"
	prog, err := ParseProgram(src)
	require.NoError(t, err)
	tryStmt := prog.Body[0].(*ast.TryStatement)
	require.NotNil(t, tryStmt.Catch)
	require.NotNil(t, tryStmt.Finally)
	assert.Equal(t, "e", tryStmt.Catch.Param)
}

func TestAsyncArrowAndAwait(t *testing.T) {
	src := "const f = async () => { await g(); };"
	prog, err := ParseProgram(src)
	require.NoError(t, err)
	decl := prog.Body[0].(*ast.VariableDeclaration)
	arrow, ok := decl.Declarations[0].Init.(*ast.ArrowFunctionExpression)
	require.True(t, ok)
	assert.True(t, arrow.Async)
}

func TestGeneratorYield(t *testing.T) {
	src := "function* gen() { yield 1; yield* inner(); }"
	prog, err := ParseProgram(src)
	require.NoError(t, err)
	fn := prog.Body[0].(*ast.FunctionDeclaration)
	assert.True(t, fn.Function.Generator)
	es1 := fn.Function.Body[0].(*ast.ExpressionStatement)
	y1 := es1.Expr.(*ast.YieldExpression)
	assert.False(t, y1.Delegate)
	es2 := fn.Function.Body[1].(*ast.ExpressionStatement)
	y2 := es2.Expr.(*ast.YieldExpression)
	assert.True(t, y2.Delegate)
}

func TestImportDeclarationBucketing(t *testing.T) {
	src := "import { a as b } from \"mod\";\nconst x = 1;"
	prog, err := ParseProgram(src)
	require.NoError(t, err)
	require.Len(t, prog.Imports, 1)
	assert.Equal(t, "mod", prog.Imports[0].Source)
	assert.Equal(t, "b", prog.Imports[0].Specifiers[0].Local)
	assert.Equal(t, "a", prog.Imports[0].Specifiers[0].Remote)
}

func TestInvalidAssignmentTargetFails(t *testing.T) {
	_, err := ParseProgram("1 = 2;")
	require.Error(t, err)
}

func TestMissingSemicolonViaASI(t *testing.T) {
	src := "let a = 1\nlet b = 2\n"
	prog, err := ParseProgram(src)
	require.NoError(t, err)
	assert.Len(t, prog.Body, 2)
}
