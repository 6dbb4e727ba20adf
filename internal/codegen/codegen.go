// Package codegen walks the parser's typed AST and emits bytecode into
// an internal/bytecode.Table, the way multjs's CodeGenerator walks its
// ASTNode tree (original_source/compiler/code_generator.h/.cpp,
// confirmed against spec.md §4.4's emission description since the
// headers themselves were filtered from the retrieval pack). Variable
// resolution and break/continue/label patching are delegated to
// internal/scope; error reporting goes through internal/diagnostics.
package codegen

import (
	"lotusjs/ast"
	"lotusjs/internal/bytecode"
	"lotusjs/internal/diagnostics"
	"lotusjs/internal/scope"
	"lotusjs/value"
)

// Generator compiles one module (or, recursively, one function literal
// nested inside it) into bytecode. A fresh Generator compiles exactly
// one top-level module; genFunctionBody swaps g.fn in and out to
// compile nested function literals against the same scope/jump
// managers and constant pool.
type Generator struct {
	diag   *diagnostics.Manager
	pool   *bytecode.ConstPool
	scopes *scope.Manager
	jumps  *scope.JumpManager

	module string
	fn     *bytecode.FunctionDef
	mod    *bytecode.ModuleDef // the module currently being compiled; export bookkeeping only applies when g.fn == &g.mod.FunctionDef

	// isArrow/needsOuterThis are parallel stacks, one entry per function
	// context currently being compiled (innermost last). isArrow records
	// whether ThisExpression should compile to GetThis or GetOuterThis;
	// needsOuterThis is set the first time an arrow body actually
	// resolves `this` outward, which (like a non-empty closure-var
	// table) forces the enclosing CLoadD placeholder to be rewritten to
	// Closure so the VM captures the defining frame.
	isArrow        []bool
	needsOuterThis []bool

	// breakables is the stack of currently-open break targets (innermost
	// last): a loop or switch pushes one on entry and pops it once its
	// body has been compiled, then patches every entry recorded against
	// it. continue always searches past any switch frames to the
	// nearest loop frame, matching JS's "continue always targets the
	// nearest enclosing loop, skipping switches" rule.
	breakables []*breakable

	// labelStack holds the labelCtx for every LabeledStatement currently
	// being compiled (innermost last); labeled break/continue search it
	// by name. pendingLabel is the label name directly wrapping the next
	// statement about to be compiled, consumed by the loop/switch (if
	// any) that statement turns out to be.
	labelStack   []*labelCtx
	pendingLabel string
}

// breakableKind distinguishes what a breakable frame's entries resolve
// against: a loop's own re-test/update PC, or (for a switch) nothing —
// switches have no continue target of their own.
type breakableKind int

const (
	breakableLoop breakableKind = iota
	breakableSwitch
)

type breakable struct {
	kind    breakableKind
	entries []scope.RepairEntry
}

type labelCtx struct {
	name    string
	entries []scope.RepairEntry
}

func NewGenerator(pool *bytecode.ConstPool, diag *diagnostics.Manager) *Generator {
	return &Generator{
		pool:   pool,
		diag:   diag,
		scopes: scope.NewManager(),
		jumps:  scope.NewJumpManager(),
	}
}

// CompileModule compiles program (the module's top-level statement
// list, as returned by the parser's ParseProgram) into a ModuleDef.
// Returns the partially-built ModuleDef even on error so the caller can
// still print diagnostics against it, with a non-nil error iff the
// diagnostics manager recorded at least one error during compilation.
func (g *Generator) CompileModule(name, source string, program []ast.Statement) (*bytecode.ModuleDef, error) {
	md := bytecode.NewModuleDef(name, source)
	g.module = name
	g.mod = md
	g.fn = &md.FunctionDef
	g.scopes.Reset()
	g.scopes.EnterScope(g.fn, g.fn, scope.Function)
	g.isArrow = append(g.isArrow, false)
	g.needsOuterThis = append(g.needsOuterThis, false)

	for _, stmt := range program {
		g.genStatement(stmt)
	}

	g.scopes.ExitScope()
	g.isArrow = g.isArrow[:len(g.isArrow)-1]
	g.needsOuterThis = g.needsOuterThis[:len(g.needsOuterThis)-1]

	if g.diag.HasErrors() {
		return md, errCompileFailed(name)
	}
	return md, nil
}

func errCompileFailed(name string) error {
	return &compileError{module: name}
}

type compileError struct{ module string }

func (e *compileError) Error() string { return "codegen: compilation failed for module " + e.module }

func (g *Generator) errorAt(n ast.Node, category diagnostics.Category, message string) {
	// Nodes don't carry line/column directly (only byte spans); the
	// generator reports against the module's start position when a
	// precise line isn't otherwise available. Callers that already have
	// a line/column (via bytecode.LineTable) should call errorf instead.
	g.diag.AddError(category, message, g.module, 0, 0)
}

func (g *Generator) errorf(line, column int, category diagnostics.Category, message string) {
	g.diag.AddError(category, message, g.module, line, column)
}

// constIndex interns v in the shared pool and returns its index.
func (g *Generator) constIndex(v value.Value) int {
	return g.pool.FindOrInsert(v)
}

// loadConst emits the shortest CLoad form for v.
func (g *Generator) loadConst(v value.Value) {
	g.fn.Code.EmitConstLoad(g.constIndex(v))
}

// genStatement dispatches one statement node into g.fn's code buffer.
func (g *Generator) genStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.BlockStatement:
		g.genBlock(s)
	case *ast.ExpressionStatement:
		g.genExpression(s.Expr)
		g.fn.Code.EmitOpcode(bytecode.Pop)
	case *ast.VariableDeclaration:
		g.genVariableDeclaration(s)
	case *ast.IfStatement:
		g.genIf(s)
	case *ast.LabeledStatement:
		g.genLabeled(s)
	case *ast.ForStatement:
		g.genFor(s)
	case *ast.ForInStatement:
		g.genForIn(s)
	case *ast.WhileStatement:
		g.genWhile(s)
	case *ast.DoWhileStatement:
		g.genDoWhile(s)
	case *ast.SwitchStatement:
		g.genSwitch(s)
	case *ast.ContinueStatement:
		g.genContinue(s)
	case *ast.BreakStatement:
		g.genBreak(s)
	case *ast.ReturnStatement:
		g.genReturn(s)
	case *ast.ThrowStatement:
		g.genExpression(s.Argument)
		g.fn.Code.EmitOpcode(bytecode.Throw)
	case *ast.TryStatement:
		g.genTry(s)
	case *ast.FunctionDeclaration:
		g.genFunctionDeclaration(s)
	case *ast.ClassDeclaration:
		g.genClassDeclaration(s)
	case *ast.ImportDeclaration:
		g.genImport(s)
	case *ast.ExportDeclaration:
		g.genExport(s)
	case *ast.TypeAnnotation:
		// parsed but non-semantic at runtime; nothing to emit.
	default:
		g.errorAt(stmt, diagnostics.CategoryGeneral, "codegen: unhandled statement node")
	}
}

func (g *Generator) genBlock(b *ast.BlockStatement) {
	g.scopes.EnterScope(g.fn, nil, scope.Block)
	for _, stmt := range b.Body {
		g.genStatement(stmt)
	}
	g.scopes.ExitScope()
}

func (g *Generator) genVariableDeclaration(decl *ast.VariableDeclaration) {
	var flags scope.VarFlags
	if decl.Kind == ast.DeclConst {
		flags = scope.VarConst
	}
	for _, d := range decl.Declarations {
		info, err := g.scopes.AllocateVar(d.Name, flags)
		if err != nil {
			g.errorAt(decl, diagnostics.CategorySemantic, err.Error())
			continue
		}
		if d.Init != nil {
			g.genExpression(d.Init)
		} else {
			g.fn.Code.EmitOpcode(bytecode.Undefined)
		}
		g.fn.Code.EmitVarStore(info.Index)
		if decl.Export && g.mod != nil && g.fn == &g.mod.FunctionDef {
			g.mod.ExportVars.AddExportVar(d.Name, info.Index)
		}
	}
}
