package codegen

import (
	"lotusjs/ast"
	"lotusjs/internal/bytecode"
	"lotusjs/internal/diagnostics"
	"lotusjs/internal/scope"
	"lotusjs/token"
	"lotusjs/value"
)

// genFunctionLiteral emits a forward CLoadD placeholder for fe's
// FunctionDef, compiles the body, and rewrites the placeholder to
// Closure if the body turned out to need a capture environment
// (spec.md §4.4's "Function emission").
func (g *Generator) genFunctionLiteral(fe *ast.FunctionExpression) {
	flags := functionFlags(fe.Generator, fe.Async, true)
	childFn := bytecode.NewFunctionDef(fe.Name, len(fe.Params), flags)
	idx := g.constIndex(value.FuncDefVal(childFn))
	placeholder := g.fn.Code.EmitConstLoadD(idx)

	g.compileFunctionBody(childFn, fe.Params, fe.Body, nil, false)

	if g.needsClosureRewrite(childFn) {
		g.fn.Code.RewriteOpcode(int(placeholder), bytecode.Closure)
	}
}

func (g *Generator) genArrowLiteral(fe *ast.ArrowFunctionExpression) {
	flags := functionFlags(false, fe.Async, false)
	childFn := bytecode.NewFunctionDef("", len(fe.Params), flags)
	idx := g.constIndex(value.FuncDefVal(childFn))
	placeholder := g.fn.Code.EmitConstLoadD(idx)

	g.compileFunctionBody(childFn, fe.Params, fe.Body, fe.ExprBody, true)

	if g.needsClosureRewrite(childFn) {
		g.fn.Code.RewriteOpcode(int(placeholder), bytecode.Closure)
	}
}

func functionFlags(isGenerator, isAsync, hasThis bool) bytecode.Flags {
	flags := bytecode.FlagNormal
	if isGenerator {
		flags |= bytecode.FlagGenerator
	}
	if isAsync {
		flags |= bytecode.FlagAsync
	}
	if hasThis {
		flags |= bytecode.FlagHasThis
	}
	return flags
}

// needsClosureRewrite reports whether childFn, having just finished
// compiling, must be instantiated via Closure rather than left as a
// constant FunctionDef: either it captured an outer variable, or (for an
// arrow) its body resolved `this` from an enclosing frame.
func (g *Generator) needsClosureRewrite(childFn *bytecode.FunctionDef) bool {
	if !childFn.Closure.Empty() {
		return true
	}
	return g.needsOuterThis[len(g.needsOuterThis)-1]
}

// compileFunctionBody swaps g.fn to childFn, opens its scope, allocates
// parameter slots (with default-value initializers), compiles the body
// (a block, or — for a concise arrow — a single implicit-return
// expression), and restores the enclosing function context.
func (g *Generator) compileFunctionBody(childFn *bytecode.FunctionDef, params []ast.Param, body []ast.Statement, exprBody ast.Expression, isArrow bool) {
	outerFn := g.fn
	scopeType := scope.Function
	if isArrow {
		scopeType = scope.ArrowFunction
	}
	g.scopes.EnterScope(outerFn, childFn, scopeType)
	g.fn = childFn
	g.isArrow = append(g.isArrow, isArrow)
	g.needsOuterThis = append(g.needsOuterThis, false)

	g.genParams(params)

	if exprBody != nil {
		g.genExpression(exprBody)
		g.fn.Code.EmitOpcode(bytecode.Return)
	} else {
		for _, stmt := range body {
			g.genStatement(stmt)
		}
		g.fn.Code.EmitOpcode(bytecode.Undefined)
		g.fn.Code.EmitOpcode(bytecode.Return)
	}

	g.isArrow = g.isArrow[:len(g.isArrow)-1]
	g.needsOuterThis = g.needsOuterThis[:len(g.needsOuterThis)-1]
	g.scopes.ExitScope()
	g.fn = outerFn
}

// genParams allocates each parameter's local slot in declaration order
// (matching the VM's call convention, which writes arguments into the
// first ParamCount frame slots) and, for a parameter with a default,
// emits `param === undefined ? default : param` over it in place.
func (g *Generator) genParams(params []ast.Param) {
	for _, p := range params {
		info, err := g.scopes.AllocateVar(p.Name, scope.VarNone)
		if err != nil {
			g.errorAt(nil, diagnostics.CategorySemantic, err.Error())
			continue
		}
		if p.Default == nil {
			continue
		}
		g.fn.Code.EmitVarLoad(info.Index)
		g.fn.Code.EmitOpcode(bytecode.Undefined)
		g.fn.Code.EmitOpcode(bytecode.StrictEq)
		skip := g.fn.Code.EmitIfEq()
		g.genExpression(p.Default)
		g.fn.Code.EmitVarStore(info.Index)
		g.fn.Code.RepairPC(int(skip), g.fn.Code.Size())
	}
}

func (g *Generator) genFunctionDeclaration(decl *ast.FunctionDeclaration) {
	fe := decl.Function
	info, err := g.scopes.AllocateVar(fe.Name, scope.VarNone)
	if err != nil {
		g.errorAt(decl, diagnostics.CategorySemantic, err.Error())
		return
	}
	g.genFunctionLiteral(fe)
	g.fn.Code.EmitVarStore(info.Index)
	if decl.Export && g.mod != nil && g.fn == &g.mod.FunctionDef {
		if decl.Default {
			g.mod.ExportVars.AddExportVar("default", info.Index)
		} else {
			g.mod.ExportVars.AddExportVar(fe.Name, info.Index)
		}
	}
}

// genClassLiteral lowers a class to a call of the runtime's
// `__defineClass(ctor, superclass)` helper, which wires up ctor's
// prototype object (and its prototype chain to superclass.prototype)
// and hands the same ctor back — mirroring how this generator already
// lowers for-in/for-of and regex literals to runtime-helper calls where
// no dedicated opcode exists.
//
// Members split three ways (spec.md §4.2): an instance field's
// initializer runs once per `new`, not once per class, so it can't be
// attached as a prototype property the way a method can — instead its
// `this.key = <init>` assignment is synthesized as a statement and
// prepended to the constructor's own body, ahead of any user-written
// statements, so every instance gets its own evaluation (and its own
// copy of a mutable initializer like `[]`). A static member — field or
// method — belongs to the class itself, so it's written directly onto
// the returned ctor object. An instance method still attaches to
// ctor.prototype with an ordinary PropertyLoad+PropertyStore pair.
func (g *Generator) genClassLiteral(c *ast.ClassExpression) {
	var ctorFn *ast.FunctionExpression
	var instanceFields []ast.ClassMember
	var protoMethods []ast.ClassMember
	var staticMembers []ast.ClassMember
	for _, m := range c.Members {
		switch {
		case m.Kind == ast.MethodConstructor:
			ctorFn = m.Function
		case m.Static:
			staticMembers = append(staticMembers, m)
		case m.Kind == ast.FieldMember:
			instanceFields = append(instanceFields, m)
		default:
			protoMethods = append(protoMethods, m)
		}
	}
	if ctorFn == nil {
		ctorFn = &ast.FunctionExpression{Name: c.Name}
	}
	if len(instanceFields) > 0 {
		prologue := make([]ast.Statement, len(instanceFields))
		for i, m := range instanceFields {
			prologue[i] = fieldInitStatement(m)
		}
		ctorFn.Body = append(prologue, ctorFn.Body...)
	}

	g.fn.Code.EmitOpcode(bytecode.Undefined) // this
	nameIdx := g.constIndex(value.Str("__defineClass"))
	g.fn.Code.EmitGetGlobal(nameIdx) // callee
	g.genFunctionLiteral(ctorFn)     // arg1: ctor
	if c.Super != nil {
		g.genExpression(c.Super) // arg2: superclass
	} else {
		g.fn.Code.EmitOpcode(bytecode.Undefined)
	}
	g.loadConst(value.Int(2))
	g.fn.Code.EmitOpcode(bytecode.FunctionCall)

	protoIdx := g.constIndex(value.Str("prototype"))
	for _, m := range protoMethods {
		g.fn.Code.EmitOpcode(bytecode.Dup)
		g.fn.Code.EmitPropertyLoad(protoIdx)
		g.fn.Code.EmitOpcode(bytecode.Dup)
		g.genFunctionLiteral(m.Function)
		name := propertyKeyName(m.Key)
		idx := g.constIndex(value.Str(name))
		g.fn.Code.EmitPropertyStore(idx)
		g.fn.Code.EmitOpcode(bytecode.Pop)
	}

	for _, m := range staticMembers {
		g.fn.Code.EmitOpcode(bytecode.Dup) // ctor itself, not its prototype
		if m.Kind == ast.FieldMember {
			if m.FieldValue != nil {
				g.genExpression(m.FieldValue)
			} else {
				g.fn.Code.EmitOpcode(bytecode.Undefined)
			}
		} else {
			g.genFunctionLiteral(m.Function)
		}
		name := propertyKeyName(m.Key)
		idx := g.constIndex(value.Str(name))
		g.fn.Code.EmitPropertyStore(idx)
	}
}

// fieldInitStatement synthesizes `this.key = value;` (or `this.key =
// undefined;` for a field with no initializer) for splicing into a
// constructor's prologue.
func fieldInitStatement(m ast.ClassMember) ast.Statement {
	val := m.FieldValue
	if val == nil {
		val = &ast.UndefinedLiteral{}
	}
	property := m.Key
	if !m.Computed {
		// storeLValue's non-computed path requires an *ast.Identifier
		// Property; a field named by a string/number literal key
		// (Key is *ast.StringLiteral in that case) needs normalizing
		// to match, the same name propertyKeyName already extracts
		// for static-member and prototype-method attachment below.
		property = &ast.Identifier{Name: propertyKeyName(m.Key)}
	}
	target := &ast.MemberExpression{
		Object:   &ast.ThisExpression{},
		Property: property,
		Computed: m.Computed,
	}
	assign := &ast.AssignmentExpression{
		Operator: token.Assign,
		Target:   target,
		Value:    val,
	}
	return &ast.ExpressionStatement{Expr: assign}
}

func (g *Generator) genClassDeclaration(decl *ast.ClassDeclaration) {
	info, err := g.scopes.AllocateVar(decl.Class.Name, scope.VarNone)
	if err != nil {
		g.errorAt(decl, diagnostics.CategorySemantic, err.Error())
		return
	}
	g.genClassLiteral(decl.Class)
	g.fn.Code.EmitVarStore(info.Index)
	if decl.Export && g.mod != nil && g.fn == &g.mod.FunctionDef {
		if decl.Default {
			g.mod.ExportVars.AddExportVar("default", info.Index)
		} else {
			g.mod.ExportVars.AddExportVar(decl.Class.Name, info.Index)
		}
	}
}
