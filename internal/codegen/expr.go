package codegen

import (
	"lotusjs/ast"
	"lotusjs/internal/bytecode"
	"lotusjs/internal/diagnostics"
	"lotusjs/internal/scope"
	"lotusjs/token"
	"lotusjs/value"
)

// genExpression emits code that leaves exactly one value on the operand
// stack: expr's result, evaluated post-order (operands before operators).
func (g *Generator) genExpression(expr ast.Expression) {
	switch e := expr.(type) {
	case *ast.UndefinedLiteral:
		g.fn.Code.EmitOpcode(bytecode.Undefined)
	case *ast.NullLiteral:
		g.fn.Code.EmitOpcode(bytecode.LdNull)
	case *ast.BoolLiteral:
		g.loadConst(value.Bool(e.Value))
	case *ast.IntLiteral:
		g.loadConst(value.Int(e.Value))
	case *ast.FloatLiteral:
		g.loadConst(value.Float(e.Value))
	case *ast.BigIntLiteral:
		g.loadConst(value.BigIntVal(e.Text))
	case *ast.StringLiteral:
		g.loadConst(value.Str(e.Value))
	case *ast.RegexLiteral:
		g.genRegexLiteral(e)
	case *ast.Identifier:
		g.genIdentifierLoad(e.Name)
	case *ast.ThisExpression:
		g.genThis()
	case *ast.SuperExpression:
		g.fn.Code.EmitOpcode(bytecode.GetSuper)
	case *ast.ArrayExpression:
		g.genArrayLiteral(e)
	case *ast.ObjectExpression:
		g.genObjectLiteral(e)
	case *ast.FunctionExpression:
		g.genFunctionLiteral(e)
	case *ast.ArrowFunctionExpression:
		g.genArrowLiteral(e)
	case *ast.ClassExpression:
		g.genClassLiteral(e)
	case *ast.MemberExpression:
		g.genMemberLoad(e)
	case *ast.CallExpression:
		g.genCall(e)
	case *ast.NewExpression:
		g.genNew(e)
	case *ast.UnaryExpression:
		g.genUnary(e)
	case *ast.UpdateExpression:
		g.genUpdate(e)
	case *ast.BinaryExpression:
		g.genBinary(e)
	case *ast.LogicalExpression:
		g.genLogical(e)
	case *ast.AssignmentExpression:
		g.genAssignment(e)
	case *ast.ConditionalExpression:
		g.genConditional(e)
	case *ast.SequenceExpression:
		g.genSequence(e)
	case *ast.YieldExpression:
		g.genYield(e)
	case *ast.AwaitExpression:
		g.genExpression(e.Argument)
		g.fn.Code.EmitOpcode(bytecode.Await)
	case *ast.ImportExpression:
		g.genExpression(e.Source)
		g.fn.Code.EmitOpcode(bytecode.GetModuleAsync)
	case *ast.TemplateLiteral:
		g.genTemplateLiteral(e)
	case *ast.TaggedTemplateExpression:
		g.genTaggedTemplate(e)
	default:
		g.errorAt(expr, diagnostics.CategoryGeneral, "codegen: unhandled expression node")
		g.fn.Code.EmitOpcode(bytecode.Undefined)
	}
}

func (g *Generator) genThis() {
	if g.isArrow[len(g.isArrow)-1] {
		g.needsOuterThis[len(g.needsOuterThis)-1] = true
		g.fn.Code.EmitOpcode(bytecode.GetOuterThis)
		return
	}
	g.fn.Code.EmitOpcode(bytecode.GetThis)
}

// genRegexLiteral lowers a regex literal to a call of the global RegExp
// constructor, since the opcode table has no dedicated literal-construction
// opcode for it (spec.md §4.5's table is "representative, not exhaustive").
func (g *Generator) genRegexLiteral(e *ast.RegexLiteral) {
	g.fn.Code.EmitOpcode(bytecode.Undefined) // this
	nameIdx := g.constIndex(value.Str("RegExp"))
	g.fn.Code.EmitGetGlobal(nameIdx) // callee
	g.loadConst(value.Str(e.Pattern))
	g.loadConst(value.Str(e.Flags))
	g.loadConst(value.Int(2))
	g.fn.Code.EmitOpcode(bytecode.New)
}

func (g *Generator) genIdentifierLoad(name string) {
	info, ok := g.scopes.FindVar(g.fn, name)
	if ok {
		g.fn.Code.EmitVarLoad(info.Index)
		return
	}
	idx := g.constIndex(value.Str(name))
	g.fn.Code.EmitGetGlobal(idx)
}

func (g *Generator) genIdentifierStore(name string) {
	info, ok := g.scopes.FindVar(g.fn, name)
	if ok {
		if info.Flags.Has(scope.VarConst) {
			g.errorAt(nil, diagnostics.CategorySemantic, "assignment to constant variable "+name)
		}
		g.fn.Code.EmitVarStore(info.Index)
		return
	}
	idx := g.constIndex(value.Str(name))
	g.fn.Code.EmitSetGlobal(idx)
}

// genMemberLoad emits `object` then either PropertyLoad (dotted) or
// `property_expr; IndexedLoad` (computed), per spec.md §4.4. Optional
// chaining short-circuits to undefined via a null-check jump.
func (g *Generator) genMemberLoad(m *ast.MemberExpression) {
	g.genExpression(m.Object)
	var skipPc bytecode.Pc = bytecode.InvalidPc
	if m.Optional {
		g.fn.Code.EmitOpcode(bytecode.Dup)
		g.fn.Code.EmitOpcode(bytecode.LdNull)
		g.fn.Code.EmitOpcode(bytecode.Eq)
		skipPc = g.fn.Code.EmitIfEq()
		undefPc := g.fn.Code.EmitGoto()
		g.fn.Code.RepairPC(int(skipPc), g.fn.Code.Size())
		g.loadMemberProperty(m)
		endPc := g.fn.Code.EmitGoto()
		g.fn.Code.RepairPC(int(undefPc), g.fn.Code.Size())
		g.fn.Code.EmitOpcode(bytecode.Pop)
		g.fn.Code.EmitOpcode(bytecode.Undefined)
		g.fn.Code.RepairPC(int(endPc), g.fn.Code.Size())
		return
	}
	g.loadMemberProperty(m)
}

func (g *Generator) loadMemberProperty(m *ast.MemberExpression) {
	if m.Computed {
		g.genExpression(m.Property)
		g.fn.Code.EmitOpcode(bytecode.IndexedLoad)
		return
	}
	name := m.Property.(*ast.Identifier).Name
	idx := g.constIndex(value.Str(name))
	g.fn.Code.EmitPropertyLoad(idx)
}

func (g *Generator) genArrayLiteral(a *ast.ArrayExpression) {
	count := 0
	for _, el := range a.Elements {
		switch elem := el.(type) {
		case nil:
			g.fn.Code.EmitOpcode(bytecode.Undefined)
		case *ast.SpreadElement:
			// Spread elements are pushed as their evaluated value with no
			// marker (no dedicated spread opcode exists in the table), and
			// NewArr stores every pushed value as one element, so the
			// spread operand becomes a single element; it is not
			// flattened.
			g.genExpression(elem.Argument)
		default:
			g.genExpression(elem)
		}
		count++
	}
	g.loadConst(value.Int(int64(count)))
	g.fn.Code.EmitOpcode(bytecode.NewArr)
}

func (g *Generator) genObjectLiteral(o *ast.ObjectExpression) {
	count := 0
	for _, prop := range o.Properties {
		if prop.Kind == ast.PropSpread {
			g.genExpression(prop.Value)
			g.fn.Code.EmitOpcode(bytecode.Undefined) // no matching value; NewObj merges a pair whose second slot is Undefined as a spread source
			count++
			continue
		}
		if prop.Computed {
			g.genExpression(prop.Key)
		} else {
			name := propertyKeyName(prop.Key)
			g.loadConst(value.Str(name))
		}
		g.genExpression(prop.Value)
		count++
	}
	g.loadConst(value.Int(int64(count)))
	g.fn.Code.EmitOpcode(bytecode.NewObj)
}

func propertyKeyName(key ast.Expression) string {
	switch k := key.(type) {
	case *ast.Identifier:
		return k.Name
	case *ast.StringLiteral:
		return k.Value
	default:
		return ""
	}
}

// genCalleeAndThis pushes the this-value and callee, the first two parts
// of the fixed order this engine's VM expects for a call: [this, callee,
// arg1..argN, argc]. Unlike the
// spec prose's "args, argc, callee, this" ordering, gathering this and
// callee first lets a member-expression callee's Dump'd object serve
// directly as the this-value without a second stack shuffle; the VM
// (this package's sibling) is written to match this exact order.
func (g *Generator) genCalleeAndThis(callee ast.Expression) {
	if m, ok := callee.(*ast.MemberExpression); ok && !m.Optional {
		g.genExpression(m.Object)
		g.fn.Code.EmitOpcode(bytecode.Dump)
		g.loadMemberProperty(m)
		return
	}
	g.fn.Code.EmitOpcode(bytecode.Undefined)
	g.genExpression(callee)
}

func (g *Generator) genArgs(args []ast.Expression) int {
	count := 0
	for _, a := range args {
		if sp, ok := a.(*ast.SpreadElement); ok {
			g.genExpression(sp.Argument)
		} else {
			g.genExpression(a)
		}
		count++
	}
	return count
}

func (g *Generator) genCall(c *ast.CallExpression) {
	g.genCalleeAndThis(c.Callee)
	count := g.genArgs(c.Args)
	g.loadConst(value.Int(int64(count)))
	g.fn.Code.EmitOpcode(bytecode.FunctionCall)
}

func (g *Generator) genNew(n *ast.NewExpression) {
	g.fn.Code.EmitOpcode(bytecode.Undefined)
	g.genExpression(n.Callee)
	count := g.genArgs(n.Args)
	g.loadConst(value.Int(int64(count)))
	g.fn.Code.EmitOpcode(bytecode.New)
}

var unaryOpcodes = map[token.Kind]bytecode.Opcode{
	token.Minus: bytecode.Neg,
	token.Bang:  bytecode.LNot,
	token.Tilde: bytecode.BitNot,
}

func (g *Generator) genUnary(u *ast.UnaryExpression) {
	switch u.Operator {
	case token.Plus:
		g.genExpression(u.Argument) // unary plus is a numeric-coercion no-op at this layer
		return
	case token.KwTypeof:
		g.genExpression(u.Argument)
		g.fn.Code.EmitOpcode(bytecode.Typeof)
		return
	case token.KwVoid:
		g.genExpression(u.Argument)
		g.fn.Code.EmitOpcode(bytecode.Pop)
		g.fn.Code.EmitOpcode(bytecode.Undefined)
		return
	case token.KwDelete:
		if m, ok := u.Argument.(*ast.MemberExpression); ok {
			g.genExpression(m.Object)
			if m.Computed {
				g.genExpression(m.Property)
			} else {
				name := m.Property.(*ast.Identifier).Name
				g.loadConst(value.Str(name))
			}
			g.fn.Code.EmitOpcode(bytecode.Delete)
			return
		}
		g.loadConst(value.Bool(true)) // deleting a non-member reference is a no-op that yields true
		return
	}
	if op, ok := unaryOpcodes[u.Operator]; ok {
		g.genExpression(u.Argument)
		g.fn.Code.EmitOpcode(op)
		return
	}
	g.errorAt(u, diagnostics.CategoryGeneral, "codegen: unhandled unary operator")
}

// genUpdate lowers `++`/`--` to a load-modify-store-(and-keep-old-value-
// for-postfix) sequence, since the opcode table's Inc/Dec operate on the
// top-of-stack value rather than an lvalue directly. For a member target,
// the object (and, for computed access, the key) expression is evaluated
// twice — once to load, once to store — rather than duplicated on the
// stack; this assumes those sub-expressions are side-effect-free, which
// holds for the common `obj.prop++`/`arr[i]++` cases this engine targets.
func (g *Generator) genUpdate(u *ast.UpdateExpression) {
	op := bytecode.Inc
	if u.Operator == token.MinusMinus {
		op = bytecode.Dec
	}
	g.genExpression(u.Argument)
	if u.Prefix {
		g.fn.Code.EmitOpcode(op)
		g.fn.Code.EmitOpcode(bytecode.Dup)
		g.storeLValue(u.Argument)
		return
	}
	g.fn.Code.EmitOpcode(bytecode.Dup)
	g.fn.Code.EmitOpcode(op)
	g.storeLValue(u.Argument)
}

var binaryOpcodes = map[token.Kind]bytecode.Opcode{
	token.Plus: bytecode.Add, token.Minus: bytecode.Sub,
	token.Star: bytecode.Mul, token.Slash: bytecode.Div,
	token.Percent: bytecode.Mod, token.StarStar: bytecode.Pow,
	token.Eq: bytecode.Eq, token.NotEq: bytecode.Ne,
	token.Lt: bytecode.Lt, token.Le: bytecode.Le,
	token.Gt: bytecode.Gt, token.Ge: bytecode.Ge,
	token.StrictEq: bytecode.StrictEq, token.StrictNotEq: bytecode.StrictNe,
	token.Amp: bytecode.BitAnd, token.Pipe: bytecode.BitOr, token.Caret: bytecode.BitXor,
	token.Shl: bytecode.Shl, token.Shr: bytecode.Shr, token.UShr: bytecode.UShr,
	token.KwInstanceof: bytecode.InstanceOf, token.KwIn: bytecode.HasProperty,
}

func (g *Generator) genBinary(b *ast.BinaryExpression) {
	g.genExpression(b.Left)
	g.genExpression(b.Right)
	if op, ok := binaryOpcodes[b.Operator]; ok {
		g.fn.Code.EmitOpcode(op)
		return
	}
	g.errorAt(b, diagnostics.CategoryGeneral, "codegen: unhandled binary operator")
}

// genLogical short-circuits `&&`/`||`/`??` via a conditional jump that
// preserves the already-evaluated operand's value on the stack.
func (g *Generator) genLogical(l *ast.LogicalExpression) {
	g.genExpression(l.Left)
	switch l.Operator {
	case token.AndAnd:
		g.fn.Code.EmitOpcode(bytecode.Dup)
		skip := g.fn.Code.EmitIfEq()
		g.fn.Code.EmitOpcode(bytecode.Pop)
		g.genExpression(l.Right)
		g.fn.Code.RepairPC(int(skip), g.fn.Code.Size())
	case token.OrOr:
		g.fn.Code.EmitOpcode(bytecode.Dup)
		g.fn.Code.EmitOpcode(bytecode.LNot)
		skip := g.fn.Code.EmitIfEq()
		g.fn.Code.EmitOpcode(bytecode.Pop)
		g.genExpression(l.Right)
		g.fn.Code.RepairPC(int(skip), g.fn.Code.Size())
	case token.QuestionQuestion:
		g.fn.Code.EmitOpcode(bytecode.Dup)
		g.fn.Code.EmitOpcode(bytecode.LdNull)
		g.fn.Code.EmitOpcode(bytecode.Eq) // loose: true for both null and undefined
		notNullish := g.fn.Code.EmitIfEq()
		g.fn.Code.EmitOpcode(bytecode.Pop)
		g.genExpression(l.Right)
		g.fn.Code.RepairPC(int(notNullish), g.fn.Code.Size())
	default:
		g.errorAt(l, diagnostics.CategoryGeneral, "codegen: unhandled logical operator")
	}
}

var compoundBinaryOp = map[token.Kind]bytecode.Opcode{
	token.PlusAssign: bytecode.Add, token.MinusAssign: bytecode.Sub,
	token.StarAssign: bytecode.Mul, token.SlashAssign: bytecode.Div,
	token.PercentAssign: bytecode.Mod, token.StarStarAssign: bytecode.Pow,
	token.ShlAssign: bytecode.Shl, token.ShrAssign: bytecode.Shr, token.UShrAssign: bytecode.UShr,
	token.AndAssign: bytecode.BitAnd, token.OrAssign: bytecode.BitOr, token.XorAssign: bytecode.BitXor,
}

func (g *Generator) genAssignment(a *ast.AssignmentExpression) {
	if a.Operator == token.Assign {
		g.genExpression(a.Value)
		g.fn.Code.EmitOpcode(bytecode.Dup)
		g.storeLValue(a.Target)
		return
	}
	if op, ok := compoundBinaryOp[a.Operator]; ok {
		g.genCompoundAssign(a, op)
		return
	}
	switch a.Operator {
	case token.AndAndAssign:
		g.genLogicalAssign(a, token.AndAnd)
	case token.OrOrAssign:
		g.genLogicalAssign(a, token.OrOr)
	case token.QuestionQuestionAssign:
		g.genLogicalAssign(a, token.QuestionQuestion)
	default:
		g.errorAt(a, diagnostics.CategoryGeneral, "codegen: unhandled assignment operator")
	}
}

// genCompoundAssign emits the load-modify-store sequence `store_lvalue`
// needs for `x += y` and friends (spec.md §4.4). As in genUpdate, a
// member target's object/key sub-expressions are evaluated twice rather
// than duplicated on the stack.
func (g *Generator) genCompoundAssign(a *ast.AssignmentExpression, op bytecode.Opcode) {
	g.genExpression(a.Target)
	g.genExpression(a.Value)
	g.fn.Code.EmitOpcode(op)
	g.fn.Code.EmitOpcode(bytecode.Dup)
	g.storeLValue(a.Target)
}

// genLogicalAssign lowers `&&=`/`||=`/`??=` by re-running the logical
// short-circuit over (target, value) and always storing the result back.
// This stores even on the branch where the original value already won
// (a harmless redundant write) rather than conditionally skipping the
// store — simpler to emit and behaviorally equivalent for the expression's
// value and for everything but a target with a side-effecting setter.
func (g *Generator) genLogicalAssign(a *ast.AssignmentExpression, variant token.Kind) {
	lhs := &ast.LogicalExpression{BaseExpr: a.BaseExpr, Operator: variant, Left: a.Target, Right: a.Value}
	g.genExpression(lhs)
	g.fn.Code.EmitOpcode(bytecode.Dup)
	g.storeLValue(a.Target)
}

// storeLValue emits the matching store opcode for target, assuming the
// value to store already sits on top of the stack (spec.md §4.4's
// store_lvalue).
func (g *Generator) storeLValue(target ast.Expression) {
	switch t := target.(type) {
	case *ast.Identifier:
		g.genIdentifierStore(t.Name)
	case *ast.MemberExpression:
		g.genExpression(t.Object)
		g.fn.Code.EmitOpcode(bytecode.Swap)
		if t.Computed {
			g.genExpression(t.Property)
			g.fn.Code.EmitOpcode(bytecode.Swap)
			g.fn.Code.EmitOpcode(bytecode.IndexedStore)
			return
		}
		name := t.Property.(*ast.Identifier).Name
		idx := g.constIndex(value.Str(name))
		g.fn.Code.EmitPropertyStore(idx)
	default:
		g.errorAt(target, diagnostics.CategorySemantic, "codegen: invalid assignment target")
	}
}

func (g *Generator) genConditional(c *ast.ConditionalExpression) {
	g.genExpression(c.Test)
	elsePc := g.fn.Code.EmitIfEq()
	g.genExpression(c.Consequent)
	endPc := g.fn.Code.EmitGoto()
	g.fn.Code.RepairPC(int(elsePc), g.fn.Code.Size())
	g.genExpression(c.Alternate)
	g.fn.Code.RepairPC(int(endPc), g.fn.Code.Size())
}

func (g *Generator) genSequence(s *ast.SequenceExpression) {
	for i, e := range s.Expressions {
		g.genExpression(e)
		if i != len(s.Expressions)-1 {
			g.fn.Code.EmitOpcode(bytecode.Pop)
		}
	}
}

func (g *Generator) genYield(y *ast.YieldExpression) {
	if y.Argument != nil {
		g.genExpression(y.Argument)
	} else {
		g.fn.Code.EmitOpcode(bytecode.Undefined)
	}
	if y.Delegate {
		g.fn.Code.EmitOpcode(bytecode.YieldDelegate)
		return
	}
	g.fn.Code.EmitOpcode(bytecode.Yield)
}

// genTemplateLiteral emits the first quasi, then ToString+Add-folds each
// interpolated expression and following quasi in turn (spec.md §4.4:
// "Template literals emit ToString on the first fragment then chained
// Add").
func (g *Generator) genTemplateLiteral(t *ast.TemplateLiteral) {
	if len(t.Quasis) == 0 {
		g.loadConst(value.Str(""))
		return
	}
	g.loadConst(value.Str(t.Quasis[0].Cooked))
	g.fn.Code.EmitOpcode(bytecode.ToString)
	for i, expr := range t.Expressions {
		g.genExpression(expr)
		g.fn.Code.EmitOpcode(bytecode.ToString)
		g.fn.Code.EmitOpcode(bytecode.Add)
		if i+1 < len(t.Quasis) {
			g.loadConst(value.Str(t.Quasis[i+1].Cooked))
			g.fn.Code.EmitOpcode(bytecode.Add)
		}
	}
}

func (g *Generator) genTaggedTemplate(tt *ast.TaggedTemplateExpression) {
	g.genCalleeAndThis(tt.Tag)
	count := 0
	for _, q := range tt.Template.Quasis {
		g.loadConst(value.Str(q.Cooked))
		count++
	}
	g.loadConst(value.Int(int64(count)))
	g.fn.Code.EmitOpcode(bytecode.NewArr)
	count = 1
	for _, expr := range tt.Template.Expressions {
		g.genExpression(expr)
		count++
	}
	g.loadConst(value.Int(int64(count)))
	g.fn.Code.EmitOpcode(bytecode.FunctionCall)
}
