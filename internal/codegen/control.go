package codegen

import (
	"lotusjs/ast"
	"lotusjs/internal/bytecode"
	"lotusjs/internal/diagnostics"
	"lotusjs/internal/scope"
	"lotusjs/value"
)

// genIf emits `test; IfEq patch; then-block; Goto patch; [else-block;]`
// with both patches repaired at block ends (spec.md §4.4).
func (g *Generator) genIf(s *ast.IfStatement) {
	g.genExpression(s.Test)
	elsePc := g.fn.Code.EmitIfEq()
	g.scopes.EnterScope(g.fn, nil, scope.If)
	g.genStatement(s.Consequent)
	g.scopes.ExitScope()
	if s.Alternate == nil {
		g.fn.Code.RepairPC(int(elsePc), g.fn.Code.Size())
		return
	}
	endPc := g.fn.Code.EmitGoto()
	g.fn.Code.RepairPC(int(elsePc), g.fn.Code.Size())
	typ := scope.Else
	if _, ok := s.Alternate.(*ast.IfStatement); ok {
		typ = scope.ElseIf
	}
	g.scopes.EnterScope(g.fn, nil, typ)
	g.genStatement(s.Alternate)
	g.scopes.ExitScope()
	g.fn.Code.RepairPC(int(endPc), g.fn.Code.Size())
}

func (g *Generator) genLabeled(s *ast.LabeledStatement) {
	lc := &labelCtx{name: s.Label}
	g.labelStack = append(g.labelStack, lc)
	prevPending := g.pendingLabel
	g.pendingLabel = s.Label

	g.genStatement(s.Body)

	g.pendingLabel = prevPending
	g.labelStack = g.labelStack[:len(g.labelStack)-1]

	// Any entries the loop/switch this label wrapped didn't already
	// consume (because s.Body wasn't a loop/switch at all — e.g. `break
	// label;` out of a plain labeled block) target this statement's end.
	end := g.fn.Code.Size()
	for _, e := range lc.entries {
		g.fn.Code.RepairPC(e.RepairPC, end)
	}
}

// consumePendingLabel returns and clears the label directly wrapping the
// statement currently being compiled, if any.
func (g *Generator) consumePendingLabel() string {
	l := g.pendingLabel
	g.pendingLabel = ""
	return l
}

func (g *Generator) findLabel(name string) *labelCtx {
	for i := len(g.labelStack) - 1; i >= 0; i-- {
		if g.labelStack[i].name == name {
			return g.labelStack[i]
		}
	}
	return nil
}

func (g *Generator) pushBreakable(kind breakableKind) *breakable {
	b := &breakable{kind: kind}
	g.breakables = append(g.breakables, b)
	return b
}

func (g *Generator) popBreakable() {
	g.breakables = g.breakables[:len(g.breakables)-1]
}

// patchBreakable repairs b's own entries, folding in any entries a
// matching label recorded against label (the label directly wrapping
// this construct, if any — see genLabeled/consumePendingLabel).
func (g *Generator) patchBreakable(b *breakable, label string, endPC, reloopPC int) {
	entries := b.entries
	if label != "" {
		if lc := g.findLabel(label); lc != nil {
			entries = append(entries, lc.entries...)
			lc.entries = nil
		}
	}
	for _, e := range entries {
		switch e.Kind {
		case scope.RepairBreak:
			g.fn.Code.RepairPC(e.RepairPC, endPC)
		case scope.RepairContinue:
			g.fn.Code.RepairPC(e.RepairPC, reloopPC)
		}
	}
}

// crossesFinally reports whether the scope path from here out to (but
// not including) a scope of one of stopTypes passes through a
// try-finally or catch-finally scope — the signal for whether a
// break/continue/return must emit the Finally* variant of its jump so
// the VM runs intervening finally blocks first (spec.md §4.4).
func (g *Generator) crossesFinally(stopTypes []scope.Type) bool {
	return g.scopes.IsInTypeScope([]scope.Type{scope.TryFinally, scope.CatchFinally}, stopTypes)
}

var switchStopTypes = []scope.Type{scope.Switch}

func (g *Generator) genBreak(s *ast.BreakStatement) {
	if s.Label != "" {
		g.genLabeledJump(s.Label, scope.RepairBreak)
		return
	}
	if len(g.breakables) == 0 {
		g.errorAt(s, diagnostics.CategorySemantic, "break outside loop or switch")
		return
	}
	target := g.breakables[len(g.breakables)-1]
	stop := switchStopTypes
	if target.kind == breakableLoop {
		stop = []scope.Type{scope.While, scope.For}
	}
	pc := g.emitBreakOrContinueGoto(g.crossesFinally(stop))
	target.entries = append(target.entries, scope.RepairEntry{Kind: scope.RepairBreak, RepairPC: int(pc)})
}

func (g *Generator) genContinue(s *ast.ContinueStatement) {
	if s.Label != "" {
		g.genLabeledJump(s.Label, scope.RepairContinue)
		return
	}
	for i := len(g.breakables) - 1; i >= 0; i-- {
		if g.breakables[i].kind != breakableLoop {
			continue
		}
		pc := g.emitBreakOrContinueGoto(g.crossesFinally([]scope.Type{scope.While, scope.For}))
		g.breakables[i].entries = append(g.breakables[i].entries, scope.RepairEntry{Kind: scope.RepairContinue, RepairPC: int(pc)})
		return
	}
	g.errorAt(s, diagnostics.CategorySemantic, "continue outside loop")
}

// genLabeledJump emits a labeled break/continue's jump and records it
// against that label's context, to be patched once the labeled
// construct finishes compiling (genLabeled, or the loop/switch it wraps).
func (g *Generator) genLabeledJump(label string, kind scope.RepairKind) {
	lc := g.findLabel(label)
	if lc == nil {
		g.errorAt(nil, diagnostics.CategorySemantic, "undefined label "+label)
		return
	}
	pc := g.emitBreakOrContinueGoto(g.crossesFinally([]scope.Type{scope.Function, scope.ArrowFunction}))
	lc.entries = append(lc.entries, scope.RepairEntry{Kind: kind, RepairPC: int(pc)})
}

func (g *Generator) emitBreakOrContinueGoto(crossesFinally bool) bytecode.Pc {
	if crossesFinally {
		return g.fn.Code.EmitFinallyGoto()
	}
	return g.fn.Code.EmitGoto()
}

func (g *Generator) genReturn(s *ast.ReturnStatement) {
	if s.Argument != nil {
		g.genExpression(s.Argument)
	} else {
		g.fn.Code.EmitOpcode(bytecode.Undefined)
	}
	if g.crossesFinally([]scope.Type{scope.Function, scope.ArrowFunction}) {
		g.fn.Code.EmitFinallyReturn()
		return
	}
	g.fn.Code.EmitOpcode(bytecode.Return)
}

func (g *Generator) genWhile(s *ast.WhileStatement) {
	label := g.consumePendingLabel()
	g.scopes.EnterScope(g.fn, nil, scope.While)
	b := g.pushBreakable(breakableLoop)

	loopStart := g.fn.Code.Size()
	g.genExpression(s.Test)
	exitPc := g.fn.Code.EmitIfEq()
	g.genStatement(s.Body)
	backPc := g.fn.Code.EmitGoto()
	g.fn.Code.RepairPC(int(backPc), loopStart)
	end := g.fn.Code.Size()
	g.fn.Code.RepairPC(int(exitPc), end)

	g.patchBreakable(b, label, end, loopStart)
	g.popBreakable()
	g.scopes.ExitScope()
}

func (g *Generator) genDoWhile(s *ast.DoWhileStatement) {
	label := g.consumePendingLabel()
	g.scopes.EnterScope(g.fn, nil, scope.While)
	b := g.pushBreakable(breakableLoop)

	loopStart := g.fn.Code.Size()
	g.genStatement(s.Body)
	reloopPC := g.fn.Code.Size()
	g.genExpression(s.Test)
	backPc := g.fn.Code.EmitIfEq() // falsy test: jump to end; truthy: fall through to the Goto back to loopStart
	doneGoto := g.fn.Code.EmitGoto()
	g.fn.Code.RepairPC(int(doneGoto), loopStart)
	end := g.fn.Code.Size()
	g.fn.Code.RepairPC(int(backPc), end)

	g.patchBreakable(b, label, end, reloopPC)
	g.popBreakable()
	g.scopes.ExitScope()
}

func (g *Generator) genFor(s *ast.ForStatement) {
	label := g.consumePendingLabel()
	g.scopes.EnterScope(g.fn, nil, scope.For)
	if s.Init != nil {
		g.genStatement(s.Init)
	}
	b := g.pushBreakable(breakableLoop)

	loopStart := g.fn.Code.Size()
	exitPc := bytecode.InvalidPc
	if s.Test != nil {
		g.genExpression(s.Test)
		exitPc = g.fn.Code.EmitIfEq()
	}
	g.genStatement(s.Body)
	reloopPC := g.fn.Code.Size()
	if s.Update != nil {
		g.genExpression(s.Update)
		g.fn.Code.EmitOpcode(bytecode.Pop)
	}
	backPc := g.fn.Code.EmitGoto()
	g.fn.Code.RepairPC(int(backPc), loopStart)
	end := g.fn.Code.Size()
	if exitPc != bytecode.InvalidPc {
		g.fn.Code.RepairPC(int(exitPc), end)
	}

	g.patchBreakable(b, label, end, reloopPC)
	g.popBreakable()
	g.scopes.ExitScope()
}

// genForIn lowers both for-in (key enumeration) and for-of (iterable
// iteration) to calls against a runtime iterator-protocol helper, since
// the opcode table has no dedicated iteration opcode: `__forEnumerate`/
// `__forIterate` return an object exposing `.next()`, which is called in
// an ordinary while-style loop testing `.done` and reading `.value` —
// mirroring how real JS engines lower `for-of` to Symbol.iterator/.next()
// calls rather than baking iteration into the instruction set.
func (g *Generator) genForIn(s *ast.ForInStatement) {
	label := g.consumePendingLabel()
	g.scopes.EnterScope(g.fn, nil, scope.For)

	helperName := "__forEnumerate"
	if s.Kind == ast.ForOf {
		helperName = "__forIterate"
	}
	g.fn.Code.EmitOpcode(bytecode.Undefined)
	nameIdx := g.constIndex(value.Str(helperName))
	g.fn.Code.EmitGetGlobal(nameIdx)
	g.genExpression(s.Right)
	g.loadConst(value.Int(1))
	g.fn.Code.EmitOpcode(bytecode.FunctionCall)

	iterInfo, err := g.scopes.AllocateVar("#iter", scope.VarNone)
	if err != nil {
		g.errorAt(s, diagnostics.CategorySemantic, err.Error())
	}
	g.fn.Code.EmitVarStore(iterInfo.Index)

	var bindInfo scope.VarInfo
	if s.IsNewDecl {
		flags := scope.VarFlags(0)
		if s.DeclKind == ast.DeclConst {
			flags = scope.VarConst
		}
		bindInfo, err = g.scopes.AllocateVar(s.Name, flags)
		if err != nil {
			g.errorAt(s, diagnostics.CategorySemantic, err.Error())
		}
	}

	b := g.pushBreakable(breakableLoop)
	loopStart := g.fn.Code.Size()

	// result = iter.next()
	g.fn.Code.EmitVarLoad(iterInfo.Index)
	g.fn.Code.EmitOpcode(bytecode.Dump)
	nextIdx := g.constIndex(value.Str("next"))
	g.fn.Code.EmitPropertyLoad(nextIdx)
	g.loadConst(value.Int(0))
	g.fn.Code.EmitOpcode(bytecode.FunctionCall)

	resultInfo, _ := g.scopes.AllocateVar("#iterresult", scope.VarNone)
	g.fn.Code.EmitVarStore(resultInfo.Index)

	g.fn.Code.EmitVarLoad(resultInfo.Index)
	doneIdx := g.constIndex(value.Str("done"))
	g.fn.Code.EmitPropertyLoad(doneIdx)
	exitPc := g.fn.Code.EmitIfEq()
	// IfEq jumps past the Goto below when done is falsy; when done is
	// truthy it falls through to that Goto, which leaves the loop.
	doneTrueGoto := g.fn.Code.EmitGoto()
	g.fn.Code.RepairPC(int(exitPc), g.fn.Code.Size())

	g.fn.Code.EmitVarLoad(resultInfo.Index)
	valueIdx := g.constIndex(value.Str("value"))
	g.fn.Code.EmitPropertyLoad(valueIdx)
	if s.IsNewDecl {
		g.fn.Code.EmitVarStore(bindInfo.Index)
	} else {
		g.storeLValue(&ast.Identifier{Name: s.Name})
		g.fn.Code.EmitOpcode(bytecode.Pop)
	}

	g.genStatement(s.Body)
	backPc := g.fn.Code.EmitGoto()
	g.fn.Code.RepairPC(int(backPc), loopStart)

	end := g.fn.Code.Size()
	g.fn.Code.RepairPC(int(doneTrueGoto), end)

	g.patchBreakable(b, label, end, loopStart)
	g.popBreakable()
	g.scopes.ExitScope()
}

// genSwitch compiles each case's test as a strict-equality chain against
// the discriminant, falling through to the default (or past the switch)
// when none match; break anywhere inside targets the switch's end.
func (g *Generator) genSwitch(s *ast.SwitchStatement) {
	label := g.consumePendingLabel()
	g.scopes.EnterScope(g.fn, nil, scope.Switch)
	b := g.pushBreakable(breakableSwitch)

	discInfo, err := g.scopes.AllocateVar("#disc", scope.VarNone)
	if err != nil {
		g.errorAt(s, diagnostics.CategorySemantic, err.Error())
	}
	g.genExpression(s.Discriminant)
	g.fn.Code.EmitVarStore(discInfo.Index)

	caseBodyPcs := make([]bytecode.Pc, len(s.Cases))
	defaultIdx := -1
	for i, c := range s.Cases {
		if c.Test == nil {
			defaultIdx = i
			continue
		}
		g.fn.Code.EmitVarLoad(discInfo.Index)
		g.genExpression(c.Test)
		g.fn.Code.EmitOpcode(bytecode.StrictEq)
		skip := g.fn.Code.EmitIfEq()
		jumpToBody := g.fn.Code.EmitGoto()
		g.fn.Code.RepairPC(int(skip), g.fn.Code.Size())
		caseBodyPcs[i] = jumpToBody
	}
	// toDefault jumps a matched-nothing discriminant to the default
	// case's body; noMatchGoto (when there's no default) instead skips
	// straight past every case body to the switch's end.
	var toDefault, noMatchGoto bytecode.Pc = bytecode.InvalidPc, bytecode.InvalidPc
	if defaultIdx >= 0 {
		toDefault = g.fn.Code.EmitGoto()
	} else {
		noMatchGoto = g.fn.Code.EmitGoto()
	}

	// Case bodies, emitted in source order; each case test's jump target
	// is this case's body start, and control falls through to the next
	// case's body exactly like JS switch fallthrough.
	bodyStarts := make([]int, len(s.Cases))
	for i, c := range s.Cases {
		bodyStarts[i] = g.fn.Code.Size()
		if i == defaultIdx && toDefault != bytecode.InvalidPc {
			g.fn.Code.RepairPC(int(toDefault), bodyStarts[i])
		}
		for _, stmt := range c.Body {
			g.genStatement(stmt)
		}
	}
	end := g.fn.Code.Size()
	for i, c := range s.Cases {
		if c.Test == nil {
			continue
		}
		g.fn.Code.RepairPC(int(caseBodyPcs[i]), bodyStarts[i])
	}
	if noMatchGoto != bytecode.InvalidPc {
		g.fn.Code.RepairPC(int(noMatchGoto), end)
	}

	g.patchBreakable(b, label, end, 0)
	g.popBreakable()
	g.scopes.ExitScope()
}

// genTry emits TryBegin, the try body, a Goto past the handlers, the
// optional catch (with its parameter bound to a fresh slot) and finally
// bodies, then TryEnd, appending the matching ExceptionEntry (spec.md
// §4.4).
func (g *Generator) genTry(s *ast.TryStatement) {
	g.fn.Code.EmitOpcode(bytecode.TryBegin)
	tryStart := g.fn.Code.Size()

	scopeType := scope.Try
	if s.Finally != nil {
		scopeType = scope.TryFinally
	}
	g.scopes.EnterScope(g.fn, nil, scopeType)
	g.genBlock(s.Block)
	g.scopes.ExitScope()
	tryEnd := g.fn.Code.Size()
	skipHandlers := g.fn.Code.EmitGoto()

	catchStart, catchEnd := bytecode.InvalidPc, bytecode.InvalidPc
	catchErrSlot := -1
	if s.Catch != nil {
		catchStart = bytecode.Pc(g.fn.Code.Size())
		catchScopeType := scope.Catch
		if s.Finally != nil {
			catchScopeType = scope.CatchFinally
		}
		g.scopes.EnterScope(g.fn, nil, catchScopeType)
		if s.Catch.Param != "" {
			info, err := g.scopes.AllocateVar(s.Catch.Param, scope.VarNone)
			if err != nil {
				g.errorAt(s, diagnostics.CategorySemantic, err.Error())
			}
			catchErrSlot = info.Index
		}
		for _, stmt := range s.Catch.Body.Body {
			g.genStatement(stmt)
		}
		g.scopes.ExitScope()
		catchEnd = bytecode.Pc(g.fn.Code.Size())
	}
	g.fn.Code.RepairPC(int(skipHandlers), g.fn.Code.Size())

	finallyStart, finallyEnd := bytecode.InvalidPc, bytecode.InvalidPc
	if s.Finally != nil {
		finallyStart = bytecode.Pc(g.fn.Code.Size())
		g.scopes.EnterScope(g.fn, nil, scope.Finally)
		for _, stmt := range s.Finally.Body {
			g.genStatement(stmt)
		}
		g.scopes.ExitScope()
		finallyEnd = bytecode.Pc(g.fn.Code.Size())
	}

	g.fn.Code.EmitOpcode(bytecode.TryEnd)

	g.fn.Except.Add(bytecode.ExceptionEntry{
		TryStart: bytecode.Pc(tryStart), TryEnd: bytecode.Pc(tryEnd),
		CatchStart: catchStart, CatchEnd: catchEnd, CatchErrSlot: catchErrSlot,
		FinallyStart: finallyStart, FinallyEnd: finallyEnd,
	})
}
