package vm

import (
	"lotusjs/internal/bytecode"
	"lotusjs/value"
)

// outcomeKind is how a frame's run() finished.
type outcomeKind int

const (
	outcomeReturn outcomeKind = iota
	outcomeThrow
	outcomeYield // only ever returned for a generator frame's own run()
	outcomeAwait // only ever returned for an async frame's own run()
)

type outcome struct {
	kind  outcomeKind
	value value.Value
}

// run drives fr's bytecode.Table until it returns, throws past its own
// exception table, or (for a generator/async frame) suspends at a
// Yield/Await. It recurses into itself for ordinary FunctionCall/New
// targets — spec.md §4.6 describes one interpreter loop per Context,
// which this models as one loop per *call*, nested the way Go's own
// call stack nests, since generator/await suspension never needs to
// unwind past an ordinary call (JS only permits yield/await lexically
// inside the generator/async function's own body, never inside a
// callee it invokes).
func (c *Context) run(fr *Frame) outcome {
	c.frames = append(c.frames, fr)
	defer func() { c.frames = c.frames[:len(c.frames)-1] }()

	code := &fr.Def.Code
	for {
		pc := int(fr.Pc)
		if pc >= code.Size() {
			return outcome{kind: outcomeReturn, value: value.Undef()}
		}
		op := code.GetOpcode(&pc)
		c.Stats.RecordOpcode()

		switch op {
		case bytecode.Nop:

		case bytecode.CLoad0, bytecode.CLoad1, bytecode.CLoad2, bytecode.CLoad3, bytecode.CLoad4, bytecode.CLoad5:
			c.push(c.constValue(int(op - bytecode.CLoad0)))
		case bytecode.CLoad:
			c.push(c.constValue(code.GetConstIndexAsU16(&pc)))
		case bytecode.CLoadD:
			v := c.constValue(code.GetConstIndex(&pc))
			if v.Kind() == value.FunctionDefRef {
				// A function literal with no captures: materialise it with
				// an empty closure environment so it is callable.
				v = c.makeClosure(fr, v.FunctionDef())
			}
			c.push(v)

		case bytecode.VarLoad:
			slot := code.GetVarIndex(&pc)
			if cell, boxed := fr.cellIfBoxed(slot); boxed {
				c.push(cell.V)
			} else {
				c.push(c.stack[fr.Bottom+slot])
			}
		case bytecode.VarStore:
			slot := code.GetVarIndex(&pc)
			v := c.pop()
			if cell, boxed := fr.cellIfBoxed(slot); boxed {
				cell.V = v
			} else {
				c.stack[fr.Bottom+slot] = v
			}

		case bytecode.GetGlobal:
			name := c.constValue(code.GetConstIndex(&pc)).Str()
			v, ok := c.Global.GetWithPrototypeChain(name)
			if !ok {
				fr.Pc = bytecode.Pc(pc)
				res, handled := c.dispatchThrow(fr, c.newReferenceError(name+" is not defined"))
				if !handled {
					return res
				}
				pc = int(fr.Pc)
				continue
			}
			c.push(v)
		case bytecode.SetGlobal:
			name := c.constValue(code.GetConstIndex(&pc)).Str()
			c.Global.Set(name, c.pop())

		case bytecode.PropertyLoad:
			name := c.constValue(code.GetConstIndex(&pc)).Str()
			obj := c.pop()
			v, jsErr := c.getProperty(obj, name)
			if jsErr != nil {
				fr.Pc = bytecode.Pc(pc)
				res, handled := c.dispatchThrow(fr, jsErr.Value)
				if !handled {
					return res
				}
				pc = int(fr.Pc)
				continue
			}
			c.push(v)
		case bytecode.PropertyStore:
			name := c.constValue(code.GetConstIndex(&pc)).Str()
			v := c.pop()
			obj := c.pop()
			c.setProperty(obj, name, v)

		case bytecode.IndexedLoad:
			key := c.pop()
			obj := c.pop()
			v, jsErr := c.getProperty(obj, key.ToDisplayString())
			if jsErr != nil {
				fr.Pc = bytecode.Pc(pc)
				res, handled := c.dispatchThrow(fr, jsErr.Value)
				if !handled {
					return res
				}
				pc = int(fr.Pc)
				continue
			}
			c.push(v)
		case bytecode.IndexedStore:
			v := c.pop()
			key := c.pop()
			obj := c.pop()
			c.setProperty(obj, key.ToDisplayString(), v)

		case bytecode.Add, bytecode.Sub, bytecode.Mul, bytecode.Div, bytecode.Mod, bytecode.Pow,
			bytecode.BitAnd, bytecode.BitOr, bytecode.BitXor, bytecode.Shl, bytecode.Shr, bytecode.UShr,
			bytecode.Eq, bytecode.Ne, bytecode.Lt, bytecode.Le, bytecode.Gt, bytecode.Ge,
			bytecode.StrictEq, bytecode.StrictNe:
			rhs := c.pop()
			lhs := c.pop()
			c.push(c.binaryOp(op, lhs, rhs))

		case bytecode.Neg:
			c.push(negate(c.pop()))
		case bytecode.BitNot:
			c.push(value.Int(^c.pop().Int64()))
		case bytecode.LNot:
			c.push(value.Bool(!c.pop().ToBoolean()))
		case bytecode.Inc:
			c.push(addNumeric(c.pop(), 1))
		case bytecode.Dec:
			c.push(addNumeric(c.pop(), -1))

		case bytecode.InstanceOf:
			rhs := c.pop()
			lhs := c.pop()
			c.push(value.Bool(c.instanceOf(lhs, rhs)))
		case bytecode.HasProperty:
			rhs := c.pop()
			lhs := c.pop()
			c.push(value.Bool(c.hasProperty(rhs, lhs.ToDisplayString())))
		case bytecode.Delete:
			key := c.pop()
			obj := c.pop()
			c.push(value.Bool(c.deleteProperty(obj, key.ToDisplayString())))

		case bytecode.Pop:
			c.pop()
		case bytecode.Dup:
			c.push(c.top())
		case bytecode.Dump:
			// Dump is operationally Dup: both of its call sites (callee/
			// this staging before a call, for-in iterator staging)
			// duplicate the current top-of-stack value, not something
			// "below" it.
			c.push(c.top())
		case bytecode.Swap:
			n := len(c.stack)
			c.stack[n-1], c.stack[n-2] = c.stack[n-2], c.stack[n-1]
		case bytecode.ToString:
			c.push(value.Str(c.pop().ToDisplayString()))
		case bytecode.Typeof:
			c.push(value.Str(c.pop().TypeofString()))
		case bytecode.Undefined:
			c.push(value.Undef())
		case bytecode.LdNull:
			c.push(value.Nil())

		case bytecode.Goto:
			offset := code.GetPc(&pc)
			pc = pc - 2 + offset
		case bytecode.IfEq:
			offset := code.GetPc(&pc)
			test := c.pop()
			if !test.ToBoolean() {
				pc = pc - 2 + offset
			}

		case bytecode.TryBegin:
			// No-op at dispatch: only marks the exception table's span.

		case bytecode.TryEnd:
			if fr.rethrow != nil {
				errVal := *fr.rethrow
				fr.rethrow = nil
				fr.Pc = bytecode.Pc(pc)
				res, handled := c.dispatchThrow(fr, errVal)
				if !handled {
					return res
				}
				pc = int(fr.Pc)
				continue
			}
			if fr.pending != nil {
				if entry, ok := c.findEnclosingFinally(fr, bytecode.Pc(pc)); ok {
					pc = int(entry.FinallyStart)
					continue
				}
				p := fr.pending
				fr.pending = nil
				if p.isReturn {
					fr.Pc = bytecode.Pc(pc)
					return outcome{kind: outcomeReturn, value: p.value}
				}
				pc = int(p.target)
			}

		case bytecode.FinallyGoto:
			offset := code.GetPc(&pc)
			target := bytecode.Pc(pc - 2 + offset)
			fr.pending = &pendingTransfer{isReturn: false, target: target}
			if entry, ok := c.findEnclosingFinally(fr, bytecode.Pc(pc)); ok {
				pc = int(entry.FinallyStart)
			} else {
				fr.pending = nil
				pc = int(target)
			}
		case bytecode.FinallyReturn:
			code.GetPc(&pc) // operand unused: the return destination is always "after every intervening finally"
			v := c.pop()
			if entry, ok := c.findEnclosingFinally(fr, bytecode.Pc(pc)); ok {
				fr.pending = &pendingTransfer{isReturn: true, value: v}
				pc = int(entry.FinallyStart)
			} else {
				fr.Pc = bytecode.Pc(pc)
				return outcome{kind: outcomeReturn, value: v}
			}

		case bytecode.FunctionCall:
			fr.Pc = bytecode.Pc(pc)
			res, jsErr := c.doCall(fr, false)
			if jsErr != nil {
				res2, handled := c.dispatchThrow(fr, jsErr.Value)
				if !handled {
					return res2
				}
				pc = int(fr.Pc)
				continue
			}
			c.push(res)
			pc = int(fr.Pc)
		case bytecode.New:
			fr.Pc = bytecode.Pc(pc)
			res, jsErr := c.doCall(fr, true)
			if jsErr != nil {
				res2, handled := c.dispatchThrow(fr, jsErr.Value)
				if !handled {
					return res2
				}
				pc = int(fr.Pc)
				continue
			}
			c.push(res)
			pc = int(fr.Pc)

		case bytecode.Return:
			v := c.pop()
			fr.Pc = bytecode.Pc(pc)
			if fr.Gen != nil {
				fr.Gen.SetClosed()
			}
			return outcome{kind: outcomeReturn, value: v}

		case bytecode.Closure:
			idx := code.GetConstIndex(&pc)
			cv := c.Pool.Get(idx)
			var def *bytecode.FunctionDef
			if fn, ok := cv.(value.Value); ok {
				def = fn.FunctionDef()
			}
			c.push(c.makeClosure(fr, def))

		case bytecode.Throw:
			v := c.pop()
			fr.Pc = bytecode.Pc(pc)
			res, handled := c.dispatchThrow(fr, v)
			if !handled {
				return res
			}
			pc = int(fr.Pc)

		case bytecode.Yield, bytecode.YieldDelegate:
			v := c.pop()
			fr.Pc = bytecode.Pc(pc)
			return outcome{kind: outcomeYield, value: v}
		case bytecode.Await:
			v := c.pop()
			fr.Pc = bytecode.Pc(pc)
			return outcome{kind: outcomeAwait, value: v}

		case bytecode.GetModule:
			specIdx := code.GetConstIndex(&pc)
			spec := c.constValue(specIdx).Str()
			mod, err := c.getModuleSync(spec, fr.Def.Name)
			if err != nil {
				fr.Pc = bytecode.Pc(pc)
				res, handled := c.dispatchThrow(fr, c.newError("Error", err.Error()))
				if !handled {
					return res
				}
				pc = int(fr.Pc)
				continue
			}
			c.push(mod)
		case bytecode.GetModuleAsync:
			specVal := c.pop()
			prom := c.getModuleAsync(specVal.ToDisplayString(), fr.Def.Name)
			c.push(prom)

		case bytecode.NewObj:
			count := int(c.pop().Int64())
			c.push(c.buildObjectLiteral(count))
		case bytecode.NewArr:
			count := int(c.pop().Int64())
			c.push(c.buildArrayLiteral(count))
		case bytecode.SetProperty:
			v := c.pop()
			key := c.pop()
			obj := c.top()
			c.setProperty(obj, key.ToDisplayString(), v)
		case bytecode.SetElem:
			v := c.pop()
			idx := c.pop()
			obj := c.top()
			c.setProperty(obj, idx.ToDisplayString(), v)

		case bytecode.GetThis:
			c.push(fr.This)
		case bytecode.GetOuterThis:
			if fr.Caller != nil {
				c.push(fr.Caller.This)
			} else {
				c.push(value.Undef())
			}
		case bytecode.GetSuper:
			c.push(c.getSuper(fr))
		case bytecode.GetNewTarget:
			c.push(fr.NewTarget)

		default:
			fr.Pc = bytecode.Pc(pc)
			panic(&InternalError{Message: "vm: unknown opcode " + op.String()})
		}

		fr.Pc = bytecode.Pc(pc)
		if len(c.stack) > 256 {
			c.maybeGC()
		}
	}
}
