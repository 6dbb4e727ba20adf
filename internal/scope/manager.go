package scope

import "fmt"

// Manager is the scope stack the code generator pushes/pops as it walks
// into and out of blocks, loops, functions, and try/catch/finally
// handlers. It is the Go counterpart of multjs's ScopeManager
// (compiler/scope_manager.h/.cpp): one stack of Scopes, innermost last.
type Manager struct {
	scopes []*Scope
}

func NewManager() *Manager {
	return &Manager{}
}

// Reset clears the stack, e.g. between compiling independent top-level
// programs with the same Manager instance.
func (m *Manager) Reset() {
	m.scopes = m.scopes[:0]
}

// EnterScope pushes a new Scope of the given Type. subFunc, when non-nil,
// is the FunctionDef of a function literal being entered (its body's
// locals belong to it, not to the enclosing function); pass nil for
// non-function constructs (if/while/for/try/...) so locals keep landing
// in the current function's slot table.
func (m *Manager) EnterScope(current FuncDef, subFunc FuncDef, typ Type) *Scope {
	owner := current
	if subFunc != nil {
		owner = subFunc
	}
	s := newScope(owner, typ)
	m.scopes = append(m.scopes, s)
	return s
}

// ExitScope pops the innermost scope. Panics on an empty stack since that
// indicates a codegen bug (an ExitScope without a matching EnterScope),
// not a user-facing error.
func (m *Manager) ExitScope() {
	if len(m.scopes) == 0 {
		panic("scope: ExitScope with no open scope")
	}
	m.scopes = m.scopes[:len(m.scopes)-1]
}

// Depth reports how many scopes are currently open.
func (m *Manager) Depth() int { return len(m.scopes) }

// Current returns the innermost open scope, or nil if none is open.
func (m *Manager) Current() *Scope {
	if len(m.scopes) == 0 {
		return nil
	}
	return m.scopes[len(m.scopes)-1]
}

// AllocateVar declares name in the innermost scope.
func (m *Manager) AllocateVar(name string, flags VarFlags) (VarInfo, error) {
	if len(m.scopes) == 0 {
		return VarInfo{}, fmt.Errorf("scope: AllocateVar with no open scope")
	}
	return m.scopes[len(m.scopes)-1].AllocateVar(name, flags)
}

// FindVar resolves name starting from the innermost scope and walking
// outward. If the binding lives in a scope owned by a different
// function than current, it builds the capture chain: every function
// boundary crossed on the way out gets its own closure-variable slot
// added (via FuncDef.AddClosureVar), so each enclosing function knows to
// capture the variable from ITS enclosing function when a closure over
// it is created. Mirrors ScopeManager::FindVarInfoByName exactly,
// including the "nearest declaration wins" walk order.
func (m *Manager) FindVar(current FuncDef, name string) (VarInfo, bool) {
	for i := len(m.scopes) - 1; i >= 0; i-- {
		varInfo, ok := m.scopes[i].FindVar(name)
		if !ok {
			continue
		}

		if m.scopes[i].FuncDef() == current {
			return varInfo, true
		}

		// Found in an outer function's scope: build the capture chain by
		// adding a closure-var slot in every distinct function scope
		// between the declaration and here. Each intervening function
		// gets an ordinary local slot (AllocLocal) that it then registers
		// as a closure capture of the PREVIOUS function's slot.
		outerIdx := varInfo.Index
		flags := varInfo.Flags | VarCaptured
		scopeFunc := m.scopes[i].FuncDef()
		var last VarInfo
		for j := i + 1; j < len(m.scopes); j++ {
			if m.scopes[j].FuncDef() == scopeFunc {
				continue
			}
			scopeFunc = m.scopes[j].FuncDef()
			localIdx := scopeFunc.AllocLocal(name)
			scopeFunc.AddClosureVar(localIdx, outerIdx)
			last = VarInfo{Index: localIdx, Flags: flags}
			m.scopes[j].setVar(name, last)
			outerIdx = localIdx
		}
		return last, true
	}
	return VarInfo{}, false
}

// IsInTypeScope reports whether, walking outward from the innermost
// scope, a scope of one of types is reached before a scope of one of
// endTypes (or the stack bottom). Used for validating things like "is a
// bare `break` inside a loop or switch" by passing the constructs that
// satisfy it as types and Function/ArrowFunction as endTypes, since a
// function boundary always stops the search — a break cannot jump out of
// its own enclosing function.
func (m *Manager) IsInTypeScope(types []Type, endTypes []Type) bool {
	for i := len(m.scopes) - 1; i >= 0; i-- {
		t := m.scopes[i].Type()
		for _, want := range types {
			if t == want {
				return true
			}
		}
		for _, end := range endTypes {
			if t == end {
				return false
			}
		}
	}
	return false
}
