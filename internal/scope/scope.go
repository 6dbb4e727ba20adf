// Package scope tracks lexical scopes and variable slots during code
// generation: which function a variable's slot belongs to, whether it
// needs a closure capture chain built across intermediate function
// scopes, and which kind of control-flow construct (if/while/for/try/...)
// each scope nests inside of (used to validate break/continue/labels).
//
// Grounded on multjs's compiler/scope.h, compiler/scope_manager.h/.cpp
// (original_source/): Scope owns a single function's name->slot table,
// ScopeManager owns the scope stack and walks it outward on a miss,
// allocating a local in every intervening function scope and wiring
// AddClosureVar so each enclosing function knows it must capture the
// variable from its own enclosing scope in turn.
package scope

import "fmt"

// Type identifies what kind of construct a Scope was opened for. Codegen
// uses it to answer "am I inside a loop/switch/try" for break/continue
// and to decide whether a finally block must run before an early exit.
type Type int

const (
	None Type = iota
	Block
	If
	ElseIf
	Else
	While
	For
	Switch
	Function
	ArrowFunction
	Try
	TryFinally
	Catch
	CatchFinally
	Finally
)

func (t Type) String() string {
	switch t {
	case None:
		return "none"
	case Block:
		return "block"
	case If:
		return "if"
	case ElseIf:
		return "else-if"
	case Else:
		return "else"
	case While:
		return "while"
	case For:
		return "for"
	case Switch:
		return "switch"
	case Function:
		return "function"
	case ArrowFunction:
		return "arrow-function"
	case Try:
		return "try"
	case TryFinally:
		return "try-finally"
	case Catch:
		return "catch"
	case CatchFinally:
		return "catch-finally"
	case Finally:
		return "finally"
	default:
		return "unknown"
	}
}

// VarFlags records per-variable declaration attributes that codegen needs
// when emitting a store (e.g. rejecting a second assignment to a const).
type VarFlags int

const (
	VarNone VarFlags = 0
	// VarConst marks a `const` binding; assigning to it after its
	// initializer is a compile error.
	VarConst VarFlags = 1 << iota
	// VarCaptured marks a variable that some nested function scope
	// reaches via a closure chain; the code generator boxes it instead
	// of using a flat stack slot.
	VarCaptured
)

func (f VarFlags) Has(flag VarFlags) bool { return f&flag != 0 }

// VarInfo is what FindVar/AllocateVar hand back: the variable's slot index
// within its owning function and its declaration flags.
type VarInfo struct {
	Index int
	Flags VarFlags
}

// FuncDef is the slice of bytecode.FunctionDef that the scope tracker
// needs: a place to allocate local-variable slots and register closure
// captures. Declared here (rather than imported from the bytecode
// package) so scope has no dependency on bytecode's concrete types —
// bytecode.FunctionDef satisfies this implicitly.
type FuncDef interface {
	// AllocLocal reserves the next local slot for name and returns its
	// index.
	AllocLocal(name string) int
	// AddClosureVar registers that this function must capture, at
	// closure-creation time, the variable at outerIndex in its
	// immediately enclosing function, storing the captured value at
	// localIndex (already reserved via AllocLocal) in this function's own
	// slot table.
	AddClosureVar(localIndex, outerIndex int)
}

// Scope is one function's (or one control-flow construct's) name table.
// Multiple Scopes can share the same FuncDef: a while loop inside a
// function opens a new Scope of Type While but keeps allocating locals
// into the same enclosing FuncDef, since JS block scoping in this spec
// reuses the function's flat local-slot space rather than nesting frames.
type Scope struct {
	funcDef FuncDef
	typ     Type
	vars    map[string]VarInfo
}

func newScope(funcDef FuncDef, typ Type) *Scope {
	return &Scope{funcDef: funcDef, typ: typ, vars: make(map[string]VarInfo)}
}

func (s *Scope) Type() Type { return s.typ }

func (s *Scope) FuncDef() FuncDef { return s.funcDef }

// AllocateVar declares name in this scope, reserving a new slot in the
// owning function. Returns an error if name is already declared in this
// exact scope (shadowing an outer scope's binding is fine and is how
// block scoping works here; redeclaring within the same block is not).
func (s *Scope) AllocateVar(name string, flags VarFlags) (VarInfo, error) {
	if _, exists := s.vars[name]; exists {
		return VarInfo{}, fmt.Errorf("local var redefinition: %s", name)
	}
	idx := s.funcDef.AllocLocal(name)
	info := VarInfo{Index: idx, Flags: flags}
	s.vars[name] = info
	return info, nil
}

// FindVar looks up name in this scope only (no outward walk); see
// Manager.FindVar for the full capture-aware lookup.
func (s *Scope) FindVar(name string) (VarInfo, bool) {
	info, ok := s.vars[name]
	return info, ok
}

func (s *Scope) setVar(name string, info VarInfo) { s.vars[name] = info }
