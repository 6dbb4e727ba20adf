package bytecode

// ClosureVarDef records one step of a capture chain: this function's own
// local slot (ChildSlot) that, at closure-creation time, must be wired to
// share a cell with slot ParentSlot in the immediately enclosing
// function's frame. spec.md §4.3 and multjs's scope_manager.cpp
// (AddClosureVar) ground the (child_slot, parent_slot) pairing; the
// table is consulted by internal/codegen when emitting `Closure` instead
// of `CLoadD` and by the VM when materialising a FunctionObject's
// ClosureEnvironment.
type ClosureVarDef struct {
	ChildSlot  int
	ParentSlot int
}

// ClosureVarTable is the ordered list of ClosureVarDef for one
// FunctionDef. Insertion order is significant: it is the order the VM
// walks when building a ClosureEnvironment array.
type ClosureVarTable struct {
	defs []ClosureVarDef
}

// AddClosureVar appends an entry; the entry's position in the table is
// its index within the closure environment array (i.e. where the VM will
// place the captured cell). Satisfies scope.FuncDef's AddClosureVar half when embedded into
// FunctionDef (FunctionDef.AddClosureVar forwards here).
func (t *ClosureVarTable) AddClosureVar(childSlot, parentSlot int) {
	t.defs = append(t.defs, ClosureVarDef{ChildSlot: childSlot, ParentSlot: parentSlot})
}

func (t *ClosureVarTable) Len() int { return len(t.defs) }

func (t *ClosureVarTable) Get(i int) ClosureVarDef { return t.defs[i] }

func (t *ClosureVarTable) Defs() []ClosureVarDef { return t.defs }

// Empty reports whether this function captures no outer variables — per
// spec.md's invariant "Closure-var table is empty iff the CLoadD opcode
// was not rewritten to Closure", codegen consults this after compiling a
// function body to decide which opcode the enclosing CLoadD placeholder
// becomes.
func (t *ClosureVarTable) Empty() bool { return len(t.defs) == 0 }
