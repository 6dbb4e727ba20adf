package bytecode

// Flags captures the boolean attributes spec.md §4.3 lists for a
// FunctionDef ("type flags {normal, module, arrow, generator, async,
// has_this}").
type Flags int

const (
	FlagNormal    Flags = 0
	FlagModule    Flags = 1 << iota
	FlagArrow
	FlagGenerator
	FlagAsync
	FlagHasThis
)

func (f Flags) Has(flag Flags) bool { return f&flag != 0 }

// DebugEntry maps a pc range to a source line/column, for stack traces
// and the compiler's -verbose disassembly trace.
type DebugEntry struct {
	StartPC Pc
	EndPC   Pc
	Line    int
	Column  int
}

// FunctionDef owns one function's compiled bytecode, constants-by-index
// reference (the containing Context's pool), variable/closure tables,
// exception table, and debug table. Grounded on spec.md §4.3's FunctionDef
// description and multjs's function_def.h (confirmed via
// bytecode_test.cpp's function_def()->bytecode_table() / var_def_table
// usage, since the header itself was filtered from the retrieval pack).
//
// FunctionDef satisfies internal/scope.FuncDef (AllocLocal,
// AddClosureVar) so the code generator's scope.Manager can track its
// locals and closure captures without this package depending on scope.
type FunctionDef struct {
	Name       string
	ParamCount int
	Flags      Flags

	varNames []string // slot index -> name, for debug/disassembly only
	Code     Table
	Closure  ClosureVarTable
	Except   ExceptionTable
	Debug    []DebugEntry
}

func NewFunctionDef(name string, paramCount int, flags Flags) *FunctionDef {
	return &FunctionDef{Name: name, ParamCount: paramCount, Flags: flags}
}

// VarCount is the number of local slots this function's frame needs
// (parameters occupy the first ParamCount of them).
func (f *FunctionDef) VarCount() int { return len(f.varNames) }

// AllocLocal reserves the next local slot for name. Satisfies
// scope.FuncDef.
func (f *FunctionDef) AllocLocal(name string) int {
	f.varNames = append(f.varNames, name)
	return len(f.varNames) - 1
}

// AddClosureVar registers a closure capture: this function's frame slot
// localIndex is populated, at closure-creation time, from slot
// outerIndex of the immediately enclosing function's own frame. Satisfies
// scope.FuncDef.
func (f *FunctionDef) AddClosureVar(localIndex, outerIndex int) {
	f.Closure.AddClosureVar(localIndex, outerIndex)
}

func (f *FunctionDef) VarName(slot int) string {
	if slot < 0 || slot >= len(f.varNames) {
		return ""
	}
	return f.varNames[slot]
}

func (f *FunctionDef) AddDebugEntry(e DebugEntry) { f.Debug = append(f.Debug, e) }

// LineFor returns the source line for pc, or 0 if no debug entry covers
// it (e.g. a synthetic prologue instruction).
func (f *FunctionDef) LineFor(pc Pc) int {
	for _, e := range f.Debug {
		if pc >= e.StartPC && pc < e.EndPC {
			return e.Line
		}
	}
	return 0
}

// ConstKey lets a *FunctionDef sit in a ConstPool: function constants are
// deduplicated by identity (a freshly compiled function literal is never
// equal to another, even a textually identical one), so the key is
// simply the def's pointer address rendered as text.
func (f *FunctionDef) ConstKey() string {
	return "func:" + ptrKey(f)
}
