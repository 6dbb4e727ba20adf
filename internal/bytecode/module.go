package bytecode

import "sort"

// LineTable maps a byte offset into the module's original source text to
// a 1-based line/column, for syntax-error and stack-trace reporting.
// spec.md §4.3: "a LineTable (byte position → line/column)".
type LineTable struct {
	// offsets is sorted ascending; offsets[i] is the byte position where
	// line lines[i] begins.
	offsets []int
	lines   []int
}

// NewLineTable builds a LineTable from source by recording the byte
// offset of the start of every line.
func NewLineTable(source string) *LineTable {
	lt := &LineTable{offsets: []int{0}, lines: []int{1}}
	line := 1
	for i, c := range []byte(source) {
		if c == '\n' {
			line++
			lt.offsets = append(lt.offsets, i+1)
			lt.lines = append(lt.lines, line)
		}
	}
	return lt
}

// Position returns the 1-based line and column for byte offset pos.
func (lt *LineTable) Position(pos int) (line, col int) {
	i := sort.SearchInts(lt.offsets, pos+1) - 1
	if i < 0 {
		i = 0
	}
	return lt.lines[i], pos - lt.offsets[i] + 1
}

// ExportVarTable maps an export's external name to the module-local
// variable slot holding its value, per spec.md §4.3's "export-variable
// table mapping exported name → slot index".
type ExportVarTable struct {
	bySlot map[string]int
}

func (t *ExportVarTable) AddExportVar(name string, slot int) {
	if t.bySlot == nil {
		t.bySlot = make(map[string]int)
	}
	t.bySlot[name] = slot
}

func (t *ExportVarTable) Slot(name string) (int, bool) {
	slot, ok := t.bySlot[name]
	return slot, ok
}

func (t *ExportVarTable) Names() []string {
	names := make([]string, 0, len(t.bySlot))
	for name := range t.bySlot {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ModuleDef is a FunctionDef representing a module's top-level code
// (spec.md §4.3: "A ModuleDef is a FunctionDef that additionally holds
// module name, source text ..., a LineTable ..., and an export-variable
// table"). It has zero parameters and is executed exactly once per
// Context to populate its ModuleObject's variable array.
type ModuleDef struct {
	FunctionDef

	Source     string
	Lines      *LineTable
	ExportVars ExportVarTable
}

func NewModuleDef(name, source string) *ModuleDef {
	return &ModuleDef{
		FunctionDef: *NewFunctionDef(name, 0, FlagModule),
		Source:      source,
		Lines:       NewLineTable(source),
	}
}
