package lexer

import "sort"

// LineTable maps byte positions to (line, column), built in one pass over
// the whole source by NewLineTable. Lines and columns are both 1-based.
type LineTable struct {
	// lineStarts[i] is the byte offset of the first byte of line i+1.
	lineStarts []int
}

// NewLineTable scans src once for line-start offsets. The lexer's own scan
// loop does not build one; a ModuleDef carries its own bytecode.LineTable,
// built from its source text when the ModuleDef is created.
func NewLineTable(src string) *LineTable {
	lt := &LineTable{lineStarts: []int{0}}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			lt.lineStarts = append(lt.lineStarts, i+1)
		}
	}
	return lt
}

// Position converts a byte offset to a 1-based (line, column) pair.
func (lt *LineTable) Position(pos int) (line, column int) {
	i := sort.Search(len(lt.lineStarts), func(i int) bool { return lt.lineStarts[i] > pos })
	line = i // lineStarts[i-1] <= pos < lineStarts[i]
	col := pos - lt.lineStarts[line-1] + 1
	return line, col
}
