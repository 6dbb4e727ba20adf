// Package diagnostics collects and renders compiler messages (parse
// errors, scope-resolution errors, and warnings) the way the teacher's
// own DiagnosticManager does, adapted from column/line source positions
// to this engine's lexer/parser/codegen pipeline.
package diagnostics

import (
	"fmt"
	"os"
	"strings"
)

type Level int

const (
	Error Level = iota
	Warning
	Info
	Hint
)

// Category groups a diagnostic for filtering, matching the categories a
// JS front end actually raises (as opposed to the teacher's C-like
// language's memory/shadow/implicit categories).
type Category string

const (
	CategorySyntax    Category = "syntax"
	CategorySemantic  Category = "semantic" // duplicate declaration, const reassignment
	CategoryReference Category = "reference"
	CategoryType      Category = "type"
	CategoryGeneral   Category = "general"
)

// Diagnostic is a single reported message, anchored to a 1-based source
// line/column (as produced by bytecode.LineTable.Position).
type Diagnostic struct {
	Level      Level
	Category   Category
	Code       string
	Message    string
	Module     string
	Line       int
	Column     int
	EndColumn  int
	Context    string
	Suggestion string
	Notes      []string
}

// Manager collects diagnostics across one compilation unit (one
// lexer/parser/codegen pass over a module's source).
type Manager struct {
	Diagnostics  []Diagnostic
	ErrorCount   int
	WarnCount    int
	MaxErrors    int
	TreatWarnErr bool
	Suppress     bool
	UseColor     bool
	sourceLines  map[string][]string
}

func NewManager() *Manager {
	return &Manager{
		MaxErrors:   20,
		UseColor:    true,
		sourceLines: make(map[string][]string),
	}
}

func (m *Manager) SetSource(module, source string) {
	m.sourceLines[module] = strings.Split(source, "\n")
}

func (m *Manager) sourceLine(module string, line int) string {
	lines, ok := m.sourceLines[module]
	if !ok || line <= 0 || line > len(lines) {
		return ""
	}
	return lines[line-1]
}

func (m *Manager) AddError(category Category, message, module string, line, column int) {
	m.AddErrorWithCode("", category, message, module, line, column)
}

func (m *Manager) AddErrorWithCode(code string, category Category, message, module string, line, column int) {
	if m.ErrorCount >= m.MaxErrors {
		return
	}
	m.Diagnostics = append(m.Diagnostics, Diagnostic{
		Level: Error, Category: category, Code: code, Message: message,
		Module: module, Line: line, Column: column,
		Context: m.sourceLine(module, line),
	})
	m.ErrorCount++
}

func (m *Manager) AddWarning(category Category, message, module string, line, column int) {
	if m.Suppress {
		return
	}
	level := Warning
	if m.TreatWarnErr {
		level = Error
		m.ErrorCount++
	} else {
		m.WarnCount++
	}
	m.Diagnostics = append(m.Diagnostics, Diagnostic{
		Level: level, Category: category, Message: message,
		Module: module, Line: line, Column: column,
		Context: m.sourceLine(module, line),
	})
}

func (m *Manager) HasErrors() bool       { return m.ErrorCount > 0 }
func (m *Manager) ReachedMaxErrors() bool { return m.ErrorCount >= m.MaxErrors }

// Print renders every collected diagnostic to stderr with source
// context and a trailing summary line.
func (m *Manager) Print() {
	for _, d := range m.Diagnostics {
		m.print(d)
	}
	if m.ErrorCount == 0 && m.WarnCount == 0 {
		return
	}
	color, reset := "", ""
	if m.UseColor {
		if m.ErrorCount > 0 {
			color = "\033[1;31m"
		} else {
			color = "\033[1;33m"
		}
		reset = "\033[0m"
	}
	fmt.Fprintf(os.Stderr, "\n%s", color)
	if m.ErrorCount > 0 {
		fmt.Fprintf(os.Stderr, "%d error(s)", m.ErrorCount)
		if m.WarnCount > 0 {
			fmt.Fprintf(os.Stderr, " and ")
		}
	}
	if m.WarnCount > 0 {
		fmt.Fprintf(os.Stderr, "%d warning(s)", m.WarnCount)
	}
	fmt.Fprintf(os.Stderr, " generated.%s\n", reset)
	if m.ReachedMaxErrors() {
		fmt.Fprintf(os.Stderr, "note: compilation stopped after %d errors\n", m.MaxErrors)
	}
}

func (m *Manager) print(d Diagnostic) {
	var levelStr, color, bold, cyan, reset string
	if m.UseColor {
		reset, bold, cyan = "\033[0m", "\033[1m", "\033[36m"
	}
	switch d.Level {
	case Error:
		levelStr = "error"
		if m.UseColor {
			color = "\033[1;31m"
		}
	case Warning:
		levelStr = "warning"
		if m.UseColor {
			color = "\033[1;33m"
		}
	case Info:
		levelStr = "info"
		if m.UseColor {
			color = "\033[1;36m"
		}
	case Hint:
		levelStr = "hint"
		if m.UseColor {
			color = "\033[1;32m"
		}
	}
	code := ""
	if d.Code != "" {
		code = fmt.Sprintf("[%s] ", d.Code)
	}
	if d.Module != "" {
		fmt.Fprintf(os.Stderr, "%s%s:%d:%d:%s %s%s%s: %s%s\n",
			bold, d.Module, d.Line, d.Column, reset, color, levelStr, reset, code, d.Message)
	} else {
		fmt.Fprintf(os.Stderr, "%s%s%s: %s%s\n", color, levelStr, reset, code, d.Message)
	}
	if d.Context != "" {
		fmt.Fprintf(os.Stderr, " %s%4d |%s %s\n", cyan, d.Line, reset, d.Context)
		if d.Column > 0 {
			padding := strings.Repeat(" ", 7+d.Column-1)
			underlineLen := 1
			if d.EndColumn > d.Column {
				underlineLen = d.EndColumn - d.Column
			}
			fmt.Fprintf(os.Stderr, " %s%s%s%s\n", padding, color, strings.Repeat("^", underlineLen), reset)
		}
	}
	if d.Suggestion != "" {
		sugg := ""
		if m.UseColor {
			sugg = "\033[1;32m"
		}
		fmt.Fprintf(os.Stderr, "   %ssuggestion:%s %s\n", sugg, reset, d.Suggestion)
	}
	for _, note := range d.Notes {
		noteColor := ""
		if m.UseColor {
			noteColor = "\033[36m"
		}
		fmt.Fprintf(os.Stderr, "   %snote:%s %s\n", noteColor, reset, note)
	}
	fmt.Fprintln(os.Stderr)
}
