// Package stats tracks compile- and run-time metrics the way Lotus's own
// stats.go does: plain struct fields plus time.Duration, no external
// metrics library. CompilationStats covers the lex/parse/codegen
// pipeline; RuntimeStats extends that idea to the VM and collector,
// counters SPEC_FULL.md adds beyond what the teacher tracked (minor/major
// GC pauses, bytes promoted, microtask counts).
package stats

import (
	"fmt"
	"time"
)

// CompilationStats tracks one module's compile pipeline, mirroring
// Lotus's CompilationStats (stats.go): a start time, per-phase
// durations, and source/output size counters.
type CompilationStats struct {
	StartTime time.Time
	LexTime   time.Duration
	ParseTime time.Duration
	CodegenTime time.Duration
	TotalTime time.Duration

	SourceFile  string
	SourceLines int
	SourceBytes int

	TokenCount    int
	ASTNodeCount  int
	FunctionCount int
	VariableCount int
	ConstantCount int
}

func NewCompilationStats(sourceFile string) *CompilationStats {
	return &CompilationStats{StartTime: time.Now(), SourceFile: sourceFile}
}

func (cs *CompilationStats) RecordLex(d time.Duration, tokenCount int) {
	cs.LexTime = d
	cs.TokenCount = tokenCount
}

func (cs *CompilationStats) RecordParse(d time.Duration, astNodes int) {
	cs.ParseTime = d
	cs.ASTNodeCount = astNodes
}

func (cs *CompilationStats) RecordCodegen(d time.Duration, functionCount, variableCount, constantCount int) {
	cs.CodegenTime = d
	cs.FunctionCount = functionCount
	cs.VariableCount = variableCount
	cs.ConstantCount = constantCount
}

func (cs *CompilationStats) Finalize() { cs.TotalTime = time.Since(cs.StartTime) }

func (cs *CompilationStats) Print() {
	fmt.Printf("=== Compilation Statistics: %s ===\n", cs.SourceFile)
	fmt.Printf("  Lines: %d, Bytes: %d\n", cs.SourceLines, cs.SourceBytes)
	fmt.Printf("  Lex:     %s (%d tokens)\n", cs.LexTime, cs.TokenCount)
	fmt.Printf("  Parse:   %s (%d AST nodes)\n", cs.ParseTime, cs.ASTNodeCount)
	fmt.Printf("  Codegen: %s (%d functions, %d vars, %d consts)\n",
		cs.CodegenTime, cs.FunctionCount, cs.VariableCount, cs.ConstantCount)
	fmt.Printf("  Total:   %s\n", cs.TotalTime)
}

// RuntimeStats tracks one Context's execution for its lifetime: call
// counts, the collector's minor/major pause history, and microtask
// throughput — the counters SPEC_FULL.md's Ambient Stack section adds
// beyond Lotus's own compile-only CompilationStats.
type RuntimeStats struct {
	StartTime time.Time

	CallCount       int64
	OpcodesExecuted int64

	MinorGCCount   int64
	MajorGCCount   int64
	MinorGCTime    time.Duration
	MajorGCTime    time.Duration
	BytesPromoted  int64

	MicrotasksRun int64

	UncaughtExceptions int64
}

func NewRuntimeStats() *RuntimeStats {
	return &RuntimeStats{StartTime: time.Now()}
}

func (rs *RuntimeStats) RecordCall() { rs.CallCount++ }

func (rs *RuntimeStats) RecordOpcode() { rs.OpcodesExecuted++ }

func (rs *RuntimeStats) RecordMinorGC(d time.Duration, promoted int) {
	rs.MinorGCCount++
	rs.MinorGCTime += d
	rs.BytesPromoted += int64(promoted)
}

func (rs *RuntimeStats) RecordMajorGC(d time.Duration) {
	rs.MajorGCCount++
	rs.MajorGCTime += d
}

func (rs *RuntimeStats) RecordMicrotask() { rs.MicrotasksRun++ }

func (rs *RuntimeStats) RecordUncaughtException() { rs.UncaughtExceptions++ }

func (rs *RuntimeStats) Print() {
	elapsed := time.Since(rs.StartTime)
	fmt.Printf("=== Runtime Statistics ===\n")
	fmt.Printf("  Calls: %d, Opcodes: %d, Elapsed: %s\n", rs.CallCount, rs.OpcodesExecuted, elapsed)
	fmt.Printf("  Minor GC: %d (%s), Major GC: %d (%s), Promoted: %d\n",
		rs.MinorGCCount, rs.MinorGCTime, rs.MajorGCCount, rs.MajorGCTime, rs.BytesPromoted)
	fmt.Printf("  Microtasks run: %d, Uncaught exceptions: %d\n", rs.MicrotasksRun, rs.UncaughtExceptions)
}
