package diagnostics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddErrorIncrementsCount(t *testing.T) {
	m := NewManager()
	m.AddError(CategorySemantic, "duplicate declaration of x", "main.js", 3, 5)
	assert.Equal(t, 1, m.ErrorCount)
	assert.True(t, m.HasErrors())
}

func TestAddErrorStopsAtMaxErrors(t *testing.T) {
	m := NewManager()
	m.MaxErrors = 2
	for i := 0; i < 5; i++ {
		m.AddError(CategorySyntax, "bad token", "main.js", 1, 1)
	}
	assert.Equal(t, 2, m.ErrorCount)
	assert.True(t, m.ReachedMaxErrors())
	assert.Len(t, m.Diagnostics, 2)
}

func TestAddWarningSuppressed(t *testing.T) {
	m := NewManager()
	m.Suppress = true
	m.AddWarning(CategoryGeneral, "unused variable", "main.js", 1, 1)
	assert.Equal(t, 0, m.WarnCount)
	assert.Empty(t, m.Diagnostics)
}

func TestAddWarningTreatedAsErrorWhenConfigured(t *testing.T) {
	m := NewManager()
	m.TreatWarnErr = true
	m.AddWarning(CategoryGeneral, "unused variable", "main.js", 1, 1)
	assert.Equal(t, 1, m.ErrorCount)
	assert.Equal(t, 0, m.WarnCount)
	assert.True(t, m.HasErrors())
}

func TestSourceLineContextCaptured(t *testing.T) {
	m := NewManager()
	m.SetSource("main.js", "let x = 1;\nlet x = 2;\n")
	m.AddError(CategorySemantic, "duplicate declaration", "main.js", 2, 5)
	assert.Equal(t, "let x = 2;", m.Diagnostics[0].Context)
}
