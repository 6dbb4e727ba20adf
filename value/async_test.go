package value

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lotusjs/internal/bytecode"
)

func TestAsyncObjectWrapsGeneratorAndPromise(t *testing.T) {
	def := bytecode.NewFunctionDef("fetchData", 0, bytecode.FlagAsync)
	a := NewAsync(Undef(), Undef(), Undef(), def, nil, Undef())

	assert.True(t, a.Gen.IsSuspended())
	assert.True(t, a.Promise.IsPending())
	assert.NotNil(t, a.Base())

	a.Promise.Resolve(Str("done"))
	assert.True(t, a.Promise.IsFulfilled())
	assert.Equal(t, "done", a.Promise.Result().Str())
}
