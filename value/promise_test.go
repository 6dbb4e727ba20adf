package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromiseInitialStateIsPending(t *testing.T) {
	p := NewPromise(Undef())
	assert.True(t, p.IsPending())
	assert.False(t, p.IsFulfilled())
	assert.False(t, p.IsRejected())
}

func TestPromiseResolveSettlesAndReturnsReactions(t *testing.T) {
	p := NewPromise(Undef())
	_, pending := p.Then(Undef(), Undef(), Undef())
	assert.Nil(t, pending)

	handlers := p.Resolve(Int(7))
	require.Len(t, handlers, 1)
	assert.True(t, p.IsFulfilled())
	assert.Equal(t, int64(7), p.Result().Int64())
}

func TestPromiseResolveIsNoOpOnceSettled(t *testing.T) {
	p := NewPromise(Undef())
	p.Resolve(Int(1))
	handlers := p.Resolve(Int(2))
	assert.Nil(t, handlers)
	assert.Equal(t, int64(1), p.Result().Int64())
}

func TestPromiseRejectSettles(t *testing.T) {
	p := NewPromise(Undef())
	p.Reject(Str("boom"))
	assert.True(t, p.IsRejected())
	assert.Equal(t, "boom", p.Reason().Str())
}

func TestPromiseThenAfterSettlementReturnsHandlerImmediately(t *testing.T) {
	p := NewPromise(Undef())
	p.Resolve(Int(1))

	_, handler := p.Then(Str("cb"), Undef(), Undef())
	require.NotNil(t, handler)
	assert.NotNil(t, handler.Result)
}
