package chart

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeHandle struct {
	name     string
	destroys int
	err      error
	panicMsg string
	order    *[]string
}

func (f *fakeHandle) Destroy() error {
	f.destroys++
	if f.order != nil {
		*f.order = append(*f.order, f.name)
	}
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	return f.err
}

func newTestRegistry(t *testing.T) (*Registry[*fakeHandle], *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	return NewRegistry[*fakeHandle](zap.New(core)), logs
}

func TestRegistry_ClearAllDestroysEveryHandleOnce(t *testing.T) {
	r, _ := newTestRegistry(t)
	h1 := &fakeHandle{name: "handle1"}
	h2 := &fakeHandle{name: "handle2"}

	require.NoError(t, r.Register("a", h1))
	require.NoError(t, r.Register("b", h2))
	r.ClearAll()

	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 1, h1.destroys)
	assert.Equal(t, 1, h2.destroys)
}

func TestRegistry_ReplaceDestroysPreviousFirst(t *testing.T) {
	r, _ := newTestRegistry(t)
	h1 := &fakeHandle{name: "handle1"}
	h2 := &fakeHandle{name: "handle2"}

	require.NoError(t, r.Register("a", h1))
	require.NoError(t, r.Register("a", h2))

	assert.Equal(t, 1, h1.destroys)
	assert.Equal(t, 0, h2.destroys)
	got, ok := r.Get("a")
	require.True(t, ok)
	assert.Same(t, h2, got)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_RepeatedRegisterKeepsOnlyLatest(t *testing.T) {
	r, _ := newTestRegistry(t)
	handles := make([]*fakeHandle, 5)
	for i := range handles {
		handles[i] = &fakeHandle{}
		require.NoError(t, r.Register("slot", handles[i]))
	}

	for _, h := range handles[:len(handles)-1] {
		assert.Equal(t, 1, h.destroys)
	}
	assert.Equal(t, 0, handles[len(handles)-1].destroys)
	assert.Equal(t, uint64(4), r.Stats().Replaced)
}

func TestRegistry_ClearAllOnEmptyIsNoop(t *testing.T) {
	r, logs := newTestRegistry(t)

	r.ClearAll()
	r.ForceClearAll()

	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 0, logs.Len())
}

func TestRegistry_ClearAllToleratesFailingDestroy(t *testing.T) {
	r, logs := newTestRegistry(t)
	ok1 := &fakeHandle{}
	bad := &fakeHandle{err: errors.New("canvas already gone")}
	ok2 := &fakeHandle{}

	require.NoError(t, r.Register("a", ok1))
	require.NoError(t, r.Register("b", bad))
	require.NoError(t, r.Register("c", ok2))

	assert.NotPanics(t, r.ClearAll)

	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 1, ok1.destroys)
	assert.Equal(t, 1, bad.destroys)
	assert.Equal(t, 1, ok2.destroys)
	assert.Equal(t, uint64(1), r.Stats().DestroyFailures)
	assert.Equal(t, 1, logs.FilterMessage("chart destroy failed").Len())
}

func TestRegistry_ForceClearAllRecoversPanics(t *testing.T) {
	r, logs := newTestRegistry(t)
	boom := &fakeHandle{panicMsg: "boom"}
	ok := &fakeHandle{}

	require.NoError(t, r.Register("a", boom))
	require.NoError(t, r.Register("b", ok))

	assert.NotPanics(t, r.ForceClearAll)
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 1, ok.destroys)

	cleared := logs.FilterMessage("registry cleared").All()
	require.Len(t, cleared, 1)
	assert.Equal(t, "force", cleared[0].ContextMap()["reason"])
}

func TestRegistry_ReplaceWithFailingDestroyStillReplaces(t *testing.T) {
	r, _ := newTestRegistry(t)
	bad := &fakeHandle{err: errors.New("nope")}
	next := &fakeHandle{}

	require.NoError(t, r.Register("a", bad))
	require.NoError(t, r.Register("a", next))

	got, _ := r.Get("a")
	assert.Same(t, next, got)
	assert.Equal(t, uint64(1), r.Stats().DestroyFailures)
}

func TestRegistry_RegisterAfterClearDoesNotDestroyTwice(t *testing.T) {
	r, _ := newTestRegistry(t)
	h := &fakeHandle{}
	h2 := &fakeHandle{}

	require.NoError(t, r.Register("k", h))
	r.ClearAll()
	require.NoError(t, r.Register("k", h2))

	assert.Equal(t, 1, h.destroys)
	assert.Equal(t, 0, h2.destroys)
}

func TestRegistry_SameHandleTwiceIsNoop(t *testing.T) {
	r, _ := newTestRegistry(t)
	h := &fakeHandle{}

	require.NoError(t, r.Register("k", h))
	require.NoError(t, r.Register("k", h))

	assert.Equal(t, 0, h.destroys)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_EmptyKeyRejected(t *testing.T) {
	r, _ := newTestRegistry(t)
	h := &fakeHandle{}

	err := r.Register("", h)

	assert.ErrorIs(t, err, ErrEmptyKey)
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_ClearDestroysInKeyOrder(t *testing.T) {
	r, _ := newTestRegistry(t)
	var order []string
	for _, k := range []string{"c", "a", "b"} {
		require.NoError(t, r.Register(Key(k), &fakeHandle{name: k, order: &order}))
	}

	r.ClearAll()

	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, []Key{}, r.Keys())
}

func TestRegistry_HandleUnderNewKeyMoves(t *testing.T) {
	r, _ := newTestRegistry(t)
	h := &fakeHandle{name: "moved"}
	h2 := &fakeHandle{name: "fresh"}

	require.NoError(t, r.Register("a", h))
	require.NoError(t, r.Register("b", h))
	require.NoError(t, r.Register("a", h2))

	assert.Equal(t, 0, h.destroys)
	got, ok := r.Get("b")
	require.True(t, ok)
	assert.Same(t, h, got)
	got, ok = r.Get("a")
	require.True(t, ok)
	assert.Same(t, h2, got)
	assert.Equal(t, 2, r.Len())

	r.ClearAll()
	assert.Equal(t, 1, h.destroys)
	assert.Equal(t, 1, h2.destroys)
}

func TestRegistry_ReplacedHandleCanBeRegisteredAgainWithoutDoubleDestroy(t *testing.T) {
	r, _ := newTestRegistry(t)
	h := &fakeHandle{}
	h2 := &fakeHandle{}

	require.NoError(t, r.Register("a", h))
	require.NoError(t, r.Register("a", h2))
	require.NoError(t, r.Register("b", h2))
	r.ClearAll()

	assert.Equal(t, 1, h.destroys)
	assert.Equal(t, 1, h2.destroys)
	assert.Equal(t, 0, r.Len())
}
