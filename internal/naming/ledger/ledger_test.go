package ledger_test

import (
	"testing"

	"github.com/latticefs/lattice/internal/naming/ledger"
	"github.com/latticefs/lattice/internal/naming/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func node(port int) registry.Node {
	return registry.Node{StorageIP: "10.0.0.1", ClientPort: port, CommandPort: port + 1000}
}

func TestCreateAndGet(t *testing.T) {
	l := ledger.New()
	require.NoError(t, l.Create("/a.txt", node(1)))

	e, ok := l.Get("/a.txt")
	require.True(t, ok)
	assert.Equal(t, []registry.Node{node(1)}, e.Hosts)
	assert.False(t, e.Replicated)
}

func TestCreateDuplicateFails(t *testing.T) {
	l := ledger.New()
	require.NoError(t, l.Create("/a.txt", node(1)))
	require.Error(t, l.Create("/a.txt", node(1)))
}

func TestRecordReadIncrementsAccessCount(t *testing.T) {
	l := ledger.New()
	require.NoError(t, l.Create("/a.txt", node(1)))

	e, ok := l.RecordRead("/a.txt")
	require.True(t, ok)
	assert.Equal(t, 1, e.AccessCount)

	e, _ = l.RecordRead("/a.txt")
	assert.Equal(t, 2, e.AccessCount)
}

func TestResetAccessCountTo(t *testing.T) {
	l := ledger.New()
	require.NoError(t, l.Create("/a.txt", node(1)))
	_, _ = l.RecordRead("/a.txt")
	l.ResetAccessCountTo("/a.txt", 1)

	e, _ := l.Get("/a.txt")
	assert.Equal(t, 1, e.AccessCount)
}

func TestAddHostMakesReplicated(t *testing.T) {
	l := ledger.New()
	require.NoError(t, l.Create("/a.txt", node(1)))
	l.AddHost("/a.txt", node(2))

	e, _ := l.Get("/a.txt")
	assert.True(t, e.Replicated)
	assert.Equal(t, 1, e.ReplicatedCount)

	// adding the same host again is a no-op
	l.AddHost("/a.txt", node(2))
	e, _ = l.Get("/a.txt")
	assert.Equal(t, 1, e.ReplicatedCount)
}

func TestInvalidateLastRequiresReplicatedCountAboveOne(t *testing.T) {
	l := ledger.New()
	require.NoError(t, l.Create("/a.txt", node(1)))
	l.AddHost("/a.txt", node(2)) // ReplicatedCount == 1

	_, ok := l.InvalidateLast("/a.txt")
	assert.False(t, ok, "a single extra replica must never be invalidated away (floor 1)")
}

func TestInvalidateLastPopsLastHost(t *testing.T) {
	l := ledger.New()
	require.NoError(t, l.Create("/a.txt", node(1)))
	l.AddHost("/a.txt", node(2))
	l.AddHost("/a.txt", node(3)) // ReplicatedCount == 2

	popped, ok := l.InvalidateLast("/a.txt")
	require.True(t, ok)
	assert.Equal(t, node(3), popped)

	e, _ := l.Get("/a.txt")
	assert.Equal(t, []registry.Node{node(1), node(2)}, e.Hosts)
	assert.Equal(t, 1, e.ReplicatedCount)
	assert.False(t, e.Replicated, "invalidation clears Replicated even though a replica remains")
}

func TestRemoveDeletesEntry(t *testing.T) {
	l := ledger.New()
	require.NoError(t, l.Create("/a.txt", node(1)))
	l.Remove("/a.txt")

	_, ok := l.Get("/a.txt")
	assert.False(t, ok)
}
