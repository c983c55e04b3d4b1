package lockmgr_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/latticefs/lattice/internal/naming/lockmgr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSharedLocksAreConcurrent(t *testing.T) {
	m := lockmgr.NewManager()
	l := m.NewLock()
	ctx := context.Background()

	require.NoError(t, l.AcquireShared(ctx))
	require.NoError(t, l.AcquireShared(ctx))

	require.NoError(t, l.ReleaseShared())
	require.NoError(t, l.ReleaseShared())
}

// TestExclusiveMutualExclusion is §8 property 3: two concurrent exclusive
// acquisitions of the same node never both succeed before either releases.
func TestExclusiveMutualExclusion(t *testing.T) {
	m := lockmgr.NewManager()
	l := m.NewLock()
	ctx := context.Background()

	require.NoError(t, l.AcquireExclusive(ctx))

	acquired := make(chan struct{})
	go func() {
		_ = l.AcquireExclusive(ctx)
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("second exclusive acquisition succeeded while first still held")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, l.ReleaseExclusive())

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second exclusive acquisition never granted after release")
	}
	require.NoError(t, l.ReleaseExclusive())
}

// TestExclusiveBeforeSharedTotalOrder is §8 property 4: if an exclusive
// request arrives first, no shared holder sees the node until it releases.
func TestExclusiveBeforeSharedTotalOrder(t *testing.T) {
	m := lockmgr.NewManager()
	l := m.NewLock()
	ctx := context.Background()

	require.NoError(t, l.AcquireExclusive(ctx))

	var sharedGranted atomic.Bool
	done := make(chan struct{})
	go func() {
		_ = l.AcquireShared(ctx)
		sharedGranted.Store(true)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	assert.False(t, sharedGranted.Load())

	require.NoError(t, l.ReleaseExclusive())
	<-done
	assert.True(t, sharedGranted.Load())
	require.NoError(t, l.ReleaseShared())
}

// TestWriterPreference is §8 property 5: once an exclusive request is
// queued, the count of shared holders is monotonically non-increasing
// until the writer runs — i.e. a shared request arriving after a queued
// writer must not be granted ahead of it.
func TestWriterPreference(t *testing.T) {
	m := lockmgr.NewManager()
	l := m.NewLock()
	ctx := context.Background()

	require.NoError(t, l.AcquireShared(ctx)) // reader 1 holds

	writerQueued := make(chan struct{})
	writerGranted := make(chan struct{})
	go func() {
		close(writerQueued)
		_ = l.AcquireExclusive(ctx)
		close(writerGranted)
	}()
	<-writerQueued
	time.Sleep(20 * time.Millisecond) // let the writer enqueue

	laterReaderGranted := make(chan struct{})
	go func() {
		_ = l.AcquireShared(ctx)
		close(laterReaderGranted)
	}()

	select {
	case <-laterReaderGranted:
		t.Fatal("later shared request bypassed a queued writer")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, l.ReleaseShared()) // reader 1 releases; writer should run

	select {
	case <-writerGranted:
	case <-time.After(time.Second):
		t.Fatal("writer never granted after readers drained")
	}

	require.NoError(t, l.ReleaseExclusive())
	<-laterReaderGranted
	require.NoError(t, l.ReleaseShared())
}

func TestRootSharedHoldersConcurrent(t *testing.T) {
	m := lockmgr.NewManager()
	root := m.NewRootLock()
	ctx := context.Background()

	require.NoError(t, root.AcquireShared(ctx))
	require.NoError(t, root.AcquireShared(ctx))
	require.NoError(t, root.ReleaseShared())
	require.NoError(t, root.ReleaseShared())
}

// TestRootWriterPreferenceScenario is §8 scenario S6: X and Y hold root
// shared, Z queues exclusive, W then queues shared (must not bypass Z);
// X and Y unlock -> Z runs, unlocks -> W runs.
func TestRootWriterPreferenceScenario(t *testing.T) {
	m := lockmgr.NewManager()
	root := m.NewRootLock()
	ctx := context.Background()

	require.NoError(t, root.AcquireShared(ctx)) // X
	require.NoError(t, root.AcquireShared(ctx)) // Y

	var order []string
	var mu sync.Mutex
	record := func(s string) {
		mu.Lock()
		order = append(order, s)
		mu.Unlock()
	}

	zGranted := make(chan struct{})
	go func() {
		_ = root.AcquireExclusive(ctx) // Z
		record("Z")
		close(zGranted)
	}()
	time.Sleep(20 * time.Millisecond)

	wGranted := make(chan struct{})
	go func() {
		_ = root.AcquireShared(ctx) // W
		record("W")
		close(wGranted)
	}()
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, root.ReleaseShared()) // X unlocks
	require.NoError(t, root.ReleaseShared()) // Y unlocks

	select {
	case <-zGranted:
	case <-time.After(time.Second):
		t.Fatal("Z never granted")
	}

	select {
	case <-wGranted:
		t.Fatal("W granted before Z released")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, root.ReleaseExclusive()) // Z unlocks
	select {
	case <-wGranted:
	case <-time.After(time.Second):
		t.Fatal("W never granted after Z released")
	}
	require.NoError(t, root.ReleaseShared())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"Z", "W"}, order)
}

func TestReleaseWithoutHoldIsInvalidArgument(t *testing.T) {
	m := lockmgr.NewManager()
	l := m.NewLock()

	err := l.ReleaseShared()
	require.Error(t, err)

	err = l.ReleaseExclusive()
	require.Error(t, err)
}
