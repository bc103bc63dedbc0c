package goctx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func childCount(c Context) int {
	cc, ok := parentCancelCtx(c)
	if !ok {
		return 0
	}
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return len(cc.children)
}

func TestRegistryAttachDetach(t *testing.T) {
	parent, cancelParent := WithCancel(Background())
	defer cancelParent()
	require.Equal(t, 0, childCount(parent))

	_, cancel1 := WithCancel(parent)
	_, cancel2 := WithTimeout(parent, time.Hour)
	require.Equal(t, 2, childCount(parent))

	// the owning cancel handle releases the registry slot promptly
	cancel1()
	require.Equal(t, 1, childCount(parent))
	cancel2()
	require.Equal(t, 0, childCount(parent))
}

func TestRegistryDrainedByCancel(t *testing.T) {
	parent, cancelParent := WithCancel(Background())
	for range 3 {
		_, cancel := WithCancel(parent)
		defer cancel()
	}
	require.Equal(t, 3, childCount(parent))

	cancelParent()
	cc, ok := parentCancelCtx(parent)
	require.True(t, ok)
	cc.mu.Lock()
	require.Nil(t, cc.children)
	cc.mu.Unlock()

	// attaching to a canceled parent cancels immediately, never registers
	child, cancelChild := WithCancel(parent)
	defer cancelChild()
	require.ErrorIs(t, child.Err(), Canceled)
	require.Equal(t, 0, childCount(parent))
}

func TestNearestCancelableSkipsValueNodes(t *testing.T) {
	c1, cancel := WithCancel(Background())
	defer cancel()
	v := WithValue(WithValue(c1, "a", 1), "b", 2)

	cc, ok := parentCancelCtx(v)
	require.True(t, ok)
	require.True(t, Context(cc) == c1)
}

func TestNearestCancelableEmptyRoot(t *testing.T) {
	_, ok := parentCancelCtx(Background())
	require.False(t, ok)
	_, ok = parentCancelCtx(WithValue(TODO(), "k", "v"))
	require.False(t, ok)
}

type unwrapCtx struct {
	Context
}

func (u unwrapCtx) Unwrap() Context { return u.Context }

func TestUnwrapperLinksRegistry(t *testing.T) {
	c1, cancel := WithCancel(Background())

	child, cancelChild := WithCancel(unwrapCtx{c1})
	defer cancelChild()
	require.Equal(t, 1, childCount(c1), "Unwrapper parent must register, not spawn a watcher")

	cancel()
	<-child.Done()
	require.ErrorIs(t, child.Err(), Canceled)
	require.Equal(t, 0, childCount(c1))
}

func TestPastDeadlineDoesNotRegister(t *testing.T) {
	parent, cancelParent := WithCancel(Background())
	defer cancelParent()

	child, cancel := WithDeadline(parent, time.Now().Add(-time.Second))
	defer cancel()
	require.ErrorIs(t, child.Err(), DeadlineExceeded)
	require.Equal(t, 0, childCount(parent))
}

func TestTimerReleasedOnCancel(t *testing.T) {
	c, cancel := WithTimeout(Background(), time.Hour)
	tc := c.(*timerCtx)

	tc.mu.Lock()
	require.NotNil(t, tc.timer)
	tc.mu.Unlock()

	cancel()
	tc.mu.Lock()
	require.Nil(t, tc.timer)
	tc.mu.Unlock()
}

func TestRedundantDeadlineShortCircuits(t *testing.T) {
	parent, cancel := WithTimeout(Background(), time.Hour)
	defer cancel()
	deadline, _ := parent.Deadline()

	child, cancelChild := WithDeadline(parent, deadline)
	defer cancelChild()
	_, isTimer := child.(*timerCtx)
	require.False(t, isTimer, "equal deadline must fall back to a plain cancel node")
}

func TestDoneChannelStable(t *testing.T) {
	c, cancel := WithCancel(Background())
	d := c.Done()
	require.True(t, d == c.Done())
	cancel()
	require.True(t, d == c.Done(), "done channel must not be replaced by cancel")
}

func TestCancelBeforeDoneRequested(t *testing.T) {
	c, cancel := WithCancel(Background())
	cancel()
	select {
	case <-c.Done():
	default:
		t.Fatal("done channel requested after cancel must be closed")
	}
}
