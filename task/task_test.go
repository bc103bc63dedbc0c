package task

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yusing/goctx"
)

func TestGetTestTask(t *testing.T) {
	t1 := GetTestTask(t)
	t2 := GetTestTask(t)
	require.NotNil(t, t1)
	require.Equal(t, t1, t2)
}

func TestChildTaskCancellation(t *testing.T) {
	t.Cleanup(testCleanup)

	parent := RootTask("test", true)
	child := parent.Subtask("", true)

	go func() {
		defer child.Finish(nil)
		for {
			select {
			case <-child.Context().Done():
				return
			default:
				continue
			}
		}
	}()

	parent.Finish(nil) // should also cancel child

	select {
	case <-child.Context().Done():
		require.ErrorIs(t, child.Context().Err(), goctx.Canceled)
	default:
		t.Fatal("subTask context was not canceled as expected")
	}
}

func TestTaskStuck(t *testing.T) {
	t.Cleanup(testCleanup)
	task := RootTask("test", true)
	task.OnCancel("second", func() {
		time.Sleep(time.Second)
	})
	done := make(chan struct{})
	go func() {
		task.FinishAndWait(nil)
		close(done)
	}()
	time.Sleep(time.Millisecond * 100)
	select {
	case <-done:
		t.Fatal("task finished unexpectedly")
	default:
	}
	time.Sleep(time.Second)
	select {
	case <-done:
	default:
		t.Fatal("task did not finish")
	}
}

func TestTaskOnCancelOnFinished(t *testing.T) {
	t.Cleanup(testCleanup)
	task := RootTask("test", true)

	var shouldTrueOnCancel bool
	var shouldTrueOnFinish bool

	task.OnCancel("", func() {
		shouldTrueOnCancel = true
	})
	task.OnFinished("", func() {
		shouldTrueOnFinish = true
	})

	require.False(t, shouldTrueOnFinish)
	task.FinishAndWait(nil)
	require.True(t, shouldTrueOnCancel)
	require.True(t, shouldTrueOnFinish)
}

func TestCommonFlowWithGracefulShutdown(t *testing.T) {
	t.Cleanup(testCleanup)
	task := RootTask("test", true)

	finished := false

	task.OnFinished("", func() {
		finished = true
	})

	go func() {
		defer task.FinishAndWait(nil)
		for {
			select {
			case <-task.Context().Done():
				return
			default:
				continue
			}
		}
	}()

	require.NoError(t, gracefulShutdown(1*time.Second))
	require.True(t, finished)

	require.ErrorIs(t, goctx.Cause(task.Context()), ErrProgramExiting)
	require.ErrorIs(t, task.Context().Err(), goctx.Canceled)
	require.ErrorIs(t, task.FinishCause(), ErrProgramExiting)
}

func TestFinishCause(t *testing.T) {
	t.Cleanup(testCleanup)
	task := RootTask("test", true)
	task.Finish("because I said so")
	require.EqualError(t, task.FinishCause(), "because I said so")
	require.ErrorIs(t, task.Context().Err(), goctx.Canceled)
}

func TestSubtaskInheritsFinishCause(t *testing.T) {
	t.Cleanup(testCleanup)
	parent := RootTask("parent", true)
	child := parent.Subtask("child", false)

	parent.Finish(ErrProgramExiting)
	<-child.Context().Done()
	require.ErrorIs(t, child.FinishCause(), ErrProgramExiting)
}

func TestConcurrentSubtasks(t *testing.T) {
	t.Cleanup(testCleanup)
	parent := RootTask("parent", true)

	var wg sync.WaitGroup
	var mu sync.Mutex
	canceled := 0
	for range 32 {
		wg.Go(func() {
			child := parent.Subtask("", true)
			go func() {
				defer child.Finish(nil)
				<-child.Context().Done()
				mu.Lock()
				canceled++
				mu.Unlock()
			}()
		})
	}
	wg.Wait()

	parent.FinishAndWait(nil)
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 32, canceled)
}
