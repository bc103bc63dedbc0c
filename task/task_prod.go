//go:build !debug

package task

func panicWithDebugStack() {
	// panic already logged by invokeWithRecover; don't take the
	// process down in production
}

func logStarted(t *Task) {}

func logFinished(t *Task) {}
