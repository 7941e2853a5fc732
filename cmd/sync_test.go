package cmd

import (
	"os"
	"syscall"
	"testing"
	"time"
)

func TestNewSignalContextCancelledBySigterm(t *testing.T) {
	ctx, cancel := newSignalContext()
	defer cancel()
	if err := syscall.Kill(os.Getpid(), syscall.SIGTERM); err != nil {
		t.Fatal(err)
	}
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("expected SIGTERM to cancel the context")
	}
}
