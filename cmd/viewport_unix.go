//go:build unix

package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// onResize runs fn on every SIGWINCH until ctx is done.
func onResize(ctx context.Context, fn func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGWINCH)
	go func() {
		defer signal.Stop(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ch:
				fn()
			}
		}
	}()
}
