//go:build !rp2040

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

const bootDelay = 0

// runContext stops the simulator on Ctrl-C so the final save and the image
// write-back still happen.
func runContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
