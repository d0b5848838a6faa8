//go:build rp2040

package main

import (
	"context"
	"time"
)

const bootDelay = 2 * time.Second

func runContext() (context.Context, context.CancelFunc) {
	return context.WithCancel(context.Background())
}
