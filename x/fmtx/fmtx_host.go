//go:build !(rp2040 || rp2350)

// Package fmtx is the formatting shim used by code that also runs on the
// MCU. Host builds delegate to fmt; MCU builds use a small formatter that
// covers %s %d %x %t %v and %% with an optional width and - flag.
package fmtx

import (
	"fmt"
	"io"
)

func Sprintf(format string, a ...any) string                    { return fmt.Sprintf(format, a...) }
func Fprintf(w io.Writer, format string, a ...any) (int, error) { return fmt.Fprintf(w, format, a...) }
func Fprintln(w io.Writer, a ...any) (int, error)               { return fmt.Fprintln(w, a...) }
func Errorf(format string, a ...any) error                      { return fmt.Errorf(format, a...) }
