package appshell

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// RunFunc is the signature shared by every app entry point.
type RunFunc func(ctx context.Context, argv []string, stdout, stderr io.Writer) int

const exitCanceled = 130

// Main wires signals to a context, runs the app and exits with its code.
// With no arguments the app is asked for its help text.
func Main(run RunFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	argv := os.Args[1:]
	if len(argv) == 0 {
		argv = []string{"--help"}
	}

	code := run(ctx, argv, os.Stdout, os.Stderr)
	if ctx.Err() != nil && code == 0 {
		code = exitCanceled
	}

	stop()
	os.Exit(code)
}
