package writers

import (
	"fmt"
	"io"

	"doubletvote/internal/doublet"
	"doubletvote/internal/output"
)

// StartCellWriter spins up a writer goroutine for streamed cell calls.
// Only the streaming formats (text, jsonl) are accepted here.
func StartCellWriter(out io.Writer, format string, header bool, bufSize int) (chan<- doublet.Call, <-chan error) {
	if bufSize <= 0 {
		bufSize = 64
	}
	switch format {
	case output.FormatJSONL:
		return StartCellJSONLWriter(out, bufSize)
	case output.FormatText:
		in := make(chan doublet.Call, bufSize)
		errCh := make(chan error, 1)
		go func() {
			err := output.StreamCellsTSV(out, in, header)
			// keep draining so senders never block on a dead writer
			for range in {
			}
			errCh <- err
		}()
		return in, errCh
	}
	in := make(chan doublet.Call)
	errCh := make(chan error, 1)
	go func() {
		for range in {
		}
		errCh <- fmt.Errorf("unknown cell format %q (no streaming writer)", format)
	}()
	return in, errCh
}
