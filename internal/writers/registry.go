package writers

import (
	"fmt"
	"io"
	"sort"

	"doubletvote/internal/engine"
	"doubletvote/internal/output"
)

// Options carries presentation switches shared by all report writers.
type Options struct {
	Header  bool
	BufSize int
}

// ReportFunc writes the cell table of a run in one format.
type ReportFunc func(w io.Writer, res engine.Result, o Options) error

// Report writer registry (format → handler). Registration is last-wins.
var reportWriters = map[string]ReportFunc{}

func RegisterReport(format string, fn ReportFunc) { reportWriters[format] = fn }

// Formats lists the registered formats in sorted order.
func Formats() []string {
	out := make([]string, 0, len(reportWriters))
	for f := range reportWriters {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// WriteReport dispatches to the writer registered for format.
func WriteReport(format string, w io.Writer, res engine.Result, o Options) error {
	fn, ok := reportWriters[format]
	if !ok {
		return fmt.Errorf("unknown report format %q (no writer registered)", format)
	}
	return fn(w, res, o)
}

// WriteClusters writes the cluster summary table. JSON formats get the
// v1 cluster objects; anything else gets TSV.
func WriteClusters(format string, w io.Writer, res engine.Result, o Options) error {
	switch format {
	case output.FormatJSON:
		list := make([]any, 0, len(res.Clusters.Summaries))
		for _, s := range res.Clusters.Summaries {
			list = append(list, output.ToAPICluster(s))
		}
		return output.EncodePretty(w, list)
	case output.FormatJSONL:
		in, done := startClusterJSONL(w, o.BufSize)
		for _, s := range res.Clusters.Summaries {
			in <- s
		}
		close(in)
		return <-done
	}
	return output.WriteClustersTSV(w, res.Clusters.Summaries, o.Header)
}

func streamCells(format string, w io.Writer, res engine.Result, o Options) error {
	in, done := StartCellWriter(w, format, o.Header, o.BufSize)
	for _, c := range res.Calls {
		in <- c
	}
	close(in)
	return <-done
}

func init() {
	RegisterReport(output.FormatText, func(w io.Writer, res engine.Result, o Options) error {
		return streamCells(output.FormatText, w, res, o)
	})
	RegisterReport(output.FormatJSONL, func(w io.Writer, res engine.Result, o Options) error {
		return streamCells(output.FormatJSONL, w, res, o)
	})
	RegisterReport(output.FormatJSON, func(w io.Writer, res engine.Result, _ Options) error {
		return output.WriteJSON(w, res)
	})
}
