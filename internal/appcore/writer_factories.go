package appcore

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"doubletvote/internal/engine"
	"doubletvote/internal/output"
	"doubletvote/internal/writers"
)

// ---------------- Report writer ----------------

type ReportWriterFactory struct {
	Format  string
	Header  bool
	BufSize int
}

func NewReportWriterFactory(format string, header bool, bufSize int) ReportWriterFactory {
	return ReportWriterFactory{Format: format, Header: header, BufSize: bufSize}
}

func (w ReportWriterFactory) opts() writers.Options {
	return writers.Options{Header: w.Header, BufSize: w.BufSize}
}

// Write emits the per-cell report.
func (w ReportWriterFactory) Write(out io.Writer, res engine.Result) error {
	return writers.WriteReport(w.Format, out, res, w.opts())
}

// ---------------- Cluster table writer ----------------

// ClusterFormat picks the cluster table format from the file extension,
// falling back to the report format.
func ClusterFormat(path, reportFormat string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return output.FormatJSON
	case ".jsonl", ".ndjson":
		return output.FormatJSONL
	case ".tsv", ".txt":
		return output.FormatText
	}
	return reportFormat
}

// StagedFile is an output written next to its destination that only
// appears under its final name on Commit.
type StagedFile struct {
	tmp, path string
}

// Commit renames the staged file into place.
func (s *StagedFile) Commit() error { return os.Rename(s.tmp, s.path) }

// Discard removes the staged file. It is a no-op after Commit.
func (s *StagedFile) Discard() { _ = os.Remove(s.tmp) }

// StageClustersFile writes the cluster summary table to a temporary file in
// the directory of path.
func (w ReportWriterFactory) StageClustersFile(path string, res engine.Result) (_ *StagedFile, err error) {
	fh, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return nil, err
	}
	st := &StagedFile{tmp: fh.Name(), path: path}
	// CreateTemp uses 0600
	_ = fh.Chmod(0o644)
	defer func() {
		if cerr := fh.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if err != nil {
			st.Discard()
		}
	}()
	if err := writers.WriteClusters(ClusterFormat(path, w.Format), fh, res, w.opts()); err != nil {
		return nil, err
	}
	return st, nil
}
