package appcore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doubletvote/internal/cellid"
	"doubletvote/internal/doublet"
	"doubletvote/internal/output"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("no space left on device") }

func options(t *testing.T) (Options, string) {
	t.Helper()
	dir := t.TempDir()
	write := func(name, data string) string {
		fn := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(fn, []byte(data), 0o644))
		return fn
	}
	return Options{
		ClustersFile: write("clusters.tsv", "A\t0\nB\t0\nC\t1\n"),
		ClustersKind: cellid.RNA,
		ScoresFile:   write("scores.tsv", "A\t0.1\nB\t0.9\nC\t0.5\n"),
		ScoresKind:   cellid.RNA,
		Detectors: []Source{
			{Name: "scdbl", Path: write("scdbl.tsv", "A\tdoublet\nB\tsinglet\nC\tsinglet\n"), Kind: cellid.RNA},
		},
		Thresholds:  doublet.DefaultThresholds(),
		Threads:     1,
		Output:      output.FormatText,
		ClustersOut: filepath.Join(dir, "clusters_out.tsv"),
		Header:      true,
	}, dir
}

func TestRunWritesClustersFile(t *testing.T) {
	o, _ := options(t)
	var out bytes.Buffer
	require.Equal(t, ExitOK, Run(context.Background(), &out, io.Discard, o))

	data, err := os.ReadFile(o.ClustersOut)
	require.NoError(t, err)
	assert.Contains(t, string(data), output.ClustersHeader)
	assert.Contains(t, out.String(), output.CellsHeader)

	fi, err := os.Stat(o.ClustersOut)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), fi.Mode().Perm())
}

func TestRunFailedReportLeavesNoClustersFile(t *testing.T) {
	o, dir := options(t)
	assert.Equal(t, ExitRuntime, Run(context.Background(), failingWriter{}, io.Discard, o))

	_, err := os.Stat(o.ClustersOut)
	assert.True(t, os.IsNotExist(err), "clusters file must not exist")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3, "no staged file left behind")
}

func TestClusterFormat(t *testing.T) {
	assert.Equal(t, output.FormatJSON, ClusterFormat("c.JSON", output.FormatText))
	assert.Equal(t, output.FormatJSONL, ClusterFormat("c.ndjson", output.FormatText))
	assert.Equal(t, output.FormatText, ClusterFormat("c.tsv", output.FormatJSON))
	assert.Equal(t, output.FormatJSON, ClusterFormat("clusters", output.FormatJSON))
}
