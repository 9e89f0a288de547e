package cli

import (
	"io"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doubletvote/internal/cellid"
	"doubletvote/internal/config"
	"doubletvote/internal/doublet"
)

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// parseArgs registers, parses and finalizes without a config file.
func parseArgs(argv []string) (Options, error) {
	fs := newFlagSet()
	var o Options
	Register(fs, &o)
	if err := fs.Parse(argv); err != nil {
		return o, err
	}
	err := Finalize(fs, &o, fs.Args(), nil)
	return o, err
}

func mustParse(t *testing.T, args ...string) Options {
	t.Helper()
	opts, err := parseArgs(args)
	require.NoError(t, err)
	return opts
}

func TestMinimalOK(t *testing.T) {
	o := mustParse(t, "--clusters", "c.tsv", "--scores", "s.tsv", "scdbl.tsv")
	assert.Equal(t, doublet.DefaultThresholds(), o.Thresholds)
	assert.True(t, o.Header)
	require.Len(t, o.Detectors, 1)
	assert.Equal(t, DetectorSpec{Name: "scdbl", Path: "scdbl.tsv", Kind: cellid.RNA}, o.Detectors[0])
}

func TestDetectorFlagsAndKinds(t *testing.T) {
	o := mustParse(t,
		"-c", "c.tsv", "-s", "s.tsv",
		"-d", "amulet=calls/a.tsv", "-d", "scdbl.tsv",
		"--detector-kind", "amulet=atac",
		"--strip-suffix", "atac=-1",
		"--no-header",
	)
	require.Len(t, o.Detectors, 2)
	assert.Equal(t, DetectorSpec{Name: "amulet", Path: "calls/a.tsv", Kind: cellid.ATAC}, o.Detectors[0])
	assert.Equal(t, cellid.RNA, o.Detectors[1].Kind)
	assert.Equal(t, []cellid.AffixRule{{Kind: cellid.ATAC, TrimSuffix: "-1"}}, o.IDRules)
	assert.False(t, o.Header)
}

func TestThresholdFlags(t *testing.T) {
	o := mustParse(t, "-c", "c", "-s", "s", "d.tsv",
		"--candidate-threshold", "1", "--fold-change-threshold", "3", "--final-vote-threshold", "4")
	assert.Equal(t, doublet.Thresholds{Candidate: 1, FoldChange: 3, FinalVote: 4}, o.Thresholds)
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing clusters", []string{"-s", "s", "d.tsv"}},
		{"missing scores", []string{"-c", "c", "d.tsv"}},
		{"no detectors", []string{"-c", "c", "-s", "s"}},
		{"duplicate detector names", []string{"-c", "c", "-s", "s", "a/x.tsv", "b/x.tsv"}},
		{"bad output", []string{"-c", "c", "-s", "s", "d.tsv", "-o", "xml"}},
		{"negative threads", []string{"-c", "c", "-s", "s", "d.tsv", "-t", "-1"}},
		{"final vote not above candidate", []string{"-c", "c", "-s", "s", "d.tsv", "--final-vote-threshold", "2"}},
		{"fold change at one", []string{"-c", "c", "-s", "s", "d.tsv", "--fold-change-threshold", "1"}},
		{"two stdin inputs", []string{"-c", "-", "-s", "-", "d.tsv"}},
		{"bad strip rule", []string{"-c", "c", "-s", "s", "d.tsv", "--strip-suffix", "atac"}},
		{"quiet and verbose", []string{"-c", "c", "-s", "s", "d.tsv", "-q", "--verbose"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseArgs(tt.args)
			require.Error(t, err)
		})
	}
}

func TestFinalizeConfigUnderFlags(t *testing.T) {
	cfg, err := config.Parse([]byte(`
thresholds:
  candidate: 1
  fold_change: 4
threads: 2
scores_kind: atac
detectors:
  - name: amulet
    path: amulet.tsv
    kind: atac
id_rules:
  - kind: atac
    trim_suffix: "-1"
`), "cfg")
	require.NoError(t, err)

	fs := newFlagSet()
	var o Options
	Register(fs, &o)
	require.NoError(t, fs.Parse([]string{"-c", "c", "-s", "s", "--fold-change-threshold", "2", "scdbl.tsv"}))
	require.NoError(t, Finalize(fs, &o, fs.Args(), &cfg))

	assert.Equal(t, 1, o.Thresholds.Candidate)
	assert.InDelta(t, 2.0, o.Thresholds.FoldChange, 1e-12, "flag wins over config")
	assert.Equal(t, 3, o.Thresholds.FinalVote)
	assert.Equal(t, 2, o.Threads)
	assert.Equal(t, "atac", o.ScoresKind)
	require.Len(t, o.Detectors, 2)
	assert.Equal(t, "amulet", o.Detectors[0].Name)
	assert.Equal(t, cellid.ATAC, o.Detectors[0].Kind)
	assert.Equal(t, "scdbl", o.Detectors[1].Name)
	assert.Len(t, o.IDRules, 1)
}
