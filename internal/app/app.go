// internal/app/app.go
package app

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"doubletvote/internal/appcore"
	"doubletvote/internal/cellid"
	"doubletvote/internal/cli"
	"doubletvote/internal/cmdutil"
	"doubletvote/internal/config"
	"doubletvote/internal/version"
)

const long = `doubletvote: consensus doublet calling for single-cell data

Combines per-cell doublet detector calls, an annotation confidence score and
a cluster assignment into one label per cell: doublet, singlet or
unclassified (cell missing from some input).

Each detector adds one quality vote per doublet call. Within every cluster
the lowest-scoring cells get a type vote, as many as the cluster has cells
with a quality vote. Clusters whose candidate rate exceeds the dataset rate
by the fold-change threshold are labelled doublet as a whole.`

const examples = `  # two detectors, text output
  doubletvote -c clusters.tsv -s scores.tsv scdblfinder.tsv doubletfinder.tsv

  # ATAC detector whose barcodes carry a "-1" suffix
  doubletvote -c clusters.tsv -s scores.tsv -d scdbl=rna_calls.tsv \
      -d amulet=atac_calls.tsv --detector-kind amulet=atac --strip-suffix atac=-1

  # JSON report plus a cluster table, thresholds from a file
  doubletvote --config run.yaml -o json --clusters-out clusters.json`

func toCore(o cli.Options) appcore.Options {
	c := appcore.Options{
		ClustersFile: o.ClustersFile,
		ClustersKind: cellid.SourceKind(o.ClustersKind),
		ScoresFile:   o.ScoresFile,
		ScoresKind:   cellid.SourceKind(o.ScoresKind),
		IDRules:      o.IDRules,
		Thresholds:   o.Thresholds,
		Threads:      o.Threads,
		Output:       o.Output,
		ClustersOut:  o.ClustersOut,
		Header:       o.Header,
	}
	for _, d := range o.Detectors {
		c.Detectors = append(c.Detectors, appcore.Source{Name: d.Name, Path: d.Path, Kind: d.Kind})
	}
	return c
}

// NewCommand builds the root command. The exit code of a completed run is
// stored in *code; errors returned by Execute are usage errors.
func NewCommand(stdout, stderr io.Writer, code *int) *cobra.Command {
	var opts cli.Options

	root := &cobra.Command{
		Use:           "doubletvote [flags] [detector.tsv | name=detector.tsv]...",
		Short:         "Consensus doublet calling from detector votes",
		Long:          long,
		Example:       examples,
		Version:       version.Version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg *config.File
			if opts.ConfigFile != "" {
				f, err := config.Load(opts.ConfigFile)
				if err != nil {
					return err
				}
				cfg = &f
			}
			if err := cli.Finalize(cmd.Flags(), &opts, args, cfg); err != nil {
				return err
			}
			core := toCore(opts)
			core.Logger = cmdutil.NewLogger(stderr, opts.Quiet, opts.Verbose, uuid.NewString()[:8])
			*code = appcore.Run(cmd.Context(), stdout, stderr, core)
			return nil
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.Flags().SortFlags = false
	cli.Register(root.Flags(), &opts)

	root.AddCommand(&cobra.Command{
		Use:   "config",
		Short: "Print an example YAML configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), config.Example)
			return err
		},
	})

	root.SetOut(stdout)
	root.SetErr(stderr)
	return root
}

func RunContext(parent context.Context, argv []string, stdout, stderr io.Writer) int {
	code := appcore.ExitOK
	cmd := NewCommand(stdout, stderr, &code)
	cmd.SetArgs(argv)
	if err := cmd.ExecuteContext(parent); err != nil {
		_, _ = fmt.Fprintf(stderr, "error: %v\nRun 'doubletvote --help' for usage.\n", err)
		return appcore.ExitUsage
	}
	return code
}

func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}
