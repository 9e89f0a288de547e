// internal/appcore/core.go
package appcore

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"doubletvote/internal/cellid"
	"doubletvote/internal/cmdutil"
	"doubletvote/internal/doublet"
	"doubletvote/internal/engine"
	"doubletvote/internal/observe"
	"doubletvote/internal/output"
	"doubletvote/internal/runutil"
	"doubletvote/internal/table"
	"doubletvote/internal/writers"
)

// Exit codes shared by all entry points.
const (
	ExitOK       = 0
	ExitUsage    = 2
	ExitRuntime  = 3
	ExitCanceled = 130
)

// Source is one detector table to load.
type Source struct {
	Name string
	Path string
	Kind cellid.SourceKind
}

type Options struct {
	ClustersFile string
	ClustersKind cellid.SourceKind
	ScoresFile   string
	ScoresKind   cellid.SourceKind
	Detectors    []Source
	IDRules      []cellid.AffixRule

	Thresholds doublet.Thresholds
	Threads    int

	Output      string
	ClustersOut string
	Header      bool

	Logger *slog.Logger
}

// Load reads every input table concurrently. The first failure cancels the
// remaining loads.
func Load(ctx context.Context, o Options) (observe.Sources, error) {
	if err := ctx.Err(); err != nil {
		return observe.Sources{}, err
	}
	var src observe.Sources
	src.Detectors = make([]observe.Detector, len(o.Detectors))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runutil.EffectiveThreads(o.Threads))
	g.Go(func() error {
		c, err := table.LoadClusters(o.ClustersFile, o.ClustersKind)
		src.Clusters = c
		return err
	})
	g.Go(func() error {
		s, err := table.LoadScores(o.ScoresFile, o.ScoresKind)
		src.Scores = s
		return err
	})
	for i, d := range o.Detectors {
		i, d := i, d
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			det, err := table.LoadDetector(d.Name, d.Path, d.Kind)
			if err != nil {
				return fmt.Errorf("detector %s: %w", d.Name, err)
			}
			src.Detectors[i] = det
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return observe.Sources{}, err
	}
	return src, nil
}

// Run loads the inputs, runs the engine and writes the reports. It returns
// the process exit code; nothing is written to stdout on a fatal error.
func Run(parent context.Context, stdout, stderr io.Writer, o Options) int {
	lg := o.Logger
	if lg == nil {
		lg = slog.New(slog.NewTextHandler(stderr, nil))
	}

	kinds := map[string]cellid.SourceKind{"scores": o.ScoresKind}
	for _, d := range o.Detectors {
		kinds[d.Name] = d.Kind
	}
	for _, w := range runutil.KindWarnings(o.ClustersKind, kinds, o.IDRules) {
		cmdutil.Warnf(lg, "ids may not join: %s", w)
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	src, err := Load(ctx, o)
	if err != nil {
		return fail(lg, err)
	}

	eng := engine.New(engine.Config{
		Thresholds: o.Thresholds,
		Normalizer: cellid.FromRules(o.IDRules),
		Threads:    runutil.EffectiveThreads(o.Threads),
		Logger:     lg,
	})
	res, err := eng.Run(ctx, src)
	if err != nil {
		return fail(lg, err)
	}
	logSummary(lg, res)

	wf := NewReportWriterFactory(o.Output, o.Header, runutil.EffectiveThreads(o.Threads)*4)
	var staged *StagedFile
	if o.ClustersOut != "" {
		if staged, err = wf.StageClustersFile(o.ClustersOut, res); err != nil {
			return fail(lg, err)
		}
		defer staged.Discard()
	}

	outw := bufio.NewWriter(stdout)
	werr := wf.Write(outw, res)
	if werr == nil {
		werr = outw.Flush()
	}
	if werr != nil && !writers.IsBrokenPipe(werr) {
		return fail(lg, werr)
	}
	if staged != nil {
		if err := staged.Commit(); err != nil {
			return fail(lg, err)
		}
	}
	return ExitOK
}

func fail(lg *slog.Logger, err error) int {
	if errors.Is(err, context.Canceled) {
		return ExitCanceled
	}
	var jm *observe.JoinMismatchError
	if errors.As(err, &jm) {
		lg.Error("cannot join inputs; check source kinds and id rules", "source", jm.Source, "rows", jm.Rows)
	}
	if errors.Is(err, doublet.ErrInvalidThreshold) {
		lg.Error(err.Error())
		return ExitUsage
	}
	lg.Error(err.Error())
	return ExitRuntime
}

func logSummary(lg *slog.Logger, res engine.Result) {
	s := output.Summary(res)
	lg.Info("consensus complete",
		"cells", s.Cells,
		"joined", s.Joined,
		"global_candidate_percent", output.FormatFloat(s.GlobalCandidatePercent),
		"doublet", s.Labels[doublet.Doublet.String()],
		"singlet", s.Labels[doublet.Singlet.String()],
		"unclassified", s.Labels[doublet.Unclassified.String()],
		"clusters", len(res.Clusters.Summaries))
	for _, d := range s.Detectors {
		lg.Info("detector", "name", d.Name, "calls", d.Calls, "doublets", d.Doublets, "joined_doublets", d.Joined)
	}
}
