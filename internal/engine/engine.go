package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"

	"doubletvote/internal/cellid"
	"doubletvote/internal/cluster"
	"doubletvote/internal/consensus"
	"doubletvote/internal/doublet"
	"doubletvote/internal/observe"
	"doubletvote/internal/vote"
)

type Config struct {
	Thresholds doublet.Thresholds
	Normalizer cellid.Normalizer // nil = cellid.Identity
	Threads    int               // 0 = all CPUs
	Logger     *slog.Logger      // nil = discard
}

type Engine struct {
	cfg Config
	log *slog.Logger
}

func New(c Config) *Engine {
	if c.Threads <= 0 {
		c.Threads = runtime.NumCPU()
	}
	if c.Normalizer == nil {
		c.Normalizer = cellid.Identity{}
	}
	lg := c.Logger
	if lg == nil {
		lg = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{cfg: c, log: lg}
}

// DetectorStat counts one detector's doublet calls.
type DetectorStat struct {
	Name     string
	Calls    int // rows in the detector table
	Doublets int // doublet calls in the detector table
	Joined   int // doublet calls among joined cells
}

// Result is everything one pass produces.
type Result struct {
	Thresholds doublet.Thresholds
	Universe   int
	Records    []doublet.Record
	Clusters   cluster.Result
	Calls      []doublet.Call
	Detectors  []DetectorStat
}

// Run executes the full pass. Invalid thresholds and join mismatches are
// returned as errors and no partial result is produced.
func (e *Engine) Run(ctx context.Context, src observe.Sources) (Result, error) {
	th := e.cfg.Thresholds
	if err := th.Validate(); err != nil {
		return Result{}, err
	}

	joined, err := observe.Join(src, e.cfg.Normalizer)
	if err != nil {
		return Result{}, err
	}
	e.log.Debug("joined sources",
		"universe", len(joined.Universe),
		"joined", len(joined.Observations),
		"detectors", len(joined.Detectors))

	recs, err := vote.Compute(ctx, joined.Observations, e.cfg.Threads)
	if err != nil {
		return Result{}, fmt.Errorf("votes: %w", err)
	}

	agg := cluster.Aggregate(recs, th, knownClusters(joined)...)
	for _, id := range agg.Skipped {
		e.log.Info("cluster has no joined cells; left out of summary", "cluster", id)
	}
	if len(agg.Summaries) > 0 && !agg.BaselineDefined() {
		e.log.Info("no candidate cells in the joined set; fold change undefined, clusters default to singlet",
			"candidate_threshold", th.Candidate)
	}

	calls := consensus.Resolve(joined.Universe, joined.Clusters, recs, agg.Summaries, th)

	return Result{
		Thresholds: th,
		Universe:   len(joined.Universe),
		Records:    recs,
		Clusters:   agg,
		Calls:      calls,
		Detectors:  detectorStats(src.Detectors, joined),
	}, nil
}

func knownClusters(j observe.Joined) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, id := range j.Universe {
		c := j.Clusters[id]
		if !seen[c] {
			seen[c] = true
			ids = append(ids, c)
		}
	}
	return ids
}

func detectorStats(dets []observe.Detector, j observe.Joined) []DetectorStat {
	out := make([]DetectorStat, len(dets))
	for i, d := range dets {
		st := DetectorStat{Name: d.Name, Calls: len(d.Calls)}
		for _, c := range d.Calls {
			if c.Flag == doublet.FlagDoublet {
				st.Doublets++
			}
		}
		for _, o := range j.Observations {
			if i < len(o.Flags) && o.Flags[i] == doublet.FlagDoublet {
				st.Joined++
			}
		}
		out[i] = st
	}
	return out
}
