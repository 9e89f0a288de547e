// Package cluster computes per-cluster candidate statistics and the
// fold-change cluster label.
package cluster

import (
	"math"

	"doubletvote/internal/common"
	"doubletvote/internal/doublet"
)

// Result is the output of Aggregate.
type Result struct {
	Summaries []doublet.ClusterSummary // sorted by cluster id (natural order)
	// GlobalCandidatePercent is computed over the joined set only.
	GlobalCandidatePercent float64
	Candidates             int
	Cells                  int
	// Skipped lists clusters with no cells that were left out.
	Skipped []string
}

// BaselineDefined reports whether fold changes could be computed at all.
func (r Result) BaselineDefined() bool { return r.GlobalCandidatePercent > 0 }

type tally struct {
	cells, imbalanced, candidates int
}

// Aggregate folds the vote records into cluster summaries. Clusters listed
// in known but absent from recs are reported in Skipped.
func Aggregate(recs []doublet.Record, th doublet.Thresholds, known ...string) Result {
	var (
		res    Result
		order  []string
		counts = make(map[string]*tally)
	)
	for _, r := range recs {
		c, ok := counts[r.ClusterID]
		if !ok {
			c = &tally{}
			counts[r.ClusterID] = c
			order = append(order, r.ClusterID)
		}
		c.cells++
		if r.QualityVote >= 1 {
			c.imbalanced++
		}
		if r.TotalVote() >= th.Candidate {
			c.candidates++
			res.Candidates++
		}
	}
	res.Cells = len(recs)
	if res.Cells > 0 {
		res.GlobalCandidatePercent = 100 * float64(res.Candidates) / float64(res.Cells)
	}

	seen := make(map[string]bool, len(known))
	for _, id := range known {
		if _, ok := counts[id]; !ok && !seen[id] {
			res.Skipped = append(res.Skipped, id)
		}
		seen[id] = true
	}
	common.SortIDs(res.Skipped)

	common.SortIDs(order)
	res.Summaries = make([]doublet.ClusterSummary, 0, len(order))
	for _, id := range order {
		c := counts[id]
		if c.cells == 0 {
			res.Skipped = append(res.Skipped, id)
			continue
		}
		s := doublet.ClusterSummary{
			ClusterID:        id,
			CellCount:        c.cells,
			ImbalancedCount:  c.imbalanced,
			CandidateCount:   c.candidates,
			CandidatePercent: 100 * float64(c.candidates) / float64(c.cells),
			FoldChange:       math.NaN(),
			Label:            doublet.Singlet,
		}
		if res.BaselineDefined() {
			s.FoldChange = s.CandidatePercent / res.GlobalCandidatePercent
			if s.FoldChange >= th.FoldChange {
				s.Label = doublet.Doublet
			}
		}
		res.Summaries = append(res.Summaries, s)
	}
	return res
}
