// Package consensus assigns the final label to every cell of the universe.
package consensus

import "doubletvote/internal/doublet"

// Label applies the decision rule to one joined cell.
func Label(rec doublet.Record, cluster doublet.Label, th doublet.Thresholds) doublet.Label {
	if cluster == doublet.Doublet {
		return doublet.Doublet
	}
	if rec.TotalVote() >= th.FinalVote {
		return doublet.Doublet
	}
	return doublet.Singlet
}

// Resolve labels every cell of universe, in universe order. Cells without a
// vote record are Unclassified. clusterOf supplies cluster ids for the
// output only and may be nil.
func Resolve(
	universe []string,
	clusterOf map[string]string,
	recs []doublet.Record,
	summaries []doublet.ClusterSummary,
	th doublet.Thresholds,
) []doublet.Call {
	byCell := make(map[string]int, len(recs))
	for i, r := range recs {
		byCell[r.CellID] = i
	}
	clusterLabel := make(map[string]doublet.Label, len(summaries))
	for _, s := range summaries {
		clusterLabel[s.ClusterID] = s.Label
	}

	out := make([]doublet.Call, len(universe))
	for i, id := range universe {
		c := doublet.Call{CellID: id, ClusterID: clusterOf[id]}
		if ri, ok := byCell[id]; ok {
			rec := recs[ri]
			c.Joined = true
			c.Vote = rec
			c.ClusterID = rec.ClusterID
			// a missing summary reads as Unclassified, which the rule treats like Singlet
			c.Label = Label(rec, clusterLabel[rec.ClusterID], th)
		}
		out[i] = c
	}
	return out
}

// Counts tallies calls per label.
func Counts(calls []doublet.Call) map[doublet.Label]int {
	m := map[doublet.Label]int{}
	for _, c := range calls {
		m[c.Label]++
	}
	return m
}
