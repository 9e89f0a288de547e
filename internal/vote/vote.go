// Package vote turns joined observations into per-cell quality and type
// votes.
package vote

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"doubletvote/internal/doublet"
)

// QualityVote counts the detectors that called the cell a doublet.
func QualityVote(flags []doublet.Flag) int {
	n := 0
	for _, f := range flags {
		if f == doublet.FlagDoublet {
			n++
		}
	}
	return n
}

// Groups returns, per cluster, the indices of obs belonging to it, in input
// order, along with the cluster ids in order of first appearance.
func Groups(obs []doublet.Observation) (order []string, idx map[string][]int) {
	idx = make(map[string][]int)
	for i, o := range obs {
		if _, ok := idx[o.ClusterID]; !ok {
			order = append(order, o.ClusterID)
		}
		idx[o.ClusterID] = append(idx[o.ClusterID], i)
	}
	return order, idx
}

// Compute derives the votes of every observation. Within each cluster the
// imbalanced_count cells with the lowest annotation score get type_vote=1;
// ties keep input order. Clusters are ranked concurrently, at most limit at
// a time (limit ≤ 0 means no limit). The result is in input order.
func Compute(ctx context.Context, obs []doublet.Observation, limit int) ([]doublet.Record, error) {
	out := make([]doublet.Record, len(obs))
	for i, o := range obs {
		out[i] = doublet.Record{
			CellID:      o.CellID,
			ClusterID:   o.ClusterID,
			Score:       o.Score,
			QualityVote: QualityVote(o.Flags),
		}
	}

	order, groups := Groups(obs)
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, cid := range order {
		members := groups[cid]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rankCluster(out, members)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// rankCluster writes TypeVote for the cluster members of recs. Each call
// touches only its own indices.
func rankCluster(recs []doublet.Record, members []int) {
	imbalanced := 0
	for _, i := range members {
		if recs[i].QualityVote >= 1 {
			imbalanced++
		}
	}
	imbalanced = clamp(imbalanced, 0, len(members))

	ranked := append([]int(nil), members...)
	sort.SliceStable(ranked, func(a, b int) bool {
		return recs[ranked[a]].Score < recs[ranked[b]].Score
	})
	for pos, i := range ranked {
		if pos < imbalanced {
			recs[i].TypeVote = 1
		} else {
			recs[i].TypeVote = 0
		}
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
