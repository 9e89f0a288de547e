package cluster

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doubletvote/internal/doublet"
)

// records builds n cells of cluster cid, the first cand of which have a
// total vote of 2 (quality 1, type 1).
func records(cid string, n, cand int) []doublet.Record {
	out := make([]doublet.Record, n)
	for i := range out {
		out[i] = doublet.Record{CellID: fmt.Sprintf("%s-%d", cid, i), ClusterID: cid}
		if i < cand {
			out[i].QualityVote, out[i].TypeVote = 1, 1
		}
	}
	return out
}

func TestAggregateFoldChangeExample(t *testing.T) {
	// cluster "hot": 30/100 candidates; "cold": 0/200; global 30/300 = 10%
	var recs []doublet.Record
	recs = append(recs, records("hot", 100, 30)...)
	recs = append(recs, records("cold", 200, 0)...)

	res := Aggregate(recs, doublet.DefaultThresholds())
	assert.InDelta(t, 10.0, res.GlobalCandidatePercent, 1e-9)
	assert.Equal(t, 30, res.Candidates)
	assert.Equal(t, 300, res.Cells)

	require.Len(t, res.Summaries, 2)
	cold, hot := res.Summaries[0], res.Summaries[1]
	require.Equal(t, "hot", hot.ClusterID)
	assert.Equal(t, 100, hot.CellCount)
	assert.Equal(t, 30, hot.ImbalancedCount)
	assert.Equal(t, 30, hot.CandidateCount)
	assert.InDelta(t, 30.0, hot.CandidatePercent, 1e-9)
	assert.InDelta(t, 3.0, hot.FoldChange, 1e-9)
	assert.Equal(t, doublet.Doublet, hot.Label)

	assert.InDelta(t, 0.0, cold.FoldChange, 1e-9)
	assert.Equal(t, doublet.Singlet, cold.Label)
}

func TestAggregateZeroBaseline(t *testing.T) {
	res := Aggregate(records("0", 10, 0), doublet.DefaultThresholds())
	require.Len(t, res.Summaries, 1)
	assert.False(t, res.BaselineDefined())
	assert.False(t, res.Summaries[0].FoldChangeDefined())
	assert.Equal(t, doublet.Singlet, res.Summaries[0].Label)
}

func TestAggregateCandidateThreshold(t *testing.T) {
	recs := []doublet.Record{
		{CellID: "a", ClusterID: "0", QualityVote: 1},
		{CellID: "b", ClusterID: "0", QualityVote: 1, TypeVote: 1},
		{CellID: "c", ClusterID: "0"},
		{CellID: "d", ClusterID: "0", QualityVote: 3, TypeVote: 1},
	}
	th := doublet.DefaultThresholds()
	res := Aggregate(recs, th)
	assert.Equal(t, 2, res.Summaries[0].CandidateCount)
	assert.Equal(t, 3, res.Summaries[0].ImbalancedCount)
	assert.InDelta(t, 50.0, res.GlobalCandidatePercent, 1e-9)

	th.Candidate = 1
	res = Aggregate(recs, th)
	assert.Equal(t, 3, res.Summaries[0].CandidateCount)
}

func TestAggregateSkipsEmptyKnownClusters(t *testing.T) {
	res := Aggregate(records("1", 4, 1), doublet.DefaultThresholds(), "1", "7", "3", "7")
	assert.Equal(t, []string{"3", "7"}, res.Skipped)
	require.Len(t, res.Summaries, 1)
	assert.Equal(t, "1", res.Summaries[0].ClusterID)
}

func TestAggregateNaturalOrder(t *testing.T) {
	var recs []doublet.Record
	for _, id := range []string{"10", "2", "1"} {
		recs = append(recs, records(id, 1, 0)...)
	}
	res := Aggregate(recs, doublet.DefaultThresholds())
	ids := []string{}
	for _, s := range res.Summaries {
		ids = append(ids, s.ClusterID)
	}
	assert.Equal(t, []string{"1", "2", "10"}, ids)
}

func TestAggregateFoldChangeThresholdMonotone(t *testing.T) {
	var recs []doublet.Record
	for i := 0; i < 12; i++ {
		recs = append(recs, records(fmt.Sprint(i), 20, i)...)
	}
	prev := -1
	for _, fc := range []float64{1.01, 1.5, 2, 2.5, 3, 4, 10} {
		th := doublet.DefaultThresholds()
		th.FoldChange = fc
		n := 0
		for _, s := range Aggregate(recs, th).Summaries {
			if s.Label == doublet.Doublet {
				n++
			}
		}
		if prev >= 0 {
			assert.LessOrEqual(t, n, prev, "fold change %g", fc)
		}
		prev = n
	}
}

func TestAggregateEmpty(t *testing.T) {
	res := Aggregate(nil, doublet.DefaultThresholds())
	assert.Empty(t, res.Summaries)
	assert.Zero(t, res.GlobalCandidatePercent)
}
