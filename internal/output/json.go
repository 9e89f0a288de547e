package output

import (
	"encoding/json"
	"io"

	"doubletvote/internal/consensus"
	"doubletvote/internal/doublet"
	"doubletvote/internal/engine"
	"doubletvote/pkg/api"
)

func intp(v int) *int { return &v }

// ToAPICell converts a domain Call to the stable wire schema (v1).
func ToAPICell(c doublet.Call) api.CellV1 {
	v := api.CellV1{
		CellID:    c.CellID,
		ClusterID: c.ClusterID,
		Label:     c.Label.String(),
	}
	if c.Joined {
		v.QualityVote = intp(c.Vote.QualityVote)
		v.TypeVote = intp(c.Vote.TypeVote)
		v.TotalVote = intp(c.Vote.TotalVote())
	}
	return v
}

// ToAPICluster converts a ClusterSummary to the stable wire schema (v1).
func ToAPICluster(s doublet.ClusterSummary) api.ClusterV1 {
	v := api.ClusterV1{
		ClusterID:        s.ClusterID,
		CellCount:        s.CellCount,
		ImbalancedCount:  s.ImbalancedCount,
		CandidateCount:   s.CandidateCount,
		CandidatePercent: s.CandidatePercent,
		Label:            s.Label.String(),
	}
	if s.FoldChangeDefined() {
		fc := s.FoldChange
		v.FoldChange = &fc
	}
	return v
}

// Summary builds the dataset-wide figures of a run.
func Summary(res engine.Result) api.SummaryV1 {
	labels := map[string]int{
		doublet.Singlet.String():      0,
		doublet.Doublet.String():      0,
		doublet.Unclassified.String(): 0,
	}
	for l, n := range consensus.Counts(res.Calls) {
		labels[l.String()] = n
	}
	s := api.SummaryV1{
		Cells:                  res.Universe,
		Joined:                 len(res.Records),
		GlobalCandidatePercent: res.Clusters.GlobalCandidatePercent,
		Labels:                 labels,
		SkippedClusters:        res.Clusters.Skipped,
	}
	for _, d := range res.Detectors {
		s.Detectors = append(s.Detectors, api.DetectorV1{Name: d.Name, Calls: d.Calls, Doublets: d.Doublets, Joined: d.Joined})
	}
	return s
}

// BuildReport converts a whole run into the single-document schema.
func BuildReport(res engine.Result) api.ReportV1 {
	rep := api.ReportV1{
		Version: api.ReportVersion,
		Thresholds: api.ThresholdsV1{
			Candidate:  res.Thresholds.Candidate,
			FoldChange: res.Thresholds.FoldChange,
			FinalVote:  res.Thresholds.FinalVote,
		},
		Summary:  Summary(res),
		Clusters: make([]api.ClusterV1, 0, len(res.Clusters.Summaries)),
		Cells:    make([]api.CellV1, 0, len(res.Calls)),
	}
	for _, s := range res.Clusters.Summaries {
		rep.Clusters = append(rep.Clusters, ToAPICluster(s))
	}
	for _, c := range res.Calls {
		rep.Cells = append(rep.Cells, ToAPICell(c))
	}
	return rep
}

// EncodePretty writes v as indented JSON to w.
func EncodePretty(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteJSON writes the whole run as one pretty-indented JSON document.
func WriteJSON(w io.Writer, res engine.Result) error {
	return EncodePretty(w, BuildReport(res))
}
