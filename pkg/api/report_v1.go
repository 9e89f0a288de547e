// pkg/api/report_v1.go
package api

// CellV1 is the stable JSON/JSONL schema for one labelled cell.
// Keep fields, names, and types stable. Add new fields only with ",omitempty".
// Vote fields are null for unclassified cells.
type CellV1 struct {
	CellID      string `json:"cell_id"`
	ClusterID   string `json:"cluster_id,omitempty"`
	QualityVote *int   `json:"quality_vote"`
	TypeVote    *int   `json:"type_vote"`
	TotalVote   *int   `json:"total_vote"`
	Label       string `json:"label"` // "singlet" | "doublet" | "unclassified"
}

// ClusterV1 is the stable schema for one cluster summary. FoldChange is null
// when the dataset-wide candidate rate is zero.
type ClusterV1 struct {
	ClusterID        string   `json:"cluster_id"`
	CellCount        int      `json:"cell_count"`
	ImbalancedCount  int      `json:"imbalanced_count"`
	CandidateCount   int      `json:"candidate_count"`
	CandidatePercent float64  `json:"candidate_percent"`
	FoldChange       *float64 `json:"fold_change"`
	Label            string   `json:"cluster_label"`
}

// ThresholdsV1 echoes the cut-offs a report was produced with.
type ThresholdsV1 struct {
	Candidate  int     `json:"candidate_threshold"`
	FoldChange float64 `json:"fold_change_threshold"`
	FinalVote  int     `json:"final_vote_threshold"`
}

// DetectorV1 summarizes one detector's calls.
type DetectorV1 struct {
	Name     string `json:"name"`
	Calls    int    `json:"calls"`
	Doublets int    `json:"doublets"`
	Joined   int    `json:"joined_doublets"`
}

// SummaryV1 holds dataset-wide figures.
type SummaryV1 struct {
	Cells                  int            `json:"cells"`
	Joined                 int            `json:"joined"`
	GlobalCandidatePercent float64        `json:"global_candidate_percent"`
	Labels                 map[string]int `json:"labels"`
	Detectors              []DetectorV1   `json:"detectors,omitempty"`
	SkippedClusters        []string       `json:"skipped_clusters,omitempty"`
}

// ReportV1 is the single-document JSON output.
type ReportV1 struct {
	Version    string       `json:"version"`
	Thresholds ThresholdsV1 `json:"thresholds"`
	Summary    SummaryV1    `json:"summary"`
	Clusters   []ClusterV1  `json:"clusters"`
	Cells      []CellV1     `json:"cells"`
}

const ReportVersion = "v1"
