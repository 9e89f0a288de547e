package output

import (
	"fmt"
	"math"
	"strconv"

	"doubletvote/internal/doublet"
)

// FormatFloat renders v compactly; NaN becomes NA.
func FormatFloat(v float64) string {
	if math.IsNaN(v) {
		return NA
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatCellRow returns the cell columns (no trailing newline). Vote
// columns are NA for cells outside the join.
func FormatCellRow(c doublet.Call) string {
	if !c.Joined {
		return fmt.Sprintf("%s\t%s\t%s\t%s\t%s\t%s", c.CellID, c.ClusterID, NA, NA, NA, c.Label)
	}
	return fmt.Sprintf("%s\t%s\t%d\t%d\t%d\t%s",
		c.CellID, c.ClusterID,
		c.Vote.QualityVote, c.Vote.TypeVote, c.Vote.TotalVote(),
		c.Label,
	)
}

// FormatClusterRow returns the cluster summary columns (no trailing newline).
func FormatClusterRow(s doublet.ClusterSummary) string {
	return fmt.Sprintf("%s\t%d\t%d\t%d\t%s\t%s\t%s",
		s.ClusterID, s.CellCount, s.ImbalancedCount, s.CandidateCount,
		FormatFloat(s.CandidatePercent), FormatFloat(s.FoldChange), s.Label,
	)
}
