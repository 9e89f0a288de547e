// Package doublet holds the per-cell and per-cluster records shared by the
// voting stages.
package doublet

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/cases"
)

// Label is the final three-state call for a cell. The zero value is
// Unclassified so that any cell without a joined record defaults to it.
type Label uint8

const (
	Unclassified Label = iota
	Singlet
	Doublet
)

func (l Label) String() string {
	switch l {
	case Singlet:
		return "singlet"
	case Doublet:
		return "doublet"
	default:
		return "unclassified"
	}
}

// Flag is one detector's call for one cell.
type Flag bool

const (
	FlagSinglet Flag = false
	FlagDoublet Flag = true
)

var ErrBadFlag = errors.New("unrecognized detector label")

var fold = cases.Fold()

// ParseFlag maps a detector label onto a Flag. Matching is case-insensitive
// and accepts the boolean spellings detectors commonly emit.
func ParseFlag(s string) (Flag, error) {
	switch fold.String(strings.TrimSpace(s)) {
	case "doublet", "true", "t", "1", "yes", "y":
		return FlagDoublet, nil
	case "singlet", "false", "f", "0", "no", "n":
		return FlagSinglet, nil
	}
	return FlagSinglet, fmt.Errorf("%w %q", ErrBadFlag, s)
}

// Observation is one cell after the multi-source join. Flags is aligned
// with the detector order the join was given.
type Observation struct {
	CellID    string
	ClusterID string
	Score     float64
	Flags     []Flag
}

// Record is an Observation with its votes attached.
type Record struct {
	CellID      string
	ClusterID   string
	Score       float64
	QualityVote int
	TypeVote    int
}

// TotalVote is QualityVote + TypeVote.
func (r Record) TotalVote() int { return r.QualityVote + r.TypeVote }

// ClusterSummary carries the candidate statistics of one cluster.
// FoldChange is NaN when the dataset-wide baseline is zero.
type ClusterSummary struct {
	ClusterID        string
	CellCount        int
	ImbalancedCount  int
	CandidateCount   int
	CandidatePercent float64
	FoldChange       float64
	Label            Label
}

// FoldChangeDefined reports whether a fold change could be computed.
func (s ClusterSummary) FoldChangeDefined() bool { return !math.IsNaN(s.FoldChange) }

// Call is the final label for one cell of the universe. Vote is the zero
// Record when Joined is false.
type Call struct {
	CellID    string
	ClusterID string
	Joined    bool
	Vote      Record
	Label     Label
}

// Thresholds are the tunable cut-offs of the voting rule.
type Thresholds struct {
	Candidate  int     // total_vote needed to count as a candidate
	FoldChange float64 // cluster fold change needed for a doublet cluster
	FinalVote  int     // total_vote that overrides a singlet cluster
}

// DefaultThresholds returns candidate=2, fold change=2.5, final vote=3.
func DefaultThresholds() Thresholds {
	return Thresholds{Candidate: 2, FoldChange: 2.5, FinalVote: 3}
}

var ErrInvalidThreshold = errors.New("invalid threshold")

// Validate rejects thresholds the voting rule cannot work with.
func (t Thresholds) Validate() error {
	if t.Candidate < 1 {
		return fmt.Errorf("%w: candidate threshold must be ≥ 1 (got %d)", ErrInvalidThreshold, t.Candidate)
	}
	if math.IsNaN(t.FoldChange) || math.IsInf(t.FoldChange, 0) || t.FoldChange <= 1 {
		return fmt.Errorf("%w: fold-change threshold must be a finite value > 1 (got %g)", ErrInvalidThreshold, t.FoldChange)
	}
	if t.FinalVote <= t.Candidate {
		return fmt.Errorf("%w: final vote threshold (%d) must exceed candidate threshold (%d)", ErrInvalidThreshold, t.FinalVote, t.Candidate)
	}
	return nil
}
