// Package observe joins the per-cell source tables into one observation
// per cell.
//
// A cell is joined only when it has a cluster assignment, a call from every
// detector and an annotation score. Identifiers are passed through a
// cellid.Normalizer first so tables from different modalities line up.
package observe

import (
	"errors"
	"fmt"

	"doubletvote/internal/cellid"
	"doubletvote/internal/doublet"
)

// Assignment places one cell in one cluster.
type Assignment struct {
	CellID    string
	ClusterID string
}

// Clusters is the cluster-assignment table; it defines the cell universe.
type Clusters struct {
	Kind cellid.SourceKind
	Rows []Assignment
}

// Score is one cell's annotation confidence.
type Score struct {
	CellID string
	Value  float64
}

// Scores is the annotation score table.
type Scores struct {
	Name string
	Kind cellid.SourceKind
	Rows []Score
}

// Call is one detector's flag for one cell.
type Call struct {
	CellID string
	Flag   doublet.Flag
}

// Detector is one detector's output table.
type Detector struct {
	Name  string
	Kind  cellid.SourceKind
	Calls []Call
}

// Sources bundles everything the join needs.
type Sources struct {
	Clusters  Clusters
	Scores    Scores
	Detectors []Detector
}

var (
	ErrJoinMismatch  = errors.New("no overlapping cell ids")
	ErrDuplicateCell = errors.New("duplicate cell id after normalization")
)

// JoinMismatchError names the source that shares no identifiers with the
// sources joined before it.
type JoinMismatchError struct {
	Source string
	Rows   int
}

func (e *JoinMismatchError) Error() string {
	return fmt.Sprintf("join mismatch: source %q (%d rows) shares no cell ids with the other sources", e.Source, e.Rows)
}

func (e *JoinMismatchError) Unwrap() error { return ErrJoinMismatch }

// Joined is the result of Join.
type Joined struct {
	// Universe is every normalized cell id of the cluster table, in input order.
	Universe []string
	// Clusters maps every universe cell to its cluster.
	Clusters map[string]string
	// Observations holds the joined cells, in universe order.
	Observations []doublet.Observation
	// Detectors lists detector names in flag order.
	Detectors []string
}

// Join performs the inner join over the cluster table and every detector,
// then merges annotation scores by identifier. A nil normalizer means
// cellid.Identity.
func Join(src Sources, norm cellid.Normalizer) (Joined, error) {
	if norm == nil {
		norm = cellid.Identity{}
	}

	j := Joined{
		Universe:  make([]string, 0, len(src.Clusters.Rows)),
		Clusters:  make(map[string]string, len(src.Clusters.Rows)),
		Detectors: make([]string, len(src.Detectors)),
	}
	for _, a := range src.Clusters.Rows {
		id := norm.Normalize(a.CellID, src.Clusters.Kind)
		if _, dup := j.Clusters[id]; dup {
			return Joined{}, fmt.Errorf("clusters: %w %q", ErrDuplicateCell, id)
		}
		j.Clusters[id] = a.ClusterID
		j.Universe = append(j.Universe, id)
	}

	// alive tracks cells still in the intersection.
	alive := make(map[string]bool, len(j.Universe))
	for _, id := range j.Universe {
		alive[id] = true
	}

	flags := make([]map[string]doublet.Flag, len(src.Detectors))
	for i, d := range src.Detectors {
		j.Detectors[i] = d.Name
		m := make(map[string]doublet.Flag, len(d.Calls))
		for _, c := range d.Calls {
			id := norm.Normalize(c.CellID, d.Kind)
			if _, dup := m[id]; dup {
				return Joined{}, fmt.Errorf("detector %s: %w %q", d.Name, ErrDuplicateCell, id)
			}
			m[id] = c.Flag
		}
		if err := intersect(alive, m, d.Name, len(d.Calls)); err != nil {
			return Joined{}, err
		}
		flags[i] = m
	}

	scores := make(map[string]float64, len(src.Scores.Rows))
	for _, s := range src.Scores.Rows {
		id := norm.Normalize(s.CellID, src.Scores.Kind)
		if _, dup := scores[id]; dup {
			return Joined{}, fmt.Errorf("scores: %w %q", ErrDuplicateCell, id)
		}
		scores[id] = s.Value
	}
	name := src.Scores.Name
	if name == "" {
		name = "scores"
	}
	if err := intersect(alive, scores, name, len(src.Scores.Rows)); err != nil {
		return Joined{}, err
	}

	for _, id := range j.Universe {
		if !alive[id] {
			continue
		}
		obs := doublet.Observation{
			CellID:    id,
			ClusterID: j.Clusters[id],
			Score:     scores[id],
			Flags:     make([]doublet.Flag, len(flags)),
		}
		for i, m := range flags {
			obs.Flags[i] = m[id]
		}
		j.Observations = append(j.Observations, obs)
	}
	return j, nil
}

// intersect drops cells of alive that are missing from m. It reports a
// mismatch instead of leaving an empty intersection behind.
func intersect[V any](alive map[string]bool, m map[string]V, source string, rows int) error {
	overlap := 0
	for id, ok := range alive {
		if !ok {
			continue
		}
		if _, hit := m[id]; hit {
			overlap++
		}
	}
	if overlap == 0 {
		return &JoinMismatchError{Source: source, Rows: rows}
	}
	for id, ok := range alive {
		if !ok {
			continue
		}
		if _, hit := m[id]; !hit {
			alive[id] = false
		}
	}
	return nil
}
