// Package table reads the per-cell tables produced by upstream tools:
// cluster assignments, annotation scores and detector calls.
//
// Each table is two columns, cell id then value, separated by a tab, a comma
// or runs of spaces. Blank lines and '#' comments are skipped, and a single
// leading header row is recognised and dropped.
package table

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"doubletvote/internal/cellid"
	"doubletvote/internal/doublet"
	"doubletvote/internal/observe"
)

var (
	ErrDuplicateCell = errors.New("duplicate cell id")
	ErrScoreRange    = errors.New("annotation score outside [0,1]")
	ErrFieldCount    = errors.New("bad field count")
)

// Row is one raw id/value pair and the line it came from.
type Row struct {
	ID    string
	Value string
	Line  int
}

// headerIDs are id-column names emitted by Seurat, ArchR, scanpy and the
// common detector wrappers.
var headerIDs = map[string]bool{
	"":              true,
	"cell":          true,
	"cells":         true,
	"cell_id":       true,
	"cell_ids":      true,
	"cellid":        true,
	"cell_name":     true,
	"cell_names":    true,
	"cell_barcode":  true,
	"cell_barcodes": true,
	"cellbarcode":   true,
	"barcode":       true,
	"barcodes":      true,
	"obs_names":     true,
	"index":         true,
}

func isHeaderID(id string) bool { return headerIDs[strings.ToLower(id)] }

// Column describes the value column of one table kind.
type Column struct {
	// Parse validates a value; nil accepts anything.
	Parse func(string) error
	// IsValue reports whether a value has the syntax of data, even when
	// Parse rejects it (e.g. a number out of range). nil means any value
	// Parse rejects is still data.
	IsValue func(string) bool
	// IsHeader reports whether a value names the column.
	IsHeader func(string) bool
}

// header decides whether the first data row is a header. A row whose value
// is well-formed data is never dropped, so bad values fail at src:1.
func (c Column) header(id, val string) bool {
	if isHeaderID(id) {
		return true
	}
	if c.Parse != nil && c.Parse(val) == nil {
		return false
	}
	if c.IsHeader != nil && c.IsHeader(strings.ToLower(val)) {
		return true
	}
	return c.IsValue != nil && !c.IsValue(val)
}

func nameIn(names ...string) func(string) bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return func(v string) bool { return set[v] }
}

var clusterColumn = Column{
	IsHeader: func(v string) bool {
		switch {
		case nameIn("cluster", "clusters", "cluster_id", "clusterid", "ident", "idents",
			"active.ident", "leiden", "louvain", "seurat_clusters")(v):
			return true
		case strings.HasSuffix(v, "_clusters"), strings.Contains(v, "_snn_res."):
			return true
		}
		return false
	},
}

var scoreColumn = Column{
	Parse: func(v string) error { _, err := parseScore(v); return err },
	IsValue: func(v string) bool {
		_, err := strconv.ParseFloat(v, 64)
		return err == nil
	},
}

var detectorColumn = Column{
	Parse: func(v string) error { _, err := doublet.ParseFlag(v); return err },
	IsHeader: func(v string) bool {
		switch {
		case nameIn("call", "calls", "label", "labels", "class", "classification",
			"prediction", "predicted", "is_doublet", "predicted_doublet", "predicted_doublets",
			"doublet_call", "doublet_class", "doublet_classification")(v):
			return true
		case strings.HasSuffix(v, ".class"), strings.HasSuffix(v, "_class"),
			strings.HasSuffix(v, ".classification"), strings.HasSuffix(v, "_classification"):
			return true
		}
		return false
	},
}

func splitFields(line string) []string {
	var f []string
	switch {
	case strings.Contains(line, "\t"):
		f = strings.Split(line, "\t")
	case strings.Contains(line, ","):
		f = strings.Split(line, ",")
	default:
		f = strings.Fields(line)
	}
	for i := range f {
		f[i] = strings.Trim(strings.TrimSpace(f[i]), `"'`)
	}
	return f
}

// ReadRows parses r into rows. The first data row is dropped when col
// recognises it as a header; every other value failing col.Parse is an
// error reported as src:line.
func ReadRows(r io.Reader, src string, col Column) ([]Row, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64<<10), 1<<20)

	var rows []Row
	seen := make(map[string]int)
	ln, data := 0, 0
	for sc.Scan() {
		ln++
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		data++
		f := splitFields(line)
		if len(f) < 2 {
			return nil, fmt.Errorf("%s:%d %w (want ≥2, got %d)", src, ln, ErrFieldCount, len(f))
		}
		id, val := f[0], f[1]
		if data == 1 && col.header(id, val) {
			continue
		}
		if col.Parse != nil {
			if err := col.Parse(val); err != nil {
				return nil, fmt.Errorf("%s:%d %w", src, ln, err)
			}
		}
		if prev, dup := seen[id]; dup {
			return nil, fmt.Errorf("%s:%d %w %q (first seen on line %d)", src, ln, ErrDuplicateCell, id, prev)
		}
		seen[id] = ln
		rows = append(rows, Row{ID: id, Value: val, Line: ln})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", src, err)
	}
	return rows, nil
}

func readPath(path string, col Column) ([]Row, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return ReadRows(rc, path, col)
}

func parseScore(v string) (float64, error) {
	x, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	if x < 0 || x > 1 || math.IsNaN(x) {
		return 0, fmt.Errorf("%w: %s", ErrScoreRange, v)
	}
	return x, nil
}

// LoadClusters reads a cell → cluster table. Its order defines the cell
// universe order.
func LoadClusters(path string, kind cellid.SourceKind) (observe.Clusters, error) {
	rows, err := readPath(path, clusterColumn)
	if err != nil {
		return observe.Clusters{}, err
	}
	out := observe.Clusters{Kind: kind, Rows: make([]observe.Assignment, 0, len(rows))}
	for _, r := range rows {
		out.Rows = append(out.Rows, observe.Assignment{CellID: r.ID, ClusterID: r.Value})
	}
	return out, nil
}

// LoadScores reads a cell → annotation score table.
func LoadScores(path string, kind cellid.SourceKind) (observe.Scores, error) {
	rows, err := readPath(path, scoreColumn)
	if err != nil {
		return observe.Scores{}, err
	}
	out := observe.Scores{Name: path, Kind: kind, Rows: make([]observe.Score, 0, len(rows))}
	for _, r := range rows {
		x, _ := parseScore(r.Value)
		out.Rows = append(out.Rows, observe.Score{CellID: r.ID, Value: x})
	}
	return out, nil
}

// LoadDetector reads one detector's cell → doublet/singlet table.
func LoadDetector(name, path string, kind cellid.SourceKind) (observe.Detector, error) {
	rows, err := readPath(path, detectorColumn)
	if err != nil {
		return observe.Detector{}, err
	}
	out := observe.Detector{Name: name, Kind: kind, Calls: make([]observe.Call, 0, len(rows))}
	for _, r := range rows {
		fl, _ := doublet.ParseFlag(r.Value)
		out.Calls = append(out.Calls, observe.Call{CellID: r.ID, Flag: fl})
	}
	return out, nil
}
