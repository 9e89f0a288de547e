package output

import (
	"fmt"
	"io"

	"doubletvote/internal/doublet"
)

// StreamCellsTSV writes cells as they arrive on in.
func StreamCellsTSV(w io.Writer, in <-chan doublet.Call, header bool) error {
	if header {
		if _, err := fmt.Fprintln(w, CellsHeader); err != nil {
			return err
		}
	}
	for c := range in {
		if _, err := fmt.Fprintln(w, FormatCellRow(c)); err != nil {
			return err
		}
	}
	return nil
}

// WriteClustersTSV writes one line per cluster summary.
func WriteClustersTSV(w io.Writer, sums []doublet.ClusterSummary, header bool) error {
	if header {
		if _, err := fmt.Fprintln(w, ClustersHeader); err != nil {
			return err
		}
	}
	for _, s := range sums {
		if _, err := fmt.Fprintln(w, FormatClusterRow(s)); err != nil {
			return err
		}
	}
	return nil
}
