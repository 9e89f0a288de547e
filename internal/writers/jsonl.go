package writers

import (
	"encoding/json"
	"io"

	"doubletvote/internal/doublet"
	"doubletvote/internal/jsonlutil"
	"doubletvote/internal/output"
)

// StartCellJSONLWriter streams each cell as one JSON line (v1).
func StartCellJSONLWriter(out io.Writer, bufSize int) (chan<- doublet.Call, <-chan error) {
	return jsonlutil.Start[doublet.Call](out, bufSize,
		func(enc *json.Encoder, c doublet.Call) error {
			return enc.Encode(output.ToAPICell(c))
		},
		IsBrokenPipe,
	)
}

func startClusterJSONL(out io.Writer, bufSize int) (chan<- doublet.ClusterSummary, <-chan error) {
	return jsonlutil.Start[doublet.ClusterSummary](out, bufSize,
		func(enc *json.Encoder, s doublet.ClusterSummary) error {
			return enc.Encode(output.ToAPICluster(s))
		},
		IsBrokenPipe,
	)
}
