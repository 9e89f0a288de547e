package output

// Canonical header rows for text/TSV outputs. Keep these as the single
// source of truth; all writers should use them.
const (
	CellsHeader    = "cell_id\tcluster_id\tquality_vote\ttype_vote\ttotal_vote\tlabel"
	ClustersHeader = "cluster_id\tcell_count\timbalanced_count\tcandidate_count\tcandidate_percent\tfold_change\tcluster_label"
)

// Output formats.
const (
	FormatText  = "text"
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
)

// NA marks a value that is undefined for the row.
const NA = "NA"
