// internal/runutil/runutil.go
package runutil

import (
	"fmt"
	"runtime"

	"doubletvote/internal/cellid"
)

// EffectiveThreads maps 0 (or less) to the number of CPUs.
func EffectiveThreads(n int) int {
	if n <= 0 {
		return runtime.NumCPU()
	}
	return n
}

// KindWarnings flags source kinds that differ from the cluster table's kind
// while no identifier rule targets them, a common cause of join mismatches.
func KindWarnings(clustersKind cellid.SourceKind, sources map[string]cellid.SourceKind, rules []cellid.AffixRule) []string {
	covered := map[cellid.SourceKind]bool{}
	for _, r := range rules {
		if r.Kind == "" {
			return nil
		}
		covered[r.Kind] = true
	}
	var warns []string
	for _, name := range sortedKeys(sources) {
		k := sources[name]
		if k != clustersKind && !covered[k] {
			warns = append(warns, fmt.Sprintf("source %s has kind %q but clusters are %q and no id rule targets %q", name, k, clustersKind, k))
		}
	}
	return warns
}
