package common

import "strings"

// Duplicates returns the trimmed strings that occur more than once, in
// order of their second appearance.
func Duplicates(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	var dups []string
	for _, s := range in {
		u := strings.TrimSpace(s)
		if _, ok := seen[u]; ok {
			dups = append(dups, u)
			continue
		}
		seen[u] = struct{}{}
	}
	return dups
}
