package common

import (
	"sort"
	"strconv"
)

// LessID orders identifiers naturally: ids that parse as integers come
// first in numeric order, everything else follows lexically.
func LessID(a, b string) bool {
	ai, aErr := strconv.Atoi(a)
	bi, bErr := strconv.Atoi(b)
	switch {
	case aErr == nil && bErr == nil:
		if ai != bi {
			return ai < bi
		}
		return a < b
	case aErr == nil:
		return true
	case bErr == nil:
		return false
	}
	return a < b
}

// SortIDs sorts ids in place with LessID.
func SortIDs(ids []string) {
	sort.SliceStable(ids, func(i, j int) bool { return LessID(ids[i], ids[j]) })
}
