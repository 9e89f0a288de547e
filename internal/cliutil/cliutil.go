package cliutil

import (
	"fmt"
	"path/filepath"
	"strings"

	"doubletvote/internal/common"
)

func hasGlobMeta(s string) bool { return strings.ContainsAny(s, "*?[") }

// ExpandPositionals expands any globs among path-like positionals. A
// "name=path" argument keeps its name when the path part is a glob that
// matches exactly one file.
func ExpandPositionals(posArgs []string) ([]string, error) {
	var out []string
	for _, a := range posArgs {
		if a == "-" {
			out = append(out, a)
			continue
		}
		name, path, named := common.CutName(a)
		if !hasGlobMeta(path) {
			out = append(out, a)
			continue
		}
		m, err := filepath.Glob(path)
		if err != nil {
			return nil, fmt.Errorf("bad glob %q: %v", path, err)
		}
		if len(m) == 0 {
			return nil, fmt.Errorf("no input matched %q", path)
		}
		if named {
			if len(m) > 1 {
				return nil, fmt.Errorf("glob %q for %s matched %d files", path, name, len(m))
			}
			out = append(out, name+"="+m[0])
			continue
		}
		out = append(out, m...)
	}
	return out, nil
}

// ParseKV splits "key=value" and rejects empty halves.
func ParseKV(s string) (key, value string, err error) {
	eq := strings.IndexByte(s, '=')
	if eq <= 0 || eq == len(s)-1 {
		return "", "", fmt.Errorf("want key=value, got %q", s)
	}
	return s[:eq], s[eq+1:], nil
}
