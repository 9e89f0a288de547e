package common

import (
	"path/filepath"
	"strings"
)

var tableExts = []string{".gz", ".tsv", ".csv", ".txt"}

// CutName splits "name=path". A name never holds a path separator, so
// "runs/a=b/calls.tsv" is reported as a bare path.
func CutName(arg string) (name, path string, ok bool) {
	eq := strings.IndexByte(arg, '=')
	if eq <= 0 || strings.ContainsAny(arg[:eq], `/`+string(filepath.Separator)) {
		return "", arg, false
	}
	return arg[:eq], arg[eq+1:], true
}

// SplitNamedPath splits "name=path" into its parts. A bare path is named
// after its base file name with table extensions removed.
func SplitNamedPath(arg string) (name, path string) {
	if name, path, ok := CutName(arg); ok {
		return name, path
	}
	if arg == "-" {
		return "stdin", arg
	}
	name = filepath.Base(arg)
	for trimmed := true; trimmed; {
		trimmed = false
		for _, ext := range tableExts {
			if strings.HasSuffix(strings.ToLower(name), ext) && len(name) > len(ext) {
				name = name[:len(name)-len(ext)]
				trimmed = true
			}
		}
	}
	return name, arg
}
