// Package cellid translates cell identifiers between the namespaces of
// different sequencing modalities so tables can be joined on one key.
package cellid

import "strings"

// SourceKind names the modality namespace a table's identifiers live in.
type SourceKind string

const (
	RNA  SourceKind = "rna"
	ATAC SourceKind = "atac"
)

// Normalizer maps a raw identifier from a source of the given kind onto
// the canonical namespace.
type Normalizer interface {
	Normalize(raw string, kind SourceKind) string
}

// Identity leaves identifiers untouched (whitespace aside).
type Identity struct{}

func (Identity) Normalize(raw string, _ SourceKind) string { return strings.TrimSpace(raw) }

// AffixRule rewrites identifiers of one source kind: trims a prefix and/or
// suffix when present, then adds a prefix and/or suffix. An empty Kind
// applies to every source.
type AffixRule struct {
	Kind       SourceKind `yaml:"kind"`
	TrimPrefix string     `yaml:"trim_prefix"`
	TrimSuffix string     `yaml:"trim_suffix"`
	AddPrefix  string     `yaml:"add_prefix"`
	AddSuffix  string     `yaml:"add_suffix"`
}

func (r AffixRule) Normalize(raw string, kind SourceKind) string {
	id := strings.TrimSpace(raw)
	if r.Kind != "" && r.Kind != kind {
		return id
	}
	if r.TrimPrefix != "" {
		id = strings.TrimPrefix(id, r.TrimPrefix)
	}
	if r.TrimSuffix != "" {
		id = strings.TrimSuffix(id, r.TrimSuffix)
	}
	return r.AddPrefix + id + r.AddSuffix
}

// Chain applies normalizers left to right.
type Chain []Normalizer

func (c Chain) Normalize(raw string, kind SourceKind) string {
	id := strings.TrimSpace(raw)
	for _, n := range c {
		id = n.Normalize(id, kind)
	}
	return id
}

// ForKind routes each source kind to its own normalizer; kinds without an
// entry fall back to Default (Identity when nil).
type ForKind struct {
	ByKind  map[SourceKind]Normalizer
	Default Normalizer
}

func (f ForKind) Normalize(raw string, kind SourceKind) string {
	if n, ok := f.ByKind[kind]; ok && n != nil {
		return n.Normalize(raw, kind)
	}
	if f.Default != nil {
		return f.Default.Normalize(raw, kind)
	}
	return Identity{}.Normalize(raw, kind)
}

// FromRules groups rules by source kind. Each kind gets a Chain of the
// kind-less rules and its own rules, in the order given; kinds without
// rules of their own get the kind-less rules only. No rules yields Identity.
func FromRules(rules []AffixRule) Normalizer {
	if len(rules) == 0 {
		return Identity{}
	}
	f := ForKind{ByKind: map[SourceKind]Normalizer{}}
	var shared Chain
	for _, r := range rules {
		if r.Kind == "" {
			shared = append(shared, r)
		}
	}
	if len(shared) > 0 {
		f.Default = shared
	}
	for _, r := range rules {
		if r.Kind == "" {
			continue
		}
		if _, done := f.ByKind[r.Kind]; done {
			continue
		}
		var c Chain
		for _, q := range rules {
			if q.Kind == "" || q.Kind == r.Kind {
				c = append(c, q)
			}
		}
		f.ByKind[r.Kind] = c
	}
	return f
}
