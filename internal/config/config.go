// Package config loads the optional YAML run configuration. Values given
// on the command line take precedence over the file.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"doubletvote/internal/cellid"
	"doubletvote/internal/doublet"
)

// Example is a commented starting point written by `doubletvote config`.
const Example = `# doubletvote configuration
thresholds:
  candidate: 2      # total vote for a candidate cell
  fold_change: 2.5  # cluster candidate rate / global rate for a doublet cluster
  final_vote: 3     # total vote that marks a cell doublet on its own

threads: 0          # 0 = all CPUs

# Source kinds name the identifier namespace of each table.
clusters_kind: rna
scores_kind: rna

detectors:
  # - name: scdblfinder
  #   path: scdblfinder.tsv
  #   kind: rna
  # - name: amulet
  #   path: amulet.tsv
  #   kind: atac

# Rewrite rules mapping identifiers onto the cluster table's namespace.
id_rules:
  # - kind: atac
  #   trim_suffix: "-1"
`

// Thresholds holds optional overrides; nil means "not set".
type Thresholds struct {
	Candidate  *int     `yaml:"candidate"`
	FoldChange *float64 `yaml:"fold_change"`
	FinalVote  *int     `yaml:"final_vote"`
}

// DetectorRef points at one detector table.
type DetectorRef struct {
	Name string            `yaml:"name"`
	Path string            `yaml:"path"`
	Kind cellid.SourceKind `yaml:"kind,omitempty"`
}

// File models the YAML configuration.
type File struct {
	Thresholds   Thresholds         `yaml:"thresholds"`
	Threads      *int               `yaml:"threads"`
	ClustersKind cellid.SourceKind  `yaml:"clusters_kind,omitempty"`
	ScoresKind   cellid.SourceKind  `yaml:"scores_kind,omitempty"`
	Detectors    []DetectorRef      `yaml:"detectors,omitempty"`
	IDRules      []cellid.AffixRule `yaml:"id_rules,omitempty"`
}

var ErrConfig = errors.New("invalid config")

// Load reads and validates path.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, err
	}
	return Parse(data, path)
}

// Parse decodes YAML data; src names it in errors.
func Parse(data []byte, src string) (File, error) {
	var f File
	if err := yaml.UnmarshalWithOptions(data, &f, yaml.DisallowUnknownField()); err != nil {
		return File{}, fmt.Errorf("%s: %w: %v", src, ErrConfig, err)
	}
	if err := f.validate(); err != nil {
		return File{}, fmt.Errorf("%s: %w", src, err)
	}
	return f, nil
}

func (f File) validate() error {
	if f.Threads != nil && *f.Threads < 0 {
		return fmt.Errorf("%w: threads must be ≥ 0", ErrConfig)
	}
	for i, d := range f.Detectors {
		if d.Path == "" {
			return fmt.Errorf("%w: detectors[%d] has no path", ErrConfig, i)
		}
	}
	return nil
}

// Apply overlays the thresholds that are set onto base.
func (t Thresholds) Apply(base doublet.Thresholds) doublet.Thresholds {
	if t.Candidate != nil {
		base.Candidate = *t.Candidate
	}
	if t.FoldChange != nil {
		base.FoldChange = *t.FoldChange
	}
	if t.FinalVote != nil {
		base.FinalVote = *t.FinalVote
	}
	return base
}
