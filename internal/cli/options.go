// internal/cli/options.go
package cli

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/pflag"

	"doubletvote/internal/cellid"
	"doubletvote/internal/cliutil"
	"doubletvote/internal/common"
	"doubletvote/internal/config"
	"doubletvote/internal/doublet"
	"doubletvote/internal/output"
	"doubletvote/internal/writers"
)

// DetectorSpec names one detector table.
type DetectorSpec struct {
	Name string
	Path string
	Kind cellid.SourceKind
}

// Options holds all CLI flags and arguments.
type Options struct {
	// Input
	ClustersFile  string
	ScoresFile    string
	DetectorArgs  []string // name=path or path
	DetectorKinds []string // name=kind
	ClustersKind  string
	ScoresKind    string
	StripSuffix   []string // kind=suffix
	StripPrefix   []string // kind=prefix
	ConfigFile    string

	// Voting
	Thresholds doublet.Thresholds

	// Performance
	Threads int

	// Output
	Output      string
	ClustersOut string
	Header      bool // true unless --no-header

	// Misc
	Quiet   bool
	Verbose bool

	// Filled by Finalize.
	Detectors []DetectorSpec
	IDRules   []cellid.AffixRule

	noHeader bool
}

// Register wires all flags onto fs.
func Register(fs *pflag.FlagSet, o *Options) {
	def := doublet.DefaultThresholds()

	// Input
	fs.StringVarP(&o.ClustersFile, "clusters", "c", "", "cell → cluster table [*]")
	fs.StringVarP(&o.ScoresFile, "scores", "s", "", "cell → annotation score table, scores in [0,1] [*]")
	fs.StringArrayVarP(&o.DetectorArgs, "detector", "d", nil, "detector table as name=path or path (repeatable; positionals too)")
	fs.StringArrayVar(&o.DetectorKinds, "detector-kind", nil, "source kind of a detector as name=kind (repeatable)")
	fs.StringVar(&o.ClustersKind, "clusters-kind", string(cellid.RNA), "source kind of the cluster table")
	fs.StringVar(&o.ScoresKind, "scores-kind", string(cellid.RNA), "source kind of the score table")
	fs.StringArrayVar(&o.StripSuffix, "strip-suffix", nil, "drop an id suffix for a source kind, kind=suffix (repeatable)")
	fs.StringArrayVar(&o.StripPrefix, "strip-prefix", nil, "drop an id prefix for a source kind, kind=prefix (repeatable)")
	fs.StringVar(&o.ConfigFile, "config", "", "YAML config file; flags override it")

	// Voting
	fs.IntVar(&o.Thresholds.Candidate, "candidate-threshold", def.Candidate, "total vote for a candidate cell")
	fs.Float64Var(&o.Thresholds.FoldChange, "fold-change-threshold", def.FoldChange, "cluster fold change for a doublet cluster")
	fs.IntVar(&o.Thresholds.FinalVote, "final-vote-threshold", def.FinalVote, "total vote that marks a cell doublet on its own")

	// Performance
	fs.IntVarP(&o.Threads, "threads", "t", 0, "worker threads (0=all CPUs)")

	// Output
	fs.StringVarP(&o.Output, "output", "o", output.FormatText, "output: "+strings.Join(writers.Formats(), " | "))
	fs.StringVar(&o.ClustersOut, "clusters-out", "", "also write the cluster summary table to this file")
	fs.BoolVar(&o.noHeader, "no-header", false, "suppress header line")

	// Misc
	fs.BoolVarP(&o.Quiet, "quiet", "q", false, "warnings and errors only on stderr")
	fs.BoolVar(&o.Verbose, "verbose", false, "debug logging on stderr")
}

// Finalize merges cfg under the flags the user did not set, expands
// positionals into detectors and validates the result.
func Finalize(fs *pflag.FlagSet, o *Options, posArgs []string, cfg *config.File) error {
	o.Header = !o.noHeader

	if cfg != nil {
		merged := cfg.Thresholds.Apply(o.Thresholds)
		if !fs.Changed("candidate-threshold") {
			o.Thresholds.Candidate = merged.Candidate
		}
		if !fs.Changed("fold-change-threshold") {
			o.Thresholds.FoldChange = merged.FoldChange
		}
		if !fs.Changed("final-vote-threshold") {
			o.Thresholds.FinalVote = merged.FinalVote
		}
		if !fs.Changed("threads") && cfg.Threads != nil {
			o.Threads = *cfg.Threads
		}
		if !fs.Changed("clusters-kind") && cfg.ClustersKind != "" {
			o.ClustersKind = string(cfg.ClustersKind)
		}
		if !fs.Changed("scores-kind") && cfg.ScoresKind != "" {
			o.ScoresKind = string(cfg.ScoresKind)
		}
		o.IDRules = append(o.IDRules, cfg.IDRules...)
	}

	kinds := map[string]cellid.SourceKind{}
	for _, kv := range o.DetectorKinds {
		name, kind, err := cliutil.ParseKV(kv)
		if err != nil {
			return fmt.Errorf("--detector-kind: %w", err)
		}
		kinds[name] = cellid.SourceKind(kind)
	}
	kindOf := func(name string, fallback cellid.SourceKind) cellid.SourceKind {
		if k, ok := kinds[name]; ok {
			return k
		}
		if fallback != "" {
			return fallback
		}
		return cellid.SourceKind(o.ClustersKind)
	}

	o.Detectors = o.Detectors[:0]
	if cfg != nil {
		for _, d := range cfg.Detectors {
			name := d.Name
			if name == "" {
				name, _ = common.SplitNamedPath(d.Path)
			}
			o.Detectors = append(o.Detectors, DetectorSpec{Name: name, Path: d.Path, Kind: kindOf(name, d.Kind)})
		}
	}
	args, err := cliutil.ExpandPositionals(append(append([]string(nil), o.DetectorArgs...), posArgs...))
	if err != nil {
		return err
	}
	for _, a := range args {
		name, path := common.SplitNamedPath(a)
		o.Detectors = append(o.Detectors, DetectorSpec{Name: name, Path: path, Kind: kindOf(name, "")})
	}

	for _, pair := range []struct {
		flag string
		vals []string
		rule func(kind, v string) cellid.AffixRule
	}{
		{"--strip-suffix", o.StripSuffix, func(k, v string) cellid.AffixRule {
			return cellid.AffixRule{Kind: cellid.SourceKind(k), TrimSuffix: v}
		}},
		{"--strip-prefix", o.StripPrefix, func(k, v string) cellid.AffixRule {
			return cellid.AffixRule{Kind: cellid.SourceKind(k), TrimPrefix: v}
		}},
	} {
		for _, kv := range pair.vals {
			k, v, err := cliutil.ParseKV(kv)
			if err != nil {
				return fmt.Errorf("%s: %w", pair.flag, err)
			}
			o.IDRules = append(o.IDRules, pair.rule(k, v))
		}
	}

	return Validate(o)
}

// Validate applies the CLI invariants.
func Validate(o *Options) error {
	if o.ClustersFile == "" {
		return errors.New("--clusters is required")
	}
	if o.ScoresFile == "" {
		return errors.New("--scores is required")
	}
	if len(o.Detectors) == 0 {
		return errors.New("at least one detector table is required")
	}
	names := make([]string, len(o.Detectors))
	stdin := 0
	for i, d := range o.Detectors {
		names[i] = d.Name
		if d.Path == "-" {
			stdin++
		}
	}
	if o.ClustersFile == "-" {
		stdin++
	}
	if o.ScoresFile == "-" {
		stdin++
	}
	if stdin > 1 {
		return errors.New("only one input may be read from stdin ('-')")
	}
	if dups := common.Duplicates(names); len(dups) > 0 {
		return fmt.Errorf("duplicate detector name(s): %s", strings.Join(dups, ", "))
	}
	if o.Threads < 0 {
		return errors.New("--threads must be ≥ 0")
	}
	if !slices.Contains(writers.Formats(), o.Output) {
		return fmt.Errorf("invalid --output %q (want one of: %s)", o.Output, strings.Join(writers.Formats(), ", "))
	}
	if o.Quiet && o.Verbose {
		return errors.New("--quiet conflicts with --verbose")
	}
	return o.Thresholds.Validate()
}
