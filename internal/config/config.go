// internal/config/config.go

// Package config holds the YAML configuration consumed by cohort-run, which
// replaces the original fixed shell sequence with declared step inputs and
// outputs.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// StepNames is the full ordered pipeline.
var StepNames = []string{"label", "extract", "table", "match"}

// Pipeline declares one end-to-end run.
type Pipeline struct {
	Root string `yaml:"root"` // raw claim extract folder
	Jobs int    `yaml:"jobs"`

	// Label assignment
	TargetYear  int     `yaml:"target_year"`
	FamilyItems string  `yaml:"family_items"` // broad drug family code CSV
	NarrowItems string  `yaml:"narrow_items"` // first-line drug code CSV
	Copayment   float64 `yaml:"copayment"`

	// Extraction
	WindowYears int `yaml:"window_years"`

	// Matching
	Seed int64 `yaml:"seed"`

	// Step outputs (inputs of the next step)
	LabelsOut    string `yaml:"labels_out"`
	SequencesOut string `yaml:"sequences_out"`
	TableOut     string `yaml:"table_out"`
	MatchedOut   string `yaml:"matched_out"`

	// Steps to run, in StepNames order; empty means all.
	Steps []string `yaml:"steps"`
}

// Default returns the stock configuration mirroring the original study
// layout under tmp/.
func Default() Pipeline {
	return Pipeline{
		Jobs:         8,
		TargetYear:   2012,
		WindowYears:  2,
		Seed:         42,
		LabelsOut:    "tmp/labels.csv",
		SequencesOut: "tmp/sequences.csv",
		TableOut:     "tmp/metformin_CEM_table.csv",
		MatchedOut:   "tmp/matched_CEM_table.csv",
		Steps:        StepNames,
	}
}

// Load reads and validates a pipeline config file.
func Load(path string) (*Pipeline, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p := Default()
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(p.Steps) == 0 {
		p.Steps = StepNames
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &p, nil
}

// Has reports whether a step is enabled.
func (p *Pipeline) Has(step string) bool {
	for _, s := range p.Steps {
		if s == step {
			return true
		}
	}
	return false
}

// Validate checks cross-field invariants before any step runs.
func (p *Pipeline) Validate() error {
	if p.Root == "" {
		return fmt.Errorf("config: root is required")
	}
	if p.TargetYear < 2008 || p.TargetYear > 2014 {
		return fmt.Errorf("config: target_year %d outside the 2008-2014 extract range", p.TargetYear)
	}
	if p.Jobs < 0 {
		return fmt.Errorf("config: jobs must be ≥ 0")
	}
	if p.WindowYears <= 0 {
		return fmt.Errorf("config: window_years must be positive")
	}
	known := make(map[string]struct{}, len(StepNames))
	for _, s := range StepNames {
		known[s] = struct{}{}
	}
	for _, s := range p.Steps {
		if _, ok := known[s]; !ok {
			return fmt.Errorf("config: unknown step %q", s)
		}
	}
	if p.Has("label") && (p.FamilyItems == "" || p.NarrowItems == "") {
		return fmt.Errorf("config: label step needs family_items and narrow_items")
	}
	return nil
}
