package guard

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Pack is a YAML-loadable set of extra guard rules. Packs can only add
// rules; the builtin categories are always enforced.
type Pack struct {
	Version string     `yaml:"version"`
	Rules   []PackRule `yaml:"rules"`
}

// PackRule is one user-supplied detection rule.
type PackRule struct {
	ID         string   `yaml:"id"`
	Category   string   `yaml:"category"`
	Severity   string   `yaml:"severity,omitempty"`
	Confidence float64  `yaml:"confidence,omitempty"`
	Reason     string   `yaml:"reason"`
	Patterns   []string `yaml:"patterns"`
}

// LoadPack reads a guard pack from disk. A missing file is not an error:
// the builtin rules alone apply.
func LoadPack(path string) (*Pack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Pack{Version: "0.1"}, nil
		}
		return nil, err
	}

	var pack Pack
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("guard: parse pack %s: %w", path, err)
	}
	return &pack, nil
}

func compileRule(pr PackRule) (rule, error) {
	if len(pr.Patterns) == 0 {
		return rule{}, fmt.Errorf("guard: rule %q has no patterns", pr.ID)
	}
	severity := pr.Severity
	if severity == "" {
		severity = "block"
	}
	confidence := pr.Confidence
	if confidence == 0 {
		confidence = 0.70
	}

	compiled := make([]*regexp.Regexp, len(pr.Patterns))
	for i, p := range pr.Patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return rule{}, fmt.Errorf("guard: rule %q pattern %q: %w", pr.ID, p, err)
		}
		compiled[i] = re
	}

	return rule{
		signal: Signal{
			ID:          pr.ID,
			Category:    pr.Category,
			Severity:    severity,
			Confidence:  confidence,
			Description: pr.Reason,
		},
		patterns: compiled,
	}, nil
}
