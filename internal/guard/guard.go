package guard

import (
	"regexp"
	"strings"
)

// Guard evaluates queries against the builtin threat rules plus any pack
// extensions. Construction compiles every pattern once.
type Guard struct {
	rules []rule
}

// rule is a single detection pattern.
type rule struct {
	signal   Signal
	patterns []*regexp.Regexp
}

// New creates a guard with the builtin rules and the extra rules from the
// pack, if any. The builtin set is always present; packs extend, never
// replace.
func New(pack *Pack) *Guard {
	g := &Guard{rules: builtinRules()}
	if pack != nil {
		for _, extra := range pack.Rules {
			compiled, err := compileRule(extra)
			if err != nil {
				// A malformed pack pattern must not weaken the guard;
				// skip it and keep the builtin set intact.
				continue
			}
			g.rules = append(g.rules, compiled)
		}
	}
	return g
}

// Check evaluates a query. It runs the character-level screen first, then
// the pattern rules against the lowercased sanitized text. Any blocking
// signal rejects.
func (g *Guard) Check(query string) Verdict {
	signals, sanitized := screenQuery(query)

	// Pattern rules match against the sanitized text so invisible characters
	// cannot split a token and look-alike letters cannot disguise one.
	lower := strings.ToLower(sanitized)
	for _, r := range g.rules {
		for _, p := range r.patterns {
			if p.MatchString(lower) {
				signals = append(signals, r.signal)
				break
			}
		}
	}

	rejected := false
	var parts []string
	for _, s := range signals {
		if s.Severity == "block" {
			rejected = true
		}
		parts = append(parts, s.Description)
	}

	return Verdict{
		Rejected:    rejected,
		Signals:     signals,
		Explanation: strings.Join(parts, "; "),
	}
}

// builtinRules returns the fixed threat categories. All patterns are matched
// against lowercased input, so the expressions themselves stay lowercase.
func builtinRules() []rule {
	return []rule{
		{
			signal: Signal{
				ID:          "instruction_override",
				Category:    "prompt-injection",
				Severity:    "block",
				Confidence:  0.85,
				Description: "Query contains instruction override language (e.g., 'ignore previous instructions')",
			},
			patterns: compilePatterns([]string{
				`ignore\s+.*instruction`,
				`disregard\s+.*rules`,
				`forget\s+.*(instruction|rules)`,
				`system\s*prompt`,
			}),
		},
		{
			signal: Signal{
				ID:          "meta_programming",
				Category:    "code-execution",
				Severity:    "block",
				Confidence:  0.80,
				Description: "Query contains module import syntax or dynamic evaluation constructs",
			},
			patterns: compilePatterns([]string{
				`\bimport\s+`,
				`\b(eval|exec)\s*\(`,
				`\bload\s*\(`,
				`__import__`,
			}),
		},
		{
			signal: Signal{
				ID:          "process_filesystem",
				Category:    "capability-escape",
				Severity:    "block",
				Confidence:  0.85,
				Description: "Query contains process or filesystem access tokens",
			},
			patterns: compilePatterns([]string{
				`subprocess`,
				`\bopen\s*\(`,
				`os\.system`,
				`\bpopen\b`,
			}),
		},
		{
			signal: Signal{
				ID:          "dunder_access",
				Category:    "capability-escape",
				Severity:    "block",
				Confidence:  0.75,
				Description: "Query contains reflection-style dunder name access",
			},
			patterns: compilePatterns([]string{
				`__`,
			}),
		},
		{
			signal: Signal{
				ID:          "package_install",
				Category:    "supply-chain",
				Severity:    "block",
				Confidence:  0.85,
				Description: "Query contains package installation phrasing",
			},
			patterns: compilePatterns([]string{
				`pip3?\s+install`,
				`npm\s+install`,
				`go\s+get\s+`,
			}),
		},
	}
}

func compilePatterns(patterns []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		compiled[i] = regexp.MustCompile(p)
	}
	return compiled
}
