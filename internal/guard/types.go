// Package guard provides the pattern-based pre-filter that rejects unsafe
// natural-language queries before any external call is made.
//
// Architecture:
//
//	Guard        compiled builtin rules plus optional pack extensions
//	Pack         YAML-loadable extra patterns (extend-only)
//	screenQuery  character-level screening run before pattern matching
//
// The guard is safety-biased: false positives are acceptable, false negatives
// are mitigated downstream by the sandbox. A match short-circuits the whole
// pipeline with no side effects and no network access.
package guard

// Signal is a single threat indicator detected in a query.
type Signal struct {
	// ID is a short, unique identifier (e.g., "instruction_override").
	ID string

	// Category groups related signals (e.g., "prompt-injection").
	Category string

	// Severity indicates impact: "block" or "audit".
	Severity string

	// Confidence is 0.0-1.0 how certain the guard is about this signal.
	Confidence float64

	// Description is a human-readable explanation of why this signal fired.
	Description string
}

// Verdict is the result of a guard check.
type Verdict struct {
	// Rejected is true when the query must not proceed to the model.
	Rejected bool

	// Signals lists every indicator that fired, rejecting or not.
	Signals []Signal

	// Explanation joins the signal descriptions for display and logging.
	Explanation string
}

// SignalIDs returns the IDs of all signals in the verdict.
func (v Verdict) SignalIDs() []string {
	ids := make([]string, len(v.Signals))
	for i, s := range v.Signals {
		ids[i] = s.ID
	}
	return ids
}
