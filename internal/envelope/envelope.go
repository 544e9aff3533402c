// Package envelope parses the structured JSON reply the model is asked to
// produce. The model frequently wraps the object in markdown fences or
// chatter, so extraction walks to the first brace and decodes one value
// rather than trusting the reply to be clean JSON.
package envelope

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Status values the model may return. OFFLINE asks the caller to answer
// with the deterministic analysis instead of generated code.
const (
	StatusValid   = "VALID"
	StatusInvalid = "INVALID"
	StatusOffline = "OFFLINE"
)

// maxInsights caps the observation list; extras are dropped, not an error.
const maxInsights = 4

// ErrUnparsable marks replies with no decodable JSON object. The pipeline
// treats it like model unavailability and falls back to offline analysis.
var ErrUnparsable = errors.New("response unparsable")

// Envelope is the model's structured verdict on a query.
type Envelope struct {
	Status   string   `json:"status"`
	Reason   string   `json:"reason,omitempty"`
	Code     string   `json:"code,omitempty"`
	Insights []string `json:"insights,omitempty"`
}

// Parse extracts and validates the envelope from a raw model reply.
func Parse(raw string) (*Envelope, error) {
	obj, err := extractObject(raw)
	if err != nil {
		return nil, err
	}

	var env Envelope
	if err := json.Unmarshal(obj, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparsable, err)
	}

	env.Status = strings.ToUpper(strings.TrimSpace(env.Status))
	switch env.Status {
	case StatusValid:
		if strings.TrimSpace(env.Code) == "" {
			return nil, fmt.Errorf("%w: status VALID with no code", ErrUnparsable)
		}
	case StatusInvalid, StatusOffline:
		if strings.TrimSpace(env.Code) != "" {
			return nil, fmt.Errorf("%w: status %s carries code", ErrUnparsable, env.Status)
		}
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrUnparsable, env.Status)
	}

	if len(env.Insights) > maxInsights {
		env.Insights = env.Insights[:maxInsights]
	}
	return &env, nil
}

// extractObject returns the first complete JSON object in the text. Decoding
// from the first brace with a json.Decoder keeps braces inside string
// literals from confusing the boundary.
func extractObject(raw string) (json.RawMessage, error) {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return nil, fmt.Errorf("%w: no JSON object in reply", ErrUnparsable)
	}

	dec := json.NewDecoder(strings.NewReader(raw[start:]))
	var obj json.RawMessage
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparsable, err)
	}
	return obj, nil
}
