// Package normalizer turns raw model replies into validated inspection
// reports. Models often wrap JSON in markdown fences or prose, so the
// normalizer first carves out the outermost JSON object candidate, then
// parses and schema-validates it. Anything that fails either step becomes
// a malformed outcome carrying the raw reply, never an error.
package normalizer

import (
	"encoding/json"
	"fmt"
	"strings"

	"scanno/internal/domain"
)

// Normalizer recovers and validates inspection reports from model text.
type Normalizer struct {
	validator *Validator
}

func New() *Normalizer {
	return &Normalizer{validator: NewValidator()}
}

// Normalize extracts the JSON candidate from a raw model reply, parses it
// and validates it against the report schema. The reply itself is preserved
// verbatim in the malformed outcome so callers can surface it to the user.
func (n *Normalizer) Normalize(raw string) domain.NormalizationOutcome {
	candidate := ExtractJSONCandidate(raw)

	var probe map[string]interface{}
	if err := json.Unmarshal([]byte(candidate), &probe); err != nil {
		return domain.MalformedOutcome(raw, fmt.Sprintf("parsing reply: %v", err))
	}

	return n.validator.Validate([]byte(candidate), raw)
}

// ExtractJSONCandidate slices the raw reply from the first '{' to the last
// '}' inclusive. When either brace is missing or they are out of order the
// reply is returned unchanged and left to fail at the parse step.
func ExtractJSONCandidate(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return raw
	}
	return raw[start : end+1]
}
