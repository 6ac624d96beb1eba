package normalizer

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"scanno/internal/domain"
)

// reportSchema is the contract every inspection report must satisfy. All
// five fields are required, risk_level is a closed case-sensitive enum and
// the list fields must hold strings. No type coercion happens anywhere:
// a numeric summary or a lowercase risk level is a violation.
const reportSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["summary", "risk_level", "issues", "maintenance", "recommendation"],
  "properties": {
    "summary": {"type": "string"},
    "risk_level": {"enum": ["Low", "Medium", "High", "Critical"]},
    "issues": {"type": "array", "items": {"type": "string"}},
    "maintenance": {"type": "array", "items": {"type": "string"}},
    "recommendation": {"type": "string"}
  }
}`

// Validator checks parsed report candidates against the report schema.
type Validator struct {
	schema *jsonschema.Schema
}

func NewValidator() *Validator {
	return &Validator{
		schema: jsonschema.MustCompileString("inspection_report.json", reportSchema),
	}
}

// Validate runs the candidate through the schema and, on success, decodes
// it into a domain.InspectionReport. Schema violations produce a malformed
// outcome whose diagnostic names every offending field.
func (v *Validator) Validate(candidate []byte, raw string) domain.NormalizationOutcome {
	var instance interface{}
	if err := json.Unmarshal(candidate, &instance); err != nil {
		return domain.MalformedOutcome(raw, fmt.Sprintf("parsing candidate: %v", err))
	}

	if err := v.schema.Validate(instance); err != nil {
		var ve *jsonschema.ValidationError
		diagnostic := err.Error()
		if errors.As(err, &ve) {
			diagnostic = strings.Join(fieldViolations(ve), "; ")
		}
		return domain.MalformedOutcome(raw, diagnostic)
	}

	var report domain.InspectionReport
	if err := json.Unmarshal(candidate, &report); err != nil {
		return domain.MalformedOutcome(raw, fmt.Sprintf("decoding report: %v", err))
	}
	if report.Issues == nil {
		report.Issues = []string{}
	}
	if report.Maintenance == nil {
		report.Maintenance = []string{}
	}

	return domain.ValidOutcome(&report)
}

// fieldViolations walks the validation error tree and collects the leaf
// causes, the ones that actually name the offending instance location.
func fieldViolations(ve *jsonschema.ValidationError) []string {
	if len(ve.Causes) == 0 {
		location := ve.InstanceLocation
		if location == "" {
			location = "/"
		}
		return []string{fmt.Sprintf("%s: %s", location, ve.Message)}
	}

	var violations []string
	for _, cause := range ve.Causes {
		violations = append(violations, fieldViolations(cause)...)
	}
	return violations
}
