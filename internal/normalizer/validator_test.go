package normalizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scanno/internal/normalizer"
)

func validate(t *testing.T, candidate string) (valid bool, diagnostic string) {
	t.Helper()
	v := normalizer.NewValidator()
	outcome := v.Validate([]byte(candidate), candidate)
	if outcome.Valid() {
		return true, ""
	}
	return false, outcome.Malformed.Diagnostic
}

func TestValidate_UnknownRiskLevel(t *testing.T) {
	valid, diagnostic := validate(t, `{"summary":"s","risk_level":"Extreme","issues":[],"maintenance":[],"recommendation":"r"}`)

	assert.False(t, valid)
	assert.Contains(t, diagnostic, "risk_level")
}

func TestValidate_RiskLevelCaseSensitive(t *testing.T) {
	valid, diagnostic := validate(t, `{"summary":"s","risk_level":"low","issues":[],"maintenance":[],"recommendation":"r"}`)

	assert.False(t, valid)
	assert.Contains(t, diagnostic, "risk_level")
}

func TestValidate_MissingFields(t *testing.T) {
	valid, diagnostic := validate(t, `{"summary":"s","risk_level":"Low"}`)

	assert.False(t, valid)
	assert.NotEmpty(t, diagnostic)
}

func TestValidate_NonStringArrayItems(t *testing.T) {
	valid, diagnostic := validate(t, `{"summary":"s","risk_level":"Low","issues":[1,2],"maintenance":[],"recommendation":"r"}`)

	assert.False(t, valid)
	assert.Contains(t, diagnostic, "issues")
}

func TestValidate_NumericSummary_NoCoercion(t *testing.T) {
	valid, _ := validate(t, `{"summary":42,"risk_level":"Low","issues":[],"maintenance":[],"recommendation":"r"}`)

	assert.False(t, valid)
}

func TestValidate_EmptyArraysAreValid(t *testing.T) {
	v := normalizer.NewValidator()
	candidate := `{"summary":"s","risk_level":"Critical","issues":[],"maintenance":[],"recommendation":"r"}`

	outcome := v.Validate([]byte(candidate), candidate)

	require.True(t, outcome.Valid())
	assert.NotNil(t, outcome.Report.Issues)
	assert.Empty(t, outcome.Report.Issues)
}

func TestValidate_AllRiskLevels(t *testing.T) {
	for _, level := range []string{"Low", "Medium", "High", "Critical"} {
		t.Run(level, func(t *testing.T) {
			candidate := `{"summary":"s","risk_level":"` + level + `","issues":[],"maintenance":[],"recommendation":"r"}`
			valid, diagnostic := validate(t, candidate)
			assert.True(t, valid, diagnostic)
		})
	}
}
