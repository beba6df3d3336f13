package taxtable

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/tax"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	rules, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "AO-2020", rules.Schedule.Version)
	assert.True(t, rules.SocialSecurityRate.Equal(decimal.RequireFromString("0.03")))
	assert.Len(t, rules.Schedule.Bands, 12)
	assert.True(t, rules.Exemptions[tax.ComponentFood].Ceiling.Equal(decimal.NewFromInt(30000)))
	assert.Equal(t, 2020, rules.Schedule.EffectiveFrom.Year())
}

func TestParse_RejectsUnsortedBands(t *testing.T) {
	_, err := Parse([]byte(`
version: broken
social_security_rate: "0.03"
bands:
  - { lower_bound: "0", rate: "0", fixed_deduction: "0" }
  - { lower_bound: "200000", rate: "0.18", fixed_deduction: "0" }
  - { lower_bound: "100000", rate: "0.13", fixed_deduction: "0" }
`))
	assert.ErrorIs(t, err, tax.ErrBandsNotAscending)
}

func TestParse_RejectsBadDecimal(t *testing.T) {
	_, err := Parse([]byte(`
social_security_rate: "three percent"
bands:
  - { lower_bound: "0", rate: "0", fixed_deduction: "0" }
`))
	assert.Error(t, err)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
version: TEST-1
social_security_rate: "0.03"
bands:
  - { lower_bound: "0", rate: "0.10", fixed_deduction: "0" }
exemptions:
  family: { fully_exempt: true }
`), 0o600))

	rules, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "TEST-1", rules.Schedule.Version)
	assert.True(t, rules.Exemptions[tax.ComponentFamily].FullyExempt)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
