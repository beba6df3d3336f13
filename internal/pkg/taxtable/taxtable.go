package taxtable

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/tax"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed ao_2020.yaml
var defaultTable []byte

type fileBand struct {
	LowerBound     string `yaml:"lower_bound"`
	Rate           string `yaml:"rate"`
	FixedDeduction string `yaml:"fixed_deduction"`
}

type fileExemption struct {
	FullyExempt bool   `yaml:"fully_exempt"`
	Ceiling     string `yaml:"ceiling"`
}

type file struct {
	Version            string                   `yaml:"version"`
	EffectiveFrom      string                   `yaml:"effective_from"`
	SocialSecurityRate string                   `yaml:"social_security_rate"`
	Bands              []fileBand               `yaml:"bands"`
	Exemptions         map[string]fileExemption `yaml:"exemptions"`
}

// Default returns the embedded Angolan schedule.
func Default() (tax.Rules, error) {
	return Parse(defaultTable)
}

// Load reads a schedule file. An empty path means the embedded default.
func Load(path string) (tax.Rules, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return tax.Rules{}, fmt.Errorf("read tax table %s: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (tax.Rules, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return tax.Rules{}, fmt.Errorf("decode tax table: %w", err)
	}

	rules := tax.Rules{
		Schedule:   tax.Schedule{Version: f.Version},
		Exemptions: make(tax.Exemptions, len(f.Exemptions)),
	}

	if f.EffectiveFrom != "" {
		from, err := time.Parse("2006-01-02", f.EffectiveFrom)
		if err != nil {
			return tax.Rules{}, fmt.Errorf("invalid effective_from: %w", err)
		}
		rules.Schedule.EffectiveFrom = from
	}

	var err error
	if rules.SocialSecurityRate, err = parseDecimal("social_security_rate", f.SocialSecurityRate); err != nil {
		return tax.Rules{}, err
	}

	for i, b := range f.Bands {
		var band tax.Band
		if band.LowerBound, err = parseDecimal(fmt.Sprintf("bands[%d].lower_bound", i), b.LowerBound); err != nil {
			return tax.Rules{}, err
		}
		if band.Rate, err = parseDecimal(fmt.Sprintf("bands[%d].rate", i), b.Rate); err != nil {
			return tax.Rules{}, err
		}
		if band.FixedDeduction, err = parseDecimal(fmt.Sprintf("bands[%d].fixed_deduction", i), b.FixedDeduction); err != nil {
			return tax.Rules{}, err
		}
		rules.Schedule.Bands = append(rules.Schedule.Bands, band)
	}

	for name, e := range f.Exemptions {
		ex := tax.Exemption{FullyExempt: e.FullyExempt}
		if !e.FullyExempt {
			if ex.Ceiling, err = parseDecimal("exemptions."+name+".ceiling", e.Ceiling); err != nil {
				return tax.Rules{}, err
			}
		}
		rules.Exemptions[tax.Component(name)] = ex
	}

	if err := rules.Validate(); err != nil {
		return tax.Rules{}, fmt.Errorf("tax table %s: %w", f.Version, err)
	}
	return rules, nil
}

func parseDecimal(field, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", field, value, err)
	}
	return d, nil
}
