package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/quadbench/internal/integrand"
	"github.com/roach88/quadbench/internal/quadrature"
)

// DefaultTolerance is used by expect clauses that give an estimate without
// a tolerance.
const DefaultTolerance = 1e-6

// DefaultAgreementTolerance is used by agreement assertions without a tolerance.
const DefaultAgreementTolerance = 1e-9

// Scenario defines one benchmark check: an integrand form integrated N times
// plus expectations on the result.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Form selects the integrand realization: go, cgo or shared.
	Form string `yaml:"form"`

	// Method selects the integrator; empty means adaptive.
	Method string `yaml:"method,omitempty"`

	// Repetitions is the number of integrations to time.
	Repetitions int `yaml:"repetitions"`

	// Params switches to the parametric integrand cos(a·x)/x^b.
	Params *integrand.Params `yaml:"params,omitempty"`

	// Expect constrains the last integration result.
	Expect *ExpectClause `yaml:"expect,omitempty"`

	// Assertions compare against other forms or re-runs.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// ExpectClause specifies the expected integration result.
type ExpectClause struct {
	// Estimate is the expected value; nil skips the check.
	Estimate *float64 `yaml:"estimate,omitempty"`

	// Tolerance is the allowed absolute deviation from Estimate.
	// Zero means DefaultTolerance.
	Tolerance float64 `yaml:"tolerance,omitempty"`

	// MaxAbsErr bounds the integrator's reported error; zero skips the check.
	MaxAbsErr float64 `yaml:"max_abs_err,omitempty"`
}

// Assertion is an additional scenario check.
type Assertion struct {
	// Type specifies the assertion type:
	// - "agrees_with": integrate with Form once, estimates within Tolerance
	// - "pointwise_agrees": evaluate both forms at Points, within Tolerance
	// - "evaluations": last result used exactly Count integrand calls
	// - "deterministic": a second batch yields a bit-identical estimate
	Type string `yaml:"type"`

	// Form is the other integrand form (agrees_with, pointwise_agrees).
	Form string `yaml:"form,omitempty"`

	// Tolerance is the allowed absolute difference. Zero means
	// DefaultAgreementTolerance.
	Tolerance float64 `yaml:"tolerance,omitempty"`

	// Points are the sample abscissae (pointwise_agrees). Empty means
	// π, 1.5π and 2π.
	Points []float64 `yaml:"points,omitempty"`

	// Count is the expected number of integrand evaluations (evaluations).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertAgreesWith      = "agrees_with"
	AssertPointwiseAgrees = "pointwise_agrees"
	AssertEvaluations     = "evaluations"
	AssertDeterministic   = "deterministic"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks required fields and value ranges.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if _, err := integrand.ParseForm(s.Form); err != nil {
		return fmt.Errorf("form: %w", err)
	}

	if _, err := quadrature.New(s.Method); err != nil {
		return fmt.Errorf("method: %w", err)
	}

	if s.Repetitions < 1 {
		return fmt.Errorf("repetitions must be at least 1, got %d", s.Repetitions)
	}

	if s.Expect != nil {
		if s.Expect.Tolerance < 0 {
			return fmt.Errorf("expect.tolerance cannot be negative")
		}
		if s.Expect.MaxAbsErr < 0 {
			return fmt.Errorf("expect.max_abs_err cannot be negative")
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	if a.Tolerance < 0 {
		return fmt.Errorf("assertions[%d]: tolerance cannot be negative", index)
	}

	switch a.Type {
	case AssertAgreesWith, AssertPointwiseAgrees:
		if _, err := integrand.ParseForm(a.Form); err != nil {
			return fmt.Errorf("assertions[%d]: %s: %w", index, a.Type, err)
		}
	case AssertEvaluations:
		if a.Count < 1 {
			return fmt.Errorf("assertions[%d]: count must be positive for evaluations", index)
		}
	case AssertDeterministic:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
