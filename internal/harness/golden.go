package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/quadbench/internal/canonical"
)

// snapshotPrecision is the number of decimals kept for estimates in golden
// files. It is far above the agreement tolerance and far below the
// last-bit noise between forms.
const snapshotPrecision = 12

// Snapshot captures the timing-free outcome of a scenario execution.
// Elapsed times and error bounds are excluded so snapshots are stable
// across machines and forms.
type Snapshot struct {
	Scenario    string
	Form        string
	Method      string
	Repetitions int
	Estimate    float64
	Evaluations int
	Intervals   int
	Checks      []Check
}

// NewSnapshot builds the snapshot of a finished scenario.
func NewSnapshot(scenarioName string, result *Result) Snapshot {
	s := Snapshot{
		Scenario: scenarioName,
		Checks:   result.Checks,
	}
	if m := result.Measurement; m != nil {
		s.Form = string(m.Form)
		s.Method = m.Method
		s.Repetitions = m.Repetitions
		s.Estimate = m.Result.Estimate
		s.Evaluations = m.Result.Evaluations
		s.Intervals = m.Result.Intervals
	}
	return s
}

// toCanonicalMap converts the snapshot for canonical JSON serialization,
// which forbids floats.
func (s Snapshot) toCanonicalMap() map[string]any {
	checks := make([]any, len(s.Checks))
	for i, c := range s.Checks {
		checks[i] = map[string]any{
			"type": c.Type,
			"pass": c.Pass,
		}
	}

	return map[string]any{
		"scenario":    s.Scenario,
		"form":        s.Form,
		"method":      s.Method,
		"repetitions": s.Repetitions,
		"estimate":    canonical.Fixed(s.Estimate, snapshotPrecision),
		"evaluations": s.Evaluations,
		"intervals":   s.Intervals,
		"checks":      checks,
	}
}

// JSON returns the canonical JSON encoding of the snapshot.
func (s Snapshot) JSON() ([]byte, error) {
	return canonical.Marshal(s.toCanonicalMap())
}

// Fingerprint identifies the snapshot's content. Scenarios with equal
// fingerprints produced the same estimate and checks.
func (s Snapshot) Fingerprint() (string, error) {
	return canonical.Fingerprint(canonical.DomainScenario, s.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares its snapshot against
// {goldenDir}/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, goldenDir string, scenario *Scenario, resolver Resolver) (*Result, error) {
	t.Helper()

	result, err := Run(scenario, resolver)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, goldenDir, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, goldenDir, scenarioName string, result *Result) error {
	t.Helper()

	data, err := NewSnapshot(scenarioName, result).JSON()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir(goldenDir),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
