// Package config loads benchmark suites written in CUE.
//
// A suite file is a single CUE struct validated against the embedded
// #Suite schema. Only name is required; omitted fields take their schema
// defaults:
//
//	method:      "adaptive"
//	repetitions: 100000
//	forms:       ["go", "shared"]
//	library:     "native/libintegrand.so"
//	reference:   -0.0152115
//	tolerance:   1e-6
//	sample:      false
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/quadbench/internal/canonical"
	"github.com/roach88/quadbench/internal/integrand"
	"github.com/roach88/quadbench/internal/quadrature"
)

//go:embed schema.cue
var schemaSource string

// DefaultLibrary is where `make native` writes the shared library.
const DefaultLibrary = "native/libintegrand.so"

// DefaultRepetitions matches the classic benchmark loop.
const DefaultRepetitions = 100000

// Suite is a validated benchmark suite.
type Suite struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Method      string            `json:"method"`
	Repetitions int               `json:"repetitions"`
	Forms       []string          `json:"forms"`
	Library     string            `json:"library"`
	Params      *integrand.Params `json:"params,omitempty"`
	Reference   float64           `json:"reference"`
	Tolerance   float64           `json:"tolerance"`
	Sample      bool              `json:"sample"`
}

// ConfigError is a suite validation failure with its source position.
type ConfigError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *ConfigError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Default returns the built-in suite: the go and shared forms, 100000
// repetitions each.
func Default() *Suite {
	return &Suite{
		Name:        "default",
		Method:      quadrature.MethodAdaptive,
		Repetitions: DefaultRepetitions,
		Forms:       []string{string(integrand.FormGo), string(integrand.FormShared)},
		Library:     DefaultLibrary,
		Reference:   integrand.Reference,
		Tolerance:   1e-6,
	}
}

// Load reads and validates the suite at path.
func Load(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read suite file: %w", err)
	}
	return Parse(path, data)
}

// Parse validates CUE source against #Suite. filename is used in error
// positions only.
func Parse(filename string, data []byte) (*Suite, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compiling embedded schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Suite"))

	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	if err := checkFields(def, v); err != nil {
		return nil, err
	}

	unified := def.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	var s Suite
	if err := unified.Decode(&s); err != nil {
		return nil, formatCUEError(err)
	}
	return &s, nil
}

// checkFields rejects top-level fields #Suite does not declare.
func checkFields(def, v cue.Value) error {
	iter, err := v.Fields()
	if err != nil {
		return formatCUEError(err)
	}
	for iter.Next() {
		if !def.Allows(cue.Str(iter.Label())) {
			return &ConfigError{
				Field:   iter.Label(),
				Message: "field not allowed",
				Pos:     iter.Value().Pos(),
			}
		}
	}
	return nil
}

// formatCUEError keeps the first error and its position.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	ce := &ConfigError{
		Field:   "suite",
		Message: first.Error(),
	}
	if path := first.Path(); len(path) > 0 {
		ce.Field = strings.Join(path, ".")
	}
	if positions := errors.Positions(first); len(positions) > 0 {
		ce.Pos = positions[0]
	}
	return ce
}

// FormList returns the suite's forms as typed values.
func (s *Suite) FormList() ([]integrand.Form, error) {
	forms := make([]integrand.Form, 0, len(s.Forms))
	for _, name := range s.Forms {
		f, err := integrand.ParseForm(name)
		if err != nil {
			return nil, err
		}
		forms = append(forms, f)
	}
	return forms, nil
}

// Fingerprint identifies suites whose timings are comparable. The name,
// description and library path are excluded.
func (s *Suite) Fingerprint() (string, error) {
	forms := make([]any, len(s.Forms))
	for i, f := range s.Forms {
		forms[i] = f
	}

	v := map[string]any{
		"method":      s.Method,
		"repetitions": s.Repetitions,
		"forms":       forms,
		"reference":   canonical.Float(s.Reference),
		"sample":      s.Sample,
	}
	if s.Params != nil {
		v["params"] = map[string]any{
			"a": canonical.Float(s.Params.A),
			"b": canonical.Float(s.Params.B),
		}
	}
	return canonical.Fingerprint(canonical.DomainSuite, v)
}
