// SPDX-License-Identifier: MPL-2.0

package conformance

import (
	_ "embed"
	"fmt"
	"os"
	"slices"

	"github.com/shakebench/shakebench/internal/cueutil"
)

var (
	//go:embed scenario_schema.cue
	scenarioSchema []byte

	//go:embed default_scenario.cue
	defaultScenario []byte
)

type (
	// MarkerExpectation pairs an artifact selector with the patterns that
	// must and must not appear in the selected artifact.
	MarkerExpectation struct {
		// Artifact selects the artifact by name: the first artifact, in
		// lexical order, whose name matches this pattern.
		Artifact Pattern
		Present  []Pattern
		Absent   []Pattern
	}

	// Check is a named group of expectations that passes or fails as one.
	Check struct {
		Name         string
		Expectations []MarkerExpectation
	}

	// BackendPolicy lists checks a backend is known to fail or that do not
	// apply to it.
	BackendPolicy struct {
		KnownFailures []string `json:"known_failures,omitempty"`
		Skip          []string `json:"skip,omitempty"`
	}

	// Scenario is the full set of checks run against every backend.
	Scenario struct {
		Name     string
		Checks   []Check
		Backends map[string]BackendPolicy
	}

	scenarioFile struct {
		Name   string `json:"name"`
		Checks []struct {
			Name   string `json:"name"`
			Expect []struct {
				Artifact string   `json:"artifact"`
				Present  []string `json:"present"`
				Absent   []string `json:"absent"`
			} `json:"expect"`
		} `json:"checks"`
		Backends map[string]BackendPolicy `json:"backends"`
	}
)

// DefaultScenario returns the embedded tree-shaking scenario.
func DefaultScenario() (*Scenario, error) {
	return LoadScenario(defaultScenario, "default_scenario.cue")
}

// LoadScenarioFile reads and parses a CUE scenario file.
func LoadScenarioFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	return LoadScenario(data, path)
}

// LoadScenario validates data against the scenario schema and compiles its
// patterns.
func LoadScenario(data []byte, filename string) (*Scenario, error) {
	result, err := cueutil.ParseAndDecode[scenarioFile](scenarioSchema, data, "#Scenario", cueutil.WithFilename(filename))
	if err != nil {
		return nil, err
	}
	file := result.Value

	s := &Scenario{Name: file.Name, Backends: file.Backends}
	if s.Backends == nil {
		s.Backends = make(map[string]BackendPolicy)
	}

	for _, c := range file.Checks {
		check := Check{Name: c.Name}
		for _, e := range c.Expect {
			exp, err := compileExpectation(e.Artifact, e.Present, e.Absent)
			if err != nil {
				return nil, fmt.Errorf("%s: check %q: %w", filename, c.Name, err)
			}
			check.Expectations = append(check.Expectations, exp)
		}
		s.Checks = append(s.Checks, check)
	}

	if err := s.validatePolicies(); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return s, nil
}

// CheckNames returns the check names in scenario order.
func (s *Scenario) CheckNames() []string {
	names := make([]string, len(s.Checks))
	for i, c := range s.Checks {
		names[i] = c.Name
	}
	return names
}

// Policy returns the policy of backend id (zero value when none is declared).
func (s *Scenario) Policy(id string) BackendPolicy {
	return s.Backends[id]
}

func (s *Scenario) validatePolicies() error {
	names := s.CheckNames()
	for id, p := range s.Backends {
		for _, n := range slices.Concat(p.KnownFailures, p.Skip) {
			if !slices.Contains(names, n) {
				return fmt.Errorf("backend %s references unknown check %q", id, n)
			}
		}
	}
	return nil
}

func compileExpectation(artifact string, present, absent []string) (MarkerExpectation, error) {
	sel, err := CompilePattern(artifact)
	if err != nil {
		return MarkerExpectation{}, err
	}
	exp := MarkerExpectation{Artifact: sel}
	for _, src := range present {
		p, err := CompilePattern(src)
		if err != nil {
			return MarkerExpectation{}, err
		}
		exp.Present = append(exp.Present, p)
	}
	for _, src := range absent {
		p, err := CompilePattern(src)
		if err != nil {
			return MarkerExpectation{}, err
		}
		exp.Absent = append(exp.Absent, p)
	}
	return exp, nil
}
