// SPDX-License-Identifier: MPL-2.0

package conformance

import (
	"slices"

	"github.com/shakebench/shakebench/internal/adapter"
)

// Check outcomes.
const (
	OutcomePass           Outcome = "pass"
	OutcomeFail           Outcome = "fail"
	OutcomeExpectedFail   Outcome = "expected-fail"
	OutcomeUnexpectedPass Outcome = "unexpected-pass"
	OutcomeSkipped        Outcome = "skipped"
)

type (
	// Outcome classifies a check result after the backend policy is applied.
	Outcome string

	// PatternResult is the verdict for one pattern.
	PatternResult struct {
		Pattern string `json:"pattern"`
		// WantPresent is true for present patterns, false for absent ones.
		WantPresent bool `json:"want_present"`
		Matched     bool `json:"matched"`
		Passed      bool `json:"passed"`
	}

	// ExpectationResult is the verdict for one MarkerExpectation.
	ExpectationResult struct {
		Selector string `json:"selector"`
		// Artifact is the selected artifact name; empty when none matched,
		// which fails the expectation.
		Artifact string          `json:"artifact,omitempty"`
		Patterns []PatternResult `json:"patterns"`
		Passed   bool            `json:"passed"`
	}

	// CheckResult is the verdict for one Check.
	CheckResult struct {
		Name         string              `json:"name"`
		Passed       bool                `json:"passed"`
		Outcome      Outcome             `json:"outcome"`
		Expectations []ExpectationResult `json:"expectations,omitempty"`
	}

	// Verdict is the result of running a scenario against one backend's
	// artifacts.
	Verdict struct {
		Backend string        `json:"backend"`
		Checks  []CheckResult `json:"checks"`
	}
)

// Failed reports whether the outcome counts as a failure of the backend.
func (o Outcome) Failed() bool {
	return o == OutcomeFail || o == OutcomeUnexpectedPass
}

// MatchText classifies one artifact's text against exp's patterns. The
// artifact selector is not consulted.
func MatchText(text string, exp MarkerExpectation) ExpectationResult {
	res := ExpectationResult{Selector: exp.Artifact.String(), Passed: true}
	for _, p := range exp.Present {
		m := p.Match(text)
		res.Patterns = append(res.Patterns, PatternResult{Pattern: p.String(), WantPresent: true, Matched: m, Passed: m})
		res.Passed = res.Passed && m
	}
	for _, p := range exp.Absent {
		m := p.Match(text)
		res.Patterns = append(res.Patterns, PatternResult{Pattern: p.String(), Matched: m, Passed: !m})
		res.Passed = res.Passed && !m
	}
	return res
}

// Evaluate selects the artifact for exp and classifies it.
func Evaluate(artifacts adapter.ArtifactSet, exp MarkerExpectation) ExpectationResult {
	name, text, ok := artifacts.Find(exp.Artifact.Match)
	if !ok {
		return ExpectationResult{Selector: exp.Artifact.String()}
	}
	res := MatchText(text, exp)
	res.Artifact = name
	return res
}

// Analyze runs every check of s against artifacts and applies the policy
// declared for backend.
func Analyze(artifacts adapter.ArtifactSet, s *Scenario, backend string) Verdict {
	policy := s.Policy(backend)
	v := Verdict{Backend: backend}

	for _, c := range s.Checks {
		if slices.Contains(policy.Skip, c.Name) {
			v.Checks = append(v.Checks, CheckResult{Name: c.Name, Outcome: OutcomeSkipped})
			continue
		}

		cr := CheckResult{Name: c.Name, Passed: true}
		for _, exp := range c.Expectations {
			er := Evaluate(artifacts, exp)
			cr.Expectations = append(cr.Expectations, er)
			cr.Passed = cr.Passed && er.Passed
		}
		cr.Outcome = classify(cr.Passed, slices.Contains(policy.KnownFailures, c.Name))
		v.Checks = append(v.Checks, cr)
	}
	return v
}

func classify(passed, known bool) Outcome {
	switch {
	case passed && known:
		return OutcomeUnexpectedPass
	case passed:
		return OutcomePass
	case known:
		return OutcomeExpectedFail
	default:
		return OutcomeFail
	}
}

// Passed reports whether no check failed after applying the policy.
func (v Verdict) Passed() bool {
	return len(v.Failures()) == 0
}

// Failures returns the checks whose outcome counts as a failure.
func (v Verdict) Failures() []CheckResult {
	var out []CheckResult
	for _, c := range v.Checks {
		if c.Outcome.Failed() {
			out = append(out, c)
		}
	}
	return out
}

// Count returns how many checks ended with outcome o.
func (v Verdict) Count(o Outcome) int {
	n := 0
	for _, c := range v.Checks {
		if c.Outcome == o {
			n++
		}
	}
	return n
}
