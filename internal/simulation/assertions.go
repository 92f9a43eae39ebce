package simulation

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/nvandessel/synthuser/internal/emotion"
	"github.com/nvandessel/synthuser/internal/memory"
)

// Persona returns the run for personaID, or nil.
func (r *Result) Persona(personaID string) *PersonaResult {
	for i := range r.Personas {
		if r.Personas[i].PersonaID == personaID {
			return &r.Personas[i]
		}
	}
	return nil
}

func mustPersona(t testing.TB, result *Result, personaID string) *PersonaResult {
	t.Helper()
	pr := result.Persona(personaID)
	if pr == nil {
		t.Fatalf("persona %s not in result", personaID)
	}
	return pr
}

// AssertChoice asserts that personaID chose elementID at step.
func AssertChoice(t testing.TB, result *Result, personaID string, step int, elementID string) {
	t.Helper()
	pr := mustPersona(t, result, personaID)
	if step < 0 || step >= len(pr.Steps) {
		t.Fatalf("AssertChoice: %s has no step %d", personaID, step)
	}
	if got := pr.Steps[step].Chosen(); got != elementID {
		t.Errorf("AssertChoice: %s step %d chose %q, want %q", personaID, step, got, elementID)
	}
}

// AssertNeverChosen asserts that no persona ever chose elementID.
func AssertNeverChosen(t testing.TB, result *Result, elementID string) {
	t.Helper()
	for _, pr := range result.Personas {
		for _, sr := range pr.Steps {
			if sr.Chosen() == elementID {
				t.Errorf("AssertNeverChosen: %s chose %s at step %d", pr.PersonaID, elementID, sr.Index)
			}
		}
	}
}

// AssertEnergyNonIncreasing asserts that energy never goes up between
// steps. Steps that rest are skipped.
func AssertEnergyNonIncreasing(t testing.TB, result *Result, scenario Scenario) {
	t.Helper()
	for _, pr := range result.Personas {
		for i := 1; i < len(pr.Steps); i++ {
			if scenario.Steps[i-1].Rest > 0 || scenario.Steps[i].Rest > 0 {
				continue
			}
			prev, cur := pr.Steps[i-1].EnergyLevel, pr.Steps[i].EnergyLevel
			if cur > prev {
				t.Errorf("AssertEnergyNonIncreasing: %s step %d energy %.4f > %.4f", pr.PersonaID, i, cur, prev)
			}
		}
	}
}

// AssertEmotionReached asserts that personaID was in state at some step.
func AssertEmotionReached(t testing.TB, result *Result, personaID string, state emotion.State) {
	t.Helper()
	pr := mustPersona(t, result, personaID)
	seen := make([]emotion.State, 0, len(pr.Steps))
	for _, sr := range pr.Steps {
		if sr.Emotion == state {
			return
		}
		seen = append(seen, sr.Emotion)
	}
	t.Errorf("AssertEmotionReached: %s never %s (saw %v)", personaID, state, seen)
}

// AssertPreferenceAtLeast asserts that personaID ended the run with a
// learned preference of at least min for actionKey.
func AssertPreferenceAtLeast(t testing.TB, result *Result, personaID, actionKey string, min float64) {
	t.Helper()
	pr := mustPersona(t, result, personaID)
	got, ok := pr.Summary.MemoryStats.Preferences[actionKey]
	if !ok {
		t.Errorf("AssertPreferenceAtLeast: %s learned nothing about %s", personaID, actionKey)
		return
	}
	if got < min {
		t.Errorf("AssertPreferenceAtLeast: %s preference for %s = %.4f, want >= %.4f", personaID, actionKey, got, min)
	}
}

// AssertIdenticalRuns asserts that two runs made the same choices with the
// same scores. Trace sessions and memory IDs and timestamps are ignored.
func AssertIdenticalRuns(t testing.TB, a, b *Result) {
	t.Helper()
	opts := cmp.Options{
		cmpopts.IgnoreFields(PersonaResult{}, "SessionID", "Report"),
		cmpopts.IgnoreFields(memory.Record{}, "ID", "Timestamp"),
		cmpopts.EquateEmpty(),
	}
	if diff := cmp.Diff(a, b, opts); diff != "" {
		t.Errorf("AssertIdenticalRuns: runs differ (-a +b):\n%s", diff)
	}
}
