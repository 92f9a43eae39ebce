package simulation_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nvandessel/synthuser/internal/config"
	"github.com/nvandessel/synthuser/internal/emotion"
	"github.com/nvandessel/synthuser/internal/simulation"
	"github.com/nvandessel/synthuser/internal/trace"
)

var start = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

// shopYAML has two deterministic personas and one random one. The hidden
// promo is the most prominent element on the page.
const shopYAML = `
name: shop
seed: 7
step_duration: 1m
goal:
  goal_id: buy
  description: Buy the item
  keywords: [buy]
personas:
  - id: steady
    profile:
      decision_randomness: 0
  - id: anxious
    profile:
      decision_randomness: 0
      personality:
        neuroticism: 0.7
  - random: true
    id: drawn
steps:
  - label: product
    context:
      interface_complexity: 0.8
    elements: &page
      - element_id: promo
        element_type: button
        text: Huge sale
        visual_prominence: 1.0
        is_visible: false
      - element_id: buy
        element_type: button
        text: Buy now
        semantic_meaning: purchase
        visual_prominence: 0.9
      - element_id: help
        element_type: link
        text: Help
        position: {x: 1700, y: 900}
    outcomes:
      buy: true
  - label: again
    elements: *page
    outcomes:
      buy: true
  - label: broken
    elements:
      - element_id: spinner
        element_type: button
        text: Loading
        is_enabled: false
  - label: last
    elements: *page
    outcomes:
      buy: true
`

func runShop(t *testing.T, opts ...simulation.RunnerOption) (*simulation.Result, simulation.Scenario) {
	t.Helper()
	sc, err := simulation.ParseScenario([]byte(shopYAML))
	if err != nil {
		t.Fatalf("ParseScenario: %v", err)
	}
	opts = append([]simulation.RunnerOption{simulation.WithStartTime(start)}, opts...)
	res, err := simulation.NewRunner(config.Default(), opts...).Run(t.Context(), sc)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return res, sc
}

func TestRun_GoalDirectedChoices(t *testing.T) {
	res, sc := runShop(t)

	if res.Seed != 7 || len(res.Personas) != 3 {
		t.Fatalf("result = seed %d, %d personas", res.Seed, len(res.Personas))
	}

	for _, id := range []string{"steady", "anxious"} {
		simulation.AssertChoice(t, res, id, 0, "buy")
		simulation.AssertChoice(t, res, id, 1, "buy")
		simulation.AssertChoice(t, res, id, 3, "buy")
		simulation.AssertPreferenceAtLeast(t, res, id, "button:purchase", 0.55)
	}
	simulation.AssertNeverChosen(t, res, "promo")
	simulation.AssertEnergyNonIncreasing(t, res, sc)
	simulation.AssertEmotionReached(t, res, "anxious", emotion.StateConfused)

	steady := res.Persona("steady")
	if got := steady.Summary.InteractionCount; got != 3 {
		t.Errorf("InteractionCount = %d, want 3", got)
	}
	if len(steady.Steps[0].Ranked) != 2 {
		t.Errorf("Ranked = %+v, want the two visible elements", steady.Steps[0].Ranked)
	}
	if o := steady.Steps[0].Outcome; o == nil || !*o {
		t.Errorf("step 0 outcome = %v, want success", o)
	}
}

func TestRun_EmptyStepIsRecorded(t *testing.T) {
	res, _ := runShop(t)

	for _, pr := range res.Personas {
		broken := pr.Steps[2]
		if broken.Choice != nil || broken.Outcome != nil {
			t.Errorf("%s: broken step chose %q", pr.PersonaID, broken.Chosen())
		}
		if broken.Error == "" {
			t.Errorf("%s: broken step has no error", pr.PersonaID)
		}
		if len(broken.Ranked) != 0 {
			t.Errorf("%s: broken step ranked %d elements", pr.PersonaID, len(broken.Ranked))
		}
		if broken.EnergyLevel != pr.Steps[1].EnergyLevel {
			t.Errorf("%s: energy moved on an empty step", pr.PersonaID)
		}
		if len(pr.Steps) != 4 {
			t.Errorf("%s: run stopped after %d steps", pr.PersonaID, len(pr.Steps))
		}
	}
}

func TestRun_SeededRunsAreIdentical(t *testing.T) {
	a, _ := runShop(t)
	b, _ := runShop(t)
	simulation.AssertIdenticalRuns(t, a, b)

	if a.Persona("drawn") == nil {
		t.Error("random persona lost its ID override")
	}
}

func TestRun_PersonasAreIsolated(t *testing.T) {
	group, _ := runShop(t)

	sc, err := simulation.ParseScenario([]byte(shopYAML))
	if err != nil {
		t.Fatal(err)
	}
	sc.Personas = sc.Personas[:1]
	solo, err := simulation.NewRunner(config.Default(), simulation.WithStartTime(start)).Run(t.Context(), sc)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Playing alongside others must not change what steady experiences.
	grouped := &simulation.Result{Scenario: group.Scenario, Seed: group.Seed, Personas: []simulation.PersonaResult{*group.Persona("steady")}}
	simulation.AssertIdenticalRuns(t, grouped, solo)
}

func TestRun_WritesTrace(t *testing.T) {
	store, err := trace.Open(filepath.Join(t.TempDir(), "trace.db"))
	if err != nil {
		t.Fatalf("trace.Open: %v", err)
	}
	defer store.Close()

	res, _ := runShop(t, simulation.WithTrace(store))

	sessions, err := store.Sessions(t.Context())
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("got %d sessions, want 3", len(sessions))
	}

	steady := res.Persona("steady")
	if steady.SessionID == "" || steady.Report == nil {
		t.Fatalf("steady has no trace: %+v", steady)
	}
	rep := steady.Report
	if rep.Scenario != "shop" || rep.Decisions != 3 || rep.Outcomes != 3 || rep.SuccessRate != 1 {
		t.Errorf("report = %+v", rep)
	}
	if rep.FinalEnergy != steady.Summary.EnergyLevel {
		t.Errorf("FinalEnergy = %f, want %f", rep.FinalEnergy, steady.Summary.EnergyLevel)
	}
	if len(rep.TopElements) == 0 || rep.TopElements[0].ElementID != "buy" {
		t.Errorf("TopElements = %+v", rep.TopElements)
	}
}

func TestRun_RelativePersonaFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "personas"), 0o755); err != nil {
		t.Fatal(err)
	}
	persona := "persona_id: alice\nname: Alice\nenergy_level: 0.5\ndecision_randomness: 0\n"
	if err := os.WriteFile(filepath.Join(dir, "personas", "alice.yaml"), []byte(persona), 0o644); err != nil {
		t.Fatal(err)
	}
	scenario := `
name: solo
seed: 1
personas:
  - file: personas/alice.yaml
steps:
  - elements:
      - element_id: ok
        element_type: button
        text: OK
`
	path := filepath.Join(dir, "solo.yaml")
	if err := os.WriteFile(path, []byte(scenario), 0o644); err != nil {
		t.Fatal(err)
	}

	sc, err := simulation.LoadScenario(path)
	if err != nil {
		t.Fatalf("LoadScenario: %v", err)
	}
	res, err := simulation.NewRunner(nil, simulation.WithStartTime(start)).Run(t.Context(), sc)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	simulation.AssertChoice(t, res, "alice", 0, "ok")
	if e := res.Persona("alice").Summary.EnergyLevel; e >= 0.5 {
		t.Errorf("energy = %f, want below the file's 0.5", e)
	}
}

func TestRun_ConsolidationKeepsImportantEpisodes(t *testing.T) {
	sc, err := simulation.ParseScenario([]byte(shopYAML))
	if err != nil {
		t.Fatal(err)
	}
	sc.ConsolidateEvery = 1
	sc.StepDuration = 48 * time.Hour

	res, err := simulation.NewRunner(config.Default(), simulation.WithStartTime(start)).Run(t.Context(), sc)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	steady := res.Persona("steady")
	for _, sr := range steady.Steps {
		if sr.Forgotten != 0 {
			t.Errorf("step %d forgot %d episodes", sr.Index, sr.Forgotten)
		}
	}
	// The goal plus three successful outcomes clear the consolidation bar.
	if got := steady.Summary.MemoryStats.EpisodicSize; got != 4 {
		t.Errorf("EpisodicSize = %d, want 4", got)
	}
}

func TestRun_Errors(t *testing.T) {
	r := simulation.NewRunner(nil)

	if _, err := r.Run(t.Context(), simulation.Scenario{}); !errors.Is(err, simulation.ErrInvalidScenario) {
		t.Errorf("empty scenario err = %v", err)
	}

	sc, err := simulation.ParseScenario([]byte(shopYAML))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	if _, err := r.Run(ctx, sc); !errors.Is(err, context.Canceled) {
		t.Errorf("canceled run err = %v", err)
	}

	sc.Personas = []simulation.PersonaSpec{{File: filepath.Join(t.TempDir(), "nobody.yaml")}}
	if _, err := r.Run(t.Context(), sc); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing persona err = %v", err)
	}
}
