package emotion

import (
	"errors"
	"math"
	"testing"
)

func defaultProfile() Profile {
	return Profile{
		ProductFamiliarity: 0.1,
		CognitiveAbility:   0.5,
		Neuroticism:        0.5,
		Openness:           0.5,
		Conscientiousness:  0.5,
	}
}

// flatWeights zeroes every coefficient and gives each state the same base.
func flatWeights(confused, inControl, neutral, frustrated float64) Weights {
	var w Weights
	w.Confused.Base = confused
	w.InControl.Base = inControl
	w.Neutral.Base = neutral
	w.Frustrated.Base = frustrated
	return w
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestConfusedIntensity_Formula(t *testing.T) {
	e := NewEngine(defaultProfile(), DefaultWeights())
	ctx := DefaultContext()

	// 0.4 + 0.5*0.5 + 0.9*0.2 - 0.5*0.1 - 0.5*0.15 + 0.3*0.2 + 0.5*0.15
	want := 0.84
	if got := e.ConfusedIntensity(ctx); !approx(got, want) {
		t.Errorf("ConfusedIntensity = %f, want %f", got, want)
	}
}

func TestInControlIntensity_SuccessBonusSaturates(t *testing.T) {
	e := NewEngine(defaultProfile(), DefaultWeights())
	ctx := DefaultContext()

	base := e.InControlIntensity(ctx)
	if !approx(base, 0.765) {
		t.Fatalf("InControlIntensity = %f, want 0.765", base)
	}

	ctx.RecentSuccesses = 1
	if got := e.InControlIntensity(ctx); !approx(got, base+0.1*0.2) {
		t.Errorf("one success = %f, want %f", got, base+0.02)
	}

	ctx.RecentSuccesses = 3
	three := e.InControlIntensity(ctx)
	ctx.RecentSuccesses = 50
	fifty := e.InControlIntensity(ctx)
	if !approx(three, fifty) {
		t.Errorf("success bonus should saturate at 0.3: 3 -> %f, 50 -> %f", three, fifty)
	}
	if !approx(fifty, base+0.3*0.2) {
		t.Errorf("saturated = %f, want %f", fifty, base+0.06)
	}
}

func TestNeutralIntensity_Formula(t *testing.T) {
	e := NewEngine(defaultProfile(), DefaultWeights())
	if got := e.NeutralIntensity(DefaultContext()); !approx(got, 0.2) {
		t.Errorf("NeutralIntensity = %f, want 0.2", got)
	}
}

func TestFrustratedIntensity_FailureBonusSaturates(t *testing.T) {
	e := NewEngine(defaultProfile(), DefaultWeights())
	ctx := DefaultContext()

	// 0.2 + 0.5*0.4 + 0.5*0.2 + 0.1*0.15
	base := e.FrustratedIntensity(ctx, 0.5)
	if !approx(base, 0.515) {
		t.Fatalf("FrustratedIntensity = %f, want 0.515", base)
	}

	ctx.RecentFailures = 2
	if got := e.FrustratedIntensity(ctx, 0.5); !approx(got, base+0.3*0.3) {
		t.Errorf("two failures = %f, want %f", got, base+0.09)
	}

	ctx.RecentFailures = 100
	if got := e.FrustratedIntensity(ctx, 0.5); !approx(got, base+0.4*0.3) {
		t.Errorf("saturated = %f, want %f", got, base+0.12)
	}
}

func TestIntensities_AlwaysInUnitRange(t *testing.T) {
	heavy := DefaultWeights()
	heavy.Confused.Neuroticism = 5
	heavy.InControl.Base = 3
	heavy.Frustrated.Failure = 10

	profiles := []Profile{
		{},
		{ProductFamiliarity: 1, CognitiveAbility: 1, Neuroticism: 1, Openness: 1, Conscientiousness: 1},
		defaultProfile(),
	}
	contexts := []Context{
		{},
		{InterfaceComplexity: 1, ExternalPressure: 1, TaskDifficulty: 1, RecentFailures: 20, RecentSuccesses: 20},
		DefaultContext(),
	}

	for _, w := range []Weights{DefaultWeights(), heavy, {}} {
		for _, p := range profiles {
			for _, c := range contexts {
				for _, patience := range []float64{0, 0.5, 1} {
					in := NewEngine(p, w).Compute(c, patience)
					for s, v := range in {
						if v < 0 || v > 1 {
							t.Errorf("%s intensity %f out of [0,1] (profile %+v, ctx %+v)", s, v, p, c)
						}
					}
				}
			}
		}
	}
}

func TestUpdateState_TieBreakOrder(t *testing.T) {
	tests := []struct {
		name    string
		weights Weights
		want    State
	}{
		{"all equal picks confused", flatWeights(0.5, 0.5, 0.5, 0.5), StateConfused},
		{"in_control beats later ties", flatWeights(0.1, 0.5, 0.5, 0.5), StateInControl},
		{"neutral beats frustrated tie", flatWeights(0.1, 0.2, 0.5, 0.5), StateNeutral},
		{"strict max wins", flatWeights(0.1, 0.2, 0.3, 0.4), StateFrustrated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(defaultProfile(), tt.weights)
			got, in := e.UpdateState(DefaultContext(), 0.5)
			if got != tt.want {
				t.Errorf("dominant = %s, want %s (intensities %v)", got, tt.want, in)
			}
			if e.Current() != tt.want {
				t.Errorf("Current() = %s, want %s", e.Current(), tt.want)
			}
		})
	}
}

func TestUpdateState_RecordsHistoryAndIntensities(t *testing.T) {
	e := NewEngine(defaultProfile(), DefaultWeights())
	if e.Current() != StateNeutral {
		t.Fatalf("initial state = %s, want neutral", e.Current())
	}

	state, in := e.UpdateState(DefaultContext(), 0.5)
	if len(in) != 4 {
		t.Errorf("len(intensities) = %d, want 4", len(in))
	}
	if e.Intensity(state) != in[state] {
		t.Errorf("Intensity(%s) = %f, want %f", state, e.Intensity(state), in[state])
	}

	// Mutating the returned map must not leak into the engine.
	in[StateConfused] = -1
	if e.Intensity(StateConfused) < 0 {
		t.Error("returned intensities alias engine state")
	}

	h := e.History()
	if len(h) != 2 || h[0] != StateNeutral || h[1] != state {
		t.Errorf("History = %v, want [neutral %s]", h, state)
	}

	e.Reset()
	if e.Current() != StateNeutral || len(e.History()) != 1 || len(e.Intensities()) != 0 {
		t.Errorf("Reset left state %s, history %v, intensities %v", e.Current(), e.History(), e.Intensities())
	}
}

func TestHighNeuroticismUnfamiliarUser_IsConfused(t *testing.T) {
	p := defaultProfile()
	p.Neuroticism = 0.7
	p.ProductFamiliarity = 0.1

	ctx := DefaultContext()
	ctx.InterfaceComplexity = 0.8

	e := NewEngine(p, DefaultWeights())
	state, in := e.UpdateState(ctx, 0.5)

	if in[StateConfused] <= 0.5 {
		t.Errorf("confused = %f, want > 0.5", in[StateConfused])
	}
	if in[StateConfused] <= in[StateInControl] {
		t.Errorf("confused %f should exceed in_control %f", in[StateConfused], in[StateInControl])
	}
	if state != StateConfused {
		t.Errorf("dominant = %s, want confused", state)
	}
}

func TestStateClassification(t *testing.T) {
	tests := []struct {
		state    State
		positive bool
		negative bool
	}{
		{StateNeutral, false, false},
		{StateConfused, false, true},
		{StateInControl, true, false},
		{StateFrustrated, false, true},
		{StateConfident, true, false},
		{StateOverwhelmed, false, true},
	}
	for _, tt := range tests {
		if tt.state.IsPositive() != tt.positive {
			t.Errorf("%s.IsPositive() = %v", tt.state, !tt.positive)
		}
		if tt.state.IsNegative() != tt.negative {
			t.Errorf("%s.IsNegative() = %v", tt.state, !tt.negative)
		}
	}
}

func TestWeights_GetSet(t *testing.T) {
	w := DefaultWeights()

	got, err := w.Get(StateFrustrated, "failure_weight")
	if err != nil || got != 0.3 {
		t.Fatalf("Get(frustrated, failure_weight) = %f, %v", got, err)
	}

	if err := w.Set(StateConfused, "interface_complexity_weight", 1.5); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if w.Confused.InterfaceComplexity != 1.5 {
		t.Errorf("InterfaceComplexity = %f, want 1.5", w.Confused.InterfaceComplexity)
	}

	if err := w.Set(StateNeutral, "patience_weight", 0.1); !errors.Is(err, ErrUnknownTunable) {
		t.Errorf("Set unknown field = %v, want ErrUnknownTunable", err)
	}
	if _, err := w.Get(StateConfident, "base_intensity"); !errors.Is(err, ErrUnknownTunable) {
		t.Errorf("Get reserved state = %v, want ErrUnknownTunable", err)
	}
	if err := w.Set(StateNeutral, "base_intensity", -0.1); !errors.Is(err, ErrNegativeWeight) {
		t.Errorf("Set negative = %v, want ErrNegativeWeight", err)
	}
}

func TestTunables_CoverEveryCoefficient(t *testing.T) {
	tunables := Tunables()
	if len(tunables) != 7+6+3+5 {
		t.Fatalf("len(Tunables) = %d, want 21", len(tunables))
	}
	if tunables[0].State != StateConfused || tunables[0].Field != "base_intensity" {
		t.Errorf("first tunable = %+v", tunables[0])
	}

	w := DefaultWeights()
	for _, tn := range tunables {
		if _, err := w.Get(tn.State, tn.Field); err != nil {
			t.Errorf("Get(%s, %s): %v", tn.State, tn.Field, err)
		}
	}
}

func TestWeights_Validate(t *testing.T) {
	if err := DefaultWeights().Validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
	w := DefaultWeights()
	w.InControl.Success = -1
	if err := w.Validate(); !errors.Is(err, ErrNegativeWeight) {
		t.Errorf("Validate = %v, want ErrNegativeWeight", err)
	}
}
