package emotion

import (
	"maps"
	"slices"
)

const (
	successStep = 0.1
	successCap  = 0.3
	failureStep = 0.15
	failureCap  = 0.4
)

// Engine computes emotion intensities for one persona. The calculators are
// pure; UpdateState is the only method that changes the engine.
type Engine struct {
	profile Profile
	weights Weights

	current     State
	history     []State
	intensities Intensities
}

// NewEngine returns an engine starting in the neutral state.
func NewEngine(profile Profile, weights Weights) *Engine {
	return &Engine{
		profile:     profile,
		weights:     weights,
		current:     StateNeutral,
		history:     []State{StateNeutral},
		intensities: Intensities{},
	}
}

// Profile returns the snapshot the engine was built with.
func (e *Engine) Profile() Profile { return e.profile }

// Weights returns the coefficients in use.
func (e *Engine) Weights() Weights { return e.weights }

// SetWeights replaces the coefficients. Stored intensities are left as they
// are until the next UpdateState.
func (e *Engine) SetWeights(w Weights) { e.weights = w }

// ConfusedIntensity rises with neuroticism, unfamiliarity, interface
// complexity and task difficulty, and falls with ability and openness.
func (e *Engine) ConfusedIntensity(ctx Context) float64 {
	w := e.weights.Confused
	p := e.profile

	v := w.Base
	v += p.Neuroticism * w.Neuroticism
	v += (1.0 - p.ProductFamiliarity) * w.Familiarity
	v -= p.CognitiveAbility * w.CognitiveAbility
	v -= p.Openness * w.Openness
	v += ctx.InterfaceComplexity * w.InterfaceComplexity
	v += ctx.TaskDifficulty * w.TaskDifficulty
	return clamp01(v)
}

// InControlIntensity rises with conscientiousness, familiarity, openness,
// pressure and recent successes. The success bonus saturates at 0.3.
func (e *Engine) InControlIntensity(ctx Context) float64 {
	w := e.weights.InControl
	p := e.profile

	v := w.Base
	v += p.Conscientiousness * w.Conscientiousness
	v += p.ProductFamiliarity * w.Familiarity
	v += p.Openness * w.Openness
	v += ctx.ExternalPressure * w.ExternalPressure
	if ctx.RecentSuccesses > 0 {
		v += min(successCap, float64(ctx.RecentSuccesses)*successStep) * w.Success
	}
	return clamp01(v)
}

// NeutralIntensity depends on the profile alone.
func (e *Engine) NeutralIntensity(ctx Context) float64 {
	w := e.weights.Neutral
	p := e.profile

	v := w.Base
	v += p.Neuroticism * w.Neuroticism
	v += p.Openness * w.Openness
	return clamp01(v)
}

// FrustratedIntensity rises with neuroticism, impatience, recent failures
// and pressure. The failure bonus saturates at 0.4.
func (e *Engine) FrustratedIntensity(ctx Context, patience float64) float64 {
	w := e.weights.Frustrated
	p := e.profile

	v := w.Base
	v += p.Neuroticism * w.Neuroticism
	v += (1.0 - patience) * w.Patience
	if ctx.RecentFailures > 0 {
		v += min(failureCap, float64(ctx.RecentFailures)*failureStep) * w.Failure
	}
	v += ctx.ExternalPressure * w.Pressure
	return clamp01(v)
}

// Compute returns every computed intensity without touching engine state.
func (e *Engine) Compute(ctx Context, patience float64) Intensities {
	return Intensities{
		StateConfused:   e.ConfusedIntensity(ctx),
		StateInControl:  e.InControlIntensity(ctx),
		StateNeutral:    e.NeutralIntensity(ctx),
		StateFrustrated: e.FrustratedIntensity(ctx, patience),
	}
}

// Dominant picks the strongest state. Ties go to the earliest state in
// ComputedStates.
func Dominant(in Intensities) State {
	best := ComputedStates[0]
	bestV := in[best]
	for _, s := range ComputedStates[1:] {
		if v := in[s]; v > bestV {
			best, bestV = s, v
		}
	}
	return best
}

// UpdateState recomputes all intensities, records the dominant state and
// returns it with a copy of the intensities.
func (e *Engine) UpdateState(ctx Context, patience float64) (State, Intensities) {
	in := e.Compute(ctx, patience)
	dominant := Dominant(in)

	e.intensities = in
	e.current = dominant
	e.history = append(e.history, dominant)

	return dominant, maps.Clone(in)
}

// Current is the last dominant state.
func (e *Engine) Current() State { return e.current }

// Intensity returns the last computed intensity for s, or 0.
func (e *Engine) Intensity(s State) float64 { return e.intensities[s] }

// Intensities returns a copy of the last computed intensities.
func (e *Engine) Intensities() Intensities { return maps.Clone(e.intensities) }

// History returns every dominant state so far, oldest first.
func (e *Engine) History() []State { return slices.Clone(e.history) }

// IsPositive reports whether the current state is positive.
func (e *Engine) IsPositive() bool { return e.current.IsPositive() }

// IsNegative reports whether the current state is negative.
func (e *Engine) IsNegative() bool { return e.current.IsNegative() }

// Reset returns the engine to neutral and forgets history.
func (e *Engine) Reset() {
	e.current = StateNeutral
	e.history = []State{StateNeutral}
	e.intensities = Intensities{}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
