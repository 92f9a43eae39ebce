package emotion

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownTunable is returned when a (state, field) pair names no coefficient.
	ErrUnknownTunable = errors.New("unknown emotion weight")

	// ErrNegativeWeight is returned when a coefficient would be set below zero.
	ErrNegativeWeight = errors.New("emotion weight must be non-negative")
)

// ConfusedWeights drive the confused intensity.
type ConfusedWeights struct {
	Base                float64 `json:"base_intensity" yaml:"base_intensity"`
	Neuroticism         float64 `json:"neuroticism_weight" yaml:"neuroticism_weight"`
	Familiarity         float64 `json:"familiarity_weight" yaml:"familiarity_weight"`
	CognitiveAbility    float64 `json:"cognitive_ability_weight" yaml:"cognitive_ability_weight"`
	Openness            float64 `json:"openness_weight" yaml:"openness_weight"`
	InterfaceComplexity float64 `json:"interface_complexity_weight" yaml:"interface_complexity_weight"`
	TaskDifficulty      float64 `json:"task_difficulty_weight" yaml:"task_difficulty_weight"`
}

// InControlWeights drive the in-control intensity.
type InControlWeights struct {
	Base              float64 `json:"base_intensity" yaml:"base_intensity"`
	Conscientiousness float64 `json:"conscientiousness_weight" yaml:"conscientiousness_weight"`
	Familiarity       float64 `json:"familiarity_weight" yaml:"familiarity_weight"`
	Openness          float64 `json:"openness_weight" yaml:"openness_weight"`
	ExternalPressure  float64 `json:"external_pressure_weight" yaml:"external_pressure_weight"`
	Success           float64 `json:"success_weight" yaml:"success_weight"`
}

// NeutralWeights drive the neutral intensity.
type NeutralWeights struct {
	Base        float64 `json:"base_intensity" yaml:"base_intensity"`
	Neuroticism float64 `json:"neuroticism_weight" yaml:"neuroticism_weight"`
	Openness    float64 `json:"openness_weight" yaml:"openness_weight"`
}

// FrustratedWeights drive the frustrated intensity.
type FrustratedWeights struct {
	Base        float64 `json:"base_intensity" yaml:"base_intensity"`
	Neuroticism float64 `json:"neuroticism_weight" yaml:"neuroticism_weight"`
	Failure     float64 `json:"failure_weight" yaml:"failure_weight"`
	Patience    float64 `json:"patience_weight" yaml:"patience_weight"`
	Pressure    float64 `json:"pressure_weight" yaml:"pressure_weight"`
}

// Weights is the full coefficient set of the emotion model. Coefficients
// are non-negative but may exceed 1 to amplify a factor.
type Weights struct {
	Confused   ConfusedWeights   `json:"confused" yaml:"confused"`
	InControl  InControlWeights  `json:"in_control" yaml:"in_control"`
	Neutral    NeutralWeights    `json:"neutral" yaml:"neutral"`
	Frustrated FrustratedWeights `json:"frustrated" yaml:"frustrated"`
}

// DefaultWeights returns the calibrated coefficients.
func DefaultWeights() Weights {
	return Weights{
		Confused: ConfusedWeights{
			Base:                0.4,
			Neuroticism:         0.5,
			Familiarity:         0.2,
			CognitiveAbility:    0.1,
			Openness:            0.15,
			InterfaceComplexity: 0.2,
			TaskDifficulty:      0.15,
		},
		InControl: InControlWeights{
			Base:              0.5,
			Conscientiousness: 0.2,
			Familiarity:       0.3,
			Openness:          0.25,
			ExternalPressure:  0.1,
			Success:           0.2,
		},
		Neutral: NeutralWeights{
			Base:        0.1,
			Neuroticism: 0.1,
			Openness:    0.1,
		},
		Frustrated: FrustratedWeights{
			Base:        0.2,
			Neuroticism: 0.4,
			Failure:     0.3,
			Patience:    0.2,
			Pressure:    0.15,
		},
	}
}

// Tunable names one coefficient of the model.
type Tunable struct {
	State State  `json:"state"`
	Field string `json:"field"`
}

// fields returns addressable coefficients keyed by state, in declaration order.
func (w *Weights) fields() map[State][]namedField {
	return map[State][]namedField{
		StateConfused: {
			{"base_intensity", &w.Confused.Base},
			{"neuroticism_weight", &w.Confused.Neuroticism},
			{"familiarity_weight", &w.Confused.Familiarity},
			{"cognitive_ability_weight", &w.Confused.CognitiveAbility},
			{"openness_weight", &w.Confused.Openness},
			{"interface_complexity_weight", &w.Confused.InterfaceComplexity},
			{"task_difficulty_weight", &w.Confused.TaskDifficulty},
		},
		StateInControl: {
			{"base_intensity", &w.InControl.Base},
			{"conscientiousness_weight", &w.InControl.Conscientiousness},
			{"familiarity_weight", &w.InControl.Familiarity},
			{"openness_weight", &w.InControl.Openness},
			{"external_pressure_weight", &w.InControl.ExternalPressure},
			{"success_weight", &w.InControl.Success},
		},
		StateNeutral: {
			{"base_intensity", &w.Neutral.Base},
			{"neuroticism_weight", &w.Neutral.Neuroticism},
			{"openness_weight", &w.Neutral.Openness},
		},
		StateFrustrated: {
			{"base_intensity", &w.Frustrated.Base},
			{"neuroticism_weight", &w.Frustrated.Neuroticism},
			{"failure_weight", &w.Frustrated.Failure},
			{"patience_weight", &w.Frustrated.Patience},
			{"pressure_weight", &w.Frustrated.Pressure},
		},
	}
}

type namedField struct {
	name string
	ptr  *float64
}

// Tunables enumerates every coefficient an operator can adjust.
func Tunables() []Tunable {
	var w Weights
	fields := w.fields()

	var out []Tunable
	for _, s := range ComputedStates {
		for _, f := range fields[s] {
			out = append(out, Tunable{State: s, Field: f.name})
		}
	}
	return out
}

func (w *Weights) lookup(state State, field string) (*float64, error) {
	for _, f := range w.fields()[state] {
		if f.name == field {
			return f.ptr, nil
		}
	}
	return nil, fmt.Errorf("%w: %s.%s", ErrUnknownTunable, state, field)
}

// Get returns one coefficient by name.
func (w Weights) Get(state State, field string) (float64, error) {
	ptr, err := w.lookup(state, field)
	if err != nil {
		return 0, err
	}
	return *ptr, nil
}

// Set replaces one coefficient by name.
func (w *Weights) Set(state State, field string, value float64) error {
	if value < 0 {
		return fmt.Errorf("%w: %s.%s = %f", ErrNegativeWeight, state, field, value)
	}
	ptr, err := w.lookup(state, field)
	if err != nil {
		return err
	}
	*ptr = value
	return nil
}

// Validate rejects negative coefficients.
func (w Weights) Validate() error {
	for state, fields := range w.fields() {
		for _, f := range fields {
			if *f.ptr < 0 {
				return fmt.Errorf("%w: %s.%s = %f", ErrNegativeWeight, state, f.name, *f.ptr)
			}
		}
	}
	return nil
}
