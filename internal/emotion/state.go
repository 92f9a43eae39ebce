// Package emotion turns a persona's static profile plus the current
// situation into an intensity per emotion state and picks the dominant one.
//
// There is no transition table: every update recomputes all intensities
// from scratch and the strongest state wins.
package emotion

// State is an emotion the synthetic user can be in.
type State string

const (
	StateNeutral    State = "neutral"
	StateConfused   State = "confused"
	StateInControl  State = "in_control"
	StateFrustrated State = "frustrated"

	// Reserved: classified but never computed.
	StateConfident   State = "confident"
	StateOverwhelmed State = "overwhelmed"
)

// ComputedStates lists the states UpdateState scores, in tie-break order.
var ComputedStates = []State{StateConfused, StateInControl, StateNeutral, StateFrustrated}

// IsPositive reports membership in the positive set.
func (s State) IsPositive() bool {
	return s == StateInControl || s == StateConfident
}

// IsNegative reports membership in the negative set.
func (s State) IsNegative() bool {
	return s == StateConfused || s == StateFrustrated || s == StateOverwhelmed
}

// Intensities maps each computed state to its intensity in [0,1].
type Intensities map[State]float64

// Plain returns the intensities keyed by state name for serialization.
func (in Intensities) Plain() map[string]float64 {
	out := make(map[string]float64, len(in))
	for s, v := range in {
		out[string(s)] = v
	}
	return out
}

// Profile is the slice of a persona the emotion model reads. It is a
// snapshot taken when the engine is built.
type Profile struct {
	ProductFamiliarity float64 `json:"product_familiarity" yaml:"product_familiarity"`
	CognitiveAbility   float64 `json:"cognitive_ability" yaml:"cognitive_ability"`
	Neuroticism        float64 `json:"ocean_neuroticism" yaml:"ocean_neuroticism"`
	Openness           float64 `json:"ocean_openness" yaml:"ocean_openness"`
	Conscientiousness  float64 `json:"ocean_conscientiousness" yaml:"ocean_conscientiousness"`
}

// Context is the situation at the time of a decision. The failure and
// success counters only grow; callers reset them explicitly.
type Context struct {
	InterfaceComplexity float64 `json:"interface_complexity" yaml:"interface_complexity"`
	ExternalPressure    float64 `json:"external_situation_pressure" yaml:"external_situation_pressure"`
	TaskDifficulty      float64 `json:"task_difficulty" yaml:"task_difficulty"`
	RecentFailures      int     `json:"recent_failures" yaml:"recent_failures"`
	RecentSuccesses     int     `json:"recent_successes" yaml:"recent_successes"`
}

// DefaultContext returns a calm, moderately difficult situation.
func DefaultContext() Context {
	return Context{
		InterfaceComplexity: 0.3,
		ExternalPressure:    0.1,
		TaskDifficulty:      0.5,
	}
}
