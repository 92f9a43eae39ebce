package ranking

import (
	"fmt"

	"github.com/nvandessel/synthuser/internal/emotion"
)

// Weights multiply each component score before summing. They need not sum
// to 1.
type Weights struct {
	GoalAlignment     float64 `json:"goal_alignment" yaml:"goal_alignment"`
	VisualProminence  float64 `json:"visual_prominence" yaml:"visual_prominence"`
	CognitiveLoad     float64 `json:"cognitive_load" yaml:"cognitive_load"`
	Familiarity       float64 `json:"familiarity" yaml:"familiarity"`
	EmotionPreference float64 `json:"emotion_preference" yaml:"emotion_preference"`
	Position          float64 `json:"position" yaml:"position"`
	LearnedPreference float64 `json:"learned_preference" yaml:"learned_preference"`
	ContextRelevance  float64 `json:"context_relevance" yaml:"context_relevance"`
}

// DefaultWeights is the mix used when no emotion-specific table applies.
// Goal 25%, cognitive load and emotion 15% each, the rest 10% except
// context relevance at 5%.
func DefaultWeights() Weights {
	return Weights{
		GoalAlignment:     0.25,
		VisualProminence:  0.10,
		CognitiveLoad:     0.15,
		Familiarity:       0.10,
		EmotionPreference: 0.15,
		Position:          0.10,
		LearnedPreference: 0.10,
		ContextRelevance:  0.05,
	}
}

// WeightTable selects a weight mix by dominant emotion.
type WeightTable struct {
	Default    Weights `json:"default" yaml:"default"`
	Confused   Weights `json:"confused" yaml:"confused"`
	Frustrated Weights `json:"frustrated" yaml:"frustrated"`
	InControl  Weights `json:"in_control" yaml:"in_control"`
}

// DefaultWeightTable shifts weight toward prominence and simplicity when
// confused, toward shortcuts and habit when frustrated, and toward the
// goal when in control.
func DefaultWeightTable() WeightTable {
	confused := DefaultWeights()
	confused.VisualProminence = 0.20
	confused.CognitiveLoad = 0.20
	confused.GoalAlignment = 0.15

	frustrated := DefaultWeights()
	frustrated.EmotionPreference = 0.25
	frustrated.LearnedPreference = 0.15
	frustrated.GoalAlignment = 0.20

	inControl := DefaultWeights()
	inControl.GoalAlignment = 0.30
	inControl.ContextRelevance = 0.15

	return WeightTable{
		Default:    DefaultWeights(),
		Confused:   confused,
		Frustrated: frustrated,
		InControl:  inControl,
	}
}

// For returns the weights for a dominant emotion.
func (t WeightTable) For(state emotion.State) Weights {
	switch state {
	case emotion.StateConfused:
		return t.Confused
	case emotion.StateFrustrated:
		return t.Frustrated
	case emotion.StateInControl:
		return t.InControl
	default:
		return t.Default
	}
}

// Validate rejects negative weights.
func (t WeightTable) Validate() error {
	rows := []struct {
		name string
		w    Weights
	}{
		{"default", t.Default},
		{"confused", t.Confused},
		{"frustrated", t.Frustrated},
		{"in_control", t.InControl},
	}
	for _, r := range rows {
		for _, c := range (Components(r.w)).Named() {
			if c.Score < 0 {
				return fmt.Errorf("ranking weight %s.%s must be non-negative, got %f", r.name, c.Name, c.Score)
			}
		}
	}
	return nil
}
