package decision

import (
	"time"

	"github.com/nvandessel/synthuser/internal/emotion"
	"github.com/nvandessel/synthuser/internal/memory"
	"github.com/nvandessel/synthuser/internal/models"
	"github.com/nvandessel/synthuser/internal/ranking"
)

// Decision describes a committed choice.
type Decision struct {
	Time        time.Time            `json:"time"`
	PersonaID   string               `json:"persona_id"`
	Interaction int                  `json:"interaction"`
	Choice      ranking.ElementScore `json:"choice"`
	Candidates  int                  `json:"candidates"`
	Emotion     emotion.State        `json:"emotion"`
	Intensities emotion.Intensities  `json:"emotion_intensities"`
	EnergyLevel float64              `json:"energy_level"`
	GoalID      string               `json:"goal_id,omitempty"`
}

// Outcome describes the recorded result of an action.
type Outcome struct {
	Time        time.Time         `json:"time"`
	PersonaID   string            `json:"persona_id"`
	Interaction int               `json:"interaction"`
	Element     models.WebElement `json:"element"`
	ActionKey   string            `json:"action_key"`
	Success     bool              `json:"success"`
	Valence     float64           `json:"valence"`
	Preference  float64           `json:"preference"`
	Emotion     emotion.State     `json:"emotion"`
}

// Observer is told about every decision and outcome after the engine has
// applied it. Errors are logged and otherwise ignored.
type Observer interface {
	OnDecision(Decision) error
	OnOutcome(Outcome) error
}

// Summary is a plain-data snapshot of the engine for display or logging.
type Summary struct {
	PersonaID          string             `json:"persona_id" yaml:"persona_id"`
	CurrentEmotion     emotion.State      `json:"current_emotion" yaml:"current_emotion"`
	EmotionIntensities map[string]float64 `json:"emotion_intensities" yaml:"emotion_intensities"`
	EnergyLevel        float64            `json:"energy_level" yaml:"energy_level"`
	InteractionCount   int                `json:"interaction_count" yaml:"interaction_count"`
	CurrentGoal        *string            `json:"current_goal" yaml:"current_goal"`
	MemoryStats        memory.Stats       `json:"memory_stats" yaml:"memory_stats"`
}

// Summary snapshots the engine.
func (e *Engine) Summary() Summary {
	s := Summary{
		PersonaID:          e.persona.ID,
		CurrentEmotion:     e.emotions.Current(),
		EmotionIntensities: e.emotions.Intensities().Plain(),
		EnergyLevel:        e.persona.EnergyLevel,
		InteractionCount:   e.interactions,
		MemoryStats:        e.memory.Stats(),
	}
	if e.goal != nil {
		desc := e.goal.Description
		s.CurrentGoal = &desc
	}
	return s
}
