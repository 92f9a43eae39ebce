// Package persona defines the synthetic user whose perception and choices
// the simulator models: personality, cognition, demographics, behavior and a
// mutable energy level that drains as the user works.
package persona

import (
	"errors"
	"fmt"
)

// ErrInvalidProfileValue reports a persona attribute outside its valid range.
var ErrInvalidProfileValue = errors.New("invalid profile value")

// PersonalityTraits are the five OCEAN factors, each in [0,1].
type PersonalityTraits struct {
	Openness          float64 `json:"openness" yaml:"openness"`
	Conscientiousness float64 `json:"conscientiousness" yaml:"conscientiousness"`
	Extraversion      float64 `json:"extraversion" yaml:"extraversion"`
	Agreeableness     float64 `json:"agreeableness" yaml:"agreeableness"`
	Neuroticism       float64 `json:"neuroticism" yaml:"neuroticism"`
}

// CognitiveAttributes describe how the user processes an interface.
type CognitiveAttributes struct {
	CognitiveAbility   float64 `json:"cognitive_ability" yaml:"cognitive_ability"`
	AttentionSpan      float64 `json:"attention_span" yaml:"attention_span"`
	TechSavviness      float64 `json:"tech_savviness" yaml:"tech_savviness"`
	ProductFamiliarity float64 `json:"product_familiarity" yaml:"product_familiarity"`
	ReadingSpeed       float64 `json:"reading_speed" yaml:"reading_speed"`
	VisualPreference   float64 `json:"visual_preference" yaml:"visual_preference"`
}

// DemographicProfile is descriptive only; no formula reads it.
type DemographicProfile struct {
	AgeGroup        string `json:"age_group" yaml:"age_group"`               // child, teen, adult, senior
	EducationLevel  string `json:"education_level" yaml:"education_level"`   // high_school, bachelor, master, phd
	TechBackground  string `json:"tech_background" yaml:"tech_background"`   // novice, moderate, expert
	PrimaryLanguage string `json:"primary_language" yaml:"primary_language"` // free text
}

// BehavioralTraits are behavioral tendencies, each in [0,1].
type BehavioralTraits struct {
	Impulsivity         float64 `json:"impulsivity" yaml:"impulsivity"`
	RiskTolerance       float64 `json:"risk_tolerance" yaml:"risk_tolerance"`
	Patience            float64 `json:"patience" yaml:"patience"`
	ExplorationTendency float64 `json:"exploration_tendency" yaml:"exploration_tendency"`
	HelpSeekingTendency float64 `json:"help_seeking_tendency" yaml:"help_seeking_tendency"`
}

// Persona is one simulated user. Only ApplyFatigue and Rest mutate it
// during a session.
type Persona struct {
	ID   string `json:"persona_id" yaml:"persona_id"`
	Name string `json:"name" yaml:"name"`

	Personality PersonalityTraits   `json:"personality" yaml:"personality"`
	Cognitive   CognitiveAttributes `json:"cognitive" yaml:"cognitive"`
	Demographic DemographicProfile  `json:"demographic" yaml:"demographic"`
	Behavioral  BehavioralTraits    `json:"behavioral" yaml:"behavioral"`

	// EnergyLevel drains with every decision; in [0,1].
	EnergyLevel float64 `json:"energy_level" yaml:"energy_level"`

	// FatigueAccumulationRate scales how much energy a task costs.
	FatigueAccumulationRate float64 `json:"fatigue_accumulation_rate" yaml:"fatigue_accumulation_rate"`

	// DecisionRandomness is the std-dev of the noise added to element scores.
	DecisionRandomness float64 `json:"decision_randomness" yaml:"decision_randomness"`
}

// New returns a persona with neutral defaults.
func New(id, name string) *Persona {
	return &Persona{
		ID:   id,
		Name: name,
		Personality: PersonalityTraits{
			Openness:          0.5,
			Conscientiousness: 0.5,
			Extraversion:      0.5,
			Agreeableness:     0.5,
			Neuroticism:       0.5,
		},
		Cognitive: CognitiveAttributes{
			CognitiveAbility:   0.5,
			AttentionSpan:      0.5,
			TechSavviness:      0.5,
			ProductFamiliarity: 0.1,
			ReadingSpeed:       0.5,
			VisualPreference:   0.5,
		},
		Demographic: DemographicProfile{
			AgeGroup:        "adult",
			EducationLevel:  "bachelor",
			TechBackground:  "moderate",
			PrimaryLanguage: "english",
		},
		Behavioral: BehavioralTraits{
			Impulsivity:         0.5,
			RiskTolerance:       0.5,
			Patience:            0.5,
			ExplorationTendency: 0.5,
			HelpSeekingTendency: 0.5,
		},
		EnergyLevel:             0.8,
		FatigueAccumulationRate: 0.01,
		DecisionRandomness:      0.1,
	}
}

// ApplyFatigue drains energy in proportion to task complexity.
func (p *Persona) ApplyFatigue(taskComplexity float64) {
	p.EnergyLevel = clamp01(p.EnergyLevel - taskComplexity*p.FatigueAccumulationRate)
}

// Rest restores energy, capped at 1.
func (p *Persona) Rest(amount float64) {
	p.EnergyLevel = clamp01(p.EnergyLevel + amount)
}

// StateModifiers scale the persona's static traits by current energy.
type StateModifiers struct {
	Cognitive   float64 `json:"cognitive_modifier"`
	Patience    float64 `json:"patience_modifier"`
	Attention   float64 `json:"attention_modifier"`
	Impulsivity float64 `json:"impulsivity_modifier"`
}

// StateModifiers reports how fatigue currently bends the persona: a tired
// user thinks less clearly and acts more impulsively.
func (p *Persona) StateModifiers() StateModifiers {
	e := p.EnergyLevel
	return StateModifiers{
		Cognitive:   e,
		Patience:    e,
		Attention:   e,
		Impulsivity: 1.0 - e,
	}
}

// Validate checks every bounded attribute. Nothing in the simulation calls
// it implicitly; loaders use it to reject bad files.
func (p *Persona) Validate() error {
	bounded := []struct {
		name  string
		value float64
	}{
		{"personality.openness", p.Personality.Openness},
		{"personality.conscientiousness", p.Personality.Conscientiousness},
		{"personality.extraversion", p.Personality.Extraversion},
		{"personality.agreeableness", p.Personality.Agreeableness},
		{"personality.neuroticism", p.Personality.Neuroticism},
		{"cognitive.cognitive_ability", p.Cognitive.CognitiveAbility},
		{"cognitive.attention_span", p.Cognitive.AttentionSpan},
		{"cognitive.tech_savviness", p.Cognitive.TechSavviness},
		{"cognitive.product_familiarity", p.Cognitive.ProductFamiliarity},
		{"cognitive.reading_speed", p.Cognitive.ReadingSpeed},
		{"cognitive.visual_preference", p.Cognitive.VisualPreference},
		{"behavioral.impulsivity", p.Behavioral.Impulsivity},
		{"behavioral.risk_tolerance", p.Behavioral.RiskTolerance},
		{"behavioral.patience", p.Behavioral.Patience},
		{"behavioral.exploration_tendency", p.Behavioral.ExplorationTendency},
		{"behavioral.help_seeking_tendency", p.Behavioral.HelpSeekingTendency},
		{"energy_level", p.EnergyLevel},
	}
	for _, b := range bounded {
		if b.value < 0 || b.value > 1 {
			return fmt.Errorf("%w: %s must be between 0 and 1, got %f", ErrInvalidProfileValue, b.name, b.value)
		}
	}

	if p.FatigueAccumulationRate < 0 {
		return fmt.Errorf("%w: fatigue_accumulation_rate must be non-negative, got %f", ErrInvalidProfileValue, p.FatigueAccumulationRate)
	}
	if p.DecisionRandomness < 0 {
		return fmt.Errorf("%w: decision_randomness must be non-negative, got %f", ErrInvalidProfileValue, p.DecisionRandomness)
	}
	return nil
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
