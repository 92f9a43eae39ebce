package persona

import (
	"fmt"
	"math/rand/v2"
)

// Random builds a persona with traits drawn from plausible ranges.
// Pass a seeded rng for reproducible personas. An empty id becomes user_NNNN.
func Random(rng *rand.Rand, id string) *Persona {
	if id == "" {
		id = fmt.Sprintf("user_%d", 1000+rng.IntN(9000))
	}

	uniform := func(lo, hi float64) float64 {
		return lo + rng.Float64()*(hi-lo)
	}

	p := New(id, "Synthetic User "+id)
	p.Personality = PersonalityTraits{
		Openness:          uniform(0.2, 0.9),
		Conscientiousness: uniform(0.2, 0.9),
		Extraversion:      uniform(0.2, 0.9),
		Agreeableness:     uniform(0.2, 0.9),
		Neuroticism:       uniform(0.2, 0.9),
	}
	p.Cognitive = CognitiveAttributes{
		CognitiveAbility:   uniform(0.3, 0.9),
		AttentionSpan:      uniform(0.3, 0.9),
		TechSavviness:      uniform(0.2, 0.9),
		ProductFamiliarity: uniform(0.1, 0.7),
		ReadingSpeed:       uniform(0.3, 0.9),
		VisualPreference:   uniform(0.3, 0.8),
	}
	p.Behavioral = BehavioralTraits{
		Impulsivity:         uniform(0.2, 0.8),
		RiskTolerance:       uniform(0.2, 0.8),
		Patience:            uniform(0.2, 0.8),
		ExplorationTendency: uniform(0.2, 0.8),
		HelpSeekingTendency: uniform(0.2, 0.8),
	}
	p.EnergyLevel = uniform(0.6, 1.0)
	p.DecisionRandomness = uniform(0.05, 0.2)
	return p
}
