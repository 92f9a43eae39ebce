package ranking

// Component names, as they appear in reasoning strings and serialized scores.
const (
	ComponentGoalAlignment     = "goal_alignment"
	ComponentVisualProminence  = "visual_prominence"
	ComponentCognitiveLoad     = "cognitive_load"
	ComponentFamiliarity       = "familiarity"
	ComponentEmotionPreference = "emotion_preference"
	ComponentPosition          = "position"
	ComponentLearnedPreference = "learned_preference"
	ComponentContextRelevance  = "context_relevance"
)

// Components are the eight independent signals behind an element's score.
// All but context relevance are clamped to [0,1].
type Components struct {
	GoalAlignment     float64 `json:"goal_alignment" yaml:"goal_alignment"`
	VisualProminence  float64 `json:"visual_prominence" yaml:"visual_prominence"`
	CognitiveLoad     float64 `json:"cognitive_load" yaml:"cognitive_load"`
	Familiarity       float64 `json:"familiarity" yaml:"familiarity"`
	EmotionPreference float64 `json:"emotion_preference" yaml:"emotion_preference"`
	Position          float64 `json:"position" yaml:"position"`
	LearnedPreference float64 `json:"learned_preference" yaml:"learned_preference"`
	ContextRelevance  float64 `json:"context_relevance" yaml:"context_relevance"`
}

// NamedScore pairs a component name with its value.
type NamedScore struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Named lists the components in their canonical order.
func (c Components) Named() []NamedScore {
	return []NamedScore{
		{ComponentGoalAlignment, c.GoalAlignment},
		{ComponentVisualProminence, c.VisualProminence},
		{ComponentCognitiveLoad, c.CognitiveLoad},
		{ComponentFamiliarity, c.Familiarity},
		{ComponentEmotionPreference, c.EmotionPreference},
		{ComponentPosition, c.Position},
		{ComponentLearnedPreference, c.LearnedPreference},
		{ComponentContextRelevance, c.ContextRelevance},
	}
}

// Weighted is the dot product of the components and w.
func (c Components) Weighted(w Weights) float64 {
	return c.GoalAlignment*w.GoalAlignment +
		c.VisualProminence*w.VisualProminence +
		c.CognitiveLoad*w.CognitiveLoad +
		c.Familiarity*w.Familiarity +
		c.EmotionPreference*w.EmotionPreference +
		c.Position*w.Position +
		c.LearnedPreference*w.LearnedPreference +
		c.ContextRelevance*w.ContextRelevance
}
