// Package ranking scores candidate page elements from the synthetic user's
// point of view and orders them best first.
package ranking

import (
	"cmp"
	"math"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/nvandessel/synthuser/internal/emotion"
	"github.com/nvandessel/synthuser/internal/memory"
	"github.com/nvandessel/synthuser/internal/models"
	"github.com/nvandessel/synthuser/internal/persona"
)

const (
	// Reference viewport for position normalization.
	viewportWidth  = 1920.0
	viewportHeight = 1080.0

	keywordMatchBonus = 0.3
	familiarityRecall = 3
)

// MemoryReader is the part of the memory system the scorer consults.
type MemoryReader interface {
	RecallSimilar(context string, kind memory.Kind, limit int) []*memory.Item
	ActionPreference(action string) float64
}

// NoiseSource supplies standard normal samples. *rand.Rand from
// math/rand/v2 satisfies it.
type NoiseSource interface {
	NormFloat64() float64
}

// Input is everything about the user that scoring reads for one cycle.
type Input struct {
	Persona   *persona.Persona
	Modifiers persona.StateModifiers
	State     emotion.State
	Goal      *models.Goal // nil when the user has no goal
	Memory    MemoryReader
}

// ElementScore is one ranked element with its breakdown.
type ElementScore struct {
	Element    models.WebElement `json:"element"`
	Total      float64           `json:"total_score"`
	Components Components        `json:"component_scores"`
	Reasoning  string            `json:"reasoning"`
}

// Scorer ranks elements using an emotion-dependent weight table.
type Scorer struct {
	table WeightTable
}

// NewScorer creates a scorer with the given weight table.
func NewScorer(table WeightTable) *Scorer {
	return &Scorer{table: table}
}

// Table returns the weight table in use.
func (s *Scorer) Table() WeightTable { return s.table }

// Rank scores every visible, enabled element and sorts them best first.
// Hidden or disabled elements are dropped, not scored low. Elements with
// equal totals keep their input order.
func (s *Scorer) Rank(elements []models.WebElement, in Input, noise NoiseSource) []ElementScore {
	scored := make([]ElementScore, 0, len(elements))
	for _, el := range elements {
		if !el.Actionable() {
			continue
		}
		scored = append(scored, s.Score(el, in, noise))
	}

	slices.SortStableFunc(scored, func(a, b ElementScore) int {
		return cmp.Compare(b.Total, a.Total)
	})
	return scored
}

// Score evaluates a single element. Gaussian noise with the persona's
// decision randomness as std-dev is added and the total floored at zero.
func (s *Scorer) Score(el models.WebElement, in Input, noise NoiseSource) ElementScore {
	c := s.Components(el, in)
	total := c.Weighted(s.table.For(in.State))

	if sigma := in.Persona.DecisionRandomness; sigma > 0 && noise != nil {
		total += noise.NormFloat64() * sigma
	}
	total = max(0.0, total)

	return ElementScore{
		Element:    el,
		Total:      total,
		Components: c,
		Reasoning:  Reasoning(c, in.State, in.Goal),
	}
}

// Components computes the eight signals for an element.
func (s *Scorer) Components(el models.WebElement, in Input) Components {
	return Components{
		GoalAlignment:     GoalAlignment(el, in.Goal),
		VisualProminence:  VisualProminence(el, in.Persona.Cognitive.AttentionSpan),
		CognitiveLoad:     CognitiveLoad(el, in.Persona.Cognitive.CognitiveAbility*in.Modifiers.Cognitive),
		Familiarity:       familiarity(el, in),
		EmotionPreference: EmotionPreference(el, in.State),
		Position:          PositionScore(el.Position),
		LearnedPreference: learnedPreference(el, in.Memory),
		ContextRelevance:  el.ContextRelevance,
	}
}

// GoalAlignment adds 0.3 for every goal keyword found in the element's text
// or semantic meaning, scales by goal priority, and caps at 1. Without a
// goal it is neutral.
func GoalAlignment(el models.WebElement, goal *models.Goal) float64 {
	if goal == nil {
		return 0.5
	}

	text := strings.ToLower(el.Text)
	semantic := strings.ToLower(el.SemanticMeaning)

	score := 0.0
	for _, kw := range goal.Keywords {
		kw = strings.ToLower(kw)
		if strings.Contains(text, kw) || strings.Contains(semantic, kw) {
			score += keywordMatchBonus
		}
	}
	score *= goal.Priority
	return min(1.0, score)
}

// VisualProminence amplifies prominence by half for users with a short
// attention span.
func VisualProminence(el models.WebElement, attentionSpan float64) float64 {
	p := el.VisualProminence
	if attentionSpan < 0.5 {
		p *= 1.5
	}
	return min(1.0, p)
}

// ElementComplexity estimates how demanding an element is to operate.
func ElementComplexity(el models.WebElement) float64 {
	c := 0.3
	switch el.Type {
	case models.ElementDropdown, models.ElementMultiSelect, models.ElementForm:
		c += 0.3
	case models.ElementButton, models.ElementLink:
		c += 0.1
	}
	c += min(0.4, float64(utf8.RuneCountInString(el.Text))/100)
	return c
}

// CognitiveLoad rewards simple elements the user can handle and penalizes
// elements beyond the user's current capacity in proportion to the overrun.
func CognitiveLoad(el models.WebElement, capacity float64) float64 {
	complexity := ElementComplexity(el)
	if complexity <= capacity {
		return 1.0 - complexity*0.5
	}
	return max(0.0, 1.0-(complexity-capacity))
}

func familiarity(el models.WebElement, in Input) float64 {
	if in.Memory == nil {
		return in.Persona.Cognitive.ProductFamiliarity
	}
	recalled := in.Memory.RecallSimilar(el.Type+" "+el.Text, memory.KindAction, familiarityRecall)
	return Familiarity(recalled, in.Persona.Cognitive.ProductFamiliarity)
}

// Familiarity maps the mean valence of recalled experiences to [0,1].
// With nothing recalled it falls back to the persona's product familiarity.
func Familiarity(recalled []*memory.Item, productFamiliarity float64) float64 {
	if len(recalled) == 0 {
		return productFamiliarity
	}
	sum := 0.0
	for _, m := range recalled {
		sum += m.Valence
	}
	avg := sum / float64(len(recalled))
	return clamp01(0.5 + avg*0.5)
}

// EmotionPreference encodes what each emotion draws the user toward.
// A confused user wants obvious, simple, helpful elements; a frustrated
// user wants a way out and avoids forms; a user in control is willing to
// take on richer controls.
func EmotionPreference(el models.WebElement, state emotion.State) float64 {
	score := 0.5
	text := strings.ToLower(el.Text)

	switch state {
	case emotion.StateConfused:
		if el.Type == models.ElementButton || el.Type == models.ElementLink {
			score += 0.2
		}
		if el.VisualProminence > 0.7 {
			score += 0.2
		}
		if strings.Contains(text, "help") || strings.Contains(text, "guide") {
			score += 0.3
		}

	case emotion.StateFrustrated:
		if strings.Contains(text, "skip") || strings.Contains(text, "close") {
			score += 0.3
		}
		if el.Type == models.ElementButton {
			score += 0.2
		}
		if el.Type == models.ElementForm || el.Type == models.ElementMultiSelect {
			score -= 0.3
		}

	case emotion.StateInControl:
		score += 0.1
		if el.Type == models.ElementDropdown || el.Type == models.ElementForm {
			score += 0.1
		}
	}

	return clamp01(score)
}

// PositionScore follows the Western top-left to bottom-right reading
// pattern, with a small pull toward the center of the viewport.
func PositionScore(pos models.Position) float64 {
	nx := float64(pos.X) / viewportWidth
	ny := float64(pos.Y) / viewportHeight

	score := 1.0 - (nx*0.3 + ny*0.4)

	dist := math.Hypot(nx-0.5, ny-0.5)
	score += max(0.0, 0.2-dist*0.2)

	return clamp01(score)
}

func learnedPreference(el models.WebElement, mem MemoryReader) float64 {
	if mem == nil {
		return 0.5
	}
	return mem.ActionPreference(el.ActionKey())
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
