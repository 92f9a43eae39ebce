// Package memory provides the synthetic user's two-tier memory: a small
// short-term buffer of everything recent, and a long-term store holding the
// important episodes, general knowledge, and learned action preferences.
package memory

import (
	"time"

	"github.com/google/uuid"
)

// Kind tags what a memory is about.
type Kind string

const (
	KindObservation Kind = "observation"
	KindAction      Kind = "action"
	KindOutcome     Kind = "outcome"
	KindEmotion     Kind = "emotion"
)

// DefaultDecayRate is the fraction of time-strength lost per hour.
const DefaultDecayRate = 0.1

// Item is a single memory. A consolidated item is shared by both tiers.
type Item struct {
	ID          string
	Timestamp   time.Time
	Content     string
	Kind        Kind
	Importance  float64 // [0,1]
	Valence     float64 // [-1,1]
	Context     Context
	AccessCount int
	DecayRate   float64
}

func newItem(now time.Time, content string, kind Kind, importance, valence float64, ctx Context) *Item {
	return &Item{
		ID:         uuid.NewString(),
		Timestamp:  now,
		Content:    content,
		Kind:       kind,
		Importance: importance,
		Valence:    valence,
		Context:    ctx,
		DecayRate:  DefaultDecayRate,
	}
}

// Access records a retrieval.
func (m *Item) Access() {
	m.AccessCount++
}

// Strength combines recency, reinforcement and importance into [0,1].
// Time strength falls linearly with hours elapsed; each access adds 0.1 to
// a reinforcement factor that starts at 0.5 and caps at 1.
func (m *Item) Strength(now time.Time) float64 {
	hours := now.Sub(m.Timestamp).Hours()
	timeFactor := max(0.0, 1.0-hours*m.DecayRate)
	accessFactor := min(1.0, 0.5+float64(m.AccessCount)*0.1)

	s := timeFactor*0.5 + accessFactor*0.3 + m.Importance*0.2
	return max(0.0, min(1.0, s))
}

// Record is the plain-data form of an Item.
type Record struct {
	ID          string         `json:"id" yaml:"id"`
	Timestamp   time.Time      `json:"timestamp" yaml:"timestamp"`
	Content     string         `json:"content" yaml:"content"`
	Kind        Kind           `json:"memory_type" yaml:"memory_type"`
	Importance  float64        `json:"importance" yaml:"importance"`
	Valence     float64        `json:"emotional_valence" yaml:"emotional_valence"`
	Context     map[string]any `json:"context,omitempty" yaml:"context,omitempty"`
	AccessCount int            `json:"access_count" yaml:"access_count"`
}

// Record converts the item for serialization.
func (m *Item) Record() Record {
	r := Record{
		ID:          m.ID,
		Timestamp:   m.Timestamp,
		Content:     m.Content,
		Kind:        m.Kind,
		Importance:  m.Importance,
		Valence:     m.Valence,
		AccessCount: m.AccessCount,
	}
	if m.Context != nil {
		r.Context = m.Context.Fields()
	}
	return r
}
