package memory

import (
	"strings"
	"time"
)

// Clock supplies the current time. Tests inject a fixed or stepping clock.
type Clock func() time.Time

// Config sizes the two tiers.
type Config struct {
	ShortTermCapacity      int     `json:"short_term_capacity" yaml:"short_term_capacity"`
	ConsolidationThreshold float64 `json:"consolidation_threshold" yaml:"consolidation_threshold"`
}

// DefaultConfig returns a 7-slot working memory and a 0.6 consolidation
// threshold.
func DefaultConfig() Config {
	return Config{
		ShortTermCapacity:      DefaultShortTermCapacity,
		ConsolidationThreshold: DefaultConsolidationThreshold,
	}
}

// System combines short-term and long-term memory behind one clock.
type System struct {
	short *ShortTerm
	long  *LongTerm
	now   Clock
}

// NewSystem builds a memory system. A nil clock reads wall time.
func NewSystem(cfg Config, clock Clock) *System {
	if clock == nil {
		clock = time.Now
	}
	return &System{
		short: NewShortTerm(cfg.ShortTermCapacity),
		long:  NewLongTerm(cfg.ConsolidationThreshold),
		now:   clock,
	}
}

// ShortTerm exposes the working memory tier.
func (s *System) ShortTerm() *ShortTerm { return s.short }

// LongTerm exposes the long-term tier.
func (s *System) LongTerm() *LongTerm { return s.long }

// AddRequest describes a new memory. Kind defaults to the context's kind.
type AddRequest struct {
	Content    string
	Kind       Kind
	Importance float64
	Valence    float64
	Context    Context
}

// Add stamps a new memory with the current time, puts it in short-term
// memory, and consolidates it into long-term memory when important enough.
func (s *System) Add(req AddRequest) *Item {
	kind := req.Kind
	if kind == "" && req.Context != nil {
		kind = req.Context.Kind()
	}

	item := newItem(s.now(), req.Content, kind, req.Importance, req.Valence, req.Context)
	s.short.Add(item)
	s.long.Consolidate(item)
	return item
}

// RecallSimilar finds long-term episodes related to a free-text context.
// Every whitespace-separated word is searched on its own; the union is
// ranked by strength and cut to limit. Words that appear in many memories
// flood the candidate pool before the cut.
func (s *System) RecallSimilar(context string, kind Kind, limit int) []*Item {
	now := s.now()

	seen := make(map[*Item]bool)
	var pool []*Item
	for _, word := range strings.Fields(strings.ToLower(context)) {
		for _, it := range s.long.SearchEpisodic(SearchOptions{Kind: kind, Keyword: word, Limit: limit}, now) {
			if seen[it] {
				continue
			}
			seen[it] = true
			pool = append(pool, it)
		}
	}

	sortByStrength(pool, now)
	if limit > 0 && len(pool) > limit {
		pool = pool[:limit]
	}
	return pool
}

// ActionPreference is the learned preference for an action key.
func (s *System) ActionPreference(action string) float64 {
	return s.long.ActionPreference(action)
}

// UpdateProcedural applies one outcome to an action preference.
func (s *System) UpdateProcedural(action string, success bool, rate float64) float64 {
	return s.long.UpdateProcedural(action, success, rate)
}

// WorkingMemoryContext summarizes the five newest short-term memories.
func (s *System) WorkingMemoryContext() string {
	recent := s.short.Recent(5)
	if len(recent) == 0 {
		return "No recent memories"
	}

	var b strings.Builder
	b.WriteString("Recent context:\n")
	for _, it := range recent {
		b.WriteString("- ")
		b.WriteString(it.Content)
		b.WriteString(" (")
		b.WriteString(string(it.Kind))
		b.WriteString(")\n")
	}
	return b.String()
}

// PerformConsolidation runs the decay sweep at the current time and
// returns how many episodes were forgotten. Nothing calls it on a timer.
func (s *System) PerformConsolidation() int {
	return s.long.DecayMemories(s.now())
}

// Stats is a plain-data snapshot of both tiers.
type Stats struct {
	ShortTermCapacity int                `json:"short_term_capacity"`
	ShortTermSize     int                `json:"short_term_size"`
	ShortTermItems    []Record           `json:"short_term_items,omitempty"`
	EpisodicSize      int                `json:"episodic_memory_size"`
	SemanticSize      int                `json:"semantic_memory_size"`
	ProceduralSize    int                `json:"procedural_memory_size"`
	RecentEpisodic    []Record           `json:"recent_episodic,omitempty"`
	Preferences       map[string]float64 `json:"procedural_preferences,omitempty"`
}

// Stats reports tier sizes plus the working memory and the five newest
// episodes.
func (s *System) Stats() Stats {
	st := Stats{
		ShortTermCapacity: s.short.Capacity(),
		ShortTermSize:     s.short.Len(),
		EpisodicSize:      s.long.Len(),
		SemanticSize:      s.long.SemanticLen(),
		ProceduralSize:    s.long.ProceduralLen(),
		Preferences:       s.long.Preferences(),
	}
	for _, it := range s.short.Recent(0) {
		st.ShortTermItems = append(st.ShortTermItems, it.Record())
	}

	episodes := s.long.Episodes()
	if len(episodes) > 5 {
		episodes = episodes[len(episodes)-5:]
	}
	for _, it := range episodes {
		st.RecentEpisodic = append(st.RecentEpisodic, it.Record())
	}
	return st
}
