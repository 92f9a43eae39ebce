package memory

import (
	"cmp"
	"maps"
	"slices"
	"strings"
	"time"
)

const (
	// DefaultConsolidationThreshold is the minimum importance for an item
	// to enter long-term memory.
	DefaultConsolidationThreshold = 0.6

	// DecayThreshold is the strength below which a decay sweep forgets an
	// episodic memory.
	DecayThreshold = 0.2

	// DefaultLearningRate is the step applied to a procedural preference
	// per outcome.
	DefaultLearningRate = 0.1

	// neutralPreference is the procedural value of an unseen action.
	neutralPreference = 0.5

	defaultSearchLimit = 10
)

// LongTerm holds consolidated episodes, general knowledge, and learned
// action preferences. Episodes are only removed by DecayMemories.
type LongTerm struct {
	threshold  float64
	episodic   []*Item
	semantic   map[string]any
	procedural map[string]float64
}

// NewLongTerm returns an empty store consolidating items whose importance
// is at least threshold.
func NewLongTerm(threshold float64) *LongTerm {
	return &LongTerm{
		threshold:  threshold,
		semantic:   make(map[string]any),
		procedural: make(map[string]float64),
	}
}

// Threshold is the consolidation threshold.
func (l *LongTerm) Threshold() float64 { return l.threshold }

// Consolidate stores the item if it is important enough.
func (l *LongTerm) Consolidate(item *Item) bool {
	if item.Importance < l.threshold {
		return false
	}
	l.episodic = append(l.episodic, item)
	return true
}

// AddSemantic records a piece of general knowledge.
func (l *LongTerm) AddSemantic(key string, value any) {
	l.semantic[key] = value
}

// Semantic returns the knowledge stored under key.
func (l *LongTerm) Semantic(key string) (any, bool) {
	v, ok := l.semantic[key]
	return v, ok
}

// UpdateProcedural nudges the preference for an action by ±rate and keeps
// it within [0,1]. Unseen actions start at 0.5.
func (l *LongTerm) UpdateProcedural(action string, success bool, rate float64) float64 {
	v, ok := l.procedural[action]
	if !ok {
		v = neutralPreference
	}
	if success {
		v += rate
	} else {
		v -= rate
	}
	v = max(0.0, min(1.0, v))
	l.procedural[action] = v
	return v
}

// ActionPreference is the learned preference for an action, 0.5 if unseen.
func (l *LongTerm) ActionPreference(action string) float64 {
	if v, ok := l.procedural[action]; ok {
		return v
	}
	return neutralPreference
}

// SearchOptions narrow an episodic search. Zero values do not filter.
type SearchOptions struct {
	Kind          Kind
	Keyword       string
	MinImportance float64
	Limit         int // defaults to 10
}

// SearchEpisodic returns matching episodes, strongest first as of now.
// Each returned item counts as accessed, which strengthens it for later
// searches.
func (l *LongTerm) SearchEpisodic(opts SearchOptions, now time.Time) []*Item {
	results := filter(l.episodic, opts.Kind, opts.Keyword)
	if opts.MinImportance > 0 {
		results = slices.DeleteFunc(results, func(it *Item) bool {
			return it.Importance < opts.MinImportance
		})
	}

	sortByStrength(results, now)

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if len(results) > limit {
		results = results[:limit]
	}

	for _, it := range results {
		it.Access()
	}
	return results
}

// RecentOutcomes returns outcome memories newest first. A non-empty
// actionKey keeps only outcomes whose action key contains it.
func (l *LongTerm) RecentOutcomes(actionKey string, limit int) []*Item {
	var out []*Item
	for _, it := range l.episodic {
		if it.Kind != KindOutcome {
			continue
		}
		if actionKey != "" {
			oc, ok := it.Context.(OutcomeContext)
			if !ok || !strings.Contains(oc.ActionKey, actionKey) {
				continue
			}
		}
		out = append(out, it)
	}

	slices.SortStableFunc(out, func(a, b *Item) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// DecayMemories permanently forgets episodes weaker than DecayThreshold
// as of now. It returns the number forgotten.
func (l *LongTerm) DecayMemories(now time.Time) int {
	before := len(l.episodic)
	l.episodic = slices.DeleteFunc(l.episodic, func(it *Item) bool {
		return it.Strength(now) < DecayThreshold
	})
	return before - len(l.episodic)
}

// Episodes returns the episodic store, oldest first.
func (l *LongTerm) Episodes() []*Item { return slices.Clone(l.episodic) }

// Len is the number of episodes.
func (l *LongTerm) Len() int { return len(l.episodic) }

// SemanticLen is the number of semantic entries.
func (l *LongTerm) SemanticLen() int { return len(l.semantic) }

// ProceduralLen is the number of learned actions.
func (l *LongTerm) ProceduralLen() int { return len(l.procedural) }

// Preferences returns a copy of every learned action preference.
func (l *LongTerm) Preferences() map[string]float64 {
	return maps.Clone(l.procedural)
}

func sortByStrength(items []*Item, now time.Time) {
	slices.SortStableFunc(items, func(a, b *Item) int {
		return cmp.Compare(b.Strength(now), a.Strength(now))
	})
}
