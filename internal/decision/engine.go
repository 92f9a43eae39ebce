// Package decision runs the synthetic user's decision loop: it owns the
// session state (goal, situational context, counters) and drives the
// emotion engine, memory and scorer for each ranking, choice and outcome.
//
// An Engine is not safe for concurrent use. Simulating several users means
// one Engine per user, each with its own noise source.
package decision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/nvandessel/synthuser/internal/emotion"
	"github.com/nvandessel/synthuser/internal/logging"
	"github.com/nvandessel/synthuser/internal/memory"
	"github.com/nvandessel/synthuser/internal/models"
	"github.com/nvandessel/synthuser/internal/persona"
	"github.com/nvandessel/synthuser/internal/ranking"
)

// ErrEmptyCandidateSet is returned by MakeDecision when no offered element
// is both visible and enabled.
var ErrEmptyCandidateSet = errors.New("no visible and enabled elements")

const (
	decisionComplexity = 0.3

	goalImportance    = 0.7
	actionImportance  = 0.5
	actionValence     = 0.1
	outcomeImportance = 0.7
	outcomeValence    = 0.5
)

// Engine is one synthetic user making decisions.
type Engine struct {
	persona  *persona.Persona
	emotions *emotion.Engine
	memory   *memory.System
	scorer   *ranking.Scorer

	noise        ranking.NoiseSource
	now          memory.Clock
	learningRate float64

	log       *slog.Logger
	decisions *logging.DecisionLogger
	observers []Observer

	// Options collect these before the engine is assembled.
	emotionWeights emotion.Weights
	weightTable    ranking.WeightTable

	goal          *models.Goal
	ctx           emotion.Context
	interactions  int
	recentActions []string
	lastRanking   []ranking.ElementScore
}

// Option configures an Engine.
type Option func(*Engine)

// WithWeights sets the emotion coefficients.
func WithWeights(w emotion.Weights) Option {
	return func(e *Engine) { e.emotionWeights = w }
}

// WithWeightTable sets the per-emotion ranking weights.
func WithWeightTable(t ranking.WeightTable) Option {
	return func(e *Engine) { e.weightTable = t }
}

// WithMemory uses an existing memory system instead of a fresh default one.
func WithMemory(m *memory.System) Option {
	return func(e *Engine) { e.memory = m }
}

// WithNoise sets the source of score noise. Pass a seeded *rand.Rand for
// reproducible runs.
func WithNoise(n ranking.NoiseSource) Option {
	return func(e *Engine) { e.noise = n }
}

// WithClock sets the clock used to stamp memories.
func WithClock(c memory.Clock) Option {
	return func(e *Engine) { e.now = c }
}

// WithLogger sets the operational logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithDecisionLogger sets the JSONL decision trace. A nil logger is fine.
func WithDecisionLogger(dl *logging.DecisionLogger) Option {
	return func(e *Engine) { e.decisions = dl }
}

// WithObserver adds an observer notified of every decision and outcome.
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observers = append(e.observers, o) }
}

// WithLearningRate sets the procedural learning step.
func WithLearningRate(rate float64) Option {
	return func(e *Engine) { e.learningRate = rate }
}

// New creates an engine for p. The persona is owned by the engine from here
// on: fatigue and rest modify it in place.
func New(p *persona.Persona, opts ...Option) *Engine {
	e := &Engine{
		persona:        p,
		now:            time.Now,
		learningRate:   memory.DefaultLearningRate,
		emotionWeights: emotion.DefaultWeights(),
		weightTable:    ranking.DefaultWeightTable(),
		ctx:            emotion.DefaultContext(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.log == nil {
		e.log = logging.Discard()
	}
	if e.memory == nil {
		e.memory = memory.NewSystem(memory.DefaultConfig(), e.now)
	}
	if e.noise == nil {
		seed := uint64(e.now().UnixNano())
		e.noise = rand.New(rand.NewPCG(seed, seed>>1|1))
	}

	e.emotions = emotion.NewEngine(profileFor(p), e.emotionWeights)
	e.scorer = ranking.NewScorer(e.weightTable)
	return e
}

func profileFor(p *persona.Persona) emotion.Profile {
	return emotion.Profile{
		ProductFamiliarity: p.Cognitive.ProductFamiliarity,
		CognitiveAbility:   p.Cognitive.CognitiveAbility,
		Neuroticism:        p.Personality.Neuroticism,
		Openness:           p.Personality.Openness,
		Conscientiousness:  p.Personality.Conscientiousness,
	}
}

// Persona returns the simulated user.
func (e *Engine) Persona() *persona.Persona { return e.persona }

// Emotions returns the emotion engine.
func (e *Engine) Emotions() *emotion.Engine { return e.emotions }

// Memory returns the memory system.
func (e *Engine) Memory() *memory.System { return e.memory }

// Goal returns the active goal, or nil.
func (e *Engine) Goal() *models.Goal { return e.goal }

// Context returns the current situational context.
func (e *Engine) Context() emotion.Context { return e.ctx }

// InteractionCount is the number of decisions made so far.
func (e *Engine) InteractionCount() int { return e.interactions }

// RecentActions lists the IDs of every chosen element, oldest first.
func (e *Engine) RecentActions() []string { return slices.Clone(e.recentActions) }

// LastRanking returns the result of the most recent ranking, best first.
func (e *Engine) LastRanking() []ranking.ElementScore { return slices.Clone(e.lastRanking) }

// SetGoal replaces the active goal and remembers noticing it.
func (e *Engine) SetGoal(g models.Goal) {
	e.goal = &g
	e.memory.Add(memory.AddRequest{
		Content:    "New goal: " + g.Description,
		Importance: goalImportance,
		Context:    memory.ObservationContext{GoalID: g.ID},
	})
	e.log.Debug("goal set", "persona", e.persona.ID, "goal", g.ID, "keywords", g.Keywords)
	e.decisions.Log(logging.Event{
		Time:      e.now(),
		Kind:      logging.EventGoal,
		PersonaID: e.persona.ID,
		Goal:      g.Description,
		Energy:    e.persona.EnergyLevel,
	})
}

// ClearGoal drops the active goal. Goal alignment goes back to neutral.
func (e *Engine) ClearGoal() { e.goal = nil }

// ContextUpdate changes the situational context. Nil fields are left
// alone; the two flags each add one to their counter.
type ContextUpdate struct {
	InterfaceComplexity *float64 `json:"interface_complexity,omitempty" yaml:"interface_complexity,omitempty"`
	ExternalPressure    *float64 `json:"external_pressure,omitempty" yaml:"external_pressure,omitempty"`
	TaskDifficulty      *float64 `json:"task_difficulty,omitempty" yaml:"task_difficulty,omitempty"`
	RecentFailure       bool     `json:"recent_failure,omitempty" yaml:"recent_failure,omitempty"`
	RecentSuccess       bool     `json:"recent_success,omitempty" yaml:"recent_success,omitempty"`
}

// UpdateContext applies u to the situational context. Counters only grow;
// use ResetCounters to clear them.
func (e *Engine) UpdateContext(u ContextUpdate) {
	if u.InterfaceComplexity != nil {
		e.ctx.InterfaceComplexity = *u.InterfaceComplexity
	}
	if u.ExternalPressure != nil {
		e.ctx.ExternalPressure = *u.ExternalPressure
	}
	if u.TaskDifficulty != nil {
		e.ctx.TaskDifficulty = *u.TaskDifficulty
	}
	if u.RecentFailure {
		e.ctx.RecentFailures++
	}
	if u.RecentSuccess {
		e.ctx.RecentSuccesses++
	}
}

// ResetCounters zeroes the recent failure and success counts.
func (e *Engine) ResetCounters() {
	e.ctx.RecentFailures = 0
	e.ctx.RecentSuccesses = 0
}

// SetEmotionWeight tunes a single emotion coefficient.
func (e *Engine) SetEmotionWeight(state emotion.State, field string, value float64) error {
	w := e.emotions.Weights()
	if err := w.Set(state, field, value); err != nil {
		return err
	}
	e.emotions.SetWeights(w)
	return nil
}

// RankElements refreshes the emotional state from the current context and
// scores every visible, enabled element, best first.
func (e *Engine) RankElements(elements []models.WebElement) []ranking.ElementScore {
	state, _ := e.emotions.UpdateState(e.ctx, e.persona.Behavioral.Patience)

	in := ranking.Input{
		Persona:   e.persona,
		Modifiers: e.persona.StateModifiers(),
		State:     state,
		Goal:      e.goal,
		Memory:    e.memory,
	}
	ranked := e.scorer.Rank(elements, in, e.noise)
	e.lastRanking = ranked

	e.log.Debug("ranked elements",
		"persona", e.persona.ID,
		"emotion", state,
		"offered", len(elements),
		"candidates", len(ranked))

	if e.log.Enabled(context.Background(), logging.LevelTrace) {
		for _, r := range ranked {
			e.log.Log(context.Background(), logging.LevelTrace, "element score",
				"element", r.Element.ID,
				"total", r.Total,
				"components", r.Components)
		}
	}
	return ranked
}

// MakeDecision ranks elements and commits to the best one: the user tires a
// little, remembers the choice, and the interaction count goes up. When no
// element is actionable it returns ErrEmptyCandidateSet and changes nothing
// but the emotional state.
func (e *Engine) MakeDecision(elements []models.WebElement) (ranking.ElementScore, error) {
	ranked := e.RankElements(elements)
	if len(ranked) == 0 {
		return ranking.ElementScore{}, fmt.Errorf("choosing among %d elements: %w", len(elements), ErrEmptyCandidateSet)
	}
	best := ranked[0]
	el := best.Element
	state := e.emotions.Current()

	e.persona.ApplyFatigue(decisionComplexity)

	e.memory.Add(memory.AddRequest{
		Content:    fmt.Sprintf("Chose %s: %s", el.Type, el.Text),
		Importance: actionImportance,
		Valence:    actionValence,
		Context: memory.ActionContext{
			ElementID:    el.ID,
			ActionKey:    el.ActionKey(),
			EmotionState: string(state),
			Score:        best.Total,
		},
	})

	e.interactions++
	e.recentActions = append(e.recentActions, el.ID)

	d := Decision{
		Time:        e.now(),
		PersonaID:   e.persona.ID,
		Interaction: e.interactions,
		Choice:      best,
		Candidates:  len(ranked),
		Emotion:     state,
		Intensities: e.emotions.Intensities(),
		EnergyLevel: e.persona.EnergyLevel,
	}
	if e.goal != nil {
		d.GoalID = e.goal.ID
	}

	e.log.Info("decision",
		"persona", e.persona.ID,
		"element", el.ID,
		"score", best.Total,
		"emotion", state,
		"energy", e.persona.EnergyLevel)
	e.decisions.Log(logging.Event{
		Time:       d.Time,
		Kind:       logging.EventDecision,
		PersonaID:  d.PersonaID,
		ElementID:  el.ID,
		ActionKey:  el.ActionKey(),
		Emotion:    string(state),
		Score:      best.Total,
		Candidates: d.Candidates,
		Energy:     d.EnergyLevel,
		Reasoning:  best.Reasoning,
	})
	for _, o := range e.observers {
		if err := o.OnDecision(d); err != nil {
			e.log.Warn("decision observer failed", "persona", e.persona.ID, "error", err)
		}
	}

	return best, nil
}

// RecordOutcome feeds back the result of acting on el. A nil valence
// defaults to +0.5 for success and -0.5 for failure.
func (e *Engine) RecordOutcome(el models.WebElement, success bool, valence *float64) Outcome {
	v := -outcomeValence
	if success {
		v = outcomeValence
	}
	if valence != nil {
		v = *valence
	}

	e.UpdateContext(ContextUpdate{RecentSuccess: success, RecentFailure: !success})

	key := el.ActionKey()
	pref := e.memory.UpdateProcedural(key, success, e.learningRate)
	state := e.emotions.Current()

	verdict := "Failure"
	if success {
		verdict = "Success"
	}
	e.memory.Add(memory.AddRequest{
		Content:    verdict + ": " + el.Text,
		Importance: outcomeImportance,
		Valence:    v,
		Context: memory.OutcomeContext{
			ElementID:    el.ID,
			ActionKey:    key,
			Success:      success,
			EmotionState: string(state),
		},
	})

	out := Outcome{
		Time:        e.now(),
		PersonaID:   e.persona.ID,
		Interaction: e.interactions,
		Element:     el,
		ActionKey:   key,
		Success:     success,
		Valence:     v,
		Preference:  pref,
		Emotion:     state,
	}

	e.log.Debug("outcome",
		"persona", e.persona.ID,
		"element", el.ID,
		"success", success,
		"preference", pref)
	e.decisions.Log(logging.Event{
		Time:       out.Time,
		Kind:       logging.EventOutcome,
		PersonaID:  out.PersonaID,
		ElementID:  el.ID,
		ActionKey:  key,
		Emotion:    string(state),
		Success:    &success,
		Valence:    v,
		Preference: pref,
		Energy:     e.persona.EnergyLevel,
	})
	for _, o := range e.observers {
		if err := o.OnOutcome(out); err != nil {
			e.log.Warn("outcome observer failed", "persona", e.persona.ID, "error", err)
		}
	}

	return out
}

// Rest restores some of the user's energy.
func (e *Engine) Rest(amount float64) {
	e.persona.Rest(amount)
}

// ConsolidateMemory runs the long-term decay sweep and returns how many
// episodes were forgotten.
func (e *Engine) ConsolidateMemory() int {
	n := e.memory.PerformConsolidation()
	if n > 0 {
		e.log.Debug("memories decayed", "persona", e.persona.ID, "removed", n)
	}
	return n
}
