package simulation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"path/filepath"
	"time"

	"github.com/nvandessel/synthuser/internal/config"
	"github.com/nvandessel/synthuser/internal/decision"
	"github.com/nvandessel/synthuser/internal/emotion"
	"github.com/nvandessel/synthuser/internal/logging"
	"github.com/nvandessel/synthuser/internal/memory"
	"github.com/nvandessel/synthuser/internal/persona"
	"github.com/nvandessel/synthuser/internal/ranking"
	"github.com/nvandessel/synthuser/internal/trace"
)

// Runner plays scenarios against real decision engines.
type Runner struct {
	cfg       *config.SimConfig
	log       *slog.Logger
	decisions *logging.DecisionLogger
	trace     *trace.Store
	start     time.Time
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the operational logger passed to every engine.
func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) { r.log = l }
}

// WithDecisionLogger shares a JSONL decision log across all personas.
func WithDecisionLogger(dl *logging.DecisionLogger) RunnerOption {
	return func(r *Runner) { r.decisions = dl }
}

// WithTrace records every persona's run as a trace session.
func WithTrace(s *trace.Store) RunnerOption {
	return func(r *Runner) { r.trace = s }
}

// WithStartTime sets the simulated clock's starting point.
func WithStartTime(t time.Time) RunnerOption {
	return func(r *Runner) { r.start = t }
}

// NewRunner creates a runner. A nil cfg uses config.Default.
func NewRunner(cfg *config.SimConfig, opts ...RunnerOption) *Runner {
	if cfg == nil {
		cfg = config.Default()
	}
	r := &Runner{cfg: cfg, start: time.Now()}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = logging.Discard()
	}
	return r
}

// Result is the outcome of a scenario run.
type Result struct {
	Scenario string          `json:"scenario"`
	Seed     uint64          `json:"seed"`
	Personas []PersonaResult `json:"personas"`
}

// PersonaResult is one persona's run.
type PersonaResult struct {
	PersonaID string           `json:"persona_id"`
	SessionID string           `json:"session_id,omitempty"`
	Steps     []StepResult     `json:"steps"`
	Summary   decision.Summary `json:"summary"`
	Report    *trace.Report    `json:"report,omitempty"`
}

// StepResult records what happened at one step.
type StepResult struct {
	Index       int                    `json:"index"`
	Label       string                 `json:"label,omitempty"`
	Emotion     emotion.State          `json:"emotion"`
	Intensities map[string]float64     `json:"emotion_intensities"`
	Ranked      []ranking.ElementScore `json:"ranked"`
	Choice      *ranking.ElementScore  `json:"choice,omitempty"`
	Outcome     *bool                  `json:"outcome,omitempty"`
	Error       string                 `json:"error,omitempty"`
	EnergyLevel float64                `json:"energy_level"`
	Forgotten   int                    `json:"forgotten,omitempty"`
}

// Chosen returns the chosen element's ID, or "".
func (s StepResult) Chosen() string {
	if s.Choice == nil {
		return ""
	}
	return s.Choice.Element.ID
}

// Run plays sc once per persona. A step where nothing can be chosen is
// recorded and the run continues; any other failure stops the run.
func (r *Runner) Run(ctx context.Context, sc Scenario) (*Result, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	seed := sc.Seed
	if seed == 0 {
		seed = r.cfg.Seed
	}
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	res := &Result{Scenario: sc.Name, Seed: seed}
	for i, ps := range sc.Personas {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		p, err := r.buildPersona(sc, ps, seed, i)
		if err != nil {
			return nil, fmt.Errorf("persona %d: %w", i, err)
		}
		pr, err := r.runPersona(ctx, sc, p, seed, i)
		if err != nil {
			return nil, fmt.Errorf("persona %s: %w", p.ID, err)
		}
		res.Personas = append(res.Personas, pr)
	}
	return res, nil
}

func (r *Runner) buildPersona(sc Scenario, ps PersonaSpec, seed uint64, index int) (*persona.Persona, error) {
	var p *persona.Persona
	switch {
	case ps.File != "":
		path := ps.File
		if !filepath.IsAbs(path) && sc.dir != "" {
			path = filepath.Join(sc.dir, path)
		}
		loaded, err := persona.LoadFile(path)
		if err != nil {
			return nil, err
		}
		p = loaded

	case ps.Profile != nil:
		p = persona.New(fmt.Sprintf("user_%03d", index+1), "Synthetic User")
		if err := ps.Profile.Decode(p); err != nil {
			return nil, fmt.Errorf("decoding profile: %w", err)
		}
		if err := p.Validate(); err != nil {
			return nil, err
		}

	default:
		// A separate stream from the noise streams so adding a random
		// persona does not shift anyone's noise.
		rng := rand.New(rand.NewPCG(seed, 1<<32|uint64(index)))
		p = persona.Random(rng, "")
	}

	if ps.ID != "" {
		p.ID = ps.ID
	}
	return p, nil
}

func (r *Runner) runPersona(ctx context.Context, sc Scenario, p *persona.Persona, seed uint64, index int) (PersonaResult, error) {
	clock := &simClock{now: r.start}
	mem := memory.NewSystem(r.cfg.Memory.System(), clock.Now)

	opts := []decision.Option{
		decision.WithWeights(r.cfg.Emotion),
		decision.WithWeightTable(r.cfg.Ranking),
		decision.WithMemory(mem),
		decision.WithClock(clock.Now),
		decision.WithNoise(rand.New(rand.NewPCG(seed, uint64(index)))),
		decision.WithLearningRate(r.cfg.Memory.LearningRate),
		decision.WithLogger(r.log.With("scenario", sc.Name)),
		decision.WithDecisionLogger(r.decisions),
	}

	pr := PersonaResult{PersonaID: p.ID}
	if r.trace != nil {
		sess, err := r.trace.StartSession(ctx, p.ID, p.Name, sc.Name)
		if err != nil {
			return PersonaResult{}, err
		}
		pr.SessionID = sess.ID
		opts = append(opts, decision.WithObserver(sess))
	}

	e := decision.New(p, opts...)
	if sc.Goal != nil {
		e.SetGoal(*sc.Goal)
	}

	for i, st := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return PersonaResult{}, err
		}
		sr, err := r.playStep(e, st, i)
		if err != nil {
			return PersonaResult{}, fmt.Errorf("step %d: %w", i, err)
		}

		if sc.ConsolidateEvery > 0 && (i+1)%sc.ConsolidateEvery == 0 {
			sr.Forgotten = e.ConsolidateMemory()
		}
		pr.Steps = append(pr.Steps, sr)
		clock.Advance(sc.StepDuration)
	}

	pr.Summary = e.Summary()
	if r.trace != nil {
		rep, err := r.trace.Report(ctx, pr.SessionID)
		if err != nil {
			return PersonaResult{}, err
		}
		pr.Report = &rep
	}

	r.log.Info("persona finished",
		"scenario", sc.Name,
		"persona", p.ID,
		"steps", len(pr.Steps),
		"interactions", pr.Summary.InteractionCount,
		"energy", pr.Summary.EnergyLevel)
	return pr, nil
}

func (r *Runner) playStep(e *decision.Engine, st Step, index int) (StepResult, error) {
	if st.ResetCounters {
		e.ResetCounters()
	}
	if st.Goal != nil {
		e.SetGoal(*st.Goal)
	}
	e.UpdateContext(st.Context)

	sr := StepResult{Index: index, Label: st.Label}

	choice, err := e.MakeDecision(st.Elements)
	switch {
	case errors.Is(err, decision.ErrEmptyCandidateSet):
		sr.Error = err.Error()
	case err != nil:
		return StepResult{}, err
	default:
		sr.Choice = &choice
		if success, ok := st.Outcomes[choice.Element.ID]; ok {
			e.RecordOutcome(choice.Element, success, nil)
			sr.Outcome = &success
		}
	}

	sr.Emotion = e.Emotions().Current()
	sr.Intensities = e.Emotions().Intensities().Plain()

	sr.Ranked = e.LastRanking()

	if st.Rest > 0 {
		e.Rest(st.Rest)
	}
	sr.EnergyLevel = e.Persona().EnergyLevel
	return sr, nil
}

// simClock is a manually advanced clock shared by one persona's engine
// and memory.
type simClock struct {
	now time.Time
}

func (c *simClock) Now() time.Time { return c.now }

func (c *simClock) Advance(d time.Duration) { c.now = c.now.Add(d) }
