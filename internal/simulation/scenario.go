package simulation

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nvandessel/synthuser/internal/decision"
	"github.com/nvandessel/synthuser/internal/models"
)

// ErrInvalidScenario wraps every scenario validation failure.
var ErrInvalidScenario = errors.New("invalid scenario")

// Scenario is a scripted session: the same steps are played once for every
// persona, each persona with its own engine, memory and noise stream.
type Scenario struct {
	Name string `yaml:"name"`

	// Seed fixes all randomness in the run. Zero lets the runner pick.
	Seed uint64 `yaml:"seed"`

	Personas []PersonaSpec `yaml:"personas"`
	Goal     *models.Goal  `yaml:"goal,omitempty"`
	Steps    []Step        `yaml:"steps"`

	// ConsolidateEvery runs the memory decay sweep after every n steps.
	// Zero never runs it.
	ConsolidateEvery int `yaml:"consolidate_every,omitempty"`

	// StepDuration is how much simulated time passes per step.
	StepDuration time.Duration `yaml:"step_duration,omitempty"`

	// dir resolves relative persona files.
	dir string
}

// PersonaSpec says where a persona comes from: a YAML file, an inline
// profile, or a random draw from the scenario seed. Exactly one is set.
type PersonaSpec struct {
	File    string     `yaml:"file,omitempty"`
	Profile *yaml.Node `yaml:"profile,omitempty"`
	Random  bool       `yaml:"random,omitempty"`

	// ID overrides the persona's ID.
	ID string `yaml:"id,omitempty"`
}

// Step is one page the user faces.
type Step struct {
	Label    string                 `yaml:"label,omitempty"`
	Context  decision.ContextUpdate `yaml:"context,omitempty"`
	Elements []models.WebElement    `yaml:"elements"`

	// Outcomes maps element IDs to whether acting on them succeeds. A chosen
	// element with no entry records no outcome.
	Outcomes map[string]bool `yaml:"outcomes,omitempty"`

	// Goal replaces the active goal before ranking.
	Goal *models.Goal `yaml:"goal,omitempty"`

	// Rest restores energy after the step.
	Rest float64 `yaml:"rest,omitempty"`

	// ResetCounters clears the failure and success counts before ranking.
	ResetCounters bool `yaml:"reset_counters,omitempty"`
}

// LoadScenario reads and validates a scenario file. Persona files are
// resolved relative to it.
func LoadScenario(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("reading scenario: %w", err)
	}
	sc, err := ParseScenario(data)
	if err != nil {
		return Scenario{}, err
	}
	sc.dir = filepath.Dir(path)
	return sc, nil
}

// ParseScenario decodes and validates a scenario document.
func ParseScenario(data []byte) (Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return Scenario{}, fmt.Errorf("parsing scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return Scenario{}, err
	}
	return sc, nil
}

// Validate checks the scenario's structure. Persona contents are checked
// when the run builds them.
func (sc Scenario) Validate() error {
	if len(sc.Personas) == 0 {
		return fmt.Errorf("%w: no personas", ErrInvalidScenario)
	}
	for i, ps := range sc.Personas {
		sources := 0
		if ps.File != "" {
			sources++
		}
		if ps.Profile != nil {
			sources++
		}
		if ps.Random {
			sources++
		}
		if sources != 1 {
			return fmt.Errorf("%w: persona %d must set exactly one of file, profile, random", ErrInvalidScenario, i)
		}
	}

	if len(sc.Steps) == 0 {
		return fmt.Errorf("%w: no steps", ErrInvalidScenario)
	}
	for i, st := range sc.Steps {
		ids := make(map[string]bool, len(st.Elements))
		for _, el := range st.Elements {
			if el.ID == "" {
				return fmt.Errorf("%w: step %d has an element without element_id", ErrInvalidScenario, i)
			}
			if ids[el.ID] {
				return fmt.Errorf("%w: step %d repeats element %q", ErrInvalidScenario, i, el.ID)
			}
			ids[el.ID] = true
		}
		for id := range st.Outcomes {
			if !ids[id] {
				return fmt.Errorf("%w: step %d outcome for unknown element %q", ErrInvalidScenario, i, id)
			}
		}
		if st.Rest < 0 {
			return fmt.Errorf("%w: step %d has negative rest", ErrInvalidScenario, i)
		}
	}

	if sc.ConsolidateEvery < 0 {
		return fmt.Errorf("%w: consolidate_every must be non-negative", ErrInvalidScenario)
	}
	if sc.StepDuration < 0 {
		return fmt.Errorf("%w: step_duration must be non-negative", ErrInvalidScenario)
	}
	return nil
}
