package mcp

import (
	"github.com/nvandessel/synthuser/internal/emotion"
	"github.com/nvandessel/synthuser/internal/models"
	"github.com/nvandessel/synthuser/internal/ranking"
)

// ElementInput describes one page element. Omitted fields take the same
// defaults as a new element: visible, enabled, prominence and relevance 0.5.
type ElementInput struct {
	ID               string            `json:"element_id" jsonschema:"Unique element identifier on the page"`
	Type             string            `json:"element_type,omitempty" jsonschema:"Element type: button, link, input, dropdown, multi-select or form; other values get generic scoring"`
	Text             string            `json:"text,omitempty" jsonschema:"Visible label or text"`
	X                int               `json:"x,omitempty" jsonschema:"Horizontal position in pixels on a 1920x1080 viewport"`
	Y                int               `json:"y,omitempty" jsonschema:"Vertical position in pixels on a 1920x1080 viewport"`
	Width            int               `json:"width,omitempty"`
	Height           int               `json:"height,omitempty"`
	Visible          *bool             `json:"is_visible,omitempty" jsonschema:"Whether the element is visible (default true)"`
	Enabled          *bool             `json:"is_enabled,omitempty" jsonschema:"Whether the element is enabled (default true)"`
	SemanticMeaning  string            `json:"semantic_meaning,omitempty" jsonschema:"Purpose of the element, e.g. submit, cancel, help"`
	VisualProminence *float64          `json:"visual_prominence,omitempty" jsonschema:"How eye-catching the element is (0.0-1.0, default 0.5)"`
	ContextRelevance *float64          `json:"context_relevance,omitempty" jsonschema:"Externally supplied relevance (default 0.5)"`
	Metadata         map[string]string `json:"metadata,omitempty"`
}

// Element converts the input to a WebElement.
func (in ElementInput) Element() models.WebElement {
	el := models.NewElement(in.ID, in.Type, in.Text)
	el.Position = models.Position{X: in.X, Y: in.Y}
	el.Size = models.Size{Width: in.Width, Height: in.Height}
	el.SemanticMeaning = in.SemanticMeaning
	el.Metadata = in.Metadata
	if in.Visible != nil {
		el.Visible = *in.Visible
	}
	if in.Enabled != nil {
		el.Enabled = *in.Enabled
	}
	if in.VisualProminence != nil {
		el.VisualProminence = *in.VisualProminence
	}
	if in.ContextRelevance != nil {
		el.ContextRelevance = *in.ContextRelevance
	}
	return el
}

// RankedElement is one scored element.
type RankedElement struct {
	ElementID  string             `json:"element_id"`
	Type       string             `json:"element_type"`
	Text       string             `json:"text"`
	Total      float64            `json:"total_score"`
	Components ranking.Components `json:"component_scores"`
	Reasoning  string             `json:"reasoning"`
}

func rankedElement(s ranking.ElementScore) RankedElement {
	return RankedElement{
		ElementID:  s.Element.ID,
		Type:       s.Element.Type,
		Text:       s.Element.Text,
		Total:      s.Total,
		Components: s.Components,
		Reasoning:  s.Reasoning,
	}
}

// SetGoalInput defines the input for synthuser_set_goal.
type SetGoalInput struct {
	GoalID      string   `json:"goal_id,omitempty" jsonschema:"Goal identifier (default: goal)"`
	Description string   `json:"description,omitempty" jsonschema:"What the user is trying to do (required unless clear is set)"`
	Keywords    []string `json:"keywords,omitempty" jsonschema:"Words that mark an element as serving the goal"`
	Priority    *float64 `json:"priority,omitempty" jsonschema:"Goal priority (0.0-1.0, default 0.5)"`
	Urgency     *float64 `json:"urgency,omitempty" jsonschema:"Goal urgency (0.0-1.0, default 0.5)"`
	Clear       bool     `json:"clear,omitempty" jsonschema:"Drop the active goal instead of setting one"`
}

// SetGoalOutput defines the output for synthuser_set_goal.
type SetGoalOutput struct {
	Goal    *models.Goal `json:"goal"`
	Message string       `json:"message"`
}

// UpdateContextInput defines the input for synthuser_update_context.
type UpdateContextInput struct {
	InterfaceComplexity *float64 `json:"interface_complexity,omitempty" jsonschema:"How complex the current page is (0.0-1.0)"`
	ExternalPressure    *float64 `json:"external_pressure,omitempty" jsonschema:"Time or social pressure on the user (0.0-1.0)"`
	TaskDifficulty      *float64 `json:"task_difficulty,omitempty" jsonschema:"How hard the current task is (0.0-1.0)"`
	RecentFailure       bool     `json:"recent_failure,omitempty" jsonschema:"Count one more recent failure"`
	RecentSuccess       bool     `json:"recent_success,omitempty" jsonschema:"Count one more recent success"`
	ResetCounters       bool     `json:"reset_counters,omitempty" jsonschema:"Clear failure and success counts before applying the update"`
}

// UpdateContextOutput defines the output for synthuser_update_context.
type UpdateContextOutput struct {
	Context emotion.Context `json:"context"`
}

// ElementsInput defines the input for synthuser_rank and synthuser_decide.
type ElementsInput struct {
	Elements []ElementInput `json:"elements" jsonschema:"Interactive elements on the current page"`
}

// RankOutput defines the output for synthuser_rank.
type RankOutput struct {
	Emotion emotion.State   `json:"emotion"`
	Ranked  []RankedElement `json:"ranked"`
	Count   int             `json:"count"`
}

// DecideOutput defines the output for synthuser_decide.
type DecideOutput struct {
	Choice      RankedElement `json:"choice"`
	Emotion     emotion.State `json:"emotion"`
	EnergyLevel float64       `json:"energy_level"`
	Interaction int           `json:"interaction"`
}

// RecordOutcomeInput defines the input for synthuser_record_outcome.
type RecordOutcomeInput struct {
	ElementID string   `json:"element_id" jsonschema:"Element acted on; must have been offered to rank or decide"`
	Success   bool     `json:"success" jsonschema:"Whether the action achieved what the user wanted"`
	Valence   *float64 `json:"valence,omitempty" jsonschema:"Emotional valence of the outcome (-1.0 to 1.0, default +0.5 or -0.5)"`
}

// RecordOutcomeOutput defines the output for synthuser_record_outcome.
type RecordOutcomeOutput struct {
	ActionKey  string  `json:"action_key"`
	Preference float64 `json:"preference"`
	Valence    float64 `json:"valence"`
}

// SummaryInput defines the input for synthuser_summary.
type SummaryInput struct{}

// SetWeightInput defines the input for synthuser_set_weight.
type SetWeightInput struct {
	Emotion string  `json:"emotion" jsonschema:"Emotion state, e.g. confused"`
	Field   string  `json:"field" jsonschema:"Coefficient name, e.g. base_intensity"`
	Value   float64 `json:"value" jsonschema:"New non-negative value"`
}

// SetWeightOutput defines the output for synthuser_set_weight.
type SetWeightOutput struct {
	Emotion  string  `json:"emotion"`
	Field    string  `json:"field"`
	Previous float64 `json:"previous"`
	Value    float64 `json:"value"`
}
