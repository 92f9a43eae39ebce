// Package models holds the page-facing types the simulator reasons about:
// candidate elements and the user's goal.
package models

// Element type tags the ranking rules recognize. Any other string is
// allowed and scored with the generic rules.
const (
	ElementButton      = "button"
	ElementLink        = "link"
	ElementInput       = "input"
	ElementDropdown    = "dropdown"
	ElementMultiSelect = "multi-select"
	ElementForm        = "form"
)

// Position is an element's top-left corner in page pixels.
type Position struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Size is an element's extent in page pixels.
type Size struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// WebElement is one actionable element on a page. It is never modified
// once built.
type WebElement struct {
	ID              string   `json:"element_id" yaml:"element_id"`
	Type            string   `json:"element_type" yaml:"element_type"`
	Text            string   `json:"text" yaml:"text"`
	Position        Position `json:"position" yaml:"position"`
	Size            Size     `json:"size" yaml:"size"`
	Visible         bool     `json:"is_visible" yaml:"is_visible"`
	Enabled         bool     `json:"is_enabled" yaml:"is_enabled"`
	SemanticMeaning string   `json:"semantic_meaning" yaml:"semantic_meaning"`

	// VisualProminence is how much the element stands out, in [0,1].
	VisualProminence float64 `json:"visual_prominence" yaml:"visual_prominence"`

	// ContextRelevance is how relevant the page author judged the element
	// to be for the current task, in [0,1].
	ContextRelevance float64 `json:"context_relevance" yaml:"context_relevance"`

	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// NewElement returns a visible, enabled element with neutral prominence
// and relevance.
func NewElement(id, typ, text string) WebElement {
	return WebElement{
		ID:               id,
		Type:             typ,
		Text:             text,
		Visible:          true,
		Enabled:          true,
		VisualProminence: 0.5,
		ContextRelevance: 0.5,
	}
}

// Actionable reports whether the user can interact with the element.
func (e WebElement) Actionable() bool {
	return e.Visible && e.Enabled
}

// ActionKey identifies the kind of interaction for procedural learning.
func (e WebElement) ActionKey() string {
	return ActionKey(e.Type, e.SemanticMeaning)
}

// ActionKey builds the "{type}:{semantic meaning}" procedural key.
func ActionKey(elementType, semanticMeaning string) string {
	return elementType + ":" + semanticMeaning
}
