package models

// Goal is what the user is trying to get done on the page.
type Goal struct {
	ID          string   `json:"goal_id" yaml:"goal_id"`
	Description string   `json:"description" yaml:"description"`
	Priority    float64  `json:"priority" yaml:"priority"` // [0,1]
	Urgency     float64  `json:"urgency" yaml:"urgency"`   // [0,1]
	Progress    float64  `json:"progress" yaml:"progress"` // [0,1]
	Keywords    []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

// NewGoal returns a goal with medium priority and urgency and no progress.
func NewGoal(id, description string, keywords ...string) Goal {
	return Goal{
		ID:          id,
		Description: description,
		Priority:    0.5,
		Urgency:     0.5,
		Keywords:    keywords,
	}
}
