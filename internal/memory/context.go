package memory

// Context is the typed metadata attached to a memory. The set of
// implementations is closed: one per memory kind.
type Context interface {
	// Kind is the memory kind this context belongs to.
	Kind() Kind

	// Fields flattens the context for serialization.
	Fields() map[string]any
}

// ObservationContext accompanies things the user noticed, such as a new goal.
type ObservationContext struct {
	GoalID string
}

func (ObservationContext) Kind() Kind { return KindObservation }

func (c ObservationContext) Fields() map[string]any {
	return map[string]any{"goal_id": c.GoalID}
}

// ActionContext accompanies a choice the user made.
type ActionContext struct {
	ElementID    string
	ActionKey    string
	EmotionState string
	Score        float64
}

func (ActionContext) Kind() Kind { return KindAction }

func (c ActionContext) Fields() map[string]any {
	return map[string]any{
		"element_id":    c.ElementID,
		"action":        c.ActionKey,
		"emotion_state": c.EmotionState,
		"score":         c.Score,
	}
}

// OutcomeContext accompanies the result of an action.
type OutcomeContext struct {
	ElementID    string
	ActionKey    string
	Success      bool
	EmotionState string
}

func (OutcomeContext) Kind() Kind { return KindOutcome }

func (c OutcomeContext) Fields() map[string]any {
	return map[string]any{
		"element_id":    c.ElementID,
		"action":        c.ActionKey,
		"success":       c.Success,
		"emotion_state": c.EmotionState,
	}
}

// EmotionContext accompanies a remembered feeling.
type EmotionContext struct {
	State     string
	Intensity float64
}

func (EmotionContext) Kind() Kind { return KindEmotion }

func (c EmotionContext) Fields() map[string]any {
	return map[string]any{
		"state":     c.State,
		"intensity": c.Intensity,
	}
}
