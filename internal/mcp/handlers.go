package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nvandessel/synthuser/internal/decision"
	"github.com/nvandessel/synthuser/internal/emotion"
	"github.com/nvandessel/synthuser/internal/models"
)

// registerTools registers all synthuser MCP tools with the server.
func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "synthuser_set_goal",
		Description: "Set (or clear) the goal the synthetic user is pursuing",
	}, s.handleSetGoal)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "synthuser_update_context",
		Description: "Update the situation the user is in: page complexity, pressure, task difficulty, recent failures and successes",
	}, s.handleUpdateContext)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "synthuser_rank",
		Description: "Score the page's elements from the user's point of view without acting",
	}, s.handleRank)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "synthuser_decide",
		Description: "Have the user pick the element they would interact with next",
	}, s.handleDecide)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "synthuser_record_outcome",
		Description: "Report whether acting on an element worked so the user can learn from it",
	}, s.handleRecordOutcome)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "synthuser_summary",
		Description: "Show the user's emotion, energy, goal and memory",
	}, s.handleSummary)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "synthuser_set_weight",
		Description: "Tune one emotion coefficient, e.g. confused.base_intensity",
	}, s.handleSetWeight)
}

func (s *Server) handleSetGoal(ctx context.Context, req *sdk.CallToolRequest, args SetGoalInput) (*sdk.CallToolResult, SetGoalOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if args.Clear {
		s.engine.ClearGoal()
		return nil, SetGoalOutput{Message: "goal cleared"}, nil
	}
	if strings.TrimSpace(args.Description) == "" {
		return nil, SetGoalOutput{}, errors.New("description is required")
	}

	id := args.GoalID
	if id == "" {
		id = "goal"
	}
	g := models.NewGoal(id, args.Description, args.Keywords...)
	if args.Priority != nil {
		g.Priority = *args.Priority
	}
	if args.Urgency != nil {
		g.Urgency = *args.Urgency
	}
	s.engine.SetGoal(g)

	return nil, SetGoalOutput{
		Goal:    s.engine.Goal(),
		Message: fmt.Sprintf("goal %s set with %d keywords", g.ID, len(g.Keywords)),
	}, nil
}

func (s *Server) handleUpdateContext(ctx context.Context, req *sdk.CallToolRequest, args UpdateContextInput) (*sdk.CallToolResult, UpdateContextOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if args.ResetCounters {
		s.engine.ResetCounters()
	}
	s.engine.UpdateContext(decision.ContextUpdate{
		InterfaceComplexity: args.InterfaceComplexity,
		ExternalPressure:    args.ExternalPressure,
		TaskDifficulty:      args.TaskDifficulty,
		RecentFailure:       args.RecentFailure,
		RecentSuccess:       args.RecentSuccess,
	})
	return nil, UpdateContextOutput{Context: s.engine.Context()}, nil
}

func (s *Server) elements(in []ElementInput) ([]models.WebElement, error) {
	out := make([]models.WebElement, 0, len(in))
	for i, ei := range in {
		if ei.ID == "" {
			return nil, fmt.Errorf("element %d has no element_id", i)
		}
		el := ei.Element()
		s.seen[el.ID] = el
		out = append(out, el)
	}
	return out, nil
}

func (s *Server) handleRank(ctx context.Context, req *sdk.CallToolRequest, args ElementsInput) (*sdk.CallToolResult, RankOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	els, err := s.elements(args.Elements)
	if err != nil {
		return nil, RankOutput{}, err
	}

	ranked := s.engine.RankElements(els)
	out := RankOutput{
		Emotion: s.engine.Emotions().Current(),
		Ranked:  make([]RankedElement, 0, len(ranked)),
		Count:   len(ranked),
	}
	for _, r := range ranked {
		out.Ranked = append(out.Ranked, rankedElement(r))
	}
	return nil, out, nil
}

func (s *Server) handleDecide(ctx context.Context, req *sdk.CallToolRequest, args ElementsInput) (*sdk.CallToolResult, DecideOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	els, err := s.elements(args.Elements)
	if err != nil {
		return nil, DecideOutput{}, err
	}

	choice, err := s.engine.MakeDecision(els)
	if errors.Is(err, decision.ErrEmptyCandidateSet) {
		return nil, DecideOutput{}, fmt.Errorf("nothing on the page can be used: %w", err)
	}
	if err != nil {
		return nil, DecideOutput{}, err
	}

	return nil, DecideOutput{
		Choice:      rankedElement(choice),
		Emotion:     s.engine.Emotions().Current(),
		EnergyLevel: s.engine.Persona().EnergyLevel,
		Interaction: s.engine.InteractionCount(),
	}, nil
}

func (s *Server) handleRecordOutcome(ctx context.Context, req *sdk.CallToolRequest, args RecordOutcomeInput) (*sdk.CallToolResult, RecordOutcomeOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.seen[args.ElementID]
	if !ok {
		return nil, RecordOutcomeOutput{}, fmt.Errorf("unknown element %q: offer it to synthuser_rank or synthuser_decide first", args.ElementID)
	}

	out := s.engine.RecordOutcome(el, args.Success, args.Valence)
	return nil, RecordOutcomeOutput{
		ActionKey:  out.ActionKey,
		Preference: out.Preference,
		Valence:    out.Valence,
	}, nil
}

func (s *Server) handleSummary(ctx context.Context, req *sdk.CallToolRequest, args SummaryInput) (*sdk.CallToolResult, decision.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return nil, s.engine.Summary(), nil
}

func (s *Server) handleSetWeight(ctx context.Context, req *sdk.CallToolRequest, args SetWeightInput) (*sdk.CallToolResult, SetWeightOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := emotion.State(args.Emotion)
	prev, err := s.engine.Emotions().Weights().Get(state, args.Field)
	if err != nil {
		return nil, SetWeightOutput{}, err
	}
	if err := s.engine.SetEmotionWeight(state, args.Field, args.Value); err != nil {
		return nil, SetWeightOutput{}, err
	}

	s.log.Info("emotion weight changed", "emotion", args.Emotion, "field", args.Field, "from", prev, "to", args.Value)
	return nil, SetWeightOutput{
		Emotion:  args.Emotion,
		Field:    args.Field,
		Previous: prev,
		Value:    args.Value,
	}, nil
}
