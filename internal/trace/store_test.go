package trace

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nvandessel/synthuser/internal/decision"
	"github.com/nvandessel/synthuser/internal/emotion"
	"github.com/nvandessel/synthuser/internal/models"
	"github.com/nvandessel/synthuser/internal/persona"
	"github.com/nvandessel/synthuser/internal/ranking"
)

type zeroNoise struct{}

func (zeroNoise) NormFloat64() float64 { return 0 }

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "trace", "synthuser.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func elements() []models.WebElement {
	buy := models.NewElement("buy", models.ElementButton, "Buy now")
	buy.SemanticMeaning = "purchase"
	buy.VisualProminence = 0.9

	help := models.NewElement("help", models.ElementLink, "Help")
	help.SemanticMeaning = "help"
	help.Position = models.Position{X: 1700, Y: 900}

	return []models.WebElement{help, buy}
}

func TestSession_RecordsEngineActivity(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	p := persona.New("shopper", "Shopper")
	sess, err := s.StartSession(ctx, p.ID, p.Name, "checkout")
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	e := decision.New(p, decision.WithNoise(zeroNoise{}), decision.WithObserver(sess))
	e.SetGoal(models.NewGoal("buy", "Buy the item", "buy"))

	for i := range 3 {
		choice, err := e.MakeDecision(elements())
		if err != nil {
			t.Fatalf("MakeDecision: %v", err)
		}
		e.RecordOutcome(choice.Element, i != 1, nil)
	}

	rows, err := s.Decisions(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Decisions: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d decisions, want 3", len(rows))
	}
	for i, r := range rows {
		if r.Interaction != i+1 {
			t.Errorf("row %d interaction = %d", i, r.Interaction)
		}
		if r.ElementID != "buy" || r.ActionKey != "button:purchase" {
			t.Errorf("row %d = %s/%s", i, r.ElementID, r.ActionKey)
		}
		if _, ok := r.Components[ranking.ComponentGoalAlignment]; !ok || len(r.Components) != 8 {
			t.Errorf("row %d components = %v", i, r.Components)
		}
		if r.Candidates != 2 {
			t.Errorf("row %d candidates = %d, want 2", i, r.Candidates)
		}
	}

	rep, err := s.Report(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if rep.PersonaID != "shopper" || rep.Scenario != "checkout" {
		t.Errorf("report header = %+v", rep)
	}
	if rep.Decisions != 3 || rep.Outcomes != 3 || rep.Successes != 2 {
		t.Errorf("counts = %d/%d/%d, want 3/3/2", rep.Decisions, rep.Outcomes, rep.Successes)
	}
	if want := 2.0 / 3.0; rep.SuccessRate != want {
		t.Errorf("SuccessRate = %f, want %f", rep.SuccessRate, want)
	}
	if rep.FinalEnergy != p.EnergyLevel {
		t.Errorf("FinalEnergy = %f, want %f", rep.FinalEnergy, p.EnergyLevel)
	}
	if len(rep.TopElements) != 1 || rep.TopElements[0] != (ElementCount{ElementID: "buy", Count: 3}) {
		t.Errorf("TopElements = %+v", rep.TopElements)
	}
	total := 0
	for _, n := range rep.EmotionCounts {
		total += n
	}
	if total != 3 {
		t.Errorf("EmotionCounts = %v, want 3 decisions", rep.EmotionCounts)
	}
}

func TestReport_EmptySession(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	sess, err := s.StartSession(ctx, "idle", "Idle", "")
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	rep, err := s.Report(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if rep.Decisions != 0 || rep.SuccessRate != 0 || rep.MeanScore != 0 || len(rep.TopElements) != 0 {
		t.Errorf("report = %+v", rep)
	}
}

func TestReport_UnknownSession(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Report(context.Background(), "missing")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestSessions_ListsInOrder(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	var ids []string
	for _, name := range []string{"a", "b"} {
		sess, err := s.StartSession(ctx, name, strings.ToUpper(name), "compare")
		if err != nil {
			t.Fatalf("StartSession: %v", err)
		}
		ids = append(ids, sess.ID)
	}

	got, err := s.Sessions(ctx)
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}
	if len(got) != 2 || got[0].ID != ids[0] || got[1].ID != ids[1] {
		t.Fatalf("Sessions = %+v, want %v", got, ids)
	}
	if got[0].PersonaName != "A" || got[0].StartedAt.IsZero() {
		t.Errorf("session = %+v", got[0])
	}
	if ids[0] == ids[1] {
		t.Error("session IDs collide")
	}
}

func TestSessions_OrderedByStartTime(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	// Inserted newest first; a whole second must sort before a fraction of it.
	starts := map[string]time.Time{
		"later":   time.Date(2026, 3, 1, 10, 0, 5, 100_000_000, time.UTC),
		"earlier": time.Date(2026, 3, 1, 10, 0, 5, 0, time.UTC),
	}
	for _, id := range []string{"later", "earlier"} {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO sessions (id, persona_id, persona_name, scenario, started_at) VALUES (?, ?, ?, ?, ?)`,
			id, id, id, "order", starts[id].Format(timeLayout)); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	got, err := s.Sessions(ctx)
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}
	if len(got) != 2 || got[0].ID != "earlier" || got[1].ID != "later" {
		t.Fatalf("Sessions = %+v, want earlier then later", got)
	}
	if !got[0].StartedAt.Equal(starts["earlier"]) || !got[1].StartedAt.Equal(starts["later"]) {
		t.Errorf("start times = %v, %v", got[0].StartedAt, got[1].StartedAt)
	}
}

func TestSessions_BadStartTime(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, persona_id, persona_name, scenario, started_at) VALUES (?, ?, ?, ?, ?)`,
		"broken", "p", "P", "bad", "yesterday"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := s.Sessions(ctx); err == nil || !strings.Contains(err.Error(), "broken") {
		t.Errorf("Sessions err = %v, want bad start time for session broken", err)
	}
}

func TestOpen_ReopensExistingDatabase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "trace.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	sess, err := s.StartSession(ctx, "p", "P", "")
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	d := decision.Decision{
		Time:        time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Interaction: 1,
		Choice:      ranking.ElementScore{Element: models.NewElement("x", "button", "X"), Total: 0.4},
		Emotion:     emotion.StateNeutral,
		Intensities: emotion.Intensities{emotion.StateNeutral: 0.3},
	}
	if err := sess.OnDecision(d); err != nil {
		t.Fatalf("OnDecision: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	rows, err := s.Decisions(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Decisions: %v", err)
	}
	if len(rows) != 1 || rows[0].Total != 0.4 {
		t.Errorf("rows = %+v", rows)
	}
}

func TestOpen_RejectsNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := s.db.Exec(`INSERT INTO schema_version (version, applied_at) VALUES (99, datetime('now'))`); err != nil {
		t.Fatalf("insert version: %v", err)
	}
	s.Close()

	if _, err := Open(path); err == nil || !strings.Contains(err.Error(), "schema version 99") {
		t.Errorf("Open err = %v, want schema version error", err)
	}
}
