// Package trace records simulated decisions and outcomes in SQLite so runs
// can be compared after the fact.
package trace

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nvandessel/synthuser/internal/decision"
)

// timeLayout is fixed-width so stored timestamps sort as text in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store is a SQLite trace database. It is safe for concurrent use.
type Store struct {
	mu   sync.Mutex
	db   *sql.DB
	path string
}

// Open opens or creates the trace database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create trace directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open trace database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Session groups the decisions of one persona in one run. It implements
// decision.Observer.
type Session struct {
	ID        string
	PersonaID string
	store     *Store
}

var _ decision.Observer = (*Session)(nil)

// StartSession registers a new session and returns it.
func (s *Store) StartSession(ctx context.Context, personaID, personaName, scenario string) (*Session, error) {
	sess := &Session{ID: uuid.NewString(), PersonaID: personaID, store: s}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, persona_id, persona_name, scenario, started_at) VALUES (?, ?, ?, ?, ?)`,
		sess.ID, personaID, personaName, scenario, time.Now().UTC().Format(timeLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to insert session: %w", err)
	}
	return sess, nil
}

// OnDecision stores a committed choice.
func (sess *Session) OnDecision(d decision.Decision) error {
	components, err := json.Marshal(d.Choice.Components)
	if err != nil {
		return fmt.Errorf("failed to encode components: %w", err)
	}
	intensities, err := json.Marshal(d.Intensities)
	if err != nil {
		return fmt.Errorf("failed to encode intensities: %w", err)
	}
	el := d.Choice.Element

	sess.store.mu.Lock()
	defer sess.store.mu.Unlock()

	_, err = sess.store.db.ExecContext(context.Background(), `
		INSERT INTO decisions (
			session_id, interaction, element_id, element_type, action_key,
			total_score, components, intensities, emotion, candidates,
			energy_level, goal_id, reasoning, decided_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, d.Interaction, el.ID, el.Type, el.ActionKey(),
		d.Choice.Total, string(components), string(intensities), string(d.Emotion), d.Candidates,
		d.EnergyLevel, d.GoalID, d.Choice.Reasoning, d.Time.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to insert decision: %w", err)
	}
	return nil
}

// OnOutcome stores the result of an action.
func (sess *Session) OnOutcome(o decision.Outcome) error {
	sess.store.mu.Lock()
	defer sess.store.mu.Unlock()

	_, err := sess.store.db.ExecContext(context.Background(), `
		INSERT INTO outcomes (
			session_id, interaction, element_id, action_key, success,
			valence, preference, emotion, recorded_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, o.Interaction, o.Element.ID, o.ActionKey, o.Success,
		o.Valence, o.Preference, string(o.Emotion), o.Time.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to insert outcome: %w", err)
	}
	return nil
}

// SessionInfo describes a stored session.
type SessionInfo struct {
	ID          string    `json:"id"`
	PersonaID   string    `json:"persona_id"`
	PersonaName string    `json:"persona_name"`
	Scenario    string    `json:"scenario"`
	StartedAt   time.Time `json:"started_at"`
}

// Sessions lists every session, oldest first.
func (s *Store) Sessions(ctx context.Context) ([]SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, persona_id, persona_name, scenario, started_at FROM sessions ORDER BY started_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionInfo
	for rows.Next() {
		var info SessionInfo
		var started string
		if err := rows.Scan(&info.ID, &info.PersonaID, &info.PersonaName, &info.Scenario, &started); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		info.StartedAt, err = time.Parse(timeLayout, started)
		if err != nil {
			return nil, fmt.Errorf("session %s has a bad start time: %w", info.ID, err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// DecisionRow is a stored decision.
type DecisionRow struct {
	Interaction int                `json:"interaction"`
	ElementID   string             `json:"element_id"`
	ActionKey   string             `json:"action_key"`
	Total       float64            `json:"total_score"`
	Components  map[string]float64 `json:"component_scores"`
	Emotion     string             `json:"emotion"`
	Candidates  int                `json:"candidates"`
	EnergyLevel float64            `json:"energy_level"`
	Reasoning   string             `json:"reasoning"`
}

// Decisions returns a session's decisions in order.
func (s *Store) Decisions(ctx context.Context, sessionID string) ([]DecisionRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT interaction, element_id, action_key, total_score, components,
		       emotion, candidates, energy_level, reasoning
		FROM decisions WHERE session_id = ? ORDER BY interaction, id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query decisions: %w", err)
	}
	defer rows.Close()

	var out []DecisionRow
	for rows.Next() {
		var r DecisionRow
		var components string
		if err := rows.Scan(&r.Interaction, &r.ElementID, &r.ActionKey, &r.Total, &components,
			&r.Emotion, &r.Candidates, &r.EnergyLevel, &r.Reasoning); err != nil {
			return nil, fmt.Errorf("failed to scan decision: %w", err)
		}
		if err := json.Unmarshal([]byte(components), &r.Components); err != nil {
			return nil, fmt.Errorf("failed to decode components: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
