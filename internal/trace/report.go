package trace

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned for an unknown session ID.
var ErrSessionNotFound = errors.New("session not found")

// ElementCount is how often an element was chosen.
type ElementCount struct {
	ElementID string `json:"element_id"`
	Count     int    `json:"count"`
}

// Report summarizes one session for usability review.
type Report struct {
	SessionID     string         `json:"session_id"`
	PersonaID     string         `json:"persona_id"`
	Scenario      string         `json:"scenario"`
	Decisions     int            `json:"decisions"`
	Outcomes      int            `json:"outcomes"`
	Successes     int            `json:"successes"`
	SuccessRate   float64        `json:"success_rate"`
	MeanScore     float64        `json:"mean_score"`
	FinalEnergy   float64        `json:"final_energy"`
	EmotionCounts map[string]int `json:"emotion_counts"`
	TopElements   []ElementCount `json:"top_elements"`
}

// Report aggregates a session's decisions and outcomes.
func (s *Store) Report(ctx context.Context, sessionID string) (Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := Report{SessionID: sessionID, EmotionCounts: map[string]int{}}

	err := s.db.QueryRowContext(ctx,
		`SELECT persona_id, scenario FROM sessions WHERE id = ?`, sessionID).Scan(&r.PersonaID, &r.Scenario)
	if errors.Is(err, sql.ErrNoRows) {
		return Report{}, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if err != nil {
		return Report{}, fmt.Errorf("failed to query session: %w", err)
	}

	var mean sql.NullFloat64
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), AVG(total_score) FROM decisions WHERE session_id = ?`, sessionID).Scan(&r.Decisions, &mean)
	if err != nil {
		return Report{}, fmt.Errorf("failed to count decisions: %w", err)
	}
	r.MeanScore = mean.Float64

	var energy sql.NullFloat64
	err = s.db.QueryRowContext(ctx,
		`SELECT energy_level FROM decisions WHERE session_id = ? ORDER BY interaction DESC, id DESC LIMIT 1`,
		sessionID).Scan(&energy)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return Report{}, fmt.Errorf("failed to query energy: %w", err)
	}
	r.FinalEnergy = energy.Float64

	var successes sql.NullInt64
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), SUM(success) FROM outcomes WHERE session_id = ?`, sessionID).Scan(&r.Outcomes, &successes)
	if err != nil {
		return Report{}, fmt.Errorf("failed to count outcomes: %w", err)
	}
	r.Successes = int(successes.Int64)
	if r.Outcomes > 0 {
		r.SuccessRate = float64(r.Successes) / float64(r.Outcomes)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT emotion, COUNT(*) FROM decisions WHERE session_id = ? GROUP BY emotion`, sessionID)
	if err != nil {
		return Report{}, fmt.Errorf("failed to group emotions: %w", err)
	}
	for rows.Next() {
		var emotion string
		var n int
		if err := rows.Scan(&emotion, &n); err != nil {
			rows.Close()
			return Report{}, fmt.Errorf("failed to scan emotion count: %w", err)
		}
		r.EmotionCounts[emotion] = n
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return Report{}, err
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT element_id, COUNT(*) AS n FROM decisions WHERE session_id = ?
		GROUP BY element_id ORDER BY n DESC, MIN(id) LIMIT 5`, sessionID)
	if err != nil {
		return Report{}, fmt.Errorf("failed to group elements: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var ec ElementCount
		if err := rows.Scan(&ec.ElementID, &ec.Count); err != nil {
			return Report{}, fmt.Errorf("failed to scan element count: %w", err)
		}
		r.TopElements = append(r.TopElements, ec)
	}
	return r, rows.Err()
}
