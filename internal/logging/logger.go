// Package logging provides leveled logging and decision tracing for synthuser.
//
// Two outputs are offered:
//   - a leveled slog.Logger for stderr
//   - a DecisionLogger appending one JSON object per decision or outcome
//     to decisions.jsonl, enabled only at debug or trace level
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LevelTrace sits below Debug. At this level every component score of
// every ranked element is logged.
const LevelTrace = slog.LevelDebug - 4

// DecisionsFile is the JSONL file name inside the log directory.
const DecisionsFile = "decisions.jsonl"

// Levels lists the accepted level names.
var Levels = []string{"info", "debug", "trace"}

// ParseLevel maps a level name to a slog.Level. Names are case-insensitive;
// anything unrecognized is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "trace":
		return LevelTrace
	default:
		return slog.LevelInfo
	}
}

// ValidLevel reports whether s names a known level. The empty string is
// accepted as info.
func ValidLevel(s string) bool {
	switch strings.ToLower(s) {
	case "", "info", "debug", "trace":
		return true
	}
	return false
}

// NewLogger creates a text slog.Logger writing to w.
func NewLogger(level string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if l, ok := a.Value.Any().(slog.Level); ok && l == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 4}))
}

// Event kinds written to the decision log.
const (
	EventDecision = "decision"
	EventOutcome  = "outcome"
	EventGoal     = "goal"
)

// Event is one line of the decision log.
type Event struct {
	Time       time.Time `json:"time"`
	Kind       string    `json:"event"`
	PersonaID  string    `json:"persona_id"`
	ElementID  string    `json:"element_id,omitempty"`
	ActionKey  string    `json:"action_key,omitempty"`
	Emotion    string    `json:"emotion,omitempty"`
	Score      float64   `json:"score,omitempty"`
	Candidates int       `json:"candidates,omitempty"`
	Success    *bool     `json:"success,omitempty"`
	Valence    float64   `json:"valence,omitempty"`
	Preference float64   `json:"preference,omitempty"`
	Energy     float64   `json:"energy_level"`
	Reasoning  string    `json:"reasoning,omitempty"`
	Goal       string    `json:"goal,omitempty"`
}

// DecisionLogger appends Events as JSONL. It is safe for concurrent use,
// and a nil *DecisionLogger ignores every call.
type DecisionLogger struct {
	mu sync.Mutex
	w  io.Writer
	c  io.Closer
}

// NewDecisionLogger opens dir/decisions.jsonl for append. At info level it
// returns nil and creates nothing.
func NewDecisionLogger(dir, level string) (*DecisionLogger, error) {
	if ParseLevel(level) == slog.LevelInfo {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating log dir: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(dir, DecisionsFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening decision log: %w", err)
	}
	return &DecisionLogger{w: f, c: f}, nil
}

// NewDecisionWriter returns a logger writing to w. Close does not close w.
func NewDecisionWriter(w io.Writer) *DecisionLogger {
	return &DecisionLogger{w: w}
}

// Log writes ev as a single line, stamping Time when it is zero.
func (dl *DecisionLogger) Log(ev Event) {
	if dl == nil {
		return
	}
	if ev.Time.IsZero() {
		ev.Time = time.Now().UTC()
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	data = append(data, '\n')

	dl.mu.Lock()
	defer dl.mu.Unlock()
	if dl.w == nil {
		return
	}
	_, _ = dl.w.Write(data)
}

// Close releases the underlying file, if any. Later Log calls are no-ops.
func (dl *DecisionLogger) Close() error {
	if dl == nil {
		return nil
	}

	dl.mu.Lock()
	defer dl.mu.Unlock()

	var err error
	if dl.c != nil {
		err = dl.c.Close()
	}
	dl.w, dl.c = nil, nil
	return err
}
