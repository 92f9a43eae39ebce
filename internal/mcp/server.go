// Package mcp provides an MCP (Model Context Protocol) server that lets a
// page-automation agent drive one synthetic user.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nvandessel/synthuser/internal/config"
	"github.com/nvandessel/synthuser/internal/decision"
	"github.com/nvandessel/synthuser/internal/logging"
	"github.com/nvandessel/synthuser/internal/memory"
	"github.com/nvandessel/synthuser/internal/models"
	"github.com/nvandessel/synthuser/internal/persona"
	"github.com/nvandessel/synthuser/internal/trace"
)

// Server wraps the MCP SDK server around a single decision engine.
type Server struct {
	server *sdk.Server
	log    *slog.Logger

	// mu serializes tool calls; the engine is not safe for concurrent use.
	mu     sync.Mutex
	engine *decision.Engine

	// seen holds the latest version of every element offered to rank or
	// decide, so outcomes can be reported by ID.
	seen map[string]models.WebElement

	sessionID string
}

// Config holds server configuration.
type Config struct {
	Name    string // Server name (e.g., "synthuser")
	Version string // Server version

	Persona   *persona.Persona        // Simulated user; a default persona if nil
	Sim       *config.SimConfig       // Weights and memory settings; defaults if nil
	Logger    *slog.Logger            // Operational log; discarded if nil
	Decisions *logging.DecisionLogger // Optional JSONL decision trace
	Trace     *trace.Store            // Optional SQLite trace
	Options   []decision.Option       // Extra engine options, applied last
}

// NewServer creates a new MCP server with synthuser tools.
func NewServer(ctx context.Context, cfg *Config) (*Server, error) {
	sim := cfg.Sim
	if sim == nil {
		sim = config.Default()
	}
	p := cfg.Persona
	if p == nil {
		p = persona.New("user_001", "Synthetic User")
	}
	log := cfg.Logger
	if log == nil {
		log = logging.Discard()
	}

	opts := []decision.Option{
		decision.WithWeights(sim.Emotion),
		decision.WithWeightTable(sim.Ranking),
		decision.WithMemory(memory.NewSystem(sim.Memory.System(), time.Now)),
		decision.WithLearningRate(sim.Memory.LearningRate),
		decision.WithLogger(log),
		decision.WithDecisionLogger(cfg.Decisions),
	}

	s := &Server{
		log:  log,
		seen: make(map[string]models.WebElement),
	}
	if cfg.Trace != nil {
		sess, err := cfg.Trace.StartSession(ctx, p.ID, p.Name, "mcp")
		if err != nil {
			return nil, fmt.Errorf("failed to start trace session: %w", err)
		}
		s.sessionID = sess.ID
		opts = append(opts, decision.WithObserver(sess))
	}
	opts = append(opts, cfg.Options...)
	s.engine = decision.New(p, opts...)

	s.server = sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, &sdk.ServerOptions{})

	s.registerTools()
	return s, nil
}

// SessionID is the trace session recording this server's decisions, or "".
func (s *Server) SessionID() string { return s.sessionID }

// Run starts the MCP server over stdio transport.
// This blocks until the client disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	s.log.Info("mcp server started", "persona", s.engine.Persona().ID)
	return s.server.Run(ctx, &sdk.StdioTransport{})
}
