package main

import (
	"math/rand/v2"

	"github.com/spf13/cobra"

	"github.com/nvandessel/synthuser/internal/decision"
	"github.com/nvandessel/synthuser/internal/mcp"
	"github.com/nvandessel/synthuser/internal/persona"
	"github.com/nvandessel/synthuser/internal/trace"
)

func newMCPServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp-server",
		Short: "Serve one synthetic user over MCP (stdio)",
		Long: `Start a Model Context Protocol server on stdin/stdout so a browser
automation agent can ask the synthetic user what it would do next.

Tools: synthuser_set_goal, synthuser_update_context, synthuser_rank,
synthuser_decide, synthuser_record_outcome, synthuser_summary,
synthuser_set_weight.

Logs go to stderr; stdout carries the protocol.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			personaPath, _ := cmd.Flags().GetString("persona")
			tracePath, _ := cmd.Flags().GetString("trace")

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			cfg := &mcp.Config{
				Name:      "synthuser",
				Version:   version,
				Sim:       a.cfg,
				Logger:    a.log,
				Decisions: a.decisions,
			}
			if personaPath != "" {
				cfg.Persona, err = persona.LoadFile(personaPath)
				if err != nil {
					return err
				}
			}
			if seed, ok := seedFlag(cmd, a.cfg.Seed); ok {
				cfg.Options = append(cfg.Options, decision.WithNoise(rand.New(rand.NewPCG(seed, 0))))
			}
			if tracePath == "" {
				tracePath = a.cfg.Trace.Path
			}
			if tracePath != "" {
				store, err := trace.Open(tracePath)
				if err != nil {
					return err
				}
				defer store.Close()
				cfg.Trace = store
			}

			server, err := mcp.NewServer(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			return server.Run(cmd.Context())
		},
	}

	cmd.Flags().String("persona", "", "Persona YAML file (default: a neutral persona)")
	cmd.Flags().String("trace", "", "SQLite trace database (default: trace.path from config)")
	cmd.Flags().Uint64("seed", 0, "Noise seed for reproducible scores")

	return cmd
}
