package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nvandessel/synthuser/internal/config"
	"github.com/nvandessel/synthuser/internal/trace"
)

func newTraceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Inspect recorded simulation traces",
		Long: `Read back sessions stored by 'simulate --trace' or 'mcp-server --trace'.

Examples:
  synthuser trace sessions --db runs.db
  synthuser trace report <session-id> --db runs.db
  synthuser trace decisions <session-id> --db runs.db --json`,
	}
	cmd.PersistentFlags().String("db", "", "SQLite trace database (default: trace.path from config)")

	cmd.AddCommand(
		newTraceSessionsCmd(),
		newTraceReportCmd(),
		newTraceDecisionsCmd(),
	)
	return cmd
}

func openTrace(cmd *cobra.Command) (*trace.Store, error) {
	path, _ := cmd.Flags().GetString("db")
	if path == "" {
		cfg, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		path = cfg.Trace.Path
	}
	if path == "" {
		return nil, errors.New("no trace database: pass --db or set trace.path")
	}
	return trace.Open(path)
}

func newTraceSessionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List recorded sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openTrace(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			sessions, err := store.Sessions(cmd.Context())
			if err != nil {
				return err
			}
			if jsonFlag(cmd) {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(sessions)
			}
			if len(sessions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No sessions recorded.")
				return nil
			}
			for _, s := range sessions {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %-16s %s\n",
					s.ID, s.StartedAt.Format("2006-01-02 15:04:05"), s.PersonaID, s.Scenario)
			}
			return nil
		},
	}
}

func newTraceReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report <session-id>",
		Short: "Summarize one session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openTrace(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			r, err := store.Report(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonFlag(cmd) {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(r)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Session %s (%s, scenario %q)\n", r.SessionID, r.PersonaID, r.Scenario)
			fmt.Fprintf(out, "  Decisions:    %d\n", r.Decisions)
			fmt.Fprintf(out, "  Outcomes:     %d (%d succeeded, %.0f%%)\n", r.Outcomes, r.Successes, r.SuccessRate*100)
			fmt.Fprintf(out, "  Mean score:   %.3f\n", r.MeanScore)
			fmt.Fprintf(out, "  Final energy: %.3f\n", r.FinalEnergy)
			fmt.Fprintln(out, "  Emotions:")
			for state, n := range r.EmotionCounts {
				fmt.Fprintf(out, "    %-12s %d\n", state, n)
			}
			fmt.Fprintln(out, "  Most chosen:")
			for _, ec := range r.TopElements {
				fmt.Fprintf(out, "    %-20s %d\n", ec.ElementID, ec.Count)
			}
			return nil
		},
	}
}

func newTraceDecisionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decisions <session-id>",
		Short: "List every decision in a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openTrace(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			rows, err := store.Decisions(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonFlag(cmd) {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(rows)
			}
			for _, r := range rows {
				fmt.Fprintf(cmd.OutOrStdout(), "%3d. %-20s %.3f  %-12s energy %.3f\n",
					r.Interaction, r.ElementID, r.Total, r.Emotion, r.EnergyLevel)
			}
			return nil
		},
	}
}
