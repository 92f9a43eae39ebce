package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nvandessel/synthuser/internal/simulation"
	"github.com/nvandessel/synthuser/internal/trace"
)

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate <scenario.yaml>",
		Short: "Play a scenario for every persona it lists",
		Long: `Run a scripted scenario. Each persona gets its own engine, memory and noise
stream and plays every step in order. With a seed (from the scenario, the
--seed flag or config) the run is reproducible.

With --trace (or trace.path in config) every persona's decisions are
stored in a SQLite database and summarized in a report.

Examples:
  synthuser simulate checkout.yaml
  synthuser simulate checkout.yaml --seed 7 --trace runs.db
  synthuser simulate checkout.yaml --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tracePath, _ := cmd.Flags().GetString("trace")

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			sc, err := simulation.LoadScenario(args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("seed") {
				sc.Seed, _ = cmd.Flags().GetUint64("seed")
			}

			opts := []simulation.RunnerOption{
				simulation.WithLogger(a.log),
				simulation.WithDecisionLogger(a.decisions),
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
				opts = append(opts, simulation.WithTrace(store))
			}

			res, err := simulation.NewRunner(a.cfg, opts...).Run(cmd.Context(), sc)
			if err != nil {
				return err
			}

			if jsonFlag(cmd) {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			printResult(cmd.OutOrStdout(), res)
			return nil
		},
	}

	cmd.Flags().Uint64("seed", 0, "Seed overriding the scenario's")
	cmd.Flags().String("trace", "", "SQLite trace database (default: trace.path from config)")

	return cmd
}

func printResult(out io.Writer, res *simulation.Result) {
	fmt.Fprintf(out, "Scenario %q (seed %d)\n", res.Scenario, res.Seed)
	for _, pr := range res.Personas {
		fmt.Fprintf(out, "\n%s\n", pr.PersonaID)
		for _, sr := range pr.Steps {
			label := sr.Label
			if label == "" {
				label = fmt.Sprintf("step %d", sr.Index+1)
			}
			choice := sr.Chosen()
			if choice == "" {
				choice = "(nothing: " + sr.Error + ")"
			}
			outcome := ""
			if sr.Outcome != nil {
				outcome = " failed"
				if *sr.Outcome {
					outcome = " ok"
				}
			}
			fmt.Fprintf(out, "  %-20s %-12s energy %.3f  -> %s%s\n", label, sr.Emotion, sr.EnergyLevel, choice, outcome)
		}
		if pr.Report != nil {
			r := pr.Report
			fmt.Fprintf(out, "  decisions %d, success rate %.0f%%, mean score %.3f, session %s\n",
				r.Decisions, r.SuccessRate*100, r.MeanScore, pr.SessionID)
		}
	}
}
