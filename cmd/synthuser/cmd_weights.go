package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nvandessel/synthuser/internal/emotion"
)

func newWeightsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weights",
		Short: "Inspect the emotion model coefficients",
		Long: `List or read the emotion coefficients in effect after config and
environment overrides. Change them in ~/.synthuser/config.yaml under
emotion.<state>.<field>, or at runtime through the MCP synthuser_set_weight
tool.

Examples:
  synthuser weights list
  synthuser weights get confused base_intensity`,
	}
	cmd.AddCommand(
		newWeightsListCmd(),
		newWeightsGetCmd(),
	)
	return cmd
}

type weightValue struct {
	State emotion.State `json:"state"`
	Field string        `json:"field"`
	Value float64       `json:"value"`
}

func newWeightsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every tunable coefficient and its value",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			var values []weightValue
			for _, t := range emotion.Tunables() {
				v, err := a.cfg.Emotion.Get(t.State, t.Field)
				if err != nil {
					return err
				}
				values = append(values, weightValue{State: t.State, Field: t.Field, Value: v})
			}

			if jsonFlag(cmd) {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(values)
			}
			for _, v := range values {
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %-28s %.3f\n", v.State, v.Field, v.Value)
			}
			return nil
		},
	}
}

func newWeightsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <state> <field>",
		Short: "Print one coefficient",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			state := emotion.State(args[0])
			v, err := a.cfg.Emotion.Get(state, args[1])
			if err != nil {
				return err
			}

			if jsonFlag(cmd) {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(weightValue{State: state, Field: args[1], Value: v})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s.%s = %.3f\n", state, args[1], v)
			return nil
		},
	}
}
