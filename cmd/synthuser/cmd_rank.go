package main

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nvandessel/synthuser/internal/decision"
	"github.com/nvandessel/synthuser/internal/memory"
	"github.com/nvandessel/synthuser/internal/models"
	"github.com/nvandessel/synthuser/internal/persona"
	"github.com/nvandessel/synthuser/internal/ranking"
)

func newRankCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank a page's elements from a persona's point of view",
		Long: `Score every visible, enabled element on a page for one persona and print
them best first, with the component scores behind each total.

The elements file is a YAML (or JSON) list of elements. Omitted fields
default to visible, enabled, prominence 0.5 and relevance 0.5.

Examples:
  synthuser rank --elements page.yaml
  synthuser rank --persona novice.yaml --elements page.yaml --goal "Buy the item" --goal-keywords buy,cart
  synthuser rank --elements page.yaml --seed 42 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			personaPath, _ := cmd.Flags().GetString("persona")
			elementsPath, _ := cmd.Flags().GetString("elements")
			goalText, _ := cmd.Flags().GetString("goal")
			keywords, _ := cmd.Flags().GetStringSlice("goal-keywords")
			decide, _ := cmd.Flags().GetBool("decide")

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			p := persona.New("user_001", "Synthetic User")
			if personaPath != "" {
				p, err = persona.LoadFile(personaPath)
				if err != nil {
					return err
				}
			}

			elements, err := loadElements(elementsPath)
			if err != nil {
				return err
			}

			opts := []decision.Option{
				decision.WithWeights(a.cfg.Emotion),
				decision.WithWeightTable(a.cfg.Ranking),
				decision.WithMemory(memory.NewSystem(a.cfg.Memory.System(), time.Now)),
				decision.WithLearningRate(a.cfg.Memory.LearningRate),
				decision.WithLogger(a.log),
				decision.WithDecisionLogger(a.decisions),
			}
			if seed, ok := seedFlag(cmd, a.cfg.Seed); ok {
				opts = append(opts, decision.WithNoise(rand.New(rand.NewPCG(seed, 0))))
			}
			e := decision.New(p, opts...)

			if goalText != "" || len(keywords) > 0 {
				if goalText == "" {
					goalText = strings.Join(keywords, " ")
				}
				e.SetGoal(models.NewGoal("cli", goalText, keywords...))
			}

			var ranked []ranking.ElementScore
			if decide {
				if _, err := e.MakeDecision(elements); err != nil {
					return err
				}
				ranked = e.LastRanking()
			} else {
				ranked = e.RankElements(elements)
			}

			if jsonFlag(cmd) {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]interface{}{
					"persona_id": p.ID,
					"emotion":    e.Emotions().Current(),
					"ranked":     ranked,
					"count":      len(ranked),
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Persona %s feels %s; %d of %d elements usable\n\n",
				p.ID, e.Emotions().Current(), len(ranked), len(elements))
			for i, r := range ranked {
				fmt.Fprintf(out, "%2d. %-20s %.3f  %s\n", i+1, r.Element.ID, r.Total, r.Reasoning)
			}
			return nil
		},
	}

	cmd.Flags().String("persona", "", "Persona YAML file (default: a neutral persona)")
	cmd.Flags().String("elements", "", "Elements YAML or JSON file")
	cmd.Flags().String("goal", "", "Goal description")
	cmd.Flags().StringSlice("goal-keywords", nil, "Comma-separated goal keywords")
	cmd.Flags().Uint64("seed", 0, "Noise seed for reproducible scores")
	cmd.Flags().Bool("decide", false, "Commit to the best element (applies fatigue and memory)")
	cmd.MarkFlagRequired("elements")

	return cmd
}

// loadElements reads a list of elements from a YAML or JSON file.
func loadElements(path string) ([]models.WebElement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading elements: %w", err)
	}
	var elements []models.WebElement
	if err := yaml.Unmarshal(data, &elements); err != nil {
		return nil, fmt.Errorf("parsing elements: %w", err)
	}
	return elements, nil
}

// seedFlag returns the --seed flag when given, else a configured non-zero
// seed.
func seedFlag(cmd *cobra.Command, configured uint64) (uint64, bool) {
	if cmd.Flags().Changed("seed") {
		seed, _ := cmd.Flags().GetUint64("seed")
		return seed, true
	}
	return configured, configured != 0
}
