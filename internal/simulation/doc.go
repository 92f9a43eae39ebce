// Package simulation plays scripted sessions against synthetic users.
//
// A Scenario is a YAML document listing personas and a sequence of pages
// (steps). The Runner gives every persona its own decision engine, memory,
// simulated clock and noise stream, plays each step and records what was
// chosen, how the user felt and how tired they got. With a fixed seed two
// runs are identical.
//
// Optionally every persona's run is written to a trace store and summarized
// in a report.
//
// Usage:
//
//	sc, err := simulation.LoadScenario("checkout.yaml")
//	if err != nil {
//	    return err
//	}
//	res, err := simulation.NewRunner(cfg, simulation.WithTrace(store)).Run(ctx, sc)
//
// The Assert helpers check run results in tests:
//
//	simulation.AssertChoice(t, res, "novice", 0, "buy")
//	simulation.AssertNeverChosen(t, res, "hidden-promo")
package simulation
