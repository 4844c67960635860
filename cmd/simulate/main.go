// simulate plays a match headless with random rankings and writes the
// results sheet.
// Usage: go run ./cmd/simulate -catalog catalog.yaml -out results.pdf
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"richrain/internal/catalog"
	"richrain/internal/game"
	"richrain/internal/random"
	"richrain/internal/results"
)

func main() {
	code := run(os.Args[1:])
	if code != 0 {
		os.Exit(code)
	}
}

func run(args []string) int {
	fs := flag.NewFlagSet("simulate", flag.ContinueOnError)
	catalogPath := fs.String("catalog", "catalog.yaml", "match catalog (YAML)")
	out := fs.String("out", "results.pdf", "results sheet to write")
	seed := fs.Uint64("seed", 0, "random seed (0 = time based)")
	rounds := fs.Int("rounds", 0, "override the catalog round count")
	verbose := fs.Bool("v", false, "log every presentation step")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg := zap.NewDevelopmentConfig()
	if !*verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	log, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	cat, err := catalog.Load(*catalogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load catalog: %v\n", err)
		return 1
	}

	res, err := simulate(context.Background(), cat.Setup(*rounds), random.New(*seed), log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "simulate: %v\n", err)
		return 1
	}
	for _, st := range res.Standings {
		fmt.Printf("%d. %-16s stars=%d coins=%d\n", st.Place, st.Player.Name, st.Player.Stars, st.Player.Coins)
	}

	outPath := filepath.Clean(*out)
	b, err := results.Render(res)
	if err != nil {
		fmt.Fprintf(os.Stderr, "render: %v\n", err)
		return 1
	}
	if err := os.WriteFile(outPath, b, 0o600); err != nil {
		fmt.Fprintf(os.Stderr, "write %s: %v\n", outPath, err)
		return 1
	}
	fmt.Printf("results sheet written to %s\n", outPath)
	return 0
}

// simulate drives a controller to game over: it rolls whenever a turn is
// waiting and ranks the mini-game players in random order.
func simulate(ctx context.Context, setup game.Setup, rng *random.Selector, log *zap.Logger) (game.Results, error) {
	present := game.PresenterFunc(func(_ context.Context, a game.Animation) error {
		log.Debug("animate", zap.String("kind", string(a.Kind)), zap.Any("payload", a.Payload))
		return nil
	})
	c, err := game.NewController(setup, game.Options{Logger: log, Random: rng, Presenter: present})
	if err != nil {
		return game.Results{}, err
	}
	c.Announce(ctx)

	// Each pass makes progress, so this bounds a stuck controller.
	limit := 4 * (len(setup.Roster) + 1) * (setup.TotalRounds + 1)
	for i := 0; i < limit; i++ {
		if res, ok := c.Results(); ok {
			return res, nil
		}
		switch c.Phase() {
		case game.PhaseWaitingForRoll:
			c.Roll(ctx)
		case game.PhaseMiniGame:
			order := make([]string, len(setup.Roster))
			for j, p := range c.Snapshot().Players {
				order[j] = p.ID
			}
			random.Shuffle(rng, order)
			for _, id := range order {
				c.SelectRank(ctx, id)
			}
		default:
			return game.Results{}, fmt.Errorf("controller stuck in phase %s", c.Phase())
		}
	}
	return game.Results{}, fmt.Errorf("no result after %d inputs", limit)
}
