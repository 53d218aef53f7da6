package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/warebots/fleetsim/core/assist"
	"github.com/warebots/fleetsim/core/logger"
	"github.com/warebots/fleetsim/core/sim"
	"github.com/warebots/fleetsim/internal/eventbus"
)

var (
	demoDuration time.Duration
	demoSpeed    float64
	demoSeed     int64
)

// demoCmd runs a self-contained headless simulation without external
// services and prints a summary.
var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a standalone simulation and print a summary",
	RunE:  runDemo,
}

func init() {
	demoCmd.Flags().DurationVar(&demoDuration, "duration", 60*time.Second, "simulated wall-clock duration")
	demoCmd.Flags().Float64Var(&demoSpeed, "speed", 1, "speed multiplier")
	demoCmd.Flags().Int64Var(&demoSeed, "seed", 0, "event generator seed, 0 for random")
	rootCmd.AddCommand(demoCmd)
}

func runDemo(cmd *cobra.Command, args []string) error {
	bus := eventbus.New()
	defer bus.Close()

	policy := assist.NewPolicy(nil, assist.Config{DebounceMs: 1500, TimeoutSeconds: 10}, logger.Nop{})
	engine := sim.New(sim.Config{Speed: demoSpeed, Seed: demoSeed}, policy, bus, nil, logger.Nop{})

	ctx, cancel := context.WithTimeout(context.Background(), demoDuration)
	defer cancel()
	if err := engine.Run(ctx); err != nil {
		return err
	}

	state := engine.Snapshot()
	fmt.Printf("ticks: %d\n", state.Tick)
	fmt.Printf("tasks completed: %d\n", state.Metrics.TasksCompleted)
	fmt.Printf("avg response: %.0f ms\n", state.Metrics.AvgResponseMs)
	fmt.Printf("efficiency: %.1f%%\n", state.Metrics.Efficiency)
	for _, r := range state.Robots {
		fmt.Printf("%s: pos=(%d,%d) state=%s battery=%.0f%%\n", r.ID, r.Position.X, r.Position.Y, r.State, r.Battery)
	}
	for _, entry := range engine.Logs(10) {
		fmt.Printf("[%s] %s\n", entry.Category, entry.Message)
	}
	return nil
}
