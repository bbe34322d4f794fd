package cmd

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/chainsim/chainsim/sim"
	"github.com/chainsim/chainsim/sim/policy"
	"github.com/chainsim/chainsim/sim/store"
)

var (
	// CLI flags for the simulation run
	topologyPath string // Path to the YAML topology file
	seed         int64  // Seed for demand generation
	durations    int64  // Run length override (in ticks, 0 = topology value)
	logLevel     string // Log verbosity level
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "chainsim",
	Short: "Discrete-event simulator for multi-echelon supply chains",
}

// runCmd executes the simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the supply-chain simulation",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		if topologyPath == "" {
			logrus.Fatalf("Topology file not provided. Exiting simulation.")
		}

		cfg, err := sim.LoadTopologyConfig(topologyPath)
		if err != nil {
			logrus.Fatalf("unable to load topology: %v", err)
		}
		if durations > 0 {
			cfg.Durations = durations
		}

		world, err := sim.BuildWorld(cfg, seed)
		if err != nil {
			logrus.Fatalf("unable to build world: %v", err)
		}

		logrus.Infof("Starting simulation with %d facilities, %d SKUs, durations=%d ticks, seed=%d",
			len(world.Facilities()), len(world.SKUs), cfg.Durations, seed)

		startTime := time.Now()

		engine := sim.NewBusinessEngine(world, store.New())
		baseStock := policy.NewBaseStock(cfg, world)
		for !engine.Done() {
			engine.Step(baseStock.Decide(world, engine.Tick()))
		}

		engine.Metrics().Print(engine.Tick())
		logrus.Infof("Simulation complete in %v (run %s).", time.Since(startTime), engine.RunID)
	},
}

// validateCmd checks a topology file without running anything
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a topology file",
	Run: func(cmd *cobra.Command, args []string) {
		if topologyPath == "" {
			logrus.Fatalf("Topology file not provided.")
		}
		if _, err := sim.LoadTopologyConfig(topologyPath); err != nil {
			logrus.Fatalf("topology invalid: %v", err)
		}
		logrus.Infof("topology %s is valid", topologyPath)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&topologyPath, "topology", "", "Path to the YAML topology file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Master seed for demand generation")
	runCmd.Flags().Int64Var(&durations, "durations", 0, "Run length in ticks (overrides topology)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Fatal(err)
	}
}
