// Command benchmark runs the swarmnav coordination-paradigm sweep
// headlessly and writes the results stream to stdout or a file.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"

	"swarmnav/benchmark"
	"swarmnav/config"
	"swarmnav/grid"
	"swarmnav/telemetry"
)

var (
	configPath = flag.String("config", "", "Scenario config YAML file (empty = embedded defaults)")
	outPath    = flag.String("out", "", "Results CSV file (empty = stdout)")
	jsonPath   = flag.String("json", "", "Optional results JSON file (empty = skip)")
	seed       = flag.Int64("seed", 42, "Random seed for agent placement")
)

func main() {
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		slog.Error("benchmark: failed to load config", "err", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	topology, err := grid.ParseTopology(cfg.Grid.Topology)
	if err != nil {
		slog.Error("benchmark: invalid grid topology", "err", err)
		os.Exit(1)
	}
	g := grid.New(topology, cfg.Grid.Width, cfg.Grid.Height, float32(cfg.Grid.CellSize))

	sink := telemetry.NewMetricSink()
	sweep := &benchmark.Sweep{
		Grid:        g,
		Factories:   benchmark.DefaultFactories(),
		Sink:        sink,
		AgentRadius: float32(cfg.Agent.Radius),
		MaxSpeed:    float32(cfg.Agent.MaxSpeed),
		AgentCounts: cfg.Sweep.AgentCounts,
		Methods:     cfg.Sweep.Methods,
		MaxFrames:   cfg.Sweep.MaxFrames,
		TimeoutS:    cfg.Sweep.TimeoutS,
		Rng:         rand.New(rand.NewSource(*seed)),
	}

	slog.Info("benchmark: starting sweep",
		"agent_counts", cfg.Sweep.AgentCounts, "methods", cfg.Sweep.Methods)
	if err := sweep.RunFull(); err != nil {
		slog.Error("benchmark: invalid sweep", "err", err)
		os.Exit(1)
	}

	dest := os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			slog.Error("benchmark: failed to create results file", "err", err)
			os.Exit(1)
		}
		defer f.Close()
		dest = f
	}

	if *jsonPath != "" {
		jf, err := os.Create(*jsonPath)
		if err != nil {
			slog.Error("benchmark: failed to create JSON results file", "err", err)
			os.Exit(1)
		}
		defer jf.Close()
		if err := sink.FlushJSON(jf); err != nil {
			slog.Error("benchmark: failed to write JSON results", "err", err)
			os.Exit(1)
		}
	}

	if err := sink.Flush(dest); err != nil {
		slog.Error("benchmark: failed to write results", "err", err)
		os.Exit(1)
	}

	fmt.Fprintln(os.Stderr, "benchmark: sweep complete")
}
