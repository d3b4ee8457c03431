// Command reducer implements the reducer half of spec.md §6.2: given a set
// of sorted run files for one shard, it k-way merges their posting streams
// and writes a single consolidated shard output with backpatched posting
// counts.
//
// CLI shape mirrors cmd/mapper: an urfave/cli/v2 App with a config flag,
// positional arguments for the wire contract.
//
//	reducer <shard-output-path> <run-file>...
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/shardidx/internal/config"
	"github.com/standardbeagle/shardidx/internal/diag"
	"github.com/standardbeagle/shardidx/internal/merge"
	"github.com/standardbeagle/shardidx/internal/metrics"
	"github.com/standardbeagle/shardidx/internal/reduce"
	"github.com/standardbeagle/shardidx/internal/runfile"
	"github.com/standardbeagle/shardidx/internal/version"
)

func main() {
	app := &cli.App{
		Name:                   "reducer",
		Usage:                  "merge sorted run files for one shard into a consolidated shard output",
		Version:                version.Version,
		UseShortOptionHandling: true,
		ArgsUsage:              "<shard-output-path> <run-file>...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Value: ".shardidx.kdl",
				Usage: "Config file path",
			},
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "Serve Prometheus metrics on this address (e.g. :9090)",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.Args().Len() < 2 {
		return cli.ShowAppHelp(c)
	}

	cfg, err := config.LoadKDL(c.String("config"))
	if err != nil {
		return err
	}
	if err := (config.Validator{}).ValidateAndSetDefaults(cfg); err != nil {
		return err
	}

	if addr := c.String("metrics-addr"); addr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			if err := http.ListenAndServe(addr, mux); err != nil {
				diag.Log("metrics", "server exited: %v", err)
			}
		}()
	}

	outputPath := c.Args().Get(0)
	runPaths := c.Args().Slice()[1:]

	readers := make([]*runfile.Reader, 0, len(runPaths))
	sources := make([]merge.Source, 0, len(runPaths))
	defer func() {
		for _, r := range readers {
			r.Close()
		}
	}()

	for i, p := range runPaths {
		r, err := runfile.Open(p)
		if err != nil {
			return fmt.Errorf("reducer: open run file %q: %w", p, err)
		}
		readers = append(readers, r)
		sources = append(sources, r)
		metrics.RunFilesMerged.WithLabelValues(fmt.Sprintf("%d", i)).Inc()
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("reducer: create shard output %q: %w", outputPath, err)
	}
	w := runfile.NewWriterSize(out, cfg.BufferSizeBytes)

	consolidator := reduce.New(w)
	merge.Run(sources, consolidator.Consume)
	if err := consolidator.Err(); err != nil {
		w.Close()
		return fmt.Errorf("reducer: consolidate: %w", err)
	}

	outBytes := w.Pos()
	if err := w.Close(); err != nil {
		return fmt.Errorf("reducer: close shard output %q: %w", outputPath, err)
	}
	fmt.Printf("=> %s %d\n", outputPath, outBytes)

	writeMetricsSidecar(outputPath)

	diag.Log("reducer", "wrote consolidated shard output %s from %d run files", outputPath, len(runPaths))
	return nil
}

// writeMetricsSidecar exports the process's metrics alongside its output so
// a batch run that never serves -metrics-addr still leaves a record behind.
func writeMetricsSidecar(outputPath string) {
	f, err := os.Create(outputPath + ".metrics.prom")
	if err != nil {
		diag.Log("metrics", "sidecar export skipped: %v", err)
		return
	}
	defer f.Close()
	if err := (metrics.Registry{}).WriteText(f); err != nil {
		diag.Log("metrics", "sidecar export failed: %v", err)
	}
}
