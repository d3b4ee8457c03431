// Command mapper implements the mapper half of spec.md §6.2: it reads a
// corpus archive, tokenizes and stems every document into an in-memory
// inverted index, and flushes sorted per-shard run files whenever the
// configured memory budget is exceeded (and once more at end of input).
//
// Grounded on the teacher's cmd/lci/main.go for CLI shape (urfave/cli/v2
// App with a config flag plus include/exclude overrides), adapted from an
// interactive indexing tool's flag surface to the positional argument
// contract of spec.md §6.2:
//
//	mapper <master-id> <worker-id> <num-reducers> <input-archive> <output-path> <kb-mem-limit>
package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/shardidx/internal/config"
	"github.com/standardbeagle/shardidx/internal/corpus"
	"github.com/standardbeagle/shardidx/internal/diag"
	"github.com/standardbeagle/shardidx/internal/docparser"
	"github.com/standardbeagle/shardidx/internal/flush"
	"github.com/standardbeagle/shardidx/internal/memindex"
	"github.com/standardbeagle/shardidx/internal/memprobe"
	"github.com/standardbeagle/shardidx/internal/metrics"
	"github.com/standardbeagle/shardidx/internal/version"
)

func main() {
	app := &cli.App{
		Name:                   "mapper",
		Usage:                  "parse a corpus archive into sorted per-shard run files",
		Version:                version.Version,
		UseShortOptionHandling: true,
		ArgsUsage:              "<master-id> <worker-id> <num-reducers> <input-archive> <output-path> <kb-mem-limit>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Value: ".shardidx.kdl",
				Usage: "Config file path",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "Include archive entries matching glob patterns",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Exclude archive entries matching glob patterns",
			},
			&cli.StringFlag{
				Name:  "manifest",
				Usage: "Write a TOML manifest of produced run files to this path",
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
	if c.Args().Len() != 6 {
		_ = cli.ShowAppHelp(c)
		return cli.Exit(fmt.Sprintf("mapper: expected 6 arguments, got %d", c.Args().Len()), -1)
	}
	masterID := c.Args().Get(0)
	workerID := c.Args().Get(1)
	numReducersArg := c.Args().Get(2)
	inputArchive := c.Args().Get(3)
	outputPath := c.Args().Get(4)
	kbMemLimitArg := c.Args().Get(5)

	cfg, err := config.LoadKDL(c.String("config"))
	if err != nil {
		return err
	}
	if err := cfg.FieldOverride("num_reducers", numReducersArg); err != nil {
		return err
	}
	if err := cfg.FieldOverride("mem_limit_kb", kbMemLimitArg); err != nil {
		return err
	}
	if inc := c.StringSlice("include"); len(inc) > 0 {
		cfg.Include = inc
	}
	if exc := c.StringSlice("exclude"); len(exc) > 0 {
		cfg.Exclude = append(cfg.Exclude, exc...)
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

	archive, err := corpus.Open(inputArchive, corpus.Filters{Include: cfg.Include, Exclude: cfg.Exclude})
	if err != nil {
		return err
	}
	defer archive.Close()

	idx := memindex.New()
	parser := docparser.New(idx)
	probe := memprobe.LinuxVmSizeEstimator{}

	var files []config.ShardFile
	flushIfOverBudget := func() error {
		kb, err := probe.EstimateKB()
		if err != nil {
			return nil
		}
		metrics.MemoryEstimateKB.Set(float64(kb))
		if kb < cfg.MemLimitKB {
			return nil
		}
		return doFlush(idx, outputPath, cfg.NumReducers, cfg.BufferSizeBytes, &files)
	}

	for {
		docID, body, ok := archive.Next()
		if !ok {
			break
		}
		parser.Parse(docID, body)
		metrics.DocumentsProcessed.Inc()

		if err := flushIfOverBudget(); err != nil {
			return err
		}
	}

	if idx.Len() > 0 {
		if err := doFlush(idx, outputPath, cfg.NumReducers, cfg.BufferSizeBytes, &files); err != nil {
			return err
		}
	}

	writeMetricsSidecar(outputPath)

	if manifestPath := c.String("manifest"); manifestPath != "" {
		m := &config.Manifest{
			RunID:       config.NewRunID(),
			MasterID:    masterID,
			WorkerID:    workerID,
			NumReducers: cfg.NumReducers,
			Files:       files,
		}
		if err := config.WriteManifest(manifestPath, m); err != nil {
			return err
		}
	}

	return nil
}

// writeMetricsSidecar exports the process's metrics alongside its output so
// a batch run that never serves -metrics-addr still leaves a record behind.
func writeMetricsSidecar(outputDir string) {
	f, err := os.Create(filepath.Join(outputDir, ".metrics.prom"))
	if err != nil {
		diag.Log("metrics", "sidecar export skipped: %v", err)
		return
	}
	defer f.Close()
	if err := (metrics.Registry{}).WriteText(f); err != nil {
		diag.Log("metrics", "sidecar export failed: %v", err)
	}
}

func doFlush(idx *memindex.Index, outputPath string, numReducers uint32, bufferSize int, files *[]config.ShardFile) error {
	termCount := idx.Len()
	markers, err := flush.Run(idx, outputPath, numReducers, bufferSize, os.Stdout)
	if err != nil {
		return err
	}
	metrics.FlushCount.Inc()
	metrics.TermsFlushed.Add(float64(termCount))
	for _, m := range markers {
		*files = append(*files, config.ShardFile{Filename: m.Filename, ShardIdx: m.ShardIdx, Bytes: m.Bytes})
	}
	return nil
}
