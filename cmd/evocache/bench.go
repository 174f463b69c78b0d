package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	cache "github.com/moonsters/evolution-cache"
	"github.com/moonsters/evolution-cache/metrics"
	"github.com/moonsters/evolution-cache/types"
)

type benchResult struct {
	Driver       string  `yaml:"driver"`
	Persistent   bool    `yaml:"persistent"`
	Entries      int     `yaml:"entries"`
	Goroutines   int     `yaml:"goroutines"`
	OpsPerWorker int     `yaml:"ops_per_goroutine"`
	WriteTime    string  `yaml:"write_time"`
	WritesPerSec float64 `yaml:"writes_per_sec"`
	ReadTime     string  `yaml:"read_time"`
	ReadsPerSec  float64 `yaml:"reads_per_sec"`
}

/*
newBenchCmd measures the two costs that matter for this cache: write-through
of the whole snapshot on every Set, and concurrent Get.

It uses its own storage key so the real cache contents are left alone, and
removes that key when done.
*/
func newBenchCmd() *cobra.Command {
	var (
		entries     int
		goroutines  int
		opsPerG     int
		metricsFile string
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure write-through and read throughput against the configured storage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			key := cfg.Storage.Key + ".bench"

			reg := prometheus.NewRegistry()
			m := metrics.NewPrometheus(reg, "evocache")

			s := openSession(ctx, cache.WithStorageKey(key), cache.WithMetrics(m))
			defer s.Close()
			if s.backend != nil && s.cache.Persistent() {
				defer func() { _ = s.backend.RemoveItem(ctx, key) }()
			}

			start := time.Now()
			for i := 1; i <= entries; i++ {
				s.cache.Set(ctx, i, benchRecord(i))
			}
			writeTime := time.Since(start)

			var wg sync.WaitGroup
			wg.Add(goroutines)
			start = time.Now()
			for g := 0; g < goroutines; g++ {
				go func() {
					defer wg.Done()
					for j := 0; j < opsPerG; j++ {
						s.cache.Get(j%entries + 1)
					}
				}()
			}
			wg.Wait()
			readTime := time.Since(start)

			if metricsFile != "" {
				if err := prometheus.WriteToTextfile(metricsFile, reg); err != nil {
					return err
				}
			}

			return printYAML(cmd, benchResult{
				Driver:       cfg.Storage.Driver,
				Persistent:   s.cache.Persistent(),
				Entries:      entries,
				Goroutines:   goroutines,
				OpsPerWorker: opsPerG,
				WriteTime:    writeTime.String(),
				WritesPerSec: float64(entries) / writeTime.Seconds(),
				ReadTime:     readTime.String(),
				ReadsPerSec:  float64(goroutines*opsPerG) / readTime.Seconds(),
			})
		},
	}

	cmd.Flags().IntVar(&entries, "entries", 500, "records to write through one by one")
	cmd.Flags().IntVar(&goroutines, "goroutines", 200, "concurrent readers")
	cmd.Flags().IntVar(&opsPerG, "ops", 5000, "reads per goroutine")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write the run's counters in Prometheus text format")
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		if entries < 1 || goroutines < 1 || opsPerG < 1 {
			return errors.New("--entries, --goroutines and --ops must be positive")
		}
		return nil
	}
	return cmd
}

func benchRecord(id int) types.EvolutionRecord {
	return types.EvolutionRecord{
		Chain: []types.Moonster{
			{Name: fmt.Sprintf("moonster-%d", id), Image: fmt.Sprintf("%d.png", id), ID: id},
			{Name: fmt.Sprintf("moonster-%d", id+1), Image: fmt.Sprintf("%d.png", id+1), ID: id + 1},
		},
		Conditions: []types.Condition{
			{From: fmt.Sprintf("moonster-%d", id), To: fmt.Sprintf("moonster-%d", id+1), Trigger: "level-up", Details: "min_level 16"},
		},
	}
}
