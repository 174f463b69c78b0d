package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	cache "github.com/moonsters/evolution-cache"
	"github.com/moonsters/evolution-cache/config"
	"github.com/moonsters/evolution-cache/logging"
	"github.com/moonsters/evolution-cache/storage"
)

var (
	configPath string
	logLevel   string
	cfg        config.Config
)

var rootCmd = &cobra.Command{
	Use:           "evocache",
	Short:         "Inspect and fill the moonster evolution cache",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		return logging.Init(cfg.LogLevel)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "trace, debug, info, warn or error")

	rootCmd.AddCommand(
		newGetCmd(),
		newFetchCmd(),
		newIDsCmd(),
		newListCmd("capture", "Manage the capture list (five moonsters at most)", captureConfig),
		newListCmd("compare", "Manage the comparison list (the two most recent moonsters)", comparisonConfig),
		newBenchCmd(),
	)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("evocache failed")
		stop()
		os.Exit(1)
	}
}

// session is one CLI run: an opened backend and a loaded evolution cache.
type session struct {
	backend storage.Backend
	cache   *cache.EvolutionCache
}

/*
openSession opens the configured backend and loads the cache from it.

A backend that cannot be opened is not fatal; the cache then runs in memory
for this invocation, the same as it would after a failed probe.
*/
func openSession(ctx context.Context, opts ...cache.Option) *session {
	backend, err := storage.Open(ctx, cfg.StorageSettings())
	if err != nil {
		log.Warn().Err(err).Str("driver", cfg.Storage.Driver).Msg("could not open storage")
		backend = nil
	}

	opts = append([]cache.Option{cache.WithStorageKey(cfg.Storage.Key)}, opts...)
	c := cache.NewEvolutionCache(ctx, backend, opts...)
	c.Load(ctx)
	return &session{backend: backend, cache: c}
}

func (s *session) Close() {
	s.cache.Close()
	if s.backend != nil {
		if err := s.backend.Close(); err != nil {
			log.Warn().Err(err).Msg("close storage")
		}
	}
}

func printYAML(cmd *cobra.Command, v any) error {
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
