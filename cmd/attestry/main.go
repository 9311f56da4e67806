// Command attestry runs attestation recipes: it fetches the declared
// queries, executes the transform script in a sandbox, validates the
// resulting items, and encodes them alongside the derived schema
// identifier.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"attestry/internal/config"
	"attestry/internal/fetch"
	"attestry/internal/logging"
	"attestry/internal/pipeline"
	"attestry/internal/query"
	"attestry/internal/sandbox"
	"attestry/internal/schema"
)

var (
	// Global flags
	cfgPath string
	address string
	verbose bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "attestry",
	Short: "Run attestation recipes",
	Long: `attestry runs attestation recipes: declarative pipelines that fetch
records from remote query endpoints, transform them with a sandboxed
script, and emit validated, typed attestation fields together with the
deterministic schema identifier they encode under.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
		if address != "" {
			cfg.UserAddress = address
		}
		if verbose {
			cfg.Logging.Level = "debug"
		}
		logger, err = logging.New(cfg.Logging)
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", defaultConfigPath(), "config file path")
	rootCmd.PersistentFlags().StringVar(&address, "address", "", "requesting user address substituted into query placeholders")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(uidCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(devCmd)
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".attestry", "config.yaml")
	}
	return filepath.Join(home, ".attestry", "config.yaml")
}

// newFetchClient builds the fetch client plus a cleanup func for the
// optional local cache.
func newFetchClient() (*fetch.Client, func(), error) {
	opts := fetch.Options{
		Timeout:  cfg.FetchTimeout(),
		RelayURL: cfg.Fetch.RelayURL,
		CacheKey: cfg.Fetch.CacheKey,
	}
	cleanup := func() {}
	if cfg.Fetch.Cache.Enabled {
		cache, err := fetch.OpenCache(cfg.Fetch.Cache.Path, cfg.CacheTTL())
		if err != nil {
			return nil, nil, err
		}
		opts.Cache = cache
		cleanup = func() { _ = cache.Close() }
	}
	return fetch.NewClient(opts, logger), cleanup, nil
}

func newRunner() (*pipeline.Runner, func(), error) {
	client, cleanup, err := newFetchClient()
	if err != nil {
		return nil, nil, err
	}
	executor := sandbox.New(cfg.SandboxTimeout(), logger)
	runner := pipeline.NewRunner(client, executor, schema.CanonicalEncoder{}, logger)
	return runner, cleanup, nil
}

func userContext() query.UserContext {
	return query.UserContext{Address: cfg.UserAddress}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
