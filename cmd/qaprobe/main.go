// Command qaprobe exercises the QA testbed API from the terminal: CRUD
// calls, simulation endpoints, client-side fault injection, and the
// persisted request history.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/qa-testbed/testbed-api/pkg/client"
	"github.com/qa-testbed/testbed-api/pkg/client/history"
	"github.com/qa-testbed/testbed-api/pkg/client/netsim"
	"github.com/qa-testbed/testbed-api/pkg/logger"
)

var (
	flagBaseURL      string
	flagHistoryStore string
	flagHistoryDir   string
	flagRedisAddr    string
	flagRedisDB      int
	flagSimulate     string
	flagDelayMs      int
	flagErrorRate    int
	flagSeed         int64
	flagVerbose      bool
)

func main() {
	root := &cobra.Command{
		Use:           "qaprobe",
		Short:         "Probe the QA testbed API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagBaseURL, "base-url", envOr("TESTBED_URL", client.DefaultBaseURL), "API base URL")
	root.PersistentFlags().StringVar(&flagHistoryStore, "history-store", "file", "request history backend: file|redis")
	root.PersistentFlags().StringVar(&flagHistoryDir, "history-dir", defaultHistoryDir(), "directory for persisted request history (file store)")
	root.PersistentFlags().StringVar(&flagRedisAddr, "redis-addr", "localhost:6379", "redis address (redis store)")
	root.PersistentFlags().IntVar(&flagRedisDB, "redis-db", 0, "redis database number (redis store)")
	root.PersistentFlags().StringVar(&flagSimulate, "simulate", "none", "client fault injection mode: none|slow|unreliable|error|custom")
	root.PersistentFlags().IntVar(&flagDelayMs, "sim-delay-ms", 2000, "custom-mode injection delay in ms")
	root.PersistentFlags().IntVar(&flagErrorRate, "sim-error-rate", 50, "custom-mode injection failure rate (0-100)")
	root.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "seed for injected randomness (0 = wall clock)")
	root.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "debug logging")

	root.AddCommand(
		newHealthCmd(),
		newUsersCmd(),
		newSimulateCmd(),
		newHistoryCmd(),
		newResetCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// newClient wires the full pipeline: injector → HTTP → recorder. The
// recorder persists to disk so history survives across probe runs.
func newClient() (*client.Client, *history.Recorder, error) {
	level := "warn"
	if flagVerbose {
		level = "debug"
	}
	log := logger.Init(logger.Options{Level: level, Pretty: true, Output: os.Stderr})

	store, err := newHistoryStore()
	if err != nil {
		return nil, nil, fmt.Errorf("open history store: %w", err)
	}
	recorder := history.NewRecorder(store, log)

	mode, err := netsim.ParseMode(flagSimulate)
	if err != nil {
		return nil, nil, err
	}

	seed := flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	injector := netsim.NewInjector(seed)
	injector.SetMode(mode)
	injector.SetCustomDelay(flagDelayMs)
	injector.SetErrorRate(flagErrorRate)

	c := client.New(flagBaseURL,
		client.WithInjector(injector),
		client.WithRecorder(recorder),
		client.WithLogger(log),
	)
	return c, recorder, nil
}

// newHistoryStore selects the persistence backend for the request history.
// The redis store lets history survive across probe runs on different hosts
// pointed at the same testbed.
func newHistoryStore() (history.Store, error) {
	switch flagHistoryStore {
	case "file":
		return history.NewFileStore(flagHistoryDir)
	case "redis":
		return history.NewRedisStore(context.Background(), flagRedisAddr, flagRedisDB)
	}
	return nil, fmt.Errorf("unknown history store %q (want file or redis)", flagHistoryStore)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultHistoryDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".qaprobe"
	}
	return home + "/.qaprobe"
}
