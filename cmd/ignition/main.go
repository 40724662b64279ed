package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "ignition",
		Short:        "Ignition DEX adapter tooling",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	spotCmd := &cobra.Command{
		Use:   "spot",
		Short: "Convert a CaviarNine tick into a spot price",
		RunE:  runSpot,
	}
	spotCmd.Flags().Uint32("tick", 0, "tick on the CaviarNine grid [0, 54000]")
	_ = spotCmd.MarkFlagRequired("tick")
	root.AddCommand(spotCmd)

	tickCmd := &cobra.Command{
		Use:   "tick",
		Short: "Convert a spot price into the nearest CaviarNine tick",
		RunE:  runTick,
	}
	tickCmd.Flags().String("spot", "", "spot price (decimal)")
	_ = tickCmd.MarkFlagRequired("spot")
	root.AddCommand(tickCmd)

	binsCmd := &cobra.Command{
		Use:   "bins",
		Short: "Select bins around an active bin",
		RunE:  runBins,
	}
	binsCmd.Flags().Uint32("active", 0, "active bin")
	binsCmd.Flags().Uint32("span", 0, "bin span in ticks")
	binsCmd.Flags().Uint32("count", 10, "number of bins to select")
	_ = binsCmd.MarkFlagRequired("active")
	_ = binsCmd.MarkFlagRequired("span")
	root.AddCommand(binsCmd)

	caviarNineCmd := &cobra.Command{
		Use:   "caviarnine",
		Short: "Price and select bins for exported CaviarNine pool states",
		RunE:  runCaviarNine,
	}
	caviarNineCmd.Flags().String("states", "", "input pool states JSONL")
	caviarNineCmd.Flags().String("out", "", "output report JSONL (stdout when empty)")
	caviarNineCmd.Flags().Uint32("count", 10, "number of bins to select per pool")
	caviarNineCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(caviarNineCmd)

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Record price and tick windows after every swap",
		RunE:  runSnapshot,
	}
	snapshotCmd.Flags().String("rpc", "", "EVM RPC URL")
	snapshotCmd.Flags().StringSlice("pool", nil, "pool addresses (comma-separated)")
	snapshotCmd.Flags().String("blueprint", "uniswap-v3", "blueprint label stored with each pool")
	snapshotCmd.Flags().Uint64("from", 0, "start block (inclusive)")
	snapshotCmd.Flags().Uint64("to", 0, "end block (inclusive), 0 means latest")
	snapshotCmd.Flags().Uint64("batch-size", 2000, "blocks per batch")
	snapshotCmd.Flags().Uint32("count", 10, "number of ticks to select per snapshot")
	snapshotCmd.Flags().String("out", "./data/bin_snapshots.jsonl", "output JSONL path")
	snapshotCmd.Flags().String("checkpoint", "./data/checkpoint.json", "checkpoint file path (ignored with --pg-dsn)")
	snapshotCmd.Flags().String("checkpoint-name", "bin-snapshots", "checkpoint name in indexer_state")
	snapshotCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	snapshotCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	snapshotCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	snapshotCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(snapshotCmd)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve tick math and pool adapters over HTTP",
		RunE:  runServe,
	}
	serveCmd.Flags().String("listen", ":8080", "listen address")
	serveCmd.Flags().String("states", "", "CaviarNine pool states JSONL")
	serveCmd.Flags().String("rpc", "", "EVM RPC URL for sqrt-price pools")
	serveCmd.Flags().Duration("request-timeout", 10*time.Second, "per-request timeout")
	serveCmd.Flags().Duration("shutdown-timeout", 5*time.Second, "graceful shutdown timeout")
	serveCmd.Flags().Uint32("max-bin-count", 200, "largest accepted bin count")
	serveCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(serveCmd)

	return root
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func printJSON(cmd *cobra.Command, value interface{}) error {
	return json.NewEncoder(cmd.OutOrStdout()).Encode(value)
}
