package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"neuroplex/internal/storage"
	"neuroplex/pkg/neuroplex"
)

var version = "0.1.0-dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "neuroplexctl",
		Short: "Fixed-timestep neural-circuit simulation orchestrator",
		Long: `neuroplexctl drives multi-module neural-circuit simulations.

It loads a circuit description (modules plus slot-to-slot connectivity),
advances the circuit tick by tick while routing graded-potential and spike
payloads between modules, and records every tick's output arrays.`,
	}

	rootCmd.PersistentFlags().String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	rootCmd.PersistentFlags().String("db-path", "neuroplex.db", "sqlite database path")
	rootCmd.PersistentFlags().String("log-level", "info", "log verbosity: error|warn|info|debug")

	rootCmd.AddCommand(
		newVersionCmd(),
		newInitCmd(),
		newResetCmd(),
		newValidateCmd(),
		newRunCmd(),
		newRunsCmd(),
		newTicksCmd(),
		newSummaryCmd(),
		newExportCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("neuroplexctl version %s\n", version)
		},
	}
}

func newClient(cmd *cobra.Command) (*neuroplex.Client, error) {
	storeKind, _ := cmd.Flags().GetString("store")
	dbPath, _ := cmd.Flags().GetString("db-path")
	logLevel, _ := cmd.Flags().GetString("log-level")

	return neuroplex.NewClient(cmd.Context(), neuroplex.Options{
		StoreKind: storeKind,
		DBPath:    dbPath,
		LogLevel:  logLevel,
		LogWriter: os.Stderr,
	})
}
