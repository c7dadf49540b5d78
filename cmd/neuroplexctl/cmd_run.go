package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"neuroplex/internal/circuit"
	"neuroplex/pkg/neuroplex"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a circuit for a fixed number of ticks",
		Long: `Run a circuit for a fixed number of ticks.

Either supply a YAML run config via --config, or a circuit file via
--circuit plus --steps. Every tick's output arrays are recorded; the run
summary is printed as JSON on completion.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			circuitPath, _ := cmd.Flags().GetString("circuit")
			steps, _ := cmd.Flags().GetInt("steps")
			runID, _ := cmd.Flags().GetString("run-id")
			deadlineMS, _ := cmd.Flags().GetInt("tick-deadline-ms")
			continueOnFault, _ := cmd.Flags().GetBool("continue-on-fault")

			req := neuroplex.RunRequest{
				RunID:           runID,
				Steps:           steps,
				TickDeadline:    time.Duration(deadlineMS) * time.Millisecond,
				ContinueOnFault: continueOnFault,
			}
			if configPath != "" {
				cfg, err := loadRunConfig(configPath)
				if err != nil {
					return err
				}
				circuitPath = cfg.Circuit
				req.Steps = cfg.Steps
				req.ContinueOnFault = cfg.ContinueOnFault
				req.Stimuli = cfg.Stimuli
				req.TickDeadline = cfg.TickDeadline()
				if cfg.RunID != "" {
					req.RunID = cfg.RunID
				}
			}
			if circuitPath == "" {
				return fmt.Errorf("either --config or --circuit is required")
			}

			spec, err := circuit.Load(circuitPath)
			if err != nil {
				return err
			}
			req.Circuit = spec

			client, err := newClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			summary, runErr := client.Run(cmd.Context(), req)
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(summary); err != nil {
				return err
			}
			return runErr
		},
	}

	cmd.Flags().String("config", "", "YAML run config path")
	cmd.Flags().String("circuit", "", "circuit JSON path")
	cmd.Flags().Int("steps", 0, "number of ticks to run")
	cmd.Flags().String("run-id", "", "run identifier (generated when empty)")
	cmd.Flags().Int("tick-deadline-ms", 0, "per-tick deadline in milliseconds (0 uses the default)")
	cmd.Flags().Bool("continue-on-fault", false, "keep running after a module fault")
	return cmd
}
