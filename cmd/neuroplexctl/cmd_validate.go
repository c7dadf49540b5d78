package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"neuroplex/internal/circuit"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <circuit.json>",
		Short: "Validate a circuit description without running it",
		Long: `Validate a circuit description without running it.

This checks module declarations (unique ids, known models, slot counts and
flags), edge classes, and that every edge's slot indices fall inside the
declared slot counts of its endpoints.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := circuit.Load(args[0])
			if err != nil {
				return err
			}

			client, err := newClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			if err := client.Validate(spec); err != nil {
				return fmt.Errorf("circuit %s is invalid: %w", spec.Name, err)
			}
			fmt.Printf("circuit %s: %d modules, %d edges, ok\n", spec.Name, len(spec.Modules), len(spec.Edges))
			return nil
		},
	}
}
