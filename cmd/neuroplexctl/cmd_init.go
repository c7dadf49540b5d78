package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"neuroplex/internal/storage"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the recording store",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			storeKind, _ := cmd.Flags().GetString("store")
			if storeKind == "" {
				storeKind = storage.DefaultStoreKind()
			}
			fmt.Printf("initialized %s store\n", storeKind)
			return nil
		},
	}
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Drop all recorded circuits, ticks and summaries",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			resetter, ok := client.Store().(storage.Resetter)
			if !ok {
				return fmt.Errorf("store backend does not support reset")
			}
			if err := resetter.Reset(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("store reset")
			return nil
		},
	}
}
