package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build [configPath] [sourceDir]",
	Short: "Import a source directory and print the resulting snapshot stats",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := rootLogger()
		snap, err := loadSnapshot(log, args[0], args[1])
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(snap.Stats(), "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling stats: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func newBuildCmd() *cobra.Command { return buildCmd }
