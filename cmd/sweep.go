/*
* Copyright (c) 2025 FABRICATORS S.R.L.
* Licensed under the Fabricators Public Access License (FPAL) v1.0
* See https://github.com/fabricatorsltd/FPAL for details.
 */
package cmd

import (
	"fmt"

	"github.com/mirkobrombin/cadlock/pkg/cadlock"
	"github.com/mirkobrombin/cadlock/pkg/logger"
	"github.com/spf13/cobra"
)

func NewSweepCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:    "sweep",
		Short:  "Waits for a process to exit and deletes a file (internal)",
		RunE:   runSweep,
		Hidden: true,
	}

	cmd.Flags().String("target", "", "File to delete")
	cmd.Flags().Int("wait-pid", 0, "Process to wait for before deleting, 0 deletes immediately")
	cmd.Flags().Bool("wipe", false, "Zero the file before deleting it")
	cmd.MarkFlagRequired("target")

	return cmd
}

func runSweep(cmd *cobra.Command, args []string) error {
	target, _ := cmd.Flags().GetString("target")
	waitPid, _ := cmd.Flags().GetInt("wait-pid")
	wipe, _ := cmd.Flags().GetBool("wipe")

	logger.Printf("Sweeping %s after pid %d exits", target, waitPid)
	err := cadlock.Sweep(target, waitPid, wipe)
	if err != nil {
		logger.Printf("sweep exited with error: %v", err)
		return fmt.Errorf("sweep failed: %w", err)
	}

	logger.Println("Sweep finished successfully.")
	return nil
}
