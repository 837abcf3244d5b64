/*
* Copyright (c) 2025 FABRICATORS S.R.L.
* Licensed under the Fabricators Public Access License (FPAL) v1.0
* See https://github.com/fabricatorsltd/FPAL for details.
 */
package cmd

/*
cadlock inspect <container> --json?
*/

import (
	"encoding/json"
	"fmt"

	"github.com/mirkobrombin/cadlock/pkg/cadlock"
	"github.com/mirkobrombin/cadlock/pkg/codec"
	"github.com/mirkobrombin/cadlock/pkg/tools"
	"github.com/spf13/cobra"
)

func NewInspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <container>",
		Short: "Show the embedded policy of a protected container",
		Args:  cobra.ExactArgs(1),
		RunE:  InspectContainer,
	}

	cmd.Flags().BoolP("json", "j", false, "Print output in JSON format")

	return cmd
}

func inspectError(iErr error) (err error) {
	err = fmt.Errorf("an error occurred while inspecting the container: %s", iErr)
	return
}

// inspectView is the flattened footer plus the local ledger state.
type inspectView struct {
	Path          string   `json:"path"`
	BuildId       string   `json:"build_id"`
	FormatVersion uint8    `json:"format_version"`
	PayloadSize   uint64   `json:"payload_size"`
	MaxLaunches   uint32   `json:"max_launches"`
	Flags         []string `json:"flags"`
	LaunchesUsed  uint32   `json:"launches_used"`
	LedgerKnown   bool     `json:"ledger_known"`
}

func InspectContainer(cmd *cobra.Command, args []string) (err error) {
	jsonFlag, _ := cmd.Flags().GetBool("json")

	path := tools.ResolvePath(args[0])
	footer, err := cadlock.ParseContainer(path)
	if err != nil {
		return inspectError(err)
	}

	view := inspectView{
		Path:          path,
		BuildId:       footer.BuildIdHex(),
		FormatVersion: footer.Version,
		PayloadSize:   footer.PayloadSize,
		MaxLaunches:   footer.MaxLaunches,
		Flags:         codec.FlagNames(footer.SecurityFlags),
	}

	// The ledger is optional here, inspect also runs on machines that
	// never opened the container.
	locker, lockerErr := cadlock.NewLocker()
	if lockerErr == nil {
		store, storeErr := cadlock.NewStore(locker.Options.StorePath)
		if storeErr == nil {
			defer store.Close()
			count, countErr := store.GetLaunchCount(view.BuildId)
			if countErr == nil {
				view.LaunchesUsed = count
				view.LedgerKnown = true
			}
		}
	}

	if jsonFlag {
		jsonBytes, jsonErr := json.MarshalIndent(view, "", "  ")
		if jsonErr != nil {
			return inspectError(jsonErr)
		}
		fmt.Println(string(jsonBytes))
		return nil
	}

	fmt.Println("Container:", view.Path)
	tools.PrintStructKeyVal(view)
	if view.LedgerKnown && view.MaxLaunches > 0 {
		remaining := uint32(0)
		if view.MaxLaunches > view.LaunchesUsed {
			remaining = view.MaxLaunches - view.LaunchesUsed
		}
		fmt.Println("  - launches-remaining:", remaining)
	}

	return nil
}
