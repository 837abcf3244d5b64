package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/mirkobrombin/cadlock/pkg/cadlock"
	"github.com/mirkobrombin/cadlock/pkg/tools"
	"github.com/spf13/cobra"
)

func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all builds recorded on this machine",
		Args:  cobra.NoArgs,
		RunE:  ListBuilds,
	}

	cmd.Flags().BoolP("json", "j", false, "Print output in JSON format")

	return cmd
}

func listError(iErr error) (err error) {
	err = fmt.Errorf("an error occurred while listing builds: %s", iErr)
	return
}

func ListBuilds(cmd *cobra.Command, args []string) error {
	jsonFlag, err := cmd.Flags().GetBool("json")
	if err != nil {
		return listError(err)
	}

	locker, err := cadlock.NewLocker()
	if err != nil {
		return listError(err)
	}

	store, err := cadlock.NewStore(locker.Options.StorePath)
	if err != nil {
		return listError(fmt.Errorf("failed to open store: %w", err))
	}
	defer store.Close()

	builds, err := store.GetBuilds()
	if err != nil {
		return listError(err)
	}

	counts, err := store.GetLaunchCounts()
	if err != nil {
		return listError(err)
	}

	if !jsonFlag {
		header := []string{"Build", "Source", "Output", "Payload", "Used", "Budget", "Timestamp"}
		data := [][]string{}
		for _, build := range builds {
			budget := "unlimited"
			if build.MaxLaunches > 0 {
				budget = strconv.FormatUint(uint64(build.MaxLaunches), 10)
			}
			data = append(data, []string{
				build.Id[:8],
				build.SourcePath,
				build.OutputPath,
				tools.FormatBytes(build.PayloadSize),
				strconv.FormatUint(uint64(counts[build.Id]), 10),
				budget,
				build.Timestamp.Format(time.RFC3339),
			})
		}
		tools.ShowTable(header, data)
	} else {
		jsonBytes, err := json.MarshalIndent(builds, "", "  ")
		if err != nil {
			return listError(err)
		}
		fmt.Println(string(jsonBytes))
	}

	return nil
}
