package cmd

/*
cadlock ledger [build-id] --reset? --json?
*/

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/mirkobrombin/cadlock/pkg/cadlock"
	"github.com/mirkobrombin/cadlock/pkg/tools"
	"github.com/spf13/cobra"
)

func NewLedgerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger [build-id]",
		Short: "Show or reset the launch counts recorded on this machine",
		Long: `Show or reset the launch counts recorded on this machine.

Without arguments every recorded count is listed. With a build id only
that row is shown. The ledger also carries rows for containers that
were built elsewhere and opened here.`,
		Args: cobra.MaximumNArgs(1),
		RunE: ShowLedger,
	}

	cmd.Flags().Bool("reset", false, "Forget the launch count for the given build id")
	cmd.Flags().BoolP("json", "j", false, "Print output in JSON format")

	return cmd
}

func ledgerError(iErr error) (err error) {
	err = fmt.Errorf("an error occurred while reading the ledger: %s", iErr)
	return
}

func ShowLedger(cmd *cobra.Command, args []string) error {
	reset, _ := cmd.Flags().GetBool("reset")
	jsonFlag, _ := cmd.Flags().GetBool("json")

	locker, err := cadlock.NewLocker()
	if err != nil {
		return ledgerError(err)
	}

	store, err := cadlock.NewStore(locker.Options.StorePath)
	if err != nil {
		return ledgerError(err)
	}
	defer store.Close()

	if reset {
		if len(args) == 0 {
			return ledgerError(fmt.Errorf("reset needs a build id"))
		}

		confirm := tools.ConfirmOperation(fmt.Sprintf("Forget the launch count for build %s?", args[0]))
		if !confirm {
			return nil
		}

		err = store.ResetLaunchCount(args[0])
		if err != nil {
			return ledgerError(err)
		}
		fmt.Printf("Launch count for build %s forgotten\n", args[0])
		return nil
	}

	counts, err := store.GetLaunchCounts()
	if err != nil {
		return ledgerError(err)
	}

	if len(args) > 0 {
		count, countErr := store.GetLaunchCount(args[0])
		if countErr != nil {
			return ledgerError(countErr)
		}
		counts = map[string]uint32{args[0]: count}
	}

	if jsonFlag {
		jsonBytes, jsonErr := json.MarshalIndent(counts, "", "  ")
		if jsonErr != nil {
			return ledgerError(jsonErr)
		}
		fmt.Println(string(jsonBytes))
		return nil
	}

	ids := make([]string, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	header := []string{"Build", "Launches"}
	data := [][]string{}
	for _, id := range ids {
		data = append(data, []string{id, strconv.FormatUint(uint64(counts[id]), 10)})
	}
	tools.ShowTable(header, data)

	return nil
}
