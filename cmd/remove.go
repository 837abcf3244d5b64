package cmd

/*
cadlock remove <build-id> --ledger?
*/

import (
	"fmt"

	"github.com/mirkobrombin/cadlock/pkg/cadlock"
	"github.com/mirkobrombin/cadlock/pkg/tools"
	"github.com/spf13/cobra"
)

func NewRemoveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <build-id>",
		Short: "Remove a build record from this machine",
		Long: `Remove a build record from this machine.

Only the record is removed, the container file stays where it was
written. The launch ledger row is kept unless --ledger is given, so a
container that comes back keeps its spent budget.`,
		Args: cobra.ExactArgs(1),
		RunE: RemoveBuild,
	}

	cmd.Flags().Bool("ledger", false, "Also forget the launch count for this build")

	return cmd
}

func removeError(iErr error) (err error) {
	err = fmt.Errorf("an error occurred while removing the build: %s", iErr)
	return
}

func RemoveBuild(cmd *cobra.Command, args []string) error {
	buildId := args[0]
	ledger, _ := cmd.Flags().GetBool("ledger")

	locker, err := cadlock.NewLocker()
	if err != nil {
		return removeError(err)
	}

	store, err := cadlock.NewStore(locker.Options.StorePath)
	if err != nil {
		return removeError(err)
	}
	defer store.Close()

	build, err := store.GetBuildById(buildId)
	if err != nil {
		return removeError(err)
	}

	fmt.Println("The following build record will be removed:")
	fmt.Printf("  - %s (%s)\n", build.Id, build.SourcePath)
	if ledger {
		fmt.Println("Its launch count will be forgotten as well.")
	}

	confirm := tools.ConfirmOperation("Do you want to continue?")
	if !confirm {
		return nil
	}

	err = store.RemoveBuildById(build.Id)
	if err != nil {
		return removeError(err)
	}

	if ledger {
		err = store.ResetLaunchCount(build.Id)
		if err != nil {
			return removeError(err)
		}
	}

	fmt.Printf("Build %s removed\n", build.Id)
	return nil
}
