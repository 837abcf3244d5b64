package cmd

/*
cadlock open <container>
*/

import (
	"fmt"

	"github.com/mirkobrombin/cadlock/pkg/cadlock"
	"github.com/spf13/cobra"
)

func NewOpenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "open <container>",
		Short: "Open a protected container in the CAD viewer",
		Long: `Open a protected container in the CAD viewer.

The launch budget is checked and counted before the drawing reaches the
viewer. The drawing only exists on disk while the viewer is running.`,
		Args: cobra.ExactArgs(1),
		RunE: OpenContainer,
	}

	return cmd
}

func openError(iErr error) (err error) {
	err = fmt.Errorf("an error occurred while opening the container: %s", iErr)
	return
}

func OpenContainer(cmd *cobra.Command, args []string) (err error) {
	locker, err := cadlock.NewLocker()
	if err != nil {
		return openError(err)
	}

	err = locker.Open(args[0])
	if err != nil {
		return openError(err)
	}

	return nil
}
