package main

import (
	"fmt"
	"os"

	"github.com/mirkobrombin/cadlock/cmd"
	"github.com/mirkobrombin/cadlock/pkg/cadlock"
	"github.com/mirkobrombin/cadlock/pkg/tools"
	"github.com/spf13/cobra"
)

var version = "0.0.1"

func main() {
	// A container is this same binary with a drawing appended. When the
	// running executable carries a footer and no command was given, it
	// opens itself instead of showing the CLI, that is the double click
	// path on a protected drawing.
	if len(os.Args) <= 1 {
		if self, err := os.Executable(); err == nil && cadlock.IsContainer(self) {
			runStub(self)
			return
		}
	}

	rootCmd := &cobra.Command{
		Use:   "cadlock",
		Short: "launch limited containers for CAD drawings",
		Long:  `cadlock packs CAD drawings into launch limited, self contained viewer executables`,
	}

	rootCmd.AddCommand(cmd.NewBuildCommand())
	rootCmd.AddCommand(cmd.NewOpenCommand())
	rootCmd.AddCommand(cmd.NewInspectCommand())
	rootCmd.AddCommand(cmd.NewListCommand())
	rootCmd.AddCommand(cmd.NewRemoveCommand())
	rootCmd.AddCommand(cmd.NewLedgerCommand())
	rootCmd.AddCommand(cmd.NewAuditCommand())
	rootCmd.AddCommand(cmd.NewValidateCommand())
	rootCmd.AddCommand(cmd.NewGenSchemaCommand())
	rootCmd.AddCommand(cmd.NewSweepCommand())

	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// runStub is the double click flow. Errors stay on screen until the
// user confirms them, a console window that closes itself would eat
// the message.
func runStub(self string) {
	locker, err := cadlock.NewLocker()
	if err == nil {
		err = locker.Open(self)
	}
	if err != nil {
		fmt.Println(err)
		tools.PromptLine("Press Enter to close this window")
		os.Exit(1)
	}
}
