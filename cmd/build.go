package cmd

/*
cadlock build <drawing> --max-launches? --meltdown? --countdown? --self-destruct? --output-dir? --suffix? --stub? --profile? --yes?
*/

import (
	"fmt"
	"os"

	"github.com/mirkobrombin/cadlock/pkg/cadlock"
	"github.com/mirkobrombin/cadlock/pkg/codec"
	"github.com/mirkobrombin/cadlock/pkg/tools"
	"github.com/spf13/cobra"
)

func NewBuildCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [drawing]",
		Short: "Build a protected container from a CAD drawing",
		Long: `Build a protected container from a CAD drawing.

The drawing is encrypted and appended to a stub executable together with
the launch policy. When no drawing is given on the command line, the path
is asked interactively, so a file can be dragged onto the terminal.`,
		Args: cobra.MaximumNArgs(1),
		RunE: BuildContainer,
	}

	cmd.Flags().Uint32P("max-launches", "m", 0, "Launch budget, 0 means unlimited")
	cmd.Flags().Bool("meltdown", false, "Watch the viewer and kill it on save, export or print attempts")
	cmd.Flags().Bool("countdown", false, "Show the remaining launches on every open")
	cmd.Flags().Bool("self-destruct", false, "Delete the container once the budget is exhausted")
	cmd.Flags().StringP("output-dir", "o", "", "Directory for the container, defaults to the drawing's directory")
	cmd.Flags().StringP("suffix", "s", "", "Suffix appended to the container name (default \""+cadlock.DefaultSuffix+"\")")
	cmd.Flags().String("stub", "", "Stub executable to embed the drawing into, defaults to this binary")
	cmd.Flags().StringP("profile", "p", "", "Build profile file to take defaults from")
	cmd.Flags().BoolP("yes", "y", false, "Overwrite an existing container without asking")

	return cmd
}

func buildError(iErr error) (err error) {
	err = fmt.Errorf("an error occurred while building the container: %s", iErr)
	return
}

func BuildContainer(cmd *cobra.Command, args []string) (err error) {
	maxLaunches, _ := cmd.Flags().GetUint32("max-launches")
	meltdown, _ := cmd.Flags().GetBool("meltdown")
	countdown, _ := cmd.Flags().GetBool("countdown")
	selfDestruct, _ := cmd.Flags().GetBool("self-destruct")
	outputDir, _ := cmd.Flags().GetString("output-dir")
	suffix, _ := cmd.Flags().GetString("suffix")
	stub, _ := cmd.Flags().GetString("stub")
	profilePath, _ := cmd.Flags().GetString("profile")
	yes, _ := cmd.Flags().GetBool("yes")

	var sourcePath string
	if len(args) > 0 {
		sourcePath = args[0]
	} else {
		sourcePath = tools.PromptLine("Drawing to protect")
		if sourcePath == "" {
			return buildError(fmt.Errorf("no drawing given"))
		}
	}
	sourcePath = tools.ResolvePath(sourcePath)

	locker, err := cadlock.NewLocker()
	if err != nil {
		return buildError(err)
	}

	opts := cadlock.BuildOptions{SourcePath: sourcePath}
	if profilePath != "" {
		profile, profileErr := cadlock.LoadBuildProfile(profilePath)
		if profileErr != nil {
			return buildError(profileErr)
		}
		fmt.Println("Using build profile:", profile.Name)
		opts, err = cadlock.BuildOptionsFromProfile(profile, sourcePath)
		if err != nil {
			return buildError(err)
		}
	}

	// explicit flags win over the profile
	if maxLaunches != 0 {
		opts.MaxLaunches = maxLaunches
	}
	if outputDir != "" {
		opts.OutputDir = outputDir
	}
	if suffix != "" {
		opts.Suffix = suffix
	}
	if stub != "" {
		opts.StubPath = stub
	}
	if meltdown {
		opts.Flags |= codec.FlagMeltdown
	}
	if countdown {
		opts.Flags |= codec.FlagShowCountdown
	}
	if selfDestruct {
		opts.Flags |= codec.FlagSelfDestruct
	}

	outputPath := opts.OutputPath()
	if _, statErr := os.Stat(outputPath); statErr == nil && !yes {
		confirm := tools.ConfirmOperation(fmt.Sprintf("Container %s already exists, overwrite it?", outputPath))
		if !confirm {
			return
		}
	}

	build, err := locker.Build(opts)
	if err != nil {
		return buildError(err)
	}

	fmt.Println("\nContainer built:", build.OutputPath)
	fmt.Println("  - build id:", build.Id)
	fmt.Println("  - payload:", tools.FormatBytes(build.PayloadSize))
	if build.MaxLaunches == 0 {
		fmt.Println("  - launches: unlimited")
	} else {
		fmt.Println("  - launches:", build.MaxLaunches)
	}
	flagNames := codec.FlagNames(build.SecurityFlags)
	if len(flagNames) > 0 {
		fmt.Println("  - flags:", flagNames)
	}

	return nil
}
