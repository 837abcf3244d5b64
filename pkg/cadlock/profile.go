package cadlock

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mirkobrombin/cadlock/pkg/codec"
	"github.com/mirkobrombin/cadlock/pkg/tools"
	"github.com/mirkobrombin/cadlock/pkg/types"
)

// LoadBuildProfile reads and validates a build profile file. The
// returned profile has passed the syntax checks, but the flag names
// are kept symbolic, BuildOptionsFromProfile resolves them.
func LoadBuildProfile(path string) (profile types.BuildProfile, err error) {
	content, err := os.ReadFile(tools.ResolvePath(path))
	if err != nil {
		err = fmt.Errorf("LoadBuildProfile: %s", err)
		return
	}

	err = json.Unmarshal(content, &profile)
	if err != nil {
		err = fmt.Errorf("LoadBuildProfile: %s", err)
		return
	}

	err = ValidateProfileSyntax(&profile)
	return
}

// BuildOptionsFromProfile translates a profile into build options for
// the given source drawing. Explicit values passed on the command line
// win over the profile, the caller applies those on top.
func BuildOptionsFromProfile(profile types.BuildProfile, sourcePath string) (opts BuildOptions, err error) {
	flags, err := codec.ParseFlagNames(profile.Flags)
	if err != nil {
		return
	}

	opts = BuildOptions{
		SourcePath:  sourcePath,
		StubPath:    profile.StubPath,
		OutputDir:   profile.OutputDir,
		Suffix:      profile.Suffix,
		MaxLaunches: uint32(profile.MaxLaunches),
		Flags:       flags,
	}
	return
}
