package cadlock

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mirkobrombin/cadlock/pkg/logger"
	"github.com/mirkobrombin/cadlock/pkg/tools"
	"github.com/mirkobrombin/cadlock/pkg/types"
)

type Locker struct {
	Options types.LockerOptions
	Ctx     context.Context

	// launcher, when set, replaces the platform viewer launcher.
	launcher ViewerLauncher
}

// NewLocker creates a new locker instance.
func NewLocker() (locker Locker, err error) {
	locker.Options, err = getLockerOptions()
	if err != nil {
		return
	}

	logger.Setup(locker.Options.LogsPath, locker.Options.Verbose)
	locker.Ctx = context.Background()
	return
}

// getLockerOptions reads configuration options following a defined
// priority order:
//  1. If the CADLOCK_OPTS_FILE environment variable is set, the
//     configuration file path is extracted from this variable and used
//     as the sole source.
//  2. Otherwise, the configuration file is searched in the current
//     user's configuration directory: "<UserConfigDir>/cadlock/cadlock.json".
//  3. If a configuration file is found, options are loaded from that file.
//  4. If no configuration file is found, or an error occurs during
//     reading, the default layout is used, rooted at the CADLOCK_HOME
//     environment variable if set, or "<UserConfigDir>/cadlock"
//     otherwise.
//  5. Unset optional fields are filled with their defaults and the
//     necessary directories are then created, if they don't exist.
func getLockerOptions() (options types.LockerOptions, err error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return
	}

	var confPaths []string
	var installationPath string

	// Try to read the options from the environment variable at first
	// if it's not set, try to read the options from the default path
	if os.Getenv("CADLOCK_OPTS_FILE") != "" {
		confPaths = append(confPaths, os.Getenv("CADLOCK_OPTS_FILE"))
	} else {
		confPaths = append(confPaths, filepath.Join(configDir, "cadlock", "cadlock.json"))
	}

	for _, confPath := range confPaths {
		if _, err = os.Stat(confPath); err == nil {
			options, err = readLockerOptions(confPath)
			break
		}
	}

	// If no options are found, look for the installation path
	// in the environment variable, otherwise use the default one
	if err != nil {
		if os.Getenv("CADLOCK_HOME") != "" {
			installationPath = os.Getenv("CADLOCK_HOME")
		} else {
			installationPath = filepath.Join(configDir, "cadlock")
		}

		options = types.LockerOptions{
			StorePath: filepath.Join(installationPath, "store"),
			LogsPath:  filepath.Join(installationPath, "logs"),
		}
	}

	// Optional fields fall back to their defaults
	if options.PayloadExt == "" {
		options.PayloadExt = ".dwg"
	}
	if options.MonitorIntervalMs <= 0 {
		options.MonitorIntervalMs = 5
	}

	// Create the necessary directories if they don't exist
	err = createLockerDirs(&options)
	if err != nil {
		return
	}

	return
}

// readLockerOptions reads and parses the configuration file at the given
// path. The file must be a valid JSON file.
func readLockerOptions(path string) (options types.LockerOptions, err error) {
	file, err := os.Open(path)
	if err != nil {
		return
	}
	defer file.Close()

	err = json.NewDecoder(file).Decode(&options)
	return
}

// createLockerDirs creates the necessary directories for the locker to
// work.
func createLockerDirs(options *types.LockerOptions) error {
	dirs := []string{
		options.StorePath,
		options.LogsPath,
	}
	if options.TmpPath != "" {
		dirs = append(dirs, options.TmpPath)
	}

	for _, dir := range dirs {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			err = os.MkdirAll(dir, 0755)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// Audit checks the integrity of the local store and repairs it if
// needed. If the repair flag is set to true, the function removes build
// records whose output file is gone from disk. Ledger rows are never
// pruned: a row without a build record belongs to a container built on
// another machine, and dropping it would reset that container's budget.
func (c *Locker) Audit(repair bool) (err error) {
	fmt.Println("Starting cadlock store audit...")
	if repair {
		fmt.Println("Repair mode enabled.")
	}

	store, err := NewStore(c.Options.StorePath)
	if err != nil {
		return fmt.Errorf("audit: failed to open store: %w", err)
	}
	defer store.Close()

	builds, err := store.GetBuilds()
	if err != nil {
		return fmt.Errorf("audit: failed to get builds from DB: %w", err)
	}

	counts, err := store.GetLaunchCounts()
	if err != nil {
		return fmt.Errorf("audit: failed to get launch counts from DB: %w", err)
	}

	// --- 1. Build records vs output files on disk ---
	fmt.Println("\nChecking build outputs...")
	for _, build := range builds {
		fmt.Printf("  Auditing build: %s (Source: %s)\n", build.Id, build.SourcePath)
		if _, statErr := os.Stat(build.OutputPath); os.IsNotExist(statErr) {
			fmt.Printf("    [WARNING] Output %s for build %s not found.\n", build.OutputPath, build.Id)
			if repair {
				fmt.Printf("    Repair: Removing build record %s (ledger row kept).\n", build.Id)
				if removeErr := store.RemoveBuildById(build.Id); removeErr != nil {
					fmt.Printf("      [ERROR] Failed to remove build %s from DB: %v\n", build.Id, removeErr)
				} else {
					fmt.Printf("      Build record %s removed.\n", build.Id)
				}
			}
		}
	}

	// --- 2. Launch ledger vs build records ---
	fmt.Println("\nChecking launch ledger...")
	known := make(map[string]bool)
	for _, build := range builds {
		known[build.Id] = true
	}
	for id, count := range counts {
		if !known[id] {
			fmt.Printf("  [INFO] Ledger row %s (count %d) has no build record, the container was built elsewhere.\n", id, count)
		}
	}

	// --- 3. Budget summary for known builds ---
	fmt.Println("\nChecking launch budgets...")
	for _, build := range builds {
		if build.MaxLaunches == 0 {
			continue
		}
		count := counts[build.Id]
		if count >= build.MaxLaunches {
			fmt.Printf("  [INFO] Build %s has exhausted its launch budget (%d/%d).\n", build.Id, count, build.MaxLaunches)
		}
	}

	// --- 4. Working directories ---
	fmt.Println("\nChecking directories...")
	for _, dir := range []string{c.Options.StorePath, c.Options.LogsPath} {
		if _, statErr := os.Stat(dir); os.IsNotExist(statErr) {
			fmt.Printf("  [ERROR] Directory %s is missing.\n", dir)
			if repair {
				fmt.Printf("    Repair: Recreating %s...\n", dir)
				if mkErr := os.MkdirAll(dir, 0755); mkErr != nil {
					fmt.Printf("      [ERROR] Failed to recreate %s: %v\n", dir, mkErr)
				}
			}
		}
	}

	// --- 5. Stale session files ---
	// A session wipes its temporary drawing on exit, so anything still
	// matching the session pattern was left behind by a crash.
	fmt.Println("\nChecking for stale session files...")
	stale, globErr := filepath.Glob(filepath.Join(c.TmpDir(), "cad-*"))
	if globErr != nil {
		fmt.Printf("  [ERROR] Failed to scan %s: %v\n", c.TmpDir(), globErr)
	}
	for _, path := range stale {
		fmt.Printf("  [WARNING] Stale session file found: %s\n", path)
		if repair {
			fmt.Printf("    Repair: Wiping %s...\n", path)
			if wipeErr := tools.WipeFile(path); wipeErr != nil {
				fmt.Printf("      [ERROR] Failed to wipe %s: %v\n", path, wipeErr)
			}
		}
	}

	fmt.Println("\nAudit finished.")
	return nil
}
