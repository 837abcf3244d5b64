package cadlock

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mirkobrombin/cadlock/pkg/codec"
	"github.com/mirkobrombin/cadlock/pkg/logger"
	"github.com/mirkobrombin/cadlock/pkg/tools"
	"github.com/mirkobrombin/cadlock/pkg/types"
	"github.com/schollz/progressbar/v3"
)

// DefaultSuffix is appended to the drawing's base name when no suffix
// is configured, so "bracket.dwg" becomes "bracket_protected.exe".
const DefaultSuffix = "_protected"

// BuildOptions carries the settings for one container build.
type BuildOptions struct {
	// SourcePath is the drawing to protect.
	SourcePath string

	// StubPath is the stub template the container is grafted onto.
	// Empty means the running executable.
	StubPath string

	// OutputDir is where the container is written. Empty means next to
	// the source drawing.
	OutputDir string

	// Suffix is the output name suffix. Empty means DefaultSuffix.
	Suffix string

	// MaxLaunches is the launch budget to embed. Zero means unlimited.
	MaxLaunches uint32

	// Flags is the security flag bitset to embed.
	Flags uint32
}

// OutputPath returns where Build will write the container for these
// options, so callers can check for an existing file before building.
func (o BuildOptions) OutputPath() string {
	suffix := o.Suffix
	if suffix == "" {
		suffix = DefaultSuffix
	}
	outputDir := o.OutputDir
	if outputDir == "" {
		outputDir = filepath.Dir(o.SourcePath)
	}
	base := filepath.Base(o.SourcePath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outputDir, base+suffix+".exe")
}

// Build assembles a protected container: stub template, then the
// drawing encrypted with the shared key, then the footer. The output is
// written to a temporary file in the destination directory and renamed
// into place, so a failed build never leaves a truncated container
// behind. Successful builds are recorded in the store.
func (c *Locker) Build(opts BuildOptions) (build types.Build, err error) {
	if opts.Suffix == "" {
		opts.Suffix = DefaultSuffix
	}

	stubPath := opts.StubPath
	if stubPath == "" {
		stubPath = c.Options.StubPath
	}
	if stubPath == "" {
		stubPath, err = os.Executable()
		if err != nil {
			return build, fmt.Errorf("Build: cannot locate the stub template: %w", err)
		}
	}
	stubPath = tools.ResolvePath(stubPath)

	if IsContainer(stubPath) {
		logger.Warnf("stub template %s already carries a container footer, the new footer will shadow it", stubPath)
	}

	payload, err := os.ReadFile(opts.SourcePath)
	if err != nil {
		return build, fmt.Errorf("Build: %w", err)
	}

	stub, err := os.ReadFile(stubPath)
	if err != nil {
		return build, fmt.Errorf("Build: %w", err)
	}

	outputPath := opts.OutputPath()

	id := uuid.New()
	footer := codec.Footer{
		PayloadSize:   uint64(len(payload)),
		MaxLaunches:   opts.MaxLaunches,
		BuildId:       [16]byte(id),
		SecurityFlags: opts.Flags,
		Version:       codec.Version,
	}

	encrypted := append([]byte(nil), payload...)
	codec.Apply(encrypted, []byte(codec.DefaultKey))

	err = writeContainer(outputPath, stub, encrypted, footer)
	if err != nil {
		return build, fmt.Errorf("Build: %w", err)
	}

	build = types.Build{
		Id:            footer.BuildIdHex(),
		SourcePath:    opts.SourcePath,
		OutputPath:    outputPath,
		Suffix:        opts.Suffix,
		PayloadSize:   footer.PayloadSize,
		MaxLaunches:   opts.MaxLaunches,
		SecurityFlags: opts.Flags,
		Timestamp:     time.Now(),
	}

	// A store failure does not undo the build, the container on disk is
	// already good. The record only feeds list and audit.
	store, storeErr := NewStore(c.Options.StorePath)
	if storeErr != nil {
		logger.Warnf("build %s is not recorded: %s", build.Id, storeErr)
		return build, nil
	}
	defer store.Close()
	if storeErr = store.NewBuild(build); storeErr != nil {
		logger.Warnf("build %s is not recorded: %s", build.Id, storeErr)
	}

	return build, nil
}

// writeContainer writes stub, payload and footer to a temporary file in
// the target directory, syncs it and renames it over the final path.
func writeContainer(outputPath string, stub, encrypted []byte, footer codec.Footer) (err error) {
	dir := filepath.Dir(outputPath)
	tmp, err := os.CreateTemp(dir, ".cadlock-build-*")
	if err != nil {
		return
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	total := int64(len(stub) + len(encrypted) + codec.FooterSize)
	bar := progressbar.NewOptions64(total,
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "━",
			SaucerHead:    "╸",
			SaucerPadding: " ",
			BarStart:      "",
			BarEnd:        "",
		}),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetDescription(fmt.Sprintf("Building %s", filepath.Base(outputPath))),
		progressbar.OptionOnCompletion(func() { fmt.Fprint(os.Stderr, "\n") }),
	)

	w := io.MultiWriter(tmp, bar)
	for _, chunk := range [][]byte{stub, encrypted, footer.Bytes()} {
		if _, err = io.Copy(w, bytes.NewReader(chunk)); err != nil {
			return
		}
	}

	if err = tmp.Sync(); err != nil {
		return
	}
	if err = tmp.Close(); err != nil {
		return
	}

	if err = os.Chmod(tmpPath, 0755); err != nil {
		return
	}
	if err = os.Rename(tmpPath, outputPath); err != nil {
		return
	}

	return nil
}
