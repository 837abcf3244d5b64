package tools

import (
	"fmt"
	"os"
	"path/filepath"
)

func ResolvePath(path string) string {
	realPath, err := filepath.EvalSymlinks(path)
	if err != nil {
		return path
	}
	return realPath
}

// wipeBlockSize is the unit the overwrite pass works in. It matches the
// block size the historical implementation used.
const wipeBlockSize = 4096

// WipeFile overwrites the file with zeros to its full length, flushes,
// and deletes it. If the overwrite fails for any reason a plain delete
// is attempted anyway, so the file is gone either way; only the delete
// failure is reported.
//
// Note: this defeats casual recovery of the plaintext from the disk, it
// is not a forensic guarantee on journaling or copy-on-write
// filesystems.
func WipeFile(path string) error {
	if err := zeroFill(path); err != nil {
		return os.Remove(path)
	}
	return os.Remove(path)
}

// zeroFill overwrites every byte of the file with zeros in place.
func zeroFill(path string) (err error) {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("zeroFill: %s", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("zeroFill: %s", err)
	}
	defer f.Close()

	zeros := make([]byte, wipeBlockSize)
	remaining := info.Size()
	for remaining > 0 {
		block := int64(len(zeros))
		if remaining < block {
			block = remaining
		}
		if _, err = f.Write(zeros[:block]); err != nil {
			return fmt.Errorf("zeroFill: %s", err)
		}
		remaining -= block
	}

	if err = f.Sync(); err != nil {
		return fmt.Errorf("zeroFill: %s", err)
	}
	return nil
}
