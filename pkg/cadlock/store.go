package cadlock

import (
	"os"
	"path/filepath"
)

// GetInStoreDir returns the path to the given file or subdirectory in
// the store.
//
// Note: this does not check if the path exists, it just returns it.
func (c *Locker) GetInStoreDir(args ...string) string {
	return filepath.Join(c.Options.StorePath, filepath.Join(args...))
}

// GetInStoreDirMkdir returns the path to the given subdirectory in the
// store and creates it if it does not exist.
func (c *Locker) GetInStoreDirMkdir(args ...string) (path string, err error) {
	path = c.GetInStoreDir(args...)
	realPath := path
	if filepath.Ext(path) != "" {
		realPath = filepath.Dir(path)
	}
	err = os.MkdirAll(realPath, 0755)
	return
}

// TmpDir returns the directory payloads are extracted into, falling
// back to the system temporary directory when none is configured.
func (c *Locker) TmpDir() string {
	if c.Options.TmpPath != "" {
		return c.Options.TmpPath
	}
	return os.TempDir()
}
