package utils

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
	"go.viam.com/utils"
)

// Stem returns the file name of path without its directory and final extension.
// "/data/imgs/cat.01.png" becomes "cat.01".
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ReplaceExt returns path with its final extension replaced by ext. ext should include the
// leading dot. A path without an extension gets ext appended.
func ReplaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// AtomicWriteFile writes the content produced by write to a temporary file next to path and
// renames it into place. On any failure the destination is left untouched and the temporary
// file is removed. Failures are returned as *IOError.
func AtomicWriteFile(path string, perm os.FileMode, write func(w io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return NewIOError("create", path, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			utils.UncheckedErrorFunc(func() error { return os.Remove(tmpName) })
		}
	}()

	if err := write(tmp); err != nil {
		return multierr.Combine(NewIOError("write", path, err), tmp.Close())
	}
	if err := tmp.Sync(); err != nil {
		return multierr.Combine(NewIOError("sync", path, err), tmp.Close())
	}
	if err := tmp.Close(); err != nil {
		return NewIOError("close", path, err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return NewIOError("chmod", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return NewIOError("rename", path, err)
	}
	return nil
}
