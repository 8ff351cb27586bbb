package annotation

import (
	"io"
	"os"

	goutils "go.viam.com/utils"

	"go.viam.com/meshpose/utils"
)

// WriteFile stores the set at path. The file is replaced atomically: on failure any previous
// content of path is left as it was.
func WriteFile(path string, s Set) error {
	data, err := Marshal(s)
	if err != nil {
		return err
	}
	return utils.AtomicWriteFile(path, 0o644, func(w io.Writer) error {
		_, err := w.Write(append(data, '\n'))
		return err
	})
}

// ReadFile loads the set stored at path.
func ReadFile(path string) (Set, error) {
	//nolint:gosec
	f, err := os.Open(path)
	if err != nil {
		return Set{}, utils.NewIOError("open", path, err)
	}
	defer goutils.UncheckedErrorFunc(f.Close)

	data, err := io.ReadAll(f)
	if err != nil {
		return Set{}, utils.NewIOError("read", path, err)
	}
	return Unmarshal(data)
}
