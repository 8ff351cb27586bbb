package mesh

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/chenzhekl/goply"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	goutils "go.viam.com/utils"

	"go.viam.com/meshpose/logging"
	"go.viam.com/meshpose/utils"
)

// Load reads the mesh at path. PLY files are parsed; any other file is replaced by
// DefaultSphere with a warning.
func Load(path string, logger logging.Logger) (*Mesh, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".ply" {
		logger.Warnw("unsupported mesh format, showing the default sphere", "path", path, "extension", ext)
		return DefaultSphere(), nil
	}

	//nolint:gosec
	f, err := os.Open(path)
	if err != nil {
		return nil, utils.NewIOError("open", path, err)
	}
	defer goutils.UncheckedErrorFunc(f.Close)

	m, err := ReadPLY(f, utils.Stem(path))
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read mesh %q", path)
	}
	logger.Debugw("mesh loaded", "path", path, "vertices", len(m.vertices), "faces", len(m.faces))
	return m, nil
}

// ReadPLY parses an ASCII PLY stream. Binary PLY is reported as a parse error. Vertices need
// x, y and z properties; faces are read from a vertex_indices (or vertex_index) list when present.
func ReadPLY(r io.Reader, name string) (m *Mesh, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			m = nil
			err = errors.Wrapf(utils.ErrParse, "malformed PLY data: %v", rec)
		}
	}()

	// goply reports malformed and non-ASCII input by panicking.
	ply := goply.New(r)

	elements := ply.Elements("vertex")
	if len(elements) == 0 {
		return nil, utils.NewMissingKeyError("vertex")
	}
	vertices := make([]r3.Vector, 0, len(elements))
	for i, el := range elements {
		var coords [3]float64
		for axis, key := range []string{"x", "y", "z"} {
			raw, ok := el[key]
			if !ok {
				return nil, utils.NewMissingKeyError(fmt.Sprintf("vertex[%d].%s", i, key))
			}
			if coords[axis], err = cast.ToFloat64E(raw); err != nil {
				return nil, utils.NewParseError(fmt.Sprintf("vertex[%d].%s", i, key), err)
			}
		}
		vertices = append(vertices, r3.Vector{X: coords[0], Y: coords[1], Z: coords[2]})
	}

	var faces [][]int
	for i, el := range ply.Elements("face") {
		raw, ok := el["vertex_indices"]
		if !ok {
			raw, ok = el["vertex_index"]
		}
		if !ok {
			return nil, utils.NewMissingKeyError(fmt.Sprintf("face[%d].vertex_indices", i))
		}
		face, err := indices(raw, len(vertices))
		if err != nil {
			return nil, utils.NewParseError(fmt.Sprintf("face[%d].vertex_indices", i), err)
		}
		faces = append(faces, face)
	}
	return NewMesh(name, vertices, faces), nil
}

func indices(raw interface{}, numVertices int) ([]int, error) {
	list := reflect.ValueOf(raw)
	if list.Kind() != reflect.Slice && list.Kind() != reflect.Array {
		return nil, errors.Errorf("expected a list, got %T", raw)
	}
	out := make([]int, list.Len())
	for i := range out {
		idx, err := cast.ToIntE(list.Index(i).Interface())
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= numVertices {
			return nil, errors.Errorf("index %d out of range [0, %d)", idx, numVertices)
		}
		out[i] = idx
	}
	return out, nil
}
