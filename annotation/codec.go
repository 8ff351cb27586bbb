package annotation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/meshpose/pose"
	"go.viam.com/meshpose/utils"
)

const indent = "    "

// Document is the metrics file layout.
type Document struct {
	ImageName string           `json:"image_name"`
	ImagePath string           `json:"image_path"`
	Metrics   []MetricDocument `json:"metrics"`
}

// MetricDocument is the layout of one entry of Document.Metrics.
type MetricDocument struct {
	ModelName        string                   `json:"model_name"`
	ModelCategory    string                   `json:"model_category"`
	Truncated        bool                     `json:"truncated"`
	Occluded         bool                     `json:"occluded"`
	CameraParameters CameraParametersDocument `json:"camera_parameters"`
	ModelPath        string                   `json:"model_path"`
}

// CameraParametersDocument is the layout of a camera pose.
type CameraParametersDocument struct {
	Azimuth                 float64    `json:"azimuth" jsonschema:"description=degrees from the +x axis towards +y"`
	Elevation               float64    `json:"elevation" jsonschema:"description=degrees above the xy plane"`
	Distance                float64    `json:"distance" jsonschema:"minimum=0"`
	InplaneRotation         float64    `json:"inplane_rotation" jsonschema:"description=camera roll in degrees"`
	PrincipalPoint          [2]int     `json:"principal_point" jsonschema:"description=pixel offset from the image center"`
	CameraPosition          [3]float64 `json:"camera_position"`
	CameraFocalPoint        [3]float64 `json:"camera_focal_point"`
	ModelMassCenterPosition [3]float64 `json:"model_mass_center_position"`
}

// PoseDocument converts a camera pose to its file layout.
func PoseDocument(p pose.CameraPose) CameraParametersDocument {
	return CameraParametersDocument{
		Azimuth:                 p.Azimuth,
		Elevation:               p.Elevation,
		Distance:                p.Distance,
		InplaneRotation:         p.InplaneRotation,
		PrincipalPoint:          [2]int{p.PrincipalPoint.X, p.PrincipalPoint.Y},
		CameraPosition:          vecToArray(p.CameraPosition),
		CameraFocalPoint:        vecToArray(p.CameraFocalPoint),
		ModelMassCenterPosition: vecToArray(p.ModelMassCenterPosition),
	}
}

func toDocument(s Set) Document {
	doc := Document{
		ImageName: s.ImageName,
		ImagePath: s.ImagePath,
		Metrics:   make([]MetricDocument, 0, len(s.Metrics)),
	}
	for _, m := range s.Metrics {
		doc.Metrics = append(doc.Metrics, MetricDocument{
			ModelName:        m.ModelName,
			ModelCategory:    m.ModelCategory,
			Truncated:        m.Truncated,
			Occluded:         m.Occluded,
			CameraParameters: PoseDocument(m.CameraParameters),
			ModelPath:        m.ModelPath,
		})
	}
	return doc
}

// Marshal renders the set as indented JSON.
func Marshal(s Set) ([]byte, error) {
	for i, m := range s.Metrics {
		if err := checkFinite(m.CameraParameters); err != nil {
			return nil, errors.Wrapf(err, "metrics[%d]", i)
		}
	}
	return json.MarshalIndent(toDocument(s), "", indent)
}

// MarshalPose renders a single camera pose as indented JSON.
func MarshalPose(p pose.CameraPose) ([]byte, error) {
	if err := checkFinite(p); err != nil {
		return nil, err
	}
	return json.MarshalIndent(PoseDocument(p), "", indent)
}

// Encode writes the set as indented JSON followed by a newline.
func Encode(w io.Writer, s Set) error {
	data, err := Marshal(s)
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// Unmarshal parses a metrics document. Every key of the layout is required; the error for a
// missing or malformed value names its key path, e.g. `metrics[1].camera_parameters.distance`.
// Unknown keys are ignored.
func Unmarshal(data []byte) (Set, error) {
	root, err := object(data, "")
	if err != nil {
		return Set{}, err
	}

	var s Set
	if err := stringField(root, "", "image_name", &s.ImageName); err != nil {
		return Set{}, err
	}
	if err := stringField(root, "", "image_path", &s.ImagePath); err != nil {
		return Set{}, err
	}

	rawMetrics, err := field(root, "", "metrics")
	if err != nil {
		return Set{}, err
	}
	var items []json.RawMessage
	if err := strictUnmarshal(rawMetrics, &items); err != nil {
		return Set{}, utils.NewParseError("metrics", err)
	}
	// An empty array decodes to nil metrics, the same as a new set.
	for i, item := range items {
		m, err := unmarshalMetric(item, fmt.Sprintf("metrics[%d]", i))
		if err != nil {
			return Set{}, err
		}
		s.Metrics = append(s.Metrics, m)
	}
	return s, nil
}

// Decode reads a whole metrics document from r.
func Decode(r io.Reader) (Set, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Set{}, err
	}
	return Unmarshal(data)
}

func unmarshalMetric(data json.RawMessage, path string) (Annotation, error) {
	obj, err := object(data, path)
	if err != nil {
		return Annotation{}, err
	}

	var m Annotation
	if err := stringField(obj, path, "model_name", &m.ModelName); err != nil {
		return Annotation{}, err
	}
	if err := stringField(obj, path, "model_category", &m.ModelCategory); err != nil {
		return Annotation{}, err
	}
	if err := boolField(obj, path, "truncated", &m.Truncated); err != nil {
		return Annotation{}, err
	}
	if err := boolField(obj, path, "occluded", &m.Occluded); err != nil {
		return Annotation{}, err
	}
	rawParams, err := field(obj, path, "camera_parameters")
	if err != nil {
		return Annotation{}, err
	}
	if m.CameraParameters, err = unmarshalPose(rawParams, join(path, "camera_parameters")); err != nil {
		return Annotation{}, err
	}
	if err := stringField(obj, path, "model_path", &m.ModelPath); err != nil {
		return Annotation{}, err
	}
	return m, nil
}

func unmarshalPose(data json.RawMessage, path string) (pose.CameraPose, error) {
	obj, err := object(data, path)
	if err != nil {
		return pose.CameraPose{}, err
	}

	var p pose.CameraPose
	for _, f := range []struct {
		key string
		dst *float64
	}{
		{"azimuth", &p.Azimuth},
		{"elevation", &p.Elevation},
		{"distance", &p.Distance},
		{"inplane_rotation", &p.InplaneRotation},
	} {
		if err := floatField(obj, path, f.key, f.dst); err != nil {
			return pose.CameraPose{}, err
		}
	}

	if p.PrincipalPoint, err = principalPointField(obj, path); err != nil {
		return pose.CameraPose{}, err
	}

	for _, f := range []struct {
		key string
		dst *r3.Vector
	}{
		{"camera_position", &p.CameraPosition},
		{"camera_focal_point", &p.CameraFocalPoint},
		{"model_mass_center_position", &p.ModelMassCenterPosition},
	} {
		if err := vectorField(obj, path, f.key, f.dst); err != nil {
			return pose.CameraPose{}, err
		}
	}
	return p, nil
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func isNull(data json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}

// strictUnmarshal is json.Unmarshal except that null is rejected rather than left as the zero
// value.
func strictUnmarshal(data json.RawMessage, v interface{}) error {
	if isNull(data) {
		return errors.New("value is null")
	}
	return json.Unmarshal(data, v)
}

func object(data []byte, path string) (map[string]json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := strictUnmarshal(data, &obj); err != nil {
		if path == "" {
			return nil, errors.Wrap(utils.ErrParse, err.Error())
		}
		return nil, utils.NewParseError(path, err)
	}
	return obj, nil
}

func field(obj map[string]json.RawMessage, path, key string) (json.RawMessage, error) {
	raw, ok := obj[key]
	if !ok {
		return nil, utils.NewMissingKeyError(join(path, key))
	}
	return raw, nil
}

func decodeField(obj map[string]json.RawMessage, path, key string, dst interface{}) error {
	raw, err := field(obj, path, key)
	if err != nil {
		return err
	}
	if err := strictUnmarshal(raw, dst); err != nil {
		return utils.NewParseError(join(path, key), err)
	}
	return nil
}

func stringField(obj map[string]json.RawMessage, path, key string, dst *string) error {
	return decodeField(obj, path, key, dst)
}

func boolField(obj map[string]json.RawMessage, path, key string, dst *bool) error {
	return decodeField(obj, path, key, dst)
}

func floatField(obj map[string]json.RawMessage, path, key string, dst *float64) error {
	return decodeField(obj, path, key, dst)
}

func numbers(obj map[string]json.RawMessage, path, key string, n int) ([]float64, error) {
	var values []json.RawMessage
	if err := decodeField(obj, path, key, &values); err != nil {
		return nil, err
	}
	if len(values) != n {
		return nil, utils.NewParseError(join(path, key), errors.Errorf("expected %d values, got %d", n, len(values)))
	}
	out := make([]float64, n)
	for i, v := range values {
		if err := strictUnmarshal(v, &out[i]); err != nil {
			return nil, utils.NewParseError(fmt.Sprintf("%s[%d]", join(path, key), i), err)
		}
	}
	return out, nil
}

func vectorField(obj map[string]json.RawMessage, path, key string, dst *r3.Vector) error {
	values, err := numbers(obj, path, key, 3)
	if err != nil {
		return err
	}
	*dst = r3.Vector{X: values[0], Y: values[1], Z: values[2]}
	return nil
}

func principalPointField(obj map[string]json.RawMessage, path string) (image.Point, error) {
	const key = "principal_point"
	values, err := numbers(obj, path, key, 2)
	if err != nil {
		return image.Point{}, err
	}
	for i, v := range values {
		if v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
			return image.Point{}, utils.NewParseError(
				fmt.Sprintf("%s[%d]", join(path, key), i), errors.Errorf("%v is not an integer", v))
		}
	}
	return image.Point{X: int(values[0]), Y: int(values[1])}, nil
}

func vecToArray(v r3.Vector) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func checkFinite(p pose.CameraPose) error {
	if !utils.IsFinite(p.Azimuth, p.Elevation, p.Distance, p.InplaneRotation,
		p.CameraPosition.X, p.CameraPosition.Y, p.CameraPosition.Z,
		p.CameraFocalPoint.X, p.CameraFocalPoint.Y, p.CameraFocalPoint.Z,
		p.ModelMassCenterPosition.X, p.ModelMassCenterPosition.Y, p.ModelMassCenterPosition.Z) {
		return utils.NewPreconditionError("camera pose has non-finite components and cannot be stored as JSON")
	}
	return nil
}
