// Package session implements the annotation workflow: a model and a photograph are loaded, the
// model is aligned to the photograph by moving a camera, and the resulting camera poses are saved
// as annotations of the photograph.
package session

import (
	"sort"

	"github.com/golang/geo/r3"
	"github.com/samber/lo"

	"go.viam.com/meshpose/annotation"
	"go.viam.com/meshpose/camera"
	"go.viam.com/meshpose/config"
	"go.viam.com/meshpose/logging"
	"go.viam.com/meshpose/mesh"
	"go.viam.com/meshpose/pose"
	"go.viam.com/meshpose/rimage"
	"go.viam.com/meshpose/utils"
)

// Direction is a camera step direction.
type Direction int

// Camera step directions. Up and Down change the elevation, Left and Right the azimuth.
const (
	Up Direction = iota
	Down
	Left
	Right
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return "unknown"
}

// A Session holds the state of one annotation workflow. It is not safe for concurrent use.
type Session struct {
	cfg    *config.Config
	logger logging.Logger

	// live is the camera of the model view. The scene shows the photograph through live unless
	// the overlay is locked, in which case it uses its own copy.
	live   *camera.Camera
	locked *camera.Camera

	mesh      *mesh.Mesh
	meshPath  string
	offset    r3.Vector
	reference r3.Vector

	imagePath string
	extent    rimage.Extent
	hasImage  bool

	metrics    annotation.Set
	saved      []string
	outputPath string

	baseRoll      float64
	lastZoom      float64
	lastElevation float64
	lastAzimuth   float64
}

// New returns a session with nothing loaded.
func New(cfg *config.Config, logger logging.Logger) *Session {
	return &Session{
		cfg:      cfg,
		logger:   logger,
		live:     cfg.NewCamera(),
		lastZoom: 1,
	}
}

// LiveCamera returns the camera of the model view.
func (s *Session) LiveCamera() *camera.Camera {
	return s.live
}

// SceneCamera returns the camera the photograph overlay is rendered with.
func (s *Session) SceneCamera() *camera.Camera {
	if s.locked != nil {
		return s.locked
	}
	return s.live
}

// Locked reports whether the overlay camera is detached from the live camera.
func (s *Session) Locked() bool {
	return s.locked != nil
}

// Mesh returns the loaded mesh as currently placed in the scene, or nil.
func (s *Session) Mesh() *mesh.Mesh {
	if s.mesh == nil {
		return nil
	}
	return s.mesh.Translate(s.offset)
}

// Extent returns the extent of the loaded photograph.
func (s *Session) Extent() rimage.Extent {
	return s.extent
}

// ImagePath returns the path of the loaded photograph.
func (s *Session) ImagePath() string {
	return s.imagePath
}

// LoadMesh loads the model to align. The live camera is reset to frame it. When a photograph is
// already loaded the model's current position becomes the reference its displacement is measured
// from.
func (s *Session) LoadMesh(path string) error {
	m, err := mesh.Load(path, s.logger)
	if err != nil {
		return err
	}
	s.mesh = m
	s.meshPath = path
	s.offset = r3.Vector{}
	s.live.ResetToBounds(m.Bounds())
	if s.hasImage {
		s.reference = s.Mesh().Center()
	}
	s.logger.Infow("mesh loaded", "path", path, "model", utils.Stem(path))
	return nil
}

// LoadImage loads the photograph to annotate. All annotations of the previous photograph are
// dropped, the overlay is released and the metrics output path is derived from the image path.
func (s *Session) LoadImage(path string) error {
	extent, err := rimage.ReadExtent(path)
	if err != nil {
		return err
	}
	s.imagePath = path
	s.extent = extent
	s.hasImage = true

	s.metrics = annotation.NewSet(utils.Stem(path), path)
	s.saved = nil
	s.outputPath = utils.ReplaceExt(path, s.cfg.MetricsExtension)
	s.locked = nil
	if s.mesh != nil {
		s.reference = s.Mesh().Center()
	}
	s.logger.Infow("image loaded", "path", path, "width", extent.Width(), "height", extent.Height())
	return nil
}

func (s *Session) requireImage(action string) error {
	if !s.hasImage {
		return utils.NewPreconditionError("cannot %s: no image loaded", action)
	}
	return nil
}

func (s *Session) requireMesh(action string) error {
	if s.mesh == nil {
		return utils.NewPreconditionError("cannot %s: no mesh loaded", action)
	}
	return nil
}

// LockOverlay detaches the scene camera from the live camera. Its roll becomes the base of
// SetInPlaneRotation.
func (s *Session) LockOverlay() error {
	if err := s.requireImage("lock overlay"); err != nil {
		return err
	}
	s.locked = s.live.Clone()
	s.baseRoll = s.locked.RollAngle()
	s.logger.Debugw("overlay locked", "roll", s.baseRoll)
	return nil
}

// ReleaseOverlay makes the scene follow the live camera again.
func (s *Session) ReleaseOverlay() error {
	if err := s.requireImage("release overlay"); err != nil {
		return err
	}
	s.locked = nil
	s.logger.Debug("overlay released")
	return nil
}

// SetInPlaneRotation rolls the scene camera to the locked base roll plus deg.
func (s *Session) SetInPlaneRotation(deg float64) error {
	if err := s.requireImage("rotate"); err != nil {
		return err
	}
	s.SceneCamera().SetRoll(s.baseRoll + deg)
	return nil
}

// SetZoom zooms the scene camera to z relative to the zoom it was created with.
func (s *Session) SetZoom(z float64) error {
	if err := s.requireImage("zoom"); err != nil {
		return err
	}
	if z <= 0 {
		return utils.NewPreconditionError("zoom must be positive, got %v", z)
	}
	s.SceneCamera().Zoom(z / s.lastZoom)
	s.lastZoom = z
	return nil
}

// SetElevation moves the scene camera to elevation deg relative to where the elevation control
// started.
func (s *Session) SetElevation(deg float64) error {
	if err := s.requireImage("change elevation"); err != nil {
		return err
	}
	c := s.SceneCamera()
	c.Elevation(deg - s.lastElevation)
	c.OrthogonalizeViewUp()
	s.lastElevation = deg
	return nil
}

// SetAzimuth moves the scene camera to azimuth deg relative to where the azimuth control started.
func (s *Session) SetAzimuth(deg float64) error {
	if err := s.requireImage("change azimuth"); err != nil {
		return err
	}
	s.SceneCamera().Azimuth(deg - s.lastAzimuth)
	s.lastAzimuth = deg
	return nil
}

// StepCamera rotates the scene camera by the configured camera step.
func (s *Session) StepCamera(dir Direction) error {
	step := s.cfg.CameraMoveResolution
	switch dir {
	case Up:
		return s.SetElevation(s.lastElevation + step)
	case Down:
		return s.SetElevation(s.lastElevation - step)
	case Left:
		return s.SetAzimuth(s.lastAzimuth - step)
	case Right:
		return s.SetAzimuth(s.lastAzimuth + step)
	}
	return utils.NewPreconditionError("unknown direction %d", int(dir))
}

// MoveModel moves the model in the xy plane by dx and dy steps of the configured model step.
func (s *Session) MoveModel(dx, dy float64) error {
	if err := s.requireImage("move model"); err != nil {
		return err
	}
	if err := s.requireMesh("move model"); err != nil {
		return err
	}
	step := s.cfg.ModelMoveResolution
	s.offset = s.offset.Add(r3.Vector{X: dx * step, Y: dy * step})
	return nil
}

// Displacement is how far the model moved since the photograph (or the model, whichever came
// last) was loaded.
func (s *Session) Displacement() r3.Vector {
	if s.mesh == nil {
		return r3.Vector{}
	}
	return s.Mesh().Center().Sub(s.reference)
}

// SaveAnnotation computes the pose of the scene camera and appends it as an annotation of the
// photograph.
func (s *Session) SaveAnnotation(category string, truncated, occluded bool) (annotation.Annotation, error) {
	if err := s.requireImage("save annotation"); err != nil {
		return annotation.Annotation{}, err
	}
	if err := s.requireMesh("save annotation"); err != nil {
		return annotation.Annotation{}, err
	}
	if category == "" {
		category = s.cfg.DefaultCategory
	}

	p, err := pose.ComputePose(s.SceneCamera().State(), s.Displacement(), s.extent, s.cfg.Viewport)
	if err != nil {
		return annotation.Annotation{}, err
	}
	a := annotation.Annotation{
		ModelName:        utils.Stem(s.meshPath),
		ModelCategory:    category,
		Truncated:        truncated,
		Occluded:         occluded,
		CameraParameters: p,
		ModelPath:        s.meshPath,
	}
	s.metrics = s.metrics.Append(a)
	s.saved = append(s.saved, a.ModelName)
	s.logger.Infow("annotation saved",
		"model", a.ModelName,
		"azimuth", p.Azimuth,
		"elevation", p.Elevation,
		"distance", p.Distance,
		"principal_point", []int{p.PrincipalPoint.X, p.PrincipalPoint.Y})
	return a, nil
}

// SavedModels returns the names of the models saved for the current photograph, sorted and
// without duplicates.
func (s *Session) SavedModels() []string {
	names := lo.Uniq(s.saved)
	sort.Strings(names)
	return names
}

// Metrics returns a copy of the annotations of the current photograph.
func (s *Session) Metrics() annotation.Set {
	return s.metrics.Clone()
}

// OutputPath is where WriteMetrics stores the annotations.
func (s *Session) OutputPath() string {
	return s.outputPath
}

// SetOutputPath changes where WriteMetrics stores the annotations.
func (s *Session) SetOutputPath(path string) {
	s.outputPath = path
}

// WriteMetrics stores the annotations at OutputPath.
func (s *Session) WriteMetrics() error {
	if s.outputPath == "" {
		return utils.NewPreconditionError("no output path: load an image or set one")
	}
	return s.WriteMetricsTo(s.outputPath)
}

// WriteMetricsTo stores the annotations at path.
func (s *Session) WriteMetricsTo(path string) error {
	if err := annotation.WriteFile(path, s.metrics); err != nil {
		return err
	}
	s.logger.Infow("metrics written", "path", path, "annotations", len(s.metrics.Metrics))
	return nil
}

// LoadMetrics replaces the annotations with those stored at path.
func (s *Session) LoadMetrics(path string) error {
	set, err := annotation.ReadFile(path)
	if err != nil {
		return err
	}
	s.metrics = set
	s.saved = lo.Map(set.Metrics, func(a annotation.Annotation, _ int) string { return a.ModelName })
	if s.outputPath == "" {
		s.outputPath = path
	}
	s.logger.Infow("metrics loaded", "path", path, "annotations", len(set.Metrics))
	return nil
}
