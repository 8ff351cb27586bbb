// Package annotation contains the per-image annotation records and their metrics file format.
package annotation

import (
	"fmt"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"

	"go.viam.com/meshpose/pose"
)

// An Annotation records one model aligned to an image.
type Annotation struct {
	ModelName        string
	ModelCategory    string
	Truncated        bool
	Occluded         bool
	CameraParameters pose.CameraPose
	ModelPath        string
}

// A Set holds every annotation made against one source image, in the order they were saved.
type Set struct {
	ImageName string
	ImagePath string
	Metrics   []Annotation
}

// NewSet returns an empty set for the given image.
func NewSet(imageName, imagePath string) Set {
	return Set{ImageName: imageName, ImagePath: imagePath}
}

// Append returns the set with a appended. The receiver's metrics are never shared with the
// result.
func (s Set) Append(a Annotation) Set {
	metrics := make([]Annotation, 0, len(s.Metrics)+1)
	metrics = append(metrics, s.Metrics...)
	s.Metrics = append(metrics, a)
	return s
}

// Clone returns a copy of the set that does not share its metrics.
func (s Set) Clone() Set {
	if s.Metrics != nil {
		s.Metrics = append([]Annotation{}, s.Metrics...)
	}
	return s
}

// ModelNames returns the distinct model names of the set, sorted.
func (s Set) ModelNames() []string {
	names := lo.Uniq(lo.Map(s.Metrics, func(m Annotation, _ int) string { return m.ModelName }))
	sort.Strings(names)
	return names
}

// String renders the set as a table.
func (s Set) String() string {
	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("%s (%s)", s.ImageName, s.ImagePath))
	t.AppendHeader(table.Row{
		"#", "Model", "Category", "Truncated", "Occluded",
		"Azimuth", "Elevation", "Distance", "Rotation", "Principal Point",
	})
	for i, m := range s.Metrics {
		p := m.CameraParameters
		t.AppendRow([]interface{}{
			fmt.Sprintf("%d", i+1),
			m.ModelName,
			m.ModelCategory,
			m.Truncated,
			m.Occluded,
			fmt.Sprintf("%.2f", p.Azimuth),
			fmt.Sprintf("%.2f", p.Elevation),
			fmt.Sprintf("%.3f", p.Distance),
			fmt.Sprintf("%.2f", p.InplaneRotation),
			fmt.Sprintf("(%d, %d)", p.PrincipalPoint.X, p.PrincipalPoint.Y),
		})
	}
	return t.Render()
}
