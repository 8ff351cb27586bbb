// Package mesh loads the 3D models that are aligned to photographs.
package mesh

import (
	"math"

	"github.com/golang/geo/r3"
)

// A Mesh is a named set of vertices and polygonal faces. Faces index into the vertices.
type Mesh struct {
	name     string
	vertices []r3.Vector
	faces    [][]int
}

// NewMesh returns a mesh over the given vertices and faces. The slices are not copied.
func NewMesh(name string, vertices []r3.Vector, faces [][]int) *Mesh {
	return &Mesh{name: name, vertices: vertices, faces: faces}
}

// Name returns the name of the mesh, usually its file stem.
func (m *Mesh) Name() string {
	return m.name
}

// Vertices returns a copy of the vertices.
func (m *Mesh) Vertices() []r3.Vector {
	return append([]r3.Vector{}, m.vertices...)
}

// Faces returns the faces. They must not be modified.
func (m *Mesh) Faces() [][]int {
	return m.faces
}

// Bounds returns the corners of the axis aligned bounding box. An empty mesh has zero bounds.
func (m *Mesh) Bounds() (r3.Vector, r3.Vector) {
	if len(m.vertices) == 0 {
		return r3.Vector{}, r3.Vector{}
	}
	lo := r3.Vector{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	hi := r3.Vector{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	for _, v := range m.vertices {
		lo = r3.Vector{X: math.Min(lo.X, v.X), Y: math.Min(lo.Y, v.Y), Z: math.Min(lo.Z, v.Z)}
		hi = r3.Vector{X: math.Max(hi.X, v.X), Y: math.Max(hi.Y, v.Y), Z: math.Max(hi.Z, v.Z)}
	}
	return lo, hi
}

// Center is the center of the bounding box. Moving the model is measured against it.
func (m *Mesh) Center() r3.Vector {
	lo, hi := m.Bounds()
	return lo.Add(hi).Mul(0.5)
}

// CenterOfMass is the mean of the vertices.
func (m *Mesh) CenterOfMass() r3.Vector {
	if len(m.vertices) == 0 {
		return r3.Vector{}
	}
	var sum r3.Vector
	for _, v := range m.vertices {
		sum = sum.Add(v)
	}
	return sum.Mul(1 / float64(len(m.vertices)))
}

// Translate returns a copy of the mesh moved by d. Faces are shared.
func (m *Mesh) Translate(d r3.Vector) *Mesh {
	moved := make([]r3.Vector, len(m.vertices))
	for i, v := range m.vertices {
		moved[i] = v.Add(d)
	}
	return &Mesh{name: m.name, vertices: moved, faces: m.faces}
}

const (
	sphereRadius     = 0.5
	sphereResolution = 8
)

// DefaultSphere returns the sphere shown when a model cannot be read: radius 0.5 around the
// origin with 8 subdivisions in longitude and latitude, poles included.
func DefaultSphere() *Mesh {
	const rings = sphereResolution - 2
	deltaPhi := math.Pi / float64(sphereResolution-1)
	deltaTheta := 2 * math.Pi / float64(sphereResolution)

	vertices := []r3.Vector{{Z: sphereRadius}, {Z: -sphereRadius}}
	for i := 0; i < sphereResolution; i++ {
		theta := float64(i) * deltaTheta
		for j := 1; j <= rings; j++ {
			phi := float64(j) * deltaPhi
			vertices = append(vertices, r3.Vector{
				X: sphereRadius * math.Sin(phi) * math.Cos(theta),
				Y: sphereRadius * math.Sin(phi) * math.Sin(theta),
				Z: sphereRadius * math.Cos(phi),
			})
		}
	}

	ring := func(i, j int) int { return 2 + (i%sphereResolution)*rings + j }
	var faces [][]int
	for i := 0; i < sphereResolution; i++ {
		faces = append(faces,
			[]int{0, ring(i, 0), ring(i+1, 0)},
			[]int{1, ring(i+1, rings-1), ring(i, rings-1)})
		for j := 0; j < rings-1; j++ {
			faces = append(faces, []int{ring(i, j), ring(i, j+1), ring(i+1, j+1), ring(i+1, j)})
		}
	}
	return NewMesh("sphere", vertices, faces)
}
