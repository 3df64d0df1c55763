// Package stl converts toolpaths to STL tube meshes and reads them back
package stl

import (
	"github.com/philipparndt/gcodeview/pkg/gcode"
	"github.com/philipparndt/gcodeview/pkg/geometry"
	"github.com/philipparndt/gcodeview/pkg/mesh"
)

// Triangle is one facet with its normal
type Triangle struct {
	Normal     geometry.Vector3
	V1, V2, V3 geometry.Vector3
}

// NewTriangle creates a triangle, computing the normal from the winding
// when normal is zero
func NewTriangle(normal, v1, v2, v3 geometry.Vector3) Triangle {
	t := Triangle{Normal: normal, V1: v1, V2: v2, V3: v3}
	if normal.Length() == 0 {
		t.Normal = t.CalculateNormal()
	}
	return t
}

// CalculateNormal returns the unit normal of the counter-clockwise winding
func (t Triangle) CalculateNormal() geometry.Vector3 {
	return t.V2.Sub(t.V1).Cross(t.V3.Sub(t.V1)).Normalize()
}

// Model represents a complete STL model
type Model struct {
	Name      string
	Triangles []Triangle
}

// NewModel creates a new STL model
func NewModel(name string) *Model {
	return &Model{
		Name:      name,
		Triangles: make([]Triangle, 0),
	}
}

// AddTriangle adds a triangle to the model
func (m *Model) AddTriangle(triangle Triangle) {
	m.Triangles = append(m.Triangles, triangle)
}

// TriangleCount returns the number of triangles in the model
func (m *Model) TriangleCount() int {
	return len(m.Triangles)
}

// BoundingBox calculates the bounding box of the entire model
func (m *Model) BoundingBox() geometry.BoundingBox {
	bbox := geometry.NewBoundingBox()
	for _, triangle := range m.Triangles {
		bbox.Extend(triangle.V1)
		bbox.Extend(triangle.V2)
		bbox.Extend(triangle.V3)
	}
	return bbox
}

// ExportOptions selects what FromToolpath turns into tubes
type ExportOptions struct {
	// Radius of every tube, mesh.DefaultRadius when zero
	Radius float64
	// Slices is the number of sides per tube
	Slices int
	// UpTo limits the export to the first UpTo segments; zero or negative
	// exports all
	UpTo int
	// Modes to export; nil exports every mode
	Modes []gcode.Mode
}

// FromToolpath builds a tube around every segment, the same shape the
// instanced renderer draws. Zero-length segments are left out.
func FromToolpath(name string, tp *gcode.Toolpath, opts ExportOptions) *Model {
	if opts.Radius <= 0 {
		opts.Radius = mesh.DefaultRadius
	}
	upTo := opts.UpTo
	if upTo <= 0 || upTo > tp.Len() {
		upTo = tp.Len()
	}
	include := make(map[gcode.Mode]bool, len(gcode.Modes))
	if opts.Modes == nil {
		opts.Modes = gcode.Modes
	}
	for _, m := range opts.Modes {
		include[m] = true
	}

	cylinder := mesh.UnitCylinder(opts.Slices)
	vertex := func(transform geometry.Matrix4, i int) geometry.Vector3 {
		v := cylinder.Vertices[i*3 : i*3+3]
		return transform.MulPoint(geometry.NewVector3(float64(v[0]), float64(v[1]), float64(v[2])))
	}

	model := NewModel(name)
	for i := 0; i < upTo; i++ {
		seg := tp.Segments[i]
		if !include[tp.Modes[i]] || seg.Length() == 0 {
			continue
		}

		transform := mesh.InstanceTransform(seg, opts.Radius)
		for v := 0; v+2 < cylinder.VertexCount(); v += 3 {
			model.AddTriangle(NewTriangle(geometry.Vector3{},
				vertex(transform, v), vertex(transform, v+1), vertex(transform, v+2)))
		}
	}
	return model
}
