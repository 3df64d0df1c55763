package mesh

import "math"

// DefaultSlices is the number of sides of the instanced cylinder
const DefaultSlices = 8

// Cylinder is a unit cylinder (radius 1, height 1) centered on the origin
// with its axis along +Y, stored as non-indexed triangles. One cylinder is
// shared by every instance batch.
type Cylinder struct {
	Vertices []float32
	Normals  []float32
	Slices   int
}

// UnitCylinder builds a cylinder with the given number of sides
func UnitCylinder(slices int) *Cylinder {
	if slices < 3 {
		slices = DefaultSlices
	}

	c := &Cylinder{Slices: slices}
	vertex := func(x, y, z, nx, ny, nz float64) {
		c.Vertices = append(c.Vertices, float32(x), float32(y), float32(z))
		c.Normals = append(c.Normals, float32(nx), float32(ny), float32(nz))
	}

	const half = 0.5
	for i := 0; i < slices; i++ {
		a0 := 2 * math.Pi * float64(i) / float64(slices)
		a1 := 2 * math.Pi * float64(i+1) / float64(slices)
		x0, z0 := math.Cos(a0), math.Sin(a0)
		x1, z1 := math.Cos(a1), math.Sin(a1)

		// side, counter-clockwise seen from outside
		vertex(x0, -half, z0, x0, 0, z0)
		vertex(x1, half, z1, x1, 0, z1)
		vertex(x1, -half, z1, x1, 0, z1)

		vertex(x0, -half, z0, x0, 0, z0)
		vertex(x0, half, z0, x0, 0, z0)
		vertex(x1, half, z1, x1, 0, z1)

		// top cap
		vertex(0, half, 0, 0, 1, 0)
		vertex(x1, half, z1, 0, 1, 0)
		vertex(x0, half, z0, 0, 1, 0)

		// bottom cap
		vertex(0, -half, 0, 0, -1, 0)
		vertex(x0, -half, z0, 0, -1, 0)
		vertex(x1, -half, z1, 0, -1, 0)
	}
	return c
}

// VertexCount returns the number of vertices
func (c *Cylinder) VertexCount() int {
	return len(c.Vertices) / 3
}

// TriangleCount returns the number of triangles
func (c *Cylinder) TriangleCount() int {
	return c.VertexCount() / 3
}
