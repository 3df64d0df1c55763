package app

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/philipparndt/gcodeview/pkg/geometry"
	"github.com/philipparndt/gcodeview/pkg/mesh"
)

// instancingVS places each vertex of the shared shape with its per
// instance transform
const instancingVS = `#version 330
in vec3 vertexPosition;
in vec4 vertexColor;
in mat4 instanceTransform;

uniform mat4 mvp;

out vec4 fragColor;

void main() {
    fragColor = vertexColor;
    gl_Position = mvp*instanceTransform*vec4(vertexPosition, 1.0);
}
`

const instancingFS = `#version 330
in vec4 fragColor;

uniform vec4 colDiffuse;

out vec4 finalColor;

void main() {
    finalColor = fragColor*colDiffuse;
}
`

// uploaded is one batch on the GPU side
type uploaded struct {
	lines    *mesh.LineBatch
	vertices []float32
	color    rl.Color

	instances *mesh.InstanceBatch
	matrices  []rl.Matrix
	shape     rl.Mesh
	hasShape  bool
}

// raylibBackend implements mesh.Backend on top of raylib. Line batches
// keep a float32 copy of their vertices that is streamed through one
// rlgl line list per frame. Instance batches upload one colored cylinder
// and draw every transform with a single instanced call.
type raylibBackend struct {
	shader   rl.Shader
	material rl.Material
	batches  map[mesh.Handle]*uploaded
	next     mesh.Handle
}

func newRaylibBackend() *raylibBackend {
	shader := rl.LoadShaderFromMemory(instancingVS, instancingFS)
	shader.UpdateLocation(rl.ShaderLocMatrixMvp, rl.GetShaderLocation(shader, "mvp"))
	shader.UpdateLocation(rl.ShaderLocMatrixModel, rl.GetShaderLocationAttrib(shader, "instanceTransform"))

	material := rl.LoadMaterialDefault()
	material.Shader = shader

	return &raylibBackend{
		shader:   shader,
		material: material,
		batches:  make(map[mesh.Handle]*uploaded),
	}
}

func (b *raylibBackend) add(u *uploaded) mesh.Handle {
	b.next++
	b.batches[b.next] = u
	return b.next
}

func (b *raylibBackend) get(h mesh.Handle) (*uploaded, error) {
	u, ok := b.batches[h]
	if !ok {
		return nil, fmt.Errorf("unknown batch handle %d", h)
	}
	return u, nil
}

// UploadLines implements mesh.Backend
func (b *raylibBackend) UploadLines(batch *mesh.LineBatch) (mesh.Handle, error) {
	u := &uploaded{
		lines:    batch,
		vertices: make([]float32, 0, batch.Capacity*6),
		color:    toColor(batch.Style),
	}
	u.vertices = append(u.vertices, batch.Vertices...)
	return b.add(u), nil
}

// UpdateLines implements mesh.Backend by copying the vertices of the new
// segments
func (b *raylibBackend) UpdateLines(h mesh.Handle, batch *mesh.LineBatch, from int) error {
	u, err := b.get(h)
	if err != nil {
		return err
	}
	u.lines = batch
	u.vertices = append(u.vertices[:from*6], batch.Vertices[from*6:]...)
	return nil
}

// UploadInstances implements mesh.Backend
func (b *raylibBackend) UploadInstances(batch *mesh.InstanceBatch, cylinder *mesh.Cylinder) (mesh.Handle, error) {
	if cylinder == nil || cylinder.VertexCount() == 0 {
		return 0, fmt.Errorf("no instance shape for %s", batch.Mode)
	}
	u := &uploaded{
		instances: batch,
		matrices:  make([]rl.Matrix, 0, batch.Capacity),
		shape:     cylinderToRaylibMesh(cylinder, toColor(batch.Style)),
		hasShape:  true,
	}
	u.matrices = appendMatrices(u.matrices, batch.Transforms)
	return b.add(u), nil
}

// UpdateInstances implements mesh.Backend by converting the transforms of
// the new segments
func (b *raylibBackend) UpdateInstances(h mesh.Handle, batch *mesh.InstanceBatch, from int) error {
	u, err := b.get(h)
	if err != nil {
		return err
	}
	u.instances = batch
	u.matrices = appendMatrices(u.matrices[:from], batch.Transforms[from:])
	return nil
}

func appendMatrices(dst []rl.Matrix, transforms []geometry.Matrix4) []rl.Matrix {
	for _, t := range transforms {
		dst = append(dst, toMatrix(t))
	}
	return dst
}

// Release implements mesh.Backend
func (b *raylibBackend) Release(h mesh.Handle) {
	u, ok := b.batches[h]
	if !ok {
		return
	}
	if u.hasShape {
		rl.UnloadMesh(&u.shape)
	}
	delete(b.batches, h)
}

// Close releases every batch, the material and its shader
func (b *raylibBackend) Close() {
	for h := range b.batches {
		b.Release(h)
	}
	rl.UnloadMaterial(b.material)
}

// draw renders the first DrawCount segments of a batch
func (b *raylibBackend) draw(h mesh.Handle) {
	u, ok := b.batches[h]
	if !ok {
		return
	}

	if u.lines != nil {
		n := min(u.lines.DrawCount*6, len(u.vertices))
		if n == 0 {
			return
		}
		rl.Begin(rl.Lines)
		rl.Color4ub(u.color.R, u.color.G, u.color.B, u.color.A)
		for i := 0; i < n; i += 3 {
			rl.Vertex3f(u.vertices[i], u.vertices[i+1], u.vertices[i+2])
		}
		rl.End()
		return
	}

	n := min(u.instances.DrawCount, len(u.matrices))
	if n == 0 {
		return
	}
	rl.DrawMeshInstanced(u.shape, b.material, u.matrices[:n], n)
}

// cylinderToRaylibMesh uploads the shared cylinder with baked lighting in
// the batch color
func cylinderToRaylibMesh(c *mesh.Cylinder, col rl.Color) rl.Mesh {
	vertexCount := c.VertexCount()
	m := rl.Mesh{
		VertexCount:   int32(vertexCount),
		TriangleCount: int32(c.TriangleCount()),
	}

	vertices := make([]float32, len(c.Vertices))
	normals := make([]float32, len(c.Normals))
	texcoords := make([]float32, vertexCount*2)
	colors := make([]uint8, vertexCount*4)
	copy(vertices, c.Vertices)
	copy(normals, c.Normals)

	// Light direction for baked lighting
	lightDir := geometry.NewVector3(-0.5, -1.0, -0.5).Normalize()

	for i := 0; i < vertexCount; i++ {
		normal := geometry.NewVector3(float64(normals[i*3]), float64(normals[i*3+1]), float64(normals[i*3+2]))
		// Min 40% ambient, max 100% diffuse
		light := math.Max(0.4, -normal.Dot(lightDir))
		colors[i*4+0] = uint8(float64(col.R) * light)
		colors[i*4+1] = uint8(float64(col.G) * light)
		colors[i*4+2] = uint8(float64(col.B) * light)
		colors[i*4+3] = col.A
	}

	if len(vertices) > 0 {
		m.Vertices = &vertices[0]
		m.Normals = &normals[0]
		m.Texcoords = &texcoords[0]
		m.Colors = &colors[0]
	}

	// Upload mesh data to GPU
	rl.UploadMesh(&m, false)
	return m
}

func toVector3(v geometry.Vector3) rl.Vector3 {
	return rl.Vector3{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
}

func toColor(s mesh.Style) rl.Color {
	c := s.RGBA()
	return rl.NewColor(c.R, c.G, c.B, c.A)
}

// toMatrix converts a column-major transform. raylib names its fields by
// column-major index too.
func toMatrix(m geometry.Matrix4) rl.Matrix {
	f := m.Float32()
	return rl.Matrix{
		M0: f[0], M1: f[1], M2: f[2], M3: f[3],
		M4: f[4], M5: f[5], M6: f[6], M7: f[7],
		M8: f[8], M9: f[9], M10: f[10], M11: f[11],
		M12: f[12], M13: f[13], M14: f[14], M15: f[15],
	}
}
