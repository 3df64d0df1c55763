package app

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/philipparndt/gcodeview/pkg/geometry"
	"github.com/philipparndt/gcodeview/pkg/viewer"
)

const viewAngle = math.Pi/2 - 0.1

// initCamera frames the bounding box in plan view
func (app *App) initCamera(bbox geometry.BoundingBox) {
	app.Camera.orbit = viewer.NewCamera(bbox)
	app.Camera.defaultDist = app.Camera.orbit.Distance
	app.Camera.camera = rl.Camera3D{
		Up:         rl.Vector3{X: 0, Y: 1, Z: 0},
		Fovy:       float32(app.Camera.orbit.FOV * 180 / math.Pi),
		Projection: rl.CameraPerspective,
	}
	app.updateCamera()
}

// refitCamera retargets a reloaded toolpath. The orientation and the
// distance are kept; only the target follows the change of the center.
func (app *App) refitCamera(oldCenter, newCenter geometry.Vector3) {
	orbit := app.Camera.orbit
	orbit.Target = orbit.Target.Add(newCenter.Sub(oldCenter))
	orbit.UpdatePosition()
}

// resetCameraView resets the camera to the default plan view
func (app *App) resetCameraView() {
	orbit := app.Camera.orbit
	orbit.RotationX = 0
	orbit.RotationY = 0
	orbit.Distance = app.Camera.defaultDist
	orbit.Target = app.Toolpath.toolpath.Bounds().Center()
	orbit.UpdatePosition()
}

// setCameraTopView looks down the Z axis at the XY plane
func (app *App) setCameraTopView() {
	app.setView(0, 0)
}

// setCameraFrontView looks from the front (along +Y)
func (app *App) setCameraFrontView() {
	app.setView(-viewAngle, 0)
}

// setCameraLeftView looks from the left (along +X)
func (app *App) setCameraLeftView() {
	app.setView(0, -math.Pi/2)
}

// setCameraRightView looks from the right (along -X)
func (app *App) setCameraRightView() {
	app.setView(0, math.Pi/2)
}

// setCameraIsoView shows the toolpath from the front left
func (app *App) setCameraIsoView() {
	app.setView(-math.Pi/4, -math.Pi/4)
}

func (app *App) setView(angleX, angleY float64) {
	orbit := app.Camera.orbit
	orbit.RotationX = angleX
	orbit.RotationY = angleY
	orbit.Target = app.Toolpath.toolpath.Bounds().Center()
	orbit.UpdatePosition()
}

// updateCamera copies the orbit into the raylib camera
func (app *App) updateCamera() {
	orbit := app.Camera.orbit
	app.Camera.camera.Position = toVector3(orbit.Position)
	app.Camera.camera.Target = toVector3(orbit.Target)
}

// doPan performs camera panning based on mouse delta
func (app *App) doPan(delta rl.Vector2) {
	orbit := app.Camera.orbit
	_, right, up := orbit.Basis()

	// Pan speed based on distance from target
	panSpeed := orbit.Distance * 0.001

	move := right.Mul(-float64(delta.X) * panSpeed).Add(up.Mul(float64(delta.Y) * panSpeed))
	orbit.Target = orbit.Target.Add(move)
	orbit.UpdatePosition()
}

// visible reports whether a batch's bounds intersect the view
func (app *App) visible(frustum viewer.Frustum, bounds geometry.BoundingBox) bool {
	if bounds.IsEmpty() {
		return false
	}
	return frustum.ContainsBox(bounds)
}
