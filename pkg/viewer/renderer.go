package viewer

import (
	"image/color"
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"github.com/philipparndt/gcodeview/pkg/gcode"
	"github.com/philipparndt/gcodeview/pkg/geometry"
	"github.com/philipparndt/gcodeview/pkg/mesh"
)

// ToolpathRenderer draws a toolpath as projected lines colored by mode.
// Only the first Revealed segments are drawn, which lets a playback
// controller uncover the path step by step.
type ToolpathRenderer struct {
	widget.BaseWidget
	toolpath  *gcode.Toolpath
	camera    *Camera
	styles    mesh.Styles
	revealed  int
	lines     []*canvas.Line
	tool      *canvas.Circle
	dragStart *fyne.Position
	width     float64
	height    float64
	onHover   func(line int)
}

// NewToolpathRenderer creates a renderer showing the whole toolpath
func NewToolpathRenderer(tp *gcode.Toolpath, styles mesh.Styles) *ToolpathRenderer {
	if tp == nil {
		tp = gcode.NewToolpath()
	}
	if styles == nil {
		styles = mesh.DefaultStyles()
	}
	r := &ToolpathRenderer{
		toolpath: tp,
		camera:   NewCamera(tp.Bounds()),
		styles:   styles,
		revealed: tp.Len(),
	}
	r.ExtendBaseWidget(r)
	return r
}

// SetToolpath replaces the toolpath. The camera is refitted but keeps its
// orientation so a reloaded file is seen from the same side.
func (r *ToolpathRenderer) SetToolpath(tp *gcode.Toolpath) {
	if tp == nil {
		tp = gcode.NewToolpath()
	}
	r.toolpath = tp
	r.revealed = tp.Len()
	r.camera.Fit(tp.Bounds())
	r.Render(r.width, r.height)
}

// SetRevealed limits drawing to the first n segments
func (r *ToolpathRenderer) SetRevealed(n int) {
	if n < 0 || n > r.toolpath.Len() {
		n = r.toolpath.Len()
	}
	r.revealed = n
	r.Render(r.width, r.height)
}

// SetOnHover sets the callback reporting the program line under the mouse
func (r *ToolpathRenderer) SetOnHover(callback func(line int)) {
	r.onHover = callback
}

// Camera returns the camera used for projection
func (r *ToolpathRenderer) Camera() *Camera {
	return r.camera
}

// CreateRenderer creates the renderer for the widget
func (r *ToolpathRenderer) CreateRenderer() fyne.WidgetRenderer {
	return &toolpathWidgetRenderer{renderer: r}
}

// Render projects the revealed segments for a viewport size
func (r *ToolpathRenderer) Render(width, height float64) {
	r.width = width
	r.height = height
	r.lines = r.lines[:0]
	r.tool = nil
	if width <= 0 || height <= 0 {
		r.Refresh()
		return
	}

	frustum := NewFrustum(r.camera, width/height)
	for _, mode := range gcode.Modes {
		col := r.styles.Get(mode).RGBA()
		for _, i := range r.toolpath.IndicesByMode(mode) {
			if i >= r.revealed {
				break
			}
			seg := r.toolpath.Segments[i]
			if !frustum.ContainsPoint(seg.Start) && !frustum.ContainsPoint(seg.End) {
				continue
			}

			x1, y1, z1 := r.camera.Project(seg.Start, width, height)
			x2, y2, z2 := r.camera.Project(seg.End, width, height)
			if z1 < r.camera.Near || z2 < r.camera.Near {
				continue
			}

			line := canvas.NewLine(col)
			line.StrokeWidth = 1
			line.Position1 = fyne.NewPos(float32(x1), float32(y1))
			line.Position2 = fyne.NewPos(float32(x2), float32(y2))
			r.lines = append(r.lines, line)
		}
	}

	if r.revealed > 0 {
		r.updateToolMarker(r.toolpath.Segments[r.revealed-1].End)
	}

	r.Refresh()
}

// updateToolMarker places the tool marker at the current position
func (r *ToolpathRenderer) updateToolMarker(point geometry.Vector3) {
	x, y, z := r.camera.Project(point, r.width, r.height)
	if z < r.camera.Near {
		return
	}

	marker := canvas.NewCircle(color.RGBA{255, 255, 255, 255})
	marker.StrokeColor = color.RGBA{255, 0, 0, 255}
	marker.StrokeWidth = 2
	size := float32(8)
	marker.Resize(fyne.NewSize(size, size))
	marker.Move(fyne.NewPos(float32(x)-size/2, float32(y)-size/2))
	r.tool = marker
}

// Dragged handles mouse drag events for rotation
func (r *ToolpathRenderer) Dragged(event *fyne.DragEvent) {
	if r.dragStart != nil {
		deltaX := event.Position.X - r.dragStart.X
		deltaY := event.Position.Y - r.dragStart.Y

		r.camera.Rotate(float64(-deltaY)*0.01, float64(deltaX)*0.01)
		r.Render(r.width, r.height)
	}
	r.dragStart = &event.Position
}

// DragEnd handles the end of a drag event
func (r *ToolpathRenderer) DragEnd() {
	r.dragStart = nil
}

// Scrolled handles scroll events for zooming
func (r *ToolpathRenderer) Scrolled(event *fyne.ScrollEvent) {
	delta := -float64(event.Scrolled.DY) * 0.001
	r.camera.Zoom(delta)
	r.Render(r.width, r.height)
}

// Tapped reports the program line of the revealed segment nearest to the tap
func (r *ToolpathRenderer) Tapped(event *fyne.PointEvent) {
	if r.onHover == nil {
		return
	}
	index, dist := r.nearestSegment(float64(event.Position.X), float64(event.Position.Y))
	if index >= 0 && dist < 10 {
		r.onHover(r.toolpath.LineAt(index))
	}
}

// nearestSegment finds the revealed segment whose projected end is closest
// to screen coordinates
func (r *ToolpathRenderer) nearestSegment(screenX, screenY float64) (int, float64) {
	nearest := -1
	minDist := -1.0
	for i := 0; i < r.revealed; i++ {
		x, y, z := r.camera.Project(r.toolpath.Segments[i].End, r.width, r.height)
		if z < r.camera.Near {
			continue
		}
		dist := (x-screenX)*(x-screenX) + (y-screenY)*(y-screenY)
		if nearest < 0 || dist < minDist {
			nearest, minDist = i, dist
		}
	}
	if nearest < 0 {
		return -1, 0
	}
	return nearest, math.Sqrt(minDist)
}

// toolpathWidgetRenderer implements fyne.WidgetRenderer
type toolpathWidgetRenderer struct {
	renderer *ToolpathRenderer
	objects  []fyne.CanvasObject
}

func (t *toolpathWidgetRenderer) Layout(size fyne.Size) {
	t.renderer.Render(float64(size.Width), float64(size.Height))
}

func (t *toolpathWidgetRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 400)
}

func (t *toolpathWidgetRenderer) Refresh() {
	t.objects = make([]fyne.CanvasObject, 0, len(t.renderer.lines)+1)
	for _, line := range t.renderer.lines {
		t.objects = append(t.objects, line)
	}
	if t.renderer.tool != nil {
		t.objects = append(t.objects, t.renderer.tool)
	}

	canvas.Refresh(t.renderer)
}

func (t *toolpathWidgetRenderer) Objects() []fyne.CanvasObject {
	return t.objects
}

func (t *toolpathWidgetRenderer) Destroy() {}
