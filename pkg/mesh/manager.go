package mesh

import (
	"fmt"

	"github.com/philipparndt/gcodeview/pkg/gcode"
	"github.com/philipparndt/gcodeview/pkg/geometry"
)

// Handle identifies a batch uploaded to a backend
type Handle uint32

// Backend owns the GPU side of the batches. The update methods receive
// the index of the first segment that changed; everything before it is
// already uploaded.
type Backend interface {
	UploadLines(batch *LineBatch) (Handle, error)
	UpdateLines(h Handle, batch *LineBatch, from int) error
	UploadInstances(batch *InstanceBatch, cylinder *Cylinder) (Handle, error)
	UpdateInstances(h Handle, batch *InstanceBatch, from int) error
	Release(h Handle)
}

// Kind selects how segments are drawn
type Kind int

const (
	// KindLines draws one line list per mode
	KindLines Kind = iota
	// KindInstanced draws one instanced cylinder batch per mode
	KindInstanced
)

// ParseKind maps "lines" and "instanced" to a Kind
func ParseKind(s string) (Kind, error) {
	switch s {
	case "", "lines":
		return KindLines, nil
	case "instanced", "tubes":
		return KindInstanced, nil
	}
	return KindLines, fmt.Errorf("unknown render mode %q", s)
}

func (k Kind) String() string {
	if k == KindInstanced {
		return "instanced"
	}
	return "lines"
}

// Options configures a Manager
type Options struct {
	Styles Styles
	// Radius is the tube radius for KindInstanced
	Radius float64
	// Slices is the number of sides of the shared cylinder
	Slices int
}

// Manager keeps one batch per mode uploaded to a backend
type Manager struct {
	backend  Backend
	kind     Kind
	opts     Options
	cylinder *Cylinder

	lines     map[gcode.Mode]*LineBatch
	instances map[gcode.Mode]*InstanceBatch
	handles   map[gcode.Mode]Handle
}

// NewManager creates a manager drawing with the given kind
func NewManager(backend Backend, kind Kind, opts Options) *Manager {
	if opts.Styles == nil {
		opts.Styles = DefaultStyles()
	}
	if opts.Radius <= 0 {
		opts.Radius = DefaultRadius
	}

	m := &Manager{
		backend:   backend,
		kind:      kind,
		opts:      opts,
		lines:     make(map[gcode.Mode]*LineBatch),
		instances: make(map[gcode.Mode]*InstanceBatch),
		handles:   make(map[gcode.Mode]Handle),
	}
	if kind == KindInstanced {
		m.cylinder = UnitCylinder(opts.Slices)
	}
	return m
}

// Kind returns the drawing kind
func (m *Manager) Kind() Kind {
	return m.kind
}

// Cylinder returns the shared instance shape, nil for KindLines
func (m *Manager) Cylinder() *Cylinder {
	return m.cylinder
}

// Build releases every batch and uploads fresh ones for tp
func (m *Manager) Build(tp *gcode.Toolpath) error {
	m.Dispose()
	for _, mode := range gcode.Modes {
		if err := m.rebuild(tp, mode, 0); err != nil {
			return err
		}
	}
	return nil
}

// Sync brings the batches up to date with a toolpath that has grown since
// the last Build or Sync. Batches are appended to in place while they have
// room, so only the new segments reach the backend, and are recreated with
// twice the needed capacity otherwise.
func (m *Manager) Sync(tp *gcode.Toolpath) error {
	for _, mode := range gcode.Modes {
		count := len(tp.IndicesByMode(mode))

		var err error
		if m.kind == KindInstanced {
			err = m.syncInstances(tp, mode, count)
		} else {
			err = m.syncLines(tp, mode, count)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) syncLines(tp *gcode.Toolpath, mode gcode.Mode, count int) error {
	batch := m.lines[mode]
	if batch == nil {
		return m.rebuild(tp, mode, 0)
	}
	from := batch.SegmentCount()
	if from == count {
		return nil
	}
	if !batch.Update(tp) {
		return m.rebuild(tp, mode, 2*count)
	}
	if count < from {
		from = 0
	}
	if err := m.backend.UpdateLines(m.handles[mode], batch, from); err != nil {
		return fmt.Errorf("failed to update %s lines: %w", mode, err)
	}
	return nil
}

func (m *Manager) syncInstances(tp *gcode.Toolpath, mode gcode.Mode, count int) error {
	batch := m.instances[mode]
	if batch == nil {
		return m.rebuild(tp, mode, 0)
	}
	from := batch.Count
	if from == count {
		return nil
	}
	if !batch.Update(tp) {
		return m.rebuild(tp, mode, 2*count)
	}
	if count < from {
		from = 0
	}
	if err := m.backend.UpdateInstances(m.handles[mode], batch, from); err != nil {
		return fmt.Errorf("failed to update %s instances: %w", mode, err)
	}
	return nil
}

// rebuild replaces the batch of one mode
func (m *Manager) rebuild(tp *gcode.Toolpath, mode gcode.Mode, capacity int) error {
	m.release(mode)
	style := m.opts.Styles.Get(mode)

	if m.kind == KindInstanced {
		batch := buildInstances(tp, mode, m.opts.Radius, style, capacity)
		if batch == nil {
			return nil
		}
		h, err := m.backend.UploadInstances(batch, m.cylinder)
		if err != nil {
			return fmt.Errorf("failed to upload %s instances: %w", mode, err)
		}
		m.instances[mode] = batch
		m.handles[mode] = h
		return nil
	}

	batch := buildLines(tp, mode, style, capacity)
	if batch == nil {
		return nil
	}
	h, err := m.backend.UploadLines(batch)
	if err != nil {
		return fmt.Errorf("failed to upload %s lines: %w", mode, err)
	}
	m.lines[mode] = batch
	m.handles[mode] = h
	return nil
}

func (m *Manager) release(mode gcode.Mode) {
	if h, ok := m.handles[mode]; ok {
		m.backend.Release(h)
		delete(m.handles, mode)
	}
	delete(m.lines, mode)
	delete(m.instances, mode)
}

// SetDrawCounts limits each mode to its first counts[mode] segments.
// Modes missing from counts draw nothing.
func (m *Manager) SetDrawCounts(counts gcode.Counts) {
	for mode, batch := range m.lines {
		batch.DrawCount = clamp(counts[mode], batch.SegmentCount())
	}
	for mode, batch := range m.instances {
		batch.DrawCount = clamp(counts[mode], batch.Count)
	}
}

// ShowAll draws every segment
func (m *Manager) ShowAll() {
	for _, batch := range m.lines {
		batch.DrawCount = batch.SegmentCount()
	}
	for _, batch := range m.instances {
		batch.DrawCount = batch.Count
	}
}

func clamp(n, limit int) int {
	if n < 0 {
		return 0
	}
	if n > limit {
		return limit
	}
	return n
}

// Lines returns the line batch of a mode, or nil
func (m *Manager) Lines(mode gcode.Mode) *LineBatch {
	return m.lines[mode]
}

// Instances returns the instance batch of a mode, or nil
func (m *Manager) Instances(mode gcode.Mode) *InstanceBatch {
	return m.instances[mode]
}

// Handle returns the backend handle of a mode's batch
func (m *Manager) Handle(mode gcode.Mode) (Handle, bool) {
	h, ok := m.handles[mode]
	return h, ok
}

// Bounds returns the union of every batch's bounds
func (m *Manager) Bounds() geometry.BoundingBox {
	bounds := geometry.NewBoundingBox()
	for _, batch := range m.lines {
		bounds.Union(batch.Bounds)
	}
	for _, batch := range m.instances {
		bounds.Union(batch.Bounds)
	}
	return bounds
}

// Dispose releases every uploaded batch. The manager can be built again
// afterwards.
func (m *Manager) Dispose() {
	for _, mode := range gcode.Modes {
		m.release(mode)
	}
}
