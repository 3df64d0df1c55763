package stl

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/philipparndt/gcodeview/pkg/geometry"
)

// WriteBinary encodes the model as binary STL
func (m *Model) WriteBinary(w io.Writer) error {
	bw := bufio.NewWriter(w)

	header := make([]byte, headerSize)
	copy(header, m.Name)
	if _, err := bw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(m.Triangles))); err != nil {
		return fmt.Errorf("failed to write triangle count: %w", err)
	}
	for i, t := range m.Triangles {
		f := facet{
			Normal: toFloat32(t.Normal),
			V1:     toFloat32(t.V1),
			V2:     toFloat32(t.V2),
			V3:     toFloat32(t.V3),
		}
		if err := binary.Write(bw, binary.LittleEndian, &f); err != nil {
			return fmt.Errorf("failed to write triangle %d: %w", i, err)
		}
	}
	return bw.Flush()
}

// WriteASCII encodes the model as ASCII STL
func (m *Model) WriteASCII(w io.Writer) error {
	bw := bufio.NewWriter(w)
	name := strings.ReplaceAll(m.Name, "\n", " ")

	fmt.Fprintf(bw, "solid %s\n", name)
	for _, t := range m.Triangles {
		fmt.Fprintf(bw, "  facet normal %g %g %g\n", t.Normal.X, t.Normal.Y, t.Normal.Z)
		fmt.Fprintln(bw, "    outer loop")
		for _, v := range []geometry.Vector3{t.V1, t.V2, t.V3} {
			fmt.Fprintf(bw, "      vertex %g %g %g\n", v.X, v.Y, v.Z)
		}
		fmt.Fprintln(bw, "    endloop")
		fmt.Fprintln(bw, "  endfacet")
	}
	fmt.Fprintf(bw, "endsolid %s\n", name)
	return bw.Flush()
}

// Save writes the model to filename, as ASCII when ascii is set
func (m *Model) Save(filename string, ascii bool) error {
	if m.Name == "" {
		m.Name = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	}

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filename, err)
	}
	defer f.Close()

	if ascii {
		err = m.WriteASCII(f)
	} else {
		err = m.WriteBinary(f)
	}
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return f.Close()
}
