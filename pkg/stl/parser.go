package stl

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/philipparndt/gcodeview/pkg/geometry"
)

const (
	headerSize = 80
	facetSize  = 50
)

// Parse reads an STL file and returns a Model
func Parse(filename string) (*Model, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return Read(bytes.NewReader(data))
}

// Read decodes ASCII or binary STL. A binary file whose facet count
// matches its size is binary even when its header starts with "solid".
func Read(r io.Reader) (*Model, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read STL: %w", err)
	}

	if len(data) >= headerSize+4 {
		count := binary.LittleEndian.Uint32(data[headerSize:])
		if int64(len(data)) == headerSize+4+int64(count)*facetSize {
			return parseBinary(bytes.NewReader(data))
		}
	}
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("solid")) {
		return parseASCII(bytes.NewReader(data))
	}
	return parseBinary(bytes.NewReader(data))
}

// parseASCII parses an ASCII STL file
func parseASCII(reader io.Reader) (*Model, error) {
	scanner := bufio.NewScanner(reader)
	model := NewModel("")

	var currentNormal geometry.Vector3
	var vertices []geometry.Vector3

	vector := func(fields []string) (geometry.Vector3, error) {
		var xyz [3]float64
		for i := range xyz {
			v, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				return geometry.Vector3{}, err
			}
			xyz[i] = v
		}
		return geometry.NewVector3(xyz[0], xyz[1], xyz[2]), nil
	}

	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "solid":
			if len(fields) > 1 {
				model.Name = strings.Join(fields[1:], " ")
			}

		case "facet":
			if len(fields) >= 5 && fields[1] == "normal" {
				n, err := vector(fields[2:5])
				if err != nil {
					return nil, fmt.Errorf("invalid normal on line %d: %w", line, err)
				}
				currentNormal = n
			}

		case "vertex":
			if len(fields) < 4 {
				return nil, fmt.Errorf("incomplete vertex on line %d", line)
			}
			v, err := vector(fields[1:4])
			if err != nil {
				return nil, fmt.Errorf("invalid vertex on line %d: %w", line, err)
			}
			vertices = append(vertices, v)

		case "endfacet":
			if len(vertices) != 3 {
				return nil, fmt.Errorf("facet ending on line %d has %d vertices", line, len(vertices))
			}
			model.AddTriangle(NewTriangle(currentNormal, vertices[0], vertices[1], vertices[2]))
			vertices = vertices[:0]
			currentNormal = geometry.Vector3{}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading ASCII STL: %w", err)
	}
	return model, nil
}

// facet is the binary layout of one triangle
type facet struct {
	Normal     [3]float32
	V1, V2, V3 [3]float32
	Attributes uint16
}

// parseBinary parses a binary STL file
func parseBinary(reader io.Reader) (*Model, error) {
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(reader, header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var triangleCount uint32
	if err := binary.Read(reader, binary.LittleEndian, &triangleCount); err != nil {
		return nil, fmt.Errorf("failed to read triangle count: %w", err)
	}

	model := NewModel(string(bytes.TrimRight(header, "\x00 ")))
	model.Triangles = make([]Triangle, 0, triangleCount)
	for i := uint32(0); i < triangleCount; i++ {
		var f facet
		if err := binary.Read(reader, binary.LittleEndian, &f); err != nil {
			return nil, fmt.Errorf("failed to read triangle %d: %w", i, err)
		}
		model.AddTriangle(Triangle{
			Normal: fromFloat32(f.Normal),
			V1:     fromFloat32(f.V1),
			V2:     fromFloat32(f.V2),
			V3:     fromFloat32(f.V3),
		})
	}
	return model, nil
}

func fromFloat32(v [3]float32) geometry.Vector3 {
	return geometry.NewVector3(float64(v[0]), float64(v[1]), float64(v[2]))
}

func toFloat32(v geometry.Vector3) [3]float32 {
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}
