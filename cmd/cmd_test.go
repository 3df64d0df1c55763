package cmd

import (
	"bytes"
	"encoding/json"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const program = `; square with a rounded corner
G0 X0 Y0 Z5
G1 Z-1
G1 X10
G3 X20 Y10 R10
G1 Y20
G0 Z5
`

func writeProgram(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "part.nc")
	require.NoError(t, os.WriteFile(path, []byte(program), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	configPath = ""
	parseChunkSize, parseJSON = 0, false
	validateChunkSize = 0
	infoTop, infoLine, infoNear = 0, 0, nil
	exportOutput, exportASCII, exportRadius, exportModes, exportUpTo = "", false, 0, nil, 0

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestInfo(t *testing.T) {
	out, err := run(t, "info", writeProgram(t), "--longest", "1")
	require.NoError(t, err)

	assert.Contains(t, out, "Lines: 7")
	assert.Contains(t, out, "Skipped lines: 1")
	assert.Contains(t, out, "G3: 32")
	assert.Contains(t, out, "Longest segments:")
}

func TestInfo_LineAndNear(t *testing.T) {
	out, err := run(t, "info", writeProgram(t), "--line", "5", "--near", "20,20,-1")
	require.NoError(t, err)

	assert.Contains(t, out, "Line 5: 32 segments")
	assert.Contains(t, out, "Nearest segment: #35 line 6 G1")
}

func TestInfo_NearNeedsThreeValues(t *testing.T) {
	_, err := run(t, "info", writeProgram(t), "--near", "1,2")
	assert.Error(t, err)
}

func TestParse(t *testing.T) {
	out, err := run(t, "parse", writeProgram(t), "--chunk-size", "3")
	require.NoError(t, err)

	assert.Contains(t, out, "chunk 0: lines 1-3")
	assert.Contains(t, out, "chunk 2: lines 7-7")
	assert.Contains(t, out, "7 lines, 3 chunks, 37 segments")
}

func TestParse_JSON(t *testing.T) {
	out, err := run(t, "parse", writeProgram(t), "--json", "--chunk-size", "4")
	require.NoError(t, err)

	var doc struct {
		LineCount  int            `json:"lineCount"`
		ChunkCount int            `json:"chunkCount"`
		Counts     map[string]int `json:"counts"`
		Chunks     []struct {
			ChunkIndex int   `json:"chunkIndex"`
			LineMap    []int `json:"lineMap"`
		} `json:"chunks"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))

	assert.Equal(t, 7, doc.LineCount)
	assert.Equal(t, 2, doc.ChunkCount)
	assert.Equal(t, 32, doc.Counts["G3"])
	require.Len(t, doc.Chunks, 2)
	assert.Equal(t, 1, doc.Chunks[1].ChunkIndex)
	assert.Equal(t, 4, doc.Chunks[1].LineMap[0])
}

func TestValidate(t *testing.T) {
	out, err := run(t, "validate", writeProgram(t), "--chunk-size", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "OK: 4 chunks, 37 segments")
}

func TestRender(t *testing.T) {
	output := filepath.Join(t.TempDir(), "out.png")
	out, err := run(t, "render", writeProgram(t), "-o", output, "--width", "120", "--height", "90", "--upto", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Rendered 3 of 37 segments")

	f, err := os.Open(output)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 120, img.Bounds().Dx())
	assert.Equal(t, 90, img.Bounds().Dy())
}

func TestExport(t *testing.T) {
	output := filepath.Join(t.TempDir(), "part.stl")
	out, err := run(t, "export", writeProgram(t), "-o", output, "--modes", "g1,G3")
	require.NoError(t, err)

	// 35 cutting segments with 8 sided tubes
	assert.Contains(t, out, "Exported 1120 triangles")

	info, err := os.Stat(output)
	require.NoError(t, err)
	assert.Equal(t, int64(84+1120*50), info.Size())
}

func TestExport_BadMode(t *testing.T) {
	_, err := run(t, "export", writeProgram(t), "--modes", "G7")
	assert.Error(t, err)
}

func TestMissingFile(t *testing.T) {
	_, err := run(t, "info", filepath.Join(t.TempDir(), "missing.nc"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestBadConfig(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "viewer.ini")
	require.NoError(t, os.WriteFile(cfg, []byte("x"), 0o644))

	_, err := run(t, "info", writeProgram(t), "--config", cfg)
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "gcodeview dev\n", out)
}
