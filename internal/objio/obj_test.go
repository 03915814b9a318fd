package objio

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/Faultbox/meshrefine/internal/config"
	"github.com/Faultbox/meshrefine/internal/pipeline"
	"github.com/Faultbox/meshrefine/pkg/math"
)

const cubeOBJ = `
# Cube
o Box
v -0.5 -0.5 -0.5
v  0.5 -0.5 -0.5
v  0.5  0.5 -0.5
v -0.5  0.5 -0.5
v -0.5 -0.5  0.5
v  0.5 -0.5  0.5
v  0.5  0.5  0.5
v -0.5  0.5  0.5

usemtl red
f 1 4 3 2
f 5 6 7 8
usemtl blue
f 1 2 6 5
f 4 8 7 3
usemtl red
f 1 5 8 4
f 2 3 7 6
`

func TestLoadCube(t *testing.T) {
	src, err := Load(strings.NewReader(cubeOBJ), "cube")
	if err != nil {
		t.Fatalf("failed to load OBJ: %v", err)
	}

	if src.Name != "Box" {
		t.Errorf("expected name Box, got %s", src.Name)
	}
	if len(src.Points) != 8 {
		t.Errorf("expected 8 points, got %d", len(src.Points))
	}
	if want := []int{4, 4, 4, 4, 4, 4}; !reflect.DeepEqual(src.Counts, want) {
		t.Errorf("counts = %v, want %v", src.Counts, want)
	}
	if want := []int{0, 3, 2, 1}; !reflect.DeepEqual(src.Indices[:4], want) {
		t.Errorf("first face = %v, want %v", src.Indices[:4], want)
	}
	if want := []string{"red", "blue"}; !reflect.DeepEqual(src.Materials, want) {
		t.Errorf("materials = %v, want %v", src.Materials, want)
	}
	if want := []int{0, 0, 1, 1, 0, 0}; !reflect.DeepEqual(src.MaterialIDs, want) {
		t.Errorf("material IDs = %v, want %v", src.MaterialIDs, want)
	}
	if src.Normals != nil || src.UV != nil {
		t.Error("expected no normals or uv")
	}
}

func TestLoadPerCornerAttributes(t *testing.T) {
	objData := `
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 2
f 1/1/1 2/2/1 3/3/1 4/4/1
f 1/4/1 3/2/1 4/1/1
`
	src, err := Load(strings.NewReader(objData), "quad")
	if err != nil {
		t.Fatalf("failed to load OBJ: %v", err)
	}

	if len(src.UV) != len(src.Indices) || len(src.Normals) != len(src.Indices) {
		t.Fatalf("expected per-corner uv and normals, got %d uv, %d normals for %d corners",
			len(src.UV), len(src.Normals), len(src.Indices))
	}
	if src.UV[4] != (math.Vec2{0, 1}) {
		t.Errorf("corner 4 uv = %v, want (0,1)", src.UV[4])
	}
	// normals are normalized on load
	if src.Normals[0] != (math.Vec3{0, 0, 1}) {
		t.Errorf("normal = %v, want (0,0,1)", src.Normals[0])
	}
	if src.MaterialIDs != nil {
		t.Errorf("expected no material IDs without usemtl, got %v", src.MaterialIDs)
	}
}

func TestLoadNegativeIndicesAndColors(t *testing.T) {
	objData := `
v 0 0 0 1 0 0
v 1 0 0 0 1 0
v 0 1 0 0 0 1
f -3 -2 -1
`
	src, err := Load(strings.NewReader(objData), "tri")
	if err != nil {
		t.Fatalf("failed to load OBJ: %v", err)
	}
	if want := []int{0, 1, 2}; !reflect.DeepEqual(src.Indices, want) {
		t.Errorf("indices = %v, want %v", src.Indices, want)
	}
	if len(src.Colors) != 3 || src.Colors[1] != (math.Vec4{0, 1, 0, 1}) {
		t.Errorf("unexpected colors %v", src.Colors)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"short vertex", "v 1 2\n"},
		{"bad number", "v 1 x 3\n"},
		{"short face", "v 0 0 0\nv 1 0 0\nf 1 2\n"},
		{"index out of range", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 4\n"},
		{"bad face index", "v 0 0 0\nf a b c\n"},
		{"texture index out of range", "v 0 0 0\nv 1 0 0\nv 0 1 0\nvt 0 0\nf 1/1 2/1 3/2\n"},
		{"normal index out of range", "v 0 0 0\nv 1 0 0\nv 0 1 0\nvn 0 0 1\nf 1//1 2//1 3//4\n"},
		{"relative normal index before first normal", "v 0 0 0\nv 1 0 0\nv 0 1 0\nvn 0 0 1\nf 1//-1 2//-1 3//-2\n"},
		{"usemtl without name", "usemtl\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.data), "bad")
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("expected ErrMalformed, got %v", err)
			}
		})
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.obj")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWriteRoundTrip(t *testing.T) {
	src, err := Load(strings.NewReader(cubeOBJ), "cube")
	if err != nil {
		t.Fatalf("failed to load OBJ: %v", err)
	}

	tests := []struct {
		name      string
		configure func(*config.Config)
		wantFaces int
	}{
		{"triangles with submeshes", func(c *config.Config) {}, 12},
		{"polygons", func(c *config.Config) { c.Refine.Triangulate = false }, 6},
		{"split triangles", func(c *config.Config) { c.Refine.SplitUnit = 8 }, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Normals.Mode = config.NormalsSmooth
			tt.configure(cfg)

			res, err := pipeline.Run(context.Background(), src, cfg, nil)
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			var buf bytes.Buffer
			if err := Write(&buf, []*pipeline.Result{res}); err != nil {
				t.Fatalf("Write() error = %v", err)
			}

			back, err := Load(&buf, "back")
			if err != nil {
				t.Fatalf("failed to reload OBJ: %v", err)
			}
			if len(back.Counts) != tt.wantFaces {
				t.Errorf("expected %d faces, got %d", tt.wantFaces, len(back.Counts))
			}
			if len(back.Points) != len(res.Output.Points) {
				t.Errorf("expected %d points, got %d", len(res.Output.Points), len(back.Points))
			}
			for k, vi := range back.Indices {
				p := back.Points[vi]
				if p[0] < -0.5 || p[0] > 0.5 {
					t.Errorf("corner %d references point %v outside the cube", k, p)
				}
			}
			if len(back.Normals) != len(back.Indices) {
				t.Errorf("expected per-corner normals, got %d", len(back.Normals))
			}
		})
	}
}

func TestSaveFile(t *testing.T) {
	src, err := Load(strings.NewReader(cubeOBJ), "cube")
	if err != nil {
		t.Fatalf("failed to load OBJ: %v", err)
	}
	res, err := pipeline.Run(context.Background(), src, config.Default(), nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "cube.obj")
	if err := SaveFile(path, []*pipeline.Result{res, res}); err != nil {
		t.Fatalf("SaveFile() error = %v", err)
	}
	back, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if len(back.Points) != 16 {
		t.Errorf("expected 16 points from two meshes, got %d", len(back.Points))
	}
	if len(back.Counts) != 24 {
		t.Errorf("expected 24 triangles, got %d", len(back.Counts))
	}
	if back.Name != "Box_0" {
		t.Errorf("expected first object name Box_0, got %s", back.Name)
	}
}
