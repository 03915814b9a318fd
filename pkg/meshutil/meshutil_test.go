package meshutil

import (
	"reflect"
	"testing"

	"github.com/Faultbox/meshrefine/pkg/math"
)

func TestCountIndices(t *testing.T) {
	offsets, numIndices, numTri := CountIndices([]int{3, 4, 5})
	if want := []int{0, 3, 7}; !reflect.DeepEqual(offsets, want) {
		t.Errorf("offsets = %v, want %v", offsets, want)
	}
	if numIndices != 12 {
		t.Errorf("expected 12 indices, got %d", numIndices)
	}
	// 3 + 6 + 9
	if numTri != 18 {
		t.Errorf("expected 18 triangulated indices, got %d", numTri)
	}
}

func TestCountIndicesEmpty(t *testing.T) {
	offsets, numIndices, numTri := CountIndices(nil)
	if len(offsets) != 0 || numIndices != 0 || numTri != 0 {
		t.Errorf("CountIndices(nil) = %v, %d, %d; want empty", offsets, numIndices, numTri)
	}
}

func TestTriangleOffsets(t *testing.T) {
	got := TriangleOffsets([]int{3, 4, 3})
	want := []int{0, 3, 9}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TriangleOffsets() = %v, want %v", got, want)
	}
}

func TestTriangulate(t *testing.T) {
	tests := []struct {
		name      string
		counts    []int
		swapFaces bool
		want      []int
	}{
		{"triangle", []int{3}, false, []int{0, 1, 2}},
		{"quad", []int{4}, false, []int{0, 1, 2, 0, 2, 3}},
		{"quad swapped", []int{4}, true, []int{0, 2, 1, 0, 3, 2}},
		{"pentagon", []int{5}, false, []int{0, 1, 2, 0, 2, 3, 0, 3, 4}},
		{"quad then triangle", []int{4, 3}, false, []int{0, 1, 2, 0, 2, 3, 4, 5, 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, numTri := CountIndices(tt.counts)
			dst := make([]int, numTri)
			n := Triangulate(dst, tt.counts, tt.swapFaces)
			if n != len(tt.want) {
				t.Fatalf("Triangulate() wrote %d indices, want %d", n, len(tt.want))
			}
			if !reflect.DeepEqual(dst, tt.want) {
				t.Errorf("Triangulate() = %v, want %v", dst, tt.want)
			}
		})
	}
}

func TestTriangulateWithIndices(t *testing.T) {
	counts := []int{4, 3}
	indices := []int{10, 11, 12, 13, 20, 21, 22}
	dst := make([]int, 9)

	TriangulateWithIndices(dst, counts, indices, false)
	want := []int{10, 11, 12, 10, 12, 13, 20, 21, 22}
	if !reflect.DeepEqual(dst, want) {
		t.Errorf("TriangulateWithIndices() = %v, want %v", dst, want)
	}

	TriangulateWithIndices(dst, counts, indices, true)
	want = []int{10, 12, 11, 10, 13, 12, 20, 22, 21}
	if !reflect.DeepEqual(dst, want) {
		t.Errorf("TriangulateWithIndices(swap) = %v, want %v", dst, want)
	}
}

func TestReverseFaces(t *testing.T) {
	counts := []int{4, 3}
	indices := []int{0, 1, 2, 3, 4, 5, 6}
	ReverseFaces(indices, counts)
	want := []int{0, 3, 2, 1, 4, 6, 5}
	if !reflect.DeepEqual(indices, want) {
		t.Errorf("ReverseFaces() = %v, want %v", indices, want)
	}
}

type splitGroup struct{ faces, vertices, tri int }

func collectSplits(counts []int, unit int) []splitGroup {
	var groups []splitGroup
	Split(counts, unit, func(f, v, tri int) {
		groups = append(groups, splitGroup{f, v, tri})
	})
	return groups
}

func TestSplit(t *testing.T) {
	counts := make([]int, 100)
	for i := range counts {
		counts[i] = 3
	}
	got := collectSplits(counts, 90)
	want := []splitGroup{{30, 90, 90}, {30, 90, 90}, {30, 90, 90}, {10, 30, 30}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Split() = %v, want %v", got, want)
	}
}

func TestSplitDisabled(t *testing.T) {
	got := collectSplits([]int{3, 4, 5}, 0)
	want := []splitGroup{{3, 12, 18}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Split(unit=0) = %v, want %v", got, want)
	}
}

func TestSplitOversizedFace(t *testing.T) {
	got := collectSplits([]int{3, 8, 3}, 6)
	want := []splitGroup{{1, 3, 3}, {1, 8, 18}, {1, 3, 3}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Split() = %v, want %v", got, want)
	}
}

func TestCopyWithIndices(t *testing.T) {
	src := []string{"a", "b", "c"}
	got := Flatten(src, []int{2, 0, 0, 1})
	want := []string{"c", "a", "a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Flatten() = %v, want %v", got, want)
	}
}

func TestGenerateTangentsQuad(t *testing.T) {
	points := []math.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}}
	normals := []math.Vec3{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1}}
	uv := []math.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	counts := []int{4}
	offsets := []int{0}
	indices := []int{0, 1, 2, 3}

	dst := make([]math.Vec4, 4)
	GenerateTangents(dst, points, normals, uv, counts, offsets, indices)
	for i, tg := range dst {
		if !math.NearEqual4(tg, math.Vec4{1, 0, 0, 1}) {
			t.Errorf("tangent[%d] = %v, want (1,0,0,1)", i, tg)
		}
	}
}

func TestGenerateTangentsMirroredUV(t *testing.T) {
	points := []math.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	normals := []math.Vec3{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}}
	// u runs against x, v along y: left-handed basis
	uv := []math.Vec2{{1, 0}, {0, 0}, {1, 1}}
	dst := make([]math.Vec4, 3)
	GenerateTangents(dst, points, normals, uv, []int{3}, []int{0}, []int{0, 1, 2})
	for i, tg := range dst {
		if !math.NearEqual4(tg, math.Vec4{-1, 0, 0, -1}) {
			t.Errorf("tangent[%d] = %v, want (-1,0,0,-1)", i, tg)
		}
	}
}

func TestGenerateTangentsPerCorner(t *testing.T) {
	points := []math.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	normals := []math.Vec3{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1}}
	uv := []math.Vec2{{0, 0}, {1, 0}, {0, 1}}
	indices := []int{0, 1, 2, 0, 2, 1}
	dst := make([]math.Vec4, len(indices))
	GenerateTangents(dst, points, normals, uv, []int{3, 3}, []int{0, 3}, indices)
	for i, tg := range dst {
		if tg[3] != 1 && tg[3] != -1 {
			t.Errorf("tangent[%d].W = %v, want ±1", i, tg[3])
		}
		if !math.NearEqual3(tg.Vec3(), math.Vec3{1, 0, 0}) {
			t.Errorf("tangent[%d] = %v, want +X direction", i, tg)
		}
	}
}

func TestGenerateTangentsDegenerateUV(t *testing.T) {
	points := []math.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	normals := []math.Vec3{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}}
	uv := []math.Vec2{{0, 0}, {0, 0}, {0, 0}}
	dst := make([]math.Vec4, 3)
	GenerateTangents(dst, points, normals, uv, []int{3}, []int{0}, []int{0, 1, 2})
	for i, tg := range dst {
		if tg != (math.Vec4{1, 0, 0, 1}) {
			t.Errorf("tangent[%d] = %v, want fallback (1,0,0,1)", i, tg)
		}
	}
}

func TestScaleAndInvertX(t *testing.T) {
	points := []math.Vec3{{1, 2, 3}}
	Scale(points, 2)
	if points[0] != (math.Vec3{2, 4, 6}) {
		t.Errorf("Scale() = %v, want (2,4,6)", points[0])
	}
	InvertX(points)
	if points[0] != (math.Vec3{-2, 4, 6}) {
		t.Errorf("InvertX() = %v, want (-2,4,6)", points[0])
	}
	tangents := []math.Vec4{{1, 0, 0, 1}}
	InvertXTangents(tangents)
	if tangents[0] != (math.Vec4{-1, 0, 0, -1}) {
		t.Errorf("InvertXTangents() = %v, want (-1,0,0,-1)", tangents[0])
	}
}
