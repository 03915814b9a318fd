// Package meshutil provides the index and attribute kernels used by the refiner:
// index counting, fan triangulation, vertex-budget splitting, gathers and tangents.
package meshutil

// CountIndices computes per-face index offsets and the index totals of a
// polygon mesh. numIndicesTriangulated is the length of the index buffer
// after fan triangulation.
func CountIndices(counts []int) (offsets []int, numIndices, numIndicesTriangulated int) {
	offsets = make([]int, len(counts))
	for i, c := range counts {
		offsets[i] = numIndices
		numIndices += c
		if c >= 3 {
			numIndicesTriangulated += (c - 2) * 3
		}
	}
	return offsets, numIndices, numIndicesTriangulated
}

// TriangleOffsets returns, for every face, the offset of its first
// triangulated index.
func TriangleOffsets(counts []int) []int {
	offsets := make([]int, len(counts))
	n := 0
	for i, c := range counts {
		offsets[i] = n
		if c >= 3 {
			n += (c - 2) * 3
		}
	}
	return offsets
}

// CopyWithIndices gathers src[indices[i]] into dst[i].
// dst must hold at least len(indices) elements.
func CopyWithIndices[T any](dst, src []T, indices []int) {
	for i, vi := range indices {
		dst[i] = src[vi]
	}
}

// Flatten returns a new buffer holding src gathered through indices.
func Flatten[T any](src []T, indices []int) []T {
	dst := make([]T, len(indices))
	CopyWithIndices(dst, src, indices)
	return dst
}
