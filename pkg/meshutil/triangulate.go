package meshutil

// Triangulate fan-triangulates polygons whose corners are numbered
// sequentially from zero, writing triangle corner indices into dst.
// Polygon [c0 c1 ... cn-1] becomes (c0,c1,c2), (c0,c2,c3), ...; with
// swapFaces each triangle is emitted as (c0,c2,c1).
// dst must hold the triangulated index count. Returns the number written.
func Triangulate(dst []int, counts []int, swapFaces bool) int {
	n := 0
	base := 0
	for _, c := range counts {
		for i := 1; i < c-1; i++ {
			dst[n] = base
			if swapFaces {
				dst[n+1] = base + i + 1
				dst[n+2] = base + i
			} else {
				dst[n+1] = base + i
				dst[n+2] = base + i + 1
			}
			n += 3
		}
		base += c
	}
	return n
}

// TriangulateWithIndices is Triangulate where corner k maps to indices[k].
func TriangulateWithIndices(dst []int, counts []int, indices []int, swapFaces bool) int {
	n := 0
	base := 0
	for _, c := range counts {
		face := indices[base : base+c]
		for i := 1; i < c-1; i++ {
			dst[n] = face[0]
			if swapFaces {
				dst[n+1] = face[i+1]
				dst[n+2] = face[i]
			} else {
				dst[n+1] = face[i]
				dst[n+2] = face[i+1]
			}
			n += 3
		}
		base += c
	}
	return n
}

// ReverseFaces reverses the winding of every polygon in place, keeping the
// first corner: [c0 c1 ... cn-1] becomes [c0 cn-1 ... c1]. Fan-triangulating
// the result yields the triangles of Triangulate with swapFaces, in reverse order.
func ReverseFaces(indices []int, counts []int) {
	base := 0
	for _, c := range counts {
		face := indices[base+1 : base+c]
		for i, j := 0, len(face)-1; i < j; i, j = i+1, j-1 {
			face[i], face[j] = face[j], face[i]
		}
		base += c
	}
}
