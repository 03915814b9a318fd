package meshutil

// SplitFunc receives one group of consecutive faces produced by Split.
// numVertices is the number of corners the group touches.
type SplitFunc func(numFaces, numVertices, numIndicesTriangulated int)

// Split walks counts and groups consecutive faces so that the running corner
// count of each group stays within splitUnit. A face larger than splitUnit
// is emitted alone in its own group. A splitUnit <= 0 yields one group.
func Split(counts []int, splitUnit int, fn SplitFunc) {
	numFaces, numVertices, numTri := 0, 0, 0
	for _, c := range counts {
		if splitUnit > 0 && numFaces > 0 && numVertices+c > splitUnit {
			fn(numFaces, numVertices, numTri)
			numFaces, numVertices, numTri = 0, 0, 0
		}
		numFaces++
		numVertices += c
		numTri += (c - 2) * 3
	}
	if numFaces > 0 {
		fn(numFaces, numVertices, numTri)
	}
}
