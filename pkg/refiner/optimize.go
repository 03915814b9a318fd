package refiner

import (
	"github.com/Faultbox/meshrefine/pkg/math"
	"github.com/Faultbox/meshrefine/pkg/meshutil"
)

// attribute reads a buffer that is either per-vertex or per-corner. The
// layout is fixed once, when refinement starts.
type attribute[T any] struct {
	data      []T
	perCorner bool
}

func newAttribute[T any](data []T, numIndices int) attribute[T] {
	return attribute[T]{data: data, perCorner: len(data) == numIndices}
}

func (a attribute[T]) present() bool { return len(a.data) > 0 }

// at returns the value for corner k whose point is vi.
func (a attribute[T]) at(k, vi int) T {
	if a.perCorner {
		return a.data[k]
	}
	return a.data[vi]
}

// vertex is one candidate output vertex.
type vertex struct {
	point   math.Vec3
	normal  math.Vec3
	uv      math.Vec2
	color   math.Vec4
	tangent math.Vec4
}

// layout is the attribute-presence profile of a refinement.
type layout struct {
	normals  attribute[math.Vec3]
	uv       attribute[math.Vec2]
	colors   attribute[math.Vec4]
	tangents attribute[math.Vec4]
}

func (l *layout) vertexAt(points []math.Vec3, k, vi int) vertex {
	v := vertex{point: points[vi]}
	if l.normals.present() {
		v.normal = l.normals.at(k, vi)
	}
	if l.uv.present() {
		v.uv = l.uv.at(k, vi)
	}
	if l.colors.present() {
		v.color = l.colors.at(k, vi)
	}
	if l.tangents.present() {
		v.tangent = l.tangents.at(k, vi)
	}
	return v
}

// matches compares v with output vertex ni. Tangents and weights are not
// compared: tangents follow from position, normal and uv, and weights are
// per point.
func (r *Refiner) matches(l *layout, ni int, v *vertex) bool {
	if !math.NearEqual3(r.newPoints[ni], v.point) {
		return false
	}
	if l.normals.present() && !math.NearEqualUnit3(r.newNormals[ni], v.normal) {
		return false
	}
	if l.uv.present() && !math.NearEqual2(r.newUV[ni], v.uv) {
		return false
	}
	if l.colors.present() && !math.NearEqual4(r.newColors[ni], v.color) {
		return false
	}
	return true
}

// findOrAddVertex returns the output vertex for corner k of point vi,
// reusing a vertex already assigned to another corner of vi in the current
// split when all compared attributes are near-equal.
func (r *Refiner) findOrAddVertex(l *layout, k, vi int) int {
	v := l.vertexAt(r.points, k, vi)

	_, corners := r.conn.Incidences(vi)
	for _, kk := range corners {
		ni := r.old2new[kk]
		if ni != -1 && r.matches(l, ni, &v) {
			r.old2new[k] = ni
			return ni
		}
	}

	ni := len(r.newPoints)
	r.newPoints = append(r.newPoints, v.point)
	if l.normals.present() {
		r.newNormals = append(r.newNormals, v.normal)
	}
	if l.uv.present() {
		r.newUV = append(r.newUV, v.uv)
	}
	if l.colors.present() {
		r.newColors = append(r.newColors, v.color)
	}
	if l.tangents.present() {
		r.newTangents = append(r.newTangents, v.tangent)
	}
	if len(r.weights4) > 0 {
		r.newWeights4 = append(r.newWeights4, r.weights4[vi])
	}
	r.old2new[k] = ni
	return ni
}

func (r *Refiner) refineOptimized() {
	numIndices := len(r.indices)
	l := &layout{
		normals:  newAttribute(r.normals, numIndices),
		uv:       newAttribute(r.uv, numIndices),
		colors:   newAttribute(r.colors, numIndices),
		tangents: newAttribute(r.Tangents(), numIndices),
	}

	r.newPoints = make([]math.Vec3, 0, numIndices)
	if l.normals.present() {
		r.newNormals = make([]math.Vec3, 0, numIndices)
	}
	if l.uv.present() {
		r.newUV = make([]math.Vec2, 0, numIndices)
	}
	if l.colors.present() {
		r.newColors = make([]math.Vec4, 0, numIndices)
	}
	if l.tangents.present() {
		r.newTangents = make([]math.Vec4, 0, numIndices)
	}
	if len(r.weights4) > 0 {
		r.newWeights4 = make([]math.Weights4, 0, numIndices)
	}
	r.newIndices = make([]int, 0, numIndices)
	r.old2new = make([]int, numIndices)
	clearCache(r.old2new)

	unit := r.Settings.SplitUnit
	vertexBase, indexBase := 0, 0
	numFaces, numTri := 0, 0

	closeSplit := func() {
		split := Split{
			NumFaces:               numFaces,
			NumVertices:            len(r.newPoints) - vertexBase,
			NumIndices:             len(r.newIndices) - indexBase,
			NumIndicesTriangulated: numTri,
		}
		r.splits = append(r.splits, split)
		vertexBase += split.NumVertices
		indexBase += split.NumIndices
		numFaces, numTri = 0, 0
	}

	for fi, c := range r.counts {
		if unit > 0 {
			if c > unit {
				r.noteOversized(fi, c)
			}
			if numFaces > 0 && len(r.newPoints)-vertexBase+c > unit {
				closeSplit()
				clearCache(r.old2new)
			}
		}

		o := r.offsets[fi]
		for k := o; k < o+c; k++ {
			ni := r.findOrAddVertex(l, k, r.indices[k])
			r.newIndices = append(r.newIndices, ni-vertexBase)
		}
		numFaces++
		numTri += (c - 2) * 3
	}
	if numFaces > 0 || len(r.splits) == 0 {
		closeSplit()
	}

	switch {
	case r.Settings.Triangulate:
		r.triangulateSplits()
	case r.Settings.SwapFaces:
		faceOffset, indexOffset := 0, 0
		for _, s := range r.splits {
			meshutil.ReverseFaces(r.newIndices[indexOffset:indexOffset+s.NumIndices],
				r.counts[faceOffset:faceOffset+s.NumFaces])
			faceOffset += s.NumFaces
			indexOffset += s.NumIndices
		}
	}
}

// triangulateSplits fan-triangulates the split-local polygon indices.
func (r *Refiner) triangulateSplits() {
	total := 0
	for _, s := range r.splits {
		total += s.NumIndicesTriangulated
	}
	r.newIndicesTri = make([]int, total)

	faceOffset, indexOffset, triOffset := 0, 0, 0
	for _, s := range r.splits {
		meshutil.TriangulateWithIndices(
			r.newIndicesTri[triOffset:triOffset+s.NumIndicesTriangulated],
			r.counts[faceOffset:faceOffset+s.NumFaces],
			r.newIndices[indexOffset:indexOffset+s.NumIndices],
			r.Settings.SwapFaces)
		faceOffset += s.NumFaces
		indexOffset += s.NumIndices
		triOffset += s.NumIndicesTriangulated
	}
}

func clearCache(old2new []int) {
	for i := range old2new {
		old2new[i] = -1
	}
}
