package refiner

import "github.com/Faultbox/meshrefine/pkg/math"

// Output receives the refined buffers. Points, Normals, Tangents, UV, Colors
// and Weights4 share the output vertex layout; Indices addresses them per split.
type Output struct {
	Points   []math.Vec3
	Normals  []math.Vec3
	Tangents []math.Vec4
	UV       []math.Vec2
	Colors   []math.Vec4
	Weights4 []math.Weights4
	Indices  []int
}

// SwapNewData hands the refined buffers over to dst without copying.
//
// Indices prefer the submesh order, then the triangulated buffer, then the
// polygon buffer. Normals and tangents fall back to the synthesized buffers
// when refinement produced none. A buffer the refiner does not have leaves
// the matching field of dst untouched. Afterwards the refiner holds no output
// buffers, so a second call leaves dst as it is.
func (r *Refiner) SwapNewData(dst *Output) {
	if len(r.newPoints) > 0 {
		dst.Points, r.newPoints = r.newPoints, nil
	}

	switch {
	case len(r.newNormals) > 0:
		dst.Normals, r.newNormals = r.newNormals, nil
	case len(r.normalsTmp) > 0:
		dst.Normals, r.normalsTmp = r.normalsTmp, nil
		r.normals = nil
	}

	switch {
	case len(r.newTangents) > 0:
		dst.Tangents, r.newTangents = r.newTangents, nil
	case len(r.tangentsTmp) > 0:
		dst.Tangents, r.tangentsTmp = r.tangentsTmp, nil
	}

	if len(r.newUV) > 0 {
		dst.UV, r.newUV = r.newUV, nil
	}
	if len(r.newColors) > 0 {
		dst.Colors, r.newColors = r.newColors, nil
	}
	if len(r.newWeights4) > 0 {
		dst.Weights4, r.newWeights4 = r.newWeights4, nil
	}

	switch {
	case len(r.newIndicesSubmeshes) > 0:
		dst.Indices = r.newIndicesSubmeshes
	case len(r.newIndicesTri) > 0:
		dst.Indices = r.newIndicesTri
	case len(r.newIndices) > 0:
		dst.Indices = r.newIndices
	}

	// the buffers passed over are stale once a preferred one was taken
	r.newIndicesSubmeshes, r.newIndicesTri, r.newIndices = nil, nil, nil
	r.newNormals, r.newTangents = nil, nil
	if r.normalsTmp != nil {
		r.normalsTmp, r.normals = nil, nil
	}
	r.tangentsTmp = nil
}
