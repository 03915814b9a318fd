package meshutil

import (
	"github.com/Faultbox/meshrefine/pkg/math"
)

// GenerateTangents computes Lengyel-style tangents from positions, normals and
// texture coordinates. normals and uv may each be per-vertex (len(points)) or
// per-corner (len(indices)); dst is per-corner when its length equals
// len(indices), per-vertex otherwise. W holds the bitangent handedness (±1).
//
// Each polygon is fan-triangulated; the UV gradient of every triangle is
// accumulated into the slots of its three corners, then orthonormalized
// against the slot normal.
func GenerateTangents(dst []math.Vec4, points []math.Vec3, normals []math.Vec3, uv []math.Vec2,
	counts, offsets, indices []int) {
	numIndices := len(indices)
	perCorner := len(dst) == numIndices

	slot := func(k int) int {
		if perCorner {
			return k
		}
		return indices[k]
	}
	normalAt := func(k int) math.Vec3 {
		if len(normals) == numIndices {
			return normals[k]
		}
		return normals[indices[k]]
	}
	uvAt := func(k int) math.Vec2 {
		if len(uv) == numIndices {
			return uv[k]
		}
		return uv[indices[k]]
	}

	tan := make([]math.Vec3, len(dst))
	btan := make([]math.Vec3, len(dst))
	slotNormal := make([]math.Vec3, len(dst))

	for fi, c := range counts {
		o := offsets[fi]
		for i := 1; i < c-1; i++ {
			k0, k1, k2 := o, o+i, o+i+1
			p0, p1, p2 := points[indices[k0]], points[indices[k1]], points[indices[k2]]
			uv0, uv1, uv2 := uvAt(k0), uvAt(k1), uvAt(k2)

			e1 := p1.Sub(p0)
			e2 := p2.Sub(p0)
			d1 := uv1.Sub(uv0)
			d2 := uv2.Sub(uv0)

			det := d1[0]*d2[1] - d1[1]*d2[0]
			if det == 0 {
				continue
			}
			r := 1 / det
			t := e1.Mul(d2[1]).Sub(e2.Mul(d1[1])).Mul(r)
			b := e2.Mul(d1[0]).Sub(e1.Mul(d2[0])).Mul(r)

			for _, k := range [3]int{k0, k1, k2} {
				s := slot(k)
				tan[s] = tan[s].Add(t)
				btan[s] = btan[s].Add(b)
			}
		}
		for ci := 0; ci < c; ci++ {
			k := o + ci
			slotNormal[slot(k)] = normalAt(k)
		}
	}

	for i := range dst {
		n := slotNormal[i]
		t := tan[i]
		// Gram-Schmidt: T' = normalize(T - N * dot(N, T))
		ortho := math.Normalize(t.Sub(n.Mul(n.Dot(t))))
		if ortho == (math.Vec3{}) {
			dst[i] = math.Vec4{1, 0, 0, 1}
			continue
		}
		w := float32(1)
		if math.Cross(n, ortho).Dot(btan[i]) < 0 {
			w = -1
		}
		dst[i] = math.Vec4{ortho[0], ortho[1], ortho[2], w}
	}
}
