package meshutil

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/meshrefine/pkg/math"
)

// Scale multiplies every point by s.
func Scale(points []math.Vec3, s float32) {
	if s == 1 {
		return
	}
	m := mgl32.Scale3D(s, s, s)
	for i, p := range points {
		points[i] = m.Mul4x1(p.Vec4(1)).Vec3()
	}
}

// InvertX mirrors points along the X axis, converting between left- and
// right-handed coordinates. Normals are mirrored the same way.
func InvertX(points []math.Vec3) {
	for i := range points {
		points[i][0] = -points[i][0]
	}
}

// InvertXTangents mirrors tangents along X and flips their handedness.
func InvertXTangents(tangents []math.Vec4) {
	for i := range tangents {
		tangents[i][0] = -tangents[i][0]
		tangents[i][3] = -tangents[i][3]
	}
}
