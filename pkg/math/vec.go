// Package math provides the vector types and helpers shared by the mesh pipeline.
package math

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Vec2 is a 2D vector (texture coordinates).
type Vec2 = mgl32.Vec2

// Vec3 is a 3D vector (positions, normals).
type Vec3 = mgl32.Vec3

// Vec4 is a 4D vector (colors, tangents with handedness in W).
type Vec4 = mgl32.Vec4

// Deg2Rad converts degrees to radians.
const Deg2Rad = float32(math.Pi / 180)

// Weights4 holds up to four bone influences of a vertex.
type Weights4 struct {
	Weights [4]float32
	Indices [4]int32
}

// Normalize returns a unit vector, or the zero vector when v has no length.
func Normalize(v Vec3) Vec3 {
	l := v.Len()
	if l == 0 {
		return Vec3{}
	}
	return Vec3{v[0] / l, v[1] / l, v[2] / l}
}

// NormalizeAll normalizes every vector of buf in place.
func NormalizeAll(buf []Vec3) {
	for i := range buf {
		buf[i] = Normalize(buf[i])
	}
}

// Cross returns the cross product a × b.
func Cross(a, b Vec3) Vec3 {
	return a.Cross(b)
}

// FaceNormal returns the unnormalized normal (p1-p0) × (p2-p0).
// Its length is twice the area of the triangle.
func FaceNormal(p0, p1, p2 Vec3) Vec3 {
	return Cross(p1.Sub(p0), p2.Sub(p0))
}
