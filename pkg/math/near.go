package math

// Tolerances used by the NearEqual family. Comparisons are component-wise:
// two vectors are near-equal when |a[i]-b[i]| <= eps for every component.
const (
	// Epsilon applies to positions, texture coordinates and colors.
	Epsilon float32 = 1e-4
	// UnitEpsilon applies to unit-length vectors such as normals.
	UnitEpsilon float32 = 1e-5
)

func near(a, b, eps float32) bool {
	d := a - b
	return d <= eps && d >= -eps
}

// NearEqual2 reports whether a and b differ by at most Epsilon per component.
func NearEqual2(a, b Vec2) bool {
	return near(a[0], b[0], Epsilon) && near(a[1], b[1], Epsilon)
}

// NearEqual3 reports whether a and b differ by at most Epsilon per component.
func NearEqual3(a, b Vec3) bool {
	return near(a[0], b[0], Epsilon) && near(a[1], b[1], Epsilon) && near(a[2], b[2], Epsilon)
}

// NearEqualUnit3 is NearEqual3 with the tighter UnitEpsilon, for normals.
func NearEqualUnit3(a, b Vec3) bool {
	return near(a[0], b[0], UnitEpsilon) && near(a[1], b[1], UnitEpsilon) && near(a[2], b[2], UnitEpsilon)
}

// NearEqual4 reports whether a and b differ by at most Epsilon per component.
func NearEqual4(a, b Vec4) bool {
	return near(a[0], b[0], Epsilon) && near(a[1], b[1], Epsilon) &&
		near(a[2], b[2], Epsilon) && near(a[3], b[3], Epsilon)
}
