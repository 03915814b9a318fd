package refiner

import (
	"fmt"
	gomath "math"

	"go.uber.org/zap"

	"github.com/Faultbox/meshrefine/pkg/math"
	"github.com/Faultbox/meshrefine/pkg/meshutil"
)

// smoothTolerance widens the smoothing threshold so that faces exactly at
// the smoothing angle are still blended.
const smoothTolerance = 0.001

// GenNormals synthesizes per-vertex normals. Each face contributes its
// unnormalized normal from corners 0, 1, 2 to all of its vertices, so larger
// faces weigh more.
func (r *Refiner) GenNormals() error {
	if err := r.validateTopology(); err != nil {
		return err
	}
	p := r.points
	r.normalsTmp = make([]math.Vec3, len(p))

	for fi, c := range r.counts {
		face := r.indices[r.offsets[fi] : r.offsets[fi]+c]
		n := math.FaceNormal(p[face[0]], p[face[1]], p[face[2]])
		for _, vi := range face {
			r.normalsTmp[vi] = r.normalsTmp[vi].Add(n)
		}
	}
	math.NormalizeAll(r.normalsTmp)

	r.normals = r.normalsTmp
	r.log.Debug("generated flat normals", zap.Int("normals", len(r.normals)))
	return nil
}

// GenNormalsWithSmoothAngle synthesizes per-corner normals. A corner averages
// the normals of the faces around its point whose angle to its own face is
// within smoothAngle degrees.
func (r *Refiner) GenNormalsWithSmoothAngle(smoothAngle float32) error {
	if err := r.BuildConnection(); err != nil {
		return err
	}
	p := r.points
	numFaces := len(r.counts)

	r.faceNormals = make([]math.Vec3, numFaces)
	for fi := range r.counts {
		o := r.offsets[fi]
		r.faceNormals[fi] = math.FaceNormal(p[r.indices[o]], p[r.indices[o+1]], p[r.indices[o+2]])
	}
	math.NormalizeAll(r.faceNormals)

	threshold := float32(gomath.Cos(float64(smoothAngle*math.Deg2Rad))) - smoothTolerance
	r.normalsTmp = make([]math.Vec3, len(r.indices))
	for fi, c := range r.counts {
		o := r.offsets[fi]
		faceNormal := r.faceNormals[fi]
		for ci := 0; ci < c; ci++ {
			faces, _ := r.conn.Incidences(r.indices[o+ci])
			var n math.Vec3
			for _, nf := range faces {
				connected := r.faceNormals[nf]
				if faceNormal.Dot(connected) > threshold {
					n = n.Add(connected)
				}
			}
			r.normalsTmp[o+ci] = n
		}
	}
	math.NormalizeAll(r.normalsTmp)

	r.normals = r.normalsTmp
	r.log.Debug("generated smooth normals",
		zap.Float32("angle", smoothAngle),
		zap.Int("normals", len(r.normals)))
	return nil
}

// GenTangents synthesizes tangents from the active normals and texture
// coordinates. The result is per-corner if either input is per-corner.
func (r *Refiner) GenTangents() error {
	if err := r.validate(); err != nil {
		return err
	}
	if len(r.normals) == 0 || len(r.uv) == 0 {
		return fmt.Errorf("%w: tangents need normals and uv", ErrMissingAttribute)
	}
	r.tangentsTmp = make([]math.Vec4, max(len(r.normals), len(r.uv)))
	meshutil.GenerateTangents(r.tangentsTmp, r.points, r.normals, r.uv, r.counts, r.offsets, r.indices)
	r.log.Debug("generated tangents", zap.Int("tangents", len(r.tangentsTmp)))
	return nil
}
