package refiner

import (
	"slices"

	"go.uber.org/zap"

	"github.com/Faultbox/meshrefine/pkg/meshutil"
)

// Refine converts the prepared mesh into split, indexed output buffers.
//
// With optimize, corners sharing a point and near-equal attributes are merged
// into one output vertex. Without it, attributes are flattened to one vertex
// per corner whenever any attribute is per-corner or the mesh must be split;
// otherwise the input vertices are kept as they are.
func (r *Refiner) Refine(optimize bool) error {
	if err := r.validate(); err != nil {
		return err
	}
	r.resetOutputs()

	if optimize {
		if err := r.BuildConnection(); err != nil {
			return err
		}
		r.refineOptimized()
	} else {
		r.refineDumb()
	}

	r.stats.Points = len(r.points)
	r.stats.Faces = len(r.counts)
	r.stats.Corners = len(r.indices)
	r.stats.Splits = len(r.splits)
	if len(r.newPoints) > 0 {
		r.stats.OutputVertices = len(r.newPoints)
	} else {
		r.stats.OutputVertices = len(r.points)
	}

	r.log.Debug("refined mesh",
		zap.Bool("optimize", optimize),
		zap.Int("faces", r.stats.Faces),
		zap.Int("corners", r.stats.Corners),
		zap.Int("vertices", r.stats.OutputVertices),
		zap.Int("splits", r.stats.Splits))
	return nil
}

func (r *Refiner) resetOutputs() {
	r.splits = nil
	r.submeshes = nil
	r.newPoints = nil
	r.newNormals = nil
	r.newUV = nil
	r.newColors = nil
	r.newTangents = nil
	r.newWeights4 = nil
	r.newIndices = nil
	r.newIndicesTri = nil
	r.newIndicesSubmeshes = nil
	r.old2new = nil
	r.stats = Stats{}
}

// noteOversized records a face that cannot fit in any split.
func (r *Refiner) noteOversized(fi, count int) {
	r.stats.OversizedFaces++
	r.log.Warn("face exceeds split budget, emitting it in its own split",
		zap.Int("face", fi),
		zap.Int("corners", count),
		zap.Int("split_unit", r.Settings.SplitUnit))
}

// flattenAttr expands a per-vertex buffer to per-corner. Per-corner buffers
// are copied as they are.
func flattenAttr[T any](src []T, indices []int) []T {
	switch len(src) {
	case 0:
		return nil
	case len(indices):
		return slices.Clone(src)
	default:
		return meshutil.Flatten(src, indices)
	}
}

func (r *Refiner) refineDumb() {
	numPoints := len(r.points)
	numIndices := len(r.indices)
	unit := r.Settings.SplitUnit
	needSplit := unit > 0 && numPoints > unit

	perCorner := func(n int) bool { return n > 0 && n == numIndices }
	flatten := needSplit ||
		perCorner(len(r.normals)) ||
		perCorner(len(r.uv)) ||
		perCorner(len(r.colors)) ||
		perCorner(len(r.Tangents()))

	if flatten {
		r.newPoints = meshutil.Flatten(r.points, r.indices)
		r.newNormals = flattenAttr(r.normals, r.indices)
		r.newUV = flattenAttr(r.uv, r.indices)
		r.newColors = flattenAttr(r.colors, r.indices)
		r.newTangents = flattenAttr(r.Tangents(), r.indices)
		r.newWeights4 = flattenAttr(r.weights4, r.indices)
	}

	if unit > 0 {
		for fi, c := range r.counts {
			if c > unit {
				r.noteOversized(fi, c)
			}
		}
	}

	if r.Settings.Triangulate {
		r.newIndicesTri = make([]int, r.numIndicesTri)
	}

	if needSplit {
		r.newIndices = make([]int, 0, numIndices)
		faceOffset, triOffset := 0, 0
		meshutil.Split(r.counts, unit, func(numFaces, numVertices, numTri int) {
			counts := r.counts[faceOffset : faceOffset+numFaces]
			first := len(r.newIndices)
			for i := 0; i < numVertices; i++ {
				r.newIndices = append(r.newIndices, i)
			}

			split := Split{
				NumFaces:    numFaces,
				NumVertices: numVertices,
				// one vertex per corner
				NumIndices:             numVertices,
				NumIndicesTriangulated: numTri,
			}
			if r.Settings.Triangulate {
				meshutil.Triangulate(r.newIndicesTri[triOffset:triOffset+numTri], counts, r.Settings.SwapFaces)
				triOffset += numTri
			} else if r.Settings.SwapFaces {
				meshutil.ReverseFaces(r.newIndices[first:], counts)
			}
			r.splits = append(r.splits, split)
			faceOffset += numFaces
		})
		return
	}

	split := Split{
		NumFaces:               len(r.counts),
		NumIndices:             numIndices,
		NumIndicesTriangulated: r.numIndicesTri,
	}
	if flatten {
		r.newIndices = make([]int, numIndices)
		for i := range r.newIndices {
			r.newIndices[i] = i
		}
		split.NumVertices = numIndices
	} else {
		r.newIndices = slices.Clone(r.indices)
		split.NumVertices = numPoints
	}

	if r.Settings.Triangulate {
		if flatten {
			meshutil.Triangulate(r.newIndicesTri, r.counts, r.Settings.SwapFaces)
		} else {
			meshutil.TriangulateWithIndices(r.newIndicesTri, r.counts, r.indices, r.Settings.SwapFaces)
		}
	} else if r.Settings.SwapFaces {
		meshutil.ReverseFaces(r.newIndices, r.counts)
	}
	r.splits = append(r.splits, split)
}
