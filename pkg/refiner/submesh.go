package refiner

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/meshrefine/pkg/meshutil"
)

// GenSubmeshes reorders the triangulated indices of every split so that
// faces sharing a material are contiguous. materialIDs holds one ID per face;
// -1 means no material. Submeshes of a split are ordered by material ID with
// the no-material run first.
func (r *Refiner) GenSubmeshes(materialIDs []int) error {
	r.submeshes = nil
	r.newIndicesSubmeshes = nil
	for i := range r.splits {
		r.splits[i].NumSubmeshes = 0
	}

	if len(materialIDs) != len(r.counts) {
		return fmt.Errorf("%w: got %d material IDs for %d faces",
			ErrInvalidMaterialAssignment, len(materialIDs), len(r.counts))
	}
	for fi, mid := range materialIDs {
		if mid < -1 {
			return fmt.Errorf("%w: face %d has material ID %d", ErrInvalidMaterialAssignment, fi, mid)
		}
	}
	if len(r.newIndicesTri) == 0 && r.numIndicesTri > 0 {
		return fmt.Errorf("%w: refine with Triangulate before generating submeshes", ErrNotTriangulated)
	}

	r.newIndicesSubmeshes = make([]int, len(r.newIndicesTri))
	src := r.newIndicesTri
	// splits cover consecutive faces, so face order is also source order
	triOffsets := meshutil.TriangleOffsets(r.counts)
	write := 0
	faceOffset := 0

	var buckets []Submesh
	var cursors []int
	for si := range r.splits {
		split := &r.splits[si]
		faces := r.counts[faceOffset : faceOffset+split.NumFaces]
		materials := materialIDs[faceOffset : faceOffset+split.NumFaces]

		buckets = buckets[:0]
		for fi, c := range faces {
			// bucket 0 holds faces without a material
			mid := materials[fi] + 1
			for mid >= len(buckets) {
				buckets = append(buckets, Submesh{MaterialID: len(buckets) - 1})
			}
			buckets[mid].NumIndicesTriangulated += (c - 2) * 3
		}

		cursors = cursors[:0]
		for i := range buckets {
			buckets[i].Offset = write
			cursors = append(cursors, write)
			write += buckets[i].NumIndicesTriangulated
		}

		for fi, c := range faces {
			mid := materials[fi] + 1
			n := (c - 2) * 3
			read := triOffsets[faceOffset+fi]
			copy(r.newIndicesSubmeshes[cursors[mid]:cursors[mid]+n], src[read:read+n])
			cursors[mid] += n
		}

		for _, b := range buckets {
			if b.NumIndicesTriangulated > 0 {
				split.NumSubmeshes++
				r.submeshes = append(r.submeshes, b)
			}
		}
		faceOffset += split.NumFaces
	}

	r.stats.Submeshes = len(r.submeshes)
	r.log.Debug("generated submeshes",
		zap.Int("splits", len(r.splits)),
		zap.Int("submeshes", len(r.submeshes)))
	return nil
}
