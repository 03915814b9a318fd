// Package refiner converts authoring-style polygon meshes into GPU-ready
// meshes: attributes become per-vertex, vertices are deduplicated across
// seams, faces are split by a vertex budget, fan-triangulated and optionally
// grouped into per-material submeshes.
//
// A Refiner is used as a staged pipeline:
//
//	r := refiner.New(refiner.Settings{SplitUnit: 65000, Triangulate: true})
//	r.Prepare(counts, indices, points)
//	r.SetUV(uv)
//	r.GenNormalsWithSmoothAngle(60)
//	r.Refine(true)
//	r.GenSubmeshes(materialIDs)
//	r.SwapNewData(&out)
//
// A Refiner is not safe for concurrent use. Distinct instances are independent.
package refiner

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/meshrefine/pkg/math"
	"github.com/Faultbox/meshrefine/pkg/meshutil"
)

// Settings controls refinement.
type Settings struct {
	// SplitUnit is the vertex budget of a split. 0 disables splitting.
	SplitUnit int
	// Triangulate emits fan-triangulated indices.
	Triangulate bool
	// SwapFaces inverts the winding of emitted faces.
	SwapFaces bool
}

// Split is a contiguous group of faces emitted as one output sub-buffer.
// All counts are local to the split.
type Split struct {
	NumFaces               int
	NumVertices            int
	NumIndices             int
	NumIndicesTriangulated int
	NumSubmeshes           int
}

// Submesh is a contiguous run of triangulated indices sharing one material.
type Submesh struct {
	// MaterialID is -1 for faces without a material.
	MaterialID             int
	NumIndicesTriangulated int
	// Offset is the position of the run in the submesh index buffer.
	Offset int
}

// Stats summarizes the last refinement.
type Stats struct {
	Points         int
	Faces          int
	Corners        int
	OutputVertices int
	Splits         int
	Submeshes      int
	// OversizedFaces counts faces with more corners than SplitUnit.
	// Each is emitted alone in its own split.
	OversizedFaces int
}

// Option configures a Refiner.
type Option func(*Refiner)

// WithLogger sets the logger used for diagnostics.
func WithLogger(log *zap.Logger) Option {
	return func(r *Refiner) {
		if log != nil {
			r.log = log
		}
	}
}

// Refiner holds the input views, intermediate buffers and outputs of one mesh.
type Refiner struct {
	Settings Settings

	log *zap.Logger

	// borrowed input
	counts   []int
	indices  []int
	points   []math.Vec3
	normals  []math.Vec3
	uv       []math.Vec2
	colors   []math.Vec4
	tangents []math.Vec4
	weights4 []math.Weights4

	countsTmp     []int
	offsets       []int
	numIndicesTri int
	topologyOK    bool

	conn        Connection
	faceNormals []math.Vec3
	normalsTmp  []math.Vec3
	tangentsTmp []math.Vec4

	splits    []Split
	submeshes []Submesh

	newPoints           []math.Vec3
	newNormals          []math.Vec3
	newUV               []math.Vec2
	newColors           []math.Vec4
	newTangents         []math.Vec4
	newWeights4         []math.Weights4
	newIndices          []int
	newIndicesTri       []int
	newIndicesSubmeshes []int
	old2new             []int

	stats Stats
}

// New creates a Refiner with the given settings.
func New(settings Settings, opts ...Option) *Refiner {
	r := &Refiner{
		Settings: settings,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Prepare clears all state and borrows a new mesh. counts may be empty, in
// which case every three indices form a triangle. The slices must stay valid
// and unmodified until SwapNewData.
func (r *Refiner) Prepare(counts, indices []int, points []math.Vec3) {
	r.counts = counts
	r.indices = indices
	r.points = points
	r.normals = nil
	r.uv = nil
	r.colors = nil
	r.tangents = nil
	r.weights4 = nil

	r.countsTmp = nil
	r.offsets = nil
	r.numIndicesTri = 0
	r.topologyOK = false

	r.conn = Connection{}
	r.faceNormals = nil
	r.normalsTmp = nil
	r.tangentsTmp = nil

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

	if len(counts) == 0 {
		numFaces := len(indices) / 3
		r.countsTmp = make([]int, numFaces)
		r.offsets = make([]int, numFaces)
		for i := range r.countsTmp {
			r.countsTmp[i] = 3
			r.offsets[i] = i * 3
		}
		r.counts = r.countsTmp
		r.numIndicesTri = numFaces * 3
		return
	}
	r.offsets, _, r.numIndicesTri = meshutil.CountIndices(counts)
}

// SetNormals sets per-vertex or per-corner normals.
func (r *Refiner) SetNormals(normals []math.Vec3) { r.normals = normals }

// SetUV sets per-vertex or per-corner texture coordinates.
func (r *Refiner) SetUV(uv []math.Vec2) { r.uv = uv }

// SetColors sets per-vertex or per-corner colors.
func (r *Refiner) SetColors(colors []math.Vec4) { r.colors = colors }

// SetTangents sets per-vertex or per-corner tangents. Tangents produced by
// GenTangents take precedence.
func (r *Refiner) SetTangents(tangents []math.Vec4) { r.tangents = tangents }

// SetWeights4 sets per-vertex skin weights.
func (r *Refiner) SetWeights4(weights []math.Weights4) { r.weights4 = weights }

// Counts returns the face sizes, materialized when Prepare got none.
func (r *Refiner) Counts() []int { return r.counts }

// Offsets returns the index offset of every face.
func (r *Refiner) Offsets() []int { return r.offsets }

// NumIndicesTriangulated returns the index count after triangulation.
func (r *Refiner) NumIndicesTriangulated() int { return r.numIndicesTri }

// Normals returns the active normals: the input, or the synthesized buffer.
func (r *Refiner) Normals() []math.Vec3 { return r.normals }

// Tangents returns the active tangents.
func (r *Refiner) Tangents() []math.Vec4 {
	if len(r.tangentsTmp) > 0 {
		return r.tangentsTmp
	}
	return r.tangents
}

// Splits returns the split records of the last refinement.
func (r *Refiner) Splits() []Split { return r.splits }

// Submeshes returns the submesh records of the last GenSubmeshes, in split order.
func (r *Refiner) Submeshes() []Submesh { return r.submeshes }

// Stats returns counters of the last refinement.
func (r *Refiner) Stats() Stats { return r.stats }

// validateTopology checks counts and indices against the point buffer.
func (r *Refiner) validateTopology() error {
	if r.topologyOK {
		return nil
	}
	numPoints := len(r.points)
	total := 0
	for fi, c := range r.counts {
		if c < 3 {
			return fmt.Errorf("%w: face %d has %d corners", ErrInvalidTopology, fi, c)
		}
		total += c
	}
	if total != len(r.indices) {
		return fmt.Errorf("%w: counts sum to %d, got %d indices", ErrInvalidTopology, total, len(r.indices))
	}
	for k, vi := range r.indices {
		if vi < 0 || vi >= numPoints {
			return fmt.Errorf("%w: index %d at corner %d out of range [0,%d)", ErrInvalidTopology, vi, k, numPoints)
		}
	}
	r.topologyOK = true
	return nil
}

// validate checks topology and that every attribute is per-vertex or per-corner.
func (r *Refiner) validate() error {
	if err := r.validateTopology(); err != nil {
		return err
	}
	numPoints, numIndices := len(r.points), len(r.indices)
	check := func(name string, n int) error {
		if n != 0 && n != numPoints && n != numIndices {
			return fmt.Errorf("%w: %s has %d elements, want %d (per-vertex) or %d (per-corner)",
				ErrInvalidAttributeLength, name, n, numPoints, numIndices)
		}
		return nil
	}
	if err := check("normals", len(r.normals)); err != nil {
		return err
	}
	if err := check("uv", len(r.uv)); err != nil {
		return err
	}
	if err := check("colors", len(r.colors)); err != nil {
		return err
	}
	if err := check("tangents", len(r.Tangents())); err != nil {
		return err
	}
	if n := len(r.weights4); n != 0 && n != numPoints {
		return fmt.Errorf("%w: weights4 has %d elements, want %d (per-vertex)",
			ErrInvalidAttributeLength, n, numPoints)
	}
	return nil
}
