// Package pipeline drives one Refiner through the stages selected by the config.
package pipeline

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/meshrefine/internal/config"
	"github.com/Faultbox/meshrefine/pkg/math"
	"github.com/Faultbox/meshrefine/pkg/meshutil"
	"github.com/Faultbox/meshrefine/pkg/refiner"
)

// Source is a polygon mesh as read from a file. Attributes may be
// per-vertex or per-corner; Weights4 is per-vertex.
type Source struct {
	Name     string
	Counts   []int // Empty for triangle lists
	Indices  []int
	Points   []math.Vec3
	Normals  []math.Vec3
	UV       []math.Vec2
	Colors   []math.Vec4
	Tangents []math.Vec4
	Weights4 []math.Weights4

	// MaterialIDs holds one ID per face, -1 for none. Nil when the source
	// has no materials.
	MaterialIDs []int
	// Materials names the IDs of MaterialIDs.
	Materials []string
}

// NumFaces returns the face count, counting triangles when Counts is empty.
func (s *Source) NumFaces() int {
	if len(s.Counts) > 0 {
		return len(s.Counts)
	}
	return len(s.Indices) / 3
}

// Result is a refined mesh ready for export.
type Result struct {
	Name      string
	Output    refiner.Output
	Counts    []int // Face sizes, used when Indices are not triangulated
	Splits    []refiner.Split
	Submeshes []refiner.Submesh
	Materials []string
	Stats     refiner.Stats

	Triangulated bool
	Duration     time.Duration
}

// Run refines src according to cfg. src is not modified.
func Run(ctx context.Context, src *Source, cfg *config.Config, log *zap.Logger) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("mesh", src.Name))
	start := time.Now()

	in := importTransform(src, cfg.Import)
	settings := cfg.RefinerSettings()
	if cfg.Import.SwapHandedness {
		// mirroring flips the winding back
		settings.SwapFaces = !settings.SwapFaces
	}

	r := refiner.New(settings, refiner.WithLogger(log))
	r.Prepare(src.Counts, src.Indices, in.points)
	r.SetNormals(in.normals)
	r.SetUV(src.UV)
	r.SetColors(src.Colors)
	r.SetTangents(in.tangents)
	r.SetWeights4(src.Weights4)

	if err := genNormals(r, cfg.Normals); err != nil {
		return nil, fmt.Errorf("%s: %w", src.Name, err)
	}
	if cfg.Normals.Tangents {
		if len(r.Normals()) == 0 || len(src.UV) == 0 {
			log.Warn("skipping tangents, mesh has no normals or uv")
		} else if err := r.GenTangents(); err != nil {
			return nil, fmt.Errorf("%s: %w", src.Name, err)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := r.Refine(cfg.Refine.Optimize); err != nil {
		return nil, fmt.Errorf("%s: %w", src.Name, err)
	}

	if src.MaterialIDs != nil {
		if settings.Triangulate {
			if err := r.GenSubmeshes(src.MaterialIDs); err != nil {
				return nil, fmt.Errorf("%s: %w", src.Name, err)
			}
		} else {
			log.Warn("skipping submeshes, triangulation is disabled")
		}
	}

	res := &Result{
		Name:         src.Name,
		Counts:       slices.Clone(r.Counts()),
		Splits:       r.Splits(),
		Submeshes:    r.Submeshes(),
		Materials:    src.Materials,
		Stats:        r.Stats(),
		Triangulated: settings.Triangulate,
	}
	r.SwapNewData(&res.Output)
	fillKept(&res.Output, src, in)
	res.Duration = time.Since(start)

	log.Debug("pipeline done",
		zap.Int("vertices", res.Stats.OutputVertices),
		zap.Int("splits", res.Stats.Splits),
		zap.Int("submeshes", res.Stats.Submeshes),
		zap.Duration("took", res.Duration))
	return res, nil
}

// genNormals replaces the source normals unless the mode keeps them.
func genNormals(r *refiner.Refiner, cfg config.NormalsConfig) error {
	switch cfg.Mode {
	case config.NormalsFlat:
		return r.GenNormals()
	case config.NormalsSmooth:
		return r.GenNormalsWithSmoothAngle(cfg.SmoothAngle)
	}
	return nil
}

// imported holds the buffers changed by the import transform.
type imported struct {
	points   []math.Vec3
	normals  []math.Vec3
	tangents []math.Vec4
}

// importTransform scales and mirrors a copy of the source geometry.
func importTransform(src *Source, cfg config.ImportConfig) imported {
	in := imported{points: src.Points, normals: src.Normals, tangents: src.Tangents}
	if cfg.Scale != 1 {
		in.points = slices.Clone(src.Points)
		meshutil.Scale(in.points, cfg.Scale)
	}
	if cfg.SwapHandedness {
		if cfg.Scale == 1 {
			in.points = slices.Clone(src.Points)
		}
		meshutil.InvertX(in.points)
		in.normals = slices.Clone(src.Normals)
		meshutil.InvertX(in.normals)
		in.tangents = slices.Clone(src.Tangents)
		meshutil.InvertXTangents(in.tangents)
	}
	return in
}

// fillKept completes out with the input buffers the refiner kept in place.
func fillKept(out *refiner.Output, src *Source, in imported) {
	if out.Points != nil {
		return
	}
	out.Points = in.points
	if out.Normals == nil {
		out.Normals = in.normals
	}
	if out.Tangents == nil {
		out.Tangents = in.tangents
	}
	out.UV = src.UV
	out.Colors = src.Colors
	out.Weights4 = src.Weights4
}
