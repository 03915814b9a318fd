// Package objio reads and writes Wavefront OBJ meshes. Polygons are kept as
// n-gons so that the refiner sees the authored topology.
package objio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Faultbox/meshrefine/internal/pipeline"
	"github.com/Faultbox/meshrefine/pkg/math"
)

// ErrMalformed is returned for lines that cannot be parsed.
var ErrMalformed = errors.New("malformed OBJ")

// LoadFile loads an OBJ file from disk. The mesh is named after the first
// object or group, or the file name when there is none.
func LoadFile(path string) (*pipeline.Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open OBJ file: %w", err)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Load(f, name)
}

// Load parses an OBJ from a reader.
//
// Positions become the point buffer. Texture coordinates and normals are
// resolved per corner, since OBJ indexes them independently of positions.
// Vertex colors given as "v x y z r g b" become per-vertex colors.
func Load(r io.Reader, name string) (*pipeline.Source, error) {
	src := &pipeline.Source{Name: name}

	// OBJ streams, indexed separately (1-based in the file)
	var uvs []math.Vec2
	var normals []math.Vec3
	var colors []math.Vec4
	var cornerUV []math.Vec2
	var cornerNormals []math.Vec3
	hasUV, hasNormals := false, false

	materialIDs := map[string]int{}
	currentMaterial := -1
	usedMaterials := false
	named := false

	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if len(line) == 0 || line[0] == '#' {
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "v": // Vertex position, optionally followed by a color
			if len(fields) < 4 {
				return nil, fmt.Errorf("%w: line %d: vertex needs x y z", ErrMalformed, lineNum)
			}
			vals, err := parseFloats(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, lineNum, err)
			}
			src.Points = append(src.Points, math.Vec3{vals[0], vals[1], vals[2]})
			if len(vals) >= 6 {
				for len(colors) < len(src.Points)-1 {
					colors = append(colors, math.Vec4{1, 1, 1, 1})
				}
				colors = append(colors, math.Vec4{vals[3], vals[4], vals[5], 1})
			}

		case "vt": // Texture coordinate
			if len(fields) < 3 {
				return nil, fmt.Errorf("%w: line %d: texture coord needs u v", ErrMalformed, lineNum)
			}
			vals, err := parseFloats(fields[1:3])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, lineNum, err)
			}
			uvs = append(uvs, math.Vec2{vals[0], vals[1]})

		case "vn": // Vertex normal
			if len(fields) < 4 {
				return nil, fmt.Errorf("%w: line %d: normal needs x y z", ErrMalformed, lineNum)
			}
			vals, err := parseFloats(fields[1:4])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, lineNum, err)
			}
			normals = append(normals, math.Normalize(math.Vec3{vals[0], vals[1], vals[2]}))

		case "f": // Face
			if len(fields) < 4 {
				return nil, fmt.Errorf("%w: line %d: face needs at least 3 vertices", ErrMalformed, lineNum)
			}
			for _, fv := range fields[1:] {
				posIdx, uvIdx, normalIdx, err := parseFaceVertex(fv)
				if err != nil {
					return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, lineNum, err)
				}

				// Convert to 0-indexed, handle negative indices
				vi := resolveIndex(posIdx, len(src.Points))
				if vi < 0 || vi >= len(src.Points) {
					return nil, fmt.Errorf("%w: line %d: position index %d out of range", ErrMalformed, lineNum, posIdx)
				}
				src.Indices = append(src.Indices, vi)

				var uv math.Vec2
				if uvIdx != 0 {
					ti := resolveIndex(uvIdx, len(uvs))
					if ti < 0 || ti >= len(uvs) {
						return nil, fmt.Errorf("%w: line %d: texture index %d out of range", ErrMalformed, lineNum, uvIdx)
					}
					uv = uvs[ti]
					hasUV = true
				}
				cornerUV = append(cornerUV, uv)

				var n math.Vec3
				if normalIdx != 0 {
					ni := resolveIndex(normalIdx, len(normals))
					if ni < 0 || ni >= len(normals) {
						return nil, fmt.Errorf("%w: line %d: normal index %d out of range", ErrMalformed, lineNum, normalIdx)
					}
					n = normals[ni]
					hasNormals = true
				}
				cornerNormals = append(cornerNormals, n)
			}
			src.Counts = append(src.Counts, len(fields)-1)
			src.MaterialIDs = append(src.MaterialIDs, currentMaterial)

		case "o", "g": // Object/group name (use as mesh name)
			if len(fields) > 1 && !named {
				src.Name = fields[1]
				named = true
			}

		case "usemtl":
			if len(fields) < 2 {
				return nil, fmt.Errorf("%w: line %d: usemtl needs a name", ErrMalformed, lineNum)
			}
			id, ok := materialIDs[fields[1]]
			if !ok {
				id = len(src.Materials)
				materialIDs[fields[1]] = id
				src.Materials = append(src.Materials, fields[1])
			}
			currentMaterial = id
			usedMaterials = true

		default:
			// mtllib, s and unknown directives are ignored
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading OBJ: %w", err)
	}

	if hasUV {
		src.UV = cornerUV
	}
	if hasNormals {
		src.Normals = cornerNormals
	}
	if len(colors) > 0 {
		for len(colors) < len(src.Points) {
			colors = append(colors, math.Vec4{1, 1, 1, 1})
		}
		src.Colors = colors
	}
	if !usedMaterials {
		src.MaterialIDs = nil
	}
	return src, nil
}

func parseFloats(fields []string) ([]float32, error) {
	vals := make([]float32, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", f)
		}
		vals[i] = float32(v)
	}
	return vals, nil
}

// parseFaceVertex parses a face vertex in format: v, v/vt, v/vt/vn, or v//vn
// Returns 1-indexed values (0 means not specified)
func parseFaceVertex(s string) (pos, uv, normal int, err error) {
	parts := strings.Split(s, "/")

	pos, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid vertex index: %s", parts[0])
	}
	if len(parts) > 1 && parts[1] != "" {
		uv, err = strconv.Atoi(parts[1])
		if err != nil {
			return 0, 0, 0, fmt.Errorf("invalid texture index: %s", parts[1])
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		normal, err = strconv.Atoi(parts[2])
		if err != nil {
			return 0, 0, 0, fmt.Errorf("invalid normal index: %s", parts[2])
		}
	}
	return pos, uv, normal, nil
}

// resolveIndex converts OBJ 1-indexed (or negative) index to 0-indexed.
// Returns -1 if index was 0 (not specified).
func resolveIndex(idx, count int) int {
	if idx == 0 {
		return -1
	}
	if idx < 0 {
		return count + idx
	}
	return idx - 1
}
