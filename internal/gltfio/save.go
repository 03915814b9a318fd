package gltfio

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/meshrefine/internal/pipeline"
	"github.com/Faultbox/meshrefine/pkg/refiner"
)

// Save writes refined meshes to path. A .glb extension selects the binary
// container; otherwise the buffer goes to a .bin file beside path.
func Save(path string, results []*pipeline.Result) error {
	doc, err := ToDocument(results)
	if err != nil {
		return err
	}
	if strings.EqualFold(filepath.Ext(path), ".glb") {
		return gltf.SaveBinary(doc, path)
	}
	// .gltf keeps its buffer in a sidecar file next to it
	if len(doc.Buffers) > 0 {
		doc.Buffers[0].URI = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + ".bin"
	}
	return gltf.Save(doc, path)
}

// ToDocument encodes refined meshes. Each result becomes one node and one
// mesh; each split becomes one primitive per submesh, or a single primitive
// when the result has no submeshes. Results must be triangulated.
func ToDocument(results []*pipeline.Result) (*gltf.Document, error) {
	doc := gltf.NewDocument()
	doc.Asset.Generator = "meshrefine"
	materials := map[string]int{}

	materialIndex := func(name string) int {
		if idx, ok := materials[name]; ok {
			return idx
		}
		idx := len(doc.Materials)
		doc.Materials = append(doc.Materials, &gltf.Material{Name: name})
		materials[name] = idx
		return idx
	}

	for _, res := range results {
		if !res.Triangulated {
			return nil, fmt.Errorf("%w: %s is not triangulated", ErrUnsupported, res.Name)
		}
		mesh := &gltf.Mesh{Name: res.Name}
		out := &res.Output

		vBase, triOffset, sub := 0, 0, 0
		for _, s := range res.Splits {
			attrs := writeAttributes(doc, out, vBase, vBase+s.NumVertices)

			if len(res.Submeshes) == 0 {
				indices := toUint32(out.Indices[triOffset : triOffset+s.NumIndicesTriangulated])
				mesh.Primitives = append(mesh.Primitives, &gltf.Primitive{
					Attributes: attrs,
					Indices:    gltf.Index(modeler.WriteIndices(doc, indices)),
				})
			}
			for _, m := range res.Submeshes[sub : sub+s.NumSubmeshes] {
				indices := toUint32(out.Indices[m.Offset : m.Offset+m.NumIndicesTriangulated])
				prim := &gltf.Primitive{
					Attributes: attrs,
					Indices:    gltf.Index(modeler.WriteIndices(doc, indices)),
				}
				if m.MaterialID >= 0 && m.MaterialID < len(res.Materials) {
					prim.Material = gltf.Index(materialIndex(res.Materials[m.MaterialID]))
				}
				mesh.Primitives = append(mesh.Primitives, prim)
			}

			vBase += s.NumVertices
			triOffset += s.NumIndicesTriangulated
			sub += s.NumSubmeshes
		}

		doc.Meshes = append(doc.Meshes, mesh)
		doc.Nodes = append(doc.Nodes, &gltf.Node{Name: res.Name, Mesh: gltf.Index(len(doc.Meshes) - 1)})
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, len(doc.Nodes)-1)
	}
	return doc, nil
}

// writeAttributes writes the vertex range [from, to) of every present stream.
func writeAttributes(doc *gltf.Document, out *refiner.Output, from, to int) map[string]int {
	attrs := map[string]int{}

	points := make([][3]float32, 0, to-from)
	for _, p := range out.Points[from:to] {
		points = append(points, p)
	}
	attrs[gltf.POSITION] = modeler.WritePosition(doc, points)

	if len(out.Normals) >= to {
		normals := make([][3]float32, 0, to-from)
		for _, n := range out.Normals[from:to] {
			normals = append(normals, n)
		}
		attrs[gltf.NORMAL] = modeler.WriteNormal(doc, normals)
	}
	if len(out.UV) >= to {
		uv := make([][2]float32, 0, to-from)
		for _, t := range out.UV[from:to] {
			uv = append(uv, t)
		}
		attrs[gltf.TEXCOORD_0] = modeler.WriteTextureCoord(doc, uv)
	}
	if len(out.Tangents) >= to {
		tangents := make([][4]float32, 0, to-from)
		for _, t := range out.Tangents[from:to] {
			tangents = append(tangents, t)
		}
		attrs[gltf.TANGENT] = modeler.WriteTangent(doc, tangents)
	}
	if len(out.Colors) >= to {
		colors := make([][4]float32, 0, to-from)
		for _, c := range out.Colors[from:to] {
			colors = append(colors, c)
		}
		attrs[gltf.COLOR_0] = modeler.WriteColor(doc, colors)
	}
	if len(out.Weights4) >= to {
		joints := make([][4]uint16, 0, to-from)
		weights := make([][4]float32, 0, to-from)
		for _, w := range out.Weights4[from:to] {
			var j [4]uint16
			for k, idx := range w.Indices {
				j[k] = uint16(idx)
			}
			joints = append(joints, j)
			weights = append(weights, w.Weights)
		}
		attrs[gltf.JOINTS_0] = modeler.WriteJoints(doc, joints)
		attrs[gltf.WEIGHTS_0] = modeler.WriteWeights(doc, weights)
	}
	return attrs
}

func toUint32(indices []int) []uint32 {
	out := make([]uint32, len(indices))
	for i, v := range indices {
		out[i] = uint32(v)
	}
	return out
}
