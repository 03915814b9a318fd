// Package gltfio imports glTF meshes as refiner sources and exports refined
// meshes as glTF or GLB.
package gltfio

import (
	"errors"
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/meshrefine/internal/pipeline"
	"github.com/Faultbox/meshrefine/pkg/math"
	"github.com/Faultbox/meshrefine/pkg/schema"
)

// ErrUnsupported is returned for glTF content that cannot be refined.
var ErrUnsupported = errors.New("unsupported glTF content")

// Scene is an imported glTF document.
type Scene struct {
	// Tree mirrors the node hierarchy. Mesh nodes link to Meshes by index.
	Tree   *schema.Tree
	Meshes []*pipeline.Source
}

// Load opens a .gltf or .glb file.
func Load(path string) (*Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	return FromDocument(doc)
}

// FromDocument converts a decoded glTF document. Every glTF mesh becomes one
// source; its triangle primitives are merged and keep their material as the
// per-face material ID.
func FromDocument(doc *gltf.Document) (*Scene, error) {
	s := &Scene{Tree: schema.New()}

	materials := make([]string, len(doc.Materials))
	for i, m := range doc.Materials {
		materials[i] = m.Name
		if materials[i] == "" {
			materials[i] = fmt.Sprintf("material_%d", i)
		}
	}

	for i, m := range doc.Meshes {
		src, err := readMesh(doc, m, materials)
		if err != nil {
			return nil, fmt.Errorf("mesh %d: %w", i, err)
		}
		if src.Name == "" {
			src.Name = fmt.Sprintf("mesh_%d", i)
		}
		s.Meshes = append(s.Meshes, src)
	}

	buildTree(doc, s.Tree)
	return s, nil
}

// primitive holds the streams of one triangle primitive.
type primitive struct {
	points   [][3]float32
	normals  [][3]float32
	uv       [][2]float32
	tangents [][4]float32
	colors   []math.Vec4
	joints   [][4]uint16
	weights  [][4]float32
	indices  []uint32
	material int
}

func readMesh(doc *gltf.Document, m *gltf.Mesh, materials []string) (*pipeline.Source, error) {
	var prims []primitive
	for pi, p := range m.Primitives {
		if p.Mode != gltf.PrimitiveTriangles && p.Mode != 0 {
			return nil, fmt.Errorf("%w: primitive %d has mode %v", ErrUnsupported, pi, p.Mode)
		}
		prim, err := readPrimitive(doc, p)
		if err != nil {
			return nil, fmt.Errorf("primitive %d: %w", pi, err)
		}
		prims = append(prims, prim)
	}

	src := &pipeline.Source{Name: m.Name}
	all := func(has func(*primitive) bool) bool {
		for i := range prims {
			if !has(&prims[i]) {
				return false
			}
		}
		return len(prims) > 0
	}
	hasNormals := all(func(p *primitive) bool { return len(p.normals) > 0 })
	hasUV := all(func(p *primitive) bool { return len(p.uv) > 0 })
	hasTangents := all(func(p *primitive) bool { return len(p.tangents) > 0 })
	hasColors := all(func(p *primitive) bool { return len(p.colors) > 0 })
	hasSkin := all(func(p *primitive) bool { return len(p.joints) > 0 && len(p.weights) > 0 })
	hasMaterials := false

	for _, p := range prims {
		base := len(src.Points)
		for _, v := range p.points {
			src.Points = append(src.Points, math.Vec3(v))
		}
		if hasNormals {
			for _, n := range p.normals {
				src.Normals = append(src.Normals, math.Vec3(n))
			}
		}
		if hasUV {
			for _, uv := range p.uv {
				src.UV = append(src.UV, math.Vec2(uv))
			}
		}
		if hasTangents {
			for _, t := range p.tangents {
				src.Tangents = append(src.Tangents, math.Vec4(t))
			}
		}
		if hasColors {
			src.Colors = append(src.Colors, p.colors...)
		}
		if hasSkin {
			for i := range p.joints {
				var w math.Weights4
				for k := 0; k < 4; k++ {
					w.Indices[k] = int32(p.joints[i][k])
					w.Weights[k] = p.weights[i][k]
				}
				src.Weights4 = append(src.Weights4, w)
			}
		}

		if p.indices == nil {
			p.indices = make([]uint32, len(p.points))
			for i := range p.indices {
				p.indices[i] = uint32(i)
			}
		}
		if len(p.indices)%3 != 0 {
			return nil, fmt.Errorf("%w: %d indices do not form triangles", ErrUnsupported, len(p.indices))
		}
		for _, vi := range p.indices {
			src.Indices = append(src.Indices, base+int(vi))
		}
		for i := 0; i < len(p.indices)/3; i++ {
			src.MaterialIDs = append(src.MaterialIDs, p.material)
		}
		if p.material >= 0 {
			hasMaterials = true
		}
	}

	if hasMaterials {
		src.Materials = materials
	} else {
		src.MaterialIDs = nil
	}
	return src, nil
}

func readPrimitive(doc *gltf.Document, p *gltf.Primitive) (primitive, error) {
	prim := primitive{material: -1}
	if p.Material != nil {
		prim.material = *p.Material
	}

	posIdx, ok := p.Attributes[gltf.POSITION]
	if !ok {
		return prim, fmt.Errorf("%w: no POSITION attribute", ErrUnsupported)
	}
	acr, err := accessor(doc, posIdx)
	if err != nil {
		return prim, fmt.Errorf("positions: %w", err)
	}
	if prim.points, err = modeler.ReadPosition(doc, acr, nil); err != nil {
		return prim, fmt.Errorf("positions: %w", err)
	}
	if idx, ok := p.Attributes[gltf.NORMAL]; ok {
		if acr, err = accessor(doc, idx); err == nil {
			prim.normals, err = modeler.ReadNormal(doc, acr, nil)
		}
		if err != nil {
			return prim, fmt.Errorf("normals: %w", err)
		}
	}
	if idx, ok := p.Attributes[gltf.TEXCOORD_0]; ok {
		if acr, err = accessor(doc, idx); err == nil {
			prim.uv, err = modeler.ReadTextureCoord(doc, acr, nil)
		}
		if err != nil {
			return prim, fmt.Errorf("uv: %w", err)
		}
	}
	if idx, ok := p.Attributes[gltf.TANGENT]; ok {
		if acr, err = accessor(doc, idx); err == nil {
			prim.tangents, err = modeler.ReadTangent(doc, acr, nil)
		}
		if err != nil {
			return prim, fmt.Errorf("tangents: %w", err)
		}
	}
	if idx, ok := p.Attributes[gltf.COLOR_0]; ok {
		if acr, err = accessor(doc, idx); err == nil {
			prim.colors, err = readColors(doc, acr)
		}
		if err != nil {
			return prim, fmt.Errorf("colors: %w", err)
		}
	}
	jointIdx, hasJoints := p.Attributes[gltf.JOINTS_0]
	weightIdx, hasWeights := p.Attributes[gltf.WEIGHTS_0]
	if hasJoints && hasWeights {
		if acr, err = accessor(doc, jointIdx); err == nil {
			prim.joints, err = modeler.ReadJoints(doc, acr, nil)
		}
		if err != nil {
			return prim, fmt.Errorf("joints: %w", err)
		}
		if acr, err = accessor(doc, weightIdx); err == nil {
			prim.weights, err = modeler.ReadWeights(doc, acr, nil)
		}
		if err != nil {
			return prim, fmt.Errorf("weights: %w", err)
		}
	}
	if p.Indices != nil {
		if acr, err = accessor(doc, *p.Indices); err == nil {
			prim.indices, err = modeler.ReadIndices(doc, acr, nil)
		}
		if err != nil {
			return prim, fmt.Errorf("indices: %w", err)
		}
	}
	return prim, prim.check()
}

// accessor returns doc.Accessors[idx], or ErrUnsupported for a dangling index.
func accessor(doc *gltf.Document, idx int) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, fmt.Errorf("%w: accessor %d out of range", ErrUnsupported, idx)
	}
	return doc.Accessors[idx], nil
}

// check verifies that every present stream has one element per point and
// that the indices address existing points.
func (p *primitive) check() error {
	n := len(p.points)
	streams := []struct {
		name string
		len  int
	}{
		{"normals", len(p.normals)},
		{"uv", len(p.uv)},
		{"tangents", len(p.tangents)},
		{"colors", len(p.colors)},
		{"joints", len(p.joints)},
		{"weights", len(p.weights)},
	}
	for _, s := range streams {
		if s.len != 0 && s.len != n {
			return fmt.Errorf("%w: %d %s for %d positions", ErrUnsupported, s.len, s.name, n)
		}
	}
	for _, vi := range p.indices {
		if int(vi) >= n {
			return fmt.Errorf("%w: index %d out of range for %d positions", ErrUnsupported, vi, n)
		}
	}
	return nil
}

// readColors reads COLOR_0 in any of the encodings glTF allows.
func readColors(doc *gltf.Document, acr *gltf.Accessor) ([]math.Vec4, error) {
	data, err := modeler.ReadAccessor(doc, acr, nil)
	if err != nil {
		return nil, err
	}
	switch c := data.(type) {
	case [][4]float32:
		out := make([]math.Vec4, len(c))
		for i, v := range c {
			out[i] = math.Vec4(v)
		}
		return out, nil
	case [][3]float32:
		out := make([]math.Vec4, len(c))
		for i, v := range c {
			out[i] = math.Vec4{v[0], v[1], v[2], 1}
		}
		return out, nil
	case [][4]uint8:
		out := make([]math.Vec4, len(c))
		for i, v := range c {
			out[i] = math.Vec4{float32(v[0]) / 255, float32(v[1]) / 255, float32(v[2]) / 255, float32(v[3]) / 255}
		}
		return out, nil
	case [][4]uint16:
		out := make([]math.Vec4, len(c))
		for i, v := range c {
			out[i] = math.Vec4{float32(v[0]) / 65535, float32(v[1]) / 65535, float32(v[2]) / 65535, float32(v[3]) / 65535}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: color accessor of type %T", ErrUnsupported, data)
	}
}

// buildTree mirrors the node hierarchy of the default scene, or of all
// parentless nodes when there is none.
func buildTree(doc *gltf.Document, tree *schema.Tree) {
	var roots []int
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		roots = doc.Scenes[*doc.Scene].Nodes
	} else {
		hasParent := make([]bool, len(doc.Nodes))
		for _, n := range doc.Nodes {
			for _, c := range n.Children {
				if c < len(hasParent) {
					hasParent[c] = true
				}
			}
		}
		for i := range doc.Nodes {
			if !hasParent[i] {
				roots = append(roots, i)
			}
		}
	}

	visited := make([]bool, len(doc.Nodes))
	var add func(parent schema.NodeID, idx int)
	add = func(parent schema.NodeID, idx int) {
		if idx < 0 || idx >= len(doc.Nodes) || visited[idx] {
			return
		}
		visited[idx] = true
		n := doc.Nodes[idx]

		name := n.Name
		if name == "" {
			name = fmt.Sprintf("node_%d", idx)
		}
		kind := schema.KindXform
		switch {
		case n.Mesh != nil:
			kind = schema.KindMesh
		case n.Camera != nil:
			kind = schema.KindCamera
		}

		id := tree.Add(parent, name, kind)
		if n.Mesh != nil {
			tree.SetMesh(id, *n.Mesh)
		}
		for _, c := range n.Children {
			add(id, c)
		}
	}
	for _, r := range roots {
		add(schema.InvalidNode, r)
	}
}
