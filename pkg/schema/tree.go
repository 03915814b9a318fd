// Package schema holds the scene hierarchy that meshes are imported from.
// Nodes live in an arena and refer to each other by ID.
package schema

import "strings"

// NodeID identifies a node within its Tree.
type NodeID int32

// InvalidNode is returned for missing parents and out-of-range children.
const InvalidNode NodeID = -1

// Kind is the type of a scene node.
type Kind uint8

// Node kinds.
const (
	KindXform Kind = iota // Transform-only node
	KindMesh              // Node carrying a mesh
	KindCamera
)

func (k Kind) String() string {
	switch k {
	case KindXform:
		return "Xform"
	case KindMesh:
		return "Mesh"
	case KindCamera:
		return "Camera"
	default:
		return "Unknown"
	}
}

type node struct {
	name     string
	kind     Kind
	parent   NodeID
	children []NodeID
	mesh     int
}

// Tree is an acyclic scene hierarchy. The zero value is an empty tree.
type Tree struct {
	nodes []node
	roots []NodeID
}

// New creates an empty tree.
func New() *Tree {
	return &Tree{}
}

// Add appends a node under parent and returns its ID. Pass InvalidNode to add
// a root. Adding under an unknown parent also adds a root.
func (t *Tree) Add(parent NodeID, name string, kind Kind) NodeID {
	id := NodeID(len(t.nodes))
	if !t.valid(parent) {
		parent = InvalidNode
	}
	t.nodes = append(t.nodes, node{name: name, kind: kind, parent: parent, mesh: -1})
	if parent == InvalidNode {
		t.roots = append(t.roots, id)
	} else {
		t.nodes[parent].children = append(t.nodes[parent].children, id)
	}
	return id
}

func (t *Tree) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(t.nodes)
}

// Len returns the number of nodes.
func (t *Tree) Len() int { return len(t.nodes) }

// Roots returns the top-level nodes in insertion order.
func (t *Tree) Roots() []NodeID { return t.roots }

// Parent returns the parent of id, or InvalidNode for roots.
func (t *Tree) Parent(id NodeID) NodeID {
	if !t.valid(id) {
		return InvalidNode
	}
	return t.nodes[id].parent
}

// NumChildren returns the number of direct children of id.
func (t *Tree) NumChildren(id NodeID) int {
	if !t.valid(id) {
		return 0
	}
	return len(t.nodes[id].children)
}

// Child returns the i-th child of id, or InvalidNode when out of range.
func (t *Tree) Child(id NodeID, i int) NodeID {
	if !t.valid(id) || i < 0 || i >= len(t.nodes[id].children) {
		return InvalidNode
	}
	return t.nodes[id].children[i]
}

// Name returns the node name.
func (t *Tree) Name(id NodeID) string {
	if !t.valid(id) {
		return ""
	}
	return t.nodes[id].name
}

// Kind returns the node kind.
func (t *Tree) Kind(id NodeID) Kind {
	if !t.valid(id) {
		return KindXform
	}
	return t.nodes[id].kind
}

// SetMesh links id to a mesh index of the owning scene.
func (t *Tree) SetMesh(id NodeID, mesh int) {
	if t.valid(id) {
		t.nodes[id].mesh = mesh
	}
}

// Mesh returns the mesh index linked to id, or -1.
func (t *Tree) Mesh(id NodeID) int {
	if !t.valid(id) {
		return -1
	}
	return t.nodes[id].mesh
}

// Path returns the slash-separated names from the root down to id.
func (t *Tree) Path(id NodeID) string {
	if !t.valid(id) {
		return ""
	}
	var names []string
	for n := id; n != InvalidNode; n = t.nodes[n].parent {
		names = append(names, t.nodes[n].name)
	}
	var b strings.Builder
	for i := len(names) - 1; i >= 0; i-- {
		b.WriteByte('/')
		b.WriteString(names[i])
	}
	return b.String()
}

// Walk visits every node depth-first, parents before children. Returning
// false from fn skips the children of that node.
func (t *Tree) Walk(fn func(id NodeID, depth int) bool) {
	for _, r := range t.roots {
		t.walk(r, 0, fn)
	}
}

func (t *Tree) walk(id NodeID, depth int, fn func(NodeID, int) bool) {
	if !fn(id, depth) {
		return
	}
	for _, c := range t.nodes[id].children {
		t.walk(c, depth+1, fn)
	}
}
