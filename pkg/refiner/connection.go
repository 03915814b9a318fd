package refiner

// Connection is a compressed-sparse-row index from points to the corners
// that reference them. The incidences of point v live in
// [Offsets[v], Offsets[v]+Counts[v]) of Faces and Indices, in face-then-corner order.
type Connection struct {
	Counts  []int
	Offsets []int
	// Faces holds the face of each incidence.
	Faces []int
	// Indices holds the corner (position in the index buffer) of each incidence.
	Indices []int
}

// Incidences returns the CSR range of point v.
func (c *Connection) Incidences(v int) (faces, corners []int) {
	o := c.Offsets[v]
	n := c.Counts[v]
	return c.Faces[o : o+n], c.Indices[o : o+n]
}

// BuildConnection builds the point-to-face index. It is a no-op when the
// index is already built for the current mesh.
func (r *Refiner) BuildConnection() error {
	if err := r.validateTopology(); err != nil {
		return err
	}
	numPoints := len(r.points)
	if r.conn.Counts != nil && len(r.conn.Counts) == numPoints {
		return nil
	}
	numIndices := len(r.indices)

	counts := make([]int, numPoints)
	offsets := make([]int, numPoints)
	faces := make([]int, numIndices)
	corners := make([]int, numIndices)

	for _, vi := range r.indices {
		counts[vi]++
	}

	offset := 0
	for v, n := range counts {
		offsets[v] = offset
		offset += n
	}

	bump := make([]int, numPoints)
	k := 0
	for fi, c := range r.counts {
		for ci := 0; ci < c; ci++ {
			vi := r.indices[k]
			slot := offsets[vi] + bump[vi]
			bump[vi]++
			faces[slot] = fi
			corners[slot] = k
			k++
		}
	}

	r.conn = Connection{Counts: counts, Offsets: offsets, Faces: faces, Indices: corners}
	return nil
}

// Connection returns the point-to-face index, empty until BuildConnection.
func (r *Refiner) Connection() Connection { return r.conn }
