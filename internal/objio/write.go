package objio

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/Faultbox/meshrefine/internal/pipeline"
)

// SaveFile writes refined meshes to an OBJ file.
func SaveFile(path string, results []*pipeline.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create OBJ file: %w", err)
	}
	if err := Write(f, results); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Write encodes refined meshes as OBJ. Every split becomes its own object.
// Submeshes are written as usemtl runs.
func Write(w io.Writer, results []*pipeline.Result) error {
	bw := bufio.NewWriter(w)
	// OBJ indices are 1-based across the whole file, one counter per stream
	vBase, tBase, nBase := 1, 1, 1

	for _, res := range results {
		out := &res.Output
		for _, p := range out.Points {
			fmt.Fprintf(bw, "v %g %g %g\n", p[0], p[1], p[2])
		}
		for _, uv := range out.UV {
			fmt.Fprintf(bw, "vt %g %g\n", uv[0], uv[1])
		}
		for _, n := range out.Normals {
			fmt.Fprintf(bw, "vn %g %g %g\n", n[0], n[1], n[2])
		}
		fw := faceWriter{w: bw, uv: len(out.UV) > 0, normals: len(out.Normals) > 0,
			vBase: vBase, tBase: tBase, nBase: nBase}

		indexOffset, faceOffset, sub := 0, 0, 0
		for si, s := range res.Splits {
			fmt.Fprintf(bw, "o %s_%d\n", res.Name, si)
			switch {
			case len(res.Submeshes) > 0:
				for _, m := range res.Submeshes[sub : sub+s.NumSubmeshes] {
					if m.MaterialID >= 0 && m.MaterialID < len(res.Materials) {
						fmt.Fprintf(bw, "usemtl %s\n", res.Materials[m.MaterialID])
					}
					fw.triangles(out.Indices[m.Offset : m.Offset+m.NumIndicesTriangulated])
				}
				indexOffset += s.NumIndicesTriangulated
				sub += s.NumSubmeshes
			case res.Triangulated:
				fw.triangles(out.Indices[indexOffset : indexOffset+s.NumIndicesTriangulated])
				indexOffset += s.NumIndicesTriangulated
			default:
				for _, c := range res.Counts[faceOffset : faceOffset+s.NumFaces] {
					fw.face(out.Indices[indexOffset : indexOffset+c])
					indexOffset += c
				}
			}
			faceOffset += s.NumFaces
			fw.advance(s.NumVertices)
		}
		vBase, tBase, nBase = fw.vBase, fw.tBase, fw.nBase
	}
	return bw.Flush()
}

// faceWriter writes split-local indices as file-global OBJ references.
type faceWriter struct {
	w       *bufio.Writer
	uv      bool
	normals bool

	vBase, tBase, nBase int
}

// advance moves past a split of n vertices.
func (fw *faceWriter) advance(n int) {
	fw.vBase += n
	if fw.uv {
		fw.tBase += n
	}
	if fw.normals {
		fw.nBase += n
	}
}

func (fw *faceWriter) triangles(indices []int) {
	for i := 0; i+2 < len(indices); i += 3 {
		fw.face(indices[i : i+3])
	}
}

func (fw *faceWriter) face(indices []int) {
	fw.w.WriteString("f")
	for _, ni := range indices {
		v, t, n := ni+fw.vBase, ni+fw.tBase, ni+fw.nBase
		switch {
		case fw.uv && fw.normals:
			fmt.Fprintf(fw.w, " %d/%d/%d", v, t, n)
		case fw.uv:
			fmt.Fprintf(fw.w, " %d/%d", v, t)
		case fw.normals:
			fmt.Fprintf(fw.w, " %d//%d", v, n)
		default:
			fmt.Fprintf(fw.w, " %d", v)
		}
	}
	fw.w.WriteByte('\n')
}
