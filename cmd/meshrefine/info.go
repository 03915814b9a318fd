package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Faultbox/meshrefine/internal/pipeline"
	"github.com/Faultbox/meshrefine/pkg/schema"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <input>",
		Short: "Show meshes, attributes and hierarchy of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := loadInput(args[0])
			if err != nil {
				return err
			}
			printInfo(cmd.OutOrStdout(), in)
			return nil
		},
	}
}

func printInfo(w io.Writer, in *input) {
	fmt.Fprintf(w, "%s: %d meshes\n", in.path, len(in.sources))
	for i, src := range in.sources {
		fmt.Fprintf(w, "  [%d] %s: %d points, %d faces, %d corners\n",
			i, src.Name, len(src.Points), src.NumFaces(), len(src.Indices))
		if attrs := attributes(src); len(attrs) > 0 {
			fmt.Fprintf(w, "      attributes: %s\n", strings.Join(attrs, ", "))
		}
		if len(src.Materials) > 0 {
			fmt.Fprintf(w, "      materials: %s\n", strings.Join(src.Materials, ", "))
		}
	}

	if in.tree == nil || in.tree.Len() == 0 {
		return
	}
	fmt.Fprintln(w, "hierarchy:")
	in.tree.Walk(func(id schema.NodeID, depth int) bool {
		line := fmt.Sprintf("%s%s (%s)", strings.Repeat("  ", depth+1), in.tree.Name(id), in.tree.Kind(id))
		if m := in.tree.Mesh(id); m >= 0 {
			line += fmt.Sprintf(" -> mesh %d", m)
		}
		fmt.Fprintln(w, line)
		return true
	})
}

// attributes lists the attribute streams of src with their layout.
func attributes(src *pipeline.Source) []string {
	layout := func(n int) string {
		if n == len(src.Indices) {
			return "per-corner"
		}
		return "per-vertex"
	}
	var attrs []string
	if len(src.Normals) > 0 {
		attrs = append(attrs, "normals ("+layout(len(src.Normals))+")")
	}
	if len(src.UV) > 0 {
		attrs = append(attrs, "uv ("+layout(len(src.UV))+")")
	}
	if len(src.Colors) > 0 {
		attrs = append(attrs, "colors ("+layout(len(src.Colors))+")")
	}
	if len(src.Tangents) > 0 {
		attrs = append(attrs, "tangents ("+layout(len(src.Tangents))+")")
	}
	if len(src.Weights4) > 0 {
		attrs = append(attrs, "weights")
	}
	return attrs
}
