package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Faultbox/meshrefine/internal/gltfio"
	"github.com/Faultbox/meshrefine/internal/objio"
	"github.com/Faultbox/meshrefine/internal/pipeline"
	"github.com/Faultbox/meshrefine/pkg/schema"
)

// input is one loaded file.
type input struct {
	path    string
	sources []*pipeline.Source
	tree    *schema.Tree // nil for formats without a hierarchy
}

func loadInput(path string) (*input, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		src, err := objio.LoadFile(path)
		if err != nil {
			return nil, err
		}
		return &input{path: path, sources: []*pipeline.Source{src}}, nil
	case ".gltf", ".glb":
		scene, err := gltfio.Load(path)
		if err != nil {
			return nil, err
		}
		return &input{path: path, sources: scene.Meshes, tree: scene.Tree}, nil
	default:
		return nil, fmt.Errorf("unsupported input format: %s", path)
	}
}

func saveOutput(path string, results []*pipeline.Result) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		return objio.SaveFile(path, results)
	case ".gltf", ".glb":
		return gltfio.Save(path, results)
	default:
		return fmt.Errorf("unsupported output format: %s", path)
	}
}
