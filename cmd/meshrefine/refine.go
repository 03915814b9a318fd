package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/meshrefine/internal/batch"
	"github.com/Faultbox/meshrefine/internal/config"
	"github.com/Faultbox/meshrefine/internal/logger"
	"github.com/Faultbox/meshrefine/internal/pipeline"
)

func newRefineCmd(getConfig func() *config.Config) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "refine <input>... -o <output>",
		Short: "Refine meshes and write them as glTF, GLB or OBJ",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig()
			log := logger.Named("refine")

			var sources []*pipeline.Source
			for _, path := range args {
				in, err := loadInput(path)
				if err != nil {
					return err
				}
				log.Info("loaded", zap.String("path", path), zap.Int("meshes", len(in.sources)))
				sources = append(sources, in.sources...)
			}

			results, err := batch.Run(cmd.Context(), sources, cfg, log)
			if err != nil {
				return err
			}
			if err := saveOutput(output, results); err != nil {
				logger.Error("write failed", zap.String("path", output), zap.Error(err))
				return fmt.Errorf("writing %s: %w", output, err)
			}

			s := batch.Summarize(results)
			fmt.Fprintf(cmd.OutOrStdout(), "%d meshes, %d faces -> %d vertices in %d splits, %d submeshes\n",
				s.Meshes, s.Faces, s.OutputVertices, s.Splits, s.Submeshes)
			if s.OversizedFaces > 0 {
				logger.Warn("faces exceeded the split budget",
					zap.Int("faces", s.OversizedFaces),
					zap.Int("split_unit", cfg.Refine.SplitUnit))
				fmt.Fprintf(cmd.OutOrStdout(), "%d faces exceeded the split budget\n", s.OversizedFaces)
			}
			logger.Info("wrote output", zap.String("path", output), zap.Duration("refine_time", s.RefineTime))
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "out.glb", "Output file (.glb, .gltf or .obj)")
	return cmd
}
