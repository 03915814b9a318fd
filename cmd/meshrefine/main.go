// meshrefine converts authoring meshes (OBJ, glTF) into GPU-ready meshes:
// deduplicated vertices, budgeted splits, triangles and per-material submeshes.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/meshrefine/internal/config"
	"github.com/Faultbox/meshrefine/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags *config.Flags
	var cfg *config.Config

	root := &cobra.Command{
		Use:           "meshrefine",
		Short:         "Refine polygon meshes for real-time rendering",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load("", flags)
			if err != nil {
				return err
			}
			if err := logger.FromConfig(cfg.Logging); err != nil {
				return err
			}
			logger.Debug("configuration loaded",
				zap.Int("split_unit", cfg.Refine.SplitUnit),
				zap.String("normals", cfg.Normals.Mode),
				zap.Int("workers", cfg.Batch.Workers))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}
	flags = config.RegisterFlags(root.PersistentFlags())

	getConfig := func() *config.Config { return cfg }
	root.AddCommand(
		newRefineCmd(getConfig),
		newInfoCmd(),
		newConfigCmd(getConfig),
	)
	return root
}
