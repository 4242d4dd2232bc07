package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"assetsync/internal/hostrun"
)

func newMirrorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "mirror",
		Short: "Download published images listed in the metadata records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEnv(cmd.Context(), hostrun.Options{}, func(env *hostrun.Env) error {
				result, err := hostrun.Mirror(cmd.Context(), env)
				if err != nil {
					return fmt.Errorf("mirror sync failed: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Mirrored %d images into %s (%d already present, %d failed)\n",
					result.Downloaded, env.Config.Mirror.Dir, result.Skipped, result.Failed)
				return nil
			})
		},
	}
}
