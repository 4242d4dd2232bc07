package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"assetsync/internal/hostrun"
	"assetsync/internal/services"
)

func newPublishCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Upload inbox files with their variants and write metadata records",
		Long: `Move every supported file from the inbox into the working directories,
upload images (plus resized variants) and static files to the object store,
write a metadata record per asset, and clean the working directories up.

With --dry-run the uploads go to a local directory under the state dir.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEnv(cmd.Context(), hostrun.Options{DryRun: dryRun}, func(env *hostrun.Env) error {
				out := cmd.OutOrStdout()
				summary, err := hostrun.Publish(cmd.Context(), env)
				if err != nil {
					return fmt.Errorf("publish aborted: %w", err)
				}
				fmt.Fprintln(out, summary.String())
				if dryRun {
					fmt.Fprintf(out, "Dry run: objects written to %s\n", env.Config.DryRunDir())
				}

				if summary.Failed() == 0 {
					return nil
				}
				rows := make([][]string, 0, summary.Failed())
				for _, outcome := range summary.Outcomes {
					if outcome.Err == nil {
						continue
					}
					rows = append(rows, []string{outcome.File.Name, services.Kind(outcome.Err), outcome.Err.Error()})
				}
				fmt.Fprintln(out, renderTable([]string{"File", "Kind", "Error"}, rows, nil, ""))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Publish into a local directory instead of the bucket")
	return cmd
}
