package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"assetsync/internal/objectstore"
	"assetsync/internal/preflight"
	"assetsync/internal/staging"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show configuration, directory health, store reachability, and variants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			report := newStatusReport(cmd.OutOrStdout())

			report.section("Configuration")
			configPath := ctx.configPath
			if !ctx.configSeen {
				configPath += " (not found, using defaults)"
			}
			report.line("Config", statusInfo, configPath)
			report.line("Store", statusInfo, objectstore.Describe(cfg))
			report.line("Cleanup mode", statusInfo, cfg.Pipeline.CleanupMode)
			report.line("History", statusInfo, yesNo(cfg.History.Enabled))

			report.gap()
			report.section("Directories")
			for _, result := range preflight.RunAll(cmd.Context(), cfg) {
				report.check(result)
			}
			for _, dir := range []struct {
				label string
				path  string
			}{
				{"Inbox queue", cfg.Paths.Inbox},
				{"Staged images", cfg.Paths.StagingImages},
				{"Staged files", cfg.Paths.StagingFiles},
			} {
				info := staging.Inspect(dir.path)
				if info.Files == 0 {
					report.line(dir.label, statusInfo, "empty")
					continue
				}
				report.line(dir.label, statusWarn, fmt.Sprintf("%d files, %s", info.Files, humanize.IBytes(uint64(info.Size))))
			}

			report.gap()
			report.section("Object store")
			report.check(preflight.CheckStoreConfig(cfg))
			if !offline {
				report.check(preflight.CheckStoreFromConfig(cmd.Context(), cfg))
			}

			report.gap()
			report.section("Variants")
			table, err := cfg.VariantTable()
			if err != nil {
				return err
			}
			rows := make([][]string, 0, table.Len())
			for _, spec := range table.Specs() {
				rows = append(rows, []string{spec.Name, strconv.Itoa(spec.Width), "<uid>_w" + strconv.Itoa(spec.Width) + ".<ext>"})
			}
			fmt.Fprintln(report.out, renderTable([]string{"Name", "Width", "Key"}, rows,
				[]columnAlignment{alignLeft, alignRight}, ""))
			return nil
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "Skip the object store reachability probe")
	return cmd
}
