package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"assetsync/internal/classify"
	"assetsync/internal/metadata"
)

func newRecordsCommand(ctx *commandContext) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "records",
		Short: "List metadata records for published images and files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			showImages := kind == "" || kind == "images"
			showFiles := kind == "" || kind == "files"
			if !showImages && !showFiles {
				return fmt.Errorf("unknown --kind %q (use images or files)", kind)
			}

			if showImages {
				records, bad, err := metadata.LoadRecords(cfg.Paths.ImageMetadataDir, classify.KindImage)
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(records))
				for _, rec := range records {
					rows = append(rows, []string{
						rec.UID,
						rec.Format,
						strconv.Itoa(rec.Width) + "x" + strconv.Itoa(rec.Height),
						yesNo(rec.Alt != ""),
						rec.Date,
					})
				}
				fmt.Fprintln(out, "Images")
				fmt.Fprintln(out, renderTable(
					[]string{"UID", "Format", "Size", "Alt", "Date"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight},
					fmt.Sprintf("%d records", len(records)),
				))
				printRecordErrors(cmd, bad)
			}

			if showFiles {
				records, bad, err := metadata.LoadRecords(cfg.Paths.FileMetadataDir, classify.KindFile)
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(records))
				for _, rec := range records {
					rows = append(rows, []string{rec.UID, rec.Format, cfg.StaticURL(rec.UID + "." + rec.Format), rec.Date})
				}
				fmt.Fprintln(out, "Files")
				fmt.Fprintln(out, renderTable(
					[]string{"UID", "Format", "URL", "Date"},
					rows,
					nil,
					fmt.Sprintf("%d records", len(records)),
				))
				printRecordErrors(cmd, bad)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "Limit the listing to images or files")
	return cmd
}

func printRecordErrors(cmd *cobra.Command, bad []metadata.RecordError) {
	for _, e := range bad {
		fmt.Fprintf(cmd.ErrOrStderr(), "warn: unreadable record %s\n", e.Error())
	}
}
