package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"assetsync/internal/config"
	"assetsync/internal/objectstore"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or check the assetsync configuration",
	}
	cmd.AddCommand(newConfigInitCommand(), newConfigValidateCommand(ctx))
	return cmd
}

func newConfigInitCommand() *cobra.Command {
	var pathFlag string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a commented sample configuration",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := initTarget(pathFlag)
			if err != nil {
				return err
			}
			if !overwrite {
				_, statErr := os.Stat(target)
				switch {
				case statErr == nil:
					return fmt.Errorf("%s already exists; pass --overwrite to replace it", target)
				case !errors.Is(statErr, fs.ErrNotExist):
					return fmt.Errorf("inspect %s: %w", target, statErr)
				}
			}
			if err := config.CreateSample(target); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample configuration to %s\n"+
				"Next: set store.bucket (or AWS_BUCKET_NAME), then run 'assetsync config validate --remote'.\n", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&pathFlag, "path", "p", "", "Where to write the file (default ~/.config/assetsync/config.toml)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	return cmd
}

// initTarget expands an explicit --path or falls back to the per-user location.
func initTarget(pathFlag string) (string, error) {
	if p := strings.TrimSpace(pathFlag); p != "" {
		expanded, err := config.ExpandPath(p)
		if err != nil {
			return "", fmt.Errorf("resolve --path: %w", err)
		}
		return expanded, nil
	}
	target, err := config.DefaultConfigPath()
	if err != nil {
		return "", fmt.Errorf("locate default config: %w", err)
	}
	return target, nil
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load the configuration and report problems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if remote {
				if err := cfg.ValidateRemote(); err != nil {
					return fmt.Errorf("store settings incomplete: %w", err)
				}
			}

			source := ctx.configPath
			if !ctx.configSeen {
				source += " (missing; built-in defaults)"
			}
			names := make([]string, 0, len(cfg.Variants))
			for _, spec := range cfg.Variants {
				names = append(names, spec.Name)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config: %s\n", source)
			fmt.Fprintf(out, "Store: %s\n", objectstore.Describe(cfg))
			fmt.Fprintf(out, "Variants: %d (%s)\n", len(names), strings.Join(names, ", "))
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "Also require bucket and endpoint settings")
	return cmd
}
