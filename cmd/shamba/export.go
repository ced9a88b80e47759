package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zulandar/shamba/internal/config"
	"github.com/zulandar/shamba/internal/export"
	"github.com/zulandar/shamba/internal/service"
)

func newExportCmd() *cobra.Command {
	var (
		configPath string
		format     string
		dir        string
		stdout     bool
	)

	cmd := &cobra.Command{
		Use:       "export <tasks|inventory|animals>",
		Short:     "Export records to a file or stdout",
		Long:      "Exports a record set as csv, json, txt or xlsx. Files are named report-<epoch-millis>.<ext> in the export directory.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: config.ExportDataTypes,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, configPath, func(cfg *config.Config, svc *service.Service) error {
				name := format
				if name == "" {
					name = cfg.Export.Format
				}
				f, err := export.ParseFormat(name)
				if err != nil {
					return err
				}
				if stdout {
					if f == export.FormatXLSX {
						return fmt.Errorf("xlsx cannot be written to stdout; drop --stdout")
					}
					content, err := svc.Export(args[0], f)
					if err != nil {
						return err
					}
					_, err = cmd.OutOrStdout().Write(content)
					return err
				}
				if dir == "" {
					dir = cfg.Export.Dir
				}
				path, err := svc.ExportToFile(args[0], f, dir)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s\n", args[0], path)
				return nil
			})
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format ("+formatNames()+"); defaults to export.format")
	cmd.Flags().StringVar(&dir, "dir", "", "output directory; defaults to export.dir")
	cmd.Flags().BoolVar(&stdout, "stdout", false, "write to stdout instead of a file")
	return cmd
}

func formatNames() string {
	names := make([]string, len(export.Formats))
	for i, f := range export.Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
