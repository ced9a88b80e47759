package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zulandar/shamba/internal/config"
	"github.com/zulandar/shamba/internal/export"
	"github.com/zulandar/shamba/internal/service"
)

func newAnimalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "animals",
		Short: "Livestock commands",
	}

	cmd.AddCommand(newAnimalsListCmd())
	return cmd
}

func newAnimalsListCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all animals",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, configPath, func(_ *config.Config, svc *service.Service) error {
				animals, err := svc.ListAnimals()
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), export.Text(export.AnimalRecords(animals)))
				return nil
			})
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}
