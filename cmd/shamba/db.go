package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/zulandar/shamba/internal/config"
	"github.com/zulandar/shamba/internal/db"
	"github.com/zulandar/shamba/internal/service"
)

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
	}

	cmd.AddCommand(newDBInitCmd())
	cmd.AddCommand(newDBSeedCmd())
	return cmd
}

func newDBInitCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the Shamba database",
		Long:  "Connects to the configured database and creates every table.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			cfg, err := loadConfig(cmd, configPath)
			if err != nil {
				return err
			}
			gormDB, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close(gormDB)
			fmt.Fprintf(out, "Migrated %d tables on %s\n", len(db.AllModels()), cfg.Database.Driver)
			return nil
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}

func newDBSeedCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert sample animals, inventory and tasks",
		Long:  "Inserts the sample data set into tables that are still empty. Tables that already hold rows are left untouched.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, configPath, func(_ *config.Config, svc *service.Service) error {
				res, err := db.Seed(svc.DB, svc.Operator.ID, time.Now())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d animals, %d inventory items, %d tasks\n", res.Animals, res.Inventory, res.Tasks)
				return nil
			})
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}
