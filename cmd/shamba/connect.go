package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/zulandar/shamba/internal/config"
	"github.com/zulandar/shamba/internal/db"
	"github.com/zulandar/shamba/internal/service"
	"gorm.io/gorm"
)

const defaultConfigPath = "shamba.yaml"

func addConfigFlag(cmd *cobra.Command, path *string) {
	cmd.Flags().StringVarP(path, "config", "c", defaultConfigPath, "path to Shamba config file")
}

// loadConfig reads .env if present, then the config file. A missing file
// is only an error when --config was given explicitly.
func loadConfig(cmd *cobra.Command, path string) (*config.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if cmd.Flags().Changed("config") {
		return config.Load(path)
	}
	return config.LoadOptional(path)
}

// openDB connects to the configured database and migrates it.
func openDB(cfg *config.Config) (*gorm.DB, error) {
	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(gormDB); err != nil {
		db.Close(gormDB)
		return nil, err
	}
	return gormDB, nil
}

// withService loads config, opens the database and runs fn with a service
// acting as the configured operator.
func withService(cmd *cobra.Command, configPath string, fn func(*config.Config, *service.Service) error) error {
	cfg, err := loadConfig(cmd, configPath)
	if err != nil {
		return err
	}
	gormDB, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close(gormDB)

	svc, err := service.New(gormDB, cfg.Operator.Email)
	if err != nil {
		return err
	}
	return fn(cfg, svc)
}
