// Package config provides YAML-based configuration loading for Shamba.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Supported storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// ExportFormats lists the formats an export may be written in.
var ExportFormats = []string{"csv", "json", "txt", "xlsx"}

// ExportDataTypes lists the record sets that can be exported.
var ExportDataTypes = []string{"tasks", "inventory", "animals"}

// Config is the top-level Shamba configuration, loaded from shamba.yaml.
type Config struct {
	Database  DatabaseConfig   `yaml:"database"`
	Export    ExportConfig     `yaml:"export"`
	Server    ServerConfig     `yaml:"server"`
	Operator  OperatorConfig   `yaml:"operator"`
	Alerts    AlertsConfig     `yaml:"alerts"`
	Schedules []ScheduleConfig `yaml:"schedules"`
}

// DatabaseConfig selects and addresses the storage backend.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Path     string `yaml:"path"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
	Debug    bool   `yaml:"debug"`
}

// ExportConfig controls where export files are written.
type ExportConfig struct {
	Dir    string `yaml:"dir"`
	Format string `yaml:"format"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Port         int      `yaml:"port"`
	AllowOrigins []string `yaml:"allow_origins"`
}

// OperatorConfig names the user that CLI-created records are attributed to.
type OperatorConfig struct {
	Email string `yaml:"email"`
}

// AlertsConfig configures low-stock notifications.
type AlertsConfig struct {
	SlackWebhookURL   string `yaml:"slack_webhook_url"`
	DiscordWebhookURL string `yaml:"discord_webhook_url"`
	Cron              string `yaml:"cron"`
}

// ScheduleConfig is a periodic export job.
type ScheduleConfig struct {
	Data   string `yaml:"data"`
	Format string `yaml:"format"`
	Cron   string `yaml:"cron"`
}

// cronParser accepts standard 5-field cron expressions.
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// LoadOptional behaves like Load but falls back to defaults when the file
// does not exist.
func LoadOptional(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Parse(nil)
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config. Environment
// overrides are applied after defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = DriverSQLite
	}
	if c.Database.Path == "" {
		c.Database.Path = "shamba.db"
	}
	if c.Database.Host == "" {
		c.Database.Host = "localhost"
	}
	if c.Database.Port == 0 {
		switch c.Database.Driver {
		case DriverMySQL:
			c.Database.Port = 3306
		case DriverPostgres:
			c.Database.Port = 5432
		}
	}
	if c.Database.Name == "" {
		c.Database.Name = "farm_management"
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Export.Dir == "" {
		c.Export.Dir = "exports"
	}
	if c.Export.Format == "" {
		c.Export.Format = "csv"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Operator.Email == "" {
		c.Operator.Email = "system@shamba.local"
	}
	for i := range c.Schedules {
		if c.Schedules[i].Format == "" {
			c.Schedules[i].Format = c.Export.Format
		}
	}
}

// applyEnv overrides database settings from the DB_* environment variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("DB_DRIVER"); ok && v != "" {
		c.Database.Driver = v
	}
	if v, ok := lookup("DB_HOST"); ok && v != "" {
		c.Database.Host = v
	}
	if v, ok := lookup("DB_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: DB_PORT %q: %w", v, err)
		}
		c.Database.Port = port
	}
	if v, ok := lookup("DB_USERNAME"); ok && v != "" {
		c.Database.User = v
	}
	if v, ok := lookup("DB_PASSWORD"); ok {
		c.Database.Password = v
	}
	if v, ok := lookup("DB_DATABASE"); ok && v != "" {
		c.Database.Name = v
	}
	return nil
}

// validate checks that all settings are present and consistent.
func (c *Config) validate() error {
	var errs []string
	switch c.Database.Driver {
	case DriverSQLite:
	case DriverMySQL, DriverPostgres:
		if c.Database.Port <= 0 {
			errs = append(errs, "database.port must be positive")
		}
		if c.Database.User == "" {
			errs = append(errs, "database.user is required for "+c.Database.Driver)
		}
	default:
		errs = append(errs, fmt.Sprintf("database.driver %q is not supported", c.Database.Driver))
	}
	if !contains(ExportFormats, c.Export.Format) {
		errs = append(errs, fmt.Sprintf("export.format %q is not supported", c.Export.Format))
	}
	if c.Server.Port <= 0 {
		errs = append(errs, "server.port must be positive")
	}
	if c.Alerts.Cron != "" {
		if _, err := cronParser.Parse(c.Alerts.Cron); err != nil {
			errs = append(errs, fmt.Sprintf("alerts.cron %q: %v", c.Alerts.Cron, err))
		}
	}
	for i, s := range c.Schedules {
		if !contains(ExportDataTypes, s.Data) {
			errs = append(errs, fmt.Sprintf("schedules[%d].data %q is not exportable", i, s.Data))
		}
		if !contains(ExportFormats, s.Format) {
			errs = append(errs, fmt.Sprintf("schedules[%d].format %q is not supported", i, s.Format))
		}
		if _, err := cronParser.Parse(s.Cron); err != nil {
			errs = append(errs, fmt.Sprintf("schedules[%d].cron %q: %v", i, s.Cron, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
