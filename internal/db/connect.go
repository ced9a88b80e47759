// Package db opens and prepares the Shamba database.
package db

import (
	"fmt"

	"github.com/zulandar/shamba/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MySQLDSN builds a go-sql-driver DSN.
func MySQLDSN(c config.DatabaseConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		c.User, c.Password, c.Host, c.Port, c.Name)
}

// PostgresDSN builds a libpq keyword/value DSN.
func PostgresDSN(c config.DatabaseConfig) string {
	dsn := fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Name, c.SSLMode)
	if c.Password != "" {
		dsn += " password=" + c.Password
	}
	return dsn
}

// Dialector picks the gorm dialector for the configured driver.
func Dialector(c config.DatabaseConfig) (gorm.Dialector, error) {
	switch c.Driver {
	case config.DriverSQLite, "":
		return sqlite.Open(c.Path), nil
	case config.DriverMySQL:
		return mysql.Open(MySQLDSN(c)), nil
	case config.DriverPostgres:
		return postgres.Open(PostgresDSN(c)), nil
	default:
		return nil, fmt.Errorf("db: unsupported driver %q", c.Driver)
	}
}

// Connect opens a GORM connection for the configured driver.
func Connect(c config.DatabaseConfig) (*gorm.DB, error) {
	dialector, err := Dialector(c)
	if err != nil {
		return nil, err
	}
	mode := logger.Silent
	if c.Debug {
		mode = logger.Info
	}
	gormDB, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(mode),
	})
	if err != nil {
		return nil, fmt.Errorf("db: connect %s: %w", describe(c), err)
	}
	if c.Driver == config.DriverSQLite || c.Driver == "" {
		// SQLite serialises writers; one connection avoids SQLITE_BUSY.
		sqlDB, err := gormDB.DB()
		if err != nil {
			return nil, fmt.Errorf("db: connect %s: %w", describe(c), err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return gormDB, nil
}

// Close releases the underlying connection pool.
func Close(gormDB *gorm.DB) error {
	sqlDB, err := gormDB.DB()
	if err != nil {
		return fmt.Errorf("db: close: %w", err)
	}
	return sqlDB.Close()
}

func describe(c config.DatabaseConfig) string {
	if c.Driver == config.DriverSQLite || c.Driver == "" {
		return "sqlite " + c.Path
	}
	return fmt.Sprintf("%s %s:%d/%s", c.Driver, c.Host, c.Port, c.Name)
}
