package db

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/zulandar/shamba/internal/config"
	"github.com/zulandar/shamba/internal/models"
	"gorm.io/gorm"
)

func TestMySQLDSN(t *testing.T) {
	got := MySQLDSN(config.DatabaseConfig{
		Host: "10.0.0.5", Port: 3307, User: "farmer", Password: "pw", Name: "farm",
	})
	want := "farmer:pw@tcp(10.0.0.5:3307)/farm?parseTime=true&charset=utf8mb4"
	if got != want {
		t.Errorf("MySQLDSN() = %q, want %q", got, want)
	}
}

func TestPostgresDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.DatabaseConfig
		want string
	}{
		{
			name: "with password",
			cfg:  config.DatabaseConfig{Host: "localhost", Port: 5432, User: "emwangi", Password: "pw", Name: "farm_management", SSLMode: "disable"},
			want: "host=localhost port=5432 user=emwangi dbname=farm_management sslmode=disable password=pw",
		},
		{
			name: "without password",
			cfg:  config.DatabaseConfig{Host: "db", Port: 6543, User: "u", Name: "n", SSLMode: "require"},
			want: "host=db port=6543 user=u dbname=n sslmode=require",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PostgresDSN(tt.cfg); got != tt.want {
				t.Errorf("PostgresDSN() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDialector(t *testing.T) {
	tests := []struct {
		driver string
		name   string
	}{
		{config.DriverSQLite, "sqlite"},
		{config.DriverMySQL, "mysql"},
		{config.DriverPostgres, "postgres"},
	}
	for _, tt := range tests {
		d, err := Dialector(config.DatabaseConfig{Driver: tt.driver, Path: ":memory:"})
		if err != nil {
			t.Fatalf("Dialector(%s): %v", tt.driver, err)
		}
		if d.Name() != tt.name {
			t.Errorf("Dialector(%s).Name() = %q, want %q", tt.driver, d.Name(), tt.name)
		}
	}

	if _, err := Dialector(config.DatabaseConfig{Driver: "oracle"}); err == nil {
		t.Error("expected error for unsupported driver")
	}
}

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	gormDB, err := Connect(config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "shamba.db"),
	})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { Close(gormDB) })
	return gormDB
}

func TestAutoMigrate_CreatesEveryTable(t *testing.T) {
	gormDB := openSQLite(t)
	if err := AutoMigrate(gormDB); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	for _, table := range []string{"farms", "fields", "crops", "plantings", "harvests", "livestock",
		"inventory", "tasks", "task_assignments", "sales", "sale_items", "expenses", "users",
		"user_roles", "permissions", "role_permissions", "audit_log", "activities", "activity_fields"} {
		if !gormDB.Migrator().HasTable(table) {
			t.Errorf("table %s missing after migrate", table)
		}
	}
}

func TestAllModels_Count(t *testing.T) {
	if got := len(AllModels()); got != 21 {
		t.Errorf("AllModels() returned %d models, want 21", got)
	}
}

func TestSeed_EmptyTables(t *testing.T) {
	gormDB := openSQLite(t)
	if err := AutoMigrate(gormDB); err != nil {
		t.Fatal(err)
	}
	now := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)

	res, err := Seed(gormDB, 1, now)
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if res.Animals != 4 || res.Inventory != 5 || res.Tasks != 6 {
		t.Errorf("Seed() = %+v, want 4/5/6", res)
	}

	var hay models.InventoryItem
	if err := gormDB.Where("name = ?", "hay").First(&hay).Error; err != nil {
		t.Fatalf("find hay: %v", err)
	}
	if hay.Quantity.IntPart() != 500 || hay.Unit != "kg" {
		t.Errorf("hay = %s %s, want 500 kg", hay.Quantity, hay.Unit)
	}

	var completed models.Task
	if err := gormDB.Where("status = ?", "completed").First(&completed).Error; err != nil {
		t.Fatalf("find completed task: %v", err)
	}
	if completed.CompletedAt == nil {
		t.Error("seeded completed task should have completed_at")
	}
}

func TestSeed_Idempotent(t *testing.T) {
	gormDB := openSQLite(t)
	if err := AutoMigrate(gormDB); err != nil {
		t.Fatal(err)
	}
	now := time.Now()
	if _, err := Seed(gormDB, 1, now); err != nil {
		t.Fatal(err)
	}
	res, err := Seed(gormDB, 1, now)
	if err != nil {
		t.Fatalf("second Seed: %v", err)
	}
	if res != (SeedResult{}) {
		t.Errorf("second Seed() = %+v, want nothing inserted", res)
	}
}

func TestConnect_UnsupportedDriver(t *testing.T) {
	_, err := Connect(config.DatabaseConfig{Driver: "oracle"})
	if err == nil || !strings.Contains(err.Error(), "unsupported driver") {
		t.Errorf("err = %v", err)
	}
}
