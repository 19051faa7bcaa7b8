package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %q, expected %q", cfg.Server.Port, "8080")
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Database.Driver = %q, expected %q", cfg.Database.Driver, "sqlite")
	}
	if cfg.ID.WorkerID != 0 || cfg.ID.DatacenterID != 0 {
		t.Errorf("ID = %+v, expected zero worker and datacenter", cfg.ID)
	}
	if cfg.Jira.TimeoutMS != 30000 {
		t.Errorf("Jira.TimeoutMS = %d, expected 30000", cfg.Jira.TimeoutMS)
	}
	if cfg.Schedule.Enabled {
		t.Error("Schedule.Enabled should default to false")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.DSN != "weekreport.db" {
		t.Errorf("Database.DSN = %q, expected default", cfg.Database.DSN)
	}
}

func TestLoad_FromFile(t *testing.T) {
	content := `
server:
  port: "9090"
  mode: release
database:
  driver: sqlite
  dsn: /tmp/reports.db
id:
  worker_id: 3
  datacenter_id: 7
jira:
  base_url: https://example.atlassian.net
  done_jql: "status = Done"
  plan_jql: "sprint in openSprints()"
external_databases:
  - name: brv
    host: db.internal
    database: metrics
    username: reader
sql_queries:
  metrics_brv: "SELECT metric_key, metric_value, status FROM brv_summary"
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Server.Port = %q, expected %q", cfg.Server.Port, "9090")
	}
	if cfg.ID.WorkerID != 3 || cfg.ID.DatacenterID != 7 {
		t.Errorf("ID = %+v, expected worker 3 datacenter 7", cfg.ID)
	}
	if cfg.Jira.BaseURL != "https://example.atlassian.net" {
		t.Errorf("Jira.BaseURL = %q", cfg.Jira.BaseURL)
	}
	if len(cfg.Externals) != 1 {
		t.Fatalf("len(Externals) = %d, expected 1", len(cfg.Externals))
	}
	if cfg.Externals[0].Port != 5432 {
		t.Errorf("Externals[0].Port = %d, expected default 5432", cfg.Externals[0].Port)
	}
	if cfg.Externals[0].QueryTimeoutMS != 30000 {
		t.Errorf("Externals[0].QueryTimeoutMS = %d, expected default 30000", cfg.Externals[0].QueryTimeoutMS)
	}
	if cfg.SQL["metrics_brv"] == "" {
		t.Error("SQL[metrics_brv] missing")
	}
}

func TestLoad_RejectsBadWorkerID(t *testing.T) {
	content := `
id:
  worker_id: 99
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load() with worker_id 99 expected error")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SERVER_PORT", "7001")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_DSN", "host=localhost dbname=reports")
	t.Setenv("ID_WORKER_ID", "9")

	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != "7001" {
		t.Errorf("Server.Port = %q, expected env override 7001", cfg.Server.Port)
	}
	if cfg.Database.Driver != "postgres" {
		t.Errorf("Database.Driver = %q, expected postgres", cfg.Database.Driver)
	}
	if cfg.ID.WorkerID != 9 {
		t.Errorf("ID.WorkerID = %d, expected 9", cfg.ID.WorkerID)
	}
}

func TestParseRedisURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		addr     string
		password string
		db       int
	}{
		{name: "full", url: "redis://:secret@redis.internal:6380/2", addr: "redis.internal:6380", password: "secret", db: 2},
		{name: "no auth", url: "redis://localhost:6379/0", addr: "localhost:6379", password: "", db: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.parseRedisURL(tt.url)
			if cfg.Redis.Addr != tt.addr {
				t.Errorf("Addr = %q, expected %q", cfg.Redis.Addr, tt.addr)
			}
			if cfg.Redis.Password != tt.password {
				t.Errorf("Password = %q, expected %q", cfg.Redis.Password, tt.password)
			}
			if cfg.Redis.DB != tt.db {
				t.Errorf("DB = %d, expected %d", cfg.Redis.DB, tt.db)
			}
		})
	}
}
