package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig     `yaml:"server"`
	Database  DatabaseConfig   `yaml:"database"`
	ID        IDConfig         `yaml:"id"`
	Jira      JiraConfig       `yaml:"jira"`
	Externals []ExternalDB     `yaml:"external_databases"`
	SQL       SQLQueriesConfig `yaml:"sql_queries"`
	Excel     ExcelConfig      `yaml:"excel"`
	Schedule  ScheduleConfig   `yaml:"schedule"`
	Redis     RedisConfig      `yaml:"redis"`
}

type ServerConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Mode     string `yaml:"mode"` // debug, release, test
	LogLevel string `yaml:"log_level"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite, mysql, postgres
	DSN    string `yaml:"dsn"`
}

// IDConfig selects the identity of this process's snowflake generator.
// Every running process must be assigned a distinct (datacenter_id, worker_id)
// pair; there is no cross-process coordination.
type IDConfig struct {
	WorkerID     int64 `yaml:"worker_id"`
	DatacenterID int64 `yaml:"datacenter_id"`
}

type JiraConfig struct {
	BaseURL   string   `yaml:"base_url"`
	Email     string   `yaml:"email"`
	APIToken  string   `yaml:"api_token"`
	DoneJQL   string   `yaml:"done_jql"`
	PlanJQL   string   `yaml:"plan_jql"`
	Fields    []string `yaml:"fields"`
	TimeoutMS int      `yaml:"timeout_ms"`
}

// ExternalDB describes one read-only PostgreSQL source of metric rows.
type ExternalDB struct {
	Name             string `yaml:"name"`
	Host             string `yaml:"host"`
	Port             int    `yaml:"port"`
	Database         string `yaml:"database"`
	Username         string `yaml:"username"`
	Password         string `yaml:"password"`
	SSL              bool   `yaml:"ssl"`
	ConnectTimeoutMS int    `yaml:"connect_timeout_ms"`
	QueryTimeoutMS   int    `yaml:"query_timeout_ms"`
}

// SQLQueriesConfig maps query names to SQL executed against the first
// configured external database. Every query must yield metric_key,
// metric_value and status columns.
type SQLQueriesConfig map[string]string

type ExcelConfig struct {
	IndentSize int `yaml:"indent_size"`
}

// ScheduleConfig controls unattended Monday generation. Country selects the
// workday calendar ("CN", "US", ..., or "NONE" for weekends only).
type ScheduleConfig struct {
	Enabled bool   `yaml:"enabled"`
	Time    string `yaml:"time"` // HH:MM local time
	Country string `yaml:"country"`
}

// RedisConfig for the optional async generation queue.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

var GlobalConfig *Config

func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config.yaml"
	}

	var cfg *Config

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg = DefaultConfig()
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, err
		}

		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, err
		}
		cfg = &fileCfg
	}

	cfg.applyDefaults()
	cfg.overrideFromEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	GlobalConfig = cfg
	return cfg, nil
}

func DefaultConfig() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: "8080",
			Mode: "debug",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "weekreport.db",
		},
		Redis: RedisConfig{
			Enabled: false,
			Addr:    "localhost:6379",
			DB:      0,
		},
	}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "debug"
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.DSN == "" {
		c.Database.DSN = "weekreport.db"
	}
	if c.Jira.TimeoutMS == 0 {
		c.Jira.TimeoutMS = 30000
	}
	if len(c.Jira.Fields) == 0 {
		c.Jira.Fields = []string{"summary", "status", "assignee", "customfield_10016"}
	}
	if c.Excel.IndentSize == 0 {
		c.Excel.IndentSize = 2
	}
	if c.Schedule.Time == "" {
		c.Schedule.Time = "09:00"
	}
	if c.Schedule.Country == "" {
		c.Schedule.Country = "CN"
	}
	for i := range c.Externals {
		if c.Externals[i].Port == 0 {
			c.Externals[i].Port = 5432
		}
		if c.Externals[i].ConnectTimeoutMS == 0 {
			c.Externals[i].ConnectTimeoutMS = 5000
		}
		if c.Externals[i].QueryTimeoutMS == 0 {
			c.Externals[i].QueryTimeoutMS = 30000
		}
	}
}

func (c *Config) overrideFromEnv() {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		c.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		c.Server.Port = port
	}
	if mode := os.Getenv("SERVER_MODE"); mode != "" {
		c.Server.Mode = mode
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Server.LogLevel = level
	}
	if driver := os.Getenv("DB_DRIVER"); driver != "" {
		c.Database.Driver = driver
	}
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		c.Database.DSN = dsn
	}
	if v := os.Getenv("ID_WORKER_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.ID.WorkerID = id
		}
	}
	if v := os.Getenv("ID_DATACENTER_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.ID.DatacenterID = id
		}
	}
	if baseURL := os.Getenv("JIRA_BASE_URL"); baseURL != "" {
		c.Jira.BaseURL = baseURL
	}
	if email := os.Getenv("JIRA_EMAIL"); email != "" {
		c.Jira.Email = email
	}
	if token := os.Getenv("JIRA_API_TOKEN"); token != "" {
		c.Jira.APIToken = token
	}
	// Redis URL override (format: redis://:password@host:port/db)
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		c.Redis.Enabled = true
		c.parseRedisURL(redisURL)
	}
}

func (c *Config) validate() error {
	if c.ID.WorkerID < 0 || c.ID.WorkerID > 31 {
		return fmt.Errorf("config: id.worker_id %d out of range [0,31]", c.ID.WorkerID)
	}
	if c.ID.DatacenterID < 0 || c.ID.DatacenterID > 31 {
		return fmt.Errorf("config: id.datacenter_id %d out of range [0,31]", c.ID.DatacenterID)
	}
	switch c.Database.Driver {
	case "sqlite", "mysql", "postgres":
	default:
		return fmt.Errorf("config: unsupported database driver %q", c.Database.Driver)
	}
	return nil
}

// parseRedisURL parses a Redis URL and sets config values
// Format: redis://:password@host:port/db
func (c *Config) parseRedisURL(redisURL string) {
	url := strings.TrimPrefix(redisURL, "redis://")

	if atIdx := strings.Index(url, "@"); atIdx != -1 {
		authPart := url[:atIdx]
		url = url[atIdx+1:]
		if colonIdx := strings.Index(authPart, ":"); colonIdx != -1 {
			c.Redis.Password = authPart[colonIdx+1:]
		}
	}

	if slashIdx := strings.LastIndex(url, "/"); slashIdx != -1 {
		dbStr := url[slashIdx+1:]
		url = url[:slashIdx]
		if db, err := strconv.Atoi(dbStr); err == nil {
			c.Redis.DB = db
		}
	}

	c.Redis.Addr = url
}

func (c *Config) Save(configPath string) error {
	if configPath == "" {
		configPath = "config.yaml"
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}
