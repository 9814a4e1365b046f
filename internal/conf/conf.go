package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/DevRickLin/feishu-birthday-bot/internal/data"
)

// Config represents application configuration
type Config struct {
	// Feishu configuration
	Feishu FeishuConfig

	// Maintainer receiving the heartbeat
	Maintainer MaintainerConfig

	// Store configuration
	Store StoreConfig

	// Snapshot configuration
	Snapshot SnapshotConfig

	// Schedule of the daily jobs (UTC)
	Schedule ScheduleConfig

	// Admin API configuration
	API APIConfig

	// Logging configuration
	Log LogConfig

	// Path of messages.yaml (empty: search default locations)
	MessagesPath string
}

// FeishuConfig contains Feishu configuration
type FeishuConfig struct {
	AppID     string
	AppSecret string
}

// MaintainerConfig identifies the maintainer
type MaintainerConfig struct {
	OpenID string
}

// StoreConfig contains store admission settings
type StoreConfig struct {
	CeilingBytes   int64
	CapacityPolicy string // new_records or all_mutations
}

// SnapshotConfig contains snapshot persistence settings
type SnapshotConfig struct {
	Backend string // file or sqlite
	Path    string
	Keep    int
}

// ScheduleConfig contains the UTC anchors of the daily jobs
type ScheduleConfig struct {
	Reminder  ClockTime
	Heartbeat ClockTime
	Backup    ClockTime
}

// APIConfig contains admin API configuration
type APIConfig struct {
	Addr string
}

// LogConfig contains logging configuration
type LogConfig struct {
	Level  string
	Format string
}

// ClockTime is a time of day
type ClockTime struct {
	Hour   int
	Minute int
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// ParseClockTime parses "HH:MM"
func ParseClockTime(s string) (ClockTime, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return ClockTime{}, fmt.Errorf("invalid time %q, want HH:MM", s)
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return ClockTime{}, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return ClockTime{}, fmt.Errorf("invalid minute in %q", s)
	}
	return ClockTime{Hour: hour, Minute: minute}, nil
}

// Default schedule of the original bot
var (
	DefaultReminderTime  = ClockTime{Hour: 7, Minute: 0}
	DefaultHeartbeatTime = ClockTime{Hour: 7, Minute: 10}
	DefaultBackupTime    = ClockTime{Hour: 12, Minute: 0}
)

const defaultAPIAddr = "127.0.0.1:9876"

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	// Snapshot path
	snapshotBackend := getEnv("SNAPSHOT_BACKEND", data.BackendFile)
	snapshotPath := os.Getenv("SNAPSHOT_PATH")
	if snapshotPath == "" {
		homeDir, _ := os.UserHomeDir()
		name := "backup.json"
		if snapshotBackend == data.BackendSQLite {
			name = "snapshots.db"
		}
		snapshotPath = filepath.Join(homeDir, ".feishu-birthday-bot", name)
	}

	return &Config{
		Feishu: FeishuConfig{
			AppID:     os.Getenv("FEISHU_APP_ID"),
			AppSecret: os.Getenv("FEISHU_APP_SECRET"),
		},
		Maintainer: MaintainerConfig{
			OpenID: os.Getenv("MAINTAINER_OPEN_ID"),
		},
		Store: StoreConfig{
			CeilingBytes:   getEnvAsInt64("STORE_CEILING_BYTES", data.DefaultCeiling),
			CapacityPolicy: getEnv("STORE_CAPACITY_POLICY", string(data.PolicyNewRecords)),
		},
		Snapshot: SnapshotConfig{
			Backend: snapshotBackend,
			Path:    snapshotPath,
			Keep:    getEnvAsInt("SNAPSHOT_KEEP", 7),
		},
		Schedule: ScheduleConfig{
			Reminder:  getEnvAsClock("REMINDER_TIME", DefaultReminderTime),
			Heartbeat: getEnvAsClock("HEARTBEAT_TIME", DefaultHeartbeatTime),
			Backup:    getEnvAsClock("BACKUP_TIME", DefaultBackupTime),
		},
		API: APIConfig{
			Addr: getEnv("API_ADDR", defaultAPIAddr),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "INFO"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		MessagesPath: os.Getenv("MESSAGES_CONFIG_PATH"),
	}
}

// SnapshotOptions converts to data layer snapshot options
func (c *SnapshotConfig) SnapshotOptions() data.SnapshotOptions {
	return data.SnapshotOptions{
		Backend: c.Backend,
		Path:    c.Path,
		Keep:    c.Keep,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Feishu.AppID == "" || c.Feishu.AppSecret == "" {
		return &ConfigError{Field: "FEISHU_APP_ID/FEISHU_APP_SECRET", Message: "required"}
	}
	if c.Maintainer.OpenID == "" {
		return &ConfigError{Field: "MAINTAINER_OPEN_ID", Message: "required"}
	}
	if c.Store.CeilingBytes <= 0 {
		return &ConfigError{Field: "STORE_CEILING_BYTES", Message: "must be positive"}
	}
	if _, err := data.ParseCapacityPolicy(c.Store.CapacityPolicy); err != nil {
		return &ConfigError{Field: "STORE_CAPACITY_POLICY", Message: err.Error()}
	}
	if c.Snapshot.Backend != data.BackendFile && c.Snapshot.Backend != data.BackendSQLite {
		return &ConfigError{Field: "SNAPSHOT_BACKEND", Message: "must be file or sqlite"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if parsed, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return parsed
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if parsed, err := strconv.ParseInt(os.Getenv(key), 10, 64); err == nil {
		return parsed
	}
	return defaultValue
}

func getEnvAsClock(key string, defaultValue ClockTime) ClockTime {
	if parsed, err := ParseClockTime(os.Getenv(key)); err == nil {
		return parsed
	}
	return defaultValue
}
