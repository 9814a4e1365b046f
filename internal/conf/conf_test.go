package conf

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DevRickLin/feishu-birthday-bot/internal/data"
)

func TestParseClockTime(t *testing.T) {
	tests := []struct {
		in      string
		want    ClockTime
		wantErr bool
	}{
		{in: "07:00", want: ClockTime{Hour: 7}},
		{in: " 12:30 ", want: ClockTime{Hour: 12, Minute: 30}},
		{in: "23:59", want: ClockTime{Hour: 23, Minute: 59}},
		{in: "24:00", wantErr: true},
		{in: "07:60", wantErr: true},
		{in: "0700", wantErr: true},
		{in: "", wantErr: true},
		{in: "aa:bb", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseClockTime(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, "07:10", DefaultHeartbeatTime.String())
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{
		"SNAPSHOT_BACKEND", "SNAPSHOT_PATH", "SNAPSHOT_KEEP", "STORE_CEILING_BYTES",
		"STORE_CAPACITY_POLICY", "REMINDER_TIME", "HEARTBEAT_TIME", "BACKUP_TIME",
		"API_ADDR", "LOG_LEVEL", "LOG_FORMAT", "MESSAGES_CONFIG_PATH",
	} {
		t.Setenv(key, "")
	}

	cfg := LoadFromEnv()

	assert.Equal(t, data.DefaultCeiling, cfg.Store.CeilingBytes)
	assert.Equal(t, string(data.PolicyNewRecords), cfg.Store.CapacityPolicy)
	assert.Equal(t, data.BackendFile, cfg.Snapshot.Backend)
	assert.True(t, strings.HasSuffix(cfg.Snapshot.Path, filepath.Join(".feishu-birthday-bot", "backup.json")))
	assert.Equal(t, 7, cfg.Snapshot.Keep)
	assert.Equal(t, DefaultReminderTime, cfg.Schedule.Reminder)
	assert.Equal(t, DefaultHeartbeatTime, cfg.Schedule.Heartbeat)
	assert.Equal(t, DefaultBackupTime, cfg.Schedule.Backup)
	assert.Equal(t, "127.0.0.1:9876", cfg.API.Addr)
	assert.Equal(t, "INFO", cfg.Log.Level)
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("FEISHU_APP_ID", "cli_a")
	t.Setenv("FEISHU_APP_SECRET", "secret")
	t.Setenv("MAINTAINER_OPEN_ID", "ou_1")
	t.Setenv("SNAPSHOT_BACKEND", "sqlite")
	t.Setenv("SNAPSHOT_PATH", "")
	t.Setenv("STORE_CEILING_BYTES", "1024")
	t.Setenv("STORE_CAPACITY_POLICY", "all_mutations")
	t.Setenv("REMINDER_TIME", "06:45")
	t.Setenv("BACKUP_TIME", "not a time")

	cfg := LoadFromEnv()

	assert.Equal(t, "cli_a", cfg.Feishu.AppID)
	assert.Equal(t, "ou_1", cfg.Maintainer.OpenID)
	assert.Equal(t, int64(1024), cfg.Store.CeilingBytes)
	assert.Equal(t, "snapshots.db", filepath.Base(cfg.Snapshot.Path))
	assert.Equal(t, ClockTime{Hour: 6, Minute: 45}, cfg.Schedule.Reminder)
	assert.Equal(t, DefaultBackupTime, cfg.Schedule.Backup)
	assert.NoError(t, cfg.Validate())

	opts := cfg.Snapshot.SnapshotOptions()
	assert.Equal(t, data.BackendSQLite, opts.Backend)
	assert.Equal(t, cfg.Snapshot.Path, opts.Path)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Feishu:     FeishuConfig{AppID: "a", AppSecret: "b"},
			Maintainer: MaintainerConfig{OpenID: "ou"},
			Store:      StoreConfig{CeilingBytes: 1, CapacityPolicy: "new_records"},
			Snapshot:   SnapshotConfig{Backend: "file", Path: "x"},
		}
	}
	require.NoError(t, valid().Validate())

	tests := map[string]func(*Config){
		"FEISHU_APP_ID/FEISHU_APP_SECRET": func(c *Config) { c.Feishu.AppSecret = "" },
		"MAINTAINER_OPEN_ID":              func(c *Config) { c.Maintainer.OpenID = "" },
		"STORE_CEILING_BYTES":             func(c *Config) { c.Store.CeilingBytes = 0 },
		"STORE_CAPACITY_POLICY":           func(c *Config) { c.Store.CapacityPolicy = "sometimes" },
		"SNAPSHOT_BACKEND":                func(c *Config) { c.Snapshot.Backend = "s3" },
	}
	for field, breakIt := range tests {
		t.Run(field, func(t *testing.T) {
			c := valid()
			breakIt(c)
			err := c.Validate()
			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, field, cfgErr.Field)
		})
	}
}
