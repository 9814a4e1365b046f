package conf

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"text/template"

	"gopkg.in/yaml.v3"
)

// MessagesConfig contains the fixed texts sent by the scheduled jobs, loaded from YAML
type MessagesConfig struct {
	Reminder  ReminderMessages  `yaml:"reminder"`
	Heartbeat HeartbeatMessages `yaml:"heartbeat"`
}

// ReminderMessages contains the reminder text template.
// The template receives a domain.Entry (.Name, .Date, .Handle).
type ReminderMessages struct {
	Template string `yaml:"template"`
}

// HeartbeatMessages contains the liveness text sent to the maintainer
type HeartbeatMessages struct {
	Text string `yaml:"text"`
}

// LoadMessagesConfig loads message configuration from a YAML file.
// With an empty path the usual locations are tried; a missing file yields defaults.
func LoadMessagesConfig(configPath string, logger *slog.Logger) (*MessagesConfig, error) {
	paths := []string{configPath}
	if configPath == "" {
		paths = []string{
			"configs/messages.yaml",
			"/etc/feishu-birthday-bot/messages.yaml",
		}
		// Add path relative to executable
		if execPath, err := os.Executable(); err == nil {
			paths = append(paths, filepath.Join(filepath.Dir(execPath), "configs", "messages.yaml"))
		}
	}

	var data []byte
	var loadedPath string
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err == nil {
			data, loadedPath = b, p
			break
		}
	}

	if data == nil {
		if configPath != "" {
			return nil, fmt.Errorf("failed to read %s", configPath)
		}
		logger.Info("no messages.yaml found, using defaults")
		return DefaultMessagesConfig(), nil
	}

	logger.Info("loading messages", "path", loadedPath)

	var config MessagesConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse messages.yaml: %w", err)
	}

	config.fillDefaults()

	if _, err := template.New("reminder").Parse(config.Reminder.Template); err != nil {
		return nil, fmt.Errorf("invalid reminder template: %w", err)
	}

	return &config, nil
}

// fillDefaults fills in default values for empty fields
func (c *MessagesConfig) fillDefaults() {
	defaults := DefaultMessagesConfig()

	if c.Reminder.Template == "" {
		c.Reminder.Template = defaults.Reminder.Template
	}
	if c.Heartbeat.Text == "" {
		c.Heartbeat.Text = defaults.Heartbeat.Text
	}
}

// DefaultMessagesConfig returns the default message configuration
func DefaultMessagesConfig() *MessagesConfig {
	return &MessagesConfig{
		Reminder: ReminderMessages{
			Template: "Congratulate a wonderful person on their birthday today: {{.Name}}{{if .Handle}} (@{{.Handle}}){{end}}! 🎉",
		},
		Heartbeat: HeartbeatMessages{
			Text: "I'm alive!",
		},
	}
}
