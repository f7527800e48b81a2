package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the client-side configuration. Everything comes from the
// environment (optionally via a .env file); there is no config file to
// manage for a single-binary client.
type Config struct {
	// APIURL is the base URL of the document-control backend.
	APIURL string
	// Timeout bounds each backend request. Zero means no client-side
	// timeout, which is the default: the UI stays responsive either way
	// and a slow backend is better waited on than interrupted.
	Timeout time.Duration

	Log       LogConfig
	Reminders ReminderConfig
	Web       WebConfig
}

type LogConfig struct {
	// File receives structured logs. Empty disables logging entirely:
	// a TUI cannot share its terminal with log output.
	File  string
	Level string
}

type ReminderConfig struct {
	Days   int
	Mode   string
	Target string
}

type WebConfig struct {
	Addr string
}

// Load reads configuration from the environment with the DOCTRACK_ prefix
// (DOCTRACK_API_URL, DOCTRACK_TIMEOUT, DOCTRACK_LOG_FILE, ...). A .env file
// in the working directory is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("DOCTRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("api_url", "http://127.0.0.1:8000")
	v.SetDefault("timeout", "0")
	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("reminders.days", 30)
	v.SetDefault("reminders.mode", "email")
	v.SetDefault("reminders.target", "")
	v.SetDefault("web.addr", "127.0.0.1:8080")

	cfg := &Config{
		APIURL:  strings.TrimRight(v.GetString("api_url"), "/"),
		Timeout: v.GetDuration("timeout"),
		Log: LogConfig{
			File:  v.GetString("log.file"),
			Level: v.GetString("log.level"),
		},
		Reminders: ReminderConfig{
			Days:   v.GetInt("reminders.days"),
			Mode:   v.GetString("reminders.mode"),
			Target: v.GetString("reminders.target"),
		},
		Web: WebConfig{
			Addr: v.GetString("web.addr"),
		},
	}
	return cfg, nil
}
