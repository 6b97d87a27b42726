// Package config loads reader configuration from an optional TOML file
// with environment variable overrides. Env always wins so a deployed
// unit file can pin values without editing the config file.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	// Remote directory/log API.
	APIBaseURL string `toml:"api_base_url"` // e.g. "http://192.168.0.100:5000"
	APIToken   string `toml:"api_token"`    // optional bearer token

	Env    string `toml:"env"`     // "dev" | "prod"
	DBPath string `toml:"db_path"` // local durable store, e.g. "./data/reader.db"

	// Local diagnostics HTTP endpoint; empty disables it.
	HTTPAddr string `toml:"http_addr"`

	// Feedback bus; empty means console feedback only.
	NATSURL         string `toml:"nats_url"`
	FeedbackSubject string `toml:"feedback_subject"`

	ReportDir string `toml:"report_dir"`

	DebounceWindow time.Duration `toml:"-"`
	FlushInterval  time.Duration `toml:"-"`
	RequestTimeout time.Duration `toml:"-"`
	ShutdownGrace  time.Duration `toml:"-"`

	// Duration fields as TOML strings ("3s", "20s").
	DebounceWindowStr string `toml:"debounce_window"`
	FlushIntervalStr  string `toml:"flush_interval"`
	RequestTimeoutStr string `toml:"request_timeout"`
	ShutdownGraceStr  string `toml:"shutdown_grace"`
}

// Load builds the configuration: defaults, then the TOML file at path
// (or ACCESS_CONFIG) if one exists, then environment overrides.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path == "" {
		path = os.Getenv("ACCESS_CONFIG")
	}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return Config{}, fmt.Errorf("decode config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()

	if err := cfg.resolveDurations(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func defaults() Config {
	return Config{
		APIBaseURL:        "http://192.168.0.100:5000",
		Env:               "dev",
		DBPath:            "./data/reader.db",
		HTTPAddr:          ":8091",
		FeedbackSubject:   "access.feedback",
		ReportDir:         "./reports",
		DebounceWindowStr: "3s",
		FlushIntervalStr:  "20s",
		RequestTimeoutStr: "5s",
		ShutdownGraceStr:  "5s",
	}
}

func (c *Config) applyEnv() {
	c.APIBaseURL = getenvDefault("ACCESS_API_URL", c.APIBaseURL)
	c.APIToken = getenvDefault("ACCESS_API_TOKEN", c.APIToken)
	c.Env = strings.ToLower(getenvDefault("ACCESS_ENV", c.Env))
	c.DBPath = getenvDefault("ACCESS_DB_PATH", c.DBPath)
	c.HTTPAddr = getenvDefault("ACCESS_HTTP_ADDR", c.HTTPAddr)
	c.NATSURL = getenvDefault("ACCESS_NATS_URL", c.NATSURL)
	c.FeedbackSubject = getenvDefault("ACCESS_FEEDBACK_SUBJECT", c.FeedbackSubject)
	c.ReportDir = getenvDefault("ACCESS_REPORT_DIR", c.ReportDir)
	c.DebounceWindowStr = getenvDefault("ACCESS_DEBOUNCE_WINDOW", c.DebounceWindowStr)
	c.FlushIntervalStr = getenvDefault("ACCESS_FLUSH_INTERVAL", c.FlushIntervalStr)
	c.RequestTimeoutStr = getenvDefault("ACCESS_REQUEST_TIMEOUT", c.RequestTimeoutStr)
	c.ShutdownGraceStr = getenvDefault("ACCESS_SHUTDOWN_GRACE", c.ShutdownGraceStr)

	if c.Env != "dev" && c.Env != "prod" {
		// fail-soft: treat unknown as dev
		c.Env = "dev"
	}
}

func (c *Config) resolveDurations() error {
	var err error
	if c.DebounceWindow, err = parseDuration("debounce_window", c.DebounceWindowStr); err != nil {
		return err
	}
	if c.FlushInterval, err = parseDuration("flush_interval", c.FlushIntervalStr); err != nil {
		return err
	}
	if c.RequestTimeout, err = parseDuration("request_timeout", c.RequestTimeoutStr); err != nil {
		return err
	}
	if c.ShutdownGrace, err = parseDuration("shutdown_grace", c.ShutdownGraceStr); err != nil {
		return err
	}
	return nil
}

func parseDuration(name, v string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("config %s: %w", name, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("config %s: must be positive, got %s", name, d)
	}
	return d, nil
}

func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
