// Package config loads focusnest settings from ~/.config/focusnest/config.json
// and the environment.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Settings is the on-disk config file. Every field is optional.
type Settings struct {
	DBPath        string      `json:"db_path,omitempty"`
	DatabaseURL   string      `json:"database_url,omitempty"`
	JWTSecret     string      `json:"jwt_secret,omitempty"`
	TokenTTLHours *int        `json:"token_ttl_hours,omitempty"`
	APIAddr       string      `json:"api_addr,omitempty"`
	SSHAddr       string      `json:"ssh_addr,omitempty"`
	HostKeyPath   string      `json:"host_key_path,omitempty"`
	CORSOrigins   StringArray `json:"cors_origins,omitempty"`
	Debug         *bool       `json:"debug,omitempty"`
	DebugFile     string      `json:"debug_file,omitempty"`
	MaxLogFiles   *int        `json:"max_log_files,omitempty"`
}

// StringArray supports both JSON arrays and comma-separated strings.
type StringArray []string

func (sa *StringArray) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*sa = arr
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*sa = parseCommaSeparated(str)
	return nil
}

func parseCommaSeparated(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// Config is the resolved configuration: file values, then environment
// overrides, then defaults.
type Config struct {
	Dir         string
	DBPath      string
	DatabaseURL string
	JWTSecret   string
	TokenTTL    time.Duration
	APIAddr     string
	SSHAddr     string
	HostKeyPath string
	CORSOrigins []string
	Debug       bool
	DebugFile   string
	MaxLogFiles int
}

// Dir returns ~/.config/focusnest (or the platform equivalent).
func Dir() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get config directory: %w", err)
	}
	return filepath.Join(cfg, "focusnest"), nil
}

// LoadSettings reads path. A missing file yields empty settings.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Settings{}, nil
		}
		return nil, fmt.Errorf("read settings file: %w", err)
	}
	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", filepath.Base(path), err)
	}
	settings.DBPath = expandPath(settings.DBPath)
	settings.HostKeyPath = expandPath(settings.HostKeyPath)
	settings.DebugFile = expandPath(settings.DebugFile)
	return &settings, nil
}

// Load resolves the configuration from dir/config.json and the
// environment. An empty dir uses Dir().
func Load(dir string) (Config, error) {
	if dir == "" {
		d, err := Dir()
		if err != nil {
			return Config{}, err
		}
		dir = d
	}
	s, err := LoadSettings(filepath.Join(dir, "config.json"))
	if err != nil {
		return Config{}, err
	}
	return resolve(dir, s, os.Getenv), nil
}

func resolve(dir string, s *Settings, getenv func(string) string) Config {
	c := Config{
		Dir:         dir,
		DBPath:      s.DBPath,
		DatabaseURL: s.DatabaseURL,
		JWTSecret:   s.JWTSecret,
		TokenTTL:    7 * 24 * time.Hour,
		APIAddr:     s.APIAddr,
		SSHAddr:     s.SSHAddr,
		HostKeyPath: s.HostKeyPath,
		CORSOrigins: s.CORSOrigins,
		DebugFile:   s.DebugFile,
		MaxLogFiles: 100,
	}
	if s.TokenTTLHours != nil && *s.TokenTTLHours > 0 {
		c.TokenTTL = time.Duration(*s.TokenTTLHours) * time.Hour
	}
	if s.Debug != nil {
		c.Debug = *s.Debug
	}
	if s.MaxLogFiles != nil {
		c.MaxLogFiles = *s.MaxLogFiles
	}

	if v := getenv("FOCUSNEST_DB_PATH"); v != "" {
		c.DBPath = expandPath(v)
	}
	if v := getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := getenv("FOCUSNEST_JWT_SECRET"); v != "" {
		c.JWTSecret = v
	}
	if v := getenv("FOCUSNEST_API_ADDR"); v != "" {
		c.APIAddr = v
	}
	if v := getenv("FOCUSNEST_SSH_ADDR"); v != "" {
		c.SSHAddr = v
	}
	if v := getenv("FOCUSNEST_CORS_ORIGINS"); v != "" {
		c.CORSOrigins = parseCommaSeparated(v)
	}
	if v := getenv("FOCUSNEST_DEBUG"); v != "" {
		c.Debug, _ = strconv.ParseBool(v)
	}

	if c.DBPath == "" {
		c.DBPath = filepath.Join(dir, "focusnest.db")
	}
	if c.APIAddr == "" {
		c.APIAddr = ":8080"
	}
	if c.SSHAddr == "" {
		c.SSHAddr = ":2323"
	}
	if c.HostKeyPath == "" {
		c.HostKeyPath = filepath.Join(dir, "ssh_host_ed25519")
	}
	return c
}

// expandPath expands a leading ~ to the home directory.
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		if len(path) == 1 {
			return homeDir
		}
		return filepath.Join(homeDir, path[1:])
	}
	return path
}
