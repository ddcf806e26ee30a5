package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL = "http://localhost:4000"
	DefaultDepth   = 5
	MaxDepth       = 32

	rcName = ".pbrc"
)

// Keys used in rc files and the environment.
const (
	KeyToken   = "PB_TOKEN"
	KeyUserID  = "PB_USER_ID"
	KeyBaseURL = "PB_BASE_URL"
	KeyDepth   = "PB_DEPTH"
)

// Config holds the browser settings. Path is where it was loaded from.
type Config struct {
	Token   string `yaml:"token"`
	UserID  string `yaml:"user_id"`
	BaseURL string `yaml:"base_url"`
	Depth   int    `yaml:"depth"`
	Path    string `yaml:"-"`
}

// DefaultPath returns ~/.pbrc, falling back to the working directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return rcName
	}
	return filepath.Join(home, rcName)
}

// Exists reports whether a config file is present at path.
func Exists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}

// Load builds a Config from defaults, the file at path (if any) and the
// environment, in that order of precedence. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Config{BaseURL: DefaultBaseURL, Depth: DefaultDepth, Path: path}

	if Exists(path) {
		var err error
		if isYAML(path) {
			err = loadYAML(path, &cfg)
		} else {
			err = loadRC(path, &cfg)
		}
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg, os.Getenv); err != nil {
		return cfg, err
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return cfg, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func loadRC(path string, cfg *Config) error {
	vals, err := godotenv.Read(path)
	if err != nil {
		return err
	}
	return applyEnv(cfg, func(k string) string { return vals[k] })
}

func loadYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var fc Config
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return err
	}
	if fc.Token != "" {
		cfg.Token = fc.Token
	}
	if fc.UserID != "" {
		cfg.UserID = fc.UserID
	}
	if fc.BaseURL != "" {
		cfg.BaseURL = fc.BaseURL
	}
	if fc.Depth > 0 {
		cfg.Depth = fc.Depth
	}
	return nil
}

// applyEnv overrides cfg with every non-empty value returned by get.
func applyEnv(cfg *Config, get func(string) string) error {
	if v := strings.TrimSpace(get(KeyToken)); v != "" {
		cfg.Token = v
	}
	if v := strings.TrimSpace(get(KeyUserID)); v != "" {
		cfg.UserID = v
	}
	if v := strings.TrimSpace(get(KeyBaseURL)); v != "" {
		cfg.BaseURL = v
	}
	if v := strings.TrimSpace(get(KeyDepth)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", KeyDepth, err)
		}
		cfg.Depth = n
	}
	return nil
}

// Save writes cfg to path. The token is required; the file is user-only.
func Save(path string, cfg Config) error {
	if strings.TrimSpace(cfg.Token) == "" {
		return errors.New("config: token is empty")
	}
	if isYAML(path) {
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		return os.WriteFile(path, data, 0o600)
	}

	vals := map[string]string{KeyToken: cfg.Token}
	if cfg.UserID != "" {
		vals[KeyUserID] = cfg.UserID
	}
	if cfg.BaseURL != "" && cfg.BaseURL != DefaultBaseURL {
		vals[KeyBaseURL] = cfg.BaseURL
	}
	if cfg.Depth > 0 && cfg.Depth != DefaultDepth {
		vals[KeyDepth] = strconv.Itoa(cfg.Depth)
	}
	if err := godotenv.Write(vals, path); err != nil {
		return err
	}
	return os.Chmod(path, 0o600)
}

// Validate checks the settings needed to talk to the API.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.BaseURL, validation.Required, is.URL),
		validation.Field(&c.Depth, validation.Required, validation.Min(1), validation.Max(MaxDepth)),
	)
}
