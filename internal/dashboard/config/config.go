// Package config loads dashboard settings from defaults, an optional YAML
// file and DASHBOARD_* environment variables, in that order.
package config

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix prefixes every environment override. A double underscore
	// separates nested keys: DASHBOARD_HTTP__ADDRESS sets http.address.
	// Without one, the section name ends at the first underscore, so
	// DASHBOARD_LOG_LEVEL sets log.level.
	EnvPrefix = "DASHBOARD_"
	// DefaultPath is read when no --config flag is given.
	DefaultPath = "dashboard.yml"
)

// Storage drivers.
const (
	DriverSQLite    = "sqlite"
	DriverMemory    = "memory"
	DriverFirestore = "firestore"
)

// Config is the full dashboard configuration.
type Config struct {
	HTTP    HTTPConfig    `koanf:"http" yaml:"http"`
	Storage StorageConfig `koanf:"storage" yaml:"storage"`
	Session SessionConfig `koanf:"session" yaml:"session"`
	CSRF    CSRFConfig    `koanf:"csrf" yaml:"csrf"`
	Uploads UploadsConfig `koanf:"uploads" yaml:"uploads"`
	Log     LogConfig     `koanf:"log" yaml:"log"`
}

// HTTPConfig configures the listener.
type HTTPConfig struct {
	Address         string        `koanf:"address" yaml:"address"`
	BasePath        string        `koanf:"base_path" yaml:"base_path"`
	Environment     string        `koanf:"environment" yaml:"environment"`
	ReadTimeout     time.Duration `koanf:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout" yaml:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout" yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// StorageConfig selects and configures the storage backend.
type StorageConfig struct {
	Driver            string `koanf:"driver" yaml:"driver"`
	SQLitePath        string `koanf:"sqlite_path" yaml:"sqlite_path"`
	FirestoreProject  string `koanf:"firestore_project" yaml:"firestore_project"`
	FirestoreEmulator string `koanf:"firestore_emulator" yaml:"firestore_emulator"`
	// FirestoreCredentials is a service account key file. Empty uses
	// application default credentials.
	FirestoreCredentials string        `koanf:"firestore_credentials" yaml:"firestore_credentials"`
	FirestoreDialTimeout time.Duration `koanf:"firestore_dial_timeout" yaml:"firestore_dial_timeout"`
	QuotaBytes           int64         `koanf:"quota_bytes" yaml:"quota_bytes"`
}

// SessionConfig configures the workspace cookie. Keys are base64 encoded;
// when HashKey is empty a random key is generated at startup, which means
// browsers lose their workspace on restart.
type SessionConfig struct {
	CookieName string        `koanf:"cookie_name" yaml:"cookie_name"`
	HashKey    string        `koanf:"hash_key" yaml:"hash_key"`
	BlockKey   string        `koanf:"block_key" yaml:"block_key"`
	Secure     bool          `koanf:"secure" yaml:"secure"`
	Lifetime   time.Duration `koanf:"lifetime" yaml:"lifetime"`
}

// CSRFConfig configures double-submit protection.
type CSRFConfig struct {
	CookieName string `koanf:"cookie_name" yaml:"cookie_name"`
	HeaderName string `koanf:"header_name" yaml:"header_name"`
	FieldName  string `koanf:"field_name" yaml:"field_name"`
}

// UploadsConfig bounds uploads.
type UploadsConfig struct {
	MaxAvatarBytes int `koanf:"max_avatar_bytes" yaml:"max_avatar_bytes"`
}

// LogConfig configures zap.
type LogConfig struct {
	Level string `koanf:"level" yaml:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:         ":8080",
			BasePath:        "/",
			Environment:     "Development",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			Driver:     DriverSQLite,
			SQLitePath: "data/dashboard.db",
			QuotaBytes: 5 << 20,
		},
		Session: SessionConfig{
			CookieName: "dashboard_session",
			Lifetime:   400 * 24 * time.Hour,
		},
		CSRF: CSRFConfig{
			CookieName: "dashboard_csrf",
			HeaderName: "X-CSRF-Token",
			FieldName:  "csrf_token",
		},
		Uploads: UploadsConfig{
			MaxAvatarBytes: 2 << 20,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads path (when it exists) and environment overrides on top of the
// defaults, then validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// sections are the top-level config keys. None contains an underscore, so
// the first underscore after a section name can stand in for the dot.
var sections = []string{"http", "storage", "session", "csrf", "uploads", "log"}

// envKey maps DASHBOARD_STORAGE__SQLITE_PATH and DASHBOARD_STORAGE_SQLITE_PATH
// to storage.sqlite_path.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if strings.Contains(s, "__") {
		return strings.ReplaceAll(s, "__", ".")
	}
	section, rest, ok := strings.Cut(s, "_")
	if ok && slices.Contains(sections, section) {
		return section + "." + rest
	}
	return s
}

// ValidationError is returned when configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var invalid []string

	if strings.TrimSpace(c.HTTP.Address) == "" {
		invalid = append(invalid, "http.address")
	}
	if c.HTTP.ReadTimeout <= 0 {
		invalid = append(invalid, "http.read_timeout")
	}
	if c.HTTP.WriteTimeout <= 0 {
		invalid = append(invalid, "http.write_timeout")
	}
	switch c.Storage.Driver {
	case DriverMemory:
	case DriverSQLite:
		if strings.TrimSpace(c.Storage.SQLitePath) == "" {
			invalid = append(invalid, "storage.sqlite_path")
		}
	case DriverFirestore:
		if strings.TrimSpace(c.Storage.FirestoreProject) == "" && os.Getenv("GOOGLE_CLOUD_PROJECT") == "" {
			invalid = append(invalid, "storage.firestore_project")
		}
	default:
		invalid = append(invalid, "storage.driver")
	}
	if c.Storage.QuotaBytes < 0 {
		invalid = append(invalid, "storage.quota_bytes")
	}
	if _, err := decodeKey(c.Session.HashKey); err != nil {
		invalid = append(invalid, "session.hash_key")
	}
	if block, err := decodeKey(c.Session.BlockKey); err != nil || !validBlockKey(block) {
		invalid = append(invalid, "session.block_key")
	}
	if strings.TrimSpace(c.CSRF.HeaderName) == "" {
		invalid = append(invalid, "csrf.header_name")
	}
	if strings.TrimSpace(c.CSRF.FieldName) == "" {
		invalid = append(invalid, "csrf.field_name")
	}
	if c.Uploads.MaxAvatarBytes <= 0 {
		invalid = append(invalid, "uploads.max_avatar_bytes")
	}
	switch strings.ToLower(strings.TrimSpace(c.Log.Level)) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		invalid = append(invalid, "log.level")
	}

	if len(invalid) > 0 {
		return &ValidationError{fields: invalid}
	}
	return nil
}

// SessionKeys decodes the cookie keys. A missing hash key is replaced with
// a random one and reported through generated.
func (c *Config) SessionKeys() (hash, block []byte, generated bool, err error) {
	hash, err = decodeKey(c.Session.HashKey)
	if err != nil {
		return nil, nil, false, err
	}
	block, err = decodeKey(c.Session.BlockKey)
	if err != nil {
		return nil, nil, false, err
	}
	if len(hash) == 0 {
		hash = make([]byte, 32)
		if _, err := rand.Read(hash); err != nil {
			return nil, nil, false, fmt.Errorf("generate session key: %w", err)
		}
		generated = true
	}
	return hash, block, generated, nil
}

var errKeyEncoding = errors.New("config: key must be base64")

func decodeKey(raw string) ([]byte, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if key, err := base64.StdEncoding.DecodeString(raw); err == nil {
		return key, nil
	}
	if key, err := base64.RawURLEncoding.DecodeString(raw); err == nil {
		return key, nil
	}
	return nil, errKeyEncoding
}

func validBlockKey(key []byte) bool {
	switch len(key) {
	case 0, 16, 24, 32:
		return true
	}
	return false
}
