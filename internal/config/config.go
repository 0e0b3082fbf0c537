// Package config assembles runtime settings from defaults, an optional YAML
// file, an optional .env file and the process environment, in that order of
// increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/dukerupert/homeeasy/internal/backup"
	"github.com/dukerupert/homeeasy/internal/database"
	"github.com/dukerupert/homeeasy/internal/logging"
	"github.com/dukerupert/homeeasy/internal/roster"
)

// Environment variable names.
const (
	EnvConfig          = "HOMEEASY_CONFIG"
	EnvPort            = "HOMEEASY_PORT"
	EnvDBDriver        = "HOMEEASY_DB_DRIVER"
	EnvDBDSN           = "HOMEEASY_DB_DSN"
	EnvDatabaseURL     = "DATABASE_URL"
	EnvLogLevel        = "HOMEEASY_LOG_LEVEL"
	EnvLogFormat       = "HOMEEASY_LOG_FORMAT"
	EnvRedisAddr       = "HOMEEASY_REDIS_ADDR"
	EnvRedisPassword   = "HOMEEASY_REDIS_PASSWORD"
	EnvRedisDB         = "HOMEEASY_REDIS_DB"
	EnvPageSize        = "HOMEEASY_PAGE_SIZE"
	EnvRequireTourDate = "HOMEEASY_REQUIRE_TOUR_DATE"
	EnvStaff           = "HOMEEASY_STAFF"
	EnvAllowedOrigins  = "HOMEEASY_ALLOWED_ORIGINS"

	EnvS3Endpoint       = "HOMEEASY_S3_ENDPOINT"
	EnvS3Bucket         = "HOMEEASY_S3_BUCKET"
	EnvS3Region         = "HOMEEASY_S3_REGION"
	EnvS3AccessKey      = "HOMEEASY_S3_ACCESS_KEY"
	EnvS3SecretKey      = "HOMEEASY_S3_SECRET_KEY"
	EnvS3Prefix         = "HOMEEASY_S3_PREFIX"
	EnvBackupPassphrase = "HOMEEASY_BACKUP_PASSPHRASE"
)

type Config struct {
	Port      string          `yaml:"port"`
	Database  DatabaseConfig  `yaml:"database"`
	Log       LogConfig       `yaml:"log"`
	Redis     RedisConfig     `yaml:"redis"`
	Roster    RosterConfig    `yaml:"roster"`
	Intake    IntakeConfig    `yaml:"intake"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Backup    BackupConfig    `yaml:"backup"`

	// Staff maps a login name to its bcrypt hash. Empty disables auth.
	Staff map[string]string `yaml:"staff"`

	// AllowedOrigins are extra hosts whose pages may open the change feed.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite or postgres
	DSN    string `yaml:"dsn"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

type RedisConfig struct {
	Addr     string `yaml:"addr"` // empty means in-process locks
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type RosterConfig struct {
	PageSize int `yaml:"page_size"`
}

type IntakeConfig struct {
	RequireTourDate bool `yaml:"require_tour_date"`
}

// RateLimitConfig bounds submissions per client IP.
type RateLimitConfig struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

// BackupConfig locates encrypted database snapshots.
type BackupConfig struct {
	S3         backup.S3Config `yaml:"s3"`
	Passphrase string          `yaml:"passphrase"`
}

// Default returns the settings used when nothing else is configured.
func Default() *Config {
	return &Config{
		Port: "8080",
		Database: DatabaseConfig{
			Driver: database.DriverSQLite,
			DSN:    "homeeasy.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: logging.FormatText,
		},
		Roster:    RosterConfig{PageSize: roster.DefaultPageSize},
		RateLimit: RateLimitConfig{Requests: 30, Window: time.Minute},
		Staff:     map[string]string{},
	}
}

// Load reads .env from the working directory when present, then the YAML
// file named by HOMEEASY_CONFIG, then applies environment overrides and
// validates the result.
func Load() (*Config, error) {
	return LoadPath("")
}

// LoadPath is Load with an explicit YAML file. An empty path falls back to
// HOMEEASY_CONFIG, which may itself be unset.
func LoadPath(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays the YAML file at path onto c. Keys absent from the file
// keep their current values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	if c.Staff == nil {
		c.Staff = map[string]string{}
	}
	return nil
}

// ApplyEnv overlays environment variables onto c. DATABASE_URL selects
// postgres unless HOMEEASY_DB_DSN or HOMEEASY_DB_DRIVER say otherwise.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get(EnvPort); ok {
		c.Port = v
	}
	if v, ok := get(EnvDatabaseURL); ok {
		c.Database.Driver = database.DriverPostgres
		c.Database.DSN = v
	}
	if v, ok := get(EnvDBDriver); ok {
		c.Database.Driver = strings.ToLower(v)
	}
	if v, ok := get(EnvDBDSN); ok {
		c.Database.DSN = v
	}
	if v, ok := get(EnvLogLevel); ok {
		c.Log.Level = v
	}
	if v, ok := get(EnvLogFormat); ok {
		c.Log.Format = v
	}
	if v, ok := get(EnvRedisAddr); ok {
		c.Redis.Addr = v
	}
	if v, ok := get(EnvRedisPassword); ok {
		c.Redis.Password = v
	}
	if v, ok := get(EnvRedisDB); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRedisDB, err)
		}
		c.Redis.DB = n
	}
	if v, ok := get(EnvPageSize); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPageSize, err)
		}
		c.Roster.PageSize = n
	}
	if v, ok := get(EnvRequireTourDate); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRequireTourDate, err)
		}
		c.Intake.RequireTourDate = b
	}
	if v, ok := get(EnvAllowedOrigins); ok {
		c.AllowedOrigins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				c.AllowedOrigins = append(c.AllowedOrigins, o)
			}
		}
	}
	for key, dst := range map[string]*string{
		EnvS3Endpoint:       &c.Backup.S3.Endpoint,
		EnvS3Bucket:         &c.Backup.S3.Bucket,
		EnvS3Region:         &c.Backup.S3.Region,
		EnvS3AccessKey:      &c.Backup.S3.AccessKey,
		EnvS3SecretKey:      &c.Backup.S3.SecretKey,
		EnvS3Prefix:         &c.Backup.S3.Prefix,
		EnvBackupPassphrase: &c.Backup.Passphrase,
	} {
		if v, ok := get(key); ok {
			*dst = v
		}
	}
	if v, ok := get(EnvStaff); ok {
		staff, err := parseStaff(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvStaff, err)
		}
		c.Staff = staff
	}
	return nil
}

// parseStaff reads "name:hash,name:hash". bcrypt hashes never contain a
// comma or a colon.
func parseStaff(s string) (map[string]string, error) {
	out := map[string]string{}
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, hash, ok := strings.Cut(pair, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" || hash == "" {
			return nil, fmt.Errorf("malformed staff entry %q", pair)
		}
		out[name] = strings.TrimSpace(hash)
	}
	return out, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if p, err := strconv.Atoi(c.Port); err != nil || p < 1 || p > 65535 {
		errs = append(errs, fmt.Errorf("port %q is not a valid TCP port", c.Port))
	}
	switch c.Database.Driver {
	case database.DriverSQLite, database.DriverPostgres:
	default:
		errs = append(errs, fmt.Errorf("database driver %q is not supported", c.Database.Driver))
	}
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("database dsn is required"))
	}
	if _, ok := logging.ParseLevel(c.Log.Level); !ok {
		errs = append(errs, fmt.Errorf("log level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	if !logging.ValidFormat(c.Log.Format) {
		errs = append(errs, fmt.Errorf("log format %q is not text or json", c.Log.Format))
	}
	if c.Roster.PageSize < 1 || c.Roster.PageSize > roster.MaxPageSize {
		errs = append(errs, fmt.Errorf("roster page size must be between 1 and %d", roster.MaxPageSize))
	}
	if c.RateLimit.Requests < 1 || c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("rate limit needs positive requests and window"))
	}
	if c.Backup.S3.Bucket != "" && !c.Backup.S3.Enabled() {
		errs = append(errs, errors.New("backup s3 bucket needs an access key and secret key"))
	}
	for name, hash := range c.Staff {
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			errs = append(errs, fmt.Errorf("staff %q: invalid bcrypt hash: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string { return ":" + c.Port }
