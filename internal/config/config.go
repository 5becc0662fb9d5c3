package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/semmidev/odoodrive/internal/infrastructure/scheduler"
	"github.com/spf13/viper"
)

const envPrefix = "ODOODRIVE"

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Odoo     OdooConfig     `mapstructure:"odoo"`
	Backup   BackupConfig   `mapstructure:"backup"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

type AppConfig struct {
	Name     string `mapstructure:"name"`
	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`
}

type OdooConfig struct {
	URL            string        `mapstructure:"url"`
	MasterPassword string        `mapstructure:"master_password"`
	Database       string        `mapstructure:"database"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

type BackupConfig struct {
	TempDir       string         `mapstructure:"temp_dir"`
	Format        string         `mapstructure:"format"`
	Schedule      string         `mapstructure:"schedule"`
	MaxBackups    int            `mapstructure:"max_backups"`
	Verify        bool           `mapstructure:"verify"`
	UploadTargets []UploadTarget `mapstructure:"upload_targets"`
}

type UploadTarget struct {
	Name    string `mapstructure:"name"`
	Type    string `mapstructure:"type"`
	Enabled bool   `mapstructure:"enabled"`

	// Overrides backup.max_backups when set.
	MaxBackups *int `mapstructure:"max_backups"`

	// Google Drive
	CredentialsPath string `mapstructure:"credentials_path"`
	CredentialsFile string `mapstructure:"credentials_file"`
	FolderID        string `mapstructure:"folder_id"`

	// AWS S3 and compatible services
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`

	// Local directory
	Path string `mapstructure:"path"`
}

type TelegramConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	BotToken      string `mapstructure:"bot_token"`
	ChatID        int64  `mapstructure:"chat_id"`
	OnFailureOnly bool   `mapstructure:"on_failure_only"`
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("app.name", "odoodrive")
	v.SetDefault("app.log_level", "info")
	// Registered so that ODOODRIVE_ODOO_* variables apply even when the
	// file leaves them out.
	v.SetDefault("odoo.url", "")
	v.SetDefault("odoo.master_password", "")
	v.SetDefault("odoo.database", "")
	v.SetDefault("odoo.timeout", "0s")
	v.SetDefault("backup.temp_dir", "/tmp")
	v.SetDefault("backup.format", "zip")
	v.SetDefault("backup.max_backups", 2)
	v.SetDefault("backup.verify", true)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Odoo.URL = strings.TrimRight(cfg.Odoo.URL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Odoo.URL == "" {
		return fmt.Errorf("odoo.url is required")
	}
	if c.Odoo.MasterPassword == "" {
		return fmt.Errorf("odoo.master_password is required")
	}
	if c.Odoo.Database == "" {
		return fmt.Errorf("odoo.database is required")
	}
	if c.Odoo.Timeout < 0 {
		return fmt.Errorf("odoo.timeout must not be negative")
	}

	switch c.Backup.Format {
	case "zip", "dump":
	default:
		return fmt.Errorf("backup.format must be zip or dump, got %q", c.Backup.Format)
	}
	if c.Backup.TempDir == "" {
		return fmt.Errorf("backup.temp_dir is required")
	}
	if c.Backup.MaxBackups <= 0 {
		return fmt.Errorf("backup.max_backups must be a positive integer")
	}

	targets := c.GetEnabledUploadTargets()
	if len(targets) == 0 {
		return fmt.Errorf("at least one enabled upload target is required")
	}

	for i, target := range c.Backup.UploadTargets {
		if !target.Enabled {
			continue
		}
		if err := target.validate(); err != nil {
			return fmt.Errorf("upload_targets[%d]: %w", i, err)
		}
		if target.Type == "local" && samePath(target.Path, c.Backup.TempDir) {
			return fmt.Errorf("upload_targets[%d]: path must differ from backup.temp_dir", i)
		}
	}

	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when enabled")
		}
		if c.Telegram.ChatID == 0 {
			return fmt.Errorf("telegram.chat_id is required when enabled")
		}
	}

	return nil
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

func (t *UploadTarget) validate() error {
	if t.MaxBackups != nil && *t.MaxBackups <= 0 {
		return fmt.Errorf("max_backups must be a positive integer")
	}

	switch t.Type {
	case "gdrive":
		if t.FolderID == "" {
			return fmt.Errorf("folder_id is required for gdrive")
		}
		if t.CredentialsPath == "" {
			return fmt.Errorf("credentials_path is required for gdrive")
		}
	case "s3":
		if t.Bucket == "" {
			return fmt.Errorf("bucket is required for s3")
		}
		if t.Region == "" {
			return fmt.Errorf("region is required for s3")
		}
	case "local":
		if t.Path == "" {
			return fmt.Errorf("path is required for local")
		}
	default:
		return fmt.Errorf("unknown upload target type: %q", t.Type)
	}

	return nil
}

// ValidateSchedule checks backup.schedule, which only the daemon needs.
func (c *Config) ValidateSchedule() error {
	if c.Backup.Schedule == "" {
		return fmt.Errorf("backup.schedule is required to run as a daemon")
	}

	if _, err := scheduler.Parser.Parse(c.Backup.Schedule); err != nil {
		return fmt.Errorf("invalid backup.schedule: %w", err)
	}
	return nil
}

func (c *Config) GetEnabledUploadTargets() []UploadTarget {
	var enabled []UploadTarget
	for _, target := range c.Backup.UploadTargets {
		if target.Enabled {
			enabled = append(enabled, target)
		}
	}
	return enabled
}

// RetentionFor returns the number of archives to keep in a target.
func (c *Config) RetentionFor(t UploadTarget) int {
	if t.MaxBackups != nil {
		return *t.MaxBackups
	}
	return c.Backup.MaxBackups
}

// DisplayName is the target name used in logs and reports.
func (t UploadTarget) DisplayName() string {
	if t.Name != "" {
		return t.Name
	}
	return t.Type
}

// CredentialsFilePath is the service-account key location,
// {credentials_path}/credentials.json unless credentials_file overrides it.
func (t UploadTarget) CredentialsFilePath() string {
	name := t.CredentialsFile
	if name == "" {
		name = "credentials.json"
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(t.CredentialsPath, name)
}
