package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config holds the server settings
type Config struct {
	Server   ServerConfig
	TLS      TLSConfig
	Storage  StorageConfig
	AutoSave AutoSaveConfig
	Sync     SyncConfig
	Import   ImportConfig
}

type ServerConfig struct {
	Host string
	Port string
}

type TLSConfig struct {
	Enabled    bool
	CertFile   string
	KeyFile    string
	MinVersion string
}

type StorageConfig struct {
	DBPath      string
	SnapshotDir string
}

type AutoSaveConfig struct {
	Delay  time.Duration
	MaxAge time.Duration
}

type SyncConfig struct {
	BufferSize int
}

type ImportConfig struct {
	MaxBytes int64
}

// SetDefaults registers the default value of every key on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("tls.enabled", false)
	v.SetDefault("tls.cert_file", "")
	v.SetDefault("tls.key_file", "")
	v.SetDefault("tls.min_version", "1.2")
	v.SetDefault("storage.db_path", "./data/liturgy.db")
	v.SetDefault("storage.snapshot_dir", "~/.liturgy-live/snapshots")
	v.SetDefault("autosave.delay", "2s")
	v.SetDefault("autosave.max_age", "4h")
	v.SetDefault("sync.buffer_size", 64)
	v.SetDefault("import.max_bytes", 10<<20)
}

// LoadConfig reads liturgy-live.yaml (optional) and LITURGY_* environment overrides
func LoadConfig() (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetConfigName("liturgy-live") // .yaml is implicit
	v.SetEnvPrefix("LITURGY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // server.port -> LITURGY_SERVER_PORT
	v.AutomaticEnv()

	if override := os.Getenv("LITURGY_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance
func FromViper(v *viper.Viper) (*Config, error) {
	snapshotDir, err := homedir.Expand(v.GetString("storage.snapshot_dir"))
	if err != nil {
		return nil, fmt.Errorf("failed to expand snapshot dir: %w", err)
	}
	dbPath, err := homedir.Expand(v.GetString("storage.db_path"))
	if err != nil {
		return nil, fmt.Errorf("failed to expand db path: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("server.host"),
			Port: v.GetString("server.port"),
		},
		TLS: TLSConfig{
			Enabled:    v.GetBool("tls.enabled"),
			CertFile:   v.GetString("tls.cert_file"),
			KeyFile:    v.GetString("tls.key_file"),
			MinVersion: v.GetString("tls.min_version"),
		},
		Storage: StorageConfig{
			DBPath:      dbPath,
			SnapshotDir: snapshotDir,
		},
		AutoSave: AutoSaveConfig{
			Delay:  v.GetDuration("autosave.delay"),
			MaxAge: v.GetDuration("autosave.max_age"),
		},
		Sync: SyncConfig{
			BufferSize: v.GetInt("sync.buffer_size"),
		},
		Import: ImportConfig{
			MaxBytes: v.GetInt64("import.max_bytes"),
		},
	}

	if cfg.TLS.Enabled && (cfg.TLS.CertFile == "" || cfg.TLS.KeyFile == "") {
		return nil, fmt.Errorf("tls enabled but cert_file or key_file is empty")
	}
	if cfg.AutoSave.Delay <= 0 {
		return nil, fmt.Errorf("autosave.delay must be positive, got %s", cfg.AutoSave.Delay)
	}
	if cfg.AutoSave.MaxAge <= 0 {
		return nil, fmt.Errorf("autosave.max_age must be positive, got %s", cfg.AutoSave.MaxAge)
	}
	return cfg, nil
}

// Addr is the listen address
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}
