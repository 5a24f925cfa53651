// Package config はサーバーの設定を読み込みます。
//
// 優先順位は 既定値 < YAML ファイル (WEAKCACHE_CONFIG_FILE) < 環境変数 です。
// カレントディレクトリに .env があれば環境変数として先に読み込みます。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var (
	// ErrParsingConfig は環境変数を解析できなかったときに返されます。
	ErrParsingConfig = errors.New("failed to parse environment variables into config")
	// ErrReadingFile は設定ファイルを読めなかったときに返されます。
	ErrReadingFile = errors.New("failed to read config file")
	// ErrInvalidConfig は値の検証に失敗したときに返されます。
	ErrInvalidConfig = errors.New("invalid config")
)

// FileEnv は YAML 設定ファイルのパスを指定する環境変数です。
const FileEnv = "WEAKCACHE_CONFIG_FILE"

// Config はサーバーの設定です。
type Config struct {
	HTTPAddr             string        `yaml:"http_addr" env:"WEAKCACHE_HTTP_ADDR"`
	CleanupInterval      time.Duration `yaml:"cleanup_interval" env:"WEAKCACHE_CLEANUP_INTERVAL"` // 0 でスイーパー無効
	Shards               int           `yaml:"shards" env:"WEAKCACHE_SHARDS"`
	ShardPadding         bool          `yaml:"shard_padding" env:"WEAKCACHE_SHARD_PADDING"`
	PrimitivesAlwaysHard bool          `yaml:"primitives_always_hard" env:"WEAKCACHE_PRIMITIVES_ALWAYS_HARD"`
	LogLevel             string        `yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat            string        `yaml:"log_format" env:"LOG_FORMAT"`
	MetricsEnabled       bool          `yaml:"metrics_enabled" env:"WEAKCACHE_METRICS_ENABLED"`
	MetricsNamespace     string        `yaml:"metrics_namespace" env:"WEAKCACHE_METRICS_NAMESPACE"`
	ReadHeaderTimeout    time.Duration `yaml:"read_header_timeout" env:"WEAKCACHE_READ_HEADER_TIMEOUT"`
	ShutdownTimeout      time.Duration `yaml:"shutdown_timeout" env:"WEAKCACHE_SHUTDOWN_TIMEOUT"`
}

// Default は既定値の設定を返します。
func Default() Config {
	return Config{
		HTTPAddr:          ":8080",
		CleanupInterval:   60 * time.Second,
		Shards:            16,
		LogLevel:          "info",
		LogFormat:         "text",
		MetricsEnabled:    true,
		MetricsNamespace:  "weakcache",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
	}
}

// Load は既定値、設定ファイル、環境変数の順に設定を重ねて返します。
func Load() (Config, error) {
	// .env が無いのは構わないが、壊れた .env は黙って無視しない
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, errors.Join(ErrReadingFile, err)
	}
	return LoadFrom(os.Getenv(FileEnv), env.ToMap(os.Environ()))
}

// LoadFrom は path の YAML ファイル (空なら読まない) と environ を使って設定を作ります。
func LoadFrom(path string, environ map[string]string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Join(ErrReadingFile, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, errors.Join(ErrReadingFile, err)
		}
	}
	// 未設定の環境変数はファイルの値を上書きしない
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate は設定値を検証します。
func (c Config) Validate() error {
	var errs []error
	if c.HTTPAddr == "" {
		errs = append(errs, fmt.Errorf("%w: http_addr is empty", ErrInvalidConfig))
	}
	if c.CleanupInterval < 0 {
		errs = append(errs, fmt.Errorf("%w: cleanup_interval must not be negative", ErrInvalidConfig))
	}
	if c.Shards < 0 {
		errs = append(errs, fmt.Errorf("%w: shards must not be negative", ErrInvalidConfig))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat))
	}
	return errors.Join(errs...)
}
