package structures

import "time"

type CliFlags struct {
	ConfigPath string
	DebugMode  bool
}

type StorageConfig struct {
	DBPath string `mapstructure:"dbPath" validate:"required"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	File       string `mapstructure:"file" validate:"required"`
	MaxSizeMB  int    `mapstructure:"maxSizeMB" validate:"min:1"`
	MaxBackups int    `mapstructure:"maxBackups" validate:"min:0"`
	MaxAgeDays int    `mapstructure:"maxAgeDays" validate:"min:0"`
}

type GatewayConfig struct {
	Endpoint      string        `mapstructure:"endpoint" validate:"required|fullUrl"`
	Model         string        `mapstructure:"model" validate:"required"`
	APIKey        string        `mapstructure:"apiKey"`
	AccessToken   string        `mapstructure:"accessToken"`
	Timeout       time.Duration `mapstructure:"timeout" validate:"required|min:1"`
	RatePerMinute int           `mapstructure:"ratePerMinute" validate:"min:1"`
}

// Enabled reports whether any credential is configured.
func (g GatewayConfig) Enabled() bool {
	return g.APIKey != "" || g.AccessToken != ""
}

type CacheConfig struct {
	Enabled bool `mapstructure:"enabled"`
	SizeMB  int  `mapstructure:"sizeMB" validate:"min:0"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
}

type Config struct {
	AppName string        `mapstructure:"-"`
	Debug   bool          `mapstructure:"-"`
	Path    string        `mapstructure:"-"`
	Storage StorageConfig `mapstructure:"storage"`
	Logger  LoggerConfig  `mapstructure:"logger"`
	Gateway GatewayConfig `mapstructure:"gateway"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}
