package providers

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sadopc/newlife/internal/structures"
)

const (
	AppName   = "newlife"
	envPrefix = "NEWLIFE"
)

// DefaultConfigDir returns ~/.config/newlife (or the platform equivalent).
func DefaultConfigDir() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, AppName), nil
}

// DefaultConfigPath returns the config file used when --config is not given.
func DefaultConfigPath() (string, error) {
	dir, err := DefaultConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func setDefaults(v *viper.Viper, dir string) {
	v.SetDefault("storage.dbPath", filepath.Join(dir, AppName+".db"))

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.file", filepath.Join(dir, AppName+".log"))
	v.SetDefault("logger.maxSizeMB", 10)
	v.SetDefault("logger.maxBackups", 3)
	v.SetDefault("logger.maxAgeDays", 28)

	v.SetDefault("gateway.endpoint", "https://generativelanguage.googleapis.com")
	v.SetDefault("gateway.model", "gemini-2.5-flash")
	v.SetDefault("gateway.apiKey", "")
	v.SetDefault("gateway.accessToken", "")
	v.SetDefault("gateway.timeout", 20*time.Second)
	v.SetDefault("gateway.ratePerMinute", 10)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.sizeMB", 16)

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.listen", "127.0.0.1:9464")
}

// NewConfigProvider loads the YAML config at flags.ConfigPath. A missing file
// leaves every value at its default; NEWLIFE_* variables override both.
func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	path := flags.ConfigPath
	if path == "" {
		p, err := DefaultConfigPath()
		if err != nil {
			return nil, fmt.Errorf("resolve config path: %w", err)
		}
		path = p
	}

	v := viper.New()
	setDefaults(v, filepath.Dir(path))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("gateway.apiKey", envPrefix+"_GATEWAY_APIKEY", "GEMINI_API_KEY")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(&conf); err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	conf.AppName = AppName
	conf.Path = path
	conf.Debug = flags.DebugMode
	if conf.Debug {
		conf.Logger.Level = "debug"
	}

	if err := NewCnfValidator(&conf).Validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}
