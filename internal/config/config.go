package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const appName = "vibify"

type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderClaude Provider = "claude"
	ProviderGemini Provider = "gemini"
	ProviderGrok   Provider = "grok"
	ProviderSample Provider = "sample"
)

type Config struct {
	Provider    Provider `koanf:"provider" validate:"oneof=openai claude gemini grok sample"`
	Count       int      `koanf:"count" validate:"min=1,max=50"`
	Country     string   `koanf:"country" validate:"len=2,alpha"`
	Database    string   `koanf:"database" validate:"required"`
	MetricsFile string   `koanf:"metrics_file"`

	Log   LogConfig   `koanf:"log"`
	Sonos SonosConfig `koanf:"sonos"`
	Keys  KeysConfig  `koanf:"keys"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=text json logfmt"`
}

type SonosConfig struct {
	URL         string `koanf:"url" validate:"required,url"`
	DefaultRoom string `koanf:"default_room"`
}

// KeysConfig holds provider API keys. Environment variables take precedence.
type KeysConfig struct {
	OpenAI    string `koanf:"openai"`
	Anthropic string `koanf:"anthropic"`
	Google    string `koanf:"google"`
	XAI       string `koanf:"xai"`
}

func init() {
	_ = godotenv.Load()
}

func Defaults() Config {
	return Config{
		Provider: ProviderOpenAI,
		Count:    20,
		Country:  "US",
		Database: defaultDatabase(),
		Log:      LogConfig{Level: "info", Format: "text"},
		Sonos:    SonosConfig{URL: "http://localhost:5005"},
	}
}

// Load reads ~/.config/vibify/config.toml and ./vibify.toml (last wins), applies
// environment overrides and validates the result.
func Load() (Config, error) {
	return LoadFrom(configPaths(), os.Getenv)
}

func LoadFrom(paths []string, getenv func(string) string) (Config, error) {
	k := koanf.New(".")
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load %s: %w", path, err)
		}
	}

	cfg := Defaults()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, err
	}
	applyEnv(&cfg, getenv)

	cfg.Provider = Provider(strings.ToLower(string(cfg.Provider)))
	cfg.Country = strings.ToUpper(cfg.Country)
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.Sonos.URL = strings.TrimRight(cfg.Sonos.URL, "/")
	cfg.Database = expandPath(cfg.Database)
	cfg.MetricsFile = expandPath(cfg.MetricsFile)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New()

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("config validation failed: %s: %v does not satisfy %q", fe.Namespace(), fe.Value(), fe.Tag())
		}
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config, getenv func(string) string) {
	set := func(dst *string, keys ...string) {
		if v := firstNonEmpty(mapEnv(getenv, keys)...); v != "" {
			*dst = v
		}
	}
	set(&cfg.Keys.OpenAI, "OPENAI_API_KEY")
	set(&cfg.Keys.Anthropic, "ANTHROPIC_API_KEY")
	set(&cfg.Keys.Google, "GOOGLE_API_KEY")
	set(&cfg.Keys.XAI, "XAI_API_KEY", "GROK_API_KEY")
	set(&cfg.Sonos.URL, "SONOS_API_URL")
	set(&cfg.Sonos.DefaultRoom, "SONOS_DEFAULT_ROOM")
	set(&cfg.Database, "VIBIFY_DB")
	set(&cfg.Log.Level, "VIBIFY_LOG_LEVEL")
	provider := string(cfg.Provider)
	set(&provider, "VIBIFY_PROVIDER")
	cfg.Provider = Provider(provider)
}

func mapEnv(getenv func(string) string, keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, getenv(k))
	}
	return out
}

func configPaths() []string {
	paths := []string{}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", appName, "config.toml"))
	}
	return append(paths, appName+".toml")
}

func defaultDatabase() string {
	path, err := xdg.DataFile(filepath.Join(appName, appName+".db"))
	if err != nil {
		return appName + ".db"
	}
	return path
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
