package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// ErrMissingAPIKey is returned by RequireAPIKey when the selected provider needs a
// credential and none was configured.
var ErrMissingAPIKey = errors.New("GOOGLE_API_KEY environment variable not set")

const (
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"

	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreSQL    = "sql"
)

type ServerConfig struct {
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	Subpath string `mapstructure:"subpath"`
	Mode    string `mapstructure:"mode"` // gin mode: debug, release, test
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console or json
}

type BreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	FailureThreshold int           `mapstructure:"failure_threshold"`
	OpenTimeout      time.Duration `mapstructure:"open_timeout"`
}

type LLMConfig struct {
	Provider string        `mapstructure:"provider"`
	Model    string        `mapstructure:"model"`
	APIKey   string        `mapstructure:"api_key"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Breaker  BreakerConfig `mapstructure:"breaker"`
	Ollama   struct {
		Host string `mapstructure:"host"`
	} `mapstructure:"ollama"`
}

type ChatConfig struct {
	Instruction string `mapstructure:"instruction"`
	Store       string `mapstructure:"store"`
}

type GuideConfig struct {
	DocumentPath    string  `mapstructure:"document_path"`
	Instruction     string  `mapstructure:"instruction"`
	MaxOutputTokens int32   `mapstructure:"max_output_tokens"`
	Temperature     float32 `mapstructure:"temperature"`
	CacheFailures   bool    `mapstructure:"cache_failures"`
	Store           string  `mapstructure:"store"`
}

type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // postgres or sqlite
	DSN    string `mapstructure:"dsn"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Chat     ChatConfig     `mapstructure:"chat"`
	Guide    GuideConfig    `mapstructure:"guide"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Database DatabaseConfig `mapstructure:"database"`
}

const (
	DefaultChatInstruction  = "Please answer in two sentences or less."
	DefaultGuideInstruction = "Answer the user's question using ONLY the information from the following Markdown user guide. " +
		"If the answer is not present, state that the guide does not contain this information, " +
		"and suggest contacting Technical Support or the Community Forum as listed in the Additional Resources section."
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.subpath", "")
	v.SetDefault("server.mode", "release")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("llm.provider", ProviderGemini)
	v.SetDefault("llm.model", "gemini-2.0-flash-lite")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.timeout", 60*time.Second)
	v.SetDefault("llm.breaker.enabled", true)
	v.SetDefault("llm.breaker.failure_threshold", 5)
	v.SetDefault("llm.breaker.open_timeout", 30*time.Second)
	v.SetDefault("llm.ollama.host", "http://localhost:11434")

	v.SetDefault("chat.instruction", DefaultChatInstruction)
	v.SetDefault("chat.store", StoreMemory)

	v.SetDefault("guide.document_path", "sample_user_guide.md")
	v.SetDefault("guide.instruction", DefaultGuideInstruction)
	v.SetDefault("guide.max_output_tokens", 256)
	v.SetDefault("guide.temperature", 0.2)
	v.SetDefault("guide.cache_failures", true)
	v.SetDefault("guide.store", StoreMemory)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "go-gemini")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "go-gemini.db")
}

var (
	once   sync.Once
	cfg    *Config
	cfgErr error
)

// LoadConfig reads the config file and environment (singleton).
// An empty path searches ./config.{json,yaml}; a missing default file is not an error.
func LoadConfig(path string) (*Config, error) {
	once.Do(func() {
		c, err := load(path)
		if err != nil {
			cfgErr = err
			return
		}
		cfg = c
	})
	return cfg, cfgErr
}

func load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("GOGEMINI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("llm.api_key", "GOGEMINI_LLM_API_KEY", "GOOGLE_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind env: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("invalid config format: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("invalid config format: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderGemini, ProviderOllama:
	default:
		return fmt.Errorf("unknown llm provider %q (supported: gemini, ollama)", c.LLM.Provider)
	}
	if c.LLM.Model == "" {
		return errors.New("llm.model must be set")
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("unknown server mode %q (supported: debug, release, test)", c.Server.Mode)
	}
	for name, store := range map[string]string{"chat.store": c.Chat.Store, "guide.store": c.Guide.Store} {
		switch store {
		case StoreMemory, StoreRedis, StoreSQL:
		default:
			return fmt.Errorf("%s: unknown store %q (supported: memory, redis, sql)", name, store)
		}
	}
	if c.Chat.Store == StoreSQL || c.Guide.Store == StoreSQL {
		switch c.Database.Driver {
		case "postgres", "sqlite":
		default:
			return fmt.Errorf("unknown database driver %q (supported: postgres, sqlite)", c.Database.Driver)
		}
	}
	return nil
}

// RequireAPIKey fails when the configured provider needs a credential and none is set.
func (c *Config) RequireAPIKey() error {
	if c.LLM.Provider == ProviderGemini && c.LLM.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// Addr returns host:port for the HTTP listener.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GetConfig returns the loaded config (must call LoadConfig first)
func GetConfig() *Config {
	return cfg
}

// ResetConfigForTest resets the singleton state (for testing only)
func ResetConfigForTest() {
	once = sync.Once{}
	cfg = nil
	cfgErr = nil
}
