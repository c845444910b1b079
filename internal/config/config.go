package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "ROOMCHAT"

type Config struct {
	Mode       string `mapstructure:"mode" validate:"oneof=debug release test"`
	Port       int    `mapstructure:"port" validate:"min=1,max=65535"`
	StaticPath string `mapstructure:"static_path"`
	LogLevel   string `mapstructure:"log_level"`

	ReadLimit  int64         `mapstructure:"read_limit" validate:"min=1"`
	PingPeriod time.Duration `mapstructure:"ping_period" validate:"gt=0"`
	WriteWait  time.Duration `mapstructure:"write_wait" validate:"gt=0"`
	SendBuffer int           `mapstructure:"send_buffer" validate:"min=1"`

	Secret        string `mapstructure:"secret"`
	SessionMaxAge int    `mapstructure:"session_max_age"`

	TextRateLimit    int           `mapstructure:"text_rate_limit"`
	TextRateInterval time.Duration `mapstructure:"text_rate_interval"`

	RedisAddr    string `mapstructure:"redis_addr"`
	RedisChannel string `mapstructure:"redis_channel"`
}

// Flags returns the command-line flags Load understands.
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("roomchat", pflag.ContinueOnError)
	fs.String("config", "", "path to a yaml config file")
	fs.Int("port", 8080, "listen port")
	fs.String("mode", "release", "gin mode: debug, release or test")
	return fs
}

// Load resolves the config from, lowest first: defaults, the yaml file,
// ROOMCHAT_* environment (a .env file is honoured) and changed flags.
// A missing config file is not an error.
func Load(flags *pflag.FlagSet) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Str("module", "config").Msg(".env not found")
	}

	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)
	if flags != nil {
		if f := flags.Lookup("config"); f != nil && f.Value.String() != "" {
			fileName = f.Value.String()
		}
	}
	v.SetConfigFile(fileName)

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("log_level", "info")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("write_wait", "10s")
	v.SetDefault("send_buffer", 64)
	v.SetDefault("secret", "change-me")
	v.SetDefault("session_max_age", 86400)
	v.SetDefault("text_rate_limit", 10)
	v.SetDefault("text_rate_interval", "1s")
	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_channel", "roomchat")

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if flags != nil {
		for _, name := range []string{"port", "mode"} {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(name, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).
		Str("static", cfg.StaticPath).Bool("redis", cfg.RedisAddr != "").Msg("config ready")
	return &cfg, nil
}
