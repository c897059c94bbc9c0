package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel   string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string `yaml:"socket-port" env:"SOCKET_PORT" env-default:"8080"`
	Redis      Redis  `yaml:"redis"`
	Match      Match  `yaml:"match"`
	I18n       I18n   `yaml:"i18n"`
}

type Redis struct {
	Host       string        `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port       string        `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password   string        `yaml:"password" env:"REDIS_PASSWORD" env-default:""`
	DB         int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	SessionTTL time.Duration `yaml:"session-ttl" env:"REDIS_SESSION_TTL" env-default:"30m"`
}

type Match struct {
	DefaultMode      string        `yaml:"default-mode" env:"MATCH_DEFAULT_MODE" env-default:"simple"`
	AutoResetSeconds int           `yaml:"auto-reset-seconds" env:"MATCH_AUTO_RESET_SECONDS" env-default:"5"`
	TickInterval     time.Duration `yaml:"tick-interval" env:"MATCH_TICK_INTERVAL" env-default:"1s"`
}

type I18n struct {
	DefaultLanguage  string `yaml:"default-language" env:"I18N_DEFAULT_LANGUAGE" env-default:"pt"`
	TranslationsPath string `yaml:"translations-path" env:"I18N_TRANSLATIONS_PATH" env-default:""`
}

// Load reads config.yml at path and applies environment overrides.
func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	return config, nil
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	if that.Host == "" {
		return ""
	}

	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
