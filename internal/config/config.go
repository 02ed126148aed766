package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/dkeye/pairsignal/internal/app"
	"github.com/dkeye/pairsignal/internal/netaddr"
)

const DefaultPort = 3030

type Config struct {
	Mode       string `mapstructure:"mode"`
	Port       int    `mapstructure:"port"`
	StaticPath string `mapstructure:"static_path"`
	Secret     string `mapstructure:"secret"`
	LogLevel   string `mapstructure:"log_level"`

	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
	PongWait   time.Duration `mapstructure:"pong_wait"`
	WriteWait  time.Duration `mapstructure:"write_wait"`
	SendBuffer int           `mapstructure:"send_buffer"`

	// IPExclude lists addresses never reported by ipaddr.
	IPExclude    []string `mapstructure:"ip_exclude"`
	ClientLog    bool     `mapstructure:"client_log"`
	Backpressure string   `mapstructure:"backpressure"`

	RateLimitEvents   int           `mapstructure:"rate_limit_events"`
	RateLimitInterval time.Duration `mapstructure:"rate_limit_interval"`

	ICEURLs       []string `mapstructure:"ice_urls"`
	ICEUsername   string   `mapstructure:"ice_username"`
	ICECredential string   `mapstructure:"ice_credential"`
}

// Load reads config/config.<CONFIG_ENV>.yaml if present, then applies
// environment overrides. PORT sets the port; every other key can be set as
// PAIRSIGNAL_<KEY>.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)
	v.SetConfigFile(fileName)

	v.SetDefault("mode", "release")
	v.SetDefault("port", DefaultPort)
	v.SetDefault("static_path", "./web")
	v.SetDefault("secret", "change-me")
	v.SetDefault("log_level", "info")
	v.SetDefault("read_limit", 65536)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("pong_wait", "60s")
	v.SetDefault("write_wait", "10s")
	v.SetDefault("send_buffer", 64)
	v.SetDefault("ip_exclude", []string{})
	v.SetDefault("client_log", true)
	v.SetDefault("backpressure", "drop")
	v.SetDefault("rate_limit_events", 50)
	v.SetDefault("rate_limit_interval", "1s")
	v.SetDefault("ice_urls", []string{"stun:stun.l.google.com:19302"})
	v.SetDefault("ice_username", "")
	v.SetDefault("ice_credential", "")

	v.SetEnvPrefix("PAIRSIGNAL")
	v.AutomaticEnv()
	if err := v.BindEnv("port", "PORT"); err != nil {
		return nil, fmt.Errorf("bind PORT: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", fileName, err)
		}
		log.Info().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Str("static", cfg.StaticPath).Msg("config ready")
	return &cfg, nil
}

var (
	ErrInvalidPort      = errors.New("invalid port")
	ErrInvalidKeepalive = errors.New("ping_period must be shorter than pong_wait")
	ErrInvalidRateLimit = errors.New("rate limit must be positive")
)

func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Port)
	}
	if c.PingPeriod <= 0 || c.PingPeriod >= c.PongWait {
		return ErrInvalidKeepalive
	}
	if c.RateLimitEvents <= 0 || c.RateLimitInterval <= 0 {
		return ErrInvalidRateLimit
	}
	if _, err := app.ParsePolicy(c.Backpressure); err != nil {
		return err
	}
	if _, err := netaddr.ParseExclusions(c.IPExclude); err != nil {
		return err
	}
	return nil
}

// ICEServers is what clients receive from /api/ice.
func (c *Config) ICEServers() []webrtc.ICEServer {
	if len(c.ICEURLs) == 0 {
		return []webrtc.ICEServer{}
	}
	srv := webrtc.ICEServer{URLs: c.ICEURLs}
	if c.ICEUsername != "" {
		srv.Username = c.ICEUsername
		srv.Credential = c.ICECredential
	}
	return []webrtc.ICEServer{srv}
}
