package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/pion/stun/v3"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type RateLimit struct {
	Events   int           `mapstructure:"events"`
	Interval time.Duration `mapstructure:"interval"`
}

type Store struct {
	Driver     string `mapstructure:"driver"`
	DSN        string `mapstructure:"dsn"`
	BadgerPath string `mapstructure:"badger_path"`
	Migrate    bool   `mapstructure:"migrate"`
}

type Notify struct {
	Driver          string        `mapstructure:"driver"`
	CredentialsFile string        `mapstructure:"credentials_file"`
	Title           string        `mapstructure:"title"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

type Signaling struct {
	NotifyPeerLeft bool `mapstructure:"notify_peer_left"`
}

type ICEServer struct {
	URLs       []string `mapstructure:"urls"`
	Username   string   `mapstructure:"username"`
	Credential string   `mapstructure:"credential"`
}

type Config struct {
	Mode          string        `mapstructure:"mode"`
	Port          int           `mapstructure:"port"`
	LogLevel      string        `mapstructure:"log_level"`
	ReadLimit     int64         `mapstructure:"read_limit"`
	PingPeriod    time.Duration `mapstructure:"ping_period"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
	SendBuffer    int           `mapstructure:"send_buffer"`
	Secret        string        `mapstructure:"secret"`
	MaxMessageLen int           `mapstructure:"max_message_len"`
	RateLimit     RateLimit     `mapstructure:"rate_limit"`
	Store         Store         `mapstructure:"store"`
	Notify        Notify        `mapstructure:"notify"`
	Signaling     Signaling     `mapstructure:"signaling"`
	ICE           []ICEServer   `mapstructure:"ice_servers"`
}

var ErrInvalid = errors.New("invalid config")

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("write_timeout", "5s")
	v.SetDefault("send_buffer", 32)
	v.SetDefault("secret", "change-me")
	v.SetDefault("max_message_len", 4096)
	v.SetDefault("rate_limit.events", 50)
	v.SetDefault("rate_limit.interval", "1s")
	v.SetDefault("store.driver", "badger")
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.badger_path", "")
	v.SetDefault("store.migrate", true)
	v.SetDefault("notify.driver", "log")
	v.SetDefault("notify.credentials_file", "")
	v.SetDefault("notify.title", "New Message")
	v.SetDefault("notify.timeout", "10s")
	v.SetDefault("signaling.notify_peer_left", true)
	v.SetDefault("ice_servers", []map[string]any{
		{"urls": []string{"stun:stun.l.google.com:19302"}},
	})
}

// Load reads .env, then config/config.<CONFIG_ENV>.yaml, then TANDEM_* overrides.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Str("module", "config").Err(err).Msg(".env not loaded")
	}

	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)
	v.SetConfigFile(fileName)

	v.SetEnvPrefix("TANDEM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		fileLoaded = false
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
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

	if fileLoaded {
		v.OnConfigChange(func(e fsnotify.Event) {
			level := v.GetString("log_level")
			ApplyLogLevel(level)
			log.Info().Str("module", "config").Str("file", e.Name).Str("log_level", level).Msg("config reloaded")
		})
		v.WatchConfig()
	}

	log.Info().Str("module", "config").
		Str("mode", cfg.Mode).
		Int("port", cfg.Port).
		Str("store", cfg.Store.Driver).
		Str("notify", cfg.Notify.Driver).
		Msg("config ready")
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "postgres":
		if c.Store.DSN == "" {
			return fmt.Errorf("%w: store.dsn is required for postgres", ErrInvalid)
		}
	case "badger":
	default:
		return fmt.Errorf("%w: unknown store.driver %q", ErrInvalid, c.Store.Driver)
	}
	switch c.Notify.Driver {
	case "fcm", "log":
	default:
		return fmt.Errorf("%w: unknown notify.driver %q", ErrInvalid, c.Notify.Driver)
	}
	if c.PingPeriod <= 0 {
		return fmt.Errorf("%w: ping_period must be positive", ErrInvalid)
	}
	if _, err := c.ICEServers(); err != nil {
		return err
	}
	return nil
}

// ICEServers converts the configured entries to the form handed to browsers.
func (c *Config) ICEServers() ([]webrtc.ICEServer, error) {
	out := make([]webrtc.ICEServer, 0, len(c.ICE))
	for _, s := range c.ICE {
		if len(s.URLs) == 0 {
			return nil, fmt.Errorf("%w: ice server without urls", ErrInvalid)
		}
		for _, raw := range s.URLs {
			if _, err := stun.ParseURI(raw); err != nil {
				return nil, fmt.Errorf("%w: ice url %q: %w", ErrInvalid, raw, err)
			}
		}
		srv := webrtc.ICEServer{URLs: s.URLs, Username: s.Username}
		if s.Credential != "" {
			srv.Credential = s.Credential
		}
		out = append(out, srv)
	}
	return out, nil
}

// ApplyLogLevel sets the global zerolog level, keeping the current one on bad input.
func ApplyLogLevel(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		log.Warn().Str("module", "config").Str("log_level", level).Msg("unknown log level ignored")
		return
	}
	zerolog.SetGlobalLevel(lvl)
}
