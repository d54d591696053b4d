package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mockorbit/interviewd/internal/adapters/rtc"
	"github.com/mockorbit/interviewd/internal/store/mem"
	"github.com/mockorbit/interviewd/internal/store/mongo"
	"github.com/mockorbit/interviewd/internal/store/redis"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type SendQueueConfig struct {
	Size     int    `mapstructure:"size"`
	Overflow string `mapstructure:"overflow"`
}

type RateLimitConfig struct {
	EventsPerSecond float64 `mapstructure:"events_per_second"`
	Burst           int     `mapstructure:"burst"`
}

type StoreConfig struct {
	Type   string       `mapstructure:"type"`
	Memory mem.Config   `mapstructure:"memory"`
	Mongo  mongo.Config `mapstructure:"mongo"`
	Redis  redis.Config `mapstructure:"redis"`
}

type Config struct {
	Mode     string `mapstructure:"mode"`
	Port     int    `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`

	ReadLimit   int64         `mapstructure:"read_limit"`
	PingPeriod  time.Duration `mapstructure:"ping_period"`
	PongWait    time.Duration `mapstructure:"pong_wait"`
	WriteWait   time.Duration `mapstructure:"write_wait"`
	AuthTimeout time.Duration `mapstructure:"auth_timeout"`

	SendQueue         SendQueueConfig `mapstructure:"send_queue"`
	RateLimit         RateLimitConfig `mapstructure:"rate_limit"`
	MaxMembersPerRoom int             `mapstructure:"max_members_per_room"`
	IdleTimeout       time.Duration   `mapstructure:"idle_timeout"`
	ReapInterval      time.Duration   `mapstructure:"reap_interval"`

	AllowedOrigins []string `mapstructure:"allowed_origins"`
	JWTSecret      string   `mapstructure:"jwt_secret"`
	AdminToken     string   `mapstructure:"admin_token"`

	Store      StoreConfig        `mapstructure:"store"`
	ICEServers []rtc.ServerConfig `mapstructure:"ice_servers"`
}

var (
	ErrNoSecret     = errors.New("jwt_secret is required")
	ErrBadPort      = errors.New("port out of range")
	ErrBadKeepalive = errors.New("ping_period must be shorter than pong_wait")
	ErrBadQueue     = errors.New("send_queue.size must be positive")
	ErrBadStore     = errors.New("unknown store.type")
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")
	v.SetDefault("read_limit", 65536)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("pong_wait", "60s")
	v.SetDefault("write_wait", "10s")
	v.SetDefault("auth_timeout", "10s")
	v.SetDefault("send_queue.size", 64)
	v.SetDefault("send_queue.overflow", "close")
	v.SetDefault("rate_limit.events_per_second", 0)
	v.SetDefault("rate_limit.burst", 0)
	v.SetDefault("max_members_per_room", 0)
	v.SetDefault("idle_timeout", "0s")
	v.SetDefault("reap_interval", "30s")
	v.SetDefault("allowed_origins", []string{"*"})
	v.SetDefault("jwt_secret", "")
	v.SetDefault("admin_token", "")
	v.SetDefault("store.type", "memory")
	v.SetDefault("store.mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("store.mongo.database", "mockorbit")
	v.SetDefault("store.mongo.collection", "interviews")
	v.SetDefault("store.mongo.timeout", "5s")
	v.SetDefault("store.redis.address", "localhost:6379")
	v.SetDefault("store.redis.password", "")
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("store.redis.active_conns", 50)
	v.SetDefault("store.redis.idle_conns", 10)
	v.SetDefault("store.redis.timeout", "3s")
	v.SetDefault("store.redis.prefix_interview", "interview:%s")
}

// Load reads config/config.<CONFIG_ENV>.yaml (or --config), then applies
// INTERVIEWD_* environment variables and command line flags on top.
func Load(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("interviewd", pflag.ContinueOnError)
	cfgFile := fs.String("config", "", "path to a config file (default config/config.<CONFIG_ENV>.yaml)")
	fs.Int("port", 8080, "listen port")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	fileName := *cfgFile
	if fileName == "" {
		env := os.Getenv("CONFIG_ENV")
		if env == "" {
			env = "dev"
		}
		fileName = fmt.Sprintf("config/config.%s.yaml", env)
	}
	v.SetConfigFile(fileName)

	v.SetEnvPrefix("INTERVIEWD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlag("port", fs.Lookup("port")); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		if *cfgFile != "" {
			return nil, fmt.Errorf("reading %s: %w", fileName, err)
		}
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
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).
		Str("store", cfg.Store.Type).Msg("config ready")
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return ErrNoSecret
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrBadPort, c.Port)
	}
	if c.PingPeriod >= c.PongWait {
		return ErrBadKeepalive
	}
	if c.SendQueue.Size <= 0 {
		return ErrBadQueue
	}
	switch c.Store.Type {
	case "memory", "mongo", "redis":
	default:
		return fmt.Errorf("%w: %q", ErrBadStore, c.Store.Type)
	}
	return nil
}
