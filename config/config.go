package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Workers  WorkersConfig  `mapstructure:"workers"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	Security SecurityConfig `mapstructure:"security"`
	Punish   PunishConfig   `mapstructure:"punish"`
}

type ServerConfig struct {
	Port  int    `mapstructure:"port"`
	Debug bool   `mapstructure:"debug"`
	Name  string `mapstructure:"name"` // origin_server recorded on every punishment
}

type DatabaseConfig struct {
	Backend        string        `mapstructure:"backend"` // mysql | mariadb | postgres | sqlite | h2
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	User           string        `mapstructure:"user"`
	Password       string        `mapstructure:"password"`
	Name           string        `mapstructure:"name"`
	Path           string        `mapstructure:"path"` // sqlite file path
	TablePrefix    string        `mapstructure:"table_prefix"`
	MaxOpen        int           `mapstructure:"max_open"`
	MinIdle        int           `mapstructure:"min_idle"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	MaxLifetime    time.Duration `mapstructure:"max_lifetime"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type CacheConfig struct {
	PunishmentMax int           `mapstructure:"punishment_max"`
	PunishmentTTL time.Duration `mapstructure:"punishment_ttl"`
	PlayerMax     int           `mapstructure:"player_max"`
	PlayerTTL     time.Duration `mapstructure:"player_ttl"`
	CooldownMax   int           `mapstructure:"cooldown_max"`
	CooldownTTL   time.Duration `mapstructure:"cooldown_ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type WorkersConfig struct {
	Count     int `mapstructure:"count"`
	QueueSize int `mapstructure:"queue_size"`
}

type NotifyConfig struct {
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	LocalBuf      int    `mapstructure:"local_buf"`
}

type SecurityConfig struct {
	// AdminKeyHash is the bcrypt hash of the admin key. Empty disables the
	// admin endpoints entirely.
	AdminKeyHash   string        `mapstructure:"admin_key_hash"`
	JWTSecret      string        `mapstructure:"jwt_secret"`
	JWTTTL         time.Duration `mapstructure:"jwt_ttl"`
	RateLimitRPS   float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst int           `mapstructure:"rate_limit_burst"`
}

type PunishConfig struct {
	PointsDecayInterval time.Duration `mapstructure:"points_decay_interval"`
	PointsDecayAmount   float64       `mapstructure:"points_decay_amount"`
	// ReportCooldown throttles repeat reports from the same reporter.
	// Zero disables the throttle.
	ReportCooldown time.Duration `mapstructure:"report_cooldown"`
}

// Load reads config from the given YAML file path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Defaults
	v.SetDefault("server.port", 8085)
	v.SetDefault("server.debug", false)
	v.SetDefault("server.name", "default")
	v.SetDefault("database.backend", "sqlite")
	v.SetDefault("database.host", "127.0.0.1")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.name", "modguard")
	v.SetDefault("database.path", "./data/modguard.db")
	v.SetDefault("database.table_prefix", "mg_")
	v.SetDefault("database.max_open", 10)
	v.SetDefault("database.min_idle", 2)
	v.SetDefault("database.idle_timeout", "10m")
	v.SetDefault("database.max_lifetime", "30m")
	v.SetDefault("database.connect_timeout", "5s")
	v.SetDefault("cache.punishment_max", 5000)
	v.SetDefault("cache.punishment_ttl", "10m")
	v.SetDefault("cache.player_max", 5000)
	v.SetDefault("cache.player_ttl", "30m")
	v.SetDefault("cache.cooldown_max", 2000)
	v.SetDefault("cache.cooldown_ttl", "1h")
	v.SetDefault("cache.sweep_interval", "3m")
	v.SetDefault("workers.count", 8)
	v.SetDefault("workers.queue_size", 1024)
	v.SetDefault("notify.local_buf", 256)
	v.SetDefault("security.jwt_ttl", "12h")
	v.SetDefault("security.rate_limit_rps", 50)
	v.SetDefault("security.rate_limit_burst", 100)
	v.SetDefault("punish.points_decay_interval", "24h")
	v.SetDefault("punish.points_decay_amount", 1)
	v.SetDefault("punish.report_cooldown", "2m")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
