package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config хранит все настройки приложения
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Admin    AdminConfig
	Email    EmailConfig
	Reminder ReminderConfig
	Game     GameConfig
	Log      LogConfig
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	TrustedProxies []string `mapstructure:"trusted_proxies"`
	// PublicURL используется для ссылок в письмах (сброс пароля, напоминания).
	PublicURL string `mapstructure:"public_url"`
}

// DatabaseConfig содержит настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	// MigrationsPath - путь к SQL миграциям golang-migrate.
	MigrationsPath string `mapstructure:"migrations_path"`
	LogLevel       string `mapstructure:"log_level"`
}

// RedisConfig содержит унифицированные настройки подключения к Redis
// Поддерживает режимы: single, sentinel, cluster
type RedisConfig struct {
	Mode       string   `mapstructure:"mode"`
	Addrs      []string `mapstructure:"addrs"`
	Addr       string   `mapstructure:"addr"`
	Password   string   `mapstructure:"password"`
	KeyPrefix  string   `mapstructure:"key_prefix"`
	DB         int      `mapstructure:"db"`
	MasterName string   `mapstructure:"master_name"`

	MaxRetries      int `mapstructure:"max_retries"`
	MinRetryBackoff int `mapstructure:"min_retry_backoff"`
	MaxRetryBackoff int `mapstructure:"max_retry_backoff"`
}

// JWTConfig содержит настройки сессионного токена
type JWTConfig struct {
	Secret        string `mapstructure:"secret"`
	ExpirationHrs int    `mapstructure:"expirationHrs"`
	CookieName    string `mapstructure:"cookie_name"`
	CookieSecure  bool   `mapstructure:"cookie_secure"`
}

// AdminConfig описывает, кто считается администратором.
type AdminConfig struct {
	Secret   string `mapstructure:"secret"`
	Nickname string `mapstructure:"nickname"`
	Header   string `mapstructure:"header"`
}

// EmailConfig содержит настройки отправки писем
type EmailConfig struct {
	// Provider: "resend" или "noop".
	Provider     string `mapstructure:"provider"`
	ResendAPIKey string `mapstructure:"resend_api_key"`
	From         string `mapstructure:"from"`
}

// ReminderConfig - ежедневная рассылка напоминаний.
type ReminderConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Hour     int    `mapstructure:"hour"`
	Minute   int    `mapstructure:"minute"`
	Timezone string `mapstructure:"timezone"`
}

// GameConfig содержит игровые параметры
type GameConfig struct {
	HottakesPerDay int `mapstructure:"hottakes_per_day"`
	// LeaderboardCacheTTL в секундах, 0 отключает кеш.
	LeaderboardCacheTTL int `mapstructure:"leaderboard_cache_ttl"`
}

// LogConfig содержит настройки логгера
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// PostgresConnectionString формирует строку подключения к PostgreSQL
func (d *DatabaseConfig) PostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// PostgresURL формирует URL для golang-migrate.
func (d *DatabaseConfig) PostgresURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Location возвращает часовой пояс рассылки.
func (r ReminderConfig) Location() (*time.Location, error) {
	if r.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(r.Timezone)
}

// LoadDotEnv загружает переменные из .env, если файл есть.
// Уже заданные переменные окружения не перезаписываются.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

func setDefaults(vip *viper.Viper) {
	vip.SetDefault("server.port", "8080")
	vip.SetDefault("server.readTimeout", 10)
	vip.SetDefault("server.writeTimeout", 10)
	vip.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	vip.SetDefault("server.public_url", "http://localhost:3000")

	vip.SetDefault("database.port", "5432")
	vip.SetDefault("database.sslmode", "disable")
	vip.SetDefault("database.migrations_path", "migrations")
	vip.SetDefault("database.log_level", "warn")

	vip.SetDefault("redis.mode", "single")
	vip.SetDefault("redis.addr", "localhost:6379")
	vip.SetDefault("redis.key_prefix", "hottakes:")

	vip.SetDefault("jwt.expirationHrs", 24*7)
	vip.SetDefault("jwt.cookie_name", "hottakes_session")

	vip.SetDefault("admin.header", "X-Admin-Secret")

	vip.SetDefault("email.provider", "noop")
	vip.SetDefault("email.from", "Hottakes <noreply@hottakes.local>")

	vip.SetDefault("reminder.enabled", false)
	vip.SetDefault("reminder.hour", 9)
	vip.SetDefault("reminder.minute", 0)
	vip.SetDefault("reminder.timezone", "UTC")

	vip.SetDefault("game.hottakes_per_day", 10)
	vip.SetDefault("game.leaderboard_cache_ttl", 30)

	vip.SetDefault("log.level", "info")
	vip.SetDefault("log.format", "json")
}

// Load загружает конфигурацию из файла и переменных окружения
func Load(configPath string) (*Config, error) {
	vip := viper.New()
	setDefaults(vip)

	// Привязываем переменные окружения ЯВНО
	vip.BindEnv("database.host", "DATABASE_HOST")
	vip.BindEnv("database.port", "DATABASE_PORT")
	vip.BindEnv("database.user", "DATABASE_USER")
	vip.BindEnv("database.password", "DATABASE_PASSWORD")
	vip.BindEnv("database.dbname", "DATABASE_DBNAME")
	vip.BindEnv("database.sslmode", "DATABASE_SSLMODE")
	vip.BindEnv("database.migrations_path", "DATABASE_MIGRATIONS_PATH")

	vip.BindEnv("redis.mode", "REDIS_MODE")
	vip.BindEnv("redis.addrs", "REDIS_ADDRS")
	vip.BindEnv("redis.addr", "REDIS_ADDR")
	vip.BindEnv("redis.password", "REDIS_PASSWORD")
	vip.BindEnv("redis.db", "REDIS_DB")
	vip.BindEnv("redis.master_name", "REDIS_MASTER_NAME")

	vip.BindEnv("jwt.secret", "JWT_SECRET")
	vip.BindEnv("jwt.expirationHrs", "JWT_EXPIRATIONHRS")
	vip.BindEnv("jwt.cookie_secure", "JWT_COOKIE_SECURE")

	vip.BindEnv("admin.secret", "ADMIN_SECRET")
	vip.BindEnv("admin.nickname", "ADMIN_NICKNAME")

	vip.BindEnv("email.provider", "EMAIL_PROVIDER")
	vip.BindEnv("email.resend_api_key", "RESEND_API_KEY")
	vip.BindEnv("email.from", "EMAIL_FROM")

	vip.BindEnv("reminder.enabled", "REMINDER_ENABLED")
	vip.BindEnv("reminder.hour", "REMINDER_HOUR")
	vip.BindEnv("reminder.minute", "REMINDER_MINUTE")
	vip.BindEnv("reminder.timezone", "REMINDER_TIMEZONE")

	vip.BindEnv("game.hottakes_per_day", "GAME_HOTTAKES_PER_DAY")

	vip.BindEnv("server.port", "SERVER_PORT")
	vip.BindEnv("server.public_url", "PUBLIC_URL")

	vip.BindEnv("log.level", "LOG_LEVEL")
	vip.BindEnv("log.format", "LOG_FORMAT")

	// Файла может не быть, тогда работаем на env + умолчаниях
	if configPath != "" {
		vip.SetConfigFile(configPath)
		if err := vip.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
			}
		}
	}

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет обязательные параметры
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt secret is required in config (check JWT_SECRET env var)")
	}
	if c.Database.Host == "" || c.Database.DBName == "" || c.Database.User == "" {
		return fmt.Errorf("database configuration (host, dbname, user) is incomplete in config (check DATABASE_HOST, DATABASE_DBNAME, DATABASE_USER env vars)")
	}
	if c.Game.HottakesPerDay <= 0 {
		return fmt.Errorf("game.hottakes_per_day must be positive, got %d", c.Game.HottakesPerDay)
	}
	if c.Reminder.Hour < 0 || c.Reminder.Hour > 23 || c.Reminder.Minute < 0 || c.Reminder.Minute > 59 {
		return fmt.Errorf("reminder time %02d:%02d is invalid", c.Reminder.Hour, c.Reminder.Minute)
	}
	if _, err := c.Reminder.Location(); err != nil {
		return fmt.Errorf("reminder timezone %q is invalid: %w", c.Reminder.Timezone, err)
	}
	if c.Email.Provider == "resend" && c.Email.ResendAPIKey == "" {
		return fmt.Errorf("email provider resend requires RESEND_API_KEY")
	}
	return nil
}
