package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

type Config struct {
	ServerAddr  string
	DBDriver    string // mysql, sqlite3
	MysqlDSN    string
	SQLitePath  string
	JWTSecret   string
	TokenTTL    time.Duration
	CORSOrigins []string
	LogLevel    string
	LogFormat   string // text, json
}

var Cfg *Config

// DSN returns the data source name for the configured driver.
func (c *Config) DSN() string {
	if c.DBDriver == "sqlite3" {
		return c.SQLitePath
	}
	return c.MysqlDSN
}

// Load reads .env, then the environment, then command-line flags from args.
// Later sources win.
func Load(args []string) error {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file found, using environment variables")
	}

	cfg := &Config{
		ServerAddr:  ":" + getEnv("PORT", "5000"),
		DBDriver:    getEnv("DB_DRIVER", "mysql"),
		MysqlDSN:    getEnv("MYSQL_DSN", "root:root@tcp(localhost:3306)/nebulaverse?charset=utf8mb4&parseTime=True&loc=Local"),
		SQLitePath:  getEnv("SQLITE_PATH", "./nebulaverse.db?_foreign_keys=on&_busy_timeout=5000"),
		JWTSecret:   getEnv("JWT_SECRET", "nebulaverse-secret-key-change-in-production"),
		TokenTTL:    getDuration("TOKEN_TTL", 7*24*time.Hour),
		CORSOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),
	}

	fs := pflag.NewFlagSet("nebulaverse", pflag.ContinueOnError)
	fs.StringVar(&cfg.ServerAddr, "addr", cfg.ServerAddr, "listen address")
	fs.StringVar(&cfg.DBDriver, "db-driver", cfg.DBDriver, "database driver (mysql or sqlite3)")
	fs.StringVar(&cfg.MysqlDSN, "mysql-dsn", cfg.MysqlDSN, "MySQL data source name")
	fs.StringVar(&cfg.SQLitePath, "sqlite-path", cfg.SQLitePath, "SQLite database file")
	fs.DurationVar(&cfg.TokenTTL, "token-ttl", cfg.TokenTTL, "lifetime of issued tokens")
	fs.StringSliceVar(&cfg.CORSOrigins, "cors-origins", cfg.CORSOrigins, "allowed CORS origins")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format (text or json)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	Cfg = cfg
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"key":   key,
			"value": value,
		}).Warn("invalid duration, using default")
		return defaultValue
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
