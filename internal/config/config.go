package config

import (
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Port              int
	LogLevel          string
	DBHost            string
	DBPort            string
	DBUser            string
	DBPassword        string
	DBName            string
	DBMaxOpenConns    int
	AllowedOrigins    []string
	RedisAddr         string
	QueryHistoryLimit int
	ShutdownTimeout   time.Duration
}

// Load reads envFile when it exists and then the process environment.
// A missing env file is not an error; a malformed one is.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return nil, err
			}
		}
	}

	return &Config{
		Port:              GetEnvInt("PORT", 5000),
		LogLevel:          getEnvOrDefault("LOG_LEVEL", "info"),
		DBHost:            getEnvOrDefault("DB_HOST", "localhost"),
		DBPort:            getEnvOrDefault("DB_PORT", "3306"),
		DBUser:            getEnvOrDefault("DB_USER", "root"),
		DBPassword:        os.Getenv("DB_PASSWORD"),
		DBName:            os.Getenv("DB_NAME"),
		DBMaxOpenConns:    GetEnvInt("DB_MAX_OPEN_CONNS", 10),
		AllowedOrigins:    splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "*")),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		QueryHistoryLimit: GetEnvInt("QUERY_HISTORY_LIMIT", 100),
		ShutdownTimeout:   5 * time.Second,
	}, nil
}

// MySQLConfig builds the driver configuration for the configured server and
// the given database. An empty database connects without selecting one.
func (c *Config) MySQLConfig(database string) *mysql.Config {
	cfg := mysql.NewConfig()
	cfg.User = c.DBUser
	cfg.Passwd = c.DBPassword
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(c.DBHost, c.DBPort)
	cfg.DBName = database
	cfg.ParseTime = true
	// UPDATE reports matched rather than changed rows.
	cfg.ClientFoundRows = true
	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

// GetEnvInt gets an integer value from an environment variable
func GetEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
