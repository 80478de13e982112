package config

import (
	"errors"
	"fmt"
	"time"
)

// Database holds the database configuration
type Database struct {
	Username     string `envconfig:"DB_USERNAME"`
	Password     string `envconfig:"DB_PASSWORD"`
	Host         string `envconfig:"DB_HOST"`
	Port         string `envconfig:"DB_PORT"`
	Database     string `envconfig:"DB_DATABASE"`
	SSLMode      string `envconfig:"DB_SSL_MODE" default:"require"`
	PoolMaxConns int    `envconfig:"DB_POOL_MAX_CONNS" default:"10"`
}

// ToDbConnectionUri returns a connection URI to be used with the pgx package
func (d Database) ToDbConnectionUri() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s&pool_max_conns=%d",
		d.Username,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
		d.SSLMode,
		d.PoolMaxConns,
	)
}

// ToMigrationUri returns a connection URI for golang-migrate with pgx5 driver
func (d Database) ToMigrationUri() string {
	return fmt.Sprintf("pgx5://%s:%s@%s:%s/%s?sslmode=%s",
		d.Username,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
		d.SSLMode,
	)
}

// Log holds the logger configuration. An empty Path disables the rolling file sink.
type Log struct {
	Level      string `envconfig:"LOG_LEVEL" default:"info"`
	Path       string `envconfig:"LOG_PATH"`
	MaxSizeMB  int    `envconfig:"LOG_MAX_SIZE_MB" default:"100"`
	MaxBackups int    `envconfig:"LOG_MAX_BACKUPS" default:"3"`
	MaxAgeDays int    `envconfig:"LOG_MAX_AGE_DAYS" default:"7"`
	Compress   bool   `envconfig:"LOG_COMPRESS" default:"false"`
}

// Redis holds the statistics cache configuration
type Redis struct {
	Addr     string `envconfig:"REDIS_ADDR"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// Enabled reports whether a Redis address was configured
func (r Redis) Enabled() bool {
	return r.Addr != ""
}

// Push holds the notification push configuration.
// Without an AMQP URL notifications are only logged.
type Push struct {
	AMQPURL  string `envconfig:"PUSH_AMQP_URL"`
	Exchange string `envconfig:"PUSH_EXCHANGE" default:"events"`
	Workers  int    `envconfig:"PUSH_WORKERS" default:"4"`
	Buffer   int    `envconfig:"PUSH_BUFFER" default:"1024"`
}

// Server holds the configuration for the API server
type Server struct {
	ServerPort         string   `envconfig:"SERVER_PORT" default:"8080"`
	SessionSecret      string   `envconfig:"SESSION_SECRET"`
	AdminUsername      string   `envconfig:"ADMIN_USERNAME" default:"pulgamecanica"`
	AllowedOrigins     []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173"`
	RateLimitPerMinute int      `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`
	StatsCacheTTL      int      `envconfig:"STATS_CACHE_TTL_SECONDS" default:"30"` // seconds
	MigrateOnStart     bool     `envconfig:"MIGRATE_ON_START" default:"true"`
	Database           Database
	Log                Log
	Redis              Redis
	Push               Push
}

// Validate checks settings that have no safe default
func (s Server) Validate() error {
	if s.SessionSecret == "" {
		return errors.New("SESSION_SECRET must be set")
	}
	if s.AdminUsername == "" {
		return errors.New("ADMIN_USERNAME must not be empty")
	}
	return nil
}

// StatsCacheDuration returns the statistics cache TTL
func (s Server) StatsCacheDuration() time.Duration {
	return time.Duration(s.StatsCacheTTL) * time.Second
}

// Worker holds the configuration for the maintenance worker
type Worker struct {
	Database           Database
	Log                Log
	TickInterval       int `envconfig:"WORKER_TICK_INTERVAL" default:"60"` // seconds
	JobTimeout         int `envconfig:"WORKER_JOB_TIMEOUT" default:"30"`   // seconds
	Concurrency        int `envconfig:"WORKER_CONCURRENCY" default:"2"`    // number of concurrent jobs
	SessionIdleMinutes int `envconfig:"SESSION_IDLE_MINUTES" default:"30"`
	VisitRetentionDays int `envconfig:"VISIT_RETENTION_DAYS" default:"0"` // 0 keeps visits forever
}
