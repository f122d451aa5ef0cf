package config

import "time"

type Config struct {
	Service  ServiceConfig
	Relay    RelayConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Tracer   TracerConfig
}

type ServiceConfig struct {
	Name string `envconfig:"SERVICE_NAME" default:"relaychat"`
	Env  string `envconfig:"SERVICE_ENV" default:"development"`
	Addr string `envconfig:"SERVICE_ADDR" default:":8080"`
}

type RelayConfig struct {
	// SendBuffer is the per-connection outbound buffer; a full buffer marks
	// the connection stale.
	SendBuffer int `envconfig:"RELAY_SEND_BUFFER" default:"256"`
	// QueueMaxPerUser caps a user's offline backlog; 0 means unbounded.
	QueueMaxPerUser int `envconfig:"RELAY_QUEUE_MAX_PER_USER" default:"0"`
	// HistoryLimit is how many stored room messages are replayed on connect.
	HistoryLimit int `envconfig:"RELAY_HISTORY_LIMIT" default:"50"`
}

// PostgresConfig enables the durable history store when DSN is set.
type PostgresConfig struct {
	DSN             string        `envconfig:"DATABASE_URL"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_LIFETIME" default:"15m"`
	PingTimeout     time.Duration `envconfig:"DB_PING_TIMEOUT" default:"5s"`
}

// RedisConfig enables the durable last-seen store when URL is set.
type RedisConfig struct {
	URL          string        `envconfig:"REDIS_URL"`
	DialTimeout  time.Duration `envconfig:"REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"REDIS_WRITE_TIMEOUT" default:"3s"`
	PingTimeout  time.Duration `envconfig:"REDIS_PING_TIMEOUT" default:"2s"`
}

type LoggerConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"text"`
}

// TracerConfig enables OTLP trace export when Addr is set.
type TracerConfig struct {
	Addr string `envconfig:"TRACER_ADDR"`
}
