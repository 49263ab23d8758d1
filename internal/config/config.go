package config

import (
	"time"
)

const envPrefix = ""

// Environment holds the deployment environment.
type Environment struct {
	Env string `envconfig:"ENV" default:"development"`
}

// Kafka holds the Kafka connection configuration.
type Kafka struct {
	Brokers       []string `envconfig:"KAFKA_BROKERS" required:"true"`
	ConsumeTopics []string `envconfig:"KAFKA_CONSUME_TOPICS"`
	ConsumerGroup string   `envconfig:"KAFKA_CONSUMER_GROUP"`
}

// Redis holds the Redis connection configuration.
type Redis struct {
	Host         string        `envconfig:"REDIS_HOST" default:"localhost"`
	Port         int           `envconfig:"REDIS_PORT" default:"6379"`
	Password     string        `envconfig:"REDIS_PASSWORD" default:""`
	DB           int           `envconfig:"REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"REDIS_MIN_IDLE_CONNS" default:"5"`
	ReadTimeout  time.Duration `envconfig:"REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"REDIS_WRITE_TIMEOUT" default:"5s"`
}

// ClickHouse holds the ClickHouse connection configuration.
type ClickHouse struct {
	Hosts           []string      `envconfig:"CLICKHOUSE_HOSTS" default:"localhost:9000"`
	Database        string        `envconfig:"CLICKHOUSE_DB" default:"historian"`
	Username        string        `envconfig:"CLICKHOUSE_USER" default:"default"`
	Password        string        `envconfig:"CLICKHOUSE_PASSWORD" default:""`
	MaxOpenConns    int           `envconfig:"CLICKHOUSE_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"CLICKHOUSE_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"CLICKHOUSE_CONN_MAX_LIFETIME" default:"1h"`
	DialTimeout     time.Duration `envconfig:"CLICKHOUSE_DIAL_TIMEOUT" default:"5s"`
}
