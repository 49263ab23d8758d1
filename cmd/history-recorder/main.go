package main

import (
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	_ "go.uber.org/automaxprocs"
	"go.uber.org/zap"

	"github.com/hitesh22rana/historian/internal/app/historyrecorder"
	"github.com/hitesh22rana/historian/internal/config"
	"github.com/hitesh22rana/historian/internal/pkg/clickhouse"
	"github.com/hitesh22rana/historian/internal/pkg/kafka"
	loggerpkg "github.com/hitesh22rana/historian/internal/pkg/logger"
	"github.com/hitesh22rana/historian/internal/pkg/redis"
	"github.com/hitesh22rana/historian/internal/pkg/storage"
	svcpkg "github.com/hitesh22rana/historian/internal/pkg/svc"
	historyrecorderrepo "github.com/hitesh22rana/historian/internal/repository/historyrecorder"
	historyrecordersvc "github.com/hitesh22rana/historian/internal/service/historyrecorder"
)

const (
	// ExitOk and ExitError are the exit codes.
	ExitOk = iota
	// ExitError is the exit code for errors.
	ExitError
)

// version is set via build flags.
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	svcpkg.SetName("history-recorder")
	svcpkg.SetVersion(version)

	// Initialize the service with, all necessary components
	ctx, cancel := svcpkg.Init()
	defer cancel()

	// Handle OS signals for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	// Load the history recorder configuration
	cfg, err := config.InitHistoryRecorderConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return ExitError
	}

	// Initialize the ClickHouse database
	cdb, err := clickhouse.New(ctx, &clickhouse.Config{
		Hosts:           cfg.ClickHouse.Hosts,
		Database:        cfg.ClickHouse.Database,
		Username:        cfg.ClickHouse.Username,
		Password:        cfg.ClickHouse.Password,
		MaxOpenConns:    cfg.ClickHouse.MaxOpenConns,
		MaxIdleConns:    cfg.ClickHouse.MaxIdleConns,
		ConnMaxLifetime: cfg.ClickHouse.ConnMaxLifetime,
		DialTimeout:     cfg.ClickHouse.DialTimeout,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return ExitError
	}
	defer cdb.Close()

	// Initialize the Redis store
	rdb, err := redis.New(ctx, &redis.Config{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return ExitError
	}
	defer rdb.Close()

	// Initialize the kafka client
	kfk, err := kafka.New(ctx,
		kafka.WithBrokers(cfg.Kafka.Brokers...),
		kafka.WithConsumerGroup(cfg.Kafka.ConsumerGroup),
		kafka.WithConsumeTopics(kafka.TopicJobHistory),
		kafka.WithDisableAutoCommit(),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return ExitError
	}
	defer kfk.Close()

	// Initialize the history recorder components
	repo := historyrecorderrepo.New(&historyrecorderrepo.Config{
		HistoryDir: cfg.HistoryRecorderConfig.HistoryDir,
	}, storage.NewLocal(), rdb, cdb, kfk)
	svc := historyrecordersvc.New(repo)
	app := historyrecorder.New(ctx, svc)

	// Log the service information
	loggerpkg.FromContext(ctx).Info(
		"starting service",
		zap.String("name", svcpkg.Info().GetName()),
		zap.String("version", svcpkg.Info().GetVersion()),
		zap.String("environment", cfg.Environment.Env),
		zap.String("history_dir", cfg.HistoryRecorderConfig.HistoryDir),
		zap.Int("gomaxprocs", runtime.GOMAXPROCS(0)),
	)

	// Run the history recorder
	if err := app.Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return ExitError
	}

	return ExitOk
}
