// history-tail follows the live event feed of an in-progress job and prints
// each event as a JSON line, the streaming counterpart of history-inspector.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "go.uber.org/automaxprocs"

	"github.com/hitesh22rana/historian/internal/config"
	"github.com/hitesh22rana/historian/internal/pkg/redis"
	svcpkg "github.com/hitesh22rana/historian/internal/pkg/svc"
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
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <job-id>\n", os.Args[0])
		return ExitError
	}
	jobID := os.Args[1]

	svcpkg.SetName("history-tail")
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

	// Load the history tail configuration
	cfg, err := config.InitHistoryTailConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return ExitError
	}

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

	// Follow the job-specific channel until interrupted
	pubsub := rdb.Subscribe(ctx, redis.GetJobHistoryChannel(jobID))
	//nolint:errcheck // Read-only subscription
	defer pubsub.Close()

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ExitOk
		case msg, ok := <-messages:
			if !ok {
				return ExitOk
			}
			fmt.Println(msg.Payload)
		}
	}
}
