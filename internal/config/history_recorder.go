package config

import (
	"github.com/kelseyhightower/envconfig"
)

// HistoryRecorder holds the history recorder configuration.
type HistoryRecorder struct {
	Environment

	Kafka
	Redis
	ClickHouse
	HistoryRecorderConfig
}

// HistoryRecorderConfig holds the configuration for the history recorder.
type HistoryRecorderConfig struct {
	// HistoryDir is the shared filesystem directory holding one
	// subdirectory per job run. Empty disables persistence.
	HistoryDir string `envconfig:"HISTORY_RECORDER_DIR" default:"/var/lib/historian/jobs"`
}

// InitHistoryRecorderConfig initializes the history recorder configuration.
func InitHistoryRecorderConfig() (*HistoryRecorder, error) {
	var cfg HistoryRecorder
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// HistoryTail holds the history tail configuration.
type HistoryTail struct {
	Environment

	Redis
}

// InitHistoryTailConfig initializes the history tail configuration.
func InitHistoryTailConfig() (*HistoryTail, error) {
	var cfg HistoryTail
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
