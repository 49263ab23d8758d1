package kafka_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hitesh22rana/historian/internal/pkg/kafka"
)

func TestNew_missingBrokers(t *testing.T) {
	client, err := kafka.New(t.Context())
	assert.Error(t, err)
	assert.Nil(t, client)
}

func TestNew_consumerOptions(t *testing.T) {
	// kgo clients connect lazily, so constructing one exercises the full
	// option set without a broker.
	client, err := kafka.New(t.Context(),
		kafka.WithBrokers("localhost:9092"),
		kafka.WithConsumerGroup("history-recorder"),
		kafka.WithConsumeTopics(kafka.TopicJobHistory),
		kafka.WithDisableAutoCommit(),
	)
	require.NoError(t, err)
	require.NotNil(t, client)
	client.Close()
}
