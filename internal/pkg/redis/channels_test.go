package redis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hitesh22rana/historian/internal/pkg/redis"
)

func TestGetJobHistoryChannel(t *testing.T) {
	assert.Equal(t, "job_history:app123", redis.GetJobHistoryChannel("app123"))
}
