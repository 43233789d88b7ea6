package bootstrap

import (
	"testing"

	"agora/internal/config"
	"agora/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPublisher(t *testing.T) {
	_, rdb := testutil.NewRedis(t)

	t.Run("redis only", func(t *testing.T) {
		fanout, closeFn, err := NewPublisher(&config.Config{}, rdb)
		require.NoError(t, err)
		assert.Equal(t, 1, fanout.Len())
		assert.NoError(t, closeFn())
	})

	t.Run("no sinks", func(t *testing.T) {
		fanout, _, err := NewPublisher(&config.Config{}, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, fanout.Len())
	})

	t.Run("redis and kafka", func(t *testing.T) {
		cfg := &config.Config{KafkaBrokers: "localhost:9092, localhost:9093", KafkaActivityTopic: "agora.activity"}
		fanout, closeFn, err := NewPublisher(cfg, rdb)
		require.NoError(t, err)
		assert.Equal(t, 2, fanout.Len())
		assert.NoError(t, closeFn())
	})

	t.Run("kafka without topic", func(t *testing.T) {
		cfg := &config.Config{KafkaBrokers: "localhost:9092"}
		_, _, err := NewPublisher(cfg, nil)
		assert.Error(t, err)
	})
}
