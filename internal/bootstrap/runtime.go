// Package bootstrap wires process-level dependencies for the commands under cmd/.
package bootstrap

import (
	"fmt"
	"log"

	"agora/internal/cache"
	"agora/internal/config"
	"agora/internal/database"
	"agora/internal/notifications"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// InitRuntime connects to the database and Redis. An unreachable Redis leaves
// the client nil; the community cache and activity channel are then disabled.
func InitRuntime(cfg *config.Config) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	return db, cache.GetClient(), nil
}

// NewPublisher builds the activity fan-out: the Redis channel when a client is
// available, plus the Kafka topic when brokers are configured. The returned
// close func releases the Kafka writer.
func NewPublisher(cfg *config.Config, rdb *redis.Client) (*notifications.Fanout, func() error, error) {
	var sinks []notifications.Sink
	closeFn := func() error { return nil }

	if rdb != nil {
		sinks = append(sinks, notifications.NewNotifier(rdb))
	}

	if brokers := cfg.KafkaBrokerList(); len(brokers) > 0 {
		producer, err := notifications.NewKafkaProducer(notifications.KafkaConfig{
			Brokers: brokers,
			Topic:   cfg.KafkaActivityTopic,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("kafka producer: %w", err)
		}
		sinks = append(sinks, producer)
		closeFn = producer.Close
		log.Printf("Publishing activity events to kafka topic %s", cfg.KafkaActivityTopic)
	}

	return notifications.NewFanout(sinks...), closeFn, nil
}
