package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

// RedisSink publishes transition events to a Redis channel so external
// notification consumers can pick them up. Delivery is best effort; the
// dispatcher logs and swallows any publish error.
type RedisSink struct {
	client  *redis.Client
	channel string
}

// NewRedisSink builds a sink for the given channel.
func NewRedisSink(client *redis.Client, channel string) *RedisSink {
	return &RedisSink{client: client, channel: channel}
}

// Handle serializes the event and publishes it.
func (s *RedisSink) Handle(ctx context.Context, event Event) error {
	if s.client == nil || s.channel == "" {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return s.client.Publish(ctx, s.channel, payload).Err()
}
