package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// DefaultChannel is the pub/sub channel used by RedisBus.
const DefaultChannel = "parking:changes"

// RedisBus fans out changes over Redis pub/sub for deployments without change streams.
type RedisBus struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

func NewRedisBus(client *redis.Client, channel string, logger *zap.Logger) *RedisBus {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisBus{client: client, channel: channel, logger: logger}
}

func (b *RedisBus) Publish(ctx context.Context, change Change) error {
	data, err := json.Marshal(change)
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		return fmt.Errorf("publish change: %w", err)
	}
	return nil
}

func (b *RedisBus) Subscribe(ctx context.Context) (<-chan Change, error) {
	sub := b.client.Subscribe(ctx, b.channel)
	// Wait for the subscription confirmation so errors surface here.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", b.channel, err)
	}

	out := make(chan Change, 16)
	msgs := sub.Channel()
	go func() {
		defer close(out)
		defer sub.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var change Change
				if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
					b.logger.Warn("Dropping malformed change message", zap.Error(err))
					continue
				}
				select {
				case out <- change:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
