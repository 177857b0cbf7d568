package eventbus

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	signalChannel  = "signals"
	signalKeyspace = "signal:"
	signalTTL      = 24 * time.Hour
)

type signalMessage struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// RedisBus fans signals out across processes via Redis pub/sub. The latest
// value per key is also kept under signal:{key} so late subscribers can poll
// recency, mirroring how the old same-origin storage signal behaved.
type RedisBus struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewRedisBus(rdb *redis.Client, logger *zap.Logger) *RedisBus {
	return &RedisBus{rdb: rdb, logger: logger}
}

func (b *RedisBus) Signal(ctx context.Context, key string) error {
	value := freshValue()

	if err := b.rdb.Set(ctx, signalKeyspace+key, value, signalTTL).Err(); err != nil {
		b.logger.Error("Failed to store signal value",
			zap.String("key", key),
			zap.Error(err),
		)
		return err
	}

	body, err := json.Marshal(signalMessage{Key: key, Value: value})
	if err != nil {
		return err
	}

	if err := b.rdb.Publish(ctx, signalChannel, body).Err(); err != nil {
		b.logger.Error("Failed to publish signal",
			zap.String("key", key),
			zap.Error(err),
		)
		return err
	}

	b.logger.Debug("Signal published",
		zap.String("key", key),
		zap.String("value", value),
	)
	return nil
}

func (b *RedisBus) Subscribe(ctx context.Context, prefix string, h Handler) (func(), error) {
	pubsub := b.rdb.Subscribe(ctx, signalChannel)

	// Force the subscription to be established before returning.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	var mu sync.Mutex
	lastSeen := make(map[string]string)

	go func() {
		for msg := range pubsub.Channel() {
			var sig signalMessage
			if err := json.Unmarshal([]byte(msg.Payload), &sig); err != nil {
				b.logger.Warn("Dropping malformed signal", zap.Error(err))
				continue
			}
			if !strings.HasPrefix(sig.Key, prefix) {
				continue
			}

			mu.Lock()
			duplicate := lastSeen[sig.Key] == sig.Value
			if !duplicate {
				lastSeen[sig.Key] = sig.Value
			}
			mu.Unlock()
			if duplicate {
				continue
			}

			h(sig.Key, sig.Value)
		}
	}()

	return func() {
		_ = pubsub.Close()
	}, nil
}
