// Package redis implements ports.Channel on Redis. It serves setups where
// the agent runs on a different machine than the CAD host and no shared
// filesystem exists between them.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aretw0/lathe/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// Channel stores each wire document under one key. Writes are plain SETs,
// which Redis applies atomically, so readers never observe torn documents.
type Channel struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Channel)

// WithTTL sets an expiration on the documents. Zero means no expiration.
func WithTTL(ttl time.Duration) Option {
	return func(c *Channel) {
		c.ttl = ttl
	}
}

// WithPrefix sets the key prefix for the documents.
func WithPrefix(prefix string) Option {
	return func(c *Channel) {
		c.prefix = prefix
	}
}

// New creates a Redis channel with its own client.
func New(address, password string, db int, opts ...Option) *Channel {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a Redis channel from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Channel {
	ch := &Channel{
		client: client,
		prefix: "lathe:bridge:",
		ttl:    0,
	}
	for _, opt := range opts {
		opt(ch)
	}
	return ch
}

func (c *Channel) commandKey() string { return c.prefix + "commands" }
func (c *Channel) resultKey() string  { return c.prefix + "results" }
func (c *Channel) statusKey() string  { return c.prefix + "status" }

// ReadCommand returns the current command document. A missing key and an
// unparsable or invalid document both map onto domain.ErrNoCommand.
func (c *Channel) ReadCommand(ctx context.Context) (*domain.Command, error) {
	val, err := c.client.Get(ctx, c.commandKey()).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, domain.ErrNoCommand
		}
		return nil, fmt.Errorf("failed to get command from redis: %w", err)
	}

	var cmd domain.Command
	if err := json.Unmarshal([]byte(val), &cmd); err != nil {
		return nil, domain.ErrNoCommand
	}
	if !cmd.Valid() {
		return nil, domain.ErrNoCommand
	}
	return &cmd, nil
}

// WriteCommand overwrites the command document.
func (c *Channel) WriteCommand(ctx context.Context, cmd *domain.Command) error {
	return c.save(ctx, c.commandKey(), cmd)
}

// ReadResult returns the current result document, or domain.ErrNoResult.
func (c *Channel) ReadResult(ctx context.Context) (*domain.Result, error) {
	val, err := c.client.Get(ctx, c.resultKey()).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, domain.ErrNoResult
		}
		return nil, fmt.Errorf("failed to get result from redis: %w", err)
	}

	var res domain.Result
	if err := json.Unmarshal([]byte(val), &res); err != nil {
		return nil, domain.ErrNoResult
	}
	return &res, nil
}

// WriteResult overwrites the result document.
func (c *Channel) WriteResult(ctx context.Context, res *domain.Result) error {
	return c.save(ctx, c.resultKey(), res)
}

// ReadStatus returns the current status document. An unparsable status is
// domain.ErrCorruptStatus: the watermark inside must never be guessed.
func (c *Channel) ReadStatus(ctx context.Context) (*domain.Status, error) {
	val, err := c.client.Get(ctx, c.statusKey()).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, domain.ErrNoStatus
		}
		return nil, fmt.Errorf("failed to get status from redis: %w", err)
	}

	var st domain.Status
	if err := json.Unmarshal([]byte(val), &st); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptStatus, err)
	}
	return &st, nil
}

// WriteStatus overwrites the status document.
func (c *Channel) WriteStatus(ctx context.Context, st *domain.Status) error {
	return c.save(ctx, c.statusKey(), st)
}

func (c *Channel) save(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save %s to redis: %w", key, err)
	}
	return nil
}

// Close closes the redis client.
func (c *Channel) Close() error {
	return c.client.Close()
}
