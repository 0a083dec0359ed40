// Package agent is the sending side of the bridge. It wraps a channel with
// id sequencing and result polling so callers (CLI, MCP server, tests) don't
// reimplement the wire discipline.
package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aretw0/lathe/pkg/domain"
	"github.com/aretw0/lathe/pkg/ports"
)

const defaultPollInterval = 250 * time.Millisecond

// Client sends commands and awaits their results.
type Client struct {
	ch       ports.Channel
	interval time.Duration

	mu     sync.Mutex
	nextID int64 // 0 until seeded
}

// Option configures a Client.
type Option func(*Client)

// WithPollInterval sets how often Await re-reads the result document.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.interval = d
		}
	}
}

// New creates a client on ch.
func New(ch ports.Channel, opts ...Option) *Client {
	c := &Client{ch: ch, interval: defaultPollInterval}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NextID reserves the next command id. The first call seeds the sequence
// from the bridge's published watermark, so a client joining an existing
// session never reuses a consumed id.
func (c *Client) NextID(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.nextID == 0 {
		watermark, err := c.watermark(ctx)
		if err != nil {
			return 0, err
		}
		c.nextID = watermark
	}
	c.nextID++
	return c.nextID, nil
}

// watermark reads the highest id the bridge has consumed, also considering
// a pending command document from a previous client.
func (c *Client) watermark(ctx context.Context) (int64, error) {
	var highest int64

	st, err := c.ch.ReadStatus(ctx)
	switch {
	case err == nil:
		highest = st.LastProcessedID
	case errors.Is(err, domain.ErrNoStatus):
		// Fresh session.
	default:
		return 0, fmt.Errorf("read watermark: %w", err)
	}

	if cmd, err := c.ch.ReadCommand(ctx); err == nil && cmd.ID > highest {
		highest = cmd.ID
	}
	return highest, nil
}

// Send writes a command with a freshly reserved id and returns that id.
func (c *Client) Send(ctx context.Context, action string, params map[string]any) (int64, error) {
	id, err := c.NextID(ctx)
	if err != nil {
		return 0, err
	}

	cmd := &domain.Command{ID: id, Action: action, Params: params}
	if !cmd.Valid() {
		return 0, fmt.Errorf("invalid command: action required")
	}
	if err := c.ch.WriteCommand(ctx, cmd); err != nil {
		return 0, fmt.Errorf("write command: %w", err)
	}
	return id, nil
}

// Await polls until the result document carries id, or ctx expires.
func (c *Client) Await(ctx context.Context, id int64) (*domain.Result, error) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		res, err := c.ch.ReadResult(ctx)
		if err == nil && res.ID == id {
			return res, nil
		}
		if err != nil && !errors.Is(err, domain.ErrNoResult) {
			return nil, fmt.Errorf("read result: %w", err)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("awaiting result for command %d: %w", id, ctx.Err())
		case <-ticker.C:
		}
	}
}

// SendAndWait sends a command and blocks until its result arrives.
func (c *Client) SendAndWait(ctx context.Context, action string, params map[string]any) (*domain.Result, error) {
	id, err := c.Send(ctx, action, params)
	if err != nil {
		return nil, err
	}
	return c.Await(ctx, id)
}

// Status returns the bridge's current status document.
func (c *Client) Status(ctx context.Context) (*domain.Status, error) {
	return c.ch.ReadStatus(ctx)
}
