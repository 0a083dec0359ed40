// Package memory implements ports.Channel in process memory. It backs tests
// and embedded setups where agent and bridge share one process.
package memory

import (
	"context"
	"sync"

	"github.com/aretw0/lathe/pkg/domain"
)

// Channel holds the three wire documents in memory.
// Safe for concurrent use.
type Channel struct {
	mu       sync.RWMutex
	command  *domain.Command
	result   *domain.Result
	status   *domain.Status
	watchers []chan struct{}
}

// New creates an empty in-memory channel.
func New() *Channel {
	return &Channel{}
}

// ReadCommand returns the current command document.
func (c *Channel) ReadCommand(ctx context.Context) (*domain.Command, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.command == nil {
		return nil, domain.ErrNoCommand
	}
	// Copy on read so callers can't mutate the stored document by pointer.
	cmd := *c.command
	if c.command.Params != nil {
		cmd.Params = make(map[string]any, len(c.command.Params))
		for k, v := range c.command.Params {
			cmd.Params[k] = v
		}
	}
	return &cmd, nil
}

// WriteCommand overwrites the command document and signals watchers.
func (c *Channel) WriteCommand(ctx context.Context, cmd *domain.Command) error {
	copied := *cmd
	if cmd.Params != nil {
		copied.Params = make(map[string]any, len(cmd.Params))
		for k, v := range cmd.Params {
			copied.Params[k] = v
		}
	}

	c.mu.Lock()
	c.command = &copied
	watchers := make([]chan struct{}, len(c.watchers))
	copy(watchers, c.watchers)
	c.mu.Unlock()

	for _, w := range watchers {
		select {
		case w <- struct{}{}:
		default: // watcher already has a pending signal
		}
	}
	return nil
}

// ReadResult returns the current result document.
func (c *Channel) ReadResult(ctx context.Context) (*domain.Result, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.result == nil {
		return nil, domain.ErrNoResult
	}
	res := *c.result
	return &res, nil
}

// WriteResult overwrites the result document.
func (c *Channel) WriteResult(ctx context.Context, res *domain.Result) error {
	copied := *res
	c.mu.Lock()
	c.result = &copied
	c.mu.Unlock()
	return nil
}

// ReadStatus returns the current status document.
func (c *Channel) ReadStatus(ctx context.Context) (*domain.Status, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.status == nil {
		return nil, domain.ErrNoStatus
	}
	st := *c.status
	return &st, nil
}

// WriteStatus overwrites the status document.
func (c *Channel) WriteStatus(ctx context.Context, st *domain.Status) error {
	copied := *st
	c.mu.Lock()
	c.status = &copied
	c.mu.Unlock()
	return nil
}

// Watch implements ports.Watchable. The returned channel is signaled on
// every command write and closed when ctx is cancelled.
func (c *Channel) Watch(ctx context.Context) (<-chan struct{}, error) {
	w := make(chan struct{}, 1)
	c.mu.Lock()
	c.watchers = append(c.watchers, w)
	c.mu.Unlock()

	go func() {
		<-ctx.Done()
		c.mu.Lock()
		for i, existing := range c.watchers {
			if existing == w {
				c.watchers = append(c.watchers[:i], c.watchers[i+1:]...)
				break
			}
		}
		c.mu.Unlock()
		close(w)
	}()

	return w, nil
}
