// Package file implements ports.Channel on a shared directory. This is the
// bridge's primary transport: the agent and the CAD host have no network
// path between them, only a filesystem both can reach.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/lathe/pkg/domain"
	"github.com/fsnotify/fsnotify"
)

const (
	commandFile = "commands.json"
	resultFile  = "results.json"
	statusFile  = "status.json"
	sessionsDir = "exports"
)

// Channel exchanges the three wire documents as JSON files in Dir.
type Channel struct {
	Dir string
}

// New creates a Channel rooted at dir. If dir is empty, it defaults to
// ".lathe/bridge".
func New(dir string) *Channel {
	if dir == "" {
		dir = filepath.Join(".lathe", "bridge")
	}
	return &Channel{Dir: dir}
}

// SessionsDir returns the directory session exports should land in.
func (c *Channel) SessionsDir() string {
	return filepath.Join(c.Dir, sessionsDir)
}

// ReadCommand returns the current command document.
//
// Any unreadable state — missing file, empty file, torn write from a
// non-atomic agent, malformed JSON, invalid command — maps onto
// domain.ErrNoCommand. The poller treats all of these as "no new work" and
// tries again next tick.
func (c *Channel) ReadCommand(ctx context.Context) (*domain.Command, error) {
	data, err := os.ReadFile(filepath.Join(c.Dir, commandFile))
	if err != nil {
		return nil, domain.ErrNoCommand
	}

	var cmd domain.Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return nil, domain.ErrNoCommand
	}
	if !cmd.Valid() {
		return nil, domain.ErrNoCommand
	}
	return &cmd, nil
}

// WriteCommand overwrites the command document atomically.
func (c *Channel) WriteCommand(ctx context.Context, cmd *domain.Command) error {
	return c.save(commandFile, cmd)
}

// ReadResult returns the current result document, or domain.ErrNoResult.
func (c *Channel) ReadResult(ctx context.Context) (*domain.Result, error) {
	data, err := os.ReadFile(filepath.Join(c.Dir, resultFile))
	if err != nil {
		return nil, domain.ErrNoResult
	}

	var res domain.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, domain.ErrNoResult
	}
	return &res, nil
}

// WriteResult overwrites the result document atomically.
func (c *Channel) WriteResult(ctx context.Context, res *domain.Result) error {
	return c.save(resultFile, res)
}

// ReadStatus returns the current status document.
//
// Unlike commands and results, a present-but-unparsable status file is a
// hard error: the watermark inside decides what may execute, and guessing
// it wrong means running a command twice.
func (c *Channel) ReadStatus(ctx context.Context) (*domain.Status, error) {
	data, err := os.ReadFile(filepath.Join(c.Dir, statusFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNoStatus
		}
		return nil, fmt.Errorf("read status file: %w", err)
	}

	var st domain.Status
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptStatus, err)
	}
	return &st, nil
}

// WriteStatus overwrites the status document atomically.
func (c *Channel) WriteStatus(ctx context.Context, st *domain.Status) error {
	return c.save(statusFile, st)
}

// save writes one document atomically: temp file in the same directory,
// write, fsync, close, rename. A reader sees either the old document or the
// new one, never a torn mix.
func (c *Channel) save(name string, v any) error {
	if err := os.MkdirAll(c.Dir, 0755); err != nil {
		return fmt.Errorf("failed to ensure bridge directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}

	// Same directory as the destination so the rename stays on one
	// filesystem, which is what makes it atomic.
	tmpFile, err := os.CreateTemp(c.Dir, "tmp-"+name+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath) // no-op once renamed
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Rename of an open file fails on Windows.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	destPath := filepath.Join(c.Dir, name)
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file over %s: %w", name, err)
	}
	return nil
}

// Watch implements ports.Watchable with fsnotify. Signals coalesce; the
// poller's interval timer remains the guaranteed path, so a missed event
// only delays pickup by one tick.
func (c *Channel) Watch(ctx context.Context) (<-chan struct{}, error) {
	if err := os.MkdirAll(c.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to ensure bridge directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(c.Dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", c.Dir, err)
	}

	out := make(chan struct{}, 1)
	go func() {
		defer watcher.Close()
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				// Only the command document matters; the bridge writes the
				// other two itself.
				if filepath.Base(ev.Name) != commandFile {
					continue
				}
				if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Rename) {
					continue
				}
				select {
				case out <- struct{}{}:
				default:
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
				// Watch errors degrade to interval-only polling.
			}
		}
	}()

	return out, nil
}
