package lathe

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/lathe/internal/adapters/file"
	"github.com/aretw0/lathe/pkg/bridge"
	"github.com/aretw0/lathe/pkg/domain"
	"github.com/aretw0/lathe/pkg/export"
	"github.com/aretw0/lathe/pkg/handlers"
	"github.com/aretw0/lathe/pkg/host"
	"github.com/aretw0/lathe/pkg/ports"
	"github.com/aretw0/lathe/pkg/registry"
)

// Version is the release version, embedded from the VERSION file.
//
//go:embed VERSION
var Version string

// Bridge is the high-level entry point for the Lathe library. It wires the
// poller, host loop, dispatcher and action registry over one channel and
// runs them until the context is cancelled.
type Bridge struct {
	ch          ports.Channel
	logger      *slog.Logger
	hooks       domain.LifecycleHooks
	interval    time.Duration
	mailboxSize int
	sessionDir  string
	designName  string
	extras      []handlers.Table

	reg    *registry.Registry
	ec     *host.Context
	loop   *host.MainLoop
	status *bridge.StatusManager
}

// Option defines a functional option for configuring the Bridge.
type Option func(*Bridge)

// WithChannel injects a custom channel, bypassing the default file channel.
func WithChannel(ch ports.Channel) Option {
	return func(b *Bridge) {
		b.ch = ch
	}
}

// WithLogger sets a custom structured logger for the bridge.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bridge) {
		b.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(b *Bridge) {
		b.hooks = hooks
	}
}

// WithPollInterval sets the poll interval (default: 1s).
func WithPollInterval(d time.Duration) Option {
	return func(b *Bridge) {
		b.interval = d
	}
}

// WithMailboxSize sets the host loop's mailbox capacity.
func WithMailboxSize(n int) Option {
	return func(b *Bridge) {
		b.mailboxSize = n
	}
}

// WithSessionDir sets where session exports land.
func WithSessionDir(dir string) Option {
	return func(b *Bridge) {
		b.sessionDir = dir
	}
}

// WithDesignName names the initial design document (default: "Untitled").
func WithDesignName(name string) Option {
	return func(b *Bridge) {
		b.designName = name
	}
}

// WithActions registers additional action tables alongside the built-in
// catalog. Name collisions with built-in actions fail New.
func WithActions(tables ...handlers.Table) Option {
	return func(b *Bridge) {
		b.extras = append(b.extras, tables...)
	}
}

// New initializes a Bridge. By default it uses a file channel rooted at dir;
// with WithChannel, dir may be empty and only names the session export
// directory fallback.
func New(dir string, opts ...Option) (*Bridge, error) {
	b := &Bridge{
		designName: "Untitled",
	}
	for _, opt := range opts {
		opt(b)
	}

	if b.ch == nil {
		fc := file.New(dir)
		b.ch = fc
		if b.sessionDir == "" {
			b.sessionDir = fc.SessionsDir()
		}
	}
	if b.sessionDir == "" {
		b.sessionDir = "exports"
	}
	if b.logger == nil {
		b.logger = slog.New(slog.DiscardHandler)
	}

	reg, err := handlers.Catalog(export.New(b.sessionDir))
	if err != nil {
		return nil, fmt.Errorf("build action catalog: %w", err)
	}
	for _, tbl := range b.extras {
		for name, h := range tbl {
			if err := reg.Register(name, h); err != nil {
				return nil, fmt.Errorf("register custom action: %w", err)
			}
		}
	}
	b.reg = reg

	b.ec = host.NewContext(host.NewDesign(b.designName))
	loopOpts := []host.LoopOption{host.WithLoopLogger(b.logger)}
	if b.mailboxSize > 0 {
		loopOpts = append(loopOpts, host.WithMailboxSize(b.mailboxSize))
	}
	b.loop = host.NewMainLoop(loopOpts...)
	b.status = bridge.NewStatusManager(b.ch, b.logger)

	return b, nil
}

// Run drives the bridge until ctx is cancelled. It returns nil on a clean
// shutdown and an error when startup preconditions fail, most notably a
// corrupt status document.
func (b *Bridge) Run(ctx context.Context) error {
	watermark, err := b.status.Load(ctx)
	if err != nil {
		return err
	}
	b.logger.Info("bridge starting",
		"instance_id", b.status.InstanceID(),
		"watermark", watermark,
		"actions", b.reg.Len(),
	)

	b.loop.Start(ctx)

	dispatcher := bridge.NewDispatcher(b.ch, b.reg, b.ec, b.status, b.logger, b.hooks)
	pollerOpts := []bridge.PollerOption{
		bridge.WithLastSeen(watermark),
		bridge.WithPollerLogger(b.logger),
		bridge.WithPollerHooks(b.hooks),
		bridge.WithHeartbeat(b.status.Heartbeat),
	}
	if b.interval > 0 {
		pollerOpts = append(pollerOpts, bridge.WithInterval(b.interval))
	}
	poller := bridge.NewPoller(b.ch, b.loop, func() { dispatcher.Dispatch(ctx) }, pollerOpts...)

	// Publish the fresh instance id before the first tick so agents can tell
	// this run apart from the previous one immediately.
	b.status.Heartbeat(ctx)

	err = poller.Run(ctx)
	<-b.loop.Done()
	b.logger.Info("bridge stopped", "instance_id", b.status.InstanceID())

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Channel returns the channel the bridge communicates over.
func (b *Bridge) Channel() ports.Channel {
	return b.ch
}

// Actions returns the sorted names of all registered actions.
func (b *Bridge) Actions() []string {
	return b.reg.Names()
}

// InstanceID identifies this bridge run.
func (b *Bridge) InstanceID() string {
	return b.status.InstanceID()
}
