package bridge

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aretw0/lathe/pkg/domain"
	"github.com/aretw0/lathe/pkg/ports"
)

const defaultPollInterval = time.Second

// Poller watches the command document and raises a handoff to the host
// executor whenever a command id above its last-seen watermark appears.
//
// The poller never executes commands itself. It runs on its own goroutine;
// the executor carries the work across to the host's single thread. A full
// executor queue drops the handoff without advancing the watermark, so the
// next tick retries the same command.
type Poller struct {
	ch       ports.Channel
	exec     ports.Executor
	handoff  func()
	interval time.Duration
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	beat     func(context.Context)

	lastSeen int64
}

// PollerOption configures a Poller.
type PollerOption func(*Poller)

// WithInterval sets the tick interval. Values <= 0 keep the default.
func WithInterval(d time.Duration) PollerOption {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithLastSeen seeds the watermark, typically from StatusManager.Load, so a
// restarted bridge never re-raises an already processed command.
func WithLastSeen(id int64) PollerOption {
	return func(p *Poller) { p.lastSeen = id }
}

// WithPollerLogger sets the structured logger.
func WithPollerLogger(logger *slog.Logger) PollerOption {
	return func(p *Poller) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithPollerHooks sets the lifecycle hooks.
func WithPollerHooks(hooks domain.LifecycleHooks) PollerOption {
	return func(p *Poller) { p.hooks = hooks }
}

// WithHeartbeat sets a callback invoked on quiet ticks.
func WithHeartbeat(beat func(context.Context)) PollerOption {
	return func(p *Poller) { p.beat = beat }
}

// NewPoller creates a poller that submits handoff to exec when new work
// appears on ch.
func NewPoller(ch ports.Channel, exec ports.Executor, handoff func(), opts ...PollerOption) *Poller {
	p := &Poller{
		ch:       ch,
		exec:     exec,
		handoff:  handoff,
		interval: defaultPollInterval,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run polls until ctx is cancelled. When the channel supports change
// notification, notifications act as extra ticks; the interval timer stays
// the guaranteed path either way.
func (p *Poller) Run(ctx context.Context) error {
	var watch <-chan struct{}
	if w, ok := p.ch.(ports.Watchable); ok {
		var err error
		watch, err = w.Watch(ctx)
		if err != nil {
			p.logger.Warn("change notification unavailable, polling only", "error", err)
			watch = nil
		}
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.tick(ctx)
		case _, ok := <-watch:
			if !ok {
				watch = nil
				continue
			}
			p.tick(ctx)
		}
	}
}

// tick reads the command document once and decides whether to hand off.
// A tick never fails the poller: unreadable documents count as no work.
func (p *Poller) tick(ctx context.Context) {
	cmd, err := p.ch.ReadCommand(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrNoCommand) {
			p.logger.Warn("command read failed", "error", err)
		}
		p.emitPoll(ctx, 0, false)
		p.heartbeat(ctx)
		return
	}

	isNew := cmd.ID > p.lastSeen
	p.emitPoll(ctx, cmd.ID, isNew)
	if !isNew {
		p.heartbeat(ctx)
		return
	}

	if err := p.exec.Submit(p.handoff); err != nil {
		// Watermark unchanged: the next tick raises this command again.
		p.logger.Warn("handoff dropped, host loop busy", "command_id", cmd.ID, "error", err)
		p.emitHandoff(ctx, cmd.ID, true)
		return
	}

	p.lastSeen = cmd.ID
	p.logger.Debug("handoff raised", "command_id", cmd.ID, "action", cmd.Action)
	p.emitHandoff(ctx, cmd.ID, false)
}

func (p *Poller) heartbeat(ctx context.Context) {
	if p.beat != nil {
		p.beat(ctx)
	}
}

func (p *Poller) emitPoll(ctx context.Context, id int64, isNew bool) {
	if p.hooks.OnPoll == nil {
		return
	}
	p.hooks.OnPoll(ctx, &domain.PollEvent{
		EventBase: domain.EventBase{Timestamp: time.Now().UTC(), Type: domain.EventPoll},
		CommandID: id,
		New:       isNew,
	})
}

func (p *Poller) emitHandoff(ctx context.Context, id int64, dropped bool) {
	if p.hooks.OnHandoff == nil {
		return
	}
	p.hooks.OnHandoff(ctx, &domain.HandoffEvent{
		EventBase: domain.EventBase{Timestamp: time.Now().UTC(), Type: domain.EventHandoff},
		CommandID: id,
		Dropped:   dropped,
	})
}
