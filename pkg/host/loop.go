package host

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aretw0/lathe/pkg/domain"
)

const defaultMailboxSize = 16

// MainLoop is the single-consumer task queue that stands in for the host
// application's cooperative main thread. All host-API work — everything
// that touches a Design or Context — must run as a task on this loop.
//
// Submit is fire-and-forget and never blocks: when the mailbox is full the
// task is dropped and domain.ErrQueueFull returned. Callers rely on their
// next tick to retry, so a dropped handoff loses nothing.
type MainLoop struct {
	mailbox chan func()
	logger  *slog.Logger
	done    chan struct{}
	once    sync.Once
}

// LoopOption configures a MainLoop.
type LoopOption func(*MainLoop)

// WithMailboxSize sets the task queue depth.
func WithMailboxSize(n int) LoopOption {
	return func(l *MainLoop) {
		if n > 0 {
			l.mailbox = make(chan func(), n)
		}
	}
}

// WithLoopLogger sets the logger for loop diagnostics.
func WithLoopLogger(logger *slog.Logger) LoopOption {
	return func(l *MainLoop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewMainLoop creates a stopped loop. Call Start to begin draining tasks.
func NewMainLoop(opts ...LoopOption) *MainLoop {
	l := &MainLoop{
		mailbox: make(chan func(), defaultMailboxSize),
		logger:  slog.New(slog.DiscardHandler),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Start launches the loop goroutine. It drains tasks one at a time until
// ctx is cancelled; there is no preemption and no concurrency between
// tasks. Start is idempotent.
func (l *MainLoop) Start(ctx context.Context) {
	l.once.Do(func() {
		go l.run(ctx)
	})
}

func (l *MainLoop) run(ctx context.Context) {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			return
		case task := <-l.mailbox:
			l.execute(task)
		}
	}
}

// execute runs one task with a panic guard. A panicking task must not kill
// the host loop; the dispatcher has its own failure boundary, this one is
// the loop's last line of defense.
func (l *MainLoop) execute(task func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("task panicked on main loop", "panic", r)
		}
	}()
	task()
}

// Submit enqueues a task without blocking. Returns domain.ErrQueueFull
// when the mailbox is full.
func (l *MainLoop) Submit(task func()) error {
	select {
	case l.mailbox <- task:
		return nil
	default:
		return domain.ErrQueueFull
	}
}

// Done is closed once the loop goroutine has exited.
func (l *MainLoop) Done() <-chan struct{} {
	return l.done
}
