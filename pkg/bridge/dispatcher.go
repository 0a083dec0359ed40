package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/lathe/pkg/domain"
	"github.com/aretw0/lathe/pkg/host"
	"github.com/aretw0/lathe/pkg/ports"
	"github.com/aretw0/lathe/pkg/registry"
)

// Dispatcher executes one command per handoff. Dispatch always runs on the
// host loop, so handlers see the execution context single-threaded.
//
// The dispatcher re-reads the command document instead of trusting what the
// poller saw: the agent may have overwritten it between handoff and
// dispatch, and only the latest content matters.
type Dispatcher struct {
	ch     ports.Channel
	reg    *registry.Registry
	ec     *host.Context
	status *StatusManager
	logger *slog.Logger
	hooks  domain.LifecycleHooks
}

// NewDispatcher creates a dispatcher routing commands from ch through reg.
func NewDispatcher(ch ports.Channel, reg *registry.Registry, ec *host.Context, status *StatusManager, logger *slog.Logger, hooks domain.LifecycleHooks) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Dispatcher{ch: ch, reg: reg, ec: ec, status: status, logger: logger, hooks: hooks}
}

// Dispatch processes the current command document, if it is still new.
//
// Every consumed id advances the watermark exactly once, success or failure.
// An unknown action consumes its id too: leaving it unconsumed would raise
// the same doomed command on every tick forever.
func (d *Dispatcher) Dispatch(ctx context.Context) {
	cmd, err := d.ch.ReadCommand(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrNoCommand) {
			d.logger.Warn("command re-read failed", "error", err)
		}
		return
	}
	if cmd.ID <= d.status.LastProcessedID() {
		return
	}

	d.emitDispatch(ctx, cmd)
	d.logger.Info("dispatching command", "command_id", cmd.ID, "action", cmd.Action)
	d.status.Running(ctx)

	start := time.Now()
	payload, err := d.execute(ctx, cmd)
	duration := time.Since(start)

	var res *domain.Result
	if err != nil {
		res = domain.Fail(cmd.ID, err.Error())
		d.logger.Warn("command failed", "command_id", cmd.ID, "action", cmd.Action, "error", err, "duration", duration)
	} else {
		res = domain.OK(cmd.ID, payload)
		d.logger.Info("command succeeded", "command_id", cmd.ID, "action", cmd.Action, "duration", duration)
	}

	// Result first, status second: agents that see the advanced watermark
	// can rely on the matching result already being readable.
	if werr := d.ch.WriteResult(ctx, res); werr != nil {
		d.logger.Error("result write failed", "command_id", cmd.ID, "error", werr)
	}
	d.status.Complete(ctx, cmd.ID, res.ErrorMessage())
	d.emitResult(ctx, cmd, res, duration)
}

// execute resolves and runs the handler. Panics become failure results;
// one bad command must never take the bridge down.
func (d *Dispatcher) execute(ctx context.Context, cmd *domain.Command) (payload any, err error) {
	handler, ok := d.reg.Resolve(cmd.Action)
	if !ok {
		return nil, fmt.Errorf("Unknown action: %s", cmd.Action)
	}

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("handler panicked", "command_id", cmd.ID, "action", cmd.Action, "panic", r)
			err = fmt.Errorf("internal error in '%s': %v", cmd.Action, r)
			payload = nil
		}
	}()

	return handler(ctx, d.ec, cmd.Params)
}

func (d *Dispatcher) emitDispatch(ctx context.Context, cmd *domain.Command) {
	if d.hooks.OnDispatch == nil {
		return
	}
	d.hooks.OnDispatch(ctx, &domain.DispatchEvent{
		EventBase: domain.EventBase{Timestamp: time.Now().UTC(), Type: domain.EventDispatch},
		CommandID: cmd.ID,
		Action:    cmd.Action,
	})
}

func (d *Dispatcher) emitResult(ctx context.Context, cmd *domain.Command, res *domain.Result, duration time.Duration) {
	if d.hooks.OnResult == nil {
		return
	}
	d.hooks.OnResult(ctx, &domain.ResultEvent{
		EventBase: domain.EventBase{Timestamp: time.Now().UTC(), Type: domain.EventResult},
		CommandID: cmd.ID,
		Action:    cmd.Action,
		Success:   res.Success,
		Duration:  duration,
		Error:     res.ErrorMessage(),
	})
}
