package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventPoll     EventType = "poll"
	EventHandoff  EventType = "handoff"
	EventDispatch EventType = "dispatch"
	EventResult   EventType = "result"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// PollEvent represents one poller tick.
type PollEvent struct {
	EventBase
	CommandID int64 `json:"command_id"` // 0 when no command document was readable
	New       bool  `json:"new"`        // true when the id was above the last-seen watermark
}

// HandoffEvent represents a cross-thread handoff raised by the poller.
type HandoffEvent struct {
	EventBase
	CommandID int64 `json:"command_id"`
	Dropped   bool  `json:"dropped"` // true when the executor queue was full
}

// DispatchEvent represents a command entering the dispatch loop.
type DispatchEvent struct {
	EventBase
	CommandID int64  `json:"command_id"`
	Action    string `json:"action"`
}

// ResultEvent represents a published result.
type ResultEvent struct {
	EventBase
	CommandID int64         `json:"command_id"`
	Action    string        `json:"action"`
	Success   bool          `json:"success"`
	Duration  time.Duration `json:"duration"`
	Error     string        `json:"error,omitempty"`
}

// LifecycleHooks defines callbacks for bridge observability.
// Nil hooks are skipped. Hooks run on the emitting goroutine: poll and
// handoff hooks on the poller, dispatch and result hooks on the host loop.
type LifecycleHooks struct {
	OnPoll     func(context.Context, *PollEvent)
	OnHandoff  func(context.Context, *HandoffEvent)
	OnDispatch func(context.Context, *DispatchEvent)
	OnResult   func(context.Context, *ResultEvent)
}

// Merge combines two hook sets. For each event both sets observe, h's hook
// runs first, then other's.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnPoll:     mergeHook(h.OnPoll, other.OnPoll),
		OnHandoff:  mergeHook(h.OnHandoff, other.OnHandoff),
		OnDispatch: mergeHook(h.OnDispatch, other.OnDispatch),
		OnResult:   mergeHook(h.OnResult, other.OnResult),
	}
}

func mergeHook[E any](first, second func(context.Context, *E)) func(context.Context, *E) {
	switch {
	case first == nil:
		return second
	case second == nil:
		return first
	}
	return func(ctx context.Context, ev *E) {
		first(ctx, ev)
		second(ctx, ev)
	}
}
