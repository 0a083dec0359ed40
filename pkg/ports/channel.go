package ports

import (
	"context"

	"github.com/aretw0/lathe/pkg/domain"
)

// Channel carries the three wire documents between the agent and the bridge.
//
// Each document is a single overwrite-only slot: only the latest content
// matters. Implementations must make writes atomic from the reader's point
// of view (a reader never observes a partially written document) and map
// "document absent" onto the domain sentinels rather than transport errors.
type Channel interface {
	// ReadCommand returns the current command document.
	// Returns domain.ErrNoCommand when the document is missing, empty,
	// partially written, or not a valid command.
	ReadCommand(ctx context.Context) (*domain.Command, error)

	// WriteCommand overwrites the command document. Used by the agent side
	// (CLI, MCP server); the bridge itself never writes commands.
	WriteCommand(ctx context.Context, cmd *domain.Command) error

	// ReadResult returns the current result document, or domain.ErrNoResult.
	ReadResult(ctx context.Context) (*domain.Result, error)

	// WriteResult overwrites the result document.
	WriteResult(ctx context.Context, res *domain.Result) error

	// ReadStatus returns the current status document.
	// Returns domain.ErrNoStatus when absent and domain.ErrCorruptStatus
	// when present but unparsable.
	ReadStatus(ctx context.Context) (*domain.Status, error)

	// WriteStatus overwrites the status document.
	WriteStatus(ctx context.Context, st *domain.Status) error
}

// Watchable defines an interface for channels that can notify about command
// document changes. The notification is advisory: the poller treats it as an
// extra tick, and the interval timer remains the guaranteed path.
type Watchable interface {
	// Watch returns a channel that is signaled when the command document may
	// have changed. The channel is closed when ctx is cancelled.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
