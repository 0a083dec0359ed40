package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/lathe/pkg/domain"
	"github.com/aretw0/lathe/pkg/ports"
	"github.com/google/uuid"
)

// StatusManager owns the status document for one bridge run. All writes go
// through it, serialized under one mutex, so a heartbeat can never clobber
// a watermark advance that raced it.
type StatusManager struct {
	ch     ports.Channel
	logger *slog.Logger

	mu  sync.Mutex
	cur domain.Status
}

// NewStatusManager creates a manager with a fresh instance id.
func NewStatusManager(ch ports.Channel, logger *slog.Logger) *StatusManager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &StatusManager{
		ch:     ch,
		logger: logger,
		cur:    *domain.NewStatus(uuid.NewString()),
	}
}

// InstanceID returns the id identifying this bridge run.
func (m *StatusManager) InstanceID() string {
	return m.cur.InstanceID
}

// Load reads the persisted watermark from a previous run.
//
// A missing status document means a fresh session and a zero watermark. A
// corrupt one is a hard error: guessing a watermark risks re-executing
// commands, so the caller must refuse to start.
func (m *StatusManager) Load(ctx context.Context) (int64, error) {
	st, err := m.ch.ReadStatus(ctx)
	switch {
	case errors.Is(err, domain.ErrNoStatus):
		return 0, nil
	case errors.Is(err, domain.ErrCorruptStatus):
		return 0, fmt.Errorf("refusing to start: %w", err)
	case err != nil:
		return 0, fmt.Errorf("read status: %w", err)
	}

	m.mu.Lock()
	m.cur.LastProcessedID = st.LastProcessedID
	m.mu.Unlock()
	return st.LastProcessedID, nil
}

// LastProcessedID returns the current watermark.
func (m *StatusManager) LastProcessedID() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cur.LastProcessedID
}

// Running marks a command as executing and publishes the status.
func (m *StatusManager) Running(ctx context.Context) {
	m.mu.Lock()
	m.cur.State = domain.StateRunning
	m.publishLocked(ctx)
	m.mu.Unlock()
}

// Complete advances the watermark past id and publishes the outcome. A
// success clears any earlier error; a failure records it until the next
// success.
func (m *StatusManager) Complete(ctx context.Context, id int64, errMsg string) {
	m.mu.Lock()
	m.cur.LastProcessedID = id
	if errMsg == "" {
		m.cur.State = domain.StateIdle
		m.cur.LastError = ""
	} else {
		m.cur.State = domain.StateError
		m.cur.LastError = errMsg
	}
	m.publishLocked(ctx)
	m.mu.Unlock()
}

// Heartbeat republishes the current status with a fresh timestamp so agents
// can tell a quiet bridge from a dead one.
func (m *StatusManager) Heartbeat(ctx context.Context) {
	m.mu.Lock()
	m.publishLocked(ctx)
	m.mu.Unlock()
}

func (m *StatusManager) publishLocked(ctx context.Context) {
	m.cur.Timestamp = time.Now().UTC()
	st := m.cur
	if err := m.ch.WriteStatus(ctx, &st); err != nil {
		// Status is advisory for agents; the watermark in memory stays
		// authoritative for this run.
		m.logger.Warn("status write failed", "error", err)
	}
}
