package domain

import "errors"

// ErrNoCommand is returned when the command document is missing, empty,
// partially written, or otherwise not a valid command. Transport treats
// all of these as "no new work".
var ErrNoCommand = errors.New("no command available")

// ErrNoResult is returned when no result document has been published yet.
var ErrNoResult = errors.New("no result available")

// ErrNoStatus is returned when no status document exists. A fresh session
// starts from a zero watermark.
var ErrNoStatus = errors.New("no status available")

// ErrCorruptStatus is returned when a status document exists but cannot be
// parsed. The bridge refuses to start rather than guess a watermark.
var ErrCorruptStatus = errors.New("status document corrupt")

// ErrDuplicateAction is returned when two handlers register the same action
// name. This is a startup configuration error, never a silent override.
var ErrDuplicateAction = errors.New("duplicate action registration")

// ErrQueueFull is returned when a handoff cannot be enqueued because the
// host loop's mailbox is full. The next poll tick retries.
var ErrQueueFull = errors.New("executor queue full")
