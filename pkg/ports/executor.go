package ports

// Executor schedules work onto the host's single cooperative thread.
//
// Submit is fire-and-forget: it must not block the caller. When the queue
// is full it returns domain.ErrQueueFull and the task is dropped; callers
// rely on their next tick to retry, so nothing is lost.
type Executor interface {
	Submit(task func()) error
}
