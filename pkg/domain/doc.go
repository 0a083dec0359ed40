/*
Package domain contains the core domain models for the Lathe bridge.

It defines the wire documents exchanged between an external agent and the
bridge (Command, Result, Status) and the lifecycle events the bridge emits
while processing them. This package is kept pure and free of external
dependencies like I/O or persistence, following Hexagonal Architecture
principles.

# Key Entities

  - Command: A single instruction written by the agent, identified by a
    monotonically increasing id.
  - Result: The outcome of exactly one processed command. Success and error
    are mutually exclusive by construction.
  - Status: The bridge's published heartbeat: state, watermark of the last
    processed id, and the most recent error.
  - LifecycleHooks: Optional callbacks for observing polls, handoffs,
    dispatches, and results.
*/
package domain
