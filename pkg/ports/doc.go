/*
Package ports defines the driven ports (interfaces) for the Lathe bridge.

These interfaces decouple the bridge core from external implementations,
allowing the wire documents to live on various transports and the dispatch
work to run on different executors.

# Key Interfaces

  - Channel: Reads and writes the three wire documents (command, result,
    status) on some transport (filesystem, memory, Redis).
  - Watchable: Optional channel capability that signals "the command
    document may have changed" so the poller can wake early.
  - Executor: Schedules work onto the host's single cooperative thread.
*/
package ports
