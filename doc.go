/*
Package lathe is a filesystem-based command bridge that lets an external
agent drive a single-threaded CAD host.

Agent and host never share a connection. They share three overwrite-only JSON
documents on a channel (a directory, or Redis): commands.json written by the
agent, results.json and status.json written by the bridge. The bridge polls
the command document, hands new work across to the host's one cooperative
thread, executes the named action against the design, and publishes the
outcome.

# Concept

CAD automation APIs are single-threaded: every model mutation must happen on
the host's main thread. Lathe embraces that constraint instead of hiding it.
The poller runs on its own goroutine and only reads; execution happens
exclusively on the host loop, so handlers never need locks. Command ids
increase strictly and a persisted watermark guarantees a command executes at
most once, across restarts included.

# Key Features

  - File-first transport: works wherever agent and host see the same
    directory. No sockets, no daemons on the host side.
  - At-most-once execution: the watermark in status.json survives restarts.
  - Crash isolation: a panicking handler produces a failure result and the
    bridge keeps running.
  - Pluggable channels: filesystem, in-memory, or Redis.
  - Session export: the full design state dumps to reviewable JSON.

# Usage

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/lathe"
		"github.com/aretw0/lifecycle"
	)

	func main() {
		b, err := lathe.New("./bridge-dir")
		if err != nil {
			log.Fatal(err)
		}

		ctx := lifecycle.NewSignalContext(context.Background())
		if err := b.Run(ctx); err != nil {
			log.Fatal(err)
		}
	}

The agent side sends commands through the same channel:

	c := agent.New(fileChannel)
	res, err := c.SendAndWait(ctx, "draw_circle", map[string]any{"radius": 2.5})
*/
package lathe
