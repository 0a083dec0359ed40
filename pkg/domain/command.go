package domain

// Command is the instruction document written by the agent.
//
// The agent fully overwrites the command document for every instruction and
// chooses ids that increase strictly over the life of a session. The bridge
// uses the id, never file timestamps, to decide whether work is new.
type Command struct {
	// ID is the agent-chosen sequence number. Must be positive.
	ID int64 `json:"id"`

	// Action is the registry key naming the handler to invoke.
	Action string `json:"action"`

	// Params carries handler-specific arguments. May be nil.
	Params map[string]any `json:"params,omitempty"`
}

// Valid reports whether the document is a well-formed command.
// Anything else is treated as "no new work" by the transport layer,
// never as an error surfaced to the agent.
func (c *Command) Valid() bool {
	return c != nil && c.ID > 0 && c.Action != ""
}
