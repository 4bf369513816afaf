// ABOUTME: Remote transport-control message definitions
// ABOUTME: JSON command/response structs for the websocket endpoint
package remote

// Command is a transport command from a remote controller.
type Command struct {
	Type string `json:"type"`

	// Seek target for transport/seek, loop bounds for transport/loop.
	Sample   int64 `json:"sample,omitempty"`
	Start    int64 `json:"start,omitempty"`
	Duration int64 `json:"duration,omitempty"`
}

// Status is sent after every command and in reply to transport/position.
type Status struct {
	Type     string `json:"type"`
	Session  string `json:"session"`
	Started  bool   `json:"started"`
	Position int64  `json:"position"`
	Error    string `json:"error,omitempty"`
}

// Command types.
const (
	CmdStart    = "transport/start"
	CmdStop     = "transport/stop"
	CmdSeek     = "transport/seek"
	CmdLoop     = "transport/loop"
	CmdPosition = "transport/position"
)
