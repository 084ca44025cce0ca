package link

// Command is the only outbound wire shape.
type Command struct {
	Type  string   `json:"type"`
	Value *float64 `json:"value,omitempty"`
}

// Outbound command vocabulary.
const (
	CmdRequestControl = "REQUEST_CONTROL"
	CmdGetState       = "GET_STATE"
	CmdSetSpeedNow    = "SET_SPEED_NOW"
	CmdSetInclineNow  = "SET_INCLINE_NOW"
)

// State of the connection state machine.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateError        State = "error"
)
