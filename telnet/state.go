package telnet

// State is the position of a session in its login and command cycle.
type State int

const (
	// Start is entered once the transport connects.
	Start State = iota
	// GetPrompt waits for a shell, login or password prompt.
	GetPrompt
	// Login holds while a credential write is in flight.
	Login
	// Enable waits for the enable password prompt.
	Enable
	// GetEnablePrompt waits for the first shell prompt before escalating.
	GetEnablePrompt
	// Response accumulates command output until the prompt returns.
	Response
	// Idle is the ready state between commands. Inbound data is ignored.
	Idle
)

func (s State) String() string {
	switch s {
	case Start:
		return "start"
	case GetPrompt:
		return "getprompt"
	case Login:
		return "login"
	case Enable:
		return "enable"
	case GetEnablePrompt:
		return "getenprompt"
	case Response:
		return "response"
	case Idle:
		return "idle"
	default:
		return "unknown"
	}
}
