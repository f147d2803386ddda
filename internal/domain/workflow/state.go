package workflow

// State represents a negotiation status in its lifecycle
type State string

const (
	StateAwaitingProvider  State = "AWAITING_PROVIDER"
	StateAwaitingRequester State = "AWAITING_REQUESTER"
	StateAccepted          State = "ACCEPTED"
	StateRejected          State = "REJECTED"
	StateCancelled         State = "CANCELLED"
)

var validStates = map[State]bool{
	StateAwaitingProvider:  true,
	StateAwaitingRequester: true,
	StateAccepted:          true,
	StateRejected:          true,
	StateCancelled:         true,
}

var terminalStates = map[State]bool{
	StateAccepted:  true,
	StateRejected:  true,
	StateCancelled: true,
}

// IsTerminal returns true if the state is a terminal state (no further transitions allowed)
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a valid negotiation state
func (s State) IsValid() bool {
	return validStates[s]
}
