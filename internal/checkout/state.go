package checkout

type State string

const (
	StateNotStarted      State = "NOT_STARTED"
	StateInitiating      State = "INITIATING"
	StateAwaitingGateway State = "AWAITING_GATEWAY_REDIRECT"
	StateVerifying       State = "VERIFYING_CALLBACK"
	StateConfirmed       State = "CONFIRMED"
	StateFailed          State = "FAILED"
)

func (s State) IsTerminal() bool {
	return s == StateConfirmed || s == StateFailed
}

// String representation (for logging)
func (s State) String() string {
	return string(s)
}

var transitions = map[State][]State{
	StateNotStarted:      {StateInitiating, StateVerifying},
	StateInitiating:      {StateAwaitingGateway, StateFailed},
	StateAwaitingGateway: {StateVerifying, StateFailed},
	StateVerifying:       {StateConfirmed, StateFailed},
}

func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
