package auth

import "fmt"

type SessionState int

const (
	Anonymous SessionState = iota
	Authenticated
)

func (s SessionState) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Authenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("SessionState(%d)", int(s))
	}
}

type SessionEvent string

const (
	EventSignIn  SessionEvent = "sign_in"
	EventUpdate  SessionEvent = "update"
	EventSignOut SessionEvent = "sign_out"
)

var transitions = map[SessionState]map[SessionEvent]SessionState{
	Anonymous: {
		EventSignIn: Authenticated,
	},
	Authenticated: {
		EventUpdate:  Authenticated,
		EventSignOut: Anonymous,
	},
}

// Transition returns the state reached from s on ev, or ErrInvalidTransition.
func Transition(s SessionState, ev SessionEvent) (SessionState, error) {
	next, ok := transitions[s][ev]
	if !ok {
		return s, fmt.Errorf("[Transition] %s on %s: %w", ev, s, ErrInvalidTransition)
	}
	return next, nil
}

// StateOf reports the state a decoded token represents. A nil token or one
// without a user id is anonymous.
func StateOf(token *Claims) SessionState {
	if token == nil || token.ID == "" {
		return Anonymous
	}
	return Authenticated
}
