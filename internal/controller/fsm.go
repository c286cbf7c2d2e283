// Package controller drives one pipeline (RX or TX) through its lifecycle:
// Idle -> Opened -> Running -> Opened -> Closed, via a small
// Transition(state, event) (state, error) state machine.
package controller

import "fmt"

// State is one lifecycle state for a pipeline.
type State string

// Event is one transition trigger consumed by the state machine.
type Event string

const (
	StateIdle State = "idle"
	StateOpened State = "opened"
	StateRunning State = "running"
	StateClosed State = "closed"
)

const (
	EventOpen Event = "open"
	EventStart Event = "start"
	EventStop Event = "stop"
	EventClose Event = "close"
)

// Transition validates and applies one state transition.
func Transition(current State, event Event) (State, error) {
	switch current {
	case StateIdle:
		switch event {
		case EventOpen:
			return StateOpened, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateOpened:
		switch event {
		case EventStart:
			return StateRunning, nil
		case EventClose:
			return StateClosed, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateRunning:
		switch event {
		case EventStop:
			return StateOpened, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateClosed:
		return current, invalidTransition(current, event)
	default:
		return current, fmt.Errorf("controller: unknown state %q", current)
	}
}

func invalidTransition(state State, event Event) error {
	return fmt.Errorf("controller: invalid transition: %s --(%s)--> ?", state, event)
}
