package workflows

import "fmt"

// StateMachine enforces transitions between a fixed set of states and
// tracks the current one
type StateMachine[S comparable] struct {
	current            S
	allowedTransitions map[S][]S
}

// NewStateMachine creates a new state machine starting at initial with the
// given allowed transitions
func NewStateMachine[S comparable](initial S, transitions map[S][]S) *StateMachine[S] {
	return &StateMachine[S]{
		current:            initial,
		allowedTransitions: transitions,
	}
}

// Current returns the current state
func (sm *StateMachine[S]) Current() S {
	return sm.current
}

// CanTransition checks if a transition is allowed
func (sm *StateMachine[S]) CanTransition(from, to S) bool {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return false
	}
	for _, allowedTo := range allowed {
		if allowedTo == to {
			return true
		}
	}
	return false
}

// GetAllowedTransitions returns the allowed next states for a given state
func (sm *StateMachine[S]) GetAllowedTransitions(from S) []S {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return []S{}
	}
	return allowed
}

// Transition moves to the given state if the move is allowed
func (sm *StateMachine[S]) Transition(to S) error {
	if !sm.CanTransition(sm.current, to) {
		return fmt.Errorf("invalid transition from %v to %v", sm.current, to)
	}
	sm.current = to
	return nil
}

// IsTerminal reports whether the current state has no outgoing transitions
func (sm *StateMachine[S]) IsTerminal() bool {
	return len(sm.allowedTransitions[sm.current]) == 0
}
