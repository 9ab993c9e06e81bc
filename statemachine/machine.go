package statemachine

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidTransition is returned when a state change is not in the table
var ErrInvalidTransition = errors.New("invalid transition")

// Transition defines a valid state change and who can perform it
type Transition[S ~string] struct {
	From  S      `json:"from"`
	To    S      `json:"to"`
	Actor string `json:"actor"` // "admin", "system"
}

// Machine is the authoritative transition table for one status field
type Machine[S ~string] struct {
	name        string
	transitions []Transition[S]
	allowed     map[transitionKey[S]]bool
}

type transitionKey[S ~string] struct {
	From S
	To   S
}

// New builds a machine and its lookup map for O(1) validation
func New[S ~string](name string, transitions ...Transition[S]) *Machine[S] {
	m := &Machine[S]{
		name:        name,
		transitions: transitions,
		allowed:     make(map[transitionKey[S]]bool, len(transitions)),
	}
	for _, t := range transitions {
		m.allowed[transitionKey[S]{t.From, t.To}] = true
	}
	return m
}

// Name returns the status field the machine governs
func (m *Machine[S]) Name() string {
	return m.name
}

// CanTransition checks if the table allows moving from one state to another
func (m *Machine[S]) CanTransition(from, to S) error {
	if m.allowed[transitionKey[S]{from, to}] {
		return nil
	}
	return fmt.Errorf("%w: %s %s → %s is not allowed, valid transitions from %s are: %s",
		ErrInvalidTransition, m.name, from, to, from, m.describeValidFrom(from))
}

// ValidTransitionsFrom returns all valid next states from a given state
func (m *Machine[S]) ValidTransitionsFrom(status S) []S {
	var nexts []S
	seen := map[S]bool{}
	for _, t := range m.transitions {
		if t.From == status && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

// SourcesOf returns every state that may move into the target state.
// Stores use it to build state-guarded conditional updates.
func (m *Machine[S]) SourcesOf(target S) []S {
	var froms []S
	seen := map[S]bool{}
	for _, t := range m.transitions {
		if t.To == target && !seen[t.From] {
			froms = append(froms, t.From)
			seen[t.From] = true
		}
	}
	return froms
}

// IsTerminal reports whether no transition leaves the state
func (m *Machine[S]) IsTerminal(status S) bool {
	return len(m.ValidTransitionsFrom(status)) == 0
}

// Transitions returns the full table for documentation
func (m *Machine[S]) Transitions() []Transition[S] {
	out := make([]Transition[S], len(m.transitions))
	copy(out, m.transitions)
	return out
}

func (m *Machine[S]) describeValidFrom(status S) string {
	nexts := m.ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	parts := make([]string, len(nexts))
	for i, s := range nexts {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}
