// Package convo owns the live conversation held with the model backend:
// the system-prompt prefix fixed at INIT and the turn history that grows
// across rounds and resets at each epoch boundary.
package convo

import "github.com/snow-ghost/advisor/core"

// State holds the init prefix and the live turns. Turns always begin with
// a copy of the prefix (or are empty before INIT); resetting replaces them
// with a fresh copy, so later appends never reach back into the prefix.
// The state is exclusively owned by the dispatcher goroutine.
type State struct {
	prefix []core.DialogTurn
	turns  []core.DialogTurn
}

// NewState creates an empty conversation, awaiting INIT.
func NewState() *State {
	return &State{}
}

// SetPrefix installs the init prefix and restarts the turns from it.
func (s *State) SetPrefix(prefix []core.DialogTurn) {
	s.prefix = cloneTurns(prefix)
	s.turns = cloneTurns(prefix)
}

// Reset replaces the turns with a fresh copy of the prefix.
func (s *State) Reset() {
	s.turns = cloneTurns(s.prefix)
}

// Append adds one turn to the live history.
func (s *State) Append(role core.Role, content string) {
	s.turns = append(s.turns, core.DialogTurn{Role: role, Content: content})
}

// Turns returns a copy of the live history in arrival order.
func (s *State) Turns() []core.DialogTurn {
	return cloneTurns(s.turns)
}

// Prefix returns a copy of the init prefix.
func (s *State) Prefix() []core.DialogTurn {
	return cloneTurns(s.prefix)
}

// Len reports the number of live turns.
func (s *State) Len() int {
	return len(s.turns)
}

func cloneTurns(turns []core.DialogTurn) []core.DialogTurn {
	if turns == nil {
		return nil
	}
	out := make([]core.DialogTurn, len(turns))
	copy(out, turns)
	return out
}
