package workflow

import (
	"encoding/json"
	"slices"

	"onboarding/internal/onboarding/models"
)

// Stack is the traversal history of a session: every position left by a
// successful forward transition, most recent last.
type Stack struct {
	items []models.Position
}

// NewStack restores a stack from its positions, oldest first.
func NewStack(positions ...models.Position) Stack {
	return Stack{items: slices.Clone(positions)}
}

func (s *Stack) Push(p models.Position) {
	s.items = append(s.items, p)
}

// Pop removes and returns the most recently pushed position.
func (s *Stack) Pop() (models.Position, bool) {
	if len(s.items) == 0 {
		return models.Position{}, false
	}
	top := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return top, true
}

func (s Stack) Peek() (models.Position, bool) {
	if len(s.items) == 0 {
		return models.Position{}, false
	}
	return s.items[len(s.items)-1], true
}

func (s Stack) Len() int { return len(s.items) }

// Positions returns the history, oldest first.
func (s Stack) Positions() []models.Position {
	return slices.Clone(s.items)
}

func (s Stack) MarshalJSON() ([]byte, error) {
	if s.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.items)
}

func (s *Stack) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &s.items)
}
