package statemachine

import (
	"errors"
	"fmt"

	"table-order-api/models"
)

// ErrInvalidTransition is returned when a requested status is not
// forward-reachable from the current one. Backward moves are never legal.
var ErrInvalidTransition = errors.New("invalid transition")

// Transition defines a valid forward edge in the order lifecycle
type Transition struct {
	From models.OrderStatus
	To   models.OrderStatus
}

// validTransitions is the authoritative state machine definition.
// pending → served is a deliberate skip-forward: kitchens mark small
// orders served without ever flagging them cooking.
var validTransitions = []Transition{
	{From: models.StatusPending, To: models.StatusCooking},
	{From: models.StatusPending, To: models.StatusServed},
	{From: models.StatusCooking, To: models.StatusServed},
	{From: models.StatusServed, To: models.StatusCompleted},
}

type transitionKey struct {
	From models.OrderStatus
	To   models.OrderStatus
}

// Build a lookup map for O(1) validation
var transitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool)
	for _, t := range validTransitions {
		m[transitionKey{t.From, t.To}] = true
	}
	return m
}()

// IsStatus reports whether s is one of the defined order states.
func IsStatus(s models.OrderStatus) bool {
	switch s {
	case models.StatusPending, models.StatusCooking, models.StatusServed, models.StatusCompleted:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition leaves s.
func IsTerminal(s models.OrderStatus) bool {
	return len(ValidTransitionsFrom(s)) == 0
}

// ValidTransitionsFrom returns all valid next states from a given state
func ValidTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	var nexts []models.OrderStatus
	for _, t := range validTransitions {
		if t.From == status {
			nexts = append(nexts, t.To)
		}
	}
	return nexts
}

// CanTransition checks whether an order may move from one state to
// another. The returned error wraps ErrInvalidTransition and names the
// valid next states for the caller's response body.
func CanTransition(from, to models.OrderStatus) error {
	if !IsStatus(to) {
		return fmt.Errorf("%w: %q is not an order status", ErrInvalidTransition, to)
	}
	if transitionMap[transitionKey{From: from, To: to}] {
		return nil
	}
	return fmt.Errorf("%w: %s → %s is not allowed; valid transitions from %s are: %s",
		ErrInvalidTransition, from, to, from, describeValidFrom(from))
}

func describeValidFrom(status models.OrderStatus) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	result := ""
	for i, s := range nexts {
		if i > 0 {
			result += ", "
		}
		result += string(s)
	}
	return result
}

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	return validTransitions
}
