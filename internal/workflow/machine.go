// Package workflow enforces the submission status graph:
//
//	SUBMITTED    → UNDER_REVIEW
//	UNDER_REVIEW → APPROVED | REJECTED
//	APPROVED     → FILED
//	REJECTED, FILED are terminal.
package workflow

import (
	"github.com/marcnyamweya/TaxApi/internal/model"
)

// Machine is an explicit finite-state-machine value. Both CanTransition and
// AllowedNext read the same transition table, so the graph has a single
// source of truth and new states are data, not code.
type Machine struct {
	transitions map[string][]string
}

// NewMachine returns the machine for the fixed submission workflow.
func NewMachine() *Machine {
	return &Machine{
		transitions: map[string][]string{
			model.StatusSubmitted:   {model.StatusUnderReview},
			model.StatusUnderReview: {model.StatusApproved, model.StatusRejected},
			model.StatusApproved:    {model.StatusFiled},
			model.StatusRejected:    {},
			model.StatusFiled:       {},
		},
	}
}

// CanTransition reports whether from → to appears in the transition table.
func (m *Machine) CanTransition(from, to string) bool {
	for _, allowed := range m.transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// AllowedNext returns the states reachable from the given status. The result
// is a copy in a stable order; it is empty for terminal and unknown states.
func (m *Machine) AllowedNext(from string) []string {
	allowed := m.transitions[from]
	out := make([]string, len(allowed))
	copy(out, allowed)
	return out
}
