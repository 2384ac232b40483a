package workflow

import (
	"testing"

	"github.com/marcnyamweya/TaxApi/internal/model"

	"github.com/stretchr/testify/assert"
)

var allStatuses = []string{
	model.StatusSubmitted,
	model.StatusUnderReview,
	model.StatusApproved,
	model.StatusRejected,
	model.StatusFiled,
}

func TestCanTransition_MatchesTableExactly(t *testing.T) {
	machine := NewMachine()

	legal := map[[2]string]bool{
		{model.StatusSubmitted, model.StatusUnderReview}: true,
		{model.StatusUnderReview, model.StatusApproved}:  true,
		{model.StatusUnderReview, model.StatusRejected}:  true,
		{model.StatusApproved, model.StatusFiled}:        true,
	}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			want := legal[[2]string{from, to}]
			assert.Equal(t, want, machine.CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestAllowedNext(t *testing.T) {
	machine := NewMachine()

	assert.Equal(t, []string{model.StatusUnderReview}, machine.AllowedNext(model.StatusSubmitted))
	assert.Equal(t, []string{model.StatusApproved, model.StatusRejected}, machine.AllowedNext(model.StatusUnderReview))
	assert.Equal(t, []string{model.StatusFiled}, machine.AllowedNext(model.StatusApproved))
}

func TestTerminalStatesHaveNoExits(t *testing.T) {
	machine := NewMachine()

	assert.Empty(t, machine.AllowedNext(model.StatusRejected))
	assert.Empty(t, machine.AllowedNext(model.StatusFiled))
}

func TestUnknownStatus(t *testing.T) {
	machine := NewMachine()

	assert.False(t, machine.CanTransition("DRAFT", model.StatusSubmitted))
	assert.Empty(t, machine.AllowedNext("DRAFT"))
}

// AllowedNext hands out a copy; mutating it must not corrupt the table.
func TestAllowedNextReturnsCopy(t *testing.T) {
	machine := NewMachine()

	next := machine.AllowedNext(model.StatusUnderReview)
	next[0] = "CORRUPTED"

	assert.True(t, machine.CanTransition(model.StatusUnderReview, model.StatusApproved))
}
