package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBalanceAnalysisError(t *testing.T) {
	err := fmt.Errorf("service: %w", &BalanceAnalysisError{SprintID: "s-1", Reason: ErrEmptyTeam})

	assert.ErrorIs(t, err, ErrBalanceAnalysis)
	assert.ErrorIs(t, err, ErrEmptyTeam)
	assert.NotErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "sprint 's-1'")

	var target *BalanceAnalysisError
	assert.True(t, errors.As(err, &target))
	assert.Equal(t, "s-1", target.SprintID)
}

func TestBalanceAnalysisError_NoSprint(t *testing.T) {
	err := &BalanceAnalysisError{Reason: ErrEmptyTeam}
	assert.Equal(t, "balance analysis failed: team capacity is empty", err.Error())
}

func TestUnknownAssigneeError(t *testing.T) {
	err := fmt.Errorf("analyze: %w", &UnknownAssigneeError{WorkItemID: "w-1", AssigneeID: "u-9"})

	assert.ErrorIs(t, err, ErrValidation)
	assert.NotErrorIs(t, err, ErrBalanceAnalysis)
	assert.Contains(t, err.Error(), "'u-9'")
}
