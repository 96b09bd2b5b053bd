package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("resource not found")

	ErrInvalidRequest   = errors.New("invalid request body")
	ErrInvalidParameter = errors.New("invalid path parameter")
	ErrValidation       = errors.New("validation failed")

	ErrBalanceAnalysis = errors.New("balance analysis failed")
	ErrEmptyTeam       = errors.New("team capacity is empty")
)

// BalanceAnalysisError reports a domain-level failure while analyzing a
// sprint. It matches ErrBalanceAnalysis and its Reason through errors.Is.
type BalanceAnalysisError struct {
	SprintID string
	Reason   error
}

func (e *BalanceAnalysisError) Error() string {
	if e.SprintID == "" {
		return fmt.Sprintf("balance analysis failed: %v", e.Reason)
	}

	return fmt.Sprintf("balance analysis failed for sprint '%s': %v", e.SprintID, e.Reason)
}

func (e *BalanceAnalysisError) Is(target error) bool { return target == ErrBalanceAnalysis }

func (e *BalanceAnalysisError) Unwrap() error { return e.Reason }

// UnknownAssigneeError reports a work item assigned to someone outside the
// analyzed team. It matches ErrValidation.
type UnknownAssigneeError struct {
	WorkItemID string
	AssigneeID string
}

func (e *UnknownAssigneeError) Error() string {
	return fmt.Sprintf("work item '%s' is assigned to '%s' who is not a member of the team",
		e.WorkItemID, e.AssigneeID)
}

func (e *UnknownAssigneeError) Is(target error) bool { return target == ErrValidation }
