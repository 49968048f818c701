package rules

import "errors"

var (
	// ErrInvalidAssignee indicates a rule names a user outside the account.
	ErrInvalidAssignee = errors.New("assignee does not belong to the account")
	// ErrEmptyRoundRobinPool indicates a round-robin rule with no candidates.
	ErrEmptyRoundRobinPool = errors.New("round-robin pool is empty")
	// ErrDepartmentNotFound indicates no available member for the department.
	ErrDepartmentNotFound = errors.New("department has no available member")
	// ErrAlreadyAssigned indicates an assignment already exists for the email.
	ErrAlreadyAssigned = errors.New("email is already assigned")
	// ErrMalformedRule indicates a rule whose action shape is invalid; the
	// rule is skipped, evaluation of the remaining rules continues.
	ErrMalformedRule = errors.New("malformed rule")
	// ErrRotationStoreUnavailable indicates the rotation index could not be
	// read or advanced after a retry; only the current email is affected.
	ErrRotationStoreUnavailable = errors.New("rotation store unavailable")
)
