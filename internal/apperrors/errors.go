package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrDuplicateTransaction indicates a payment with an external reference that
// was already allocated, with details that differ from the original.
var ErrDuplicateTransaction = errors.New("duplicate transaction reference")

// ErrInvalidTransition indicates a lifecycle action not permitted from the loan's current state.
var ErrInvalidTransition = errors.New("invalid lifecycle transition")

// ErrLockedRecord indicates a mutation was attempted on a locked reconciliation record.
var ErrLockedRecord = errors.New("record is locked")

// ErrApprovalRequired indicates a backdated payment beyond the allowed window
// was submitted without elevated approval.
var ErrApprovalRequired = errors.New("elevated approval required")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")
