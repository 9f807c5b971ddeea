package entity

import (
	"errors"
	"fmt"
)

// Scheduling core failures. All of them are expected outcomes and are
// surfaced to callers as-is.
var (
	ErrNotAssociated     = errors.New("doctor is not associated with this hospital")
	ErrInvalidFee        = errors.New("consultation fee must be a positive amount with at most two decimal places")
	ErrSlotConflict      = errors.New("doctor already has a slot at this date and time")
	ErrSlotUnavailable   = errors.New("this time is no longer available, please choose another")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrAlreadyAllocated  = errors.New("revenue already allocated for this booking")
	ErrUnauthorized      = errors.New("not allowed to perform this operation")
)

var (
	ErrHospitalNotFound    = errors.New("hospital not found")
	ErrDepartmentNotFound  = errors.New("department not found")
	ErrSlotNotFound        = errors.New("slot not found")
	ErrBookingNotFound     = errors.New("booking not found")
	ErrDuplicateDepartment = errors.New("department already exists in this hospital")
	ErrHospitalInUse       = errors.New("hospital still has doctor associations")
	ErrInvalidDate         = errors.New("invalid date format, use YYYY-MM-DD")
	ErrInvalidTime         = errors.New("invalid time format, use HH:MM")
	ErrInvalidDateRange    = errors.New("invalid date range")
	ErrSlotInPast          = errors.New("cannot open a slot in the past")
	ErrInvalidRates        = errors.New("revenue rates must be within [0,1], have at most four decimal places and sum to at most 1")
	ErrProfileNotFound     = errors.New("profile not found")
)

// ErrConcurrentUpdate reports a storage-level conflict: the observed state
// changed underneath the caller. The core retries it a bounded number of
// times and returns it once retries run out; the delivery layer answers 409.
var ErrConcurrentUpdate = errors.New("concurrent update")

// TransitionError describes a rejected state machine move.
type TransitionError struct {
	From SlotStatus
	To   SlotStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid status transition: %s -> %s", e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}
