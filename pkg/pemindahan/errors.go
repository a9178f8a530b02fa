package pemindahan

import (
	"errors"
	"fmt"
	"strings"

	"github.com/arsipku/arsipd/pkg/arsipdb/arsipmodel"
)

var (
	ErrNotOwner         = errors.New("transfer process belongs to another user")
	ErrProcessCompleted = errors.New("transfer process is completed")
)

// ValidationError is a user fixable problem at a step boundary. RecordID is
// zero for process level fields.
type ValidationError struct {
	Field    string `json:"field"`
	RecordID int    `json:"record_id,omitempty"`
	Message  string `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.RecordID != 0 {
		return fmt.Sprintf("arsip %d: %s %s", e.RecordID, e.Field, e.Message)
	}
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

func required(field string, recordID int) *ValidationError {
	return &ValidationError{Field: field, RecordID: recordID, Message: "is required"}
}

// ConcurrencyError covers a memo number taken by another transfer and
// selected records that vanished since they were chosen.
type ConcurrencyError struct {
	Message string
	Err     error
}

func (e *ConcurrencyError) Error() string {
	return e.Message
}

func (e *ConcurrencyError) Unwrap() error {
	return e.Err
}

// ApprovalBlockedError means the process is waiting on its approvers. When a
// slot is rejected the wait can only be ended outside the transfer workflow.
type ApprovalBlockedError struct {
	Approval arsipmodel.ProcessApproval
}

func (e *ApprovalBlockedError) Rejected() []arsipmodel.ApprovalSlotName {
	return e.slotsIn(arsipmodel.StateRejected)
}

func (e *ApprovalBlockedError) Pending() []arsipmodel.ApprovalSlotName {
	return e.slotsIn(arsipmodel.StatePending)
}

func (e *ApprovalBlockedError) slotsIn(state arsipmodel.ApprovalState) []arsipmodel.ApprovalSlotName {
	var slots []arsipmodel.ApprovalSlotName
	for _, name := range []arsipmodel.ApprovalSlotName{arsipmodel.SlotDepartmentHead, arsipmodel.SlotSecretary} {
		if e.Approval.Slot(name).Status == state {
			slots = append(slots, name)
		}
	}
	return slots
}

func (e *ApprovalBlockedError) Error() string {
	if rejected := e.Rejected(); len(rejected) != 0 {
		return fmt.Sprintf("transfer rejected by %s", joinSlots(rejected))
	}
	return fmt.Sprintf("waiting for approval from %s", joinSlots(e.Pending()))
}

func joinSlots(slots []arsipmodel.ApprovalSlotName) string {
	names := make([]string, 0, len(slots))
	for _, s := range slots {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}

// ExecutionError is a migration failure after the memo was secured. The
// message is also persisted on the process.
type ExecutionError struct {
	ProcessID int
	Err       error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("migration of transfer process %d failed: %s", e.ProcessID, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

func IsConcurrency(err error) bool {
	var e *ConcurrencyError
	return errors.As(err, &e)
}

func IsApprovalBlocked(err error) bool {
	var e *ApprovalBlockedError
	return errors.As(err, &e)
}

func IsExecution(err error) bool {
	var e *ExecutionError
	return errors.As(err, &e)
}

// ValidationErrors flattens err (possibly built with errors.Join) into its
// validation failures.
func ValidationErrors(err error) []*ValidationError {
	var found []*ValidationError

	var walk func(error)
	walk = func(err error) {
		switch e := err.(type) {
		case nil:
		case *ValidationError:
			found = append(found, e)
		case interface{ Unwrap() []error }:
			for _, inner := range e.Unwrap() {
				walk(inner)
			}
		case interface{ Unwrap() error }:
			walk(e.Unwrap())
		}
	}
	walk(err)

	return found
}

func joinValidation(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}
