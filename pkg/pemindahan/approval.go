package pemindahan

import (
	"context"
	"time"

	"github.com/arsipku/arsipd/pkg/arsipdb/arsipmodel"
	"github.com/arsipku/arsipd/pkg/arsipdb/stor"
	"github.com/arsipku/arsipd/pkg/clog"
)

const DefaultApprovalPollInterval = 10 * time.Second

// CheckApproval returns nil only when both slots are approved. A rejected
// slot blocks regardless of the other slot.
func CheckApproval(a arsipmodel.ProcessApproval) error {
	if a.BothApproved() {
		return nil
	}
	return &ApprovalBlockedError{Approval: a}
}

type ApprovalUpdate struct {
	ProcessID int                        `json:"process_id"`
	Step      arsipmodel.Step            `json:"current_step"`
	Approval  arsipmodel.ProcessApproval `json:"approval_status"`
	Ready     bool                       `json:"ready"`
	Rejected  bool                       `json:"rejected"`
}

func approvalUpdateFor(p *arsipmodel.TransferProcess) ApprovalUpdate {
	return ApprovalUpdate{
		ProcessID: p.ID,
		Step:      p.CurrentStep,
		Approval:  p.Approval,
		Ready:     p.Approval.BothApproved(),
		Rejected:  p.Approval.AnyRejected(),
	}
}

// ApprovalWatcher polls the persisted approval status of a process that is
// waiting on its approvers.
type ApprovalWatcher struct {
	processes stor.TransferProcessStor
	interval  time.Duration
}

func NewApprovalWatcher(processes stor.TransferProcessStor, interval time.Duration) *ApprovalWatcher {
	if interval <= 0 {
		interval = DefaultApprovalPollInterval
	}

	return &ApprovalWatcher{processes: processes, interval: interval}
}

// Watch calls onUpdate with the current state and then with every change
// seen on a poll. It returns nil once both slots are approved or the process
// leaves the approval step, ctx.Err() when ctx ends, and the first error from
// the store or from onUpdate. The ticker never outlives the call.
func (w *ApprovalWatcher) Watch(ctx context.Context, processID int, onUpdate func(ApprovalUpdate) error) error {
	p, err := w.processes.GetProcessByID(processID)
	if err != nil {
		return err
	}

	last := approvalUpdateFor(p)
	if err := onUpdate(last); err != nil {
		return err
	}

	if watchFinished(last) {
		return nil
	}

	logger := clog.UsingCtx(logCtx(p))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-ticker.C:
			p, err := w.processes.GetProcessByID(processID)
			if err != nil {
				return err
			}

			current := approvalUpdateFor(p)
			logger.WithField("ready", current.Ready).Debug("approval poll")

			if current.Step == last.Step && current.Approval.Equal(last.Approval) {
				continue
			}

			if err := onUpdate(current); err != nil {
				return err
			}

			if watchFinished(current) {
				return nil
			}

			last = current
		}
	}
}

// watchFinished is false for a rejected slot; only the verification workflow
// can change it and the watch keeps reporting until it does.
func watchFinished(u ApprovalUpdate) bool {
	return u.Ready || u.Step != arsipmodel.StepAwaitApproval
}
