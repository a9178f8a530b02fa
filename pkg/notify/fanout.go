package notify

import (
	"context"
	"errors"

	"github.com/arsipku/arsipd/pkg/arsipdb/arsipmodel"
	"github.com/arsipku/arsipd/pkg/obj"
)

// Fanout sends every notification to all of its dispatchers and joins their
// errors. Nil dispatchers are skipped.
type Fanout struct {
	dispatchers []Dispatcher
}

func NewFanout(dispatchers ...Dispatcher) *Fanout {
	f := &Fanout{}
	for _, d := range dispatchers {
		if !obj.IsNil(d) {
			f.dispatchers = append(f.dispatchers, d)
		}
	}
	return f
}

func (f *Fanout) NotifyRole(ctx context.Context, role arsipmodel.Role, unitID *int, msg Message) error {
	var errs []error
	for _, d := range f.dispatchers {
		if err := d.NotifyRole(ctx, role, unitID, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *Fanout) NotifyUser(ctx context.Context, userID int, msg Message) error {
	var errs []error
	for _, d := range f.dispatchers {
		if err := d.NotifyUser(ctx, userID, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
