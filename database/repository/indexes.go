package repository

import (
	"context"
)

// EnsureIndexes creates indexes for every collection that has them.
func (r *Repos) EnsureIndexes(ctx context.Context) error {
	for _, ensure := range []func(context.Context) error{
		r.Tickets.EnsureIndexes,
		r.Cars.EnsureIndexes,
		r.Payments.EnsureIndexes,
		r.History.EnsureIndexes,
		r.Staff.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			return err
		}
	}
	return nil
}
