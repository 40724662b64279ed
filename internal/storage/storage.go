package storage

import (
	"context"
	"errors"

	"ignitionAdapters/internal/model"
)

// Storage defines a sink for bin snapshots.
type Storage interface {
	PutSnapshotBatch(ctx context.Context, snapshots []model.BinSnapshot) error
}

// Multi fans a batch out to several sinks in order.
type Multi []Storage

// PutSnapshotBatch writes to every sink and joins their errors.
func (m Multi) PutSnapshotBatch(ctx context.Context, snapshots []model.BinSnapshot) error {
	var errs []error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.PutSnapshotBatch(ctx, snapshots); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
