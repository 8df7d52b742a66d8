package db

import (
	"context"

	xdb "table-order/internal/xpkg/db"
	"table-order/internal/xpkg/models"
)

type SnapshotRepo struct {
	db *xdb.DB
}

func NewSnapshotRepo(db *xdb.DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

func (sr *SnapshotRepo) Snapshot(ctx context.Context) (models.Snapshot, error) {
	return sr.db.Snapshot(ctx)
}
