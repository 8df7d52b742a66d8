package db

import (
	"context"
	"fmt"

	"table-order/internal/xpkg/apperr"
	"table-order/internal/xpkg/models"

	"github.com/jackc/pgx/v5"
)

// History returns the status log of one order, oldest first.
func History(ctx context.Context, q Querier, orderID string) ([]models.StatusLog, error) {
	rows, err := q.Query(ctx, `
		SELECT order_id, status, changed_by, changed_at, note
		FROM order_status_log
		WHERE order_id = $1
		ORDER BY changed_at, id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query status log: %w", err)
	}
	logs, err := pgx.CollectRows(rows, pgx.RowToStructByPos[models.StatusLog])
	if err != nil {
		return nil, fmt.Errorf("scan status log: %w", err)
	}
	if len(logs) == 0 {
		return nil, fmt.Errorf("%s: %w", orderID, apperr.ErrOrderNotFound)
	}
	return logs, nil
}

func ListWorkers(ctx context.Context, q Querier) ([]models.Worker, error) {
	rows, err := q.Query(ctx, `
		SELECT name, status, orders_processed, last_seen, created_at
		FROM kitchen_workers
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query workers: %w", err)
	}
	workers, err := pgx.CollectRows(rows, pgx.RowToStructByPos[models.Worker])
	if err != nil {
		return nil, fmt.Errorf("scan workers: %w", err)
	}
	return workers, nil
}
