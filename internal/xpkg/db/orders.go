package db

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"table-order/internal/xpkg/apperr"
	"table-order/internal/xpkg/models"

	"github.com/jackc/pgx/v5"
)

const orderColumns = `id, table_id, user_id, total, status, payment_method, transaction_id, created_at`

func ListMenu(ctx context.Context, q Querier) ([]models.MenuItem, error) {
	rows, err := q.Query(ctx, `
		SELECT id, name, description, price, stock, category
		FROM menu_items
		ORDER BY category, created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("query menu: %w", err)
	}
	defer rows.Close()

	var menu []models.MenuItem
	for rows.Next() {
		var it models.MenuItem
		if err := rows.Scan(&it.ID, &it.Name, &it.Description, &it.Price, &it.Stock, &it.Category); err != nil {
			return nil, fmt.Errorf("scan menu item: %w", err)
		}
		menu = append(menu, it)
	}
	return menu, rows.Err()
}

// UpsertMenu inserts or replaces menu items by id.
func UpsertMenu(ctx context.Context, q Querier, items []models.MenuItem) error {
	for _, it := range items {
		_, err := q.Exec(ctx, `
			INSERT INTO menu_items (id, name, description, price, stock, category)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				description = EXCLUDED.description,
				price = EXCLUDED.price,
				stock = EXCLUDED.stock,
				category = EXCLUDED.category`,
			it.ID, it.Name, it.Description, it.Price, it.Stock, it.Category)
		if err != nil {
			return fmt.Errorf("upsert menu item %s: %w", it.ID, err)
		}
	}
	return nil
}

// LoadOrders selects orders matching where (a SQL fragment after WHERE,
// may be empty) newest first, with their items.
func LoadOrders(ctx context.Context, q Querier, where string, args ...any) ([]models.Order, error) {
	sql := `SELECT ` + orderColumns + ` FROM orders`
	if where != "" {
		sql += ` WHERE ` + where
	}
	sql += ` ORDER BY created_at DESC, id`

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("scan orders: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]string, len(orders))
	index := make(map[string]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
	}

	itemRows, err := q.Query(ctx, `
		SELECT order_id, item_id, name, qty, price, status
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position`, ids)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var (
			orderID string
			it      models.OrderItem
		)
		if err := itemRows.Scan(&orderID, &it.ItemID, &it.Name, &it.Qty, &it.Price, &it.Status); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		i := index[orderID]
		orders[i].Items = append(orders[i].Items, it)
	}
	return orders, itemRows.Err()
}

func scanOrder(row pgx.CollectableRow) (models.Order, error) {
	var o models.Order
	err := row.Scan(&o.ID, &o.TableID, &o.UserID, &o.Total, &o.Status,
		&o.Payment.Method, &o.Payment.TransactionID, &o.CreatedAt)
	return o, err
}

func GetOrder(ctx context.Context, q Querier, id string) (models.Order, error) {
	return one(LoadOrders(ctx, q, `id = $1`, id))
}

func GetOrderByTransaction(ctx context.Context, q Querier, txID string) (models.Order, error) {
	return one(LoadOrders(ctx, q, `transaction_id = $1`, txID))
}

func one(orders []models.Order, err error) (models.Order, error) {
	if err != nil {
		return models.Order{}, err
	}
	if len(orders) == 0 {
		return models.Order{}, apperr.ErrOrderNotFound
	}
	return orders[0], nil
}

// Snapshot reads the menu and every order in one consistent view.
func (db *DB) Snapshot(ctx context.Context) (models.Snapshot, error) {
	var snap models.Snapshot
	err := db.InTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}, func(tx pgx.Tx) error {
		menu, err := ListMenu(ctx, tx)
		if err != nil {
			return err
		}
		orders, err := LoadOrders(ctx, tx, "")
		if err != nil {
			return err
		}
		snap = models.Snapshot{Menu: menu, Orders: orders, TakenAt: time.Now()}
		return nil
	})
	return snap, err
}

// UpdateOrderStatus moves an order to status to when its current status is
// one of from (any status when from is empty) and logs the change. Setting
// the status it already has is a no-op.
func (db *DB) UpdateOrderStatus(ctx context.Context, id string, to models.OrderStatus, changedBy string, from ...models.OrderStatus) (models.Order, error) {
	var order models.Order
	err := db.InTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		var current models.OrderStatus
		err := tx.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, id).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.ErrOrderNotFound
		}
		if err != nil {
			return fmt.Errorf("lock order: %w", err)
		}

		if len(from) > 0 && !slices.Contains(from, current) {
			return fmt.Errorf("order %s is %s: %w", id, current, apperr.ErrStatusConflict)
		}

		if current != to {
			if _, err := tx.Exec(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, id, to); err != nil {
				return fmt.Errorf("update order status: %w", err)
			}
			if err := InsertStatusLog(ctx, tx, models.StatusLog{OrderID: id, Status: to, ChangedBy: changedBy, ChangedAt: time.Now()}); err != nil {
				return err
			}
		}

		order, err = GetOrder(ctx, tx, id)
		return err
	})
	return order, err
}

func InsertStatusLog(ctx context.Context, q Querier, l models.StatusLog) error {
	_, err := q.Exec(ctx, `
		INSERT INTO order_status_log (order_id, status, changed_by, changed_at, note)
		VALUES ($1, $2, $3, $4, $5)`,
		l.OrderID, l.Status, l.ChangedBy, l.ChangedAt, l.Note)
	if err != nil {
		return fmt.Errorf("insert status log: %w", err)
	}
	return nil
}
