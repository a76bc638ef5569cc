package audit

import (
	"context"
	"database/sql"
	"fmt"

	"atelier/internal/domain"
)

// MySQLLogRepository stores order logs. Entries are only ever inserted.
type MySQLLogRepository struct {
	db *sql.DB
}

func NewMySQLLogRepository(db *sql.DB) *MySQLLogRepository {
	return &MySQLLogRepository{db: db}
}

func (r *MySQLLogRepository) Insert(ctx context.Context, entry domain.OrderLog) error {
	query := `
		INSERT INTO OrderLogs (id, orderId, actorId, actorName, action, fieldChanged,
		                       oldValue, newValue, description, createdAt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.OrderID, entry.ActorID, entry.ActorName, entry.Action, entry.FieldChanged,
		entry.OldValue, entry.NewValue, entry.Description, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting order log: %w", err)
	}

	return nil
}

// ListByOrder returns the trail of an order, most recent first.
func (r *MySQLLogRepository) ListByOrder(ctx context.Context, orderID string) ([]domain.OrderLog, error) {
	query := `
		SELECT id, orderId, actorId, actorName, action, fieldChanged,
		       oldValue, newValue, description, createdAt
		FROM OrderLogs
		WHERE orderId = ?
		ORDER BY createdAt DESC, seq DESC
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("querying order logs: %w", err)
	}
	defer rows.Close()

	logs := []domain.OrderLog{}
	for rows.Next() {
		var entry domain.OrderLog
		if err := rows.Scan(
			&entry.ID, &entry.OrderID, &entry.ActorID, &entry.ActorName, &entry.Action, &entry.FieldChanged,
			&entry.OldValue, &entry.NewValue, &entry.Description, &entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning order log: %w", err)
		}
		logs = append(logs, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order logs: %w", err)
	}

	return logs, nil
}
