package notification

import (
	"context"
	"database/sql"
	"fmt"

	"atelier/internal/domain"
	"atelier/internal/errors"
)

type MySQLRepository struct {
	db *sql.DB
}

func NewMySQLRepository(db *sql.DB) *MySQLRepository {
	return &MySQLRepository{db: db}
}

func (r *MySQLRepository) FindCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	query := `
		SELECT id, name, email, emailNotifications
		FROM Users
		WHERE id = ?
	`

	var (
		customer domain.Customer
		email    sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&customer.ID, &customer.Name, &email, &customer.EmailNotifications,
	)

	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("customer with id %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying customer by id: %w", err)
	}

	customer.Email = email.String
	return &customer, nil
}

func (r *MySQLRepository) InsertNotification(ctx context.Context, n domain.Notification) error {
	query := `
		INSERT INTO Notifications (id, orderId, userId, title, message, type, isRead, createdAt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		n.ID, n.OrderID, n.UserID, n.Title, n.Message, n.Type, n.IsRead, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting notification: %w", err)
	}

	return nil
}

func (r *MySQLRepository) InsertAdminNotification(ctx context.Context, n domain.AdminNotification) error {
	query := `
		INSERT INTO AdminNotifications (id, orderId, recipientRole, title, message, type, createdAt)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		n.ID, n.OrderID, string(n.RecipientRole), n.Title, n.Message, n.Type, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting admin notification: %w", err)
	}

	return nil
}
