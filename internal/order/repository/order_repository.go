package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"atelier/internal/domain"
	"atelier/internal/errors"

	"github.com/shopspring/decimal"
)

const orderColumns = `
	id, customerId, status, totalPrice, deadline, trackingLink,
	salesAdminSigned, salesAdminSignedDate, salesAdminSignature, salesAdminContractData,
	contractSigned, contractSignedDate, contractData,
	requiresContractAmendment, amendmentReason, amendmentDetails,
	amendmentRequestedDate, lastAmendmentDate, createdAt, updatedAt`

type MySQLOrderRepository struct {
	db *sql.DB
}

func NewMySQLOrderRepository(db *sql.DB) *MySQLOrderRepository {
	return &MySQLOrderRepository{db: db}
}

func (r *MySQLOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM Orders WHERE id = ?`

	var (
		order             domain.Order
		status            string
		staffContractData []byte
		contractData      []byte
		amendmentReason   sql.NullString
		amendmentDetails  []byte
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&order.ID, &order.CustomerID, &status, &order.TotalPrice, &order.Deadline, &order.TrackingLink,
		&order.SalesAdminSigned, &order.SalesAdminSignedDate, &order.SalesAdminSignature, &staffContractData,
		&order.ContractSigned, &order.ContractSignedDate, &contractData,
		&order.RequiresContractAmendment, &amendmentReason, &amendmentDetails,
		&order.AmendmentRequestedDate, &order.LastAmendmentDate, &order.CreatedAt, &order.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("order with id %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying order by id: %w", err)
	}

	order.Status = domain.OrderStatus(status)
	order.AmendmentReason = domain.AmendmentReason(amendmentReason.String)
	if len(staffContractData) > 0 {
		order.SalesAdminContractData = json.RawMessage(staffContractData)
	}
	if len(contractData) > 0 {
		order.ContractData = json.RawMessage(contractData)
	}
	if len(amendmentDetails) > 0 {
		var details domain.AmendmentDetails
		if err := json.Unmarshal(amendmentDetails, &details); err != nil {
			return nil, fmt.Errorf("decoding amendment details: %w", err)
		}
		order.AmendmentDetails = &details
	}

	return &order, nil
}

// Create inserts a new order. Orders always start unsigned.
func (r *MySQLOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO Orders (id, customerId, status, totalPrice, deadline, trackingLink, createdAt, updatedAt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		order.ID, order.CustomerID, string(order.Status), order.TotalPrice, order.Deadline,
		order.TrackingLink, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting order: %w", err)
	}

	return nil
}

// UpdateStatus sets the status. A nil trackingLink leaves the stored one untouched.
func (r *MySQLOrderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, trackingLink *string, now time.Time) error {
	query := `UPDATE Orders SET status = ?, trackingLink = COALESCE(?, trackingLink), updatedAt = ? WHERE id = ?`

	return r.exec(ctx, "updating order status", id, query, string(status), trackingLink, now, id)
}

func (r *MySQLOrderRepository) UpdatePrice(ctx context.Context, id string, price decimal.Decimal, amendment domain.AmendmentDecision, now time.Time) error {
	return r.updateTerm(ctx, "updating order price", id, "totalPrice", price, amendment, now)
}

func (r *MySQLOrderRepository) UpdateDeadline(ctx context.Context, id string, deadline time.Time, amendment domain.AmendmentDecision, now time.Time) error {
	return r.updateTerm(ctx, "updating order deadline", id, "deadline", deadline, amendment, now)
}

// updateTerm writes a single contract term and, when required, the amendment
// request that goes with it. column is always a constant from this file.
func (r *MySQLOrderRepository) updateTerm(ctx context.Context, op, id, column string, value any, amendment domain.AmendmentDecision, now time.Time) error {
	if !amendment.Required {
		query := fmt.Sprintf(`UPDATE Orders SET %s = ?, updatedAt = ? WHERE id = ?`, column)
		return r.exec(ctx, op, id, query, value, now, id)
	}

	details, err := json.Marshal(amendment.Details)
	if err != nil {
		return fmt.Errorf("encoding amendment details: %w", err)
	}

	query := fmt.Sprintf(`
		UPDATE Orders
		SET %s = ?, requiresContractAmendment = 1, amendmentReason = ?, amendmentDetails = ?,
		    amendmentRequestedDate = ?, updatedAt = ?
		WHERE id = ?
	`, column)

	return r.exec(ctx, op, id, query, value, string(amendment.Reason), details, now, now, id)
}

// UpdateStaffSignature stores the staff signature and contract baseline,
// opening an amendment request when the decision requires one.
func (r *MySQLOrderRepository) UpdateStaffSignature(ctx context.Context, id, signature string, snapshot json.RawMessage, amendment domain.AmendmentDecision, now time.Time) error {
	if !amendment.Required {
		query := `
			UPDATE Orders
			SET salesAdminSigned = 1, salesAdminSignature = ?, salesAdminContractData = ?,
			    salesAdminSignedDate = ?, updatedAt = ?
			WHERE id = ?
		`
		return r.exec(ctx, "updating staff signature", id, query, signature, nullJSON(snapshot), now, now, id)
	}

	details, err := json.Marshal(amendment.Details)
	if err != nil {
		return fmt.Errorf("encoding amendment details: %w", err)
	}

	query := `
		UPDATE Orders
		SET salesAdminSigned = 1, salesAdminSignature = ?, salesAdminContractData = ?,
		    salesAdminSignedDate = ?, requiresContractAmendment = 1, amendmentReason = ?,
		    amendmentDetails = ?, amendmentRequestedDate = ?, updatedAt = ?
		WHERE id = ?
	`
	return r.exec(ctx, "updating staff signature", id, query,
		signature, nullJSON(snapshot), now, string(amendment.Reason), details, now, now, id,
	)
}

// UpdateCustomerSignature records the customer signature. Status is only
// written when promoteTo is set, and only while the row is still in
// CONTRACT_SIGNING, so a concurrent status change is never reverted.
// Resolving an amendment clears the request and stamps lastAmendmentDate.
func (r *MySQLOrderRepository) UpdateCustomerSignature(ctx context.Context, id string, snapshot json.RawMessage, promoteTo *domain.OrderStatus, resolvesAmendment bool, now time.Time) error {
	set := []string{"contractSigned = 1", "contractSignedDate = ?", "contractData = ?"}
	args := []any{now, nullJSON(snapshot)}

	if promoteTo != nil {
		set = append(set, "status = CASE WHEN status = ? THEN ? ELSE status END")
		args = append(args, string(domain.OrderStatusContractSigning), string(*promoteTo))
	}
	if resolvesAmendment {
		set = append(set, "requiresContractAmendment = 0", "amendmentReason = NULL", "lastAmendmentDate = ?")
		args = append(args, now)
	}

	set = append(set, "updatedAt = ?")
	args = append(args, now, id)

	query := "UPDATE Orders SET " + strings.Join(set, ", ") + " WHERE id = ?"
	return r.exec(ctx, "updating customer signature", id, query, args...)
}

func (r *MySQLOrderRepository) exec(ctx context.Context, op, id, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("order with id %s not found", id))
	}

	return nil
}

func nullJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
