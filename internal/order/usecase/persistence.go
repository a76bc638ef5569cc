package usecase

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"atelier/internal/domain"
	apperrors "atelier/internal/errors"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

// orderStore is shared by the use cases: it loads orders, runs the single
// persisting statement of an operation with deadlock retry, and enforces
// actor roles.
type orderStore struct {
	repo             OrderRepository
	logger           *zap.Logger
	maxRetryAttempts int
	now              func() time.Time
	sleep            func(time.Duration)
}

func newOrderStore(repo OrderRepository, logger *zap.Logger, maxRetryAttempts int) orderStore {
	if maxRetryAttempts < 1 {
		maxRetryAttempts = 1
	}
	return orderStore{
		repo:             repo,
		logger:           logger,
		maxRetryAttempts: maxRetryAttempts,
		now:              time.Now,
		sleep:            time.Sleep,
	}
}

func (s *orderStore) load(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			return nil, apperrors.NewNotFoundError("order not found")
		}
		return nil, apperrors.NewPersistenceError("failed to load order", err)
	}
	return order, nil
}

// persist runs write, retrying MySQL deadlocks and lock wait timeouts.
func (s *orderStore) persist(ctx context.Context, orderID, op string, write func() error) error {
	// Backoff intervals: attempt 1 (0ms), attempt 2 (100ms), attempt 3 (200ms), etc.
	backoffs := []time.Duration{0, 100 * time.Millisecond, 200 * time.Millisecond}

	var err error
	for attempt := 1; attempt <= s.maxRetryAttempts; attempt++ {
		err = write()
		if err == nil {
			return nil
		}

		if _, ok := apperrors.IsNotFoundError(err); ok {
			return apperrors.NewNotFoundError("order not found")
		}

		if !isDeadlockError(err) {
			break
		}

		if attempt < s.maxRetryAttempts {
			base := backoffs[min(attempt, len(backoffs)-1)]
			// jitter: ±20% of backoff base
			jitter := time.Duration(float64(base) * (rand.Float64()*0.4 - 0.2))
			s.logger.Warn("deadlock detected, retrying",
				zap.String("orderId", orderID),
				zap.String("operation", op),
				zap.Int("attempt", attempt),
				zap.Int("maxAttempts", s.maxRetryAttempts),
			)
			s.sleep(base + jitter)
		}
	}

	s.logger.Error("failed to persist order", zap.String("orderId", orderID), zap.String("operation", op), zap.Error(err))
	return apperrors.NewPersistenceError("failed to "+op, err)
}

func isDeadlockError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1213 || mysqlErr.Number == 1205
	}
	return false
}

// requireStaff allows system (nil actor) and staff roles.
func requireStaff(actor *domain.Actor) error {
	if actor == nil || actor.IsStaff() {
		return nil
	}
	return apperrors.NewForbiddenError("operation restricted to staff")
}

// requireOwner allows system (nil actor) and the customer owning the order.
func requireOwner(actor *domain.Actor, order *domain.Order) error {
	if actor == nil {
		return nil
	}
	if actor.Role == domain.RoleCustomer && actor.ID == order.CustomerID {
		return nil
	}
	return apperrors.NewForbiddenError("only the customer who placed the order can sign it")
}

func optionalString(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
