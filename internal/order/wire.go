package order

import (
	"database/sql"

	"atelier/internal/audit"
	"atelier/internal/config"
	"atelier/internal/notification"
	"atelier/internal/order/controller"
	orderrepo "atelier/internal/order/repository"
	"atelier/internal/order/usecase"

	"go.uber.org/zap"
)

func NewModule(db *sql.DB, cfg *config.Config, logger *zap.Logger, sender notification.EmailSender) *controller.OrderController {
	orderRepo := orderrepo.NewMySQLOrderRepository(db)
	logRepo := audit.NewMySQLLogRepository(db)
	notificationRepo := notification.NewMySQLRepository(db)

	auditWriter := audit.NewWriter(logRepo, logger)
	dispatcher := notification.NewDispatcher(notificationRepo, sender, logger)

	maxRetryAttempts := cfg.Order.MaxRetryAttempts

	return controller.NewOrderController(
		usecase.NewStatusUseCase(orderRepo, auditWriter, dispatcher, logger, maxRetryAttempts),
		usecase.NewTermsUseCase(orderRepo, auditWriter, dispatcher, logger, maxRetryAttempts),
		usecase.NewContractUseCase(orderRepo, auditWriter, dispatcher, logger, maxRetryAttempts),
		usecase.NewQueryUseCase(orderRepo, auditWriter, logger),
		logger,
	)
}
