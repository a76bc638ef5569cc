package domain

import "time"

const (
	NotificationTypeStatusUpdate      = "status_update"
	NotificationTypePriceUpdate       = "price_update"
	NotificationTypeDeadlineUpdate    = "deadline_update"
	NotificationTypeContractReady     = "contract_ready"
	NotificationTypeContractSigned    = "contract_signed"
	NotificationTypeAmendmentRequired = "amendment_required"
	NotificationTypeOrderCancelled    = "order_cancelled"
)

// Notification is an in-app message shown to a customer.
type Notification struct {
	ID        string
	OrderID   string
	UserID    string
	Title     string
	Message   string
	Type      string
	IsRead    bool
	CreatedAt time.Time
}

// AdminNotification is an in-app message shown to one or all staff roles.
type AdminNotification struct {
	ID            string
	OrderID       string
	RecipientRole Role
	Title         string
	Message       string
	Type          string
	CreatedAt     time.Time
}

type Customer struct {
	ID                 string
	Name               string
	Email              string
	EmailNotifications bool
}

// Email is the payload handed to the email delivery collaborator.
type Email struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}
