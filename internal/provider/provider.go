package provider

import (
	"context"
	"time"
)

// Alert is a new mail notification forwarded to the user's webhook.
type Alert struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	NotificationID int64     `json:"notificationId"`
	CompanyID      *int64    `json:"companyId,omitempty"`
	CompanyName    string    `json:"companyName,omitempty"`
	Message        string    `json:"message"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Provider is the outbound alert delivery port.
type Provider interface {
	Send(ctx context.Context, alert Alert) (*ProviderResponse, error)
}

// ProviderResponse is what the webhook answered, kept for logging.
type ProviderResponse struct {
	StatusCode int
	Body       string
	RequestID  string
}
