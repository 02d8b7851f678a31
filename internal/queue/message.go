package queue

import (
	"fmt"
	"strings"
	"time"

	"github.com/kursadbilgin/applytrack/internal/domain"
)

// AlertMessage is the broker payload for relaying a new mail notification.
type AlertMessage struct {
	MessageID      string          `json:"messageId"`
	ScanID         string          `json:"scanId,omitempty"`
	UserID         string          `json:"userId"`
	NotificationID int64           `json:"notificationId"`
	CompanyID      *int64          `json:"companyId,omitempty"`
	CompanyName    string          `json:"companyName,omitempty"`
	Priority       domain.Priority `json:"priority,omitempty"`
	Message        string          `json:"message"`
	CreatedAt      time.Time       `json:"createdAt"`
}

func (m AlertMessage) Validate() error {
	if strings.TrimSpace(m.MessageID) == "" {
		return fmt.Errorf("messageId is required")
	}
	if strings.TrimSpace(m.UserID) == "" {
		return fmt.Errorf("userId is required")
	}
	if m.NotificationID <= 0 {
		return fmt.Errorf("notificationId must be positive")
	}
	if strings.TrimSpace(m.Message) == "" {
		return fmt.Errorf("message is required")
	}
	if m.Priority != "" && !m.Priority.IsValid() {
		return fmt.Errorf("invalid priority %q", m.Priority)
	}
	return nil
}
