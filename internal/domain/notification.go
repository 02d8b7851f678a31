package domain

import (
	"fmt"
	"strings"
	"time"
)

const MaxMessageLength = 1000

// Notification is a user-visible alert. Message and EmailBody never change
// after creation; only IsRead flips from false to true.
type Notification struct {
	ID        int64
	UserID    string
	Message   string
	IsRead    bool
	CompanyID *int64
	EmailBody *string
	CreatedAt time.Time
}

func (n *Notification) Validate() error {
	if strings.TrimSpace(n.UserID) == "" {
		return fmt.Errorf("%w: user id is required", ErrValidation)
	}
	if strings.TrimSpace(n.Message) == "" {
		return fmt.Errorf("%w: message is required", ErrValidation)
	}
	if l := len([]rune(n.Message)); l > MaxMessageLength {
		return fmt.Errorf("%w: message exceeds %d characters (got %d)", ErrValidation, MaxMessageLength, l)
	}
	return nil
}

// CompanyAddedMessage is the message recorded when a company is created.
func CompanyAddedMessage(name string) string {
	return fmt.Sprintf("Added %s", strings.TrimSpace(name))
}

// MailMessage is the message recorded for a matched inbox message.
func MailMessage(companyName, subject string) string {
	return fmt.Sprintf("📩 %s: %s", companyName, subject)
}
