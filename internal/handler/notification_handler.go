package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/kursadbilgin/applytrack/internal/domain"
	"github.com/kursadbilgin/applytrack/internal/identity"
)

type NotificationService interface {
	List(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkRead(ctx context.Context, userID string, id int64) error
	UnreadCount(ctx context.Context, userID string) (int64, error)
}

type NotificationHandler struct {
	service NotificationService
}

func NewNotificationHandler(service NotificationService) (*NotificationHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("notification service is required")
	}
	return &NotificationHandler{service: service}, nil
}

type notificationResponse struct {
	ID        int64     `json:"id"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"isRead"`
	CompanyID *int64    `json:"companyId,omitempty"`
	EmailBody *string   `json:"emailBody,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type listNotificationsResponse struct {
	Data []notificationResponse `json:"data"`
	Meta notificationsMeta      `json:"meta"`
}

type notificationsMeta struct {
	Total  int   `json:"total"`
	Unread int64 `json:"unread"`
}

func (h *NotificationHandler) ListNotifications(c *fiber.Ctx) error {
	userID := identity.UserID(c)

	notifications, err := h.service.List(c.UserContext(), userID)
	if err != nil {
		return toHTTPError(err)
	}

	var unread int64
	for i := range notifications {
		if !notifications[i].IsRead {
			unread++
		}
	}

	return c.Status(fiber.StatusOK).JSON(listNotificationsResponse{
		Data: toNotificationResponses(notifications),
		Meta: notificationsMeta{Total: len(notifications), Unread: unread},
	})
}

func (h *NotificationHandler) UnreadCount(c *fiber.Ctx) error {
	count, err := h.service.UnreadCount(c.UserContext(), identity.UserID(c))
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"unread": count})
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return toHTTPError(err)
	}

	if err := h.service.MarkRead(c.UserContext(), identity.UserID(c), id); err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"id":     id,
		"isRead": true,
	})
}

func toNotificationResponses(notifications []domain.Notification) []notificationResponse {
	responses := make([]notificationResponse, 0, len(notifications))
	for i := range notifications {
		responses = append(responses, toNotificationResponse(&notifications[i]))
	}
	return responses
}

func toNotificationResponse(n *domain.Notification) notificationResponse {
	if n == nil {
		return notificationResponse{}
	}

	return notificationResponse{
		ID:        n.ID,
		Message:   n.Message,
		IsRead:    n.IsRead,
		CompanyID: n.CompanyID,
		EmailBody: n.EmailBody,
		CreatedAt: n.CreatedAt,
	}
}
