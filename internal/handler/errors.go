package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/kursadbilgin/applytrack/internal/domain"
)

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrAuth):
		return fiber.NewError(fiber.StatusUnauthorized, "mailbox access was refused, reconnect your Google account: "+err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrScanInProgress):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrNoWatchTargets):
		return fiber.NewError(fiber.StatusUnprocessableEntity, "add a contact email to at least one company before scanning")
	case errors.Is(err, domain.ErrSearchUnavailable):
		return fiber.NewError(fiber.StatusBadGateway, "mailbox search is unavailable, try again later")
	default:
		return err
	}
}
