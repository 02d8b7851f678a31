package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/kursadbilgin/applytrack/internal/domain"
	"github.com/kursadbilgin/applytrack/internal/identity"
	"github.com/kursadbilgin/applytrack/internal/repository"
	"github.com/kursadbilgin/applytrack/internal/service"
)

type CompanyService interface {
	Create(ctx context.Context, c *domain.Company) (*domain.Company, error)
	Get(ctx context.Context, userID string, id int64) (*domain.Company, error)
	List(ctx context.Context, userID string, params repository.ListParams) ([]domain.Company, error)
	Update(ctx context.Context, c *domain.Company) (*domain.Company, error)
	Delete(ctx context.Context, userID string, id int64) error
	ClearSchedule(ctx context.Context, userID string, id int64) (*domain.Company, error)
	Calendar(ctx context.Context, userID string, date string) ([]domain.Company, error)
	Dashboard(ctx context.Context, userID string) (service.Dashboard, error)
}

type CompanyHandler struct {
	service CompanyService
}

func NewCompanyHandler(service CompanyService) (*CompanyHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("company service is required")
	}
	return &CompanyHandler{service: service}, nil
}

type companyRequest struct {
	Name              string `json:"name"`
	Status            string `json:"status"`
	Priority          string `json:"priority"`
	Industry          string `json:"industry"`
	NextDate          string `json:"nextDate"`
	NextTime          string `json:"nextTime"`
	NextEndTime       string `json:"nextEndTime"`
	EventContent      string `json:"eventContent"`
	EventRequirements string `json:"eventRequirements"`
	PortalURL         string `json:"portalUrl"`
	LoginID           string `json:"loginId"`
	LoginSecret       string `json:"loginSecret"`
	Notes             string `json:"notes"`
	ContactEmail      string `json:"contactEmail"`
}

type companyResponse struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	Status            string    `json:"status"`
	Priority          string    `json:"priority"`
	Industry          string    `json:"industry"`
	NextDate          string    `json:"nextDate"`
	NextTime          string    `json:"nextTime"`
	NextEndTime       string    `json:"nextEndTime"`
	EventContent      string    `json:"eventContent"`
	EventRequirements string    `json:"eventRequirements"`
	PortalURL         string    `json:"portalUrl"`
	LoginID           string    `json:"loginId"`
	LoginSecret       string    `json:"loginSecret"`
	Notes             string    `json:"notes"`
	ContactEmail      string    `json:"contactEmail"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

type listCompaniesResponse struct {
	Data []companyResponse `json:"data"`
}

type dashboardResponse struct {
	Total              int `json:"total"`
	Interviewing       int `json:"interviewing"`
	Offers             int `json:"offers"`
	HighPriorityActive int `json:"highPriorityActive"`
}

func (h *CompanyHandler) CreateCompany(c *fiber.Ctx) error {
	var req companyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	company, err := requestToDomainCompany(req, identity.UserID(c), false)
	if err != nil {
		return toHTTPError(err)
	}

	created, err := h.service.Create(c.UserContext(), &company)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(toCompanyResponse(created))
}

func (h *CompanyHandler) GetCompany(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return toHTTPError(err)
	}

	company, err := h.service.Get(c.UserContext(), identity.UserID(c), id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toCompanyResponse(company))
}

func (h *CompanyHandler) ListCompanies(c *fiber.Ctx) error {
	params, err := parseCompanyListParams(c)
	if err != nil {
		return toHTTPError(err)
	}

	companies, err := h.service.List(c.UserContext(), identity.UserID(c), params)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(listCompaniesResponse{Data: toCompanyResponses(companies)})
}

// UpdateCompany replaces every editable field. The response is the stored row.
func (h *CompanyHandler) UpdateCompany(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return toHTTPError(err)
	}

	var req companyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	company, err := requestToDomainCompany(req, identity.UserID(c), true)
	if err != nil {
		return toHTTPError(err)
	}
	company.ID = id

	updated, err := h.service.Update(c.UserContext(), &company)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toCompanyResponse(updated))
}

func (h *CompanyHandler) DeleteCompany(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return toHTTPError(err)
	}

	if err := h.service.Delete(c.UserContext(), identity.UserID(c), id); err != nil {
		return toHTTPError(err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *CompanyHandler) ClearSchedule(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return toHTTPError(err)
	}

	company, err := h.service.ClearSchedule(c.UserContext(), identity.UserID(c), id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toCompanyResponse(company))
}

func (h *CompanyHandler) Calendar(c *fiber.Ctx) error {
	companies, err := h.service.Calendar(c.UserContext(), identity.UserID(c), c.Query("date"))
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(listCompaniesResponse{Data: toCompanyResponses(companies)})
}

func (h *CompanyHandler) Dashboard(c *fiber.Ctx) error {
	d, err := h.service.Dashboard(c.UserContext(), identity.UserID(c))
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(dashboardResponse{
		Total:              d.Total,
		Interviewing:       d.Interviewing,
		Offers:             d.Offers,
		HighPriorityActive: d.HighPriorityActive,
	})
}

func parseCompanyListParams(c *fiber.Ctx) (repository.ListParams, error) {
	params := repository.ListParams{Search: strings.TrimSpace(c.Query("search"))}

	if raw := strings.TrimSpace(c.Query("priority")); raw != "" {
		priority, err := domain.ParsePriorityFromString(raw)
		if err != nil {
			return repository.ListParams{}, err
		}
		params.Priority = &priority
	}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status, err := domain.ParseStatusFromString(raw)
		if err != nil {
			return repository.ListParams{}, err
		}
		params.Status = &status
	}

	return params, nil
}

// requestToDomainCompany maps the body. On create an omitted status or
// priority falls back to the service defaults; on replace both are required.
func requestToDomainCompany(req companyRequest, userID string, replace bool) (domain.Company, error) {
	c := domain.Company{
		UserID:            userID,
		Name:              strings.TrimSpace(req.Name),
		Industry:          strings.TrimSpace(req.Industry),
		NextDate:          strings.TrimSpace(req.NextDate),
		NextTime:          strings.TrimSpace(req.NextTime),
		NextEndTime:       strings.TrimSpace(req.NextEndTime),
		EventContent:      req.EventContent,
		EventRequirements: req.EventRequirements,
		PortalURL:         strings.TrimSpace(req.PortalURL),
		LoginID:           strings.TrimSpace(req.LoginID),
		LoginSecret:       req.LoginSecret,
		Notes:             req.Notes,
		ContactEmail:      strings.TrimSpace(req.ContactEmail),
	}

	if raw := strings.TrimSpace(req.Status); raw != "" || replace {
		status, err := domain.ParseStatusFromString(raw)
		if err != nil {
			return domain.Company{}, err
		}
		c.Status = status
	}
	if raw := strings.TrimSpace(req.Priority); raw != "" || replace {
		priority, err := domain.ParsePriorityFromString(raw)
		if err != nil {
			return domain.Company{}, err
		}
		c.Priority = priority
	}

	return c, nil
}

func toCompanyResponses(companies []domain.Company) []companyResponse {
	responses := make([]companyResponse, 0, len(companies))
	for i := range companies {
		responses = append(responses, toCompanyResponse(&companies[i]))
	}
	return responses
}

func toCompanyResponse(c *domain.Company) companyResponse {
	if c == nil {
		return companyResponse{}
	}

	return companyResponse{
		ID:                c.ID,
		Name:              c.Name,
		Status:            c.Status.String(),
		Priority:          c.Priority.String(),
		Industry:          c.Industry,
		NextDate:          c.NextDate,
		NextTime:          c.NextTime,
		NextEndTime:       c.NextEndTime,
		EventContent:      c.EventContent,
		EventRequirements: c.EventRequirements,
		PortalURL:         c.PortalURL,
		LoginID:           c.LoginID,
		LoginSecret:       c.LoginSecret,
		Notes:             c.Notes,
		ContactEmail:      c.ContactEmail,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
}

func parseIDParam(c *fiber.Ctx) (int64, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: id must be a positive integer", domain.ErrValidation)
	}
	return int64(id), nil
}
