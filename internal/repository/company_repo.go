package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/kursadbilgin/applytrack/internal/domain"
)

// ListParams narrows a company listing. Zero values mean no filter.
type ListParams struct {
	Search   string
	Priority *domain.Priority
	Status   *domain.Status
	NextDate string
}

// WatchAddress pairs a company with the sender address its mail comes from.
type WatchAddress struct {
	CompanyID int64
	Address   string
}

type CompanyRepository interface {
	Create(ctx context.Context, c *domain.Company) error
	GetByID(ctx context.Context, userID string, id int64) (*domain.Company, error)
	List(ctx context.Context, userID string, params ListParams) ([]domain.Company, error)
	Update(ctx context.Context, c *domain.Company) error
	Delete(ctx context.Context, userID string, id int64) error
	ListWatchAddresses(ctx context.Context, userID string) ([]WatchAddress, error)
}

type GormCompanyRepo struct {
	db *gorm.DB
}

func NewGormCompanyRepo(db *gorm.DB) *GormCompanyRepo {
	return &GormCompanyRepo{db: db}
}

func (r *GormCompanyRepo) Create(ctx context.Context, c *domain.Company) error {
	model := companyModelFromDomain(c)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	if c != nil {
		*c = *companyModelToDomain(model)
	}
	return nil
}

// GetByID returns domain.ErrNotFound for ids owned by another user as well.
func (r *GormCompanyRepo) GetByID(ctx context.Context, userID string, id int64) (*domain.Company, error) {
	var model CompanyModel
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return companyModelToDomain(&model), nil
}

// List returns the user's companies in creation order.
func (r *GormCompanyRepo) List(ctx context.Context, userID string, params ListParams) ([]domain.Company, error) {
	query := r.db.WithContext(ctx).
		Model(&CompanyModel{}).
		Where("user_id = ?", userID)

	if search := strings.ToLower(strings.TrimSpace(params.Search)); search != "" {
		pattern := "%" + escapeLike(search) + "%"
		query = query.Where(
			"(LOWER(name) LIKE ? OR LOWER(industry) LIKE ? OR LOWER(notes) LIKE ?)",
			pattern, pattern, pattern,
		)
	}
	if params.Priority != nil {
		query = query.Where("priority IN ?", params.Priority.StoredValues())
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.NextDate != "" {
		query = query.Where("next_date = ?", params.NextDate)
	}

	var models []CompanyModel
	if err := query.Order("created_at ASC").Order("id ASC").Find(&models).Error; err != nil {
		return nil, err
	}

	companies := make([]domain.Company, 0, len(models))
	for i := range models {
		companies = append(companies, *companyModelToDomain(&models[i]))
	}
	return companies, nil
}

// Update replaces every editable field of the company.
func (r *GormCompanyRepo) Update(ctx context.Context, c *domain.Company) error {
	if c == nil {
		return domain.ErrNotFound
	}

	result := r.db.WithContext(ctx).
		Model(&CompanyModel{}).
		Where("id = ? AND user_id = ?", c.ID, c.UserID).
		Updates(map[string]any{
			"name":               c.Name,
			"status":             c.Status,
			"priority":           c.Priority,
			"industry":           c.Industry,
			"next_date":          c.NextDate,
			"next_time":          c.NextTime,
			"next_end_time":      c.NextEndTime,
			"event_content":      c.EventContent,
			"event_requirements": c.EventRequirements,
			"portal_url":         c.PortalURL,
			"login_id":           c.LoginID,
			"login_secret":       c.LoginSecret,
			"notes":              c.Notes,
			"contact_email":      c.ContactEmail,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GormCompanyRepo) Delete(ctx context.Context, userID string, id int64) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&CompanyModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GormCompanyRepo) ListWatchAddresses(ctx context.Context, userID string) ([]WatchAddress, error) {
	var models []CompanyModel
	err := r.db.WithContext(ctx).
		Select("id", "contact_email").
		Where("user_id = ? AND contact_email <> ''", userID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	out := make([]WatchAddress, 0, len(models))
	for i := range models {
		addr := strings.ToLower(strings.TrimSpace(models[i].ContactEmail))
		if addr == "" {
			continue
		}
		out = append(out, WatchAddress{CompanyID: models[i].ID, Address: addr})
	}
	return out, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
