package repository

import (
	"time"

	"github.com/kursadbilgin/applytrack/internal/domain"
)

// CompanyModel is the persistence model for the companies table.
type CompanyModel struct {
	ID                int64           `gorm:"primaryKey;autoIncrement"`
	UserID            string          `gorm:"type:varchar(64);not null;index"`
	Name              string          `gorm:"type:varchar(255);not null"`
	Status            domain.Status   `gorm:"type:varchar(20);not null"`
	Priority          domain.Priority `gorm:"type:varchar(10);not null"`
	Industry          string          `gorm:"type:varchar(255);not null"`
	NextDate          string          `gorm:"type:varchar(10);not null"`
	NextTime          string          `gorm:"type:varchar(5);not null"`
	NextEndTime       string          `gorm:"type:varchar(5);not null"`
	EventContent      string          `gorm:"type:text;not null"`
	EventRequirements string          `gorm:"type:text;not null"`
	PortalURL         string          `gorm:"type:text;not null"`
	LoginID           string          `gorm:"type:varchar(255);not null"`
	LoginSecret       string          `gorm:"type:text;not null"`
	Notes             string          `gorm:"type:text;not null"`
	ContactEmail      string          `gorm:"type:varchar(320);not null"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (CompanyModel) TableName() string {
	return "companies"
}

// NotificationModel is the persistence model for the notifications table.
type NotificationModel struct {
	ID        int64   `gorm:"primaryKey;autoIncrement"`
	UserID    string  `gorm:"type:varchar(64);not null;index"`
	Message   string  `gorm:"type:text;not null"`
	IsRead    bool    `gorm:"not null"`
	CompanyID *int64  `gorm:"index"`
	EmailBody *string `gorm:"type:text"`
	CreatedAt time.Time
}

func (NotificationModel) TableName() string {
	return "notifications"
}

func companyModelFromDomain(c *domain.Company) *CompanyModel {
	if c == nil {
		return nil
	}

	return &CompanyModel{
		ID:                c.ID,
		UserID:            c.UserID,
		Name:              c.Name,
		Status:            c.Status,
		Priority:          c.Priority,
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

func companyModelToDomain(m *CompanyModel) *domain.Company {
	if m == nil {
		return nil
	}

	return &domain.Company{
		ID:                m.ID,
		UserID:            m.UserID,
		Name:              m.Name,
		Status:            m.Status,
		Priority:          normalizePriority(m.Priority),
		Industry:          m.Industry,
		NextDate:          m.NextDate,
		NextTime:          m.NextTime,
		NextEndTime:       m.NextEndTime,
		EventContent:      m.EventContent,
		EventRequirements: m.EventRequirements,
		PortalURL:         m.PortalURL,
		LoginID:           m.LoginID,
		LoginSecret:       m.LoginSecret,
		Notes:             m.Notes,
		ContactEmail:      m.ContactEmail,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

// normalizePriority maps rows written before the priority tiers were fixed.
func normalizePriority(p domain.Priority) domain.Priority {
	parsed, err := domain.ParsePriorityFromString(string(p))
	if err != nil {
		return domain.PriorityMedium
	}
	return parsed
}

func notificationModelFromDomain(n *domain.Notification) *NotificationModel {
	if n == nil {
		return nil
	}

	return &NotificationModel{
		ID:        n.ID,
		UserID:    n.UserID,
		Message:   n.Message,
		IsRead:    n.IsRead,
		CompanyID: n.CompanyID,
		EmailBody: n.EmailBody,
		CreatedAt: n.CreatedAt,
	}
}

func notificationModelToDomain(m *NotificationModel) *domain.Notification {
	if m == nil {
		return nil
	}

	return &domain.Notification{
		ID:        m.ID,
		UserID:    m.UserID,
		Message:   m.Message,
		IsRead:    m.IsRead,
		CompanyID: m.CompanyID,
		EmailBody: m.EmailBody,
		CreatedAt: m.CreatedAt,
	}
}

// ScanRunModel is the persistence model for the scan_runs table.
type ScanRunModel struct {
	ID         string  `gorm:"type:uuid;primaryKey"`
	UserID     string  `gorm:"type:varchar(64);not null"`
	Outcome    string  `gorm:"type:varchar(32);not null"`
	Candidates int     `gorm:"not null"`
	Created    int     `gorm:"not null"`
	Duplicates int     `gorm:"not null"`
	Unmatched  int     `gorm:"not null"`
	Failed     int     `gorm:"not null"`
	Error      *string `gorm:"type:text"`
	StartedAt  time.Time
	FinishedAt time.Time
}

func (ScanRunModel) TableName() string {
	return "scan_runs"
}

func scanRunModelFromDomain(r *domain.ScanRun) *ScanRunModel {
	if r == nil {
		return nil
	}

	return &ScanRunModel{
		ID:         r.ID,
		UserID:     r.UserID,
		Outcome:    r.Outcome,
		Candidates: r.Candidates,
		Created:    r.Created,
		Duplicates: r.Duplicates,
		Unmatched:  r.Unmatched,
		Failed:     r.Failed,
		Error:      r.Error,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	}
}

func scanRunModelToDomain(m *ScanRunModel) *domain.ScanRun {
	if m == nil {
		return nil
	}

	return &domain.ScanRun{
		ID:         m.ID,
		UserID:     m.UserID,
		Outcome:    m.Outcome,
		Candidates: m.Candidates,
		Created:    m.Created,
		Duplicates: m.Duplicates,
		Unmatched:  m.Unmatched,
		Failed:     m.Failed,
		Error:      m.Error,
		StartedAt:  m.StartedAt,
		FinishedAt: m.FinishedAt,
	}
}
