package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/kursadbilgin/applytrack/internal/repository"
)

func createCompaniesTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000001_create_companies",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.CompanyModel{}); err != nil {
				return err
			}
			indexes := []string{
				`CREATE INDEX IF NOT EXISTS idx_companies_user_created ON companies (user_id, created_at, id)`,
				`CREATE INDEX IF NOT EXISTS idx_companies_user_next_date ON companies (user_id, next_date) WHERE next_date <> ''`,
				`CREATE INDEX IF NOT EXISTS idx_companies_user_contact_email ON companies (user_id) WHERE contact_email <> ''`,
			}
			for _, sql := range indexes {
				if err := tx.Exec(sql).Error; err != nil {
					return err
				}
			}
			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.CompanyModel{})
		},
	}
}
