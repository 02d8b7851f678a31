package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/kursadbilgin/applytrack/internal/repository"
)

func createScanRunsTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000004_create_scan_runs",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.ScanRunModel{}); err != nil {
				return err
			}
			return tx.Exec(`CREATE INDEX IF NOT EXISTS idx_scan_runs_user_started ON scan_runs (user_id, started_at DESC)`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.ScanRunModel{})
		},
	}
}
