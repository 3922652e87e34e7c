package database

import (
	"gorm.io/gorm"

	"sol-audit-service/internal/domain"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.AuditRequest{},
	)
}
