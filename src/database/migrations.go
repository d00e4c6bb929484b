package database

import (
	"credential-ledger/pkg/logger"
	"credential-ledger/src/model"

	"gorm.io/gorm"
)

func RunMigrations() {
	db := GetDatabaseConnection()
	migrationLogger := logger.Default()
	migrationLogger.Info("Running migrations for tables... ")

	if err := AutoMigrate(db); err != nil {
		migrationLogger.Fatal(err, "Migrating database failed")
	}

	migrationLogger.Info("All tables created (or already exist).")
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Credential{},
		&model.CompositeProof{},
		&model.PendingRequest{},
		&model.OutboxEvent{})
}
