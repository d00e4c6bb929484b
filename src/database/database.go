package database

import (
	"sync"

	"credential-ledger/pkg/logger"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var (
	dbConnection *gorm.DB
	onceDatabase sync.Once
)

func InitializeDatabaseConnection(connectionString string) {
	onceDatabase.Do(func() {
		db, err := gorm.Open(sqlite.Open(connectionString), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		})
		if err != nil {
			logger.Default().Fatal(err, "Cannot establish database connection")
		}
		dbConnection = db
	})
}

func GetDatabaseConnection() *gorm.DB {
	if dbConnection == nil {
		panic("Database not initialized: call InitializeDatabaseConnection() first")
	}
	return dbConnection
}
