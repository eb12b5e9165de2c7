package config

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/chmgroup/mediahub-backend/models"
)

var DB *gorm.DB

func InitDB() {
	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPass := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		dbHost, dbUser, dbPass, dbName, dbPort,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		logrus.WithError(err).Fatal("cannot connect to database")
	}

	DB = db

	sqlDB, err := db.DB()
	if err != nil {
		logrus.WithError(err).Fatal("cannot get sql.DB from gorm")
	}

	// Connection pooling
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	err = DB.AutoMigrate(
		&models.User{},
		&models.Invitation{},
		&models.Client{},
		&models.Project{},
		&models.KOLGroup{},
		&models.KOL{},
		&models.ClientUser{},
		&models.Shoot{},
		&models.Clip{},
		&models.Post{},
		&models.MetricSnapshot{},
		&models.ReportJob{},
	)
	if err != nil {
		logrus.WithError(err).Fatal("autoMigrate failed")
	}
	logrus.Info("postgreSQL connected & migrated successfully")
}
