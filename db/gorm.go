package db

import (
	"fmt"
	"time"

	"dhammasound/config"
	"dhammasound/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormDB is the shared GORM database handle, established once at startup.
var GormDB *gorm.DB

// ConnectGormDB establishes the GORM database connection and configures
// the underlying connection pool.
func ConnectGormDB(cfg *config.Config) error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	var err error
	GormDB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return fmt.Errorf("failed to connect database with GORM: %w", err)
	}

	sqlDB, err := GormDB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return nil
}

// CloseGormDB closes the GORM database connection.
func CloseGormDB() error {
	if GormDB == nil {
		return nil
	}

	sqlDB, err := GormDB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

// AutoMigrate migrates the full schema.
func AutoMigrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&model.Role{},
		&model.User{},
		&model.Priest{},
		&model.Album{},
		&model.Audio{},
		&model.Playlist{},
		&model.PlaylistAudio{},
		&model.Quote{},
		&model.Contact{},
	)
}
