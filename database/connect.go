package database

import (
	"fmt"

	"Hacknox/config"
	"Hacknox/models"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Connect opens the configured database and sets up the connection pool.
func Connect(cfg *config.Config) error {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "postgres":
		dialector = postgres.Open(cfg.DBDSN)
	default:
		dialector = mysql.Open(cfg.DBDSN)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	// Connections are recycled before MySQL's wait_timeout drops them.
	sqlDB.SetConnMaxLifetime(cfg.DBConnLifetime)

	DB = db
	log.Info().Str("driver", cfg.DBDriver).Msg("database connection established")
	return nil
}

// AllModels lists every table managed by the service.
func AllModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Hackathon{},
		&models.HackathonAdmin{},
		&models.HackathonJudge{},
		&models.Team{},
		&models.TeamMember{},
		&models.TeamInvitation{},
		&models.Submission{},
		&models.JudgeAssignment{},
		&models.Evaluation{},
		&models.TeamScore{},
		&models.LeaderboardEntry{},
		&models.LeaderboardSetting{},
		&models.Announcement{},
		&models.UserNotificationRead{},
		&models.AuditLog{},
	}
}

func MigrateTables(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	log.Info().Msg("database migration completed")
	return nil
}
