package database

import (
	"errors"
	"fmt"
	"log"

	"github.com/taskflow/taskflow-api/internal/config"
	"github.com/taskflow/taskflow-api/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Connect(cfg *config.Config) error {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost,
		cfg.DBPort,
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBName,
	)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("Database connection established")
	return nil
}

func Migrate() error {
	log.Println("Running database migrations...")
	err := DB.AutoMigrate(
		&models.Company{},
		&models.User{},
		&models.Task{},
		&models.Notification{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Println("Database migrations completed")
	return nil
}

// SeedSuperAdmin creates the platform super-admin row if it does not exist.
// The super-admin is an ordinary stored user with role SUPER_ADMIN and no
// company; there are no sentinel ids or config-backed identities.
func SeedSuperAdmin(cfg *config.Config) error {
	if cfg.SuperAdminPassword == "" {
		return errors.New("SUPERADMIN_PASSWORD must be set to seed the super-admin")
	}

	var existing models.User
	err := DB.Where("role = ?", models.RoleSuperAdmin).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check for super-admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.SuperAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash super-admin password: %w", err)
	}

	superAdmin := &models.User{
		Email:          cfg.SuperAdminEmail,
		Username:       cfg.SuperAdminUsername,
		PasswordHash:   string(hash),
		Role:           models.RoleSuperAdmin,
		CompanyID:      nil,
		IsActive:       true,
		CanAssignTasks: true,
	}
	if err := DB.Create(superAdmin).Error; err != nil {
		return fmt.Errorf("failed to seed super-admin: %w", err)
	}

	log.Printf("Seeded super-admin user %q (id %d)", superAdmin.Username, superAdmin.ID)
	return nil
}

func GetDB() *gorm.DB {
	return DB
}

// SetDB sets the database instance (used for testing)
func SetDB(db *gorm.DB) {
	DB = db
}
