package database

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"pooldesk/internal/config"
	"pooldesk/internal/models"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	maxAttempts  = 10
	retryBackoff = 2 * time.Second
)

// Open подключается к БД. Postgres поднимается не сразу (docker-compose), поэтому ретраим.
func Open(cfg config.DBConfig, log *zap.Logger) (*gorm.DB, error) {
	gcfg := &gorm.Config{Logger: NewGormLogger(log, 200*time.Millisecond)}

	switch cfg.Driver {
	case "sqlite":
		db, err := gorm.Open(sqlite.Open(cfg.DSN), gcfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// одно соединение: :memory: живёт в нём, а запись в sqlite всё равно последовательная
		sqlDB.SetMaxOpenConns(1)
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
		return db, nil

	case "postgres":
		var (
			db  *gorm.DB
			err error
		)
		for i := 1; i <= maxAttempts; i++ {
			log.Info("connecting to database", zap.Int("attempt", i), zap.Int("max_attempts", maxAttempts))

			db, err = gorm.Open(postgres.Open(cfg.DSN), gcfg)
			if err == nil {
				log.Info("connected to database")
				return db, nil
			}

			log.Warn("failed to connect to database", zap.Error(err))
			time.Sleep(retryBackoff)
		}
		return nil, fmt.Errorf("connect to db after %d attempts: %w", maxAttempts, err)
	}

	return nil, fmt.Errorf("unsupported driver %q", cfg.Driver)
}

// миграции
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Project{},
		&models.ProjectTodo{},
		&models.Activity{},
	)
}

// SeedUsers создаёт админа, если его ещё нет, и демо-аккаунты для development.
func SeedUsers(db *gorm.DB, admin config.AdminConfig, withDemo bool, log *zap.Logger) error {
	if err := createDefaultAdmin(db, admin, log); err != nil {
		return err
	}
	if withDemo {
		seedDemoUsers(db, log)
	}
	return nil
}

// админ только из кода/конфига
func createDefaultAdmin(db *gorm.DB, admin config.AdminConfig, log *zap.Logger) error {
	var count int64
	if err := db.Model(&models.User{}).
		Where("role = ?", models.RoleAdmin).
		Count(&count).Error; err != nil {
		return fmt.Errorf("check admin user: %w", err)
	}
	if count > 0 {
		// админ уже есть, ничего не делаем
		return nil
	}

	password := admin.Password
	generated := password == ""
	if generated {
		password = randomPassword()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	user := models.User{
		Username:     admin.Username,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}
	if err := db.Create(&user).Error; err != nil {
		return fmt.Errorf("create default admin: %w", err)
	}

	if generated {
		log.Warn("created default admin with a generated password, change it",
			zap.String("username", user.Username), zap.String("password", password))
	} else {
		log.Info("created default admin", zap.String("username", user.Username))
	}
	return nil
}

// пара тестовых аккаунтов для демо (sales и manager)
func seedDemoUsers(db *gorm.DB, log *zap.Logger) {
	users := []struct {
		Username string
		Password string
		Role     models.UserRole
	}{
		{Username: "sales@pooldesk.local", Password: "Sales123!", Role: models.RoleSales},
		{Username: "pm@pooldesk.local", Password: "Manager123!", Role: models.RoleManager},
	}

	for _, u := range users {
		var count int64
		if err := db.Model(&models.User{}).
			Where("username = ?", u.Username).
			Count(&count).Error; err != nil {
			log.Warn("failed to check seed user", zap.String("username", u.Username), zap.Error(err))
			continue
		}
		if count > 0 {
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Warn("failed to hash seed password", zap.String("username", u.Username), zap.Error(err))
			continue
		}

		user := models.User{Username: u.Username, PasswordHash: string(hash), Role: u.Role}
		if err := db.Create(&user).Error; err != nil {
			log.Warn("failed to create seed user", zap.String("username", u.Username), zap.Error(err))
			continue
		}
		log.Info("created seed user", zap.String("username", u.Username), zap.String("role", string(u.Role)))
	}
}

func randomPassword() string {
	b := make([]byte, 12)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
