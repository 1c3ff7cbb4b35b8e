// Package bootstrap wires up the runtime dependencies (database, Redis,
// university catalog) shared by the server and the CLI commands.
package bootstrap

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"kampus/internal/cache"
	"kampus/internal/catalog"
	"kampus/internal/config"
	"kampus/internal/database"
	"kampus/internal/models"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	EnsureDemoAccount bool
}

// InitRuntime connects to the database and Redis and loads the university
// catalog. The Redis client may be nil when Redis is unreachable; callers are
// expected to degrade gracefully.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, *catalog.Catalog, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	cat, err := catalog.Open(cfg.DatasetPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("university dataset load failed: %w", err)
	}

	if opts.EnsureDemoAccount {
		if err := ensureDevDemoAccount(cfg, db); err != nil {
			return nil, nil, nil, fmt.Errorf("failed to bootstrap development demo account: %w", err)
		}
	}

	return db, r, cat, nil
}

// ensureDevDemoAccount pins a known login at user ID 1 so local frontend
// work does not depend on running the seeder first. Development only.
func ensureDevDemoAccount(cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !strings.EqualFold(cfg.Env, "development") || !cfg.DevBootstrapDemo {
		return nil
	}

	username := strings.TrimSpace(strings.ToLower(cfg.DevDemoUsername))
	if username == "" {
		username = "kampus_demo"
	}
	email := strings.TrimSpace(strings.ToLower(cfg.DevDemoEmail))
	if email == "" {
		email = "demo@kampus.local"
	}
	password := cfg.DevDemoPassword
	if password == "" {
		return fmt.Errorf("DEV_DEMO_PASSWORD must be set when DEV_BOOTSTRAP_DEMO is enabled")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}

	if err := db.Transaction(func(tx *gorm.DB) error {
		var demo models.User
		findErr := tx.First(&demo, 1).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			demo = models.User{
				ID:          1,
				Username:    username,
				Email:       email,
				Password:    string(hashedPassword),
				DisplayName: "Kampus Demo",
			}
			if err := tx.Create(&demo).Error; err != nil {
				return err
			}
		case findErr != nil:
			return findErr
		default:
			updates := map[string]any{
				"email":    email,
				"password": string(hashedPassword),
			}
			if err := tx.Model(&models.User{}).Where("id = ?", 1).Updates(updates).Error; err != nil {
				return err
			}
		}

		// Ensure users ID sequence is not behind explicit ID insertion.
		// This is PostgreSQL-specific.
		if tx.Dialector.Name() == "postgres" {
			if err := tx.Exec(`
				SELECT setval(
					pg_get_serial_sequence('users', 'id'),
					GREATEST((SELECT COALESCE(MAX(id), 1) FROM users), 1),
					true
				)
			`).Error; err != nil {
				return fmt.Errorf("failed to reset users sequence: %w", err)
			}
		}

		return nil
	}); err != nil {
		return err
	}

	log.Printf("development demo account ensured for user ID 1 (%s)", email)
	return nil
}
