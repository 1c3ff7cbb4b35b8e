package database

import "kampus/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Conversation{},
		&models.Message{},
		&models.Comment{},
	}
}
