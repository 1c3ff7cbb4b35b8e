package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestPersistentModels_Migrate(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(PersistentModels()...))

	for _, table := range []string{"users", "conversations", "messages", "comments"} {
		assert.True(t, db.Migrator().HasTable(table), "missing table %s", table)
	}

	// The pair key uniqueness backs conversation dedup; losing it would
	// reintroduce the duplicate-conversation race.
	assert.True(t, db.Migrator().HasIndex("conversations", "idx_conversations_pair_key"))
}
