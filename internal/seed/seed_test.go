package seed

import (
	"testing"

	"kampus/internal/catalog"
	"kampus/internal/database"
	"kampus/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newSeedDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

func TestSeed(t *testing.T) {
	db := newSeedDB(t)
	cat, err := catalog.Open("")
	require.NoError(t, err)

	opts := Options{
		NumUsers:         8,
		NumConversations: 5,
		MessagesPerConv:  4,
		CommentsPerUni:   2,
	}
	require.NoError(t, Seed(db, cat, opts))

	var userCount int64
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	assert.EqualValues(t, opts.NumUsers, userCount)

	// The fixed logins exist for manual testing against seeded data.
	var fixed models.User
	require.NoError(t, db.Where("username = ?", "deniz").First(&fixed).Error)
	assert.Equal(t, "Deniz Kaya", fixed.DisplayName)

	var convs []models.Conversation
	require.NoError(t, db.Find(&convs).Error)
	seen := map[string]bool{}
	for _, c := range convs {
		assert.Equal(t, models.PairKeyFor(c.UserAID, c.UserBID), c.PairKey)
		assert.False(t, seen[c.PairKey], "duplicate pair key %s", c.PairKey)
		seen[c.PairKey] = true

		var msgCount int64
		require.NoError(t, db.Model(&models.Message{}).
			Where("conversation_id = ?", c.ID).Count(&msgCount).Error)
		assert.Positive(t, msgCount)
		assert.NotEmpty(t, c.LastMessage)
	}

	var commentCount int64
	require.NoError(t, db.Model(&models.Comment{}).Count(&commentCount).Error)
	assert.EqualValues(t, len(cat.Universities())*opts.CommentsPerUni, commentCount)

	var comments []models.Comment
	require.NoError(t, db.Find(&comments).Error)
	for _, c := range comments {
		_, ok := cat.UniversityByID(c.UniversityID)
		assert.True(t, ok, "comment references unknown university %s", c.UniversityID)
		if c.IsAnonymous() {
			assert.NotEmpty(t, c.Name)
			assert.NotEmpty(t, c.Surname)
		} else {
			assert.NotEmpty(t, c.Username)
		}
	}
}

func TestSeed_CleanRemovesPreviousData(t *testing.T) {
	db := newSeedDB(t)
	cat, err := catalog.Open("")
	require.NoError(t, err)

	opts := Options{NumUsers: 4, NumConversations: 2, CommentsPerUni: 1, ShouldClean: true}
	require.NoError(t, Seed(db, cat, opts))
	require.NoError(t, Seed(db, cat, opts))

	var userCount int64
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	assert.EqualValues(t, opts.NumUsers, userCount)
}

func TestFactory_CreateMessageUpdatesPreview(t *testing.T) {
	db := newSeedDB(t)
	f := NewFactory(db)

	a, err := f.CreateUser()
	require.NoError(t, err)
	b, err := f.CreateUser()
	require.NoError(t, err)

	conv, err := f.CreateConversation(a, b)
	require.NoError(t, err)

	msg, err := f.CreateMessage(conv, a, func(m *models.Message) {
		m.Content = "görüşürüz"
	})
	require.NoError(t, err)

	var stored models.Conversation
	require.NoError(t, db.First(&stored, conv.ID).Error)
	assert.Equal(t, "görüşürüz", stored.LastMessage)
	assert.Equal(t, msg.SenderUsername, a.Username)
}
