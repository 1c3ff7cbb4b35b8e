// Package seed provides helpers to create demo and test data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"kampus/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and by tests.
type Factory struct {
	db  *gorm.DB
	r   *rand.Rand
	seq int
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	//nolint:gosec // Weak random number generator is fine for seeding
	return &Factory{db: db, r: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// CreateUser persists a user with a generated Turkish identity. All seeded
// accounts share the password "kampus123" so any of them can be used to log in.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	first := turkishFirstNames[f.r.Intn(len(turkishFirstNames))]
	last := turkishLastNames[f.r.Intn(len(turkishLastNames))]
	f.seq++
	username := fmt.Sprintf("%s_%s%d", asciiFold(first), asciiFold(last), f.seq)

	user := &models.User{
		Username:    strings.ToLower(username),
		Email:       fmt.Sprintf("%s@example.com", strings.ToLower(username)),
		Password:    seedPasswordHash(),
		DisplayName: fmt.Sprintf("%s %s", first, last),
		PhotoURL:    fmt.Sprintf("https://i.pravatar.cc/150?u=%s", strings.ToLower(username)),
		Bio:         gofakeit.Sentence(8),
	}
	for _, override := range overrides {
		override(user)
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// CreateConversation persists a conversation between two users, denormalizing
// the participant identity the same way the chat service does.
func (f *Factory) CreateConversation(a, b *models.User) (*models.Conversation, error) {
	conv := &models.Conversation{
		PairKey:          models.PairKeyFor(a.ID, b.ID),
		UserAID:          a.ID,
		UserBID:          b.ID,
		UserAUsername:    a.Username,
		UserBUsername:    b.Username,
		UserADisplayName: a.DisplayName,
		UserBDisplayName: b.DisplayName,
	}
	if err := f.db.Create(conv).Error; err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	return conv, nil
}

// CreateMessage persists a message and refreshes the conversation preview
// fields so seeded threads look like real conversations.
func (f *Factory) CreateMessage(conv *models.Conversation, sender *models.User, overrides ...func(*models.Message)) (*models.Message, error) {
	msg := &models.Message{
		ConversationID: conv.ID,
		SenderID:       sender.ID,
		SenderUsername: sender.Username,
		Content:        chatPhrases[f.r.Intn(len(chatPhrases))],
		CreatedAt:      f.pastTimestamp(30),
	}
	for _, override := range overrides {
		override(msg)
	}
	if err := f.db.Create(msg).Error; err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	preview := msg.Content
	if len(preview) > 100 {
		preview = preview[:100]
	}
	if err := f.db.Model(conv).Updates(map[string]any{
		"last_message":    preview,
		"last_message_at": msg.CreatedAt,
	}).Error; err != nil {
		return nil, fmt.Errorf("update conversation preview: %w", err)
	}
	conv.LastMessage = preview
	conv.LastMessageAt = msg.CreatedAt
	return msg, nil
}

// CreateComment persists an authenticated comment on a university page.
func (f *Factory) CreateComment(user *models.User, universityID string, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		UniversityID: universityID,
		UserID:       &user.ID,
		Username:     user.Username,
		DisplayName:  user.DisplayName,
		Content:      f.commentContent(),
		CreatedAt:    f.pastTimestamp(90),
	}
	for _, override := range overrides {
		override(comment)
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return comment, nil
}

// CreateAnonymousComment persists a comment submitted without an account.
func (f *Factory) CreateAnonymousComment(universityID string, overrides ...func(*models.Comment)) (*models.Comment, error) {
	first := turkishFirstNames[f.r.Intn(len(turkishFirstNames))]
	last := turkishLastNames[f.r.Intn(len(turkishLastNames))]

	comment := &models.Comment{
		UniversityID: universityID,
		Name:         first,
		Surname:      last,
		Email:        fmt.Sprintf("%s.%s@example.com", asciiFold(strings.ToLower(first)), asciiFold(strings.ToLower(last))),
		Content:      f.commentContent(),
		CreatedAt:    f.pastTimestamp(90),
	}
	for _, override := range overrides {
		override(comment)
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, fmt.Errorf("create anonymous comment: %w", err)
	}
	return comment, nil
}

func (f *Factory) commentContent() string {
	template := commentTemplates[f.r.Intn(len(commentTemplates))]
	return fmt.Sprintf(template, gofakeit.Sentence(6))
}

// pastTimestamp returns a time within the last maxDays, so seeded data gets a
// realistic created_at spread.
func (f *Factory) pastTimestamp(maxDays int) time.Time {
	daysBack := f.r.Intn(maxDays)
	hoursBack := f.r.Intn(24)
	minsBack := f.r.Intn(60)
	return time.Now().Add(-time.Duration(daysBack)*24*time.Hour -
		time.Duration(hoursBack)*time.Hour -
		time.Duration(minsBack)*time.Minute)
}

var cachedPasswordHash string

// seedPasswordHash hashes the shared seed password once; bcrypt is too slow
// to run per user when seeding hundreds of accounts.
func seedPasswordHash() string {
	if cachedPasswordHash == "" {
		hashed, _ := bcrypt.GenerateFromPassword([]byte("kampus123"), bcrypt.DefaultCost)
		cachedPasswordHash = string(hashed)
	}
	return cachedPasswordHash
}

var asciiReplacer = strings.NewReplacer(
	"ç", "c", "Ç", "c",
	"ğ", "g", "Ğ", "g",
	"ı", "i", "İ", "i",
	"ö", "o", "Ö", "o",
	"ş", "s", "Ş", "s",
	"ü", "u", "Ü", "u",
)

// asciiFold maps Turkish letters to ASCII so generated usernames and emails
// stay within the username charset.
func asciiFold(s string) string {
	return strings.ToLower(asciiReplacer.Replace(s))
}
