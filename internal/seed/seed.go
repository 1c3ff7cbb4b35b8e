package seed

import (
	"fmt"
	"log"

	"kampus/internal/catalog"
	"kampus/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers         int
	NumConversations int
	MessagesPerConv  int
	CommentsPerUni   int
	ShouldClean      bool
}

var (
	turkishFirstNames = []string{
		"Ahmet", "Mehmet", "Mustafa", "Ali", "Hüseyin", "Hasan", "İbrahim", "Murat",
		"Emre", "Burak", "Cem", "Deniz", "Kaan", "Onur", "Serkan", "Tolga",
		"Ayşe", "Fatma", "Emine", "Hatice", "Zeynep", "Elif", "Merve", "Esra",
		"Selin", "Ceren", "Büşra", "Gamze", "İrem", "Çağla", "Özge", "Yasemin",
	}

	turkishLastNames = []string{
		"Yılmaz", "Kaya", "Demir", "Çelik", "Şahin", "Yıldız", "Yıldırım", "Öztürk",
		"Aydın", "Özdemir", "Arslan", "Doğan", "Kılıç", "Aslan", "Çetin", "Kara",
		"Koç", "Kurt", "Özkan", "Şimşek", "Polat", "Özcan", "Erdoğan", "Güneş",
	}

	chatPhrases = []string{
		"Selam, Erasmus başvurusu için hangi okulu seçtin?",
		"Bence TU Delft çok iyi bir seçenek, anlaşması da var.",
		"Merhaba! Transcript için öğrenci işlerine gittin mi?",
		"Hocam referans mektubunu bugün gönderdi, rahatladım.",
		"Dil sınavı sonuçları açıklanmış, baktın mı?",
		"Bologna'daki dönem planını paylaşabilir misin?",
		"Yurt başvurusu için son gün cumaymış, unutma.",
		"Ders eşleştirme tablosunu koordinatöre ilettim.",
		"Tamamdır, akşam arayayım seni.",
		"Süper, teşekkürler!",
		"Ben de aynı okula başvuruyorum, birlikte bakalım mı?",
		"Vize randevusu alabildin mi?",
	}

	commentTemplates = []string{
		"Erasmus dönemimi burada geçirdim, kesinlikle tavsiye ederim. %s",
		"Uluslararası ofis çok ilgili, başvuru süreci sorunsuz ilerledi. %s",
		"Partner okul seçenekleri gerçekten geniş. %s",
		"Kampüs hayatı çok canlı, değişim öğrencileri için ideal. %s",
		"Ders eşleştirme konusunda koordinatörler yardımcı oluyor. %s",
		"Başvuru takvimini yakından takip etmek gerekiyor. %s",
	}
)

// Seed populates the database with demo users, conversations, messages and
// university comments. University IDs come from the loaded catalog so every
// seeded comment points at a real university page.
func Seed(db *gorm.DB, cat *catalog.Catalog, opts Options) error {
	log.Printf("Seeding database: %d users, %d conversations, %d comments per university...",
		opts.NumUsers, opts.NumConversations, opts.CommentsPerUni)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("Warning: could not clear all existing data, continuing anyway...")
		}
	}

	f := NewFactory(db)

	users, err := createUsers(f, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("%d demo users created", len(users))

	convs, err := createConversations(f, users, opts.NumConversations, opts.MessagesPerConv)
	if err != nil {
		return fmt.Errorf("failed to create conversations: %w", err)
	}
	log.Printf("%d conversations created", convs)

	comments, err := createComments(f, cat, users, opts.CommentsPerUni)
	if err != nil {
		return fmt.Errorf("failed to create comments: %w", err)
	}
	log.Printf("%d comments created", comments)

	log.Println("Database seeding completed.")
	return nil
}

func clearData(db *gorm.DB) error {
	log.Println("Clearing existing data...")
	if db.Dialector.Name() != "postgres" {
		for _, table := range []string{"comments", "messages", "conversations", "users"} {
			if err := db.Exec("DELETE FROM " + table).Error; err != nil {
				return err
			}
		}
		return nil
	}
	sql := `TRUNCATE TABLE comments, messages, conversations, users RESTART IDENTITY CASCADE;`
	return db.Exec(sql).Error
}

func createUsers(f *Factory, count int) ([]*models.User, error) {
	users := make([]*models.User, 0, count)

	// Always include a couple of fixed logins for manual testing.
	if count >= 2 {
		for _, fixed := range []struct{ username, display string }{
			{"deniz", "Deniz Kaya"},
			{"zeynep", "Zeynep Demir"},
		} {
			user, err := f.CreateUser(func(u *models.User) {
				u.Username = fixed.username
				u.Email = fixed.username + "@example.com"
				u.DisplayName = fixed.display
			})
			if err == nil {
				users = append(users, user)
			}
		}
	}

	for i := len(users); i < count; i++ {
		user, err := f.CreateUser()
		if err != nil {
			log.Printf("Failed to create user: %v", err)
			continue
		}
		users = append(users, user)

		if i > 0 && i%100 == 0 {
			log.Printf("Created %d users...", i)
		}
	}
	return users, nil
}

func createConversations(f *Factory, users []*models.User, count, messagesPer int) (int, error) {
	if len(users) < 2 {
		return 0, nil
	}
	if messagesPer <= 0 {
		messagesPer = 6
	}

	created := 0
	seen := map[string]bool{}
	for i := 0; i < count; i++ {
		a := users[f.r.Intn(len(users))]
		b := users[f.r.Intn(len(users))]
		if a.ID == b.ID {
			continue
		}
		key := models.PairKeyFor(a.ID, b.ID)
		if seen[key] {
			continue
		}
		seen[key] = true

		conv, err := f.CreateConversation(a, b)
		if err != nil {
			return created, err
		}
		created++

		n := 1 + f.r.Intn(messagesPer)
		for j := 0; j < n; j++ {
			sender := a
			if f.r.Intn(2) == 1 {
				sender = b
			}
			if _, err := f.CreateMessage(conv, sender); err != nil {
				return created, err
			}
		}
	}
	return created, nil
}

func createComments(f *Factory, cat *catalog.Catalog, users []*models.User, perUniversity int) (int, error) {
	if cat == nil || perUniversity <= 0 {
		return 0, nil
	}

	created := 0
	for _, uni := range cat.Universities() {
		for i := 0; i < perUniversity; i++ {
			// Roughly a third of seeded comments are anonymous.
			if len(users) == 0 || f.r.Intn(3) == 0 {
				if _, err := f.CreateAnonymousComment(uni.ID); err != nil {
					return created, err
				}
			} else {
				user := users[f.r.Intn(len(users))]
				if _, err := f.CreateComment(user, uni.ID); err != nil {
					return created, err
				}
			}
			created++
		}
	}
	return created, nil
}
