// Command seed populates the database with demo data for development.
package main

import (
	"flag"
	"log"

	"kampus/internal/bootstrap"
	"kampus/internal/config"
	"kampus/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	numConvs := flag.Int("conversations", 40, "Number of conversations to create")
	messagesPer := flag.Int("messages", 8, "Maximum messages per conversation")
	commentsPer := flag.Int("comments", 5, "Comments per university")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("Kampus Database Seeder")
	log.Printf("Target: %d users, %d conversations, %d comments per university, clean=%v",
		*numUsers, *numConvs, *commentsPer, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, _, cat, err := bootstrap.InitRuntime(cfg, bootstrap.Options{})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	if err := seed.Seed(db, cat, seed.Options{
		NumUsers:         *numUsers,
		NumConversations: *numConvs,
		MessagesPerConv:  *messagesPer,
		CommentsPerUni:   *commentsPer,
		ShouldClean:      *shouldClean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
