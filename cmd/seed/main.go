// Command main runs the database seeder for feedsite.
package main

import (
	"context"
	"flag"
	"log"

	"feedsite/internal/bootstrap"
	"feedsite/internal/config"
	"feedsite/internal/security"
	"feedsite/internal/seed"
)

func main() {
	// Parse command line flags
	numUsers := flag.Int("users", 20, "Number of users to create")
	numPosts := flag.Int("posts", 200, "Number of posts to create")
	maxDays := flag.Int("days", 30, "Spread post dates over this many past days")
	shouldClean := flag.Bool("clean", true, "Delete existing users and posts before seeding")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: %d users, %d posts, clean=%v\n", *numUsers, *numPosts, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	ctx := context.Background()
	rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{EnsureSecretQuestions: true})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}
	defer func() { _ = rt.Close(ctx) }()

	hasher, err := security.NewHasher(cfg.HashAlgorithm)
	if err != nil {
		log.Fatalf("Invalid hash algorithm: %v", err)
	}

	summary, err := seed.Seed(ctx, rt.DB, seed.Options{
		NumUsers:    *numUsers,
		NumPosts:    *numPosts,
		MaxDays:     *maxDays,
		ShouldClean: *shouldClean,
		Hasher:      hasher,
	})
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Printf("✨ All done! %d users, %d posts.", summary.Users, summary.Posts)
	log.Printf("📧 All seeded users have the password: %s", seed.DemoPassword)
}
