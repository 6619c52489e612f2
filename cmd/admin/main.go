// Package main provides account and reference data utilities for feedsite.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"feedsite/internal/bootstrap"
	"feedsite/internal/config"
	"feedsite/internal/repository"
	"feedsite/internal/seed"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage:")
		fmt.Println("  go run ./cmd/admin/main.go list-users [limit]        - List registered users")
		fmt.Println("  go run ./cmd/admin/main.go find-user <login>         - Show one user")
		fmt.Println("  go run ./cmd/admin/main.go list-questions            - List secret questions")
		fmt.Println("  go run ./cmd/admin/main.go add-question <text>...    - Add secret questions")
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}
	defer func() { _ = rt.Close(ctx) }()

	users := repository.NewUserRepository(rt.DB)
	questions := repository.NewSecretQuestionRepository(rt.DB)

	command := os.Args[1]

	switch command {
	case "list-users":
		limit := 50
		if len(os.Args) > 2 {
			if limit, err = strconv.Atoi(os.Args[2]); err != nil || limit <= 0 {
				log.Fatalf("Invalid limit %q", os.Args[2])
			}
		}
		list, err := users.List(ctx, limit, 0)
		if err != nil {
			log.Fatalf("Failed to fetch users: %v", err)
		}
		if len(list) == 0 {
			fmt.Println("No users found")
			return
		}
		fmt.Println("\n📋 Users:")
		fmt.Println("─────────────────────────────────────")
		for _, u := range list {
			fmt.Printf("ID: %d | Login: %s | Registered: %s\n", u.ID, u.Login, u.CreatedAt.Format("2006-01-02 15:04"))
		}
		fmt.Println("─────────────────────────────────────")

	case "find-user":
		if len(os.Args) < 3 {
			fmt.Println("Usage: go run ./cmd/admin/main.go find-user <login>")
			os.Exit(1)
		}
		u, err := users.GetByLogin(ctx, os.Args[2])
		if err != nil {
			log.Fatalf("Database error: %v", err)
		}
		if u == nil {
			fmt.Printf("User %s not found\n", os.Args[2])
			os.Exit(1)
		}
		fmt.Printf("ID: %d | Login: %s | Avatar: %s | Question ID: %d\n", u.ID, u.Login, u.Avatar, u.SecretQuestionID)

	case "list-questions":
		list, err := questions.List(ctx)
		if err != nil {
			log.Fatalf("Failed to fetch questions: %v", err)
		}
		for _, q := range list {
			fmt.Printf("%d. %s\n", q.ID, q.Question)
		}

	case "add-question":
		if len(os.Args) < 3 {
			fmt.Println("Usage: go run ./cmd/admin/main.go add-question <text>...")
			os.Exit(1)
		}
		added, err := seed.EnsureSecretQuestions(ctx, rt.DB, rt.Redis, os.Args[2:])
		if err != nil {
			log.Fatalf("Failed to add questions: %v", err)
		}
		fmt.Printf("✅ Added %d question(s)\n", added)

	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
}
