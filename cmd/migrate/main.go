// Command migrate manages the feed database schema.
//
//	migrate up              apply pending SQL migrations
//	migrate auto            run GORM AutoMigrate for the feed models
//	migrate status          show the schema plan and pending migrations
//	migrate down <version>  revert one migration
//	migrate reset           revert everything (refused in production)
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"feedsite/internal/config"
	"feedsite/internal/database"

	"gorm.io/gorm"
)

type command struct {
	args int
	run  func(ctx context.Context, db *gorm.DB, cfg *config.Config, args []string) error
}

var commands = map[string]command{
	"up":     {run: up},
	"auto":   {run: auto},
	"status": {run: status},
	"down":   {args: 1, run: down},
	"reset":  {run: reset},
}

var errUsage = errors.New("usage: migrate [-timeout 2m] <up|auto|status|down <version>|reset>")

func main() {
	timeout := flag.Duration("timeout", 2*time.Minute, "abort after this long")
	flag.Parse()

	if err := run(*timeout, flag.Args()); err != nil {
		log.Fatal(err)
	}
}

func run(timeout time.Duration, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, ok := commands[args[0]]
	if !ok || len(args)-1 != cmd.args {
		return errUsage
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return cmd.run(ctx, db, cfg, args[1:])
}

func up(ctx context.Context, db *gorm.DB, _ *config.Config, _ []string) error {
	ran, err := database.NewMigrator(db).Up(ctx)
	if err != nil {
		return err
	}
	log.Printf("%d migration(s) applied", ran)
	return nil
}

func auto(ctx context.Context, db *gorm.DB, cfg *config.Config, _ []string) error {
	cfg.DBSchemaMode = database.SchemaModeAuto
	if err := database.ApplySchema(ctx, db, cfg); err != nil {
		return err
	}
	log.Printf("%d model(s) auto-migrated", len(database.PersistentModels()))
	return nil
}

func status(ctx context.Context, db *gorm.DB, cfg *config.Config, _ []string) error {
	st, err := database.GetSchemaStatus(ctx, db, cfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "mode:     %s (env %q)\n", st.Mode, st.Environment)
	fmt.Fprintf(os.Stdout, "sql:      %t\n", st.WillRunSQL)
	fmt.Fprintf(os.Stdout, "auto:     %t\n", st.WillRunAutoMigrate)
	fmt.Fprintf(os.Stdout, "applied:  %v\n", st.AppliedVersions)
	for _, m := range st.PendingMigrations {
		fmt.Fprintf(os.Stdout, "pending:  %s\n", m.String())
	}
	return nil
}

func down(ctx context.Context, db *gorm.DB, _ *config.Config, args []string) error {
	version, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid version %q: %w", args[0], err)
	}
	if err := database.NewMigrator(db).Down(ctx, version); err != nil {
		return err
	}
	log.Printf("reverted migration %06d", version)
	return nil
}

func reset(ctx context.Context, db *gorm.DB, cfg *config.Config, _ []string) error {
	if cfg.IsProduction() {
		return errors.New("reset drops every feed table and is not allowed in production")
	}
	if err := database.NewMigrator(db).Reset(ctx); err != nil {
		return err
	}
	log.Println("all migrations reverted")
	return nil
}
