// Command migrate applies pending schema migrations and exits. With -dry-run
// it only lists them.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ovaphlow/pitchfork/service-account-go/internal/config"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/migration"
	"github.com/ovaphlow/pitchfork/service-account-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-account-go/pkg/utilities"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "list pending migrations without applying them")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.FromEnv()

	lg, err := utilities.Init(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()
	sugar := lg.Sugar()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		sugar.Fatalf("db connect %s: %v", cfg.Database.Redacted(), err)
	}
	defer db.Close()

	runner, err := migration.NewRunner(db.DB)
	if err != nil {
		sugar.Fatalf("migrations: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *dryRun {
		pending, err := runner.Pending(ctx)
		if err != nil {
			sugar.Fatalf("%v", err)
		}
		for _, m := range pending {
			sugar.Infow("pending migration", "version", m.Version, "name", m.Name)
		}
		return
	}

	applied, err := runner.Up(ctx)
	if err != nil {
		sugar.Fatalf("%v", err)
	}
	sugar.Infow("migrations applied", "count", len(applied))
}
