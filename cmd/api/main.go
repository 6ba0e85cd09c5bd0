package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ovaphlow/pitchfork/service-account-go/internal/activation"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/authentication"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/config"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/email"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/migration"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/password"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/router"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/session"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/status"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/user"
	"github.com/ovaphlow/pitchfork/service-account-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-account-go/pkg/utilities"
)

func main() {
	// best-effort: without a .env the real environment is used
	_ = godotenv.Load()
	cfg := config.FromEnv()

	lg, err := utilities.Init(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Infow("starting service-account-go", "env", cfg.Env, "addr", cfg.HTTPAddr)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		sugar.Fatalf("db connect %s: %v", cfg.Database.Redacted(), err)
	}
	defer db.Close()
	gw := database.NewGateway(db)

	mailer, err := email.NewSender(cfg.Email)
	if err != nil {
		sugar.Fatalf("email: %v", err)
	}
	migrator, err := migration.NewRunner(db.DB)
	if err != nil {
		sugar.Fatalf("migrations: %v", err)
	}

	hasher := password.NewHasher(cfg.PasswordPepper, cfg.IsProduction())
	users := user.NewUserService(gw, hasher)
	sessions := session.NewSessionService(gw)
	activations := activation.NewService(gw, mailer, cfg.Email.From(), cfg.Origin)
	auth, err := authentication.NewService(users, hasher)
	if err != nil {
		sugar.Fatalf("authentication: %v", err)
	}
	cookies := cfg.Cookies()

	handler := router.RegisterRoutes(router.Deps{
		Logger:     sugar,
		Cookies:    cookies,
		Sessions:   sessions,
		Users:      users,
		User:       user.NewHandler(users, activations, sessions, cookies, sugar),
		Session:    session.NewHandler(sessions, auth, cookies, sugar),
		Activation: activation.NewHandler(activations, sugar),
		Status:     status.NewHandler(status.NewService(gw), sugar),
		Migration:  migration.NewHandler(migrator, sugar),
	})
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()
	sugar.Info("service is running; press Ctrl+C to stop")

	<-ctx.Done()
	sugar.Info("shutting down")

	doneCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer cancel()

	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}
	sugar.Info("goodbye")
}
