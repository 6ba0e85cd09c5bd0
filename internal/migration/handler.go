package migration

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-account-go/internal/errs"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/web"
)

type Migrator interface {
	Pending(ctx context.Context) ([]Migration, error)
	Up(ctx context.Context) ([]Migration, error)
}

type Handler struct {
	m      Migrator
	logger *zap.SugaredLogger
}

func NewHandler(m Migrator, logger *zap.SugaredLogger) *Handler {
	return &Handler{m: m, logger: logger}
}

// List is a dry run: GET /migrations.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) error {
	pending, err := h.m.Pending(r.Context())
	if err != nil {
		return errs.Service(err)
	}
	web.WriteJSON(w, http.StatusOK, pending)
	return nil
}

// Run applies pending migrations: POST /migrations. 201 when anything ran.
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) error {
	applied, err := h.m.Up(r.Context())
	if err != nil {
		return errs.Service(err)
	}
	status := http.StatusOK
	if len(applied) > 0 {
		status = http.StatusCreated
		h.logger.Infow("migrations applied", "count", len(applied))
	}
	web.WriteJSON(w, status, applied)
	return nil
}
