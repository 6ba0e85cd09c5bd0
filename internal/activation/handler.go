package activation

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-account-go/internal/activation/entity"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/web"
)

type Activator interface {
	Activate(ctx context.Context, tokenID string) (*entity.Token, error)
}

type Handler struct {
	svc    Activator
	logger *zap.SugaredLogger
}

func NewHandler(svc Activator, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Update consumes an activation token: PATCH /activations/{token_id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) error {
	t, err := h.svc.Activate(r.Context(), r.PathValue("token_id"))
	if err != nil {
		return err
	}
	h.logger.Infow("user activated", "user_id", t.UserID, "token_id", t.ID)
	web.WriteJSON(w, http.StatusOK, t)
	return nil
}
