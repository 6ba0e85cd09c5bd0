package session

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-account-go/internal/authorization"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/errs"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/session/entity"
	userentity "github.com/ovaphlow/pitchfork/service-account-go/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/web"
)

// Sessions is the part of SessionService the handler needs.
type Sessions interface {
	Create(ctx context.Context, userID uuid.UUID) (*entity.Session, error)
	ExpireByID(ctx context.Context, id uuid.UUID) (*entity.Session, error)
}

type Authenticator interface {
	GetAuthenticatedUser(ctx context.Context, email, password string) (*userentity.User, error)
}

// Handler exposes login and logout.
type Handler struct {
	sessions Sessions
	auth     Authenticator
	cookies  web.Cookies
	logger   *zap.SugaredLogger
}

func NewHandler(sessions Sessions, auth Authenticator, cookies web.Cookies, logger *zap.SugaredLogger) *Handler {
	return &Handler{sessions: sessions, auth: auth, cookies: cookies, logger: logger}
}

func errCannotLogin() error {
	return errs.Forbidden("You don't have permission to login", "Verify if your account is activated or contact support")
}

// Create logs the caller in: POST /sessions.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) error {
	var in entity.Credentials
	if err := web.DecodeJSON(w, r, &in); err != nil {
		return err
	}
	if err := in.Validate(); err != nil {
		return web.ValidationFailed(err)
	}

	u, err := h.auth.GetAuthenticatedUser(r.Context(), in.Email, in.Password)
	if err != nil {
		return err
	}
	if !u.HasFeature(authorization.FeatureCreateSession) {
		return errCannotLogin()
	}

	sess, err := h.sessions.Create(r.Context(), u.ID)
	if err != nil {
		return err
	}
	h.logger.Debugw("session created", "user_id", u.ID, "session_id", sess.ID)

	h.cookies.SetSession(w, sess.Token)
	web.WriteJSON(w, http.StatusCreated, sess)
	return nil
}

// Delete logs the caller out: DELETE /sessions. The row is kept with its
// expiry moved to now.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) error {
	caller, ok := authorization.CallerFrom(r.Context()).(authorization.Authenticated)
	if !ok || caller.Session == nil {
		return ErrInvalidSession()
	}

	sess, err := h.sessions.ExpireByID(r.Context(), caller.Session.ID)
	if err != nil {
		return err
	}
	h.logger.Debugw("session expired", "user_id", sess.UserID, "session_id", sess.ID)

	h.cookies.ClearSession(w)
	web.WriteJSON(w, http.StatusOK, sess)
	return nil
}
