package user

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	activationentity "github.com/ovaphlow/pitchfork/service-account-go/internal/activation/entity"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/authorization"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/errs"
	sessionentity "github.com/ovaphlow/pitchfork/service-account-go/internal/session/entity"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/web"
)

type Users interface {
	Create(ctx context.Context, in entity.CreateInput) (*entity.User, error)
	Update(ctx context.Context, username string, in entity.UpdateInput) (*entity.User, error)
	FindOneByUsername(ctx context.Context, username string) (*entity.User, error)
}

// Activations issues and mails the token sent at registration.
type Activations interface {
	Create(ctx context.Context, userID uuid.UUID) (*activationentity.Token, error)
	SendEmailToUser(ctx context.Context, u *entity.User, t *activationentity.Token) error
}

type SessionRenewer interface {
	Renew(ctx context.Context, id uuid.UUID) (*sessionentity.Session, error)
}

// Handler exposes HTTP endpoints for the user directory.
type Handler struct {
	users       Users
	activations Activations
	sessions    SessionRenewer
	cookies     web.Cookies
	logger      *zap.SugaredLogger
}

func NewHandler(users Users, activations Activations, sessions SessionRenewer, cookies web.Cookies, logger *zap.SugaredLogger) *Handler {
	return &Handler{
		users:       users,
		activations: activations,
		sessions:    sessions,
		cookies:     cookies,
		logger:      logger,
	}
}

// Create registers an account and mails its activation link: POST /users.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) error {
	var in entity.CreateInput
	if err := web.DecodeJSON(w, r, &in); err != nil {
		return err
	}
	if err := in.Validate(); err != nil {
		return web.ValidationFailed(err)
	}

	u, err := h.users.Create(r.Context(), in)
	if err != nil {
		return err
	}
	token, err := h.activations.Create(r.Context(), u.ID)
	if err != nil {
		return err
	}
	if err := h.activations.SendEmailToUser(r.Context(), u, token); err != nil {
		h.logger.Warnw("activation email not sent", "user_id", u.ID, "err", err)
		return err
	}
	h.logger.Infow("user registered", "user_id", u.ID, "username", u.Username)

	web.WriteJSON(w, http.StatusCreated, u)
	return nil
}

// Get returns a user by username: GET /users/{username}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) error {
	u, err := h.users.FindOneByUsername(r.Context(), r.PathValue("username"))
	if err != nil {
		return err
	}
	web.WriteJSON(w, http.StatusOK, u)
	return nil
}

// Update applies a partial update: PATCH /users/{username}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) error {
	var in entity.UpdateInput
	if err := web.DecodeJSON(w, r, &in); err != nil {
		return err
	}
	if in.Empty() {
		return errs.Validation("No field to update was sent", "Send at least one of username, email or password")
	}
	if err := in.Validate(); err != nil {
		return web.ValidationFailed(err)
	}

	u, err := h.users.Update(r.Context(), r.PathValue("username"), in)
	if err != nil {
		return err
	}
	web.WriteJSON(w, http.StatusOK, u)
	return nil
}

// Current returns the logged in user and renews the session: GET /user.
// A session already renewed by the caller middleware is not renewed again.
func (h *Handler) Current(w http.ResponseWriter, r *http.Request) error {
	caller, ok := authorization.CallerFrom(r.Context()).(authorization.Authenticated)
	if !ok || caller.User == nil || caller.Session == nil {
		return errs.Unauthorized("User session not valid", "Verify if user is logged and try again")
	}

	sess := caller.Session
	if !caller.Renewed {
		var err error
		if sess, err = h.sessions.Renew(r.Context(), caller.Session.ID); err != nil {
			return err
		}
	}

	web.NoStore(w)
	h.cookies.SetSession(w, sess.Token)
	web.WriteJSON(w, http.StatusOK, caller.User)
	return nil
}
