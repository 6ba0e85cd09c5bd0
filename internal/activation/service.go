// Package activation issues single-use activation tokens at registration
// and consumes them to unlock login for the account.
package activation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ovaphlow/pitchfork/service-account-go/internal/activation/entity"
	tokenrepo "github.com/ovaphlow/pitchfork/service-account-go/internal/activation/repo"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/authorization"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/email"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/errs"
	userentity "github.com/ovaphlow/pitchfork/service-account-go/internal/user/entity"
	userrepo "github.com/ovaphlow/pitchfork/service-account-go/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-account-go/pkg/database"
)

// Store is the persistence the service runs on. *database.Gateway
// satisfies it.
type Store interface {
	database.Queryer
	WithTx(ctx context.Context, fn func(ctx context.Context, q database.Queryer) error) error
}

const EmailSubject = "Active your account on the ExternBR"

type Service struct {
	store  Store
	tokens *tokenrepo.TokenRepo
	users  *userrepo.UserRepo
	mailer email.Sender
	from   string
	origin string
	now    func() time.Time
}

// NewService builds the service. from is the sender of activation mail and
// origin the public web origin used in its links.
func NewService(store Store, mailer email.Sender, from, origin string) *Service {
	return &Service{
		store:  store,
		tokens: tokenrepo.NewTokenRepo(store),
		users:  userrepo.NewUserRepo(store),
		mailer: mailer,
		from:   from,
		origin: strings.TrimRight(origin, "/"),
		now:    time.Now,
	}
}

func errTokenNotFound() error {
	return errs.NotFound("Activation token not exist or expired", "Do a new register")
}

func errAlreadyActivated() error {
	return errs.Forbidden("You cannot activate an already activated user", "Contact support if you think this is a mistake")
}

// Create issues a token for userID expiring after entity.Expiration.
func (s *Service) Create(ctx context.Context, userID uuid.UUID) (*entity.Token, error) {
	return s.tokens.Create(ctx, userID, s.now().Add(entity.Expiration))
}

// FindOneByUserID returns the latest token issued to the user, used or not.
func (s *Service) FindOneByUserID(ctx context.Context, userID uuid.UUID) (*entity.Token, error) {
	t, err := s.tokens.GetLatestByUserID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errTokenNotFound()
	}
	return t, err
}

// FindOneValidByTokenID fails with the same NotFound error for unknown,
// malformed, expired and used tokens.
func (s *Service) FindOneValidByTokenID(ctx context.Context, tokenID string) (*entity.Token, error) {
	id, err := uuid.Parse(tokenID)
	if err != nil {
		return nil, errTokenNotFound()
	}
	t, err := s.tokens.GetValid(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errTokenNotFound()
	}
	return t, err
}

// MarkTokenAsUsed consumes a valid token. A token can be consumed once.
func (s *Service) MarkTokenAsUsed(ctx context.Context, tokenID string) (*entity.Token, error) {
	return markUsed(ctx, s.tokens, tokenID)
}

// ActivateUserByUserID replaces the feature set of a pending user with the
// activated one.
func (s *Service) ActivateUserByUserID(ctx context.Context, userID uuid.UUID) (*userentity.User, error) {
	return activateUser(ctx, s.users, userID)
}

// Activate consumes the token and activates its owner in one transaction.
// When the owner is already active the transaction rolls back and the token
// stays unused.
func (s *Service) Activate(ctx context.Context, tokenID string) (*entity.Token, error) {
	var token *entity.Token
	err := s.store.WithTx(ctx, func(ctx context.Context, q database.Queryer) error {
		t, err := markUsed(ctx, tokenrepo.NewTokenRepo(q), tokenID)
		if err != nil {
			return err
		}
		if _, err := activateUser(ctx, userrepo.NewUserRepo(q), t.UserID); err != nil {
			return err
		}
		token = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return token, nil
}

func markUsed(ctx context.Context, tokens *tokenrepo.TokenRepo, tokenID string) (*entity.Token, error) {
	id, err := uuid.Parse(tokenID)
	if err != nil {
		return nil, errTokenNotFound()
	}
	t, err := tokens.MarkUsed(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errTokenNotFound()
	}
	return t, err
}

func activateUser(ctx context.Context, users *userrepo.UserRepo, userID uuid.UUID) (*userentity.User, error) {
	u, err := users.GetByID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFound("Requested user ID was not founded", "Verify if requested user ID is right")
	}
	if err != nil {
		return nil, err
	}
	if !u.HasFeature(authorization.FeatureReadActivationToken) {
		return nil, errAlreadyActivated()
	}
	return users.SetFeatures(ctx, userID, authorization.ActivatedFeatures)
}

// ActivationURL is the link mailed to the user.
func (s *Service) ActivationURL(t *entity.Token) string {
	return s.origin + "/register/active/" + t.ID.String()
}

// SendEmailToUser mails the activation link. Delivery failures are returned
// as ServiceError.
func (s *Service) SendEmailToUser(ctx context.Context, u *userentity.User, t *entity.Token) error {
	text := fmt.Sprintf("%s, click on the link below to active your account on the Exchange\n\n%s\n\nAtt,\nExchange Team\n\n",
		u.Username, s.ActivationURL(t))
	err := s.mailer.Send(ctx, email.Message{
		From:    s.from,
		To:      u.Email,
		Subject: EmailSubject,
		Text:    text,
	})
	if err != nil {
		return errs.Service(err)
	}
	return nil
}
