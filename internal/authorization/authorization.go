// Package authorization decides whether a caller may perform an action,
// based solely on the feature strings the caller holds.
package authorization

import (
	"context"
	"slices"

	sessionentity "github.com/ovaphlow/pitchfork/service-account-go/internal/session/entity"
	userentity "github.com/ovaphlow/pitchfork/service-account-go/internal/user/entity"
)

const (
	FeatureReadActivationToken = "read:activation_token"
	FeatureCreateSession       = "create:session"
	FeatureReadSession         = "read:session"
	FeatureCreateUser          = "create:user"
)

// AnonymousFeatures is granted to every request without a valid session.
// It is never persisted.
var AnonymousFeatures = []string{
	FeatureReadActivationToken,
	FeatureCreateSession,
	FeatureCreateUser,
}

// ActivatedFeatures replaces the feature set of a user once activated.
var ActivatedFeatures = []string{
	FeatureCreateSession,
	FeatureReadSession,
}

// Caller is whoever issued the request: Anonymous or Authenticated.
type Caller interface {
	Features() []string
}

// Anonymous is a caller without a session.
type Anonymous struct{}

func (Anonymous) Features() []string { return AnonymousFeatures }

// Authenticated is a caller resolved from a valid session. Renewed is set
// when the session was already renewed while resolving this request.
type Authenticated struct {
	User    *userentity.User
	Session *sessionentity.Session
	Renewed bool
}

func (a Authenticated) Features() []string {
	if a.User == nil {
		return nil
	}
	return a.User.Features
}

// Can reports whether the caller holds feature.
func Can(c Caller, feature string) bool {
	if c == nil {
		return false
	}
	return slices.Contains(c.Features(), feature)
}

type callerKey struct{}

// WithCaller attaches the resolved caller to ctx.
func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

// CallerFrom returns the caller attached to ctx, or Anonymous when none was.
func CallerFrom(ctx context.Context) Caller {
	if c, ok := ctx.Value(callerKey{}).(Caller); ok {
		return c
	}
	return Anonymous{}
}
