package router

import (
	"net/http"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-account-go/internal/activation"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/authorization"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/errs"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/migration"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/session"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/status"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/user"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/web"
)

// Prefix is where the API is mounted.
const Prefix = "/api/v1"

// boundary turns handler errors into the JSON error envelope.
type boundary struct {
	logger  *zap.SugaredLogger
	cookies web.Cookies
}

func (b *boundary) fail(w http.ResponseWriter, r *http.Request, err error) {
	e := errs.Public(err)
	switch e.Kind {
	case errs.KindInternal, errs.KindService:
		b.logger.Errorw("request failed",
			"request_id", RequestID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"err", err,
		)
	case errs.KindUnauthorized:
		b.cookies.ClearSession(w)
	}
	web.WriteJSON(w, e.StatusCode(), e)
}

func (b *boundary) handle(h web.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			b.fail(w, r, err)
		}
	}
}

// Require gates h behind feature.
func Require(feature string, h web.HandlerFunc) web.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		if !authorization.Can(authorization.CallerFrom(r.Context()), feature) {
			return errs.Forbidden("You're not allowed to do this action", "Verify if user have feature:"+feature)
		}
		return h(w, r)
	}
}

// Methods dispatches on the request method and answers anything else with
// a MethodNotAllowedError.
type Methods map[string]web.HandlerFunc

func (m Methods) serve(w http.ResponseWriter, r *http.Request) error {
	if h, ok := m[r.Method]; ok {
		return h(w, r)
	}
	w.Header().Set("Allow", m.allow())
	return errs.MethodNotAllowed()
}

func (m Methods) allow() string {
	verbs := make([]string, 0, len(m))
	for v := range m {
		verbs = append(verbs, v)
	}
	sort.Strings(verbs)
	return strings.Join(verbs, ", ")
}

// Deps is everything the routes are built from.
type Deps struct {
	Logger     *zap.SugaredLogger
	Cookies    web.Cookies
	Sessions   SessionResolver
	Users      UserLoader
	User       *user.Handler
	Session    *session.Handler
	Activation *activation.Handler
	Status     *status.Handler
	Migration  *migration.Handler
}

// RegisterRoutes mounts HTTP handlers using the standard library's http.ServeMux.
func RegisterRoutes(d Deps) http.Handler {
	b := &boundary{logger: d.Logger, cookies: d.Cookies}
	mux := http.NewServeMux()
	route := func(pattern string, m Methods) {
		mux.HandleFunc(Prefix+pattern, b.handle(m.serve))
	}

	route("/users", Methods{
		http.MethodPost: Require(authorization.FeatureCreateUser, d.User.Create),
	})
	route("/users/{username}", Methods{
		http.MethodGet:   d.User.Get,
		http.MethodPatch: d.User.Update,
	})
	route("/user", Methods{
		http.MethodGet: Require(authorization.FeatureReadSession, d.User.Current),
	})
	route("/sessions", Methods{
		http.MethodPost:   Require(authorization.FeatureCreateSession, d.Session.Create),
		http.MethodDelete: d.Session.Delete,
	})
	route("/activations/{token_id}", Methods{
		http.MethodPatch: Require(authorization.FeatureReadActivationToken, d.Activation.Update),
	})
	route("/status", Methods{
		http.MethodGet: d.Status.Get,
	})
	route("/migrations", Methods{
		http.MethodGet:  d.Migration.List,
		http.MethodPost: d.Migration.Run,
	})

	var h http.Handler = mux
	h = CallerMiddleware(d.Sessions, d.Users, b)(h)
	h = SecurityHeadersMiddleware()(h)
	h = LoggingMiddleware(d.Logger)(h)
	h = RequestIDMiddleware()(h)
	return h
}
