package router

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-account-go/internal/authorization"
	sessionentity "github.com/ovaphlow/pitchfork/service-account-go/internal/session/entity"
	userentity "github.com/ovaphlow/pitchfork/service-account-go/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/web"
	"github.com/ovaphlow/pitchfork/service-account-go/pkg/utilities"
)

// loggingResponseWriter wraps http.ResponseWriter to capture status and size.
type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.status = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	if lrw.status == 0 {
		lrw.status = http.StatusOK
	}
	n, err := lrw.ResponseWriter.Write(b)
	lrw.size += n
	return n, err
}

type requestIDKey struct{}

const RequestIDHeader = "X-Request-Id"

// RequestIDMiddleware propagates the caller's X-Request-Id or assigns a new
// one.
func RequestIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if id == "" || len(id) > 64 {
				id = utilities.NewRequestID()
			}
			w.Header().Set(RequestIDHeader, id)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
		})
	}
}

// RequestID returns the id assigned by RequestIDMiddleware.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// LoggingMiddleware logs requests at debug level using the provided sugared logger.
func LoggingMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lrw := &loggingResponseWriter{ResponseWriter: w}
			next.ServeHTTP(lrw, r)
			status := lrw.status
			if status == 0 {
				status = http.StatusOK
			}
			logger.Debugw("http request",
				"request_id", RequestID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"status", status,
				"duration_ms", float64(time.Since(start).Microseconds())/1000.0,
				"size", lrw.size,
			)
		})
	}
}

// SecurityHeadersMiddleware sets common HTTP security headers.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "no-referrer-when-downgrade")
			h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
			if h.Get("Content-Security-Policy") == "" {
				h.Set("Content-Security-Policy", "default-src 'self'; object-src 'none'; base-uri 'self';")
			}
			// only meaningful over TLS
			if r.TLS != nil {
				h.Set("Strict-Transport-Security", "max-age=2592000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SessionResolver validates and renews the session behind a cookie.
type SessionResolver interface {
	FindOneValidByToken(ctx context.Context, token string) (*sessionentity.Session, error)
	RenewIfStale(ctx context.Context, sess *sessionentity.Session) (*sessionentity.Session, bool, error)
}

type UserLoader interface {
	FindOneByID(ctx context.Context, id uuid.UUID) (*userentity.User, error)
}

// CallerMiddleware attaches the caller to the request context. Requests
// without a session cookie are Anonymous. A cookie that does not resolve to
// a valid session fails the request with 401 and the cookie is cleared.
// Sessions past half of their window are renewed and the cookie re-issued.
func CallerMiddleware(sessions SessionResolver, users UserLoader, b *boundary) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := web.SessionToken(r)
			if !ok {
				next.ServeHTTP(w, r.WithContext(authorization.WithCaller(r.Context(), authorization.Anonymous{})))
				return
			}
			caller, err := resolve(r.Context(), sessions, users, token)
			if err != nil {
				b.fail(w, r, err)
				return
			}
			if caller.Renewed {
				b.cookies.SetSession(w, caller.Session.Token)
			}
			next.ServeHTTP(w, r.WithContext(authorization.WithCaller(r.Context(), caller)))
		})
	}
}

func resolve(ctx context.Context, sessions SessionResolver, users UserLoader, token string) (authorization.Authenticated, error) {
	sess, err := sessions.FindOneValidByToken(ctx, token)
	if err != nil {
		return authorization.Authenticated{}, err
	}
	u, err := users.FindOneByID(ctx, sess.UserID)
	if err != nil {
		return authorization.Authenticated{}, err
	}
	sess, renewed, err := sessions.RenewIfStale(ctx, sess)
	if err != nil {
		return authorization.Authenticated{}, err
	}
	return authorization.Authenticated{User: u, Session: sess, Renewed: renewed}, nil
}
