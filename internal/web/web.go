// Package web holds the HTTP helpers shared by the domain handlers: JSON
// encoding, request decoding and the session cookie.
package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ovaphlow/pitchfork/service-account-go/internal/errs"
)

// HandlerFunc is an http handler that reports failures instead of writing
// them; the router turns the error into the response envelope.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

const maxBodyBytes = 1 << 20

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// DecodeJSON reads a JSON body into v. Unknown fields are rejected.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errs.Validation("Request body is empty", "Send a JSON body with the required fields")
		}
		return errs.Validation("Request body is not valid JSON", "Verify the request body and try again")
	}
	return nil
}

// ValidationFailed converts a field validation error to a ValidationError.
func ValidationFailed(err error) error {
	return errs.Validation(err.Error(), "Verify the submitted data and try again")
}

const (
	SessionCookie = "session_id"
	invalidValue  = "invalid"
)

// Cookies writes the session cookie.
type Cookies struct {
	Secure bool
	MaxAge time.Duration
}

// SessionToken returns the session token carried by the request, if any.
func SessionToken(r *http.Request) (string, bool) {
	c, err := r.Cookie(SessionCookie)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

func (c Cookies) SetSession(w http.ResponseWriter, token string) {
	c.set(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(c.MaxAge / time.Second),
		Secure:   c.Secure,
		HttpOnly: true,
	})
}

// ClearSession instructs the client to drop its session cookie.
func (c Cookies) ClearSession(w http.ResponseWriter) {
	c.set(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    invalidValue,
		Path:     "/",
		MaxAge:   -1,
		Secure:   c.Secure,
		HttpOnly: true,
	})
}

// set replaces any session cookie already queued on this response so the
// client only ever sees the last decision.
func (c Cookies) set(w http.ResponseWriter, cookie *http.Cookie) {
	h := w.Header()
	var kept []string
	for _, v := range h.Values("Set-Cookie") {
		if !strings.HasPrefix(v, SessionCookie+"=") {
			kept = append(kept, v)
		}
	}
	h.Del("Set-Cookie")
	for _, v := range kept {
		h.Add("Set-Cookie", v)
	}
	http.SetCookie(w, cookie)
}

// NoStore disables caching of the response.
func NoStore(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store, no-cache, max-age=0, must-revalidate")
}
