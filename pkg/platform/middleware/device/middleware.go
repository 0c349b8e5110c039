package device

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// ClientIDHeader lets non-browser clients pin their client id explicitly.
const ClientIDHeader = "X-Client-ID"

const cookieMaxAge = 30 * 24 * time.Hour

// Config controls the client id cookie.
type Config struct {
	CookieName string
	Secure     bool
}

// ClientID resolves the onboarding client id from the header or cookie and
// issues a new cookie when neither is present. Values that are not UUIDs are
// replaced, so a tampered cookie can only ever address a fresh draft.
func ClientID(cfg Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID := r.Header.Get(ClientIDHeader)
			if !valid(clientID) {
				clientID = ""
				if c, err := r.Cookie(cfg.CookieName); err == nil && valid(c.Value) {
					clientID = c.Value
				}
			}
			if clientID == "" {
				clientID = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.CookieName,
					Value:    clientID,
					Path:     "/",
					MaxAge:   int(cookieMaxAge.Seconds()),
					HttpOnly: true,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			next.ServeHTTP(w, r.WithContext(WithClientID(r.Context(), clientID)))
		})
	}
}

func valid(v string) bool {
	if v == "" {
		return false
	}
	_, err := uuid.Parse(v)
	return err == nil
}
