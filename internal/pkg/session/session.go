// internal/pkg/session/session.go
package session

import (
	"net/http"

	"github.com/lucascapelli/O-Especialista.Carros/internal/infrastructure/platform"
)

// Session is one shopper as seen by the gateway: the gateway session id
// that scopes Redis state plus the platform cookies forwarded upstream.
type Session struct {
	ID          string
	Credentials *platform.Credentials
}

// New builds a session from the browser cookies, leaving out the gateway's
// own cookie so it never reaches the platform.
func New(id string, cookies []*http.Cookie, gatewayCookie string) *Session {
	forwarded := make([]*http.Cookie, 0, len(cookies))
	for _, cookie := range cookies {
		if cookie.Name == gatewayCookie {
			continue
		}
		forwarded = append(forwarded, cookie)
	}
	return &Session{
		ID:          id,
		Credentials: platform.NewCredentials(forwarded),
	}
}
