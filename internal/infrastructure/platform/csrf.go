// internal/infrastructure/platform/csrf.go
package platform

import (
	"net/http"
	"net/url"
	"sync"
)

// AntiForgeryToken returns the URL-decoded value of the cookie called name,
// or an empty string when it is missing or cannot be decoded.
func AntiForgeryToken(cookies []*http.Cookie, name string) string {
	for _, cookie := range cookies {
		if cookie.Name != name {
			continue
		}
		value, err := url.PathUnescape(cookie.Value)
		if err != nil {
			return ""
		}
		return value
	}
	return ""
}

// Credentials carries the shopper's platform cookies for one gateway request.
// Cookies the platform sets while serving the request are merged in, so later
// calls in the same flow see them, and are kept for relaying to the browser.
type Credentials struct {
	mu      sync.Mutex
	cookies []*http.Cookie
	updated []*http.Cookie
}

// NewCredentials copies the given cookies
func NewCredentials(cookies []*http.Cookie) *Credentials {
	c := &Credentials{}
	for _, cookie := range cookies {
		if cookie == nil || cookie.Name == "" {
			continue
		}
		copied := *cookie
		c.cookies = append(c.cookies, &copied)
	}
	return c
}

// Cookies returns the cookies to send upstream
func (c *Credentials) Cookies() []*http.Cookie {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*http.Cookie, len(c.cookies))
	copy(out, c.cookies)
	return out
}

// Updated returns the cookies set by the platform during this request
func (c *Credentials) Updated() []*http.Cookie {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*http.Cookie, len(c.updated))
	copy(out, c.updated)
	return out
}

// AntiForgeryToken reads the token from the current cookie set
func (c *Credentials) AntiForgeryToken(name string) string {
	return AntiForgeryToken(c.Cookies(), name)
}

func (c *Credentials) absorb(set []*http.Cookie) {
	if len(set) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, cookie := range set {
		c.updated = upsertCookie(c.updated, cookie)
		if cookie.MaxAge < 0 {
			c.cookies = dropCookie(c.cookies, cookie.Name)
			continue
		}
		c.cookies = upsertCookie(c.cookies, &http.Cookie{Name: cookie.Name, Value: cookie.Value})
	}
}

func upsertCookie(list []*http.Cookie, cookie *http.Cookie) []*http.Cookie {
	for i, existing := range list {
		if existing.Name == cookie.Name {
			list[i] = cookie
			return list
		}
	}
	return append(list, cookie)
}

func dropCookie(list []*http.Cookie, name string) []*http.Cookie {
	out := list[:0]
	for _, cookie := range list {
		if cookie.Name != name {
			out = append(out, cookie)
		}
	}
	return out
}
