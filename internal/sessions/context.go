package sessions

import (
	"context"
	"net/http"
	"time"
)

type key struct{}

var sessionKey key

func NewContext(ctx context.Context, id ID) context.Context {
	return context.WithValue(ctx, sessionKey, id)
}

func FromContext(ctx context.Context) (ID, bool) {
	id, ok := ctx.Value(sessionKey).(ID)
	return id, ok
}

const cookieName = "session_id"

var (
	minute = time.Second * 60
	hour   = minute * 60
	day    = hour * 24
)

// FromCookies only accepts ids generated by NewID, so a cookie can not
// name a telegram session.
func FromCookies(cookies []*http.Cookie) (ID, bool) {
	for _, cookie := range cookies {
		if cookie.Name == cookieName && isNanoID(cookie.Value) {
			return ID(cookie.Value), true
		}
	}
	return "", false
}

func isNanoID(value string) bool {
	if len(value) != 21 {
		return false
	}
	for _, c := range value {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_', c == '-':
		default:
			return false
		}
	}
	return true
}

func ToCookies(id ID, secure bool) []*http.Cookie {
	return []*http.Cookie{
		{
			Name:     cookieName,
			Value:    string(id),
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			Expires:  time.Now().Add(30 * day),
			Secure:   secure,
		},
	}
}
