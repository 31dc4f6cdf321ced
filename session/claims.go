package session

import (
	"github.com/golang-jwt/jwt/v5"
)

// AuthorityID extracts the authority identifier from a bearer token
// for display. The signature is deliberately not verified here; the
// server validates the token on every authenticated call.
func AuthorityID(token string) string {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return ""
	}
	sub, err := parsed.Claims.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}
