// Package middleware contains the request-scoped gates that run before the
// route handlers.
package middleware

import (
	"encoding/base64"
	"strings"

	"github.com/gin-gonic/gin"

	"hoax-server/internal/managers"
	"hoax-server/internal/schemas"
	"hoax-server/internal/utils"
)

const (
	bearerPrefix = "Bearer "
	basicPrefix  = "Basic "
)

// Authenticate resolves the Authorization header to a request principal and
// attaches it to the context. It never rejects a request on its own: routes
// that require a principal check for its absence and signal accordingly.
//
// A live bearer token always has its sliding window refreshed, even on routes
// that would proceed without authentication. A stale or unknown token simply
// yields the anonymous principal. Basic credentials are only decoded here;
// the owning route performs the lookup, password and ownership checks.
func Authenticate(tokenMgr managers.TokenMgr) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := &schemas.Principal{Kind: schemas.PrincipalAnonymous}
		header := c.GetHeader("Authorization")

		switch {
		case strings.HasPrefix(header, bearerPrefix):
			token := strings.TrimPrefix(header, bearerPrefix)
			user, err := tokenMgr.VerifyToken(c.Request.Context(), token)
			if err != nil {
				utils.LogMessageWithFieldsAndError(c, "error", "Error verifying session token", err)
			} else if user != nil {
				principal = &schemas.Principal{Kind: schemas.PrincipalBearer, User: user}
				c.Set(utils.BearerTokenKey.String(), token)
			}

		case strings.HasPrefix(header, basicPrefix):
			if email, password, ok := decodeBasic(strings.TrimPrefix(header, basicPrefix)); ok {
				principal = &schemas.Principal{
					Kind:     schemas.PrincipalBasic,
					Email:    email,
					Password: password,
				}
			}
		}

		c.Set(utils.PrincipalKey.String(), principal)
		c.Next()
	}
}

func decodeBasic(encoded string) (string, string, bool) {
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", "", false
	}

	email, password, found := strings.Cut(string(decoded), ":")
	if !found || email == "" {
		return "", "", false
	}

	return email, password, true
}
