package httpserver

import (
	"net/http"
	"strings"

	"dutyfree/internal/domain"
	"dutyfree/internal/logging"
	"dutyfree/internal/repository/role"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	guestHeader = "X-Guest-ID"
	guestCookie = "guest_id"

	identityKey = "identity"
	tokenErrKey = "token_error"
	guestKey    = "guest_id"

	guestCookieMaxAge = 365 * 24 * 60 * 60
)

// identityMiddleware resolves the bearer token, if any. A bad token leaves the
// caller anonymous; requireAuth reports the token error.
func identityMiddleware(tokens tokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.Set(tokenErrKey, domain.ErrUnauthenticated)
			c.Next()
			return
		}
		id, err := tokens.Verify(strings.TrimSpace(token))
		if err != nil {
			logging.FromGin(c).Debug("rejected bearer token", zap.Error(err))
			c.Set(tokenErrKey, err)
			c.Next()
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

// guestMiddleware attaches the device guest id from the X-Guest-ID header or
// the guest_id cookie, issuing a new one to anonymous callers without a valid id.
func guestMiddleware(guests guestIDs) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(guestHeader)
		if raw == "" {
			raw, _ = c.Cookie(guestCookie)
		}
		id, err := guests.Resolve(raw)
		if err != nil {
			if identityFrom(c).Authenticated() {
				c.Next()
				return
			}
			id = guests.Issue()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(guestCookie, id, guestCookieMaxAge, "/", "", false, true)
		}
		c.Set(guestKey, id)
		c.Header(guestHeader, id)
		c.Next()
	}
}

func requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if identityFrom(c).Authenticated() {
			c.Next()
			return
		}
		if v, ok := c.Get(tokenErrKey); ok {
			if err, ok := v.(error); ok {
				respondError(c, err)
				return
			}
		}
		respondError(c, domain.ErrUnauthenticated)
	}
}

func requireAdmin(roles roleChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := roles.HasRole(c.Request.Context(), identityFrom(c).UserID, role.Admin)
		if err != nil {
			respondError(c, err)
			return
		}
		if !ok {
			respondError(c, domain.ErrForbidden)
			return
		}
		c.Next()
	}
}

func identityFrom(c *gin.Context) domain.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(domain.Identity); ok {
			return id
		}
	}
	return domain.Identity{}
}

func guestIDFrom(c *gin.Context) string {
	return c.GetString(guestKey)
}
