package middleware

import (
	"acumenus/startpage-api/internal/apperr"
	"acumenus/startpage-api/internal/httpx"
	"acumenus/startpage-api/internal/service"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// SessionCookie is the cookie the session token travels in
	SessionCookie = "token"

	identityKey = "identity"
)

// NewJWTMiddleware rejects requests without a valid session token. The token
// is read from the session cookie first and from a bearer Authorization
// header second.
func NewJWTMiddleware(tokens *service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := tokenFrom(c)
		if tokenStr == "" {
			httpx.Abort(c, apperr.New(apperr.KindAuthenticationRequired, "Authentication required"))
			return
		}

		id, err := tokens.Verify(tokenStr)
		if err != nil {
			zap.L().Debug("Rejected session token", zap.Error(err), zap.String("requestID", httpx.RequestID(c)))

			httpx.Abort(c, err)
			return
		}

		c.Set(identityKey, id)
		c.Set("userID", strconv.FormatUint(uint64(id.UserID), 10))
		c.Next()
	}
}

// IdentityFrom returns the caller stored by the JWT middleware
func IdentityFrom(c *gin.Context) (service.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return service.Identity{}, false
	}

	id, ok := v.(service.Identity)
	return id, ok
}

func tokenFrom(c *gin.Context) string {
	if v, err := c.Cookie(SessionCookie); err == nil && v != "" {
		return v
	}

	scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " ")
	if ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}

	return ""
}
