package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/psim/backend/internal/infrastructure/logger"
)

// HeaderUserID is the fallback carrier of the store keeper id
const HeaderUserID = "X-User-ID"

var tokenParser = jwt.NewParser()

// Identity records who is acting on the request. Tokens are issued and
// verified by the external identity service; only the sub claim is read here.
// Requests without an identity continue with an empty user id and the
// services reject the operations that need one.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := subjectFromBearer(c.GetHeader("Authorization"))
		if userID == "" {
			userID = strings.TrimSpace(c.GetHeader(HeaderUserID))
		}
		if userID != "" {
			c.Set(ContextKeyUserID, userID)
			c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), userID))
		}
		c.Next()
	}
}

func subjectFromBearer(header string) string {
	scheme, raw, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	claims := &jwt.RegisteredClaims{}
	if _, _, err := tokenParser.ParseUnverified(strings.TrimSpace(raw), claims); err != nil {
		return ""
	}
	return claims.Subject
}
