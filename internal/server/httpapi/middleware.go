package httpapi

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/geophoto/internal/common"
	"github.com/dmitrijs2005/geophoto/internal/server/auth"
)

const userIDKey = "userID"

// authRequired verifies the Bearer access token and stores the caller's
// user id in the request context.
func (s *Server) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			abortWithError(c, fmt.Errorf("%w: missing access token", common.ErrUnauthenticated))
			return
		}

		userID, err := auth.GetUserIDFromToken(token, s.jwtSecret)
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

func requesterID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
