package httpapi

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/geophoto/internal/common"
)

type loginRequest struct {
	GoogleID       string `json:"googleId"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	ProfilePicture string `json:"profilePicture"`
}

// login exchanges an upstream-verified Google profile for a local user and
// an access token.
func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, fmt.Errorf("%w: %v", common.ErrInvalidRequest, err))
		return
	}

	user, token, err := s.users.Login(c.Request.Context(), req.GoogleID, req.Email, req.Name, req.ProfilePicture)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"user":    user,
	})
}

// me returns the caller's profile with live quota counters.
func (s *Server) me(c *gin.Context) {
	user, err := s.users.Get(c.Request.Context(), requesterID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user,
	})
}
