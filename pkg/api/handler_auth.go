package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JBK2116/CollaBoard/pkg/services"
)

// registerHandler handles POST /api/auth/register.
func (s *Server) registerHandler(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := s.auth.Register(c.Request.Context(), services.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		mapServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toUserResponse(user))
}

// loginHandler handles POST /api/auth/login. The issued token is returned
// in the body and mirrored as a cookie for browser clients.
func (s *Server) loginHandler(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, user, err := s.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		mapServiceError(c, err)
		return
	}

	c.SetCookie(sessionCookieName, token, int(s.cfg.Auth.SessionTTL.Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, loginResponse{Token: token, User: toUserResponse(user)})
}

// logoutHandler handles POST /api/auth/logout. Deleting an already-dead
// token is fine; the middleware has verified this one resolves.
func (s *Server) logoutHandler(c *gin.Context) {
	token := extractSessionToken(c)
	if err := s.auth.Logout(c.Request.Context(), token); err != nil {
		mapServiceError(c, err)
		return
	}

	c.SetCookie(sessionCookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{})
}
