package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/02loveslollipop/arbor-inventory/services/api/auth"
	"github.com/02loveslollipop/arbor-inventory/services/api/db"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// handleRegister creates an account
// POST /register
func (s *Server) handleRegister(c *gin.Context) {
	var body credentials
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid JSON body"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	switch err := s.auth.Register(ctx, body.Username, body.Password); {
	case errors.Is(err, auth.ErrMissingCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Username and password are required"})
	case errors.Is(err, db.ErrDuplicateUser):
		c.JSON(http.StatusConflict, gin.H{"message": "Username already exists"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
	default:
		c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully!"})
	}
}

// handleLogin exchanges credentials for a bearer token
// POST /login
func (s *Server) handleLogin(c *gin.Context) {
	var body credentials
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid JSON body"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	token, err := s.auth.Login(ctx, body.Username, body.Password)
	switch {
	case errors.Is(err, auth.ErrMissingCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Username and password are required"})
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid username or password"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
	default:
		c.JSON(http.StatusOK, gin.H{"token": token, "message": "Login successful"})
	}
}

// handleLogout revokes the caller's token
// POST /logout
func (s *Server) handleLogout(c *gin.Context) {
	if token, ok := bearerToken(c); ok {
		s.auth.Revoke(token)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}
