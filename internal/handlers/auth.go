package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/querydesk/querydesk/api/v1"
)

// Login checks the credentials and returns a session token
// (POST /auth/login)
func (h *Handler) Login(c *gin.Context) {
	var req v1.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, v1.ErrorResponse{Error: "invalid request body"})
		return
	}

	session, err := h.authSrv.Login(c.Request.Context(), req.UserName, req.Password)
	if err != nil {
		writeError(c, "auth_handler", err)
		return
	}

	c.JSON(http.StatusOK, v1.LoginResponse{
		Success:   true,
		Message:   "Login successful",
		User:      v1.NewUser(session.User),
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	})
}
