package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/medisync-api/internal/middleware"
	"github.com/harentsoaR/medisync-api/internal/models"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login checks the credentials and returns a bearer token with the user's role.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Username and password are required")
		return
	}

	res, err := h.Auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Signup registers a new account. Only an admin may create another admin.
func (h *Handler) Signup(c *gin.Context) {
	var req models.NewUser
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	if !h.mayAssignRole(c, req.Role) {
		forbidden(c, "Only an admin can create admin accounts")
		return
	}

	if _, err := h.Auth.Signup(c.Request.Context(), req); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully"})
}

func (h *Handler) mayAssignRole(c *gin.Context, role models.Role) bool {
	if role != models.RoleAdmin {
		return true
	}
	p, _ := middleware.CurrentPrincipal(c)
	return p.IsAdmin()
}
