package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/medisync-api/internal/middleware"
	"github.com/harentsoaR/medisync-api/internal/models"
)

type UpdateUserRequest struct {
	Username    string       `json:"username"`
	Password    string       `json:"password"`
	PhoneNumber string       `json:"phoneNumber"`
	Role        *models.Role `json:"role"`
}

// --- CREATE USER ---
func (h *Handler) CreateUser(c *gin.Context) {
	var req models.NewUser
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	if !h.mayAssignRole(c, req.Role) {
		forbidden(c, "Only an admin can create admin accounts")
		return
	}

	user, err := h.Users.Create(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// --- LIST USERS (Admin Only) ---
func (h *Handler) GetAllUsers(c *gin.Context) {
	users, err := h.Users.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetDoctors lists the doctors patients can book with.
func (h *Handler) GetDoctors(c *gin.Context) {
	doctors, err := h.Users.ListByRole(c.Request.Context(), models.RoleDoctor)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doctors)
}

// GetCurrentUser returns the caller's own profile.
func (h *Handler) GetCurrentUser(c *gin.Context) {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		unauthorized(c)
		return
	}
	user, err := h.Users.FindByID(c.Request.Context(), p.UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// --- GET USER BY ID ---
func (h *Handler) GetUser(c *gin.Context) {
	id := c.Param("id")
	if !primitive.IsValidObjectID(id) {
		badRequest(c, "Invalid user ID")
		return
	}

	user, err := h.Users.FindByID(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !canView(c, user) {
		forbidden(c, "You can only view your own profile")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) GetUserByUsername(c *gin.Context) {
	user, err := h.Users.FindByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !canView(c, user) {
		forbidden(c, "You can only view your own profile")
		return
	}
	c.JSON(http.StatusOK, user)
}

// --- UPDATE USER (Admin or Self) ---
func (h *Handler) UpdateUser(c *gin.Context) {
	id := c.Param("id")
	if !primitive.IsValidObjectID(id) {
		badRequest(c, "Invalid user ID")
		return
	}
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		unauthorized(c)
		return
	}
	if !p.IsAdmin() && p.UserID != id {
		forbidden(c, "You can only update your own account")
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	patch := models.UserPatch{
		Username:    req.Username,
		Password:    req.Password,
		PhoneNumber: req.PhoneNumber,
	}
	// role changes are an admin privilege
	if p.IsAdmin() {
		patch.Role = req.Role
	}

	user, err := h.Users.Update(c.Request.Context(), id, patch)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// --- DELETE USER (Admin or Self) ---
func (h *Handler) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	if !primitive.IsValidObjectID(id) {
		badRequest(c, "Invalid user ID")
		return
	}
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		unauthorized(c)
		return
	}
	if !p.IsAdmin() && p.UserID != id {
		forbidden(c, "You can only delete your own account")
		return
	}

	if err := h.Users.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

// canView allows admins and the user themselves.
func canView(c *gin.Context, user *models.User) bool {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return false
	}
	return p.IsAdmin() || p.UserID == user.ID.Hex()
}
