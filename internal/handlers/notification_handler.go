package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/medisync-api/internal/middleware"
)

type SendNotificationRequest struct {
	UserID  string `json:"userId" form:"userId"`
	Message string `json:"message" form:"message"`
}

// SendNotification accepts userId and message either as query parameters or
// as a JSON body.
func (h *Handler) SendNotification(c *gin.Context) {
	var req SendNotificationRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, "Invalid query parameters")
		return
	}
	if req.UserID == "" && c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request body")
			return
		}
	}
	if req.UserID == "" {
		badRequest(c, "userId is required")
		return
	}

	n, err := h.Notifications.Send(c.Request.Context(), req.UserID, req.Message)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

// GetMyNotifications lists the caller's notifications, newest first.
func (h *Handler) GetMyNotifications(c *gin.Context) {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		unauthorized(c)
		return
	}
	list, err := h.Notifications.ListForUser(c.Request.Context(), p.UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) MarkNotificationRead(c *gin.Context) {
	id := c.Param("id")
	if !primitive.IsValidObjectID(id) {
		badRequest(c, "Invalid notification ID")
		return
	}
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		unauthorized(c)
		return
	}
	n, err := h.Notifications.MarkRead(c.Request.Context(), id, p.UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}
