package handlers

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/harentsoaR/medisync-api/internal/services"
)

// Handler holds the services the HTTP endpoints delegate to.
type Handler struct {
	Users         *services.UserService
	Auth          *services.AuthService
	Appointments  *services.AppointmentService
	Notifications *services.NotificationService

	// Ping reports whether the backing store is reachable. Nil means always healthy.
	Ping func(ctx context.Context) error

	log zerolog.Logger
}

func NewHandler(users *services.UserService, auth *services.AuthService, appointments *services.AppointmentService,
	notifications *services.NotificationService, log zerolog.Logger) *Handler {
	return &Handler{
		Users:         users,
		Auth:          auth,
		Appointments:  appointments,
		Notifications: notifications,
		log:           log.With().Str("component", "http").Logger(),
	}
}
