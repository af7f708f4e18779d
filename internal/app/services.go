package app

import (
	"github.com/rs/zerolog"

	"github.com/harentsoaR/medisync-api/internal/cache"
	"github.com/harentsoaR/medisync-api/internal/config"
	"github.com/harentsoaR/medisync-api/internal/metrics"
	"github.com/harentsoaR/medisync-api/internal/services"
	"github.com/harentsoaR/medisync-api/internal/utils"
)

// Services is the domain layer built on one Store.
type Services struct {
	Tokens        *utils.TokenService
	Users         *services.UserService
	Auth          *services.AuthService
	Appointments  *services.AppointmentService
	Notifications *services.NotificationService
}

// NewServices builds the services. Payments and SMS relay are enabled only
// when PAYMENT_SERVICE_URL and TEXTBELT_API_KEY are configured.
func NewServices(cfg *config.Config, store *Store, c cache.Cache, m *metrics.Metrics, log zerolog.Logger) *Services {
	hasher := utils.NewPasswordHasher(cfg.BcryptCost)
	tokens := utils.NewTokenService(cfg.JWTSecret, cfg.JWTExpiry)

	var sms services.SMSSender
	if cfg.TextbeltAPIKey != "" {
		sms = services.NewTextbeltSender(cfg.TextbeltAPIKey, "")
	}

	var payments services.PaymentGateway
	if cfg.Payment.BaseURL != "" {
		payments = services.NewPaymentClient(cfg.Payment.BaseURL, cfg.Payment.SessionPath, cfg.Payment.Timeout)
	} else {
		log.Info().Msg("PAYMENT_SERVICE_URL not set, bookings with payment are disabled")
	}

	users := services.NewUserService(store.Users, hasher, c, log)
	notifications := services.NewNotificationService(store.Notifications, store.Users, sms, m, log)
	return &Services{
		Tokens:        tokens,
		Users:         users,
		Auth:          services.NewAuthService(users, hasher, tokens, m, log),
		Notifications: notifications,
		Appointments: services.NewAppointmentService(services.AppointmentServiceConfig{
			Repo:       store.Appointments,
			Users:      store.Users,
			Notifier:   notifications,
			Payments:   payments,
			Cache:      c,
			Metrics:    m,
			Logger:     log,
			SuccessURL: cfg.Payment.SuccessURL,
			CancelURL:  cfg.Payment.CancelURL,
		}),
	}
}
