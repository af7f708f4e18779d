package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/harentsoaR/medisync-api/internal/cache"
	"github.com/harentsoaR/medisync-api/internal/metrics"
	"github.com/harentsoaR/medisync-api/internal/models"
	"github.com/harentsoaR/medisync-api/internal/repository/memory"
	"github.com/harentsoaR/medisync-api/internal/utils"
)

type fixture struct {
	userRepo  *memory.UserRepository
	aptRepo   *memory.AppointmentRepository
	notifRepo *memory.NotificationRepository
	cache     *cache.Memory
	hasher    *utils.PasswordHasher
	tokens    *utils.TokenService

	users         *UserService
	auth          *AuthService
	notifications *NotificationService
	appointments  *AppointmentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := zerolog.Nop()
	m := metrics.NewNop()

	f := &fixture{
		userRepo:  memory.NewUserRepository(),
		aptRepo:   memory.NewAppointmentRepository(),
		notifRepo: memory.NewNotificationRepository(),
		cache:     cache.NewMemory(time.Minute, time.Minute),
		hasher:    utils.NewPasswordHasher(bcrypt.MinCost),
		tokens:    utils.NewTokenService("test-secret", time.Hour),
	}
	f.users = NewUserService(f.userRepo, f.hasher, f.cache, log)
	f.auth = NewAuthService(f.users, f.hasher, f.tokens, m, log)
	f.notifications = NewNotificationService(f.notifRepo, f.userRepo, nil, m, log)
	f.appointments = NewAppointmentService(AppointmentServiceConfig{
		Repo:     f.aptRepo,
		Users:    f.userRepo,
		Notifier: f.notifications,
		Cache:    f.cache,
		Metrics:  m,
		Logger:   log,
	})
	return f
}

func (f *fixture) withPayments(p PaymentGateway) {
	f.appointments.payments = p
}

func (f *fixture) mustCreateUser(t *testing.T, username string, role models.Role) *models.User {
	t.Helper()
	u, err := f.users.Create(context.Background(), models.NewUser{
		Username: username,
		Password: "secret123",
		Role:     role,
	})
	require.NoError(t, err)
	return u
}

func messagesFor(t *testing.T, f *fixture, userID string) []string {
	t.Helper()
	list, err := f.notifications.ListForUser(context.Background(), userID)
	require.NoError(t, err)
	out := make([]string, 0, len(list))
	for _, n := range list {
		out = append(out, n.Message)
	}
	return out
}

type failingNotifier struct{}

func (failingNotifier) Send(context.Context, string, string) (*models.Notification, error) {
	return nil, errors.New("notification store down")
}

type stubGateway struct {
	mu       sync.Mutex
	requests []models.PaymentRequest
	resp     *models.PaymentResponse
	err      error
}

func (g *stubGateway) CreateSession(_ context.Context, req models.PaymentRequest) (*models.PaymentResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	return g.resp, g.err
}

type recordingSMS struct {
	sent chan [2]string
	err  error
}

func (r *recordingSMS) SendSMS(_ context.Context, phone, message string) error {
	r.sent <- [2]string{phone, message}
	return r.err
}
