package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/harentsoaR/medisync-api/internal/apperrors"
	"github.com/harentsoaR/medisync-api/internal/metrics"
	"github.com/harentsoaR/medisync-api/internal/models"
	"github.com/harentsoaR/medisync-api/internal/repository"
)

const smsTimeout = 10 * time.Second

// SMSSender relays a notification to a phone number.
type SMSSender interface {
	SendSMS(ctx context.Context, phone, message string) error
}

// NotificationService persists in-app notifications and, when an SMS sender
// is configured, relays them to the recipient's phone in the background.
type NotificationService struct {
	repo    repository.NotificationRepository
	users   repository.UserRepository
	sms     SMSSender
	metrics *metrics.Metrics
	log     zerolog.Logger
	now     func() time.Time
}

// NewNotificationService wires the dispatcher. sms may be nil.
func NewNotificationService(repo repository.NotificationRepository, users repository.UserRepository, sms SMSSender, m *metrics.Metrics, log zerolog.Logger) *NotificationService {
	return &NotificationService{
		repo:    repo,
		users:   users,
		sms:     sms,
		metrics: m,
		log:     log.With().Str("component", "notifications").Logger(),
		now:     time.Now,
	}
}

// Send records an unread notification for recipientID.
func (s *NotificationService) Send(ctx context.Context, recipientID, message string) (*models.Notification, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperrors.Validation(map[string]string{"message": "Message must be provided"})
	}

	recipient, err := s.users.GetByID(ctx, recipientID)
	if err != nil {
		s.metrics.NotificationsSent.WithLabelValues("failed").Inc()
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("User not found for notification with ID: %s", recipientID)
		}
		return nil, apperrors.Unexpected("load recipient", err)
	}

	n := &models.Notification{
		RecipientID: recipientID,
		Message:     message,
		Timestamp:   s.now().UTC(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		s.metrics.NotificationsSent.WithLabelValues("failed").Inc()
		return nil, apperrors.Unexpected("store notification", err)
	}
	s.metrics.NotificationsSent.WithLabelValues("sent").Inc()
	s.log.Debug().Str("recipient_id", recipientID).Str("notification_id", n.ID.Hex()).Msg("notification stored")

	if s.sms != nil && recipient.PhoneNumber != "" {
		// don't block the caller on the SMS provider
		go s.relaySMS(recipient.PhoneNumber, message)
	}
	return n, nil
}

func (s *NotificationService) relaySMS(phone, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), smsTimeout)
	defer cancel()

	if err := s.sms.SendSMS(ctx, phone, message); err != nil {
		s.metrics.NotificationsSent.WithLabelValues("sms_failed").Inc()
		s.log.Error().Err(err).Str("phone", phone).Msg("failed to relay notification by SMS")
		return
	}
	s.metrics.NotificationsSent.WithLabelValues("sms_sent").Inc()
}

// ListForUser returns the user's notifications, newest first.
func (s *NotificationService) ListForUser(ctx context.Context, recipientID string) ([]models.Notification, error) {
	list, err := s.repo.ListByRecipient(ctx, recipientID)
	if err != nil {
		return nil, apperrors.Unexpected("list notifications", err)
	}
	return list, nil
}

// MarkRead flags a notification as read. Another user's notification is
// reported as not found.
func (s *NotificationService) MarkRead(ctx context.Context, id, recipientID string) (*models.Notification, error) {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Notification not found with ID: %s", id)
		}
		return nil, apperrors.Unexpected("load notification", err)
	}
	if n.RecipientID != recipientID {
		return nil, apperrors.NotFound("Notification not found with ID: %s", id)
	}
	if n.IsRead {
		return n, nil
	}
	if err := s.repo.MarkRead(ctx, id); err != nil {
		return nil, apperrors.Unexpected("mark notification read", err)
	}
	n.IsRead = true
	return n, nil
}
