package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/medisync-api/internal/apperrors"
	"github.com/harentsoaR/medisync-api/internal/cache"
	"github.com/harentsoaR/medisync-api/internal/metrics"
	"github.com/harentsoaR/medisync-api/internal/models"
	"github.com/harentsoaR/medisync-api/internal/repository"
)

// Notifier is the part of the notification dispatcher the appointment
// manager depends on.
type Notifier interface {
	Send(ctx context.Context, recipientID, message string) (*models.Notification, error)
}

// PaymentGateway opens a checkout session for a booked appointment.
type PaymentGateway interface {
	CreateSession(ctx context.Context, req models.PaymentRequest) (*models.PaymentResponse, error)
}

// PaymentDetails is the optional payment part of a booking request.
type PaymentDetails struct {
	Amount   float64 `json:"amount" binding:"gt=0"`
	Currency string  `json:"currency" binding:"required"`
}

// Booking is the result of a booking, with the payment session when one was
// requested.
type Booking struct {
	Appointment *models.Appointment     `json:"appointment"`
	Payment     *models.PaymentResponse `json:"payment,omitempty"`
}

type AppointmentService struct {
	repo     repository.AppointmentRepository
	users    repository.UserRepository
	notifier Notifier
	payments PaymentGateway
	cache    cache.Cache
	metrics  *metrics.Metrics
	log      zerolog.Logger

	successURL string
	cancelURL  string
}

type AppointmentServiceConfig struct {
	Repo     repository.AppointmentRepository
	Users    repository.UserRepository
	Notifier Notifier
	// Payments may be nil, in which case bookings with payment are rejected.
	Payments   PaymentGateway
	Cache      cache.Cache
	Metrics    *metrics.Metrics
	Logger     zerolog.Logger
	SuccessURL string
	CancelURL  string
}

func NewAppointmentService(cfg AppointmentServiceConfig) *AppointmentService {
	return &AppointmentService{
		repo:       cfg.Repo,
		users:      cfg.Users,
		notifier:   cfg.Notifier,
		payments:   cfg.Payments,
		cache:      cfg.Cache,
		metrics:    cfg.Metrics,
		log:        cfg.Logger.With().Str("component", "appointments").Logger(),
		successURL: cfg.SuccessURL,
		cancelURL:  cfg.CancelURL,
	}
}

// Create books a new PENDING appointment and notifies both participants.
func (s *AppointmentService) Create(ctx context.Context, apt models.Appointment) (*models.Appointment, error) {
	apt.ID = primitive.NilObjectID
	apt.Status = models.StatusPending
	trimAppointment(&apt)
	if err := validateStruct(apt); err != nil {
		s.record("create", "invalid")
		return nil, err
	}

	patient, doctor, err := s.participants(ctx, apt.PatientID, apt.DoctorID)
	if err != nil {
		s.record("create", "invalid")
		return nil, err
	}

	if err := s.repo.Create(ctx, &apt); err != nil {
		s.record("create", "error")
		return nil, apperrors.Unexpected("create appointment", err)
	}
	s.evict(ctx, &apt)
	s.record("create", "ok")
	s.log.Info().Str("appointment_id", apt.ID.Hex()).Str("patient_id", apt.PatientID).Str("doctor_id", apt.DoctorID).Msg("appointment booked")

	s.notify(ctx, apt.PatientID, fmt.Sprintf("Your appointment with Doctor %s is booked for %s (Status: %s).",
		doctor.Username, apt.Schedule(), apt.Status))
	s.notify(ctx, apt.DoctorID, fmt.Sprintf("You have a new appointment with Patient %s on %s (Status: %s).",
		patient.Username, apt.Schedule(), apt.Status))

	return &apt, nil
}

// Book creates the appointment and, when payment is given, opens a payment
// session for it. A failed session cancels the appointment again.
func (s *AppointmentService) Book(ctx context.Context, apt models.Appointment, payment *PaymentDetails) (*Booking, error) {
	if payment != nil && s.payments == nil {
		return nil, apperrors.Validation(map[string]string{"payment": "Payments are not enabled"})
	}

	created, err := s.Create(ctx, apt)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return &Booking{Appointment: created}, nil
	}

	session, err := s.payments.CreateSession(ctx, models.PaymentRequest{
		Amount:        payment.Amount,
		Currency:      payment.Currency,
		Name:          "Appointment: " + created.Reason,
		AppointmentID: created.ID.Hex(),
		PatientID:     created.PatientID,
		DoctorID:      created.DoctorID,
		SuccessURL:    s.successURL,
		CancelURL:     s.cancelURL,
	})
	if err != nil {
		s.metrics.PaymentSessions.WithLabelValues("failed").Inc()
		s.log.Error().Err(err).Str("appointment_id", created.ID.Hex()).Msg("payment session failed, cancelling appointment")
		if _, cerr := s.Cancel(ctx, created.ID.Hex()); cerr != nil {
			s.log.Error().Err(cerr).Str("appointment_id", created.ID.Hex()).Msg("failed to cancel unpaid appointment")
		}
		return nil, apperrors.Downstream("Payment session could not be created", err)
	}

	s.metrics.PaymentSessions.WithLabelValues("created").Inc()
	return &Booking{Appointment: created, Payment: session}, nil
}

// Update overlays the non-blank fields of patch onto the stored appointment
// and notifies both participants with the old and new schedule.
func (s *AppointmentService) Update(ctx context.Context, id string, patch models.AppointmentPatch) (*models.Appointment, error) {
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	before := *current

	updated := *current
	overlay(&updated.PatientID, patch.PatientID)
	overlay(&updated.DoctorID, patch.DoctorID)
	overlay(&updated.Reason, patch.Reason)
	overlay(&updated.AppointmentDate, patch.AppointmentDate)
	overlay(&updated.AppointmentTime, patch.AppointmentTime)
	if st := strings.TrimSpace(string(patch.Status)); st != "" {
		updated.Status = models.Status(strings.ToUpper(st))
	}
	if err := validateStruct(updated); err != nil {
		s.record("update", "invalid")
		return nil, err
	}
	if updated.PatientID != before.PatientID || updated.DoctorID != before.DoctorID {
		if _, _, err := s.participants(ctx, updated.PatientID, updated.DoctorID); err != nil {
			s.record("update", "invalid")
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, &updated); err != nil {
		s.record("update", "error")
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Appointment not found with ID: %s", id)
		}
		return nil, apperrors.Unexpected("update appointment", err)
	}
	s.evict(ctx, &before, &updated)
	s.record("update", "ok")

	details := fmt.Sprintf("Old details: %s (Status: %s). New details: %s (Status: %s).",
		before.Schedule(), before.Status, updated.Schedule(), updated.Status)
	s.notify(ctx, updated.PatientID, fmt.Sprintf("Your appointment with Doctor %s has been updated. %s",
		s.username(ctx, updated.DoctorID), details))
	s.notify(ctx, updated.DoctorID, fmt.Sprintf("Your appointment with Patient %s has been updated. %s",
		s.username(ctx, updated.PatientID), details))

	return &updated, nil
}

// Delete removes the appointment and tells both participants it was cancelled.
func (s *AppointmentService) Delete(ctx context.Context, id string) error {
	apt, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		s.record("delete", "error")
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("Appointment not found with ID: %s", id)
		}
		return apperrors.Unexpected("delete appointment", err)
	}
	s.evict(ctx, apt)
	s.record("delete", "ok")
	s.notifyCancelled(ctx, apt)
	return nil
}

// Cancel marks the appointment CANCELLED without removing it.
func (s *AppointmentService) Cancel(ctx context.Context, id string) (*models.Appointment, error) {
	apt, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	apt.Status = models.StatusCancelled
	if err := s.repo.Update(ctx, apt); err != nil {
		s.record("cancel", "error")
		return nil, apperrors.Unexpected("cancel appointment", err)
	}
	s.evict(ctx, apt)
	s.record("cancel", "ok")
	s.notifyCancelled(ctx, apt)
	return apt, nil
}

func (s *AppointmentService) Get(ctx context.Context, id string) (*models.Appointment, error) {
	return cache.GetOrCompute(ctx, s.cache, s.log, cache.AppointmentKey(id), cache.TTLAppointment, func(ctx context.Context) (*models.Appointment, error) {
		return s.load(ctx, id)
	})
}

func (s *AppointmentService) List(ctx context.Context) ([]models.Appointment, error) {
	return cache.GetOrCompute(ctx, s.cache, s.log, cache.KeyAllAppointments, cache.TTLAllAppointments, func(ctx context.Context) ([]models.Appointment, error) {
		list, err := s.repo.List(ctx)
		if err != nil {
			return nil, apperrors.Unexpected("list appointments", err)
		}
		return list, nil
	})
}

// ListForPatient returns the appointments of the patient with the given
// username. An unknown username yields an empty list.
func (s *AppointmentService) ListForPatient(ctx context.Context, username string) ([]models.Appointment, error) {
	return s.listForUser(ctx, username, cache.PatientAppointmentsKey, s.repo.ListByPatient)
}

func (s *AppointmentService) ListForDoctor(ctx context.Context, username string) ([]models.Appointment, error) {
	return s.listForUser(ctx, username, cache.DoctorAppointmentsKey, s.repo.ListByDoctor)
}

func (s *AppointmentService) listForUser(ctx context.Context, username string, key func(string) string,
	list func(context.Context, string) ([]models.Appointment, error)) ([]models.Appointment, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return []models.Appointment{}, nil
		}
		return nil, apperrors.Unexpected("load user", err)
	}
	userID := user.ID.Hex()
	return cache.GetOrCompute(ctx, s.cache, s.log, key(userID), cache.TTLUserAppointment, func(ctx context.Context) ([]models.Appointment, error) {
		out, err := list(ctx, userID)
		if err != nil {
			return nil, apperrors.Unexpected("list appointments", err)
		}
		return out, nil
	})
}

func (s *AppointmentService) load(ctx context.Context, id string) (*models.Appointment, error) {
	apt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Appointment not found with ID: %s", id)
		}
		return nil, apperrors.Unexpected("load appointment", err)
	}
	return apt, nil
}

func (s *AppointmentService) participants(ctx context.Context, patientID, doctorID string) (*models.User, *models.User, error) {
	fields := map[string]string{}
	patient, err := s.users.GetByID(ctx, patientID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		fields["patientId"] = "Patient not found"
	case err != nil:
		return nil, nil, apperrors.Unexpected("load patient", err)
	}
	doctor, err := s.users.GetByID(ctx, doctorID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		fields["doctorId"] = "Doctor not found"
	case err != nil:
		return nil, nil, apperrors.Unexpected("load doctor", err)
	}
	if len(fields) > 0 {
		return nil, nil, apperrors.Validation(fields)
	}
	return patient, doctor, nil
}

// evict drops every cache entry that may list any of apts.
func (s *AppointmentService) evict(ctx context.Context, apts ...*models.Appointment) {
	keys := []string{cache.KeyAllAppointments}
	for _, a := range apts {
		keys = append(keys,
			cache.AppointmentKey(a.ID.Hex()),
			cache.PatientAppointmentsKey(a.PatientID),
			cache.DoctorAppointmentsKey(a.DoctorID),
		)
	}
	cache.Evict(ctx, s.cache, s.log, keys...)
}

func (s *AppointmentService) notifyCancelled(ctx context.Context, apt *models.Appointment) {
	s.notify(ctx, apt.PatientID, fmt.Sprintf("Your appointment with Doctor %s on %s has been CANCELLED.",
		s.username(ctx, apt.DoctorID), apt.Schedule()))
	s.notify(ctx, apt.DoctorID, fmt.Sprintf("Your appointment with Patient %s on %s has been CANCELLED.",
		s.username(ctx, apt.PatientID), apt.Schedule()))
}

// notify is best effort: a failed notification never fails the appointment write.
func (s *AppointmentService) notify(ctx context.Context, recipientID, message string) {
	if _, err := s.notifier.Send(ctx, recipientID, message); err != nil {
		s.log.Warn().Err(err).Str("recipient_id", recipientID).Msg("appointment notification not delivered")
	}
}

func (s *AppointmentService) username(ctx context.Context, id string) string {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return "Unknown"
	}
	return u.Username
}

func (s *AppointmentService) record(op, status string) {
	s.metrics.AppointmentOperations.WithLabelValues(op, status).Inc()
}

func trimAppointment(a *models.Appointment) {
	a.PatientID = strings.TrimSpace(a.PatientID)
	a.DoctorID = strings.TrimSpace(a.DoctorID)
	a.Reason = strings.TrimSpace(a.Reason)
	a.AppointmentDate = strings.TrimSpace(a.AppointmentDate)
	a.AppointmentTime = strings.TrimSpace(a.AppointmentTime)
}

func overlay(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}
