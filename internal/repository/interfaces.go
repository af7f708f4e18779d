// Package repository declares the persistence contracts the services consume.
package repository

import (
	"context"
	"errors"

	"github.com/harentsoaR/medisync-api/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate key")
)

type UserRepository interface {
	// Create assigns an id to u and stores it. A taken username yields ErrDuplicate.
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	ListByRole(ctx context.Context, role models.Role) ([]models.User, error)
	Update(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, id string) error
}

type AppointmentRepository interface {
	Create(ctx context.Context, a *models.Appointment) error
	GetByID(ctx context.Context, id string) (*models.Appointment, error)
	List(ctx context.Context) ([]models.Appointment, error)
	ListByPatient(ctx context.Context, patientID string) ([]models.Appointment, error)
	ListByDoctor(ctx context.Context, doctorID string) ([]models.Appointment, error)
	Update(ctx context.Context, a *models.Appointment) error
	Delete(ctx context.Context, id string) error
}

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	GetByID(ctx context.Context, id string) (*models.Notification, error)
	// ListByRecipient returns the recipient's notifications, newest first.
	ListByRecipient(ctx context.Context, recipientID string) ([]models.Notification, error)
	MarkRead(ctx context.Context, id string) error
}
