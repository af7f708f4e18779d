package memory

import (
	"bytes"
	"context"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/medisync-api/internal/models"
	"github.com/harentsoaR/medisync-api/internal/repository"
)

type AppointmentRepository struct {
	mu           sync.RWMutex
	appointments map[primitive.ObjectID]models.Appointment
}

func NewAppointmentRepository() *AppointmentRepository {
	return &AppointmentRepository{appointments: make(map[primitive.ObjectID]models.Appointment)}
}

func (r *AppointmentRepository) Create(_ context.Context, a *models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a.ID = primitive.NewObjectID()
	r.appointments[a.ID] = *a
	return nil
}

func (r *AppointmentRepository) GetByID(_ context.Context, id string) (*models.Appointment, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.appointments[oid]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (r *AppointmentRepository) List(_ context.Context) ([]models.Appointment, error) {
	return r.filter(func(models.Appointment) bool { return true }), nil
}

func (r *AppointmentRepository) ListByPatient(_ context.Context, patientID string) ([]models.Appointment, error) {
	return r.filter(func(a models.Appointment) bool { return a.PatientID == patientID }), nil
}

func (r *AppointmentRepository) ListByDoctor(_ context.Context, doctorID string) ([]models.Appointment, error) {
	return r.filter(func(a models.Appointment) bool { return a.DoctorID == doctorID }), nil
}

func (r *AppointmentRepository) Update(_ context.Context, a *models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.appointments[a.ID]; !ok {
		return repository.ErrNotFound
	}
	r.appointments[a.ID] = *a
	return nil
}

func (r *AppointmentRepository) Delete(_ context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.appointments[oid]; !ok {
		return repository.ErrNotFound
	}
	delete(r.appointments, oid)
	return nil
}

func (r *AppointmentRepository) filter(keep func(models.Appointment) bool) []models.Appointment {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Appointment, 0)
	for _, a := range r.appointments {
		if keep(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].ID[:], out[j].ID[:]) < 0
	})
	return out
}
