package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/medisync-api/internal/models"
	"github.com/harentsoaR/medisync-api/internal/repository"
)

type AppointmentRepository struct {
	coll *mongo.Collection
}

func NewAppointmentRepository(db *mongo.Database) *AppointmentRepository {
	return &AppointmentRepository{coll: db.Collection(appointmentsCollection)}
}

// Sort by date then time so listings read like a schedule.
var scheduleSort = options.Find().SetSort(bson.D{
	{Key: "appointmentDate", Value: 1},
	{Key: "appointmentTime", Value: 1},
})

func (r *AppointmentRepository) Create(ctx context.Context, a *models.Appointment) error {
	a.ID = primitive.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, a); err != nil {
		a.ID = primitive.NilObjectID
		return translate(err)
	}
	return nil
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var apt models.Appointment
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&apt); err != nil {
		return nil, translate(err)
	}
	return &apt, nil
}

func (r *AppointmentRepository) List(ctx context.Context) ([]models.Appointment, error) {
	return r.find(ctx, bson.M{})
}

func (r *AppointmentRepository) ListByPatient(ctx context.Context, patientID string) ([]models.Appointment, error) {
	return r.find(ctx, bson.M{"patientId": patientID})
}

func (r *AppointmentRepository) ListByDoctor(ctx context.Context, doctorID string) ([]models.Appointment, error) {
	return r.find(ctx, bson.M{"doctorId": doctorID})
}

func (r *AppointmentRepository) Update(ctx context.Context, a *models.Appointment) error {
	result, err := r.coll.ReplaceOne(ctx, bson.M{"_id": a.ID}, a)
	if err != nil {
		return translate(err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *AppointmentRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return translate(err)
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *AppointmentRepository) find(ctx context.Context, filter bson.M) ([]models.Appointment, error) {
	appointments, err := findAll[models.Appointment](ctx, r.coll, filter, scheduleSort)
	if err != nil {
		return nil, fmt.Errorf("find appointments: %w", err)
	}
	return appointments, nil
}
