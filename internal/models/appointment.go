package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
	StatusCompleted Status = "COMPLETED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

type Appointment struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PatientID       string             `bson:"patientId" json:"patientId" validate:"required"`
	DoctorID        string             `bson:"doctorId" json:"doctorId" validate:"required"`
	Reason          string             `bson:"reason" json:"reason" validate:"required"`
	Status          Status             `bson:"status" json:"status" validate:"required,appointment_status"`
	AppointmentDate string             `bson:"appointmentDate" json:"appointmentDate" validate:"required,datetime=2006-01-02"`
	AppointmentTime string             `bson:"appointmentTime" json:"appointmentTime" validate:"required,clock"`
}

// AppointmentPatch carries a partial appointment update. Blank fields are left untouched.
type AppointmentPatch struct {
	PatientID       string `json:"patientId"`
	DoctorID        string `json:"doctorId"`
	Reason          string `json:"reason"`
	Status          Status `json:"status"`
	AppointmentDate string `json:"appointmentDate"`
	AppointmentTime string `json:"appointmentTime"`
}

// Schedule renders the date and time the way notification messages quote them.
func (a *Appointment) Schedule() string {
	return a.AppointmentDate + " at " + a.AppointmentTime
}
