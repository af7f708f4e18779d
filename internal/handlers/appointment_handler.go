package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/medisync-api/internal/middleware"
	"github.com/harentsoaR/medisync-api/internal/models"
	"github.com/harentsoaR/medisync-api/internal/services"
)

type CreateAppointmentRequest struct {
	PatientID       string                   `json:"patientId"`
	DoctorID        string                   `json:"doctorId"`
	Reason          string                   `json:"reason"`
	AppointmentDate string                   `json:"appointmentDate"`
	AppointmentTime string                   `json:"appointmentTime"`
	Payment         *services.PaymentDetails `json:"payment"`
}

// --- CREATE APPOINTMENT ---
// A patient books for themselves and a doctor for their own agenda; a missing
// participant id defaults to the caller.
func (h *Handler) CreateAppointment(c *gin.Context) {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		unauthorized(c)
		return
	}

	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	apt := models.Appointment{
		PatientID:       strings.TrimSpace(req.PatientID),
		DoctorID:        strings.TrimSpace(req.DoctorID),
		Reason:          req.Reason,
		AppointmentDate: req.AppointmentDate,
		AppointmentTime: req.AppointmentTime,
	}
	switch p.Role {
	case models.RolePatient:
		if apt.PatientID == "" {
			apt.PatientID = p.UserID
		}
	case models.RoleDoctor:
		if apt.DoctorID == "" {
			apt.DoctorID = p.UserID
		}
	}
	if !isParticipant(p, &apt) {
		forbidden(c, "You can only book appointments you take part in")
		return
	}

	booking, err := h.Appointments.Book(c.Request.Context(), apt, req.Payment)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if booking.Payment != nil {
		c.JSON(http.StatusOK, booking)
		return
	}
	c.JSON(http.StatusCreated, booking)
}

// --- GET ALL APPOINTMENTS (with Filtering) ---
// Optional query filters: status, date (exact day), startDate and endDate
// (inclusive, YYYY-MM-DD).
func (h *Handler) GetAppointments(c *gin.Context) {
	appointments, err := h.Appointments.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, filterAppointments(appointments, c))
}

// --- GET APPOINTMENT BY ID ---
// Readable by any signed-in user, like the public listing.
func (h *Handler) GetAppointment(c *gin.Context) {
	id := c.Param("id")
	if !primitive.IsValidObjectID(id) {
		badRequest(c, "Invalid appointment ID")
		return
	}
	apt, err := h.Appointments.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, apt)
}

// GetPatientAppointments lists the calling patient's appointments.
func (h *Handler) GetPatientAppointments(c *gin.Context) {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		unauthorized(c)
		return
	}
	appointments, err := h.Appointments.ListForPatient(c.Request.Context(), p.Username)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, filterAppointments(appointments, c))
}

// GetDoctorAppointments lists the calling doctor's appointments.
func (h *Handler) GetDoctorAppointments(c *gin.Context) {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		unauthorized(c)
		return
	}
	appointments, err := h.Appointments.ListForDoctor(c.Request.Context(), p.Username)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, filterAppointments(appointments, c))
}

// --- UPDATE APPOINTMENT (Participants or Admin) ---
func (h *Handler) UpdateAppointment(c *gin.Context) {
	current, ok := h.loadOwnedAppointment(c)
	if !ok {
		return
	}

	var patch models.AppointmentPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	// the caller must still take part once the participants are swapped
	p, _ := middleware.CurrentPrincipal(c)
	if !p.IsAdmin() {
		next := *current
		if id := strings.TrimSpace(patch.PatientID); id != "" {
			next.PatientID = id
		}
		if id := strings.TrimSpace(patch.DoctorID); id != "" {
			next.DoctorID = id
		}
		if !isParticipant(p, &next) {
			forbidden(c, "You can only move appointments you take part in")
			return
		}
	}

	apt, err := h.Appointments.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, apt)
}

// --- CANCEL APPOINTMENT (Participants or Admin) ---
func (h *Handler) CancelAppointment(c *gin.Context) {
	if _, ok := h.loadOwnedAppointment(c); !ok {
		return
	}

	apt, err := h.Appointments.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, apt)
}

// --- DELETE APPOINTMENT (Participants or Admin) ---
func (h *Handler) DeleteAppointment(c *gin.Context) {
	if _, ok := h.loadOwnedAppointment(c); !ok {
		return
	}

	if err := h.Appointments.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Appointment deleted successfully"})
}

// loadOwnedAppointment fetches the appointment named by the :id parameter and
// checks the caller may act on it, writing the error response when not.
func (h *Handler) loadOwnedAppointment(c *gin.Context) (*models.Appointment, bool) {
	id := c.Param("id")
	if !primitive.IsValidObjectID(id) {
		badRequest(c, "Invalid appointment ID")
		return nil, false
	}
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		unauthorized(c)
		return nil, false
	}

	apt, err := h.Appointments.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return nil, false
	}
	if !p.IsAdmin() && !isParticipant(p, apt) {
		forbidden(c, "You are not a participant of this appointment")
		return nil, false
	}
	return apt, true
}

func isParticipant(p *models.Principal, apt *models.Appointment) bool {
	return p.UserID == apt.PatientID || p.UserID == apt.DoctorID
}

func filterAppointments(in []models.Appointment, c *gin.Context) []models.Appointment {
	status := strings.ToUpper(c.Query("status"))
	date := c.Query("date")
	from := c.Query("startDate")
	to := c.Query("endDate")

	out := make([]models.Appointment, 0, len(in))
	for _, a := range in {
		if status != "" && string(a.Status) != status {
			continue
		}
		if date != "" && a.AppointmentDate != date {
			continue
		}
		// ISO dates order lexically
		if from != "" && a.AppointmentDate < from {
			continue
		}
		if to != "" && a.AppointmentDate > to {
			continue
		}
		out = append(out, a)
	}
	return out
}
