package models

// PaymentRequest is the body sent to the external payment service.
type PaymentRequest struct {
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	Name          string  `json:"name"`
	AppointmentID string  `json:"appointmentId"`
	PatientID     string  `json:"patientId"`
	DoctorID      string  `json:"doctorId"`
	SuccessURL    string  `json:"successUrl"`
	CancelURL     string  `json:"cancelUrl"`
}

type PaymentResponse struct {
	SessionID  string `json:"sessionId"`
	Status     string `json:"status"`
	Message    string `json:"message"`
	SessionURL string `json:"sessionUrl"`
}
