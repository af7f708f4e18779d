package services

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/harentsoaR/medisync-api/internal/apperrors"
	"github.com/harentsoaR/medisync-api/internal/models"
)

var clockPattern = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):[0-5][0-9]$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their JSON names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		return clockPattern.MatchString(fl.Field().String())
	})
	v.RegisterValidation("appointment_status", func(fl validator.FieldLevel) bool {
		return models.Status(fl.Field().String()).Valid()
	})
	v.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		return models.Role(fl.Field().String()).Valid()
	})
	// bcrypt rejects inputs longer than 72 bytes
	v.RegisterValidation("bcrypt_len", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= 72
	})
	return v
}

var requiredMessages = map[string]string{
	"patientId":       "Patient Id is required",
	"doctorId":        "Doctor Id is required",
	"reason":          "Reason must be provided",
	"status":          "Status must be provided",
	"appointmentDate": "Appointment date is required",
	"appointmentTime": "Appointment time is required",
	"username":        "Username is required",
	"password":        "Password is required",
	"role":            "Role is required",
}

func fieldMessage(fe validator.FieldError) string {
	return messageFor(fe.Field(), fe.Tag(), fe.Param())
}

func messageFor(field, tag, param string) string {
	switch tag {
	case "required":
		if msg, ok := requiredMessages[field]; ok {
			return msg
		}
		return field + " is required"
	case "datetime":
		return "Date must be in format yyyy-MM-dd"
	case "clock":
		return "Time must be in format HH:mm"
	case "appointment_status":
		return "Status must be one of PENDING, CONFIRMED, CANCELLED, COMPLETED"
	case "user_role":
		return "Role must be one of ADMIN, DOCTOR, PATIENT"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, param)
	case "bcrypt_len":
		return field + " must be at most 72 bytes"
	default:
		return field + " is invalid"
	}
}

// validateStruct runs the struct's validate tags and converts failures into a
// validation error keyed by JSON field name.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.Unexpected("validate input", err)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; !seen {
			fields[fe.Field()] = fieldMessage(fe)
		}
	}
	return apperrors.Validation(fields)
}

// validateField checks a single value against tag and records the first
// failure in fields under the given JSON name.
func validateField(fields map[string]string, name string, value any, tag string) bool {
	var verrs validator.ValidationErrors
	if err := validate.Var(value, tag); !errors.As(err, &verrs) || len(verrs) == 0 {
		return true
	}
	fields[name] = messageFor(name, verrs[0].Tag(), verrs[0].Param())
	return false
}
