package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/rs/zerolog"

	"github.com/harentsoaR/medisync-api/internal/app"
	"github.com/harentsoaR/medisync-api/internal/apperrors"
	"github.com/harentsoaR/medisync-api/internal/config"
	"github.com/harentsoaR/medisync-api/internal/metrics"
	"github.com/harentsoaR/medisync-api/internal/models"
)

var reasons = []string{
	"Annual checkup",
	"Follow-up visit",
	"Blood test results",
	"Vaccination",
	"Back pain",
	"Skin rash",
	"Prescription renewal",
	"Headaches",
}

func main() {
	doctors := flag.Int("doctors", 5, "number of doctors to create")
	patients := flag.Int("patients", 30, "number of patients to create")
	appointments := flag.Int("appointments", 60, "number of appointments to book")
	adminPassword := flag.String("admin-password", "", "password of the admin account (skipped when empty)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fallback := zerolog.New(os.Stderr)
		fallback.Fatal().Err(err).Msg("failed to load config")
	}
	log := config.NewLogger(cfg)
	log.Info().Msg("seed starting")

	opts := seedOptions{
		doctors:       *doctors,
		patients:      *patients,
		appointments:  *appointments,
		adminPassword: *adminPassword,
	}
	if err := run(cfg, log, opts); err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
	log.Info().Msg("seed complete")
}

type seedOptions struct {
	doctors, patients, appointments int
	adminPassword                   string
}

func run(cfg *config.Config, log zerolog.Logger, opts seedOptions) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	store, err := app.OpenStore(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close(context.Background())

	c, closeCache, err := app.OpenCache(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer closeCache()

	// seeding never talks to the payment service or Textbelt
	cfg.Payment.BaseURL = ""
	cfg.TextbeltAPIKey = ""
	svc := app.NewServices(cfg, store, c, metrics.NewNop(), log)

	s := &seeder{svc: svc, faker: gofakeit.New(0), log: log}

	if opts.adminPassword != "" {
		if _, err := s.user(ctx, "admin", opts.adminPassword, models.RoleAdmin); err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
	}

	doctorIDs, err := s.users(ctx, opts.doctors, models.RoleDoctor)
	if err != nil {
		return fmt.Errorf("seed doctors: %w", err)
	}
	patientIDs, err := s.users(ctx, opts.patients, models.RolePatient)
	if err != nil {
		return fmt.Errorf("seed patients: %w", err)
	}
	if err := s.appointments(ctx, opts.appointments, patientIDs, doctorIDs); err != nil {
		return fmt.Errorf("seed appointments: %w", err)
	}
	return nil
}

type seeder struct {
	svc   *app.Services
	faker *gofakeit.Faker
	log   zerolog.Logger
}

func (s *seeder) user(ctx context.Context, username, password string, role models.Role) (*models.User, error) {
	u, err := s.svc.Users.Create(ctx, models.NewUser{
		Username:    username,
		Password:    password,
		PhoneNumber: s.faker.Phone(),
		Role:        role,
	})
	if apperrors.Is(err, apperrors.KindConflict) {
		s.log.Info().Str("username", username).Msg("user already exists, skipping")
		return nil, nil
	}
	return u, err
}

func (s *seeder) users(ctx context.Context, count int, role models.Role) ([]string, error) {
	s.log.Info().Int("count", count).Str("role", string(role)).Msg("seeding users")

	ids := make([]string, 0, count)
	for i := 0; i < count; i++ {
		username := fmt.Sprintf("%s.%s%d", s.faker.FirstName(), s.faker.LastName(), s.faker.Number(10, 99))
		u, err := s.user(ctx, username, "password123", role)
		if err != nil {
			return nil, err
		}
		if u != nil {
			ids = append(ids, u.ID.Hex())
		}
	}
	return ids, nil
}

func (s *seeder) appointments(ctx context.Context, count int, patientIDs, doctorIDs []string) error {
	if len(patientIDs) == 0 || len(doctorIDs) == 0 {
		s.log.Warn().Msg("no patients or doctors seeded, skipping appointments")
		return nil
	}
	s.log.Info().Int("count", count).Msg("seeding appointments")

	start := time.Now()
	end := start.AddDate(0, 2, 0)
	statuses := []models.Status{models.StatusConfirmed, models.StatusCompleted, models.StatusCancelled}

	for i := 0; i < count; i++ {
		at := s.faker.DateRange(start, end)
		apt, err := s.svc.Appointments.Create(ctx, models.Appointment{
			PatientID:       patientIDs[s.faker.Number(0, len(patientIDs)-1)],
			DoctorID:        doctorIDs[s.faker.Number(0, len(doctorIDs)-1)],
			Reason:          reasons[s.faker.Number(0, len(reasons)-1)],
			AppointmentDate: at.Format("2006-01-02"),
			AppointmentTime: fmt.Sprintf("%02d:%02d", s.faker.Number(8, 17), 15*s.faker.Number(0, 3)),
		})
		if err != nil {
			return err
		}

		// leave roughly half of them pending
		if s.faker.Bool() {
			status := statuses[s.faker.Number(0, len(statuses)-1)]
			if _, err := s.svc.Appointments.Update(ctx, apt.ID.Hex(), models.AppointmentPatch{Status: status}); err != nil {
				return err
			}
		}
	}
	return nil
}
