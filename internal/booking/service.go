package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicbook/appointment-booking/internal/availability"
	"github.com/clinicbook/appointment-booking/internal/identity"
	"github.com/clinicbook/appointment-booking/internal/notify"
	redisclient "github.com/clinicbook/appointment-booking/internal/redis"
)

var (
	ErrNotOwner          = errors.New("appointment belongs to another patient")
	ErrDoctorNotBookable = errors.New("doctor is not accepting appointments")
	ErrDoctorBusy        = errors.New("doctor is currently being booked, please retry")
)

// WindowSource resolves a doctor's declared availability windows.
type WindowSource interface {
	WindowsFor(ctx context.Context, doctorID uuid.UUID) ([]availability.AvailabilityWindow, error)
}

// Directory resolves doctor and patient profiles.
type Directory interface {
	GetDoctor(ctx context.Context, id uuid.UUID) (*identity.Doctor, error)
	GetPatient(ctx context.Context, id uuid.UUID) (*identity.Patient, error)
}

// Service is the appointment ledger. All booking writes go through it, and
// every write re-validates inside a per-doctor lock so two concurrent
// requests cannot both pass the overlap check against the same snapshot.
type Service struct {
	repo     Repository
	windows  WindowSource
	dir      Directory
	locker   redisclient.Locker
	notifier notify.Notifier
	log      zerolog.Logger
	now      func() time.Time
}

func NewService(repo Repository, windows WindowSource, dir Directory, locker redisclient.Locker, notifier notify.Notifier, log zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		windows:  windows,
		dir:      dir,
		locker:   locker,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// Book validates and commits a new appointment for the patient.
func (s *Service) Book(ctx context.Context, patientID, doctorID uuid.UUID, start, end time.Time) (*Appointment, error) {
	doctor, err := s.dir.GetDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if !doctor.Approved {
		return nil, ErrDoctorNotBookable
	}

	patient, err := s.dir.GetPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	appt := &Appointment{
		ID:        uuid.New(),
		DoctorID:  doctorID,
		PatientID: patientID,
		Start:     start,
		End:       end,
	}

	err = s.locker.WithDoctorLock(ctx, doctorID, func(lockCtx context.Context) error {
		if err := s.validateInLock(lockCtx, doctorID, start, end, uuid.Nil); err != nil {
			return err
		}
		return s.repo.Insert(lockCtx, appt)
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrDoctorBusy
		}
		return nil, err
	}

	s.sendBookingMail(ctx, doctor, patient, appt, "booked")
	return appt, nil
}

// Reschedule moves an existing appointment. Only the owning patient may
// reschedule, and the appointment's own interval is excluded from the
// overlap scan so moving it onto itself succeeds.
func (s *Service) Reschedule(ctx context.Context, patientID, apptID uuid.UUID, newStart, newEnd time.Time) (*Appointment, error) {
	appt, err := s.repo.GetByID(ctx, apptID)
	if err != nil {
		return nil, err
	}
	if appt.PatientID != patientID {
		return nil, ErrNotOwner
	}

	doctor, err := s.dir.GetDoctor(ctx, appt.DoctorID)
	if err != nil {
		return nil, err
	}
	patient, err := s.dir.GetPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	err = s.locker.WithDoctorLock(ctx, appt.DoctorID, func(lockCtx context.Context) error {
		if err := s.validateInLock(lockCtx, appt.DoctorID, newStart, newEnd, appt.ID); err != nil {
			return err
		}
		appt.Start = newStart
		appt.End = newEnd
		return s.repo.Update(lockCtx, appt)
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrDoctorBusy
		}
		return nil, err
	}

	s.sendBookingMail(ctx, doctor, patient, appt, "rescheduled")
	return appt, nil
}

// Cancel removes the appointment and fires a cancellation notification. The
// owning patient or the appointment's doctor may cancel; notification
// failure never undoes the cancellation.
func (s *Service) Cancel(ctx context.Context, caller identity.Principal, apptID uuid.UUID) error {
	appt, err := s.repo.GetByID(ctx, apptID)
	if err != nil {
		return err
	}
	if !s.mayAccess(caller, appt) {
		return ErrNotOwner
	}

	if err := s.repo.Delete(ctx, apptID); err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}

	doctor, derr := s.dir.GetDoctor(ctx, appt.DoctorID)
	patient, perr := s.dir.GetPatient(ctx, appt.PatientID)
	if derr == nil && perr == nil {
		s.sendBookingMail(ctx, doctor, patient, appt, "cancelled")
	}
	return nil
}

// Get returns a single appointment to its patient or doctor.
func (s *Service) Get(ctx context.Context, caller identity.Principal, apptID uuid.UUID) (*Appointment, error) {
	appt, err := s.repo.GetByID(ctx, apptID)
	if err != nil {
		return nil, err
	}
	if !s.mayAccess(caller, appt) {
		return nil, ErrNotOwner
	}
	return appt, nil
}

func (s *Service) ListForDoctor(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]Appointment, error) {
	return s.repo.ListByDoctor(ctx, doctorID, from, to)
}

func (s *Service) ListForPatient(ctx context.Context, patientID uuid.UUID, from, to time.Time) ([]Appointment, error) {
	return s.repo.ListByPatient(ctx, patientID, from, to)
}

// OpenSlots derives the doctor's bookable slots for one calendar day,
// labeling slots already taken or already underway.
func (s *Service) OpenSlots(ctx context.Context, doctorID uuid.UUID, day time.Time) ([]availability.SlotView, error) {
	doctor, err := s.dir.GetDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if !doctor.Approved {
		return nil, ErrDoctorNotBookable
	}

	windows, err := s.windows.WindowsFor(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("load windows: %w", err)
	}

	dayStart := availability.TimeOfDay(0).On(day)
	appts, err := s.repo.ListByDoctor(ctx, doctorID, dayStart, dayStart.Add(24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("load appointments: %w", err)
	}
	booked := make([]availability.Slot, 0, len(appts))
	for _, a := range appts {
		booked = append(booked, a.Interval())
	}

	now := s.now()
	var views []availability.SlotView
	for _, w := range windows {
		views = append(views, availability.AvailableSlots(w, day, booked, now)...)
	}
	return views, nil
}

// SendReminders emails both parties of every appointment starting inside
// [from, to). Failures are counted, not fatal: one bad address must not stop
// the rest of the batch.
func (s *Service) SendReminders(ctx context.Context, from, to time.Time) (sent, failed int, err error) {
	appts, err := s.repo.ListStartingBetween(ctx, from, to)
	if err != nil {
		return 0, 0, fmt.Errorf("list upcoming appointments: %w", err)
	}

	for i := range appts {
		appt := &appts[i]
		doctor, derr := s.dir.GetDoctor(ctx, appt.DoctorID)
		if derr != nil {
			s.log.Warn().Err(derr).Str("appointment_id", appt.ID.String()).Msg("reminder skipped, doctor lookup failed")
			failed++
			continue
		}
		patient, perr := s.dir.GetPatient(ctx, appt.PatientID)
		if perr != nil {
			s.log.Warn().Err(perr).Str("appointment_id", appt.ID.String()).Msg("reminder skipped, patient lookup failed")
			failed++
			continue
		}

		msg := notify.Message{
			To:      []string{patient.Email, doctor.Email},
			Subject: fmt.Sprintf("Reminder: appointment on %s with Dr. %s", appt.Start.Format("2006-01-02"), doctor.Name),
			Body: fmt.Sprintf(
				"Hello %s,\n\nThis is a reminder of your upcoming appointment with Dr. %s.\nDate: %s\nTime: %s - %s\n\nThank you for using our service.",
				patient.Name,
				doctor.Name,
				appt.Start.Format("2006-01-02"),
				appt.Start.Format("15:04"),
				appt.End.Format("15:04"),
			),
		}
		if nerr := s.notifier.Notify(ctx, msg); nerr != nil {
			s.log.Warn().Err(nerr).Str("appointment_id", appt.ID.String()).Msg("reminder notification failed")
			failed++
			continue
		}
		sent++
	}
	return sent, failed, nil
}

// validateInLock re-reads the doctor's windows and overlapping appointments
// and runs the validator. Must be called with the doctor lock held.
func (s *Service) validateInLock(ctx context.Context, doctorID uuid.UUID, start, end time.Time, excluding uuid.UUID) error {
	windows, err := s.windows.WindowsFor(ctx, doctorID)
	if err != nil {
		return fmt.Errorf("load windows: %w", err)
	}
	existing, err := s.repo.Overlapping(ctx, doctorID, start, end, excluding)
	if err != nil {
		return fmt.Errorf("check overlapping appointments: %w", err)
	}
	return Validate(start, end, windows, existing, excluding, s.now())
}

func (s *Service) mayAccess(caller identity.Principal, appt *Appointment) bool {
	switch caller.Role {
	case identity.RolePatient:
		return caller.ProfileID == appt.PatientID
	case identity.RoleDoctor:
		return caller.ProfileID == appt.DoctorID
	}
	return false
}

func (s *Service) sendBookingMail(ctx context.Context, doctor *identity.Doctor, patient *identity.Patient, appt *Appointment, event string) {
	subject := fmt.Sprintf("Appointment %s: %s with Dr. %s", event, appt.Start.Format("2006-01-02"), doctor.Name)
	body := fmt.Sprintf(
		"Hello %s,\n\nYour appointment with Dr. %s has been %s.\nDate: %s\nTime: %s - %s\n\nThank you for using our service.",
		patient.Name,
		doctor.Name,
		event,
		appt.Start.Format("2006-01-02"),
		appt.Start.Format("15:04"),
		appt.End.Format("15:04"),
	)

	msg := notify.Message{
		To:      []string{patient.Email, doctor.Email},
		Subject: subject,
		Body:    body,
	}
	if err := s.notifier.Notify(ctx, msg); err != nil {
		s.log.Warn().Err(err).
			Str("appointment_id", appt.ID.String()).
			Str("event", event).
			Msg("booking notification failed")
	}
}
