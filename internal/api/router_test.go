package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicbook/appointment-booking/internal/availability"
	"github.com/clinicbook/appointment-booking/internal/booking"
	"github.com/clinicbook/appointment-booking/internal/identity"
	"github.com/clinicbook/appointment-booking/internal/notify"
)

type mutexLocker struct {
	mu sync.Mutex
}

func (l *mutexLocker) WithDoctorLock(ctx context.Context, _ uuid.UUID, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(ctx)
}

type testEnv struct {
	t            *testing.T
	handler      http.Handler
	identityRepo *identity.MemoryRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := zerolog.Nop()
	identityRepo := identity.NewMemoryRepository()
	tokens := identity.NewTokenManager("test-secret", time.Hour)
	identitySvc := identity.NewService(identityRepo, tokens)
	availabilityStore := availability.NewStore(availability.NewMemoryRepository())
	bookingSvc := booking.NewService(
		booking.NewMemoryRepository(),
		availabilityStore,
		identitySvc,
		&mutexLocker{},
		notify.NewLogNotifier(log),
		log,
	)

	handler := NewRouter(RouterConfig{
		Identity:     identitySvc,
		Availability: availabilityStore,
		Booking:      bookingSvc,
		Tokens:       tokens,
		Log:          log,
		Env:          "test",
		Version:      "test",
	})

	return &testEnv{t: t, handler: handler, identityRepo: identityRepo}
}

func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			e.t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return v
}

// registerDoctor registers, approves and logs in a doctor, returning the
// bearer token.
func (e *testEnv) registerDoctor(email string) string {
	e.t.Helper()
	ctx := context.Background()

	rec := e.do("POST", "/auth/register", "", RegisterRequest{
		Email: email, Password: "pw", Name: "Dr " + email, Role: "doctor", Specialty: "Cardiology",
	})
	if rec.Code != http.StatusCreated {
		e.t.Fatalf("register doctor: status %d: %s", rec.Code, rec.Body.String())
	}
	user := decode[UserResponse](e.t, rec)

	doc, err := e.identityRepo.GetDoctorByUserID(ctx, user.ID)
	if err != nil {
		e.t.Fatalf("load doctor: %v", err)
	}
	e.identityRepo.ApproveDoctor(doc.ID)

	return e.login(email)
}

func (e *testEnv) registerPatient(email string) string {
	e.t.Helper()

	rec := e.do("POST", "/auth/register", "", RegisterRequest{
		Email: email, Password: "pw", Name: "Pat " + email, Role: "patient",
	})
	if rec.Code != http.StatusCreated {
		e.t.Fatalf("register patient: status %d: %s", rec.Code, rec.Body.String())
	}
	return e.login(email)
}

func (e *testEnv) login(email string) string {
	e.t.Helper()
	rec := e.do("POST", "/auth/login", "", LoginRequest{Email: email, Password: "pw"})
	if rec.Code != http.StatusOK {
		e.t.Fatalf("login: status %d: %s", rec.Code, rec.Body.String())
	}
	return decode[TokenResponse](e.t, rec).Token
}

// nextTuesday returns the next Tuesday strictly after today, local midnight.
func nextTuesday() time.Time {
	d := time.Now().AddDate(0, 0, 1)
	for d.Weekday() != time.Tuesday {
		d = d.AddDate(0, 0, 1)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.Local)
}

func slotOn(day time.Time, hour, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, time.Local)
}

func (e *testEnv) declareTuesdayWindow(token string) WindowResponse {
	e.t.Helper()
	rec := e.do("POST", "/availability", token, WindowRequest{
		Kind: "recurring", Weekday: "tuesday", Start: "09:00", End: "12:00",
	})
	if rec.Code != http.StatusCreated {
		e.t.Fatalf("declare window: status %d: %s", rec.Code, rec.Body.String())
	}
	return decode[WindowResponse](e.t, rec)
}

func TestAuthRequired(t *testing.T) {
	e := newTestEnv(t)

	if rec := e.do("GET", "/doctors", "", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: status %d, want 401", rec.Code)
	}
	if rec := e.do("GET", "/doctors", "garbage-token", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token: status %d, want 401", rec.Code)
	}
}

func TestRegisterValidation(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do("POST", "/auth/register", "", RegisterRequest{Email: "x@example.com"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing fields: status %d, want 400", rec.Code)
	}

	rec = e.do("POST", "/auth/register", "", RegisterRequest{
		Email: "x@example.com", Password: "pw", Name: "X", Role: "admin",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad role: status %d, want 400", rec.Code)
	}

	e.registerPatient("dup@example.com")
	rec = e.do("POST", "/auth/register", "", RegisterRequest{
		Email: "dup@example.com", Password: "pw", Name: "Dup", Role: "patient",
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate email: status %d, want 409", rec.Code)
	}
}

func TestLoginFailure(t *testing.T) {
	e := newTestEnv(t)
	e.registerPatient("pat@example.com")

	rec := e.do("POST", "/auth/login", "", LoginRequest{Email: "pat@example.com", Password: "wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status %d, want 401", rec.Code)
	}
}

func TestAvailabilityCRUD(t *testing.T) {
	e := newTestEnv(t)
	docToken := e.registerDoctor("doc@example.com")
	patToken := e.registerPatient("pat@example.com")

	win := e.declareTuesdayWindow(docToken)
	if win.Kind != "recurring" || win.Weekday != "tuesday" {
		t.Errorf("window response: %+v", win)
	}

	// Overlapping declaration is rejected.
	rec := e.do("POST", "/availability", docToken, WindowRequest{
		Kind: "recurring", Weekday: "tuesday", Start: "09:30", End: "11:00",
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("overlap: status %d, want 409", rec.Code)
	}

	// Inverted interval is a validation error.
	rec = e.do("POST", "/availability", docToken, WindowRequest{
		Kind: "recurring", Weekday: "wednesday", Start: "12:00", End: "09:00",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("inverted: status %d, want 400", rec.Code)
	}

	// Patients may not manage availability.
	rec = e.do("POST", "/availability", patToken, WindowRequest{
		Kind: "recurring", Weekday: "friday", Start: "09:00", End: "10:00",
	})
	if rec.Code != http.StatusForbidden {
		t.Errorf("patient declare: status %d, want 403", rec.Code)
	}

	// Update and delete round trip.
	rec = e.do("PUT", "/availability/"+win.ID.String(), docToken, WindowRequest{
		Kind: "recurring", Weekday: "tuesday", Start: "09:00", End: "13:00",
	})
	if rec.Code != http.StatusOK {
		t.Errorf("update: status %d: %s", rec.Code, rec.Body.String())
	}
	if updated := decode[WindowResponse](t, rec); updated.End != "13:00" {
		t.Errorf("updated end = %s", updated.End)
	}

	if rec := e.do("DELETE", "/availability/"+win.ID.String(), docToken, nil); rec.Code != http.StatusNoContent {
		t.Errorf("delete: status %d", rec.Code)
	}
	if rec := e.do("DELETE", "/availability/"+win.ID.String(), docToken, nil); rec.Code != http.StatusNotFound {
		t.Errorf("double delete: status %d, want 404", rec.Code)
	}
}

func TestDoctorDiscoveryAndSlots(t *testing.T) {
	e := newTestEnv(t)
	docToken := e.registerDoctor("doc@example.com")
	patToken := e.registerPatient("pat@example.com")
	e.declareTuesdayWindow(docToken)

	rec := e.do("GET", "/doctors?specialty=cardio", patToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list doctors: status %d", rec.Code)
	}
	docs := decode[[]DoctorResponse](t, rec)
	if len(docs) != 1 {
		t.Fatalf("expected 1 doctor, got %d", len(docs))
	}
	doctorID := docs[0].ID

	day := nextTuesday()
	rec = e.do("GET", fmt.Sprintf("/doctors/%s/slots?date=%s", doctorID, day.Format("2006-01-02")), patToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("slots: status %d: %s", rec.Code, rec.Body.String())
	}
	slots := decode[[]availability.SlotView](t, rec)
	if len(slots) != 6 {
		t.Errorf("expected 6 generated slots, got %d", len(slots))
	}

	// Missing date is a bad request.
	rec = e.do("GET", fmt.Sprintf("/doctors/%s/slots", doctorID), patToken, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing date: status %d, want 400", rec.Code)
	}

	// Unknown doctor is a 404.
	rec = e.do("GET", fmt.Sprintf("/doctors/%s/slots?date=%s", uuid.New(), day.Format("2006-01-02")), patToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown doctor: status %d, want 404", rec.Code)
	}
}

func TestAppointmentLifecycle(t *testing.T) {
	e := newTestEnv(t)
	docToken := e.registerDoctor("doc@example.com")
	patToken := e.registerPatient("pat@example.com")
	rivalToken := e.registerPatient("rival@example.com")
	e.declareTuesdayWindow(docToken)

	rec := e.do("GET", "/doctors", patToken, nil)
	doctorID := decode[[]DoctorResponse](t, rec)[0].ID

	day := nextTuesday()
	book := func(token string, startH, startM int) *httptest.ResponseRecorder {
		return e.do("POST", "/appointments", token, CreateAppointmentRequest{
			DoctorID: doctorID.String(),
			Start:    slotOn(day, startH, startM),
			End:      slotOn(day, startH, startM).Add(30 * time.Minute),
		})
	}

	rec = book(patToken, 9, 0)
	if rec.Code != http.StatusCreated {
		t.Fatalf("book: status %d: %s", rec.Code, rec.Body.String())
	}
	appt := decode[AppointmentResponse](t, rec)
	if appt.DurationMinutes != 30 {
		t.Errorf("duration = %d", appt.DurationMinutes)
	}

	// Same slot again conflicts; overlapping interval conflicts too.
	if rec := book(rivalToken, 9, 0); rec.Code != http.StatusConflict {
		t.Errorf("duplicate: status %d, want 409", rec.Code)
	}
	if rec := book(rivalToken, 9, 15); rec.Code != http.StatusConflict {
		t.Errorf("overlap: status %d, want 409", rec.Code)
	}

	// Outside the window is a validation error.
	if rec := book(patToken, 15, 0); rec.Code != http.StatusBadRequest {
		t.Errorf("outside availability: status %d, want 400", rec.Code)
	}

	// Doctors cannot create appointments.
	if rec := book(docToken, 10, 0); rec.Code != http.StatusForbidden {
		t.Errorf("doctor booking: status %d, want 403", rec.Code)
	}

	// Owner and doctor can read it, a rival cannot.
	if rec := e.do("GET", "/appointments/"+appt.ID.String(), patToken, nil); rec.Code != http.StatusOK {
		t.Errorf("owner get: status %d", rec.Code)
	}
	if rec := e.do("GET", "/appointments/"+appt.ID.String(), docToken, nil); rec.Code != http.StatusOK {
		t.Errorf("doctor get: status %d", rec.Code)
	}
	if rec := e.do("GET", "/appointments/"+appt.ID.String(), rivalToken, nil); rec.Code != http.StatusForbidden {
		t.Errorf("rival get: status %d, want 403", rec.Code)
	}

	// Both sides see it in their lists.
	for _, token := range []string{patToken, docToken} {
		rec := e.do("GET", "/appointments", token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("list: status %d", rec.Code)
		}
		if appts := decode[[]AppointmentResponse](t, rec); len(appts) != 1 {
			t.Errorf("expected 1 appointment in list, got %d", len(appts))
		}
	}

	// Reschedule to a free slot; a rival cannot move it.
	rec = e.do("PUT", "/appointments/"+appt.ID.String(), patToken, RescheduleRequest{
		Start: slotOn(day, 10, 0),
		End:   slotOn(day, 10, 30),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("reschedule: status %d: %s", rec.Code, rec.Body.String())
	}
	rec = e.do("PUT", "/appointments/"+appt.ID.String(), rivalToken, RescheduleRequest{
		Start: slotOn(day, 11, 0),
		End:   slotOn(day, 11, 30),
	})
	if rec.Code != http.StatusForbidden {
		t.Errorf("rival reschedule: status %d, want 403", rec.Code)
	}

	// Cancel frees the slot for someone else.
	if rec := e.do("DELETE", "/appointments/"+appt.ID.String(), patToken, nil); rec.Code != http.StatusNoContent {
		t.Errorf("cancel: status %d", rec.Code)
	}
	if rec := book(rivalToken, 10, 0); rec.Code != http.StatusCreated {
		t.Errorf("rebook after cancel: status %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRequestIDPropagation(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do("POST", "/auth/login", "", LoginRequest{Email: "nobody@example.com", Password: "pw"})
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected a generated X-Request-ID header")
	}

	req := httptest.NewRequest("POST", "/auth/login", bytes.NewBufferString("{}"))
	req.Header.Set("X-Request-ID", "fixed-id")
	out := httptest.NewRecorder()
	e.handler.ServeHTTP(out, req)
	if got := out.Header().Get("X-Request-ID"); got != "fixed-id" {
		t.Errorf("request ID not propagated, got %q", got)
	}
}
