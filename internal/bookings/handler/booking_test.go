package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"

	"naumstay/internal/bookings/availability"
	apperrors "naumstay/pkg/errors"
	"naumstay/pkg/logger"
	"naumstay/pkg/model"
)

type mockBookingService struct {
	reserveFunc           func(ctx context.Context, booking *model.Booking) (*model.Booking, error)
	checkAvailabilityFunc func(ctx context.Context, roomID string, checkIn, checkOut time.Time) (bool, error)
	cancelFunc            func(ctx context.Context, id string) error
}

func (m *mockBookingService) Reserve(ctx context.Context, booking *model.Booking) (*model.Booking, error) {
	if m.reserveFunc != nil {
		return m.reserveFunc(ctx, booking)
	}
	return booking, nil
}

func (m *mockBookingService) Update(ctx context.Context, id string, updates *model.BookingUpdate) (*model.Booking, error) {
	return &model.Booking{ID: id}, nil
}

func (m *mockBookingService) Cancel(ctx context.Context, id string) error {
	if m.cancelFunc != nil {
		return m.cancelFunc(ctx, id)
	}
	return nil
}

func (m *mockBookingService) CheckAvailability(ctx context.Context, roomID string, checkIn, checkOut time.Time) (bool, error) {
	if m.checkAvailabilityFunc != nil {
		return m.checkAvailabilityFunc(ctx, roomID, checkIn, checkOut)
	}
	return true, nil
}

func (m *mockBookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	return &model.Booking{ID: id}, nil
}

func (m *mockBookingService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error) {
	return []*model.Booking{}, 0, nil
}

func (m *mockBookingService) GetByRoom(ctx context.Context, roomID string) ([]*model.Booking, error) {
	return []*model.Booking{}, nil
}

func (m *mockBookingService) SearchByGuest(ctx context.Context, email, roomID string) ([]*model.Booking, error) {
	return []*model.Booking{}, nil
}

func (m *mockBookingService) RangesByRoom(ctx context.Context) (map[string][]availability.Range, error) {
	return map[string][]availability.Range{}, nil
}

func newTestRouter(svc *mockBookingService) *httprouter.Router {
	log := logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard})
	router := httprouter.New()
	NewBookingHandler(svc, log).RegisterRoutes(router)
	return router
}

func TestCreate_ParsesDates(t *testing.T) {
	var received *model.Booking
	svc := &mockBookingService{
		reserveFunc: func(ctx context.Context, booking *model.Booking) (*model.Booking, error) {
			received = booking
			booking.ID = "65f000000000000000000002"
			return booking, nil
		},
	}
	router := newTestRouter(svc)

	body := `{
		"room_id": "65f000000000000000000001",
		"check_in_date": "2027-07-01",
		"check_out_date": "2027-07-04",
		"adults": 2,
		"guest": {"first_name": "Elena", "last_name": "Naumova", "email": "elena@example.com", "phone": "+359888123456"}
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if received == nil {
		t.Fatal("service never received the booking")
	}
	wantIn := time.Date(2027, 7, 1, 0, 0, 0, 0, time.UTC)
	if !received.CheckInDate.Equal(wantIn) {
		t.Errorf("check-in parsed as %v, want %v", received.CheckInDate, wantIn)
	}
}

func TestCreate_MalformedDate(t *testing.T) {
	router := newTestRouter(&mockBookingService{})

	body := `{"room_id": "65f000000000000000000001", "check_in_date": "01/07/2027", "check_out_date": "2027-07-04"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var resp struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	if resp.Code != apperrors.CodeInvalidDateRange {
		t.Errorf("expected code %s, got %s", apperrors.CodeInvalidDateRange, resp.Code)
	}
}

func TestCreate_ConflictMapsTo409(t *testing.T) {
	svc := &mockBookingService{
		reserveFunc: func(ctx context.Context, booking *model.Booking) (*model.Booking, error) {
			return nil, apperrors.DateRangeUnavailable("the room is already booked for the selected dates")
		},
	}
	router := newTestRouter(svc)

	body := `{"room_id": "65f000000000000000000001", "check_in_date": "2027-07-01", "check_out_date": "2027-07-04"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestAvailability_RequiresParameters(t *testing.T) {
	router := newTestRouter(&mockBookingService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/availability?room_id=65f000000000000000000001", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing dates, got %d", rec.Code)
	}
}

func TestAvailability_ReportsResult(t *testing.T) {
	svc := &mockBookingService{
		checkAvailabilityFunc: func(ctx context.Context, roomID string, checkIn, checkOut time.Time) (bool, error) {
			return false, nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/bookings/availability?room_id=65f000000000000000000001&check_in_date=2027-07-01&check_out_date=2027-07-04", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data availabilityResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if resp.Data.Available {
		t.Error("expected available=false in response")
	}
}

func TestDelete_NoContent(t *testing.T) {
	router := newTestRouter(&mockBookingService{})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/bookings/id/65f000000000000000000002", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestSearch_RequiresEmail(t *testing.T) {
	router := newTestRouter(&mockBookingService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/search", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing guest_email, got %d", rec.Code)
	}
}
