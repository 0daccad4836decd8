package service

import (
	"context"
	"io"
	"testing"
	"time"

	"naumstay/internal/bookings/availability"
	roomserrors "naumstay/internal/rooms/errors"
	"naumstay/pkg/config"
	apperrors "naumstay/pkg/errors"
	"naumstay/pkg/logger"
	"naumstay/pkg/model"
)

type mockRoomRepo struct {
	createFunc  func(ctx context.Context, room *model.Room) error
	findByID    func(ctx context.Context, id string) (*model.Room, error)
	findAllFunc func(ctx context.Context, limit int, offset int64) ([]*model.Room, error)
	updateFunc  func(ctx context.Context, id string, updates *model.RoomUpdate) error
	deleteFunc  func(ctx context.Context, id string) error
	countFunc   func(ctx context.Context) (int64, error)
}

func (m *mockRoomRepo) Create(ctx context.Context, room *model.Room) error {
	return m.createFunc(ctx, room)
}

func (m *mockRoomRepo) FindByID(ctx context.Context, id string) (*model.Room, error) {
	return m.findByID(ctx, id)
}

func (m *mockRoomRepo) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Room, error) {
	return m.findAllFunc(ctx, limit, offset)
}

func (m *mockRoomRepo) Update(ctx context.Context, id string, updates *model.RoomUpdate) error {
	return m.updateFunc(ctx, id, updates)
}

func (m *mockRoomRepo) Delete(ctx context.Context, id string) error {
	return m.deleteFunc(ctx, id)
}

func (m *mockRoomRepo) Count(ctx context.Context) (int64, error) {
	return m.countFunc(ctx)
}

func (m *mockRoomRepo) EnsureIndexes(ctx context.Context) error { return nil }

type mockBookingIndex struct {
	ranges map[string][]availability.Range
}

func (m *mockBookingIndex) RangesByRoom(ctx context.Context) (map[string][]availability.Range, error) {
	return m.ranges, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard}),
	}
}

func day(offset int) time.Time {
	return time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func TestCreate_ValidationFailure(t *testing.T) {
	svc := NewRoomService(&mockRoomRepo{}, &mockBookingIndex{}, testConfig())

	err := svc.Create(context.Background(), &model.Room{Name: "x"}) // name too short
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Errorf("expected validation code, got: %v", err)
	}
}

func TestCreate_DuplicateName(t *testing.T) {
	repo := &mockRoomRepo{
		createFunc: func(ctx context.Context, room *model.Room) error {
			return roomserrors.ErrDuplicate
		},
	}
	svc := NewRoomService(repo, &mockBookingIndex{}, testConfig())

	err := svc.Create(context.Background(), &model.Room{Name: "Garden Suite", Price: 100})
	if !apperrors.IsCode(err, apperrors.CodeConflict) {
		t.Errorf("expected conflict code, got: %v", err)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo := &mockRoomRepo{
		findByID: func(ctx context.Context, id string) (*model.Room, error) {
			return nil, roomserrors.ErrNotFound
		},
	}
	svc := NewRoomService(repo, &mockBookingIndex{}, testConfig())

	_, err := svc.GetByID(context.Background(), "missing")
	if !apperrors.IsCode(err, apperrors.CodeRoomNotFound) {
		t.Errorf("expected room not found code, got: %v", err)
	}
}

func TestFindAvailable(t *testing.T) {
	rooms := []*model.Room{
		{ID: "small", Name: "Small Room", Price: 80, MaxOccupancy: &model.Occupancy{Adults: 2, Children: 1}},
		{ID: "large", Name: "Large Room", Price: 150, MaxOccupancy: &model.Occupancy{Adults: 4, Children: 3}},
		{ID: "open", Name: "Open Room", Price: 120},
	}
	repo := &mockRoomRepo{
		findAllFunc: func(ctx context.Context, limit int, offset int64) ([]*model.Room, error) {
			return rooms, nil
		},
	}

	cases := []struct {
		name             string
		occupied         map[string][]availability.Range
		checkIn, checkOut time.Time
		adults, children int
		wantIDs          []string
	}{
		{
			name:     "no bookings, small party",
			occupied: map[string][]availability.Range{},
			checkIn:  day(0), checkOut: day(3),
			adults: 2, children: 1,
			wantIDs: []string{"small", "large", "open"},
		},
		{
			name:     "party too large for small room",
			occupied: map[string][]availability.Range{},
			checkIn:  day(0), checkOut: day(3),
			adults: 3, children: 0,
			wantIDs: []string{"large", "open"},
		},
		{
			name: "overlapping booking removes a room",
			occupied: map[string][]availability.Range{
				"large": {availability.NewRange(day(1), day(2))},
			},
			checkIn: day(0), checkOut: day(3),
			adults: 2, children: 0,
			wantIDs: []string{"small", "open"},
		},
		{
			name: "touching booking keeps the room",
			occupied: map[string][]availability.Range{
				"large": {availability.NewRange(day(3), day(5))},
			},
			checkIn: day(0), checkOut: day(3),
			adults: 2, children: 0,
			wantIDs: []string{"small", "large", "open"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewRoomService(repo, &mockBookingIndex{ranges: tc.occupied}, testConfig())

			got, err := svc.FindAvailable(context.Background(), tc.checkIn, tc.checkOut, tc.adults, tc.children)
			if err != nil {
				t.Fatalf("FindAvailable failed: %v", err)
			}

			var gotIDs []string
			for _, r := range got {
				gotIDs = append(gotIDs, r.ID)
			}
			if len(gotIDs) != len(tc.wantIDs) {
				t.Fatalf("got rooms %v, want %v", gotIDs, tc.wantIDs)
			}
			for i := range tc.wantIDs {
				if gotIDs[i] != tc.wantIDs[i] {
					t.Fatalf("got rooms %v, want %v", gotIDs, tc.wantIDs)
				}
			}
		})
	}
}

func TestFindAvailable_InvalidRange(t *testing.T) {
	svc := NewRoomService(&mockRoomRepo{}, &mockBookingIndex{}, testConfig())

	_, err := svc.FindAvailable(context.Background(), day(3), day(3), 2, 0)
	if !apperrors.IsCode(err, apperrors.CodeInvalidDateRange) {
		t.Errorf("expected invalid date range code, got: %v", err)
	}

	_, err = svc.FindAvailable(context.Background(), day(0), day(3), 0, 0)
	if !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected invalid input code for zero adults, got: %v", err)
	}
}
