package service

import (
	"context"
	"errors"
	"sync"
	"time"

	goval "github.com/go-playground/validator/v10"

	"naumstay/internal/bookings/availability"
	roomserrors "naumstay/internal/rooms/errors"
	"naumstay/internal/rooms/repository"
	"naumstay/pkg/config"
	apperrors "naumstay/pkg/errors"
	"naumstay/pkg/model"
)

// BookingIndex provides the occupied date ranges the room search filters
// against. The bookings domain implements it; rooms never read the booking
// collection directly.
type BookingIndex interface {
	RangesByRoom(ctx context.Context) (map[string][]availability.Range, error)
}

type RoomService interface {
	Create(ctx context.Context, room *model.Room) error
	GetByID(ctx context.Context, id string) (*model.Room, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Room, int64, error)
	Update(ctx context.Context, id string, updates *model.RoomUpdate) error
	Delete(ctx context.Context, id string) error
	FindAvailable(ctx context.Context, checkIn, checkOut time.Time, adults, children int) ([]*model.Room, error)
}

type roomService struct {
	repo     repository.RoomRepository
	bookings BookingIndex
	checker  availability.Checker
	validate *goval.Validate
	cfg      *config.Config
}

func NewRoomService(repo repository.RoomRepository, bookings BookingIndex, cfg *config.Config) RoomService {
	return &roomService{
		repo:     repo,
		bookings: bookings,
		checker:  availability.LinearChecker{},
		validate: goval.New(),
		cfg:      cfg,
	}
}

func (s *roomService) Create(ctx context.Context, room *model.Room) error {
	if err := s.validate.Struct(room); err != nil {
		s.cfg.Log.Warn("Room validation failed", "error", err)
		return apperrors.Validation("Room validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, room); err != nil {
		if errors.Is(err, roomserrors.ErrDuplicate) {
			return apperrors.Conflict("a room with this name already exists")
		}
		return apperrors.StorageUnavailable(err)
	}

	s.cfg.Log.Info("Room created", "id", room.ID, "name", room.Name)
	return nil
}

func (s *roomService) GetByID(ctx context.Context, id string) (*model.Room, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Room ID cannot be empty")
	}

	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, roomserrors.ErrNotFound) || errors.Is(err, roomserrors.ErrInvalidID) {
			return nil, apperrors.RoomNotFound(id)
		}
		return nil, apperrors.StorageUnavailable(err)
	}
	return room, nil
}

func (s *roomService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Room, int64, error) {
	var count int64
	var rooms []*model.Room
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count rooms", "error", errCount)
			errCount = apperrors.StorageUnavailable(errCount)
		}
	}()

	go func() {
		defer wg.Done()
		rooms, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list rooms", "error", errFind)
			errFind = apperrors.StorageUnavailable(errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	return rooms, count, nil
}

func (s *roomService) Update(ctx context.Context, id string, updates *model.RoomUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Room ID cannot be empty")
	}
	if err := s.validate.Struct(updates); err != nil {
		s.cfg.Log.Warn("Room update validation failed", "error", err)
		return apperrors.Validation("Room update validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		switch {
		case errors.Is(err, roomserrors.ErrNotFound), errors.Is(err, roomserrors.ErrInvalidID):
			return apperrors.RoomNotFound(id)
		case errors.Is(err, roomserrors.ErrDuplicate):
			return apperrors.Conflict("a room with this name already exists")
		default:
			return apperrors.StorageUnavailable(err)
		}
	}

	s.cfg.Log.Info("Room updated", "id", id)
	return nil
}

func (s *roomService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Room ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, roomserrors.ErrNotFound) || errors.Is(err, roomserrors.ErrInvalidID) {
			return apperrors.RoomNotFound(id)
		}
		return apperrors.StorageUnavailable(err)
	}

	s.cfg.Log.Info("Room deleted", "id", id)
	return nil
}

// FindAvailable lists rooms that fit the party and have the range free.
// Both the room list and the occupied ranges are read fresh per call.
func (s *roomService) FindAvailable(ctx context.Context, checkIn, checkOut time.Time, adults, children int) ([]*model.Room, error) {
	candidate := availability.NewRange(checkIn, checkOut)
	if !candidate.Valid() {
		return nil, apperrors.InvalidDateRange("check_out_date must be after check_in_date")
	}
	if adults < 1 {
		return nil, apperrors.InvalidInput("'adults' must be at least 1")
	}

	rooms, err := s.repo.FindAll(ctx, 0, 0)
	if err != nil {
		return nil, apperrors.StorageUnavailable(err)
	}

	occupied, err := s.bookings.RangesByRoom(ctx)
	if err != nil {
		return nil, err
	}

	return availability.FilterRooms(s.checker, rooms, occupied, candidate, adults, children), nil
}
