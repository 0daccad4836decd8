package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"naumstay/internal/bookings/availability"
	bookingserrors "naumstay/internal/bookings/errors"
	"naumstay/internal/bookings/repository"
	"naumstay/internal/bookings/validator"
	roomserrors "naumstay/internal/rooms/errors"
	"naumstay/pkg/config"
	apperrors "naumstay/pkg/errors"
	"naumstay/pkg/model"
)

// RoomFinder is the slice of the rooms domain the reservation flow needs.
type RoomFinder interface {
	FindByID(ctx context.Context, id string) (*model.Room, error)
}

// Notifier receives hooks after a booking is confirmed or changed. Delivery
// is best-effort; implementations must not fail the reservation.
type Notifier interface {
	BookingCreated(ctx context.Context, booking *model.Booking)
	BookingUpdated(ctx context.Context, booking *model.Booking)
}

type BookingService interface {
	Reserve(ctx context.Context, booking *model.Booking) (*model.Booking, error)
	Update(ctx context.Context, id string, updates *model.BookingUpdate) (*model.Booking, error)
	Cancel(ctx context.Context, id string) error
	CheckAvailability(ctx context.Context, roomID string, checkIn, checkOut time.Time) (bool, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error)
	GetByRoom(ctx context.Context, roomID string) ([]*model.Booking, error)
	SearchByGuest(ctx context.Context, email, roomID string) ([]*model.Booking, error)
	RangesByRoom(ctx context.Context) (map[string][]availability.Range, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	lockRepo  repository.RoomLockRepository
	counter   repository.ReferenceCounter
	rooms     RoomFinder
	checker   availability.Checker
	validator *validator.BookingValidator
	notifier  Notifier
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.RoomLockRepository,
	counter repository.ReferenceCounter,
	rooms RoomFinder,
	bookingValidator *validator.BookingValidator,
	notifier Notifier,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		counter:   counter,
		rooms:     rooms,
		checker:   availability.LinearChecker{},
		validator: bookingValidator,
		notifier:  notifier,
		cfg:       cfg,
	}
}

// Reserve runs the check-then-write reservation protocol.
//
// The storage layer offers no compare-and-swap across the availability check
// and the insert, so the insert is optimistic and followed by a re-validation
// pass: the fresh booking is re-checked against every sibling that may have
// been written concurrently, and a deterministic loser (later created_at, id
// as tie-break) deletes itself. A per-room advisory lock narrows the race
// window up front but is not relied upon for correctness.
func (s *bookingService) Reserve(ctx context.Context, booking *model.Booking) (*model.Booking, error) {
	s.applyDefaults(booking)
	stay := availability.NewRange(booking.CheckInDate, booking.CheckOutDate)
	booking.CheckInDate, booking.CheckOutDate = stay.CheckIn, stay.CheckOut

	if err := s.validate(booking); err != nil {
		return nil, err
	}

	room, err := s.resolveRoom(ctx, booking.RoomID)
	if err != nil {
		return nil, err
	}
	// Snapshot room name and price so later room edits never change what
	// this guest agreed to pay.
	booking.RoomName = room.Name
	booking.RoomPrice = room.Price
	booking.Nights = stay.Nights()
	booking.TotalCost = float64(stay.Nights()) * room.Price

	lockID, err := s.acquireRoomLock(ctx, booking.RoomID)
	if err != nil {
		return nil, err
	}
	defer s.releaseRoomLock(ctx, lockID)

	existing, err := s.repo.FindByRoom(ctx, booking.RoomID)
	if err != nil {
		return nil, apperrors.StorageUnavailable(err)
	}
	if !s.checker.RangeFree(staysOf(existing, ""), stay) {
		return nil, apperrors.DateRangeUnavailable("the room is already booked for the selected dates")
	}

	// Reference minting and the insert share a transaction so a failed
	// insert does not burn a counter value. created_at is part of the
	// conflict tie-break, so it is assigned here rather than left to the
	// repository.
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		seq, err := s.counter.Next(sessCtx)
		if err != nil {
			return err
		}
		booking.Reference = fmt.Sprintf("%s-%06d", s.cfg.ReferencePrefix, seq)
		booking.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
		return s.repo.Create(sessCtx, booking)
	})
	if err != nil {
		return nil, apperrors.StorageUnavailable(err)
	}

	if err := s.reconcileAfterWrite(ctx, booking, stay, rollbackDelete); err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Booking confirmed",
		"id", booking.ID,
		"reference", booking.Reference,
		"room_id", booking.RoomID,
		"check_in", booking.CheckInDate,
		"check_out", booking.CheckOutDate,
		"nights", booking.Nights,
		"total_cost", booking.TotalCost,
	)

	if s.notifier != nil {
		s.notifier.BookingCreated(ctx, booking)
	}
	return booking, nil
}

func (s *bookingService) Update(ctx context.Context, id string, updates *model.BookingUpdate) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, id)
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		return nil, s.classifyValidation(err)
	}

	previous := *existing
	merged := s.merge(existing, updates)
	stay := availability.NewRange(merged.CheckInDate, merged.CheckOutDate)
	merged.CheckInDate, merged.CheckOutDate = stay.CheckIn, stay.CheckOut

	datesChanged := !merged.CheckInDate.Equal(previous.CheckInDate) ||
		!merged.CheckOutDate.Equal(previous.CheckOutDate)
	if datesChanged {
		if err := s.validator.ValidateDates(merged.CheckInDate, merged.CheckOutDate); err != nil {
			return nil, apperrors.InvalidDateRange(err.Error())
		}
	} else if !stay.Valid() {
		return nil, apperrors.InvalidDateRange("check_out_date must be after check_in_date")
	}

	// The nightly rate stays the snapshot taken at reservation time.
	merged.Nights = stay.Nights()
	merged.TotalCost = float64(stay.Nights()) * merged.RoomPrice

	lockID, err := s.acquireRoomLock(ctx, merged.RoomID)
	if err != nil {
		return nil, err
	}
	defer s.releaseRoomLock(ctx, lockID)

	others, err := s.repo.FindByRoom(ctx, merged.RoomID)
	if err != nil {
		return nil, apperrors.StorageUnavailable(err)
	}
	if !s.checker.RangeFree(staysOf(others, merged.ID), stay) {
		return nil, apperrors.DateRangeUnavailable("the room is already booked for the new dates")
	}

	if err := s.repo.Update(ctx, id, merged); err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		return nil, apperrors.StorageUnavailable(err)
	}

	restore := func(ctx context.Context, svc *bookingService, b *model.Booking) error {
		return svc.repo.Update(ctx, b.ID, &previous)
	}
	if err := s.reconcileAfterWrite(ctx, merged, stay, restore); err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Booking updated", "id", id, "reference", merged.Reference)

	if s.notifier != nil {
		s.notifier.BookingUpdated(ctx, merged)
	}
	return merged, nil
}

func (s *bookingService) Cancel(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Booking ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid booking ID format")
		}
		return apperrors.StorageUnavailable(err)
	}

	s.cfg.Log.Info("Booking cancelled", "id", id)
	return nil
}

// CheckAvailability answers the live pre-submission probe. Same overlap
// semantics as Reserve, never writes.
func (s *bookingService) CheckAvailability(ctx context.Context, roomID string, checkIn, checkOut time.Time) (bool, error) {
	stay := availability.NewRange(checkIn, checkOut)
	if !stay.Valid() {
		return false, apperrors.InvalidDateRange("check_out_date must be after check_in_date")
	}

	if _, err := s.resolveRoom(ctx, roomID); err != nil {
		return false, err
	}

	existing, err := s.repo.FindByRoom(ctx, roomID)
	if err != nil {
		return false, apperrors.StorageUnavailable(err)
	}
	return s.checker.RangeFree(staysOf(existing, ""), stay), nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, id)
	}
	return booking, nil
}

func (s *bookingService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error) {
	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", errCount)
			errCount = apperrors.StorageUnavailable(errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "error", errFind)
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
	return bookings, count, nil
}

func (s *bookingService) GetByRoom(ctx context.Context, roomID string) ([]*model.Booking, error) {
	if roomID == "" {
		return nil, apperrors.InvalidInput("Room ID cannot be empty")
	}
	bookings, err := s.repo.FindByRoom(ctx, roomID)
	if err != nil {
		return nil, apperrors.StorageUnavailable(err)
	}
	return bookings, nil
}

// SearchByGuest lets a client that timed out mid-reservation find out
// whether its write landed before retrying.
func (s *bookingService) SearchByGuest(ctx context.Context, email, roomID string) ([]*model.Booking, error) {
	if email == "" {
		return nil, apperrors.InvalidInput("Guest email cannot be empty")
	}
	bookings, err := s.repo.FindByGuestEmailAndRoom(ctx, email, roomID)
	if err != nil {
		return nil, apperrors.StorageUnavailable(err)
	}
	return bookings, nil
}

// RangesByRoom collapses the booking set into per-room occupied ranges for
// the room search. Computed fresh per call; no availability cache exists to
// go stale.
func (s *bookingService) RangesByRoom(ctx context.Context) (map[string][]availability.Range, error) {
	bookings, err := s.repo.FindAll(ctx, 0, 0)
	if err != nil {
		return nil, apperrors.StorageUnavailable(err)
	}

	byRoom := make(map[string][]availability.Range)
	for _, b := range bookings {
		byRoom[b.RoomID] = append(byRoom[b.RoomID], availability.NewRange(b.CheckInDate, b.CheckOutDate))
	}
	return byRoom, nil
}

// --- Protocol internals ---

// rollbackFunc undoes the optimistic write when the booking loses its
// post-write conflict resolution.
type rollbackFunc func(ctx context.Context, svc *bookingService, booking *model.Booking) error

func rollbackDelete(ctx context.Context, svc *bookingService, booking *model.Booking) error {
	return svc.repo.Delete(ctx, booking.ID)
}

// reconcileAfterWrite closes the race window left open between the
// availability read and the write. It re-fetches the room's bookings and
// re-runs the overlap check treating the just-written booking as the
// candidate. Whoever detects a conflict resolves it: if the overlapping
// sibling has priority the local booking rolls itself back and the caller
// sees DateRangeUnavailable; otherwise the sibling is the loser and gets
// deleted here, since its own re-validation read may have run before this
// write became visible.
func (s *bookingService) reconcileAfterWrite(ctx context.Context, booking *model.Booking, stay availability.Range, rollback rollbackFunc) error {
	all, err := s.repo.FindByRoom(ctx, booking.RoomID)
	if err != nil {
		// The write landed but cannot be re-validated. Surface the storage
		// failure so the caller re-queries before retrying, and flag the
		// booking for reconciliation.
		s.cfg.Log.Error("Post-write re-validation could not run; booking needs manual review",
			"booking_id", booking.ID,
			"room_id", booking.RoomID,
			"error", err,
		)
		return apperrors.StorageUnavailable(err)
	}

	for _, other := range all {
		if other.ID == booking.ID {
			continue
		}
		otherStay := availability.NewRange(other.CheckInDate, other.CheckOutDate)
		if !otherStay.Overlaps(stay) {
			continue
		}
		if !hasPriority(other, booking) {
			// The sibling loses. Remove it ourselves rather than trusting
			// its re-validation pass, which may have read before our write
			// landed.
			s.cfg.Log.Warn("Concurrent conflict detected after write, removing losing sibling",
				"booking_id", booking.ID,
				"loser_id", other.ID,
				"room_id", booking.RoomID,
			)
			if delErr := s.repo.Delete(ctx, other.ID); delErr != nil && !errors.Is(delErr, bookingserrors.ErrNotFound) {
				s.cfg.Log.Error("Failed to remove losing sibling booking; manual reconciliation required",
					"booking_id", booking.ID,
					"loser_id", other.ID,
					"room_id", booking.RoomID,
					"error", delErr,
				)
			}
			continue
		}

		s.cfg.Log.Warn("Concurrent conflict detected after write, rolling back losing booking",
			"booking_id", booking.ID,
			"winner_id", other.ID,
			"room_id", booking.RoomID,
		)
		if rbErr := rollback(ctx, s, booking); rbErr != nil {
			// The one spot where automatic recovery is not guaranteed. Never
			// hide it: an operator has to resolve the overlap by hand.
			s.cfg.Log.Error("Rollback of losing booking failed; overlapping bookings coexist and need manual reconciliation",
				"booking_id", booking.ID,
				"winner_id", other.ID,
				"room_id", booking.RoomID,
				"error", rbErr,
			)
		}
		return apperrors.DateRangeUnavailable("the room was booked by another guest while your request was processed")
	}
	return nil
}

// hasPriority fixes the winner among concurrently written overlapping
// bookings: earlier created_at wins, lower id breaks exact timestamp ties.
// Both sides evaluate the same total order, so exactly one of them yields.
func hasPriority(a, b *model.Booking) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

func staysOf(bookings []*model.Booking, excludeID string) []availability.Range {
	var stays []availability.Range
	for _, b := range bookings {
		if excludeID != "" && b.ID == excludeID {
			continue
		}
		stays = append(stays, availability.NewRange(b.CheckInDate, b.CheckOutDate))
	}
	return stays
}

func (s *bookingService) acquireRoomLock(ctx context.Context, roomID string) (string, error) {
	lockID, err := s.lockRepo.Acquire(ctx, roomID, s.cfg.BookingLockTTL)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrRoomLocked) {
			return "", apperrors.DateRangeUnavailable("another reservation for this room is in progress, please try again")
		}
		return "", apperrors.StorageUnavailable(err)
	}
	return lockID, nil
}

func (s *bookingService) releaseRoomLock(ctx context.Context, lockID string) {
	if err := s.lockRepo.Release(ctx, lockID); err != nil {
		s.cfg.Log.Warn("Failed to release room lock", "lock_id", lockID, "error", err)
	}
}

func (s *bookingService) resolveRoom(ctx context.Context, roomID string) (*model.Room, error) {
	room, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, roomserrors.ErrNotFound) || errors.Is(err, roomserrors.ErrInvalidID) {
			return nil, apperrors.RoomNotFound(roomID)
		}
		return nil, apperrors.StorageUnavailable(err)
	}
	return room, nil
}

func (s *bookingService) applyDefaults(b *model.Booking) {
	if b.Status == "" {
		b.Status = model.BookingStatusConfirmed
	}
	if b.Adults == 0 {
		b.Adults = 1
	}
}

func (s *bookingService) merge(existing *model.Booking, updates *model.BookingUpdate) *model.Booking {
	merged := *existing

	if updates.CheckInDate != nil {
		merged.CheckInDate = *updates.CheckInDate
	}
	if updates.CheckOutDate != nil {
		merged.CheckOutDate = *updates.CheckOutDate
	}
	if updates.Adults != nil {
		merged.Adults = *updates.Adults
	}
	if updates.Children != nil {
		merged.Children = *updates.Children
	}
	if updates.Guest != nil {
		merged.Guest = *updates.Guest
	}
	if updates.SpecialRequests != nil {
		merged.SpecialRequests = *updates.SpecialRequests
	}

	return &merged
}

func (s *bookingService) validate(booking *model.Booking) error {
	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return s.classifyValidation(err)
	}
	return nil
}

func (s *bookingService) classifyValidation(err error) error {
	switch {
	case validator.DateFields(err):
		return apperrors.InvalidDateRange(err.Error())
	case validator.GuestFields(err):
		return apperrors.InvalidGuestInfo("guest details are invalid", map[string]any{"error": err.Error()})
	default:
		return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}
}

func (s *bookingService) mapLookupError(err error, id string) error {
	if errors.Is(err, bookingserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Booking", id)
	}
	if errors.Is(err, bookingserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid booking ID format")
	}
	return apperrors.StorageUnavailable(err)
}
