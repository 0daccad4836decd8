package validator

import (
	"io"
	"testing"
	"time"

	"naumstay/pkg/logger"
	"naumstay/pkg/model"
)

func newValidator(t *testing.T) *BookingValidator {
	t.Helper()
	v := NewBookingValidator(logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard}))
	// Pin "today" so the past-check-in rule is deterministic.
	v.now = func() time.Time {
		return time.Date(2027, 6, 15, 10, 30, 0, 0, time.UTC)
	}
	return v
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func validBooking() *model.Booking {
	return &model.Booking{
		RoomID:       "65f000000000000000000001",
		CheckInDate:  date(2027, 7, 1),
		CheckOutDate: date(2027, 7, 4),
		Adults:       2,
		Guest: model.Guest{
			FirstName: "Elena",
			LastName:  "Naumova",
			Email:     "elena@example.com",
			Phone:     "+359 888 123 456",
		},
	}
}

func TestValidate_Valid(t *testing.T) {
	if err := newValidator(t).Validate(validBooking()); err != nil {
		t.Errorf("expected valid booking, got: %v", err)
	}
}

func TestValidate_Failures(t *testing.T) {
	cases := []struct {
		name      string
		mutate    func(b *model.Booking)
		wantGuest bool
		wantDate  bool
	}{
		{
			name:     "check-out equals check-in",
			mutate:   func(b *model.Booking) { b.CheckOutDate = b.CheckInDate },
			wantDate: true,
		},
		{
			name: "check-out before check-in",
			mutate: func(b *model.Booking) {
				b.CheckInDate, b.CheckOutDate = b.CheckOutDate, b.CheckInDate
			},
			wantDate: true,
		},
		{
			name: "check-in before today",
			mutate: func(b *model.Booking) {
				b.CheckInDate = date(2027, 6, 14)
				b.CheckOutDate = date(2027, 6, 16)
			},
			wantDate: true,
		},
		{
			name:      "missing first name",
			mutate:    func(b *model.Booking) { b.Guest.FirstName = "" },
			wantGuest: true,
		},
		{
			name:      "malformed email",
			mutate:    func(b *model.Booking) { b.Guest.Email = "not-an-email" },
			wantGuest: true,
		},
		{
			name:      "phone with too few digits",
			mutate:    func(b *model.Booking) { b.Guest.Phone = "+12-34" },
			wantGuest: true,
		},
		{
			name:   "room id not an object id",
			mutate: func(b *model.Booking) { b.RoomID = "garden-suite" },
		},
		{
			name:   "zero adults",
			mutate: func(b *model.Booking) { b.Adults = 0 },
		},
	}

	v := newValidator(t)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			booking := validBooking()
			tc.mutate(booking)

			err := v.Validate(booking)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if got := GuestFields(err); got != tc.wantGuest {
				t.Errorf("GuestFields = %v, want %v (err: %v)", got, tc.wantGuest, err)
			}
			if got := DateFields(err); got != tc.wantDate {
				t.Errorf("DateFields = %v, want %v (err: %v)", got, tc.wantDate, err)
			}
		})
	}
}

func TestValidateDates_TodayCheckInAllowed(t *testing.T) {
	v := newValidator(t)

	// Same-day check-in is fine; only strictly past days are rejected.
	if err := v.ValidateDates(date(2027, 6, 15), date(2027, 6, 17)); err != nil {
		t.Errorf("check-in today should be valid, got: %v", err)
	}
}

func TestValidateUpdate(t *testing.T) {
	v := newValidator(t)

	badEmail := &model.Guest{FirstName: "Elena", LastName: "Naumova", Email: "nope", Phone: "+359888123456"}
	if err := v.ValidateUpdate(&model.BookingUpdate{Guest: badEmail}); err == nil {
		t.Error("expected guest validation to run on updates")
	}

	zero := 0
	if err := v.ValidateUpdate(&model.BookingUpdate{Adults: &zero}); err == nil {
		t.Error("expected min adults to apply on updates")
	}

	three := 3
	if err := v.ValidateUpdate(&model.BookingUpdate{Adults: &three}); err != nil {
		t.Errorf("expected valid update, got: %v", err)
	}
}

func TestPhoneDigitsCounting(t *testing.T) {
	v := newValidator(t)

	booking := validBooking()
	booking.Guest.Phone = "(359) 88-81-23" // 9 digits spread across punctuation
	if err := v.Validate(booking); err != nil {
		t.Errorf("digits inside punctuation should count, got: %v", err)
	}
}
