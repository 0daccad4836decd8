package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"

	"naumstay/pkg/logger"
	"naumstay/pkg/model"
)

// Guest phones arrive in whatever shape the form allowed; the only rule worth
// enforcing is a minimum of real digits.
const minPhoneDigits = 6

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type BookingValidator struct {
	validate *validator.Validate
	now      func() time.Time
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	v := validator.New()

	if err := v.RegisterValidation("phone_digits", validatePhoneDigits); err != nil {
		log.Fatal("Failed to register 'phone_digits' validator", "error", err)
	}

	return &BookingValidator{
		validate: v,
		now:      time.Now,
	}
}

func validatePhoneDigits(fl validator.FieldLevel) bool {
	digits := 0
	for _, r := range fl.Field().String() {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	return digits >= minPhoneDigits
}

// Validate checks a fully assembled booking before any storage access.
// Struct-tag failures on guest fields come back as guest-info errors; date
// ordering and the no-past-check-in rule are checked explicitly.
func (b *BookingValidator) Validate(booking *model.Booking) error {
	if err := b.validate.Struct(booking); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translate(validationErrs)
		}
		return err
	}

	return b.ValidateDates(booking.CheckInDate, booking.CheckOutDate)
}

// ValidateDates enforces check-out strictly after check-in and check-in not
// before today. Today is compared on calendar days in UTC.
func (b *BookingValidator) ValidateDates(checkIn, checkOut time.Time) error {
	if !checkOut.After(checkIn) {
		return ValidationErrors{
			ValidationError{
				Field:   "CheckOutDate",
				Message: "check_out_date must be after check_in_date",
			},
		}
	}

	now := b.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if checkIn.Before(today) {
		return ValidationErrors{
			ValidationError{
				Field:   "CheckInDate",
				Message: "check_in_date cannot be in the past",
			},
		}
	}
	return nil
}

func (b *BookingValidator) ValidateUpdate(update *model.BookingUpdate) error {
	if err := b.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translate(validationErrs)
		}
		return err
	}

	if update.Guest != nil {
		if err := b.validate.Struct(update.Guest); err != nil {
			var validationErrs validator.ValidationErrors
			if errors.As(err, &validationErrs) {
				return translate(validationErrs)
			}
			return err
		}
	}

	return nil
}

// GuestFields reports whether the validation failure is about guest identity
// rather than dates or ids, so the service can pick the right rejection code.
func GuestFields(err error) bool {
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		return false
	}
	for _, ve := range verrs {
		switch ve.Field {
		case "FirstName", "LastName", "Email", "Phone":
			return true
		}
	}
	return false
}

func DateFields(err error) bool {
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		return false
	}
	for _, ve := range verrs {
		switch ve.Field {
		case "CheckInDate", "CheckOutDate":
			return true
		}
	}
	return false
}

func translate(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "phone_digits":
			message = fmt.Sprintf("%s must contain at least %d digits", err.Field(), minPhoneDigits)
		case "gtfield":
			message = fmt.Sprintf("%s must be after %s", err.Field(), err.Param())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
