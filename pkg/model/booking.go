package model

import "time"

const (
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

type Guest struct {
	FirstName string `json:"first_name" bson:"first_name" validate:"required,min=1,max=60"`
	LastName  string `json:"last_name" bson:"last_name" validate:"required,min=1,max=60"`
	Email     string `json:"email" bson:"email" validate:"required,email"`
	Phone     string `json:"phone" bson:"phone" validate:"required,phone_digits"`
}

// Booking is a confirmed reservation of one room for the half-open interval
// [CheckInDate, CheckOutDate). Room name and price are snapshotted at
// creation so later room edits never rewrite booking history.
type Booking struct {
	ID string `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	// Reference is the human-facing sequential label, e.g. NA-000123.
	// Uniqueness is enforced by an atomic counter document, not by reading
	// the current maximum.
	Reference string `json:"reference,omitempty" bson:"reference,omitempty"`

	RoomID    string  `json:"room_id" bson:"room_id" validate:"required,mongodb"`
	RoomName  string  `json:"room_name,omitempty" bson:"room_name,omitempty"`
	RoomPrice float64 `json:"room_price,omitempty" bson:"room_price,omitempty"`

	CheckInDate  time.Time `json:"check_in_date" bson:"check_in_date" validate:"required"`
	CheckOutDate time.Time `json:"check_out_date" bson:"check_out_date" validate:"required,gtfield=CheckInDate"`

	Adults   int   `json:"adults" bson:"adults" validate:"required,min=1,max=20"`
	Children int   `json:"children" bson:"children" validate:"min=0,max=20"`
	Guest    Guest `json:"guest" bson:"guest"`

	Nights    int     `json:"nights" bson:"nights"`
	TotalCost float64 `json:"total_cost" bson:"total_cost"`

	SpecialRequests string `json:"special_requests,omitempty" bson:"special_requests,omitempty" validate:"omitempty,max=1000"`

	Status    string    `json:"status" bson:"status" validate:"omitempty,oneof=confirmed cancelled"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type BookingUpdate struct {
	CheckInDate     *time.Time `json:"check_in_date,omitempty"`
	CheckOutDate    *time.Time `json:"check_out_date,omitempty"`
	Adults          *int       `json:"adults,omitempty" validate:"omitempty,min=1,max=20"`
	Children        *int       `json:"children,omitempty" validate:"omitempty,min=0,max=20"`
	Guest           *Guest     `json:"guest,omitempty"`
	SpecialRequests *string    `json:"special_requests,omitempty" validate:"omitempty,max=1000"`
}
