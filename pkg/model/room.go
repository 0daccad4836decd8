package model

import "time"

// Occupancy is the maximum headcount a room accepts. A room without an
// occupancy document satisfies any request; a children limit of zero means
// the room simply does not publish one and is likewise treated as open.
type Occupancy struct {
	Adults   int `json:"adults" bson:"adults" validate:"min=1,max=20"`
	Children int `json:"children" bson:"children" validate:"min=0,max=20"`
}

type Room struct {
	ID          string     `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name        string     `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Price       float64    `json:"price" bson:"price" validate:"min=0"`
	Description string     `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=2000"`
	MaxOccupancy *Occupancy `json:"max_occupancy,omitempty" bson:"max_occupancy,omitempty"`
	Amenities   []string   `json:"amenities,omitempty" bson:"amenities,omitempty" validate:"omitempty,max=30,dive,required"`
	Images      []string   `json:"images,omitempty" bson:"images,omitempty" validate:"omitempty,max=20,dive,required"`
	// Available is a display flag set by administrators. It is not consulted
	// by conflict checks; availability for a date range is always derived
	// from the booking set.
	Available bool      `json:"available" bson:"available"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type RoomUpdate struct {
	Name         *string    `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Price        *float64   `json:"price,omitempty" validate:"omitempty,min=0"`
	Description  *string    `json:"description,omitempty" validate:"omitempty,max=2000"`
	MaxOccupancy *Occupancy `json:"max_occupancy,omitempty"`
	Amenities    *[]string  `json:"amenities,omitempty" validate:"omitempty,max=30,dive,required"`
	Images       *[]string  `json:"images,omitempty" validate:"omitempty,max=20,dive,required"`
	Available    *bool      `json:"available,omitempty"`
}

// Fits reports whether the room accepts the requested party size under the
// permissive occupancy policy described on Occupancy.
func (r *Room) Fits(adults, children int) bool {
	if r.MaxOccupancy == nil {
		return true
	}
	if r.MaxOccupancy.Adults < adults {
		return false
	}
	if children > 0 && r.MaxOccupancy.Children > 0 && r.MaxOccupancy.Children < children {
		return false
	}
	return true
}
