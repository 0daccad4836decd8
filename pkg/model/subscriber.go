package model

import "time"

// Subscriber is a newsletter recipient. UnsubscribeToken is an opaque value
// embedded in every newsletter so recipients can opt out without logging in.
type Subscriber struct {
	ID               string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Email            string    `json:"email" bson:"email" validate:"required,email"`
	UnsubscribeToken string    `json:"-" bson:"unsubscribe_token"`
	Active           bool      `json:"active" bson:"active"`
	SubscribedAt     time.Time `json:"subscribed_at" bson:"subscribed_at" validate:"omitempty"`
}
