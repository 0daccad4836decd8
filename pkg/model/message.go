package model

import "time"

// Message is a contact-form submission managed from the admin dashboard.
type Message struct {
	ID      string `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name    string `json:"name" bson:"name" validate:"required,min=1,max=100"`
	Email   string `json:"email" bson:"email" validate:"required,email"`
	Subject string `json:"subject" bson:"subject" validate:"required,min=1,max=200"`
	Body    string `json:"body" bson:"body" validate:"required,min=1,max=5000"`

	Replied   bool       `json:"replied" bson:"replied"`
	RepliedAt *time.Time `json:"replied_at,omitempty" bson:"replied_at,omitempty"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at" validate:"omitempty"`
}
