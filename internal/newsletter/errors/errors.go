package errors

import "errors"

var (
	ErrNotFound  = errors.New("subscriber not found")
	ErrDuplicate = errors.New("email is already subscribed")
	ErrBadToken  = errors.New("unknown unsubscribe token")
)
