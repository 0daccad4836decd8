package notify

import (
	"context"
	"time"

	"naumstay/pkg/events"
	"naumstay/pkg/logger"
	"naumstay/pkg/mail"
	"naumstay/pkg/model"
)

// Notifier fans a confirmed booking out to the event stream and the guest's
// inbox. Every delivery is best-effort: a reservation that made it to storage
// is confirmed no matter what happens here, so failures are logged and
// swallowed.
type Notifier struct {
	publisher       *events.Publisher
	mailer          *mail.Mailer
	resendOnUpdate  bool
	deliveryTimeout time.Duration
	log             *logger.Logger
}

func New(publisher *events.Publisher, mailer *mail.Mailer, resendOnUpdate bool, log *logger.Logger) *Notifier {
	return &Notifier{
		publisher:       publisher,
		mailer:          mailer,
		resendOnUpdate:  resendOnUpdate,
		deliveryTimeout: 10 * time.Second,
		log:             log,
	}
}

func (n *Notifier) BookingCreated(ctx context.Context, booking *model.Booking) {
	n.publish(ctx, events.TypeBookingCreated, booking)
	n.sendConfirmation(booking)
}

func (n *Notifier) BookingUpdated(ctx context.Context, booking *model.Booking) {
	n.publish(ctx, events.TypeBookingUpdated, booking)
	if n.resendOnUpdate {
		n.sendConfirmation(booking)
	}
}

func (n *Notifier) publish(ctx context.Context, eventType string, booking *model.Booking) {
	if n.publisher == nil {
		return
	}

	// Detached from the request context: the HTTP response should not wait
	// on, or be cancelled together with, event delivery.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.deliveryTimeout)
	defer cancel()

	err := n.publisher.Publish(pubCtx, eventType, booking.ID, events.BookingEvent{
		BookingID:    booking.ID,
		Reference:    booking.Reference,
		RoomID:       booking.RoomID,
		RoomName:     booking.RoomName,
		GuestName:    booking.Guest.FirstName + " " + booking.Guest.LastName,
		GuestEmail:   booking.Guest.Email,
		CheckInDate:  booking.CheckInDate.Format("2006-01-02"),
		CheckOutDate: booking.CheckOutDate.Format("2006-01-02"),
		Nights:       booking.Nights,
		TotalCost:    booking.TotalCost,
		OccurredAt:   time.Now().UTC(),
	})
	if err != nil {
		n.log.Error("Failed to publish booking event",
			"event_type", eventType,
			"booking_id", booking.ID,
			"error", err,
		)
	}
}

func (n *Notifier) sendConfirmation(booking *model.Booking) {
	if n.mailer == nil {
		return
	}
	if err := n.mailer.SendBookingConfirmation(booking); err != nil {
		n.log.Error("Failed to send booking confirmation email",
			"booking_id", booking.ID,
			"guest_email", booking.Guest.Email,
			"error", err,
		)
	}
}
