package main

import (
	"context"
	"time"

	bookinghandler "naumstay/internal/bookings/handler"
	"naumstay/internal/bookings/notify"
	bookingrepo "naumstay/internal/bookings/repository"
	bookingservice "naumstay/internal/bookings/service"
	"naumstay/internal/bookings/validator"
	messagehandler "naumstay/internal/messages/handler"
	messagerepo "naumstay/internal/messages/repository"
	messageservice "naumstay/internal/messages/service"
	newsletterhandler "naumstay/internal/newsletter/handler"
	newsletterrepo "naumstay/internal/newsletter/repository"
	newsletterservice "naumstay/internal/newsletter/service"
	roomhandler "naumstay/internal/rooms/handler"
	roomrepo "naumstay/internal/rooms/repository"
	roomservice "naumstay/internal/rooms/service"
	"naumstay/pkg/app"
	"naumstay/pkg/config"
	"naumstay/pkg/events"
	"naumstay/pkg/mail"
)

const ServiceName = "reservations"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	serverApp := app.NewApplication(cfg)
	serverApp.OnShutdown(cfg.GracefulShutdown)

	mailer := mail.New(mail.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	}, cfg.Log)

	var publisher *events.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		var err error
		publisher, err = events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, ServiceName)
		if err != nil {
			cfg.Log.Fatal("Failed to initialize event publisher", "error", err)
		}
		serverApp.OnShutdown(func() {
			if err := publisher.Close(); err != nil {
				cfg.Log.Error("Failed to close event publisher", "error", err)
			}
		})
		cfg.Log.Info("Event publishing enabled", "topic", cfg.KafkaTopic)
	} else {
		cfg.Log.Info("No Kafka brokers configured, event publishing disabled")
	}

	// Repositories
	bookingRepository := bookingrepo.NewMongoBookingRepository(cfg)
	lockRepository := bookingrepo.NewRoomLockRepository(cfg)
	counter := bookingrepo.NewReferenceCounter(cfg)
	roomRepository := roomrepo.NewMongoRoomRepository(cfg)
	messageRepository := messagerepo.NewMongoMessageRepository(cfg)
	subscriberRepository := newsletterrepo.NewMongoSubscriberRepository(cfg)

	ensureIndexes(cfg, lockRepository, roomRepository, subscriberRepository)

	// Services
	notifier := notify.New(publisher, mailer, cfg.ResendConfirmationOnUpdate, cfg.Log)
	bookingService := bookingservice.NewBookingService(
		bookingRepository,
		lockRepository,
		counter,
		roomRepository,
		validator.NewBookingValidator(cfg.Log),
		notifier,
		cfg,
	)
	roomService := roomservice.NewRoomService(roomRepository, bookingService, cfg)
	messageService := messageservice.NewMessageService(messageRepository, mailer, cfg)
	newsletterService := newsletterservice.NewNewsletterService(subscriberRepository, mailer, cfg)

	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)

	serverApp.SetApp(
		bookinghandler.NewBookingHandler(bookingService, cfg.Log),
		roomhandler.NewRoomHandler(roomService, cfg.Log),
		messagehandler.NewMessageHandler(messageService, cfg.Log),
		newsletterhandler.NewNewsletterHandler(newsletterService, cfg.Log),
	)
	serverApp.Run()
}

type indexEnsurer interface {
	EnsureIndexes(ctx context.Context) error
}

func ensureIndexes(cfg *config.Config, ensurers ...indexEnsurer) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, e := range ensurers {
		if err := e.EnsureIndexes(ctx); err != nil {
			cfg.Log.Fatal("Failed to ensure storage indexes", "error", err)
		}
	}
}
