package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	newslettererrors "naumstay/internal/newsletter/errors"
	"naumstay/internal/newsletter/repository"
	"naumstay/pkg/config"
	apperrors "naumstay/pkg/errors"
	"naumstay/pkg/model"
)

// NewsletterSender delivers one issue to one recipient.
type NewsletterSender interface {
	SendNewsletter(to, subject, html, unsubscribeURL string) error
}

type NewsletterService interface {
	Subscribe(ctx context.Context, email string) (*model.Subscriber, error)
	Unsubscribe(ctx context.Context, token string) error
	Send(ctx context.Context, subject, html string) (int, error)
	SubscriberCount(ctx context.Context) (int64, error)
}

type newsletterService struct {
	repo     repository.SubscriberRepository
	mailer   NewsletterSender
	validate *validator.Validate
	cfg      *config.Config
}

func NewNewsletterService(repo repository.SubscriberRepository, mailer NewsletterSender, cfg *config.Config) NewsletterService {
	return &newsletterService{
		repo:     repo,
		mailer:   mailer,
		validate: validator.New(),
		cfg:      cfg,
	}
}

// Subscribe registers the address, or quietly reactivates it if the guest
// unsubscribed earlier and signed up again.
func (s *newsletterService) Subscribe(ctx context.Context, email string) (*model.Subscriber, error) {
	if err := s.validate.Var(email, "required,email"); err != nil {
		return nil, apperrors.InvalidInput("a valid email address is required")
	}

	existing, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		if existing.Active {
			return nil, apperrors.Conflict("this email is already subscribed")
		}
		if err := s.repo.SetActive(ctx, existing.ID, true); err != nil {
			return nil, apperrors.StorageUnavailable(err)
		}
		existing.Active = true
		s.cfg.Log.Info("Subscriber reactivated", "id", existing.ID)
		return existing, nil
	}
	if !errors.Is(err, newslettererrors.ErrNotFound) {
		return nil, apperrors.StorageUnavailable(err)
	}

	subscriber := &model.Subscriber{
		Email:            email,
		UnsubscribeToken: uuid.NewString(),
		Active:           true,
	}
	if err := s.repo.Create(ctx, subscriber); err != nil {
		if errors.Is(err, newslettererrors.ErrDuplicate) {
			return nil, apperrors.Conflict("this email is already subscribed")
		}
		return nil, apperrors.StorageUnavailable(err)
	}

	s.cfg.Log.Info("Subscriber added", "id", subscriber.ID)
	return subscriber, nil
}

func (s *newsletterService) Unsubscribe(ctx context.Context, token string) error {
	if token == "" {
		return apperrors.InvalidInput("unsubscribe token is required")
	}

	subscriber, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, newslettererrors.ErrBadToken) {
			return apperrors.NotFound("Subscription")
		}
		return apperrors.StorageUnavailable(err)
	}

	if err := s.repo.SetActive(ctx, subscriber.ID, false); err != nil {
		return apperrors.StorageUnavailable(err)
	}

	s.cfg.Log.Info("Subscriber unsubscribed", "id", subscriber.ID)
	return nil
}

// Send delivers the issue to every active subscriber and returns the number
// of successful deliveries. Individual failures are logged and skipped; one
// dead mailbox must not stop the rest of the run.
func (s *newsletterService) Send(ctx context.Context, subject, html string) (int, error) {
	if subject == "" || html == "" {
		return 0, apperrors.InvalidInput("'subject' and 'html' are required")
	}

	subscribers, err := s.repo.FindActive(ctx)
	if err != nil {
		return 0, apperrors.StorageUnavailable(err)
	}

	sent := 0
	for _, sub := range subscribers {
		unsubscribeURL := s.cfg.PublicBaseURL + "/api/v1/newsletter/unsubscribe?token=" + sub.UnsubscribeToken
		if err := s.mailer.SendNewsletter(sub.Email, subject, html, unsubscribeURL); err != nil {
			s.cfg.Log.Error("Failed to deliver newsletter", "subscriber_id", sub.ID, "error", err)
			continue
		}
		sent++
	}

	s.cfg.Log.Info("Newsletter sent", "subject", subject, "recipients", len(subscribers), "delivered", sent)
	return sent, nil
}

func (s *newsletterService) SubscriberCount(ctx context.Context) (int64, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, apperrors.StorageUnavailable(err)
	}
	return count, nil
}
