package service

import (
	"context"
	"errors"
	"time"

	goval "github.com/go-playground/validator/v10"

	messageserrors "naumstay/internal/messages/errors"
	"naumstay/internal/messages/repository"
	"naumstay/pkg/config"
	apperrors "naumstay/pkg/errors"
	"naumstay/pkg/model"
)

// ReplySender delivers an admin's answer to the guest who wrote in.
type ReplySender interface {
	SendReply(to, subject, body string) error
}

type MessageService interface {
	Submit(ctx context.Context, message *model.Message) error
	GetByID(ctx context.Context, id string) (*model.Message, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Message, int64, error)
	Reply(ctx context.Context, id, body string) error
	Delete(ctx context.Context, id string) error
}

type messageService struct {
	repo     repository.MessageRepository
	mailer   ReplySender
	validate *goval.Validate
	cfg      *config.Config
}

func NewMessageService(repo repository.MessageRepository, mailer ReplySender, cfg *config.Config) MessageService {
	return &messageService{
		repo:     repo,
		mailer:   mailer,
		validate: goval.New(),
		cfg:      cfg,
	}
}

func (s *messageService) Submit(ctx context.Context, message *model.Message) error {
	message.Replied = false
	message.RepliedAt = nil

	if err := s.validate.Struct(message); err != nil {
		s.cfg.Log.Warn("Message validation failed", "error", err)
		return apperrors.Validation("Message validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, message); err != nil {
		return apperrors.StorageUnavailable(err)
	}

	s.cfg.Log.Info("Contact message received", "id", message.ID, "email", message.Email)
	return nil
}

func (s *messageService) GetByID(ctx context.Context, id string) (*model.Message, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Message ID cannot be empty")
	}

	message, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, id)
	}
	return message, nil
}

func (s *messageService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Message, int64, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return nil, 0, apperrors.StorageUnavailable(err)
	}

	messages, err := s.repo.FindAll(ctx, limit, offset)
	if err != nil {
		return nil, 0, apperrors.StorageUnavailable(err)
	}
	return messages, count, nil
}

// Reply emails the answer first and only then flags the message. If the
// flag write fails the admin may send a duplicate reply later, which beats
// marking a message answered when no mail went out.
func (s *messageService) Reply(ctx context.Context, id, body string) error {
	if id == "" {
		return apperrors.InvalidInput("Message ID cannot be empty")
	}
	if body == "" {
		return apperrors.InvalidInput("Reply body cannot be empty")
	}

	message, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.mapLookupError(err, id)
	}

	subject := "Re: " + message.Subject
	if err := s.mailer.SendReply(message.Email, subject, body); err != nil {
		s.cfg.Log.Error("Failed to send reply email", "message_id", id, "to", message.Email, "error", err)
		return apperrors.Internal("Failed to send reply email", err)
	}

	if err := s.repo.MarkReplied(ctx, id, time.Now().UTC()); err != nil {
		s.cfg.Log.Error("Reply sent but message could not be marked replied", "message_id", id, "error", err)
		return apperrors.StorageUnavailable(err)
	}

	s.cfg.Log.Info("Reply sent", "message_id", id, "to", message.Email)
	return nil
}

func (s *messageService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Message ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapLookupError(err, id)
	}

	s.cfg.Log.Info("Message deleted", "id", id)
	return nil
}

func (s *messageService) mapLookupError(err error, id string) error {
	if errors.Is(err, messageserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Message", id)
	}
	if errors.Is(err, messageserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid message ID format")
	}
	return apperrors.StorageUnavailable(err)
}
