package service

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	messageserrors "naumstay/internal/messages/errors"
	"naumstay/pkg/config"
	apperrors "naumstay/pkg/errors"
	"naumstay/pkg/logger"
	"naumstay/pkg/model"
)

type mockMessageRepo struct {
	createFunc      func(ctx context.Context, message *model.Message) error
	findByIDFunc    func(ctx context.Context, id string) (*model.Message, error)
	findAllFunc     func(ctx context.Context, limit int, offset int64) ([]*model.Message, error)
	markRepliedFunc func(ctx context.Context, id string, at time.Time) error
	deleteFunc      func(ctx context.Context, id string) error
	countFunc       func(ctx context.Context) (int64, error)
}

func (m *mockMessageRepo) Create(ctx context.Context, message *model.Message) error {
	return m.createFunc(ctx, message)
}

func (m *mockMessageRepo) FindByID(ctx context.Context, id string) (*model.Message, error) {
	return m.findByIDFunc(ctx, id)
}

func (m *mockMessageRepo) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Message, error) {
	return m.findAllFunc(ctx, limit, offset)
}

func (m *mockMessageRepo) MarkReplied(ctx context.Context, id string, at time.Time) error {
	return m.markRepliedFunc(ctx, id, at)
}

func (m *mockMessageRepo) Delete(ctx context.Context, id string) error {
	return m.deleteFunc(ctx, id)
}

func (m *mockMessageRepo) Count(ctx context.Context) (int64, error) {
	return m.countFunc(ctx)
}

type mockReplySender struct {
	sent []string
	fail error
}

func (m *mockReplySender) SendReply(to, subject, body string) error {
	if m.fail != nil {
		return m.fail
	}
	m.sent = append(m.sent, to)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard}),
	}
}

func validMessage() *model.Message {
	return &model.Message{
		Name:    "Ivan",
		Email:   "ivan@example.com",
		Subject: "Parking",
		Body:    "Is there parking near the apartments?",
	}
}

func TestSubmit_Valid(t *testing.T) {
	repo := &mockMessageRepo{
		createFunc: func(ctx context.Context, message *model.Message) error {
			message.ID = "000000000000000000000001"
			return nil
		},
	}
	svc := NewMessageService(repo, &mockReplySender{}, testConfig())

	msg := validMessage()
	msg.Replied = true // clients cannot pre-flag their own messages

	if err := svc.Submit(context.Background(), msg); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if msg.Replied {
		t.Error("replied flag must be reset on submission")
	}
}

func TestSubmit_Invalid(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(m *model.Message)
	}{
		{"missing name", func(m *model.Message) { m.Name = "" }},
		{"bad email", func(m *model.Message) { m.Email = "nope" }},
		{"empty body", func(m *model.Message) { m.Body = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewMessageService(&mockMessageRepo{}, &mockReplySender{}, testConfig())
			msg := validMessage()
			tc.mutate(msg)

			err := svc.Submit(context.Background(), msg)
			if !apperrors.IsCode(err, apperrors.CodeValidation) {
				t.Errorf("expected validation code, got: %v", err)
			}
		})
	}
}

func TestReply_SendsAndMarks(t *testing.T) {
	var markedID string
	repo := &mockMessageRepo{
		findByIDFunc: func(ctx context.Context, id string) (*model.Message, error) {
			m := validMessage()
			m.ID = id
			return m, nil
		},
		markRepliedFunc: func(ctx context.Context, id string, at time.Time) error {
			markedID = id
			return nil
		},
	}
	sender := &mockReplySender{}
	svc := NewMessageService(repo, sender, testConfig())

	if err := svc.Reply(context.Background(), "000000000000000000000001", "Yes, free parking on site."); err != nil {
		t.Fatalf("Reply failed: %v", err)
	}
	if len(sender.sent) != 1 || sender.sent[0] != "ivan@example.com" {
		t.Errorf("expected reply sent to ivan@example.com, got %v", sender.sent)
	}
	if markedID != "000000000000000000000001" {
		t.Errorf("expected message marked replied, got %q", markedID)
	}
}

func TestReply_MailFailureLeavesMessageUnflagged(t *testing.T) {
	marked := false
	repo := &mockMessageRepo{
		findByIDFunc: func(ctx context.Context, id string) (*model.Message, error) {
			return validMessage(), nil
		},
		markRepliedFunc: func(ctx context.Context, id string, at time.Time) error {
			marked = true
			return nil
		},
	}
	sender := &mockReplySender{fail: fmt.Errorf("smtp down")}
	svc := NewMessageService(repo, sender, testConfig())

	err := svc.Reply(context.Background(), "000000000000000000000001", "answer")
	if !apperrors.IsCode(err, apperrors.CodeInternal) {
		t.Errorf("expected internal error code, got: %v", err)
	}
	if marked {
		t.Error("message must not be flagged replied when the mail failed")
	}
}

func TestReply_NotFound(t *testing.T) {
	repo := &mockMessageRepo{
		findByIDFunc: func(ctx context.Context, id string) (*model.Message, error) {
			return nil, messageserrors.ErrNotFound
		},
	}
	svc := NewMessageService(repo, &mockReplySender{}, testConfig())

	err := svc.Reply(context.Background(), "000000000000000000000099", "answer")
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected not found code, got: %v", err)
	}
}
