package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	newslettererrors "naumstay/internal/newsletter/errors"
	"naumstay/pkg/config"
	apperrors "naumstay/pkg/errors"
	"naumstay/pkg/logger"
	"naumstay/pkg/model"
)

type mockSubscriberRepo struct {
	byEmail map[string]*model.Subscriber
	byToken map[string]*model.Subscriber
	created []*model.Subscriber
	active  map[string]bool
}

func newMockSubscriberRepo() *mockSubscriberRepo {
	return &mockSubscriberRepo{
		byEmail: make(map[string]*model.Subscriber),
		byToken: make(map[string]*model.Subscriber),
		active:  make(map[string]bool),
	}
}

func (m *mockSubscriberRepo) add(sub *model.Subscriber) {
	m.byEmail[sub.Email] = sub
	m.byToken[sub.UnsubscribeToken] = sub
	m.active[sub.ID] = sub.Active
}

func (m *mockSubscriberRepo) Create(ctx context.Context, subscriber *model.Subscriber) error {
	if _, ok := m.byEmail[subscriber.Email]; ok {
		return newslettererrors.ErrDuplicate
	}
	subscriber.ID = fmt.Sprintf("%024d", len(m.created)+1)
	m.created = append(m.created, subscriber)
	m.add(subscriber)
	return nil
}

func (m *mockSubscriberRepo) FindByEmail(ctx context.Context, email string) (*model.Subscriber, error) {
	sub, ok := m.byEmail[email]
	if !ok {
		return nil, newslettererrors.ErrNotFound
	}
	cp := *sub
	cp.Active = m.active[sub.ID]
	return &cp, nil
}

func (m *mockSubscriberRepo) FindByToken(ctx context.Context, token string) (*model.Subscriber, error) {
	sub, ok := m.byToken[token]
	if !ok {
		return nil, newslettererrors.ErrBadToken
	}
	cp := *sub
	cp.Active = m.active[sub.ID]
	return &cp, nil
}

func (m *mockSubscriberRepo) FindActive(ctx context.Context) ([]*model.Subscriber, error) {
	var out []*model.Subscriber
	for _, sub := range m.byEmail {
		if m.active[sub.ID] {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (m *mockSubscriberRepo) SetActive(ctx context.Context, id string, active bool) error {
	if _, ok := m.active[id]; !ok {
		return newslettererrors.ErrNotFound
	}
	m.active[id] = active
	return nil
}

func (m *mockSubscriberRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	for _, a := range m.active {
		if a {
			n++
		}
	}
	return n, nil
}

func (m *mockSubscriberRepo) EnsureIndexes(ctx context.Context) error { return nil }

type mockNewsletterSender struct {
	deliveries map[string]string // recipient -> unsubscribe URL
	failFor    string
}

func (m *mockNewsletterSender) SendNewsletter(to, subject, html, unsubscribeURL string) error {
	if to == m.failFor {
		return fmt.Errorf("mailbox unavailable")
	}
	if m.deliveries == nil {
		m.deliveries = make(map[string]string)
	}
	m.deliveries[to] = unsubscribeURL
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Log:           logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard}),
		PublicBaseURL: "https://naumapartments.example",
	}
}

func TestSubscribe_NewEmail(t *testing.T) {
	repo := newMockSubscriberRepo()
	svc := NewNewsletterService(repo, &mockNewsletterSender{}, testConfig())

	sub, err := svc.Subscribe(context.Background(), "guest@example.com")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	if !sub.Active {
		t.Error("new subscriber should be active")
	}
	if sub.UnsubscribeToken == "" {
		t.Error("new subscriber should get an unsubscribe token")
	}
}

func TestSubscribe_InvalidEmail(t *testing.T) {
	svc := NewNewsletterService(newMockSubscriberRepo(), &mockNewsletterSender{}, testConfig())

	_, err := svc.Subscribe(context.Background(), "not-an-email")
	if !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected invalid input code, got: %v", err)
	}
}

func TestSubscribe_DuplicateActive(t *testing.T) {
	repo := newMockSubscriberRepo()
	svc := NewNewsletterService(repo, &mockNewsletterSender{}, testConfig())

	if _, err := svc.Subscribe(context.Background(), "guest@example.com"); err != nil {
		t.Fatalf("first Subscribe failed: %v", err)
	}

	_, err := svc.Subscribe(context.Background(), "guest@example.com")
	if !apperrors.IsCode(err, apperrors.CodeConflict) {
		t.Errorf("expected conflict code, got: %v", err)
	}
}

func TestSubscribe_ReactivatesUnsubscribed(t *testing.T) {
	repo := newMockSubscriberRepo()
	svc := NewNewsletterService(repo, &mockNewsletterSender{}, testConfig())
	ctx := context.Background()

	sub, err := svc.Subscribe(ctx, "guest@example.com")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	if err := svc.Unsubscribe(ctx, sub.UnsubscribeToken); err != nil {
		t.Fatalf("Unsubscribe failed: %v", err)
	}

	again, err := svc.Subscribe(ctx, "guest@example.com")
	if err != nil {
		t.Fatalf("re-Subscribe failed: %v", err)
	}
	if !again.Active {
		t.Error("resubscribed address should be active again")
	}
	if len(repo.created) != 1 {
		t.Errorf("resubscribe must reuse the record, got %d created", len(repo.created))
	}
}

func TestUnsubscribe_BadToken(t *testing.T) {
	svc := NewNewsletterService(newMockSubscriberRepo(), &mockNewsletterSender{}, testConfig())

	err := svc.Unsubscribe(context.Background(), "bogus")
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected not found code, got: %v", err)
	}
}

func TestSend_SkipsInactiveAndSurvivesFailures(t *testing.T) {
	repo := newMockSubscriberRepo()
	svc := NewNewsletterService(repo, nil, testConfig())
	ctx := context.Background()

	var tokens []string
	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		sub, err := svc.Subscribe(ctx, email)
		if err != nil {
			t.Fatalf("Subscribe %s failed: %v", email, err)
		}
		tokens = append(tokens, sub.UnsubscribeToken)
	}
	if err := svc.Unsubscribe(ctx, tokens[2]); err != nil {
		t.Fatalf("Unsubscribe failed: %v", err)
	}

	sender := &mockNewsletterSender{failFor: "b@example.com"}
	svc = NewNewsletterService(repo, sender, testConfig())

	delivered, err := svc.Send(ctx, "Summer offers", "<p>New season rates.</p>")
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if delivered != 1 {
		t.Errorf("expected 1 delivery (one inactive, one failing), got %d", delivered)
	}
	if _, ok := sender.deliveries["c@example.com"]; ok {
		t.Error("unsubscribed address must not receive the newsletter")
	}

	url := sender.deliveries["a@example.com"]
	if !strings.HasPrefix(url, "https://naumapartments.example/api/v1/newsletter/unsubscribe?token=") {
		t.Errorf("unexpected unsubscribe URL: %s", url)
	}
}
