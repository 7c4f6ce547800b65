package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/shuyan0723/study--student-mangement/internal/notify"
	"github.com/shuyan0723/study--student-mangement/types"
)

// MessageRepository defines persistence operations for direct messages.
type MessageRepository interface {
	ListForUser(ctx context.Context, userID string, offset, limit int) ([]types.Message, int, error)
	Create(ctx context.Context, message types.Message) (types.Message, error)
	MarkRead(ctx context.Context, id, receiverID string) error
}

// MessageService encapsulates direct-message use-cases.
type MessageService struct {
	repo MessageRepository
}

func NewMessageService(repo MessageRepository) *MessageService {
	return &MessageService{repo: repo}
}

func (s *MessageService) ListForUser(ctx context.Context, userID string, offset, limit int) ([]types.Message, int, error) {
	return s.repo.ListForUser(ctx, userID, offset, limit)
}

func (s *MessageService) Send(ctx context.Context, senderID, receiverID, subject, body string) (types.Message, error) {
	if body == "" {
		return types.Message{}, types.ErrValidation("Message body is required")
	}
	if receiverID == "" {
		return types.Message{}, types.ErrValidation("Receiver is required")
	}
	return s.repo.Create(ctx, types.Message{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Subject:    subject,
		Body:       body,
	})
}

func (s *MessageService) MarkRead(ctx context.Context, id, receiverID string) error {
	return s.repo.MarkRead(ctx, id, receiverID)
}

// NoticeRepository defines persistence operations for notices.
type NoticeRepository interface {
	GetByID(ctx context.Context, id string) (types.Notice, error)
	List(ctx context.Context, audience string, offset, limit int) ([]types.Notice, int, error)
	Create(ctx context.Context, notice types.Notice) (types.Notice, error)
	Update(ctx context.Context, notice types.Notice) (types.Notice, error)
	Delete(ctx context.Context, id string) error
}

// NoticeService encapsulates notice use-cases. Publishing a notice also
// announces it on the event bus.
type NoticeService struct {
	repo     NoticeRepository
	notifier *notify.Notifier
	log      *logrus.Logger
}

func NewNoticeService(repo NoticeRepository, notifier *notify.Notifier, log *logrus.Logger) *NoticeService {
	if notifier == nil {
		notifier = notify.New(nil)
	}
	if log == nil {
		log = logrus.New()
	}
	return &NoticeService{repo: repo, notifier: notifier, log: log}
}

func (s *NoticeService) Get(ctx context.Context, id string) (types.Notice, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *NoticeService) List(ctx context.Context, audience string, offset, limit int) ([]types.Notice, int, error) {
	return s.repo.List(ctx, audience, offset, limit)
}

// Publish creates the notice, marks it published now, and emits a
// notice event.
func (s *NoticeService) Publish(ctx context.Context, notice types.Notice) (types.Notice, error) {
	if notice.Title == "" || notice.Body == "" {
		return types.Notice{}, types.ErrValidation("Title and body are required")
	}
	if notice.ID == "" {
		notice.ID = uuid.NewString()
	}
	now := time.Now()
	notice.PublishedAt = &now

	created, err := s.repo.Create(ctx, notice)
	if err != nil {
		return types.Notice{}, err
	}

	if err := s.notifier.NoticePublished(ctx, notify.NoticeEvent{
		NoticeID:    created.ID,
		Title:       created.Title,
		Audience:    created.Audience,
		PublishedAt: now,
	}); err != nil {
		s.log.WithError(err).WithField("notice_id", created.ID).Warn("failed to publish notice event")
	}
	return created, nil
}

func (s *NoticeService) Update(ctx context.Context, notice types.Notice) (types.Notice, error) {
	return s.repo.Update(ctx, notice)
}

func (s *NoticeService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
