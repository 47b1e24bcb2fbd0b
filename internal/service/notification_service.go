package service

import (
	"fmt"
	"sync"
	"time"

	"bootcamp_backend/internal/config"
	"bootcamp_backend/pkg/logger"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

type Event string

const (
	EventModuleSubmitted  Event = "module_submitted"
	EventModuleApproved   Event = "module_approved"
	EventModuleRejected   Event = "module_rejected"
	EventResourceReviewed Event = "resource_reviewed"
)

// EventPayload is the envelope handed to every notifier.
type EventPayload struct {
	UserID    uint                   `json:"userId"`
	ModuleID  string                 `json:"moduleId"`
	PathwayID string                 `json:"pathwayId"`
	Timestamp time.Time              `json:"timestamp"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// Notifier delivers one workflow event. Who receives what is the
// notifier's policy, not the workflow's.
type Notifier interface {
	Notify(event Event, payload EventPayload) error
}

// LogNotifier records events in the application log; the default when no
// email transport is configured.
type LogNotifier struct{}

func (LogNotifier) Notify(event Event, payload EventPayload) error {
	logger.Log.Info("workflow event",
		zap.String("event", string(event)),
		zap.Uint("userId", payload.UserID),
		zap.String("moduleId", payload.ModuleID),
		zap.String("pathwayId", payload.PathwayID),
	)
	return nil
}

// EmailNotifier sends each event to the configured review inbox via
// SendGrid.
type EmailNotifier struct {
	client     *sendgrid.Client
	from       *sgmail.Email
	recipients []string
}

func NewEmailNotifier(cfg *config.EmailConfig) *EmailNotifier {
	return &EmailNotifier{
		client:     sendgrid.NewSendClient(cfg.SendgridKey),
		from:       sgmail.NewEmail(cfg.FromName, cfg.FromAddress),
		recipients: cfg.Recipients,
	}
}

func (n *EmailNotifier) Notify(event Event, payload EventPayload) error {
	subject := fmt.Sprintf("[bootcamp] %s: module %s", event, payload.ModuleID)
	body := fmt.Sprintf("user=%d module=%s pathway=%s at %s",
		payload.UserID, payload.ModuleID, payload.PathwayID,
		payload.Timestamp.Format(time.RFC3339))

	for _, to := range n.recipients {
		message := sgmail.NewSingleEmail(n.from, subject, sgmail.NewEmail("", to), body, body)
		if _, err := n.client.Send(message); err != nil {
			return err
		}
	}
	return nil
}

// NotificationService fans events out to all notifiers. Emission is
// fire-and-forget: delivery runs on its own goroutine and failures are
// logged, never returned, so a broken notifier can't block or roll back
// the state transition that triggered it.
type NotificationService struct {
	mu        sync.RWMutex
	notifiers []Notifier
}

func NewNotificationService(cfg *config.Config) *NotificationService {
	s := &NotificationService{}
	s.Reconfigure(cfg)
	return s
}

// Reconfigure rebuilds the notifier set from config. Called at startup
// and again on config hot-reload, so email delivery can be toggled
// without a restart.
func (s *NotificationService) Reconfigure(cfg *config.Config) {
	notifiers := []Notifier{LogNotifier{}}
	if cfg.Email.Enabled && cfg.Email.SendgridKey != "" {
		notifiers = append(notifiers, NewEmailNotifier(&cfg.Email))
	}

	s.mu.Lock()
	s.notifiers = notifiers
	s.mu.Unlock()
}

func (s *NotificationService) Emit(event Event, payload EventPayload) {
	if payload.Timestamp.IsZero() {
		payload.Timestamp = time.Now()
	}

	s.mu.RLock()
	notifiers := s.notifiers
	s.mu.RUnlock()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Log.Error("notifier panic", zap.Any("recover", r))
			}
		}()
		for _, n := range notifiers {
			if err := n.Notify(event, payload); err != nil {
				logger.Log.Warn("notification delivery failed",
					zap.String("event", string(event)), zap.Error(err))
			}
		}
	}()
}
