package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"text/template"
	"time"

	"github.com/DevRickLin/feishu-birthday-bot/internal/biz/domain"
	"github.com/DevRickLin/feishu-birthday-bot/internal/biz/repo"
)

// Notification is one reminder ready to be sent
type Notification struct {
	ChatID string
	Entry  domain.Entry
	Text   string
}

// DispatchResult counts the outcome of one dispatch pass
type DispatchResult struct {
	Sent   int
	Failed int
}

// ReminderUsecase scans active conversations for entries due today
type ReminderUsecase struct {
	store       repo.ChatStore
	messageRepo repo.MessageRepo
	tmpl        *template.Template
	logger      *slog.Logger
}

// NewReminderUsecase creates a new reminder usecase.
// text is a text/template rendered with the matching domain.Entry.
func NewReminderUsecase(store repo.ChatStore, messageRepo repo.MessageRepo, text string, logger *slog.Logger) (*ReminderUsecase, error) {
	tmpl, err := template.New("reminder").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse reminder template: %w", err)
	}
	return &ReminderUsecase{
		store:       store,
		messageRepo: messageRepo,
		tmpl:        tmpl,
		logger:      logger.With("component", "reminder"),
	}, nil
}

// Due collects the notifications for now's day-month. Only Active
// conversations are visited; the shared lock is released on return.
func (uc *ReminderUsecase) Due(now time.Time) []Notification {
	var due []Notification
	for chatID, rec := range uc.store.Iterate() {
		if rec.State != domain.StateActive {
			continue
		}
		for _, entry := range rec.Entries.All() {
			if !entry.Matches(now) {
				continue
			}
			text, err := uc.render(entry)
			if err != nil {
				uc.logger.Error("failed to render reminder", "chat_id", chatID, "name", entry.Name, "error", err)
				continue
			}
			due = append(due, Notification{ChatID: chatID, Entry: entry, Text: text})
		}
	}
	return due
}

// Dispatch sends notifications one by one. A failed send is logged and the
// pass continues with the next notification.
func (uc *ReminderUsecase) Dispatch(ctx context.Context, notifications []Notification) DispatchResult {
	var result DispatchResult
	for _, n := range notifications {
		if err := uc.messageRepo.SendText(ctx, n.ChatID, n.Text); err != nil {
			uc.logger.Error("failed to send reminder", "chat_id", n.ChatID, "name", n.Entry.Name, "error", err)
			result.Failed++
			continue
		}
		result.Sent++
	}
	return result
}

// Run performs one reminder pass for now
func (uc *ReminderUsecase) Run(ctx context.Context, now time.Time) DispatchResult {
	due := uc.Due(now)
	result := uc.Dispatch(ctx, due)
	uc.logger.Info("reminder pass finished",
		"date", now.UTC().Format(domain.DateLayout),
		"due", len(due),
		"sent", result.Sent,
		"failed", result.Failed,
	)
	return result
}

func (uc *ReminderUsecase) render(entry domain.Entry) (string, error) {
	var sb strings.Builder
	if err := uc.tmpl.Execute(&sb, entry); err != nil {
		return "", err
	}
	return sb.String(), nil
}
