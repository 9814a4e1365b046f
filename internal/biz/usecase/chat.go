package usecase

import (
	"fmt"
	"log/slog"

	"github.com/DevRickLin/feishu-birthday-bot/internal/biz/domain"
	"github.com/DevRickLin/feishu-birthday-bot/internal/biz/repo"
)

// ChatResult is the outcome of one conversation operation
type ChatResult struct {
	Transition domain.Transition
	Entries    int           // list length after the operation
	Removed    *domain.Entry // set by RemoveEntry
}

// ChatUsecase drives a conversation through the transition table.
// Inbound handlers call it; every method is one atomic store operation.
type ChatUsecase struct {
	store  repo.ChatStore
	logger *slog.Logger
}

// NewChatUsecase creates a new chat usecase
func NewChatUsecase(store repo.ChatStore, logger *slog.Logger) *ChatUsecase {
	return &ChatUsecase{
		store:  store,
		logger: logger.With("component", "chat"),
	}
}

// Activate enables reminders. A conversation without entries is asked for an upload instead.
func (uc *ChatUsecase) Activate(chatID string) (*ChatResult, error) {
	return uc.apply(chatID, domain.OpActivate, nil)
}

// Disable stops reminders, keeping the entries
func (uc *ChatUsecase) Disable(chatID string) (*ChatResult, error) {
	return uc.apply(chatID, domain.OpDisable, nil)
}

// BeginAdd waits for one entry line
func (uc *ChatUsecase) BeginAdd(chatID string) (*ChatResult, error) {
	return uc.apply(chatID, domain.OpRequestAdd, nil)
}

// AddEntry parses "First Last, DD-MM[, @handle]" and appends it.
// A parse failure keeps the conversation waiting.
func (uc *ChatUsecase) AddEntry(chatID, text string) (*ChatResult, error) {
	entry, err := domain.ParseEntry(text)
	if err != nil {
		return nil, err
	}
	return uc.apply(chatID, domain.OpCompleteAdd, func(l *domain.EntryList) error {
		l.Append(entry)
		return nil
	})
}

// BeginRemoval waits for an index; rejected when there is nothing to remove
func (uc *ChatUsecase) BeginRemoval(chatID string) (*ChatResult, error) {
	return uc.apply(chatID, domain.OpRequestRemoval, nil)
}

// RemoveEntry removes the entry at the given zero-based index
func (uc *ChatUsecase) RemoveEntry(chatID, text string) (*ChatResult, error) {
	index, err := domain.ParseIndex(text)
	if err != nil {
		return nil, err
	}
	var removed domain.Entry
	res, err := uc.apply(chatID, domain.OpCompleteRemoval, func(l *domain.EntryList) error {
		e, err := l.RemoveAt(index)
		removed = e
		return err
	})
	if err != nil {
		return nil, err
	}
	res.Removed = &removed
	return res, nil
}

// BeginUpload waits for a JSON entry list
func (uc *ChatUsecase) BeginUpload(chatID string) (*ChatResult, error) {
	return uc.apply(chatID, domain.OpRequestUpload, nil)
}

// Upload parses a JSON entry list and merges it into the conversation's list
func (uc *ChatUsecase) Upload(chatID string, data []byte) (*ChatResult, error) {
	list, err := domain.ParseEntryList(data)
	if err != nil {
		return nil, err
	}
	return uc.apply(chatID, domain.OpCompleteUpload, func(l *domain.EntryList) error {
		l.Merge(list)
		return nil
	})
}

// Cancel leaves a waiting state
func (uc *ChatUsecase) Cancel(chatID string) (*ChatResult, error) {
	return uc.apply(chatID, domain.OpCancel, nil)
}

// Get returns a copy of the conversation's record
func (uc *ChatUsecase) Get(chatID string) (*domain.ChatRecord, error) {
	rec, ok := uc.store.Get(chatID)
	if !ok {
		return nil, fmt.Errorf("chat %s: %w", chatID, domain.ErrNotFound)
	}
	return rec, nil
}

func (uc *ChatUsecase) apply(chatID string, op domain.Operation, mutate func(*domain.EntryList) error) (*ChatResult, error) {
	var entries int
	tr, err := uc.store.Apply(chatID, op, func(l *domain.EntryList) error {
		if mutate != nil {
			if err := mutate(l); err != nil {
				return err
			}
		}
		entries = l.Len()
		return nil
	})
	if err != nil {
		uc.logger.Debug("operation rejected", "chat_id", chatID, "op", op, "error", err)
		return nil, err
	}
	if tr.Changed() {
		uc.logger.Info("chat state changed", "chat_id", chatID, "op", op, "from", tr.From, "to", tr.To)
	}
	return &ChatResult{Transition: tr, Entries: entries}, nil
}
