package usecase

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/DevRickLin/feishu-birthday-bot/internal/biz/domain"
	"github.com/DevRickLin/feishu-birthday-bot/internal/biz/repo"
)

// SnapshotResult is the outcome of one save or load
type SnapshotResult struct {
	At      time.Time `json:"at"`
	OK      bool      `json:"ok"`
	Error   string    `json:"error,omitempty"`
	Bytes   int       `json:"bytes"`
	Records int       `json:"records"`
}

// SnapshotHealth summarizes persistence for status reporting
type SnapshotHealth struct {
	Location            string          `json:"location"`
	LastSave            *SnapshotResult `json:"last_save,omitempty"`
	LastSuccessfulSave  *time.Time      `json:"last_successful_save,omitempty"`
	ConsecutiveFailures int             `json:"consecutive_failures"`
	LastLoad            *SnapshotResult `json:"last_load,omitempty"`
}

// BackupUsecase saves and restores whole-store snapshots and tracks their health
type BackupUsecase struct {
	store     repo.ChatStore
	snapshots repo.SnapshotRepo
	codec     repo.SnapshotCodec
	logger    *slog.Logger
	now       func() time.Time

	mu     sync.Mutex
	health SnapshotHealth
}

// NewBackupUsecase creates a new backup usecase
func NewBackupUsecase(store repo.ChatStore, snapshots repo.SnapshotRepo, codec repo.SnapshotCodec, logger *slog.Logger) *BackupUsecase {
	return &BackupUsecase{
		store:     store,
		snapshots: snapshots,
		codec:     codec,
		logger:    logger.With("component", "backup"),
		now:       time.Now,
		health:    SnapshotHealth{Location: snapshots.Location()},
	}
}

// Backup encodes the store and writes it through the snapshot repository.
// Failures are returned as *domain.SnapshotError and recorded in Health.
func (uc *BackupUsecase) Backup(ctx context.Context) (SnapshotResult, error) {
	result := SnapshotResult{At: uc.now(), Records: uc.store.Len()}

	data, err := uc.codec.Encode(uc.store)
	if err == nil {
		result.Bytes = len(data)
		err = uc.snapshots.Save(ctx, data)
	}
	if err != nil {
		err = &domain.SnapshotError{Op: "save", Path: uc.snapshots.Location(), Err: err}
		result.Error = err.Error()
	}
	result.OK = err == nil

	uc.mu.Lock()
	uc.health.LastSave = &result
	if result.OK {
		at := result.At
		uc.health.LastSuccessfulSave = &at
		uc.health.ConsecutiveFailures = 0
	} else {
		uc.health.ConsecutiveFailures++
	}
	failures := uc.health.ConsecutiveFailures
	uc.mu.Unlock()

	if err != nil {
		uc.logger.Error("backup failed", "error", err, "consecutive_failures", failures)
		return result, err
	}
	uc.logger.Info("backup written", "location", uc.snapshots.Location(), "bytes", result.Bytes, "records", result.Records)
	return result, nil
}

// Restore loads the latest snapshot into the store. It is best effort: on
// any failure the store is left empty and the error is returned for logging.
// A missing snapshot is a normal first start and not an error.
func (uc *BackupUsecase) Restore(ctx context.Context) (SnapshotResult, error) {
	result := SnapshotResult{At: uc.now()}

	records, size, err := uc.load(ctx)
	switch {
	case errors.Is(err, os.ErrNotExist):
		uc.store.Replace(nil)
		result.OK = true
		uc.logger.Info("no snapshot found, starting empty", "location", uc.snapshots.Location())
		err = nil
	case err != nil:
		uc.store.Replace(nil)
		err = &domain.SnapshotError{Op: "load", Path: uc.snapshots.Location(), Err: err}
		result.Error = err.Error()
		uc.logger.Warn("snapshot restore failed, starting empty", "error", err)
	default:
		uc.store.Replace(records)
		result.OK = true
		result.Bytes = size
		result.Records = len(records)
		uc.logger.Info("snapshot restored", "location", uc.snapshots.Location(), "records", len(records))
	}

	uc.mu.Lock()
	uc.health.LastLoad = &result
	uc.mu.Unlock()
	return result, err
}

func (uc *BackupUsecase) load(ctx context.Context) (map[string]*domain.ChatRecord, int, error) {
	data, err := uc.snapshots.Load(ctx)
	if err != nil {
		return nil, 0, err
	}
	records, err := uc.codec.Decode(data)
	if err != nil {
		return nil, 0, err
	}
	return records, len(data), nil
}

// Health returns a copy of the current snapshot health
func (uc *BackupUsecase) Health() SnapshotHealth {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	h := uc.health
	if h.LastSave != nil {
		s := *h.LastSave
		h.LastSave = &s
	}
	if h.LastLoad != nil {
		l := *h.LastLoad
		h.LastLoad = &l
	}
	if h.LastSuccessfulSave != nil {
		t := *h.LastSuccessfulSave
		h.LastSuccessfulSave = &t
	}
	return h
}
