package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/DevRickLin/feishu-birthday-bot/internal/biz/repo"
)

// HeartbeatUsecase sends the liveness message to the maintainer
type HeartbeatUsecase struct {
	messageRepo  repo.MessageRepo
	maintainerID string
	text         string
	logger       *slog.Logger
}

// NewHeartbeatUsecase creates a new heartbeat usecase
func NewHeartbeatUsecase(messageRepo repo.MessageRepo, maintainerID, text string, logger *slog.Logger) *HeartbeatUsecase {
	return &HeartbeatUsecase{
		messageRepo:  messageRepo,
		maintainerID: maintainerID,
		text:         text,
		logger:       logger.With("component", "heartbeat"),
	}
}

// Beat sends one heartbeat
func (uc *HeartbeatUsecase) Beat(ctx context.Context) error {
	if err := uc.messageRepo.SendTextToUser(ctx, uc.maintainerID, uc.text); err != nil {
		uc.logger.Error("heartbeat failed", "maintainer", uc.maintainerID, "error", err)
		return fmt.Errorf("send heartbeat: %w", err)
	}
	uc.logger.Debug("heartbeat sent", "maintainer", uc.maintainerID)
	return nil
}
