package biz

import (
	"github.com/DevRickLin/feishu-birthday-bot/internal/biz/usecase"
)

// Usecases contains all usecases
type Usecases struct {
	Chat      *usecase.ChatUsecase
	Reminder  *usecase.ReminderUsecase
	Backup    *usecase.BackupUsecase
	Heartbeat *usecase.HeartbeatUsecase
	Status    *usecase.StatusUsecase
}
