package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/DevRickLin/feishu-birthday-bot/internal/api"
	"github.com/DevRickLin/feishu-birthday-bot/internal/biz"
	"github.com/DevRickLin/feishu-birthday-bot/internal/biz/usecase"
	"github.com/DevRickLin/feishu-birthday-bot/internal/conf"
	"github.com/DevRickLin/feishu-birthday-bot/internal/data"
	"github.com/DevRickLin/feishu-birthday-bot/internal/infra/feishu"
	"github.com/DevRickLin/feishu-birthday-bot/internal/logging"
	"github.com/DevRickLin/feishu-birthday-bot/internal/service"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := conf.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	logger := logging.New(os.Stderr, level, cfg.Log.Format)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("bot stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *conf.Config, logger *slog.Logger) error {
	messages, err := conf.LoadMessagesConfig(cfg.MessagesPath, logger)
	if err != nil {
		return fmt.Errorf("load messages: %w", err)
	}

	policy, err := data.ParseCapacityPolicy(cfg.Store.CapacityPolicy)
	if err != nil {
		return err
	}

	// Data layer
	feishuClient := feishu.NewClient(cfg.Feishu.AppID, cfg.Feishu.AppSecret, logger)
	repos, err := data.NewRepositories(feishuClient, cfg.Snapshot.SnapshotOptions(), cfg.Store.CeilingBytes, policy)
	if err != nil {
		return fmt.Errorf("create repositories: %w", err)
	}
	defer repos.Close()

	// Usecases
	reminderUC, err := usecase.NewReminderUsecase(repos.Store, repos.Message, messages.Reminder.Template, logger)
	if err != nil {
		return err
	}
	ucs := &biz.Usecases{
		Chat:      usecase.NewChatUsecase(repos.Store, logger),
		Reminder:  reminderUC,
		Backup:    usecase.NewBackupUsecase(repos.Store, repos.Snapshot, data.JSONCodec{}, logger),
		Heartbeat: usecase.NewHeartbeatUsecase(repos.Message, cfg.Maintainer.OpenID, messages.Heartbeat.Text, logger),
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Best-effort restore: a failure leaves the store empty
	if _, err := ucs.Backup.Restore(ctx); err != nil {
		logger.Warn("continuing with an empty store", "error", err)
	}

	scheduler := service.NewDailyScheduler(cfg.Schedule, ucs.Reminder, ucs.Backup, ucs.Heartbeat, logger)
	ucs.Status = usecase.NewStatusUsecase(repos.Store, ucs.Backup, scheduler.Jobs()...)

	scheduler.Start(ctx)
	defer scheduler.Stop()

	apiServer := api.NewServer(ucs.Chat, ucs.Backup, ucs.Status, ucs.Reminder, cfg.API.Addr, logger)
	go func() {
		// The jobs keep running without the admin API
		if err := apiServer.Start(); err != nil {
			logger.Error("admin API stopped", "error", err)
		}
	}()

	logger.Info("birthday bot started",
		"snapshot", repos.Snapshot.Location(),
		"records", repos.Store.Len(),
		"ceiling_bytes", repos.Store.Ceiling(),
		"capacity_policy", policy,
	)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := apiServer.Stop(shutdownCtx); err != nil {
		logger.Warn("admin API shutdown", "error", err)
	}
	return nil
}
