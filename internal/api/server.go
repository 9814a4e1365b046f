package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/DevRickLin/feishu-birthday-bot/internal/biz/usecase"
)

// Server provides the local admin HTTP API: status, health, chat operations and on-demand backup
type Server struct {
	chatUC   *usecase.ChatUsecase
	backupUC *usecase.BackupUsecase
	statusUC *usecase.StatusUsecase
	reminder *usecase.ReminderUsecase
	logger   *slog.Logger

	server *http.Server
	addr   string
}

// NewServer creates a new API server
func NewServer(
	chatUC *usecase.ChatUsecase,
	backupUC *usecase.BackupUsecase,
	statusUC *usecase.StatusUsecase,
	reminder *usecase.ReminderUsecase,
	addr string,
	logger *slog.Logger,
) *Server {
	s := &Server{
		chatUC:   chatUC,
		backupUC: backupUC,
		statusUC: statusUC,
		reminder: reminder,
		logger:   logger.With("component", "api"),
		addr:     addr,
	}
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.addr
}
