package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/DevRickLin/feishu-birthday-bot/internal/biz/domain"
	"github.com/DevRickLin/feishu-birthday-bot/internal/biz/usecase"
)

// maxUploadBytes bounds an uploaded entry list
const maxUploadBytes = 1 << 20

// ChatView is the JSON form of one conversation
type ChatView struct {
	ChatID  string           `json:"chat_id"`
	State   domain.ChatState `json:"state"`
	Entries []domain.Entry   `json:"entries"`
}

// OperationResult is the JSON form of an accepted operation
type OperationResult struct {
	ChatID  string           `json:"chat_id"`
	Op      domain.Operation `json:"op"`
	From    domain.ChatState `json:"from,omitempty"`
	To      domain.ChatState `json:"to"`
	Created bool             `json:"created"`
	Entries int              `json:"entries"`
	Removed *domain.Entry    `json:"removed,omitempty"`
}

// EntryRequest carries one entry line
type EntryRequest struct {
	Text string `json:"text"`
}

// ============ Health & Status ============

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.statusUC.Report()

	status, code := "ok", http.StatusOK
	if !report.Healthy() {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	s.writeJSONCode(w, code, map[string]interface{}{"status": status, "jobs": report.Jobs})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.statusUC.Report())
}

// ============ Snapshot ============

func (s *Server) handleBackup(w http.ResponseWriter, r *http.Request) {
	result, err := s.backupUC.Backup(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, result)
}

// ============ Reminders ============

func (s *Server) handleRemindersDue(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	if d := r.URL.Query().Get("date"); d != "" {
		parsed, err := time.Parse(time.DateOnly, d)
		if err != nil {
			http.Error(w, "invalid date, want YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		now = parsed
	}

	type dueView struct {
		ChatID string       `json:"chat_id"`
		Entry  domain.Entry `json:"entry"`
		Text   string       `json:"text"`
	}
	due := []dueView{}
	for _, n := range s.reminder.Due(now) {
		due = append(due, dueView{ChatID: n.ChatID, Entry: n.Entry, Text: n.Text})
	}
	s.writeJSON(w, map[string]interface{}{"date": now.Format(domain.DateLayout), "due": due})
}

// ============ Chat Handlers ============

func (s *Server) handleGetChat(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")
	rec, err := s.chatUC.Get(chatID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	entries := rec.Entries.Entries()
	if entries == nil {
		entries = []domain.Entry{}
	}
	s.writeJSON(w, ChatView{ChatID: chatID, State: rec.State, Entries: entries})
}

func (s *Server) handleOperation(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")

	var fn func(string) (*usecase.ChatResult, error)
	switch chi.URLParam(r, "op") {
	case "activate":
		fn = s.chatUC.Activate
	case "disable":
		fn = s.chatUC.Disable
	case "cancel":
		fn = s.chatUC.Cancel
	case "request-add":
		fn = s.chatUC.BeginAdd
	case "request-removal":
		fn = s.chatUC.BeginRemoval
	case "request-upload":
		fn = s.chatUC.BeginUpload
	default:
		http.Error(w, "unknown operation", http.StatusNotFound)
		return
	}

	res, err := fn(chatID)
	s.writeResult(w, chatID, res, err)
}

func (s *Server) handleAddEntry(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")

	var req EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	res, err := s.chatUC.AddEntry(chatID, req.Text)
	s.writeResult(w, chatID, res, err)
}

func (s *Server) handleRemoveEntry(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")
	res, err := s.chatUC.RemoveEntry(chatID, chi.URLParam(r, "index"))
	s.writeResult(w, chatID, res, err)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		http.Error(w, "failed to read body: "+err.Error(), http.StatusRequestEntityTooLarge)
		return
	}

	res, err := s.chatUC.Upload(chatID, body)
	s.writeResult(w, chatID, res, err)
}

// ============ Helpers ============

func (s *Server) writeResult(w http.ResponseWriter, chatID string, res *usecase.ChatResult, err error) {
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, OperationResult{
		ChatID:  chatID,
		Op:      res.Transition.Op,
		From:    res.Transition.From,
		To:      res.Transition.To,
		Created: res.Transition.Created,
		Entries: res.Entries,
		Removed: res.Removed,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	s.writeJSONCode(w, http.StatusOK, data)
}

func (s *Server) writeJSONCode(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	s.writeJSONCode(w, code, map[string]string{"error": err.Error()})
}

// statusFor maps the domain error taxonomy to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrCapacityExceeded):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrParse):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
