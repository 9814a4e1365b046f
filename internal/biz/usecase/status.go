package usecase

import (
	"time"

	"github.com/DevRickLin/feishu-birthday-bot/internal/biz/domain"
	"github.com/DevRickLin/feishu-birthday-bot/internal/biz/repo"
)

// JobProbe exposes the liveness of one scheduled job
type JobProbe interface {
	Name() string
	IsRunning() bool
	NextRun() time.Time
}

// JobStatus is the reported state of one job
type JobStatus struct {
	Name    string    `json:"name"`
	Running bool      `json:"running"`
	NextRun time.Time `json:"next_run"`
}

// ChatSummary is the reported state of one conversation
type ChatSummary struct {
	ChatID  string           `json:"chat_id"`
	State   domain.ChatState `json:"state"`
	Entries int              `json:"entries"`
}

// StatusReport is the diagnostics snapshot served to operators
type StatusReport struct {
	GeneratedAt    time.Time      `json:"generated_at"`
	EstimatedBytes int64          `json:"estimated_bytes"`
	CeilingBytes   int64          `json:"ceiling_bytes"`
	UsagePercent   float64        `json:"usage_percent"`
	Records        int            `json:"records"`
	Jobs           []JobStatus    `json:"jobs"`
	Snapshot       SnapshotHealth `json:"snapshot"`
	Chats          []ChatSummary  `json:"chats"`
}

// StatusUsecase assembles status reports
type StatusUsecase struct {
	store  repo.ChatStore
	backup *BackupUsecase
	jobs   []JobProbe
	now    func() time.Time
}

// NewStatusUsecase creates a new status usecase
func NewStatusUsecase(store repo.ChatStore, backup *BackupUsecase, jobs ...JobProbe) *StatusUsecase {
	return &StatusUsecase{
		store:  store,
		backup: backup,
		jobs:   jobs,
		now:    time.Now,
	}
}

// Report builds a report. The size figure is the store's heuristic estimate.
func (uc *StatusUsecase) Report() *StatusReport {
	report := &StatusReport{
		GeneratedAt:    uc.now().UTC(),
		EstimatedBytes: uc.store.EstimateSize(),
		CeilingBytes:   uc.store.Ceiling(),
		Jobs:           make([]JobStatus, 0, len(uc.jobs)),
		Chats:          []ChatSummary{},
	}
	if report.CeilingBytes > 0 {
		report.UsagePercent = float64(report.EstimatedBytes) * 100 / float64(report.CeilingBytes)
	}

	for _, j := range uc.jobs {
		report.Jobs = append(report.Jobs, JobStatus{Name: j.Name(), Running: j.IsRunning(), NextRun: j.NextRun()})
	}

	for chatID, rec := range uc.store.Iterate() {
		report.Chats = append(report.Chats, ChatSummary{ChatID: chatID, State: rec.State, Entries: rec.Entries.Len()})
	}
	report.Records = len(report.Chats)

	if uc.backup != nil {
		report.Snapshot = uc.backup.Health()
	}
	return report
}

// Healthy reports whether every job loop is alive
func (r *StatusReport) Healthy() bool {
	for _, j := range r.Jobs {
		if !j.Running {
			return false
		}
	}
	return true
}
