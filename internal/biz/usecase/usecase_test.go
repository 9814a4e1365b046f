package usecase

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/DevRickLin/feishu-birthday-bot/internal/biz/domain"
	"github.com/DevRickLin/feishu-birthday-bot/internal/data"
	"github.com/DevRickLin/feishu-birthday-bot/internal/logging"
)

// Mock implementations

type sentMessage struct {
	To   string
	Text string
}

type mockMessageRepo struct {
	mu       sync.Mutex
	sent     []sentMessage
	direct   []sentMessage
	failFor  map[string]bool
	failUser error
}

func (m *mockMessageRepo) SendText(ctx context.Context, chatID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFor[chatID] {
		return errors.New("send failed")
	}
	m.sent = append(m.sent, sentMessage{To: chatID, Text: text})
	return nil
}

func (m *mockMessageRepo) SendTextToUser(ctx context.Context, userID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failUser != nil {
		return m.failUser
	}
	m.direct = append(m.direct, sentMessage{To: userID, Text: text})
	return nil
}

type mockSnapshotRepo struct {
	data    []byte
	saveErr error
	loadErr error
	saves   int
}

func (m *mockSnapshotRepo) Save(ctx context.Context, data []byte) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.data = append([]byte(nil), data...)
	return nil
}

func (m *mockSnapshotRepo) Load(ctx context.Context) ([]byte, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.data == nil {
		return nil, os.ErrNotExist
	}
	return m.data, nil
}

func (m *mockSnapshotRepo) Location() string {
	return "mem://snapshot"
}

type mockJob struct {
	name    string
	running bool
	next    time.Time
}

func (j *mockJob) Name() string       { return j.name }
func (j *mockJob) IsRunning() bool    { return j.running }
func (j *mockJob) NextRun() time.Time { return j.next }

var (
	alice = domain.Entry{Name: "Alice Smith", Date: "15-03", Handle: "alice"}
	bob   = domain.Entry{Name: "Bob Brown", Date: "01-12"}
	carol = domain.Entry{Name: "Carol White", Date: "15-03"}
)

func newStore() *data.Store {
	return data.NewStore(0, data.PolicyNewRecords)
}

var discard = logging.Discard()
