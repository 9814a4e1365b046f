package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	botapi "github.com/DevRickLin/feishu-birthday-bot/internal/mcp"
)

// ReminderMCPServer exposes the bot's diagnostics as MCP tools.
// Every tool is a thin call into the bot's admin API.
type ReminderMCPServer struct {
	server *mcp.Server
	client *botapi.Client
}

// NewServer creates a new diagnostics MCP server backed by client
func NewServer(client *botapi.Client, version string) *ReminderMCPServer {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "birthday-bot-tools",
		Version: version,
	}, nil)

	s := &ReminderMCPServer{
		server: server,
		client: client,
	}

	s.registerTools()

	return s
}

// registerTools registers all diagnostics tools
func (s *ReminderMCPServer) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "bot_status",
		Description: "Get the bot status: estimated store size against its ceiling, job liveness, snapshot health and every conversation's state.",
	}, s.handleStatus)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "bot_health",
		Description: "Check whether the reminder, backup and heartbeat jobs are still running.",
	}, s.handleHealth)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "bot_get_chat",
		Description: "Get one conversation's state and its stored entries.",
	}, s.handleGetChat)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "bot_due_reminders",
		Description: "List the reminders the bot would send on a date without sending them.",
	}, s.handleDueReminders)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "bot_backup",
		Description: "Write a snapshot of the store now instead of waiting for the daily backup.",
	}, s.handleBackup)
}

// StatusInput is empty - no input needed
type StatusInput struct{}

// StatusOutput contains the status report
type StatusOutput struct {
	Status *botapi.Status `json:"status,omitempty"`
	Error  string         `json:"error,omitempty"`
}

func (s *ReminderMCPServer) handleStatus(ctx context.Context, req *mcp.CallToolRequest, input StatusInput) (*mcp.CallToolResult, StatusOutput, error) {
	status, err := s.client.GetStatus(ctx)
	if err != nil {
		return nil, StatusOutput{Error: err.Error()}, nil
	}
	return nil, StatusOutput{Status: status}, nil
}

// HealthInput is empty - no input needed
type HealthInput struct{}

// HealthOutput contains job liveness
type HealthOutput struct {
	Healthy bool         `json:"healthy"`
	Jobs    []botapi.Job `json:"jobs"`
	Error   string       `json:"error,omitempty"`
}

func (s *ReminderMCPServer) handleHealth(ctx context.Context, req *mcp.CallToolRequest, input HealthInput) (*mcp.CallToolResult, HealthOutput, error) {
	health, err := s.client.GetHealth(ctx)
	if err != nil {
		return nil, HealthOutput{Error: err.Error()}, nil
	}
	return nil, HealthOutput{Healthy: health.Status == "ok", Jobs: health.Jobs}, nil
}

// GetChatInput identifies a conversation
type GetChatInput struct {
	ChatID string `json:"chat_id" jsonschema:"the conversation id (Feishu chat_id)"`
}

// GetChatOutput contains the conversation
type GetChatOutput struct {
	Chat  *botapi.Chat `json:"chat,omitempty"`
	Error string       `json:"error,omitempty"`
}

func (s *ReminderMCPServer) handleGetChat(ctx context.Context, req *mcp.CallToolRequest, input GetChatInput) (*mcp.CallToolResult, GetChatOutput, error) {
	if input.ChatID == "" {
		return nil, GetChatOutput{Error: "chat_id is required"}, nil
	}
	chat, err := s.client.GetChat(ctx, input.ChatID)
	if err != nil {
		return nil, GetChatOutput{Error: err.Error()}, nil
	}
	return nil, GetChatOutput{Chat: chat}, nil
}

// DueRemindersInput selects the day to check
type DueRemindersInput struct {
	Date string `json:"date,omitempty" jsonschema:"day to check as YYYY-MM-DD, today (UTC) when empty"`
}

// DueRemindersOutput lists the reminders
type DueRemindersOutput struct {
	Reminders []botapi.DueReminder `json:"reminders"`
	Summary   string               `json:"summary"`
	Error     string               `json:"error,omitempty"`
}

func (s *ReminderMCPServer) handleDueReminders(ctx context.Context, req *mcp.CallToolRequest, input DueRemindersInput) (*mcp.CallToolResult, DueRemindersOutput, error) {
	due, err := s.client.DueReminders(ctx, input.Date)
	if err != nil {
		return nil, DueRemindersOutput{Reminders: []botapi.DueReminder{}, Error: err.Error()}, nil
	}
	if due == nil {
		due = []botapi.DueReminder{}
	}
	return nil, DueRemindersOutput{
		Reminders: due,
		Summary:   fmt.Sprintf("%d reminder(s) due", len(due)),
	}, nil
}

// BackupInput is empty - no input needed
type BackupInput struct{}

// BackupOutput reports the snapshot write
type BackupOutput struct {
	Success bool   `json:"success"`
	Bytes   int    `json:"bytes,omitempty"`
	Records int    `json:"records,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (s *ReminderMCPServer) handleBackup(ctx context.Context, req *mcp.CallToolRequest, input BackupInput) (*mcp.CallToolResult, BackupOutput, error) {
	result, err := s.client.Backup(ctx)
	if err != nil {
		return nil, BackupOutput{Error: err.Error()}, nil
	}
	return nil, BackupOutput{Success: result.OK, Bytes: result.Bytes, Records: result.Records}, nil
}

// Run starts the MCP server with stdio transport
func (s *ReminderMCPServer) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// GetServer returns the underlying MCP server
func (s *ReminderMCPServer) GetServer() *mcp.Server {
	return s.server
}
