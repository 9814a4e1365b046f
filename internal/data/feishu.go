package data

import (
	"context"

	"github.com/DevRickLin/feishu-birthday-bot/internal/biz/repo"
	"github.com/DevRickLin/feishu-birthday-bot/internal/infra/feishu"
)

// feishuRepo implements the Feishu message repository
type feishuRepo struct {
	client *feishu.Client
}

// NewFeishuRepo creates a new Feishu repository
func NewFeishuRepo(client *feishu.Client) repo.MessageRepo {
	return &feishuRepo{client: client}
}

// SendText sends a text message to a chat
func (r *feishuRepo) SendText(ctx context.Context, chatID, text string) error {
	return r.client.SendText(ctx, chatID, text)
}

// SendTextToUser sends a text message to a user
func (r *feishuRepo) SendTextToUser(ctx context.Context, userID, text string) error {
	return r.client.SendTextToUser(ctx, userID, text)
}
