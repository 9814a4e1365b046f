package feishu

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
)

// Client is the Feishu API client used for outbound messages
type Client struct {
	appID     string
	appSecret string
	larkCli   *lark.Client
	logger    *slog.Logger
}

// NewClient creates a new Feishu client
func NewClient(appID, appSecret string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		appID:     appID,
		appSecret: appSecret,
		larkCli:   lark.NewClient(appID, appSecret),
		logger:    logger.With("component", "feishu"),
	}
}

// SendText sends a text message to a chat
func (c *Client) SendText(ctx context.Context, chatID, text string) error {
	return c.send(ctx, larkim.ReceiveIdTypeChatId, chatID, text)
}

// SendTextToUser sends a text message to a user by open_id
func (c *Client) SendTextToUser(ctx context.Context, openID, text string) error {
	return c.send(ctx, larkim.ReceiveIdTypeOpenId, openID, text)
}

func (c *Client) send(ctx context.Context, receiveIDType, receiveID, text string) error {
	content := map[string]string{"text": text}
	contentJSON, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("encode message content: %w", err)
	}

	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType(receiveIDType).
		Body(larkim.NewCreateMessageReqBodyBuilder().
			ReceiveId(receiveID).
			MsgType(larkim.MsgTypeText).
			Content(string(contentJSON)).
			Build()).
		Build()

	resp, err := c.larkCli.Im.Message.Create(ctx, req)
	if err != nil {
		return fmt.Errorf("send message failed: %w", err)
	}
	if !resp.Success() {
		return fmt.Errorf("send message error: %s", resp.Msg)
	}

	c.logger.Debug("message sent", "receive_id_type", receiveIDType, "receive_id", receiveID)
	return nil
}
