package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/DevRickLin/feishu-birthday-bot/internal/infra/feishu"
	"github.com/DevRickLin/feishu-birthday-bot/internal/logging"
)

// send-message delivers one text through the bot's Feishu app, for checking
// credentials and receiver ids before relying on the scheduled jobs.
func main() {
	_ = godotenv.Load()

	appID := os.Getenv("FEISHU_APP_ID")
	appSecret := os.Getenv("FEISHU_APP_SECRET")

	if appID == "" || appSecret == "" {
		fmt.Println("Error: FEISHU_APP_ID and FEISHU_APP_SECRET must be set")
		os.Exit(1)
	}

	if len(os.Args) < 4 || (os.Args[1] != "chat" && os.Args[1] != "user") {
		fmt.Println("Usage: send-message chat <chat_id> <message>")
		fmt.Println("       send-message user <open_id> <message>")
		os.Exit(1)
	}

	target := os.Args[1]
	receiverID := os.Args[2]
	message := os.Args[3]

	client := feishu.NewClient(appID, appSecret, logging.New(os.Stderr, slog.LevelInfo, logging.FormatText))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var err error
	if target == "chat" {
		err = client.SendText(ctx, receiverID, message)
	} else {
		err = client.SendTextToUser(ctx, receiverID, message)
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Message sent successfully!")
}
