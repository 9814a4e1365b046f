package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/DevRickLin/feishu-birthday-bot/internal/mcp"
	"github.com/DevRickLin/feishu-birthday-bot/mcpserver"
)

// This MCP server runs over stdio and answers diagnostics tools by calling
// the bot's local admin API (API_URL, default http://127.0.0.1:9876).

var version = "v1.0.0"

func main() {
	// stdout carries the MCP protocol, keep logs on stderr
	log.SetOutput(os.Stderr)

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	baseURL := os.Getenv("API_URL")
	if baseURL == "" {
		addr := os.Getenv("API_ADDR")
		if addr == "" {
			addr = "127.0.0.1:9876"
		}
		baseURL = "http://" + addr
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	server := mcpserver.NewServer(mcp.NewClient(baseURL), version)
	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("MCP server error: %v", err)
	}
}
