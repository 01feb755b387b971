package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds application configuration
type Config struct {
	TelegramToken string
	AdminUserIDs  []int64
	GroupChatID   int64 // destination chat for round announcements
	LogChannelID  int64 // audit channel; 0 disables mirroring
	DatabasePath  string
	LogLevel      string

	// Optional channel usernames shown on the welcome keyboard
	ChannelUsername        string
	UpdatesChannelUsername string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	token := os.Getenv("TELEGRAM_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN environment variable is required")
	}

	groupIDStr := os.Getenv("GROUP_CHAT_ID")
	if groupIDStr == "" {
		return nil, fmt.Errorf("GROUP_CHAT_ID environment variable is required")
	}
	groupChatID, err := strconv.ParseInt(groupIDStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid GROUP_CHAT_ID: %w", err)
	}

	adminIDsStr := os.Getenv("ADMIN_USER_IDS")
	if adminIDsStr == "" {
		return nil, fmt.Errorf("ADMIN_USER_IDS environment variable is required")
	}
	adminIDs, err := parseAdminIDs(adminIDsStr)
	if err != nil {
		return nil, fmt.Errorf("invalid ADMIN_USER_IDS: %w", err)
	}

	var logChannelID int64
	if logChannelStr := strings.TrimSpace(os.Getenv("LOG_CHANNEL_ID")); logChannelStr != "" {
		logChannelID, err = strconv.ParseInt(logChannelStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_CHANNEL_ID: %w", err)
		}
	}

	dbPath := lookupEnvOrString("DATABASE_PATH", "./data/bot.db")
	logLevel := lookupEnvOrString("LOG_LEVEL", "INFO")

	return &Config{
		TelegramToken:          token,
		AdminUserIDs:           adminIDs,
		GroupChatID:            groupChatID,
		LogChannelID:           logChannelID,
		DatabasePath:           dbPath,
		LogLevel:               logLevel,
		ChannelUsername:        strings.TrimSpace(os.Getenv("CHANNEL_USERNAME")),
		UpdatesChannelUsername: strings.TrimSpace(os.Getenv("UPDATES_CHANNEL_USERNAME")),
	}, nil
}

// IsAdmin reports whether the user ID is in the administrator list.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.AdminUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// parseAdminIDs parses comma-separated admin user IDs
func parseAdminIDs(s string) ([]int64, error) {
	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid admin ID '%s': %w", part, err)
		}
		ids = append(ids, id)
	}

	if len(ids) == 0 {
		return nil, fmt.Errorf("at least one admin ID is required")
	}

	return ids, nil
}
