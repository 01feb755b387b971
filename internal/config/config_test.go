package config

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func setValidEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TELEGRAM_TOKEN", "test_token")
	t.Setenv("GROUP_CHAT_ID", "-100123456")
	t.Setenv("ADMIN_USER_IDS", "111,222")
	t.Setenv("LOG_CHANNEL_ID", "")
	t.Setenv("DATABASE_PATH", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("CHANNEL_USERNAME", "")
	t.Setenv("UPDATES_CHANNEL_USERNAME", "")
}

func TestLoadValidConfig(t *testing.T) {
	setValidEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.TelegramToken != "test_token" {
		t.Errorf("Unexpected token: %q", cfg.TelegramToken)
	}
	if cfg.GroupChatID != -100123456 {
		t.Errorf("Unexpected group chat ID: %d", cfg.GroupChatID)
	}
	if len(cfg.AdminUserIDs) != 2 || cfg.AdminUserIDs[0] != 111 || cfg.AdminUserIDs[1] != 222 {
		t.Errorf("Unexpected admin IDs: %v", cfg.AdminUserIDs)
	}
	if cfg.LogChannelID != 0 {
		t.Errorf("Expected audit mirroring disabled, got channel %d", cfg.LogChannelID)
	}
	if cfg.DatabasePath != "./data/bot.db" {
		t.Errorf("Unexpected default database path: %q", cfg.DatabasePath)
	}
	if cfg.LogLevel != "INFO" {
		t.Errorf("Unexpected default log level: %q", cfg.LogLevel)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	tests := []struct {
		name  string
		unset string
	}{
		{"missing token", "TELEGRAM_TOKEN"},
		{"missing group chat", "GROUP_CHAT_ID"},
		{"missing admin IDs", "ADMIN_USER_IDS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setValidEnv(t)
			t.Setenv(tt.unset, "")

			if _, err := Load(); err == nil {
				t.Errorf("Expected error when %s is empty", tt.unset)
			}
		})
	}
}

func TestInvalidNumericEnvRejection(t *testing.T) {
	setValidEnv(t)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	invalidNumber := gen.OneConstOf("abc", "12.5", "1e5", "NaN", "null", "true", "-", "+", "not_a_number")

	properties.Property("non-integer GROUP_CHAT_ID values are rejected", prop.ForAll(
		func(invalidValue string) bool {
			t.Setenv("GROUP_CHAT_ID", invalidValue)
			defer t.Setenv("GROUP_CHAT_ID", "-100123456")

			_, err := Load()
			return err != nil
		},
		invalidNumber,
	))

	properties.Property("non-integer LOG_CHANNEL_ID values are rejected", prop.ForAll(
		func(invalidValue string) bool {
			t.Setenv("LOG_CHANNEL_ID", invalidValue)
			defer t.Setenv("LOG_CHANNEL_ID", "")

			_, err := Load()
			return err != nil
		},
		invalidNumber,
	))

	properties.Property("non-integer admin ID lists are rejected", prop.ForAll(
		func(invalidValue string) bool {
			t.Setenv("ADMIN_USER_IDS", "111,"+invalidValue)
			defer t.Setenv("ADMIN_USER_IDS", "111,222")

			_, err := Load()
			return err != nil
		},
		invalidNumber,
	))

	properties.TestingRun(t)
}

func TestIsAdmin(t *testing.T) {
	cfg := &Config{AdminUserIDs: []int64{111, 222}}

	if !cfg.IsAdmin(111) || !cfg.IsAdmin(222) {
		t.Error("Expected listed IDs to be admins")
	}
	if cfg.IsAdmin(333) || cfg.IsAdmin(0) {
		t.Error("Expected unlisted IDs to not be admins")
	}
}

func TestParseAdminIDs(t *testing.T) {
	ids, err := parseAdminIDs(" 1, 2 ,3,,")
	if err != nil {
		t.Fatalf("parseAdminIDs failed: %v", err)
	}
	if len(ids) != 3 || ids[0] != 1 || ids[1] != 2 || ids[2] != 3 {
		t.Fatalf("Unexpected IDs: %v", ids)
	}

	if _, err := parseAdminIDs(" , "); err == nil {
		t.Error("Expected error for empty admin list")
	}
}
