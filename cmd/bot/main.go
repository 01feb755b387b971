package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ad/telegram-lottery-bot/internal/bot"
	"github.com/ad/telegram-lottery-bot/internal/config"
	"github.com/ad/telegram-lottery-bot/internal/domain"
	"github.com/ad/telegram-lottery-bot/internal/locale"
	"github.com/ad/telegram-lottery-bot/internal/logger"
	"github.com/ad/telegram-lottery-bot/internal/storage"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"
)

func main() {
	// Load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logLevel := logger.ParseLevel(cfg.LogLevel)
	log := logger.New(logLevel)
	log.Info("Starting Telegram Lottery Bot", "log_level", cfg.LogLevel)

	db, err := sql.Open("sqlite", cfg.DatabasePath)
	if err != nil {
		log.Error("Failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		log.Error("Failed to enable WAL mode", "error", err)
		os.Exit(1)
	}

	log.Info("Database opened", "path", cfg.DatabasePath)

	dbQueue := storage.NewDBQueue(db)
	defer dbQueue.Close()

	if err := storage.InitSchema(dbQueue); err != nil {
		log.Error("Failed to initialize database schema", "error", err)
		os.Exit(1)
	}
	if err := storage.RunMigrations(dbQueue); err != nil {
		log.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}
	log.Info("Database schema ready")

	// Repositories
	ticketRepo := storage.NewTicketRepository(dbQueue)
	userRepo := storage.NewUserRepository(dbQueue)
	auditRepo := storage.NewAuditRepository(dbQueue)

	// Domain services
	raffle := domain.NewRaffleService(ticketRepo, log)
	languages := domain.NewLanguageService(userRepo, log)

	// FSM storage for conversation flows
	fsmStorage := storage.NewFSMStorage(dbQueue, log)
	if err := fsmStorage.CleanupStale(context.Background()); err != nil {
		log.Error("Failed to cleanup stale sessions", "error", err)
	}

	locales, err := locale.NewRegistry()
	if err != nil {
		log.Error("Failed to load locale bundles", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Create bot handler first (needed for default handler)
	var handler *bot.BotHandler

	opts := []tgbot.Option{
		tgbot.WithDefaultHandler(func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
			// Photos carry no text, so they bypass the text handlers
			if update.Message != nil && len(update.Message.Photo) > 0 && handler != nil {
				handler.HandlePhoto(ctx, b, update)
			}
		}),
	}

	b, err := tgbot.New(cfg.TelegramToken, opts...)
	if err != nil {
		log.Error("Failed to create bot", "error", err)
		os.Exit(1)
	}
	log.Info("Telegram bot created")

	// Audit trail, optionally mirrored to a log channel
	var notifier domain.ChannelNotifier
	if cfg.LogChannelID != 0 {
		notifier = bot.NewChannelAuditNotifier(b, cfg.LogChannelID)
	}
	audit := domain.NewAuditLogger(auditRepo, notifier, log)

	handler = bot.NewBotHandler(b, raffle, languages, audit, fsmStorage, locales, cfg, log)

	b.RegisterHandler(tgbot.HandlerTypeMessageText, "/start", tgbot.MatchTypePrefix, handler.HandleStart)
	b.RegisterHandler(tgbot.HandlerTypeCallbackQueryData, "", tgbot.MatchTypePrefix, handler.HandleCallback)
	b.RegisterHandler(tgbot.HandlerTypeMessageText, "", tgbot.MatchTypePrefix, handler.HandleMessage)

	log.Info("Handlers registered")

	audit.LogSystemEvent(ctx, "bot_started", "")

	go func() {
		log.Info("Starting bot polling")
		b.Start(ctx)
	}()

	log.Info("Bot is running. Press Ctrl+C to stop.")

	<-ctx.Done()

	log.Info("Shutdown signal received, stopping bot...")
	audit.LogSystemEvent(context.Background(), "bot_stopped", "")
	log.Info("Bot stopped successfully")
}
