package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/fxanalyst/internal/app"
	"github.com/Alias1177/fxanalyst/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		config.SetupLogging("info")
		var missing *config.MissingCredentialError
		if errors.As(err, &missing) {
			log.Fatal().Strs("keys", missing.Keys).Msg("Missing credentials, refusing to start")
		}
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	config.SetupLogging(cfg.LogLevel)

	if cfg.TelegramBotToken == "" {
		log.Fatal().Strs("keys", []string{"TELEGRAM_BOT_TOKEN"}).Msg("Missing credentials, refusing to start")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, closer, err := app.Build(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialise")
	}
	defer closer.Close()

	// Initialize Telegram bot
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Telegram bot")
	}

	log.Info().Str("username", bot.Self.UserName).Msg("Authorized on Telegram")

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := bot.GetUpdatesChan(updateConfig)

	h := &handler{cycle: svc, logger: log.With().Str("component", "tgbot").Logger()}

	for {
		select {
		case <-ctx.Done():
			bot.StopReceivingUpdates()
			log.Info().Msg("Shutting down")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}

			text := h.respond(ctx, update.Message.Command())
			msg := tgbotapi.NewMessage(update.Message.Chat.ID, text)
			msg.ReplyMarkup = mainMenuKeyboard()
			if _, err := bot.Send(msg); err != nil {
				log.Error().Err(err).Int64("chat_id", update.Message.Chat.ID).Msg("Send failed")
			}
		}
	}
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/status"),
			tgbotapi.NewKeyboardButton("/forecast"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/history"),
		),
	)
}
