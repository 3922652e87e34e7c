package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"sol-audit-service/internal/repository"
	"sol-audit-service/internal/service"
)

const paymentCallbackPrefix = "check_payment:"

// payURL is the stub payment destination; the purchase flow performs no
// verification.
const payURL = "https://www.google.com"

// Bot is the conversational front-end. Handlers only parse commands, call
// services and render replies; all job-lifecycle logic lives behind the
// services.
type Bot struct {
	api         *tgbotapi.BotAPI
	accounts    *service.AccountService
	submissions *service.SubmissionService
	logger      *slog.Logger
}

func NewBot(api *tgbotapi.BotAPI, accounts *service.AccountService, submissions *service.SubmissionService, logger *slog.Logger) *Bot {
	return &Bot{api: api, accounts: accounts, submissions: submissions, logger: logger}
}

// Run consumes updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := b.api.GetUpdatesChan(cfg)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.dispatch(ctx, update)
		}
	}
}

func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}

	// /audit arrives as the caption of a document upload.
	if msg.Document != nil && strings.HasPrefix(msg.Caption, "/audit") {
		b.handleAudit(ctx, msg)
		return
	}
	if !msg.IsCommand() {
		return
	}

	switch msg.Command() {
	case "start":
		b.handleStart(ctx, msg)
	case "about":
		b.reply(msg, aboutText)
	case "free":
		b.handleFree(ctx, msg)
	case "buy":
		b.handleBuy(msg)
	case "status":
		b.handleStatus(ctx, msg)
	case "audit":
		b.reply(msg, "To run an audit, send a `.sol` file with the /audit command as its caption.")
	}
}

func profileOf(from *tgbotapi.User) repository.UserProfile {
	return repository.UserProfile{
		FirstName: from.FirstName,
		LastName:  from.LastName,
		Username:  from.UserName,
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	if _, err := b.accounts.Register(ctx, msg.From.ID, profileOf(msg.From)); err != nil {
		b.logger.ErrorContext(ctx, "register user", "telegram_id", msg.From.ID, "error", err)
		b.reply(msg, genericErrorText)
		return
	}
	greeting := "Hi! Good to see you."
	if msg.From.FirstName != "" {
		greeting = fmt.Sprintf("Hi, %s! Good to see you.", msg.From.FirstName)
	}
	b.reply(msg, greeting+"\n\nI audit Solidity smart contracts. Use /about to see what I can do.")
}

func (b *Bot) handleFree(ctx context.Context, msg *tgbotapi.Message) {
	balance, err := b.accounts.GrantFreeCredits(ctx, msg.From.ID, profileOf(msg.From))
	switch {
	case errors.Is(err, service.ErrFreeCreditsExhausted):
		b.reply(msg, "You have already received your free audits. Use /buy {amount} to purchase more.")
	case err != nil:
		b.logger.ErrorContext(ctx, "grant free credits", "telegram_id", msg.From.ID, "error", err)
		b.reply(msg, genericErrorText)
	default:
		b.reply(msg, fmt.Sprintf("You received %d free audits! You now have %d available. Use /audit to get started.", service.FreeCreditGrant, balance))
	}
}

func (b *Bot) handleBuy(msg *tgbotapi.Message) {
	args := strings.TrimSpace(msg.CommandArguments())
	if args == "" {
		b.reply(msg, "Please specify how many audits you want to buy.\nExample: /buy 5")
		return
	}
	quantity, err := strconv.Atoi(args)
	if err != nil || quantity <= 0 {
		b.reply(msg, "Please provide a positive whole number of audits to buy.\nExample: /buy 5")
		return
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("Pay", payURL),
			tgbotapi.NewInlineKeyboardButtonData("Confirm payment", fmt.Sprintf("%s%d", paymentCallbackPrefix, quantity)),
		),
	)
	out := tgbotapi.NewMessage(msg.Chat.ID, fmt.Sprintf("You are about to buy %d audit(s).\nChoose an action below:", quantity))
	out.ReplyMarkup = keyboard
	if _, err := b.api.Send(out); err != nil {
		b.logger.Error("send buy keyboard", "telegram_id", msg.From.ID, "error", err)
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if !strings.HasPrefix(cb.Data, paymentCallbackPrefix) {
		return
	}
	quantity, err := strconv.Atoi(strings.TrimPrefix(cb.Data, paymentCallbackPrefix))
	if err != nil {
		b.answerCallback(cb.ID, "Invalid payment data.")
		return
	}

	balance, err := b.accounts.ConfirmPurchase(ctx, cb.From.ID, quantity)
	switch {
	case errors.Is(err, service.ErrInvalidQuantity):
		b.answerCallback(cb.ID, "Invalid payment data.")
	case errors.Is(err, repository.ErrUserNotFound):
		b.answerCallback(cb.ID, "User not found.")
	case err != nil:
		b.logger.ErrorContext(ctx, "confirm purchase", "telegram_id", cb.From.ID, "error", err)
		b.answerCallback(cb.ID, genericErrorText)
	default:
		b.answerCallback(cb.ID, "Payment confirmed! Your audits have been credited.")
		text := fmt.Sprintf("You have been credited %d audit(s). You now have %d available.", quantity, balance)
		if _, err := b.api.Send(tgbotapi.NewMessage(cb.From.ID, text)); err != nil {
			b.logger.Error("send purchase confirmation", "telegram_id", cb.From.ID, "error", err)
		}
	}
}

func (b *Bot) handleStatus(ctx context.Context, msg *tgbotapi.Message) {
	user, err := b.accounts.Register(ctx, msg.From.ID, profileOf(msg.From))
	if err != nil {
		b.logger.ErrorContext(ctx, "load account status", "telegram_id", msg.From.ID, "error", err)
		b.reply(msg, genericErrorText)
		return
	}
	b.reply(msg, fmt.Sprintf(
		"Account status:\nAvailable audits: %d\nUse /audit to audit a contract, /buy {amount} to purchase more, or /free to claim your free audits.",
		user.AvailableCredits,
	))
}

func (b *Bot) handleAudit(ctx context.Context, msg *tgbotapi.Message) {
	user, err := b.accounts.Register(ctx, msg.From.ID, profileOf(msg.From))
	if err != nil {
		b.logger.ErrorContext(ctx, "register user", "telegram_id", msg.From.ID, "error", err)
		b.reply(msg, genericErrorText)
		return
	}

	sub, err := b.submissions.Submit(ctx, user, msg.Document.FileName, msg.Document.FileID)
	switch {
	case errors.Is(err, service.ErrInvalidExtension):
		b.reply(msg, "Please send a file with the .sol extension for the smart contract audit.")
	case errors.Is(err, service.ErrNoCredits):
		b.reply(msg, "You have no audits available. Use /buy {amount} to purchase more or /free to claim your free audits.")
	case err != nil:
		b.logger.ErrorContext(ctx, "submit audit request", "telegram_id", msg.From.ID, "error", err)
		b.reply(msg, genericErrorText)
	default:
		b.reply(msg, queuedReply(sub.QueuePosition))
	}
}

// queuedReply renders the accepted-submission message. A non-positive
// position means the queue length could not be read; the reply then omits
// the position instead of showing a bogus 0.
func queuedReply(position int64) string {
	if position <= 0 {
		return "Your file passed validation and has been queued for audit!\nPlease wait a moment."
	}
	return fmt.Sprintf(
		"Your file passed validation and has been queued for audit!\nYour position in the queue: %d\nPlease wait a moment.",
		position,
	)
}

func (b *Bot) reply(msg *tgbotapi.Message, text string) {
	out := tgbotapi.NewMessage(msg.Chat.ID, text)
	out.ReplyToMessageID = msg.MessageID
	if _, err := b.api.Send(out); err != nil {
		b.logger.Error("send reply", "chat_id", msg.Chat.ID, "error", err)
	}
}

func (b *Bot) answerCallback(id, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallbackWithAlert(id, text)); err != nil {
		b.logger.Error("answer callback", "callback_id", id, "error", err)
	}
}

const genericErrorText = "Something went wrong. Please try again later."

const aboutText = `About this bot:

/start - Start working with the bot.
/about - Show this help.
/audit - Audit a smart contract: send a .sol file with the command as its caption.
/free - Claim free audits (2 for new users).
/buy {amount} - Buy additional audits.
/status - Check how many audits you have available.

The bot accepts Solidity (.sol) smart contract files, validates them, generates a detailed HTML and PDF audit report, and sends it back to you. Requests are processed through a queue; you are told your position when you submit.`
