package telegram

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"school-meal/internal/app"
	"school-meal/internal/config"
	"school-meal/internal/meal"
	"school-meal/internal/metrics"
	"school-meal/internal/neis"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gorilla/mux"
)

const usageText = "📅 날짜를 YYYY-MM-DD 형식으로 보내거나 아래 명령을 사용하세요.\n" +
	"/today - 오늘 급식\n" +
	"/lunch YYYY-MM-DD - 해당 날짜 급식"

// Sender is the part of the Telegram API the bot talks to.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

var timeNow = time.Now

// Bot answers meal queries over a Telegram webhook.
type Bot struct {
	api          *tgbotapi.BotAPI
	sender       Sender
	cfg          *config.Config
	client       neis.Client
	recorder     app.Recorder
	metricsStore *metrics.Store
}

// NewBot initializes the Telegram Bot and sets the Webhook. metricsStore may be nil.
func NewBot(cfg *config.Config, client neis.Client, metricsStore *metrics.Store) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	log.Printf("Authorized on account %s", api.Self.UserName)

	wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook url %s: %w", cfg.TelegramWebhookURL, err)
	}
	resp, err := api.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	log.Printf("Webhook set response: %s", resp.Description)

	b := newBot(api, cfg, client, metricsStore)
	b.api = api
	return b, nil
}

func newBot(sender Sender, cfg *config.Config, client neis.Client, metricsStore *metrics.Store) *Bot {
	b := &Bot{
		sender:       sender,
		cfg:          cfg,
		client:       client,
		metricsStore: metricsStore,
	}
	if metricsStore != nil {
		b.recorder = metricsStore
	}
	return b
}

// RegisterHandlers mounts the webhook handler on the router.
func (b *Bot) RegisterHandlers(r *mux.Router) {
	r.HandleFunc("/webhook", b.handleWebhook).Methods(http.MethodPost)
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		log.Printf("Error parsing update: %v", err)
		return
	}

	if update.Message == nil {
		return
	}

	go b.processMessage(update.Message)
}

// allowed reports whether the sender may use the bot. An empty allowlist
// lets everyone in.
func (b *Bot) allowed(from *tgbotapi.User) bool {
	if len(b.cfg.TelegramAllowedUserIDs) == 0 {
		return true
	}
	if from == nil {
		return false
	}
	for _, id := range b.cfg.TelegramAllowedUserIDs {
		if from.ID == id {
			return true
		}
	}
	return false
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	if !b.allowed(msg.From) {
		if msg.From != nil {
			log.Printf("⚠️ Unauthorized access attempt from UserID: %d (@%s)", msg.From.ID, msg.From.UserName)
		}
		return
	}

	text := strings.TrimSpace(msg.Text)

	if text == "/metrics" {
		b.handleMetricsCommand(msg.Chat.ID)
		return
	}

	date, ok := parseQuery(text, meal.Today(timeNow(), b.cfg.Location))
	if !ok {
		b.sender.Send(tgbotapi.NewMessage(msg.Chat.ID, usageText))
		return
	}

	b.runQuery(context.Background(), msg.Chat.ID, date)
}

// runQuery drives a dedicated controller whose view is a single chat
// message: sent on Loading and edited for the final state.
func (b *Bot) runQuery(ctx context.Context, chatID int64, date string) meal.State {
	view := &messageView{sender: b.sender, chatID: chatID}
	controller := app.NewController(b.cfg, b.client, view, b.recorder)
	defer controller.Close()

	return controller.Submit(ctx, date)
}

// parseQuery maps a chat message to a query date.
func parseQuery(text, today string) (string, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", false
	}

	cmd := fields[0]
	// "/lunch@SomeBot" in group chats
	if i := strings.Index(cmd, "@"); i > 0 && strings.HasPrefix(cmd, "/") {
		cmd = cmd[:i]
	}

	switch cmd {
	case "/today":
		return today, true
	case "/lunch":
		if len(fields) > 1 {
			return fields[1], true
		}
		return today, true
	}

	if len(fields) == 1 && !strings.HasPrefix(cmd, "/") {
		if _, err := meal.ParseDate(cmd); err == nil {
			return cmd, true
		}
	}
	return "", false
}

// messageView renders display states into one Telegram message.
type messageView struct {
	sender    Sender
	chatID    int64
	messageID int
}

func (v *messageView) Render(s meal.State) {
	text := meal.RenderText(s)

	if v.messageID == 0 {
		sent, err := v.sender.Send(tgbotapi.NewMessage(v.chatID, text))
		if err != nil {
			log.Printf("Failed to send reply: %v", err)
			return
		}
		v.messageID = sent.MessageID
		return
	}

	if _, err := v.sender.Send(tgbotapi.NewEditMessageText(v.chatID, v.messageID, text)); err != nil {
		log.Printf("Failed to edit reply: %v", err)
	}
}

func (b *Bot) handleMetricsCommand(chatID int64) {
	if b.metricsStore == nil {
		b.sender.Send(tgbotapi.NewMessage(chatID, "📊 진단 기록이 비활성화되어 있습니다. (METRICS_DB_PATH)"))
		return
	}

	usage, err := b.metricsStore.GetDailyUsage(7)
	if err != nil {
		log.Printf("Error fetching metrics: %v", err)
		b.sender.Send(tgbotapi.NewMessage(chatID, "❌ Error fetching metrics."))
		return
	}

	health := metrics.GetSysHealth(b.cfg.MetricsDBPath)
	b.sender.Send(tgbotapi.NewMessage(chatID, FormatReport(usage, health)))
}

// FormatReport renders the diagnostics summary and process health as text.
func FormatReport(usage []metrics.DailyUsage, health metrics.SysHealth) string {
	var sb strings.Builder
	sb.WriteString("📊 Usage & Health Report\n\n")

	sb.WriteString("🗓 Recent Fetches\n")
	if len(usage) == 0 {
		sb.WriteString("No data yet\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• %s: %d fetches (%d meal, %d no-meal, %d errors, avg %dms)\n",
			d.Date, d.Total, d.Meals, d.NoMeals, d.Errors, d.AvgLatencyMS))
	}

	sb.WriteString("\n🧠 System Health\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys) / %dMB (RSS)\n", health.AllocMB, health.SysMB, health.RSSMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Disk Data: %s\n", health.DataDiskSize))
	return sb.String()
}
