package telegram

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"bodygoal/internal/artifact"
	"bodygoal/internal/badge"
	"bodygoal/internal/config"
	"bodygoal/internal/engine"
	"bodygoal/internal/metrics"
	"bodygoal/internal/profileapi"
)

// Bot wraps the Telegram API and the generation engine.
type Bot struct {
	api          *tgbotapi.BotAPI
	engine       *engine.Engine
	coach        *engine.Coach
	profiles     profileapi.Source
	checkins     *CheckinRepository
	metricsStore *metrics.Store
	cfg          *config.Config
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(
	cfg *config.Config,
	eng *engine.Engine,
	coach *engine.Coach,
	profiles profileapi.Source,
	checkins *CheckinRepository,
	metricsStore *metrics.Store,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	log.Info().Str("account", api.Self.UserName).Msg("telegram bot authorized")

	wh, _ := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	resp, err := api.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	log.Info().Str("response", resp.Description).Msg("webhook set")

	return &Bot{
		api:          api,
		engine:       eng,
		coach:        coach,
		profiles:     profiles,
		checkins:     checkins,
		metricsStore: metricsStore,
		cfg:          cfg,
	}, nil
}

// RegisterHandlers registers the webhook handler with the default HTTP mux.
func (b *Bot) RegisterHandlers() {
	http.HandleFunc("/webhook", b.handleWebhook)
	http.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		log.Error().Err(err).Msg("error parsing update")
		return
	}

	if update.Message == nil {
		return
	}

	isAllowed := false
	for _, id := range b.cfg.TelegramAllowedUserIDs {
		if update.Message.From.ID == id {
			isAllowed = true
			break
		}
	}

	if !isAllowed {
		log.Warn().
			Int64("user_id", update.Message.From.ID).
			Str("username", update.Message.From.UserName).
			Msg("unauthorized access attempt")
		return
	}

	go b.processMessage(update.Message)
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	text := strings.TrimSpace(msg.Text)
	cmd, arg, _ := strings.Cut(text, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/start", "/help":
		b.reply(msg.Chat.ID, helpText)
	case "/plan":
		b.handlePlanRequest(msg)
	case "/suggest":
		b.handleSuggestRequest(msg, arg)
	case "/coach":
		b.handleCoachRequest(msg, arg)
	case "/weight":
		b.handleWeightRequest(msg, arg)
	case "/metrics":
		b.handleMetricsRequest(msg)
	default:
		b.reply(msg.Chat.ID, "🤔 Unknown command. Try /help.")
	}
}

const helpText = `🎯 *BodyGoal*

/plan - generate or show your daily meal & workout plan
/suggest [meals|workouts|progress|overview] - quick tips
/coach <question> - ask the coach anything
/weight <kg> - log today's weight`

func (b *Bot) handlePlanRequest(msg *tgbotapi.Message) {
	sentMsg, ok := b.replyStatus(msg.Chat.ID, "🧑‍🍳 *Thinking...* \n(Generating your meal & workout plan)")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	userID := strconv.FormatInt(msg.From.ID, 10)
	prof, err := b.profiles.FetchProfile(ctx, userID)
	if err != nil {
		b.edit(msg.Chat.ID, sentMsg.MessageID, "❌ *Could not load your profile.* Finish onboarding first.")
		return
	}
	snap, err := b.profiles.FetchSnapshot(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("snapshot fetch failed, generating without it")
	}

	res, err := b.engine.Obtain(ctx, userID, artifact.TypeFullPlan, prof, snap)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("error obtaining plan")
		b.edit(msg.Chat.ID, sentMsg.MessageID, "❌ *Something went wrong.* Please try again later.")
		return
	}

	if res.Status == engine.StatusUnavailable {
		b.edit(msg.Chat.ID, sentMsg.MessageID, "😔 *The plan generator is unavailable right now.* Please try again in a few minutes.")
		return
	}

	plan, err := res.Artifact.FullPlan()
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("stored plan failed to decode")
		b.edit(msg.Chat.ID, sentMsg.MessageID, "❌ *Something went wrong.* Please try again later.")
		return
	}

	b.edit(msg.Chat.ID, sentMsg.MessageID, formatPlanMarkdown(plan, res.Status == engine.StatusCached, res.Artifact.GeneratedAt))
}

func (b *Bot) handleSuggestRequest(msg *tgbotapi.Message, arg string) {
	sentMsg, ok := b.replyStatus(msg.Chat.ID, "💡 *Thinking...*")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	userID := strconv.FormatInt(msg.From.ID, 10)
	prof, err := b.profiles.FetchProfile(ctx, userID)
	if err != nil {
		b.edit(msg.Chat.ID, sentMsg.MessageID, "❌ *Could not load your profile.* Finish onboarding first.")
		return
	}
	snap, err := b.profiles.FetchSnapshot(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("snapshot fetch failed, generating without it")
	}

	var sb strings.Builder
	if arg == "" {
		results, err := b.engine.SuggestAll(ctx, userID, prof, snap)
		if err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("error obtaining suggestions")
			b.edit(msg.Chat.ID, sentMsg.MessageID, "❌ *Something went wrong.* Please try again later.")
			return
		}
		for _, typ := range artifact.SuggestionTypes {
			appendSuggestions(&sb, typ, results[typ])
		}
	} else {
		typ, ok := suggestionTypeFromArg(arg)
		if !ok {
			b.edit(msg.Chat.ID, sentMsg.MessageID, "🤔 Unknown category. Use meals, workouts, progress or overview.")
			return
		}
		res, err := b.engine.Obtain(ctx, userID, typ, prof, snap)
		if err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("error obtaining suggestions")
			b.edit(msg.Chat.ID, sentMsg.MessageID, "❌ *Something went wrong.* Please try again later.")
			return
		}
		appendSuggestions(&sb, typ, res)
	}

	b.edit(msg.Chat.ID, sentMsg.MessageID, sb.String())
}

func suggestionTypeFromArg(arg string) (artifact.Type, bool) {
	switch strings.ToLower(arg) {
	case "meals":
		return artifact.TypeSuggestionMeals, true
	case "workouts":
		return artifact.TypeSuggestionWorkouts, true
	case "progress":
		return artifact.TypeSuggestionProgress, true
	case "overview":
		return artifact.TypeSuggestionOverview, true
	}
	return "", false
}

func (b *Bot) handleCoachRequest(msg *tgbotapi.Message, question string) {
	if question == "" {
		b.reply(msg.Chat.ID, "💬 Ask me something, e.g. `/coach what should I eat after a workout?`")
		return
	}

	sentMsg, ok := b.replyStatus(msg.Chat.ID, "🧑‍🏫 *Thinking...*")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	userID := strconv.FormatInt(msg.From.ID, 10)
	prof, err := b.profiles.FetchProfile(ctx, userID)
	if err != nil {
		b.edit(msg.Chat.ID, sentMsg.MessageID, "❌ *Could not load your profile.* Finish onboarding first.")
		return
	}

	answer, err := b.coach.Ask(ctx, prof, question)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("coach request failed")
		b.edit(msg.Chat.ID, sentMsg.MessageID, "😔 *The coach is unavailable right now.* Please try again later.")
		return
	}

	b.edit(msg.Chat.ID, sentMsg.MessageID, answer)
}

func (b *Bot) handleWeightRequest(msg *tgbotapi.Message, arg string) {
	weight, err := strconv.ParseFloat(arg, 64)
	if err != nil || weight <= 0 {
		b.reply(msg.Chat.ID, "⚖️ Usage: `/weight 79.5`")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID := strconv.FormatInt(msg.From.ID, 10)
	prev, err := b.checkins.Latest(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("failed to read previous check-in")
		b.reply(msg.Chat.ID, "❌ *Something went wrong.* Please try again later.")
		return
	}

	if err := b.checkins.Record(ctx, userID, weight, time.Now()); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("failed to record check-in")
		b.reply(msg.Chat.ID, "❌ *Something went wrong.* Please try again later.")
		return
	}

	if prev == nil {
		b.reply(msg.Chat.ID, fmt.Sprintf("✅ *%.1f kg logged.* First check-in, keep them coming!", weight))
		return
	}
	b.reply(msg.Chat.ID, fmt.Sprintf("✅ *%.1f kg logged.*\n%s", weight, badge.Evaluate(weight, prev.WeightKG)))
}

func (b *Bot) handleMetricsRequest(msg *tgbotapi.Message) {
	if msg.From.ID != b.cfg.AdminTelegramID {
		b.reply(msg.Chat.ID, "⛔ *Access Denied*: Admin only.")
		return
	}

	usage, err := b.metricsStore.GetDailyUsage(7)
	if err != nil {
		b.reply(msg.Chat.ID, "❌ Error fetching metrics.")
		return
	}

	health := metrics.GetSysHealth(b.cfg.DatabasePath)

	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent Generation Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• *%s*: %d tokens (%d generations)\n", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalGenerated))
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Database: %s\n", health.DBSize))

	b.reply(msg.Chat.ID, sb.String())
}

func formatPlanMarkdown(plan artifact.FullPlanPayload, cached bool, generatedAt time.Time) string {
	var sb strings.Builder
	sb.WriteString("🎯 *Your Daily Plan*\n")
	if cached {
		sb.WriteString(fmt.Sprintf("_(generated %s)_\n", generatedAt.Format("2006-01-02 15:04")))
	}

	sb.WriteString("\n🍽 *Meals*\n")
	for _, m := range plan.MealPlan {
		sb.WriteString(fmt.Sprintf("• *%s* (%d kcal)\n", m.Name, m.Calories))
		if m.Description != "" {
			sb.WriteString(fmt.Sprintf("_%s_\n", m.Description))
		}
	}

	sb.WriteString("\n🏋️ *Workouts*\n")
	for _, w := range plan.WorkoutPlan {
		sb.WriteString(fmt.Sprintf("• *%s* (%d min)\n", w.Name, w.Duration))
		if w.Description != "" {
			sb.WriteString(fmt.Sprintf("_%s_\n", w.Description))
		}
	}

	return sb.String()
}

func appendSuggestions(sb *strings.Builder, typ artifact.Type, res engine.Result) {
	titles := map[artifact.Type]string{
		artifact.TypeSuggestionMeals:    "🍽 *Meals & Nutrition*",
		artifact.TypeSuggestionWorkouts: "🏋️ *Workouts*",
		artifact.TypeSuggestionProgress: "📈 *Progress*",
		artifact.TypeSuggestionOverview: "🌟 *Motivation*",
	}
	sb.WriteString(titles[typ])
	sb.WriteString("\n")

	if res.Artifact == nil {
		sb.WriteString("_Unavailable right now_\n\n")
		return
	}
	payload, err := res.Artifact.Suggestions()
	if err != nil {
		sb.WriteString("_Unavailable right now_\n\n")
		return
	}
	for _, s := range payload.Suggestions {
		sb.WriteString(fmt.Sprintf("• %s\n", s))
	}
	if res.Status == engine.StatusFallback {
		sb.WriteString("_(general tips, personalized ones are temporarily unavailable)_\n")
	}
	sb.WriteString("\n")
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	b.api.Send(msg)
}

func (b *Bot) replyStatus(chatID int64, text string) (tgbotapi.Message, bool) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	sent, err := b.api.Send(msg)
	if err != nil {
		log.Error().Err(err).Msg("failed to send initial reply")
		return tgbotapi.Message{}, false
	}
	return sent, true
}

func (b *Bot) edit(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = "Markdown"
	b.api.Send(edit)
}
