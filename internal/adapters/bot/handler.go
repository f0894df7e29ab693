package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tsi-schedule-bot/internal/adapters/telegram"
	"tsi-schedule-bot/internal/domain"
	"tsi-schedule-bot/internal/infra/metrics"
	"tsi-schedule-bot/internal/usecase/schedule"
	"tsi-schedule-bot/internal/usecase/timeframe"
)

const (
	intentSelectGroup   = "SelectGroup"
	intentCheckSchedule = "CheckSchedule"
)

const startText = `Hi there! I'm your personal university assistant. I'm here to help you stay on top of your academic life.

To get started, select your group number by using /selectgroup command or just by asking me to change it and I'll keep you updated on your schedule and important deadlines. If you ever need to change your group or check your schedule, just let me know.

Don't hesitate to ask me anything related to your studies. I'm here to help you succeed! 🎓🤖`

// groupCatalog — нужная обработчику часть справочника.
type groupCatalog interface {
	FindIDByName(cat domain.Category, name string) (string, bool)
}

// Handler обслуживает вебхук бота.
type Handler struct {
	bot        *tgbotapi.BotAPI
	log        zerolog.Logger
	classifier domain.IntentClassifier
	scheduleUC *schedule.Service
	students   domain.StudentRepo
	groups     domain.GroupDirectory
	catalog    groupCatalog

	mu           sync.Mutex
	pendingGroup map[int64]struct{}
}

// NewHandler создаёт обработчик.
func NewHandler(
	bot *tgbotapi.BotAPI,
	log zerolog.Logger,
	classifier domain.IntentClassifier,
	scheduleUC *schedule.Service,
	students domain.StudentRepo,
	groups domain.GroupDirectory,
	catalog groupCatalog,
) *Handler {
	return &Handler{
		bot:          bot,
		log:          log,
		classifier:   classifier,
		scheduleUC:   scheduleUC,
		students:     students,
		groups:       groups,
		catalog:      catalog,
		pendingGroup: make(map[int64]struct{}),
	}
}

// HandleUpdate обрабатывает входящий апдейт.
func (h *Handler) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.Message == nil {
		return
	}
	msg := upd.Message
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	if h.takePendingGroup(msg.Chat.ID) {
		h.handleGroupInput(ctx, msg.Chat.ID, text)
		return
	}

	switch {
	case strings.HasPrefix(text, "/start"):
		h.reply(msg.Chat.ID, startText, nil)
	case strings.HasPrefix(text, "/selectgroup"):
		h.startSelectGroup(ctx, msg.Chat.ID)
	default:
		h.handleFreeText(ctx, msg, text)
	}
}

// handleFreeText классифицирует свободный текст и диспетчеризует интент.
func (h *Handler) handleFreeText(ctx context.Context, msg *tgbotapi.Message, text string) {
	requestID := uuid.NewString()
	logger := h.log.With().Str("request_id", requestID).Int64("chat_id", msg.Chat.ID).Logger()

	result, err := h.classifier.DetectIntent(ctx, strconv.FormatInt(msg.Chat.ID, 10), text)
	if err != nil {
		logger.Error().Err(err).Msg("классификация интента не удалась")
		h.reply(msg.Chat.ID, "An error occurred. Please kindly send this to the developer.", nil)
		return
	}
	logger.Info().Str("intent", result.Intent).Msg("интент распознан")

	switch result.Intent {
	case intentSelectGroup:
		h.startSelectGroup(ctx, msg.Chat.ID)
	case intentCheckSchedule:
		h.handleCheckSchedule(ctx, logger, msg, text, result.Parameters)
	default:
		reply := tgbotapi.NewMessage(msg.Chat.ID, result.FulfillmentText)
		reply.ReplyMarkup = tgbotapi.NewRemoveKeyboard(false)
		h.send(reply)
	}
}

func (h *Handler) handleCheckSchedule(ctx context.Context, logger zerolog.Logger, msg *tgbotapi.Message, text string, params map[string]any) {
	report, err := h.scheduleUC.Check(ctx, msg.Chat.ID, text, params)
	if err != nil {
		var periodErr *timeframe.PeriodError
		var notFound *schedule.GroupNotFoundError
		var invalid *schedule.InvalidGroupError
		switch {
		case errors.As(err, &periodErr):
			metrics.IncScheduleError("period")
			h.reply(msg.Chat.ID, fmt.Sprintf("Unrecognised time period:\n\n%v", periodErr.Raw), nil)
		case errors.Is(err, schedule.ErrNoGroup):
			metrics.IncScheduleError("no_group")
			h.reply(msg.Chat.ID, "Please specify at least one group", nil)
		case errors.As(err, &notFound):
			metrics.IncScheduleError("group_not_found")
			h.reply(msg.Chat.ID, fmt.Sprintf("Couldn't find group %s", notFound.Group), nil)
			h.deleteMessage(msg.Chat.ID, msg.MessageID)
		case errors.As(err, &invalid):
			metrics.IncScheduleError("invalid_group")
			h.reply(msg.Chat.ID, "Invalid group number", nil)
		default:
			metrics.IncScheduleError("internal")
			logger.Error().Err(err).Msg("запрос расписания завершился ошибкой")
			h.reply(msg.Chat.ID, "An error occurred. Please kindly send this to the developer.", nil)
		}
		return
	}
	for _, chunk := range report.Chunks {
		h.reply(msg.Chat.ID, chunk, nil)
	}
}

// startSelectGroup начинает диалог выбора группы.
func (h *Handler) startSelectGroup(ctx context.Context, chatID int64) {
	current, err := h.students.Group(ctx, chatID)
	if err != nil {
		h.log.Error().Err(err).Int64("chat_id", chatID).Msg("не удалось прочитать группу студента")
		h.reply(chatID, "An error occurred. Please kindly send this to the developer.", nil)
		return
	}

	text := "Please enter your group number:"
	if current != "" {
		text = fmt.Sprintf("Your current group is %s.\nPlease enter your new group number:", current)
	}

	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton("Cancel")),
	)
	keyboard.OneTimeKeyboard = true

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	h.send(msg)

	h.mu.Lock()
	h.pendingGroup[chatID] = struct{}{}
	h.mu.Unlock()
}

// handleGroupInput принимает номер группы из диалога выбора.
func (h *Handler) handleGroupInput(ctx context.Context, chatID int64, text string) {
	group := strings.ToUpper(text)

	if group == "CANCEL" {
		msg := tgbotapi.NewMessage(chatID, "Canceled")
		msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(false)
		h.send(msg)
		return
	}

	if _, ok := h.catalog.FindIDByName(domain.CategoryGroups, group); !ok {
		h.suggestGroups(ctx, chatID, group)
		return
	}

	current, err := h.students.Group(ctx, chatID)
	if err != nil {
		h.log.Error().Err(err).Int64("chat_id", chatID).Msg("не удалось прочитать группу студента")
		h.reply(chatID, "An error occurred. Please kindly send this to the developer.", nil)
		return
	}
	if err := h.students.SetGroup(ctx, chatID, group); err != nil {
		h.log.Error().Err(err).Int64("chat_id", chatID).Msg("не удалось сохранить группу студента")
		h.reply(chatID, "An error occurred. Please kindly send this to the developer.", nil)
		return
	}

	text = fmt.Sprintf("Your group %s has been set successfully!", group)
	if current != "" {
		text = fmt.Sprintf("Your group %s has been updated successfully!", group)
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(false)
	h.send(msg)
}

// suggestGroups предлагает похожие группы, когда введённый номер не найден.
func (h *Handler) suggestGroups(ctx context.Context, chatID int64, group string) {
	options, err := h.groups.SearchGroups(ctx, group)
	if err != nil {
		h.log.Error().Err(err).Int64("chat_id", chatID).Msg("поиск групп не удался")
		h.reply(chatID, "An error occurred. Please kindly send this to the developer.", nil)
		return
	}
	if len(options) == 0 {
		h.reply(chatID, "Sorry, no groups were found that match your input. Please try again.", nil)
		h.startSelectGroup(ctx, chatID)
		return
	}

	rows := make([][]tgbotapi.KeyboardButton, 0, len(options)+1)
	for _, option := range options {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(option)))
	}
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton("Cancel")))
	keyboard := tgbotapi.NewReplyKeyboard(rows...)
	keyboard.OneTimeKeyboard = true

	msg := tgbotapi.NewMessage(chatID, "Sorry, the entered group number is not valid. Please select your group from the following options:")
	msg.ReplyMarkup = keyboard
	h.send(msg)

	h.mu.Lock()
	h.pendingGroup[chatID] = struct{}{}
	h.mu.Unlock()
}

// takePendingGroup снимает и возвращает признак ожидания номера группы.
func (h *Handler) takePendingGroup(chatID int64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.pendingGroup[chatID]; !ok {
		return false
	}
	delete(h.pendingGroup, chatID)
	return true
}

func (h *Handler) reply(chatID int64, text string, keyboard *tgbotapi.InlineKeyboardMarkup) {
	parts := telegram.SplitMessage(text, telegram.MessageLimit)
	for i, part := range parts {
		msg := tgbotapi.NewMessage(chatID, part)
		if i == 0 && keyboard != nil {
			msg.ReplyMarkup = keyboard
		}
		if !h.send(msg) {
			return
		}
	}
}

func (h *Handler) send(msg tgbotapi.MessageConfig) bool {
	start := time.Now()
	_, err := h.bot.Send(msg)
	metrics.ObserveNetworkRequest("telegram_bot", "send_message", strconv.FormatInt(msg.ChatID, 10), start, err)
	if err != nil {
		metrics.BotSendErrors.Inc()
		h.log.Error().Err(err).Msg("не удалось отправить сообщение")
		return false
	}
	return true
}

func (h *Handler) deleteMessage(chatID int64, messageID int) {
	start := time.Now()
	_, err := h.bot.Request(tgbotapi.NewDeleteMessage(chatID, messageID))
	metrics.ObserveNetworkRequest("telegram_bot", "delete_message", strconv.FormatInt(chatID, 10), start, err)
	if err != nil {
		h.log.Warn().Err(err).Msg("не удалось удалить сообщение")
	}
}
