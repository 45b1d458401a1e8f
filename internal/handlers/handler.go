package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	"tryon-studio/internal/form"
	"tryon-studio/internal/i18n"
	"tryon-studio/internal/mediagroup"
	"tryon-studio/internal/telegram"
	"tryon-studio/internal/tryon"
)

const (
	callbackSlotPrefix = "slot:"
	callbackSubmit     = "submit"
	callbackNoop       = "noop"
)

// Messenger is the part of the Telegram client the bot uses.
type Messenger interface {
	SendText(chatID int64, text string) error
	SendTextWithKeyboard(chatID int64, text string, kb telegram.Keyboard) (int, error)
	EditTextWithKeyboard(chatID int64, messageID int, text string, kb telegram.Keyboard) error
	AnswerCallback(callbackID string, text string)
	SendTyping(chatID int64)
	SendResult(chatID int64, locator string, caption string) error
	DownloadFile(ctx context.Context, fileID string) ([]byte, string, error)
}

type Options struct {
	Telegram Messenger
	Store    *form.Store
	Logger   *slog.Logger
	// ResultBaseURL resolves relative result locators before they are sent
	// to Telegram.
	ResultBaseURL string
}

type Handler struct {
	tg            Messenger
	store         *form.Store
	chats         *chatStore
	logger        *slog.Logger
	aggregator    *mediagroup.Aggregator
	resultBaseURL string

	inflight sync.WaitGroup
}

func New(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	store := opts.Store
	if store == nil {
		store = form.NewStore(form.StoreOptions{Logger: logger})
	}

	return &Handler{
		tg:            opts.Telegram,
		store:         store,
		chats:         newChatStore(),
		logger:        logger,
		resultBaseURL: strings.TrimRight(opts.ResultBaseURL, "/"),
	}
}

func (h *Handler) SetMediaGroupAggregator(ag *mediagroup.Aggregator) {
	h.aggregator = ag
}

// Sweep forgets chat UI state idle for longer than ttl.
func (h *Handler) Sweep(now time.Time, ttl time.Duration) int {
	return h.chats.Sweep(now.Add(-ttl))
}

func (h *Handler) HandleUpdate(ctx context.Context, update telegram.Update) error {
	if update.CallbackQuery != nil {
		return h.handleCallback(update.CallbackQuery)
	}
	if update.Message == nil {
		return nil
	}

	msg := update.Message
	chatID := msg.Chat.ID
	tag := h.language(chatID, msg.From)

	if msg.IsCommand() {
		return h.handleCommand(ctx, chatID, tag, msg)
	}

	if len(msg.Photo) > 0 {
		return h.handlePhoto(ctx, chatID, tag, msg)
	}

	if msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/") {
		return h.handleDocument(ctx, chatID, tag, msg)
	}

	if msg.Text != "" {
		return h.handleText(chatID, tag, msg.Text)
	}

	return nil
}

// HandleMediaGroup stages an album: the first photo is the garment, the
// second is the person and the caption becomes the description.
func (h *Handler) HandleMediaGroup(ctx context.Context, group mediagroup.Group) {
	tag := h.language(group.ChatID, &tgbotapi.User{ID: group.UserID, LanguageCode: group.LanguageCode})
	if err := h.processAlbum(ctx, group, tag); err != nil {
		h.logger.Error("media group processing failed", "chat_id", group.ChatID, "err", err)
	}
}

func (h *Handler) handleCommand(ctx context.Context, chatID int64, tag language.Tag, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		if err := h.tg.SendText(chatID, i18n.Text(tag, "bot.start")); err != nil {
			return err
		}
		return h.sendPanel(chatID, tag)
	case "help":
		return h.tg.SendText(chatID, i18n.Text(tag, "bot.help"))
	case "garment":
		return h.requestSlot(chatID, tag, form.FieldGarment)
	case "photo":
		return h.requestSlot(chatID, tag, form.FieldPhoto)
	case "submit":
		return h.submit(chatID, tag)
	case "status":
		return h.sendPanel(chatID, tag)
	default:
		return h.tg.SendText(chatID, i18n.Text(tag, "bot.unknown"))
	}
}

func (h *Handler) handleText(chatID int64, tag language.Tag, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	view := h.controller(chatID).SetDescription(text)
	return h.refreshPanel(chatID, tag, view)
}

func (h *Handler) handlePhoto(ctx context.Context, chatID int64, tag language.Tag, msg *tgbotapi.Message) error {
	photo := msg.Photo[len(msg.Photo)-1]

	if msg.MediaGroupID != "" && h.aggregator != nil {
		item := mediagroup.Item{
			ChatID:       chatID,
			MediaGroupID: msg.MediaGroupID,
			MessageID:    msg.MessageID,
			Caption:      msg.Caption,
			FileID:       photo.FileID,
		}
		if msg.From != nil {
			item.UserID = msg.From.ID
			item.LanguageCode = msg.From.LanguageCode
		}
		h.aggregator.Add(item)
		return nil
	}

	return h.stageSingle(ctx, chatID, tag, photo.FileID, "", msg.Caption, msg.MessageID)
}

func (h *Handler) handleDocument(ctx context.Context, chatID int64, tag language.Tag, msg *tgbotapi.Message) error {
	return h.stageSingle(ctx, chatID, tag, msg.Document.FileID, msg.Document.FileName, msg.Caption, msg.MessageID)
}

func (h *Handler) stageSingle(ctx context.Context, chatID int64, tag language.Tag, fileID, name, caption string, messageID int) error {
	ctrl := h.controller(chatID)
	st := h.chats.Get(chatID)

	field, ok := nextSlot(st.Target, caption, ctrl.View())
	if !ok {
		return h.tg.SendText(chatID, i18n.Text(tag, "bot.pick_slot"))
	}

	h.tg.SendTyping(chatID)

	img, err := h.download(ctx, fileID, name, field, messageID)
	if err != nil {
		h.logger.Error("photo download failed", "chat_id", chatID, "err", err)
		if errors.Is(err, tryon.ErrUnsupportedMedia) {
			return h.tg.SendText(chatID, i18n.Text(tag, "notice.not_image"))
		}
		return h.tg.SendText(chatID, i18n.Text(tag, "bot.download_failed"))
	}

	h.stage(ctrl, field, img)
	h.chats.Update(chatID, func(st *chatState) { st.Target = "" })

	view := ctrl.View()
	if caption = strings.TrimSpace(caption); caption != "" {
		if _, hint := photoTarget(caption); !hint {
			view = ctrl.SetDescription(caption)
		}
	}

	if err := h.tg.SendText(chatID, i18n.Text(tag, "bot.saved."+string(field))); err != nil {
		return err
	}
	return h.refreshPanel(chatID, tag, view)
}

func (h *Handler) processAlbum(ctx context.Context, group mediagroup.Group, tag language.Tag) error {
	chatID := group.ChatID
	fileIDs := group.FileIDs
	if len(fileIDs) > 2 {
		fileIDs = fileIDs[:2]
	}
	if len(fileIDs) == 0 {
		return nil
	}

	h.tg.SendTyping(chatID)

	fields := []form.Field{form.FieldGarment, form.FieldPhoto}
	images := make([]tryon.Image, len(fileIDs))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, fileID := range fileIDs {
		i, fileID := i, fileID
		eg.Go(func() error {
			img, err := h.download(egCtx, fileID, "", fields[i], 0)
			if err != nil {
				return err
			}
			images[i] = img
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		h.logger.Error("album download failed", "chat_id", chatID, "err", err)
		return h.tg.SendText(chatID, i18n.Text(tag, "bot.download_failed"))
	}

	ctrl := h.controller(chatID)
	for i, img := range images {
		h.stage(ctrl, fields[i], img)
	}
	h.chats.Update(chatID, func(st *chatState) { st.Target = "" })

	view := ctrl.View()
	if caption := strings.TrimSpace(group.Caption); caption != "" {
		view = ctrl.SetDescription(caption)
	}
	return h.refreshPanel(chatID, tag, view)
}

// submit starts the chat's submission in the background and returns once
// the panel shows it in flight, so a slow backend never holds the update
// worker. Wait blocks until background submissions are done.
func (h *Handler) submit(chatID int64, tag language.Tag) error {
	ctrl := h.controller(chatID)
	if ctrl.Loading() {
		return h.tg.SendText(chatID, i18n.Text(tag, "notice.submit_disabled"))
	}

	h.tg.SendTyping(chatID)
	_ = h.tg.SendText(chatID, i18n.Text(tag, "bot.submitting"))

	views, cancel := ctrl.Subscribe()
	defer cancel()

	// returned is closed when Submit comes back; shown is closed once the
	// in-flight panel is on screen, so the final panel always lands last.
	returned := make(chan struct{})
	shown := make(chan struct{})

	h.inflight.Add(1)
	go func() {
		defer h.inflight.Done()

		view, err := ctrl.Submit(context.Background())
		close(returned)
		<-shown

		if err := h.finishSubmit(chatID, tag, view, err); err != nil {
			h.logger.Error("submit reply failed", "chat_id", chatID, "err", err)
		}
	}()
	defer close(shown)

	for {
		select {
		case view := <-views:
			if !view.Loading {
				continue
			}
			return h.refreshPanel(chatID, tag, view)
		case <-returned:
			return nil
		}
	}
}

func (h *Handler) finishSubmit(chatID int64, tag language.Tag, view form.View, err error) error {
	switch {
	case errors.Is(err, form.ErrSubmitDisabled):
		return h.tg.SendText(chatID, i18n.Text(tag, "notice.submit_disabled"))
	case err != nil:
		if len(view.Notices) > 0 {
			if sendErr := h.tg.SendText(chatID, "❌ "+strings.Join(i18n.NoticeTexts(tag, view.Notices), "\n❌ ")); sendErr != nil {
				return sendErr
			}
		}
		return h.refreshPanel(chatID, tag, view)
	}

	locator := h.resolveLocator(view.Result)
	if err := h.tg.SendResult(chatID, locator, i18n.Text(tag, "bot.result")); err != nil {
		h.logger.Warn("send result photo failed", "chat_id", chatID, "err", err)
		if strings.HasPrefix(locator, "data:") {
			return h.tg.SendText(chatID, i18n.Text(tag, "notice.unexpected"))
		}
		if err := h.tg.SendText(chatID, i18n.Text(tag, "bot.result")+"\n"+locator); err != nil {
			return err
		}
	}
	return h.refreshPanel(chatID, tag, view)
}

// Wait blocks until every submission started by the handler has finished
// and its reply has been sent.
func (h *Handler) Wait() {
	h.inflight.Wait()
}

func (h *Handler) handleCallback(q *tgbotapi.CallbackQuery) error {
	if q == nil || q.Message == nil {
		return nil
	}

	chatID := q.Message.Chat.ID
	tag := h.language(chatID, q.From)
	h.chats.Update(chatID, func(st *chatState) { st.PanelMessageID = q.Message.MessageID })

	data := strings.TrimSpace(q.Data)
	switch {
	case strings.HasPrefix(data, callbackSlotPrefix):
		h.tg.AnswerCallback(q.ID, "")
		field := form.Field(strings.TrimPrefix(data, callbackSlotPrefix))
		if field != form.FieldGarment && field != form.FieldPhoto {
			return nil
		}
		return h.requestSlot(chatID, tag, field)
	case data == callbackSubmit:
		if h.controller(chatID).Loading() {
			h.tg.AnswerCallback(q.ID, i18n.Text(tag, "notice.submit_disabled"))
			return nil
		}
		h.tg.AnswerCallback(q.ID, "")
		return h.submit(chatID, tag)
	default:
		h.tg.AnswerCallback(q.ID, "")
		return nil
	}
}

func (h *Handler) requestSlot(chatID int64, tag language.Tag, field form.Field) error {
	h.chats.Update(chatID, func(st *chatState) { st.Target = field })
	return h.tg.SendText(chatID, i18n.Text(tag, "bot.next."+string(field)))
}

func (h *Handler) sendPanel(chatID int64, tag language.Tag) error {
	h.chats.Update(chatID, func(st *chatState) { st.PanelMessageID = 0 })
	return h.refreshPanel(chatID, tag, h.controller(chatID).View())
}

// refreshPanel edits the chat's status panel in place, or sends a new one
// when there is none or it can no longer be edited.
func (h *Handler) refreshPanel(chatID int64, tag language.Tag, view form.View) error {
	text := panelText(tag, view)
	kb := panelKeyboard(tag, view)

	if msgID := h.chats.Get(chatID).PanelMessageID; msgID != 0 {
		err := h.tg.EditTextWithKeyboard(chatID, msgID, text, kb)
		if err == nil {
			return nil
		}
		h.logger.Debug("panel edit failed, sending new", "chat_id", chatID, "err", err)
	}

	msgID, err := h.tg.SendTextWithKeyboard(chatID, text, kb)
	if err != nil {
		return err
	}
	h.chats.Update(chatID, func(st *chatState) { st.PanelMessageID = msgID })
	return nil
}

func panelText(tag language.Tag, view form.View) string {
	none := i18n.Text(tag, "bot.panel.none")
	slot := func(has bool, name string) string {
		if !has {
			return none
		}
		if name == "" {
			return "✅"
		}
		return "✅ " + name
	}

	description := view.Description
	if strings.TrimSpace(description) == "" {
		description = none
	}

	lines := []string{
		i18n.Text(tag, "bot.panel.title"),
		"",
		i18n.Text(tag, "bot.panel.garment", slot(view.HasGarment, view.GarmentName)),
		i18n.Text(tag, "bot.panel.photo", slot(view.HasPhoto, view.PhotoName)),
		i18n.Text(tag, "bot.panel.description", description),
	}
	if view.Loading {
		lines = append(lines, "", i18n.Text(tag, "bot.panel.loading"))
	}
	return strings.Join(lines, "\n")
}

func panelKeyboard(tag language.Tag, view form.View) telegram.Keyboard {
	submit := telegram.Button{Text: i18n.Text(tag, "page.submit"), Data: callbackSubmit}
	if !view.SubmitEnabled {
		submit = telegram.Button{Text: i18n.Text(tag, "page.submitting"), Data: callbackNoop}
	}
	return telegram.Keyboard{
		{
			{Text: i18n.Text(tag, "bot.button.garment"), Data: callbackSlotPrefix + string(form.FieldGarment)},
			{Text: i18n.Text(tag, "bot.button.photo"), Data: callbackSlotPrefix + string(form.FieldPhoto)},
		},
		{submit},
	}
}

func (h *Handler) download(ctx context.Context, fileID, name string, field form.Field, messageID int) (tryon.Image, error) {
	data, mimeType, err := h.tg.DownloadFile(ctx, fileID)
	if err != nil {
		return tryon.Image{}, err
	}

	img, err := tryon.NewImage(name, data, mimeType)
	if err != nil {
		return tryon.Image{}, err
	}
	if img.Name == "" {
		img.Name = defaultName(field, messageID, img.MIMEType)
	}
	return img, nil
}

func (h *Handler) stage(ctrl *form.Controller, field form.Field, img tryon.Image) {
	if field == form.FieldGarment {
		ctrl.SelectGarment(img)
		return
	}
	ctrl.SelectPhoto(img)
}

func (h *Handler) controller(chatID int64) *form.Controller {
	return h.store.Get(fmt.Sprintf("tg:%d", chatID))
}

// language remembers the last language code seen in a chat so album
// flushes and callbacks answer in the same language.
func (h *Handler) language(chatID int64, from *tgbotapi.User) language.Tag {
	code := ""
	if from != nil {
		code = from.LanguageCode
	}
	st := h.chats.Update(chatID, func(st *chatState) {
		if code != "" {
			st.LanguageCode = code
		}
	})
	return i18n.Match(st.LanguageCode)
}

func (h *Handler) resolveLocator(locator string) string {
	if h.resultBaseURL == "" ||
		strings.HasPrefix(locator, "data:") ||
		strings.HasPrefix(locator, "http://") ||
		strings.HasPrefix(locator, "https://") {
		return locator
	}
	if !strings.HasPrefix(locator, "/") {
		locator = "/" + locator
	}
	return h.resultBaseURL + locator
}

func defaultName(field form.Field, messageID int, mimeType string) string {
	ext := ".jpg"
	if mimeType != "image/jpeg" {
		if exts, _ := mime.ExtensionsByType(mimeType); len(exts) > 0 {
			ext = exts[0]
		}
	}
	if messageID > 0 {
		return fmt.Sprintf("%s_%d%s", field, messageID, ext)
	}
	return string(field) + ext
}
