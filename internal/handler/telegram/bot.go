package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"cf-bulk-manager/internal/domain"
	"cf-bulk-manager/internal/usecase"
	"cf-bulk-manager/pkg/storage"
)

const selectorPageSize = 8

// Bot implements handler.BotHandler for Telegram with button-based UI
type Bot struct {
	services     *usecase.Services
	settings     storage.SettingsStorage
	bot          *tgbotapi.BotAPI
	token        string
	allowedIDs   map[int64]bool
	stateManager *StateManager
	logger       *logrus.Entry
}

// NewBot creates a new Telegram bot handler
func NewBot(services *usecase.Services, settings storage.SettingsStorage, token string, allowedUsers []int64, logger *logrus.Logger) *Bot {
	allowedIDs := make(map[int64]bool)
	for _, id := range allowedUsers {
		allowedIDs[id] = true
	}

	return &Bot{
		services:     services,
		settings:     settings,
		token:        token,
		allowedIDs:   allowedIDs,
		stateManager: NewStateManager(),
		logger:       logger.WithField("component", "telegram"),
	}
}

// Start starts the bot
func (b *Bot) Start() error {
	bot, err := tgbotapi.NewBotAPI(b.token)
	if err != nil {
		return fmt.Errorf("failed to create bot: %w", err)
	}

	b.bot = bot
	b.logger.WithField("account", bot.Self.UserName).Info("authorized")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := bot.GetUpdatesChan(u)

	for update := range updates {
		if update.Message != nil {
			if !b.isAuthorized(update.Message.From.ID) {
				b.sendMessage(update.Message.Chat.ID, "⛔ You are not authorized to use this bot.")
				continue
			}
			go func(msg *tgbotapi.Message) {
				defer func() {
					if r := recover(); r != nil {
						b.logger.WithField("panic", r).Error("handleMessage panicked")
					}
				}()
				b.handleMessage(msg)
			}(update.Message)
		} else if update.CallbackQuery != nil {
			if !b.isAuthorized(update.CallbackQuery.From.ID) {
				b.answerCallback(update.CallbackQuery.ID, "⛔ Not authorized")
				continue
			}
			go func(cb *tgbotapi.CallbackQuery) {
				defer func() {
					if r := recover(); r != nil {
						b.logger.WithField("panic", r).Error("handleCallback panicked")
					}
				}()
				b.handleCallback(cb)
			}(update.CallbackQuery)
		}
	}

	return nil
}

// Stop stops the bot
func (b *Bot) Stop() error {
	if b.bot != nil {
		b.bot.StopReceivingUpdates()
	}
	return nil
}

// isAuthorized checks if a user is authorized
func (b *Bot) isAuthorized(userID int64) bool {
	if len(b.allowedIDs) == 0 {
		return true
	}
	return b.allowedIDs[userID]
}

// sendMessage sends a message to a chat
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	if _, err := b.bot.Send(msg); err != nil {
		b.logger.WithError(err).Warn("failed to send message")
	}
}

// sendMessageWithKeyboard sends a message with inline keyboard and
// returns the sent message id, 0 on failure
func (b *Bot) sendMessageWithKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) int {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = keyboard
	sent, err := b.bot.Send(msg)
	if err != nil {
		b.logger.WithError(err).Warn("failed to send message with keyboard")
		return 0
	}
	return sent.MessageID
}

// editMessage edits a message
func (b *Bot) editMessage(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = "Markdown"
	if keyboard != nil {
		edit.ReplyMarkup = keyboard
	}
	if _, err := b.bot.Send(edit); err != nil {
		b.logger.WithError(err).Warn("failed to edit message")
	}
}

// answerCallback answers a callback query
func (b *Bot) answerCallback(callbackID string, text string) {
	callback := tgbotapi.NewCallback(callbackID, text)
	if _, err := b.bot.Send(callback); err != nil {
		b.logger.WithError(err).Warn("failed to answer callback")
	}
}

// handleMessage handles incoming text messages
func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	if msg.IsCommand() && msg.Command() == "start" {
		b.showMainMenu(msg.Chat.ID)
		return
	}

	userID := msg.From.ID
	chatID := msg.Chat.ID
	step := b.stateManager.GetCurrentStep(userID)

	switch step {
	case StepInputFilter:
		b.handleFilterInput(chatID, userID, msg.Text, usecase.FilterSimple)
	case StepInputBulkFilter:
		b.handleFilterInput(chatID, userID, msg.Text, usecase.FilterBulk)
	case StepInputDomainsToAdd:
		b.handleDomainsToAdd(chatID, userID, msg.Text)
	case StepInputRedirectSource:
		b.handleRedirectSource(chatID, userID, msg.Text)
	case StepInputRedirectTarget:
		b.handleRedirectTarget(chatID, userID, msg.Text)
	case StepInputDMARCEmail:
		b.handleDMARCEmail(chatID, userID, msg.Text)
	default:
		b.showMainMenu(msg.Chat.ID)
	}
}

// handleCallback handles inline keyboard callbacks
func (b *Bot) handleCallback(callback *tgbotapi.CallbackQuery) {
	data := callback.Data
	chatID := callback.Message.Chat.ID
	userID := callback.From.ID
	messageID := callback.Message.MessageID

	b.answerCallback(callback.ID, "")

	parts := strings.Split(data, ":")
	action := parts[0]

	switch action {
	case "menu":
		b.stateManager.SetStep(userID, StepNone)
		b.showMainMenu(chatID)
	case "sync":
		b.handleSync(chatID, userID, messageID)
	case "selector":
		b.showSelector(chatID, userID, messageID, 1)
	case "zpage":
		if len(parts) > 1 {
			page, _ := strconv.Atoi(parts[1])
			b.showSelector(chatID, userID, messageID, page)
		}
	case "toggle":
		if len(parts) > 2 {
			page, _ := strconv.Atoi(parts[2])
			b.handleToggle(chatID, userID, messageID, parts[1], page)
		}
	case "selall":
		b.handleSelectAll(chatID, userID, messageID)
	case "filter":
		b.stateManager.SetStep(userID, StepInputFilter)
		b.sendMessage(chatID, "🔍 Send a search term to filter the zone list:")
	case "bulkfilter":
		b.stateManager.SetStep(userID, StepInputBulkFilter)
		b.sendMessage(chatID, "📋 Paste a domain list (one per line, or comma separated) to filter the zone list:")
	case "clearfilter":
		b.stateManager.SetData(userID, "filter_query", "")
		b.showSelector(chatID, userID, messageID, 1)
	case "ops":
		b.showOperationsMenu(chatID, userID, messageID)
	case "preset":
		if len(parts) > 1 {
			b.handlePreset(chatID, userID, parts[1])
		}
	case "redirect":
		b.stateManager.SetStep(userID, StepInputRedirectSource)
		b.sendMessage(chatID, "🔀 Send the source URL pattern.\nUse `{{DOMAIN}}` where the zone name should go, e.g. `{{DOMAIN}}/promo*`:")
	case "adddomains":
		b.stateManager.SetStep(userID, StepInputDomainsToAdd)
		b.sendMessage(chatID, "➕ Paste the domains to onboard (one per line, or comma separated):")
	case "report":
		b.showReport(chatID, userID)
	case "dismiss":
		b.services.Bulk.Dismiss()
		b.editMessage(chatID, messageID, "🗑 Report dismissed.", nil)
		b.showMainMenu(chatID)
	case "noop":
		// placeholder button
	}
}

// showMainMenu shows the main menu
func (b *Bot) showMainMenu(chatID int64) {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Sync Zones", "sync"),
			tgbotapi.NewInlineKeyboardButtonData("🌐 Select Zones", "selector"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Add Domains", "adddomains"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Last Report", "report"),
		),
	)

	entry := b.services.Zones.CachedZones()
	status := "cache empty, run a sync first"
	if entry != nil {
		status = fmt.Sprintf("%d zones cached", len(entry.Zones))
		if b.services.Zones.IsStale() {
			status += " (stale)"
		}
	}

	b.sendMessageWithKeyboard(chatID, fmt.Sprintf("*🏠 Bulk Manager*\n\n%s\n\nWhat would you like to do?", status), keyboard)
}

// handleSync runs a full zone sync and reports the result
func (b *Bot) handleSync(chatID int64, userID int64, messageID int) {
	b.editMessage(chatID, messageID, "🔄 Syncing zones...", nil)

	zones, err := b.services.Zones.SyncZones(context.Background())
	if err != nil {
		b.sendMessage(chatID, fmt.Sprintf("❌ Sync failed: %v", err))
		return
	}

	b.sendMessage(chatID, fmt.Sprintf("✅ Synced *%d* zones.", len(zones)))
	b.showMainMenu(chatID)
}

// selection returns the user's current selection set
func (b *Bot) selection(userID int64) map[string]bool {
	if v, ok := b.stateManager.GetData(userID, "selection"); ok {
		if sel, ok := v.(map[string]bool); ok {
			return sel
		}
	}
	return map[string]bool{}
}

// filteredZones derives the filtered view from the cache and the user's
// stored filter query
func (b *Bot) filteredZones(userID int64) []domain.Zone {
	entry := b.services.Zones.CachedZones()
	if entry == nil {
		return nil
	}

	query := ""
	mode := usecase.FilterSimple
	if v, ok := b.stateManager.GetData(userID, "filter_query"); ok {
		query, _ = v.(string)
	}
	if v, ok := b.stateManager.GetData(userID, "filter_mode"); ok {
		if m, ok := v.(usecase.FilterMode); ok {
			mode = m
		}
	}
	return usecase.FilterZones(entry.Zones, mode, query)
}

// showSelector renders one page of the zone selector
func (b *Bot) showSelector(chatID int64, userID int64, messageID int, page int) {
	entry := b.services.Zones.CachedZones()
	if entry == nil || len(entry.Zones) == 0 {
		b.editMessage(chatID, messageID, "📭 No zones cached. Run a sync first.", nil)
		return
	}

	filtered := b.filteredZones(userID)
	selected := b.selection(userID)

	totalPages := usecase.TotalPages(len(filtered), selectorPageSize)
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	b.stateManager.SetData(userID, "page", page)

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, z := range usecase.PaginateZones(filtered, selectorPageSize, page) {
		mark := "⬜"
		if selected[z.ID] {
			mark = "✅"
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%s %s", mark, z.Name),
				fmt.Sprintf("toggle:%s:%d", z.ID, page),
			),
		))
	}

	var nav []tgbotapi.InlineKeyboardButton
	if page > 1 {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("◀️", fmt.Sprintf("zpage:%d", page-1)))
	}
	nav = append(nav, tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%d/%d", page, totalPages), "noop"))
	if page < totalPages {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("▶️", fmt.Sprintf("zpage:%d", page+1)))
	}
	rows = append(rows, nav)

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔍 Filter", "filter"),
		tgbotapi.NewInlineKeyboardButtonData("📋 Paste List", "bulkfilter"),
		tgbotapi.NewInlineKeyboardButtonData("✖️ Clear", "clearfilter"),
	))
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("☑️ Select All", "selall"),
		tgbotapi.NewInlineKeyboardButtonData("🚀 Continue", "ops"),
	))
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("◀️ Menu", "menu"),
	))

	count := 0
	for _, v := range selected {
		if v {
			count++
		}
	}
	text := fmt.Sprintf("*🌐 Select Zones*\n\n%d of %d zones shown, *%d* selected.", len(filtered), len(entry.Zones), count)

	keyboard := tgbotapi.NewInlineKeyboardMarkup(rows...)
	if messageID > 0 {
		b.editMessage(chatID, messageID, text, &keyboard)
	} else {
		b.sendMessageWithKeyboard(chatID, text, keyboard)
	}
}

// handleToggle flips one zone in the selection and redraws the page
func (b *Bot) handleToggle(chatID int64, userID int64, messageID int, zoneID string, page int) {
	b.stateManager.SetData(userID, "selection", usecase.ToggleSelection(b.selection(userID), zoneID))
	b.showSelector(chatID, userID, messageID, page)
}

// handleSelectAll re-anchors the selection to the filtered view
func (b *Bot) handleSelectAll(chatID int64, userID int64, messageID int) {
	filtered := b.filteredZones(userID)
	b.stateManager.SetData(userID, "selection", usecase.SelectAllFiltered(b.selection(userID), filtered))
	b.showSelector(chatID, userID, messageID, 1)
}

// handleFilterInput stores a new filter query and redraws from page 1
func (b *Bot) handleFilterInput(chatID int64, userID int64, text string, mode usecase.FilterMode) {
	b.stateManager.SetData(userID, "filter_query", text)
	b.stateManager.SetData(userID, "filter_mode", mode)
	b.stateManager.SetStep(userID, StepNone)
	b.showSelector(chatID, userID, 0, 1)
}

// showOperationsMenu shows the bulk operations available for a selection
func (b *Bot) showOperationsMenu(chatID int64, userID int64, messageID int) {
	targets := b.selectedTargets(userID)
	if len(targets) == 0 {
		b.editMessage(chatID, messageID, "⚠️ No zones selected.", nil)
		b.showSelector(chatID, userID, 0, 1)
		return
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📧 Google SPF", "preset:spf"),
			tgbotapi.NewInlineKeyboardButtonData("📧 Google MX", "preset:mx"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🛡 DMARC", "preset:dmarc"),
			tgbotapi.NewInlineKeyboardButtonData("📬 Google Suite", "preset:gsuite"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔀 Bulk Redirect", "redirect"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ Back", "selector"),
		),
	)

	b.editMessage(chatID, messageID, fmt.Sprintf("*🚀 Bulk Operation*\n\n*%d* zones selected. Pick an operation:", len(targets)), &keyboard)
}

// selectedTargets returns the selected zone IDs in cache order
func (b *Bot) selectedTargets(userID int64) []string {
	entry := b.services.Zones.CachedZones()
	if entry == nil {
		return nil
	}
	return usecase.SelectionInOrder(b.selection(userID), entry.Zones)
}

// handlePreset runs a record preset against the selection. The DMARC
// preset first asks for the report address.
func (b *Bot) handlePreset(chatID int64, userID int64, preset string) {
	var records []domain.RecordTemplate
	switch preset {
	case "spf":
		records = []domain.RecordTemplate{domain.PresetGoogleSPF()}
	case "mx":
		records = []domain.RecordTemplate{domain.PresetGoogleMX()}
	case "gsuite":
		records = []domain.RecordTemplate{domain.PresetGoogleSPF(), domain.PresetGoogleMX()}
	case "dmarc":
		email := "reports@" + domain.PlaceholderToken
		if settings, err := b.settings.LoadSettings(); err == nil && settings.DMARCReportEmail != "" {
			email = settings.DMARCReportEmail
		}
		b.stateManager.SetData(userID, "dmarc_email", email)
		b.stateManager.SetStep(userID, StepInputDMARCEmail)
		b.sendMessage(chatID, fmt.Sprintf("🛡 Send the DMARC report address, or `.` to keep `%s`:", email))
		return
	default:
		b.sendMessage(chatID, "⚠️ Unknown preset.")
		return
	}

	b.runBulk(chatID, userID, domain.Operation{Kind: domain.OperationDNSBulk, Records: records})
}

// handleDMARCEmail finishes the DMARC preset flow
func (b *Bot) handleDMARCEmail(chatID int64, userID int64, text string) {
	email := strings.TrimSpace(text)
	if email == "." {
		if v, ok := b.stateManager.GetData(userID, "dmarc_email"); ok {
			email, _ = v.(string)
		}
	}
	b.stateManager.SetStep(userID, StepNone)

	b.runBulk(chatID, userID, domain.Operation{
		Kind:    domain.OperationDNSBulk,
		Records: []domain.RecordTemplate{domain.PresetDMARC(email)},
	})
}

// handleDomainsToAdd onboards a pasted list of new zones
func (b *Bot) handleDomainsToAdd(chatID int64, userID int64, text string) {
	b.stateManager.SetStep(userID, StepNone)

	domains := domain.ParseDomainList(text)
	if len(domains) == 0 {
		b.sendMessage(chatID, "⚠️ No domains found in the message.")
		return
	}

	b.sendMessage(chatID, fmt.Sprintf("➕ Adding *%d* domains...", len(domains)))

	results, err := b.services.Zones.CreateZones(context.Background(), domains)
	if err != nil {
		b.sendMessage(chatID, fmt.Sprintf("❌ Error: %v", err))
		return
	}

	var sb strings.Builder
	sb.WriteString("*➕ Domains Added*\n\n")
	for _, r := range results {
		if r.Created {
			sb.WriteString(fmt.Sprintf("✅ `%s`\n", r.Name))
			for _, ns := range r.NameServers {
				sb.WriteString(fmt.Sprintf("    `%s`\n", ns))
			}
		} else {
			sb.WriteString(fmt.Sprintf("❌ `%s`: %s\n", r.Name, r.Error))
		}
	}
	b.sendMessage(chatID, sb.String())
	b.showMainMenu(chatID)
}

// handleRedirectSource stores the source pattern and asks for the target
func (b *Bot) handleRedirectSource(chatID int64, userID int64, text string) {
	b.stateManager.SetData(userID, "redirect_source", strings.TrimSpace(text))
	b.stateManager.SetStep(userID, StepInputRedirectTarget)
	b.sendMessage(chatID, "🔀 Now send the target URL:")
}

// handleRedirectTarget finishes the redirect flow and starts the run
func (b *Bot) handleRedirectTarget(chatID int64, userID int64, text string) {
	source := ""
	if v, ok := b.stateManager.GetData(userID, "redirect_source"); ok {
		source, _ = v.(string)
	}
	b.stateManager.SetStep(userID, StepNone)

	b.runBulk(chatID, userID, domain.Operation{
		Kind: domain.OperationRedirect,
		Redirect: domain.RedirectTemplate{
			SourcePattern: source,
			TargetURL:     strings.TrimSpace(text),
		},
	})
}

// runBulk executes a bulk job over the current selection, live-editing a
// progress message after each zone
func (b *Bot) runBulk(chatID int64, userID int64, op domain.Operation) {
	targets := b.selectedTargets(userID)
	if len(targets) == 0 {
		b.sendMessage(chatID, "⚠️ No zones selected.")
		return
	}

	progressID := b.sendMessageWithKeyboard(chatID,
		fmt.Sprintf("⏳ Starting bulk run over *%d* zones...", len(targets)),
		tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏳", "noop"),
		)))

	progress := func(r domain.ExecutionReport) {
		if progressID == 0 {
			return
		}
		b.editMessage(chatID, progressID, fmt.Sprintf(
			"⏳ Processing *%d/%d*\n\n✅ %d  ⚠️ %d  ❌ %d",
			r.Current, r.Total, len(r.Success), len(r.Partial), len(r.Error),
		), nil)
	}

	report, err := b.services.Bulk.Run(context.Background(), domain.BulkJob{
		Targets:   targets,
		Operation: op,
	}, progress)
	if err != nil {
		b.sendMessage(chatID, fmt.Sprintf("❌ Bulk run failed: %v", err))
		return
	}

	if progressID != 0 {
		b.editMessage(chatID, progressID, renderReport(report), reportKeyboard())
	} else {
		b.sendMessageWithKeyboard(chatID, renderReport(report), *reportKeyboard())
	}
}

// showReport shows the last run's report, if one is held
func (b *Bot) showReport(chatID int64, userID int64) {
	report := b.services.Bulk.Report()
	if report == nil {
		b.sendMessage(chatID, "📭 No report held. Run a bulk operation first.")
		return
	}
	b.sendMessageWithKeyboard(chatID, renderReport(report), *reportKeyboard())
}

func reportKeyboard() *tgbotapi.InlineKeyboardMarkup {
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Dismiss", "dismiss"),
			tgbotapi.NewInlineKeyboardButtonData("◀️ Menu", "menu"),
		),
	)
	return &kb
}

// renderReport formats an execution report for Telegram
func renderReport(r *domain.ExecutionReport) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("*📊 Bulk Report* (%d/%d)\n", r.Current, r.Total))
	sb.WriteString(fmt.Sprintf("\n✅ %d success  ⚠️ %d partial  ❌ %d failed\n", len(r.Success), len(r.Partial), len(r.Error)))

	writeBucket := func(title string, outcomes []domain.ZoneOutcome) {
		if len(outcomes) == 0 {
			return
		}
		sb.WriteString("\n*" + title + "*\n")
		for _, o := range outcomes {
			sb.WriteString(fmt.Sprintf("• `%s`\n", o.ZoneName))
			for _, d := range o.Detail {
				sb.WriteString(fmt.Sprintf("    %s\n", d))
			}
		}
	}

	writeBucket("Partial", r.Partial)
	writeBucket("Failed", r.Error)
	return sb.String()
}
