package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"doctrack-cli/internal/api"
	"doctrack-cli/internal/config"
	"doctrack-cli/internal/expiry"
	"doctrack-cli/internal/model"
	"doctrack-cli/internal/render"
)

type modalKind int

const (
	modalNone modalKind = iota
	modalAdd
	modalRenew
	modalHistory
	modalReminder
	modalConfirmDelete
	modalConfirmClear
	modalHelp
)

// filterCycle is the tab order of the status filter tabs.
var filterCycle = []expiry.Status{
	expiry.FilterAll,
	expiry.StatusExpired,
	expiry.StatusSoon,
	expiry.StatusMid,
	expiry.StatusActive,
}

// appModel owns all TUI state. Documents are never patched in place:
// every mutation round-trips through the backend and ends in a reload,
// so the list is always a view of server state.
type appModel struct {
	cfg    *config.Config
	client *api.Client
	log    *zap.Logger
	now    func() time.Time

	width  int
	height int

	docs    []model.Document
	loading bool
	loadErr error
	healthy bool

	filter    expiry.Status
	search    textinput.Model
	searching bool
	cursor    int

	modal modalKind

	// add / renew form
	titleInput textinput.Model
	typeInput  textinput.Model
	dateInput  textinput.Model
	formFocus  int
	formErr    string
	renewID    int64
	renewTitle string

	// reminder form
	remDays   textinput.Model
	remTarget textinput.Model
	remMode   string
	remFocus  int

	// history view
	histTitle   string
	histEntries []model.HistoryEntry

	// delete confirmation
	deleteID    int64
	deleteTitle string

	cal calendarState

	toast    string
	toastSeq int
}

func newAppModel(cfg *config.Config, client *api.Client, log *zap.Logger) appModel {
	search := textinput.New()
	search.Placeholder = "поиск"
	search.Prompt = "/"
	search.CharLimit = 120

	m := appModel{
		cfg:     cfg,
		client:  client,
		log:     log,
		now:     time.Now,
		filter:  expiry.FilterAll,
		search:  search,
		loading: true,
	}
	return m
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(loadDocumentsCmd(m.client), checkHealthCmd(m.client))
}

// visible applies the active filter and search to the loaded documents,
// preserving backend order.
func (m appModel) visible() []model.Document {
	return expiry.Filter(m.docs, m.filter, m.search.Value(), m.now())
}

func (m *appModel) clampCursor() {
	n := len(m.visible())
	if n == 0 {
		m.cursor = 0
		return
	}
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m appModel) selected() (model.Document, bool) {
	vis := m.visible()
	if len(vis) == 0 || m.cursor < 0 || m.cursor >= len(vis) {
		return model.Document{}, false
	}
	return vis[m.cursor], true
}

func (m *appModel) showToast(text string) tea.Cmd {
	m.toast = text
	m.toastSeq++
	return expireToastCmd(m.toastSeq)
}

func (m *appModel) openAddForm() {
	m.modal = modalAdd
	m.formErr = ""
	m.formFocus = 0
	m.titleInput = formInput("название")
	m.typeInput = formInput("тип (паспорт, виза, ...)")
	m.dateInput = formInput("ГГГГ-ММ-ДД")
	m.titleInput.Focus()
}

func (m *appModel) openRenewForm(doc model.Document) {
	m.modal = modalRenew
	m.formErr = ""
	m.formFocus = 0
	m.renewID = doc.ID
	m.renewTitle = doc.Title
	m.dateInput = formInput("ГГГГ-ММ-ДД")
	m.dateInput.SetValue(doc.ExpiryDate)
	m.dateInput.Focus()
}

func (m *appModel) openReminderForm() {
	m.modal = modalReminder
	m.formErr = ""
	m.remFocus = 0
	m.remDays = formInput("дней")
	m.remDays.SetValue(strconv.Itoa(m.cfg.Reminders.Days))
	m.remTarget = formInput("адрес или URL")
	m.remTarget.SetValue(m.cfg.Reminders.Target)
	m.remMode = m.cfg.Reminders.Mode
	m.remDays.Focus()
}

func formInput(placeholder string) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = 200
	in.Width = 36
	return in
}

func (m *appModel) closeModal() {
	m.modal = modalNone
	m.cal.open = false
	m.formErr = ""
	m.histEntries = nil
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case documentsLoadedMsg:
		m.docs = msg.docs
		m.loading = false
		m.loadErr = nil
		m.healthy = true
		m.clampCursor()
		return m, nil

	case loadFailedMsg:
		m.loading = false
		m.loadErr = msg.err
		m.log.Warn("load failed", zap.Error(msg.err))
		return m, nil

	case healthMsg:
		m.healthy = msg.ok
		return m, nil

	case opDoneMsg:
		m.closeModal()
		cmd := m.showToast(msg.toast)
		return m, tea.Batch(cmd, loadDocumentsCmd(m.client))

	case opErrMsg:
		// Keep the modal open so input survives, but reload anyway:
		// the failure may mean the row is stale (already deleted).
		m.formErr = api.UserMessage(msg.err)
		cmd := m.showToast(m.formErr)
		return m, tea.Batch(cmd, loadDocumentsCmd(m.client))

	case historyLoadedMsg:
		m.modal = modalHistory
		m.histTitle = fmt.Sprintf("Документ #%d: %s", msg.docID, msg.title)
		m.histEntries = msg.entries
		return m, nil

	case reminderSentMsg:
		m.closeModal()
		toast := fmt.Sprintf("Отправлено напоминаний: %d (%s)", msg.res.Sent, msg.res.Mode)
		return m, m.showToast(toast)

	case toastExpireMsg:
		if msg.seq == m.toastSeq {
			m.toast = ""
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return m, tea.Quit
	}

	// The calendar swallows everything while open.
	if m.cal.open {
		if date, done := m.cal.handleCalendarKey(key); done && date != "" {
			m.dateInput.SetValue(date)
		}
		return m, nil
	}

	switch m.modal {
	case modalAdd, modalRenew:
		return m.handleFormKey(msg)
	case modalReminder:
		return m.handleReminderKey(msg)
	case modalHistory, modalHelp:
		switch key {
		case "esc", "q", "enter":
			m.closeModal()
		}
		return m, nil
	case modalConfirmDelete:
		switch key {
		case "y", "enter":
			m.closeModal()
			return m, deleteDocumentCmd(m.client, m.deleteID)
		case "n", "esc":
			m.closeModal()
		}
		return m, nil
	case modalConfirmClear:
		switch key {
		case "y", "enter":
			m.closeModal()
			return m, clearDocumentsCmd(m.client)
		case "n", "esc":
			m.closeModal()
		}
		return m, nil
	}

	if m.searching {
		switch key {
		case "esc":
			m.searching = false
			m.search.SetValue("")
			m.search.Blur()
			m.clampCursor()
			return m, nil
		case "enter":
			m.searching = false
			m.search.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		m.clampCursor()
		return m, cmd
	}

	return m.handleListKey(key)
}

func (m appModel) handleListKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.visible())-1 {
			m.cursor++
		}
	case "g", "home":
		m.cursor = 0
	case "G", "end":
		m.cursor = len(m.visible()) - 1
		m.clampCursor()
	case "tab":
		m.filter = nextFilter(m.filter, 1)
		m.clampCursor()
	case "shift+tab":
		m.filter = nextFilter(m.filter, -1)
		m.clampCursor()
	case "/":
		m.searching = true
		m.search.Focus()
		return m, textinput.Blink
	case "a":
		m.openAddForm()
		return m, textinput.Blink
	case "w":
		if doc, ok := m.selected(); ok {
			m.openRenewForm(doc)
			return m, textinput.Blink
		}
	case "h":
		if doc, ok := m.selected(); ok {
			return m, loadHistoryCmd(m.client, doc.ID, doc.Title)
		}
	case "d":
		if doc, ok := m.selected(); ok {
			m.modal = modalConfirmDelete
			m.deleteID = doc.ID
			m.deleteTitle = doc.Title
		}
	case "C":
		if len(m.docs) > 0 {
			m.modal = modalConfirmClear
		}
	case "m":
		m.openReminderForm()
		return m, textinput.Blink
	case "r":
		m.loading = true
		return m, tea.Batch(loadDocumentsCmd(m.client), checkHealthCmd(m.client))
	case "?":
		m.modal = modalHelp
	}
	return m, nil
}

func nextFilter(cur expiry.Status, dir int) expiry.Status {
	for i, f := range filterCycle {
		if f == cur {
			return filterCycle[(i+dir+len(filterCycle))%len(filterCycle)]
		}
	}
	return expiry.FilterAll
}

// handleFormKey drives the add and renew forms. The renew form only has
// the date field, so focus movement is a no-op there.
func (m appModel) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeModal()
		return m, nil
	case "tab", "down":
		if m.modal == modalAdd {
			m.setFormFocus((m.formFocus + 1) % 3)
		}
		return m, textinput.Blink
	case "shift+tab", "up":
		if m.modal == modalAdd {
			m.setFormFocus((m.formFocus + 2) % 3)
		}
		return m, textinput.Blink
	case "ctrl+k":
		if m.dateFieldFocused() {
			m.cal = openCalendar(m.dateInput.Value(), m.now())
		}
		return m, nil
	case "enter":
		return m.submitForm()
	}

	var cmd tea.Cmd
	if m.modal == modalRenew {
		m.dateInput, cmd = m.dateInput.Update(msg)
		return m, cmd
	}
	switch m.formFocus {
	case 0:
		m.titleInput, cmd = m.titleInput.Update(msg)
	case 1:
		m.typeInput, cmd = m.typeInput.Update(msg)
	case 2:
		m.dateInput, cmd = m.dateInput.Update(msg)
	}
	return m, cmd
}

func (m *appModel) setFormFocus(i int) {
	m.formFocus = i
	inputs := []*textinput.Model{&m.titleInput, &m.typeInput, &m.dateInput}
	for j, in := range inputs {
		if j == i {
			in.Focus()
		} else {
			in.Blur()
		}
	}
}

func (m appModel) dateFieldFocused() bool {
	return m.modal == modalRenew || m.formFocus == 2
}

func (m appModel) submitForm() (tea.Model, tea.Cmd) {
	date := strings.TrimSpace(m.dateInput.Value())
	if !expiry.IsValidDate(date) {
		m.formErr = "Дата должна быть в формате ГГГГ-ММ-ДД"
		return m, nil
	}
	if m.modal == modalRenew {
		return m, renewDocumentCmd(m.client, m.renewID, date)
	}
	title := strings.TrimSpace(m.titleInput.Value())
	docType := strings.TrimSpace(m.typeInput.Value())
	if title == "" || docType == "" {
		m.formErr = "Название и тип не могут быть пустыми"
		return m, nil
	}
	return m, createDocumentCmd(m.client, model.DocumentCreate{
		Title:      title,
		DocType:    docType,
		ExpiryDate: date,
	})
}

func (m appModel) handleReminderKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeModal()
		return m, nil
	case "tab", "down":
		m.setReminderFocus((m.remFocus + 1) % 3)
		return m, textinput.Blink
	case "shift+tab", "up":
		m.setReminderFocus((m.remFocus + 2) % 3)
		return m, textinput.Blink
	case "left", "right":
		if m.remFocus == 1 {
			if m.remMode == "email" {
				m.remMode = "webhook"
			} else {
				m.remMode = "email"
			}
			return m, nil
		}
	case "enter":
		days, err := strconv.Atoi(strings.TrimSpace(m.remDays.Value()))
		if err != nil || days < 1 || days > 365 {
			m.formErr = "Количество дней должно быть от 1 до 365"
			return m, nil
		}
		return m, sendRemindersCmd(m.client, days, m.remMode, strings.TrimSpace(m.remTarget.Value()))
	}

	var cmd tea.Cmd
	switch m.remFocus {
	case 0:
		m.remDays, cmd = m.remDays.Update(msg)
	case 2:
		m.remTarget, cmd = m.remTarget.Update(msg)
	}
	return m, cmd
}

func (m *appModel) setReminderFocus(i int) {
	m.remFocus = i
	m.remDays.Blur()
	m.remTarget.Blur()
	switch i {
	case 0:
		m.remDays.Focus()
	case 2:
		m.remTarget.Focus()
	}
}

func (m appModel) View() string {
	if m.width == 0 {
		return "загрузка..."
	}

	var b strings.Builder
	b.WriteString(m.viewHeader())
	b.WriteByte('\n')
	b.WriteString(m.viewTabs())
	b.WriteByte('\n')
	if m.searching || m.search.Value() != "" {
		b.WriteString(m.search.View())
		b.WriteByte('\n')
	}
	b.WriteString(m.viewList())
	b.WriteByte('\n')
	b.WriteString(m.viewFooter())

	base := b.String()
	if m.cal.open {
		return m.overlay(base, m.cal.renderCalendar(m.now()))
	}
	if m.modal != modalNone {
		return m.overlay(base, m.viewModal())
	}
	return base
}

func (m appModel) viewHeader() string {
	title := lipgloss.NewStyle().Bold(true).Render("Документы")
	health := styleMuted().Render("бэкенд: доступен")
	if !m.healthy {
		health = lipgloss.NewStyle().Foreground(colorExpired).Render("бэкенд: недоступен")
	}
	counts := expiry.Count(m.docs, m.now())
	summary := styleMuted().Render(fmt.Sprintf(
		"всего %d  истекло %d  скоро %d  30–60 %d  активно %d",
		len(m.docs), counts.Expired, counts.Soon, counts.Mid, counts.Active,
	))
	return title + "  " + health + "\n" + summary
}

func (m appModel) viewTabs() string {
	labels := map[expiry.Status]string{
		expiry.FilterAll:     "Все",
		expiry.StatusExpired: "Истекшие",
		expiry.StatusSoon:    "Истекают",
		expiry.StatusMid:     "30–60 дней",
		expiry.StatusActive:  "Активные",
	}
	active := lipgloss.NewStyle().
		Foreground(colorSelectedFg).
		Background(colorSelectedBg).
		Bold(true).
		Padding(0, 1)
	inactive := styleMuted().Padding(0, 1)

	parts := make([]string, 0, len(filterCycle))
	for _, f := range filterCycle {
		st := inactive
		if f == m.filter {
			st = active
		}
		parts = append(parts, st.Render(labels[f]))
	}
	return strings.Join(parts, " ")
}

func (m appModel) viewList() string {
	if m.loading {
		return styleMuted().Render("загрузка...")
	}
	if m.loadErr != nil {
		return lipgloss.NewStyle().Foreground(colorExpired).
			Render("Не удалось загрузить документы: " + api.UserMessage(m.loadErr))
	}
	vis := m.visible()
	if len(vis) == 0 {
		if len(m.docs) == 0 {
			return styleMuted().Render("Нет документов. Добавьте первый документ (a).")
		}
		return styleMuted().Render("Ничего не найдено.")
	}

	now := m.now()
	rows := make([]string, 0, len(vis))
	for i, doc := range vis {
		rows = append(rows, m.renderRow(doc, now, i == m.cursor))
	}
	return strings.Join(rows, "\n")
}

func (m appModel) renderRow(doc model.Document, now time.Time, selected bool) string {
	status := expiry.Classify(doc.ExpiryDate, now)
	marker := "  "
	if selected {
		marker = "> "
	}

	badge := lipgloss.NewStyle().Foreground(statusColor(status)).Bold(true).
		Render(render.StatusLabel(status))

	days := ""
	if d, err := expiry.DaysUntil(doc.ExpiryDate, now); err == nil {
		switch {
		case d < 0:
			days = fmt.Sprintf("%d дн. назад", -d)
		case d == 0:
			days = "сегодня"
		default:
			days = fmt.Sprintf("через %d дн.", d)
		}
	}

	line := fmt.Sprintf("%s%-30s %-12s %s  %s  %s",
		marker, truncate(doc.Title, 30), truncate(doc.DocType, 12),
		render.LongDate(doc.ExpiryDate), badge, styleMuted().Render(days))

	if selected {
		return lipgloss.NewStyle().Background(colorSelectedBg).Render(normalizePane(line, m.width))
	}
	return line
}

func statusColor(s expiry.Status) lipgloss.TerminalColor {
	switch s {
	case expiry.StatusExpired:
		return colorExpired
	case expiry.StatusSoon:
		return colorSoon
	case expiry.StatusMid:
		return colorMid
	default:
		return colorActive
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

func (m appModel) viewFooter() string {
	if m.toast != "" {
		return lipgloss.NewStyle().Foreground(colorAccent).Render(m.toast)
	}
	return styleMuted().Render("a добавить  w продлить  h история  d удалить  m напоминания  / поиск  ? справка  q выход")
}

func (m appModel) viewModal() string {
	switch m.modal {
	case modalAdd:
		return m.viewForm("Новый документ",
			labeled("Название", m.titleInput.View()),
			labeled("Тип", m.typeInput.View()),
			labeled("Срок действия", m.dateInput.View()+calHint()),
		)
	case modalRenew:
		return m.viewForm("Продление: "+m.renewTitle,
			labeled("Новый срок", m.dateInput.View()+calHint()),
		)
	case modalReminder:
		return m.viewForm("Напоминания",
			labeled("Дней до истечения", m.remDays.View()),
			labeled("Способ", modeSwitch(m.remMode, m.remFocus == 1)),
			labeled("Куда", m.remTarget.View()),
		)
	case modalHistory:
		return m.viewHistory()
	case modalConfirmDelete:
		return renderConfirmModal("Удалить документ?", m.deleteTitle)
	case modalConfirmClear:
		return renderConfirmModal("Удалить все документы?",
			fmt.Sprintf("Будет удалено: %d", len(m.docs)))
	case modalHelp:
		return m.viewHelp()
	}
	return ""
}

func labeled(label, field string) string {
	return styleMuted().Render(label) + "\n" + field
}

func calHint() string {
	return styleMuted().Render("  ctrl+k календарь")
}

func modeSwitch(mode string, focused bool) string {
	st := lipgloss.NewStyle()
	if focused {
		st = st.Foreground(colorAccent).Bold(true)
	}
	if mode == "email" {
		return st.Render("◂ email ▸")
	}
	return st.Render("◂ webhook ▸")
}

func (m appModel) viewForm(title string, fields ...string) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(title))
	b.WriteString("\n\n")
	b.WriteString(strings.Join(fields, "\n\n"))
	if m.formErr != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().Foreground(colorExpired).Render(m.formErr))
	}
	b.WriteString("\n\n")
	b.WriteString(styleMuted().Render("enter отправить  esc отмена"))
	return b.String()
}

func (m appModel) viewHistory() string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(m.histTitle))
	b.WriteString("\n\n")
	if len(m.histEntries) == 0 {
		b.WriteString(styleMuted().Render("Обновлений пока нет."))
	} else {
		for i, e := range m.histEntries {
			if i > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(fmt.Sprintf("%s → %s  %s",
				e.OldExpiryDate, e.NewExpiryDate,
				styleMuted().Render(e.UpdatedAt.Local().Format("02.01.2006 15:04"))))
		}
	}
	b.WriteString("\n\n")
	b.WriteString(styleMuted().Render("esc закрыть"))
	return b.String()
}

func (m appModel) viewHelp() string {
	return renderHelpMarkdown(m.width)
}

// overlay centers content in a modal box over the base view. The base is
// not composited behind it; the box simply replaces the screen content,
// which keeps rendering predictable across terminal widths.
func (m appModel) overlay(base, content string) string {
	box := renderModalBox(content)
	if m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
