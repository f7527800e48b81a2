package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"doctrack-cli/internal/expiry"
)

// calendarState is the date-picker widget: closed, or open on a
// (year, month) page with one highlighted day. It holds no document data;
// selection commits an ISO date string into whatever field opened it.
type calendarState struct {
	open  bool
	year  int
	month time.Month
	day   int
}

var monthsNominative = [...]string{
	"Январь", "Февраль", "Март", "Апрель", "Май", "Июнь",
	"Июль", "Август", "Сентябрь", "Октябрь", "Ноябрь", "Декабрь",
}

func daysInMonth(y int, m time.Month) int {
	// Day 0 of next month is last day of this month.
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func clampDay(y int, m time.Month, d int) int {
	if d < 1 {
		return 1
	}
	max := daysInMonth(y, m)
	if d > max {
		return max
	}
	return d
}

// leadingBlanks is the number of empty grid cells before day 1, with the
// week re-indexed to start on Monday (time.Weekday is Sunday-based).
func leadingBlanks(y int, m time.Month) int {
	wd := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC).Weekday()
	return (int(wd) + 6) % 7
}

// shiftMonth moves by delta months. time.Date normalizes out-of-range
// months, so year boundaries roll over without manual modulo.
func shiftMonth(y int, m time.Month, delta int) (int, time.Month) {
	t := time.Date(y, m+time.Month(delta), 1, 0, 0, 0, 0, time.UTC)
	return t.Year(), t.Month()
}

// openCalendar transitions to open, seeded from an existing field value
// when it is a valid date, otherwise from now.
func openCalendar(seed string, now time.Time) calendarState {
	if t, err := expiry.ParseDate(seed); err == nil {
		return calendarState{open: true, year: t.Year(), month: t.Month(), day: t.Day()}
	}
	return calendarState{open: true, year: now.Year(), month: now.Month(), day: now.Day()}
}

func (c *calendarState) moveDay(delta int) {
	cur := time.Date(c.year, c.month, c.day, 0, 0, 0, 0, time.UTC)
	next := cur.AddDate(0, 0, delta)
	c.year, c.month, c.day = next.Year(), next.Month(), next.Day()
}

func (c *calendarState) moveMonth(delta int) {
	c.year, c.month = shiftMonth(c.year, c.month, delta)
	c.day = clampDay(c.year, c.month, c.day)
}

// selectedDate is the zero-padded ISO date of the highlighted cell.
func (c calendarState) selectedDate() string {
	return fmt.Sprintf("%04d-%02d-%02d", c.year, c.month, c.day)
}

// renderCalendar draws the month page. The highlighted day is shown
// selected; today gets an accent even when not highlighted.
func (c calendarState) renderCalendar(now time.Time) string {
	header := fmt.Sprintf("%s %d", monthsNominative[c.month-1], c.year)
	today := now.Format("2006-01-02")

	cellBase := lipgloss.NewStyle().Width(4).Align(lipgloss.Right)
	cellSelected := cellBase.Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true)
	cellToday := cellBase.Foreground(colorAccent).Bold(true)

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(header))
	b.WriteByte('\n')
	b.WriteString(styleMuted().Render("  Пн  Вт  Ср  Чт  Пт  Сб  Вс"))
	b.WriteByte('\n')

	col := 0
	for i := 0; i < leadingBlanks(c.year, c.month); i++ {
		b.WriteString(cellBase.Render(""))
		col++
	}
	for d := 1; d <= daysInMonth(c.year, c.month); d++ {
		date := fmt.Sprintf("%04d-%02d-%02d", c.year, c.month, d)
		st := cellBase
		switch {
		case d == c.day:
			st = cellSelected
		case date == today:
			st = cellToday
		}
		b.WriteString(st.Render(fmt.Sprintf("%d", d)))
		col++
		if col == 7 {
			b.WriteByte('\n')
			col = 0
		}
	}
	if col != 0 {
		b.WriteByte('\n')
	}
	b.WriteString(styleMuted().Render("←/→ день  ↑/↓ неделя  [/] месяц  enter выбрать  esc закрыть"))
	return b.String()
}

// handleCalendarKey mutates the calendar for one keypress. It returns the
// committed date when a day was selected, and done=true when the widget
// closed (with or without committing).
func (c *calendarState) handleCalendarKey(key string) (committed string, done bool) {
	switch key {
	case "esc", "ctrl+g":
		c.open = false
		return "", true
	case "enter":
		date := c.selectedDate()
		c.open = false
		return date, true
	case "left":
		c.moveDay(-1)
	case "right":
		c.moveDay(1)
	case "up":
		c.moveDay(-7)
	case "down":
		c.moveDay(7)
	case "[", "pgup":
		c.moveMonth(-1)
	case "]", "pgdown":
		c.moveMonth(1)
	}
	return "", false
}
