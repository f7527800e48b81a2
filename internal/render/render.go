// Package render turns a document collection into HTML fragments for the
// local web view. Rendering is recomputed from scratch on every state
// change; there is no diffing and no cached markup.
package render

import (
	"fmt"
	"html"
	"strings"
	"time"

	"doctrack-cli/internal/expiry"
	"doctrack-cli/internal/model"
)

var monthsGenitive = [...]string{
	"января", "февраля", "марта", "апреля", "мая", "июня",
	"июля", "августа", "сентября", "октября", "ноября", "декабря",
}

var statusLabels = map[expiry.Status]string{
	expiry.StatusExpired: "Истек",
	expiry.StatusSoon:    "Истекает",
	expiry.StatusMid:     "30–60 дней",
	expiry.StatusActive:  "Активен",
}

// StatusLabel returns the fixed-locale display name of a status.
func StatusLabel(s expiry.Status) string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// LongDate formats YYYY-MM-DD as a long-form Russian date ("31 декабря 2026").
// Unparseable input falls back to the raw string.
func LongDate(date string) string {
	t, err := expiry.ParseDate(date)
	if err != nil {
		return date
	}
	return fmt.Sprintf("%d %s %d", t.Day(), monthsGenitive[t.Month()-1], t.Year())
}

// DocumentCards renders one card per document: escaped title/type, the
// long-form expiry date, a status tag and the renew/history/delete
// affordances. Title and DocType are user-supplied and MUST pass through
// html.EscapeString; everything else on a card is generated.
func DocumentCards(docs []model.Document, now time.Time) string {
	if len(docs) == 0 {
		return `<div class="empty-state">Нет документов. Добавьте первый документ.</div>`
	}
	var b strings.Builder
	for _, d := range docs {
		st := expiry.Classify(d.ExpiryDate, now)
		fmt.Fprintf(&b, "<div class=\"card status-%s\" data-id=\"%d\">\n", st, d.ID)
		fmt.Fprintf(&b, "  <h3 class=\"card-title\">%s</h3>\n", html.EscapeString(d.Title))
		fmt.Fprintf(&b, "  <div class=\"card-type\">%s</div>\n", html.EscapeString(d.DocType))
		fmt.Fprintf(&b, "  <div class=\"card-expiry\">до %s</div>\n", LongDate(d.ExpiryDate))
		fmt.Fprintf(&b, "  <span class=\"tag tag-%s\">%s</span>\n", st, StatusLabel(st))
		fmt.Fprintf(&b, "  <div class=\"card-actions\">\n")
		fmt.Fprintf(&b, "    <input type=\"date\" data-renew=\"%d\">\n", d.ID)
		fmt.Fprintf(&b, "    <button data-renew-button=\"%d\">Продлить</button>\n", d.ID)
		fmt.Fprintf(&b, "    <button data-history-button=\"%d\">История</button>\n", d.ID)
		fmt.Fprintf(&b, "    <button data-delete-button=\"%d\">Удалить</button>\n", d.ID)
		fmt.Fprintf(&b, "  </div>\n")
		b.WriteString("</div>\n")
	}
	return b.String()
}

// HistoryList renders renewal records in the exact order the backend
// returned them (newest first per the contract; no client resort).
func HistoryList(entries []model.HistoryEntry) string {
	if len(entries) == 0 {
		return `<div class="empty-state">Обновлений пока нет.</div>`
	}
	var b strings.Builder
	b.WriteString("<ul class=\"history\">\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "  <li>Документ #%d: %s → %s <span class=\"when\">(%s)</span></li>\n",
			e.DocumentID,
			LongDate(e.OldExpiryDate),
			LongDate(e.NewExpiryDate),
			e.UpdatedAt.Format("02.01.2006 15:04"),
		)
	}
	b.WriteString("</ul>\n")
	return b.String()
}

// SummaryBar renders the four clickable status counters. Counts always
// cover the full collection, independent of the active filter.
func SummaryBar(c expiry.Counts, active expiry.Status) string {
	var b strings.Builder
	b.WriteString("<div class=\"summary\">\n")
	for _, s := range []struct {
		status expiry.Status
		count  int
	}{
		{expiry.StatusExpired, c.Expired},
		{expiry.StatusSoon, c.Soon},
		{expiry.StatusMid, c.Mid},
		{expiry.StatusActive, c.Active},
	} {
		cls := "stat"
		if s.status == active {
			cls = "stat stat-active"
		}
		fmt.Fprintf(&b, "  <a class=\"%s\" data-filter=\"%s\" href=\"/?filter=%s\">%s: %d</a>\n",
			cls, s.status, s.status, StatusLabel(s.status), s.count)
	}
	b.WriteString("</div>\n")
	return b.String()
}
