package render

import (
	"strings"
	"testing"
	"time"

	"doctrack-cli/internal/expiry"
	"doctrack-cli/internal/model"
)

var now = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.Local)

func TestDocumentCardsEscapesUserText(t *testing.T) {
	docs := []model.Document{{
		ID:         7,
		Title:      `<script>alert("x")</script>`,
		DocType:    `Тип & "кавычки" <b>`,
		ExpiryDate: "2026-12-31",
	}}
	out := DocumentCards(docs, now)
	if strings.Contains(out, "<script>") {
		t.Fatalf("title rendered as executable markup:\n%s", out)
	}
	for _, want := range []string{
		"&lt;script&gt;",
		"&amp;",
		"&#34;кавычки&#34;",
		"&lt;b&gt;",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected escaped %q in output:\n%s", want, out)
		}
	}
}

func TestDocumentCardsContent(t *testing.T) {
	docs := []model.Document{{ID: 3, Title: "Паспорт", DocType: "Паспорт", ExpiryDate: "2026-12-31"}}
	out := DocumentCards(docs, now)
	for _, want := range []string{
		`data-id="3"`,
		"31 декабря 2026",
		`data-renew="3"`,
		`data-renew-button="3"`,
		`data-history-button="3"`,
		`data-delete-button="3"`,
		"Продлить",
		"История",
		"Удалить",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestDocumentCardsEmptyState(t *testing.T) {
	out := DocumentCards(nil, now)
	if !strings.Contains(out, "Нет документов") {
		t.Fatalf("expected empty state, got:\n%s", out)
	}
	if strings.Contains(out, "card") {
		t.Fatalf("empty state must not render cards:\n%s", out)
	}
}

func TestHistoryList(t *testing.T) {
	entries := []model.HistoryEntry{
		{DocumentID: 5, OldExpiryDate: "2026-01-10", NewExpiryDate: "2027-01-10",
			UpdatedAt: time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)},
		{DocumentID: 5, OldExpiryDate: "2025-01-10", NewExpiryDate: "2026-01-10",
			UpdatedAt: time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)},
	}
	out := HistoryList(entries)
	first := strings.Index(out, "2027")
	second := strings.Index(out, "01.02.2025")
	if first < 0 || second < 0 || first > second {
		t.Fatalf("backend order not preserved:\n%s", out)
	}
	if !strings.Contains(out, "10 января 2026 → 10 января 2027") {
		t.Fatalf("expected old→new transition, got:\n%s", out)
	}
}

func TestHistoryListEmptyState(t *testing.T) {
	out := HistoryList(nil)
	if !strings.Contains(out, "Обновлений пока нет") {
		t.Fatalf("expected no-history message, got:\n%s", out)
	}
}

func TestLongDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2026-12-31", "31 декабря 2026"},
		{"2024-02-29", "29 февраля 2024"},
		{"2026-05-01", "1 мая 2026"},
		{"not-a-date", "not-a-date"},
	}
	for _, tc := range cases {
		if got := LongDate(tc.in); got != tc.want {
			t.Fatalf("LongDate(%q): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestSummaryBar(t *testing.T) {
	out := SummaryBar(expiry.Counts{Expired: 1, Soon: 2, Mid: 3, Active: 4}, expiry.StatusSoon)
	for _, want := range []string{
		"Истек: 1", "Истекает: 2", "30–60 дней: 3", "Активен: 4",
		`data-filter="soon"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if !strings.Contains(out, `class="stat stat-active" data-filter="soon"`) {
		t.Fatalf("active filter not highlighted:\n%s", out)
	}
}
