package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"doctrack-cli/internal/api"
	"doctrack-cli/internal/model"
)

// Messages delivered back into Update by async commands. Every mutation
// reports via opDoneMsg/opErrMsg and is followed by a reload, so the
// visible list always reflects the backend rather than a local patch.
type (
	documentsLoadedMsg struct {
		docs []model.Document
	}
	loadFailedMsg struct {
		err error
	}
	opDoneMsg struct {
		toast string
	}
	opErrMsg struct {
		err error
	}
	historyLoadedMsg struct {
		docID   int64
		title   string
		entries []model.HistoryEntry
	}
	reminderSentMsg struct {
		res model.ReminderResult
	}
	healthMsg struct {
		ok bool
	}
	toastExpireMsg struct {
		seq int
	}
)

const requestTimeout = 10 * time.Second

func withTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

func loadDocumentsCmd(c *api.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		docs, err := c.List(ctx)
		if err != nil {
			return loadFailedMsg{err: err}
		}
		return documentsLoadedMsg{docs: docs}
	}
}

func createDocumentCmd(c *api.Client, in model.DocumentCreate) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		doc, err := c.Create(ctx, in)
		if err != nil {
			return opErrMsg{err: err}
		}
		return opDoneMsg{toast: "Добавлено: " + doc.Title}
	}
}

func renewDocumentCmd(c *api.Client, id int64, newDate string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		doc, err := c.Renew(ctx, id, newDate)
		if err != nil {
			return opErrMsg{err: err}
		}
		return opDoneMsg{toast: "Продлено до " + doc.ExpiryDate}
	}
}

func deleteDocumentCmd(c *api.Client, id int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		alreadyDeleted, err := c.Delete(ctx, id)
		if err != nil {
			return opErrMsg{err: err}
		}
		if alreadyDeleted {
			return opDoneMsg{toast: "Документ уже был удален"}
		}
		return opDoneMsg{toast: "Документ удален"}
	}
}

func clearDocumentsCmd(c *api.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		n, err := c.DeleteAll(ctx)
		if err != nil {
			return opErrMsg{err: err}
		}
		return opDoneMsg{toast: pluralDeleted(n)}
	}
}

func loadHistoryCmd(c *api.Client, id int64, title string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		entries, err := c.History(ctx, id)
		if err != nil {
			return opErrMsg{err: err}
		}
		return historyLoadedMsg{docID: id, title: title, entries: entries}
	}
}

func sendRemindersCmd(c *api.Client, days int, mode, target string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		res, err := c.SendReminders(ctx, days, mode, target)
		if err != nil {
			return opErrMsg{err: err}
		}
		return reminderSentMsg{res: res}
	}
}

func checkHealthCmd(c *api.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		return healthMsg{ok: c.Health(ctx) == nil}
	}
}

// pluralDeleted formats the clear-all toast with Russian plural forms.
func pluralDeleted(n int) string {
	word := "документов"
	if n%100 < 11 || n%100 > 14 {
		switch n % 10 {
		case 1:
			word = "документ"
		case 2, 3, 4:
			word = "документа"
		}
	}
	return fmt.Sprintf("Удалено %d %s", n, word)
}

func expireToastCmd(seq int) tea.Cmd {
	return tea.Tick(4*time.Second, func(time.Time) tea.Msg {
		return toastExpireMsg{seq: seq}
	})
}
