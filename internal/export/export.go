package export

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"doctrack-cli/internal/expiry"
	"doctrack-cli/internal/model"
	"doctrack-cli/internal/render"
)

type WriteOptions struct {
	Overwrite bool
}

type WriteResult struct {
	Written string `json:"written"`
}

// RenderReportMarkdown renders the full document list as a Markdown
// report grouped by status, most urgent group first. Order inside a
// group is the backend order.
func RenderReportMarkdown(docs []model.Document, now time.Time) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	writeLn("# Документы")
	writeLn("")
	writeLn("Отчет от " + now.Format("2006-01-02"))
	writeLn("")

	counts := expiry.Count(docs, now)
	writeLn(fmt.Sprintf("Всего: %d. Истекло: %d, истекает: %d, в пределах 30–60 дней: %d, активно: %d.",
		len(docs), counts.Expired, counts.Soon, counts.Mid, counts.Active))

	groups := []expiry.Status{
		expiry.StatusExpired,
		expiry.StatusSoon,
		expiry.StatusMid,
		expiry.StatusActive,
	}
	for _, status := range groups {
		var rows []string
		for _, d := range docs {
			if expiry.Classify(d.ExpiryDate, now) != status {
				continue
			}
			row := fmt.Sprintf("- %s (%s), %s", strings.TrimSpace(d.Title),
				strings.TrimSpace(d.DocType), render.LongDate(d.ExpiryDate))
			if days, err := expiry.DaysUntil(d.ExpiryDate, now); err == nil {
				switch {
				case days < 0:
					row += fmt.Sprintf(" [просрочен на %d дн.]", -days)
				case days == 0:
					row += " [истекает сегодня]"
				default:
					row += fmt.Sprintf(" [осталось %d дн.]", days)
				}
			}
			rows = append(rows, row)
		}
		if len(rows) == 0 {
			continue
		}
		writeLn("")
		writeLn("## " + render.StatusLabel(status))
		writeLn("")
		for _, r := range rows {
			writeLn(r)
		}
	}

	return buf.String()
}

// WriteReport writes the report to path. Existing files are not
// overwritten unless opted in.
func WriteReport(docs []model.Document, path string, now time.Time, opt WriteOptions) (WriteResult, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return WriteResult{}, errors.New("missing --to")
	}
	path = filepath.Clean(path)

	if !opt.Overwrite {
		if _, err := os.Stat(path); err == nil {
			return WriteResult{}, fmt.Errorf("file exists (use --overwrite): %s", path)
		}
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return WriteResult{}, err
		}
	}

	md := RenderReportMarkdown(docs, now)
	if err := os.WriteFile(path, []byte(md), 0o644); err != nil {
		return WriteResult{}, err
	}
	return WriteResult{Written: path}, nil
}
