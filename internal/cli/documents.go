package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"doctrack-cli/internal/expiry"
	"doctrack-cli/internal/export"
	"doctrack-cli/internal/model"
)

func newDocumentsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "documents",
		Aliases: []string{"docs-list", "doc"},
		Short:   "Работа с документами",
	}
	cmd.AddCommand(newDocumentsListCmd(app))
	cmd.AddCommand(newDocumentsAddCmd(app))
	cmd.AddCommand(newDocumentsRenewCmd(app))
	cmd.AddCommand(newDocumentsDeleteCmd(app))
	cmd.AddCommand(newDocumentsClearCmd(app))
	cmd.AddCommand(newDocumentsHistoryCmd(app))
	cmd.AddCommand(newDocumentsExpiringCmd(app))
	cmd.AddCommand(newDocumentsExportCmd(app))
	return cmd
}

func newDocumentsListCmd(app *App) *cobra.Command {
	var filterFlag string
	var search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Список документов с фильтром и поиском",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := expiry.ParseStatus(filterFlag)
			if err != nil {
				return writeErr(cmd, err)
			}

			docs, err := app.client().List(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}

			now := time.Now()
			filtered := expiry.Filter(docs, filter, search, now)

			type docOut struct {
				model.Document
				ComputedStatus expiry.Status `json:"computed_status"`
				DaysLeft       *int          `json:"days_left,omitempty"`
			}
			out := make([]docOut, 0, len(filtered))
			for _, d := range filtered {
				o := docOut{Document: d, ComputedStatus: expiry.Classify(d.ExpiryDate, now)}
				if days, err := expiry.DaysUntil(d.ExpiryDate, now); err == nil {
					o.DaysLeft = &days
				}
				out = append(out, o)
			}

			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"documents": out,
					"counts":    expiry.Count(docs, now),
					"filter":    filter,
					"search":    search,
				},
			})
		},
	}

	cmd.Flags().StringVar(&filterFlag, "filter", "all", "Фильтр по статусу (all|expired|soon|mid|active)")
	cmd.Flags().StringVar(&search, "search", "", "Поиск по названию и типу (без учета регистра)")
	return cmd
}

func newDocumentsAddCmd(app *App) *cobra.Command {
	var docType string
	var expires string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Добавить документ",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.TrimSpace(args[0])
			if title == "" {
				return writeErr(cmd, errEmptyField("title"))
			}
			if strings.TrimSpace(docType) == "" {
				return writeErr(cmd, errEmptyField("type"))
			}
			if !expiry.IsValidDate(expires) {
				return writeErr(cmd, errInvalidDate("expires", expires))
			}

			doc, err := app.client().Create(cmd.Context(), model.DocumentCreate{
				Title:      title,
				DocType:    strings.TrimSpace(docType),
				ExpiryDate: strings.TrimSpace(expires),
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"document": doc}})
		},
	}

	cmd.Flags().StringVar(&docType, "type", "", "Тип документа (обязательно)")
	cmd.Flags().StringVar(&expires, "expires", "", "Дата окончания ГГГГ-ММ-ДД (обязательно)")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("expires")
	return cmd
}

func newDocumentsRenewCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "renew <id> <new-date>",
		Short: "Продлить документ (бэкенд запишет историю)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseDocumentID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			newDate := strings.TrimSpace(args[1])
			if !expiry.IsValidDate(newDate) {
				return writeErr(cmd, errInvalidDate("new-date", newDate))
			}

			doc, err := app.client().Renew(cmd.Context(), id, newDate)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"document": doc}})
		},
	}
	return cmd
}

func newDocumentsDeleteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Удалить документ (с резервным маршрутом удаления)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseDocumentID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}

			alreadyDeleted, err := app.client().Delete(cmd.Context(), id)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"id": id, "deleted": true, "alreadyDeleted": alreadyDeleted},
			})
		},
	}
	return cmd
}

func newDocumentsClearCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Удалить все документы",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return writeErr(cmd, validationError{field: "clear", msg: "операция необратима, подтвердите флагом --yes"})
			}
			n, err := app.client().DeleteAll(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"deleted": n}})
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Подтвердить удаление всех документов")
	return cmd
}

func newDocumentsHistoryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history <id>",
		Short: "История продлений документа",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseDocumentID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			entries, err := app.client().History(cmd.Context(), id)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"document_id": id, "history": entries},
			})
		},
	}
	return cmd
}

func newDocumentsExpiringCmd(app *App) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "expiring",
		Short: "Документы, истекающие в ближайшие N дней",
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := app.client().ListExpiring(cmd.Context(), days)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"days": days, "documents": docs},
			})
		},
	}

	cmd.Flags().IntVar(&days, "days", 30, "Горизонт в днях (1–365)")
	return cmd
}

func newDocumentsExportCmd(app *App) *cobra.Command {
	var to string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Markdown-отчет по всем документам",
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := app.client().List(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}

			now := time.Now()
			if to == "" {
				fmt.Fprint(cmd.OutOrStdout(), export.RenderReportMarkdown(docs, now))
				return nil
			}
			res, err := export.WriteReport(docs, to, now, export.WriteOptions{Overwrite: overwrite})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": res})
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Файл отчета (по умолчанию stdout)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Перезаписать существующий файл")
	return cmd
}

func parseDocumentID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, validationError{field: "id", msg: "ожидается положительный числовой идентификатор"}
	}
	return id, nil
}
