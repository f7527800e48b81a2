package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

func newRemindersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "Напоминания по истекающим документам",
	}
	cmd.AddCommand(newRemindersSendCmd(app))
	return cmd
}

func newRemindersSendCmd(app *App) *cobra.Command {
	var days int
	var mode string
	var target string

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Отправить напоминания (email или webhook)",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Config supplies defaults; flags win when set.
			if !cmd.Flags().Changed("days") {
				days = app.cfg.Reminders.Days
			}
			if !cmd.Flags().Changed("mode") {
				mode = app.cfg.Reminders.Mode
			}
			if !cmd.Flags().Changed("target") {
				target = app.cfg.Reminders.Target
			}

			mode = strings.ToLower(strings.TrimSpace(mode))
			if mode != "email" && mode != "webhook" {
				return writeErr(cmd, validationError{field: "mode", msg: "ожидается email или webhook"})
			}
			if days < 1 || days > 365 {
				return writeErr(cmd, validationError{field: "days", msg: "ожидается значение от 1 до 365"})
			}

			res, err := app.client().SendReminders(cmd.Context(), days, mode, strings.TrimSpace(target))
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"result": res}})
		},
	}

	cmd.Flags().IntVar(&days, "days", 30, "Горизонт в днях (1–365)")
	cmd.Flags().StringVar(&mode, "mode", "email", "Канал доставки (email|webhook)")
	cmd.Flags().StringVar(&target, "target", "", "Получатель (email или URL вебхука)")
	return cmd
}
