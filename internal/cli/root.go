package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"doctrack-cli/internal/api"
	"doctrack-cli/internal/config"
	"doctrack-cli/internal/format"
	"doctrack-cli/internal/logging"
	"doctrack-cli/internal/tui"
)

type App struct {
	APIURL     string
	Timeout    time.Duration
	PrettyJSON bool
	Format     string

	cfg *config.Config
	log *zap.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "doctrack",
		Short:        "Контроль сроков документов (CLI + TUI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Интерактивный TUI
  doctrack

  # Команды для скриптов
  doctrack documents list --filter soon
  doctrack documents add "Загранпаспорт" --type Паспорт --expires 2027-06-01
  doctrack reminders send --days 14 --mode webhook

  # Локальный веб-просмотр
  doctrack web --addr 127.0.0.1:8080
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		// Flags win over environment.
		if app.APIURL != "" {
			cfg.APIURL = strings.TrimRight(app.APIURL, "/")
		}
		if cmd.Flags().Changed("timeout") {
			cfg.Timeout = app.Timeout
		}
		log, err := logging.New(cfg.Log)
		if err != nil {
			return fmt.Errorf("init logging: %w", err)
		}
		app.cfg = cfg
		app.log = log
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.APIURL, "api", envOr("DOCTRACK_API_URL", ""), "Базовый URL бэкенда (по умолчанию http://127.0.0.1:8000)")
	cmd.PersistentFlags().DurationVar(&app.Timeout, "timeout", 0, "Таймаут запроса (0 = без таймаута)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Форматированный JSON")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("DOCTRACK_FORMAT", "json"), "Формат вывода (json)")

	cmd.AddCommand(newDocumentsCmd(app))
	cmd.AddCommand(newRemindersCmd(app))
	cmd.AddCommand(newHealthCmd(app))
	cmd.AddCommand(newWebCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

func runTUI(app *App) error {
	return tui.Run(app.cfg, app.client(), app.log)
}

func (app *App) client() *api.Client {
	return api.New(app.cfg.APIURL,
		api.WithTimeout(app.cfg.Timeout),
		api.WithLogger(app.log),
	)
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
