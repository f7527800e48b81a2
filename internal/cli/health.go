package cli

import (
	"github.com/spf13/cobra"
)

func newHealthCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Проверить доступность бэкенда",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.client().Health(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"api": app.cfg.APIURL, "status": "ok"},
			})
		},
	}
	return cmd
}
