package cli

import (
	"github.com/spf13/cobra"

	"doctrack-cli/internal/web"
)

func newWebCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "web",
		Short: "Локальный веб-просмотр списка документов (только чтение)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = app.cfg.Web.Addr
			}
			srv, err := web.NewServer(web.Config{
				Addr:   addr,
				Client: app.client(),
				Log:    app.log,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			cmd.Printf("Веб-просмотр: http://%s (бэкенд %s)\n", addr, app.cfg.APIURL)
			return srv.ListenAndServe()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "Адрес для прослушивания")
	return cmd
}
