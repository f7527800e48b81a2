package tui

import (
	"go.uber.org/zap"

	"doctrack-cli/internal/api"
	"doctrack-cli/internal/config"

	tea "github.com/charmbracelet/bubbletea"
)

func Run(cfg *config.Config, client *api.Client, log *zap.Logger) error {
	applyThemePreference()
	applyColorProfilePreference()
	m := newAppModel(cfg, client, log)
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
