// Package cli wires the command-line surface: the root command launches the
// interactive TUI, and the search subcommand runs a headless scan.
package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/dkotenko/xlfind/internal/config"
	"github.com/dkotenko/xlfind/internal/safeio"
	"github.com/dkotenko/xlfind/internal/scan"
	"github.com/dkotenko/xlfind/internal/ui"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates the root cobra command for xlfind.
func NewRootCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "xlfind",
		Short: "Поиск информации в Excel файлах",
		Long: `xlfind сканирует папку с Excel файлами и ищет точные совпадения
значений в заданном столбце, собирая результаты в один отчёт.

Запуск без аргументов открывает интерактивный интерфейс; команда
"search" выполняет поиск без интерфейса.`,
		Version:      Version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := newRunner(configPath)
			if err != nil {
				return err
			}
			p := tea.NewProgram(ui.NewModel(runner), tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "путь к файлу конфигурации")

	cmd.AddCommand(newSearchCommand(&configPath))

	return cmd
}

func newRunner(configPath string) (*scan.Runner, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	scratch := safeio.NewScratch(cfg.ScratchDir)
	scratch.SetMaxFileSize(cfg.MaxFileMB * 1024 * 1024)
	return &scan.Runner{
		Scratch:     scratch,
		ColumnWidth: cfg.ColumnWidth,
	}, nil
}
