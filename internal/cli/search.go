package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dkotenko/xlfind/internal/scan"
	"github.com/dkotenko/xlfind/internal/types"
)

// ErrSearchFailed signals a failed scan whose message was already printed;
// callers exit non-zero without repeating it.
var ErrSearchFailed = errors.New("поиск не выполнен")

func newSearchCommand(configPath *string) *cobra.Command {
	var (
		dir       string
		out       string
		column    int
		columns   string
		sheets    string
		fromStdin bool
		quiet     bool
	)

	cmd := &cobra.Command{
		Use:   "search [значения...]",
		Short: "Выполнить поиск без интерактивного интерфейса",
		Long: `Ищет значения в заданном столбце всех Excel файлов папки и
сохраняет отчёт. Значения передаются аргументами или, с флагом
--stdin, по одному на строку со стандартного ввода.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			terms := append([]string(nil), args...)
			if fromStdin {
				scanner := bufio.NewScanner(cmd.InOrStdin())
				for scanner.Scan() {
					terms = append(terms, scanner.Text())
				}
				if err := scanner.Err(); err != nil {
					return err
				}
			}
			if len(terms) == 0 {
				return fmt.Errorf("введите хотя бы одно значение для поиска")
			}

			outputColumns := types.ParseColumns(columns)
			if len(outputColumns) == 0 {
				return fmt.Errorf("введите хотя бы один номер столбца для копирования")
			}
			if column < 1 {
				return fmt.Errorf("номер столбца должен быть положительным числом")
			}

			req := types.SearchRequest{
				Terms:         terms,
				Dir:           dir,
				SearchColumn:  column,
				OutputColumns: outputColumns,
				OutputPath:    out,
				Sheets:        parseSheetPolicy(sheets),
			}

			runner, err := newRunner(*configPath)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			cb := scan.Callbacks{}
			if !quiet {
				cb.Status = func(msg string) {
					fmt.Fprintln(cmd.OutOrStdout(), msg)
				}
			}

			res := runner.Run(ctx, req, cb)
			fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			if !res.Success {
				// Message already printed; keep cobra from repeating it.
				cmd.SilenceErrors = true
				return ErrSearchFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "папка с Excel файлами")
	cmd.Flags().StringVar(&out, "out", "", "файл результатов (.xlsx)")
	cmd.Flags().IntVar(&column, "column", 1, "номер столбца для поиска (1-индексный)")
	cmd.Flags().StringVar(&columns, "columns", "", "номера столбцов для копирования, через запятую")
	cmd.Flags().StringVar(&sheets, "sheets", "first", `листы: "first", "all" или названия через запятую`)
	cmd.Flags().BoolVar(&fromStdin, "stdin", false, "читать значения со стандартного ввода")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "не выводить сообщения о ходе поиска")
	_ = cmd.MarkFlagRequired("dir")
	_ = cmd.MarkFlagRequired("out")
	_ = cmd.MarkFlagRequired("columns")

	return cmd
}

func parseSheetPolicy(flag string) types.SheetPolicy {
	switch strings.ToLower(strings.TrimSpace(flag)) {
	case "", "first":
		return types.SheetPolicy{Mode: types.SheetsFirst}
	case "all":
		return types.SheetPolicy{Mode: types.SheetsAll}
	}
	names := types.ParseSheetNames(flag)
	if len(names) == 0 {
		return types.SheetPolicy{Mode: types.SheetsFirst}
	}
	return types.SheetPolicy{Mode: types.SheetsNamed, Names: names}
}
