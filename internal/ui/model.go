// Package ui is the interactive front-end: a form collecting the search
// request, a running view fed by the scan's progress and status
// notifications, and a final view with the terminal message.
package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dkotenko/xlfind/internal/scan"
	"github.com/dkotenko/xlfind/internal/types"
)

type state int

const (
	stateForm state = iota
	stateRunning
	stateDone
)

const (
	focusTerms = iota
	focusDir
	focusOutput
	focusColumn
	focusColumns
	focusSheets
	focusSheetNames
	focusCount
)

type progressMsg int

type statusMsg string

type finishedMsg scan.Result

type Model struct {
	state      state
	runner     *scan.Runner
	terms      textarea.Model
	dir        textinput.Model
	output     textinput.Model
	column     textinput.Model
	columns    textinput.Model
	sheetNames textinput.Model
	sheetMode  types.SheetMode
	focus      int
	formErr    string

	progress   progress.Model
	status     string
	cancelling bool
	cancel     context.CancelFunc
	events     chan tea.Msg

	result scan.Result
	width  int
	height int
}

func NewModel(runner *scan.Runner) Model {
	terms := textarea.New()
	terms.Placeholder = "Введите значения для поиска (каждое значение с новой строки)"
	terms.SetHeight(6)
	terms.Focus()

	newInput := func(placeholder string) textinput.Model {
		in := textinput.New()
		in.Placeholder = placeholder
		return in
	}

	column := newInput("2")
	column.SetValue("1")

	return Model{
		state:      stateForm,
		runner:     runner,
		terms:      terms,
		dir:        newInput("/путь/к/папке/с/файлами"),
		output:     newInput("/путь/к/Результат_поиска.xlsx"),
		column:     column,
		columns:    newInput("Например: 1,3,5"),
		sheetNames: newInput("Например: Таблица,Данные"),
		progress:   progress.New(progress.WithGradient("#34D399", "#A7F3D0")),
	}
}

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 10
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case stateForm:
			return m.updateForm(msg)

		case stateRunning:
			switch msg.String() {
			case "esc":
				if m.cancel != nil && !m.cancelling {
					m.cancelling = true
					m.status = "Остановка поиска..."
					m.cancel()
				}
				return m, nil
			case "ctrl+c":
				if m.cancel != nil {
					m.cancel()
				}
				return m, tea.Quit
			}
			return m, nil

		case stateDone:
			switch msg.String() {
			case "ctrl+c", "q", "enter", "esc":
				return m, tea.Quit
			}
			return m, nil
		}

	case progressMsg:
		if m.state == stateRunning {
			cmd := m.progress.SetPercent(float64(msg) / 100)
			return m, tea.Batch(cmd, waitForEvent(m.events))
		}
		return m, nil

	case statusMsg:
		m.status = string(msg)
		return m, waitForEvent(m.events)

	case finishedMsg:
		m.result = scan.Result(msg)
		m.state = stateDone
		if m.cancel != nil {
			m.cancel()
			m.cancel = nil
		}
		return m, nil

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd
	}

	return m.updateInputs(msg)
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "tab", "shift+tab":
		m.formErr = ""
		step := 1
		if msg.String() == "shift+tab" {
			step = focusCount - 1
		}
		m.focus = (m.focus + step) % focusCount
		// The names input only participates when explicit names are chosen.
		if m.focus == focusSheetNames && m.sheetMode != types.SheetsNamed {
			m.focus = (m.focus + step) % focusCount
		}
		return m.applyFocus()
	case "left", "right":
		if m.focus == focusSheets {
			if msg.String() == "right" {
				m.sheetMode = (m.sheetMode + 1) % 3
			} else {
				m.sheetMode = (m.sheetMode + 2) % 3
			}
			return m, nil
		}
	case "ctrl+s":
		req, err := m.buildRequest()
		if err != nil {
			m.formErr = err.Error()
			return m, nil
		}
		return m.startScan(req)
	}
	return m.updateInputs(msg)
}

func (m Model) applyFocus() (tea.Model, tea.Cmd) {
	m.terms.Blur()
	for _, in := range []*textinput.Model{&m.dir, &m.output, &m.column, &m.columns, &m.sheetNames} {
		in.Blur()
	}

	switch m.focus {
	case focusTerms:
		return m, m.terms.Focus()
	case focusDir:
		return m, m.dir.Focus()
	case focusOutput:
		return m, m.output.Focus()
	case focusColumn:
		return m, m.column.Focus()
	case focusColumns:
		return m, m.columns.Focus()
	case focusSheetNames:
		return m, m.sheetNames.Focus()
	}
	return m, nil
}

func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	m.terms, cmd = m.terms.Update(msg)
	cmds = append(cmds, cmd)
	m.dir, cmd = m.dir.Update(msg)
	cmds = append(cmds, cmd)
	m.output, cmd = m.output.Update(msg)
	cmds = append(cmds, cmd)
	m.column, cmd = m.column.Update(msg)
	cmds = append(cmds, cmd)
	m.columns, cmd = m.columns.Update(msg)
	cmds = append(cmds, cmd)
	m.sheetNames, cmd = m.sheetNames.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m Model) buildRequest() (types.SearchRequest, error) {
	var req types.SearchRequest

	req.Terms = types.ParseTerms(m.terms.Value())
	if len(req.Terms) == 0 {
		return req, fmt.Errorf("введите хотя бы одно значение для поиска")
	}

	req.Dir = strings.TrimSpace(m.dir.Value())
	if req.Dir == "" {
		return req, fmt.Errorf("выберите директорию с Excel файлами")
	}

	req.OutputPath = strings.TrimSpace(m.output.Value())
	if req.OutputPath == "" {
		return req, fmt.Errorf("выберите место сохранения результатов")
	}
	if !strings.HasSuffix(strings.ToLower(req.OutputPath), ".xlsx") {
		req.OutputPath += ".xlsx"
	}

	column, err := strconv.Atoi(strings.TrimSpace(m.column.Value()))
	if err != nil || column < 1 {
		return req, fmt.Errorf("номер столбца должен быть положительным числом")
	}
	req.SearchColumn = column

	req.OutputColumns = types.ParseColumns(m.columns.Value())
	if len(req.OutputColumns) == 0 {
		return req, fmt.Errorf("введите хотя бы один номер столбца для копирования")
	}

	req.Sheets = types.SheetPolicy{Mode: m.sheetMode}
	if m.sheetMode == types.SheetsNamed {
		req.Sheets.Names = types.ParseSheetNames(m.sheetNames.Value())
		if len(req.Sheets.Names) == 0 {
			req.Sheets.Mode = types.SheetsFirst
		}
	}

	return req, nil
}

// startScan launches the scan on its own goroutine and bridges the engine's
// callbacks onto a buffered event channel with non-blocking sends, so a
// chatty scan never stalls on the renderer.
func (m Model) startScan(req types.SearchRequest) (tea.Model, tea.Cmd) {
	ctx, cancel := context.WithCancel(context.Background())
	events := make(chan tea.Msg, 128)

	m.state = stateRunning
	m.cancel = cancel
	m.cancelling = false
	m.events = events
	m.status = "Поиск Excel файлов..."

	runner := m.runner
	go func() {
		res := runner.Run(ctx, req, scan.Callbacks{
			Progress: func(p int) {
				select {
				case events <- progressMsg(p):
				default:
				}
			},
			Status: func(s string) {
				select {
				case events <- statusMsg(s):
				default:
				}
			},
		})
		events <- finishedMsg(res)
		close(events)
	}()

	return m, tea.Batch(waitForEvent(events), m.progress.Init())
}

func waitForEvent(events chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		if events == nil {
			return nil
		}
		msg, ok := <-events
		if !ok {
			return nil
		}
		return msg
	}
}

func (m Model) View() string {
	switch m.state {
	case stateForm:
		return m.viewForm()
	case stateRunning:
		return m.viewRunning()
	case stateDone:
		return m.viewDone()
	}
	return ""
}

func (m Model) viewForm() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("xlfind — поиск информации в Excel файлах"))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render("Заполните поля и нажмите ctrl+s"))
	s.WriteString("\n\n")

	label := func(focus int, text string) string {
		if m.focus == focus {
			return FocusedLabelStyle.Render("> " + text)
		}
		return LabelStyle.Render("  " + text)
	}

	s.WriteString(label(focusTerms, "Значения для поиска"))
	s.WriteString("\n")
	s.WriteString(m.terms.View())
	s.WriteString("\n\n")

	s.WriteString(label(focusDir, "Папка с Excel файлами"))
	s.WriteString("\n")
	s.WriteString(m.dir.View())
	s.WriteString("\n")

	s.WriteString(label(focusOutput, "Файл результатов"))
	s.WriteString("\n")
	s.WriteString(m.output.View())
	s.WriteString("\n")

	s.WriteString(label(focusColumn, "Столбец для поиска"))
	s.WriteString("\n")
	s.WriteString(m.column.View())
	s.WriteString("\n")

	s.WriteString(label(focusColumns, "Номера столбцов для копирования (через запятую)"))
	s.WriteString("\n")
	s.WriteString(m.columns.View())
	s.WriteString("\n")

	s.WriteString(label(focusSheets, "Листы для поиска"))
	s.WriteString("\n")
	s.WriteString("  " + m.viewSheetModes())
	s.WriteString("\n")
	if m.sheetMode == types.SheetsNamed {
		s.WriteString(m.sheetNames.View())
		s.WriteString("\n")
	}

	if m.formErr != "" {
		s.WriteString("\n")
		s.WriteString(ErrorStyle.Render("Ошибка: " + m.formErr))
		s.WriteString("\n")
	}

	s.WriteString(HelpStyle.Render("tab: следующее поле • ←/→: режим листов • ctrl+s: начать поиск • ctrl+c: выход"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewSheetModes() string {
	modes := []struct {
		mode types.SheetMode
		name string
	}{
		{types.SheetsFirst, "Первый лист"},
		{types.SheetsAll, "Все листы"},
		{types.SheetsNamed, "Указать листы"},
	}

	parts := make([]string, 0, len(modes))
	for _, mode := range modes {
		text := "( ) " + mode.name
		if m.sheetMode == mode.mode {
			text = ModeSelectedStyle.Render("(•) " + mode.name)
		} else {
			text = ModeStyle.Render(text)
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "   ")
}

func (m Model) viewRunning() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("Выполняется поиск..."))
	s.WriteString("\n\n")
	s.WriteString(m.progress.View())
	s.WriteString("\n\n")
	s.WriteString(StatusStyle.Render(m.status))
	s.WriteString("\n")
	s.WriteString(HelpStyle.Render("esc: остановить поиск"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewDone() string {
	var s strings.Builder

	if m.result.Success {
		s.WriteString(SuccessStyle.Render("Поиск завершен"))
	} else {
		s.WriteString(ErrorStyle.Render("Ошибка"))
	}
	s.WriteString("\n\n")
	s.WriteString(m.result.Message)
	s.WriteString("\n")
	s.WriteString(HelpStyle.Render("Нажмите q для выхода"))

	return BoxStyle.Render(s.String())
}
