package tui

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"todo-simple/app"
	"todo-simple/model"
)

type uiMode int

const (
	modeNormal uiMode = iota
	modeAddTitle
	modeAddDesc
	modeConfirmDelete
)

type Model struct {
	mgr *app.Manager

	mode   uiMode
	cursor int
	input  string

	// pendingTitle holds the title between the two add steps.
	pendingTitle string

	confirmID    int
	confirmTitle string

	showHelp bool

	status    string
	statusErr bool

	width  int
	height int
}

func NewModel(mgr *app.Manager, startupStatus string) *Model {
	status := strings.TrimSpace(startupStatus)
	if status == "" {
		status = "Ready"
	}
	m := &Model{
		mgr:    mgr,
		mode:   modeNormal,
		status: status,
	}
	m.ensureSelection()
	return m
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tea.KeyMsg:
		switch m.mode {
		case modeAddTitle, modeAddDesc:
			m.updateInputMode(msg)
		case modeConfirmDelete:
			m.updateConfirmMode(msg)
		default:
			if quit := m.updateNormalMode(msg); quit {
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m *Model) updateNormalMode(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "ctrl+c", "q":
		return true
	case "j", "down":
		m.moveCursor(1)
	case "k", "up":
		m.moveCursor(-1)
	case "a":
		m.mode = modeAddTitle
		m.input = ""
		m.pendingTitle = ""
	case "x", "enter", " ":
		m.toggleSelected()
	case "d":
		m.startDeleteConfirm()
	case "y":
		m.copyOpenTasks()
	case "?":
		m.showHelp = !m.showHelp
		if m.showHelp {
			m.setStatus("Shortcuts open (press ? or Esc to close)", false)
		} else {
			m.setStatus("Shortcuts hidden", false)
		}
	case "esc":
		if m.showHelp {
			m.showHelp = false
			m.setStatus("Shortcuts hidden", false)
		}
	}

	m.ensureSelection()
	return false
}

func (m *Model) updateInputMode(msg tea.KeyMsg) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.mode = modeNormal
		m.input = ""
		m.pendingTitle = ""
		m.setStatus("Cancelled", false)
		return
	case "enter":
		m.applyInput()
		return
	}

	switch msg.Type {
	case tea.KeyBackspace, tea.KeyCtrlH:
		m.input = trimLastRune(m.input)
	case tea.KeySpace:
		m.input += " "
	case tea.KeyRunes:
		m.input += string(msg.Runes)
	}
}

func (m *Model) updateConfirmMode(msg tea.KeyMsg) {
	switch strings.ToLower(msg.String()) {
	case "y":
		m.confirmDelete()
	case "n", "esc", "enter":
		m.confirmID = 0
		m.confirmTitle = ""
		m.mode = modeNormal
		m.setStatus("Action cancelled", false)
	}
}

func (m *Model) applyInput() {
	text := strings.TrimSpace(m.input)
	switch m.mode {
	case modeAddTitle:
		if text == "" {
			m.setStatus("Title is required", true)
			return
		}
		m.pendingTitle = text
		m.mode = modeAddDesc
		m.input = ""
	case modeAddDesc:
		task, err := m.mgr.Create(m.pendingTitle, m.input)
		m.mode = modeNormal
		m.input = ""
		m.pendingTitle = ""
		if err != nil {
			m.warnAfterMutation("Task added", err)
		} else {
			m.setStatus("Task added", false)
		}
		m.cursor = m.indexOfTask(task.ID)
		m.ensureSelection()
	}
}

func (m *Model) moveCursor(delta int) {
	tasks := m.mgr.List()
	if len(tasks) == 0 {
		return
	}
	m.cursor = clamp(m.cursor+delta, 0, len(tasks)-1)
}

func (m *Model) toggleSelected() {
	task, ok := m.selectedTask()
	if !ok {
		m.setStatus("No task selected", true)
		return
	}
	found, err := m.mgr.SetCompleted(task.ID, !task.Completed)
	if !found {
		m.setStatus("Task no longer exists", true)
		return
	}
	// The toggled task moved within the order; follow it.
	m.cursor = m.indexOfTask(task.ID)
	m.ensureSelection()
	success := "Task completed"
	if task.Completed {
		success = "Task reopened"
	}
	if err != nil {
		m.warnAfterMutation(success, err)
		return
	}
	m.setStatus(success, false)
}

func (m *Model) startDeleteConfirm() {
	task, ok := m.selectedTask()
	if !ok {
		m.setStatus("No task selected", true)
		return
	}
	m.mode = modeConfirmDelete
	m.confirmID = task.ID
	m.confirmTitle = task.Title
}

func (m *Model) confirmDelete() {
	found, err := m.mgr.Remove(m.confirmID)
	m.mode = modeNormal
	m.confirmID = 0
	m.confirmTitle = ""
	if !found {
		m.setStatus("Task no longer exists", true)
		return
	}
	if err != nil {
		m.warnAfterMutation("Task deleted", err)
	} else {
		m.setStatus("Task deleted", false)
	}
	m.ensureSelection()
}

func (m *Model) copyOpenTasks() {
	tasks := m.mgr.List()
	parts := make([]string, 0, len(tasks))
	for _, t := range tasks {
		if t.Completed {
			continue
		}
		parts = append(parts, "- "+t.Title)
	}
	if len(parts) == 0 {
		m.setStatus("No open tasks to copy", false)
		return
	}
	if err := copyToClipboard(strings.Join(parts, "\n")); err != nil {
		m.setStatus("Copy failed: "+err.Error(), true)
		return
	}
	m.setStatus(fmt.Sprintf("%d open tasks copied to clipboard", len(parts)), false)
}

// warnAfterMutation reports a save failure without hiding that the mutation
// itself went through. The next mutation retries the save.
func (m *Model) warnAfterMutation(success string, err error) {
	m.setStatus(success+", but saving to disk failed: "+err.Error(), true)
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

func (m *Model) ensureSelection() {
	tasks := m.mgr.List()
	if len(tasks) == 0 {
		m.cursor = 0
		return
	}
	m.cursor = clamp(m.cursor, 0, len(tasks)-1)
}

func (m *Model) selectedTask() (model.Task, bool) {
	tasks := m.mgr.List()
	if len(tasks) == 0 {
		return model.Task{}, false
	}
	if m.cursor < 0 || m.cursor >= len(tasks) {
		m.cursor = 0
	}
	return tasks[m.cursor], true
}

func (m *Model) indexOfTask(id int) int {
	tasks := m.mgr.List()
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	if len(tasks) == 0 {
		return 0
	}
	return len(tasks) - 1
}

func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "loading..."
	}

	tasks := m.mgr.List()
	open := 0
	for _, t := range tasks {
		if !t.Completed {
			open++
		}
	}

	title := lipgloss.NewStyle().Bold(true).Render("todo-simple")
	summary := fmt.Sprintf("%d open • %d done", open, len(tasks)-open)
	header := lipgloss.JoinHorizontal(lipgloss.Left,
		title,
		lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("  "+summary),
	)

	viewW := m.viewportWidth()
	panelH := m.height - 5
	if panelH < 8 {
		panelH = 8
	}
	innerH := panelH - 2
	if innerH < 6 {
		innerH = 6
	}
	innerW := viewW - 2
	if innerW < 20 {
		innerW = viewW
	}

	frameColor := lipgloss.Color("240")
	if m.mode == modeNormal {
		frameColor = lipgloss.Color("39")
	}
	panel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(frameColor).
		Width(viewW - 2).
		Height(panelH).
		Render(m.renderTasks(innerW, innerH))

	if m.showHelp {
		popupW := viewW - 8
		if popupW > 72 {
			popupW = 72
		}
		if popupW < 40 {
			popupW = 40
		}
		panel = lipgloss.Place(viewW, panelH, lipgloss.Center, lipgloss.Center, m.renderHelpOverlay(popupW))
	}

	statusText := m.status
	if statusText == "" {
		statusText = "Ready"
	}
	statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("70"))
	if m.statusErr {
		statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	}
	rightHint := "? shortcuts"
	if m.showHelp {
		rightHint = "Esc/? close shortcuts"
	}
	footer := m.renderFooter(statusText, statusStyle, rightHint)

	promptLine := ""
	switch m.mode {
	case modeAddTitle:
		promptLine = "Title: " + m.input + "▌"
	case modeAddDesc:
		promptLine = "Description (optional): " + m.input + "▌"
	case modeConfirmDelete:
		promptLine = fmt.Sprintf("Delete \"%s\"? [y/N]", m.confirmTitle)
	}
	if promptLine != "" {
		promptLine = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Width(viewW).Render(promptLine)
	}

	parts := []string{header, panel, footer}
	if promptLine != "" && !m.showHelp {
		parts = append(parts, promptLine)
	}
	return strings.Join(parts, "\n")
}

func (m *Model) renderTasks(width, height int) string {
	tasks := m.mgr.List()

	lines := make([]string, 0, len(tasks)+1)
	lines = append(lines, lipgloss.NewStyle().Bold(true).Render("Tasks"))

	if len(tasks) == 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Render("No tasks. Press 'a' to add the first one."))
	} else {
		for i, t := range tasks {
			cursor := " "
			if i == m.cursor {
				cursor = "▸"
			}
			check := "[ ]"
			if t.Completed {
				check = "[x]"
			}

			cursorStyle := lipgloss.NewStyle()
			checkStyle := lipgloss.NewStyle()
			textStyle := lipgloss.NewStyle()
			descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))

			// Faint instead of strikethrough: strikethrough over already
			// styled segments glitches in some terminals.
			if t.Completed {
				textStyle = textStyle.Faint(true)
				descStyle = descStyle.Faint(true)
			}
			if i == m.cursor {
				cursorStyle = cursorStyle.Bold(true).Foreground(lipgloss.Color("229"))
				checkStyle = checkStyle.Bold(true).Foreground(lipgloss.Color("229"))
				textStyle = textStyle.Bold(true).Foreground(lipgloss.Color("229"))
			}

			text := truncateRunes(t.Title, width-8)
			line := lipgloss.JoinHorizontal(lipgloss.Left,
				cursorStyle.Render(cursor+" "),
				checkStyle.Render(check+" "),
				textStyle.Render(text),
			)
			if t.Description != "" {
				avail := width - 8 - utf8.RuneCountInString(text)
				if avail > 8 {
					line = lipgloss.JoinHorizontal(lipgloss.Left, line, descStyle.Render("  "+truncateRunes(t.Description, avail)))
				}
			}
			lines = append(lines, line)
		}
	}

	return lipgloss.NewStyle().Width(width).Height(height).Render(strings.Join(lines, "\n"))
}

func (m *Model) renderHelpOverlay(width int) string {
	title := lipgloss.NewStyle().Bold(true).Render("Shortcuts")
	line := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))

	rows := []string{
		title,
		"",
		line.Render("  j/k navigate • q quit"),
		line.Render("  a add task • x/Enter complete/reopen • d delete"),
		line.Render("  y copy open tasks • ? open/close shortcuts"),
	}

	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("244")).
		Padding(1, 2)

	return style.Width(width).Render(strings.Join(rows, "\n"))
}

func (m *Model) renderFooter(statusText string, statusStyle lipgloss.Style, rightHint string) string {
	left := strings.TrimSpace(statusText)
	right := strings.TrimSpace(rightHint)
	if left == "" {
		left = "Ready"
	}
	if right == "" {
		right = "? shortcuts"
	}

	leftW := utf8.RuneCountInString(left)
	rightW := utf8.RuneCountInString(right)
	width := m.viewportWidth()
	if width <= 0 {
		width = leftW + rightW + 2
	}

	if leftW+rightW+1 > width {
		maxLeft := width - rightW - 1
		if maxLeft < 8 {
			maxLeft = 8
		}
		left = truncateRunes(left, maxLeft)
		leftW = utf8.RuneCountInString(left)
	}

	padding := width - leftW - rightW
	if padding < 1 {
		padding = 1
	}

	rightStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	line := statusStyle.Render(left) + strings.Repeat(" ", padding) + rightStyle.Render(right)
	return lipgloss.NewStyle().Width(width).Render(line)
}

func (m *Model) viewportWidth() int {
	if m.width <= 0 {
		return 1
	}
	// Reserve one column to avoid clipping the last character in some
	// terminals.
	if m.width > 1 {
		return m.width - 1
	}
	return m.width
}

func copyToClipboard(text string) error {
	candidates := []struct {
		name string
		args []string
	}{
		{name: "wl-copy", args: []string{"--type", "text/plain"}},
		{name: "xclip", args: []string{"-in", "-selection", "clipboard"}},
		{name: "xsel", args: []string{"--clipboard", "--input"}},
		{name: "pbcopy"},
	}

	for _, c := range candidates {
		if _, err := exec.LookPath(c.name); err != nil {
			continue
		}
		// Run detached so a stuck clipboard helper never blocks the UI.
		go runClipboardCommand(c.name, c.args, text)
		return nil
	}
	return fmt.Errorf("no clipboard command available (install wl-copy or xclip)")
}

func runClipboardCommand(name string, args []string, text string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = strings.NewReader(text)
	_ = cmd.Run()
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	if max <= 1 {
		return "…"
	}
	r := []rune(s)
	return string(r[:max-1]) + "…"
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func trimLastRune(s string) string {
	if s == "" {
		return s
	}
	_, size := utf8.DecodeLastRuneInString(s)
	return s[:len(s)-size]
}
