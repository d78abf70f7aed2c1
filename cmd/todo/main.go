package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"todo-simple/app"
	"todo-simple/store"
	"todo-simple/tui"
)

func main() {
	st := store.New(store.DefaultPath())
	res := st.Load()

	svc := app.NewService(res.Tasks)
	mgr := app.NewManager(svc, st)

	m := tui.NewModel(mgr, startupStatus(res))
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintln(os.Stderr, "todo-simple:", err)
		os.Exit(1)
	}
}

// startupStatus turns load diagnostics into the first status line. Load never
// blocks startup; a bad file just degrades to an empty list with a note.
func startupStatus(res store.LoadResult) string {
	switch {
	case res.Err != nil:
		return "Could not read saved tasks, starting empty: " + res.Err.Error()
	case res.Missing:
		return "Welcome. Press 'a' to add your first task."
	case res.Skipped > 0:
		return fmt.Sprintf("Loaded %d tasks (%d corrupt lines skipped)", len(res.Tasks), res.Skipped)
	default:
		return ""
	}
}
