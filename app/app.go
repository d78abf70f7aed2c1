package app

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"todo-simple/model"
	"todo-simple/store"
)

var ErrEmptyTitle = errors.New("title must not be empty")

// Service owns the authoritative in-memory task collection. It assigns
// identities and keeps the collection in its canonical order: incomplete
// tasks first, then completed, newest (highest id) first within each group.
type Service struct {
	tasks  []model.Task
	nextID int
}

// NewService creates a service seeded with the given tasks, typically a
// store's load output. nextID starts above the highest id ever persisted,
// so deleted ids are never handed out again.
func NewService(initial []model.Task) *Service {
	tasks := make([]model.Task, len(initial))
	copy(tasks, initial)
	s := &Service{tasks: tasks, nextID: computeNextID(tasks)}
	s.sort()
	return s
}

// All returns the collection in canonical order as a copy. Mutation goes
// through Add/Toggle/Delete only.
func (s *Service) All() []model.Task {
	out := make([]model.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Add creates a task with the next id and inserts it. Both fields are
// trimmed. Title emptiness is not checked here; that is the boundary's job
// (see Manager.Create).
func (s *Service) Add(title, description string) model.Task {
	t := model.Task{
		ID:          s.nextID,
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Completed:   false,
	}
	s.nextID++
	s.tasks = append(s.tasks, t)
	s.sort()
	return t
}

// Toggle sets the completed flag of the task with the given id. It reports
// whether such a task exists; an unknown id leaves the collection untouched.
func (s *Service) Toggle(id int, value bool) bool {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks[i].Completed = value
			s.sort()
			return true
		}
	}
	return false
}

// Delete removes the task with the given id, reporting whether a removal
// happened.
func (s *Service) Delete(id int) bool {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			s.sort()
			return true
		}
	}
	return false
}

// sort re-establishes the canonical order. The order is derived state,
// recomputed after every mutation.
func (s *Service) sort() {
	sort.SliceStable(s.tasks, func(i, j int) bool {
		a, b := s.tasks[i], s.tasks[j]
		if a.Completed != b.Completed {
			return !a.Completed
		}
		return a.ID > b.ID
	})
}

func computeNextID(tasks []model.Task) int {
	max := 0
	for _, t := range tasks {
		if t.ID > max {
			max = t.ID
		}
	}
	return max + 1
}

// Manager is the boundary the presentation layer talks to. It binds the
// service to its store: every mutation is followed by a full save of the
// freshly ordered collection.
//
// A failed save is returned as a warning. The in-memory mutation stands —
// the caller reports the warning and a later mutation retries the save.
type Manager struct {
	svc *Service
	st  *store.Store
}

// NewManager wires a service to its store.
func NewManager(svc *Service, st *store.Store) *Manager {
	return &Manager{svc: svc, st: st}
}

// List returns the current collection in canonical order.
func (m *Manager) List() []model.Task {
	return m.svc.All()
}

// Create adds a task and flushes. Empty or whitespace-only titles are
// rejected with ErrEmptyTitle before the core is touched.
func (m *Manager) Create(title, description string) (model.Task, error) {
	if strings.TrimSpace(title) == "" {
		return model.Task{}, ErrEmptyTitle
	}
	t := m.svc.Add(title, description)
	return t, m.flush()
}

// SetCompleted toggles a task and flushes. The bool reports whether the id
// exists; a false result is a no-op, not an error.
func (m *Manager) SetCompleted(id int, value bool) (bool, error) {
	if !m.svc.Toggle(id, value) {
		return false, nil
	}
	return true, m.flush()
}

// Remove deletes a task and flushes. The bool reports whether anything was
// removed.
func (m *Manager) Remove(id int) (bool, error) {
	if !m.svc.Delete(id) {
		return false, nil
	}
	return true, m.flush()
}

func (m *Manager) flush() error {
	if err := m.st.Save(m.svc.All()); err != nil {
		return fmt.Errorf("save %s: %w", m.st.Path(), err)
	}
	return nil
}
