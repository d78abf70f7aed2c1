package store

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"todo-simple/model"
)

// One record per line, tab-delimited:
//
//	<id> \t <completed 0|1> \t <title> \t <description>
//
// Title and description are sanitized on write so a record can never span
// more than one line.

// Store persists the full task collection to a single flat text file.
type Store struct {
	path string
}

// New returns a store bound to the given file path.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the file the store reads and writes.
func (s *Store) Path() string {
	return s.path
}

// DefaultPath returns the fixed location under the user's home directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".todo_simple", "tasks.txt")
	}
	return filepath.Join(home, ".todo_simple", "tasks.txt")
}

// LoadResult is the outcome of a Load. Load never fails the caller: a missing
// or unreadable file degrades to an empty task list, with Missing/Err left
// for diagnostics.
type LoadResult struct {
	// Tasks in file order. Ordering is the service's job, not the store's.
	Tasks []model.Task
	// Skipped counts corrupt lines (too few fields, bad id) that were dropped.
	Skipped int
	// Missing is true when the file does not exist yet (first run).
	Missing bool
	// Err records a read failure other than absence. Tasks is empty then.
	Err error
}

// Load reads the whole file, skipping blank and corrupt lines.
func (s *Store) Load() LoadResult {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return LoadResult{Tasks: []model.Task{}, Missing: true}
		}
		return LoadResult{Tasks: []model.Task{}, Err: err}
	}
	defer f.Close()

	res := LoadResult{Tasks: []model.Task{}}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		t, ok := parseLine(line)
		if !ok {
			res.Skipped++
			continue
		}
		res.Tasks = append(res.Tasks, t)
	}
	if err := sc.Err(); err != nil {
		return LoadResult{Tasks: []model.Task{}, Err: err}
	}
	return res
}

// Save overwrites the file with one record per task, in the order given.
// The parent directory is created if absent. The write is a plain full-file
// overwrite; crash tolerance comes from Load's lenient parsing, not from
// atomic renames.
func (s *Store) Save(tasks []model.Task) error {
	if err := s.ensureDir(); err != nil {
		return err
	}

	var b strings.Builder
	for _, t := range tasks {
		completed := "0"
		if t.Completed {
			completed = "1"
		}
		fmt.Fprintf(&b, "%d\t%s\t%s\t%s\n", t.ID, completed, sanitize(t.Title), sanitize(t.Description))
	}
	return os.WriteFile(s.path, []byte(b.String()), 0o644)
}

func parseLine(line string) (model.Task, bool) {
	parts := strings.Split(line, "\t")
	if len(parts) < 4 {
		return model.Task{}, false
	}
	id, err := strconv.Atoi(parts[0])
	if err != nil {
		return model.Task{}, false
	}
	return model.Task{
		ID:          id,
		Completed:   parts[1] == "1",
		Title:       parts[2],
		Description: parts[3],
	}, true
}

func (s *Store) ensureDir() error {
	return os.MkdirAll(filepath.Dir(s.path), 0o755)
}

// sanitize keeps a record on one line: tabs and newlines in user text become
// single spaces.
func sanitize(s string) string {
	return strings.NewReplacer("\t", " ", "\n", " ", "\r", " ").Replace(s)
}
