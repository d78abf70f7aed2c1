package model

// Task is an individual to-do item.
// ID is the stable identity used by toggle/delete; it is assigned once and
// never reused, even after the task is deleted.
type Task struct {
	ID          int
	Title       string
	Description string
	Completed   bool
}
