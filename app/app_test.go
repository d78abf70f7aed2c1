package app

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"todo-simple/model"
	"todo-simple/store"
)

func newManager(t *testing.T) (*Manager, *store.Store) {
	t.Helper()
	st := store.New(filepath.Join(t.TempDir(), "tasks.txt"))
	svc := NewService(nil)
	return NewManager(svc, st), st
}

func assertCanonicalOrder(t *testing.T, tasks []model.Task) {
	t.Helper()
	for i := 1; i < len(tasks); i++ {
		a, b := tasks[i-1], tasks[i]
		if a.Completed && !b.Completed {
			t.Fatalf("completed task %d listed before incomplete task %d", a.ID, b.ID)
		}
		if a.Completed == b.Completed && a.ID <= b.ID {
			t.Fatalf("ids not strictly descending within group: %d then %d", a.ID, b.ID)
		}
	}
}

func TestAddAssignsDistinctMonotonicIDs(t *testing.T) {
	svc := NewService(nil)

	a := svc.Add("A", "")
	b := svc.Add("B", "")
	if a.ID != 1 || b.ID != 2 {
		t.Fatalf("expected ids 1 and 2, got %d and %d", a.ID, b.ID)
	}

	if !svc.Delete(b.ID) {
		t.Fatalf("delete of existing task failed")
	}
	c := svc.Add("C", "")
	if c.ID != 3 {
		t.Fatalf("deleted id must not be reused, got %d", c.ID)
	}
}

func TestNextIDDerivedFromLoadedTasks(t *testing.T) {
	svc := NewService([]model.Task{
		{ID: 3, Title: "old"},
		{ID: 7, Title: "older", Completed: true},
	})

	got := svc.Add("new", "")
	if got.ID != 8 {
		t.Fatalf("expected next id 8 (1+max), got %d", got.ID)
	}
}

func TestOrderingInvariantAfterMutations(t *testing.T) {
	svc := NewService(nil)
	for _, title := range []string{"A", "B", "C", "D", "E"} {
		svc.Add(title, "")
	}
	svc.Toggle(2, true)
	svc.Toggle(5, true)
	svc.Delete(3)
	svc.Toggle(2, false)
	svc.Toggle(4, true)

	all := svc.All()
	if len(all) != 4 {
		t.Fatalf("expected 4 tasks, got %d", len(all))
	}
	assertCanonicalOrder(t, all)
}

func TestAddTrimsAndSortsToFront(t *testing.T) {
	svc := NewService(nil)
	svc.Add("First", "")
	got := svc.Add("  Second  ", "  note  ")

	if got.Title != "Second" || got.Description != "note" {
		t.Fatalf("expected trimmed fields, got %+v", got)
	}
	all := svc.All()
	if all[0].ID != got.ID {
		t.Fatalf("new task must sort to the front, got order %+v", all)
	}
}

func TestToggleIsIdempotent(t *testing.T) {
	svc := NewService(nil)
	task := svc.Add("A", "")

	for i := 0; i < 2; i++ {
		if !svc.Toggle(task.ID, true) {
			t.Fatalf("toggle #%d returned false", i+1)
		}
		if !svc.All()[0].Completed {
			t.Fatalf("expected completed=true after toggle #%d", i+1)
		}
	}
}

func TestToggleUnknownIDIsNoOp(t *testing.T) {
	svc := NewService(nil)
	svc.Add("A", "")
	before := svc.All()

	if svc.Toggle(9999, true) {
		t.Fatalf("toggle of unknown id must return false")
	}
	if !reflect.DeepEqual(before, svc.All()) {
		t.Fatalf("collection changed after no-op toggle")
	}
}

func TestDeleteUnknownIDLeavesOrderUnchanged(t *testing.T) {
	svc := NewService(nil)
	svc.Add("A", "")
	svc.Add("B", "")
	before := svc.All()

	if svc.Delete(9999) {
		t.Fatalf("delete of unknown id must return false")
	}
	if !reflect.DeepEqual(before, svc.All()) {
		t.Fatalf("collection changed after no-op delete")
	}
}

func TestAllReturnsACopy(t *testing.T) {
	svc := NewService(nil)
	svc.Add("A", "")

	view := svc.All()
	view[0].Title = "mutated"
	if svc.All()[0].Title != "A" {
		t.Fatalf("external mutation leaked into the live collection")
	}
}

func TestScenarioAddToggleOrder(t *testing.T) {
	svc := NewService(nil)
	milk := svc.Add("Buy milk", "")
	mom := svc.Add("Call mom", "reminder")

	all := svc.All()
	if len(all) != 2 || all[0].ID != mom.ID || all[1].ID != milk.ID {
		t.Fatalf("expected [Call mom, Buy milk], got %+v", all)
	}
	if all[0].Completed || all[1].Completed {
		t.Fatalf("new tasks must start incomplete")
	}

	if !svc.Toggle(milk.ID, true) {
		t.Fatalf("toggle failed")
	}
	all = svc.All()
	if all[0].ID != mom.ID || all[1].ID != milk.ID || !all[1].Completed {
		t.Fatalf("expected [Call mom, Buy milk(completed)], got %+v", all)
	}
}

func TestManagerRejectsEmptyTitle(t *testing.T) {
	mgr, st := newManager(t)

	for _, title := range []string{"", "   ", "\t\n"} {
		if _, err := mgr.Create(title, "desc"); !errors.Is(err, ErrEmptyTitle) {
			t.Fatalf("title %q: expected ErrEmptyTitle, got %v", title, err)
		}
	}
	if len(mgr.List()) != 0 {
		t.Fatalf("rejected create must not mutate the collection")
	}
	if !st.Load().Missing {
		t.Fatalf("rejected create must not touch the file")
	}
}

func TestManagerFlushesAfterEveryMutation(t *testing.T) {
	mgr, st := newManager(t)

	task, err := mgr.Create("Buy milk", "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if got := st.Load().Tasks; len(got) != 1 || got[0].Title != "Buy milk" {
		t.Fatalf("expected create to be persisted, file holds %+v", got)
	}

	if found, err := mgr.SetCompleted(task.ID, true); !found || err != nil {
		t.Fatalf("set completed failed: found=%v err=%v", found, err)
	}
	if got := st.Load().Tasks; len(got) != 1 || !got[0].Completed {
		t.Fatalf("expected completion to be persisted, file holds %+v", got)
	}

	if found, err := mgr.Remove(task.ID); !found || err != nil {
		t.Fatalf("remove failed: found=%v err=%v", found, err)
	}
	if got := st.Load().Tasks; len(got) != 0 {
		t.Fatalf("expected removal to be persisted, file holds %+v", got)
	}
}

func TestManagerUnknownIDDoesNotFlush(t *testing.T) {
	mgr, st := newManager(t)

	if found, err := mgr.SetCompleted(9999, true); found || err != nil {
		t.Fatalf("expected clean no-op, got found=%v err=%v", found, err)
	}
	if found, err := mgr.Remove(9999); found || err != nil {
		t.Fatalf("expected clean no-op, got found=%v err=%v", found, err)
	}
	if !st.Load().Missing {
		t.Fatalf("no-op must not create the file")
	}
}

func TestManagerListIsCanonicallyOrdered(t *testing.T) {
	mgr, _ := newManager(t)

	a, _ := mgr.Create("A", "")
	b, _ := mgr.Create("B", "")
	c, _ := mgr.Create("C", "")
	if _, err := mgr.SetCompleted(b.ID, true); err != nil {
		t.Fatalf("set completed failed: %v", err)
	}

	got := mgr.List()
	wantIDs := []int{c.ID, a.ID, b.ID}
	for i, id := range wantIDs {
		if got[i].ID != id {
			t.Fatalf("unexpected order %+v, want ids %v", got, wantIDs)
		}
	}
	assertCanonicalOrder(t, got)
}
