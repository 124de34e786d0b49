package navigation

import (
	"strings"
	"testing"
)

func TestItems(t *testing.T) {
	s := Strip{Count: 4, Answered: []int{0, 2}, Current: 2}

	want := []Status{Answered, Unanswered, Current, Unanswered}
	items := s.Items()
	if len(items) != len(want) {
		t.Fatalf("len = %d, want %d", len(items), len(want))
	}
	for i, it := range items {
		if it.Status != want[i] {
			t.Errorf("item %d status = %v, want %v", i, it.Status, want[i])
		}
		if it.Label != string(rune('1'+i)) {
			t.Errorf("item %d label = %q", i, it.Label)
		}
	}
	if !items[2].Answered {
		t.Error("current slide should still report answered")
	}
}

func TestActivate(t *testing.T) {
	var jumped []int
	s := Strip{Count: 3, Current: 1, Jump: func(i int) error {
		jumped = append(jumped, i)
		return nil
	}}

	s.Activate(2)
	s.Next()
	s.Prev()

	want := []int{2, 2, 0}
	if len(jumped) != len(want) {
		t.Fatalf("jumped = %v, want %v", jumped, want)
	}
	for i := range want {
		if jumped[i] != want[i] {
			t.Errorf("jumped[%d] = %d, want %d", i, jumped[i], want[i])
		}
	}
}

func TestNextPrevAtEdges(t *testing.T) {
	calls := 0
	jump := func(int) error { calls++; return nil }

	Strip{Count: 2, Current: 1, Jump: jump}.Next()
	Strip{Count: 2, Current: 0, Jump: jump}.Prev()

	if calls != 0 {
		t.Errorf("calls = %d, want 0", calls)
	}
}

func TestActivateWithoutJump(t *testing.T) {
	if err := (Strip{Count: 1}).Activate(0); err != nil {
		t.Errorf("Activate = %v", err)
	}
}

func TestView(t *testing.T) {
	v := Strip{Count: 3, Answered: []int{0}, Current: 1}.View()
	for _, label := range []string{"1", "2", "3"} {
		if !strings.Contains(v, label) {
			t.Errorf("view missing %q: %s", label, v)
		}
	}
}
