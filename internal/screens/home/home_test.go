package home

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/speakset/internal/content"
	"github.com/abhisek/speakset/internal/router"
	"github.com/abhisek/speakset/internal/screen"
	"github.com/abhisek/speakset/internal/state"
)

type stubScreen struct{ title string }

func (s *stubScreen) Init() tea.Cmd { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string { return s.title }
func (s *stubScreen) Title() string { return s.title }

func params(id string, n int) *content.Params {
	p := &content.Params{ID: id}
	for i := 0; i < n; i++ {
		p.Questions = append(p.Questions, content.Question{Question: "q"})
	}
	return p
}

func TestHome_OpensSelectedSet(t *testing.T) {
	var opened string
	h := New(Options{
		Entries: func() []Entry {
			return []Entry{{Params: params("greetings", 2)}, {Params: params("numbers", 1)}}
		},
		Open: func(p *content.Params) screen.Screen {
			opened = p.ID
			return &stubScreen{title: p.ID}
		},
	})

	_, _ = h.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatalf("expected PushScreenMsg, got %T", cmd())
	}
	if opened != "numbers" || msg.Screen.Title() != "numbers" {
		t.Errorf("opened %q, pushed %q", opened, msg.Screen.Title())
	}
}

func TestHome_LabelsShowProgress(t *testing.T) {
	done := state.ShowingResults
	entries := []Entry{{Params: params("greetings", 2), Saved: &done}}
	h := New(Options{Entries: func() []Entry { return entries }})

	items := h.menu.Items
	if items[0].Label != "greetings" || items[0].Hint != "2 questions · finished" {
		t.Errorf("item = %q / %q", items[0].Label, items[0].Hint)
	}
	if items[len(items)-1].Label != "Exit" {
		t.Error("last item should be Exit")
	}

	entries[0].Saved = nil
	h.Update(RefreshMsg{})
	if strings.Contains(h.menu.Items[0].Hint, "finished") {
		t.Error("refresh should drop the progress hint")
	}
}

func TestHome_EmptyView(t *testing.T) {
	h := New(Options{})
	if !strings.Contains(h.View(80, 30), "No content loaded") {
		t.Error("expected empty notice")
	}
}
