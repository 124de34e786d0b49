package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/speakset/internal/config"
	"github.com/abhisek/speakset/internal/content"
	"github.com/abhisek/speakset/internal/logging"
	"github.com/abhisek/speakset/internal/router"
	"github.com/abhisek/speakset/internal/screen"
	"github.com/abhisek/speakset/internal/screens/home"
	"github.com/abhisek/speakset/internal/screens/quiz"
	"github.com/abhisek/speakset/internal/state"
	"github.com/abhisek/speakset/internal/statements"
	"github.com/abhisek/speakset/internal/store"
	"github.com/abhisek/speakset/internal/ui/layout"
	"github.com/abhisek/speakset/internal/xapi"
)

// Options holds the dependencies of the application.
type Options struct {
	Contents []*content.Params
	Config   config.Config

	// States and Statements may be nil, in which case nothing is saved.
	States     store.StateRepo
	Statements store.StatementRepo

	// Fresh ignores saved state the first time each set is opened.
	Fresh bool

	Logger *slog.Logger
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	width  int
	height int
}

// newAppModel creates a new AppModel with the home screen. emit receives
// the analytics records of every opened set.
func newAppModel(opts Options, emit func(contentID string, data xapi.Data)) AppModel {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	l := &launcher{opts: opts, emit: emit, logger: logger, opened: map[string]bool{}}
	homeScreen := home.New(home.Options{
		Entries: l.entries,
		Open:    l.open,
	})
	return AppModel{
		router: router.New(homeScreen),
	}
}

func (m AppModel) Init() tea.Cmd {
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, tea.Sequence(
					func() tea.Msg { return router.PopScreenMsg{} },
					func() tea.Msg { return home.RefreshMsg{} },
				)
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.render())
	return v
}

// render draws the full frame for the current size.
func (m AppModel) render() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title, status := "", ""
	if active != nil {
		title = active.Title()
		if sp, ok := active.(screen.StatusProvider); ok {
			status = sp.Status()
		}
	}

	header := layout.RenderHeader(title, status, m.width)

	var footerHints []layout.KeyHint
	if kp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = append(kp.KeyHints(), layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
	} else {
		footerHints = []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Select"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// launcher builds home entries and quiz screens from the options.
type launcher struct {
	opts   Options
	emit   func(contentID string, data xapi.Data)
	logger *slog.Logger
	opened map[string]bool
}

func (l *launcher) entries() []home.Entry {
	saved := map[string]state.ViewState{}
	if l.opts.States != nil {
		infos, err := l.opts.States.List(context.Background())
		if err != nil {
			l.logger.Warn("Failed to list saved states", "error", err)
		}
		for _, info := range infos {
			saved[info.ContentID] = info.ViewState
		}
	}

	entries := make([]home.Entry, 0, len(l.opts.Contents))
	for _, p := range l.opts.Contents {
		e := home.Entry{Params: p}
		if v, ok := saved[p.ID]; ok {
			e.Saved = &v
		}
		entries = append(entries, e)
	}
	return entries
}

func (l *launcher) open(p *content.Params) screen.Screen {
	first := !l.opened[p.ID]
	l.opened[p.ID] = true

	var prev *state.PersistedState
	if l.opts.States != nil && !(l.opts.Fresh && first) {
		saved, err := l.opts.States.Load(context.Background(), p.ID)
		switch {
		case err != nil:
			l.logger.Warn("Ignoring unreadable saved state", "content_id", p.ID, "error", err)
		case saved != nil:
			prev = saved.State
		}
	}

	var emit func(xapi.Data)
	if l.emit != nil {
		id := p.ID
		emit = func(d xapi.Data) { l.emit(id, d) }
	}

	return quiz.New(quiz.Options{
		Params:   p,
		Previous: prev,
		States:   l.opts.States,
		Builder:  l.opts.Config.Builder(p.ID),
		Emit:     emit,
		Logger:   l.logger.With("content_id", p.ID),
	})
}

// Run starts the Bubble Tea program. Triggered records flow through the
// statement pipeline into the statement log while the program runs; Run
// waits for them to be stored before returning.
func Run(ctx context.Context, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	pipeline, err := statements.New(logger)
	if err != nil {
		return fmt.Errorf("start statement pipeline: %w", err)
	}
	defer pipeline.Close()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- pipeline.Run(runCtx, statementSink(opts.Statements))
	}()

	emit := func(contentID string, data xapi.Data) {
		if err := pipeline.Publish(contentID, data); err != nil {
			logger.Error("Dropping statement", "content_id", contentID, "error", err)
		}
	}

	p := tea.NewProgram(newAppModel(opts, emit), tea.WithContext(ctx))
	final, err := p.Run()
	if m, ok := final.(AppModel); ok {
		m.router.CloseAll()
	}

	if ctx.Err() == nil {
		pipeline.Wait()
	}
	cancel()
	<-done

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}

// statementSink appends records to repo. A nil repo drops them.
func statementSink(repo store.StatementRepo) statements.Sink {
	return func(ctx context.Context, rec statements.Record) error {
		if repo == nil {
			return nil
		}
		_, err := repo.Append(ctx, rec.ContentID, rec.Seq, rec.Data)
		return err
	}
}
