package quiz

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/speakset/internal/state"
	"github.com/abhisek/speakset/internal/ui/components"
	"github.com/abhisek/speakset/internal/ui/theme"
)

func (s *QuizScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	var body string
	switch s.ctrl.ViewState() {
	case state.ShowingIntro:
		body = s.renderIntro(cw)
	case state.ShowingResults:
		body = s.renderResults(cw)
	default:
		body = s.renderQuestion(cw)
	}

	if s.errMsg != "" {
		body += "\n\n" + theme.Incorrect.Render(s.errMsg)
	}
	return components.Frame(body, width, height)
}

func (s *QuizScreen) renderIntro(cw int) string {
	intro := s.ctrl.Params().Introduction
	title := intro.Title
	if title == "" {
		title = s.ctrl.Params().DisplayTitle()
	}
	label := intro.StartButtonText
	if label == "" {
		label = "Start"
	}

	var b strings.Builder
	b.WriteString(theme.Title.Width(cw - 6).Render(title))
	if intro.Text != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.Body.Width(cw - 6).Render(intro.Text))
	}
	b.WriteString("\n\n")
	b.WriteString(components.NewButton(label, true, nil).View())
	return components.Card(b.String(), cw)
}

// renderQuestion renders the current slide, used by both the questions and
// the solutions screens.
func (s *QuizScreen) renderQuestion(cw int) string {
	seq := s.ctrl.Sequence()
	q := s.current()

	var b strings.Builder

	progress := fmt.Sprintf("Question %d of %d", seq.Current()+1, seq.Len())
	if slide, ok := s.host.Focused(); ok && slide == seq.Current() {
		b.WriteString(theme.Selected.Render(progress))
	} else {
		b.WriteString(theme.Hint.Render(progress))
	}
	b.WriteString("\n\n")

	if q == nil {
		b.WriteString(theme.Hint.Render("Loading question..."))
		return components.Card(b.String(), cw)
	}

	b.WriteString(theme.Body.Bold(true).Width(cw - 6).Render(q.Config().Question))
	b.WriteString("\n\n")

	switch {
	case q.ShowingSolution():
		if q.Answered() {
			b.WriteString(theme.Hint.Render("You said: " + joinAlternatives(q.Answers())))
			b.WriteString("\n")
		}
		b.WriteString(theme.Correct.Render("Accepted answers: " + strings.Join(q.Config().AcceptedAnswers, ", ")))
	default:
		b.WriteString(s.input.View())
		if q.Listening() {
			b.WriteString("\n")
			b.WriteString(theme.Listening.Render("● Listening"))
		}
		if fb := q.Feedback(); fb != "" {
			b.WriteString("\n\n")
			if q.Correct() {
				b.WriteString(theme.Correct.Render(fb))
			} else {
				b.WriteString(theme.Incorrect.Render(fb))
			}
		}
	}

	b.WriteString("\n\n")
	b.WriteString(s.strip().View())

	if s.ctrl.ViewState() == state.ShowingQuestions && s.ctrl.AllAnswered() {
		b.WriteString("\n\n")
		b.WriteString(theme.Hint.Render("All questions answered. Press Ctrl+S to see your results."))
	}
	return components.Card(b.String(), cw)
}

func (s *QuizScreen) renderResults(cw int) string {
	r := s.ctrl.ResultsSummary()

	var b strings.Builder
	b.WriteString(theme.Title.Width(cw - 6).Render("Results"))
	b.WriteString("\n\n")

	pct := 0.0
	if r.MaxScore > 0 {
		pct = float64(r.Score) / float64(r.MaxScore)
	}
	b.WriteString(components.NewProgressBar(
		fmt.Sprintf("Score %d/%d", r.Score, r.MaxScore), pct, true, cw-6).View())
	b.WriteString("\n\n")

	for _, sr := range r.Slides {
		mark := theme.DotUnanswered.Render("○")
		switch {
		case sr.MaxScore > 0 && sr.Score == sr.MaxScore:
			mark = theme.Correct.Render("✓")
		case sr.Answered:
			mark = theme.Incorrect.Render("✗")
		}
		b.WriteString(fmt.Sprintf("%s %d. %s\n", mark, sr.Slide+1, sr.Question))
	}

	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Width(cw - 6).Align(lipgloss.Center).Render(s.actions.View()))
	return components.Card(b.String(), cw)
}

func joinAlternatives(answers []string) string {
	return strings.Join(answers, " "+components.AlternativeSeparator+" ")
}
