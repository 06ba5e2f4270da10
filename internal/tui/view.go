package tui

import (
	"fmt"
	"strings"

	"go-match/internal/config"
	"go-match/internal/deck"
	"go-match/internal/state"

	"github.com/charmbracelet/lipgloss"
)

const symbolRunes = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// View renders the title, board, status line, messages and help.
func (m *Model) View() string {
	var b strings.Builder

	d, _ := config.DifficultyFor(m.tier)
	b.WriteString(m.styles.title.Render("go-match · " + d.Label))
	b.WriteString("\n")

	if m.loading {
		b.WriteString(m.spinner.View() + " Fetching images...\n")
	} else {
		b.WriteString(m.styles.board.Render(m.renderBoard()))
		b.WriteString("\n")
	}

	b.WriteString(m.styles.status.Render(m.statusLine()))
	b.WriteString("\n")

	if msg := m.message(); msg != "" {
		b.WriteString(msg)
		b.WriteString("\n")
	}

	b.WriteString("\n" + m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderBoard() string {
	cards := m.session.Game.State.Cards
	if len(cards) == 0 {
		return m.styles.faint.Render("No round in progress.")
	}

	cols := m.columns()
	var rows []string
	for start := 0; start < len(cards); start += cols {
		end := min(start+cols, len(cards))
		cells := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			cells = append(cells, m.renderCard(i, cards[i]))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *Model) renderCard(i int, c deck.Card) string {
	label, style := m.cardStyle(i, c)
	return style.Render(label)
}

// cardStyle picks the label and style of card i. The cursor stays visible
// while input is locked, only dimmed.
func (m *Model) cardStyle(i int, c deck.Card) (string, lipgloss.Style) {
	label := "?"
	style := m.styles.hidden
	if c.Revealed {
		sym := m.symbols[c.FaceValue]
		label = string(symbolRunes[sym%len(symbolRunes)])
		base := m.styles.revealed
		if c.Matched {
			base = m.styles.matched
		}
		style = m.styles.face(base, sym)
	}
	if i == m.cursor {
		style = style.Reverse(true)
		if m.session.Game.State.Locked() {
			style = style.Faint(true)
		}
	}
	return label, style
}

func (m *Model) statusLine() string {
	parts := []string{
		fmt.Sprintf("MOVES: %d", m.moves),
		"TIME: " + clock(m.elapsed),
	}

	round, ok := m.session.Round()
	if ok && round.TimeLimit {
		parts[1] += " / " + clock(round.TimeCap)
	} else if !ok && m.opts.TimeLimit {
		parts = append(parts, "TIME LIMIT")
	}
	if m.opts.Preview {
		parts = append(parts, "PREVIEW")
	}

	if best, ok := m.bests().Get(m.tier); ok {
		parts = append(parts, fmt.Sprintf("BEST: %s (%d moves)", clock(best.Time), best.Moves))
	} else {
		parts = append(parts, "BEST: -")
	}
	return strings.Join(parts, " | ")
}

func (m *Model) message() string {
	if m.err != nil {
		return m.styles.errText.Render("Could not start the round: " + m.err.Error())
	}
	if m.session.Game.State.FSM.Is(state.StatePreviewing) {
		return m.styles.faint.Render("Memorize the board...")
	}
	if m.outcome == nil {
		return ""
	}

	o := m.outcome
	switch o.Reason {
	case state.TimedOut:
		return m.styles.loss.Render("Time's up! Press n to try again.")
	case state.Completed:
		msg := m.styles.win.Render(fmt.Sprintf("Congratulations! You finished in %s with %d moves.", clock(o.Time), o.Moves))
		if o.NewBest {
			msg += "\n" + m.styles.win.Render("New best time!")
		}
		if o.Err != nil {
			msg += "\n" + m.styles.errText.Render("Your score could not be saved.")
		}
		return msg
	}
	return ""
}

func clock(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
