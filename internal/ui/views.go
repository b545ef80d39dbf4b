package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/ellisandco/gin-rummy/internal/protocol"
)

// Lipgloss styles
var (
	docStyle      = lipgloss.NewStyle().Margin(1, 2)
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("228")).Bold(true)
	redCardStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#CD0000")).Background(lipgloss.Color("#FFFFFF")).Bold(true)
	blackCard     = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("#FFFFFF")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Background(lipgloss.Color("228")).Foreground(lipgloss.Color("0")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	winStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// View renders the model.
func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var content string
	switch m.phase {
	case PhaseConnecting:
		content = m.connectingView()
	case PhaseHome:
		content = m.homeView()
	case PhaseWaiting:
		content = m.waitingView()
	case PhasePlaying:
		content = m.gameView()
	}

	return docStyle.Render(content)
}

func (m *Model) connectingView() string {
	if m.errMsg != "" {
		return errorStyle.Render(m.errMsg)
	}
	return "Connecting to server..."
}

func (m *Model) homeView() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("♠ GIN RUMMY ♦"))
	sb.WriteString("\n\n")
	sb.WriteString("Room code: " + m.input.View() + "\n\n")
	sb.WriteString(dimStyle.Render("enter: join room · ctrl+n: create room · esc: quit"))
	if m.errMsg != "" {
		sb.WriteString("\n\n" + errorStyle.Render(m.errMsg))
	}
	return sb.String()
}

func (m *Model) waitingView() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Room " + m.code))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("Waiting for players... %d/%d\n\n", m.joined, m.needed))
	if m.seat == 0 && m.joined == m.needed {
		sb.WriteString(dimStyle.Render("s: start game · esc: quit"))
	} else {
		sb.WriteString(dimStyle.Render("esc: quit"))
	}
	return sb.String()
}

func (m *Model) gameView() string {
	st := m.state
	if st == nil {
		return "Starting..."
	}

	var sb strings.Builder

	// Header: room, scores, target
	sb.WriteString(titleStyle.Render(fmt.Sprintf("Room %s", st.Code)))
	sb.WriteString(dimStyle.Render(fmt.Sprintf("   You %d · Opp %d · first to %d loses",
		st.Scores[m.seat], st.Scores[1-m.seat], st.TargetScore)))
	sb.WriteString("\n\n")

	if st.MatchOver {
		sb.WriteString(m.matchOverView(st))
		return sb.String()
	}

	if m.reveal != nil && st.RoundOver {
		sb.WriteString(m.revealView(m.reveal))
		return sb.String()
	}

	// Table: opponent, discard, deck
	sb.WriteString(fmt.Sprintf("Opponent: %d cards\n", st.OppHandCount))
	discard := "  (empty)"
	if st.DiscardTop != nil {
		discard = renderCard(*st.DiscardTop, false)
	}
	sb.WriteString(fmt.Sprintf("Discard: %s   Deck: %d\n\n", discard, st.DeckCount))

	// Turn line with countdown
	if st.YourTurn {
		remaining := time.Until(time.UnixMilli(st.TurnEndsAt))
		if remaining < 0 {
			remaining = 0
		}
		verb := "draw (d: deck, p: pile)"
		if st.Phase == "discard" {
			verb = "discard (enter) or gin (g)"
		}
		sb.WriteString(winStyle.Render(fmt.Sprintf("Your turn — %s · %ds left", verb, int(remaining.Seconds()))))
	} else {
		sb.WriteString(dimStyle.Render("Opponent's turn..."))
	}
	sb.WriteString("\n\n")

	// Hand
	sb.WriteString(m.handView(st))
	sb.WriteString(fmt.Sprintf("\nDeadwood: %d cards, %d points\n", st.DeadwoodCount, st.DeadwoodPoints))

	if m.status != "" {
		sb.WriteString("\n" + statusStyle.Render(m.status))
	}
	if m.errMsg != "" {
		sb.WriteString("\n" + errorStyle.Render(m.errMsg))
	}
	sb.WriteString("\n" + dimStyle.Render("←/→: select · </>: rearrange · q: quit"))

	return sb.String()
}

// handView renders the hand with the cursor highlighted.
func (m *Model) handView(st *protocol.StatePayload) string {
	var parts []string
	for i, c := range st.YourHand {
		parts = append(parts, renderCard(c, i == m.cursor))
	}
	return strings.Join(parts, " ")
}

// renderCard renders one card, red suits in red.
func renderCard(c protocol.CardInfo, selected bool) string {
	label := " " + c.Rank + c.Suit + " "
	if selected {
		return selectedStyle.Render(label)
	}
	if c.Suit == "♥" || c.Suit == "♦" {
		return redCardStyle.Render(label)
	}
	return blackCard.Render(label)
}

// revealView renders the end-of-round layouts for both seats.
func (m *Model) revealView(rv *protocol.RoundRevealPayload) string {
	var sb strings.Builder

	if rv.Winner == m.seat {
		sb.WriteString(winStyle.Render("GIN! You win the round."))
	} else {
		sb.WriteString(errorStyle.Render(fmt.Sprintf("Opponent gins — you take %d points.", rv.LoserPoints)))
	}
	sb.WriteString("\n\n")

	for seat := 0; seat < 2; seat++ {
		who := "You"
		if seat != m.seat {
			who = "Opponent"
		}
		layout := rv.Layouts[seat]

		var lines []string
		for _, group := range layout.MeldGroups {
			lines = append(lines, renderCards(group))
		}
		if len(layout.Deadwood) > 0 {
			lines = append(lines, dimStyle.Render("deadwood: ")+renderCards(layout.Deadwood))
		}
		sb.WriteString(boxStyle.Render(fmt.Sprintf("%s (%d pts)\n%s", who, layout.DeadwoodPoints, strings.Join(lines, "\n"))))
		sb.WriteString("\n")
	}

	sb.WriteString("\n" + dimStyle.Render("Next round starts shortly..."))
	return sb.String()
}

// matchOverView renders the final screen with rematch voting.
func (m *Model) matchOverView(st *protocol.StatePayload) string {
	var sb strings.Builder

	if st.MatchWinner != nil && *st.MatchWinner == m.seat {
		sb.WriteString(winStyle.Render("🏆 You win the match!"))
	} else {
		sb.WriteString(errorStyle.Render("Match over — opponent wins."))
	}
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("Final score: you %d, opponent %d\n\n", st.Scores[m.seat], st.Scores[1-m.seat]))

	yourVote, oppVote := st.RematchVotes[m.seat], st.RematchVotes[1-m.seat]
	switch {
	case st.RematchCountdownEndsAt > 0:
		remaining := time.Until(time.UnixMilli(st.RematchCountdownEndsAt))
		if remaining < 0 {
			remaining = 0
		}
		sb.WriteString(winStyle.Render(fmt.Sprintf("Rematch in %ds...", int(remaining.Seconds()))))
	case yourVote && !oppVote:
		sb.WriteString("Waiting for opponent to accept the rematch...")
	case !yourVote && oppVote:
		sb.WriteString("Opponent wants a rematch! Press r to accept.")
	default:
		sb.WriteString(dimStyle.Render("r: rematch · q: quit"))
	}

	return sb.String()
}

// renderCards renders a run of cards without selection.
func renderCards(cards []protocol.CardInfo) string {
	var parts []string
	for _, c := range cards {
		parts = append(parts, renderCard(c, false))
	}
	return strings.Join(parts, " ")
}
