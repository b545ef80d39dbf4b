package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ellisandco/gin-rummy/internal/protocol"
	"github.com/ellisandco/gin-rummy/internal/protocol/codec"
)

// handleKey processes keyboard input per phase.
// Returns handled=false to let the text input consume the key.
func (m *Model) handleKey(msg tea.KeyMsg) (handled bool, cmd tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.transport.Close()
		return true, tea.Quit
	}

	switch m.phase {
	case PhaseConnecting:
		if msg.String() == "q" || msg.String() == "esc" {
			m.transport.Close()
			return true, tea.Quit
		}

	case PhaseHome:
		switch msg.String() {
		case "enter":
			code := strings.TrimSpace(m.input.Value())
			if code == "" {
				return true, nil
			}
			m.errMsg = ""
			m.send(codec.MustNewMessage(protocol.MsgJoinRoom, protocol.JoinRoomPayload{Code: code}))
			return true, nil
		case "ctrl+n":
			code := strings.TrimSpace(m.input.Value())
			if code == "" {
				return true, nil
			}
			m.errMsg = ""
			m.send(codec.MustNewMessage(protocol.MsgCreateRoom, protocol.CreateRoomPayload{Code: code}))
			return true, nil
		case "esc":
			m.transport.Close()
			return true, tea.Quit
		}

	case PhaseWaiting:
		switch msg.String() {
		case "s":
			// Only the host's request starts the game; others are ignored
			m.send(codec.MustNewMessage(protocol.MsgStartGame, nil))
		case "esc":
			m.transport.Close()
			return true, tea.Quit
		}
		return true, nil

	case PhasePlaying:
		return m.handleGameKey(msg)
	}

	return false, nil
}

// handleGameKey processes in-game keys. Illegal actions are sent anyway;
// the server silently drops them, so no client-side rule duplication.
func (m *Model) handleGameKey(msg tea.KeyMsg) (handled bool, cmd tea.Cmd) {
	st := m.state
	if st == nil {
		return true, nil
	}

	switch msg.String() {
	case "left", "h":
		if m.cursor > 0 {
			m.cursor--
		}
	case "right", "l":
		if m.cursor < len(st.YourHand)-1 {
			m.cursor++
		}
	case "<", "H":
		// Move the selected card left and report the new layout
		if m.cursor > 0 {
			hand := st.YourHand
			hand[m.cursor-1], hand[m.cursor] = hand[m.cursor], hand[m.cursor-1]
			m.cursor--
			m.sendHandOrder()
		}
	case ">", "L":
		if m.cursor < len(st.YourHand)-1 {
			hand := st.YourHand
			hand[m.cursor+1], hand[m.cursor] = hand[m.cursor], hand[m.cursor+1]
			m.cursor++
			m.sendHandOrder()
		}
	case "d":
		m.send(codec.MustNewMessage(protocol.MsgDrawDeck, nil))
	case "p":
		m.send(codec.MustNewMessage(protocol.MsgDrawDiscard, nil))
	case "enter", " ":
		if m.cursor < len(st.YourHand) {
			c := st.YourHand[m.cursor]
			m.send(codec.MustNewMessage(protocol.MsgDiscard, protocol.DiscardPayload{
				CardID: c.Rank + c.Suit,
			}))
		}
	case "g":
		m.send(codec.MustNewMessage(protocol.MsgGin, nil))
	case "r":
		if st.MatchOver {
			m.send(codec.MustNewMessage(protocol.MsgRematch, nil))
		}
	case "q", "esc":
		m.transport.Close()
		return true, tea.Quit
	}

	return true, nil
}

// sendHandOrder reports the on-screen card arrangement to the server.
func (m *Model) sendHandOrder() {
	order := make([]string, len(m.state.YourHand))
	for i, c := range m.state.YourHand {
		order[i] = c.Rank + c.Suit
	}
	m.send(codec.MustNewMessage(protocol.MsgHandOrder, protocol.HandOrderPayload{Order: order}))
}
