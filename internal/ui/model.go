package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ellisandco/gin-rummy/internal/protocol"
	"github.com/ellisandco/gin-rummy/internal/protocol/codec"
)

// Phase represents the current client screen.
type Phase int

const (
	PhaseConnecting Phase = iota
	PhaseHome
	PhaseWaiting
	PhasePlaying
)

// --- Tea messages ---

// ServerMessage wraps a protocol message for tea.Msg.
type ServerMessage struct {
	Msg *protocol.Message
}

// ConnectedMsg indicates successful connection.
type ConnectedMsg struct{}

// ConnectionErrorMsg indicates a connection error.
type ConnectionErrorMsg struct {
	Err error
}

// ClearStatusMsg clears the transient status line.
type ClearStatusMsg struct{}

// tickMsg drives the turn countdown rendering.
type tickMsg time.Time

// Model is the bubbletea model for the terminal client.
type Model struct {
	transport *Transport
	phase     Phase

	// Room
	seat   int
	code   string
	joined int
	needed int

	// Game
	state  *protocol.StatePayload
	reveal *protocol.RoundRevealPayload
	cursor int // selected card in hand

	// UI
	input  textinput.Model
	status string
	errMsg string
	width  int
	height int
}

// NewModel creates the client model.
func NewModel(serverURL string) *Model {
	ti := textinput.New()
	ti.Placeholder = "room code"
	ti.CharLimit = 12
	ti.Width = 20
	ti.Focus()

	return &Model{
		transport: NewTransport(serverURL),
		phase:     PhaseConnecting,
		seat:      -1,
		input:     ti,
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.connect(), textinput.Blink)
}

func (m *Model) connect() tea.Cmd {
	return func() tea.Msg {
		if err := m.transport.Connect(); err != nil {
			return ConnectionErrorMsg{Err: err}
		}
		return ConnectedMsg{}
	}
}

func (m *Model) listen() tea.Cmd {
	return func() tea.Msg {
		msg, err := m.transport.Receive()
		if err != nil {
			return ConnectionErrorMsg{Err: err}
		}
		return ServerMessage{Msg: msg}
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case ConnectedMsg:
		m.phase = PhaseHome
		m.transport.StartHeartbeat()
		cmds = append(cmds, m.listen())

	case ConnectionErrorMsg:
		m.errMsg = fmt.Sprintf("Connection lost: %v (press q to quit)", msg.Err)

	case ServerMessage:
		cmds = append(cmds, m.handleServerMessage(msg.Msg)...)
		if m.transport.IsConnected() {
			cmds = append(cmds, m.listen())
		}

	case ClearStatusMsg:
		m.status = ""

	case tickMsg:
		if m.phase == PhasePlaying {
			cmds = append(cmds, tick())
		}

	case tea.KeyMsg:
		handled, cmd := m.handleKey(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		if handled {
			return m, tea.Batch(cmds...)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleServerMessage applies a server message to the model.
func (m *Model) handleServerMessage(msg *protocol.Message) []tea.Cmd {
	var cmds []tea.Cmd

	switch msg.Type {
	case protocol.MsgInit:
		if p, err := codec.ParsePayload[protocol.InitPayload](msg); err == nil {
			m.seat = p.PlayerID
		}

	case protocol.MsgJoinOK:
		if p, err := codec.ParsePayload[protocol.JoinOKPayload](msg); err == nil {
			m.code = p.Code
			m.phase = PhaseWaiting
		}

	case protocol.MsgJoinError:
		if p, err := codec.ParsePayload[protocol.JoinErrorPayload](msg); err == nil {
			m.errMsg = p.Message
			// A mid-game join_error means the opponent left; back to home
			if m.phase == PhasePlaying {
				m.resetToHome()
			}
		}

	case protocol.MsgRoomUpdate:
		if p, err := codec.ParsePayload[protocol.RoomUpdatePayload](msg); err == nil {
			m.joined = p.Joined
			m.needed = p.Needed
			// Room creators never receive join_ok; the first room_update
			// is what moves them into the waiting screen.
			if m.phase == PhaseHome {
				m.code = p.Code
				m.phase = PhaseWaiting
			}
		}

	case protocol.MsgGameStart:
		m.phase = PhasePlaying
		m.errMsg = ""
		cmds = append(cmds, tick())

	case protocol.MsgState:
		if p, err := codec.ParsePayload[protocol.StatePayload](msg); err == nil {
			// A new round invalidates the reveal overlay
			if m.state != nil && p.RoundID != m.state.RoundID {
				m.reveal = nil
			}
			m.state = p
			m.phase = PhasePlaying
			if m.cursor >= len(p.YourHand) {
				m.cursor = max(0, len(p.YourHand)-1)
			}
		}

	case protocol.MsgRoundReveal:
		if p, err := codec.ParsePayload[protocol.RoundRevealPayload](msg); err == nil {
			m.reveal = p
		}

	case protocol.MsgTimeoutDiscard:
		if p, err := codec.ParsePayload[protocol.TimeoutDiscardPayload](msg); err == nil {
			if p.PlayerID == m.seat {
				m.setStatus(fmt.Sprintf("Time's up! %s was discarded for you.", p.CardID), &cmds)
			} else {
				m.setStatus("Opponent ran out of time.", &cmds)
			}
		}

	case protocol.MsgTimeoutPass:
		m.setStatus("Turn skipped on timeout.", &cmds)

	case protocol.MsgDeckReshuffle:
		m.setStatus("Discard pile shuffled back into the deck.", &cmds)

	case protocol.MsgError:
		if p, err := codec.ParsePayload[protocol.ErrorPayload](msg); err == nil {
			m.setStatus(p.Message, &cmds)
		}
	}

	return cmds
}

// setStatus shows a transient status line for a few seconds.
func (m *Model) setStatus(text string, cmds *[]tea.Cmd) {
	m.status = text
	*cmds = append(*cmds, tea.Tick(4*time.Second, func(time.Time) tea.Msg {
		return ClearStatusMsg{}
	}))
}

// resetToHome clears room and game state after the room dissolves.
func (m *Model) resetToHome() {
	m.phase = PhaseHome
	m.code = ""
	m.joined = 0
	m.needed = 0
	m.state = nil
	m.reveal = nil
	m.cursor = 0
	m.input.Reset()
	m.input.Focus()
}

// send fires a message at the server, surfacing failures on the status line.
func (m *Model) send(msg *protocol.Message) {
	if err := m.transport.SendMessage(msg); err != nil {
		m.errMsg = fmt.Sprintf("Send failed: %v", err)
	}
}
