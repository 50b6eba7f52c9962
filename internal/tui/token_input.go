package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type tokenInputModel struct {
	state  *wizardState
	input  textinput.Model
	errMsg string
}

func newTokenInputModel(state *wizardState) *tokenInputModel {
	ti := textinput.New()
	ti.Placeholder = "Cloudflare API token"
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '*'
	ti.CharLimit = 128
	ti.Width = 40

	return &tokenInputModel{
		state: state,
		input: ti,
	}
}

func (m *tokenInputModel) Init() tea.Cmd {
	if m.state.token != "" {
		m.input.SetValue(m.state.token)
	}
	m.input.Focus()
	return textinput.Blink
}

func (m *tokenInputModel) Update(msg tea.Msg) (screenModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if isEsc(msg) {
			return m, func() tea.Msg { return navigateMsg{to: screenEmailInput} }
		}
		if isEnter(msg) {
			val := strings.TrimSpace(m.input.Value())
			if val == "" {
				m.errMsg = "Token is required for the DNS-01 challenge"
				return m, nil
			}
			m.errMsg = ""
			m.state.token = val
			return m, func() tea.Msg { return navigateMsg{to: screenConfirm} }
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *tokenInputModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Cloudflare API Token"))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("Token with Zone:DNS:Edit for the domain's zone. Caddy uses it"))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("to answer DNS-01 challenges."))
	b.WriteString("\n\n")
	b.WriteString("  " + m.input.View())
	b.WriteString("\n")

	if m.errMsg != "" {
		b.WriteString("\n  " + errorStyle.Render(m.errMsg))
	}

	b.WriteString(helpStyle.Render("\n  enter: confirm  esc: back"))
	return b.String()
}
